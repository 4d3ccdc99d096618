/*
 * engine.go, part of usprep
 *
 *
 * Copyright 2021 the usprep developers
 *
 *
 *  This program is free software; you can redistribute it and/or modify
 *  it under the terms of the GNU General Public License as published by
 *  the Free Software Foundation; either version 2 of the License, or
 *  (at your option) any later version.
 *
 *  This program is distributed in the hope that it will be useful,
 *  but WITHOUT ANY WARRANTY; without even the implied warranty of
 *  MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 *  GNU General Public License for more details.
 *
 *  You should have received a copy of the GNU General Public License along
 *  with this program; if not, write to the Free Software Foundation, Inc.,
 *  51 Franklin Street, Fifth Floor, Boston, MA 02110-1301 USA.
 *
 *
 */

package main

import (
	"fmt"
	"strings"
)

//The engine names users actually write, mapped to the executable basename.
var supportedEngines = map[string]string{
	"amber":        "sander",
	"sander":       "sander",
	"amber-sander": "sander",
	"pmemd":        "pmemd",
	"amber-pmemd":  "pmemd",
}

//ResolveEngine maps an engine name (case-insensitive) to the executable the
//prepared run is meant for. More than one core per sub-job selects the MPI
//build, as in sander.MPI.
func ResolveEngine(name string, cores int) (string, error) {
	exe, ok := supportedEngines[strings.ToLower(name)]
	if !ok {
		return "", fmt.Errorf("engine %q is either invalid or not currently supported", name)
	}
	if cores < 1 {
		return "", fmt.Errorf("cores per sub-job must be at least 1, got %d", cores)
	}
	if cores > 1 {
		exe += ".MPI"
	}
	return exe, nil
}
