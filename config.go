/*
 * config.go, part of usprep
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
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

//A Command is the file form of the CLI options, so a run setup can be kept
//under version control next to the inputs it describes. Every key is
//optional; explicit flags override whatever the file says.
type Command struct {
	NReplicas   int             `yaml:"nreplicas"`
	Engine      string          `yaml:"engine"`
	SubjobCores int             `yaml:"subjob_cores"`
	WorkDir     string          `yaml:"workdir"`
	Control     string          `yaml:"control"`
	Topology    string          `yaml:"topology"`
	Structure   string          `yaml:"structure"`
	CoordDir    string          `yaml:"coord_dir"`
	Groupfile   string          `yaml:"groupfile"`
	Restraints  *RestraintBlock `yaml:"restraints"`
}

//A RestraintBlock describes the umbrella windows: the restrained atoms and
//the span of window centers, one window per replica.
type RestraintBlock struct {
	IAt []int   `yaml:"iat"`
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
	RK  float64 `yaml:"rk"`
}

//RestraintAtoms returns the restrained atom list, or nil when the command
//file has no restraint block.
func (c *Command) RestraintAtoms() []int {
	if c.Restraints == nil {
		return nil
	}
	return c.Restraints.IAt
}

//RestraintRange returns the window-center span and force constant, zeros
//when there is no restraint block.
func (c *Command) RestraintRange() (lo, hi, rk float64) {
	if c.Restraints == nil {
		return 0, 0, 0
	}
	return c.Restraints.Min, c.Restraints.Max, c.Restraints.RK
}

//ReadCommandFile reads a YAML command file. Unknown keys are an error:
//a typo in nreplicas must not silently prepare a one-replica run.
func ReadCommandFile(path string) (*Command, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := &Command{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}
