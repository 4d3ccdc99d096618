/*
 * structure.go, part of usprep
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
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	chem "github.com/rmera/gochem"
	v3 "github.com/rmera/gochem/v3"
)

//ReadStructure reads the shared starting-structure file and returns its
//atom count. The format is taken from the extension; AMBER restart files
//get our own reader, everything else goes through goChem.
func ReadStructure(name string) (int, error) {
	var mol *chem.Molecule
	var err error
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	switch ext {
	case "rst7", "rst", "inpcrd", "restrt":
		coords, err := ReadRst7(name)
		if err != nil {
			return 0, err
		}
		return coords.NVecs(), nil
	case "gro":
		mol, err = chem.GroFileRead(name)
	case "pdb":
		mol, err = chem.PDBFileRead(name, false)
	default:
		mol, err = chem.XYZFileRead(name)
	}
	if err != nil {
		return 0, err
	}
	if mol.Len() < 1 {
		return 0, fmt.Errorf("%s: structure has no atoms", name)
	}
	return mol.Len(), nil
}

//rst7 coordinate fields are fixed-width, 6 per line, %12.7f. Adjacent
//fields can touch when a coordinate is negative and large, so the line is
//cut by column, not by whitespace.
const rst7FieldWidth = 12

//ReadRst7 reads an ASCII AMBER restart (rst7/inpcrd) file: a title line,
//an atom-count line, then 3N coordinates. Velocity and box sections, when
//present, are ignored.
func ReadRst7(name string) (*v3.Matrix, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return nil, fmt.Errorf("%s: empty restart file", name)
	}
	//the title line carries no structure, we only require it to be there.
	if !scanner.Scan() {
		return nil, fmt.Errorf("%s: restart file has no atom-count line", name)
	}
	fields := strings.Fields(scanner.Text())
	if len(fields) < 1 {
		return nil, fmt.Errorf("%s: restart file has a blank atom-count line", name)
	}
	nat, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil, fmt.Errorf("%s: bad atom count %q: %w", name, fields[0], err)
	}
	if nat < 1 {
		return nil, fmt.Errorf("%s: restart file declares %d atoms", name, nat)
	}
	want := 3 * nat
	vals := make([]float64, 0, want)
	for len(vals) < want && scanner.Scan() {
		line := scanner.Text()
		for i := 0; i+rst7FieldWidth <= len(line) && len(vals) < want; i += rst7FieldWidth {
			field := strings.TrimSpace(line[i : i+rst7FieldWidth])
			if field == "" {
				continue
			}
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%s: bad coordinate %q: %w", name, field, err)
			}
			vals = append(vals, v)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(vals) < want {
		return nil, fmt.Errorf("%s: truncated restart: got %d of %d coordinates", name, len(vals), want)
	}
	coords := v3.Zeros(nat)
	for i := 0; i < nat; i++ {
		for k := 0; k < 3; k++ {
			coords.Set(i, k, vals[3*i+k])
		}
	}
	return coords, nil
}
