/*
 * restraints.go, part of usprep
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
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
)

//RestraintDir is where WriteRestraintFiles puts the per-window files,
//under the working directory.
const RestraintDir = "rstr"

//A Restraint is one nmropt flat-bottom well: four positions r1-r4 and two
//force constants rk2/rk3, acting on the internal coordinate defined by the
//iat atom list (2 atoms = distance, 3 = angle, 4 = torsion).
type Restraint struct {
	IAt            []int
	R1, R2, R3, R4 float64
	RK2, RK3       float64
}

//HarmonicRestraint builds a plain harmonic well centered at center with
//force constant rk: r2=r3=center, rk2=rk3=rk, and r1/r4 pushed far enough
//out that the linear tails are never reached. sander uses 500 for
//distances; angles and torsions get the 180-degree period instead.
func HarmonicRestraint(iat []int, center, rk float64) (*Restraint, error) {
	var wall float64
	switch len(iat) {
	case 2:
		wall = 500.0
	case 3, 4:
		wall = 180.0
	default:
		return nil, fmt.Errorf("a restraint needs 2, 3 or 4 atoms, got %d", len(iat))
	}
	for _, i := range iat {
		if i < 1 {
			return nil, fmt.Errorf("atom indexes are 1-based, got %d", i)
		}
	}
	return &Restraint{
		IAt: iat,
		R1:  center - wall,
		R2:  center,
		R3:  center,
		R4:  center + wall,
		RK2: rk,
		RK3: rk,
	}, nil
}

//Namelist returns the restraint as a one-line nmropt &rst namelist.
func (r *Restraint) Namelist() string {
	iat := make([]string, len(r.IAt))
	for i, a := range r.IAt {
		iat[i] = strconv.Itoa(a)
	}
	g := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	return fmt.Sprintf(" &rst iat=%s r1=%s r2=%s r3=%s r4=%s rk2=%s rk3=%s / \n",
		strings.Join(iat, ","), g(r.R1), g(r.R2), g(r.R3), g(r.R4), g(r.RK2), g(r.RK3))
}

//Windows returns n window centers evenly spaced from lo to hi, ascending
//with the replica index. A single window sits at lo.
func Windows(n int, lo, hi float64) []float64 {
	if n < 1 {
		return nil
	}
	if n == 1 {
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, hi)
}

//WriteRestraintFiles writes one restraint file per window center under
//<workdir>/rstr, named r<i>.RST in window order. The files carry generator
//output only, so unlike the coordinate links they are rewritten on re-run.
func WriteRestraintFiles(workdir string, iat []int, centers []float64, rk float64) error {
	dir := filepath.Join(workdir, RestraintDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("restraint directory: %w", err)
	}
	for i, c := range centers {
		rst, err := HarmonicRestraint(iat, c, rk)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		fmt.Fprintf(&buf, "umbrella window %d: center=%g rk=%g\n", i, c, rk)
		buf.WriteString(rst.Namelist())
		name := filepath.Join(dir, fmt.Sprintf("r%d.RST", i))
		if err := writeFileAtomic(name, buf.Bytes()); err != nil {
			return fmt.Errorf("restraint file for window %d: %w", i, err)
		}
	}
	return nil
}
