/*
 * restraints_test.go, part of usprep
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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindows(t *testing.T) {
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, Windows(6, 1, 6))
	assert.Equal(t, []float64{2.5}, Windows(1, 2.5, 9))
	assert.Equal(t, []float64{3, 7}, Windows(2, 3, 7))
	assert.Nil(t, Windows(0, 0, 1))
	//ascending with the replica index
	w := Windows(11, 1.2, 4.7)
	require.Len(t, w, 11)
	for i := 1; i < len(w); i++ {
		assert.Greater(t, w[i], w[i-1])
	}
}

func TestHarmonicRestraint(t *testing.T) {
	//distance wells get the sander "really big number" walls
	r, err := HarmonicRestraint([]int{3, 17}, 4.5, 200)
	require.NoError(t, err)
	assert.Equal(t, 4.5, r.R2)
	assert.Equal(t, 4.5, r.R3)
	assert.Equal(t, 4.5-500, r.R1)
	assert.Equal(t, 4.5+500, r.R4)
	assert.Equal(t, 200.0, r.RK2)
	assert.Equal(t, 200.0, r.RK3)

	//angles and torsions are periodic, the walls sit one period out
	r, err = HarmonicRestraint([]int{1, 2, 3, 4}, 60, 50)
	require.NoError(t, err)
	assert.Equal(t, 60-180.0, r.R1)
	assert.Equal(t, 60+180.0, r.R4)
}

func TestHarmonicRestraintRejectsBadAtoms(t *testing.T) {
	_, err := HarmonicRestraint([]int{1}, 0, 1)
	assert.Error(t, err)
	_, err = HarmonicRestraint([]int{1, 2, 3, 4, 5}, 0, 1)
	assert.Error(t, err)
	_, err = HarmonicRestraint([]int{0, 2}, 0, 1)
	assert.Error(t, err, "nmropt atom indexes are 1-based")
}

func TestNamelistFormat(t *testing.T) {
	r, err := HarmonicRestraint([]int{3, 5}, 2, 10)
	require.NoError(t, err)
	assert.Equal(t, " &rst iat=3,5 r1=-498 r2=2 r3=2 r4=502 rk2=10 rk3=10 / \n", r.Namelist())
}

func TestWriteRestraintFiles(t *testing.T) {
	dir := t.TempDir()
	centers := Windows(4, 2, 5)
	require.NoError(t, WriteRestraintFiles(dir, []int{3, 17}, centers, 200))
	for i, c := range centers {
		data, err := os.ReadFile(filepath.Join(dir, RestraintDir, fmt.Sprintf("r%d.RST", i)))
		require.NoError(t, err)
		lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
		require.Len(t, lines, 2, "title line plus one namelist")
		assert.Contains(t, lines[0], fmt.Sprintf("window %d", i))
		assert.Contains(t, lines[1], "&rst iat=3,17")
		assert.Contains(t, lines[1], fmt.Sprintf("r2=%g", c))
	}
}

func TestWriteRestraintFilesBadAtoms(t *testing.T) {
	dir := t.TempDir()
	err := WriteRestraintFiles(dir, []int{1}, Windows(2, 0, 1), 10)
	assert.Error(t, err)
}
