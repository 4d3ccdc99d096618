/*
 * groupfile.go, part of usprep
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
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

//A Setup describes one multi-replica run to prepare: N replicas sharing a
//control file and a topology, each starting from its own coordinate file.
//The zero value is not usable; at least Replicas and Structure must be set.
type Setup struct {
	Replicas  int
	WorkDir   string //defaults to "."
	CoordDir  string //directory for the per-replica coordinate links, defaults to "inpcrds"
	Control   string //mdin file name as the engine should see it
	Topology  string //prmtop file name as the engine should see it
	Structure string //path to the shared starting-structure file
	Groupfile string //groupfile name, defaults to "groupfile"
	Mode      string //sander overwrite mode flag, defaults to "-O"
}

func (s *Setup) workdir() string {
	if s.WorkDir == "" {
		return "."
	}
	return s.WorkDir
}

func (s *Setup) coorddir() string {
	if s.CoordDir == "" {
		return "inpcrds"
	}
	return s.CoordDir
}

func (s *Setup) mode() string {
	if s.Mode == "" {
		return "-O"
	}
	return s.Mode
}

//GroupfilePath returns the path of the groupfile Generate writes.
func (s *Setup) GroupfilePath() string {
	name := s.Groupfile
	if name == "" {
		name = "groupfile"
	}
	return filepath.Join(s.workdir(), name)
}

//CoordName returns the name of the ith replica's coordinate link, r<i>
//plus the extension of the shared structure file.
func (s *Setup) CoordName(i int) string {
	return fmt.Sprintf("r%d%s", i, filepath.Ext(s.Structure))
}

//Line returns the groupfile line for the ith replica. The coordinate path
//is always '/'-joined: the groupfile is engine input, not an OS path.
func (s *Setup) Line(i int) string {
	return fmt.Sprintf("%s -i %s -p %s -c %s/%s", s.mode(), s.Control, s.Topology, s.coorddir(), s.CoordName(i))
}

//Validate checks the preconditions for Generate. It performs no writes, so
//a Setup that fails validation leaves the working directory untouched.
func (s *Setup) Validate() error {
	if s.Replicas < 1 {
		return fmt.Errorf("replica count must be at least 1, got %d", s.Replicas)
	}
	if s.Control == "" || s.Topology == "" {
		return fmt.Errorf("control and topology file names must both be given")
	}
	f, err := os.Open(s.Structure)
	if err != nil {
		return fmt.Errorf("shared starting structure: %w", err)
	}
	return f.Close()
}

//Generate prepares the run: it ensures the coordinate directory exists,
//creates any missing per-replica coordinate links, and (re)writes the
//groupfile. Coordinate links that already exist are never touched, so a
//replica whose starting structure was replaced by hand keeps it across
//re-runs. The groupfile itself is always rewritten in full, atomically.
func (s *Setup) Generate() error {
	if err := s.Validate(); err != nil {
		return err
	}
	cdir := filepath.Join(s.workdir(), s.coorddir())
	if err := os.MkdirAll(cdir, 0755); err != nil {
		return fmt.Errorf("coordinate directory: %w", err)
	}
	target, err := linkTarget(cdir, s.Structure)
	if err != nil {
		return err
	}
	for i := 0; i < s.Replicas; i++ {
		name := filepath.Join(cdir, s.CoordName(i))
		if _, err := linkIfAbsent(name, target); err != nil {
			return fmt.Errorf("coordinate link for replica %d: %w", i, err)
		}
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %d replicas sharing %s and %s; each starts from its own coordinates under %s/\n",
		s.Replicas, s.Control, s.Topology, s.coorddir())
	for i := 0; i < s.Replicas; i++ {
		buf.WriteString(s.Line(i))
		buf.WriteByte('\n')
	}
	if err := writeFileAtomic(s.GroupfilePath(), buf.Bytes()); err != nil {
		return fmt.Errorf("groupfile: %w", err)
	}
	return nil
}

//linkTarget returns the path a link created inside dir should point at so
//that it resolves to src. Relative when possible, so the whole working tree
//can be moved; absolute when the two live on unrelated roots.
func linkTarget(dir, src string) (string, error) {
	absSrc, err := filepath.Abs(src)
	if err != nil {
		return "", err
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(absDir, absSrc)
	if err != nil {
		return absSrc, nil
	}
	return rel, nil
}

//linkIfAbsent is the create-if-absent primitive behind the idempotence
//guarantee: if anything already sits at name (link, file, directory), it is
//left alone and false is returned; otherwise a symlink to target is created.
func linkIfAbsent(name, target string) (created bool, err error) {
	if _, err := os.Lstat(name); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, err
	}
	if err := os.Symlink(target, name); err != nil {
		return false, err
	}
	return true, nil
}

//writeFileAtomic writes data to a temporary file next to path and renames
//it into place, so a reader never sees a half-written file.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Chmod(name, 0644); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return err
	}
	return nil
}

//Replica holds the engine arguments of one groupfile line.
type Replica struct {
	Mode   string //-O or -A
	Mdin   string //-i
	Prmtop string //-p
	Inpcrd string //-c
	Restrt string //-r, optional
	Mdout  string //-o, optional
	Mdcrd  string //-x, optional
	Refc   string //-ref, optional
}

func (r *Replica) String() string {
	return fmt.Sprintf("%s -i %s -p %s -c %s", r.Mode, r.Mdin, r.Prmtop, r.Inpcrd)
}

//takesValue maps each recognized sander argument flag to the Replica field
//it fills. -O/-A stand alone and are handled separately.
var takesValue = map[string]func(*Replica, string){
	"-i":   func(r *Replica, v string) { r.Mdin = v },
	"-p":   func(r *Replica, v string) { r.Prmtop = v },
	"-c":   func(r *Replica, v string) { r.Inpcrd = v },
	"-r":   func(r *Replica, v string) { r.Restrt = v },
	"-o":   func(r *Replica, v string) { r.Mdout = v },
	"-x":   func(r *Replica, v string) { r.Mdcrd = v },
	"-ref": func(r *Replica, v string) { r.Refc = v },
}

//ParseGroupfile reads an AMBER groupfile, one replica per line. Comment
//lines (#) and blank lines are skipped. Each replica line must at least
//name its mdin, prmtop and starting coordinates.
func ParseGroupfile(rd io.Reader) ([]*Replica, error) {
	var reps []*Replica
	scanner := bufio.NewScanner(rd)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		r := &Replica{}
		for i := 0; i < len(fields); i++ {
			switch f := fields[i]; f {
			case "-O", "-A":
				r.Mode = f
			default:
				setter, ok := takesValue[f]
				if !ok {
					return nil, fmt.Errorf("line %d: unknown argument %q", lineno, f)
				}
				if i+1 >= len(fields) {
					return nil, fmt.Errorf("line %d: argument %q is missing its value", lineno, f)
				}
				i++
				setter(r, fields[i])
			}
		}
		if r.Mdin == "" || r.Prmtop == "" || r.Inpcrd == "" {
			return nil, fmt.Errorf("line %d: a replica needs at least -i, -p and -c", lineno)
		}
		reps = append(reps, r)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return reps, nil
}

//ReadGroupfile is ParseGroupfile on a file.
func ReadGroupfile(path string) ([]*Replica, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseGroupfile(f)
}
