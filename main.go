/*
 * main.go, part of usprep
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
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
)

//Global variables... Sometimes, you gotta use'em
var verb int

//If v is true, prints the d arguments to stderr
//otherwise, does nothing.
func LogV(v int, vref int, d ...interface{}) {
	if v >= vref {
		fmt.Fprintln(os.Stderr, d...)
	}

}

func CErr(err error, info string) {
	if err != nil {
		log.Fatal(err, " ", info)
	}
}

//parseIAt reads a comma-separated list of 1-based atom indexes, as given
//to the -iat flag or an nmropt iat entry.
func parseIAt(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	fields := strings.Split(s, ",")
	iat := make([]int, 0, len(fields))
	for _, f := range fields {
		i, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, fmt.Errorf("bad atom index %q in %q", f, s)
		}
		iat = append(iat, i)
	}
	return iat, nil
}

func main() {
	//The flags mirror sander's own spelling where there is one (-i, -p, -g)
	//so a groupfile prepared here reads like the run it sets up.
	n := flag.Int("n", 0, "number of replicas to prepare")
	dir := flag.String("dir", ".", "working directory in which to build the run")
	control := flag.String("i", "mdin", "shared mdin (control) file name, as the engine should see it")
	topology := flag.String("p", "prmtop", "shared prmtop (topology) file name, as the engine should see it")
	group := flag.String("g", "groupfile", "name of the groupfile to write in the working directory")
	crd := flag.String("crd", "inpcrds", "name of the per-replica starting-coordinate directory")
	engine := flag.String("engine", "sander", "the AMBER engine the run is meant for (sander/pmemd, or an AMBER- alias)")
	cores := flag.Int("cores", 1, "cores per replica sub-job; more than 1 selects the .MPI engine build")
	conf := flag.String("conf", "", "optional command file (YAML) supplying any of the other options")
	verbose := flag.Int("verbose", 0, "Level of verbosity, the higher, the more verbose.")
	iat := flag.String("iat", "", "restrained atom indexes (comma-separated, 2=bond 3=angle 4=torsion); empty disables restraint output")
	rmin := flag.Float64("rmin", 0, "restraint center of the first umbrella window")
	rmax := flag.Float64("rmax", 0, "restraint center of the last umbrella window")
	rk := flag.Float64("rk", 0, "restraint force constant for every window")
	flag.Parse()
	verb = *verbose
	args := flag.Args()

	//Flags given on the command line always win over the command file,
	//which in turn wins over the built-in defaults.
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	cmd := &Command{}
	if *conf != "" {
		var err error
		cmd, err = ReadCommandFile(*conf)
		CErr(err, "reading the command file")
	}
	if !set["n"] && cmd.NReplicas != 0 {
		*n = cmd.NReplicas
	}
	if !set["dir"] && cmd.WorkDir != "" {
		*dir = cmd.WorkDir
	}
	if !set["i"] && cmd.Control != "" {
		*control = cmd.Control
	}
	if !set["p"] && cmd.Topology != "" {
		*topology = cmd.Topology
	}
	if !set["g"] && cmd.Groupfile != "" {
		*group = cmd.Groupfile
	}
	if !set["crd"] && cmd.CoordDir != "" {
		*crd = cmd.CoordDir
	}
	if !set["engine"] && cmd.Engine != "" {
		*engine = cmd.Engine
	}
	if !set["cores"] && cmd.SubjobCores != 0 {
		*cores = cmd.SubjobCores
	}

	structure := cmd.Structure
	if len(args) > 0 {
		structure = args[0]
	}
	if structure == "" {
		fmt.Printf("Use:\n  usprep [FLAGS] structurefile \n")
		log.Fatal("no starting-structure file given (positional argument or the command file's structure key)")
	}

	exe, err := ResolveEngine(*engine, *cores)
	CErr(err, "resolving the engine")
	LogV(verb, 1, "preparing a", exe, "run with", *n, "replicas")

	//The structure has to be an actual geometry before we link N replicas
	//at it, not just a file that happens to exist.
	atoms, err := ReadStructure(structure)
	CErr(err, "reading the starting structure")
	LogV(verb, 1, "starting structure", structure, "read:", atoms, "atoms")

	s := &Setup{
		Replicas:  *n,
		WorkDir:   *dir,
		CoordDir:  *crd,
		Control:   *control,
		Topology:  *topology,
		Structure: structure,
		Groupfile: *group,
	}
	CErr(s.Generate(), "generating the groupfile")
	LogV(verb, 1, "wrote", s.GroupfilePath(), "and", *n, "coordinate links under", *crd)

	//Umbrella-sampling restraints, one window per replica.
	rstAtoms := cmd.RestraintAtoms()
	if set["iat"] || *iat != "" {
		rstAtoms, err = parseIAt(*iat)
		CErr(err, "parsing -iat")
	}
	if len(rstAtoms) > 0 {
		lo, hi, k := cmd.RestraintRange()
		if set["rmin"] {
			lo = *rmin
		}
		if set["rmax"] {
			hi = *rmax
		}
		if set["rk"] {
			k = *rk
		}
		centers := Windows(*n, lo, hi)
		CErr(WriteRestraintFiles(*dir, rstAtoms, centers, k), "writing restraint files")
		LogV(verb, 1, "wrote", len(centers), "umbrella windows from", lo, "to", hi)
	}

	//Read our own output back at high verbosity. It is the same parse the
	//run-control side will do when it launches the replicas.
	if verb >= 2 {
		reps, err := ReadGroupfile(s.GroupfilePath())
		CErr(err, "re-reading the groupfile")
		for i, r := range reps {
			LogV(verb, 2, "replica", i, ":", r.String())
		}
	}
}
