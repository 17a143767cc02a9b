/*
 * pdb.go, part of goxtal.
 *
 * Copyright 2026 The goxtal developers
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package xtal

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"gonum.org/v1/gonum/mat"
)

//OpenFile opens the file name for reading. If the name ends in ".gz" the
//contents are decompressed transparently. The caller must Close the returned
//reader, which takes care of both the decompressor and the underlying file.
func OpenFile(name string) (io.ReadCloser, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, Error{ErrUnableToOpen, name, []string{"os.Open", "OpenFile"}, true}
	}
	if !strings.HasSuffix(name, ".gz") {
		return f, nil
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, Error{ErrUnableToOpen, name, []string{"gzip.NewReader", "OpenFile"}, true}
	}
	return &gzFile{gz, f}, nil
}

type gzFile struct {
	*gzip.Reader
	f *os.File
}

func (g *gzFile) Close() error {
	err := g.Reader.Close()
	err2 := g.f.Close()
	if err != nil {
		return err
	}
	return err2
}

//parseAtomLine parses a valid ATOM or HETATM record of a PDB file. It returns an
//Atom object with the info except for the coordinates and the b-factor, which are
//returned separately as a slice of 3 float64 and a float64, respectively.
func parseAtomLine(line string, contline int) (*Atom, []float64, float64, error) {
	if len(line) < 66 {
		return nil, nil, 0, Error{ErrBadPDBLine, "", []string{fmt.Sprintf("parseAtomLine: line %d too short", contline)}, true}
	}
	errs := make([]error, 7)
	coords := make([]float64, 3)
	atom := new(Atom)
	atom.Het = strings.HasPrefix(line, "HETATM")
	atom.Id, errs[0] = strconv.Atoi(strings.TrimSpace(line[6:11]))
	atom.Name = strings.TrimSpace(line[12:16])
	atom.Molname = strings.TrimSpace(line[17:20])
	atom.Molname1 = three2OneLetter[atom.Molname]
	atom.Chain = line[21]
	atom.Molid, errs[1] = strconv.Atoi(strings.TrimSpace(line[22:26]))
	coords[0], errs[2] = strconv.ParseFloat(strings.TrimSpace(line[30:38]), 64)
	coords[1], errs[3] = strconv.ParseFloat(strings.TrimSpace(line[38:46]), 64)
	coords[2], errs[4] = strconv.ParseFloat(strings.TrimSpace(line[46:54]), 64)
	atom.Occupancy, errs[5] = strconv.ParseFloat(strings.TrimSpace(line[54:60]), 64)
	var bfactor float64
	bfactor, errs[6] = strconv.ParseFloat(strings.TrimSpace(line[60:66]), 64)
	for _, err := range errs {
		if err != nil {
			return nil, nil, 0, Error{ErrBadPDBLine, "", []string{fmt.Sprintf("parseAtomLine: line %d: %s", contline, err.Error())}, true}
		}
	}
	//The element columns are optional, so no error checking here. If they are
	//absent or empty we guess the element from the atom name and, again, just
	//leave the symbol empty if the guess fails.
	if len(line) >= 78 {
		atom.Symbol = strings.TrimSpace(line[76:78])
	}
	if atom.Symbol == "" {
		atom.Symbol, _ = symbolFromName(atom.Name)
	}
	if atom.Symbol != "" {
		atom.Mass = symbolMass[atom.Symbol]
	}
	return atom, coords, bfactor, nil
}

//parseCryst1 parses a CRYST1 record into a unit cell and a space group symbol.
func parseCryst1(line string) (*UnitCell, SpaceGroup, error) {
	var group SpaceGroup
	if len(line) < 54 {
		return nil, group, Error{ErrBadCryst, "", []string{"parseCryst1"}, true}
	}
	fields := [6]string{line[6:15], line[15:24], line[24:33], line[33:40], line[40:47], line[47:54]}
	values := [6]float64{}
	for i, v := range fields {
		val, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, group, Error{ErrBadCryst, "", []string{"parseCryst1: " + err.Error()}, true}
		}
		values[i] = val
	}
	cell, err := NewUnitCell(values[0], values[1], values[2], values[3], values[4], values[5])
	if err != nil {
		return nil, group, errDecorate(err, "parseCryst1")
	}
	if len(line) >= 66 {
		group.Symbol = strings.TrimSpace(line[55:66])
	}
	return cell, group, nil
}

//PDBRead reads the atomic entries of the PDB file name and returns them as a
//Structure. Only the first model of a multi-model file is read. Gzipped files
//(".pdb.gz") are decompressed on the fly.
func PDBRead(name string) (*Structure, error) {
	file, err := OpenFile(name)
	if err != nil {
		return nil, errDecorate(err, "PDBRead")
	}
	defer file.Close()
	S, err := PDBReaderRead(file)
	if err != nil {
		err2, ok := err.(Error)
		if ok {
			err2.filename = name
			return nil, err2
		}
		return nil, err
	}
	return S, nil
}

//PDBReaderRead reads a PDB from any io.Reader. Only the first model is read.
func PDBReaderRead(in io.Reader) (*Structure, error) {
	atoms := make([]*Atom, 0, 100)
	coords := make([]float64, 0, 300)
	bfactors := make([]float64, 0, 100)
	var cell *UnitCell
	var group SpaceGroup
	pdb := bufio.NewReader(in)
	contline := 0
	for {
		line, err := pdb.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			break
		}
		contline++
		if len(line) < 6 {
			continue
		}
		switch {
		case strings.HasPrefix(line, "ATOM") || strings.HasPrefix(line, "HETATM"):
			atom, c, bfac, err := parseAtomLine(line, contline)
			if err != nil {
				return nil, errDecorate(err, "PDBReaderRead")
			}
			atoms = append(atoms, atom)
			coords = append(coords, c...)
			bfactors = append(bfactors, bfac)
		case strings.HasPrefix(line, "CRYST1"):
			var err error
			cell, group, err = parseCryst1(line)
			if err != nil {
				return nil, errDecorate(err, "PDBReaderRead")
			}
		case strings.HasPrefix(line, "ENDMDL"):
			//refined models carry a single set of coordinates, so we
			//keep only the first one of whatever we are given.
			goto done
		}
	}
done:
	if len(atoms) == 0 {
		return nil, Error{ErrNoCoordinates, "", []string{"PDBReaderRead"}, true}
	}
	S, err := NewStructure(atoms, mat.NewDense(len(atoms), 3, coords), bfactors)
	if err != nil {
		return nil, errDecorate(err, "PDBReaderRead")
	}
	S.Cell = cell
	S.Group = group
	return S, nil
}

//PDBWrite writes the structure S to a PDB file with the name pdbname, including a
//CRYST1 record when S carries a unit cell. The file is overwritten if it exists.
func PDBWrite(pdbname string, S *Structure) error {
	out, err := os.Create(pdbname)
	if err != nil {
		return Error{ErrUnableToOpen, pdbname, []string{"os.Create", "PDBWrite"}, true}
	}
	defer out.Close()
	if err := PDBWriterWrite(out, S); err != nil {
		err2, ok := err.(Error)
		if ok {
			err2.filename = pdbname
			return err2
		}
		return err
	}
	return nil
}

//PDBWriterWrite writes the structure S in PDB format to any io.Writer.
func PDBWriterWrite(out io.Writer, S *Structure) error {
	if S == nil {
		return Error{ErrNilData, "", []string{"PDBWriterWrite"}, true}
	}
	if err := S.Corrupted(); err != nil {
		return errDecorate(err, "PDBWriterWrite")
	}
	fmt.Fprint(out, "REMARK     WRITTEN WITH GOXTAL :-)\n")
	if S.Cell != nil {
		symbol := S.Group.Symbol
		if symbol == "" {
			symbol = "P 1"
		}
		fmt.Fprintf(out, "CRYST1%9.3f%9.3f%9.3f%7.2f%7.2f%7.2f %-11s%4d\n",
			S.Cell.A, S.Cell.B, S.Cell.C, S.Cell.Alpha, S.Cell.Beta, S.Cell.Gamma, symbol, 1)
	}
	chainprev := S.Atoms[0].Chain //to know when the chain changes.
	for i, at := range S.Atoms {
		if at.Chain != chainprev {
			fmt.Fprintln(out, "TER")
			chainprev = at.Chain
		}
		first := "ATOM"
		if at.Het {
			first = "HETATM"
		}
		x, y, z := S.Coord(i)
		var err error
		if len(at.Name) < 4 {
			_, err = fmt.Fprintf(out, "%-6s%5d  %-3s %3s %1c%4d    %8.3f%8.3f%8.3f%6.2f%6.2f          %2s\n",
				first, at.Id, at.Name, at.Molname, at.Chain, at.Molid, x, y, z, at.Occupancy, S.Bfactors[i], at.Symbol)
		} else if len(at.Name) == 4 {
			_, err = fmt.Fprintf(out, "%-6s%5d %4s %3s %1c%4d    %8.3f%8.3f%8.3f%6.2f%6.2f          %2s\n",
				first, at.Id, at.Name, at.Molname, at.Chain, at.Molid, x, y, z, at.Occupancy, S.Bfactors[i], at.Symbol)
		} else {
			err = Error{ErrCantWritePDB, "", []string{fmt.Sprintf("PDBWriterWrite: atom %d name too long", at.Id)}, true}
		}
		if err != nil {
			return errDecorate(err, "PDBWriterWrite")
		}
	}
	fmt.Fprint(out, "END\n")
	return nil
}
