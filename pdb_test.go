/*
 * pdb_test.go, part of goxtal.
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
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"gonum.org/v1/gonum/mat"
)

const samplePDB = `CRYST1   58.410   86.220   46.420  90.00  90.00  90.00 P 21 21 21    4
ATOM      1  N   MET A   1      27.340  24.430   2.614  1.00  9.67           N
ATOM      2  CA  MET A   1      26.266  25.413   2.842  1.00 10.38           C
ATOM      3  C   MET A   1      26.913  26.639   3.531  1.00 11.00           C
HETATM    4  O   HOH B   2      25.000  26.000   3.000  0.50 12.00           O
END
`

func TestPDBReaderRead(Te *testing.T) {
	S, err := PDBReaderRead(strings.NewReader(samplePDB))
	if err != nil {
		Te.Fatal(err)
	}
	if S.Len() != 4 {
		Te.Errorf("Expected 4 atoms, got %d", S.Len())
	}
	at := S.Atom(0)
	if at.Name != "N" || at.Molname != "MET" || at.Molname1 != 'M' || at.Chain != 'A' || at.Symbol != "N" {
		Te.Errorf("First atom read wrong: %+v", at)
	}
	if at.Id != 1 || at.Molid != 1 || at.Het {
		Te.Errorf("First atom read wrong: %+v", at)
	}
	x, y, z := S.Coord(0)
	if x != 27.340 || y != 24.430 || z != 2.614 {
		Te.Errorf("First coordinates read wrong: %4.3f %4.3f %4.3f", x, y, z)
	}
	if S.Bfactors[1] != 10.38 {
		Te.Errorf("B-factor read wrong: %4.2f", S.Bfactors[1])
	}
	het := S.Atom(3)
	if !het.Het || het.Chain != 'B' || het.Occupancy != 0.50 {
		Te.Errorf("HETATM record read wrong: %+v", het)
	}
	if S.Cell == nil {
		Te.Fatal("CRYST1 record not read")
	}
	if S.Cell.A != 58.410 || S.Cell.B != 86.220 || S.Cell.C != 46.420 {
		Te.Errorf("Cell lengths read wrong: %+v", S.Cell)
	}
	if S.Group.Symbol != "P 21 21 21" {
		Te.Errorf("Space group read wrong: %q", S.Group.Symbol)
	}
	fmt.Println("PDB reading complete", S.Len(), "atoms")
}

func TestPDBReadRejectsGarbage(Te *testing.T) {
	garbled := "ATOM      1  N   MET A   1      twenty  24.430   2.614  1.00  9.67\n"
	if _, err := PDBReaderRead(strings.NewReader(garbled)); err == nil {
		Te.Error("Expected an error for a garbled ATOM record")
	}
	if _, err := PDBReaderRead(strings.NewReader("REMARK nothing here\n")); err == nil {
		Te.Error("Expected an error for a PDB with no atoms")
	}
}

func TestPDBRoundTrip(Te *testing.T) {
	S, err := PDBReaderRead(strings.NewReader(samplePDB))
	if err != nil {
		Te.Fatal(err)
	}
	name := filepath.Join(Te.TempDir(), "out.pdb")
	if err := PDBWrite(name, S); err != nil {
		Te.Fatal(err)
	}
	S2, err := PDBRead(name)
	if err != nil {
		Te.Fatal(err)
	}
	if S2.Len() != S.Len() {
		Te.Fatalf("Atoms lost in round trip: %d vs %d", S2.Len(), S.Len())
	}
	if !mat.EqualApprox(S.Coords, S2.Coords, 1e-3) {
		Te.Error("Coordinates changed in round trip")
	}
	for i := 0; i < S.Len(); i++ {
		if S.Atom(i).Name != S2.Atom(i).Name || S.Atom(i).Molname != S2.Atom(i).Molname {
			Te.Errorf("Atom %d changed in round trip: %+v vs %+v", i, S.Atom(i), S2.Atom(i))
		}
	}
	if S2.Cell == nil || math.Abs(S2.Cell.A-S.Cell.A) > 1e-3 || S2.Group.Symbol != S.Group.Symbol {
		Te.Errorf("Cell changed in round trip: %+v %+v", S2.Cell, S2.Group)
	}
}

func TestPDBReadGzipped(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "sample.pdb.gz")
	f, err := os.Create(name)
	if err != nil {
		Te.Fatal(err)
	}
	w := gzip.NewWriter(f)
	if _, err := w.Write([]byte(samplePDB)); err != nil {
		Te.Fatal(err)
	}
	if err := w.Close(); err != nil {
		Te.Fatal(err)
	}
	if err := f.Close(); err != nil {
		Te.Fatal(err)
	}
	S, err := PDBRead(name)
	if err != nil {
		Te.Fatal(err)
	}
	if S.Len() != 4 {
		Te.Errorf("Expected 4 atoms from the gzipped file, got %d", S.Len())
	}
}

func TestSymbolFromName(Te *testing.T) {
	cases := map[string]string{
		"CA":   "C", //the alpha carbon, not calcium!
		"N":    "N",
		"OXT":  "O",
		"ZN":   "Zn",
		"FE":   "Fe",
		"HG21": "H",
		"1HB2": "H",
	}
	for name, want := range cases {
		got, err := symbolFromName(name)
		if err != nil || got != want {
			Te.Errorf("symbolFromName(%q) = %q, %v, want %q", name, got, err, want)
		}
	}
	if _, err := symbolFromName("XX"); err == nil {
		Te.Error("Expected an error for an unguessable name")
	}
}
