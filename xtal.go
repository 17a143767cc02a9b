/*
 * xtal.go, part of goxtal.
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

	"gonum.org/v1/gonum/mat"
)

//Atom contains the data for an atom read from a PDB file, except for the coordinates
//and the b-factor, which are kept separately in the Structure.
type Atom struct {
	Name      string
	Id        int
	Molname   string
	Molname1  byte //the one-letter name for residues and nucleotides
	Molid     int
	Chain     byte
	Occupancy float64
	Mass      float64
	Symbol    string
	Het       bool //is it a HETATM record?
}

//Copy returns a copy of the Atom object.
func (A *Atom) Copy() *Atom {
	if A == nil {
		panic("Attempted to copy a nil atom")
	}
	newat := new(Atom)
	*newat = *A
	return newat
}

//UnitCell holds the crystallographic unit-cell parameters. Lengths are in
//Angstrom and angles in degrees.
type UnitCell struct {
	A     float64
	B     float64
	C     float64
	Alpha float64
	Beta  float64
	Gamma float64
}

//NewUnitCell returns a UnitCell with the given parameters. It returns an error
//if any length is non-positive or any angle outside (0,180).
func NewUnitCell(a, b, c, alpha, beta, gamma float64) (*UnitCell, error) {
	u := &UnitCell{a, b, c, alpha, beta, gamma}
	for _, v := range []float64{a, b, c} {
		if v <= 0 {
			return nil, Error{fmt.Sprintf("Non-positive cell length: %4.2f", v), "", []string{"NewUnitCell"}, true}
		}
	}
	for _, v := range []float64{alpha, beta, gamma} {
		if v <= 0 || v >= 180 {
			return nil, Error{fmt.Sprintf("Cell angle out of range: %4.2f", v), "", []string{"NewUnitCell"}, true}
		}
	}
	return u, nil
}

//Volume returns the unit-cell volume in cubic Angstrom, for any crystal system.
func (u *UnitCell) Volume() float64 {
	ca := math.Cos(u.Alpha * math.Pi / 180)
	cb := math.Cos(u.Beta * math.Pi / 180)
	cg := math.Cos(u.Gamma * math.Pi / 180)
	return u.A * u.B * u.C * math.Sqrt(1-ca*ca-cb*cb-cg*cg+2*ca*cb*cg)
}

//InvResSq returns 1/d^2 for the reflection with Miller indices h,k,l, using the
//general triclinic expression. d is the resolution of the reflection in Angstrom.
func (u *UnitCell) InvResSq(h, k, l int) float64 {
	ca := math.Cos(u.Alpha * math.Pi / 180)
	cb := math.Cos(u.Beta * math.Pi / 180)
	cg := math.Cos(u.Gamma * math.Pi / 180)
	sa := math.Sin(u.Alpha * math.Pi / 180)
	sb := math.Sin(u.Beta * math.Pi / 180)
	sg := math.Sin(u.Gamma * math.Pi / 180)
	hf, kf, lf := float64(h), float64(k), float64(l)
	v := u.Volume()
	t := hf * hf * u.B * u.B * u.C * u.C * sa * sa
	t += kf * kf * u.A * u.A * u.C * u.C * sb * sb
	t += lf * lf * u.A * u.A * u.B * u.B * sg * sg
	t += 2 * hf * kf * u.A * u.B * u.C * u.C * (ca*cb - cg)
	t += 2 * kf * lf * u.A * u.A * u.B * u.C * (cb*cg - ca)
	t += 2 * hf * lf * u.A * u.B * u.B * u.C * (ca*cg - cb)
	return t / (v * v)
}

//SpaceGroup identifies a crystallographic space group by its Hermann-Mauguin
//symbol, e.g. "P 21 21 21", and, when known, its number in the International
//Tables. A zero Number means the number was not available in the source file.
type SpaceGroup struct {
	Symbol string
	Number int
}

//Structure contains the atoms of a macromolecular model, their coordinates as an
//Nx3 gonum matrix, the per-atom b-factors, and the crystallographic frame read
//from the CRYST1 record, if present.
type Structure struct {
	Atoms    []*Atom
	Coords   *mat.Dense
	Bfactors []float64
	Cell     *UnitCell
	Group    SpaceGroup
}

//NewStructure makes a Structure from atoms, coordinates and b-factors, and returns
//it. It returns an error if atoms or coords are nil, or if they are inconsistent.
func NewStructure(atoms []*Atom, coords *mat.Dense, bfactors []float64) (*Structure, error) {
	if atoms == nil || coords == nil {
		return nil, Error{ErrNilData, "", []string{"NewStructure"}, true}
	}
	S := &Structure{Atoms: atoms, Coords: coords, Bfactors: bfactors}
	if err := S.Corrupted(); err != nil {
		return nil, errDecorate(err, "NewStructure")
	}
	return S, nil
}

//Len returns the number of atoms in the structure.
func (S *Structure) Len() int {
	return len(S.Atoms)
}

//Atom returns the Atom corresponding to the index i. Panics if out of range.
func (S *Structure) Atom(i int) *Atom {
	if i >= S.Len() {
		panic("Structure: Requested Atom out of bounds")
	}
	return S.Atoms[i]
}

//Coord returns the x, y, z coordinates of the ith atom. Panics if out of range.
func (S *Structure) Coord(i int) (float64, float64, float64) {
	if i >= S.Len() {
		panic("Structure: Requested coordinates out of bounds")
	}
	return S.Coords.At(i, 0), S.Coords.At(i, 1), S.Coords.At(i, 2)
}

//Copy returns a deep copy of the structure, including coordinates and cell.
func (S *Structure) Copy() *Structure {
	if err := S.Corrupted(); err != nil {
		panic(err.Error()) //copying a corrupted structure means the program is wrong.
	}
	n := new(Structure)
	n.Atoms = make([]*Atom, S.Len())
	for key, val := range S.Atoms {
		n.Atoms[key] = val.Copy()
	}
	n.Coords = mat.DenseCopyOf(S.Coords)
	n.Bfactors = make([]float64, len(S.Bfactors))
	copy(n.Bfactors, S.Bfactors)
	if S.Cell != nil {
		cell := *S.Cell
		n.Cell = &cell
	}
	n.Group = S.Group
	return n
}

//Corrupted checks whether the structure is corrupted, i.e. the coordinates don't
//match the number of atoms, or the coordinate matrix doesn't have 3 columns.
//Missing b-factors are not considered corruption and are filled with zeroes.
func (S *Structure) Corrupted() error {
	if S.Coords == nil {
		return Error{ErrNoCoordinates, "", []string{"Corrupted"}, true}
	}
	r, c := S.Coords.Dims()
	if r != S.Len() || c != 3 {
		return Error{ErrInconsistent, "", []string{"Corrupted"}, true}
	}
	if S.Bfactors == nil {
		S.Bfactors = make([]float64, S.Len())
	}
	if len(S.Bfactors) < S.Len() {
		S.Bfactors = append(S.Bfactors, make([]float64, S.Len()-len(S.Bfactors))...)
	}
	return nil
}
