/*
 * atomicdata.go, part of goxtal.
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

import "fmt"

//A map for assigning mass to elements.
//Note that just common "bio-elements" are present.
var symbolMass = map[string]float64{
	"H":  1.0,
	"C":  12.01,
	"O":  16.00,
	"N":  14.01,
	"P":  30.97,
	"S":  32.06,
	"Se": 78.96,
	"K":  39.1,
	"Ca": 40.08,
	"Mg": 24.30,
	"Cl": 35.45,
	"Na": 22.99,
	"Cu": 63.55,
	"Zn": 65.38,
	"Co": 58.93,
	"Fe": 55.84,
	"Mn": 54.94,
}

//A map between the 3-letter names for aminoacidic residues and the corresponding 1-letter names.
var three2OneLetter = map[string]byte{
	"SER": 'S',
	"THR": 'T',
	"ASN": 'N',
	"GLN": 'Q',
	"SEC": 'U', //Selenocysteine!
	"CYS": 'C',
	"GLY": 'G',
	"PRO": 'P',
	"ALA": 'A',
	"VAL": 'V',
	"ILE": 'I',
	"LEU": 'L',
	"MET": 'M',
	"PHE": 'F',
	"TYR": 'Y',
	"TRP": 'W',
	"ARG": 'R',
	"HIS": 'H',
	"LYS": 'K',
	"ASP": 'D',
	"GLU": 'E',
}

//symbolFromName tries to guess a chemical element symbol from a PDB atom name.
//It only deals with some common bio-elements, which is enough for the files
//phenix.refine produces for macromolecules.
func symbolFromName(name string) (string, error) {
	if len(name) == 4 || (len(name) > 0 && name[0] == 'H') {
		return "H", nil //only Hs seem to get 4-character names
	}
	switch name {
	case "CU":
		return "Cu", nil
	case "CO":
		return "Co", nil
	case "CL":
		return "Cl", nil
	case "NA":
		return "Na", nil
	case "SE":
		return "Se", nil
	case "ZN":
		return "Zn", nil
	case "MG":
		return "Mg", nil
	case "MN":
		return "Mn", nil
	case "FE":
		return "Fe", nil
	}
	if len(name) > 0 {
		switch name[0] {
		case 'C', 'N', 'O', 'P', 'S':
			return string(name[0]), nil
		}
	}
	return "", fmt.Errorf("Couldn't guess a symbol from the PDB name %s", name)
}
