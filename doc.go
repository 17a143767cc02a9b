/*
 * doc.go, part of goxtal.
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

/*Package xtal is the main package of the goxtal library. It provides atom and structure
types for macromolecular crystallography, together with facilities for reading and writing
PDB coordinate files.


	**goxtal capabilities**


    Reads/writes PDB files, including the CRYST1 unit-cell record. Gzipped
	files are read transparently.

    Reads/writes CCP4 MTZ reflection files and assigns R-free test sets
	(subpackage mtz).

    Runs the phenix.refine program on a structure plus reflection data and
	parses the R-work/R-free quality metrics from its log (subpackage refine).

    Plots the refinement convergence against the macrocycle number
	(subpackage xplot).

Coordinates are kept in a gonum *mat.Dense with one row per atom, so the whole
gonum machinery is available for geometric work on them.

Some of the fundamental accessors in this package panic instead of returning
errors. Those panics are reserved for conditions where the program itself is
wrong, such as out-of-bounds indexing of an atom.
*/
package xtal
