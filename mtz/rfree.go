/*
 * rfree.go, part of goxtal.
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

package mtz

import "math/rand"

//Column labels used for the R-free test set in the two common conventions.
const (
	PhenixFlagLabel = "R-free-flags"
	CCP4FlagLabel   = "FreeR_flag"
)

//AddRFree draws approximately the given fraction of the reflections into the
//R-free test set and appends the corresponding integer flag column to D.
//With ccp4Convention false the column is named "R-free-flags" and test-set
//reflections carry a 1 (the phenix convention); with it true the column is
//named "FreeR_flag" and test-set reflections carry a 0, everything else a 1.
//Assignment is random, as refinement R-free flags must be.
func AddRFree(D *DataSet, fraction float64, ccp4Convention bool) error {
	if fraction <= 0 || fraction >= 1 {
		return Error{ErrBadFraction, "", []string{"AddRFree"}, true}
	}
	if D.Len() == 0 {
		return Error{ErrNoReflections, "", []string{"AddRFree"}, true}
	}
	label := PhenixFlagLabel
	free, work := float32(1), float32(0)
	if ccp4Convention {
		label = CCP4FlagLabel
		free, work = 0, 1
	}
	flags := make([]float32, D.Len())
	for i := range flags {
		if rand.Float64() < fraction {
			flags[i] = free
		} else {
			flags[i] = work
		}
	}
	if err := D.AddCol(label, 'I', flags); err != nil {
		return errDecorate(err, "AddRFree")
	}
	return nil
}
