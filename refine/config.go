/*
 * config.go, part of goxtal.
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

package refine

import (
	"os"

	"gopkg.in/yaml.v3"
)

//ParamsFromFile reads refinement settings from the YAML file name. Fields
//absent from the file keep their default values, so an empty file is a valid
//way to ask for the defaults. A parameters file looks like:
//
//	macrocycles: 5
//	labels: FW-F,FW-SIGF
//	extra:
//	  - refinement.main.ordered_solvent=true
func ParamsFromFile(name string) (*Params, error) {
	buf, err := os.ReadFile(name)
	if err != nil {
		return nil, Error{ErrBadParams, "", name, err.Error(), []string{"os.ReadFile", "ParamsFromFile"}, true}
	}
	Q := new(Params)
	Q.SetDefaults()
	if err := yaml.Unmarshal(buf, Q); err != nil {
		return nil, Error{ErrBadParams, "", name, err.Error(), []string{"yaml.Unmarshal", "ParamsFromFile"}, true}
	}
	if Q.Macrocycles <= 0 {
		return nil, Error{ErrBadParams, "", name, "macrocycles must be positive", []string{"ParamsFromFile"}, true}
	}
	return Q, nil
}
