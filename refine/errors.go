/*
 * errors.go, part of goxtal.
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
	"fmt"
	"strings"
)

//Error is the error type for the refine package. The program field names the
//refinement program involved and inputname the job the error belongs to.
type Error struct {
	message   string
	program   string
	inputname string
	info      string //any additional info, such as the error from the underlying call.
	deco      []string
	critical  bool
}

func (err Error) Error() string {
	s := fmt.Sprintf("refine error: %s. Program: %s, job: %s", err.message, err.program, err.inputname)
	if err.info != "" {
		s = s + ". Additional info: " + err.info
	}
	return s
}

func (err Error) Decorate(deco string) []string {
	//Even though this method does not use a pointer as a receiver, and tries to alter
	//the receiver, it should work, since err.deco is a slice, and hence a pointer itself.
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

func (err Error) Critical() bool { return err.critical }

//Program returns the name of the refinement program involved in the error.
func (err Error) Program() string { return err.program }

//InputName returns the name of the job the error belongs to.
func (err Error) InputName() string { return err.inputname }

//Decoration returns the decoration slice as a single string.
func (err Error) Decoration() string { return strings.Join(err.deco, "/") }

//Messages for the Error type.
const (
	ErrMissingInput = "Missing structure or reflection data"
	ErrCantInput    = "Can't build the input files"
	ErrNotRunning   = "Couldn't run or finish the refinement program"
	ErrNoInput      = "No input has been built for this handle"
	ErrNoOutput     = "Missing an output file from the refinement program"
	ErrNoStats      = "R values not found in the text"
	ErrNoGeometry   = "Couldn't read the refined structure"
	ErrNoData       = "Couldn't read the refined reflection data"
	ErrBadParams    = "Ill-formed refinement parameters"
)

type decorable interface {
	Decorate(string) []string
}

func errDecorate(err error, caller string) error {
	err2, ok := err.(decorable)
	if !ok {
		return err
	}
	err2.Decorate(caller)
	return err
}
