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

package mtz

import "fmt"

//Error is the error type for the mtz package. It implements the goxtal
//Err interface.
type Error struct {
	message  string
	filename string //the mtz file with problems, or an empty string if none.
	deco     []string
	critical bool
}

func (err Error) Error() string {
	if err.filename == "" {
		return fmt.Sprintf("mtz error: %s", err.message)
	}
	return fmt.Sprintf("mtz file %s error: %s", err.filename, err.message)
}

func (err Error) Decorate(deco string) []string {
	//Even though this method does not use a pointer as a receiver, and tries to alter
	//the receiver, it should work, since err.deco is a slice, and hence a pointer itself.
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

func (err Error) FileName() string { return err.filename }

func (err Error) Critical() bool { return err.critical }

//Messages for the Error type.
const (
	ErrUnableToOpen  = "Unable to open file"
	ErrWrongMagic    = "Not an MTZ file"
	ErrBigEndian     = "Big-endian MTZ files are not supported"
	ErrTruncated     = "Truncated MTZ file"
	ErrBadHeader     = "Ill-formed MTZ header record"
	ErrCantWrite     = "Can't write MTZ file"
	ErrNoColumn      = "No column with the requested label"
	ErrNoReflections = "Dataset contains no reflections"
	ErrInconsistent  = "Inconsistent columns and records"
	ErrBadFraction   = "R-free fraction must be between 0 and 1"
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
