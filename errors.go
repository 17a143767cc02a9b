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

package xtal

import "fmt"

//Err is the interface for errors that all packages in this library implement. The Decorate
//method allows to add and retrieve info from the error, without changing its type or
//wrapping it around something else. The decoration slice should contain a list of the
//functions in the calling stack, plus, for each function, any relevant information, or
//nothing. If information is added to an element of the slice, it should be in the format
//"FunctionName: Extra info".
type Err interface {
	Error() string
	Decorate(string) []string
	Critical() bool
}

//Error is the concrete error type for the xtal package.
type Error struct {
	message  string
	filename string //the file with problems, or an empty string if none.
	deco     []string
	critical bool
}

func (err Error) Error() string {
	if err.filename == "" {
		return fmt.Sprintf("xtal error: %s", err.message)
	}
	return fmt.Sprintf("xtal file %s error: %s", err.filename, err.message)
}

//Decorate appends deco to the decoration slice and returns the slice. If deco is empty,
//it just returns the current slice.
func (err Error) Decorate(deco string) []string {
	//Even though this method does not use a pointer as a receiver, and tries to alter
	//the receiver, it should work, since err.deco is a slice, and hence a pointer itself.
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

//FileName returns the name of the file with problems, if any.
func (err Error) FileName() string { return err.filename }

func (err Error) Critical() bool { return err.critical }

//Messages for the Error type. These are the only values the message field can take.
const (
	ErrUnableToOpen  = "Unable to open file"
	ErrBadPDBLine    = "Ill-formed ATOM/HETATM record"
	ErrBadCryst      = "Ill-formed CRYST1 record"
	ErrNilData       = "nil structure or coordinates given"
	ErrInconsistent  = "Inconsistent atoms and coordinates"
	ErrCantWritePDB  = "Can't write PDB record"
	ErrNoCoordinates = "Structure contains no coordinates"
)

//errDecorate decorates err with the caller name if err implements the Err interface,
//and returns it unchanged otherwise.
func errDecorate(err error, caller string) error {
	err2, ok := err.(Err)
	if !ok {
		return err
	}
	err2.Decorate(caller)
	return err2
}
