/*
 * mtz.go, part of goxtal.
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

//Package mtz reads and writes reflection data in the CCP4 MTZ binary format,
//which is what phenix.refine consumes and produces. Only merged, single-dataset
//files are handled: one block of float32 records plus the ASCII header that
//describes them. That is all the refinement wrapper needs.
package mtz

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	xtal "github.com/xtalgo/goxtal"
)

//An MTZ file is addressed in 4-byte words. The reflection records start, by
//convention, at word 21, right after the 80-byte location block.
const dataStart = 21

//the machine stamp for IEEE floats and little-endian integers.
var littleStamp = [4]byte{0x44, 0x41, 0x00, 0x00}

//Column describes one column of the reflection records: a label, such as
//"F-obs", and the one-character CCP4 column type (H for Miller indices,
//F for amplitudes, Q for standard deviations, I for integer flags).
type Column struct {
	Label string
	Type  byte
}

//DataSet holds the contents of an MTZ file: the column layout, one float32
//record per reflection, and the crystallographic frame the data belong to.
type DataSet struct {
	Title   string
	Cell    *xtal.UnitCell
	Group   xtal.SpaceGroup
	Columns []Column
	Data    [][]float32
}

//Len returns the number of reflections in the dataset.
func (D *DataSet) Len() int {
	return len(D.Data)
}

//ColIndex returns the index of the column labeled label, or an error if there
//is no such column.
func (D *DataSet) ColIndex(label string) (int, error) {
	for i, col := range D.Columns {
		if col.Label == label {
			return i, nil
		}
	}
	return -1, Error{ErrNoColumn, "", []string{"ColIndex: " + label}, true}
}

//Col returns a copy of the values of the column labeled label.
func (D *DataSet) Col(label string) ([]float32, error) {
	i, err := D.ColIndex(label)
	if err != nil {
		return nil, errDecorate(err, "Col")
	}
	vals := make([]float32, D.Len())
	for j, rec := range D.Data {
		vals[j] = rec[i]
	}
	return vals, nil
}

//AddCol appends a column with the given label and type, filling the new last
//field of every record with the corresponding element of vals.
func (D *DataSet) AddCol(label string, ctype byte, vals []float32) error {
	if len(vals) != D.Len() {
		return Error{ErrInconsistent, "", []string{fmt.Sprintf("AddCol: %d values for %d reflections", len(vals), D.Len())}, true}
	}
	D.Columns = append(D.Columns, Column{label, ctype})
	for i := range D.Data {
		D.Data[i] = append(D.Data[i], vals[i])
	}
	return nil
}

//Corrupted checks that every record has exactly one field per column.
func (D *DataSet) Corrupted() error {
	for i, rec := range D.Data {
		if len(rec) != len(D.Columns) {
			return Error{ErrInconsistent, "", []string{fmt.Sprintf("Corrupted: record %d", i)}, true}
		}
	}
	return nil
}

//NewDataSet builds a dataset with the standard layout the refinement wrapper
//writes: H, K, L index columns plus an "F-obs" amplitude column and a
//"SIGF-obs" sigma column. All slices must have the same length.
func NewDataSet(h, k, l []int, amplitudes, sigmas []float64, cell *xtal.UnitCell, group xtal.SpaceGroup) (*DataSet, error) {
	n := len(h)
	if len(k) != n || len(l) != n || len(amplitudes) != n || len(sigmas) != n {
		return nil, Error{ErrInconsistent, "", []string{"NewDataSet"}, true}
	}
	if n == 0 {
		return nil, Error{ErrNoReflections, "", []string{"NewDataSet"}, true}
	}
	D := &DataSet{
		Title: "goxtal reflection data",
		Cell:  cell,
		Group: group,
		Columns: []Column{
			{"H", 'H'}, {"K", 'H'}, {"L", 'H'},
			{"F-obs", 'F'}, {"SIGF-obs", 'Q'},
		},
	}
	D.Data = make([][]float32, n)
	for i := 0; i < n; i++ {
		D.Data[i] = []float32{float32(h[i]), float32(k[i]), float32(l[i]),
			float32(amplitudes[i]), float32(sigmas[i])}
	}
	return D, nil
}

//resolutionRange returns the lowest and highest 1/d^2 among the reflections,
//or zeroes if the cell or the index columns are missing.
func (D *DataSet) resolutionRange() (float64, float64) {
	if D.Cell == nil {
		return 0, 0
	}
	hi, err1 := D.ColIndex("H")
	ki, err2 := D.ColIndex("K")
	li, err3 := D.ColIndex("L")
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, 0
	}
	min := math.Inf(1)
	max := math.Inf(-1)
	for _, rec := range D.Data {
		s := D.Cell.InvResSq(int(rec[hi]), int(rec[ki]), int(rec[li]))
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
	}
	if math.IsInf(min, 1) {
		return 0, 0
	}
	return min, max
}

//Write writes the dataset in MTZ format to the file name, overwriting it if
//it exists.
func (D *DataSet) Write(name string) error {
	if err := D.Corrupted(); err != nil {
		return errDecorate(err, "Write")
	}
	if len(D.Columns) == 0 || D.Len() == 0 {
		return Error{ErrNoReflections, name, []string{"Write"}, true}
	}
	f, err := os.Create(name)
	if err != nil {
		return Error{ErrUnableToOpen, name, []string{"os.Create", "Write"}, true}
	}
	defer f.Close()
	out := bufio.NewWriter(f)
	ncol := len(D.Columns)
	nref := D.Len()
	//the location block: magic word, 1-based word index of the first header
	//record, machine stamp, padding up to the data start.
	out.WriteString("MTZ ")
	headerpos := int32(dataStart + ncol*nref)
	binary.Write(out, binary.LittleEndian, headerpos)
	out.Write(littleStamp[:])
	out.Write(make([]byte, (dataStart-1)*4-12))
	for _, rec := range D.Data {
		if err := binary.Write(out, binary.LittleEndian, rec); err != nil {
			return Error{ErrCantWrite, name, []string{"binary.Write", "Write"}, true}
		}
	}
	symbol := D.Group.Symbol
	if symbol == "" {
		symbol = "P 1"
	}
	writeRecord(out, "VERS MTZ:V1.1")
	writeRecord(out, "TITLE "+D.Title)
	writeRecord(out, fmt.Sprintf("NCOL %8d %12d %8d", ncol, nref, 0))
	if D.Cell != nil {
		writeRecord(out, fmt.Sprintf("CELL  %9.4f %9.4f %9.4f %9.4f %9.4f %9.4f",
			D.Cell.A, D.Cell.B, D.Cell.C, D.Cell.Alpha, D.Cell.Beta, D.Cell.Gamma))
	}
	writeRecord(out, "SORT    1   2   3   0   0")
	writeRecord(out, fmt.Sprintf("SYMINF %3d %2d %c %5d %22s %5s", 1, 1, symbol[0], D.Group.Number,
		"'"+symbol+"'", "PG1"))
	writeRecord(out, "SYMM X,  Y,  Z")
	smin, smax := D.resolutionRange()
	writeRecord(out, fmt.Sprintf("RESO %-20.12f %-20.12f", smin, smax))
	writeRecord(out, "VALM NAN")
	for _, col := range D.Columns {
		cmin, cmax := D.colRange(col.Label)
		writeRecord(out, fmt.Sprintf("COLUMN %-30s %c %17.4f %17.4f    1", col.Label, col.Type, cmin, cmax))
	}
	writeRecord(out, "NDIF        1")
	writeRecord(out, "PROJECT       1 goxtal")
	writeRecord(out, "CRYSTAL       1 goxtal")
	writeRecord(out, "DATASET       1 data")
	if D.Cell != nil {
		writeRecord(out, fmt.Sprintf("DCELL         1 %10.4f%10.4f%10.4f%10.4f%10.4f%10.4f",
			D.Cell.A, D.Cell.B, D.Cell.C, D.Cell.Alpha, D.Cell.Beta, D.Cell.Gamma))
	}
	writeRecord(out, "DWAVEL        1    1.00000")
	writeRecord(out, "END")
	writeRecord(out, "MTZENDOFHEADERS")
	if err := out.Flush(); err != nil {
		return Error{ErrCantWrite, name, []string{"bufio.Flush", "Write"}, true}
	}
	return nil
}

func (D *DataSet) colRange(label string) (float64, float64) {
	i, err := D.ColIndex(label)
	if err != nil {
		return 0, 0
	}
	min := math.Inf(1)
	max := math.Inf(-1)
	for _, rec := range D.Data {
		v := float64(rec[i])
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

//header records are 80 characters of ASCII, padded with blanks.
func writeRecord(out io.Writer, rec string) {
	if len(rec) > 80 {
		rec = rec[:80]
	}
	fmt.Fprintf(out, "%-80s", rec)
}

//Read reads the MTZ file name and returns its contents as a DataSet.
func Read(name string) (*DataSet, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, Error{ErrUnableToOpen, name, []string{"os.Open", "Read"}, true}
	}
	defer f.Close()
	magic := make([]byte, 4)
	if _, err := io.ReadFull(f, magic); err != nil {
		return nil, Error{ErrTruncated, name, []string{"Read"}, true}
	}
	if string(magic) != "MTZ " {
		return nil, Error{ErrWrongMagic, name, []string{"Read"}, true}
	}
	var headerpos int32
	if err := binary.Read(f, binary.LittleEndian, &headerpos); err != nil {
		return nil, Error{ErrTruncated, name, []string{"binary.Read", "Read"}, true}
	}
	stamp := make([]byte, 4)
	if _, err := io.ReadFull(f, stamp); err != nil {
		return nil, Error{ErrTruncated, name, []string{"Read"}, true}
	}
	//the high nibble of the first stamp byte gives the float format.
	//4 means IEEE little-endian, which is the only one we support.
	if stamp[0]>>4 != 4 {
		return nil, Error{ErrBigEndian, name, []string{"Read"}, true}
	}
	D := new(DataSet)
	var ncol, nref int
	if _, err := f.Seek(int64(headerpos-1)*4, 0); err != nil {
		return nil, Error{ErrTruncated, name, []string{"os.File.Seek", "Read"}, true}
	}
	rec := make([]byte, 80)
	for {
		if _, err := io.ReadFull(f, rec); err != nil {
			return nil, Error{ErrBadHeader, name, []string{"Read: header has no END record"}, true}
		}
		fields := strings.Fields(string(rec))
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "END" || fields[0] == "MTZENDOFHEADERS" {
			break
		}
		if err := D.parseHeaderRecord(string(rec), fields, &ncol, &nref); err != nil {
			err2 := err.(Error)
			err2.filename = name
			return nil, err2
		}
	}
	if ncol != len(D.Columns) {
		return nil, Error{ErrBadHeader, name, []string{fmt.Sprintf("Read: NCOL says %d columns, header lists %d", ncol, len(D.Columns))}, true}
	}
	if _, err := f.Seek((dataStart-1)*4, 0); err != nil {
		return nil, Error{ErrTruncated, name, []string{"os.File.Seek", "Read"}, true}
	}
	raw := make([]float32, ncol*nref)
	if err := binary.Read(f, binary.LittleEndian, raw); err != nil {
		return nil, Error{ErrTruncated, name, []string{"binary.Read", "Read"}, true}
	}
	D.Data = make([][]float32, nref)
	for i := 0; i < nref; i++ {
		D.Data[i] = raw[i*ncol : (i+1)*ncol : (i+1)*ncol]
	}
	return D, nil
}

//parseHeaderRecord fills D from one 80-character header record. Records we
//don't care about (SORT, SYMM, RESO, the dataset hierarchy) are skipped.
func (D *DataSet) parseHeaderRecord(rec string, fields []string, ncol, nref *int) error {
	var err error
	switch fields[0] {
	case "TITLE":
		D.Title = strings.TrimSpace(rec[6:])
	case "NCOL":
		if len(fields) < 3 {
			return Error{ErrBadHeader, "", []string{"parseHeaderRecord: NCOL"}, true}
		}
		*ncol, err = strconv.Atoi(fields[1])
		if err != nil {
			return Error{ErrBadHeader, "", []string{"parseHeaderRecord: NCOL: " + err.Error()}, true}
		}
		*nref, err = strconv.Atoi(fields[2])
		if err != nil {
			return Error{ErrBadHeader, "", []string{"parseHeaderRecord: NCOL: " + err.Error()}, true}
		}
	case "CELL":
		if len(fields) < 7 {
			return Error{ErrBadHeader, "", []string{"parseHeaderRecord: CELL"}, true}
		}
		v := make([]float64, 6)
		for i := 0; i < 6; i++ {
			v[i], err = strconv.ParseFloat(fields[i+1], 64)
			if err != nil {
				return Error{ErrBadHeader, "", []string{"parseHeaderRecord: CELL: " + err.Error()}, true}
			}
		}
		D.Cell, err = xtal.NewUnitCell(v[0], v[1], v[2], v[3], v[4], v[5])
		if err != nil {
			return Error{ErrBadHeader, "", []string{"parseHeaderRecord: CELL: " + err.Error()}, true}
		}
	case "SYMINF":
		if len(fields) >= 5 {
			D.Group.Number, _ = strconv.Atoi(fields[4])
		}
		//the space group symbol is quoted and may contain blanks.
		if i := strings.IndexByte(rec, '\''); i >= 0 {
			if j := strings.IndexByte(rec[i+1:], '\''); j >= 0 {
				D.Group.Symbol = strings.TrimSpace(rec[i+1 : i+1+j])
			}
		}
	case "COLUMN":
		if len(fields) < 3 || len(fields[2]) != 1 {
			return Error{ErrBadHeader, "", []string{"parseHeaderRecord: COLUMN"}, true}
		}
		D.Columns = append(D.Columns, Column{fields[1], fields[2][0]})
	}
	return nil
}
