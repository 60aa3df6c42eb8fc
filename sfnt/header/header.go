// seehuhn.de/go/pdf - a library for reading and writing PDF files
// Copyright (C) 2022  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package header reads and writes the table directory of sfnt font files.
package header

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/CuteXiaoKe/pdf/sfnt/parser"
)

// These are the scaler types accepted by [Read].
const (
	ScalerTypeTrueType = 0x00010000
	ScalerTypeCFF      = 0x4F54544F
	ScalerTypeApple    = 0x74727565
)

// Info contains the table directory of an sfnt file.
type Info struct {
	ScalerType uint32
	Toc        map[string]Record
}

// Record gives the location of a table within the font file.
type Record struct {
	Offset uint32
	Length uint32
}

// Read reads the table directory of an sfnt font file.
func Read(r io.ReaderAt) (*Info, error) {
	var buf [16]byte
	_, err := r.ReadAt(buf[:6], 0)
	if err != nil {
		return nil, err
	}
	scalerType := uint32(buf[0])<<24 | uint32(buf[1])<<16 | uint32(buf[2])<<8 | uint32(buf[3])
	numTables := int(buf[4])<<8 | int(buf[5])

	if scalerType != ScalerTypeTrueType &&
		scalerType != ScalerTypeCFF &&
		scalerType != ScalerTypeApple {
		return nil, &parser.NotSupportedError{
			SubSystem: "sfnt/header",
			Feature:   fmt.Sprintf("scaler type 0x%x", scalerType),
		}
	}
	if numTables > 280 {
		return nil, &parser.InvalidFontError{
			SubSystem: "sfnt/header",
			Reason:    "too many tables",
		}
	}

	h := &Info{
		ScalerType: scalerType,
		Toc:        make(map[string]Record),
	}
	type alloc struct {
		Start uint32
		End   uint32
	}
	var coverage []alloc
	for i := range numTables {
		_, err := r.ReadAt(buf[:], int64(12+i*16))
		if err != nil {
			return nil, err
		}
		name := string(buf[:4])
		offset := uint32(buf[8])<<24 | uint32(buf[9])<<16 | uint32(buf[10])<<8 | uint32(buf[11])
		length := uint32(buf[12])<<24 | uint32(buf[13])<<16 | uint32(buf[14])<<8 | uint32(buf[15])
		if !isASCII(name) {
			continue
		}
		h.Toc[name] = Record{
			Offset: offset,
			Length: length,
		}
		if length > 0 {
			coverage = append(coverage, alloc{
				Start: offset,
				End:   offset + length,
			})
		}
	}
	if len(h.Toc) == 0 {
		return nil, errNoTables
	}
	if len(coverage) == 0 {
		return h, nil
	}

	// perform some sanity checks
	slices.SortFunc(coverage, func(a, b alloc) int {
		if c := cmp.Compare(a.Start, b.Start); c != 0 {
			return c
		}
		return cmp.Compare(a.End, b.End)
	})
	if coverage[0].Start < uint32(12+16*numTables) {
		return nil, invalid("invalid table offset")
	}
	for i := 1; i < len(coverage); i++ {
		if coverage[i-1].End > coverage[i].Start {
			return nil, invalid("overlapping tables")
		}
	}
	_, err = r.ReadAt(buf[:1], int64(coverage[len(coverage)-1].End)-1)
	if err == io.EOF {
		return nil, invalid("table extends beyond EOF")
	} else if err != nil {
		return nil, err
	}

	return h, nil
}

// Has returns true if all the named tables are present.
func (h *Info) Has(names ...string) bool {
	for _, name := range names {
		if _, ok := h.Toc[name]; !ok {
			return false
		}
	}
	return true
}

// Find returns the location of the named table.  If the table is not
// present, an error is returned for which [parser.IsMissing] is true.
func (h *Info) Find(tableName string) (Record, error) {
	rec, ok := h.Toc[tableName]
	if !ok {
		return rec, parser.MissingTable(tableName)
	}
	return rec, nil
}

// ReadTable returns the body of the named table.
func (h *Info) ReadTable(r io.ReaderAt, tableName string) ([]byte, error) {
	rec, err := h.Find(tableName)
	if err != nil {
		return nil, err
	}
	res := make([]byte, rec.Length)
	n, err := r.ReadAt(res, int64(rec.Offset))
	if n < len(res) && err != nil {
		return nil, err
	}
	return res[:n], nil
}

func invalid(reason string) error {
	return &parser.InvalidFontError{
		SubSystem: "sfnt/header",
		Reason:    reason,
	}
}

func isASCII(s string) bool {
	for _, c := range []byte(s) {
		if c < 32 || c > 126 {
			return false
		}
	}
	return true
}

var errNoTables = errors.New("sfnt/header: no tables found")
