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

// Package markarray reads and writes OpenType "Mark Array Tables".
// https://docs.microsoft.com/en-us/typography/opentype/spec/gpos#mark-array-table
package markarray

import (
	"github.com/CuteXiaoKe/pdf/sfnt/opentype/anchor"
	"github.com/CuteXiaoKe/pdf/sfnt/parser"
)

// Record is a mark record in a Mark Array Table.
type Record struct {
	Class uint16
	anchor.Table
}

// Read reads a Mark Array Table from the given parser.
// If there are more than numMarks entries in the table, the remaining entries
// are ignored.  Anchor offsets are relative to the start of the mark array.
func Read(p *parser.Parser, pos int64, numMarks int) ([]Record, error) {
	err := p.SeekPos(pos)
	if err != nil {
		return nil, err
	}

	markCount, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	count := min(int(markCount), numMarks)

	res := make([]Record, count)
	offsets := make([]int64, count)
	for i := range count {
		res[i].Class, err = p.ReadUint16()
		if err != nil {
			return nil, err
		}
		offs, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		offsets[i] = pos + int64(offs)
	}

	for i, offs := range offsets {
		res[i].Table, err = anchor.Read(p, offs)
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Append appends the binary representation of the mark array to buf.
func Append(buf []byte, records []Record) []byte {
	n := len(records)
	buf = append(buf, byte(n>>8), byte(n))
	anchorPos := 2 + 4*n
	for _, rec := range records {
		buf = append(buf,
			byte(rec.Class>>8), byte(rec.Class),
			byte(anchorPos>>8), byte(anchorPos))
		anchorPos += 6
	}
	for _, rec := range records {
		buf = rec.Table.Append(buf)
	}
	return buf
}
