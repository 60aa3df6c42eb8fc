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

package gtab

import (
	"fmt"

	"seehuhn.de/go/sfnt/glyph"

	"github.com/CuteXiaoKe/pdf/sfnt/opentype/anchor"
	"github.com/CuteXiaoKe/pdf/sfnt/opentype/coverage"
	"github.com/CuteXiaoKe/pdf/sfnt/opentype/markarray"
	"github.com/CuteXiaoKe/pdf/sfnt/parser"
)

// Gpos4_1 is a Mark-to-Base Attachment Positioning Subtable (format 1)
// https://docs.microsoft.com/en-us/typography/opentype/spec/gpos#lookup-type-4-mark-to-base-attachment-positioning-subtable
type Gpos4_1 struct {
	MarkCov    coverage.Table
	BaseCov    coverage.Table
	ClassCount uint16
	MarkArray  []markarray.Record // indexed by mark coverage index
	BaseArray  [][]*anchor.Table  // indexed by base coverage index, then by mark class
}

// Mark returns the mark record for gid, if gid is a mark glyph in this
// subtable.
func (l *Gpos4_1) Mark(gid glyph.ID) (markarray.Record, bool) {
	idx, ok := l.MarkCov[gid]
	if !ok || idx >= len(l.MarkArray) {
		return markarray.Record{}, false
	}
	return l.MarkArray[idx], true
}

// Base returns the anchors for gid, indexed by mark class, if gid is a
// base glyph in this subtable.  NULL anchors are nil.
func (l *Gpos4_1) Base(gid glyph.ID) ([]*anchor.Table, bool) {
	idx, ok := l.BaseCov[gid]
	if !ok || idx >= len(l.BaseArray) {
		return nil, false
	}
	return l.BaseArray[idx], true
}

func readGpos4_1(p *parser.Parser, subtablePos int64) (*Gpos4_1, error) {
	err := p.SeekPos(subtablePos)
	if err != nil {
		return nil, err
	}
	buf, err := p.ReadBytes(12)
	if err != nil {
		return nil, err
	}
	format := uint16(buf[0])<<8 | uint16(buf[1])
	if format != 1 {
		return nil, &parser.InvalidFontError{
			SubSystem: "sfnt/opentype/gtab",
			Reason:    fmt.Sprintf("invalid GPOS4 subtable format %d", format),
		}
	}
	markCoverageOffset := int64(buf[2])<<8 | int64(buf[3])
	baseCoverageOffset := int64(buf[4])<<8 | int64(buf[5])
	classCount := uint16(buf[6])<<8 | uint16(buf[7])
	markArrayOffset := int64(buf[8])<<8 | int64(buf[9])
	baseArrayOffset := int64(buf[10])<<8 | int64(buf[11])

	markCov, err := coverage.Read(p, subtablePos+markCoverageOffset)
	if err != nil {
		return nil, err
	}
	baseCov, err := coverage.Read(p, subtablePos+baseCoverageOffset)
	if err != nil {
		return nil, err
	}

	markArray, err := markarray.Read(p, subtablePos+markArrayOffset, len(markCov))
	if err != nil {
		return nil, err
	}
	if len(markCov) > len(markArray) {
		markCov.Prune(len(markArray))
	}

	baseArrayPos := subtablePos + baseArrayOffset
	err = p.SeekPos(baseArrayPos)
	if err != nil {
		return nil, err
	}
	baseCount, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	if int(baseCount) > len(baseCov) {
		baseCount = uint16(len(baseCov))
	} else {
		baseCov.Prune(int(baseCount))
	}
	numOffsets := int(baseCount) * int(classCount)
	if numOffsets > (65536-6-2)/2 {
		// Offsets are 16-bit from baseArrayPos, and there must still be
		// space for at least one anchor table.
		return nil, &parser.InvalidFontError{
			SubSystem: "sfnt/opentype/gtab",
			Reason:    "GPOS4.1 table too large",
		}
	}
	offsets, err := p.ReadOffsets(numOffsets, baseArrayPos)
	if err != nil {
		return nil, err
	}

	baseArray := make([][]*anchor.Table, baseCount)
	for i := range baseArray {
		row := make([]*anchor.Table, classCount)
		for j := range row {
			pos := offsets[i*int(classCount)+j]
			if pos == 0 {
				continue
			}
			a, err := anchor.Read(p, pos)
			if err != nil {
				return nil, err
			}
			row[j] = &a
		}
		baseArray[i] = row
	}

	return &Gpos4_1{
		MarkCov:    markCov,
		BaseCov:    baseCov,
		ClassCount: classCount,
		MarkArray:  markArray,
		BaseArray:  baseArray,
	}, nil
}

// Validate checks that every mark class is smaller than the class count,
// and that every base row has one entry per class.
func (l *Gpos4_1) Validate() error {
	for i, rec := range l.MarkArray {
		if rec.Class >= l.ClassCount {
			return &parser.InvalidFontError{
				SubSystem: "sfnt/opentype/gtab",
				Reason: fmt.Sprintf("mark %d has class %d, but only %d classes are defined",
					i, rec.Class, l.ClassCount),
			}
		}
	}
	for i, row := range l.BaseArray {
		if len(row) != int(l.ClassCount) {
			return &parser.InvalidFontError{
				SubSystem: "sfnt/opentype/gtab",
				Reason: fmt.Sprintf("base %d has %d anchors, expected %d",
					i, len(row), l.ClassCount),
			}
		}
	}
	return nil
}

// EncodeLen implements the Subtable interface.
func (l *Gpos4_1) EncodeLen() int {
	total := 12
	total += l.MarkCov.EncodeLen()
	total += l.BaseCov.EncodeLen()
	total += 2 + (4+6)*len(l.MarkArray)
	total += 2 + 2*len(l.BaseArray)*int(l.ClassCount)
	for _, row := range l.BaseArray {
		for j, rec := range row {
			if j < int(l.ClassCount) && rec != nil {
				total += 6
			}
		}
	}
	return total
}

// Encode implements the Subtable interface.
func (l *Gpos4_1) Encode() []byte {
	classCount := int(l.ClassCount)
	baseCount := len(l.BaseArray)

	total := 12
	markCoverageOffset := total
	total += l.MarkCov.EncodeLen()
	baseCoverageOffset := total
	total += l.BaseCov.EncodeLen()
	markArrayOffset := total
	total += 2 + (4+6)*len(l.MarkArray)
	baseArrayOffset := total

	res := make([]byte, 0, l.EncodeLen())
	res = append(res,
		0, 1, // posFormat
		byte(markCoverageOffset>>8), byte(markCoverageOffset),
		byte(baseCoverageOffset>>8), byte(baseCoverageOffset),
		byte(classCount>>8), byte(classCount),
		byte(markArrayOffset>>8), byte(markArrayOffset),
		byte(baseArrayOffset>>8), byte(baseArrayOffset),
	)
	res = append(res, l.MarkCov.Encode()...)
	res = append(res, l.BaseCov.Encode()...)
	res = markarray.Append(res, l.MarkArray)

	res = append(res, byte(baseCount>>8), byte(baseCount))
	offs := 2 + 2*baseCount*classCount
	for _, row := range l.BaseArray {
		for j := range classCount {
			if j >= len(row) || row[j] == nil {
				res = append(res, 0, 0)
				continue
			}
			res = append(res, byte(offs>>8), byte(offs))
			offs += 6
		}
	}
	for _, row := range l.BaseArray {
		for j := range classCount {
			if j < len(row) && row[j] != nil {
				res = row[j].Append(res)
			}
		}
	}
	return res
}
