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

// Package classdef reads and writes OpenType "Class Definition Tables".
// https://docs.microsoft.com/en-us/typography/opentype/spec/chapter2#classDefTbl
package classdef

import (
	"fmt"
	"slices"

	"seehuhn.de/go/sfnt/glyph"

	"github.com/CuteXiaoKe/pdf/sfnt/parser"
)

// Table contains the information from an OpenType "Class Definition Table".
// All glyphs not assigned to a class fall into Class 0.
type Table map[glyph.ID]uint16

// NumClasses returns the number of classes in the table.
// The count includes the zero class.
func (info Table) NumClasses() int {
	maxClass := uint16(0)
	for _, class := range info {
		maxClass = max(maxClass, class)
	}
	return int(maxClass) + 1
}

// Glyphs returns the glyphs for each non-zero class in the Table.
// The first entry of the returned slice, corresponding to class 0,
// is always nil.
func (info Table) Glyphs() [][]glyph.ID {
	numClasses := info.NumClasses()
	glyphs := make([][]glyph.ID, numClasses)
	for gid, cls := range info {
		if cls == 0 {
			continue
		}
		glyphs[cls] = append(glyphs[cls], gid)
	}
	for i := 1; i < numClasses; i++ {
		slices.Sort(glyphs[i])
	}
	return glyphs
}

// Read reads and decodes an OpenType "Class Definition Table".
func Read(p *parser.Parser, pos int64) (Table, error) {
	err := p.SeekPos(pos)
	if err != nil {
		return nil, err
	}

	format, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	switch format {
	case 1:
		data, err := p.ReadBytes(4)
		if err != nil {
			return nil, err
		}
		startGlyphID := glyph.ID(data[0])<<8 | glyph.ID(data[1])
		glyphCount := int(data[2])<<8 | int(data[3])
		if int(startGlyphID)+glyphCount-1 > 0xFFFF {
			return nil, &parser.InvalidFontError{
				SubSystem: "sfnt/opentype/classdef",
				Reason:    "glyph count too large in class definition table",
			}
		}

		res := make(Table, glyphCount)
		for i := range glyphCount {
			classValue, err := p.ReadUint16()
			if err != nil {
				return nil, err
			}
			if classValue != 0 {
				res[startGlyphID+glyph.ID(i)] = classValue
			}
		}
		return res, nil

	case 2:
		classRangeCount, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}

		res := Table{}
		var prevEnd glyph.ID
		for i := range int(classRangeCount) {
			data, err := p.ReadBytes(6)
			if err != nil {
				return nil, err
			}
			startGlyphID := glyph.ID(data[0])<<8 | glyph.ID(data[1])
			endGlyphID := glyph.ID(data[2])<<8 | glyph.ID(data[3])
			classValue := uint16(data[4])<<8 | uint16(data[5])

			if i > 0 && startGlyphID <= prevEnd {
				return nil, &parser.InvalidFontError{
					SubSystem: "sfnt/opentype/classdef",
					Reason:    "overlapping ranges in class definition table",
				}
			}
			prevEnd = endGlyphID

			if classValue != 0 {
				for j := int(startGlyphID); j <= int(endGlyphID); j++ {
					res[glyph.ID(j)] = classValue
				}
			}
		}
		return res, nil

	default:
		return nil, &parser.NotSupportedError{
			SubSystem: "sfnt/opentype/classdef",
			Feature:   fmt.Sprintf("class definition table format %d", format),
		}
	}
}

// Append appends the binary table representation to the given buffer.
// Format 2 is used, with one range per run of equal classes.
func (info Table) Append(buf []byte) []byte {
	gids := make([]glyph.ID, 0, len(info))
	for gid, cls := range info {
		if cls != 0 {
			gids = append(gids, gid)
		}
	}
	slices.Sort(gids)

	type segment struct {
		start, end glyph.ID
		class      uint16
	}
	var segs []segment
	for _, gid := range gids {
		cls := info[gid]
		if n := len(segs); n > 0 && segs[n-1].end+1 == gid && segs[n-1].class == cls {
			segs[n-1].end = gid
			continue
		}
		segs = append(segs, segment{start: gid, end: gid, class: cls})
	}

	buf = append(buf, 0, 2, byte(len(segs)>>8), byte(len(segs)))
	for _, seg := range segs {
		buf = append(buf,
			byte(seg.start>>8), byte(seg.start),
			byte(seg.end>>8), byte(seg.end),
			byte(seg.class>>8), byte(seg.class))
	}
	return buf
}
