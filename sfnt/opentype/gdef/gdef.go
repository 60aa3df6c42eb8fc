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

// Package gdef reads and writes the OpenType "Glyph Definition Table".
// https://docs.microsoft.com/en-us/typography/opentype/spec/gdef
package gdef

import (
	"fmt"

	"github.com/CuteXiaoKe/pdf/sfnt/opentype/classdef"
	"github.com/CuteXiaoKe/pdf/sfnt/opentype/coverage"
	"github.com/CuteXiaoKe/pdf/sfnt/parser"
)

// Table contains the parts of the GDEF table which are used for glyph
// positioning.
type Table struct {
	GlyphClass      classdef.Table
	MarkAttachClass classdef.Table
	MarkGlyphSets   []coverage.Table
}

// Possible values for the GlyphClass field.
const (
	GlyphClassBase      = 1
	GlyphClassLigature  = 2
	GlyphClassMark      = 3
	GlyphClassComponent = 4
)

// Read reads the GDEF table.
// Attachment point lists, ligature caret lists, and item variation
// stores are skipped.
func Read(r parser.ReadSeekSizer) (*Table, error) {
	p := parser.New("GDEF", r)
	buf, err := p.ReadBytes(12)
	if err != nil {
		return nil, err
	}
	majorVersion := uint16(buf[0])<<8 | uint16(buf[1])
	minorVersion := uint16(buf[2])<<8 | uint16(buf[3])
	if majorVersion != 1 || (minorVersion != 0 && minorVersion != 2 && minorVersion != 3) {
		return nil, &parser.NotSupportedError{
			SubSystem: "sfnt/opentype/gdef",
			Feature:   fmt.Sprintf("GDEF table version %d.%d", majorVersion, minorVersion),
		}
	}
	glyphClassDefOffset := uint16(buf[4])<<8 | uint16(buf[5])
	markAttachClassDefOffset := uint16(buf[10])<<8 | uint16(buf[11])
	var markGlyphSetsDefOffset uint16
	if minorVersion >= 2 {
		markGlyphSetsDefOffset, err = p.ReadUint16()
		if err != nil {
			return nil, err
		}
	}

	table := &Table{}

	if glyphClassDefOffset != 0 {
		table.GlyphClass, err = classdef.Read(p, int64(glyphClassDefOffset))
		if err != nil {
			return nil, err
		}
	}

	if markAttachClassDefOffset != 0 {
		table.MarkAttachClass, err = classdef.Read(p, int64(markAttachClassDefOffset))
		if err != nil {
			return nil, err
		}
	}

	if markGlyphSetsDefOffset != 0 {
		table.MarkGlyphSets, err = readMarkGlyphSets(p, int64(markGlyphSetsDefOffset))
		if err != nil {
			return nil, err
		}
	}

	return table, nil
}

func readMarkGlyphSets(p *parser.Parser, pos int64) ([]coverage.Table, error) {
	err := p.SeekPos(pos)
	if err != nil {
		return nil, err
	}
	format, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	if format != 1 {
		return nil, &parser.NotSupportedError{
			SubSystem: "sfnt/opentype/gdef",
			Feature:   fmt.Sprintf("mark glyph sets format %d", format),
		}
	}
	count, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	offsets := make([]int64, count)
	for i := range offsets {
		offs, err := p.ReadUint32()
		if err != nil {
			return nil, err
		}
		offsets[i] = pos + int64(offs)
	}

	res := make([]coverage.Table, count)
	for i, offs := range offsets {
		res[i], err = coverage.Read(p, offs)
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Encode returns the binary representation of the table.
// Version 1.2 is used if mark glyph sets are present, 1.0 otherwise.
func (table *Table) Encode() []byte {
	headerLen := 12
	minor := byte(0)
	if table.MarkGlyphSets != nil {
		headerLen = 14
		minor = 2
	}
	buf := make([]byte, headerLen)
	buf[1] = 1
	buf[3] = minor

	if table.GlyphClass != nil {
		putOffset(buf[4:], len(buf))
		buf = table.GlyphClass.Append(buf)
	}
	if table.MarkAttachClass != nil {
		putOffset(buf[10:], len(buf))
		buf = table.MarkAttachClass.Append(buf)
	}
	if table.MarkGlyphSets != nil {
		start := len(buf)
		putOffset(buf[12:], start)
		n := len(table.MarkGlyphSets)
		buf = append(buf, 0, 1, byte(n>>8), byte(n))
		buf = append(buf, make([]byte, 4*n)...)
		for i, cov := range table.MarkGlyphSets {
			offs := len(buf) - start
			o := start + 4 + 4*i
			buf[o] = byte(offs >> 24)
			buf[o+1] = byte(offs >> 16)
			buf[o+2] = byte(offs >> 8)
			buf[o+3] = byte(offs)
			buf = append(buf, cov.Encode()...)
		}
	}
	return buf
}

func putOffset(buf []byte, offs int) {
	buf[0] = byte(offs >> 8)
	buf[1] = byte(offs)
}
