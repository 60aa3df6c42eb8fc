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
	"log/slog"

	"github.com/CuteXiaoKe/pdf/logging"
	"github.com/CuteXiaoKe/pdf/sfnt/parser"
)

// LookupMetaInfo contains information associated with a lookup but not
// specific to a subtable.
type LookupMetaInfo struct {
	LookupType       uint16
	LookupFlag       LookupFlags
	MarkFilteringSet uint16
}

// LookupFlags contains bits which modify application of a lookup to a glyph string.
// https://docs.microsoft.com/en-us/typography/opentype/spec/chapter2#lookupFlags
type LookupFlags uint16

// Bit values for LookupFlag.
const (
	LookupRightToLeft         LookupFlags = 0x0001
	LookupIgnoreBaseGlyphs    LookupFlags = 0x0002
	LookupIgnoreLigatures     LookupFlags = 0x0004
	LookupIgnoreMarks         LookupFlags = 0x0008
	LookupUseMarkFilteringSet LookupFlags = 0x0010
	LookupMarkAttachTypeMask  LookupFlags = 0xFF00
)

// LookupIndex enumerates lookups.
// It is used as an index into a LookupList.
type LookupIndex uint16

// LookupList contains the information from a Lookup List Table.
// https://docs.microsoft.com/en-us/typography/opentype/spec/chapter2#lookup-list-table
type LookupList []*LookupTable

// LookupTable represents a lookup table inside a "GPOS" table of a font.
// https://docs.microsoft.com/en-us/typography/opentype/spec/chapter2#lookup-table
type LookupTable struct {
	Meta      *LookupMetaInfo
	Subtables []Subtable
}

// Subtable represents a subtable of a "GPOS" lookup table.
type Subtable interface {
	EncodeLen() int
	Encode() []byte
}

// subtableReader decodes a subtable which starts at pos.  The parser is
// positioned at the start of the subtable when the function is called.
type subtableReader func(p *parser.Parser, pos int64, meta *LookupMetaInfo) (Subtable, error)

// EncodeLen returns the number of bytes required to encode the LookupTable.
func (li *LookupTable) EncodeLen() int {
	total := 6
	total += 2 * len(li.Subtables)
	if li.Meta.LookupFlag&LookupUseMarkFilteringSet != 0 {
		total += 2
	}
	for _, subtable := range li.Subtables {
		total += subtable.EncodeLen()
	}
	return total
}

// readLookupList reads a Lookup List Table.  A subtable which cannot be
// decoded is logged and left out; the other subtables of the lookup are
// still used.
func readLookupList(p *parser.Parser, pos int64, sr subtableReader) (LookupList, error) {
	err := p.SeekPos(pos)
	if err != nil {
		return nil, err
	}

	lookupCount, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	lookupPos, err := p.ReadOffsets(int(lookupCount), pos)
	if err != nil {
		return nil, err
	}

	res := make(LookupList, lookupCount)
	for i, lookupTablePos := range lookupPos {
		if lookupTablePos == 0 {
			return nil, p.Error("NULL lookup table offset")
		}
		err := p.SeekPos(lookupTablePos)
		if err != nil {
			return nil, err
		}
		buf, err := p.ReadBytes(6)
		if err != nil {
			return nil, err
		}
		lookupType := uint16(buf[0])<<8 | uint16(buf[1])
		lookupFlag := LookupFlags(buf[2])<<8 | LookupFlags(buf[3])
		subTableCount := int(buf[4])<<8 | int(buf[5])
		subtablePos, err := p.ReadOffsets(subTableCount, lookupTablePos)
		if err != nil {
			return nil, err
		}
		var markFilteringSet uint16
		if lookupFlag&LookupUseMarkFilteringSet != 0 {
			markFilteringSet, err = p.ReadUint16()
			if err != nil {
				return nil, err
			}
		}

		meta := &LookupMetaInfo{
			LookupType:       lookupType,
			LookupFlag:       lookupFlag,
			MarkFilteringSet: markFilteringSet,
		}

		var subtables []Subtable
		for j, stPos := range subtablePos {
			subtable, err := readSubtable(p, stPos, meta, sr)
			if err != nil {
				logging.Logger().Warn("skipping malformed subtable",
					slog.Int("lookup", i),
					slog.Int("subtable", j),
					slog.Int("type", int(meta.LookupType)),
					slog.Any("error", err))
				continue
			}
			subtables = append(subtables, subtable)
		}

		res[i] = &LookupTable{
			Meta:      meta,
			Subtables: subtables,
		}
	}
	return res, nil
}

func readSubtable(p *parser.Parser, pos int64, meta *LookupMetaInfo, sr subtableReader) (Subtable, error) {
	if pos == 0 {
		return nil, &parser.InvalidFontError{
			SubSystem: "sfnt/opentype/gtab",
			Reason:    "NULL subtable offset",
		}
	}
	err := p.SeekPos(pos)
	if err != nil {
		return nil, err
	}
	return sr(p, pos, meta)
}

func (info LookupList) encode() []byte {
	if info == nil {
		return nil
	}

	lookupCount := len(info)

	lookupOffsets := make([]int, lookupCount)
	pos := 2 + 2*lookupCount
	for i, li := range info {
		lookupOffsets[i] = pos
		pos += li.EncodeLen()
	}
	if lookupCount > 0 && lookupOffsets[lookupCount-1] > 0xFFFF {
		panic(fmt.Sprintf("lookup list too large (%d bytes)", pos))
	}

	res := make([]byte, 0, pos)
	res = append(res, byte(lookupCount>>8), byte(lookupCount))
	for i := range info {
		res = append(res, byte(lookupOffsets[i]>>8), byte(lookupOffsets[i]))
	}

	for _, li := range info {
		subTableCount := len(li.Subtables)
		res = append(res,
			byte(li.Meta.LookupType>>8), byte(li.Meta.LookupType),
			byte(li.Meta.LookupFlag>>8), byte(li.Meta.LookupFlag),
			byte(subTableCount>>8), byte(subTableCount))

		stPos := 6
		stPos += 2 * subTableCount
		if li.Meta.LookupFlag&LookupUseMarkFilteringSet != 0 {
			stPos += 2
		}
		for _, st := range li.Subtables {
			res = append(res, byte(stPos>>8), byte(stPos))
			stPos += st.EncodeLen()
		}
		if li.Meta.LookupFlag&LookupUseMarkFilteringSet != 0 {
			res = append(res,
				byte(li.Meta.MarkFilteringSet>>8), byte(li.Meta.MarkFilteringSet))
		}
		for _, st := range li.Subtables {
			res = append(res, st.Encode()...)
		}
	}
	return res
}
