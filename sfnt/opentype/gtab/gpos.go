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

// Package gtab reads the "GPOS" table of OpenType fonts and implements
// mark-to-base glyph positioning.
package gtab

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/CuteXiaoKe/pdf/logging"
	"github.com/CuteXiaoKe/pdf/sfnt/opentype/gdef"
	"github.com/CuteXiaoKe/pdf/sfnt/parser"
)

// Lookup types which are recognised in GPOS tables.
const (
	gposMarkToBase = 4
	gposExtension  = 9
)

// Info contains the information from a "GPOS" table.
type Info struct {
	Features FeatureListInfo
	Lookups  LookupList

	// MarkToBase lists the mark-to-base lookups, in lookup list order.
	MarkToBase []*MarkToBaseLookup
}

// ReadGPOS reads a "GPOS" table.  The glyph classes from gdefTable, if
// not nil, are used to implement the lookup flags.
//
// Lookups of types other than 4 are kept in the lookup list, but are not
// applied.  Subtables which cannot be decoded are logged and skipped.
func ReadGPOS(r parser.ReadSeekSizer, gdefTable *gdef.Table) (*Info, error) {
	p := parser.New("GPOS", r)

	buf, err := p.ReadBytes(10)
	if err != nil {
		return nil, err
	}
	majorVersion := uint16(buf[0])<<8 | uint16(buf[1])
	minorVersion := uint16(buf[2])<<8 | uint16(buf[3])
	scriptListOffset := uint32(buf[4])<<8 | uint32(buf[5])
	featureListOffset := uint32(buf[6])<<8 | uint32(buf[7])
	lookupListOffset := uint32(buf[8])<<8 | uint32(buf[9])
	if majorVersion != 1 || minorVersion > 1 {
		return nil, &parser.NotSupportedError{
			SubSystem: "sfnt/opentype/gtab",
			Feature:   fmt.Sprintf("GPOS table version %d.%d", majorVersion, minorVersion),
		}
	}
	endOfHeader := uint32(10)
	var featureVariationsOffset uint32
	if minorVersion == 1 {
		featureVariationsOffset, err = p.ReadUint32()
		if err != nil {
			return nil, err
		}
		endOfHeader += 4
	}

	fileSize := p.Size()
	for _, offset := range []uint32{
		scriptListOffset,
		featureListOffset,
		lookupListOffset,
		featureVariationsOffset,
	} {
		if 0 < offset && offset < endOfHeader || int64(offset) > fileSize {
			return nil, &parser.InvalidFontError{
				SubSystem: "sfnt/opentype/gtab",
				Reason:    "GPOS header has invalid offset",
			}
		}
	}

	info := &Info{}
	if featureListOffset != 0 {
		info.Features, err = readFeatureList(p, int64(featureListOffset))
		if err != nil {
			return nil, err
		}
	}
	if lookupListOffset != 0 {
		info.Lookups, err = readLookupList(p, int64(lookupListOffset), readGposSubtable)
		if err != nil {
			return nil, err
		}
	}

	for i, lookup := range info.Lookups {
		if lookup.Meta.LookupType == gposExtension {
			unwrapExtension(LookupIndex(i), lookup)
		}
		if lookup.Meta.LookupType != gposMarkToBase {
			continue
		}

		l := &MarkToBaseLookup{
			Index: LookupIndex(i),
			Meta:  lookup.Meta,
			Keep:  MakeFilter(lookup.Meta, gdefTable),
		}
		for _, st := range lookup.Subtables {
			if st, ok := st.(*Gpos4_1); ok {
				l.Subtables = append(l.Subtables, st)
			}
		}
		info.MarkToBase = append(info.MarkToBase, l)
	}

	return info, nil
}

// readGposSubtable reads a GPOS subtable.
// This function can be used as the subtableReader argument to readLookupList().
func readGposSubtable(p *parser.Parser, pos int64, meta *LookupMetaInfo) (Subtable, error) {
	switch meta.LookupType {
	case gposMarkToBase:
		return readGpos4_1(p, pos)
	case gposExtension:
		return readExtensionSubtable(p, pos)
	default:
		format, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		logging.Logger().Debug("GPOS lookup type not supported",
			slog.Int("type", int(meta.LookupType)),
			slog.Int("format", int(format)))
		return &notImplementedGposSubtable{
			lookupType: meta.LookupType,
			format:     format,
		}, nil
	}
}

// extensionSubtable holds a subtable which was stored in an extension
// positioning subtable (lookup type 9).
type extensionSubtable struct {
	extensionType uint16
	Subtable
}

// https://docs.microsoft.com/en-us/typography/opentype/spec/gpos#lookuptype-9-extension-positioning
func readExtensionSubtable(p *parser.Parser, subtablePos int64) (Subtable, error) {
	buf, err := p.ReadBytes(8)
	if err != nil {
		return nil, err
	}
	format := uint16(buf[0])<<8 | uint16(buf[1])
	extensionLookupType := uint16(buf[2])<<8 | uint16(buf[3])
	extensionOffset := int64(buf[4])<<24 | int64(buf[5])<<16 | int64(buf[6])<<8 | int64(buf[7])
	if format != 1 || extensionLookupType == gposExtension {
		return nil, &parser.InvalidFontError{
			SubSystem: "sfnt/opentype/gtab",
			Reason:    "invalid extension subtable",
		}
	}

	pos := subtablePos + extensionOffset
	err = p.SeekPos(pos)
	if err != nil {
		return nil, err
	}
	meta := &LookupMetaInfo{LookupType: extensionLookupType}
	inner, err := readGposSubtable(p, pos, meta)
	if err != nil {
		return nil, err
	}
	return &extensionSubtable{
		extensionType: extensionLookupType,
		Subtable:      inner,
	}, nil
}

// unwrapExtension replaces the extension subtables of a lookup by the
// subtables they contain.  All subtables of a lookup must have the same
// type; subtables of a different type than the first one are dropped.
func unwrapExtension(idx LookupIndex, lookup *LookupTable) {
	var lookupType uint16
	var subtables []Subtable
	for _, st := range lookup.Subtables {
		ext, ok := st.(*extensionSubtable)
		if !ok {
			continue
		}
		if lookupType == 0 {
			lookupType = ext.extensionType
		} else if ext.extensionType != lookupType {
			logging.Logger().Warn("skipping extension subtable with inconsistent type",
				slog.Int("lookup", int(idx)),
				slog.Int("type", int(ext.extensionType)),
				slog.Int("expected", int(lookupType)))
			continue
		}
		subtables = append(subtables, ext.Subtable)
	}
	if lookupType != 0 {
		lookup.Meta.LookupType = lookupType
	}
	lookup.Subtables = subtables
}

// notImplementedGposSubtable stands in for a subtable of an unsupported
// lookup type.  [Info.Encode] leaves such lookups out.
type notImplementedGposSubtable struct {
	lookupType uint16
	format     uint16
}

func (st *notImplementedGposSubtable) EncodeLen() int {
	msg := fmt.Sprintf("GPOS lookup type %d, format %d not implemented",
		st.lookupType, st.format)
	panic(msg)
}

func (st *notImplementedGposSubtable) Encode() []byte {
	msg := fmt.Sprintf("GPOS lookup type %d, format %d not implemented",
		st.lookupType, st.format)
	panic(msg)
}

// Encode returns the binary representation of a GPOS table (version 1.0)
// which contains the feature list and the lookup list.  No script list
// is written.
//
// Lookups which contain subtables of unsupported types are left out, and
// the lookup indices in the feature list are renumbered to match.
func (info *Info) Encode() []byte {
	lookupList, featureList := info.encodable()
	features := featureList.encode()
	lookups := lookupList.encode()

	featureListOffset := 0
	if features != nil {
		featureListOffset = 10
	}
	lookupListOffset := 0
	if lookups != nil {
		lookupListOffset = 10 + len(features)
	}
	if lookupListOffset > 0xFFFF {
		panic("GPOS feature list too large")
	}

	res := make([]byte, 0, 10+len(features)+len(lookups))
	res = append(res,
		0, 1, // majorVersion
		0, 0, // minorVersion
		0, 0, // scriptListOffset
		byte(featureListOffset>>8), byte(featureListOffset),
		byte(lookupListOffset>>8), byte(lookupListOffset),
	)
	res = append(res, features...)
	res = append(res, lookups...)
	return res
}

// encodable returns the lookups which can be encoded, together with a
// feature list which refers to the new lookup indices.
func (info *Info) encodable() (LookupList, FeatureListInfo) {
	newIndex := make(map[LookupIndex]LookupIndex, len(info.Lookups))
	var lookups LookupList
	for i, lookup := range info.Lookups {
		if slices.ContainsFunc(lookup.Subtables, isUnsupported) {
			continue
		}
		newIndex[LookupIndex(i)] = LookupIndex(len(lookups))
		lookups = append(lookups, lookup)
	}
	if len(lookups) == len(info.Lookups) {
		return info.Lookups, info.Features
	}

	var features FeatureListInfo
	if info.Features != nil {
		features = make(FeatureListInfo, len(info.Features))
	}
	for i, f := range info.Features {
		var idx []LookupIndex
		for _, old := range f.Lookups {
			if k, ok := newIndex[old]; ok {
				idx = append(idx, k)
			}
		}
		features[i] = &Feature{Tag: f.Tag, Lookups: idx}
	}
	return lookups, features
}

func isUnsupported(st Subtable) bool {
	_, ok := st.(*notImplementedGposSubtable)
	return ok
}

// FindLookups returns the indices of the lookups used by the given
// features, in lookup list order.
func (info *Info) FindLookups(features map[string]bool) []LookupIndex {
	seen := make(map[LookupIndex]bool)
	for _, f := range info.Features {
		if !features[f.Tag] {
			continue
		}
		for _, idx := range f.Lookups {
			if int(idx) < len(info.Lookups) {
				seen[idx] = true
			}
		}
	}
	var res []LookupIndex
	for i := range info.Lookups {
		if seen[LookupIndex(i)] {
			res = append(res, LookupIndex(i))
		}
	}
	return res
}

// Apply applies all mark-to-base lookups, in lookup list order, to the
// glyphs between run.Idx and run.End.
func (info *Info) Apply(run *Run) error {
	return info.apply(run, info.MarkToBase)
}

// ApplyFeatures applies the mark-to-base lookups used by the given
// features, in lookup list order, to the glyphs between run.Idx and
// run.End.
func (info *Info) ApplyFeatures(run *Run, features map[string]bool) error {
	use := make(map[LookupIndex]bool)
	for _, idx := range info.FindLookups(features) {
		use[idx] = true
	}
	var lookups []*MarkToBaseLookup
	for _, l := range info.MarkToBase {
		if use[l.Index] {
			lookups = append(lookups, l)
		}
	}
	return info.apply(run, lookups)
}

func (info *Info) apply(run *Run, lookups []*MarkToBaseLookup) error {
	start := run.Idx
	for _, l := range lookups {
		run.Idx = start
		err := l.ApplyLookup(run)
		if err != nil {
			return err
		}
	}
	run.Idx = max(run.End, start)
	return nil
}
