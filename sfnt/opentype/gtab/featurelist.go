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
	"github.com/CuteXiaoKe/pdf/sfnt/parser"
)

// FeatureListInfo lists the features of a "GPOS" table, in file order.
// Different script and language systems may use the same tag more than
// once.
type FeatureListInfo []*Feature

// Feature maps a feature tag to the lookups which implement it.
type Feature struct {
	Tag     string
	Lookups []LookupIndex
}

// readFeatureList reads the feature list table at pos.
// The feature parameters are not used for positioning and are ignored.
//
// https://docs.microsoft.com/en-us/typography/opentype/spec/chapter2#feature-list-table
func readFeatureList(p *parser.Parser, pos int64) (FeatureListInfo, error) {
	err := p.SeekPos(pos)
	if err != nil {
		return nil, err
	}
	featureCount, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}

	tags := make([]string, featureCount)
	offsets := make([]int64, featureCount)
	for i := range tags {
		buf, err := p.ReadBytes(6)
		if err != nil {
			return nil, err
		}
		tags[i] = string(buf[:4])
		offsets[i] = pos + int64(uint16(buf[4])<<8|uint16(buf[5]))
	}

	info := make(FeatureListInfo, featureCount)
	size := 2 + 6*len(tags)
	for i, tag := range tags {
		if size > 0xFFFF {
			return nil, &parser.InvalidFontError{
				SubSystem: "sfnt/opentype/gtab",
				Reason:    "feature list too large",
			}
		}
		err = p.SeekPos(offsets[i])
		if err != nil {
			return nil, err
		}
		err = p.Discard(2) // featureParamsOffset
		if err != nil {
			return nil, err
		}
		indices, err := p.ReadUint16Slice()
		if err != nil {
			return nil, err
		}
		lookups := make([]LookupIndex, len(indices))
		for j, idx := range indices {
			lookups[j] = LookupIndex(idx)
		}
		info[i] = &Feature{Tag: tag, Lookups: lookups}
		size += 4 + 2*len(lookups)
	}
	return info, nil
}

// encode returns the binary form of the feature list, or nil if the
// list is nil.  Feature tables are written in list order, directly after
// the feature records.
func (info FeatureListInfo) encode() []byte {
	if info == nil {
		return nil
	}

	offs := make([]int, len(info))
	size := 2 + 6*len(info)
	for i, f := range info {
		offs[i] = size
		size += 4 + 2*len(f.Lookups)
	}
	if len(info) > 0 && offs[len(info)-1] > 0xFFFF {
		panic("feature list too large")
	}

	res := make([]byte, 0, size)
	res = append(res, byte(len(info)>>8), byte(len(info)))
	for i, f := range info {
		tag := []byte(f.Tag + "    ")[:4]
		res = append(res, tag...)
		res = append(res, byte(offs[i]>>8), byte(offs[i]))
	}
	for _, f := range info {
		res = append(res,
			0, 0, // featureParamsOffset
			byte(len(f.Lookups)>>8), byte(len(f.Lookups)))
		for _, idx := range f.Lookups {
			res = append(res, byte(idx>>8), byte(idx))
		}
	}
	return res
}

// GposDefaultFeatures lists the GPOS features which are enabled by
// default.  It can be used as an argument for [Info.FindLookups].
var GposDefaultFeatures = map[string]bool{
	"kern": true,
	"mark": true,
	"mkmk": true,
}
