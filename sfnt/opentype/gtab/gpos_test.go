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
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/CuteXiaoKe/pdf/sfnt/parser"
)

// rawSubtable is a subtable given by its binary representation.
type rawSubtable []byte

func (st rawSubtable) EncodeLen() int { return len(st) }
func (st rawSubtable) Encode() []byte { return st }

func TestGpos4RoundTrip(t *testing.T) {
	st := testSubtable()
	data := st.Encode()
	if len(data) != st.EncodeLen() {
		t.Errorf("EncodeLen: %d != %d", st.EncodeLen(), len(data))
	}

	st2, err := readGpos4_1(parser.New("GPOS", bytes.NewReader(data)), 0)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(st, st2); d != "" {
		t.Error(d)
	}
	if err := st2.Validate(); err != nil {
		t.Error(err)
	}
}

func TestGpos4Errors(t *testing.T) {
	var fontErr *parser.InvalidFontError

	data := testSubtable().Encode()
	data[1] = 2 // posFormat
	_, err := readGpos4_1(parser.New("GPOS", bytes.NewReader(data)), 0)
	if !errors.As(err, &fontErr) {
		t.Errorf("format 2: expected InvalidFontError, got %v", err)
	}

	data = testSubtable().Encode()
	data[2], data[3] = 0xFF, 0xF0 // markCoverageOffset
	_, err = readGpos4_1(parser.New("GPOS", bytes.NewReader(data)), 0)
	if !errors.As(err, &fontErr) {
		t.Errorf("bad offset: expected InvalidFontError, got %v", err)
	}

	data = testSubtable().Encode()
	data = data[:len(data)-4]
	_, err = readGpos4_1(parser.New("GPOS", bytes.NewReader(data)), 0)
	if !errors.As(err, &fontErr) {
		t.Errorf("truncated: expected InvalidFontError, got %v", err)
	}
}

func TestReadGPOS(t *testing.T) {
	info := &Info{
		Features: FeatureListInfo{
			{Tag: "kern", Lookups: []LookupIndex{1}},
			{Tag: "mark", Lookups: []LookupIndex{0}},
		},
		Lookups: LookupList{
			{
				Meta:      &LookupMetaInfo{LookupType: 4},
				Subtables: []Subtable{testSubtable()},
			},
			{
				Meta:      &LookupMetaInfo{LookupType: 2},
				Subtables: []Subtable{rawSubtable{0, 1, 0, 0}},
			},
		},
	}
	data := info.Encode()

	info2, err := ReadGPOS(bytes.NewReader(data), nil)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(info.Features, info2.Features); d != "" {
		t.Error(d)
	}
	if len(info2.Lookups) != 2 {
		t.Fatalf("expected 2 lookups, got %d", len(info2.Lookups))
	}
	if len(info2.MarkToBase) != 1 || info2.MarkToBase[0].Index != 0 {
		t.Fatalf("wrong mark-to-base lookups: %v", info2.MarkToBase)
	}
	if d := cmp.Diff(testSubtable(), info2.MarkToBase[0].Subtables[0]); d != "" {
		t.Error(d)
	}

	if d := cmp.Diff([]LookupIndex{0}, info2.FindLookups(map[string]bool{"mark": true})); d != "" {
		t.Error(d)
	}

	run := NewRun(glyphs(gidBase, gidMark))
	err = info2.ApplyFeatures(run, map[string]bool{"kern": true})
	if err != nil {
		t.Fatal(err)
	}
	if run.Glyphs[1].Attach != 0 {
		t.Error("lookup applied for wrong feature")
	}
	run.Idx = 0
	err = info2.ApplyFeatures(run, GposDefaultFeatures)
	if err != nil {
		t.Fatal(err)
	}
	if run.Glyphs[1].Attach != -1 || run.Idx != 2 {
		t.Errorf("mark not attached: %v, idx=%d", run.Glyphs[1], run.Idx)
	}
}

func TestMalformedSubtableSkipped(t *testing.T) {
	bad := rawSubtable(testSubtable().Encode())
	bad[1] = 3 // posFormat

	info := &Info{
		Lookups: LookupList{
			{
				Meta:      &LookupMetaInfo{LookupType: 4},
				Subtables: []Subtable{bad, testSubtable()},
			},
		},
	}
	info2, err := ReadGPOS(bytes.NewReader(info.Encode()), nil)
	if err != nil {
		t.Fatal(err)
	}
	if n := len(info2.MarkToBase[0].Subtables); n != 1 {
		t.Fatalf("expected 1 subtable, got %d", n)
	}

	run := NewRun(glyphs(gidBase, gidMark))
	err = info2.Apply(run)
	if err != nil {
		t.Fatal(err)
	}
	if run.Glyphs[1].XOffset != -450 {
		t.Errorf("mark not positioned: %v", run.Glyphs[1])
	}
}

func TestExtension(t *testing.T) {
	ext := rawSubtable{
		0, 1,       // posFormat
		0, 4,       // extensionLookupType
		0, 0, 0, 8, // extensionOffset
	}
	ext = append(ext, testSubtable().Encode()...)

	info := &Info{
		Lookups: LookupList{
			{
				Meta:      &LookupMetaInfo{LookupType: 9},
				Subtables: []Subtable{ext},
			},
		},
	}
	info2, err := ReadGPOS(bytes.NewReader(info.Encode()), nil)
	if err != nil {
		t.Fatal(err)
	}
	if info2.Lookups[0].Meta.LookupType != 4 {
		t.Errorf("wrong lookup type %d", info2.Lookups[0].Meta.LookupType)
	}
	if len(info2.MarkToBase) != 1 || len(info2.MarkToBase[0].Subtables) != 1 {
		t.Fatal("extension subtable not unwrapped")
	}
}

func TestGPOSVersion(t *testing.T) {
	data := []byte{0, 2, 0, 0, 0, 0, 0, 0, 0, 0}
	_, err := ReadGPOS(bytes.NewReader(data), nil)
	var notSupp *parser.NotSupportedError
	if !errors.As(err, &notSupp) {
		t.Errorf("expected NotSupportedError, got %v", err)
	}
}

func FuzzGpos4(f *testing.F) {
	f.Add(testSubtable().Encode())
	f.Fuzz(func(t *testing.T, data []byte) {
		st, err := readGpos4_1(parser.New("GPOS", bytes.NewReader(data)), 0)
		if err != nil || st.Validate() != nil {
			return
		}
		st2, err := readGpos4_1(parser.New("GPOS", bytes.NewReader(st.Encode())), 0)
		if err != nil {
			t.Fatal(err)
		}
		if d := cmp.Diff(st, st2); d != "" {
			t.Fatal(d)
		}
	})
}

func TestEncodeUnsupportedLookups(t *testing.T) {
	info := &Info{
		Features: FeatureListInfo{
			{Tag: "kern", Lookups: []LookupIndex{0}},
			{Tag: "mark", Lookups: []LookupIndex{0, 1}},
		},
		Lookups: LookupList{
			{
				Meta:      &LookupMetaInfo{LookupType: 2},
				Subtables: []Subtable{rawSubtable{0, 1, 0, 0}},
			},
			{
				Meta:      &LookupMetaInfo{LookupType: 4},
				Subtables: []Subtable{testSubtable()},
			},
		},
	}
	fromFont, err := ReadGPOS(bytes.NewReader(info.Encode()), nil)
	if err != nil {
		t.Fatal(err)
	}

	// the pair positioning lookup cannot be written back
	info2, err := ReadGPOS(bytes.NewReader(fromFont.Encode()), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(info2.Lookups) != 1 || info2.Lookups[0].Meta.LookupType != 4 {
		t.Fatalf("wrong lookups: %v", info2.Lookups)
	}
	want := FeatureListInfo{
		{Tag: "kern", Lookups: []LookupIndex{}},
		{Tag: "mark", Lookups: []LookupIndex{0}},
	}
	if d := cmp.Diff(want, info2.Features); d != "" {
		t.Error(d)
	}

	run := NewRun(glyphs(gidBase, gidMark))
	err = info2.ApplyFeatures(run, map[string]bool{"mark": true})
	if err != nil {
		t.Fatal(err)
	}
	if run.Glyphs[1].Attach != -1 {
		t.Errorf("mark not attached: %v", run.Glyphs[1])
	}
}
