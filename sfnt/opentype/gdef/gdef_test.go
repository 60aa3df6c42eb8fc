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

package gdef

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/CuteXiaoKe/pdf/sfnt/opentype/classdef"
	"github.com/CuteXiaoKe/pdf/sfnt/opentype/coverage"
)

func TestRoundTrip(t *testing.T) {
	cases := []*Table{
		{},
		{
			GlyphClass: classdef.Table{1: GlyphClassBase, 2: GlyphClassMark, 3: GlyphClassMark},
		},
		{
			GlyphClass:      classdef.Table{1: GlyphClassBase, 5: GlyphClassLigature},
			MarkAttachClass: classdef.Table{2: 1, 3: 2},
			MarkGlyphSets: []coverage.Table{
				{2: 0},
				{2: 0, 3: 1},
			},
		},
	}
	for i, in := range cases {
		data := in.Encode()
		out, err := Read(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("%d: %v", i, err)
		}
		if d := cmp.Diff(in, out); d != "" {
			t.Errorf("%d: %s", i, d)
		}
	}
}

func TestVersion(t *testing.T) {
	data := []byte{0, 2, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	_, err := Read(bytes.NewReader(data))
	if err == nil {
		t.Error("GDEF version 2.0 was accepted")
	}
}
