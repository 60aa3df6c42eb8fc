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
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/CuteXiaoKe/pdf/sfnt/parser"
)

func FuzzFeatureList(f *testing.F) {
	info := FeatureListInfo{}
	info = append(info, &Feature{Tag: "test"})
	f.Add(info.encode())
	info = append(info, &Feature{Tag: "kern", Lookups: []LookupIndex{0, 1, 2, 3}})
	f.Add(info.encode())

	f.Fuzz(func(t *testing.T, data []byte) {
		p := parser.New("GPOS", bytes.NewReader(data))
		info, err := readFeatureList(p, 0)
		if err != nil {
			return
		}

		data2 := info.encode()

		p = parser.New("GPOS", bytes.NewReader(data2))
		info2, err := readFeatureList(p, 0)
		if err != nil {
			t.Fatal(err)
		}

		if d := cmp.Diff(info, info2); d != "" {
			t.Error(d)
		}
	})
}

func TestFeatureListRoundTrip(t *testing.T) {
	var info FeatureListInfo
	for i := range 60 {
		tag := "kern"
		if i%2 == 1 {
			tag = "mark"
		}
		info = append(info, &Feature{
			Tag:     tag,
			Lookups: []LookupIndex{LookupIndex(i), LookupIndex(i + 1), 300},
		})
	}

	// place the table behind some unrelated data
	data := append(make([]byte, 7), info.encode()...)
	p := parser.New("GPOS", bytes.NewReader(data))
	info2, err := readFeatureList(p, 7)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(info, info2); d != "" {
		t.Error(d)
	}
}
