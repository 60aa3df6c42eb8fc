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

package parser

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"seehuhn.de/go/sfnt/glyph"
)

func TestReadValues(t *testing.T) {
	data := []byte{
		0x01, 0x02, // uint16
		0xFF, 0xFE, // int16
		0x01, 0x02, 0x03, 0x04, // uint32
		0x00, 0x02, 0x00, 0x07, 0x00, 0x09, // gid slice
	}
	p := New("test", bytes.NewReader(data))

	u16, err := p.ReadUint16()
	if err != nil || u16 != 0x0102 {
		t.Fatalf("ReadUint16: %d %v", u16, err)
	}
	i16, err := p.ReadInt16()
	if err != nil || i16 != -2 {
		t.Fatalf("ReadInt16: %d %v", i16, err)
	}
	u32, err := p.ReadUint32()
	if err != nil || u32 != 0x01020304 {
		t.Fatalf("ReadUint32: %d %v", u32, err)
	}
	gids, err := p.ReadGIDSlice()
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff([]glyph.ID{7, 9}, gids); d != "" {
		t.Error(d)
	}
	if p.Pos() != int64(len(data)) {
		t.Errorf("wrong position %d", p.Pos())
	}
}

func TestReadOffsets(t *testing.T) {
	data := []byte{0x00, 0x10, 0x00, 0x00, 0x00, 0x04}
	p := New("test", bytes.NewReader(data))
	offs, err := p.ReadOffsets(3, 100)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff([]int64{116, 0, 104}, offs); d != "" {
		t.Error(d)
	}
}

func TestSeekBack(t *testing.T) {
	data := make([]byte, 3000)
	for i := range data {
		data[i] = byte(i / 2)
	}
	p := New("test", bytes.NewReader(data))
	for _, pos := range []int64{2000, 10, 1500, 10} {
		err := p.SeekPos(pos)
		if err != nil {
			t.Fatal(err)
		}
		b, err := p.ReadBytes(1)
		if err != nil {
			t.Fatal(err)
		}
		if b[0] != byte(pos/2) {
			t.Errorf("pos %d: got %d", pos, b[0])
		}
	}
}

func TestOutOfBounds(t *testing.T) {
	data := []byte{1, 2, 3}
	p := New("GPOS", bytes.NewReader(data))

	var fontErr *InvalidFontError

	err := p.SeekPos(10)
	if !errors.As(err, &fontErr) {
		t.Errorf("seek: expected InvalidFontError, got %v", err)
	}
	err = p.SeekPos(-1)
	if !errors.As(err, &fontErr) {
		t.Errorf("negative seek: expected InvalidFontError, got %v", err)
	}

	err = p.SeekPos(2)
	if err != nil {
		t.Fatal(err)
	}
	_, err = p.ReadUint16()
	if !errors.As(err, &fontErr) {
		t.Errorf("read: expected InvalidFontError, got %v", err)
	}
	if fontErr != nil && fontErr.SubSystem != "sfnt/GPOS" {
		t.Errorf("wrong subsystem %q", fontErr.SubSystem)
	}
}
