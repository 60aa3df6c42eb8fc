// seehuhn.de/go/pdf - a library for reading and writing PDF files
// Copyright (C) 2025  Jochen Voss <voss@seehuhn.de>
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

package pdf

import (
	"bytes"
	"strings"
	"testing"
)

func TestWriterHeader(t *testing.T) {
	buf := &bytes.Buffer{}
	_, err := NewWriter(buf, V2_0)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "%PDF-2.0\n%") {
		t.Errorf("wrong header %q", buf.String())
	}

	_, err = NewWriter(&bytes.Buffer{}, Version(99))
	if err == nil {
		t.Error("invalid version accepted")
	}
}

func TestWriterErrors(t *testing.T) {
	buf := &bytes.Buffer{}
	w, err := NewWriter(buf, V1_7)
	if err != nil {
		t.Fatal(err)
	}

	ref := NewReference(1, 0)
	err = w.Put(ref, Integer(1))
	if err != nil {
		t.Fatal(err)
	}
	if w.Put(ref, Integer(2)) == nil {
		t.Error("object written twice")
	}
	if w.Put(NewReference(0, 0), Integer(3)) == nil {
		t.Error("object 0 written")
	}
	if w.Close(Dict{}) == nil {
		t.Error("trailer without Root accepted")
	}

	err = w.Close(Dict{"Root": ref})
	if err != nil {
		t.Fatal(err)
	}
	if w.Put(NewReference(2, 0), Integer(4)) != errWriterClosed {
		t.Error("write after close")
	}
	if w.Close(Dict{"Root": ref}) != errWriterClosed {
		t.Error("double close")
	}
}

func TestWriterXRef(t *testing.T) {
	buf := &bytes.Buffer{}
	w, err := NewWriter(buf, V1_7)
	if err != nil {
		t.Fatal(err)
	}
	err = w.Put(NewReference(2, 0), Dict{"Type": Name("Catalog")})
	if err != nil {
		t.Fatal(err)
	}
	err = w.Close(Dict{"Root": NewReference(2, 0)})
	if err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	xref := out[strings.Index(out, "xref\n"):]
	expected := "xref\n0 3\n" +
		"0000000000 65535 f\r\n" +
		"0000000000 65535 f\r\n" +
		"0000000015 00000 n\r\n" +
		"trailer\n<<\n/Root 2 0 R\n/Size 3\n>>"
	if !strings.HasPrefix(xref, expected) {
		t.Errorf("wrong xref table:\n%s", xref)
	}
	if !strings.HasSuffix(out, "%%EOF\n") {
		t.Errorf("missing %%EOF marker")
	}
}
