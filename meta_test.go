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
	"errors"
	"testing"
)

func TestVersion(t *testing.T) {
	for v := V1_0; v <= V2_0; v++ {
		s, err := v.ToString()
		if err != nil {
			t.Fatal(err)
		}
		v2, err := ParseVersion(s)
		if err != nil || v2 != v {
			t.Errorf("%s: got %d, %v", s, v2, err)
		}
	}

	for _, s := range []string{"", "1.8", "2.1", "1.7.1"} {
		_, err := ParseVersion(s)
		if err == nil {
			t.Errorf("%q: invalid version accepted", s)
		}
	}

	if s := Version(0).String(); s != "pdf.Version(0)" {
		t.Errorf("wrong string %q", s)
	}
}

func TestCatalog(t *testing.T) {
	doc := NewData(V1_7)
	_, err := GetCatalog(doc)
	var e *MalformedFileError
	if !errors.As(err, &e) {
		t.Errorf("missing catalog: got %v", err)
	}

	info, err := GetInfo(doc)
	if err != nil || info != nil {
		t.Errorf("missing info: got %v, %v", info, err)
	}

	if doc.GetMeta().IsEncrypted() {
		t.Error("document wrongly reported as encrypted")
	}
	doc.GetMeta().Trailer["Encrypt"] = Dict{"Filter": Name("Standard")}
	if !doc.GetMeta().IsEncrypted() {
		t.Error("encryption not detected")
	}
}

func TestMalformedFileError(t *testing.T) {
	base := errors.New("boom")
	err := &MalformedFileError{Pos: 12, Err: base, Loc: []string{"inner"}}
	wrapped := Wrap(err, "outer")

	expected := "not a valid PDF file: outer: inner: boom (at byte 12)"
	if wrapped.Error() != expected {
		t.Errorf("got %q, expected %q", wrapped.Error(), expected)
	}
	if len(err.Loc) != 1 {
		t.Error("Wrap modified its argument")
	}
	if !errors.Is(wrapped, base) {
		t.Error("underlying error not found")
	}

	other := errors.New("other")
	if Wrap(other, "loc") != other {
		t.Error("Wrap changed a non-PDF error")
	}

	e := &UnsupportedFilterError{Filter: "JBIG2Decode", Reason: "not implemented"}
	if e.Error() != "unsupported filter /JBIG2Decode: not implemented" {
		t.Errorf("wrong message %q", e.Error())
	}
}
