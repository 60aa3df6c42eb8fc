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

	"github.com/google/go-cmp/cmp"
)

func TestDataRoundTrip(t *testing.T) {
	doc := NewData(V1_7)

	catalog := doc.Alloc()
	info := doc.Alloc()
	stream := doc.Alloc()
	values := doc.Alloc()

	objects := map[Reference]Object{
		catalog: Dict{
			"Type":   Name("Catalog"),
			"Values": values,
		},
		info: Dict{
			"Title": TextString("Grüße"),
		},
		values: Array{
			Bool(true), Integer(-7), Real(0.25), String("a)b"), nil,
			Name("Name With Space"), Dict{"X": stream},
		},
	}
	for ref, obj := range objects {
		err := doc.Put(ref, obj)
		if err != nil {
			t.Fatal(err)
		}
	}
	err := doc.PutStream(stream, Dict{"Type": Name("Test")}, []byte("stream data"))
	if err != nil {
		t.Fatal(err)
	}
	doc.GetMeta().Trailer["Root"] = catalog
	doc.GetMeta().Trailer["Info"] = info

	buf := &bytes.Buffer{}
	err = doc.Write(buf)
	if err != nil {
		t.Fatal(err)
	}

	doc2, err := Read(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(doc.GetMeta().Trailer, doc2.GetMeta().Trailer); d != "" {
		t.Errorf("wrong trailer (-want +got):\n%s", d)
	}
	for ref, obj := range objects {
		obj2, err := doc2.Get(ref)
		if err != nil {
			t.Fatal(err)
		}
		if d := cmp.Diff(obj, obj2); d != "" {
			t.Errorf("%s: wrong object (-want +got):\n%s", ref, d)
		}
	}

	s, err := GetStream(doc2, stream)
	if err != nil {
		t.Fatal(err)
	}
	if s.Dict["Type"] != Name("Test") || s.Dict["Length"] != Integer(11) {
		t.Errorf("wrong stream dict %s", Format(s.Dict))
	}
	data, err := ReadAll(s, true)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "stream data" {
		t.Errorf("wrong stream data %q", data)
	}

	title, err := GetInfo(doc2)
	if err != nil {
		t.Fatal(err)
	}
	if s, _ := title["Title"].(String); s.AsTextString() != "Grüße" {
		t.Errorf("wrong title %q", s.AsTextString())
	}
}

func TestDataStreams(t *testing.T) {
	doc := NewData(V1_7)
	ref := doc.Alloc()
	err := doc.Put(ref, &Stream{
		Dict: Dict{"Length": Integer(99)},
		R:    bytes.NewReader([]byte("12345")),
	})
	if err != nil {
		t.Fatal(err)
	}

	// every call to Get returns a fresh reader
	for range 2 {
		s, err := GetStream(doc, ref)
		if err != nil {
			t.Fatal(err)
		}
		if s.Dict["Length"] != Integer(5) {
			t.Errorf("wrong length %s", Format(s.Dict["Length"]))
		}
		data, err := ReadAll(s, false)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != "12345" {
			t.Errorf("wrong data %q", data)
		}
	}

	// storing nil deletes the object
	err = doc.Put(ref, nil)
	if err != nil {
		t.Fatal(err)
	}
	obj, err := doc.Get(ref)
	if err != nil || obj != nil {
		t.Errorf("deleted object: %v, %v", obj, err)
	}
}

func TestAlloc(t *testing.T) {
	doc := NewData(V1_7)
	err := doc.Put(NewReference(3, 0), Integer(1))
	if err != nil {
		t.Fatal(err)
	}
	seen := map[Reference]bool{NewReference(3, 0): true}
	for range 5 {
		ref := doc.Alloc()
		if seen[ref] || ref.Number() == 0 {
			t.Errorf("bad reference %s", ref)
		}
		seen[ref] = true
	}
}

func TestDataWriteOrder(t *testing.T) {
	doc := NewData(V1_7)
	for _, num := range []uint32{9, 2, 5} {
		err := doc.Put(NewReference(num, 0), Integer(num))
		if err != nil {
			t.Fatal(err)
		}
	}
	buf := &bytes.Buffer{}
	err := doc.Write(buf)
	if err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	last := -1
	for _, obj := range []string{"\n2 0 obj", "\n5 0 obj", "\n9 0 obj"} {
		pos := strings.Index(out, obj)
		if pos <= last {
			t.Fatalf("object %q out of order in\n%s", obj[1:], out)
		}
		last = pos
	}
}
