// seehuhn.de/go/pdf - a library for reading and writing PDF files
// Copyright (C) 2024  Jochen Voss <voss@seehuhn.de>
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

package compare

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/CuteXiaoKe/pdf"
)

func TestPageCount(t *testing.T) {
	outDoc := newTestDoc(t, 2)
	cmpDoc := newTestDoc(t, 3)

	res, pages, err := New(outDoc, cmpDoc, nil).CompareByContentPerPage()
	if err != nil {
		t.Fatal(err)
	}
	if pages != nil {
		t.Errorf("pages were compared: %v", pages)
	}
	want := "Number of pages is different. Expected: 3. Found: 2.\n" +
		"Base cmp object: " + objName(cmpDoc.catalog) + ". Base out object: " + objName(outDoc.catalog) + "\n" +
		"Dict key: /Pages\n"
	if got := res.Report(); got != want {
		t.Errorf("wrong report:\n%s\nwant:\n%s", got, want)
	}
}

// pageDiffDocs returns two documents with five pages, where pages 1 and 3
// differ.
func pageDiffDocs(t *testing.T) (*testDoc, *testDoc) {
	outDoc := newTestDoc(t, 5)
	cmpDoc := newTestDoc(t, 5)
	outDoc.dict(t, outDoc.pages[1])["Rotate"] = pdf.Integer(90)
	outDoc.dict(t, outDoc.pages[3])["Rotate"] = pdf.Integer(180)
	cmpDoc.dict(t, cmpDoc.pages[3])["Rotate"] = pdf.Integer(90)
	return outDoc, cmpDoc
}

func TestPerPage(t *testing.T) {
	outDoc, cmpDoc := pageDiffDocs(t)

	opt := DefaultOptions()
	opt.MaxDifferences = 10
	res, pages, err := New(outDoc, cmpDoc, opt).CompareByContentPerPage()
	if err != nil {
		t.Fatal(err)
	}

	wantPages := []PageResult{{0, true}, {1, false}, {2, true}, {3, false}, {4, true}}
	if d := cmp.Diff(wantPages, pages); d != "" {
		t.Errorf("unexpected page results (-want +got):\n%s", d)
	}

	wantMsgs := []string{
		"Found object which was not expected to be found.",
		"PdfNumber. Expected: 90. Found: 180",
	}
	if d := cmp.Diff(wantMsgs, messages(res)); d != "" {
		t.Errorf("unexpected messages (-want +got):\n%s", d)
	}
	base, _ := res.Differences()[1].Path.Base()
	if base != (RefPair{Cmp: cmpDoc.pages[3], Out: outDoc.pages[3]}) {
		t.Errorf("wrong path base %v", base)
	}
}

func TestPerPageParallel(t *testing.T) {
	outDoc, cmpDoc := pageDiffDocs(t)

	for _, limit := range []int{1, 2, 10} {
		opt := DefaultOptions()
		opt.MaxDifferences = limit
		serial, serialPages, err := New(outDoc, cmpDoc, opt).CompareByContentPerPage()
		if err != nil {
			t.Fatal(err)
		}

		opt.Parallel = true
		parallel, parallelPages, err := New(outDoc, cmpDoc, opt).CompareByContentPerPage()
		if err != nil {
			t.Fatal(err)
		}

		if serial.Report() != parallel.Report() {
			t.Errorf("limit %d: serial and parallel reports differ:\n%s\n---\n%s",
				limit, serial.Report(), parallel.Report())
		}
		if d := cmp.Diff(serialPages, parallelPages); d != "" {
			t.Errorf("limit %d: page results differ (-serial +parallel):\n%s", limit, d)
		}
	}
}

func TestCatalogAfterPages(t *testing.T) {
	outDoc := newTestDoc(t, 1)
	cmpDoc := newTestDoc(t, 1)
	outDoc.dict(t, outDoc.catalog)["Lang"] = pdf.String("de")
	cmpDoc.dict(t, cmpDoc.catalog)["Lang"] = pdf.String("en")
	outDoc.dict(t, outDoc.catalog)["Metadata"] = pdf.Integer(1)

	res, _, err := New(outDoc, cmpDoc, nil).CompareByContentPerPage()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"PdfString. Characters differ at position 0. Expected: e (en). Found: d (de)."}
	if d := cmp.Diff(want, messages(res)); d != "" {
		t.Errorf("unexpected messages (-want +got):\n%s", d)
	}
}

func TestEncryption(t *testing.T) {
	encrypt := func(doc *testDoc, v int, o string) {
		ref := doc.put(t, pdf.Dict{
			"Filter": pdf.Name("Standard"),
			"V":      pdf.Integer(v),
			"O":      pdf.String(o),
			"U":      pdf.String(o + "u"),
		})
		doc.GetMeta().Trailer["Encrypt"] = ref
	}

	type testCase struct {
		name     string
		out, cmp int // encryption version, 0 for none
		want     string
	}
	cases := []testCase{
		{"none", 0, 0, ""},
		{"same", 2, 2, ""},
		{"missing", 0, 2, "Expected encrypted document."},
		{"unexpected", 2, 0, "Expected not encrypted document."},
		{"version", 4, 2, "PdfNumber. Expected: 2. Found: 4"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			outDoc := newTestDoc(t, 1)
			cmpDoc := newTestDoc(t, 1)
			if tc.out != 0 {
				encrypt(outDoc, tc.out, "owner-out")
			}
			if tc.cmp != 0 {
				encrypt(cmpDoc, tc.cmp, "owner-cmp")
			}

			opt := DefaultOptions()
			opt.CompareEncryption = true
			res, _, err := New(outDoc, cmpDoc, opt).CompareByContentPerPage()
			if err != nil {
				t.Fatal(err)
			}
			var want []string
			if tc.want != "" {
				want = []string{tc.want}
			}
			if d := cmp.Diff(want, messages(res)); d != "" {
				t.Errorf("unexpected messages (-want +got):\n%s", d)
			}
			for _, d := range res.Differences() {
				if _, ok := d.Path.Base(); ok {
					t.Errorf("encryption difference not relative to trailer: %s", d.Path)
				}
			}

			// without the option, encryption is ignored
			res, _, err = New(outDoc, cmpDoc, nil).CompareByContentPerPage()
			if err != nil {
				t.Fatal(err)
			}
			if !res.IsEqual() {
				t.Errorf("unexpected differences:\n%s", res.Report())
			}
		})
	}
}

func TestDocumentInfo(t *testing.T) {
	outDoc := newTestDoc(t, 1)
	cmpDoc := newTestDoc(t, 1)
	outDoc.GetMeta().Trailer["Info"] = outDoc.put(t, pdf.Dict{
		"Title":    pdf.TextString("Grüße"),
		"Author":   pdf.String("A. Author"),
		"Keywords": pdf.String("x"),
		"Producer": pdf.String("one"),
	})
	cmpDoc.GetMeta().Trailer["Info"] = cmpDoc.put(t, pdf.Dict{
		"Title":    pdf.String("\xfe\xff\x00G\x00r\x00\xfc\x00\xdf\x00e"),
		"Author":   pdf.String("B. Author"),
		"Subject":  pdf.String(""),
		"Producer": pdf.String("two"),
	})

	diff, err := New(outDoc, cmpDoc, nil).CompareDocumentInfo()
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff([]pdf.Name{"Author", "Keywords"}, diff); d != "" {
		t.Errorf("unexpected fields (-want +got):\n%s", d)
	}

	diff, err = New(outDoc, outDoc, nil).CompareDocumentInfo()
	if err != nil {
		t.Fatal(err)
	}
	if diff != nil {
		t.Errorf("unexpected fields %v", diff)
	}
}

// TestWriteRead checks that writing a document to a file and reading it
// back gives an equal document.
func TestWriteRead(t *testing.T) {
	doc := newTestDoc(t, 20)
	font := doc.put(t, pdf.Dict{
		"Type":     pdf.Name("Font"),
		"Subtype":  pdf.Name("Type1"),
		"BaseFont": pdf.Name("Helvetica"),
	})
	for i, ref := range doc.pages {
		page := doc.dict(t, ref)
		page["Resources"] = pdf.Dict{"Font": pdf.Dict{"F1": font}}
		page["Rotate"] = pdf.Integer(90 * (i % 4))
	}
	doc.dict(t, doc.catalog)["Lang"] = pdf.TextString("en-GB")
	doc.dict(t, doc.catalog)["ViewerPreferences"] = pdf.Dict{
		"FitWindow": pdf.Bool(true),
		"Scale":     pdf.Real(0.5),
	}

	buf := &bytes.Buffer{}
	err := doc.Write(buf)
	if err != nil {
		t.Fatal(err)
	}
	doc2, err := pdf.Read(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatal(err)
	}

	opt := DefaultOptions()
	opt.MaxDifferences = 10
	res, err := New(doc2, doc, opt).CompareCatalogs()
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsEqual() {
		t.Errorf("document changed:\n%s", res.Report())
	}

	res, _, err = New(doc2, doc, opt).CompareByContentPerPage()
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsEqual() {
		t.Errorf("document changed:\n%s", res.Report())
	}
}
