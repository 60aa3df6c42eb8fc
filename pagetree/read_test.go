// seehuhn.de/go/pdf - a library for reading and writing PDF files
// Copyright (C) 2023  Jochen Voss <voss@seehuhn.de>
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

package pagetree_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/CuteXiaoKe/pdf"
	"github.com/CuteXiaoKe/pdf/pagetree"
)

func TestFindPages(t *testing.T) {
	for _, numPages := range []int{0, 1, 15, 16, 17, 234} {
		doc := pdf.NewData(pdf.V1_7)

		pageRefsIn := make([]pdf.Reference, numPages)
		tree := pagetree.NewWriter(doc)
		for i := 0; i < numPages; i++ {
			pageRefsIn[i] = doc.Alloc()
			pageDict := pdf.Dict{
				"Type": pdf.Name("Page"),
			}
			err := tree.AppendPageRef(pageRefsIn[i], pageDict)
			if err != nil {
				t.Fatal(err)
			}
		}
		treeRef, err := tree.Close()
		if err != nil {
			t.Fatal(err)
		}
		catalog := doc.Alloc()
		doc.Put(catalog, pdf.Dict{"Type": pdf.Name("Catalog"), "Pages": treeRef})
		doc.GetMeta().Trailer["Root"] = catalog

		pageRefsOut, err := pagetree.FindPages(doc)
		if err != nil {
			t.Fatal(err)
		}
		if numPages == 0 {
			pageRefsIn = nil
		}
		if d := cmp.Diff(pageRefsIn, pageRefsOut); d != "" {
			t.Fatalf("%d pages: unexpected pageRefs (-want +got):\n%s", numPages, d)
		}

		idx, _, err := pagetree.NewPageIndex(doc)
		if err != nil {
			t.Fatal(err)
		}
		for i, ref := range pageRefsIn {
			if got := idx.Lookup(ref); got != i {
				t.Errorf("page %d: Lookup returned %d", i, got)
			}
		}
		if got := idx.Lookup(catalog); got != -1 {
			t.Errorf("catalog: Lookup returned %d", got)
		}
	}
}

func TestFindPagesLoop(t *testing.T) {
	doc := pdf.NewData(pdf.V1_7)
	root := doc.Alloc()
	inner := doc.Alloc()
	page := doc.Alloc()
	doc.Put(page, pdf.Dict{"Type": pdf.Name("Page"), "Parent": inner})
	doc.Put(inner, pdf.Dict{
		"Type": pdf.Name("Pages"),
		"Kids": pdf.Array{page, root}, // loop back to the root
	})
	doc.Put(root, pdf.Dict{
		"Type": pdf.Name("Pages"),
		"Kids": pdf.Array{inner},
	})
	catalog := doc.Alloc()
	doc.Put(catalog, pdf.Dict{"Type": pdf.Name("Catalog"), "Pages": root})
	doc.GetMeta().Trailer["Root"] = catalog

	pages, err := pagetree.FindPages(doc)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff([]pdf.Reference{page}, pages); d != "" {
		t.Errorf("unexpected pages (-want +got):\n%s", d)
	}
}
