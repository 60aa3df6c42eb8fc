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

package pagetree_test

import (
	"testing"

	"github.com/CuteXiaoKe/pdf"
	"github.com/CuteXiaoKe/pdf/pagetree"
)

func TestWriterTree(t *testing.T) {
	const numPages = 40
	doc := pdf.NewData(pdf.V1_7)
	tree := pagetree.NewWriter(doc)
	for i := range numPages {
		_, err := tree.AppendPage(pdf.Dict{"PageNo": pdf.Integer(i)})
		if err != nil {
			t.Fatal(err)
		}
	}
	root, err := tree.Close()
	if err != nil {
		t.Fatal(err)
	}

	rootDict, err := pdf.GetDict(doc, root)
	if err != nil {
		t.Fatal(err)
	}
	if rootDict["Count"] != pdf.Integer(numPages) {
		t.Errorf("wrong page count %s", pdf.Format(rootDict["Count"]))
	}
	if rootDict["Parent"] != nil {
		t.Error("root node has a parent")
	}

	// every node is listed in the Kids array of its parent
	var check func(ref pdf.Reference, depth int) int
	check = func(ref pdf.Reference, depth int) int {
		node, err := pdf.GetDict(doc, ref)
		if err != nil {
			t.Fatal(err)
		}
		if node["Type"] == pdf.Name("Page") {
			return 1
		}
		kids, _ := node["Kids"].(pdf.Array)
		if len(kids) > 16 {
			t.Errorf("node with %d children", len(kids))
		}
		total := 0
		for _, kid := range kids {
			kidRef := kid.(pdf.Reference)
			kidDict, err := pdf.GetDict(doc, kidRef)
			if err != nil {
				t.Fatal(err)
			}
			if kidDict["Parent"] != ref {
				t.Errorf("%s: wrong parent", kidRef)
			}
			total += check(kidRef, depth+1)
		}
		if node["Count"] != pdf.Integer(total) {
			t.Errorf("%s: Count is %s, expected %d", ref, pdf.Format(node["Count"]), total)
		}
		return total
	}
	if n := check(root, 0); n != numPages {
		t.Errorf("found %d pages", n)
	}

	n, err := pagetree.NumPages(withCatalog(t, doc, root))
	if err != nil || n != numPages {
		t.Errorf("NumPages: %d, %v", n, err)
	}
}

func TestWriterClosed(t *testing.T) {
	doc := pdf.NewData(pdf.V1_7)
	tree := pagetree.NewWriter(doc)
	_, err := tree.Close()
	if err != nil {
		t.Fatal(err)
	}
	_, err = tree.AppendPage(pdf.Dict{})
	if err == nil {
		t.Error("page appended to closed tree")
	}
	_, err = tree.Close()
	if err == nil {
		t.Error("tree closed twice")
	}
}

func withCatalog(t *testing.T, doc *pdf.Data, root pdf.Reference) *pdf.Data {
	t.Helper()
	catalog := doc.Alloc()
	err := doc.Put(catalog, pdf.Dict{"Type": pdf.Name("Catalog"), "Pages": root})
	if err != nil {
		t.Fatal(err)
	}
	doc.GetMeta().Trailer["Root"] = catalog
	return doc
}
