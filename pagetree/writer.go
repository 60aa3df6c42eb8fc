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

// Package pagetree reads and writes PDF page trees.
package pagetree

import (
	"errors"

	"github.com/CuteXiaoKe/pdf"
)

const maxDegree = 16

// Writer builds a page tree inside an in-memory document.
type Writer struct {
	doc   *pdf.Data
	pages []pdf.Reference

	isClosed bool
}

// NewWriter creates a new page tree which adds pages to doc.
func NewWriter(doc *pdf.Data) *Writer {
	return &Writer{doc: doc}
}

// AppendPage stores a new page object and appends it to the tree.
// The Type and Parent entries of the page dictionary are set automatically.
func (w *Writer) AppendPage(page pdf.Dict) (pdf.Reference, error) {
	ref := w.doc.Alloc()
	err := w.AppendPageRef(ref, page)
	if err != nil {
		return 0, err
	}
	return ref, nil
}

// AppendPageRef stores page as the object ref and appends it to the tree.
// The Parent entry is filled in by [Writer.Close].
func (w *Writer) AppendPageRef(ref pdf.Reference, page pdf.Dict) error {
	if w.isClosed {
		return errClosed
	}
	page["Type"] = pdf.Name("Page")
	err := w.doc.Put(ref, page)
	if err != nil {
		return err
	}
	w.pages = append(w.pages, ref)
	return nil
}

// Close writes the intermediate nodes of the tree and returns the
// reference of the root node.  The catalog entry is not updated.
func (w *Writer) Close() (pdf.Reference, error) {
	if w.isClosed {
		return 0, errClosed
	}
	w.isClosed = true

	type node struct {
		ref   pdf.Reference
		count int
	}
	level := make([]node, len(w.pages))
	for i, ref := range w.pages {
		level[i] = node{ref: ref, count: 1}
	}

	for first := true; first || len(level) > 1; first = false {
		var next []node
		for start := 0; start < len(level); start += maxDegree {
			end := min(start+maxDegree, len(level))
			parent := w.doc.Alloc()
			kids := make(pdf.Array, 0, end-start)
			total := 0
			for _, kid := range level[start:end] {
				kids = append(kids, kid.ref)
				total += kid.count
				err := w.setParent(kid.ref, parent)
				if err != nil {
					return 0, err
				}
			}
			err := w.doc.Put(parent, pdf.Dict{
				"Type":  pdf.Name("Pages"),
				"Kids":  kids,
				"Count": pdf.Integer(total),
			})
			if err != nil {
				return 0, err
			}
			next = append(next, node{ref: parent, count: total})
		}
		if len(next) == 0 {
			// empty document
			root := w.doc.Alloc()
			err := w.doc.Put(root, pdf.Dict{
				"Type":  pdf.Name("Pages"),
				"Kids":  pdf.Array{},
				"Count": pdf.Integer(0),
			})
			return root, err
		}
		level = next
	}

	return level[0].ref, nil
}

func (w *Writer) setParent(kid, parent pdf.Reference) error {
	dict, err := pdf.GetDict(w.doc, kid)
	if err != nil {
		return err
	}
	dict["Parent"] = parent
	return nil
}

var errClosed = errors.New("page tree is closed")
