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

package pagetree

import (
	"errors"

	"github.com/CuteXiaoKe/pdf"
)

// FindPages returns the references of all page objects, in document order.
//
// Inline page objects, which are not valid PDF, are skipped.  Loops in the
// page tree are broken.
func FindPages(r pdf.Getter) ([]pdf.Reference, error) {
	catalog, err := pdf.GetCatalog(r)
	if err != nil {
		return nil, err
	}
	root, ok := catalog["Pages"].(pdf.Reference)
	if !ok {
		return nil, errInvalidPageTree
	}

	var res []pdf.Reference
	todo := []pdf.Reference{root}
	seen := map[pdf.Reference]bool{
		root: true,
	}
	for len(todo) > 0 {
		k := len(todo) - 1
		ref := todo[k]
		todo = todo[:k]

		node, err := pdf.GetDict(r, ref)
		if err != nil {
			return nil, err
		}
		tp, err := pdf.GetName(r, node["Type"])
		if err != nil {
			return nil, err
		}
		if tp == "" && node["Kids"] == nil {
			// Some writers omit the /Type entry for page objects.
			tp = "Page"
		}
		switch tp {
		case "Page":
			res = append(res, ref)
		case "Pages":
			kids, err := pdf.GetArray(r, node["Kids"])
			if err != nil {
				return nil, err
			}
			for i := len(kids) - 1; i >= 0; i-- {
				kid := kids[i]
				kidRef, ok := kid.(pdf.Reference)
				if ok && !seen[kidRef] {
					todo = append(todo, kidRef)
					seen[kidRef] = true
				}
			}
		}
	}

	return res, nil
}

// NumPages returns the number of pages in the document.
func NumPages(r pdf.Getter) (int, error) {
	pages, err := FindPages(r)
	if err != nil {
		return 0, err
	}
	return len(pages), nil
}

// PageIndex maps page object references to page numbers.
type PageIndex map[pdf.Reference]int

// NewPageIndex returns the page numbers (starting from 0) of all pages in
// the document.
func NewPageIndex(r pdf.Getter) (PageIndex, []pdf.Reference, error) {
	pages, err := FindPages(r)
	if err != nil {
		return nil, nil, err
	}
	idx := make(PageIndex, len(pages))
	for i, ref := range pages {
		if _, seen := idx[ref]; !seen {
			idx[ref] = i
		}
	}
	return idx, pages, nil
}

// Lookup returns the page number of ref, or -1 if ref is not a page of
// the document.
func (idx PageIndex) Lookup(ref pdf.Reference) int {
	if n, ok := idx[ref]; ok {
		return n
	}
	return -1
}

var errInvalidPageTree = errors.New("invalid page tree")
