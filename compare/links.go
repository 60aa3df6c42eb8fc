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
	"errors"
	"fmt"

	"seehuhn.de/go/geom/rect"

	"github.com/CuteXiaoKe/pdf"
	"github.com/CuteXiaoKe/pdf/nametree"
	"github.com/CuteXiaoKe/pdf/pagetree"
)

// linkDocument holds the information needed to compare the link
// annotations of one document.
type linkDocument struct {
	r       pdf.Getter
	catalog pdf.Dict
	pages   []pdf.Reference
	index   pagetree.PageIndex
}

func newLinkDocument(r pdf.Getter) (*linkDocument, error) {
	catalog, err := pdf.GetCatalog(r)
	if err != nil {
		return nil, err
	}
	index, pages, err := pagetree.NewPageIndex(r)
	if err != nil {
		return nil, err
	}
	return &linkDocument{r: r, catalog: catalog, pages: pages, index: index}, nil
}

// CompareLinkAnnotations compares the link annotations on corresponding
// pages of the two documents.  Only the pages present in both documents
// are considered.
//
// For each pair of links, the destination page numbers, the link
// rectangles and all entries with simple values (booleans, numbers,
// strings and names) are compared.  One message is returned for every
// page where differences were found.
func (c *Comparator) CompareLinkAnnotations() ([]string, error) {
	out, err := newLinkDocument(c.out)
	if err != nil {
		return nil, fmt.Errorf("output document: %w", err)
	}
	cmp, err := newLinkDocument(c.cmp)
	if err != nil {
		return nil, fmt.Errorf("expected document: %w", err)
	}

	var msgs []string
	for i := range min(len(out.pages), len(cmp.pages)) {
		outLinks, err := out.links(i)
		if err != nil {
			return nil, err
		}
		cmpLinks, err := cmp.links(i)
		if err != nil {
			return nil, err
		}

		if len(outLinks) != len(cmpLinks) {
			msgs = append(msgs, fmt.Sprintf("Different number of links on page %d.", i+1))
			continue
		}
		for j := range cmpLinks {
			if !sameLink(out, cmp, outLinks[j], cmpLinks[j]) {
				msgs = append(msgs, fmt.Sprintf("Different links on page %d.\n%s\n%s",
					i+1, pdf.Format(cmpLinks[j]), pdf.Format(outLinks[j])))
				break
			}
		}
	}
	return msgs, nil
}

// links returns the link annotations on page i.
func (d *linkDocument) links(i int) ([]pdf.Dict, error) {
	page, err := pdf.GetDict(d.r, d.pages[i])
	if err != nil {
		return nil, err
	}
	annots, err := pdf.GetArray(d.r, page["Annots"])
	if err != nil {
		return nil, err
	}

	var res []pdf.Dict
	for _, obj := range annots {
		annot, err := pdf.GetDict(d.r, obj)
		if err != nil {
			return nil, err
		}
		if annot["Subtype"] == pdf.Name("Link") {
			res = append(res, annot)
		}
	}
	return res, nil
}

func sameLink(out, cmp *linkDocument, outLink, cmpLink pdf.Dict) bool {
	outDest := out.destination(outLink)
	cmpDest := cmp.destination(cmpLink)
	if outDest != nil && cmpDest != nil {
		if pdf.KindOf(outDest) != pdf.KindOf(cmpDest) {
			return false
		}
		if out.destPage(outDest) != cmp.destPage(cmpDest) {
			return false
		}
	}

	if len(outLink) != len(cmpLink) {
		return false
	}

	outRect, err1 := getRect(out.r, outLink["Rect"])
	cmpRect, err2 := getRect(cmp.r, cmpLink["Rect"])
	if err1 != nil || err2 != nil {
		return false
	}
	if outRect.LLx != cmpRect.LLx || outRect.LLy != cmpRect.LLy ||
		outRect.Dx() != cmpRect.Dx() || outRect.Dy() != cmpRect.Dy() {
		return false
	}

	for key, cmpVal := range cmpLink {
		outVal, ok := outLink[key]
		if !ok {
			return false
		}
		kind := pdf.KindOf(cmpVal)
		if kind != pdf.KindOf(outVal) {
			return false
		}
		switch kind {
		case pdf.KindBoolean, pdf.KindNumber, pdf.KindString, pdf.KindName:
			if pdf.Format(cmpVal) != pdf.Format(outVal) {
				return false
			}
		}
	}
	return true
}

// destination returns the destination of a link annotation, either from
// the Dest entry or from a GoTo action.  The result is not resolved.
func (d *linkDocument) destination(link pdf.Dict) pdf.Object {
	if dest := link["Dest"]; dest != nil {
		return dest
	}
	action, _ := pdf.GetDict(d.r, link["A"])
	if action["S"] == pdf.Name("GoTo") {
		return action["D"]
	}
	return nil
}

// destPage returns the number of the page a destination refers to,
// or -1 if the page cannot be determined.
func (d *linkDocument) destPage(dest pdf.Object) int {
	var explicit pdf.Object
	switch dest := dest.(type) {
	case pdf.Array:
		explicit = dest
	case pdf.Name:
		dests, _ := pdf.GetDict(d.r, d.catalog["Dests"])
		explicit = dests[dest]
	case pdf.String:
		names, _ := pdf.GetDict(d.r, d.catalog["Names"])
		explicit, _ = nametree.Lookup(d.r, names["Dests"], dest)
	}

	explicit, _ = pdf.Resolve(d.r, explicit)
	if dict, ok := explicit.(pdf.Dict); ok {
		explicit, _ = pdf.Resolve(d.r, dict["D"])
	}
	arr, ok := explicit.(pdf.Array)
	if !ok || len(arr) == 0 {
		return -1
	}
	ref, ok := arr[0].(pdf.Reference)
	if !ok {
		return -1
	}
	return d.index.Lookup(ref)
}

// getRect reads a PDF rectangle.  The corners are normalised so that
// LLx <= URx and LLy <= URy.
func getRect(r pdf.Getter, obj pdf.Object) (rect.Rect, error) {
	a, err := pdf.GetArray(r, obj)
	if err != nil {
		return rect.Rect{}, err
	}
	if len(a) != 4 {
		return rect.Rect{}, errNoRectangle
	}
	var v [4]float64
	for i, x := range a {
		v[i], err = pdf.GetNumber(r, x)
		if err != nil {
			return rect.Rect{}, err
		}
	}
	return rect.Rect{
		LLx: min(v[0], v[2]),
		LLy: min(v[1], v[3]),
		URx: max(v[0], v[2]),
		URy: max(v[1], v[3]),
	}, nil
}

var errNoRectangle = &pdf.MalformedFileError{Err: errors.New("not a rectangle")}
