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
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/CuteXiaoKe/pdf"
	"github.com/CuteXiaoKe/pdf/pagetree"
)

// PageResult records whether a pair of corresponding pages compared equal.
// Page numbers start at 0.
type PageResult struct {
	Page  int
	Equal bool
}

// Keys of the encryption dictionary which depend on the passwords and the
// file ID, and thus differ between otherwise identical documents.
var encryptKeys = map[pdf.Name]bool{
	"O":     true,
	"U":     true,
	"OE":    true,
	"UE":    true,
	"Perms": true,
}

// rootRefs returns the references of the document catalogs.
func (c *Comparator) rootRefs() (cmpRoot, outRoot pdf.Reference, err error) {
	outRoot, ok := c.out.GetMeta().Trailer["Root"].(pdf.Reference)
	if !ok {
		return 0, 0, &pdf.MalformedFileError{Err: errNoRoot, Loc: []string{"output document"}}
	}
	cmpRoot, ok = c.cmp.GetMeta().Trailer["Root"].(pdf.Reference)
	if !ok {
		return 0, 0, &pdf.MalformedFileError{Err: errNoRoot, Loc: []string{"expected document"}}
	}
	return cmpRoot, outRoot, nil
}

// CompareCatalogs compares the two documents, starting from the document
// catalogs.  The document metadata streams are ignored.
//
// An error is returned only if one of the document catalogs cannot be
// read.  All other problems are reported as differences.
func (c *Comparator) CompareCatalogs() (*Result, error) {
	cmpRoot, outRoot, err := c.rootRefs()
	if err != nil {
		return nil, err
	}
	outCatalog, err := pdf.GetCatalog(c.out)
	if err != nil {
		return nil, err
	}
	cmpCatalog, err := pdf.GetCatalog(c.cmp)
	if err != nil {
		return nil, err
	}

	res := c.newResult()
	path := Path{}.Descend(cmpRoot, outRoot)
	c.compareDicts(outCatalog, cmpCatalog, path, res, map[pdf.Name]bool{"Metadata": true}, false)
	logLimit(res)
	return res, nil
}

// CompareByContentPerPage compares the documents page by page.
//
// Each pair of pages is compared under its own path root.  Afterwards, the
// document catalogs are compared, ignoring the page tree and the metadata
// stream.  If [Options.CompareEncryption] is set, the encryption
// dictionaries are compared last.
//
// If the documents have different numbers of pages, a single difference is
// reported and no pages are compared.  Otherwise, the second return value
// gives the outcome for each page.
func (c *Comparator) CompareByContentPerPage() (*Result, []PageResult, error) {
	cmpRoot, outRoot, err := c.rootRefs()
	if err != nil {
		return nil, nil, err
	}
	outCatalog, err := pdf.GetCatalog(c.out)
	if err != nil {
		return nil, nil, err
	}
	cmpCatalog, err := pdf.GetCatalog(c.cmp)
	if err != nil {
		return nil, nil, err
	}
	outPages, err := pagetree.FindPages(c.out)
	if err != nil {
		return nil, nil, fmt.Errorf("output document: %w", err)
	}
	cmpPages, err := pagetree.FindPages(c.cmp)
	if err != nil {
		return nil, nil, fmt.Errorf("expected document: %w", err)
	}

	res := c.newResult()
	catalogPath := Path{}.Descend(cmpRoot, outRoot)

	if len(outPages) != len(cmpPages) {
		res.add(catalogPath.Push(KeyStep("Pages")),
			fmt.Sprintf("Number of pages is different. Expected: %d. Found: %d.", len(cmpPages), len(outPages)))
		return res, nil, nil
	}

	pageRes := make([]*Result, len(cmpPages))
	if c.opt.Parallel {
		g := &errgroup.Group{}
		g.SetLimit(runtime.GOMAXPROCS(0))
		for i := range cmpPages {
			g.Go(func() error {
				pageRes[i] = c.comparePage(outPages[i], cmpPages[i])
				return nil
			})
		}
		_ = g.Wait() // comparePage never fails
	} else {
		for i := range cmpPages {
			pageRes[i] = c.comparePage(outPages[i], cmpPages[i])
		}
	}

	pages := make([]PageResult, len(cmpPages))
	for i, pr := range pageRes {
		pages[i] = PageResult{Page: i, Equal: pr.IsEqual()}
		res.merge(pr)
	}

	exclude := map[pdf.Name]bool{"Pages": true, "Metadata": true}
	c.compareDicts(outCatalog, cmpCatalog, catalogPath, res, exclude, false)

	if c.opt.CompareEncryption {
		c.compareEncryption(res)
	}

	logLimit(res)
	return res, pages, nil
}

// comparePage compares one pair of page objects.
func (c *Comparator) comparePage(outRef, cmpRef pdf.Reference) *Result {
	res := c.newResult()
	path := Path{}.Descend(cmpRef, outRef)

	outPage, err := pdf.GetDict(c.out, outRef)
	if err != nil {
		res.add(path, "Cannot read page: "+err.Error())
		return res
	}
	cmpPage, err := pdf.GetDict(c.cmp, cmpRef)
	if err != nil {
		res.add(path, "Cannot read expected page: "+err.Error())
		return res
	}

	c.compareDicts(outPage, cmpPage, path, res, nil, false)
	return res
}

// compareEncryption compares the encryption dictionaries of the two
// documents.  Entries which depend on the passwords are ignored.
func (c *Comparator) compareEncryption(res *Result) {
	outEnc := c.out.GetMeta().Trailer["Encrypt"]
	cmpEnc := c.cmp.GetMeta().Trailer["Encrypt"]
	if outEnc == nil && cmpEnc == nil {
		return
	}

	path := TrailerPath().Push(KeyStep("Encrypt"))
	if outEnc == nil {
		res.add(path, "Expected encrypted document.")
		return
	} else if cmpEnc == nil {
		res.add(path, "Expected not encrypted document.")
		return
	}

	outDict, err := pdf.GetDict(c.out, outEnc)
	if err != nil {
		res.add(path, "Cannot read encryption dictionary: "+err.Error())
		return
	}
	cmpDict, err := pdf.GetDict(c.cmp, cmpEnc)
	if err != nil {
		res.add(path, "Cannot read expected encryption dictionary: "+err.Error())
		return
	}
	c.compareDicts(outDict, cmpDict, path, res, encryptKeys, false)
}

// infoKeys lists the document information entries compared by
// [Comparator.CompareDocumentInfo].
var infoKeys = []pdf.Name{"Title", "Author", "Subject", "Keywords"}

// CompareDocumentInfo compares the title, author, subject and keywords in
// the document information dictionaries.  Missing entries are treated like
// empty strings.  The keys of all differing entries are returned.
func (c *Comparator) CompareDocumentInfo() ([]pdf.Name, error) {
	outInfo, err := pdf.GetInfo(c.out)
	if err != nil {
		return nil, err
	}
	cmpInfo, err := pdf.GetInfo(c.cmp)
	if err != nil {
		return nil, err
	}

	var res []pdf.Name
	for _, key := range infoKeys {
		outText, err := infoText(c.out, outInfo, key)
		if err != nil {
			return nil, err
		}
		cmpText, err := infoText(c.cmp, cmpInfo, key)
		if err != nil {
			return nil, err
		}
		if outText != cmpText {
			res = append(res, key)
		}
	}
	return res, nil
}

func infoText(r pdf.Getter, info pdf.Dict, key pdf.Name) (string, error) {
	s, err := pdf.GetString(r, info[key])
	if err != nil {
		return "", pdf.Wrap(err, "document information "+string(key))
	}
	return s.AsTextString(), nil
}

var errNoRoot = errors.New("missing document catalog reference")
