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

// Package compare finds structural differences between two PDF documents.
//
// The comparison walks the object graphs of both documents in parallel,
// starting from the document catalog or from pairs of corresponding
// pages.  Every difference is reported together with a [Path], which
// locates the differing objects relative to the nearest enclosing pair of
// indirect objects.
//
// Throughout this package, "out" refers to the document being checked and
// "cmp" refers to the expected document.
package compare

import (
	"bytes"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/exp/maps"

	"github.com/CuteXiaoKe/pdf"
	"github.com/CuteXiaoKe/pdf/logging"
	"github.com/CuteXiaoKe/pdf/pagetree"
)

// Options control the behaviour of a [Comparator].
type Options struct {
	// MaxDifferences is the maximal number of differences recorded.
	// Values smaller than 1 are replaced by 1.
	MaxDifferences int `yaml:"max-differences"`

	// UseCachedPages enables comparing references to page objects by page
	// number, instead of by content.
	UseCachedPages bool `yaml:"use-cached-pages"`

	// CompareEncryption enables the comparison of the encryption
	// dictionaries in [Comparator.CompareByContentPerPage].
	CompareEncryption bool `yaml:"compare-encryption"`

	// ExcludeKeys lists dictionary keys which are ignored in all
	// dictionaries.
	ExcludeKeys []pdf.Name `yaml:"exclude-keys"`

	// ContextBytes is the number of bytes shown on either side of the first
	// difference between stream contents.  If this is zero, 10 is used.
	ContextBytes int `yaml:"context-bytes"`

	// Parallel enables comparing pages concurrently.
	Parallel bool `yaml:"parallel"`
}

// DefaultOptions returns the options used when nil is passed to [New].
func DefaultOptions() *Options {
	return &Options{
		MaxDifferences: 1,
		UseCachedPages: true,
		ContextBytes:   10,
	}
}

// Comparator compares the objects of two PDF documents.
//
// A Comparator can be used concurrently from several goroutines, provided
// the underlying documents support concurrent calls to Get.
type Comparator struct {
	out, cmp pdf.Getter
	opt      Options
	exclude  map[pdf.Name]bool

	pagesOnce sync.Once
	outPages  pagetree.PageIndex
	cmpPages  pagetree.PageIndex
	pagesErr  error
}

// New returns a new Comparator.  The document out is checked against the
// expected document cmp.  If opt is nil, [DefaultOptions] are used.
func New(out, cmp pdf.Getter, opt *Options) *Comparator {
	if opt == nil {
		opt = DefaultOptions()
	}
	c := &Comparator{
		out:     out,
		cmp:     cmp,
		opt:     *opt,
		exclude: make(map[pdf.Name]bool),
	}
	if c.opt.MaxDifferences < 1 {
		c.opt.MaxDifferences = 1
	}
	if c.opt.ContextBytes <= 0 {
		c.opt.ContextBytes = 10
	}
	for _, key := range opt.ExcludeKeys {
		c.exclude[key] = true
	}
	return c
}

func (c *Comparator) newResult() *Result {
	return NewResult(c.opt.MaxDifferences)
}

// Keys which are never compared.
var ignoredKeys = map[pdf.Name]bool{
	"Parent":  true,
	"P":       true,
	"ModDate": true,
}

// CompareObjects compares two objects and all objects reachable from them.
// The returned paths are relative to base, which is usually the pair of
// indirect objects containing out and cmp.
func (c *Comparator) CompareObjects(out, cmp pdf.Object, base Path) *Result {
	res := c.newResult()
	c.compareObjects(out, cmp, base, res)
	return res
}

// compareObjects compares out to cmp and records all differences in res.
// The return value indicates whether the objects are equal.
func (c *Comparator) compareObjects(out, cmp pdf.Object, path Path, res *Result) bool {
	outDirect, err := pdf.Resolve(c.out, out)
	if err != nil {
		res.add(path, "Cannot read object: "+err.Error())
		return false
	}
	cmpDirect, err := pdf.Resolve(c.cmp, cmp)
	if err != nil {
		res.add(path, "Cannot read expected object: "+err.Error())
		return false
	}

	if outDirect == nil && cmpDirect == nil {
		return true
	} else if outDirect == nil {
		res.add(path, "Expected object was not found.")
		return false
	} else if cmpDirect == nil {
		res.add(path, "Found object which was not expected to be found.")
		return false
	}

	outKind := pdf.KindOf(outDirect)
	cmpKind := pdf.KindOf(cmpDirect)
	if outKind != cmpKind {
		res.add(path, fmt.Sprintf("Types do not match. Expected: %s. Found: %s.", cmpKind, outKind))
		return false
	}

	outRef, outIsRef := out.(pdf.Reference)
	cmpRef, cmpIsRef := cmp.(pdf.Reference)
	if cmpIsRef && !outIsRef {
		res.add(path, "Expected indirect object.")
		return false
	} else if !cmpIsRef && outIsRef {
		res.add(path, "Expected direct object.")
		return false
	}

	if cmpIsRef {
		if path.IsComparing(cmpRef, outRef) {
			return true
		}
		path = path.Descend(cmpRef, outRef)

		if c.opt.UseCachedPages && isPage(cmpDirect) {
			return c.comparePageRefs(outRef, cmpRef, outDirect, path, res)
		}
	}

	switch cmpKind {
	case pdf.KindDictionary:
		return c.compareDicts(outDirect.(pdf.Dict), cmpDirect.(pdf.Dict), path, res, nil, false)
	case pdf.KindStream:
		return c.compareStreams(outDirect.(*pdf.Stream), cmpDirect.(*pdf.Stream), path, res)
	case pdf.KindArray:
		return c.compareArrays(outDirect.(pdf.Array), cmpDirect.(pdf.Array), path, res)
	case pdf.KindName:
		return compareNames(outDirect.(pdf.Name), cmpDirect.(pdf.Name), path, res)
	case pdf.KindNumber:
		return compareNumbers(outDirect, cmpDirect, path, res)
	case pdf.KindString:
		return compareStrings(outDirect.(pdf.String), cmpDirect.(pdf.String), path, res)
	case pdf.KindBoolean:
		return compareBools(outDirect.(pdf.Bool), cmpDirect.(pdf.Bool), path, res)
	default:
		panic(fmt.Sprintf("compare: unsupported object type %T", cmpDirect))
	}
}

func isPage(obj pdf.Object) bool {
	dict, ok := obj.(pdf.Dict)
	return ok && dict["Type"] == pdf.Name("Page")
}

// comparePageRefs compares references to page objects by their position in
// the page tree.
func (c *Comparator) comparePageRefs(outRef, cmpRef pdf.Reference, outDirect pdf.Object, path Path, res *Result) bool {
	if !isPage(outDirect) {
		res.add(path, "Expected a page. Found not a page.")
		return false
	}

	c.pagesOnce.Do(func() {
		c.outPages, _, c.pagesErr = pagetree.NewPageIndex(c.out)
		if c.pagesErr != nil {
			return
		}
		c.cmpPages, _, c.pagesErr = pagetree.NewPageIndex(c.cmp)
	})
	if c.pagesErr != nil {
		res.add(path, "Cannot read page tree: "+c.pagesErr.Error())
		return false
	}

	cmpIdx := c.cmpPages.Lookup(cmpRef)
	outIdx := c.outPages.Lookup(outRef)
	if cmpIdx >= 0 && cmpIdx == outIdx {
		return true
	}
	res.add(path, fmt.Sprintf("The dictionaries refer to different pages. Expected page number: %d. Found: %d", cmpIdx, outIdx))
	return false
}

// compareDicts compares two dictionaries entry by entry.  Keys listed in
// exclude are skipped.  If streams is true, the dictionaries belong to
// streams and the entries describing the stream encoding are skipped.
func (c *Comparator) compareDicts(out, cmp pdf.Dict, path Path, res *Result, exclude map[pdf.Name]bool, streams bool) bool {
	keys := append(maps.Keys(cmp), maps.Keys(out)...)
	slices.Sort(keys)
	keys = slices.Compact(keys)

	equal := true
	for _, key := range keys {
		if exclude[key] || c.exclude[key] || ignoredKeys[key] {
			continue
		}
		if streams && (key == "Filter" || key == "Length") {
			continue
		}

		if key == "BaseFont" || key == "FontName" {
			ok, handled := c.compareFontNames(out[key], cmp[key], key, path, res)
			if handled {
				equal = equal && ok
				if !equal && res.LimitReached() {
					return false
				}
				continue
			}
		}

		equal = c.compareObjects(out[key], cmp[key], path.Push(KeyStep(key)), res) && equal
		if !equal && res.LimitReached() {
			return false
		}
	}
	return equal
}

// compareFontNames compares font names which carry a subset tag, ignoring
// the tag.  If cmp has no subset tag, handled is false and the caller
// compares the values as usual.
func (c *Comparator) compareFontNames(out, cmp pdf.Object, key pdf.Name, path Path, res *Result) (equal, handled bool) {
	cmpName, _ := pdf.Resolve(c.cmp, cmp)
	cmpFont, ok := cmpName.(pdf.Name)
	if !ok || strings.IndexByte(string(cmpFont), '+') <= 0 {
		return false, false
	}

	outName, _ := pdf.Resolve(c.out, out)
	outFont, ok := outName.(pdf.Name)
	if ok {
		cmpSuffix := cmpFont[strings.IndexByte(string(cmpFont), '+'):]
		if pos := strings.IndexByte(string(outFont), '+'); pos >= 0 && outFont[pos:] == cmpSuffix {
			return true, true
		}
	}

	res.add(path, fmt.Sprintf("PdfDictionary %s entry: Expected: %s. Found: %s",
		pdf.Format(key), pdf.Format(cmpFont), pdf.Format(outName)))
	return false, true
}

func (c *Comparator) compareArrays(out, cmp pdf.Array, path Path, res *Result) bool {
	if len(out) != len(cmp) {
		res.add(path, fmt.Sprintf("PdfArrays. Lengths are different. Expected: %d. Found: %d.", len(cmp), len(out)))
		return false
	}

	equal := true
	for i := range cmp {
		equal = c.compareObjects(out[i], cmp[i], path.Push(IndexStep(i)), res) && equal
		if !equal && res.LimitReached() {
			return false
		}
	}
	return equal
}

// compareStreams compares the stream data and, if the data agree, the
// stream dictionaries.  If the out stream is FlateDecode compressed, the
// decoded data of both streams is compared.
func (c *Comparator) compareStreams(out, cmp *pdf.Stream, path Path, res *Result) bool {
	decode := out.Dict["Filter"] == pdf.Name("FlateDecode")
	outData, err := pdf.ReadAll(out, decode)
	if err != nil {
		res.add(path, "Cannot read stream data: "+err.Error())
		return false
	}
	cmpData, err := pdf.ReadAll(cmp, decode)
	if err != nil {
		res.add(path, "Cannot read expected stream data: "+err.Error())
		return false
	}

	if bytes.Equal(outData, cmpData) {
		return c.compareDicts(out.Dict, cmp.Dict, path, res, nil, true)
	}

	msg := &strings.Builder{}
	if len(outData) != len(cmpData) {
		fmt.Fprintf(msg, "PdfStream. Lengths are different. Expected: %d. Found: %d\n", len(cmpData), len(outData))
	} else {
		msg.WriteString("PdfStream. Bytes are different.\n")
	}
	msg.WriteString(bytesDifference(outData, cmpData, c.opt.ContextBytes))
	res.add(path, msg.String())
	return false
}

// bytesDifference describes the first position where out and cmp differ.
func bytesDifference(out, cmp []byte, context int) string {
	n := min(len(out), len(cmp))
	first := -1
	count := 0
	for i := range n {
		if out[i] != cmp[i] {
			if count == 0 {
				first = i
			}
			count++
		}
	}
	if count == 0 {
		return fmt.Sprintf("Bytes of the shorter array are the same as the first %d bytes of the longer one.", n)
	}

	around := func(data []byte) string {
		l := max(0, first-context)
		r := min(len(data), first+context)
		return strings.NewReplacer("\r", " ", "\n", " ").Replace(string(data[l:r]))
	}
	return fmt.Sprintf("First bytes difference is encountered at index %d. Expected: %s (%s). Found: %s (%s). Total number of different bytes: %d",
		first, string(cmp[first:first+1]), around(cmp), string(out[first:first+1]), around(out), count)
}

func compareNames(out, cmp pdf.Name, path Path, res *Result) bool {
	if out == cmp {
		return true
	}
	res.add(path, fmt.Sprintf("PdfName. Expected: %s. Found: %s", pdf.Format(cmp), pdf.Format(out)))
	return false
}

func compareNumbers(out, cmp pdf.Object, path Path, res *Result) bool {
	outVal, _ := numberValue(out)
	cmpVal, _ := numberValue(cmp)
	if outVal == cmpVal {
		return true
	}
	res.add(path, fmt.Sprintf("PdfNumber. Expected: %s. Found: %s", formatNumber(cmpVal), formatNumber(outVal)))
	return false
}

func numberValue(obj pdf.Object) (float64, bool) {
	switch x := obj.(type) {
	case pdf.Integer:
		return float64(x), true
	case pdf.Real:
		return float64(x), true
	}
	return 0, false
}

func formatNumber(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}

// compareStrings compares two strings.  Strings with different bytes but
// the same text content are considered equal.
func compareStrings(out, cmp pdf.String, path Path, res *Result) bool {
	if bytes.Equal(out, cmp) {
		return true
	}

	outText := []rune(out.AsTextString())
	cmpText := []rune(cmp.AsTextString())
	if len(outText) != len(cmpText) {
		res.add(path, fmt.Sprintf("PdfString. Lengths are different. Expected: %d. Found: %d", len(cmpText), len(outText)))
		return false
	}
	for i := range cmpText {
		if cmpText[i] == outText[i] {
			continue
		}
		l := max(0, i-10)
		r := min(len(cmpText), i+10)
		context := func(text []rune) string {
			return strings.ReplaceAll(string(text[l:r]), "\n", `\n`)
		}
		res.add(path.Push(OffsetStep(i)), fmt.Sprintf("PdfString. Characters differ at position %d. Expected: %c (%s). Found: %c (%s).",
			i, cmpText[i], context(cmpText), outText[i], context(outText)))
		return false
	}
	return true
}

func compareBools(out, cmp pdf.Bool, path Path, res *Result) bool {
	if out == cmp {
		return true
	}
	res.add(path, fmt.Sprintf("PdfBoolean. Expected: %t. Found: %t.", bool(cmp), bool(out)))
	return false
}

// The following methods compare two objects without recording the
// location of differences.  References are resolved in the respective
// documents.

// CompareDictionaries returns true if the two dictionaries are equal.
func (c *Comparator) CompareDictionaries(out, cmp pdf.Dict) bool {
	return c.compareDicts(out, cmp, Path{}, NewResult(1), nil, false)
}

// CompareArrays returns true if the two arrays are equal.
func (c *Comparator) CompareArrays(out, cmp pdf.Array) bool {
	return c.compareArrays(out, cmp, Path{}, NewResult(1))
}

// CompareStreams returns true if the two streams are equal.
func (c *Comparator) CompareStreams(out, cmp *pdf.Stream) bool {
	return c.compareStreams(out, cmp, Path{}, NewResult(1))
}

// CompareNames returns true if the two names are equal.
func CompareNames(out, cmp pdf.Name) bool {
	return out == cmp
}

// CompareNumbers returns true if the two numbers have the same value.
func CompareNumbers(out, cmp pdf.Object) bool {
	outVal, ok1 := numberValue(out)
	cmpVal, ok2 := numberValue(cmp)
	return ok1 && ok2 && outVal == cmpVal
}

// CompareStrings returns true if the two strings are equal.
func CompareStrings(out, cmp pdf.String) bool {
	return compareStrings(out, cmp, Path{}, NewResult(1))
}

// CompareBooleans returns true if the two booleans are equal.
func CompareBooleans(out, cmp pdf.Bool) bool {
	return out == cmp
}

func logLimit(res *Result) {
	if res.LimitReached() {
		logging.Logger().Debug("difference limit reached", "limit", res.Limit)
	}
}
