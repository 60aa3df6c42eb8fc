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

package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/CuteXiaoKe/pdf"
	"github.com/CuteXiaoKe/pdf/pagetree"
)

// writeTestPDF writes a document with the given page labels and title to
// a file in a temporary directory and returns the file name.
func writeTestPDF(t *testing.T, name, title string, labels ...string) string {
	t.Helper()

	doc := pdf.NewData(pdf.V1_7)
	tree := pagetree.NewWriter(doc)
	for _, label := range labels {
		contents := doc.Alloc()
		require.NoError(t, doc.PutStream(contents, nil, []byte("BT ("+label+") Tj ET")))
		_, err := tree.AppendPage(pdf.Dict{
			"MediaBox": pdf.Array{pdf.Integer(0), pdf.Integer(0), pdf.Integer(200), pdf.Integer(200)},
			"Contents": contents,
			"Label":    pdf.String(label),
		})
		require.NoError(t, err)
	}
	root, err := tree.Close()
	require.NoError(t, err)

	catalog := doc.Alloc()
	require.NoError(t, doc.Put(catalog, pdf.Dict{
		"Type":  pdf.Name("Catalog"),
		"Pages": root,
	}))
	info := doc.Alloc()
	require.NoError(t, doc.Put(info, pdf.Dict{
		"Title": pdf.TextString(title),
	}))
	meta := doc.GetMeta()
	meta.Trailer["Root"] = catalog
	meta.Trailer["Info"] = info

	fname := filepath.Join(t.TempDir(), name)
	buf := &bytes.Buffer{}
	require.NoError(t, doc.Write(buf))
	require.NoError(t, os.WriteFile(fname, buf.Bytes(), 0o644))
	return fname
}

func run(args ...string) (code int, stdout, stderr string) {
	outBuf := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}
	code = Run(args, outBuf, errBuf)
	return code, outBuf.String(), errBuf.String()
}

func TestCompareEqual(t *testing.T) {
	a := writeTestPDF(t, "a.pdf", "Test", "one", "two")
	b := writeTestPDF(t, "b.pdf", "Test", "one", "two")

	code, stdout, _ := run("compare", "--color", "never", a, b)
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "No differences found.")
}

func TestCompareDifferent(t *testing.T) {
	a := writeTestPDF(t, "a.pdf", "Test", "one", "two")
	b := writeTestPDF(t, "b.pdf", "Test", "one", "three")

	// with cached pages, only the page numbers are compared
	code, _, _ := run("compare", a, b)
	assert.Equal(t, ExitSuccess, code)

	code, help, _ := run("compare", "--help")
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, help, "page contents are not compared")

	code, stdout, _ := run("compare", "--color", "never", "--no-cached-pages", "--limit", "5", a, b)
	assert.Equal(t, ExitDifferences, code)
	assert.Contains(t, stdout, "2 difference(s) found")
	assert.Contains(t, stdout, "PdfStream. Lengths are different. Expected: 16. Found: 14")
	assert.Contains(t, stdout, "Dict key: /Label")

	code, stdout, _ = run("compare", "--color", "never", "--no-cached-pages", a, b)
	assert.Equal(t, ExitDifferences, code)
	assert.Contains(t, stdout, "1 difference(s) found (limit reached)")
}

func TestComparePages(t *testing.T) {
	a := writeTestPDF(t, "a.pdf", "Test", "one", "two")
	b := writeTestPDF(t, "b.pdf", "Test", "one", "three")

	code, stdout, _ := run("compare", "--color", "never", "--mode", "pages", "--parallel", a, b)
	assert.Equal(t, ExitDifferences, code)
	assert.Contains(t, stdout, "page 1: equal")
	assert.Contains(t, stdout, "page 2: different")
	assert.NotContains(t, stdout, "page 0:")
}

func TestCompareJSON(t *testing.T) {
	a := writeTestPDF(t, "a.pdf", "Test", "one", "two")
	b := writeTestPDF(t, "b.pdf", "Test", "uno", "dos")

	code, stdout, _ := run("compare", "--format", "json", "--mode", "pages", "--limit", "5", a, b)
	require.Equal(t, ExitDifferences, code)

	var report struct {
		Count  int `json:"count"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.Equal(t, 4, report.Count)
	assert.Len(t, report.Errors, 4)
}

func TestCompareExclude(t *testing.T) {
	a := writeTestPDF(t, "a.pdf", "Test", "one")
	b := writeTestPDF(t, "b.pdf", "Test", "two")

	code, _, _ := run("compare", "--mode", "pages", "--exclude", "Label,Contents", a, b)
	assert.Equal(t, ExitSuccess, code)
}

func TestCompareConfig(t *testing.T) {
	a := writeTestPDF(t, "a.pdf", "Test", "one")
	b := writeTestPDF(t, "b.pdf", "Test", "two")
	config := filepath.Join(t.TempDir(), "pdfcmp.yaml")
	require.NoError(t, os.WriteFile(config, []byte("exclude-keys: [Label, Contents]\n"), 0o644))

	code, _, _ := run("compare", "--mode", "pages", "--config", config, a, b)
	assert.Equal(t, ExitSuccess, code)
}

func TestCompareErrors(t *testing.T) {
	a := writeTestPDF(t, "a.pdf", "Test", "one")
	missing := filepath.Join(t.TempDir(), "missing.pdf")

	tests := []struct {
		name string
		args []string
	}{
		{"missing file", []string{"compare", a, missing}},
		{"bad mode", []string{"compare", "--mode", "fonts", a, a}},
		{"bad format", []string{"compare", "--format", "csv", a, a}},
		{"wrong arguments", []string{"compare", a}},
		{"unknown command", []string{"frobnicate"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := run(tt.args...)
			assert.Equal(t, ExitError, code)
			assert.Contains(t, stderr, "command failed")
		})
	}
}

func TestInfo(t *testing.T) {
	a := writeTestPDF(t, "a.pdf", "First", "one")
	b := writeTestPDF(t, "b.pdf", "Second", "one")

	code, stdout, _ := run("info", "--color", "never", a, b)
	assert.Equal(t, ExitDifferences, code)
	assert.Contains(t, stdout, "different: /Title")

	code, stdout, _ = run("info", "--color", "never", a, a)
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "Document information is equal.")
}

func TestLinks(t *testing.T) {
	a := writeTestPDF(t, "a.pdf", "Test", "one", "two")

	code, stdout, _ := run("links", "--color", "never", a, a)
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "Link annotations are equal.")
}

func TestMarkpos(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "go.ttf")
	require.NoError(t, os.WriteFile(fname, goregular.TTF, 0o644))

	code, stdout, _ := run("markpos", "--color", "never", fname, "ab")
	require.Equal(t, ExitSuccess, code)

	lines := bytes.Split(bytes.TrimSpace([]byte(stdout)), []byte("\n"))
	require.Len(t, lines, 3)
	assert.Contains(t, string(lines[0]), "gid")
	assert.Contains(t, string(lines[0]), "attach")

	code, _, _ = run("markpos", fname)
	assert.Equal(t, ExitError, code)
}

func TestMarkposNotAFont(t *testing.T) {
	a := writeTestPDF(t, "a.pdf", "Test", "one")

	code, _, stderr := run("markpos", a, "x")
	assert.Equal(t, ExitError, code)
	assert.Contains(t, stderr, "command failed")
}

func TestVersion(t *testing.T) {
	code, stdout, _ := run("version")
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "pdfcmp")
}

func TestIsColorEnabled(t *testing.T) {
	buf := &bytes.Buffer{}
	assert.True(t, IsColorEnabled("always", buf))
	assert.False(t, IsColorEnabled("never", buf))
	assert.False(t, IsColorEnabled("auto", buf))
}

func TestTerminalWidth(t *testing.T) {
	assert.Equal(t, defaultTermWidth, terminalWidth(&bytes.Buffer{}))
	assert.Len(t, rule(&bytes.Buffer{}), 78)
}
