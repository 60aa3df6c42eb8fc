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
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/CuteXiaoKe/pdf"
	"github.com/CuteXiaoKe/pdf/compare"
)

// Comparison modes.
const (
	modeCatalog = "catalog"
	modePages   = "pages"
)

// Output formats.
const (
	formatText = "text"
	formatXML  = "xml"
	formatJSON = "json"
	formatYAML = "yaml"
)

type compareFlags struct {
	mode          string
	format        string
	config        string
	limit         int
	noCachedPages bool
	encryption    bool
	parallel      bool
	exclude       []string
}

func (a *app) newCompareCommand() *cobra.Command {
	f := &compareFlags{}

	cmd := &cobra.Command{
		Use:   "compare [flags] OUT CMP",
		Short: "Compare the object structure of two PDF files",
		Long: `Compare the object graph of OUT against the expected document CMP.

In "catalog" mode the documents are compared starting from the document
catalogs.  In "pages" mode the pages are compared one by one, followed by
the rest of the document catalog.

In "catalog" mode, references to page objects only need to point to the
same page number in both documents; the page contents are not compared.
Use --no-cached-pages or --mode pages to compare page contents as well.

The exit code is 0 if the documents are equal, 1 if differences were found,
and 2 if the comparison failed.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCompare(cmd, f, args[0], args[1])
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.mode, "mode", modeCatalog, "comparison mode: catalog, pages")
	flags.StringVar(&f.format, "format", formatText, "output format: text, xml, json, yaml")
	flags.StringVar(&f.config, "config", "", "read comparison options from YAML `file`")
	flags.IntVar(&f.limit, "limit", 0, "maximum number of differences to report")
	flags.BoolVar(&f.noCachedPages, "no-cached-pages", false, "compare page references structurally")
	flags.BoolVar(&f.encryption, "encryption", false, "compare the encryption dictionaries")
	flags.BoolVar(&f.parallel, "parallel", false, "compare pages concurrently")
	flags.StringSliceVar(&f.exclude, "exclude", nil, "dictionary `keys` to ignore")

	return cmd
}

// options merges the configuration file with the command line flags.
// Flags which were given explicitly take precedence.
func (f *compareFlags) options(cmd *cobra.Command) (*compare.Options, error) {
	opt := compare.DefaultOptions()
	if f.config != "" {
		var err error
		opt, err = compare.LoadConfig(f.config)
		if err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("limit") {
		opt.MaxDifferences = f.limit
	}
	if flags.Changed("no-cached-pages") {
		opt.UseCachedPages = !f.noCachedPages
	}
	if flags.Changed("encryption") {
		opt.CompareEncryption = f.encryption
	}
	if flags.Changed("parallel") {
		opt.Parallel = f.parallel
	}
	for _, key := range f.exclude {
		opt.ExcludeKeys = append(opt.ExcludeKeys, pdf.Name(key))
	}
	return opt, nil
}

func (a *app) runCompare(cmd *cobra.Command, f *compareFlags, outName, cmpName string) error {
	switch f.format {
	case formatText, formatXML, formatJSON, formatYAML:
		// pass
	default:
		return fmt.Errorf("unknown output format %q", f.format)
	}

	opt, err := f.options(cmd)
	if err != nil {
		return err
	}

	out, err := pdf.Open(outName)
	if err != nil {
		return err
	}
	defer out.Close()
	cmp, err := pdf.Open(cmpName)
	if err != nil {
		return err
	}
	defer cmp.Close()

	a.logger.Debug("comparing documents",
		FieldOut, outName, FieldCmp, cmpName,
		FieldMode, f.mode, FieldLimit, opt.MaxDifferences)

	c := compare.New(out, cmp, opt)
	var res *compare.Result
	var pages []compare.PageResult
	switch f.mode {
	case modeCatalog:
		res, err = c.CompareCatalogs()
	case modePages:
		res, pages, err = c.CompareByContentPerPage()
	default:
		return fmt.Errorf("unknown comparison mode %q", f.mode)
	}
	if err != nil {
		return err
	}
	a.logger.Debug("comparison finished", FieldCount, res.Count(), FieldPages, len(pages))

	w := cmd.OutOrStdout()
	switch f.format {
	case formatXML:
		err = res.Structured().WriteXML(w)
	case formatJSON:
		err = res.Structured().WriteJSON(w)
	case formatYAML:
		err = res.Structured().WriteYAML(w)
	default:
		styles := NewStyles(IsColorEnabled(a.color, w))
		err = writeText(w, styles, res, pages)
	}
	if err != nil {
		return err
	}

	if !res.IsEqual() {
		return ErrDifferencesFound
	}
	return nil
}

// writeText writes a human readable report of the differences.
// Pages are numbered from 1 in the output.
func writeText(w io.Writer, styles *Styles, res *compare.Result, pages []compare.PageResult) error {
	for _, p := range pages {
		status := styles.Success.Render("equal")
		if !p.Equal {
			status = styles.Failure.Render("different")
		}
		_, err := fmt.Fprintf(w, "%s %s\n", styles.Title.Render(fmt.Sprintf("page %d:", p.Page+1)), status)
		if err != nil {
			return err
		}
	}

	diffs := res.Differences()
	if len(diffs) == 0 {
		_, err := fmt.Fprintln(w, styles.Success.Render("No differences found."))
		return err
	}

	sep := styles.Separator.Render(rule(w))
	for i, d := range diffs {
		if i > 0 {
			if _, err := fmt.Fprintln(w, sep); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintf(w, "%s\n%s\n",
			styles.Message.Render(d.Message),
			styles.Path.Render(d.Path.String()))
		if err != nil {
			return err
		}
	}

	summary := fmt.Sprintf("%d difference(s) found", len(diffs))
	if res.LimitReached() {
		summary += " (limit reached)"
	}
	_, err := fmt.Fprintln(w, styles.Failure.Render(summary))
	return err
}
