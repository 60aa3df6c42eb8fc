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
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"seehuhn.de/go/postscript/funit"
	"seehuhn.de/go/sfnt/glyph"

	"github.com/CuteXiaoKe/pdf/sfnt/header"
	"github.com/CuteXiaoKe/pdf/sfnt/opentype/gdef"
	"github.com/CuteXiaoKe/pdf/sfnt/opentype/gtab"
	"github.com/CuteXiaoKe/pdf/sfnt/parser"
)

func (a *app) newMarkposCommand() *cobra.Command {
	var features []string

	cmd := &cobra.Command{
		Use:   "markpos [flags] FONT TEXT",
		Short: "Show the mark-to-base positioning of a string",
		Long: `Map the characters of TEXT to glyphs of the OpenType font FONT and
apply the mark-to-base lookups of the font's GPOS table.

For every glyph, the glyph ID, the advance width, the mark offset and the
relative position of the base glyph are printed.  All values are in font
design units.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			glyphs, err := markPositions(data, args[1], features, a)
			if err != nil {
				return err
			}
			return writeGlyphs(cmd, a, glyphs)
		},
	}

	cmd.Flags().StringSliceVar(&features, "features", nil,
		"GPOS feature `tags` to apply (default kern,mark,mkmk)")

	return cmd
}

// markPositions shapes text with the given font and returns the
// positioned glyphs.
func markPositions(data []byte, text string, features []string, a *app) ([]gtab.Glyph, error) {
	f, err := sfnt.Parse(data)
	if err != nil {
		return nil, err
	}
	unitsPerEm := f.UnitsPerEm()
	ppem := fixed.I(int(unitsPerEm))

	var buf sfnt.Buffer
	var glyphs []gtab.Glyph
	for _, r := range text {
		gid, err := f.GlyphIndex(&buf, r)
		if err != nil {
			return nil, err
		}
		adv, err := f.GlyphAdvance(&buf, gid, ppem, font.HintingNone)
		if err != nil {
			return nil, err
		}
		glyphs = append(glyphs, gtab.Glyph{
			GID:      glyph.ID(gid),
			XAdvance: funit.Int16(adv.Round()),
		})
	}

	r := bytes.NewReader(data)
	toc, err := header.Read(r)
	if err != nil {
		return nil, err
	}
	if !toc.Has("GPOS") {
		a.logger.Debug("font has no GPOS table")
		return glyphs, nil
	}

	var gdefTable *gdef.Table
	body, err := toc.ReadTable(r, "GDEF")
	if err == nil {
		gdefTable, err = gdef.Read(bytes.NewReader(body))
	}
	if err != nil && !parser.IsMissing(err) {
		return nil, err
	}

	body, err = toc.ReadTable(r, "GPOS")
	if err != nil {
		return nil, err
	}
	gpos, err := gtab.ReadGPOS(bytes.NewReader(body), gdefTable)
	if err != nil {
		return nil, err
	}

	use := gtab.GposDefaultFeatures
	if len(features) > 0 {
		use = make(map[string]bool)
		for _, tag := range features {
			use[tag] = true
		}
	}
	a.logger.Debug("applying GPOS lookups",
		FieldGlyphs, len(glyphs), FieldLookups, len(gpos.FindLookups(use)))

	err = gpos.ApplyFeatures(gtab.NewRun(glyphs), use)
	if err != nil {
		return nil, err
	}
	return glyphs, nil
}

func writeGlyphs(cmd *cobra.Command, a *app, glyphs []gtab.Glyph) error {
	w := cmd.OutOrStdout()
	styles := NewStyles(IsColorEnabled(a.color, w))

	title := fmt.Sprintf("%5s %6s %6s %6s %6s", "gid", "adv", "dx", "dy", "attach")
	if _, err := fmt.Fprintln(w, styles.Title.Render(title)); err != nil {
		return err
	}
	for _, g := range glyphs {
		attach := styles.Dim.Render(fmt.Sprintf("%6s", "-"))
		if g.Attach != 0 {
			attach = styles.Value.Render(fmt.Sprintf("%6d", g.Attach))
		}
		line := fmt.Sprintf("%5d %6d %6d %6d ", g.GID, g.XAdvance, g.XOffset, g.YOffset)
		if _, err := fmt.Fprintln(w, strings.TrimRight(line+attach, " ")); err != nil {
			return err
		}
	}
	return nil
}
