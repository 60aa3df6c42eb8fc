// seehuhn.de/go/pdf - a library for reading and writing PDF files
// Copyright (C) 2022  Jochen Voss <voss@seehuhn.de>
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

package gtab

import (
	"seehuhn.de/go/sfnt/glyph"

	"github.com/CuteXiaoKe/pdf/sfnt/opentype/coverage"
	"github.com/CuteXiaoKe/pdf/sfnt/opentype/gdef"
)

// KeepGlyphFn is used to drop ignored characters in lookups with non-zero
// lookup flags.  Functions of this type return true if the glyph should be
// used, and false if the glyph should be skipped.
type KeepGlyphFn func(glyph.ID) bool

// MakeFilter returns a function which filters glyphs according to the
// lookup flags.  Without a GDEF table, all glyphs are kept.
// https://docs.microsoft.com/en-us/typography/opentype/spec/chapter2#lookupFlags
func MakeFilter(meta *LookupMetaInfo, gdefTable *gdef.Table) KeepGlyphFn {
	if gdefTable == nil {
		return useAllGlyphs
	}

	flags := meta.LookupFlag
	markAttachType := uint16((flags & LookupMarkAttachTypeMask) >> 8)
	var markGlyphSet coverage.Table

	type filterSel int
	const (
		filterBase filterSel = 1 << iota
		filterLigatures
		filterAllMarks
		filterMarksFromSet
		filterAttachClass
	)
	var sel filterSel
	if flags&LookupIgnoreBaseGlyphs != 0 && gdefTable.GlyphClass != nil {
		sel |= filterBase
	}
	if flags&LookupIgnoreLigatures != 0 && gdefTable.GlyphClass != nil {
		sel |= filterLigatures
	}
	if flags&LookupIgnoreMarks != 0 {
		// If the IGNORE_MARKS bit is set, this supersedes any mark filtering set
		// or mark attachment type indications.
		if gdefTable.GlyphClass != nil {
			sel |= filterAllMarks
		}
	} else if flags&LookupUseMarkFilteringSet != 0 {
		// If a mark filtering set is specified, this supersedes any mark
		// attachment type indication in the lookup flag.
		if int(meta.MarkFilteringSet) < len(gdefTable.MarkGlyphSets) {
			sel |= filterMarksFromSet
			markGlyphSet = gdefTable.MarkGlyphSets[meta.MarkFilteringSet]
		}
	} else if markAttachType != 0 && gdefTable.MarkAttachClass != nil {
		sel |= filterAttachClass
	}

	if sel == 0 {
		return useAllGlyphs
	}

	return func(gid glyph.ID) bool {
		class := gdefTable.GlyphClass[gid]
		if sel&filterBase != 0 && class == gdef.GlyphClassBase {
			return false
		}
		if sel&filterLigatures != 0 && class == gdef.GlyphClassLigature {
			return false
		}
		if sel&filterAllMarks != 0 && class == gdef.GlyphClassMark {
			return false
		}

		// The remaining filters only apply to mark glyphs.  Without glyph
		// classes, only glyphs with a mark attachment class count as marks.
		isMark := class == gdef.GlyphClassMark
		if gdefTable.GlyphClass == nil {
			isMark = gdefTable.MarkAttachClass[gid] != 0
		}
		if sel&filterMarksFromSet != 0 && isMark && !markGlyphSet.Contains(gid) {
			return false
		}
		if sel&filterAttachClass != 0 && isMark && gdefTable.MarkAttachClass[gid] != markAttachType {
			return false
		}
		return true
	}
}

func useAllGlyphs(glyph.ID) bool { return true }
