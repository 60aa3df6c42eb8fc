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
	"fmt"

	"seehuhn.de/go/postscript/funit"
	"seehuhn.de/go/sfnt/glyph"
)

// Glyph is a glyph in a run of text, together with its positioning
// information.
type Glyph struct {
	GID glyph.ID

	XOffset  funit.Int16
	YOffset  funit.Int16
	XAdvance funit.Int16
	YAdvance funit.Int16

	// Attach is the position of the glyph this glyph is attached to,
	// relative to the position of this glyph.  Zero means that the glyph
	// is not attached.
	Attach int
}

// Run is a sequence of glyphs, together with a cursor.  Lookups only
// process glyphs at positions Idx <= i < End.
type Run struct {
	Glyphs []Glyph
	Idx    int
	End    int
}

// NewRun returns a run which covers all the given glyphs.
func NewRun(glyphs []Glyph) *Run {
	return &Run{Glyphs: glyphs, End: len(glyphs)}
}

// MarkToBaseLookup is a GPOS lookup of type 4.
type MarkToBaseLookup struct {
	Index     LookupIndex
	Meta      *LookupMetaInfo
	Subtables []*Gpos4_1

	// Keep decides which glyphs take part in the lookup.
	// If Keep is nil, all glyphs are used.
	Keep KeepGlyphFn
}

// ApplyAt tries to attach the mark glyph at position run.Idx to a
// preceding base glyph.  The cursor is advanced by one position, unless
// it is already at the end of the run.  The return value indicates
// whether the glyph at the cursor was modified.
//
// The subtables are tried in order, and the first subtable which covers
// both the mark and the base glyph is used.  The base glyph is the
// closest preceding glyph which is not skipped by the lookup flags and
// which is not a mark of the first subtable covering the mark glyph.
func (l *MarkToBaseLookup) ApplyAt(run *Run) (bool, error) {
	if run.Idx >= run.End {
		return false, nil
	}
	markIdx := run.Idx
	run.Idx++

	keep := l.Keep
	if keep == nil {
		keep = useAllGlyphs
	}

	gid := run.Glyphs[markIdx].GID
	if !keep(gid) {
		return false, nil
	}

	baseIdx := -1
	for _, st := range l.Subtables {
		mark, ok := st.Mark(gid)
		if !ok {
			continue
		}
		if baseIdx < 0 {
			baseIdx = findBase(run.Glyphs, markIdx, st, keep)
			if baseIdx < 0 {
				break
			}
		}

		anchors, ok := st.Base(run.Glyphs[baseIdx].GID)
		if !ok {
			continue
		}
		if int(mark.Class) >= len(anchors) {
			return false, &ShapingInconsistencyError{
				Lookup:     l.Index,
				Pos:        markIdx,
				GID:        gid,
				Class:      mark.Class,
				NumClasses: len(anchors),
			}
		}
		baseAnchor := anchors[mark.Class]
		if baseAnchor == nil {
			continue
		}

		dx, dy := mark.Table.Sub(*baseAnchor)
		g := &run.Glyphs[markIdx]
		g.XOffset = dx
		g.YOffset = dy
		g.XAdvance = 0
		g.YAdvance = 0
		g.Attach = baseIdx - markIdx
		return true, nil
	}
	return false, nil
}

// findBase returns the position of the closest glyph before markIdx which
// is kept and which is not a mark in st, or -1 if there is no such glyph.
func findBase(seq []Glyph, markIdx int, st *Gpos4_1, keep KeepGlyphFn) int {
	for i := markIdx - 1; i >= 0; i-- {
		gid := seq[i].GID
		if !keep(gid) {
			continue
		}
		if _, isMark := st.Mark(gid); isMark {
			continue
		}
		return i
	}
	return -1
}

// ApplyLookup applies the lookup at every position from run.Idx to
// run.End.  When the function returns without error, run.Idx equals
// run.End.
func (l *MarkToBaseLookup) ApplyLookup(run *Run) error {
	for run.Idx < run.End {
		_, err := l.ApplyAt(run)
		if err != nil {
			return err
		}
	}
	return nil
}

// ShapingInconsistencyError is returned when a mark class does not have
// an anchor in the base record it is paired with.  This indicates a
// malformed font.
type ShapingInconsistencyError struct {
	Lookup     LookupIndex
	Pos        int
	GID        glyph.ID
	Class      uint16
	NumClasses int
}

func (err *ShapingInconsistencyError) Error() string {
	return fmt.Sprintf("gtab: lookup %d, glyph %d at position %d: mark class %d not in base record with %d classes",
		err.Lookup, err.GID, err.Pos, err.Class, err.NumClasses)
}
