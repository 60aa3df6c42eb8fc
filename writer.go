// seehuhn.de/go/pdf - a library for reading and writing PDF files
// Copyright (C) 2021  Jochen Voss <voss@seehuhn.de>
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

package pdf

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"slices"

	"golang.org/x/exp/maps"
)

// Writer represents a PDF file open for writing.  Objects are written
// sequentially, and a classic cross-reference table is written by
// [Writer.Close].
type Writer struct {
	w       *posWriter
	xref    map[uint32]*xRefEntry
	nextRef uint32
}

// NewWriter prepares a PDF file for writing.
func NewWriter(w io.Writer, ver Version) (*Writer, error) {
	verString, err := ver.ToString()
	if err != nil {
		return nil, err
	}

	pdf := &Writer{
		w:       &posWriter{w: w},
		nextRef: 1,
		xref:    make(map[uint32]*xRefEntry),
	}

	_, err = fmt.Fprintf(pdf.w, "%%PDF-%s\n%%\x80\x80\x80\x80\n", verString)
	if err != nil {
		return nil, err
	}

	return pdf, nil
}

// Put writes obj to the file, as the indirect object ref.
func (pdf *Writer) Put(ref Reference, obj Object) error {
	if pdf.w == nil {
		return errWriterClosed
	}
	if _, seen := pdf.xref[ref.Number()]; seen {
		return fmt.Errorf("object %s already written", ref)
	}
	if ref.Number() == 0 {
		return errors.New("object number 0 is reserved")
	}

	pos := pdf.w.pos
	if obj == nil {
		// missing objects are treated as null
		pos = -1
	} else {
		_, err := fmt.Fprintf(pdf.w, "%d %d obj\n", ref.Number(), ref.Generation())
		if err != nil {
			return err
		}
		err = obj.PDF(pdf.w)
		if err != nil {
			return err
		}
		_, err = pdf.w.Write([]byte("\nendobj\n"))
		if err != nil {
			return err
		}
	}

	pdf.xref[ref.Number()] = &xRefEntry{Pos: pos, Generation: ref.Generation()}
	if ref.Number() >= pdf.nextRef {
		pdf.nextRef = ref.Number() + 1
	}
	return nil
}

// Close writes the cross-reference table and the trailer.  The trailer must
// contain at least the Root entry; the Size entry is filled in
// automatically.  Close does not close the underlying io.Writer.
func (pdf *Writer) Close(trailer Dict) error {
	if pdf.w == nil {
		return errWriterClosed
	}
	if trailer["Root"] == nil {
		return errors.New("missing /Root in trailer")
	}

	xRefDict := maps.Clone(trailer)
	xRefDict["Size"] = Integer(pdf.nextRef)
	delete(xRefDict, "Prev")

	xRefPos := pdf.w.pos
	err := pdf.writeXRefTable(xRefDict)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(pdf.w, "\nstartxref\n%d\n%%%%EOF\n", xRefPos)
	if err != nil {
		return err
	}

	// make sure we don't accidentally write beyond the end of file
	pdf.w = nil

	return nil
}

func (pdf *Writer) writeXRefTable(xRefDict Dict) error {
	_, err := fmt.Fprintf(pdf.w, "xref\n0 %d\n", pdf.nextRef)
	if err != nil {
		return err
	}
	for i := uint32(0); i < pdf.nextRef; i++ {
		entry := pdf.xref[i]
		if entry != nil && entry.Pos >= 0 {
			_, err = fmt.Fprintf(pdf.w, "%010d %05d n\r\n",
				entry.Pos, entry.Generation)
		} else {
			// free object
			_, err = pdf.w.Write([]byte("0000000000 65535 f\r\n"))
		}
		if err != nil {
			return err
		}
	}

	_, err = pdf.w.Write([]byte("trailer\n"))
	if err != nil {
		return err
	}
	return xRefDict.PDF(pdf.w)
}

// Write writes the document to w, using a classic cross-reference table.
// Objects stored in object streams are written as plain indirect objects.
func (d *Data) Write(w io.Writer) error {
	pdf, err := NewWriter(w, d.meta.Version)
	if err != nil {
		return err
	}

	refs := maps.Keys(d.objects)
	slices.SortFunc(refs, func(a, b Reference) int {
		return cmp.Compare(a.Number(), b.Number())
	})
	for _, ref := range refs {
		obj, err := d.Get(ref)
		if err != nil {
			return err
		}
		err = pdf.Put(ref, obj)
		if err != nil {
			return err
		}
	}

	trailer := Dict{}
	for _, key := range []Name{"Root", "Info", "ID", "Encrypt"} {
		if val, ok := d.meta.Trailer[key]; ok {
			trailer[key] = val
		}
	}
	return pdf.Close(trailer)
}

type posWriter struct {
	w   io.Writer
	pos int64
}

func (w *posWriter) Write(p []byte) (int, error) {
	n, err := w.w.Write(p)
	w.pos += int64(n)
	return n, err
}

var errWriterClosed = errors.New("PDF writer already closed")
