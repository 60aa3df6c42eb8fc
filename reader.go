// seehuhn.de/go/pdf - support for reading and writing PDF files
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
	"errors"
	"fmt"
	"io"
	"os"
)

// Reader represents a pdf file opened for reading.  Use [Open] or
// [NewReader] to create a new Reader.
//
// Encrypted files can be opened, but strings and streams are returned
// without decryption.  Use [MetaInfo.IsEncrypted] to detect this case.
//
// All methods of a Reader are safe for concurrent use.
type Reader struct {
	meta MetaInfo

	size int64
	r    io.ReaderAt

	xref map[uint32]*xRefEntry
}

// Open opens the named PDF file for reading.  After use, [Reader.Close] must
// be called to close the file the Reader is reading from.
func Open(fname string) (*Reader, error) {
	fd, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	fi, err := fd.Stat()
	if err != nil {
		fd.Close()
		return nil, err
	}
	r, err := NewReader(fd, fi.Size())
	if err != nil {
		fd.Close()
		return nil, fmt.Errorf("%s: %w", fname, err)
	}
	return r, nil
}

// NewReader creates a new Reader object.
func NewReader(data io.ReaderAt, size int64) (*Reader, error) {
	r := &Reader{
		size: size,
		r:    data,
	}

	s := r.scannerAt(0, 0)
	version, err := s.readHeaderVersion()
	if err != nil {
		return nil, err
	}
	r.meta.Version = version

	xref, trailer, err := r.readXRef()
	if err != nil {
		return nil, err
	}
	r.xref = xref
	r.meta.Trailer = trailer

	ID, ok := trailer["ID"].(Array)
	if ok && len(ID) >= 2 {
		for i := 0; i < 2; i++ {
			s, ok := ID[i].(String)
			if !ok {
				break
			}
			r.meta.ID = append(r.meta.ID, []byte(s))
		}
		if len(r.meta.ID) != 2 {
			r.meta.ID = nil
		}
	}

	catalog, err := GetCatalog(r)
	if err != nil {
		return nil, err
	}
	if verName, _ := catalog["Version"].(Name); verName != "" {
		// The catalog can only increase the version.
		if v, err := ParseVersion(string(verName)); err == nil && v > r.meta.Version {
			r.meta.Version = v
		}
	}

	return r, nil
}

// Close closes the file underlying the reader.  This call only has an effect
// if the io.ReaderAt passed to NewReader() has a Close() method, or if the
// Reader was created using Open().  Otherwise, Close() has no effect and
// returns nil.
func (r *Reader) Close() error {
	closer, ok := r.r.(io.Closer)
	if ok {
		return closer.Close()
	}
	return nil
}

// GetMeta implements the [Getter] interface.
func (r *Reader) GetMeta() *MetaInfo {
	return &r.meta
}

// Get reads an indirect object from the file.  References to free or
// missing objects resolve to null, without an error.
func (r *Reader) Get(ref Reference) (Object, error) {
	return r.get(ref, true, 0)
}

func (r *Reader) get(ref Reference, canStream bool, depth int) (Object, error) {
	if r.xref == nil {
		return nil, &MalformedFileError{
			Err: errors.New("cannot use references while reading xref table"),
		}
	}

	entry := r.xref[ref.Number()]
	if entry.IsFree() {
		return nil, nil
	}

	if entry.InStream != 0 {
		if !canStream {
			return nil, &MalformedFileError{
				Err: errors.New("object streams inside streams not allowed"),
				Loc: []string{"object " + ref.String()},
			}
		}
		if ref.Generation() != 0 {
			return nil, nil
		}
		return r.getFromObjectStream(ref, entry, depth)
	}
	if entry.Generation != ref.Generation() {
		return nil, nil
	}

	s := r.scannerAt(entry.Pos, depth)
	obj, fileRef, err := s.ReadIndirectObject()
	if err != nil {
		return nil, Wrap(err, "object "+ref.String())
	}

	if ref != fileRef {
		return nil, &MalformedFileError{
			Pos: entry.Pos,
			Err: errors.New("xref corrupted"),
			Loc: []string{"object " + ref.String()},
		}
	}

	return obj, nil
}

type objStm struct {
	s   *scanner
	idx []stmObj
}

type stmObj struct {
	number uint32
	offs   int64
}

func (r *Reader) objStmScanner(stream *Stream, errPos int64) (*objStm, error) {
	N, ok := stream.Dict["N"].(Integer)
	if !ok || N < 0 || N > 10000 {
		return nil, &MalformedFileError{
			Pos: errPos,
			Err: errors.New("no valid /N for ObjStm"),
		}
	}
	n := int(N)

	decoded, err := stream.Decode()
	if err != nil {
		return nil, &MalformedFileError{
			Pos: errPos,
			Err: err,
		}
	}
	s := newScanner(decoded, 0, func(Object) (Integer, error) {
		return 0, &MalformedFileError{
			Pos: errPos,
			Err: errors.New("stream inside object stream"),
		}
	})

	idx := make([]stmObj, n)
	for i := 0; i < n; i++ {
		err = s.SkipWhiteSpace()
		if err != nil {
			return nil, err
		}
		no, err := s.ReadInteger()
		if err != nil {
			return nil, err
		}
		err = s.SkipWhiteSpace()
		if err != nil {
			return nil, err
		}
		offs, err := s.ReadInteger()
		if err != nil {
			return nil, err
		}
		if no < 0 || offs < 0 {
			return nil, &MalformedFileError{
				Pos: errPos,
				Err: errors.New("invalid ObjStm index"),
			}
		}
		idx[i].number = uint32(no)
		idx[i].offs = int64(offs)
	}

	pos := s.bytesRead()
	first, ok := stream.Dict["First"].(Integer)
	if !ok || int64(first) < pos {
		return nil, &MalformedFileError{
			Pos: errPos,
			Err: errors.New("no valid /First for ObjStm"),
		}
	}
	for i := range idx {
		idx[i].offs += int64(first)
	}

	return &objStm{s: s, idx: idx}, nil
}

func (r *Reader) getFromObjectStream(ref Reference, entry *xRefEntry, depth int) (Object, error) {
	sRef := entry.InStream
	container, err := r.get(sRef, false, depth)
	if err != nil {
		return nil, err
	}
	stream, ok := container.(*Stream)
	if !ok {
		return nil, &MalformedFileError{
			Pos: r.errPos(sRef),
			Err: errors.New("wrong type for object stream"),
		}
	}

	contents, err := r.objStmScanner(stream, r.errPos(sRef))
	if err != nil {
		return nil, err
	}

	idx := int(entry.Pos)
	if idx >= len(contents.idx) || contents.idx[idx].number != ref.Number() {
		// The index in the xref entry is wrong, fall back to a search.
		idx = -1
		for i, info := range contents.idx {
			if info.number == ref.Number() {
				idx = i
				break
			}
		}
	}
	if idx < 0 {
		return nil, &MalformedFileError{
			Pos: r.errPos(sRef),
			Err: errors.New("object missing from stream"),
			Loc: []string{"object " + ref.String()},
		}
	}

	skip := contents.idx[idx].offs - contents.s.bytesRead()
	if skip < 0 {
		return nil, &MalformedFileError{
			Pos: r.errPos(sRef),
			Err: errors.New("invalid ObjStm offset"),
		}
	}
	err = contents.s.Discard(skip)
	if err != nil {
		return nil, err
	}
	err = contents.s.SkipWhiteSpace()
	if err != nil {
		return nil, err
	}

	obj, err := contents.s.ReadObject()
	if err != nil {
		return nil, err
	}
	if a, ok := obj.(Integer); ok {
		// check for a reference "a b R"
		err = contents.s.SkipWhiteSpace()
		if err != nil {
			return nil, err
		}
		buf, _ := contents.s.Peek(1)
		if len(buf) > 0 && buf[0] >= '0' && buf[0] <= '9' {
			b, err := contents.s.ReadInteger()
			if err != nil {
				return nil, err
			}
			err = contents.s.SkipWhiteSpace()
			if err != nil {
				return nil, err
			}
			if contents.s.SkipString("R") == nil {
				obj = NewReference(uint32(a), uint16(b))
			}
		}
	}
	return obj, nil
}

// getInt is used by the scanner to resolve indirect stream lengths.
func (r *Reader) getInt(depth int) func(Object) (Integer, error) {
	return func(obj Object) (Integer, error) {
		if x, ok := obj.(Integer); ok {
			return x, nil
		}
		ref, ok := obj.(Reference)
		if !ok {
			return 0, &MalformedFileError{
				Err: fmt.Errorf("invalid stream length %s", Format(obj)),
			}
		}
		if depth > 2 {
			return 0, &MalformedFileError{
				Pos: r.errPos(ref),
				Err: errors.New("too many levels of indirection for stream length"),
			}
		}
		val, err := r.get(ref, true, depth+1)
		if err != nil {
			return 0, err
		}
		x, ok := val.(Integer)
		if !ok {
			return 0, &MalformedFileError{
				Pos: r.errPos(ref),
				Err: errors.New("wrong type for stream length (expected Integer)"),
			}
		}
		return x, nil
	}
}

func (r *Reader) scannerAt(pos int64, depth int) *scanner {
	return newScanner(io.NewSectionReader(r.r, pos, r.size-pos), pos,
		r.getInt(depth))
}

func (r *Reader) errPos(ref Reference) int64 {
	if r.xref == nil {
		return 0
	}

	entry := r.xref[ref.Number()]
	if entry.IsFree() || entry.InStream != 0 {
		return 0
	}
	return entry.Pos
}
