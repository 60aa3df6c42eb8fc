// seehuhn.de/go/pdf - a library for reading and writing PDF files
// Copyright (C) 2023  Jochen Voss <voss@seehuhn.de>
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
	"bytes"
	"io"
	"maps"
)

// Data is an in-memory representation of a PDF document.
//
// Stream data is kept in memory, and every call to [Data.Get] returns a
// stream with a fresh reader.  Concurrent calls to Get are safe, as long as
// no objects are modified at the same time.
type Data struct {
	meta    MetaInfo
	objects map[Reference]Object
	streams map[Reference][]byte
	lastRef uint32
}

// NewData returns a new, empty document.  The trailer is initially empty;
// the caller is responsible for setting at least the Root entry.
func NewData(v Version) *Data {
	return &Data{
		meta: MetaInfo{
			Version: v,
			Trailer: Dict{},
		},
		objects: map[Reference]Object{},
		streams: map[Reference][]byte{},
	}
}

// Read reads a complete PDF document into memory.
func Read(r io.ReaderAt, size int64) (*Data, error) {
	pdf, err := NewReader(r, size)
	if err != nil {
		return nil, err
	}

	res := &Data{
		meta:    pdf.meta,
		objects: map[Reference]Object{},
		streams: map[Reference][]byte{},
	}
	res.meta.Trailer = maps.Clone(pdf.meta.Trailer)

	isObjectStream := make(map[Reference]bool)
	for _, entry := range pdf.xref {
		if entry.InStream != 0 {
			isObjectStream[entry.InStream] = true
		}
	}

	for number, entry := range pdf.xref {
		if entry.IsFree() {
			continue
		}
		ref := NewReference(number, entry.Generation)
		if isObjectStream[ref] {
			continue
		}
		if number > res.lastRef {
			res.lastRef = number
		}

		obj, err := pdf.Get(ref)
		if err != nil {
			return nil, err
		}
		err = res.Put(ref, obj)
		if err != nil {
			return nil, err
		}
	}

	return res, nil
}

// GetMeta implements the [Getter] interface.
func (d *Data) GetMeta() *MetaInfo {
	return &d.meta
}

// Alloc allocates a new object number for an indirect object.
func (d *Data) Alloc() Reference {
	for {
		d.lastRef++
		ref := NewReference(d.lastRef, 0)
		if _, ok := d.objects[ref]; !ok {
			return ref
		}
	}
}

// Get implements the [Getter] interface.
// References to missing objects resolve to null.
func (d *Data) Get(ref Reference) (Object, error) {
	obj := d.objects[ref]
	if s, ok := obj.(*Stream); ok {
		return &Stream{
			Dict: s.Dict,
			R:    bytes.NewReader(d.streams[ref]),
		}, nil
	}
	return obj, nil
}

// Put stores obj as the indirect object ref.  Stream data is read into
// memory, and the Length entry of the stream dictionary is updated.
// Storing nil deletes the object.
func (d *Data) Put(ref Reference, obj Object) error {
	delete(d.streams, ref)
	switch x := obj.(type) {
	case nil:
		delete(d.objects, ref)
		return nil
	case *Stream:
		var data []byte
		if x.R != nil {
			var err error
			data, err = io.ReadAll(x.R)
			if err != nil {
				return err
			}
		}
		return d.PutStream(ref, x.Dict, data)
	}
	d.objects[ref] = obj
	if n := ref.Number(); n > d.lastRef {
		d.lastRef = n
	}
	return nil
}

// PutStream stores a stream with the given dictionary and (encoded) data.
// The dictionary is copied, and its Length entry is set to len(data).
func (d *Data) PutStream(ref Reference, dict Dict, data []byte) error {
	streamDict := maps.Clone(dict)
	if streamDict == nil {
		streamDict = Dict{}
	}
	streamDict["Length"] = Integer(len(data))
	d.objects[ref] = &Stream{Dict: streamDict}
	d.streams[ref] = data
	if n := ref.Number(); n > d.lastRef {
		d.lastRef = n
	}
	return nil
}
