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

// Package parser implements a seekable, big-endian reader for the binary
// tables in sfnt font files.
package parser

import (
	"errors"
	"fmt"
	"io"

	"seehuhn.de/go/sfnt/glyph"
)

const bufferSize = 1024

// Parser allows to read data from an sfnt file.
type Parser struct {
	r         ReadSeekSizer
	tableName string

	buf       []byte
	from      int64
	pos, used int
	lastRead  int64
}

// ReadSeekSizer describes the requirements for a reader that can be used
// as the input to a Parser.  A [*bytes.Reader] satisfies this interface.
type ReadSeekSizer interface {
	io.ReadSeeker
	Size() int64
}

// New allocates a new Parser.  The table name is used in error messages.
func New(tableName string, r ReadSeekSizer) *Parser {
	return &Parser{
		r:         r,
		tableName: tableName,
		from:      -1,
	}
}

// Size returns the total size of the underlying input.
func (p *Parser) Size() int64 {
	return p.r.Size()
}

// Pos returns the current reading position.
func (p *Parser) Pos() int64 {
	if p.from < 0 {
		return 0
	}
	return p.from + int64(p.pos)
}

// SeekPos changes the reading position.  Positions outside the
// input give an [*InvalidFontError].
func (p *Parser) SeekPos(filePos int64) error {
	if filePos < 0 || filePos > p.r.Size() {
		p.lastRead = filePos
		return p.Error("seek to %d outside table of size %d", filePos, p.r.Size())
	}

	if p.from >= 0 && filePos >= p.from && filePos <= p.from+int64(p.used) {
		p.pos = int(filePos - p.from)
		return nil
	}

	_, err := p.r.Seek(filePos, io.SeekStart)
	if err != nil {
		return err
	}
	p.from = filePos
	p.pos = 0
	p.used = 0
	return nil
}

// Discard skips the next n bytes of input.
func (p *Parser) Discard(n int) error {
	if n < 0 {
		panic("negative discard")
	}
	return p.SeekPos(p.Pos() + int64(n))
}

// ReadUint16 reads a single uint16 value from the current position.
func (p *Parser) ReadUint16() (uint16, error) {
	buf, err := p.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return uint16(buf[0])<<8 | uint16(buf[1]), nil
}

// ReadInt16 reads a single int16 value from the current position.
func (p *Parser) ReadInt16() (int16, error) {
	val, err := p.ReadUint16()
	return int16(val), err
}

// ReadUint32 reads a single uint32 value from the current position.
func (p *Parser) ReadUint32() (uint32, error) {
	buf, err := p.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return uint32(buf[0])<<24 | uint32(buf[1])<<16 | uint32(buf[2])<<8 | uint32(buf[3]), nil
}

// ReadUint16Slice reads a length followed by a sequence of uint16 values.
func (p *Parser) ReadUint16Slice() ([]uint16, error) {
	n, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	res := make([]uint16, n)
	for i := range res {
		val, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		res[i] = val
	}
	return res, nil
}

// ReadGIDSlice reads a length followed by a sequence of GlyphID values.
func (p *Parser) ReadGIDSlice() ([]glyph.ID, error) {
	n, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	res := make([]glyph.ID, n)
	for i := range res {
		val, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		res[i] = glyph.ID(val)
	}
	return res, nil
}

// ReadOffsets reads count 16-bit offsets from the current position and
// converts them to absolute positions by adding base.  Zero offsets are
// NULL and stay zero in the result.
func (p *Parser) ReadOffsets(count int, base int64) ([]int64, error) {
	res := make([]int64, count)
	for i := range res {
		offs, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		if offs != 0 {
			res[i] = base + int64(offs)
		}
	}
	return res, nil
}

// ReadBytes reads n bytes from the file, starting at the current position.  The
// returned slice points into the internal buffer, slice contents must not be
// modified by the caller and are only valid until the next call to one of the
// parser methods.
//
// The read size n must be <= 1024.
func (p *Parser) ReadBytes(n int) ([]byte, error) {
	if p.from < 0 {
		err := p.SeekPos(0)
		if err != nil {
			return nil, err
		}
	}
	p.lastRead = p.from + int64(p.pos)
	if n < 0 {
		n = 0
	} else if n > bufferSize {
		panic("buffer size exceeded")
	}

	for p.pos+n > p.used {
		if len(p.buf) == 0 {
			p.buf = make([]byte, bufferSize)
		}
		k := copy(p.buf, p.buf[p.pos:p.used])
		p.from += int64(p.pos)
		p.pos = 0
		p.used = k

		l, err := p.r.Read(p.buf[p.used:])
		if err == io.EOF {
			if l > 0 {
				err = nil
			} else {
				err = io.ErrUnexpectedEOF
			}
		}
		if err != nil {
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, p.Error("unexpected end of table")
			}
			return nil, err
		}
		p.used += l
	}

	res := p.buf[p.pos : p.pos+n]
	p.pos += n
	return res, nil
}

// Error returns an [*InvalidFontError] which names the table and the
// position of the most recent read.
func (p *Parser) Error(format string, a ...any) error {
	tableName := p.tableName
	if tableName == "" {
		tableName = "header"
	}
	return &InvalidFontError{
		SubSystem: "sfnt/" + tableName,
		Reason:    fmt.Sprintf("%+d: ", p.lastRead) + fmt.Sprintf(format, a...),
	}
}
