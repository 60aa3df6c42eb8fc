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
	"bufio"
	"bytes"
	"compress/zlib"
	"encoding/ascii85"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
)

// Decode returns a reader for the decoded stream data.  All filters listed
// in the stream dictionary are applied in order.  Indirect filter names and
// decode parameters must be resolved by the caller.
func (x *Stream) Decode() (io.Reader, error) {
	var parms []Object
	switch p := x.Dict["DecodeParms"].(type) {
	case Array:
		parms = p
	case Dict:
		parms = []Object{p}
	}

	r := x.R
	for i, name := range x.Filters() {
		var param Dict
		if i < len(parms) {
			param, _ = parms[i].(Dict)
		}
		var err error
		r, err = applyFilter(r, name, param)
		if err != nil {
			return nil, err
		}
	}
	return r, nil
}

// ReadAll reads the complete stream data.  If decode is true, the stream
// filters are applied first.
func ReadAll(s *Stream, decode bool) ([]byte, error) {
	if s.R == nil {
		return nil, nil
	}
	var r io.Reader = s.R
	if decode {
		var err error
		r, err = s.Decode()
		if err != nil {
			return nil, err
		}
	}
	return io.ReadAll(r)
}

func applyFilter(r io.Reader, name Name, param Dict) (io.Reader, error) {
	switch name {
	case "FlateDecode":
		params := map[Name]int{
			"Predictor":        1,
			"Colors":           1,
			"BitsPerComponent": 8,
			"Columns":          1,
		}
		for key := range params {
			if val, ok := param[key].(Integer); ok {
				params[key] = int(val)
			}
		}
		zr, err := zlib.NewReader(r)
		if err != nil {
			return nil, err
		}
		predictor := params["Predictor"]
		switch {
		case predictor == 1:
			return zr, nil
		case predictor >= 10 && predictor <= 15:
			bpp := (params["Colors"]*params["BitsPerComponent"] + 7) / 8
			rowLen := (params["Colors"]*params["BitsPerComponent"]*params["Columns"] + 7) / 8
			if bpp < 1 || rowLen < 1 {
				return nil, &MalformedFileError{
					Err: errors.New("invalid FlateDecode parameters"),
				}
			}
			return &pngReader{
				r:    bufio.NewReader(zr),
				bpp:  bpp,
				prev: make([]byte, rowLen),
				cur:  make([]byte, 1+rowLen),
			}, nil
		default:
			return nil, &UnsupportedFilterError{
				Filter: name,
				Reason: fmt.Sprintf("predictor %d", predictor),
			}
		}
	case "ASCIIHexDecode":
		return &hexReader{r: bufio.NewReader(r)}, nil
	case "ASCII85Decode":
		return ascii85.NewDecoder(&a85Reader{r: bufio.NewReader(r)}), nil
	default:
		return nil, &UnsupportedFilterError{Filter: name}
	}
}

// pngReader undoes the PNG row filters used by predictors 10 to 15.
type pngReader struct {
	r    io.Reader
	bpp  int
	prev []byte
	cur  []byte
	pend []byte
}

func (r *pngReader) Read(b []byte) (int, error) {
	n := 0
	for len(b) > 0 {
		if len(r.pend) > 0 {
			m := copy(b, r.pend)
			n += m
			b = b[m:]
			r.pend = r.pend[m:]
			continue
		}
		_, err := io.ReadFull(r.r, r.cur)
		if err == io.ErrUnexpectedEOF {
			err = &MalformedFileError{Err: errors.New("truncated PNG row")}
		}
		if err != nil {
			return n, err
		}

		row := r.cur[1:]
		switch r.cur[0] {
		case 0: // None
		case 1: // Sub
			for i := r.bpp; i < len(row); i++ {
				row[i] += row[i-r.bpp]
			}
		case 2: // Up
			for i := range row {
				row[i] += r.prev[i]
			}
		case 3: // Average
			for i := range row {
				var left int
				if i >= r.bpp {
					left = int(row[i-r.bpp])
				}
				row[i] += byte((left + int(r.prev[i])) / 2)
			}
		case 4: // Paeth
			for i := range row {
				var left, upLeft byte
				if i >= r.bpp {
					left = row[i-r.bpp]
					upLeft = r.prev[i-r.bpp]
				}
				row[i] += paeth(left, r.prev[i], upLeft)
			}
		default:
			return n, &MalformedFileError{
				Err: fmt.Errorf("invalid PNG filter type %d", r.cur[0]),
			}
		}
		copy(r.prev, row)
		r.pend = r.prev
	}
	return n, nil
}

func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa := abs(p - int(a))
	pb := abs(p - int(b))
	pc := abs(p - int(c))
	if pa <= pb && pa <= pc {
		return a
	} else if pb <= pc {
		return b
	}
	return c
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

type hexReader struct {
	r    io.ByteReader
	done bool
}

func (r *hexReader) Read(b []byte) (int, error) {
	n := 0
	var digits [2]byte
	for n < len(b) && !r.done {
		k := 0
		for k < 2 {
			c, err := r.r.ReadByte()
			if err == io.EOF || c == '>' {
				r.done = true
				break
			} else if err != nil {
				return n, err
			}
			if isSpace[c] {
				continue
			}
			digits[k] = c
			k++
		}
		if k == 0 {
			break
		}
		if k == 1 {
			digits[1] = '0'
		}
		_, err := hex.Decode(b[n:n+1], digits[:])
		if err != nil {
			return n, &MalformedFileError{Err: err}
		}
		n++
	}
	if n == 0 && r.done {
		return 0, io.EOF
	}
	return n, nil
}

// a85Reader strips white space and the "~>" end marker from ASCII85 data.
type a85Reader struct {
	r    io.ByteReader
	done bool
}

func (r *a85Reader) Read(b []byte) (int, error) {
	n := 0
	for n < len(b) && !r.done {
		c, err := r.r.ReadByte()
		if err == io.EOF {
			r.done = true
			break
		} else if err != nil {
			return n, err
		}
		if c == '~' {
			r.done = true
			break
		}
		if isSpace[c] {
			continue
		}
		b[n] = c
		n++
	}
	if n == 0 && r.done {
		return 0, io.EOF
	}
	return n, nil
}

// FlateEncode compresses data for use in a stream with /Filter /FlateDecode.
func FlateEncode(data []byte) ([]byte, error) {
	buf := &bytes.Buffer{}
	zw := zlib.NewWriter(buf)
	_, err := zw.Write(data)
	if err != nil {
		return nil, err
	}
	err = zw.Close()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
