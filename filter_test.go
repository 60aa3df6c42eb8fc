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

package pdf

import (
	"bytes"
	"encoding/ascii85"
	"encoding/hex"
	"errors"
	"testing"
)

func decodeString(t *testing.T, dict Dict, data []byte) ([]byte, error) {
	t.Helper()
	return ReadAll(&Stream{Dict: dict, R: bytes.NewReader(data)}, true)
}

func TestFlate(t *testing.T) {
	in := bytes.Repeat([]byte("Hello, World! "), 50)
	enc, err := FlateEncode(in)
	if err != nil {
		t.Fatal(err)
	}
	if len(enc) >= len(in) {
		t.Errorf("no compression: %d >= %d", len(enc), len(in))
	}

	out, err := decodeString(t, Dict{"Filter": Name("FlateDecode")}, enc)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(in, out) {
		t.Errorf("wrong data %q", out)
	}

	// without decoding, the raw data is returned
	raw, err := ReadAll(&Stream{Dict: Dict{"Filter": Name("FlateDecode")}, R: bytes.NewReader(enc)}, false)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(raw, enc) {
		t.Error("raw data modified")
	}
}

func TestASCIIHex(t *testing.T) {
	cases := []struct {
		in, out string
	}{
		{"48 65 6c6C\n6f>", "Hello"},
		{"414>", "A@"},
		{"4142", "AB"},
		{">", ""},
	}
	for _, test := range cases {
		out, err := decodeString(t, Dict{"Filter": Name("ASCIIHexDecode")}, []byte(test.in))
		if err != nil {
			t.Errorf("%q: %v", test.in, err)
		} else if string(out) != test.out {
			t.Errorf("%q: got %q, expected %q", test.in, out, test.out)
		}
	}

	_, err := decodeString(t, Dict{"Filter": Name("ASCIIHexDecode")}, []byte("4x>"))
	if err == nil {
		t.Error("invalid hex digit accepted")
	}
}

func TestASCII85(t *testing.T) {
	in := []byte("Man is distinguished, not only by his reason")
	enc := make([]byte, ascii85.MaxEncodedLen(len(in)))
	n := ascii85.Encode(enc, in)
	data := append(enc[:n:n], []byte("\n~>")...)

	out, err := decodeString(t, Dict{"Filter": Name("ASCII85Decode")}, data)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(in, out) {
		t.Errorf("wrong data %q", out)
	}
}

func TestFilterChain(t *testing.T) {
	in := []byte("chained filters")
	enc, err := FlateEncode(in)
	if err != nil {
		t.Fatal(err)
	}
	data := []byte(hex.EncodeToString(enc) + ">")

	dict := Dict{
		"Filter": Array{Name("ASCIIHexDecode"), Name("FlateDecode")},
	}
	out, err := decodeString(t, dict, data)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(in, out) {
		t.Errorf("wrong data %q", out)
	}
}

func TestPNGPredictor(t *testing.T) {
	rows := []byte{
		1, 1, 1, 1, // Sub
		2, 3, 3, 3, // Up
		0, 9, 8, 7, // None
		3, 2, 2, 2, // Average
		4, 1, 1, 1, // Paeth
	}
	enc, err := FlateEncode(rows)
	if err != nil {
		t.Fatal(err)
	}
	dict := Dict{
		"Filter":      Name("FlateDecode"),
		"DecodeParms": Dict{"Predictor": Integer(12), "Columns": Integer(3)},
	}
	out, err := decodeString(t, dict, enc)
	if err != nil {
		t.Fatal(err)
	}
	expected := []byte{
		1, 2, 3,
		4, 5, 6,
		9, 8, 7,
		6, 9, 10,
		7, 10, 11,
	}
	if !bytes.Equal(out, expected) {
		t.Errorf("got %v, expected %v", out, expected)
	}
}

func TestUnsupportedFilter(t *testing.T) {
	cases := []Dict{
		{"Filter": Name("DCTDecode")},
		{"Filter": Name("FlateDecode"), "DecodeParms": Dict{"Predictor": Integer(2)}},
	}
	for _, dict := range cases {
		enc, err := FlateEncode([]byte("data"))
		if err != nil {
			t.Fatal(err)
		}
		_, err = decodeString(t, dict, enc)
		var e *UnsupportedFilterError
		if !errors.As(err, &e) {
			t.Errorf("%s: expected UnsupportedFilterError, got %v", Format(dict), err)
		}
	}
}
