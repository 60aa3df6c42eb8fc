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
	"errors"
	"strconv"
	"strings"
)

var (
	errVersion = errors.New("unsupported PDF version")
)

// MalformedFileError indicates that the PDF file could not be parsed.
type MalformedFileError struct {
	Pos int64
	Err error
	Loc []string
}

func (err *MalformedFileError) Error() string {
	parts := make([]string, 0, 4)
	parts = append(parts, "not a valid PDF file")
	for i := len(err.Loc) - 1; i >= 0; i-- {
		parts = append(parts, err.Loc[i])
	}
	if err.Err != nil {
		parts = append(parts, err.Err.Error())
	}
	msg := strings.Join(parts, ": ")
	if err.Pos > 0 {
		msg += " (at byte " + strconv.FormatInt(err.Pos, 10) + ")"
	}
	return msg
}

func (err *MalformedFileError) Unwrap() error {
	return err.Err
}

// Wrap adds location information to a MalformedFileError.
// If err is not a MalformedFileError, it is returned unchanged.
func Wrap(err error, loc string) error {
	var e *MalformedFileError
	if !errors.As(err, &e) {
		return err
	}
	res := *e
	res.Loc = append(append([]string(nil), e.Loc...), loc)
	return &res
}

// UnsupportedFilterError is returned when a stream uses a filter which
// cannot be decoded by this library.
type UnsupportedFilterError struct {
	Filter Name
	Reason string
}

func (err *UnsupportedFilterError) Error() string {
	msg := "unsupported filter /" + string(err.Filter)
	if err.Reason != "" {
		msg += ": " + err.Reason
	}
	return msg
}
