// seehuhn.de/go/pdf - a library for reading and writing PDF files
// Copyright (C) 2024  Jochen Voss <voss@seehuhn.de>
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

package compare

import (
	"errors"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadConfig reads comparison options from a YAML file.  Options not
// mentioned in the file keep their values from [DefaultOptions].  Unknown
// keys are an error.
func LoadConfig(fname string) (*Options, error) {
	fd, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	return ReadConfig(fd)
}

// ReadConfig reads comparison options in YAML format from r.
// See [LoadConfig] for details.
func ReadConfig(r io.Reader) (*Options, error) {
	opt := DefaultOptions()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	err := dec.Decode(opt)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return opt, nil
}
