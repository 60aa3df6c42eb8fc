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

// Package buildinfo describes the version of the running binary.
package buildinfo

import (
	"runtime/debug"
)

// Info holds version information of the running binary.
type Info struct {
	Module   string
	Version  string // module version, or "(devel)"
	Revision string // VCS revision, possibly abbreviated
	Date     string // VCS commit time
	Modified bool   // the working tree had local changes
}

// Read returns the version information embedded by the Go toolchain.
// The second return value is false if no information is available.
func Read() (Info, bool) {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return Info{}, false
	}

	info := Info{
		Module:  bi.Main.Path,
		Version: bi.Main.Version,
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			info.Revision = s.Value
		case "vcs.time":
			info.Date = s.Value
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
	if len(info.Revision) > 8 {
		info.Revision = info.Revision[:8]
	}
	return info, true
}

// Short returns a one-line description of the binary, for example
// "pdfcmp (github.com/CuteXiaoKe/pdf v0.3.0)".
func Short(toolName string) string {
	info, ok := Read()
	if !ok {
		return toolName
	}

	if info.Version != "" && info.Version != "(devel)" {
		return toolName + " (" + info.Module + " " + info.Version + ")"
	}

	// fall back to VCS revision
	rev := info.Revision
	if rev == "" {
		return toolName
	}
	if info.Modified {
		rev += "+dirty"
	}
	return toolName + " (" + info.Module + " " + rev + ")"
}
