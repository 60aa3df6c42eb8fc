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

// Package pdf provides the PDF object model used by the comparison tools
// in this module.
//
// Documents are accessed through the [Getter] interface.  A [*Reader] reads
// objects from a PDF file on demand, while [*Data] holds a complete document
// in memory.  The subpackage compare implements a structural diff between
// two documents, and the subpackage pagetree gives access to the pages of
// a document.
//
// The PDF null object is represented by a nil [Object].  References to
// missing objects resolve to null.
package pdf
