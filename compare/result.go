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
	"encoding/json"
	"encoding/xml"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/CuteXiaoKe/pdf"
)

// A Difference describes one place where the two documents differ.
type Difference struct {
	Path    Path
	Message string
}

// Result collects the differences found during a comparison.
//
// At most Limit differences are recorded.  A difference reported at a
// path which already has a difference replaces the earlier message.
type Result struct {
	Limit int

	diffs []Difference
	index map[string]int
}

// NewResult returns an empty result which records at most limit
// differences.
func NewResult(limit int) *Result {
	return &Result{Limit: limit}
}

func (r *Result) add(path Path, msg string) {
	if r.LimitReached() {
		return
	}
	key := path.key()
	if i, ok := r.index[key]; ok {
		r.diffs[i].Message = msg
		return
	}
	if r.index == nil {
		r.index = make(map[string]int)
	}
	r.index[key] = len(r.diffs)
	r.diffs = append(r.diffs, Difference{Path: path, Message: msg})
}

// merge appends the differences from other, in order, until the limit is
// reached.
func (r *Result) merge(other *Result) {
	for _, d := range other.diffs {
		r.add(d.Path, d.Message)
	}
}

// IsEqual returns true if no differences were recorded.
func (r *Result) IsEqual() bool {
	return len(r.diffs) == 0
}

// Count returns the number of recorded differences.
func (r *Result) Count() int {
	return len(r.diffs)
}

// LimitReached returns true if no further differences will be recorded.
func (r *Result) LimitReached() bool {
	return len(r.diffs) >= r.Limit
}

// Differences returns the recorded differences in the order they were
// found.
func (r *Result) Differences() []Difference {
	res := make([]Difference, len(r.diffs))
	copy(res, r.diffs)
	return res
}

// Report returns a human readable description of all differences.
func (r *Result) Report() string {
	b := &strings.Builder{}
	for i, d := range r.diffs {
		if i > 0 {
			b.WriteString("-----------------------------\n")
		}
		b.WriteString(d.Message)
		b.WriteByte('\n')
		b.WriteString(d.Path.String())
		b.WriteByte('\n')
	}
	return b.String()
}

// Report is a structured form of a [Result], suitable for serialisation.
type Report struct {
	Count  int           `json:"count" yaml:"count"`
	Errors []ReportError `json:"errors" yaml:"errors"`
}

// ReportError is one difference in a [Report].
type ReportError struct {
	Message string     `json:"message" yaml:"message"`
	Path    ReportPath `json:"path" yaml:"path"`
}

// ReportPath is the location of a difference in a [Report].
// Cmp and Out are either object names like "3 0 obj", or "trailer".
type ReportPath struct {
	Cmp   string       `json:"cmp" yaml:"cmp"`
	Out   string       `json:"out" yaml:"out"`
	Steps []ReportStep `json:"steps,omitempty" yaml:"steps,omitempty"`
}

// ReportStep is one step of a [ReportPath].  Kind is one of "dictKey",
// "arrayIndex" and "offset".
type ReportStep struct {
	Kind  string `json:"kind" yaml:"kind"`
	Value string `json:"value" yaml:"value"`
}

// Structured returns the differences as a [Report].
func (r *Result) Structured() *Report {
	rep := &Report{
		Count:  len(r.diffs),
		Errors: make([]ReportError, 0, len(r.diffs)),
	}
	for _, d := range r.diffs {
		rp := ReportPath{Cmp: "trailer", Out: "trailer"}
		if base, ok := d.Path.Base(); ok {
			rp.Cmp = objName(base.Cmp)
			rp.Out = objName(base.Out)
		}
		for _, s := range d.Path.Steps() {
			var step ReportStep
			switch s.Kind {
			case DictKey:
				step = ReportStep{Kind: "dictKey", Value: pdf.Format(s.Key)}
			case ArrayIndex:
				step = ReportStep{Kind: "arrayIndex", Value: strconv.Itoa(s.N)}
			case Offset:
				step = ReportStep{Kind: "offset", Value: strconv.Itoa(s.N)}
			}
			rp.Steps = append(rp.Steps, step)
		}
		rep.Errors = append(rep.Errors, ReportError{Message: d.Message, Path: rp})
	}
	return rep
}

type xmlReport struct {
	XMLName xml.Name  `xml:"report"`
	Errors  xmlErrors `xml:"errors"`
}

type xmlErrors struct {
	Count int        `xml:"count,attr"`
	Error []xmlError `xml:"error"`
}

type xmlError struct {
	Message string  `xml:"message"`
	Path    xmlPath `xml:"path"`
}

type xmlPath struct {
	Base  xmlBase `xml:"base"`
	Steps []xmlStep
}

type xmlBase struct {
	Cmp string `xml:"cmp,attr"`
	Out string `xml:"out,attr"`
}

// xmlStep is marshalled as an element named after the step kind.
type xmlStep struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

// WriteXML writes the report in XML format.
func (rep *Report) WriteXML(w io.Writer) error {
	x := &xmlReport{Errors: xmlErrors{Count: rep.Count}}
	for _, e := range rep.Errors {
		xe := xmlError{
			Message: e.Message,
			Path:    xmlPath{Base: xmlBase{Cmp: e.Path.Cmp, Out: e.Path.Out}},
		}
		for _, s := range e.Path.Steps {
			xe.Path.Steps = append(xe.Path.Steps, xmlStep{
				XMLName: xml.Name{Local: s.Kind},
				Value:   s.Value,
			})
		}
		x.Errors.Error = append(x.Errors.Error, xe)
	}

	_, err := io.WriteString(w, xml.Header)
	if err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	err = enc.Encode(x)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}

// WriteJSON writes the report in JSON format.
func (rep *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

// WriteYAML writes the report in YAML format.
func (rep *Report) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	err := enc.Encode(rep)
	if err != nil {
		return err
	}
	return enc.Close()
}
