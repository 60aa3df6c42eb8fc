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
	"strconv"
	"strings"

	"github.com/CuteXiaoKe/pdf"
)

// StepKind identifies the kind of a [Step].
type StepKind int

// These are the possible kinds of path steps.
const (
	DictKey StepKind = iota
	ArrayIndex
	Offset
)

// A Step leads from a container object to one of its parts.
type Step struct {
	Kind StepKind
	Key  pdf.Name // for DictKey
	N    int      // for ArrayIndex and Offset
}

// KeyStep returns a step into the dictionary entry with the given key.
func KeyStep(key pdf.Name) Step {
	return Step{Kind: DictKey, Key: key}
}

// IndexStep returns a step into the array element with the given index.
func IndexStep(idx int) Step {
	return Step{Kind: ArrayIndex, N: idx}
}

// OffsetStep returns a step to the given character or byte offset.
func OffsetStep(offs int) Step {
	return Step{Kind: Offset, N: offs}
}

func (s Step) String() string {
	switch s.Kind {
	case DictKey:
		return "Dict key: " + pdf.Format(s.Key)
	case ArrayIndex:
		return "Array index: " + strconv.Itoa(s.N)
	case Offset:
		return "Offset: " + strconv.Itoa(s.N)
	default:
		return "Step(" + strconv.Itoa(int(s.Kind)) + ")"
	}
}

// RefPair is a pair of corresponding indirect objects in the two documents
// being compared.
type RefPair struct {
	Cmp pdf.Reference // in the expected document
	Out pdf.Reference // in the document being checked
}

// Path describes the location of an object in the two documents, relative
// to a pair of base objects.
//
// Path values are immutable.  Methods which extend a path return a new
// value and share the prefix with the original, so that a path can be
// stored without copying.
type Path struct {
	base    RefPair
	trailer bool
	steps   *stepNode
	guard   *guardNode
}

type stepNode struct {
	step   Step
	parent *stepNode
	depth  int
}

type guardNode struct {
	pair   RefPair
	parent *guardNode
}

// NewPath returns an empty path relative to the given base objects.
// The base pair is not added to the cycle guard; use [Path.Descend]
// for this.
func NewPath(cmp, out pdf.Reference) Path {
	return Path{base: RefPair{Cmp: cmp, Out: out}}
}

// TrailerPath returns an empty path relative to the file trailers.
func TrailerPath() Path {
	return Path{trailer: true}
}

// Push returns the path extended by one step.
func (p Path) Push(s Step) Path {
	depth := 1
	if p.steps != nil {
		depth = p.steps.depth + 1
	}
	p.steps = &stepNode{step: s, parent: p.steps, depth: depth}
	return p
}

// Descend returns a new path with base objects cmp and out, and no
// steps.  The pair is added to the cycle guard of p.
func (p Path) Descend(cmp, out pdf.Reference) Path {
	pair := RefPair{Cmp: cmp, Out: out}
	return Path{
		base:  pair,
		guard: &guardNode{pair: pair, parent: p.guard},
	}
}

// IsComparing returns true if the pair cmp/out is already being compared
// further up the recursion.
func (p Path) IsComparing(cmp, out pdf.Reference) bool {
	pair := RefPair{Cmp: cmp, Out: out}
	for g := p.guard; g != nil; g = g.parent {
		if g.pair == pair {
			return true
		}
	}
	return false
}

// Base returns the base objects of the path.  The second return value is
// false for paths relative to the file trailers.
func (p Path) Base() (RefPair, bool) {
	return p.base, !p.trailer
}

// Steps returns the steps of the path, starting from the base objects.
func (p Path) Steps() []Step {
	if p.steps == nil {
		return nil
	}
	res := make([]Step, p.steps.depth)
	for n := p.steps; n != nil; n = n.parent {
		res[n.depth-1] = n.step
	}
	return res
}

// Equal returns true if p and q have the same base objects and the same
// steps.  The cycle guard is not compared.
func (p Path) Equal(q Path) bool {
	if p.base != q.base || p.trailer != q.trailer {
		return false
	}
	a, b := p.steps, q.steps
	for a != nil && b != nil {
		if a == b {
			return true
		}
		if a.step != b.step {
			return false
		}
		a, b = a.parent, b.parent
	}
	return a == nil && b == nil
}

// key returns a string which identifies the path for [Path.Equal].
func (p Path) key() string {
	b := &strings.Builder{}
	if p.trailer {
		b.WriteString("trailer")
	} else {
		b.WriteString(strconv.FormatUint(uint64(p.base.Cmp), 16))
		b.WriteByte(':')
		b.WriteString(strconv.FormatUint(uint64(p.base.Out), 16))
	}
	for _, s := range p.Steps() {
		b.WriteByte('|')
		b.WriteString(s.String())
	}
	return b.String()
}

func (p Path) String() string {
	b := &strings.Builder{}
	if p.trailer {
		b.WriteString("Base cmp object: trailer. Base out object: trailer")
	} else {
		b.WriteString("Base cmp object: ")
		b.WriteString(objName(p.base.Cmp))
		b.WriteString(". Base out object: ")
		b.WriteString(objName(p.base.Out))
	}
	for _, s := range p.Steps() {
		b.WriteByte('\n')
		b.WriteString(s.String())
	}
	return b.String()
}

func objName(ref pdf.Reference) string {
	return strconv.FormatUint(uint64(ref.Number()), 10) + " " +
		strconv.FormatUint(uint64(ref.Generation()), 10) + " obj"
}
