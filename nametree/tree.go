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

package nametree

import (
	"errors"
	"iter"

	"github.com/CuteXiaoKe/pdf"
)

// maxDepth limits the recursion into Kids arrays.  Name trees in real
// documents are shallow, so deeper trees indicate a loop.
const maxDepth = 32

// Lookup finds the value for key in the name tree with the given root.
// If the key is not present, [ErrKeyNotFound] is returned.
func Lookup(r pdf.Getter, root pdf.Object, key pdf.String) (pdf.Object, error) {
	node, err := pdf.GetDict(r, root)
	if node == nil {
		if err == nil {
			err = ErrKeyNotFound
		}
		return nil, err
	}
	return lookupInNode(r, node, key, 0)
}

func lookupInNode(r pdf.Getter, node pdf.Dict, key pdf.String, depth int) (pdf.Object, error) {
	if names, ok := node["Names"]; ok {
		arr, err := pdf.GetArray(r, names)
		if err != nil {
			return nil, err
		}

		for i := 0; i+1 < len(arr); i += 2 {
			k, err := pdf.GetString(r, arr[i])
			if err != nil {
				continue
			}
			if string(k) == string(key) {
				return arr[i+1], nil
			}
		}
		return nil, ErrKeyNotFound
	}

	if depth >= maxDepth {
		return nil, errTooDeep
	}

	kids, err := pdf.GetArray(r, node["Kids"])
	if err != nil {
		return nil, err
	}
	for _, kid := range kids {
		child, err := pdf.GetDict(r, kid)
		if child == nil || err != nil {
			continue
		}

		limits, err := pdf.GetArray(r, child["Limits"])
		if err != nil || len(limits) != 2 {
			continue
		}
		lo, err1 := pdf.GetString(r, limits[0])
		hi, err2 := pdf.GetString(r, limits[1])
		if err1 != nil || err2 != nil {
			continue
		}

		if string(key) >= string(lo) && string(key) <= string(hi) {
			return lookupInNode(r, child, key, depth+1)
		}
	}

	return nil, ErrKeyNotFound
}

// All iterates over all entries of the name tree, in the order they
// appear in the file.  Malformed nodes are skipped.
func All(r pdf.Getter, root pdf.Object) iter.Seq2[pdf.String, pdf.Object] {
	return func(yield func(pdf.String, pdf.Object) bool) {
		node, err := pdf.GetDict(r, root)
		if node == nil || err != nil {
			return
		}
		yieldFromNode(r, node, yield, 0)
	}
}

func yieldFromNode(r pdf.Getter, node pdf.Dict, yield func(pdf.String, pdf.Object) bool, depth int) bool {
	if names, ok := node["Names"]; ok {
		arr, err := pdf.GetArray(r, names)
		if err != nil {
			return true
		}
		for i := 0; i+1 < len(arr); i += 2 {
			k, err := pdf.GetString(r, arr[i])
			if err != nil {
				continue
			}
			if !yield(k, arr[i+1]) {
				return false
			}
		}
		return true
	}

	if depth >= maxDepth {
		return true
	}

	kids, err := pdf.GetArray(r, node["Kids"])
	if err != nil {
		return true
	}
	for _, kid := range kids {
		child, err := pdf.GetDict(r, kid)
		if child == nil || err != nil {
			continue
		}
		if !yieldFromNode(r, child, yield, depth+1) {
			return false
		}
	}
	return true
}

// Size returns the number of entries in the name tree,
// without reading the entire tree into memory.
func Size(r pdf.Getter, root pdf.Object) (int, error) {
	node, err := pdf.GetDict(r, root)
	if node == nil {
		return 0, err
	}

	return sizeNode(r, node, 0)
}

func sizeNode(r pdf.Getter, node pdf.Dict, depth int) (int, error) {
	if names, ok := node["Names"]; ok {
		arr, err := pdf.GetArray(r, names)
		if err != nil {
			return 0, err
		}
		return len(arr) / 2, nil
	}

	if depth >= maxDepth {
		return 0, errTooDeep
	}

	kids, err := pdf.GetArray(r, node["Kids"])
	if err != nil {
		return 0, err
	}
	total := 0
	for _, kid := range kids {
		child, err := pdf.GetDict(r, kid)
		if err != nil {
			return 0, err
		}
		n, err := sizeNode(r, child, depth+1)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

// ErrKeyNotFound is returned by [Lookup] if the key is not in the tree.
var ErrKeyNotFound = errors.New("key not found")

var errTooDeep = &pdf.MalformedFileError{Err: errors.New("name tree too deep")}
