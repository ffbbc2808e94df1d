// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package coverage

import (
	"github.com/biogo/store/llrb"
	"github.com/grailbio/readview/pileup/mismatch"
)

// Annotation tallies the sparse (non-mismatch) events starting at one
// reference position.
type Annotation struct {
	Pos        PosType
	Insertions uint32
	// InsertedBases is the total length of the insertions at Pos.
	InsertedBases uint32
	SoftClips     uint32
	Skips         uint32
}

// Compare implements llrb.Comparable.
func (a *Annotation) Compare(c llrb.Comparable) int {
	b := c.(*Annotation)
	switch {
	case a.Pos < b.Pos:
		return -1
	case a.Pos > b.Pos:
		return 1
	}
	return 0
}

// Annotations is an ordered position -> Annotation table.  Most positions
// carry no insertion, soft clip or skip, so a tree is kept instead of a dense
// per-bin array.
type Annotations struct {
	tree llrb.Tree
	// free holds nodes from before the last reset, for reuse.
	free []*Annotation
}

// Len returns the number of annotated positions.
func (t *Annotations) Len() int {
	return t.tree.Len()
}

// Get returns the annotation at pos, or nil.
func (t *Annotations) Get(pos PosType) *Annotation {
	c := t.tree.Get(&Annotation{Pos: pos})
	if c == nil {
		return nil
	}
	return c.(*Annotation)
}

// Do calls fn on every annotation in ascending position order, stopping early
// if fn returns true.
func (t *Annotations) Do(fn func(a *Annotation) (done bool)) {
	t.tree.Do(func(c llrb.Comparable) bool {
		return fn(c.(*Annotation))
	})
}

// AppendTo appends every annotation to dst in ascending position order.
func (t *Annotations) AppendTo(dst []Annotation) []Annotation {
	t.Do(func(a *Annotation) bool {
		dst = append(dst, *a)
		return false
	})
	return dst
}

func (t *Annotations) add(pos PosType, kind mismatch.Kind, length uint32) {
	a := t.Get(pos)
	if a == nil {
		if n := len(t.free); n > 0 {
			a = t.free[n-1]
			t.free = t.free[:n-1]
			*a = Annotation{Pos: pos}
		} else {
			a = &Annotation{Pos: pos}
		}
		t.tree.Insert(a)
	}
	switch kind {
	case mismatch.Insertion:
		a.Insertions++
		a.InsertedBases += length
	case mismatch.SoftClip:
		a.SoftClips++
	case mismatch.Skip:
		a.Skips++
	}
}

func (t *Annotations) reset() {
	t.tree.Do(func(c llrb.Comparable) bool {
		t.free = append(t.free, c.(*Annotation))
		return false
	})
	t.tree = llrb.Tree{}
}
