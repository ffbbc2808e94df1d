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
	"github.com/grailbio/readview/interval"
	"github.com/grailbio/readview/pileup"
	"github.com/grailbio/readview/pileup/mismatch"
	"github.com/pkg/errors"
)

// Accumulator computes coverage bins.  It owns the scratch difference arrays
// and the annotation table, which are reused across calls, so a single
// Accumulator must not be used by concurrent goroutines; give each worker its
// own.
type Accumulator struct {
	depth []int32
	plus  []int32
	minus []int32
	del   []int32
	ann   Annotations
}

// NewAccumulator returns an empty Accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Annotations returns the insertion/soft-clip/skip table filled by the most
// recent Accumulate call.  It is overwritten by the next call.
func (a *Accumulator) Annotations() *Annotations {
	return &a.ann
}

// resizeZero returns buf resized to n, with every element zero.
func resizeZero(buf []int32, n int) []int32 {
	if cap(buf) < n {
		return make([]int32, n)
	}
	buf = buf[:n]
	for i := range buf {
		buf[i] = 0
	}
	return buf
}

// clip intersects [s, e) with [start, end), returning offsets relative to
// start.  ok is false if the intersection is empty.
func clip(s, e, start, end PosType) (lo, hi int, ok bool) {
	if s < start {
		s = start
	}
	if e > end {
		e = end
	}
	if s >= e {
		return 0, 0, false
	}
	return int(s - start), int(e - start), true
}

// Accumulate returns one Bin per reference position in [start, end).
// Features may be unsorted, may extend past either end of the window, and
// may have negative coordinates; only the part inside the window counts.
// Features with End <= Start cover nothing.
//
// Span and deletion contributions are recorded as +1/-1 pairs in difference
// arrays and resolved by one prefix-sum pass at the end, so the cost is
// O(len(features) + number of events + (end-start)).
//
// If end < start, an error wrapping interval.ErrInvalidRegion is returned.
func (a *Accumulator) Accumulate(features []Feature, start, end PosType) ([]Bin, error) {
	a.ann.reset()
	if end < start {
		return nil, errors.Wrapf(interval.ErrInvalidRegion, "coverage window [%d, %d)", start, end)
	}
	width := int(end - start)
	bins := make([]Bin, width)
	if width == 0 {
		return bins, nil
	}
	a.depth = resizeZero(a.depth, width+1)
	a.plus = resizeZero(a.plus, width+1)
	a.minus = resizeZero(a.minus, width+1)
	a.del = resizeZero(a.del, width+1)
	depth, plus, minus, del := a.depth, a.plus, a.minus, a.del

	for fi := range features {
		f := &features[fi]
		if lo, hi, ok := clip(f.Start, f.End, start, end); ok {
			depth[lo]++
			depth[hi]--
			switch f.Strand {
			case pileup.StrandPlus:
				plus[lo]++
				plus[hi]--
			case pileup.StrandMinus:
				minus[lo]++
				minus[hi]--
			}
		}
		ev := f.Events
		if ev == nil {
			continue
		}
		for i, kind := range ev.Kinds {
			pos := ev.Starts[i]
			switch kind {
			case mismatch.Mismatch:
				if pos >= start && pos < end {
					bins[pos-start].Mismatches[pileup.ASCIIToEnumTable[ev.AltBases[i]]]++
				}
			case mismatch.Deletion:
				if lo, hi, ok := clip(pos, pos+PosType(ev.Lengths[i]), start, end); ok {
					del[lo]++
					del[hi]--
				}
			default:
				if pos >= start && pos < end {
					a.ann.add(pos, kind, ev.Lengths[i])
				}
			}
		}
	}

	var d, p, m, dl int32
	for i := range bins {
		d += depth[i]
		p += plus[i]
		m += minus[i]
		dl += del[i]
		b := &bins[i]
		b.Depth = uint32(d)
		b.PlusDepth = uint32(p)
		b.MinusDepth = uint32(m)
		b.DeletionDepth = uint32(dl)
	}
	return bins, nil
}
