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
package layout

import (
	"github.com/grailbio/readview/interval"
	"github.com/grailbio/readview/pileup"
)

// PosType is the integer type used for layout coordinates.
type PosType = pileup.PosType

// Row is one horizontal lane of a Layout.  Occupied spans are stored as a
// flat, sorted endpoint slice {l0, r0, l1, r1, ...} of disjoint half-open
// intervals, in the form the interval package's EndpointIndex expects.
type Row struct {
	endpoints []PosType
	// linearScanLimit is the endpoint count below which lookups scan the
	// slice instead of binary searching it.
	linearScanLimit int
	// hint is the endpoint index of the last searched position.  Reads
	// usually arrive sorted by start, so the next search gallops forward
	// from here.
	hint interval.EndpointIndex
}

// Len returns the number of spans stored in the row.
func (r *Row) Len() int {
	return len(r.endpoints) / 2
}

// IsRangeClear returns true iff no stored span intersects [start, end).  An
// empty range is always clear.  It updates the row's search hint, so it must
// not be called concurrently.
func (r *Row) IsRangeClear(start, end PosType) bool {
	if start >= end {
		return true
	}
	ep := r.endpoints
	if len(ep) < r.linearScanLimit {
		for i := 0; i < len(ep); i += 2 {
			if ep[i+1] > start && ep[i] < end {
				return false
			}
		}
		return true
	}
	return r.find(start).RangeClear(ep, end)
}

// find returns interval.NewEndpointIndex(pos, r.endpoints).
func (r *Row) find(pos PosType) interval.EndpointIndex {
	ep := r.endpoints
	// Update only searches forward: restart if pos moved left of the hint.
	if int(r.hint) > len(ep) || (r.hint > 0 && ep[r.hint-1] > pos) {
		r.hint = 0
	}
	r.hint.Update(pos, ep)
	return r.hint
}

// add inserts [start, end), which must be clear.  Empty spans are ignored.
func (r *Row) add(start, end PosType) {
	if start >= end {
		return
	}
	ep := r.endpoints
	var idx int
	if len(ep) < r.linearScanLimit {
		idx = len(ep)
		for i := 0; i < len(ep); i += 2 {
			if ep[i] > start {
				idx = i
				break
			}
		}
	} else {
		idx = int(r.find(start).Begin())
	}
	ep = append(ep, 0, 0)
	copy(ep[idx+2:], ep[idx:])
	ep[idx] = start
	ep[idx+1] = end
	r.endpoints = ep
}

func (r *Row) reset(linearScanLimit int) {
	r.endpoints = r.endpoints[:0]
	r.linearScanLimit = linearScanLimit
	r.hint = 0
}
