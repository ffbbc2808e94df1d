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

// Package coverage computes per-base read depth, strand-split depth,
// deletion depth and mismatch tallies over a reference window from a set of
// aligned features.
package coverage

import (
	"github.com/grailbio/readview/pileup"
	"github.com/grailbio/readview/pileup/mismatch"
)

// PosType is the integer type used to represent genomic positions.
type PosType = pileup.PosType

// Feature is one aligned read, as seen by Accumulate.
type Feature struct {
	// [Start, End) is the reference span covered by the alignment, including
	// deleted and skipped bases.
	Start, End PosType
	Strand     pileup.StrandType
	// Events is the read's decoded mismatch/CIGAR events.  May be nil.
	Events *mismatch.Events
}

// Bin holds the counts for a single reference position.
type Bin struct {
	// Depth is the number of features whose span covers the position.
	Depth uint32
	// PlusDepth and MinusDepth split Depth by strand.  Features of unknown
	// strand contribute to Depth only.
	PlusDepth  uint32
	MinusDepth uint32
	// DeletionDepth is the number of features with a deletion covering the
	// position.
	DeletionDepth uint32
	// Mismatches is indexed by pileup.BaseA..BaseX.
	Mismatches [pileup.NBaseEnum]uint32
}

// AdjustedDepth returns the number of features with a base aligned at the
// position, i.e. Depth minus DeletionDepth.
func (b *Bin) AdjustedDepth() uint32 {
	if b.DeletionDepth >= b.Depth {
		return 0
	}
	return b.Depth - b.DeletionDepth
}

// MismatchTotal returns the sum of Mismatches.
func (b *Bin) MismatchTotal() (total uint32) {
	for _, n := range b.Mismatches {
		total += n
	}
	return
}
