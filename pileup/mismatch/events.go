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

// Package mismatch decodes per-read differences from the reference (MD
// mismatches, CIGAR insertions/deletions/skips/clips) into reusable
// structure-of-arrays event buffers.
package mismatch

import (
	"github.com/grailbio/readview/pileup"
)

// PosType is the integer type used to represent genomic positions.
type PosType = pileup.PosType

// Kind identifies the type of an event.
type Kind uint8

const (
	// Mismatch is a single-base substitution, decoded from the MD tag.
	Mismatch Kind = iota
	// Deletion is a run of reference bases absent from the read (CIGAR D).
	Deletion
	// Insertion is a run of read bases absent from the reference (CIGAR I).
	Insertion
	// SoftClip is a run of unaligned read bases present in SEQ (CIGAR S).
	SoftClip
	// Skip is a skipped reference region, e.g. an intron (CIGAR N).
	Skip
	nKind
)

var kindNames = [...]string{"mismatch", "deletion", "insertion", "softclip", "skip"}

// String implements fmt.Stringer.
func (k Kind) String() string {
	if k >= nKind {
		return "unknown"
	}
	return kindNames[k]
}

// NoQual is stored in Events.Quals when no base quality is available.  It
// matches the BAM convention for a missing QUAL field.
const NoQual = 0xff

// Event is a single difference between a read and the reference.
type Event struct {
	// Start is the 0-based reference position of the event.  For insertions
	// and soft clips, it is the reference position immediately after the
	// inserted/clipped bases.
	Start PosType
	// Length is 1 for mismatches, and the CIGAR operation length otherwise.
	Length uint32
	Kind   Kind
	// RefBase is the reference base of a mismatch (the MD letter).  Zero for
	// other kinds.
	RefBase byte
	// AltBase is the read base of a mismatch, or pileup.UnknownBase when the
	// read sequence could not be consulted.  Zero for other kinds.
	AltBase byte
	// Qual is the base quality of a mismatch, or NoQual.
	Qual byte
}

// Events is a structure-of-arrays list of events.  All slices always have
// the same length.
//
// An Events value is meant to be reused: Reset() keeps the backing arrays,
// so once they have grown to fit the largest read, decoding further reads
// performs no allocation.  An Events value must not be written by two
// goroutines at once.
type Events struct {
	Starts   []PosType
	Lengths  []uint32
	Kinds    []Kind
	RefBases []byte
	AltBases []byte
	Quals    []byte
}

// Len returns the number of events.
func (e *Events) Len() int {
	return len(e.Starts)
}

// Reset empties the list, keeping its capacity.
func (e *Events) Reset() {
	e.Truncate(0)
}

// Truncate discards every event at index >= n.
func (e *Events) Truncate(n int) {
	e.Starts = e.Starts[:n]
	e.Lengths = e.Lengths[:n]
	e.Kinds = e.Kinds[:n]
	e.RefBases = e.RefBases[:n]
	e.AltBases = e.AltBases[:n]
	e.Quals = e.Quals[:n]
}

// Append adds an event to the end of the list.
func (e *Events) Append(ev Event) {
	e.Starts = append(e.Starts, ev.Start)
	e.Lengths = append(e.Lengths, ev.Length)
	e.Kinds = append(e.Kinds, ev.Kind)
	e.RefBases = append(e.RefBases, ev.RefBase)
	e.AltBases = append(e.AltBases, ev.AltBase)
	e.Quals = append(e.Quals, ev.Qual)
}

// At returns event i.
func (e *Events) At(i int) Event {
	return Event{
		Start:   e.Starts[i],
		Length:  e.Lengths[i],
		Kind:    e.Kinds[i],
		RefBase: e.RefBases[i],
		AltBase: e.AltBases[i],
		Qual:    e.Quals[i],
	}
}

// Count returns the number of events of the given kind.
func (e *Events) Count(kind Kind) (n int) {
	for _, k := range e.Kinds {
		if k == kind {
			n++
		}
	}
	return
}

// SoftClips returns the lengths of the soft clips at the beginning and end of
// a read whose aligned span starts at readStart.
func (e *Events) SoftClips(readStart PosType) (before, after PosType) {
	for i, k := range e.Kinds {
		if k != SoftClip {
			continue
		}
		if e.Starts[i] == readStart && before == 0 {
			before = PosType(e.Lengths[i])
		} else {
			after = PosType(e.Lengths[i])
		}
	}
	return
}

// Slice returns a view of events [i, j).  The view shares storage with e but
// has no spare capacity, so appending to either one never changes the other.
func (e *Events) Slice(i, j int) Events {
	return Events{
		Starts:   e.Starts[i:j:j],
		Lengths:  e.Lengths[i:j:j],
		Kinds:    e.Kinds[i:j:j],
		RefBases: e.RefBases[i:j:j],
		AltBases: e.AltBases[i:j:j],
		Quals:    e.Quals[i:j:j],
	}
}

// Clone returns a deep copy of e that shares no memory with it.
func (e *Events) Clone() *Events {
	n := e.Len()
	c := &Events{
		Starts:   make([]PosType, n),
		Lengths:  make([]uint32, n),
		Kinds:    make([]Kind, n),
		RefBases: make([]byte, n),
		AltBases: make([]byte, n),
		Quals:    make([]byte, n),
	}
	copy(c.Starts, e.Starts)
	copy(c.Lengths, e.Lengths)
	copy(c.Kinds, e.Kinds)
	copy(c.RefBases, e.RefBases)
	copy(c.AltBases, e.AltBases)
	copy(c.Quals, e.Quals)
	return c
}
