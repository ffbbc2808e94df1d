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

// Package cigar walks packed CIGAR operations, mapping reference offsets to
// template (read) offsets.
package cigar

import (
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/readview/pileup"
	"github.com/pkg/errors"
)

// PosType is the integer type used to represent genomic positions.
type PosType = pileup.PosType

// ErrMalformedCigar is the cause of every error returned for an operation
// list containing an opcode outside M/I/D/N/S/H/P/=/X, or for unparseable
// CIGAR text.
var ErrMalformedCigar = errors.New("malformed CIGAR")

// Validate returns an error wrapping ErrMalformedCigar if ops contains an
// unrecognized opcode.  Walk assumes its input has passed Validate.
func Validate(ops []sam.CigarOp) error {
	for i, co := range ops {
		if co.Type() > sam.CigarMismatch {
			return errors.Wrapf(ErrMalformedCigar, "op %d has opcode %d", i, uint32(co.Type()))
		}
	}
	return nil
}

// Cursor is a resumable position within an operation list.  Callers that map
// a non-decreasing sequence of reference offsets through the same list
// (e.g. every mismatch of one read) reuse a Cursor so that the whole read
// costs O(len(ops)) instead of O(len(ops)) per lookup.
//
// The zero value is positioned before the first operation.
type Cursor struct {
	opIdx          int
	templateOffset PosType
	refOffset      PosType
}

// Reset rewinds the cursor to the first operation.  It must be called before
// reusing a Cursor on a different operation list.
func (c *Cursor) Reset() {
	*c = Cursor{}
}

// Walk consumes operations until the cumulative reference offset exceeds
// upTo (or the operations run out), and returns the cumulative template and
// reference offsets at that point.  The template offset of reference offset
// upTo is then TemplateOffset(templateOffset, refOffset, upTo).
//
// Successive calls must pass non-decreasing upTo values; the cursor never
// rewinds.
func (c *Cursor) Walk(ops []sam.CigarOp, upTo PosType) (templateOffset, refOffset PosType) {
	i := c.opIdx
	templateOffset = c.templateOffset
	refOffset = c.refOffset
	for ; i < len(ops) && refOffset <= upTo; i++ {
		co := ops[i]
		cLen := PosType(co.Len())
		switch co.Type() {
		case sam.CigarSoftClipped, sam.CigarInsertion:
			templateOffset += cLen
		case sam.CigarDeletion, sam.CigarSkipped, sam.CigarPadded:
			refOffset += cLen
		case sam.CigarHardClipped:
			// do nothing
		default:
			templateOffset += cLen
			refOffset += cLen
		}
	}
	c.opIdx = i
	c.templateOffset = templateOffset
	c.refOffset = refOffset
	return
}

// WalkFromStart is equivalent to Walk on a fresh Cursor.
func WalkFromStart(ops []sam.CigarOp, upTo PosType) (templateOffset, refOffset PosType) {
	var c Cursor
	return c.Walk(ops, upTo)
}

// TemplateOffset converts the result of Walk(ops, pos) to the template offset
// aligned to reference offset pos.
func TemplateOffset(templateOffset, refOffset, pos PosType) PosType {
	return templateOffset - (refOffset - pos)
}

// Lengths returns the number of reference and template bases described by
// ops.  Padding consumes reference here, matching Walk.
func Lengths(ops []sam.CigarOp) (ref, template PosType) {
	for _, co := range ops {
		cLen := PosType(co.Len())
		switch co.Type() {
		case sam.CigarSoftClipped, sam.CigarInsertion:
			template += cLen
		case sam.CigarDeletion, sam.CigarSkipped, sam.CigarPadded:
			ref += cLen
		case sam.CigarHardClipped:
		default:
			template += cLen
			ref += cLen
		}
	}
	return
}

// HasSkips returns true iff ops contains an N (reference skip) operation, as
// in spliced RNA alignments.
func HasSkips(ops []sam.CigarOp) bool {
	for _, co := range ops {
		if co.Type() == sam.CigarSkipped {
			return true
		}
	}
	return false
}
