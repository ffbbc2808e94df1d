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
package pileup

import (
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/readview/interval"
)

// Common pileup components.

// PosType is the integer type used to represent genomic positions.
type PosType = interval.PosType

// Base enum used to index per-base tallies.  A/C/G/T get their natural 2-bit
// values; N is tracked separately from every other (ambiguity / unknown)
// symbol, which lands in BaseX.
const (
	// BaseA represents an A base.
	BaseA byte = iota
	// BaseC represents an C base.
	BaseC
	// BaseG represents an G base.
	BaseG
	// BaseT represents an T base.
	BaseT
	// BaseN represents an N base.
	BaseN
	// BaseX is a catch-all.
	BaseX
)

// NBaseEnum counts BaseN and BaseX as well as A/C/G/T.
const NBaseEnum = 6

// UnknownBase is reported in place of a read base that could not be looked
// up, e.g. because the decoded template offset ran past the end of the
// sequence.
const UnknownBase = 'X'

// Seq8ToASCIITable is the .bam seq nibble -> ASCII mapping.
var Seq8ToASCIITable = [...]byte{'=', 'A', 'C', 'M', 'G', 'R', 'S', 'V', 'T', 'W', 'Y', 'H', 'K', 'D', 'B', 'N'}

// EnumToASCIITable is the A/C/G/T/N/X -> ASCII mapping.
var EnumToASCIITable = [...]byte{'A', 'C', 'G', 'T', 'N', 'X'}

// ASCIIToEnumTable maps both upper- and lowercase ACGTN to the base enum;
// every other byte maps to BaseX.
var ASCIIToEnumTable = func() (table [256]byte) {
	for i := range table {
		table[i] = BaseX
	}
	for enum, c := range EnumToASCIITable[:BaseX] {
		table[c] = byte(enum)
		table[c|0x20] = byte(enum)
	}
	return
}()

// StrandType describes which strand a read is aligned to.
type StrandType int

const (
	// StrandUnknown means the strand is not known; such reads count toward
	// total depth but neither strand-split depth.
	StrandUnknown StrandType = iota
	// StrandPlus means the read is aligned to the forward strand.
	StrandPlus
	// StrandMinus means the read is aligned to the reverse strand.
	StrandMinus
)

// StrandTypeToASCIITable is the StrandType -> ASCII mapping.
var StrandTypeToASCIITable = [...]byte{'.', '+', '-'}

// String implements fmt.Stringer.
func (s StrandType) String() string {
	if s < StrandUnknown || s > StrandMinus {
		s = StrandUnknown
	}
	return string(StrandTypeToASCIITable[s])
}

// ParseStrand converts "+"/"-" (or "1"/"-1") to a StrandType.  Anything else
// is StrandUnknown.
func ParseStrand(s string) StrandType {
	switch s {
	case "+", "1":
		return StrandPlus
	case "-", "-1":
		return StrandMinus
	}
	return StrandUnknown
}

// GetStrand returns the strand an individual read is aligned to.  Unmapped
// reads have no strand.
func GetStrand(samr *sam.Record) StrandType {
	if samr.Flags&sam.Unmapped != 0 {
		return StrandUnknown
	}
	if samr.Flags&sam.Reverse != 0 {
		return StrandMinus
	}
	return StrandPlus
}
