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

// Package track answers region queries over a set of aligned reads: it
// decodes each read's CIGAR and MD events, computes coverage over the region
// and stacks the reads into display rows.
package track

import (
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/readview/encoding/bam"
	"github.com/grailbio/readview/interval"
	"github.com/grailbio/readview/pileup"
)

// PosType is the integer type used to represent genomic positions.
type PosType = pileup.PosType

// Read is one aligned read.
type Read struct {
	Name string
	// Start is the 0-based reference position of the first aligned base.
	Start  PosType
	Strand pileup.StrandType
	Cigar  sam.Cigar
	// MD is the MD tag value, or nil if the read has none.
	MD []byte
	// Seq is the .bam-encoded (two bases per byte) sequence, with SeqLen
	// bases.
	Seq    []byte
	SeqLen int
	// Qual holds per-base qualities, or is nil.
	Qual []byte
}

// ReadFromSAM converts a mapped sam.Record to a Read.  The Read aliases the
// record's storage.  ok is false for unmapped records.
func ReadFromSAM(r *sam.Record) (read Read, ok bool) {
	if r.Ref == nil || r.Pos < 0 || r.Flags&sam.Unmapped != 0 {
		return Read{}, false
	}
	read = Read{
		Name:   r.Name,
		Start:  PosType(r.Pos),
		Strand: pileup.GetStrand(r),
		Cigar:  r.Cigar,
		Qual:   bam.Quals(r),
	}
	read.Seq, read.SeqLen = bam.PackedSeq(r)
	if md, found := bam.MD(r); found {
		read.MD = md
	}
	return read, true
}

// Query asks for the track of Region built from Reads.  Reads need not be
// sorted, and may lie partly or entirely outside Region.
type Query struct {
	Region interval.Region
	Reads  []Read
}
