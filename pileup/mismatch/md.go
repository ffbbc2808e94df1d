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
package mismatch

import (
	"math"

	"github.com/grailbio/hts/sam"
	"github.com/grailbio/readview/pileup"
	"github.com/grailbio/readview/pileup/cigar"
	"github.com/pkg/errors"
)

var (
	// ErrMalformedMD is the cause of every error returned for an MD string
	// containing a byte that is not legal at its position.
	ErrMalformedMD = errors.New("malformed MD string")
	// ErrSkipOrder is the cause of the error returned when the skip events
	// passed to ParseWithSkips do not have strictly increasing positions.
	ErrSkipOrder = errors.New("skip events out of order")
)

// Stats summarizes one MD parse.
type Stats struct {
	// RefConsumed is the reference offset reached at the end of the MD string,
	// relative to the read start.  For a well-formed record without skips it
	// equals the aligned reference length.
	RefConsumed PosType
	// OutOfBounds counts mismatches whose read base could not be looked up,
	// because the template offset fell outside SeqLen or the packed Seq;
	// those were reported with pileup.UnknownBase.
	OutOfBounds int
}

// Parser decodes MD strings.  The zero value is ready to use.  A Parser holds
// per-read cursor state only, so one Parser can decode any number of reads in
// sequence, but it must not be used by two goroutines at once.
type Parser struct {
	cursor cigar.Cursor
}

// Read bundles the per-read inputs to Parse.
type Read struct {
	// Start is the 0-based reference position of the first aligned base.
	Start PosType
	// Cigar must have passed cigar.Validate.
	Cigar []sam.CigarOp
	// MD is the MD tag value.
	MD []byte
	// Seq is the .bam-encoded read sequence, with SeqLen bases.
	Seq    []byte
	SeqLen int
	// Qual holds per-base qualities, or is nil.
	Qual []byte
}

// Parse appends one Mismatch event per MD mismatch letter to out.
// Deletions ("^" runs) are consumed without producing events, since they
// duplicate the CIGAR D operations.
//
// If the MD string is malformed, out is restored to its length on entry and
// an error wrapping ErrMalformedMD is returned; the caller can skip the read
// and keep going.
func (p *Parser) Parse(r *Read, out *Events) (Stats, error) {
	return p.parse(r, nil, out)
}

// ParseWithSkips is Parse for spliced alignments.  MD strings do not count
// bases inside skipped (CIGAR N) regions, so each mismatch position is
// shifted by the total length of the skips preceding it.  skips holds the
// read's events in any mix of kinds (typically the output of
// AppendCigarEvents); only Skip events are consulted, and their positions
// must be strictly increasing.
func (p *Parser) ParseWithSkips(r *Read, skips *Events, out *Events) (Stats, error) {
	return p.parse(r, skips, out)
}

func (p *Parser) parse(r *Read, skips *Events, out *Events) (stats Stats, err error) {
	p.cursor.Reset()
	n0 := out.Len()
	defer func() {
		if err != nil {
			out.Truncate(n0)
		}
	}()

	md := r.MD
	ops := r.Cigar
	hasQual := r.Qual != nil
	var (
		refPos  PosType // relative to r.Start
		skipIdx int
		nSkip   int
	)
	if skips != nil {
		if err = checkSkipOrder(skips); err != nil {
			return
		}
		nSkip = skips.Len()
	}
	for i := 0; i < len(md); {
		c := md[i]
		switch {
		case c >= '0' && c <= '9':
			num := int64(0)
			for ; i < len(md) && md[i] >= '0' && md[i] <= '9'; i++ {
				num = num*10 + int64(md[i]-'0')
				if int64(refPos)+num > math.MaxInt32 {
					err = errors.Wrapf(ErrMalformedMD, "%q: match run overflows at byte %d", md, i)
					return
				}
			}
			refPos += PosType(num)
		case c == '^':
			i++
			j := i
			for ; i < len(md) && md[i] >= 'A' && md[i] <= 'Z'; i++ {
			}
			if i == j {
				err = errors.Wrapf(ErrMalformedMD, "%q: '^' not followed by a base at byte %d", md, i)
				return
			}
			if int64(refPos)+int64(i-j) > math.MaxInt32 {
				err = errors.Wrapf(ErrMalformedMD, "%q: deletion overflows at byte %d", md, i)
				return
			}
			refPos += PosType(i - j)
		case c >= 'A' && c <= 'Z':
			if refPos == math.MaxInt32 {
				err = errors.Wrapf(ErrMalformedMD, "%q: mismatch overflows at byte %d", md, i)
				return
			}
			i++
			// Move past every skip starting at or before the current position.
			for ; skipIdx < nSkip; skipIdx++ {
				if skips.Kinds[skipIdx] != Skip {
					continue
				}
				if refPos < skips.Starts[skipIdx]-r.Start {
					break
				}
				refPos += PosType(skips.Lengths[skipIdx])
			}
			templateOffset, refOffset := p.cursor.Walk(ops, refPos)
			s := cigar.TemplateOffset(templateOffset, refOffset, refPos)
			alt := DecodeBase(r.Seq, r.SeqLen, s)
			if alt == pileup.UnknownBase {
				stats.OutOfBounds++
			}
			qual := byte(NoQual)
			if hasQual && s >= 0 && int(s) < len(r.Qual) {
				qual = r.Qual[s]
			}
			out.Starts = append(out.Starts, r.Start+refPos)
			out.Lengths = append(out.Lengths, 1)
			out.Kinds = append(out.Kinds, Mismatch)
			out.RefBases = append(out.RefBases, c)
			out.AltBases = append(out.AltBases, alt)
			out.Quals = append(out.Quals, qual)
			refPos++
		default:
			err = errors.Wrapf(ErrMalformedMD, "%q: unexpected byte %q at %d", md, c, i)
			return
		}
	}
	stats.RefConsumed = refPos
	return
}

// checkSkipOrder verifies that the Skip events in skips have strictly
// increasing positions, which the single forward pass in parse relies on.
func checkSkipOrder(skips *Events) error {
	last := PosType(0)
	found := false
	for i, k := range skips.Kinds {
		if k != Skip {
			continue
		}
		if found && skips.Starts[i] <= last {
			return errors.Wrapf(ErrSkipOrder, "skip at %d follows skip at %d", skips.Starts[i], last)
		}
		found = true
		last = skips.Starts[i]
	}
	return nil
}
