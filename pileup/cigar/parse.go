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
package cigar

import (
	"github.com/grailbio/hts/sam"
	"github.com/pkg/errors"
)

// maxOpLen is the largest length representable in the 28 high bits of a
// packed operation.
const maxOpLen = 1<<28 - 1

var opLookup = func() (table [256]int8) {
	for i := range table {
		table[i] = -1
	}
	for op, c := range []byte{'M', 'I', 'D', 'N', 'S', 'H', 'P', '=', 'X'} {
		table[c] = int8(op)
	}
	return
}()

// AppendParsed parses SAM CIGAR text (e.g. "5S10M2I3M") and appends the
// packed operations to dst.  "*" and the empty string describe an empty
// operation list.  On error, dst is returned with its original length.
//
// Lengths are accumulated digit-by-digit rather than by splitting the
// string, so the only allocation is dst growth.
func AppendParsed(dst []sam.CigarOp, text []byte) ([]sam.CigarOp, error) {
	if len(text) == 0 || (len(text) == 1 && text[0] == '*') {
		return dst, nil
	}
	n0 := len(dst)
	n := 0
	nDigit := 0
	for i, c := range text {
		if c >= '0' && c <= '9' {
			n = n*10 + int(c-'0')
			nDigit++
			if n > maxOpLen {
				return dst[:n0], errors.Wrapf(ErrMalformedCigar, "%q: length overflow at byte %d", text, i)
			}
			continue
		}
		op := opLookup[c]
		if op < 0 {
			return dst[:n0], errors.Wrapf(ErrMalformedCigar, "%q: unknown operation %q at byte %d", text, c, i)
		}
		if nDigit == 0 {
			return dst[:n0], errors.Wrapf(ErrMalformedCigar, "%q: missing length at byte %d", text, i)
		}
		dst = append(dst, sam.NewCigarOp(sam.CigarOpType(op), n))
		n = 0
		nDigit = 0
	}
	if nDigit != 0 {
		return dst[:n0], errors.Wrapf(ErrMalformedCigar, "%q: trailing length without operation", text)
	}
	return dst, nil
}

// Parse is AppendParsed into a fresh slice.
func Parse(text string) (sam.Cigar, error) {
	ops, err := AppendParsed(nil, []byte(text))
	if err != nil {
		return nil, err
	}
	return sam.Cigar(ops), nil
}
