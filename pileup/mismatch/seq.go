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
	"github.com/grailbio/readview/pileup"
)

// DecodeBase returns the ASCII base at template offset s of a .bam-encoded
// (two bases per byte, high nibble first) sequence of length seqLen, or
// pileup.UnknownBase if s is out of range.
func DecodeBase(seq []byte, seqLen int, s PosType) byte {
	if s < 0 || int(s) >= seqLen || int(s>>1) >= len(seq) {
		return pileup.UnknownBase
	}
	return pileup.Seq8ToASCIITable[(seq[s>>1]>>((1-uint(s&1))<<2))&0xf]
}

// PackSeq encodes an ASCII sequence into the .bam two-bases-per-byte form,
// appending to dst.  Bytes outside the 16-symbol alphabet are encoded as N.
func PackSeq(dst, ascii []byte) []byte {
	for i := 0; i < len(ascii); i += 2 {
		b := asciiToSeq8Table[ascii[i]] << 4
		if i+1 < len(ascii) {
			b |= asciiToSeq8Table[ascii[i+1]]
		}
		dst = append(dst, b)
	}
	return dst
}

var asciiToSeq8Table = func() (table [256]byte) {
	for i := range table {
		table[i] = 15
	}
	for nibble, c := range pileup.Seq8ToASCIITable {
		table[c] = byte(nibble)
		if c >= 'A' && c <= 'Z' {
			table[c|0x20] = byte(nibble)
		}
	}
	return
}()
