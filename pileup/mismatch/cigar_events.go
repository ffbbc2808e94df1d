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
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/readview/pileup/cigar"
	"github.com/pkg/errors"
)

// AppendCigarEvents appends the Insertion, Deletion, Skip and SoftClip
// events described by ops, for a read whose first aligned base is at
// reference position start.  Events are appended in reference order, so Skip
// events come out strictly increasing as ParseWithSkips requires.
//
// If ops contains an unrecognized opcode, out is left unchanged and an error
// wrapping cigar.ErrMalformedCigar is returned.
func AppendCigarEvents(ops []sam.CigarOp, start PosType, out *Events) error {
	n0 := out.Len()
	refPos := start
	for i, co := range ops {
		cLen := co.Len()
		var kind Kind
		switch co.Type() {
		case sam.CigarMatch, sam.CigarEqual, sam.CigarMismatch:
			refPos += PosType(cLen)
			continue
		case sam.CigarHardClipped:
			continue
		case sam.CigarPadded:
			// Same reference accounting as cigar.Cursor.
			refPos += PosType(cLen)
			continue
		case sam.CigarInsertion:
			kind = Insertion
		case sam.CigarSoftClipped:
			kind = SoftClip
		case sam.CigarDeletion:
			kind = Deletion
		case sam.CigarSkipped:
			kind = Skip
		default:
			out.Truncate(n0)
			return errors.Wrapf(cigar.ErrMalformedCigar, "op %d has opcode %d", i, uint32(co.Type()))
		}
		if cLen == 0 {
			continue
		}
		out.Starts = append(out.Starts, refPos)
		out.Lengths = append(out.Lengths, uint32(cLen))
		out.Kinds = append(out.Kinds, kind)
		out.RefBases = append(out.RefBases, 0)
		out.AltBases = append(out.AltBases, 0)
		out.Quals = append(out.Quals, NoQual)
		if kind == Deletion || kind == Skip {
			refPos += PosType(cLen)
		}
	}
	return nil
}
