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
package mismatch_test

import (
	"testing"

	"github.com/grailbio/hts/sam"
	"github.com/grailbio/readview/pileup"
	"github.com/grailbio/readview/pileup/cigar"
	"github.com/grailbio/readview/pileup/mismatch"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
	"github.com/pkg/errors"
)

func TestAppendCigarEvents(t *testing.T) {
	ops, err := cigar.Parse("3S2M1I4M2D3M50N2M0I4S5H")
	assert.NoError(t, err)
	var e mismatch.Events
	assert.NoError(t, mismatch.AppendCigarEvents(ops, 100, &e))
	want := []mismatch.Event{
		{Start: 100, Length: 3, Kind: mismatch.SoftClip, Qual: mismatch.NoQual},
		{Start: 102, Length: 1, Kind: mismatch.Insertion, Qual: mismatch.NoQual},
		{Start: 106, Length: 2, Kind: mismatch.Deletion, Qual: mismatch.NoQual},
		{Start: 111, Length: 50, Kind: mismatch.Skip, Qual: mismatch.NoQual},
		{Start: 163, Length: 4, Kind: mismatch.SoftClip, Qual: mismatch.NoQual},
	}
	assert.EQ(t, e.Len(), len(want))
	for i := range want {
		expect.EQ(t, e.At(i), want[i], i)
	}
	expect.EQ(t, e.Count(mismatch.SoftClip), 2)
	expect.EQ(t, e.Count(mismatch.Mismatch), 0)

	before, after := e.SoftClips(100)
	expect.EQ(t, before, pileup.PosType(3))
	expect.EQ(t, after, pileup.PosType(4))
}

func TestAppendCigarEventsMalformed(t *testing.T) {
	var e mismatch.Events
	e.Append(mismatch.Event{Start: 7, Length: 1, Kind: mismatch.Mismatch})
	ops := []sam.CigarOp{
		sam.NewCigarOp(sam.CigarInsertion, 2),
		sam.NewCigarOp(sam.CigarBack, 3),
	}
	err := mismatch.AppendCigarEvents(ops, 0, &e)
	assert.NotNil(t, err)
	expect.EQ(t, errors.Cause(err), cigar.ErrMalformedCigar)
	expect.EQ(t, e.Len(), 1)
}

func TestSoftClipsOneSided(t *testing.T) {
	var e mismatch.Events
	e.Append(mismatch.Event{Start: 20, Length: 5, Kind: mismatch.SoftClip})
	before, after := e.SoftClips(10)
	expect.EQ(t, before, pileup.PosType(0))
	expect.EQ(t, after, pileup.PosType(5))

	e.Reset()
	e.Append(mismatch.Event{Start: 10, Length: 6, Kind: mismatch.SoftClip})
	before, after = e.SoftClips(10)
	expect.EQ(t, before, pileup.PosType(6))
	expect.EQ(t, after, pileup.PosType(0))
}

func TestEventsTruncateClone(t *testing.T) {
	var e mismatch.Events
	for i := 0; i < 5; i++ {
		e.Append(mismatch.Event{Start: pileup.PosType(i), Length: 1, Kind: mismatch.Mismatch, RefBase: 'A', AltBase: 'C', Qual: byte(i)})
	}
	c := e.Clone()
	e.Truncate(2)
	expect.EQ(t, e.Len(), 2)
	expect.EQ(t, c.Len(), 5)
	e.Append(mismatch.Event{Start: 99, Kind: mismatch.Deletion})
	// The clone must not see writes through the original's backing arrays.
	expect.EQ(t, c.Starts[2], pileup.PosType(2))
	expect.EQ(t, c.At(4).Qual, byte(4))
	expect.EQ(t, mismatch.Kind(99).String(), "unknown")
	expect.EQ(t, mismatch.Skip.String(), "skip")
}

func TestPackUnpack(t *testing.T) {
	for _, s := range []string{"", "A", "ACGTN", "ACGTACGT", "=ACMGRSVTWYHKDBN", "acgt"} {
		packed := mismatch.PackSeq(nil, []byte(s))
		expect.EQ(t, len(packed), (len(s)+1)/2, s)
		got := make([]byte, len(s))
		for i := range got {
			got[i] = mismatch.DecodeBase(packed, len(s), pileup.PosType(i))
		}
		want := []byte(s)
		for i, c := range want {
			if c >= 'a' && c <= 'z' {
				want[i] = c - 'a' + 'A'
			}
		}
		expect.EQ(t, string(got), string(want), s)
		for i := range want {
			expect.EQ(t, mismatch.DecodeBase(packed, len(s), pileup.PosType(i)), want[i], s, i)
		}
		expect.EQ(t, mismatch.DecodeBase(packed, len(s), pileup.PosType(len(s))), byte(pileup.UnknownBase), s)
		expect.EQ(t, mismatch.DecodeBase(packed, len(s), -1), byte(pileup.UnknownBase), s)
	}
	// Unknown symbols become N.
	expect.EQ(t, mismatch.PackSeq(nil, []byte("Z?")), []byte{0xff})
}

func TestEventsSlice(t *testing.T) {
	var e mismatch.Events
	for i := 0; i < 4; i++ {
		e.Append(mismatch.Event{Start: pileup.PosType(10 * i), Length: 1, Kind: mismatch.Insertion, Qual: mismatch.NoQual})
	}
	v := e.Slice(1, 3)
	expect.EQ(t, v.Len(), 2)
	expect.EQ(t, v.Starts, []pileup.PosType{10, 20})
	// Shared storage until v grows.
	e.Starts[1] = 11
	expect.EQ(t, v.Starts[0], pileup.PosType(11))
	v.Append(mismatch.Event{Start: 99})
	expect.EQ(t, e.Starts[3], pileup.PosType(30))
	expect.EQ(t, v.Starts, []pileup.PosType{11, 20, 99})
	e.Starts[1] = 12
	expect.EQ(t, v.Starts[0], pileup.PosType(11))
}
