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
package coverage_test

import (
	"bytes"
	"fmt"
	"math/rand"
	"testing"

	"github.com/grailbio/readview/interval"
	"github.com/grailbio/readview/pileup"
	"github.com/grailbio/readview/pileup/coverage"
	"github.com/grailbio/readview/pileup/mismatch"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
	"github.com/pkg/errors"
)

// bruteForce computes the same bins as Accumulate by visiting every covered
// position of every feature.
func bruteForce(features []coverage.Feature, start, end pileup.PosType) ([]coverage.Bin, map[pileup.PosType]coverage.Annotation) {
	bins := make([]coverage.Bin, end-start)
	ann := make(map[pileup.PosType]coverage.Annotation)
	for _, f := range features {
		for pos := f.Start; pos < f.End; pos++ {
			if pos < start || pos >= end {
				continue
			}
			b := &bins[pos-start]
			b.Depth++
			switch f.Strand {
			case pileup.StrandPlus:
				b.PlusDepth++
			case pileup.StrandMinus:
				b.MinusDepth++
			}
		}
		if f.Events == nil {
			continue
		}
		for i := 0; i < f.Events.Len(); i++ {
			ev := f.Events.At(i)
			switch ev.Kind {
			case mismatch.Mismatch:
				if ev.Start >= start && ev.Start < end {
					bins[ev.Start-start].Mismatches[pileup.ASCIIToEnumTable[ev.AltBase]]++
				}
			case mismatch.Deletion:
				for pos := ev.Start; pos < ev.Start+pileup.PosType(ev.Length); pos++ {
					if pos >= start && pos < end {
						bins[pos-start].DeletionDepth++
					}
				}
			default:
				if ev.Start < start || ev.Start >= end {
					continue
				}
				a := ann[ev.Start]
				a.Pos = ev.Start
				switch ev.Kind {
				case mismatch.Insertion:
					a.Insertions++
					a.InsertedBases += ev.Length
				case mismatch.SoftClip:
					a.SoftClips++
				case mismatch.Skip:
					a.Skips++
				}
				ann[ev.Start] = a
			}
		}
	}
	return bins, ann
}

func randomFeatures(rng *rand.Rand, n int, lo, hi pileup.PosType, maxLen int) []coverage.Feature {
	const alts = "ACGTNRX"
	features := make([]coverage.Feature, n)
	for i := range features {
		s := lo + pileup.PosType(rng.Int63n(int64(hi-lo)))
		e := s + pileup.PosType(rng.Intn(maxLen+1))
		ev := &mismatch.Events{}
		for j := rng.Intn(4); j > 0 && e > s; j-- {
			pos := s + pileup.PosType(rng.Int63n(int64(e-s)))
			kind := mismatch.Kind(rng.Intn(5))
			length := uint32(1)
			if kind != mismatch.Mismatch {
				length = uint32(1 + rng.Intn(10))
			}
			ev.Append(mismatch.Event{
				Start:   pos,
				Length:  length,
				Kind:    kind,
				RefBase: 'A',
				AltBase: alts[rng.Intn(len(alts))],
			})
		}
		features[i] = coverage.Feature{
			Start:  s,
			End:    e,
			Strand: pileup.StrandType(rng.Intn(3)),
			Events: ev,
		}
	}
	return features
}

func TestAccumulateRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	acc := coverage.NewAccumulator()
	for _, tt := range []struct {
		n      int
		lo, hi pileup.PosType
		maxLen int
	}{
		{10, -20, 50, 30},
		{500, 0, 2000, 150},
		{5000, 100000, 300000, 10000},
	} {
		features := randomFeatures(rng, tt.n, tt.lo, tt.hi, tt.maxLen)
		start := tt.lo + (tt.hi-tt.lo)/4
		end := tt.hi - (tt.hi-tt.lo)/4
		got, err := acc.Accumulate(features, start, end)
		assert.NoError(t, err)
		want, wantAnn := bruteForce(features, start, end)
		assert.EQ(t, len(got), len(want))
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("n=%d pos=%d: got %+v, want %+v", tt.n, start+pileup.PosType(i), got[i], want[i])
			}
		}
		ann := acc.Annotations()
		expect.EQ(t, ann.Len(), len(wantAnn))
		prev := start - 1
		ann.Do(func(a *coverage.Annotation) bool {
			expect.True(t, a.Pos > prev)
			prev = a.Pos
			expect.EQ(t, *a, wantAnn[a.Pos])
			return false
		})
	}
}

func TestAccumulateSingleFeature(t *testing.T) {
	acc := coverage.NewAccumulator()
	bins, err := acc.Accumulate([]coverage.Feature{{Start: 10, End: 20, Strand: pileup.StrandPlus}}, 0, 30)
	assert.NoError(t, err)
	assert.EQ(t, len(bins), 30)
	for i, b := range bins {
		want := uint32(0)
		if i >= 10 && i < 20 {
			want = 1
		}
		expect.EQ(t, b.Depth, want, i)
		expect.EQ(t, b.PlusDepth, want, i)
		expect.EQ(t, b.MinusDepth, uint32(0), i)
	}
}

func TestAccumulateOverlappingStrands(t *testing.T) {
	features := []coverage.Feature{
		{Start: 0, End: 100, Strand: pileup.StrandPlus},
		{Start: 50, End: 150, Strand: pileup.StrandMinus},
		{Start: 200, End: 300, Strand: pileup.StrandPlus},
	}
	acc := coverage.NewAccumulator()
	bins, err := acc.Accumulate(features, 0, 1000)
	assert.NoError(t, err)
	assert.EQ(t, len(bins), 1000)
	expect.EQ(t, bins[75].Depth, uint32(2))
	expect.EQ(t, bins[75].PlusDepth, uint32(1))
	expect.EQ(t, bins[75].MinusDepth, uint32(1))
	expect.EQ(t, bins[175].Depth, uint32(0))
	expect.EQ(t, bins[250].Depth, uint32(1))
	expect.EQ(t, bins[250].PlusDepth, uint32(1))
	expect.EQ(t, bins[999].Depth, uint32(0))
	for i, b := range bins {
		expect.EQ(t, b.PlusDepth+b.MinusDepth, b.Depth, i)
	}
}

func TestAccumulateEvents(t *testing.T) {
	ev := &mismatch.Events{}
	ev.Append(mismatch.Event{Start: 10, Length: 4, Kind: mismatch.SoftClip})
	ev.Append(mismatch.Event{Start: 12, Length: 1, Kind: mismatch.Mismatch, RefBase: 'A', AltBase: 'G'})
	ev.Append(mismatch.Event{Start: 15, Length: 2, Kind: mismatch.Insertion})
	ev.Append(mismatch.Event{Start: 15, Length: 3, Kind: mismatch.Deletion})
	ev.Append(mismatch.Event{Start: 19, Length: 1, Kind: mismatch.Mismatch, RefBase: 'C', AltBase: 'X'})
	features := []coverage.Feature{
		{Start: 10, End: 20, Strand: pileup.StrandMinus, Events: ev},
		{Start: 12, End: 30, Strand: pileup.StrandUnknown},
	}
	acc := coverage.NewAccumulator()
	bins, err := acc.Accumulate(features, 10, 20)
	assert.NoError(t, err)
	expect.EQ(t, bins[2].Depth, uint32(2))
	expect.EQ(t, bins[2].MinusDepth, uint32(1))
	expect.EQ(t, bins[2].PlusDepth, uint32(0))
	expect.EQ(t, bins[2].Mismatches[pileup.BaseG], uint32(1))
	expect.EQ(t, bins[2].MismatchTotal(), uint32(1))
	expect.EQ(t, bins[9].Mismatches[pileup.BaseX], uint32(1))
	for i := 5; i < 8; i++ {
		expect.EQ(t, bins[i].DeletionDepth, uint32(1), i)
		expect.EQ(t, bins[i].AdjustedDepth(), uint32(1), i)
	}
	expect.EQ(t, bins[8].DeletionDepth, uint32(0))

	ann := acc.Annotations()
	expect.EQ(t, ann.Len(), 2)
	expect.EQ(t, *ann.Get(10), coverage.Annotation{Pos: 10, SoftClips: 1})
	expect.EQ(t, *ann.Get(15), coverage.Annotation{Pos: 15, Insertions: 1, InsertedBases: 2})
	expect.True(t, ann.Get(11) == nil)

	// The table only reflects the latest call.
	_, err = acc.Accumulate(features, 100, 200)
	assert.NoError(t, err)
	expect.EQ(t, acc.Annotations().Len(), 0)
}

func TestAccumulateEdgeCases(t *testing.T) {
	acc := coverage.NewAccumulator()
	features := []coverage.Feature{
		{Start: -50, End: 5},
		{Start: 8, End: 8},
		{Start: 9, End: 3},
		{Start: 95, End: 400},
	}
	bins, err := acc.Accumulate(features, 0, 100)
	assert.NoError(t, err)
	expect.EQ(t, bins[0].Depth, uint32(1))
	expect.EQ(t, bins[4].Depth, uint32(1))
	expect.EQ(t, bins[5].Depth, uint32(0))
	expect.EQ(t, bins[8].Depth, uint32(0))
	expect.EQ(t, bins[95].Depth, uint32(1))
	expect.EQ(t, bins[99].Depth, uint32(1))

	bins, err = acc.Accumulate(features, 50, 50)
	assert.NoError(t, err)
	expect.EQ(t, len(bins), 0)

	bins, err = acc.Accumulate(nil, 0, 10)
	assert.NoError(t, err)
	expect.EQ(t, bins, make([]coverage.Bin, 10))

	_, err = acc.Accumulate(features, 10, 5)
	expect.EQ(t, errors.Cause(err), interval.ErrInvalidRegion)
}

func TestAdjustedDepthFloor(t *testing.T) {
	b := coverage.Bin{Depth: 1, DeletionDepth: 3}
	expect.EQ(t, b.AdjustedDepth(), uint32(0))
}

func TestWriteTSV(t *testing.T) {
	ev := &mismatch.Events{}
	ev.Append(mismatch.Event{Start: 101, Length: 1, Kind: mismatch.Mismatch, RefBase: 'A', AltBase: 'T'})
	ev.Append(mismatch.Event{Start: 101, Length: 5, Kind: mismatch.Insertion})
	acc := coverage.NewAccumulator()
	bins, err := acc.Accumulate([]coverage.Feature{{Start: 100, End: 102, Strand: pileup.StrandPlus, Events: ev}}, 100, 103)
	assert.NoError(t, err)

	var buf bytes.Buffer
	assert.NoError(t, coverage.WriteTSV(&buf, "chr1", 100, bins))
	expect.EQ(t, buf.String(), "#CHROM\tPOS\tDEPTH\tPLUS\tMINUS\tDEL\tA\tC\tG\tT\tN\tX\n"+
		"chr1\t101\t1\t1\t0\t0\t0\t0\t0\t0\t0\t0\n"+
		"chr1\t102\t1\t1\t0\t0\t0\t0\t0\t1\t0\t0\n"+
		"chr1\t103\t0\t0\t0\t0\t0\t0\t0\t0\t0\t0\n")

	buf.Reset()
	assert.NoError(t, coverage.WriteAnnotationsTSV(&buf, "chr1", acc.Annotations().AppendTo(nil)))
	expect.EQ(t, buf.String(), "#CHROM\tPOS\tINS\tINS_BASES\tSOFTCLIP\tSKIP\n"+
		"chr1\t102\t1\t5\t0\t0\n")
}

func BenchmarkAccumulate(b *testing.B) {
	for _, n := range []int{1000, 100000} {
		features := randomFeatures(rand.New(rand.NewSource(1)), n, 0, 1000000, 150)
		b.Run(fmt.Sprintf("features=%d", n), func(b *testing.B) {
			acc := coverage.NewAccumulator()
			for i := 0; i < b.N; i++ {
				if _, err := acc.Accumulate(features, 0, 1000000); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
