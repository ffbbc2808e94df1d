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
package track

import (
	"fmt"
	"sync"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/readview/interval"
	"github.com/grailbio/readview/pileup/cigar"
	"github.com/grailbio/readview/pileup/coverage"
	"github.com/grailbio/readview/pileup/layout"
	"github.com/grailbio/readview/pileup/mismatch"
)

// Opts configures track construction.
type Opts struct {
	Layout layout.Opts
	// BpPerPx is the horizontal zoom used for layout.
	BpPerPx float64
	// ShowSoftClip reserves layout room for soft-clipped bases.
	ShowSoftClip bool
	// FeatureHeight is the number of layout rows each read occupies.
	FeatureHeight int
	// Parallelism is the number of concurrent jobs used by BuildAll.  0 means
	// one job per query.
	Parallelism int
	// MaxRegionWidth rejects wider regions.  0 means no limit.
	MaxRegionWidth int
}

// DefaultOpts is the default track configuration.
var DefaultOpts = Opts{
	Layout:         layout.DefaultOpts,
	BpPerPx:        1,
	FeatureHeight:  1,
	MaxRegionWidth: 10000000,
}

// Stats counts the reads of one query by outcome.
type Stats struct {
	// Used is the number of reads that overlap the region and were decoded.
	Used int
	// Outside is the number of reads that do not overlap the region.
	Outside int
	// Skipped is the number of reads dropped because of a malformed CIGAR or
	// MD string.
	Skipped int
	// NoMD is the number of used reads without an MD tag; they contribute
	// depth but no mismatches.
	NoMD int
	// OutOfBounds is the number of mismatches reported with
	// pileup.UnknownBase because the read sequence was too short.
	OutOfBounds int
}

// Track is the result of one Query.  All slices indexed by read have one
// entry per used read, in input order.
type Track struct {
	Region interval.Region
	// Bins has one entry per position of Region.
	Bins []coverage.Bin
	// Annotations lists the insertion/soft-clip/skip tallies inside Region in
	// ascending position order.
	Annotations []coverage.Annotation
	Names       []string
	Features    []coverage.Feature
	// Events[i] holds the events of read i; Features[i].Events points to it.
	Events  []mismatch.Events
	Records layout.Records
	// NumRows is the number of layout rows used.
	NumRows int
	Stats   Stats
}

// Builder builds tracks, reusing its scratch buffers from one query to the
// next.  A Builder must not be used by concurrent goroutines.
type Builder struct {
	opts       Opts
	layoutOpts layout.Opts
	parser     mismatch.Parser
	arena      mismatch.Events
	offsets    []int
	features   []coverage.Feature
	names      []string
	acc        *coverage.Accumulator
	layout     *layout.Layout
}

// NewBuilder returns a Builder with the given options.
func NewBuilder(opts Opts) *Builder {
	b := &Builder{acc: coverage.NewAccumulator()}
	b.setOpts(opts)
	return b
}

func (b *Builder) setOpts(opts Opts) {
	if opts.FeatureHeight <= 0 {
		opts.FeatureHeight = 1
	}
	b.opts = opts
	if b.layout == nil || b.layoutOpts != opts.Layout {
		b.layoutOpts = opts.Layout
		b.layout = layout.New(opts.Layout)
	}
}

// decode appends the events of r to the arena.  On error the arena is left
// unchanged.
func (b *Builder) decode(r *Read, stats *Stats) error {
	if err := cigar.Validate(r.Cigar); err != nil {
		return err
	}
	n0 := b.arena.Len()
	if err := mismatch.AppendCigarEvents(r.Cigar, r.Start, &b.arena); err != nil {
		return err
	}
	if r.MD == nil {
		stats.NoMD++
		return nil
	}
	mr := mismatch.Read{
		Start:  r.Start,
		Cigar:  r.Cigar,
		MD:     r.MD,
		Seq:    r.Seq,
		SeqLen: r.SeqLen,
		Qual:   r.Qual,
	}
	var (
		st  mismatch.Stats
		err error
	)
	if cigar.HasSkips(r.Cigar) {
		skips := b.arena.Slice(n0, b.arena.Len())
		st, err = b.parser.ParseWithSkips(&mr, &skips, &b.arena)
	} else {
		st, err = b.parser.Parse(&mr, &b.arena)
	}
	if err != nil {
		b.arena.Truncate(n0)
		return err
	}
	stats.OutOfBounds += st.OutOfBounds
	return nil
}

// Build computes the track for q.  Reads with a malformed CIGAR or MD string
// are skipped and counted in Track.Stats.  An invalid or too-wide region is
// an error of kind errors.Invalid.
//
// The returned Track shares no memory with the Builder.
func (b *Builder) Build(q Query) (*Track, error) {
	region := q.Region
	if err := region.Validate(); err != nil {
		return nil, errors.E(errors.Invalid, err)
	}
	if b.opts.MaxRegionWidth > 0 && region.Width() > b.opts.MaxRegionWidth {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("region %v is %d bases wide, limit is %d", region, region.Width(), b.opts.MaxRegionWidth))
	}
	t := &Track{Region: region}
	b.arena.Reset()
	b.offsets = append(b.offsets[:0], 0)
	b.features = b.features[:0]
	b.names = b.names[:0]
	for i := range q.Reads {
		r := &q.Reads[i]
		refLen, _ := cigar.Lengths(r.Cigar)
		end := r.Start + refLen
		if end <= region.Start || r.Start >= region.End {
			t.Stats.Outside++
			continue
		}
		if err := b.decode(r, &t.Stats); err != nil {
			t.Stats.Skipped++
			log.Debug.Printf("%v: skipping read %q: %v", region, r.Name, err)
			continue
		}
		b.offsets = append(b.offsets, b.arena.Len())
		b.features = append(b.features, coverage.Feature{Start: r.Start, End: end, Strand: r.Strand})
		b.names = append(b.names, r.Name)
	}
	n := len(b.features)
	t.Stats.Used = n

	// Copy everything the Track keeps out of the Builder's buffers.
	arena := b.arena.Clone()
	t.Names = append([]string(nil), b.names...)
	t.Features = append([]coverage.Feature(nil), b.features...)
	t.Events = make([]mismatch.Events, n)
	for i := range t.Features {
		t.Events[i] = arena.Slice(b.offsets[i], b.offsets[i+1])
		t.Features[i].Events = &t.Events[i]
	}

	var err error
	if t.Bins, err = b.acc.Accumulate(t.Features, region.Start, region.End); err != nil {
		return nil, errors.E(err, region.String())
	}
	ann := b.acc.Annotations()
	t.Annotations = ann.AppendTo(make([]coverage.Annotation, 0, ann.Len()))

	b.layout.Reset()
	placer := layout.Placer{
		Layout:       b.layout,
		BpPerPx:      b.opts.BpPerPx,
		RegionStart:  region.Start,
		ShowSoftClip: b.opts.ShowSoftClip,
		Height:       b.opts.FeatureHeight,
	}
	placer.PlaceAll(t.Features, t.Names, &t.Records)
	t.NumRows = b.layout.NumRows()
	return t, nil
}

var builderPool = sync.Pool{
	New: func() interface{} {
		return &Builder{acc: coverage.NewAccumulator()}
	},
}

// BuildAll builds the track of every query.  Queries are split into
// opts.Parallelism contiguous batches, each handled by one Builder.  The
// first error aborts the call.
func BuildAll(queries []Query, opts Opts) ([]*Track, error) {
	tracks := make([]*Track, len(queries))
	if len(queries) == 0 {
		return tracks, nil
	}
	nJob := opts.Parallelism
	if nJob <= 0 || nJob > len(queries) {
		nJob = len(queries)
	}
	log.Debug.Printf("BuildAll: %d queries, %d jobs", len(queries), nJob)
	err := traverse.Each(nJob, func(jobIdx int) error {
		startIdx := (jobIdx * len(queries)) / nJob
		endIdx := ((jobIdx + 1) * len(queries)) / nJob
		b := builderPool.Get().(*Builder)
		defer builderPool.Put(b)
		b.setOpts(opts)
		for i := startIdx; i < endIdx; i++ {
			t, err := b.Build(queries[i])
			if err != nil {
				return errors.E(err, fmt.Sprintf("query %d", i))
			}
			tracks[i] = t
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tracks, nil
}
