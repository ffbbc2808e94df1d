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
package layout

import (
	"math"

	"github.com/grailbio/readview/pileup/coverage"
)

// NoFit is stored in Records.Tops for a feature that could not be placed.
const NoFit = -1

// Records holds the placement of a list of features, one entry per feature,
// as parallel slices.
type Records struct {
	LeftPx  []float64
	RightPx []float64
	Tops    []int32
}

// Reset empties r, keeping its capacity.
func (r *Records) Reset() {
	r.LeftPx = r.LeftPx[:0]
	r.RightPx = r.RightPx[:0]
	r.Tops = r.Tops[:0]
}

// Placer maps features from reference coordinates to pixel coordinates and
// places them in a Layout.  Each feature is laid out at the granularity of
// whole pixels: it occupies pixel columns floor(leftPx) through
// floor(rightPx), plus the layout's padding.
type Placer struct {
	Layout *Layout
	// BpPerPx is the zoom level.  Values <= 0 are treated as 1.
	BpPerPx float64
	// RegionStart is the reference position drawn at pixel 0.
	RegionStart PosType
	// ShowSoftClip widens each feature by its leading and trailing soft
	// clips, so the clipped bases have room to be drawn.
	ShowSoftClip bool
	// Height is the number of rows each feature occupies.  0 means 1.
	Height int
}

// Extent returns the horizontal pixel extent of f.
func (p *Placer) Extent(f *coverage.Feature) (leftPx, rightPx float64) {
	s, e := f.Start, f.End
	if p.ShowSoftClip && f.Events != nil {
		before, after := f.Events.SoftClips(f.Start)
		s -= before
		e += after
	}
	bpPerPx := p.BpPerPx
	if bpPerPx <= 0 {
		bpPerPx = 1
	}
	leftPx = float64(s-p.RegionStart) / bpPerPx
	rightPx = float64(e-p.RegionStart) / bpPerPx
	return
}

// Place lays out a single feature and returns its pixel extent and top row,
// or NoFit.  A non-empty id goes through Layout.AddRectByID, so features
// sharing an id (e.g. the segments of a split read) stay on one row when
// they can.
func (p *Placer) Place(id string, f *coverage.Feature) (leftPx, rightPx float64, top int32) {
	leftPx, rightPx = p.Extent(f)
	height := p.Height
	if height == 0 {
		height = 1
	}
	left, right := PosType(math.Floor(leftPx)), PosType(math.Floor(rightPx))
	var (
		t  int
		ok bool
	)
	if id != "" {
		t, ok = p.Layout.AddRectByID(id, left, right, height)
	} else {
		t, ok = p.Layout.AddRect(left, right, height)
	}
	if !ok {
		return leftPx, rightPx, NoFit
	}
	return leftPx, rightPx, int32(t)
}

// PlaceAll lays out features in order, replacing the contents of out.  ids
// is either nil or parallel to features.
func (p *Placer) PlaceAll(features []coverage.Feature, ids []string, out *Records) {
	out.Reset()
	for i := range features {
		var id string
		if ids != nil {
			id = ids[i]
		}
		l, r, top := p.Place(id, &features[i])
		out.LeftPx = append(out.LeftPx, l)
		out.RightPx = append(out.RightPx, r)
		out.Tops = append(out.Tops, top)
	}
}
