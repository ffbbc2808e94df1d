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

// Package layout stacks horizontal rectangles (aligned reads) into the
// lowest free rows of a pileup display.
package layout

import (
	"blainsmith.com/go/seahash"
	"github.com/grailbio/base/unsafe"
)

// Opts configures a Layout.
type Opts struct {
	// MaxHeight is the number of rows available.  Rectangles that do not fit
	// below it are rejected.
	MaxHeight int
	// Padding is added to the right end of every rectangle, so horizontally
	// adjacent rectangles in a row are separated by at least this much.
	Padding PosType
	// LinearScanLimit is the per-row endpoint count at which row lookups
	// switch from a linear scan to binary search.  0 always binary searches.
	LinearScanLimit int
}

// DefaultOpts is the default layout configuration.
var DefaultOpts = Opts{
	MaxHeight:       1000,
	Padding:         1,
	LinearScanLimit: 40,
}

// Rect is a placed rectangle.  It occupies rows [Top, Top+Height) and the
// half-open span [Left, Right+Padding) in each of them.
type Rect struct {
	Left, Right PosType
	Top, Height int
}

type idEntry struct {
	id   string
	rect Rect
}

// Layout assigns each rectangle the lowest top row at which all of its rows
// are clear.  Placement is greedy, in insertion order.  A Layout is not safe
// for concurrent use.
type Layout struct {
	opts Opts
	rows []Row
	// byID buckets placed IDs by their seahash.  Buckets are almost always
	// one entry long.
	byID map[uint64][]idEntry
}

// New returns an empty layout.  Zero or negative fields of opts are replaced
// by the DefaultOpts value (MaxHeight) or zero (Padding, LinearScanLimit).
func New(opts Opts) *Layout {
	if opts.MaxHeight <= 0 {
		opts.MaxHeight = DefaultOpts.MaxHeight
	}
	if opts.Padding < 0 {
		opts.Padding = 0
	}
	if opts.LinearScanLimit < 0 {
		opts.LinearScanLimit = 0
	}
	return &Layout{opts: opts, byID: make(map[uint64][]idEntry)}
}

// NumRows returns the number of rows holding at least one rectangle, plus any
// empty rows below the lowest occupied one.
func (l *Layout) NumRows() int {
	return len(l.rows)
}

// Row returns row y, or nil if nothing was ever placed at or below y.
func (l *Layout) Row(y int) *Row {
	if y < 0 || y >= len(l.rows) {
		return nil
	}
	return &l.rows[y]
}

// AddRect places a rectangle spanning [left, right] horizontally and height
// rows vertically, and returns its top row.  ok is false if no position below
// MaxHeight fits, or if height is outside [1, MaxHeight]; the layout is left
// unchanged in that case.  If left > right, the two are swapped.
func (l *Layout) AddRect(left, right PosType, height int) (top int, ok bool) {
	if left > right {
		left, right = right, left
	}
	if height < 1 || height > l.opts.MaxHeight {
		return 0, false
	}
	end := right + l.opts.Padding
	for top = 0; top+height <= l.opts.MaxHeight; {
		if y, clear := l.conflict(top, left, end, height); !clear {
			// Every top in (top, y] also includes row y.
			top = y + 1
			continue
		}
		l.place(top, left, end, height)
		return top, true
	}
	return 0, false
}

// conflict returns the first of rows [top, top+height) in which [left, end)
// is not clear.
func (l *Layout) conflict(top int, left, end PosType, height int) (y int, clear bool) {
	for y = top; y < top+height && y < len(l.rows); y++ {
		if !l.rows[y].IsRangeClear(left, end) {
			return y, false
		}
	}
	return 0, true
}

func (l *Layout) place(top int, left, end PosType, height int) {
	l.growRows(top + height)
	for y := top; y < top+height; y++ {
		l.rows[y].add(left, end)
	}
}

// AddRectByID is AddRect for a rectangle with a stable identifier.
//
// Re-adding an ID with the rectangle it was first placed with returns the
// existing top row without placing anything.  Re-adding it with a different
// rectangle, e.g. another segment of a split alignment, places the new
// rectangle on the ID's rows if they are clear there, and like AddRect
// otherwise.  Rect keeps reporting the first placement.
func (l *Layout) AddRectByID(id string, left, right PosType, height int) (top int, ok bool) {
	if left > right {
		left, right = right, left
	}
	key := seahash.Sum64(unsafe.StringToBytes(id))
	if e := l.lookup(key, id); e != nil {
		r := e.rect
		if r.Left == left && r.Right == right && r.Height == height {
			return r.Top, true
		}
		end := right + l.opts.Padding
		if height >= 1 && r.Top+height <= l.opts.MaxHeight {
			if _, clear := l.conflict(r.Top, left, end, height); clear {
				l.place(r.Top, left, end, height)
				return r.Top, true
			}
		}
		return l.AddRect(left, right, height)
	}
	if top, ok = l.AddRect(left, right, height); !ok {
		return
	}
	l.byID[key] = append(l.byID[key], idEntry{id: id, rect: Rect{Left: left, Right: right, Top: top, Height: height}})
	return
}

func (l *Layout) lookup(key uint64, id string) *idEntry {
	bucket := l.byID[key]
	for i := range bucket {
		if bucket[i].id == id {
			return &bucket[i]
		}
	}
	return nil
}

// Rect returns the rectangle first placed under id.
func (l *Layout) Rect(id string) (Rect, bool) {
	if e := l.lookup(seahash.Sum64(unsafe.StringToBytes(id)), id); e != nil {
		return e.rect, true
	}
	return Rect{}, false
}

// Reset empties the layout, keeping allocated row storage.
func (l *Layout) Reset() {
	l.rows = l.rows[:0]
	for k := range l.byID {
		delete(l.byID, k)
	}
}

func (l *Layout) growRows(n int) {
	for len(l.rows) < n {
		if len(l.rows) < cap(l.rows) {
			l.rows = l.rows[:len(l.rows)+1]
		} else {
			l.rows = append(l.rows, Row{})
		}
		l.rows[len(l.rows)-1].reset(l.opts.LinearScanLimit)
	}
}
