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
	"testing"

	"blainsmith.com/go/seahash"
	"github.com/grailbio/testutil/expect"
)

func TestAddRectByIDHashCollision(t *testing.T) {
	l := New(DefaultOpts)
	// Plant a different ID under the same hash key as "b".
	key := seahash.Sum64([]byte("b"))
	l.byID[key] = []idEntry{{id: "other", rect: Rect{Left: 500, Right: 600, Top: 7, Height: 1}}}

	top, ok := l.AddRectByID("b", 0, 10, 1)
	expect.True(t, ok)
	expect.EQ(t, top, 0)
	r, found := l.Rect("b")
	expect.True(t, found)
	expect.EQ(t, r, Rect{Left: 0, Right: 10, Top: 0, Height: 1})
	expect.EQ(t, len(l.byID[key]), 2)
	expect.EQ(t, l.byID[key][0].id, "other")

	// "b" is remembered, so re-adding it takes no space.
	top, _ = l.AddRectByID("b", 0, 10, 1)
	expect.EQ(t, top, 0)
	expect.EQ(t, l.Row(0).Len(), 1)
}
