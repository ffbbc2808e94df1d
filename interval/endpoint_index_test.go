package interval

import (
	"math/rand"
	"testing"

	"github.com/grailbio/testutil/expect"
)

func TestEndpointIndex(t *testing.T) {
	endpoints := []PosType{5, 17, 20, 25, 25, 30}
	tests := []struct {
		pos       PosType
		contained bool
		begin     EndpointIndex
		finished  bool
	}{
		{0, false, 0, false},
		{4, false, 0, false},
		{5, true, 0, false},
		{16, true, 0, false},
		{17, false, 2, false},
		{19, false, 2, false},
		{20, true, 2, false},
		{24, true, 2, false},
		{25, true, 4, false},
		{29, true, 4, false},
		{30, false, 6, true},
		{1000, false, 6, true},
	}
	var running EndpointIndex
	for _, tt := range tests {
		ei := NewEndpointIndex(tt.pos, endpoints)
		expect.EQ(t, ei.Contained(), tt.contained, "pos=%d", tt.pos)
		expect.EQ(t, ei.Begin(), tt.begin, "pos=%d", tt.pos)
		expect.EQ(t, ei.Finished(endpoints), tt.finished, "pos=%d", tt.pos)
		running.Update(tt.pos, endpoints)
		expect.EQ(t, running, ei, "pos=%d", tt.pos)
	}
}

func TestExpsearchPosTypeMatchesSearch(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	a := make([]PosType, 200)
	cur := PosType(0)
	for i := range a {
		cur += PosType(rng.Intn(5))
		a[i] = cur
	}
	idx := EndpointIndex(0)
	for x := PosType(-3); x < cur+10; x += PosType(rng.Intn(4)) {
		idx = ExpsearchPosType(a, x, idx)
		expect.EQ(t, idx, SearchPosTypes(a, x), "x=%d", x)
		x++
	}
}

func TestRangeClear(t *testing.T) {
	endpoints := []PosType{10, 20, 30, 40}
	tests := []struct {
		start, end PosType
		want       bool
	}{
		{0, 10, true},
		{0, 11, false},
		{20, 30, true},
		{19, 21, false},
		{25, 31, false},
		{40, 50, true},
		{39, 40, false},
		{15, 15, false},
		{25, 25, true},
	}
	for _, tt := range tests {
		ei := NewEndpointIndex(tt.start, endpoints)
		expect.EQ(t, ei.RangeClear(endpoints, tt.end), tt.want, "[%d,%d)", tt.start, tt.end)
	}
	expect.True(t, NewEndpointIndex(0, nil).RangeClear(nil, 100))
}
