package interval

import (
	"testing"

	"github.com/grailbio/testutil/expect"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestParseRegionString(t *testing.T) {
	tests := []struct {
		in   string
		want Region
	}{
		{"chr1", Region{"chr1", 0, PosTypeMax - 1}},
		{"chr1:100", Region{"chr1", 99, 100}},
		{"chr1:101-200", Region{"chr1", 100, 200}},
		{"chr1:1,001-2,000", Region{"chr1", 1000, 2000}},
		{"HLA-A*01:01:01:01:1-10", Region{"HLA-A*01:01:01:01", 0, 10}},
		{"chr2:11-10", Region{"chr2", 10, 10}},
	}
	for _, tt := range tests {
		got, err := ParseRegionString(tt.in)
		require.NoError(t, err, tt.in)
		expect.EQ(t, got, tt.want, tt.in)
	}
}

func TestParseRegionStringErrors(t *testing.T) {
	for _, in := range []string{"", ":1-10", "chr1:0-10", "chr1:x-10", "chr1:5-y", "chr1:0"} {
		_, err := ParseRegionString(in)
		require.Error(t, err, in)
	}
	for _, in := range []string{"chr1:20-10", "chr1:3000000000-100", "chr1:2147483648-2147483647"} {
		_, err := ParseRegionString(in)
		require.Error(t, err, in)
		expect.EQ(t, errors.Cause(err), ErrInvalidRegion, in)
	}
}

func TestRegionValidate(t *testing.T) {
	require.NoError(t, Region{"chr1", 10, 10}.Validate())
	require.NoError(t, Region{"chr1", -5, 10}.Validate())
	err := Region{"chr1", 10, 9}.Validate()
	require.Error(t, err)
	expect.EQ(t, errors.Cause(err), ErrInvalidRegion)
	expect.EQ(t, Region{"chr1", 100, 200}.String(), "chr1:101-200")
	expect.EQ(t, Region{"chr1", 100, 200}.Width(), 100)
}
