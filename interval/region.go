package interval

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrInvalidRegion is the cause of every error returned for a region whose
// end precedes its start.
var ErrInvalidRegion = errors.New("invalid region")

// Region is a single reference interval, with 0-based half-open coordinates.
type Region struct {
	RefName string
	Start   PosType
	End     PosType
}

// Width returns the number of bases in the region.  It is negative for an
// invalid region.
func (r Region) Width() int {
	return int(r.End) - int(r.Start)
}

// Validate returns an error wrapping ErrInvalidRegion iff End < Start.
// Empty regions are valid.
func (r Region) Validate() error {
	if r.End < r.Start {
		return errors.Wrapf(ErrInvalidRegion, "%s: end %d < start %d", r.RefName, r.End, r.Start)
	}
	return nil
}

// String renders the region in the 1-based closed format accepted by
// ParseRegionString.
func (r Region) String() string {
	return fmt.Sprintf("%s:%d-%d", r.RefName, r.Start+1, r.End)
}

// ParseRegionString parses a region string of one of the forms
//   [contig ID]:[1-based first pos]-[last pos]
//   [contig ID]:[1-based pos]
//   [contig ID]
// returning a contig ID and 0-based interval boundaries.  The interval
// [0, PosTypeMax - 1) is returned if there is no positional restriction.
// Commas in positions ("chr1:1,000-2,000") are ignored.
func ParseRegionString(region string) (result Region, err error) {
	if len(region) == 0 {
		err = fmt.Errorf("interval.ParseRegionString: empty region string")
		return
	}
	colonPos := strings.LastIndexByte(region, ':')
	if colonPos == -1 {
		result.RefName = region
		result.Start = 0
		result.End = PosTypeMax - 1
		return
	}
	if colonPos == 0 {
		err = fmt.Errorf("interval.ParseRegionString: empty contig ID")
		return
	}
	result.RefName = region[0:colonPos]
	rangeStr := strings.Replace(region[colonPos+1:], ",", "", -1)
	dashPos := strings.IndexByte(rangeStr, '-')
	if dashPos == -1 {
		var pos1 int64
		if pos1, err = strconv.ParseInt(rangeStr, 10, 32); err != nil {
			return
		}
		if pos1 <= 0 {
			err = fmt.Errorf("interval.ParseRegionString: position %v in region string out of range", rangeStr)
			return
		}
		result.Start = PosType(pos1 - 1)
		result.End = PosType(pos1)
		return
	}
	var start1, end0 int64
	if start1, err = strconv.ParseInt(rangeStr[:dashPos], 10, 64); err != nil {
		return
	}
	if start1 <= 0 {
		err = fmt.Errorf("interval.ParseRegionString: position %v in region string out of range", rangeStr[:dashPos])
		return
	}
	if start1 > PosTypeMax {
		err = errors.Wrapf(ErrInvalidRegion, "interval.ParseRegionString: start %v out of range", rangeStr[:dashPos])
		return
	}
	if end0, err = strconv.ParseInt(rangeStr[dashPos+1:], 10, 64); err != nil {
		return
	}
	if end0 >= PosTypeMax {
		err = fmt.Errorf("interval.ParseRegionString: invalid range string %v", rangeStr)
		return
	}
	result.Start = PosType(start1 - 1)
	result.End = PosType(end0)
	// An end before the start is reported through Validate, so callers get
	// the same error whether the region came from text or was built directly.
	err = result.Validate()
	return
}
