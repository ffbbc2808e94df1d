package interval

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/base/log"
	gunsafe "github.com/grailbio/base/unsafe"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// getTokens identifies up to the first len(tokens) tokens from curLine,
// returning the number of tokens saved.  Any (group of) characters <= ' ' is
// treated as a delimiter.
func getTokens(tokens [][]byte, curLine []byte) int {
	posEnd := 0
	lineLen := len(curLine)
	for tokenIdx := range tokens {
		pos := posEnd
		for ; pos != lineLen; pos++ {
			if curLine[pos] > ' ' {
				break
			}
		}
		if pos == lineLen {
			return tokenIdx
		}
		posEnd = pos
		for ; posEnd != lineLen; posEnd++ {
			if curLine[posEnd] <= ' ' {
				break
			}
		}
		tokens[tokenIdx] = curLine[pos:posEnd]
	}
	return len(tokens)
}

// BEDOpts defines the behavior of ReadBEDRegions.
type BEDOpts struct {
	// OneBasedInput interprets the BED interval boundaries as one-based [start,
	// end] instead of the usual zero-based [start, end).
	OneBasedInput bool
	// Merge combines touching or overlapping intervals on the same
	// chromosome.  This requires the input to be sorted by start within each
	// chromosome.
	Merge bool
}

// ReadBEDRegions loads the first three columns of each line of a BED file as
// Regions, in file order.  Empty intervals are dropped.  Blank lines, and
// "track"/"browser"/"#" header lines, are skipped.
func ReadBEDRegions(reader io.Reader, opts BEDOpts) (regions []Region, err error) {
	scanner := bufio.NewScanner(reader)
	startSubtract := 0
	if opts.OneBasedInput {
		startSubtract = 1
	}
	var tokens [3][]byte
	lineIdx := 0
	totBases := 0
	for scanner.Scan() {
		lineIdx++
		curLine := scanner.Bytes()
		nToken := getTokens(tokens[:], curLine)
		if nToken == 0 || isBEDHeader(tokens[0]) {
			continue
		}
		if nToken != 3 {
			return nil, fmt.Errorf("interval.ReadBEDRegions: line %d has fewer tokens than expected", lineIdx)
		}
		var parsedStart, parsedEnd int
		if parsedStart, err = strconv.Atoi(gunsafe.BytesToString(tokens[1])); err != nil {
			return nil, err
		}
		parsedStart -= startSubtract
		if parsedStart < 0 {
			return nil, fmt.Errorf("interval.ReadBEDRegions: negative start coordinate %s on line %d", tokens[1], lineIdx)
		}
		if parsedEnd, err = strconv.Atoi(gunsafe.BytesToString(tokens[2])); err != nil {
			return nil, err
		}
		if parsedEnd < parsedStart || parsedEnd >= PosTypeMax {
			return nil, errors.Wrapf(ErrInvalidRegion, "interval.ReadBEDRegions: line %d", lineIdx)
		}
		if parsedEnd == parsedStart {
			continue
		}
		r := Region{Start: PosType(parsedStart), End: PosType(parsedEnd)}
		if n := len(regions); opts.Merge && n > 0 && gunsafe.BytesToString(tokens[0]) == regions[n-1].RefName {
			prev := &regions[n-1]
			if r.Start < prev.Start {
				return nil, fmt.Errorf("interval.ReadBEDRegions: unsorted input on line %d", lineIdx)
			}
			if r.Start <= prev.End {
				if r.End > prev.End {
					totBases += int(r.End - prev.End)
					prev.End = r.End
				}
				continue
			}
		}
		// Copy the name; tokens[0] points into the scanner's buffer.
		r.RefName = string(tokens[0])
		totBases += r.Width()
		regions = append(regions, r)
	}
	if err = scanner.Err(); err != nil {
		return nil, err
	}
	log.Printf("BED loaded, %d region(s), %d base(s).\n", len(regions), totBases)
	return regions, nil
}

func isBEDHeader(tok []byte) bool {
	s := gunsafe.BytesToString(tok)
	return s[0] == '#' || s == "track" || s == "browser"
}

// ReadBEDRegionsFromPath is a wrapper for ReadBEDRegions that takes a path
// instead of an io.Reader.  Gzipped files are decompressed.
func ReadBEDRegionsFromPath(ctx context.Context, path string, opts BEDOpts) (regions []Region, err error) {
	var infile file.File
	if infile, err = file.Open(ctx, path); err != nil {
		return
	}
	defer func() {
		if cerr := infile.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	reader := io.Reader(infile.Reader(ctx))
	switch fileio.DetermineType(path) {
	case fileio.Gzip:
		if reader, err = gzip.NewReader(reader); err != nil {
			return
		}
	}
	return ReadBEDRegions(reader, opts)
}
