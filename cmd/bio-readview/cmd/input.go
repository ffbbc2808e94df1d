package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/readview/pileup"
	"github.com/grailbio/readview/pileup/cigar"
	"github.com/grailbio/readview/pileup/mismatch"
	"github.com/grailbio/readview/pileup/track"
	"github.com/klauspost/compress/gzip"
)

// inputRead is a read plus the reference it is aligned to.  ref is empty for
// TSV input, which carries no reference column; such reads are offered to
// every region.
type inputRead struct {
	ref  string
	read track.Read
}

// readRow is one row of the TSV read table.
type readRow struct {
	Name   string `tsv:"name"`
	Pos    int64  `tsv:"pos"`
	Strand string `tsv:"strand"`
	Cigar  string `tsv:"cigar"`
	MD     string `tsv:"md"`
	Seq    string `tsv:"seq"`
	Qual   string `tsv:"qual"`
}

func (row *readRow) toRead(lineno int) (track.Read, error) {
	ops, err := cigar.Parse(row.Cigar)
	if err != nil {
		return track.Read{}, errors.E(errors.Invalid, err, fmt.Sprintf("line %d", lineno))
	}
	r := track.Read{
		Name:   row.Name,
		Start:  pileup.PosType(row.Pos),
		Strand: pileup.ParseStrand(row.Strand),
		Cigar:  ops,
	}
	if row.MD != "*" && row.MD != "" {
		r.MD = []byte(row.MD)
	}
	if row.Seq != "*" {
		r.Seq = mismatch.PackSeq(nil, []byte(row.Seq))
		r.SeqLen = len(row.Seq)
	}
	if row.Qual != "*" && row.Qual != "" {
		r.Qual = make([]byte, len(row.Qual))
		for i := range r.Qual {
			r.Qual[i] = row.Qual[i] - 33
		}
	}
	return r, nil
}

func readTSV(in io.Reader) ([]inputRead, error) {
	reader := tsv.NewReader(in)
	reader.HasHeaderRow = true
	reader.UseHeaderNames = true
	var reads []inputRead
	for lineno := 2; ; lineno++ {
		var row readRow
		if err := reader.Read(&row); err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		r, err := row.toRead(lineno)
		if err != nil {
			return nil, err
		}
		reads = append(reads, inputRead{read: r})
	}
	return reads, nil
}

type samReader interface {
	Read() (*sam.Record, error)
}

func readSAM(rd samReader) ([]inputRead, error) {
	var reads []inputRead
	nUnmapped := 0
	for {
		rec, err := rd.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		r, ok := track.ReadFromSAM(rec)
		if !ok {
			nUnmapped++
			continue
		}
		reads = append(reads, inputRead{ref: rec.Ref.Name(), read: r})
	}
	if nUnmapped > 0 {
		log.Debug.Printf("skipped %d unmapped records", nUnmapped)
	}
	return reads, nil
}

// loadReads reads every record of path.  The format is chosen by extension:
// .bam, .sam, or anything else for a TSV read table; a trailing .gz on a SAM
// or TSV path is decompressed.
func loadReads(ctx context.Context, path string) (reads []inputRead, err error) {
	f, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.E(err, "open", path)
	}
	defer func() {
		if e := f.Close(ctx); e != nil && err == nil {
			err = e
		}
	}()
	if reads, err = decodeReads(f.Reader(ctx), path); err != nil {
		return nil, errors.E(err, path)
	}
	log.Printf("loaded %d reads from %s", len(reads), path)
	return reads, nil
}

func decodeReads(in io.Reader, name string) ([]inputRead, error) {
	if strings.HasSuffix(name, ".bam") {
		br, err := bam.NewReader(in, 1)
		if err != nil {
			return nil, err
		}
		defer br.Close() // nolint: errcheck
		return readSAM(br)
	}
	if strings.HasSuffix(name, ".gz") {
		gz, err := gzip.NewReader(in)
		if err != nil {
			return nil, err
		}
		defer gz.Close() // nolint: errcheck
		in = gz
		name = strings.TrimSuffix(name, ".gz")
	}
	if strings.HasSuffix(name, ".sam") {
		sr, err := sam.NewReader(in)
		if err != nil {
			return nil, err
		}
		return readSAM(sr)
	}
	return readTSV(in)
}
