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
	"github.com/grailbio/readview/interval"
	"github.com/grailbio/readview/pileup/coverage"
	"github.com/grailbio/readview/pileup/track"
)

// Opts holds the flag values shared by all subcommands.
type Opts struct {
	// Regions is a semicolon-separated list of regions in
	// interval.ParseRegionString format.
	Regions string
	// BEDPath names a BED file whose intervals are appended to Regions.
	BEDPath string
	Track   track.Opts
	// Out is the output path; empty means stdout.
	Out string
	// AnnotationsOut is the path for the insertion/soft-clip/skip table
	// (coverage only); empty means don't write it.
	AnnotationsOut string
}

type outputKind int

const (
	outputCoverage outputKind = iota
	outputLayout
	outputMismatches
)

func parseRegions(ctx context.Context, s, bedPath string) ([]interval.Region, error) {
	if s == "" && bedPath == "" {
		return nil, errors.E(errors.Invalid, "-region or -bed is required")
	}
	var regions []interval.Region
	if s != "" {
		for _, part := range strings.Split(s, ";") {
			r, err := interval.ParseRegionString(strings.TrimSpace(part))
			if err != nil {
				return nil, errors.E(errors.Invalid, err, part)
			}
			regions = append(regions, r)
		}
	}
	if bedPath != "" {
		bedRegions, err := interval.ReadBEDRegionsFromPath(ctx, bedPath, interval.BEDOpts{Merge: true})
		if err != nil {
			return nil, errors.E(errors.Invalid, err, bedPath)
		}
		regions = append(regions, bedRegions...)
	}
	return regions, nil
}

// buildTracks loads the reads of inPath and builds one track per region.
func buildTracks(ctx context.Context, opts Opts, inPath string) ([]*track.Track, error) {
	regions, err := parseRegions(ctx, opts.Regions, opts.BEDPath)
	if err != nil {
		return nil, err
	}
	reads, err := loadReads(ctx, inPath)
	if err != nil {
		return nil, err
	}
	queries := make([]track.Query, len(regions))
	for i, region := range regions {
		queries[i].Region = region
		for _, r := range reads {
			if r.ref == "" || r.ref == region.RefName {
				queries[i].Reads = append(queries[i].Reads, r.read)
			}
		}
	}
	tracks, err := track.BuildAll(queries, opts.Track)
	if err != nil {
		return nil, err
	}
	for _, t := range tracks {
		log.Printf("%v: %d reads used, %d outside, %d skipped, %d rows",
			t.Region, t.Stats.Used, t.Stats.Outside, t.Stats.Skipped, t.NumRows)
	}
	return tracks, nil
}

// withOutput calls fn with a writer for path, or stdout if path is empty.
func withOutput(ctx context.Context, path string, stdout io.Writer, fn func(w io.Writer) error) (err error) {
	if path == "" {
		return fn(stdout)
	}
	out, err := file.Create(ctx, path)
	if err != nil {
		return errors.E(err, "create", path)
	}
	defer func() {
		if e := out.Close(ctx); e != nil && err == nil {
			err = e
		}
	}()
	return fn(out.Writer(ctx))
}

type layoutRow struct {
	Chrom   string  `tsv:"#CHROM"`
	Name    string  `tsv:"NAME"`
	Start   int64   `tsv:"START"`
	End     int64   `tsv:"END"`
	Strand  string  `tsv:"STRAND"`
	LeftPx  float64 `tsv:"LEFT_PX"`
	RightPx float64 `tsv:"RIGHT_PX"`
	Top     int64   `tsv:"TOP"`
}

func writeLayout(w io.Writer, tracks []*track.Track) error {
	tw := tsv.NewRowWriter(w)
	for _, t := range tracks {
		for i, f := range t.Features {
			row := layoutRow{
				Chrom:   t.Region.RefName,
				Name:    t.Names[i],
				Start:   int64(f.Start),
				End:     int64(f.End),
				Strand:  f.Strand.String(),
				LeftPx:  t.Records.LeftPx[i],
				RightPx: t.Records.RightPx[i],
				Top:     int64(t.Records.Tops[i]),
			}
			if err := tw.Write(&row); err != nil {
				return err
			}
		}
	}
	return tw.Flush()
}

type eventRow struct {
	Chrom  string `tsv:"#CHROM"`
	Name   string `tsv:"NAME"`
	Pos    int64  `tsv:"POS"`
	Kind   string `tsv:"KIND"`
	Length int64  `tsv:"LEN"`
	Ref    string `tsv:"REF"`
	Alt    string `tsv:"ALT"`
	Qual   int64  `tsv:"QUAL"`
}

func baseString(b byte) string {
	if b == 0 {
		return "."
	}
	return string(b)
}

// writeEvents writes every decoded event, with 1-based positions.  QUAL is -1
// when unknown.
func writeEvents(w io.Writer, tracks []*track.Track) error {
	tw := tsv.NewRowWriter(w)
	for _, t := range tracks {
		for i := range t.Events {
			ev := &t.Events[i]
			for j := 0; j < ev.Len(); j++ {
				e := ev.At(j)
				row := eventRow{
					Chrom:  t.Region.RefName,
					Name:   t.Names[i],
					Pos:    int64(e.Start) + 1,
					Kind:   e.Kind.String(),
					Length: int64(e.Length),
					Ref:    baseString(e.RefBase),
					Alt:    baseString(e.AltBase),
					Qual:   -1,
				}
				if e.Qual != 0xff {
					row.Qual = int64(e.Qual)
				}
				if err := tw.Write(&row); err != nil {
					return err
				}
			}
		}
	}
	return tw.Flush()
}

func run(ctx context.Context, kind outputKind, opts Opts, inPath string, stdout io.Writer) error {
	tracks, err := buildTracks(ctx, opts, inPath)
	if err != nil {
		return err
	}
	switch kind {
	case outputCoverage:
		err = withOutput(ctx, opts.Out, stdout, func(w io.Writer) error {
			for _, t := range tracks {
				if err := coverage.WriteTSV(w, t.Region.RefName, t.Region.Start, t.Bins); err != nil {
					return err
				}
			}
			return nil
		})
		if err == nil && opts.AnnotationsOut != "" {
			err = withOutput(ctx, opts.AnnotationsOut, stdout, func(w io.Writer) error {
				for _, t := range tracks {
					if err := coverage.WriteAnnotationsTSV(w, t.Region.RefName, t.Annotations); err != nil {
						return err
					}
				}
				return nil
			})
		}
	case outputLayout:
		err = withOutput(ctx, opts.Out, stdout, func(w io.Writer) error { return writeLayout(w, tracks) })
	case outputMismatches:
		err = withOutput(ctx, opts.Out, stdout, func(w io.Writer) error { return writeEvents(w, tracks) })
	default:
		panic(fmt.Sprintf("unknown output kind %d", kind))
	}
	return err
}
