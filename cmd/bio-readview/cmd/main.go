package cmd

import (
	"fmt"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/readview/pileup/track"
	"github.com/pkg/profile"
	"v.io/x/lib/cmdline"
)

const regionHelp = `Semicolon-separated list of regions.  Each region is
'chr:begin-end' (1-based, closed), 'chr:pos' or 'chr'.  Commas inside
positions are ignored, e.g. 'chr1:1,000,001-1,001,000'.`

type commonFlags struct {
	regions        *string
	bed            *string
	bpPerPx        *float64
	maxHeight      *int
	padding        *int
	linearScan     *int
	featureHeight  *int
	showSoftClip   *bool
	parallelism    *int
	maxRegionWidth *int
	out            *string
	profile        *string
}

func addCommonFlags(cmd *cmdline.Command) *commonFlags {
	d := track.DefaultOpts
	return &commonFlags{
		regions:        cmd.Flags.String("region", "", regionHelp),
		bed:            cmd.Flags.String("bed", "", "BED file of additional regions; sorted overlapping intervals are merged"),
		bpPerPx:        cmd.Flags.Float64("bp-per-px", d.BpPerPx, "Bases per pixel used for layout"),
		maxHeight:      cmd.Flags.Int("max-height", d.Layout.MaxHeight, "Number of layout rows available"),
		padding:        cmd.Flags.Int("padding", int(d.Layout.Padding), "Minimum horizontal gap, in pixels, between reads in a row"),
		linearScan:     cmd.Flags.Int("linear-scan-limit", d.Layout.LinearScanLimit, "Per-row span endpoint count at which layout switches to binary search"),
		featureHeight:  cmd.Flags.Int("feature-height", d.FeatureHeight, "Number of layout rows each read occupies"),
		showSoftClip:   cmd.Flags.Bool("soft-clip", d.ShowSoftClip, "Reserve layout room for soft-clipped bases"),
		parallelism:    cmd.Flags.Int("parallelism", d.Parallelism, "Number of regions processed concurrently; 0 = one job per region"),
		maxRegionWidth: cmd.Flags.Int("max-region-width", d.MaxRegionWidth, "Reject regions wider than this; 0 = no limit"),
		out:            cmd.Flags.String("out", "", "Output path; default stdout"),
		profile:        cmd.Flags.String("profile", "", "Write a 'cpu' or 'mem' profile to the current directory"),
	}
}

func (f *commonFlags) opts() Opts {
	opts := Opts{
		Regions: *f.regions,
		BEDPath: *f.bed,
		Track:   track.DefaultOpts,
		Out:     *f.out,
	}
	opts.Track.BpPerPx = *f.bpPerPx
	opts.Track.Layout.MaxHeight = *f.maxHeight
	opts.Track.Layout.Padding = track.PosType(*f.padding)
	opts.Track.Layout.LinearScanLimit = *f.linearScan
	opts.Track.FeatureHeight = *f.featureHeight
	opts.Track.ShowSoftClip = *f.showSoftClip
	opts.Track.Parallelism = *f.parallelism
	opts.Track.MaxRegionWidth = *f.maxRegionWidth
	return opts
}

func startProfile(kind string) (stop func(), err error) {
	switch kind {
	case "":
		return func() {}, nil
	case "cpu":
		return profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop, nil
	case "mem":
		return profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop, nil
	}
	return nil, fmt.Errorf("unknown -profile value %q; expected cpu or mem", kind)
}

func newCmd(name, short string, kind outputKind, extra func(cmd *cmdline.Command, opts *Opts)) *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     name,
		Short:    short,
		ArgsName: "path",
	}
	flags := addCommonFlags(cmd)
	var extraOpts Opts
	if extra != nil {
		extra(cmd, &extraOpts)
	}
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 1 {
			return fmt.Errorf("%s takes one pathname argument, but got %v", name, argv)
		}
		stop, err := startProfile(*flags.profile)
		if err != nil {
			return err
		}
		defer stop()
		opts := flags.opts()
		opts.AnnotationsOut = extraOpts.AnnotationsOut
		return run(vcontext.Background(), kind, opts, argv[0], env.Stdout)
	})
	return cmd
}

func newCmdCoverage() *cmdline.Command {
	return newCmd("coverage", "Per-base depth, strand depth, deletion depth and mismatch counts", outputCoverage,
		func(cmd *cmdline.Command, opts *Opts) {
			cmd.Flags.StringVar(&opts.AnnotationsOut, "annotations", "", "If set, also write per-position insertion/soft-clip/skip counts to this path")
		})
}

func newCmdLayout() *cmdline.Command {
	return newCmd("layout", "Pixel extent and row of every read", outputLayout, nil)
}

func newCmdMismatches() *cmdline.Command {
	return newCmd("mismatches", "Decoded mismatch, insertion, deletion, soft-clip and skip events of every read", outputMismatches, nil)
}

// Run is the entry point of bio-readview.
func Run() {
	cmdline.HideGlobalFlagsExcept()
	cmdline.Main(
		&cmdline.Command{
			Name:     "bio-readview",
			Short:    "Compute coverage, layout and mismatch data for read-alignment tracks",
			LookPath: false,
			Children: []*cmdline.Command{
				newCmdCoverage(),
				newCmdLayout(),
				newCmdMismatches(),
			},
		})
}
