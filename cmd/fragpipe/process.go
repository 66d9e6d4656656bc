package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gogpu/fragpipe"
	"github.com/gogpu/fragpipe/pipeline"
	"github.com/gogpu/fragpipe/transform"
)

// processFlags are the flags of the process command.
type processFlags struct {
	transform string
	output    string
	format    string

	workers        int
	fragment       int
	fragmentWidth  int
	fragmentHeight int
	strategy       string
	blocksX        int
	blocksY        int
	maxConcurrent  int
}

func (a *app) processCmd() *cobra.Command {
	var f processFlags

	cmd := &cobra.Command{
		Use:   "process <input>",
		Short: "Apply a transform to one image",
		Long: `Loads an image, applies a transform with the fragment scheduler and saves the
result. The result is written to <input>.processed.<ext> unless --output
is given. Scheduler defaults come from the config file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := a.processTasks(cmd, args[0], &f)
			if err != nil {
				return err
			}
			return a.execute(cmd, "process "+args[0], tasks)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.transform, "transform", "t", "antistamp", "transform name (see 'fragpipe transforms')")
	fl.StringVarP(&f.output, "output", "o", "", "output path")
	fl.StringVar(&f.format, "format", "", "output format: png, jpeg, gif, bmp, tiff")
	fl.IntVar(&f.workers, "workers", 0, "number of fragment workers")
	fl.IntVar(&f.fragment, "fragment", 0, "square fragment size")
	fl.IntVar(&f.fragmentWidth, "fragment-width", 0, "maximum fragment width")
	fl.IntVar(&f.fragmentHeight, "fragment-height", 0, "maximum fragment height")
	fl.StringVar(&f.strategy, "strategy", "", "scheduling strategy: fragments or blocks")
	fl.IntVar(&f.blocksX, "blocks-x", 0, "blocks across (blocks strategy)")
	fl.IntVar(&f.blocksY, "blocks-y", 0, "blocks down (blocks strategy)")
	fl.IntVar(&f.maxConcurrent, "max-concurrent", 0, "blocks processed at once (blocks strategy)")
	cmd.MarkFlagsMutuallyExclusive("fragment", "fragment-width")
	cmd.MarkFlagsMutuallyExclusive("fragment", "fragment-height")
	return cmd
}

// processTasks builds the bundled load, process, save pipeline.
func (a *app) processTasks(cmd *cobra.Command, input string, f *processFlags) ([]pipeline.Task, error) {
	fn, ok := transform.Builtins().Lookup(f.transform)
	if !ok {
		return nil, fmt.Errorf("unknown transform %q", f.transform)
	}

	sc := a.cfg.Scheduler
	changed := cmd.Flags().Changed
	if changed("workers") {
		sc.Workers = f.workers
	}
	if changed("fragment") {
		sc.FragmentWidth, sc.FragmentHeight = f.fragment, f.fragment
	}
	if changed("fragment-width") {
		sc.FragmentWidth = f.fragmentWidth
	}
	if changed("fragment-height") {
		sc.FragmentHeight = f.fragmentHeight
	}
	if changed("strategy") {
		sc.Strategy = f.strategy
	}
	if changed("blocks-x") {
		sc.BlocksX = f.blocksX
	}
	if changed("blocks-y") {
		sc.BlocksY = f.blocksY
	}
	if changed("max-concurrent") {
		sc.MaxConcurrent = f.maxConcurrent
	}

	sched, err := sc.NewScheduler()
	if err != nil {
		return nil, err
	}
	proc := &pipeline.ProcessRegion{
		Source:            "source",
		Target:            "target",
		Transform:         fn,
		TransformName:     f.transform,
		Workers:           sched.Workers,
		MaxFragmentWidth:  sched.MaxFragmentWidth,
		MaxFragmentHeight: sched.MaxFragmentHeight,
		Strategy:          sched.Strategy,
		BlocksX:           sched.BlocksX,
		BlocksY:           sched.BlocksY,
		MaxConcurrent:     sched.MaxConcurrent,
	}

	format, err := a.cfg.OutputFormat()
	if err != nil {
		return nil, err
	}
	if f.format != "" {
		if format, err = fragpipe.ParseFormat(f.format); err != nil {
			return nil, err
		}
		if !format.CanEncode() {
			return nil, fmt.Errorf("%w: %s cannot be saved", fragpipe.ErrInvalidArgument, format)
		}
	}
	output := f.output
	if output == "" {
		output = input + a.cfg.Output.Suffix + format.Extension()
	}

	return []pipeline.Task{
		&pipeline.LoadFromFile{Path: input, Name: "source"},
		&pipeline.CreateTarget{Source: "source", Name: "target"},
		&pipeline.SetAccessMode{Name: "source", Mode: fragpipe.ReadOnly},
		&pipeline.SetAccessMode{Name: "target", Mode: fragpipe.WriteOnly},
		proc,
		&pipeline.SetAccessMode{Name: "target", Mode: fragpipe.NoAccess},
		&pipeline.SetAccessMode{Name: "source", Mode: fragpipe.NoAccess},
		&pipeline.SaveToFile{Name: "target", Path: output, Format: format},
	}, nil
}
