package script

import (
	"maps"
	"slices"

	"github.com/gogpu/fragpipe"
	"github.com/gogpu/fragpipe/pipeline"
)

// verb describes one instruction: its argument range and how to build the
// task from resolved arguments.
type verb struct {
	minArgs int
	maxArgs int
	usage   string
	build   func(st *state, args []token) (pipeline.Task, error)
}

// verbs is the instruction dictionary, keyed by normalized verb.
// It is never modified after initialization.
var verbs = map[string]verb{
	"loadfromfile":  {1, 1, "loadfromfile <path>", buildLoad},
	"setread":       {1, 1, "setread <name>", buildSetMode(fragpipe.ReadOnly)},
	"setwrite":      {1, 1, "setwrite <name>", buildSetMode(fragpipe.WriteOnly)},
	"setreadwrite":  {1, 1, "setreadwrite <name>", buildSetMode(fragpipe.ReadWrite)},
	"setnoaccess":   {1, 1, "setnoaccess <name>", buildSetMode(fragpipe.NoAccess)},
	"savetofile":    {2, 3, "savetofile <name> [<path>] <format>", buildSave},
	"createtarget":  {2, 2, "createtarget <source> <name>", buildCreateTarget},
	"processfull":   {3, 6, "processfull <source> <target> <transform> [<workers> [<fragW> [<fragH>]]]", buildProcessFull},
	"processblocks": {5, 6, "processblocks <source> <target> <transform> <blocksX> <blocksY> [<maxConcurrent>]", buildProcessBlocks},
	"drop":          {1, 1, "drop <name>", buildDrop},
}

// Verbs returns the supported instruction verbs in sorted order.
func Verbs() []string {
	return slices.Sorted(maps.Keys(verbs))
}

// Usage returns the argument synopsis of a verb, or "" if it is unknown.
func Usage(name string) string {
	return verbs[normalizeVerb(name)].usage
}

func buildLoad(st *state, args []token) (pipeline.Task, error) {
	return &pipeline.LoadFromFile{
		Path:    st.resolve(args[0]),
		Storage: st.parser.storage,
	}, nil
}

func buildSetMode(m fragpipe.Mode) func(*state, []token) (pipeline.Task, error) {
	return func(st *state, args []token) (pipeline.Task, error) {
		return &pipeline.SetAccessMode{Name: st.resolve(args[0]), Mode: m}, nil
	}
}

func buildSave(st *state, args []token) (pipeline.Task, error) {
	t := &pipeline.SaveToFile{
		Name:    st.resolve(args[0]),
		Storage: st.parser.storage,
	}
	if len(args) == 3 {
		t.Path = st.resolve(args[1])
	}

	f, err := st.saveFormat(args[len(args)-1])
	if err != nil {
		return nil, err
	}
	t.Format = f
	return t, nil
}

func buildCreateTarget(st *state, args []token) (pipeline.Task, error) {
	return &pipeline.CreateTarget{
		Source: st.resolve(args[0]),
		Name:   st.resolve(args[1]),
	}, nil
}

func buildProcessFull(st *state, args []token) (pipeline.Task, error) {
	fn, name, err := st.transform(args[2])
	if err != nil {
		return nil, err
	}
	t := &pipeline.ProcessRegion{
		Source:        st.resolve(args[0]),
		Target:        st.resolve(args[1]),
		Transform:     fn,
		TransformName: name,
		Strategy:      fragpipe.StrategyFragments,
	}

	if len(args) > 3 {
		if t.Workers, err = st.positive(args[3], "workers"); err != nil {
			return nil, err
		}
	}
	if len(args) > 4 {
		if t.MaxFragmentWidth, err = st.positive(args[4], "fragment width"); err != nil {
			return nil, err
		}
		// A single size gives square fragments.
		t.MaxFragmentHeight = t.MaxFragmentWidth
	}
	if len(args) > 5 {
		if t.MaxFragmentHeight, err = st.positive(args[5], "fragment height"); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func buildProcessBlocks(st *state, args []token) (pipeline.Task, error) {
	fn, name, err := st.transform(args[2])
	if err != nil {
		return nil, err
	}
	t := &pipeline.ProcessRegion{
		Source:        st.resolve(args[0]),
		Target:        st.resolve(args[1]),
		Transform:     fn,
		TransformName: name,
		Strategy:      fragpipe.StrategyBlocks,
	}

	if t.BlocksX, err = st.positive(args[3], "blocks x"); err != nil {
		return nil, err
	}
	if t.BlocksY, err = st.positive(args[4], "blocks y"); err != nil {
		return nil, err
	}
	if len(args) > 5 {
		if t.MaxConcurrent, err = st.positive(args[5], "max concurrent"); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func buildDrop(st *state, args []token) (pipeline.Task, error) {
	return &pipeline.Drop{Name: st.resolve(args[0])}, nil
}
