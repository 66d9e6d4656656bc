// Package pipeline runs an ordered list of buffer tasks against a shared
// fragpipe.AccessContext.
//
// Tasks run strictly one after another. The first failing task stops the
// run; later tasks are reported as skipped and never execute. Every run
// yields a Report with one Outcome per task, including on failure.
package pipeline

import (
	"cmp"
	"fmt"
	"image"

	"github.com/gogpu/fragpipe"
)

// Kind identifies a task variant.
type Kind uint8

const (
	KindLoad Kind = iota + 1
	KindCreateTarget
	KindSetAccessMode
	KindProcess
	KindSave
	KindDrop
)

// String returns the script verb associated with the kind.
func (k Kind) String() string {
	switch k {
	case KindLoad:
		return "loadfromfile"
	case KindCreateTarget:
		return "createtarget"
	case KindSetAccessMode:
		return "setaccessmode"
	case KindProcess:
		return "process"
	case KindSave:
		return "savetofile"
	case KindDrop:
		return "drop"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Task is one step of a pipeline.
type Task interface {
	// Kind returns the task variant.
	Kind() Kind

	// String describes the task for reports.
	String() string

	// Execute performs the task against ac.
	Execute(ac *fragpipe.AccessContext) error
}

// LoadFromFile decodes an image file into a new buffer registered under Name.
// Name defaults to Path.
type LoadFromFile struct {
	Path    string
	Name    string
	Storage Storage
}

func (t *LoadFromFile) Kind() Kind { return KindLoad }

func (t *LoadFromFile) String() string {
	if t.Name == "" || t.Name == t.Path {
		return fmt.Sprintf("load %s", t.Path)
	}
	return fmt.Sprintf("load %s as %s", t.Path, t.Name)
}

func (t *LoadFromFile) Execute(ac *fragpipe.AccessContext) error {
	b, err := storageOrDefault(t.Storage).Load(t.Path)
	if err != nil {
		return err
	}
	ac.Put(cmp.Or(t.Name, t.Path), b)
	return nil
}

// CreateTarget allocates a blank buffer sized like Source under Name.
type CreateTarget struct {
	Source string
	Name   string
}

func (t *CreateTarget) Kind() Kind { return KindCreateTarget }

func (t *CreateTarget) String() string {
	return fmt.Sprintf("create %s like %s", t.Name, t.Source)
}

func (t *CreateTarget) Execute(ac *fragpipe.AccessContext) error {
	src, err := ac.Get(t.Source)
	if err != nil {
		return err
	}
	b, err := fragpipe.NewBuffer(src.Width(), src.Height())
	if err != nil {
		return err
	}
	ac.Put(t.Name, b)
	return nil
}

// SetAccessMode moves the buffer under Name to Mode.
type SetAccessMode struct {
	Name string
	Mode fragpipe.Mode
}

func (t *SetAccessMode) Kind() Kind { return KindSetAccessMode }

func (t *SetAccessMode) String() string {
	return fmt.Sprintf("set %s %s", t.Name, t.Mode)
}

func (t *SetAccessMode) Execute(ac *fragpipe.AccessContext) error {
	b, err := ac.Get(t.Name)
	if err != nil {
		return err
	}
	return b.Request(t.Mode)
}

// ProcessRegion runs Transform from Source into Target with a
// fragpipe.Scheduler. Zero scheduler fields take the scheduler defaults and
// an empty Region means the whole source.
type ProcessRegion struct {
	Source        string
	Target        string
	Transform     fragpipe.Transform
	TransformName string

	Workers           int
	MaxFragmentWidth  int
	MaxFragmentHeight int
	Region            image.Rectangle

	Strategy      fragpipe.Strategy
	BlocksX       int
	BlocksY       int
	MaxConcurrent int
}

func (t *ProcessRegion) Kind() Kind { return KindProcess }

func (t *ProcessRegion) String() string {
	s := t.scheduler()
	name := cmp.Or(t.TransformName, "transform")
	desc := fmt.Sprintf("process %s -> %s with %s", t.Source, t.Target, name)
	if s.Strategy == fragpipe.StrategyBlocks {
		desc += fmt.Sprintf(" (%dx%d blocks, %d at once)", s.BlocksX, s.BlocksY, s.MaxConcurrent)
	} else {
		desc += fmt.Sprintf(" (%d workers, %dx%d fragments)", s.Workers, s.MaxFragmentWidth, s.MaxFragmentHeight)
	}
	if !t.Region.Empty() {
		desc += fmt.Sprintf(" in %v", t.Region)
	}
	return desc
}

func (t *ProcessRegion) Execute(ac *fragpipe.AccessContext) error {
	src, err := ac.Get(t.Source)
	if err != nil {
		return err
	}
	dst, err := ac.Get(t.Target)
	if err != nil {
		return err
	}

	s := t.scheduler()
	if t.Region.Empty() {
		return s.Run(src, dst, t.Transform)
	}
	return s.RunRegion(src, dst, t.Transform, t.Region)
}

// scheduler builds the scheduler for this task, filling zero fields with
// defaults.
func (t *ProcessRegion) scheduler() *fragpipe.Scheduler {
	s := fragpipe.NewScheduler(fragpipe.WithStrategy(t.Strategy))
	if t.Workers != 0 {
		s.Workers = t.Workers
	}
	if t.MaxFragmentWidth != 0 {
		s.MaxFragmentWidth = t.MaxFragmentWidth
	}
	if t.MaxFragmentHeight != 0 {
		s.MaxFragmentHeight = t.MaxFragmentHeight
	}
	if t.BlocksX != 0 {
		s.BlocksX = t.BlocksX
	}
	if t.BlocksY != 0 {
		s.BlocksY = t.BlocksY
	}
	if t.MaxConcurrent != 0 {
		s.MaxConcurrent = t.MaxConcurrent
	}
	return s
}

// SaveToFile encodes the buffer under Name to Path. Path defaults to Name.
// A zero Format is inferred from the path extension, falling back to PNG.
type SaveToFile struct {
	Name    string
	Path    string
	Format  fragpipe.Format
	Storage Storage
}

func (t *SaveToFile) Kind() Kind { return KindSave }

func (t *SaveToFile) String() string {
	return fmt.Sprintf("save %s to %s as %s", t.Name, t.path(), t.format())
}

func (t *SaveToFile) Execute(ac *fragpipe.AccessContext) error {
	b, err := ac.Get(t.Name)
	if err != nil {
		return err
	}
	return storageOrDefault(t.Storage).Save(b, t.path(), t.format())
}

func (t *SaveToFile) path() string {
	return cmp.Or(t.Path, t.Name)
}

func (t *SaveToFile) format() fragpipe.Format {
	if t.Format != 0 {
		return t.Format
	}
	if f, err := fragpipe.FormatForPath(t.path()); err == nil && f.CanEncode() {
		return f
	}
	return fragpipe.FormatPNG
}

// Drop closes and unregisters the buffer under Name.
type Drop struct {
	Name string
}

func (t *Drop) Kind() Kind { return KindDrop }

func (t *Drop) String() string { return fmt.Sprintf("drop %s", t.Name) }

func (t *Drop) Execute(ac *fragpipe.AccessContext) error {
	return ac.Drop(t.Name)
}
