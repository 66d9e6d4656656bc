// Package fragpipe applies per-pixel transforms to image buffers in parallel
// and sequences buffer operations into short pipelines.
//
// # Overview
//
// A Buffer is a fixed-size grid of 8-bit RGBA colors. Pixel access is gated
// by a Mode: a buffer must be made readable before it can be read and
// writable before it can be written. Leaving NoAccess pins the pixels for
// direct addressing; returning to NoAccess releases them.
//
// A Scheduler cuts a region of a source buffer into rectangular fragments,
// deals the fragments to a fixed number of workers and runs a Transform for
// every pixel, storing the results in a destination buffer.
//
// # Quick Start
//
//	src, _ := fragpipe.Load("scan.png")
//	dst, _ := fragpipe.NewBuffer(src.Width(), src.Height())
//
//	_ = src.EnableRead()
//	_ = dst.EnableWrite()
//
//	s := fragpipe.NewScheduler(fragpipe.WithWorkers(8), fragpipe.WithFragmentSize(32, 32))
//	err := s.Run(src, dst, func(x, y int, ctx *fragpipe.ThreadContext) fragpipe.Color {
//	    c := ctx.At(x, y)
//	    return fragpipe.RGB(255-c.R, 255-c.G, 255-c.B)
//	})
//
//	_ = dst.DisableWrite()
//	_ = dst.Save("scan.processed.png", fragpipe.FormatPNG)
//
// # Pipelines
//
// The pipeline package runs an ordered list of tasks against a shared
// AccessContext and stops at the first failure. The script package parses
// a line-oriented text format into such a list, and the transform package
// holds the named transforms a script can refer to.
//
// # Errors
//
// Every error matches one of the sentinel kinds (ErrNotFound,
// ErrAccessViolation, ErrInvalidMode, ErrIO, ErrParse, ErrScheduler,
// ErrInvalidArgument, ErrOutOfBounds) via errors.Is. Typed errors such as
// *AccessError and *SchedulerError carry details and are reachable with
// errors.As.
//
// # Logging
//
// fragpipe is silent by default. See SetLogger.
package fragpipe
