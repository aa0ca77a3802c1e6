// Package build chains the pipeline stages and writes the artifacts the
// simulator and the debugger read.
package build

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"tinyrv/pkg/asm"
	"tinyrv/pkg/breakpoint"
	"tinyrv/pkg/config"
	"tinyrv/pkg/diag"
	"tinyrv/pkg/isa"
	"tinyrv/pkg/macro"
	"tinyrv/pkg/source"
)

type (
	Options struct {
		Entry      source.Entry
		Marker     string
		MacroDepth int
	}

	// Result holds every intermediate of one build.
	Result struct {
		// Source is the concatenated input before macro expansion. Macro
		// diagnostics refer to its lines.
		Source source.Merged

		Expanded    source.Buffer
		Breakpoints []int

		Macros []*macro.Macro
		Labels asm.Labels

		Program isa.Program

		// EntryLine is the 0-based line defining the entry label, 0 if it is
		// not defined.
		EntryLine int

		Diagnostics diag.List
	}
)

// OptionsFrom derives the pipeline options from c.
func OptionsFrom(c config.Config) Options {
	return Options{
		Entry: source.Entry{
			Label:  c.Entry.Label,
			Policy: c.Entry.Policy,
		},
		Marker:     c.Marker,
		MacroDepth: c.MacroDepth,
	}
}

// Compile runs concatenate, expand, breakpoints and assemble over files in
// the given order. It never fails: problems end up in Result.Diagnostics.
func Compile(ctx context.Context, files []source.File, opts Options) *Result {
	tr := tlog.SpanFromContext(ctx)

	m := source.Concatenate(files, opts.Entry)

	ex := macro.New()
	if opts.MacroDepth > 0 {
		ex.MaxDepth = opts.MacroDepth
	}

	expanded, mdiags := ex.Expand(ctx, m.Lines)

	bps := breakpoint.Extract(expanded, opts.Marker)

	prog, labels, adiags := asm.Assemble(ctx, expanded)

	r := &Result{
		Source:      m,
		Expanded:    expanded,
		Breakpoints: bps,
		Macros:      ex.Macros(),
		Labels:      labels,
		Program:     prog,
	}

	label := opts.Entry.Label
	if label == "" {
		label = source.DefaultEntryLabel
	}

	r.EntryLine = labels[label]

	r.Diagnostics = append(r.Diagnostics, mdiags...)
	r.Diagnostics = append(r.Diagnostics, adiags...)

	tr.Printw("compiled", "files", len(files), "lines", len(prog), "macros", len(r.Macros), "labels", len(labels), "breakpoints", len(bps),
		"diagnostics", len(r.Diagnostics), "unknown_mnemonics", r.Diagnostics.Count(diag.UnknownMnemonic), "unresolved", r.Diagnostics.Count(diag.UnresolvedOperand))

	return r
}

// Position names the source location of d as "file:line". Only macro
// diagnostics can be traced back to an input file; lines of later stages
// refer to the expanded buffer and are returned as "expanded:line".
func (r *Result) Position(d diag.Diagnostic) string {
	if d.Stage == macro.Stage {
		if rng, ok := r.Source.RangeOf(d.Line); ok {
			return fmt.Sprintf("%s:%d", rng.Name, d.Line-rng.Start+1)
		}
	}

	return fmt.Sprintf("expanded:%d", d.Line)
}

// Build collects, loads and compiles every source file in fsys.
func Build(ctx context.Context, fsys fs.FS, c config.Config) (*Result, error) {
	paths, err := source.Collect(fsys, ".", c.Exclude)
	if err != nil {
		return nil, errors.Wrap(err, "collect")
	}

	files, err := source.Load(ctx, fsys, paths)
	if err != nil {
		return nil, errors.Wrap(err, "load")
	}

	return Compile(ctx, files, OptionsFrom(c)), nil
}

// Write stores the compiled program, the expanded source and the breakpoint
// list at the paths named by c. Empty debug paths are skipped.
func Write(ctx context.Context, r *Result, c config.Config) error {
	arts := []struct {
		path string
		data []byte
	}{
		{c.Output, r.Program.Bytes()},
		{c.Debug, r.Expanded.Bytes()},
		{c.Breakpoints, []byte(breakpoint.Format(r.Breakpoints))},
	}

	for _, a := range arts {
		if a.path == "" {
			continue
		}

		err := os.WriteFile(a.path, a.data, 0o644)
		if err != nil {
			return errors.Wrap(err, "write %v", a.path)
		}

		tlog.SpanFromContext(ctx).V("build").Printw("artifact written", "path", a.path, "size", len(a.data))
	}

	return nil
}

// Run builds the source directory from c and writes the artifacts. In
// strict mode a non-empty diagnostic list fails the run after writing.
func Run(ctx context.Context, c config.Config) (*Result, error) {
	fsys, abs, err := source.DirInfo(c.Source)
	if err != nil {
		return nil, errors.Wrap(err, "source dir")
	}

	tlog.SpanFromContext(ctx).Printw("build", "source", abs, "output", c.Output, "entry", c.Entry.Label, "policy", c.Entry.Policy, "strict", c.Strict)

	r, err := Build(ctx, fsys, c)
	if err != nil {
		return nil, err
	}

	err = Write(ctx, r, c)
	if err != nil {
		return r, err
	}

	if c.Strict {
		return r, r.Diagnostics.Err()
	}

	return r, nil
}
