//go:build !js

package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/k0kubun/pp/v3"
	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"tinyrv/pkg/breakpoint"
	"tinyrv/pkg/build"
	"tinyrv/pkg/config"
	"tinyrv/pkg/isa"
	"tinyrv/pkg/macro"
	"tinyrv/pkg/source"
)

func main() {
	buildCmd := &cli.Command{
		Name:        "build",
		Description: "assemble every file under a directory (default ./asm) into compiled.txt",
		Action:      buildAct,
		Args:        cli.Args{},
		Flags: []*cli.Flag{
			cli.NewFlag("out,o", "", "compiled program path"),
			cli.NewFlag("debug", "", "expanded source path"),
			cli.NewFlag("breakpoints", "", "breakpoint list path"),
			cli.NewFlag("strict", false, "fail on any diagnostic"),
			cli.NewFlag("dump", false, "pretty-print the label and macro tables"),
		},
	}

	expandCmd := &cli.Command{
		Name:        "expand",
		Description: "print the macro-expanded buffer of the given files, or of the source directory",
		Action:      expandAct,
		Args:        cli.Args{},
	}

	objdumpCmd := &cli.Command{
		Name:        "objdump",
		Description: "decode a compiled program back into mnemonics (stdin if no file)",
		Action:      objdumpAct,
		Args:        cli.Args{},
		Flags: []*cli.Flag{
			cli.NewFlag("breakpoints,b", "", "breakpoint list to mark in the listing"),
		},
	}

	app := &cli.Command{
		Name:        "tinyrv",
		Description: "tinyrv is the assembler toolchain for the TinyRiscV simulator",
		Flags: []*cli.Flag{
			cli.NewFlag("config,c", "", "build file (default "+config.DefaultFile+" if present)"),
			cli.NewFlag("entry", "", "entry label"),
			cli.NewFlag("entry-policy", "", "jump injection: auto, always or never"),
			cli.NewFlag("v", "", "tlog verbosity topics (macro,label,encode,source,build)"),
			cli.HelpFlag,
		},
		Commands: []*cli.Command{
			buildCmd,
			expandCmd,
			objdumpCmd,
		},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

func newContext(c *cli.Command) context.Context {
	tlog.SetVerbosity(c.String("v"))

	ctx := context.Background()

	return tlog.ContextWithSpan(ctx, tlog.Root())
}

func buildAct(c *cli.Command) (err error) {
	ctx := newContext(c)

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	if len(c.Args) > 0 {
		cfg.Source = c.Args[0]
	}

	for _, f := range []struct {
		name string
		dst  *string
	}{
		{"out", &cfg.Output},
		{"debug", &cfg.Debug},
		{"breakpoints", &cfg.Breakpoints},
	} {
		if v := c.String(f.name); v != "" {
			*f.dst = v
		}
	}

	cfg.Strict = cfg.Strict || c.Bool("strict")

	r, err := build.Run(ctx, cfg)
	if r != nil {
		printDiagnostics(os.Stderr, r)

		if c.Bool("dump") {
			dump(os.Stderr, r, true)
		}
	}

	if err != nil {
		return errors.Wrap(err, "build %v", cfg.Source)
	}

	return nil
}

func expandAct(c *cli.Command) (err error) {
	ctx := newContext(c)

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	var files []source.File

	if len(c.Args) == 0 {
		fsys, _, err := source.DirInfo(cfg.Source)
		if err != nil {
			return errors.Wrap(err, "source dir")
		}

		paths, err := source.Collect(fsys, ".", cfg.Exclude)
		if err != nil {
			return err
		}

		files, err = source.Load(ctx, fsys, paths)
		if err != nil {
			return err
		}
	} else {
		for _, a := range c.Args {
			data, err := os.ReadFile(a)
			if err != nil {
				return errors.Wrap(err, "read %v", a)
			}

			files = append(files, source.File{Name: a, Data: data})
		}
	}

	r := expand(ctx, files, cfg)

	printDiagnostics(os.Stderr, r)

	_, err = os.Stdout.Write(r.Expanded.Bytes())

	return err
}

func objdumpAct(c *cli.Command) (err error) {
	_ = newContext(c)

	var r io.Reader = os.Stdin

	if len(c.Args) > 0 {
		data, err := os.ReadFile(c.Args[0])
		if err != nil {
			return errors.Wrap(err, "read %v", c.Args[0])
		}

		r = bytes.NewReader(data)
	}

	p, err := isa.ReadProgram(r)
	if err != nil {
		return errors.Wrap(err, "decode")
	}

	var bps []int

	if name := c.String("breakpoints"); name != "" {
		data, err := os.ReadFile(name)
		if err != nil {
			return errors.Wrap(err, "read %v", name)
		}

		bps, err = breakpoint.Parse(string(data))
		if err != nil {
			return errors.Wrap(err, "parse %v", name)
		}
	}

	return objdump(os.Stdout, p, bps)
}

// loadConfig reads the build file named by --config, or the default one if
// it exists, and applies the global overrides.
func loadConfig(c *cli.Command) (cfg config.Config, err error) {
	if name := c.String("config"); name != "" {
		dir, file := filepath.Split(name)
		if dir == "" {
			dir = "."
		}

		cfg, err = config.Load(os.DirFS(dir), file)
	} else {
		cfg, err = config.LoadDefault(os.DirFS("."))
	}
	if err != nil {
		return cfg, err
	}

	if v := c.String("entry"); v != "" {
		cfg.Entry.Label = v
	}

	if v := c.String("entry-policy"); v != "" {
		cfg.Entry.Policy, err = source.ParseEntryPolicy(v)
		if err != nil {
			return cfg, errors.Wrap(err, "entry-policy")
		}
	}

	return cfg, nil
}

// expand runs the first two stages only.
func expand(ctx context.Context, files []source.File, cfg config.Config) *build.Result {
	opts := build.OptionsFrom(cfg)

	r := &build.Result{
		Source: source.Concatenate(files, opts.Entry),
	}

	ex := macro.New()
	ex.MaxDepth = opts.MacroDepth

	r.Expanded, r.Diagnostics = ex.Expand(ctx, r.Source.Lines)
	r.Macros = ex.Macros()

	return r
}

// objdump lists every non-empty instruction with its 1-based line. Lines in
// bps are marked with '*'.
func objdump(w io.Writer, p isa.Program, bps []int) error {
	marked := make(map[int]bool, len(bps))
	for _, l := range bps {
		marked[l] = true
	}

	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)

	for i, in := range p {
		if in == isa.Empty {
			continue
		}

		mark := " "
		if marked[i+1] {
			mark = "*"
		}

		fmt.Fprintf(tw, "%s%d\t%v\t%v\n", mark, i+1, in.Disasm(), in)
	}

	return tw.Flush()
}

func printDiagnostics(w io.Writer, r *build.Result) {
	for _, d := range r.Diagnostics {
		fmt.Fprintf(w, "%s: warning: %v\n", r.Position(d), d)
	}
}

type macroDump struct {
	Params []string
	Line   int
	Body   []string
}

func macroTable(r *build.Result) map[string]macroDump {
	macros := make(map[string]macroDump, len(r.Macros))

	for _, m := range r.Macros {
		body := make([]string, len(m.Body))
		for i, t := range m.Body {
			body[i] = t.String()
		}

		macros[m.Name] = macroDump{
			Params: m.Params,
			Line:   m.Line,
			Body:   body,
		}
	}

	return macros
}

func dump(w io.Writer, r *build.Result, color bool) {
	p := pp.New()
	p.SetColoringEnabled(color)

	p.Fprintln(w, "labels", r.Labels)
	p.Fprintln(w, "macros", macroTable(r))
	p.Fprintln(w, "entry", r.EntryLine, "ranges", r.Source.Ranges)
}
