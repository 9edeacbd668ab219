package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jessevdk/go-flags"
	"github.com/lestrrat-go/declari"
	"github.com/lestrrat-go/declari/instruction"
	"github.com/lestrrat-go/declari/node"
	"github.com/lestrrat-go/declari/s11n"
	"github.com/mattn/go-isatty"
	"github.com/sergi/go-diff/diffmatchpatch"
	"golang.org/x/sync/errgroup"
)

type cmdopts struct {
	Config     string `short:"c" long:"config" description:"YAML configuration file"`
	SourceDir  string `long:"source-dir" description:"directory the templates are read from"`
	CompileDir string `long:"compile-dir" description:"directory the compiled templates are written to"`
	Workers    int    `short:"j" long:"workers" description:"number of templates compiled in parallel"`
	Compress   bool   `long:"compress-dynamic" description:"compress the dynamic block files"`
	Dump       bool   `long:"dump" description:"print the parsed tree instead of compiling"`
	Check      bool   `long:"check" description:"compare the output with the compiled templates on disk"`
	NoColor    bool   `long:"no-color" description:"disable colored output"`
	Verbose    bool   `short:"v" long:"verbose" description:"log the compiler pipeline to stderr"`
	Version    bool   `long:"version"`
}

func main() {
	os.Exit(_main())
}

func showVersion() {
	fmt.Printf("declari-compile: using declari version %s\n", declari.Version)
}

func showUsage() {
	fmt.Printf(`Usage : declari-compile [options] templates ...
	Compile the templates and write the compiled files
	Template names are read from stdin when none are given
	--config FILE : read the configuration from FILE
	--dump : print the parsed tree of each template
	--check : report templates whose compiled file is out of date
	--version : display the version of the compiler
`)
}

// result is what one template produced. Results are printed in the
// order the templates were given.
type result struct {
	name   string
	output string
	err    error
	// stale is set by --check when the compiled file differs
	stale bool
}

func _main() int {
	opts := cmdopts{}
	args, err := flags.ParseArgs(&opts, os.Args[1:])
	if err != nil {
		showUsage()
		return 1
	}

	if opts.Version {
		showVersion()
		return 0
	}
	if opts.NoColor {
		color.NoColor = true
	}

	switch {
	case len(args) > 0:
	case !isatty.IsTerminal(os.Stdin.Fd()):
		args, err = readNames(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s\n", err)
			return 1
		}
	default:
		showUsage()
		return 1
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "%s\n", err)
		return 1
	}

	ctx := context.Background()
	if opts.Verbose {
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		ctx = declari.WithTraceLogger(ctx, logger)
	}

	results := make([]result, len(args))
	var g errgroup.Group
	g.SetLimit(cfg.Workers)
	for i, name := range args {
		g.Go(func() error {
			results[i] = run(ctx, cfg, opts, name)
			return nil
		})
	}
	_ = g.Wait()

	status := 0
	for _, r := range results {
		switch {
		case r.err != nil:
			color.New(color.FgRed).Fprintf(os.Stderr, "%s: %s\n", r.name, r.err)
			status = 1
		case r.stale:
			color.New(color.FgYellow).Fprintf(os.Stdout, "%s is out of date\n", r.name)
			fmt.Fprint(os.Stdout, r.output)
			status = 1
		case opts.Dump:
			fmt.Fprint(os.Stdout, r.output)
		default:
			color.New(color.FgGreen).Fprintf(os.Stdout, "%s", r.output)
		}
	}
	return status
}

func readNames(in io.Reader) ([]string, error) {
	var names []string
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if name := strings.TrimSpace(scanner.Text()); name != "" {
			names = append(names, name)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read template names: %w", err)
	}
	return names, nil
}

func loadConfig(opts cmdopts) (*declari.Config, error) {
	cfg := declari.DefaultConfig()
	if opts.Config != "" {
		loaded, err := declari.LoadConfig(opts.Config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if opts.SourceDir != "" {
		cfg.SourceDir = opts.SourceDir
	}
	if opts.CompileDir != "" {
		cfg.CompileDir = opts.CompileDir
	}
	if opts.Workers > 0 {
		cfg.Workers = opts.Workers
	}
	if opts.Compress {
		cfg.CompressDynamic = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// run handles a single template. Compilers are not safe for
// concurrent use, so every template gets its own.
func run(ctx context.Context, cfg *declari.Config, opts cmdopts, name string) result {
	r := result{name: name}
	c, err := instruction.New(cfg)
	if err != nil {
		r.err = err
		return r
	}

	switch {
	case opts.Dump:
		r.output, r.err = dump(ctx, c, name)
	case opts.Check:
		r.output, r.stale, r.err = check(ctx, c, name)
	default:
		art, err := c.Compile(ctx, name, "")
		if err != nil {
			r.err = err
			return r
		}
		r.output = fmt.Sprintf("%s -> %s (%s)\n", name, art.Path, humanize.Bytes(uint64(len(art.Content()))))
	}
	return r
}

func dump(ctx context.Context, c *declari.Compiler, name string) (string, error) {
	doc, err := c.Parse(ctx, name)
	if err != nil {
		return "", err
	}
	defer node.Dispose(doc)

	var sb strings.Builder
	d := s11n.Dumper{}
	if err := d.DumpDoc(&sb, doc); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func check(ctx context.Context, c *declari.Compiler, name string) (string, bool, error) {
	art, err := c.Build(ctx, name)
	if err != nil {
		return "", false, err
	}
	path, err := c.Inflector().CompiledPath(name, art.Dependencies)
	if err != nil {
		return "", false, err
	}

	existing, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Sprintf("%s has not been compiled yet\n", path), true, nil
		}
		return "", false, err
	}
	fresh := art.Content()
	if string(existing) == fresh {
		return fmt.Sprintf("%s is up to date\n", name), false, nil
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(string(existing), fresh, false))
	return dmp.DiffPrettyText(diffs) + "\n", true, nil
}
