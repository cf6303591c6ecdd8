// Package main provides the arcsim command line.
// arcsim boots an Archimedes ROM image on the ARM2 core and traces every
// instruction until the core halts.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/sarchlab/arcsim/cache"
	"github.com/sarchlab/arcsim/config"
	"github.com/sarchlab/arcsim/emu"
	"github.com/sarchlab/arcsim/loader"
)

// options holds the parsed command line.
type options struct {
	configPath string
	romPath    string
	maxInsts   uint64
	quiet      bool
	withCache  bool
	verbose    bool
	args       []string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}

	fs := flag.NewFlagSet("arcsim", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "Path to run configuration JSON file")
	fs.StringVar(&opts.romPath, "rom", "", "Path to ROM image (overrides config)")
	fs.Uint64Var(&opts.maxInsts, "max", 0, "Stop after this many instructions (0 = unlimited)")
	fs.BoolVar(&opts.quiet, "q", false, "Disable the instruction trace")
	fs.BoolVar(&opts.withCache, "cache", false, "Attach the ARM3 cache model")
	fs.BoolVar(&opts.verbose, "v", false, "Verbose output")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: arcsim [options] <rom.img>\n")
		fmt.Fprintf(stderr, "\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	opts.args = fs.Args()

	return opts, nil
}

// run executes one emulator session and returns the process exit code:
// 0 when the instruction limit stopped the run, 1 on any other halt or
// setup failure.
func run(args []string, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return 1
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		return 1
	}

	if cfg.ROMPath == "" {
		fmt.Fprintf(stderr, "Usage: arcsim [options] <rom.img>\n")
		return 1
	}

	rom, err := loader.Load(cfg.ROMPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading ROM: %v\n", err)
		return 1
	}

	if opts.verbose {
		fmt.Fprintf(stderr, "Loaded: %s (%d bytes)\n", cfg.ROMPath, rom.Size)
	}

	emuOpts := []emu.EmulatorOption{emu.WithMaxInstructions(cfg.MaxInstructions)}

	var traceSink *bufio.Writer
	if cfg.Trace {
		w, closeFn, err := openTrace(cfg.TracePath)
		if err != nil {
			fmt.Fprintf(stderr, "Error opening trace: %v\n", err)
			return 1
		}
		defer closeFn()

		if bw, ok := w.(*bufio.Writer); ok {
			traceSink = bw
		}
		emuOpts = append(emuOpts, emu.WithTrace(w))
	}

	var model *cache.Cache
	if cfg.Cache.Enabled {
		model = cache.New(cfg.CacheModel())
		emuOpts = append(emuOpts, emu.WithAccessObserver(model))
	}

	emulator := emu.NewEmulator(rom.Words, emuOpts...)
	runErr := emulator.Run()

	if traceSink != nil {
		_ = traceSink.Flush()
	}

	fmt.Fprintf(stderr, "\n%v\n", runErr)
	emulator.RegFile().Dump(stderr)

	if opts.verbose {
		fmt.Fprintf(stderr, "\nInstructions executed: %d\n", emulator.InstructionCount())
		if model != nil {
			printCacheStats(stderr, model.Stats())
		}
	}

	if errors.Is(runErr, emu.ErrMaxInstructions) {
		return 0
	}
	return 1
}

// loadConfig merges the config file with command line overrides, then
// validates the result.
func loadConfig(opts *options) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if opts.configPath != "" {
		var err error
		cfg, err = config.LoadConfig(opts.configPath)
		if err != nil {
			return nil, err
		}
	}

	switch {
	case opts.romPath != "":
		cfg.ROMPath = opts.romPath
	case len(opts.args) > 0:
		cfg.ROMPath = opts.args[0]
	}
	if opts.maxInsts > 0 {
		cfg.MaxInstructions = opts.maxInsts
	}
	if opts.quiet {
		cfg.Trace = false
	}
	if opts.withCache {
		cfg.Cache.Enabled = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openTrace returns the trace writer. Terminals get every line as it is
// produced; files and pipes are buffered until the core halts.
func openTrace(path string) (io.Writer, func(), error) {
	f := os.Stdout
	closeFn := func() {}

	if path != "" {
		var err error
		f, err = os.Create(path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create trace file: %w", err)
		}
		closeFn = func() { _ = f.Close() }
	}

	if term.IsTerminal(int(f.Fd())) {
		return f, closeFn, nil
	}
	return bufio.NewWriterSize(f, 64*1024), closeFn, nil
}

func printCacheStats(w io.Writer, stats cache.Statistics) {
	fmt.Fprintf(w, "\nCache Statistics:\n")
	fmt.Fprintf(w, "  Reads:     %d\n", stats.Reads)
	fmt.Fprintf(w, "  Writes:    %d\n", stats.Writes)
	fmt.Fprintf(w, "  Hits:      %d\n", stats.Hits)
	fmt.Fprintf(w, "  Misses:    %d\n", stats.Misses)
	fmt.Fprintf(w, "  Evictions: %d\n", stats.Evictions)
	fmt.Fprintf(w, "  Uncached:  %d\n", stats.Uncached)
	fmt.Fprintf(w, "  Hit rate:  %.2f%%\n", stats.HitRate()*100)
}
