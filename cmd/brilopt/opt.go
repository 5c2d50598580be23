package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"brilopt/internal/bril"
	"brilopt/internal/cache"
	"brilopt/internal/observ"
	"brilopt/internal/pipeline"
	"brilopt/internal/trace"
)

var optCmd = &cobra.Command{
	Use:   "opt [flags] [file.json|-]",
	Short: "Optimize a Bril program",
	Long: `Read a Bril program in JSON form, run the configured passes over every
function and write the result. Without a file (or with -) the program is
read from stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runOpt,
}

func init() {
	optCmd.Flags().StringSlice("passes", nil, "passes to run in order (lvn|dce|dce1); default from config or lvn,dce")
	optCmd.Flags().Int("jobs", 0, "max functions optimized in parallel (0=auto)")
	optCmd.Flags().Bool("cache", false, "reuse results of unchanged functions from the disk cache")
	optCmd.Flags().String("cache-dir", "", "cache directory (default: user cache dir)")
	optCmd.Flags().Bool("drop-cache", false, "clear the disk cache before running")
	optCmd.Flags().Bool("validate", true, "reject programs with malformed instructions before optimizing")
	optCmd.Flags().String("format", "", "output format (json|text); default from config or json")
	optCmd.Flags().StringP("output", "o", "", "write the result to file instead of stdout")
	optCmd.Flags().String("ui", "auto", "progress UI mode (auto|on|off)")
}

type optOptions struct {
	passes    []pipeline.Pass
	jobs      int
	useCache  bool
	cacheDir  string
	dropCache bool
	validate  bool
	format    outputFormat
	output    string
	ui        uiMode
	quiet     bool
	timings   bool
}

// readOptOptions merges the config file with the flags; flags set on the
// command line win.
func readOptOptions(cmd *cobra.Command, cfg toolConfig) (optOptions, error) {
	var opts optOptions
	flags := cmd.Flags()

	passNames := cfg.Pipeline.Passes
	if flags.Changed("passes") {
		names, err := flags.GetStringSlice("passes")
		if err != nil {
			return opts, fmt.Errorf("failed to get passes flag: %w", err)
		}
		passNames = names
	}
	passes, err := pipeline.ParsePasses(passNames)
	if err != nil {
		return opts, err
	}
	opts.passes = passes

	opts.jobs = cfg.Pipeline.Jobs
	if flags.Changed("jobs") {
		if opts.jobs, err = flags.GetInt("jobs"); err != nil {
			return opts, fmt.Errorf("failed to get jobs flag: %w", err)
		}
	}
	if opts.jobs < 0 {
		return opts, fmt.Errorf("--jobs must be >= 0, got %d", opts.jobs)
	}

	opts.useCache = cfg.Cache.Enabled
	if flags.Changed("cache") {
		if opts.useCache, err = flags.GetBool("cache"); err != nil {
			return opts, fmt.Errorf("failed to get cache flag: %w", err)
		}
	}
	opts.cacheDir = cfg.Cache.Dir
	if flags.Changed("cache-dir") {
		if opts.cacheDir, err = flags.GetString("cache-dir"); err != nil {
			return opts, fmt.Errorf("failed to get cache-dir flag: %w", err)
		}
	}
	if opts.dropCache, err = flags.GetBool("drop-cache"); err != nil {
		return opts, fmt.Errorf("failed to get drop-cache flag: %w", err)
	}
	if opts.validate, err = flags.GetBool("validate"); err != nil {
		return opts, fmt.Errorf("failed to get validate flag: %w", err)
	}

	formatValue := cfg.Output.Format
	if flags.Changed("format") {
		if formatValue, err = flags.GetString("format"); err != nil {
			return opts, fmt.Errorf("failed to get format flag: %w", err)
		}
	}
	if opts.format, err = readOutputFormat(formatValue); err != nil {
		return opts, err
	}

	if opts.output, err = flags.GetString("output"); err != nil {
		return opts, fmt.Errorf("failed to get output flag: %w", err)
	}
	uiValue, err := flags.GetString("ui")
	if err != nil {
		return opts, fmt.Errorf("failed to get ui flag: %w", err)
	}
	if opts.ui, err = readUIMode(uiValue); err != nil {
		return opts, err
	}

	if opts.quiet, err = cmd.Root().PersistentFlags().GetBool("quiet"); err != nil {
		return opts, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if opts.timings, err = cmd.Root().PersistentFlags().GetBool("timings"); err != nil {
		return opts, fmt.Errorf("failed to get timings flag: %w", err)
	}
	return opts, nil
}

func runOpt(cmd *cobra.Command, args []string) error {
	cleanup, err := startSession(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	cfg, cfgPath, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	opts, err := readOptOptions(cmd, cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	tracer := trace.FromContext(ctx)
	if cfgPath != "" {
		trace.Point(tracer, trace.ScopeDriver, "config", cfgPath, trace.SpanFromContext(ctx))
	}
	timer := observ.NewTimer()

	inputPath := ""
	if len(args) > 0 {
		inputPath = args[0]
	}
	stop := timer.Track("decode")
	prog, err := readProgram(cmd, inputPath)
	stop()
	if err != nil {
		return err
	}
	if opts.validate {
		if err := bril.Validate(prog); err != nil {
			return err
		}
	}

	var dc *cache.DiskCache
	if opts.useCache || opts.dropCache {
		if dc, err = cache.Open(opts.cacheDir, "brilopt"); err != nil {
			return fmt.Errorf("failed to open cache: %w", err)
		}
		if opts.dropCache {
			if err := dc.DropAll(); err != nil {
				return fmt.Errorf("failed to clear cache: %w", err)
			}
		}
		if !opts.useCache {
			dc = nil
		}
	}

	req := &pipeline.Request{
		Program: prog,
		Passes:  opts.passes,
		Jobs:    opts.jobs,
		Cache:   dc,
		Timer:   timer,
	}
	var res pipeline.Result
	if !opts.quiet && shouldUseTUI(opts.ui) {
		res, err = runOptWithUI(ctx, displayName(inputPath), req)
	} else {
		res, err = pipeline.Run(ctx, req)
	}
	if err != nil {
		return err
	}

	stop = timer.Track("encode")
	err = writeProgram(cmd, opts, res.Program)
	stop()
	if err != nil {
		return err
	}

	errOut := cmd.ErrOrStderr()
	if !opts.quiet {
		cached := 0
		for _, st := range res.Stats {
			if st.Cached {
				cached++
			}
		}
		fmt.Fprintf(errOut, "optimized %d functions: %d -> %d instructions (%d cached)\n",
			len(res.Stats), prog.InstrCount(), res.Program.InstrCount(), cached)
	}
	if opts.timings {
		fmt.Fprint(errOut, timer.Summary())
	}
	return nil
}

func readProgram(cmd *cobra.Command, path string) (*bril.Program, error) {
	if path == "" || path == "-" {
		return bril.DecodeProgram(cmd.InOrStdin())
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()
	prog, err := bril.DecodeProgram(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return prog, nil
}

func writeProgram(cmd *cobra.Command, opts optOptions, prog *bril.Program) error {
	if opts.output == "" {
		return encodeProgram(cmd.OutOrStdout(), opts.format, prog)
	}
	f, err := os.Create(opts.output)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	if err := encodeProgram(f, opts.format, prog); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func encodeProgram(w io.Writer, format outputFormat, prog *bril.Program) error {
	if format == outputText {
		return bril.DumpProgram(w, prog)
	}
	return bril.EncodeProgram(w, prog)
}

func displayName(path string) string {
	if path == "" || path == "-" {
		return "stdin"
	}
	return filepath.Base(path)
}
