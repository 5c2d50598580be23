package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"brilopt/internal/bril"
	"brilopt/internal/dce"
	"brilopt/internal/diag"
	"brilopt/internal/lvn"
	"brilopt/internal/trace"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [file.json|-]",
	Short: "Report malformed instructions and dead definitions",
	Long: `Check every function of a Bril program: instruction shape, reads of
undefined variables and definitions that are never read.`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         runCheck,
}

func init() {
	checkCmd.Flags().Bool("no-warnings", false, "ignore warnings in diagnostics")
	checkCmd.Flags().Bool("warnings-as-errors", false, "treat warnings as errors")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cleanup, err := startSession(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	noWarnings, err := cmd.Flags().GetBool("no-warnings")
	if err != nil {
		return fmt.Errorf("failed to get no-warnings flag: %w", err)
	}
	warningsAsErrors, err := cmd.Flags().GetBool("warnings-as-errors")
	if err != nil {
		return fmt.Errorf("failed to get warnings-as-errors flag: %w", err)
	}
	if noWarnings && warningsAsErrors {
		return fmt.Errorf("no-warnings and warnings-as-errors flags cannot be used together")
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	colored, err := useColor(cmd, os.Stdout)
	if err != nil {
		return err
	}

	inputPath := ""
	if len(args) > 0 {
		inputPath = args[0]
	}
	prog, err := readProgram(cmd, inputPath)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeDriver, "check", trace.SpanFromContext(ctx))
	bag := checkProgram(prog, checkOptions{maxDiagnostics: maxDiagnostics, warnings: !noWarnings})
	span.End("")

	if err := diag.Render(cmd.OutOrStdout(), bag, diag.RenderOptions{Color: colored}); err != nil {
		return err
	}
	if bag.HasErrors() || (warningsAsErrors && bag.HasWarnings()) {
		return fmt.Errorf("%s: check failed", displayName(inputPath))
	}
	return nil
}

type checkOptions struct {
	maxDiagnostics int
	warnings       bool
}

// checkProgram collects diagnostics for every function. Functions with
// malformed instructions are not numbered, and functions that fail
// numbering get no liveness warnings.
func checkProgram(prog *bril.Program, opts checkOptions) *diag.Bag {
	bag := diag.NewBag(opts.maxDiagnostics)
	for _, fn := range prog.Functions {
		if len(fn.Instrs) == 0 {
			if opts.warnings {
				bag.Warnf(diag.IREmptyFunc, diag.Location{Func: fn.Name, Index: -1}, "", "function has no instructions")
			}
			continue
		}

		malformed := false
		for i, in := range fn.Instrs {
			if !in.Valid() {
				malformed = true
				bag.Errorf(diag.IRInvalidInstr, diag.Location{Func: fn.Name, Index: i}, bril.Format(in),
					fmt.Sprintf("fields do not match a %s instruction", in.Op))
			}
		}
		if malformed {
			continue
		}

		if _, err := lvn.Run(fn.Instrs); err != nil {
			var lerr *lvn.Error
			if !errors.As(err, &lerr) {
				bag.Errorf(diag.UnknownCode, diag.Location{Func: fn.Name, Index: -1}, "", err.Error())
				continue
			}
			code := diag.LVNUndefinedVar
			msg := fmt.Sprintf("%q is read before it is defined", lerr.Var)
			if errors.Is(err, lvn.ErrMalformedCopy) {
				code, msg = diag.LVNMalformedCopy, lvn.ErrMalformedCopy.Error()
			}
			bag.Errorf(code, diag.Location{Func: fn.Name, Index: lerr.Index}, bril.Format(fn.Instrs[lerr.Index]), msg)
			continue
		}

		if !opts.warnings {
			continue
		}
		for _, i := range dce.DeadDefs(fn.Instrs) {
			in := fn.Instrs[i]
			bag.Warnf(diag.DCEDeadDefinition, diag.Location{Func: fn.Name, Index: i}, bril.Format(in),
				fmt.Sprintf("value assigned to %s is never read", in.Dest))
		}
	}
	bag.Sort()
	return bag
}
