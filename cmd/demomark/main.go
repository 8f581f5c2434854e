// Package main implements the demomark CLI.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	_ "demomark/internal/backend/all"
	"demomark/internal/prof"
	"demomark/internal/version"
)

// newRootCmd builds the command tree. Every call returns fresh flag state.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "demomark",
		Short: "Compile markdown documentation with live demos into page components",
		Long: `demomark splits markdown documents into a structured body and a list of
demo snippets, then generates one page component per document.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := setupColor(cmd); err != nil {
				return err
			}
			cleanup, err := setupTracing(cmd)
			if err != nil {
				return err
			}
			traceCleanup = cleanup
			return startProfiling(cmd)
		},
	}

	// Глобальные флаги
	pf := rootCmd.PersistentFlags()
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("quiet", false, "suppress non-essential output")
	pf.String("error-format", "pretty", "error output format (pretty|json)")
	pf.Bool("timings", false, "show timing information")
	pf.String("trace", "", "write trace events to file (- for stderr)")
	pf.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	pf.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	pf.Int("trace-ring-size", 4096, "events kept in ring mode")
	pf.String("cpu-profile", "", "write a CPU profile to file")
	pf.String("mem-profile", "", "write a heap profile to file on exit")
	pf.String("runtime-trace", "", "write a Go runtime trace to file")

	rootCmd.AddCommand(
		newParseCmd(),
		newCompileCmd(),
		newBuildCmd(),
		newInitCmd(),
		newCleanCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

var (
	traceCleanup func()
	profSession  *prof.Session
)

// finish stops profiling and flushes the tracer.
func finish(stderr io.Writer) {
	if err := profSession.Stop(); err != nil {
		fmt.Fprintf(stderr, "profile: %v\n", err)
	}
	profSession = nil
	if traceCleanup != nil {
		traceCleanup()
		traceCleanup = nil
	}
}

func startProfiling(cmd *cobra.Command) error {
	pf := cmd.Root().PersistentFlags()
	var cfg prof.Config
	cfg.CPU, _ = pf.GetString("cpu-profile")
	cfg.Mem, _ = pf.GetString("mem-profile")
	cfg.Trace, _ = pf.GetString("runtime-trace")
	if !cfg.Enabled() {
		return nil
	}
	s, err := prof.Start(cfg)
	if err != nil {
		return err
	}
	profSession = s
	return nil
}

// main runs the root command; any error is rendered to stderr and the process
// exits with status 1.
func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	err := rootCmd.ExecuteContext(ctx)
	finish(stderr)
	if err != nil {
		format, _ := rootCmd.PersistentFlags().GetString("error-format")
		if format == "json" {
			printErrorJSON(stderr, err)
		} else {
			printError(stderr, err, !color.NoColor)
		}
		return 1
	}
	return 0
}

func setupColor(cmd *cobra.Command) error {
	value, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	mode, err := readToggle("--color", value)
	if err != nil {
		return err
	}
	color.NoColor = !mode.enabled(isTerminal(os.Stderr))
	return nil
}

func quiet(cmd *cobra.Command) bool {
	q, err := cmd.Root().PersistentFlags().GetBool("quiet")
	return err == nil && q
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd())) // #nosec G115 -- file descriptors fit in int
}
