package main

import (
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"demomark/internal/buildpipeline"
	"demomark/internal/driver"
	"demomark/internal/trace"
)

func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [dir|demomark.toml]",
		Short: "Build every page of a project",
		Long: `Build compiles every [[page]] of demomark.toml and writes one file per page
into the output directory. Nothing is written if any page fails.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runBuild,
	}
	cmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	cmd.Flags().Int("jobs", 0, "max parallel pages (0 = GOMAXPROCS)")
	cmd.Flags().Bool("no-cache", false, "do not read or write the page cache")
	cmd.Flags().String("backend", "", "override [output].backend")
	cmd.Flags().String("tag", "", "override [compile].demo_tag")
	cmd.Flags().StringP("out-dir", "o", "", "override [output].dir")
	return cmd
}

func runBuild(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	uiValue, _ := flags.GetString("ui")
	jobs, _ := flags.GetInt("jobs")
	noCache, _ := flags.GetBool("no-cache")
	backendName, _ := flags.GetString("backend")
	tag, _ := flags.GetString("tag")
	outDir, _ := flags.GetString("out-dir")
	showTimings, _ := cmd.Root().PersistentFlags().GetBool("timings")

	uiMode, err := readToggle("--ui", uiValue)
	if err != nil {
		return err
	}
	if jobs < 0 {
		return fmt.Errorf("--jobs must be >= 0, got %d", jobs)
	}

	target := ""
	if len(args) == 1 {
		target = args[0]
	}
	manifest, pages, err := loadProject(target)
	if err != nil {
		return err
	}

	var cache *driver.Cache
	if !noCache {
		cache, err = driver.OpenCache("demomark")
		if err != nil {
			// без кэша сборка всё равно работает
			trace.Point(trace.FromContext(cmd.Context()), trace.ScopeDriver, "cache_open_failed", err.Error(), trace.CurrentSpan(cmd.Context()).SpanID)
			cache = nil
		}
	}

	if outDir != "" {
		if outDir, err = filepath.Abs(outDir); err != nil {
			return err
		}
	}
	req := &buildpipeline.BuildRequest{
		Manifest:  manifest,
		Pages:     pages,
		OutputDir: outDir,
		Backend:   backendName,
		DemoTag:   tag,
		Jobs:      jobs,
		Cache:     cache,
	}

	var result buildpipeline.BuildResult
	if !quiet(cmd) && shouldUseTUI(uiMode) {
		files := make([]string, len(pages))
		for i, p := range pages {
			files[i] = p.Rel
		}
		title := "build " + manifest.Config.Package.Name
		result, err = runBuildWithUI(cmd.Context(), cmd.OutOrStdout(), title, files, req)
	} else {
		result, err = buildpipeline.Build(cmd.Context(), req)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !quiet(cmd) {
		rel, relErr := filepath.Rel(manifest.Root, result.OutputDir)
		if relErr != nil {
			rel = result.OutputDir
		}
		fmt.Fprintf(out, "%s %d pages -> %s (%s, %d cached)\n",
			color.New(color.FgGreen, color.Bold).Sprint("built"),
			len(result.Pages), rel, result.Backend, result.CacheHits())
	}
	if showTimings {
		printStageTimings(out, result.Timings)
	}
	return nil
}
