package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"demomark/internal/driver"
)

func newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean [dir|demomark.toml]",
		Short: "Remove generated pages and the page cache",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runClean,
	}
	cmd.Flags().Bool("cache-only", false, "keep the output directory, drop only the cache")
	return cmd
}

func runClean(cmd *cobra.Command, args []string) error {
	cacheOnly, _ := cmd.Flags().GetBool("cache-only")
	out := cmd.OutOrStdout()

	if !cacheOnly {
		target := ""
		if len(args) == 1 {
			target = args[0]
		}
		manifest, err := loadManifest(target)
		if err != nil {
			return err
		}
		outDir := manifest.OutputDir()
		if err := removeDir(outDir); err != nil {
			return err
		}
		if rel, relErr := filepath.Rel(manifest.Root, outDir); relErr == nil {
			outDir = rel
		}
		fmt.Fprintf(out, "removed %s\n", outDir)
	}

	cache, err := driver.OpenCache("demomark")
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	if err := cache.DropAll(); err != nil {
		return fmt.Errorf("failed to drop cache: %w", err)
	}
	fmt.Fprintf(out, "dropped cache %s\n", cache.Dir())
	return nil
}

func removeDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to stat %q: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%q is not a directory", dir)
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove %q: %w", dir, err)
	}
	return nil
}
