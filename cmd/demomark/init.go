package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"demomark/internal/project"
)

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Create demomark.toml and an example page",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runInit,
	}
	cmd.Flags().String("name", "", "project name (defaults to the directory name)")
	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	name, _ := cmd.Flags().GetString("name")
	if name == "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return err
		}
		name = filepath.Base(abs)
	}

	created, err := project.Init(dir, name)
	if err != nil {
		return err
	}
	if quiet(cmd) {
		return nil
	}
	out := cmd.OutOrStdout()
	for _, f := range created {
		fmt.Fprintf(out, "created %s\n", filepath.Join(dir, f))
	}
	fmt.Fprintf(out, "run 'demomark build %s' to generate pages\n", dir)
	return nil
}
