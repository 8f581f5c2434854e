package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"demomark/internal/compiler"
	"demomark/internal/diagfmt"
)

func newParseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <file.md>",
		Short: "Parse a markdown document and print its blocks",
		Args:  cobra.ExactArgs(1),
		RunE:  runParse,
	}
	cmd.Flags().String("format", "pretty", "output format (pretty|json)")
	cmd.Flags().Bool("front-matter", false, "read a leading --- block as a YAML header")
	return cmd
}

func runParse(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unknown format %q (expected pretty|json)", format)
	}

	frontMatter, _ := cmd.Flags().GetBool("front-matter")
	res, err := compiler.CompileFile(cmd.Context(), args[0], compiler.Options{FrontMatter: frontMatter})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if format == "json" {
		return diagfmt.FormatBlocksJSON(out, res.Blocks)
	}
	if len(res.Meta) > 0 {
		keys := make([]string, 0, len(res.Meta))
		for k := range res.Meta {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(out, "%s: %s\n", k, res.Meta[k])
		}
		fmt.Fprintln(out)
	}
	return diagfmt.FormatBlocksPretty(out, args[0], res.Blocks)
}
