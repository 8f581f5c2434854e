package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"demomark/internal/backend"
	"demomark/internal/backend/gogen"
	"demomark/internal/compiler"
	"demomark/internal/demo"
	"demomark/internal/observ"
	"demomark/internal/project"
)

func newCompileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile <file.md>",
		Short: "Compile one document into a page component",
		Long: `Compile one markdown document without a project manifest. The generated
page is written to stdout unless --output is given.`,
		Args: cobra.ExactArgs(1),
		RunE: runCompile,
	}
	cmd.Flags().String("backend", project.DefaultBackend, fmt.Sprintf("output backend %v", backend.Names()))
	cmd.Flags().String("tag", "", "info string of demo fences (default \"demo\")")
	cmd.Flags().String("name", "", "component name (derived from the file name by default)")
	cmd.Flags().String("package", "", "Go package of the generated file")
	cmd.Flags().String("view-import", "", "import path of the view API")
	cmd.Flags().StringP("output", "o", "", "write the page to this file")
	cmd.Flags().Bool("front-matter", false, "read a leading --- block as a YAML header")
	return cmd
}

func runCompile(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	backendName, _ := flags.GetString("backend")
	tag, _ := flags.GetString("tag")
	name, _ := flags.GetString("name")
	pkg, _ := flags.GetString("package")
	viewImport, _ := flags.GetString("view-import")
	output, _ := flags.GetString("output")
	frontMatter, _ := flags.GetBool("front-matter")

	path := args[0]
	if name == "" {
		name = project.DerivePageName(filepath.Base(path))
	}

	be, err := backend.Lookup(backendName, backend.Options{Package: pkg, ViewImport: viewImport})
	if err != nil {
		return err
	}
	opts := compiler.Options{DemoTag: tag, FrontMatter: frontMatter}
	if be.Name() == gogen.Name {
		opts.Validator = demo.GoValidator{}
	}

	showTimings, _ := cmd.Root().PersistentFlags().GetBool("timings")
	timer := observ.NewTimer()
	if showTimings {
		defer func() {
			fmt.Fprintln(cmd.ErrOrStderr(), "timings:")
			_ = timer.WriteSummary(cmd.ErrOrStderr())
		}()
	}

	var res *compiler.Result
	err = timer.Track("compile", func() (string, error) {
		var cerr error
		res, cerr = compiler.CompileFile(cmd.Context(), path, opts)
		if cerr != nil {
			return "", cerr
		}
		return res.Describe(), nil
	})
	if err != nil {
		return err
	}

	var data []byte
	err = timer.Track("generate", func() (string, error) {
		var gerr error
		data, gerr = be.Generate(backend.Page{
			Name:   name,
			Source: filepath.ToSlash(path),
			Meta:   res.Meta,
			Body:   res.Body,
			Demos:  res.Demos,
		})
		return fmt.Sprintf("%d bytes", len(data)), gerr
	})
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	return timer.Track("write", func() (string, error) {
		if output == "" {
			_, werr := cmd.OutOrStdout().Write(data)
			return "stdout", werr
		}
		// #nosec G306 -- generated sources are meant to be read by other tools
		if werr := os.WriteFile(output, data, 0o644); werr != nil {
			return "", fmt.Errorf("failed to write %s: %w", output, werr)
		}
		if !quiet(cmd) {
			fmt.Fprintf(cmd.ErrOrStderr(), "compiled %s -> %s (%s)\n", path, output, res.Describe())
		}
		return output, nil
	})
}
