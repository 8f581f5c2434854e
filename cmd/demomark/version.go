package main

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"demomark/internal/backend"
	"demomark/internal/version"
)

type versionOptions struct {
	format   string
	showHash bool
	showDate bool
}

type versionPayload struct {
	Tool      string   `json:"tool"`
	Version   string   `json:"version"`
	GoVersion string   `json:"go_version"`
	Backends  []string `json:"backends"`
	GitCommit string   `json:"git_commit,omitempty"`
	GitMsg    string   `json:"git_message,omitempty"`
	BuildDate string   `json:"build_date,omitempty"`
}

func newVersionCmd() *cobra.Command {
	var (
		opts versionOptions
		full bool
	)
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show demomark version and build metadata",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.format = strings.ToLower(opts.format)
			if full {
				opts.showHash, opts.showDate = true, true
			}
			payload := collectVersion(opts)
			switch opts.format {
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(payload)
			case "pretty":
				renderVersionPretty(cmd.OutOrStdout(), payload)
				return nil
			default:
				return fmt.Errorf("unsupported format %q (must be pretty or json)", opts.format)
			}
		},
	}
	cmd.Flags().StringVar(&opts.format, "format", "pretty", "output format (pretty|json)")
	cmd.Flags().BoolVar(&opts.showHash, "hash", false, "include git commit hash and message")
	cmd.Flags().BoolVar(&opts.showDate, "date", false, "include build timestamp")
	cmd.Flags().BoolVar(&full, "full", false, "show all build metadata")
	return cmd
}

func collectVersion(opts versionOptions) versionPayload {
	v := strings.TrimSpace(version.Version)
	if v == "" {
		v = "dev"
	}
	p := versionPayload{
		Tool:      "demomark",
		Version:   v,
		GoVersion: runtime.Version(),
		Backends:  backend.Names(),
	}
	if opts.showHash {
		p.GitCommit = valueOrUnknown(version.GitCommit)
		p.GitMsg = valueOrUnknown(version.GitMessage)
	}
	if opts.showDate {
		p.BuildDate = valueOrUnknown(version.BuildDate)
	}
	return p
}

func renderVersionPretty(out io.Writer, p versionPayload) {
	fmt.Fprintf(out, "demomark %s (%s)\n", version.Colored(p.Version), p.GoVersion)
	fmt.Fprintf(out, "backends: %s\n", strings.Join(p.Backends, ", "))
	if p.GitCommit != "" {
		fmt.Fprintf(out, "commit:   %s %s\n", p.GitCommit, p.GitMsg)
	}
	if p.BuildDate != "" {
		fmt.Fprintf(out, "built:    %s\n", p.BuildDate)
	}
}

func valueOrUnknown(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "unknown"
	}
	return s
}
