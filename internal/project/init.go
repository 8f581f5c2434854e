package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrAlreadyInitialized is returned by Init when demomark.toml exists.
var ErrAlreadyInitialized = errors.New("project already initialized")

// Init writes a starter manifest and an example page into dir, creating dir
// if needed. It returns the created files relative to dir.
func Init(dir, name string) ([]string, error) {
	if st, err := os.Stat(dir); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory %q: %w", dir, err)
		}
	} else if !st.IsDir() {
		return nil, fmt.Errorf("%q is not a directory", dir)
	}

	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "demomark-docs"
	}

	manifestPath := filepath.Join(dir, ManifestName)
	if _, err := os.Stat(manifestPath); err == nil {
		return nil, fmt.Errorf("%w: %s exists", ErrAlreadyInitialized, manifestPath)
	}
	if err := os.WriteFile(manifestPath, []byte(defaultManifest(name)), 0o600); err != nil {
		return nil, fmt.Errorf("failed to write manifest: %w", err)
	}
	created := []string{ManifestName}

	example := filepath.Join("docs", "example.md")
	examplePath := filepath.Join(dir, example)
	if _, err := os.Stat(examplePath); errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(examplePath), 0o755); err != nil {
			return nil, err
		}
		if err := os.WriteFile(examplePath, []byte(exampleDoc), 0o600); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", example, err)
		}
		created = append(created, example)
	}
	return created, nil
}

func defaultManifest(name string) string {
	return fmt.Sprintf(`# demomark project manifest
[package]
name = %q

[output]
dir = %q
backend = %q
# package = "docs"
# view_import = "example.com/ui/view"

[compile]
demo_tag = "demo"
front_matter = true

[[page]]
path = "docs/example.md"
`, name, DefaultOutputDir, DefaultBackend)
}

const exampleDoc = "---\n" +
	"title: Example\n" +
	"description: A page with one demo.\n" +
	"---\n" +
	"# Example\n" +
	"\n" +
	"Text around a demo renders as *regular* markdown.\n" +
	"\n" +
	"```demo\n" +
	"return view.Text(\"Hello from Demo1\")\n" +
	"```\n" +
	"\n" +
	"Plain code fences stay code:\n" +
	"\n" +
	"```go\n" +
	"fmt.Println(\"not a demo\")\n" +
	"```\n"
