package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestDerivePageName(t *testing.T) {
	tests := map[string]string{
		"docs/button/mod.md":    "ButtonMdPage",
		"docs/button/index.md":  "ButtonMdPage",
		"docs/date-picker.md":   "DatePickerMdPage",
		"docs/auto_complete.md": "AutoCompleteMdPage",
		"docs/HTML.md":          "HtmlMdPage",
		"mod.md":                "ModMdPage",
		"2fa.md":                "Doc2faMdPage",
	}
	for in, want := range tests {
		assert.Equal(t, want, DerivePageName(in), in)
	}
}

func TestLoadManifest(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ManifestName), `
[package]
name = "UI Docs"

[output]
view_import = "example.com/ui/view"

[compile]
demo_tag = "example"

[[page]]
path = "docs/button/mod.md"

[[page]]
name = "CardPage"
path = "docs/card.md"
`)
	writeFile(t, filepath.Join(root, "docs", "button", "mod.md"), "# Button\n")
	writeFile(t, filepath.Join(root, "docs", "card.md"), "# Card\n")

	sub := filepath.Join(root, "docs", "button")
	m, ok, err := Load(sub)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, root, m.Root)
	assert.Equal(t, "uidocs", m.Config.Output.Package)
	assert.Equal(t, DefaultBackend, m.Config.Output.Backend)
	assert.Equal(t, "example", m.Config.Compile.DemoTag)
	assert.False(t, m.Config.Compile.FrontMatter, "front matter is opt-in")
	assert.Equal(t, filepath.Join(root, DefaultOutputDir), m.OutputDir())

	pages, err := m.Pages()
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, Page{Name: "ButtonMdPage", Path: filepath.Join(root, "docs", "button", "mod.md"), Rel: "docs/button/mod.md"}, pages[0])
	assert.Equal(t, "CardPage", pages[1].Name)
}

func TestLoadWithoutManifest(t *testing.T) {
	m, ok, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, m)
}

func TestLoadFileErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    error
	}{
		{"no package", "[[page]]\npath = \"a.md\"\n", ErrPackageSectionMissing},
		{"no name", "[package]\n[[page]]\npath = \"a.md\"\n", ErrPackageNameMissing},
		{"no pages", "[package]\nname = \"x\"\n", ErrNoPages},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), ManifestName)
			writeFile(t, path, tt.content)
			_, err := LoadFile(path)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	path := filepath.Join(t.TempDir(), ManifestName)
	writeFile(t, path, "[package]\nname = \"x\"\ncolour = \"red\"\n[[page]]\npath = \"a.md\"\n")
	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "colour")

	writeFile(t, path, "[package\n")
	_, err = LoadFile(path)
	assert.Error(t, err)
}

func TestPagesErrors(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a", "mod.md"), "x")
	writeFile(t, filepath.Join(root, "b", "a.md"), "x")

	m := &Manifest{Path: filepath.Join(root, ManifestName), Root: root}

	m.Config.Pages = []PageConfig{{Path: "a/mod.md"}, {Path: "b/a.md"}}
	_, err := m.Pages()
	assert.True(t, errors.Is(err, ErrDuplicatePage), "%v", err)

	m.Config.Pages = []PageConfig{{Path: "missing.md"}}
	_, err = m.Pages()
	assert.ErrorIs(t, err, ErrPageNotFound)

	m.Config.Pages = []PageConfig{{Path: "a"}}
	_, err = m.Pages()
	assert.ErrorIs(t, err, ErrPageNotFound)

	m.Config.Pages = []PageConfig{{Name: "lowerPage", Path: "a/mod.md"}}
	_, err = m.Pages()
	assert.ErrorIs(t, err, ErrInvalidPageName)

	m.Config.Pages = []PageConfig{{Path: ""}}
	_, err = m.Pages()
	assert.Error(t, err)
}

func TestInitFiles(t *testing.T) {
	dir := t.TempDir()
	created, err := Init(dir, "my-docs")
	require.NoError(t, err)
	assert.Equal(t, []string{ManifestName, filepath.Join("docs", "example.md")}, created)

	m, err := LoadFile(filepath.Join(dir, ManifestName))
	require.NoError(t, err)
	assert.Equal(t, "mydocs", m.Config.Output.Package)
	assert.True(t, m.Config.Compile.FrontMatter, "the starter page has a YAML header")
	pages, err := m.Pages()
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, "ExampleMdPage", pages[0].Name)

	_, err = Init(dir, "my-docs")
	assert.ErrorIs(t, err, ErrAlreadyInitialized)
}
