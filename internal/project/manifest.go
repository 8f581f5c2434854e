package project

import (
	"errors"
	"fmt"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	DefaultOutputDir = "gen"
	DefaultBackend   = "go"
	PageSuffix       = "MdPage"
)

var (
	// ErrPackageSectionMissing indicates that [package] is missing.
	ErrPackageSectionMissing = errors.New("missing [package]")
	// ErrPackageNameMissing indicates that [package].name is missing.
	ErrPackageNameMissing = errors.New("missing [package].name")
	// ErrNoPages indicates a manifest without [[page]] entries.
	ErrNoPages = errors.New("no [[page]] entries")
	// ErrDuplicatePage indicates two pages resolving to the same name.
	ErrDuplicatePage = errors.New("duplicate page name")
	// ErrPageNotFound indicates a page whose document does not exist.
	ErrPageNotFound = errors.New("page source not found")
	// ErrInvalidPageName indicates a name that cannot be a component name.
	ErrInvalidPageName = errors.New("invalid page name")
)

// Config mirrors demomark.toml.
type Config struct {
	Package PackageConfig `toml:"package"`
	Output  OutputConfig  `toml:"output"`
	Compile CompileConfig `toml:"compile"`
	Pages   []PageConfig  `toml:"page"`
}

type PackageConfig struct {
	Name string `toml:"name"`
}

type OutputConfig struct {
	Dir        string `toml:"dir"`
	Package    string `toml:"package"`
	ViewImport string `toml:"view_import"`
	Backend    string `toml:"backend"`
}

type CompileConfig struct {
	DemoTag string `toml:"demo_tag"`
	// FrontMatter reads a leading "---" block as a YAML header.
	FrontMatter bool `toml:"front_matter"`
}

type PageConfig struct {
	Name string `toml:"name"`
	Path string `toml:"path"`
}

// Manifest is a loaded project.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Page is a resolved [[page]] entry.
type Page struct {
	Name string
	Path string // absolute
	Rel  string // relative to the project root, slash-separated
}

// Load finds demomark.toml from startDir upwards and loads it.
func Load(startDir string) (*Manifest, bool, error) {
	path, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	m, err := LoadFile(path)
	if err != nil {
		return nil, true, err
	}
	return m, true, nil
}

// LoadFile parses a manifest and fills defaults.
func LoadFile(path string) (*Manifest, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("package") {
		return nil, fmt.Errorf("%s: %w", path, ErrPackageSectionMissing)
	}
	if !meta.IsDefined("package", "name") || strings.TrimSpace(cfg.Package.Name) == "" {
		return nil, fmt.Errorf("%s: %w", path, ErrPackageNameMissing)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	if len(cfg.Pages) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoPages)
	}

	if cfg.Output.Dir == "" {
		cfg.Output.Dir = DefaultOutputDir
	}
	if cfg.Output.Backend == "" {
		cfg.Output.Backend = DefaultBackend
	}
	if cfg.Output.Package == "" {
		cfg.Output.Package = packageIdent(cfg.Package.Name)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &Manifest{Path: abs, Root: filepath.Dir(abs), Config: cfg}, nil
}

// OutputDir returns the absolute output directory.
func (m *Manifest) OutputDir() string {
	dir := filepath.FromSlash(m.Config.Output.Dir)
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(m.Root, dir)
}

// Pages resolves every [[page]] entry: names are derived where missing,
// validated, and checked for duplicates; documents must exist.
func (m *Manifest) Pages() ([]Page, error) {
	pages := make([]Page, 0, len(m.Config.Pages))
	seen := make(map[string]string, len(m.Config.Pages))
	for i, pc := range m.Config.Pages {
		rel := filepath.ToSlash(filepath.Clean(filepath.FromSlash(strings.TrimSpace(pc.Path))))
		if pc.Path == "" || rel == "." {
			return nil, fmt.Errorf("%s: [[page]] #%d: missing path", m.Path, i+1)
		}
		abs := filepath.Join(m.Root, filepath.FromSlash(rel))
		if st, err := os.Stat(abs); err != nil || st.IsDir() {
			return nil, fmt.Errorf("%s: %w: %s", m.Path, ErrPageNotFound, rel)
		}

		name := strings.TrimSpace(pc.Name)
		if name == "" {
			name = DerivePageName(rel)
		}
		if !token.IsIdentifier(name) || !token.IsExported(name) {
			return nil, fmt.Errorf("%s: %w %q for %s", m.Path, ErrInvalidPageName, name, rel)
		}
		if prev, dup := seen[name]; dup {
			return nil, fmt.Errorf("%s: %w %q: %s and %s", m.Path, ErrDuplicatePage, name, prev, rel)
		}
		seen[name] = rel
		pages = append(pages, Page{Name: name, Path: abs, Rel: rel})
	}
	return pages, nil
}

var titleCaser = cases.Title(language.Und)

// DerivePageName builds a component name from a document path:
// "docs/button/mod.md" -> "ButtonMdPage", "docs/date-picker.md" -> "DatePickerMdPage".
// Files named mod or index take the name of their directory.
func DerivePageName(rel string) string {
	rel = filepath.ToSlash(rel)
	base := rel[strings.LastIndex(rel, "/")+1:]
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if lower := strings.ToLower(stem); lower == "mod" || lower == "index" {
		if dir := strings.TrimSuffix(rel, "/"+base); dir != rel && dir != "" {
			stem = dir[strings.LastIndex(dir, "/")+1:]
		}
	}

	words := strings.FieldsFunc(stem, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	var sb strings.Builder
	for _, w := range words {
		sb.WriteString(titleCaser.String(w))
	}
	name := sb.String()
	if name == "" || !unicode.IsLetter([]rune(name)[0]) {
		name = "Doc" + name
	}
	return name + PageSuffix
}

// packageIdent turns a project name into a Go package name.
func packageIdent(name string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(name) {
		if r < 0x80 && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			sb.WriteRune(r)
		}
	}
	s := sb.String()
	if s == "" || unicode.IsDigit(rune(s[0])) {
		s = "pages" + s
	}
	return s
}
