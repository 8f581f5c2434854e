package main

import (
	"fmt"
	"os"
	"path/filepath"

	"demomark/internal/project"
)

// loadManifest finds the manifest for a target: a directory to search
// upwards from, or the path of a demomark.toml.
func loadManifest(target string) (*project.Manifest, error) {
	if target == "" {
		target = "."
	}
	if st, err := os.Stat(target); err == nil && !st.IsDir() {
		m, err := project.LoadFile(target)
		if err != nil {
			return nil, &manifestError{err: err}
		}
		return m, nil
	}
	m, found, err := project.Load(target)
	if err != nil {
		return nil, &manifestError{err: err}
	}
	if !found {
		abs, _ := filepath.Abs(target)
		return nil, fmt.Errorf("no %s found in %s or its parents (run 'demomark init')", project.ManifestName, abs)
	}
	return m, nil
}

// loadProject loads the manifest and resolves its pages.
func loadProject(target string) (*project.Manifest, []project.Page, error) {
	m, err := loadManifest(target)
	if err != nil {
		return nil, nil, err
	}
	pages, err := m.Pages()
	if err != nil {
		return nil, nil, &manifestError{err: err}
	}
	return m, pages, nil
}
