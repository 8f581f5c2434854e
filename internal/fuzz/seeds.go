package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB
	maxFuzzInput = 1 << 16
)

var inlineSeeds = []string{
	"",
	"# Title\n",
	"Some *text* and **bold** and `code`.\n",
	"1. one\n2. two\n\n- a\n- b\n",
	"```demo\nreturn view.Text(\"x\")\n```\n",
	"```demo\nnever closed\n",
	"~~~demo extra\nA\n~~~\n",
	"[link](https://example.com) [broken](\n",
	"---\ntitle: x\n---\n# After front matter\n",
	"<div>\nraw\n</div>\n",
	"***\n___\n",
	"***x***\n",
}

func addCorpusSeeds(f *testing.F) {
	for _, s := range inlineSeeds {
		f.Add([]byte(s))
	}
	addTestdataSeeds(f)
}

// addTestdataSeeds adds every *.md file under testdata/docs.
func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("testdata", "docs")
	if _, err := os.Stat(root); err != nil {
		return
	}
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() || filepath.Ext(path) != ".md" {
			return nil
		}
		// #nosec G304 -- path comes from the testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}

func clampInput(input []byte) []byte {
	if len(input) > maxFuzzInput {
		return append([]byte(nil), input[:maxFuzzInput]...)
	}
	return append([]byte(nil), input...)
}
