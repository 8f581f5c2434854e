package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"demomark/internal/diag"
	"demomark/internal/source"
)

// TestPathModes проверяет различные режимы форматирования путей
func TestPathModes(t *testing.T) {
	fs := source.NewFileSetWithBase("/home/user/project")
	content := []byte("# Title\n\n```demo\nnever closed\n")
	fileID := fs.Add("/home/user/project/docs/button.md", content, 0)

	bag := diag.NewBag(10)
	bag.Add(diag.NewError(diag.MdUnterminatedFence, source.Span{File: fileID, Start: 9, End: 16}, "code fence is never closed"))

	tests := []struct {
		name     string
		mode     PathMode
		contains string
	}{
		{"Absolute path", PathModeAbsolute, "/home/user/project/docs/button.md:3:1"},
		{"Relative path", PathModeRelative, "docs/button.md:3:1"},
		{"Basename only", PathModeBasename, "button.md:3:1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Pretty(&buf, bag, fs, PrettyOpts{Context: 1, PathMode: tt.mode})
			output := buf.String()

			if !strings.Contains(output, tt.contains) {
				t.Errorf("Expected output to contain %q, got:\n%s", tt.contains, output)
			}
			if !strings.Contains(output, "ERROR MD1001: code fence is never closed") {
				t.Errorf("Expected header in output, got:\n%s", output)
			}
		})
	}
}

// TestPathModeAuto проверяет авто-режим выбора пути
func TestPathModeAuto(t *testing.T) {
	fs := source.NewFileSet()
	tests := []struct {
		path     string
		expected string
	}{
		{"test.md", "test.md:1:3"},
		{"/very/long/absolute/path/to/some/nested/directory/file.md", "file.md:1:3"},
	}
	for _, tt := range tests {
		fileID := fs.AddVirtual(tt.path, []byte("a [b](c\n"))
		bag := diag.NewBag(1)
		bag.Add(diag.NewError(diag.MdMalformedLink, source.Span{File: fileID, Start: 2, End: 7}, "bad link"))

		var buf bytes.Buffer
		Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeAuto})
		if !strings.HasPrefix(buf.String(), tt.expected) {
			t.Errorf("Expected output to start with %q, got:\n%s", tt.expected, buf.String())
		}
	}
}

func TestPrettyExcerpt(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("page.md", []byte("one\nsee [x](y for more\nthree\n"))
	bag := diag.NewBag(1)
	bag.Add(diag.NewError(diag.MdMalformedLink, source.Span{File: fileID, Start: 8, End: 14}, "bad link"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Context: 1, PathMode: PathModeBasename})

	want := "page.md:2:5: ERROR MD1002: bad link\n" +
		"1 | one\n" +
		"2 | see [x](y for more\n" +
		"  |     ^~~~~~\n" +
		"3 | three\n"
	if got := buf.String(); got != want {
		t.Errorf("unexpected output:\n%s\nwant:\n%s", got, want)
	}
}

func TestPrettyWideRunesAndTabs(t *testing.T) {
	fs := source.NewFileSet()
	// "日本" занимает 4 колонки, таб доходит до 4
	fileID := fs.AddVirtual("w.md", []byte("日本 [x](\n\tz\n"))
	bag := diag.NewBag(2)
	bag.Add(diag.NewError(diag.MdMalformedLink, source.Span{File: fileID, Start: 7, End: 11}, "wide"))
	bag.Add(diag.NewError(diag.MdMalformedLink, source.Span{File: fileID, Start: 13, End: 14}, "tab"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename})
	out := buf.String()
	if !strings.Contains(out, "1 | 日本 [x](\n  |      ^~~~\n") {
		t.Errorf("wide rune caret misplaced:\n%s", out)
	}
	if !strings.Contains(out, "2 |     z\n  |     ^\n") {
		t.Errorf("tab caret misplaced:\n%s", out)
	}
}

func TestPrettyNotesAndUnlocated(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("n.md", []byte("```demo\nx\n"))
	d := diag.NewError(diag.MdUnterminatedFence, source.Span{File: fileID, Start: 0, End: 7}, "never closed").
		WithNote(source.Span{}, "add a closing fence").
		WithNote(source.Span{File: fileID, Start: 8, End: 9}, "content starts here")

	bag := diag.NewBag(2)
	bag.Add(d)
	bag.Add(diag.NewError(diag.IOLoadFileError, source.Span{File: 7}, "open x.md: no such file"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{ShowNotes: true, PathMode: PathModeBasename})
	out := buf.String()
	for _, want := range []string{
		"  note: add a closing fence\n",
		"  note: n.md:2:1: content starts here\n",
		"\nERROR IO4001: open x.md: no such file\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in:\n%s", want, out)
		}
	}

	buf.Reset()
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename})
	if strings.Contains(buf.String(), "note:") {
		t.Error("notes must be hidden without ShowNotes")
	}
}

func TestPrettyColor(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("c.md", []byte("x\n"))
	bag := diag.NewBag(1)
	bag.Add(diag.NewError(diag.MdMalformedLink, source.Span{File: fileID, Start: 0, End: 1}, "m"))

	var plain, colored bytes.Buffer
	Pretty(&plain, bag, fs, PrettyOpts{})
	Pretty(&colored, bag, fs, PrettyOpts{Color: true})
	if strings.Contains(plain.String(), "\x1b[") {
		t.Error("plain output contains escape codes")
	}
	if !strings.Contains(colored.String(), "\x1b[") {
		t.Error("colored output has no escape codes")
	}
}
