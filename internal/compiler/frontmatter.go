package compiler

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"
)

const fmDelim = "---"

// splitFrontMatter detects a YAML header at the top of content. The header
// lines are replaced by empty lines so line numbers in the rest of the
// document stay unchanged. A "---" first line followed by a blank line is a
// thematic break, not a header, and so is a header that does not decode to a
// YAML mapping.
func splitFrontMatter(content []byte) (body []byte, meta map[string]string, headerLines int, err error) {
	lines := strings.SplitAfter(string(content), "\n")
	if len(lines) < 2 || strings.TrimRight(lines[0], "\n") != fmDelim || strings.TrimSpace(lines[1]) == "" {
		return content, nil, 0, nil
	}
	end := -1
	for i := 1; i < len(lines); i++ {
		l := strings.TrimRight(lines[i], "\n")
		if l == fmDelim || l == "..." {
			end = i
			break
		}
	}
	if end < 0 {
		return content, nil, 0, nil
	}

	header := strings.Join(lines[:end+1], "")
	if !strings.HasSuffix(header, "\n") {
		header += "\n"
	}
	// adrg/frontmatter ожидает закрывающий "---"
	if strings.TrimRight(lines[end], "\n") == "..." {
		header = strings.Join(lines[:end], "") + fmDelim + "\n"
	}

	var decoded any
	if _, err := frontmatter.Parse(strings.NewReader(header), &decoded); err != nil {
		return nil, nil, end + 1, fmt.Errorf("invalid front matter: %w", err)
	}
	raw, ok := asMap(decoded)
	if !ok {
		// не отображение: это обычный markdown (break, paragraph, break)
		return content, nil, 0, nil
	}

	var buf bytes.Buffer
	buf.Grow(len(content))
	for i := 0; i <= end; i++ {
		if strings.HasSuffix(lines[i], "\n") {
			buf.WriteByte('\n')
		}
	}
	for _, l := range lines[end+1:] {
		buf.WriteString(l)
	}
	return buf.Bytes(), flattenMeta(raw), end + 1, nil
}

// asMap accepts the mapping shapes YAML decoders produce for a header.
func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	}
	return nil, false
}

// flattenMeta keeps scalar values as strings.
func flattenMeta(raw map[string]any) map[string]string {
	if len(raw) == 0 {
		return nil
	}
	meta := make(map[string]string, len(raw))
	for k, v := range raw {
		switch v := v.(type) {
		case string:
			meta[k] = v
		case bool, int, int64, uint64, float64:
			meta[k] = fmt.Sprint(v)
		}
	}
	return meta
}
