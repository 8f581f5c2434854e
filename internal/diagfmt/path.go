package diagfmt

import (
	"path/filepath"
	"strings"

	"demomark/internal/source"
)

const autoPathLimit = 40

func displayPath(fs *source.FileSet, id source.FileID, mode PathMode) string {
	f := fs.Get(id)
	switch mode {
	case PathModeAbsolute:
		if f.Flags&source.FileVirtual != 0 {
			return f.Path
		}
		if abs, err := filepath.Abs(f.Path); err == nil {
			return filepath.ToSlash(abs)
		}
		return f.Path
	case PathModeRelative:
		return fs.DisplayPath(id)
	case PathModeBasename:
		return filepath.Base(f.Path)
	default:
		// короткие пути как есть, длинные абсолютные сокращаем
		if len(f.Path) > autoPathLimit && (filepath.IsAbs(f.Path) || strings.HasPrefix(f.Path, "/")) {
			return filepath.Base(f.Path)
		}
		return f.Path
	}
}
