// Package all registers every built-in backend.
package all

import (
	_ "demomark/internal/backend/gogen"
	_ "demomark/internal/backend/html"
	_ "demomark/internal/backend/jsonout"
)
