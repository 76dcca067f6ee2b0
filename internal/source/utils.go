package source

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// removeBOM срезает UTF-8 BOM, который оставляют некоторые экспортёры.
func removeBOM(content []byte) ([]byte, bool) {
	if len(content) < 3 {
		return content, false
	}

	if content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		return content[3:], true
	}

	return content, false
}

// clean trims and NFC-normalises names and labels so that equal-looking
// names compare equal in filters and code composition.
func clean(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// DocumentName derives the top-level folder name from a file path:
// the base name up to the first dot.
func DocumentName(path string) string {
	base := filepath.Base(path)
	if i := strings.IndexByte(base, '.'); i >= 0 {
		return base[:i]
	}
	return base
}
