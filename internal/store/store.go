// Package store persists fetched Gopher resources to local disk under a
// sanitized path.
package store

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/jrmhx/GopherIndexer/internal/logging"
	"github.com/jrmhx/GopherIndexer/internal/sanitize"
)

// StripTrailingTerminator removes a Gopher end-of-text marker from a type-0
// body: a trailing ".\r\n" or ".\n" is removed in full; otherwise a trailing
// lone "." is removed. Binary payloads are never passed through this function.
func StripTrailingTerminator(text string) string {
	if strings.HasSuffix(text, ".\r\n") {
		return text[:len(text)-3]
	}
	if strings.HasSuffix(text, ".\n") {
		return text[:len(text)-2]
	}
	if strings.HasSuffix(text, ".") {
		return text[:len(text)-1]
	}
	return text
}

// Write persists payload to the sanitized path for fullPath under root,
// creating any missing parent directories. It returns the number of bytes
// written on disk, or 0 on any I/O error (logged at severe level). Callers
// treat a 0 return as "did not count as a successful fetch".
func Write(root, fullPath string, payload []byte, log logging.Logger) int {
	safePath := sanitize.Sanitize(root, fullPath)

	if err := os.MkdirAll(filepath.Dir(safePath), 0o755); err != nil {
		if log != nil {
			log.Severe("could not create directories for " + safePath + ": " + err.Error())
		}
		return 0
	}

	if err := os.WriteFile(safePath, payload, 0o644); err != nil {
		if log != nil {
			log.Severe("could not write " + safePath + ": " + err.Error())
		}
		return 0
	}

	info, err := os.Stat(safePath)
	if err != nil {
		if log != nil {
			log.Severe("could not stat " + safePath + " after write: " + err.Error())
		}
		return 0
	}

	return int(info.Size())
}

// Path returns the sanitized local path Write would use for fullPath,
// without performing any I/O. Used by the indexer to record a file's path
// in the statistics aggregate after Write reported a nonzero size.
func Path(root, fullPath string) string {
	return sanitize.Sanitize(root, fullPath)
}
