// Package sanitize maps arbitrary Gopher selector paths to collision-resistant,
// length-bounded local file paths.
package sanitize

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"
)

// maxBasename is the maximum length, in bytes, of a sanitized filename.
const maxBasename = 63

// safeChar reports whether r is allowed to appear verbatim in a sanitized
// filename.
func safeChar(r rune) bool {
	switch {
	case r >= 'A' && r <= 'Z':
		return true
	case r >= 'a' && r <= 'z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '.' || r == '-':
		return true
	}
	return false
}

// rewrite replaces every character of s not in [A-Za-z0-9.-] with '_'.
func rewrite(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if safeChar(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// splitExt splits s into a base and an extension. The extension is the
// substring from (and including) the last '.', or empty if s has no '.'.
func splitExt(s string) (base, ext string) {
	i := strings.LastIndexByte(s, '.')
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i:]
}

// hashSuffix returns the first 8 hex characters of SHA-256(fullPath).
func hashSuffix(fullPath string) string {
	sum := sha256.Sum256([]byte(fullPath))
	return hex.EncodeToString(sum[:])[:8]
}

// Sanitize maps fullPath to a safe local path under downloadRoot:
// characters outside [A-Za-z0-9.-] become '_'; names longer than 63 bytes
// are truncated and suffixed with an 8-hex-character SHA-256 digest of the
// original fullPath so that truncation collisions remain vanishingly
// unlikely.
func Sanitize(downloadRoot, fullPath string) string {
	s := rewrite(fullPath)

	if len(s) <= maxBasename {
		return filepath.Join(downloadRoot, s)
	}

	base, ext := splitExt(s)
	h := hashSuffix(fullPath)
	if len(h)+len(ext) > maxBasename {
		// An extension too long to fit beside the hash is not kept apart.
		base, ext = s, ""
	}

	budget := maxBasename - len(h) - len(ext)
	if budget < 0 {
		budget = 0
	}
	if budget > len(base) {
		budget = len(base)
	}

	name := base[:budget] + h + ext
	return filepath.Join(downloadRoot, name)
}
