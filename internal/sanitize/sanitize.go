// Package sanitize maps arbitrary titles to filesystem-safe path segments.
// The mapping is deterministic: destination paths derived from it must be
// reproducible across independent runs.
package sanitize

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"
)

const maxSegmentBytes = 120

// illegal characters on common filesystems, plus punctuation that tends to
// confuse shells and sync tools.
const illegalChars = `<>:"/\|?*.,`

// Segment converts a title into a single safe path segment. Illegal
// characters are dropped, separator and whitespace runs collapse to a single
// underscore, and overly long results are truncated with a short hash suffix
// so two distinct titles never collapse to the same segment.
func Segment(title string) string {
	var b strings.Builder

	lastSep := true // swallow leading separators

	for _, r := range title {
		switch {
		case strings.ContainsRune(illegalChars, r), unicode.IsControl(r):
			continue
		case unicode.IsSpace(r), r == '-', r == '_':
			if !lastSep {
				b.WriteByte('_')
				lastSep = true
			}
		default:
			b.WriteRune(r)
			lastSep = false
		}
	}

	segment := strings.Trim(b.String(), "._- ")
	if segment == "" {
		return "untitled_" + shortHash(title)
	}

	if len(segment) > maxSegmentBytes {
		segment = truncate(segment, maxSegmentBytes) + "_" + shortHash(title)
	}

	return segment
}

// truncate cuts s at the last rune boundary at or below n bytes.
func truncate(s string, n int) string {
	for n > 0 && !isRuneStart(s, n) {
		n--
	}

	return strings.Trim(s[:n], "._- ")
}

func isRuneStart(s string, i int) bool {
	if i >= len(s) {
		return true
	}

	return s[i]&0xC0 != 0x80
}

func shortHash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:4])
}
