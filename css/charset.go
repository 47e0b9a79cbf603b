package css

import (
	"bytes"
	"regexp"
)

var (
	utf8BOM = []byte{0xEF, 0xBB, 0xBF}

	// @charset must be the very first thing in a stylesheet and is written
	// literally with double quotes.
	charsetPattern = regexp.MustCompile(`^@charset "([^"]*)";`)
)

// DetectCharset returns the encoding label declared by a leading @charset
// rule, "utf-8" when data starts with UTF-8 BOM, or empty string.
func DetectCharset(data []byte) string {
	if bytes.HasPrefix(data, utf8BOM) {
		return "utf-8"
	}
	if m := charsetPattern.FindSubmatch(data); m != nil {
		return string(m[1])
	}
	return ""
}
