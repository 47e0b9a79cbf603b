package config

import "strings"

// CleanFileName removes characters not allowed in file names.
func CleanFileName(in string) string {
	out := strings.Map(func(sym rune) rune {
		if sym == 0 || strings.ContainsRune(forbiddenNameChars, sym) {
			return -1
		}
		return sym
	}, in)
	out = strings.TrimLeft(out, leadingNameChars)
	if len(out) == 0 {
		out = "_bad_file_name_"
	}
	return out
}
