package adaptive

import (
	"fmt"
	"path/filepath"
	"regexp"
)

// DefaultPattern selects CSS, Less and Sass files.
const DefaultPattern = `\.(css|less|s[ac]ss)$`

// Matcher decides which files are stylesheets to be processed.
type Matcher struct {
	re *regexp.Regexp
}

// NewMatcher compiles file name pattern, empty pattern means DefaultPattern.
func NewMatcher(pattern string) (*Matcher, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("bad stylesheet pattern %q: %w", pattern, err)
	}
	return &Matcher{re: re}, nil
}

// Match reports whether file name (only the base part is checked) matches.
func (m *Matcher) Match(path string) bool {
	return m.re.MatchString(filepath.Base(path))
}

func (m *Matcher) String() string {
	return m.re.String()
}
