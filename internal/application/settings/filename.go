package settings

import (
	"path/filepath"
	"regexp"
	"strings"
)

var (
	filenameSeparators = regexp.MustCompile(`[\s()/\\]+`)
	hyphenRuns         = regexp.MustCompile(`-{2,}`)
)

// SanitizeFilename makes a report title usable as a file name.
func SanitizeFilename(name string) string {
	name = filenameSeparators.ReplaceAllString(strings.TrimSpace(name), "-")
	name = hyphenRuns.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-")
	if name == "" {
		return "report"
	}
	return name
}

// OutputPath returns {dir}/{sanitized name}.{ext}.
func OutputPath(dir, name, ext string) string {
	return filepath.Join(dir, SanitizeFilename(name)+"."+ext)
}
