package utils

import (
	"regexp"
	"strings"
)

var (
	// Characters invalid in directory names on most filesystems
	invalidDirChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	// Whitespace runs to collapse
	whitespaceChars = regexp.MustCompile(`[\r\n\t ]+`)
)

// SanitizeDirName turns a course shortname into a safe staging directory
// name component. Invalid filesystem characters are dropped, whitespace
// runs collapse to a single underscore, and the result is length-capped.
// An empty result falls back to "course".
func SanitizeDirName(name string) string {
	name = strings.TrimSpace(name)
	name = invalidDirChars.ReplaceAllString(name, "")
	name = whitespaceChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")

	if len(name) > 80 {
		name = strings.Trim(name[:80], "._")
	}

	if name == "" {
		name = "course"
	}

	return name
}
