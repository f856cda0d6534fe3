package domain

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	htmlTagRegex     = regexp.MustCompile(`<[^>]*>`)
	controlCharRegex = regexp.MustCompile(`[\x00-\x1F\x7F]`)
)

// SanitizePlayerName cleans a display name. Empty results stay empty so the
// caller can fall back to a default or keep the current name.
func SanitizePlayerName(name string) string {
	name = htmlTagRegex.ReplaceAllString(name, "")
	name = controlCharRegex.ReplaceAllString(name, "")
	name = strings.TrimSpace(name)

	if utf8.RuneCountInString(name) > MaxPlayerNameLength {
		runes := []rune(name)
		name = strings.TrimSpace(string(runes[:MaxPlayerNameLength]))
	}
	return name
}
