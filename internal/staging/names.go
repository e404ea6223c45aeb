package staging

import (
	"regexp"
	"strings"
)

const maxNameLength = 120

var (
	unsafeChars    = regexp.MustCompile(`[<>:"/\\|?*]`)
	whitespaceRuns = regexp.MustCompile(`\s+`)
	splitPattern   = regexp.MustCompile(`^\s*([^\-–—]+?)\s*[\-–—]\s*(.+)$`)
)

// SanitizeFilename converts free text into a safe path component: forbidden
// characters become underscores, whitespace collapses to single spaces, the
// result is length-capped and never empty.
func SanitizeFilename(name string) string {
	s := unsafeChars.ReplaceAllString(name, "_")
	s = strings.Trim(strings.TrimSpace(s), ".")
	s = strings.TrimSpace(whitespaceRuns.ReplaceAllString(s, " "))
	if runes := []rune(s); len(runes) > maxNameLength {
		s = strings.TrimSpace(string(runes[:maxNameLength]))
	}
	if s == "" {
		return "untitled"
	}
	return s
}

// ParseArtistSong splits a display title into (artist, song) on the first
// hyphen, en dash, or em dash. Without a separator the channel stands in for
// the artist; artist may come back empty, song never does.
func ParseArtistSong(title, channel string) (string, string) {
	base := strings.TrimSpace(title)
	if base == "" {
		return strings.TrimSpace(channel), "untitled"
	}
	if m := splitPattern.FindStringSubmatch(base); m != nil {
		return SanitizeFilename(m[1]), SanitizeFilename(m[2])
	}
	if c := strings.TrimSpace(channel); c != "" {
		return SanitizeFilename(c), SanitizeFilename(base)
	}
	return "", SanitizeFilename(base)
}
