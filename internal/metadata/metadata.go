// Package metadata resolves display names for local audio files. Extraction
// is best-effort: absence means "derive from the filename".
package metadata

import (
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Extractor returns the embedded (artist, title) of an audio file. Either
// value may be empty when the source carries no usable tag.
type Extractor interface {
	Extract(path string) (artist, title string, err error)
}

// FilenameExtractor derives artist and title from the file's base name. It
// understands the common "Artist - Title.mp3" convention; without a
// separator the whole stem becomes the title.
type FilenameExtractor struct{}

var separators = []string{" - ", " – ", " — ", "-", "–", "—"}

// Extract never fails; the error return satisfies the Extractor contract.
func (FilenameExtractor) Extract(path string) (string, string, error) {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	for _, sep := range separators {
		if i := strings.Index(base, sep); i > 0 {
			artist := strings.TrimSpace(base[:i])
			title := strings.TrimSpace(base[i+len(sep):])
			if artist != "" && title != "" {
				return artist, title, nil
			}
		}
	}
	return "", strings.TrimSpace(base), nil
}

// DeriveTitle builds a presentable title from a file path: separator runs
// collapse to single spaces and each word is title-cased.
func DeriveTitle(sourcePath string) string {
	if sourcePath == "" {
		return "Unknown Track"
	}
	base := filepath.Base(sourcePath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	cleaned := strings.Builder{}
	prevSpace := false
	for _, r := range base {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			cleaned.WriteRune(r)
			prevSpace = false
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '.':
			if !prevSpace {
				cleaned.WriteRune(' ')
				prevSpace = true
			}
		}
	}
	title := strings.TrimSpace(cleaned.String())
	if title == "" {
		return "Unknown Track"
	}
	return cases.Title(language.Und).String(title)
}
