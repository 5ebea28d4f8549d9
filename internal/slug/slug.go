// Package slug derives document slugs and anchor-safe identifiers.
//
// Every anchor in the combined output is namespaced by the slug of the
// document it came from, so slugs must be stable across runs and distinct
// for distinct relative paths.
package slug

import (
	"crypto/sha1" //nolint:gosec // identifier derivation, not security
	"encoding/hex"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/custodia-labs/pelagia/internal/core/domain"
)

// Fallback is returned by Slugify when nothing slug-worthy remains.
const Fallback = "section"

// hashLen is the number of hex digits of the path hash appended to a slug.
const hashLen = 8

// Space is a regexp character-class fragment matching Unicode whitespace.
// RE2's \s alone is ASCII only.
const Space = `\s\v\p{Z}\x{1c}-\x{1f}\x{85}`

var (
	htmlTagPattern   = regexp.MustCompile(`<[^>]+>`)
	emphasisPattern  = regexp.MustCompile("[`*_~]")
	disallowedChars  = regexp.MustCompile(`[^a-z0-9` + Space + `\-]`)
	separatorPattern = regexp.MustCompile(`[` + Space + `\-]+`)
)

// Slugify lowercases s and reduces it to ASCII letters, digits and single hyphens.
// HTML tags and emphasis markers are dropped before filtering.
// Headings and link fragments share this rule so that a fragment written
// as heading text lands on the heading's id.
func Slugify(s string) string {
	// Casers carry state, so one is built per call.
	s = cases.Lower(language.Und).String(strings.TrimSpace(s))
	s = htmlTagPattern.ReplaceAllString(s, "")
	s = emphasisPattern.ReplaceAllString(s, "")
	s = disallowedChars.ReplaceAllString(s, "")
	s = separatorPattern.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return Fallback
	}
	return s
}

// FromRelPath returns the slug for a slash-separated path relative to the corpus root.
// The hash suffix keeps paths that slugify identically apart.
func FromRelPath(rel string) string {
	sum := sha1.Sum([]byte(rel)) //nolint:gosec // see import
	base := Slugify(strings.ReplaceAll(rel, "/", " "))
	return base + "-" + hex.EncodeToString(sum[:])[:hashLen]
}

// ForDocument returns the slug for the document at path inside root.
// Both paths should already be resolved; a path outside root is a caller bug.
func ForDocument(root, path string) (string, error) {
	rel, err := RelPath(root, path)
	if err != nil {
		return "", err
	}
	return FromRelPath(rel), nil
}

// RelPath returns path relative to root in slash form.
func RelPath(root, path string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", fmt.Errorf("%w: %s", domain.ErrOutsideRoot, path)
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", domain.ErrOutsideRoot, path)
	}
	return filepath.ToSlash(rel), nil
}
