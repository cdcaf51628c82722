// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package textutil cleans raw PDF text and normalises titles for comparison.
package textutil

import (
	"regexp"
	"strings"
)

// ligatures maps the five common Latin ligatures PDF fonts emit to their
// ASCII expansions.
var ligatures = strings.NewReplacer(
	"ﬁ", "fi",
	"ﬂ", "fl",
	"ﬀ", "ff",
	"ﬃ", "ffi",
	"ﬄ", "ffl",
)

var blankRuns = regexp.MustCompile(`\n{3,}`)

// Clean removes PDF extraction artefacts: ligatures are expanded, runs of
// three or more newlines collapse to exactly two, every line loses its
// trailing whitespace, and the result is trimmed at both ends.
func Clean(text string) string {
	text = ligatures.Replace(text)
	text = blankRuns.ReplaceAllString(text, "\n\n")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t\r")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

var whitespaceRuns = regexp.MustCompile(`\s+`)

// NormalizeTitle prepares a title for duplicate comparison: whitespace runs
// (including newlines) collapse to a single space, the result is trimmed
// and lower-cased. Exact equality of normalized titles is the only accepted
// duplicate criterion.
func NormalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(whitespaceRuns.ReplaceAllString(title, " ")))
}
