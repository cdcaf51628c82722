// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"regexp"
	"strings"

	"github.com/pdiddy/paper-ingest/internal/textutil"
)

// minAbstractChars discards abstract candidates too short to be real.
const minAbstractChars = 50

// abstractRe locates the abstract section: a line beginning with
// "Abstract" or "Summary" (optional colon), capturing non-greedily until a
// line beginning with "Keywords", a numbered "1." section, "Introduction",
// or the end of the text.
var abstractRe = regexp.MustCompile(
	`(?is)(?:\A|\n)[ \t]*(?:abstract|summary)[ \t]*:?[ \t]*\n?(.*?)(?:\n[ \t]*(?:keywords|1\.[ \t]|introduction)|\z)`)

// DetectAbstract heuristically locates the abstract in cleaned text.
// Returns the empty string when no plausible candidate is found.
func DetectAbstract(text string) string {
	m := abstractRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	candidate := textutil.Clean(m[1])
	if len(candidate) <= minAbstractChars {
		return ""
	}
	return candidate
}

// DetectTitle picks the title from PDF metadata when it is meaningful
// (trimmed length above 3), falling back to the first line of the text
// longer than 5 characters. Returns the empty string when neither yields
// anything.
func DetectTitle(text, metaTitle string) string {
	if t := strings.TrimSpace(metaTitle); len(t) > 3 {
		return t
	}
	for _, line := range strings.Split(text, "\n") {
		if stripped := strings.TrimSpace(line); len(stripped) > 5 {
			return stripped
		}
	}
	return ""
}
