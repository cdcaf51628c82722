// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/paper-ingest/pkg/types"
)

var (
	fenceOpenRe  = regexp.MustCompile("^```(?:json)?[ \t]*\n?")
	fenceCloseRe = regexp.MustCompile("\n?```[ \t]*$")
)

// stringList tolerates the service returning a comma-joined string where a
// JSON array was requested.
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	var items []string
	if err := json.Unmarshal(data, &items); err == nil {
		*l = items
		return nil
	}
	var joined string
	if err := json.Unmarshal(data, &joined); err != nil {
		return err
	}
	*l = splitCommaList(joined)
	return nil
}

// flexibleYear tolerates a year arriving as a JSON number, a numeric
// string, or null.
type flexibleYear struct {
	value *int
}

func (y *flexibleYear) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	y.value = &n
	return nil
}

// rawAnalysis is the reply shape before defaulting. Pointer fields
// distinguish absent keys from empty values.
type rawAnalysis struct {
	Title          *string      `json:"title"`
	Authors        *string      `json:"authors"`
	Year           flexibleYear `json:"year"`
	Keywords       *stringList  `json:"keywords"`
	MainTopics     *stringList  `json:"main_topics"`
	KeyFindings    *string      `json:"key_findings"`
	Methodology    *string      `json:"methodology"`
	RelevanceScore *string      `json:"relevance_score"`
	ResearchArea   *string      `json:"research_area"`
	Language       *string      `json:"language"`
}

// parseResponse strips any surrounding markdown fences, parses the JSON
// body, and fills every expected key with its documented default so
// callers never check for absence.
func parseResponse(reply string) (*types.Analysis, error) {
	cleaned := strings.TrimSpace(reply)
	cleaned = fenceOpenRe.ReplaceAllString(cleaned, "")
	cleaned = fenceCloseRe.ReplaceAllString(cleaned, "")

	var raw rawAnalysis
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, err
	}

	a := &types.Analysis{
		Title:          strDefault(raw.Title, ""),
		Authors:        strDefault(raw.Authors, ""),
		Year:           raw.Year.value,
		Keywords:       listDefault(raw.Keywords),
		MainTopics:     listDefault(raw.MainTopics),
		KeyFindings:    strDefault(raw.KeyFindings, ""),
		Methodology:    strDefault(raw.Methodology, ""),
		RelevanceScore: types.RelevanceScore(strDefault(raw.RelevanceScore, string(types.RelevanceMedium))),
		ResearchArea:   types.ResearchArea(strDefault(raw.ResearchArea, string(types.AreaBackground))),
		Language:       strDefault(raw.Language, "English"),
	}
	return a, nil
}

func strDefault(p *string, def string) string {
	if p == nil || *p == "" {
		return def
	}
	return *p
}

func listDefault(p *stringList) []string {
	if p == nil || *p == nil {
		return []string{}
	}
	return *p
}

// splitCommaList splits a comma-joined string into trimmed non-empty tokens.
func splitCommaList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
