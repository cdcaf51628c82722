// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// RelevanceScore rates how relevant a paper is to the research portfolio.
type RelevanceScore string

const (
	RelevanceHigh   RelevanceScore = "High"
	RelevanceMedium RelevanceScore = "Medium"
	RelevanceLow    RelevanceScore = "Low"
)

// ResearchArea classifies how a paper fits into a research portfolio.
type ResearchArea string

const (
	AreaPrimaryResearch ResearchArea = "Primary Research"
	AreaRelatedField    ResearchArea = "Related Field"
	AreaMethodology     ResearchArea = "Methodology"
	AreaBackground      ResearchArea = "Background"
)

// Analysis is the structured metadata produced for one Document by the
// analysis stage. After normalization every field is populated: callers
// never need to check for absence. Defaults are the empty string for text
// fields, the empty slice for list fields, RelevanceMedium, AreaBackground,
// and "English".
type Analysis struct {
	// Title is the full paper title.
	Title string `json:"title" yaml:"title"`

	// Authors is a comma-separated author list.
	Authors string `json:"authors" yaml:"authors"`

	// Year is the 4-digit publication year, or nil when undetermined.
	Year *int `json:"year" yaml:"year"`

	// Keywords are 5-10 concise terms capturing the core subjects.
	Keywords []string `json:"keywords" yaml:"keywords"`

	// MainTopics are 3-5 broader thematic areas.
	MainTopics []string `json:"main_topics" yaml:"main_topics"`

	// KeyFindings summarises the main findings in 2-3 sentences.
	KeyFindings string `json:"key_findings" yaml:"key_findings"`

	// Methodology describes the method in 1-2 sentences.
	Methodology string `json:"methodology" yaml:"methodology"`

	// RelevanceScore is one of High, Medium, Low.
	RelevanceScore RelevanceScore `json:"relevance_score" yaml:"relevance_score"`

	// ResearchArea is one of Primary Research, Related Field, Methodology,
	// Background.
	ResearchArea ResearchArea `json:"research_area" yaml:"research_area"`

	// Language is the detected document language.
	Language string `json:"language" yaml:"language"`
}
