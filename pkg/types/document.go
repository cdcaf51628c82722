// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the data model shared across pipeline stages.
package types

import "strings"

// Document holds all text and metadata pulled from a single PDF. It is
// produced once per paper by the extract stage and is not modified
// afterwards.
type Document struct {
	// Title is the detected paper title. Empty when no heuristic matched.
	Title string `json:"title" yaml:"title"`

	// Authors is the author string from the PDF metadata, if present.
	Authors string `json:"authors" yaml:"authors"`

	// Abstract is the heuristically detected abstract. Empty when not found.
	Abstract string `json:"abstract" yaml:"abstract"`

	// BodyText is the cleaned text of every page, blank-line separated.
	BodyText string `json:"-" yaml:"-"`

	// PageCount is the number of pages in the source PDF.
	PageCount int `json:"page_count" yaml:"page_count"`

	// SourcePath is the absolute path the document was read from.
	SourcePath string `json:"source_path" yaml:"source_path"`

	// Metadata carries the raw document-level PDF metadata entries.
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// FullText concatenates the title, author, and abstract hints followed by
// the body text, each section separated by a blank line. This is the exact
// payload the analysis stage truncates and sends to the model.
func (d *Document) FullText() string {
	var parts []string
	if d.Title != "" {
		parts = append(parts, "Title: "+d.Title)
	}
	if d.Authors != "" {
		parts = append(parts, "Authors: "+d.Authors)
	}
	if d.Abstract != "" {
		parts = append(parts, "Abstract:\n"+d.Abstract)
	}
	if d.BodyText != "" {
		parts = append(parts, d.BodyText)
	}
	return strings.Join(parts, "\n\n")
}
