// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-ingest/pkg/types"
)

// metadataRecord is the YAML document written per catalogued paper. It is
// a local, greppable mirror of the catalog record.
type metadataRecord struct {
	RecordID       string   `yaml:"record_id"`
	Title          string   `yaml:"title"`
	Authors        string   `yaml:"authors,omitempty"`
	Year           *int     `yaml:"year,omitempty"`
	Keywords       []string `yaml:"keywords,omitempty"`
	MainTopics     []string `yaml:"main_topics,omitempty"`
	KeyFindings    string   `yaml:"key_findings,omitempty"`
	Methodology    string   `yaml:"methodology,omitempty"`
	RelevanceScore string   `yaml:"relevance_score"`
	ResearchArea   string   `yaml:"research_area"`
	Language       string   `yaml:"language,omitempty"`
	Source         string   `yaml:"source"`
	AddedAt        string   `yaml:"added_at"`
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-z0-9]+`)

// writeRecord writes one YAML metadata record into dir, named after the
// slugified title.
func writeRecord(dir string, a *types.Analysis, source, recordID string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating records directory: %w", err)
	}

	rec := metadataRecord{
		RecordID:       recordID,
		Title:          a.Title,
		Authors:        a.Authors,
		Year:           a.Year,
		Keywords:       a.Keywords,
		MainTopics:     a.MainTopics,
		KeyFindings:    a.KeyFindings,
		Methodology:    a.Methodology,
		RelevanceScore: string(a.RelevanceScore),
		ResearchArea:   string(a.ResearchArea),
		Language:       a.Language,
		Source:         source,
		AddedAt:        time.Now().UTC().Format(time.RFC3339),
	}

	data, err := yaml.Marshal(&rec)
	if err != nil {
		return fmt.Errorf("marshaling metadata record: %w", err)
	}

	name := slugify(a.Title)
	if name == "" {
		name = "untitled-" + time.Now().UTC().Format("20060102-150405")
	}
	path := filepath.Join(dir, name+".yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing metadata record: %w", err)
	}
	return nil
}

// slugify reduces a title to a safe filename stem, capped at 80 chars.
func slugify(title string) string {
	s := unsafeFilenameChars.ReplaceAllString(strings.ToLower(title), "-")
	s = strings.Trim(s, "-")
	if len(s) > 80 {
		s = strings.Trim(s[:80], "-")
	}
	return s
}
