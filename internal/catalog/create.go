// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"net/http"
	"time"

	"github.com/pdiddy/paper-ingest/pkg/types"
)

type createRequest struct {
	Parent     map[string]string `json:"parent"`
	Properties map[string]any    `json:"properties"`
}

type createResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CreateRecord writes one analysed paper into the catalog database and
// returns the new record's ID. source is the Source select label (for
// example "Self-found" or "PI Recommendation"); pdfRef, when non-empty,
// is stored as a link to the PDF.
func (c *Client) CreateRecord(ctx context.Context, analysis *types.Analysis, source, pdfRef string) (string, error) {
	title := analysis.Title
	if title == "" {
		title = "Untitled Paper"
	}

	props := map[string]any{
		"Title":           titleProp(title),
		"Authors":         richTextProp(analysis.Authors),
		"Keywords":        multiSelectProp(analysis.Keywords),
		"Main Topics":     multiSelectProp(analysis.MainTopics),
		"Key Findings":    richTextProp(analysis.KeyFindings),
		"Methodology":     richTextProp(analysis.Methodology),
		"Relevance Score": selectProp(string(analysis.RelevanceScore)),
		"Research Area":   selectProp(string(analysis.ResearchArea)),
		"Status":          selectProp(c.status),
		"Source":          selectProp(source),
		"Date Added":      dateProp(time.Now().Format("2006-01-02")),
	}
	if analysis.Year != nil {
		props["Year"] = numberProp(*analysis.Year)
	}
	if pdfRef != "" {
		props["PDF Link"] = urlProp(pdfRef)
	}

	req := createRequest{
		Parent:     map[string]string{"database_id": c.databaseID},
		Properties: props,
	}

	var resp createResponse
	if err := c.do(ctx, http.MethodPost, "/pages", req, &resp); err != nil {
		return "", err
	}

	c.log.Info().Str("id", resp.ID).Str("title", title).Msg("catalog record created")
	return resp.ID, nil
}
