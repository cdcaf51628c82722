// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"net/http"

	"github.com/pdiddy/paper-ingest/internal/textutil"
)

// dedupeQueryLimit caps the contains-filter query; exact matching on the
// normalised titles happens client side.
const dedupeQueryLimit = 10

// dedupePrefixLen bounds the contains filter to the title's head so very
// long titles still match the stored record.
const dedupePrefixLen = 100

type queryRequest struct {
	Filter   queryFilter `json:"filter"`
	PageSize int         `json:"page_size"`
}

type queryFilter struct {
	Property string         `json:"property"`
	Title    containsFilter `json:"title"`
}

type containsFilter struct {
	Contains string `json:"contains"`
}

type queryResponse struct {
	Results []queryPage `json:"results"`
}

type queryPage struct {
	ID         string `json:"id"`
	Properties struct {
		Title struct {
			Title []struct {
				PlainText string `json:"plain_text"`
			} `json:"title"`
		} `json:"Title"`
	} `json:"properties"`
}

// FindExisting looks up a catalog record whose title matches the given
// one after whitespace and case normalisation. It returns the record ID
// and true on a match.
//
// Lookup failures are reported as "no duplicate": a broken catalog query
// must not block ingestion, the worst case is a duplicate record.
func (c *Client) FindExisting(ctx context.Context, title string) (string, bool) {
	if title == "" {
		return "", false
	}

	prefix := title
	if len(prefix) > dedupePrefixLen {
		prefix = prefix[:dedupePrefixLen]
	}
	req := queryRequest{
		Filter:   queryFilter{Property: "Title", Title: containsFilter{Contains: prefix}},
		PageSize: dedupeQueryLimit,
	}

	var resp queryResponse
	if err := c.do(ctx, http.MethodPost, "/databases/"+c.databaseID+"/query", req, &resp); err != nil {
		c.log.Warn().Err(err).Msg("duplicate check failed, continuing without it")
		return "", false
	}

	want := textutil.NormalizeTitle(title)
	for _, page := range resp.Results {
		if textutil.NormalizeTitle(pageTitle(page)) == want {
			return page.ID, true
		}
	}
	return "", false
}

func pageTitle(p queryPage) string {
	var out string
	for _, span := range p.Properties.Title.Title {
		out += span.PlainText
	}
	return out
}
