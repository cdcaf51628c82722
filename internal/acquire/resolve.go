// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/pdiddy/paper-ingest/pkg/types"
)

// Base URLs for DOI resolution. Declared as vars so tests can substitute
// httptest servers.
var (
	doiBase         = "https://doi.org/"
	arxivPDFBase    = "https://arxiv.org/pdf/"
	biorxivBase     = "https://www.biorxiv.org/content/"
	openAlexAPIBase = "https://api.openalex.org/works/"
)

// arxivDOIPattern matches arXiv-registered DOIs: "10.48550/arXiv.2301.12345".
var arxivDOIPattern = regexp.MustCompile(`^10\.48550/arXiv\.(\d+\.\d+)`)

// biorxivDOIPattern matches the date-coded DOIs bioRxiv and medRxiv issue:
// "10.1101/2023.01.15.524123".
var biorxivDOIPattern = regexp.MustCompile(`^10\.1101/(\d{4}\.\d{2}\.\d{2}\.\d+)`)

// Resolved is the outcome of DOI resolution: either a remote PDF URL to
// download, or a local temp file when the DOI redirect served the PDF
// directly. In the local case the caller owns the file.
type Resolved struct {
	Location string
	Local    bool
}

// NormalizeDOI reduces the accepted DOI shapes (bare, "doi:"-prefixed, full
// resolver URL) to the bare identifier.
func NormalizeDOI(doi string) string {
	doi = strings.TrimSpace(doi)
	for _, prefix := range []string{"https://doi.org/", "http://doi.org/", "doi:"} {
		if strings.HasPrefix(doi, prefix) {
			return strings.TrimPrefix(doi, prefix)
		}
	}
	return doi
}

// ResolveDOI turns a DOI into a retrievable PDF location, trying strategies
// in order and returning on the first success:
//
//  1. open-access lookup for a best open-access PDF URL,
//  2. known preprint-repository DOI patterns (arXiv, bioRxiv/medRxiv),
//  3. following the DOI redirect, persisting a direct PDF response or
//     scanning the landing page for a PDF link.
//
// It fails with ErrDOIUnresolved when all strategies are exhausted.
func ResolveDOI(ctx context.Context, client *http.Client, doi string, cfg types.AcquisitionConfig) (Resolved, error) {
	clean := NormalizeDOI(doi)

	// Strategy 1: open-access lookup. Lookup failures just fall through.
	if pdfURL, err := resolveOpenAlex(ctx, client, clean, cfg); err == nil && pdfURL != "" {
		return Resolved{Location: pdfURL}, nil
	}

	// Strategy 2: predictable preprint-repository URL shapes.
	if m := arxivDOIPattern.FindStringSubmatch(clean); m != nil {
		return Resolved{Location: arxivPDFBase + m[1] + ".pdf"}, nil
	}
	if biorxivDOIPattern.MatchString(clean) {
		return Resolved{Location: biorxivBase + clean + "v1.full.pdf"}, nil
	}

	// Strategy 3: follow the DOI redirect.
	if r, ok := resolveRedirect(ctx, client, clean, cfg); ok {
		return r, nil
	}

	return Resolved{}, fmt.Errorf(
		"%w: %s\n  This may be a paywalled paper without open access.\n  Try downloading the PDF manually and using --pdf, or check the paper at %s%s",
		ErrDOIUnresolved, clean, doiBase, clean)
}

// resolveRedirect follows the DOI redirect. A PDF response is persisted to
// a temp file; an HTML landing page is scanned for a PDF anchor. Best
// effort only.
func resolveRedirect(ctx context.Context, client *http.Client, doi string, cfg types.AcquisitionConfig) (Resolved, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, doiBase+doi, nil)
	if err != nil {
		return Resolved{}, false
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return Resolved{}, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return Resolved{}, false
	}

	if strings.Contains(strings.ToLower(resp.Header.Get("Content-Type")), "pdf") {
		path, _, err := persistTemp(resp.Body)
		if err != nil {
			return Resolved{}, false
		}
		return Resolved{Location: path, Local: true}, true
	}

	if link := findPDFAnchor(resp.Body); link != "" {
		return Resolved{Location: link}, true
	}
	return Resolved{}, false
}

// findPDFAnchor scans an HTML page for the first anchor whose target
// contains ".pdf" or a download+pdf marker. Only absolute URLs qualify.
func findPDFAnchor(body io.Reader) string {
	doc, err := html.Parse(body)
	if err != nil {
		return ""
	}

	var found string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if found != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key != "href" {
					continue
				}
				lower := strings.ToLower(attr.Val)
				pdfish := strings.Contains(lower, ".pdf") ||
					(strings.Contains(lower, "download") && strings.Contains(lower, "pdf"))
				if pdfish && strings.HasPrefix(lower, "http") {
					found = attr.Val
					return
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return found
}
