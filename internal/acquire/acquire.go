// Package acquire turns URLs and DOIs into local PDF files: direct download
// with retry, publisher URL rewriting, and a cascade of DOI-resolution
// strategies.
package acquire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/pdiddy/paper-ingest/internal/retry"
	"github.com/pdiddy/paper-ingest/pkg/types"
)

// Acquisition failure modes. The wrapped messages carry the manual-fallback
// guidance the operator needs.
var (
	ErrDownloadFailed = errors.New("download failed")
	ErrDOIUnresolved  = errors.New("could not resolve DOI to a PDF")
)

// tempPattern names downloaded temp files so stale ones are recognisable.
const tempPattern = "paper-ingest-*.pdf"

// Download fetches a PDF from url into a temp file and returns its path.
// Known publisher URL shapes are rewritten first. Network and HTTP errors
// are retried with a fixed delay up to the configured attempt budget; after
// exhaustion the error distinguishes paywall blocks (403) from bad URLs
// (404) from generic failures. The caller owns the returned file.
func Download(ctx context.Context, client *http.Client, rawURL string, cfg types.AcquisitionConfig) (string, error) {
	fetchURL := RewritePublisherURL(rawURL)

	attempts := cfg.RetryCount
	if attempts <= 0 {
		attempts = 3
	}

	var path string
	var lastStatus int

	err := retry.Do(ctx, retry.Policy{Attempts: attempts, BaseDelay: cfg.RetryDelay}, func(ctx context.Context) error {
		p, status, err := fetchToTemp(ctx, client, fetchURL, cfg)
		lastStatus = status
		if err != nil {
			return err
		}
		path = p
		return nil
	})
	if err != nil {
		return "", downloadError(fetchURL, lastStatus, attempts, err)
	}
	return path, nil
}

// fetchToTemp performs one download attempt. On HTTP failure it returns the
// status code so the final error message can be specific.
func fetchToTemp(ctx context.Context, client *http.Client, fetchURL string, cfg types.AcquisitionConfig) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
	if err != nil {
		return "", 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	req.Header.Set("Accept", "application/pdf,*/*")

	resp, err := client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return "", resp.StatusCode, fmt.Errorf("HTTP %d from %s", resp.StatusCode, fetchURL)
	}

	return persistTemp(resp.Body)
}

// persistTemp copies r to a fresh temp file, removing it on any failure.
func persistTemp(r io.Reader) (string, int, error) {
	tmp, err := os.CreateTemp("", tempPattern)
	if err != nil {
		return "", 0, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	_, copyErr := io.Copy(tmp, r)
	closeErr := tmp.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return "", 0, fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return "", 0, fmt.Errorf("closing temp file: %w", closeErr)
	}
	return tmpPath, 0, nil
}

// downloadError shapes the post-retry failure with status-specific guidance.
func downloadError(fetchURL string, status, attempts int, cause error) error {
	base := fmt.Errorf("%w after %d attempts: %v", ErrDownloadFailed, attempts, cause)

	switch status {
	case http.StatusForbidden:
		if strings.Contains(fetchURL, "sciencedirect.com") {
			return fmt.Errorf("%w\n  ScienceDirect blocks automated downloads.\n  Try the DOI instead: paper-ingest process --doi 10.xxxx/xxxxx\n  Or download the PDF manually and use --pdf", base)
		}
		return fmt.Errorf("%w\n  The URL appears to be blocked (403 Forbidden): the paper may be paywalled or behind bot protection.\n  Try --doi if you have the paper's DOI, or download manually and use --pdf", base)
	case http.StatusNotFound:
		return fmt.Errorf("%w\n  URL not found (404). Check that the URL is correct and points at a direct PDF link, not an abstract page", base)
	default:
		return base
	}
}

// RewritePublisherURL rewrites known publisher URL shapes into their PDF
// equivalents before fetching. arXiv abstract links become PDF export
// links; ScienceDirect abstract links become the pdfft fetch path, which
// may still fail due to access control.
func RewritePublisherURL(rawURL string) string {
	if strings.Contains(rawURL, "arxiv.org/abs/") {
		rewritten := strings.Replace(rawURL, "/abs/", "/pdf/", 1)
		if !strings.HasSuffix(rewritten, ".pdf") {
			rewritten += ".pdf"
		}
		return rewritten
	}

	if strings.Contains(rawURL, "sciencedirect.com") && strings.Contains(rawURL, "/abs/") {
		rewritten := strings.Replace(rawURL, "/abs/", "/", 1)
		if !strings.HasSuffix(rewritten, "/pdfft") {
			rewritten = strings.TrimRight(rewritten, "/") + "/pdfft"
		}
		return rewritten
	}

	return rawURL
}

// IsURL reports whether the input parses as an http(s) URL.
func IsURL(input string) bool {
	u, err := url.Parse(strings.TrimSpace(input))
	return err == nil && (u.Scheme == "http" || u.Scheme == "https")
}
