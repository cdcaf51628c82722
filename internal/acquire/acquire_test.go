// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pdiddy/paper-ingest/pkg/types"
)

func testCfg() types.AcquisitionConfig {
	return types.AcquisitionConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   5 * time.Second,
			UserAgent: "paper-ingest-test/0.1",
		},
		RetryCount: 3,
		RetryDelay: time.Millisecond,
	}
}

func TestRewritePublisherURL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"arxiv abs", "https://arxiv.org/abs/2301.12345", "https://arxiv.org/pdf/2301.12345.pdf"},
		{"arxiv abs with pdf suffix", "https://arxiv.org/abs/2301.12345.pdf", "https://arxiv.org/pdf/2301.12345.pdf"},
		{"arxiv pdf untouched", "https://arxiv.org/pdf/2301.12345.pdf", "https://arxiv.org/pdf/2301.12345.pdf"},
		{"sciencedirect abs", "https://www.sciencedirect.com/science/article/abs/pii/S0004370221000862", "https://www.sciencedirect.com/science/article/pii/S0004370221000862/pdfft"},
		{"plain url untouched", "https://example.com/paper.pdf", "https://example.com/paper.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RewritePublisherURL(tt.input); got != tt.want {
				t.Errorf("RewritePublisherURL(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDownloadSuccess(t *testing.T) {
	payload := []byte("%PDF-1.4 test payload")
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "paper-ingest-test/0.1" {
			t.Errorf("User-Agent = %q", got)
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Write(payload)
	}))
	defer ts.Close()

	path, err := Download(context.Background(), ts.Client(), ts.URL+"/paper.pdf", testCfg())
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(path)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != string(payload) {
		t.Errorf("downloaded %q, want %q", data, payload)
	}
}

func TestDownload404RetriesThenFails(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	_, err := Download(context.Background(), ts.Client(), ts.URL+"/missing.pdf", testCfg())
	if !errors.Is(err, ErrDownloadFailed) {
		t.Fatalf("error = %v, want ErrDownloadFailed", err)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("attempts = %d, want 3", got)
	}
	if !strings.Contains(err.Error(), "Check that the URL is correct") {
		t.Errorf("404 error lacks URL guidance: %v", err)
	}
}

func TestDownload403Guidance(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer ts.Close()

	_, err := Download(context.Background(), ts.Client(), ts.URL, testCfg())
	if !errors.Is(err, ErrDownloadFailed) {
		t.Fatalf("error = %v, want ErrDownloadFailed", err)
	}
	if !strings.Contains(err.Error(), "paywalled") || !strings.Contains(err.Error(), "--doi") {
		t.Errorf("403 error lacks paywall/DOI guidance: %v", err)
	}
}

func TestDownloadRecoversMidBudget(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("%PDF-1.4"))
	}))
	defer ts.Close()

	path, err := Download(context.Background(), ts.Client(), ts.URL, testCfg())
	if err != nil {
		t.Fatal(err)
	}
	os.Remove(path)
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("attempts = %d, want 3", got)
	}
}

func TestNormalizeDOI(t *testing.T) {
	const want = "10.48550/arXiv.2301.12345"
	tests := []struct {
		name  string
		input string
	}{
		{"bare", "10.48550/arXiv.2301.12345"},
		{"doi prefixed", "doi:10.48550/arXiv.2301.12345"},
		{"https resolver", "https://doi.org/10.48550/arXiv.2301.12345"},
		{"http resolver", "http://doi.org/10.48550/arXiv.2301.12345"},
		{"whitespace", "  10.48550/arXiv.2301.12345  "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeDOI(tt.input); got != want {
				t.Errorf("NormalizeDOI(%q) = %q, want %q", tt.input, got, want)
			}
		})
	}
}

// silenceOpenAlex points the open-access lookup at a server with no hits.
func silenceOpenAlex(t *testing.T) {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(ts.Close)
	orig := openAlexAPIBase
	openAlexAPIBase = ts.URL + "/works/"
	t.Cleanup(func() { openAlexAPIBase = orig })
}

func TestResolveDOIPreprintPatterns(t *testing.T) {
	silenceOpenAlex(t)

	tests := []struct {
		name string
		doi  string
		want string
	}{
		{"arxiv doi", "10.48550/arXiv.2301.12345", "https://arxiv.org/pdf/2301.12345.pdf"},
		{"arxiv doi via resolver url", "https://doi.org/10.48550/arXiv.2301.12345", "https://arxiv.org/pdf/2301.12345.pdf"},
		{"arxiv doi prefixed", "doi:10.48550/arXiv.2301.12345", "https://arxiv.org/pdf/2301.12345.pdf"},
		{"biorxiv doi", "10.1101/2023.01.15.524123", "https://www.biorxiv.org/content/10.1101/2023.01.15.524123v1.full.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveDOI(context.Background(), http.DefaultClient, tt.doi, testCfg())
			if err != nil {
				t.Fatal(err)
			}
			if got.Local {
				t.Error("pattern strategy should not yield a local file")
			}
			if got.Location != tt.want {
				t.Errorf("ResolveDOI(%q) = %q, want %q", tt.doi, got.Location, tt.want)
			}
		})
	}
}

func TestResolveDOIOpenAlexHit(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"best_oa_location": {"pdf_url": "https://repo.example.org/oa/paper.pdf"}}`))
	}))
	defer ts.Close()
	orig := openAlexAPIBase
	openAlexAPIBase = ts.URL + "/works/"
	defer func() { openAlexAPIBase = orig }()

	got, err := ResolveDOI(context.Background(), ts.Client(), "10.1234/example", testCfg())
	if err != nil {
		t.Fatal(err)
	}
	if got.Location != "https://repo.example.org/oa/paper.pdf" {
		t.Errorf("ResolveDOI = %q", got.Location)
	}
}

func TestResolveDOIRedirectDirectPDF(t *testing.T) {
	silenceOpenAlex(t)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4 direct"))
	}))
	defer ts.Close()
	orig := doiBase
	doiBase = ts.URL + "/"
	defer func() { doiBase = orig }()

	got, err := ResolveDOI(context.Background(), ts.Client(), "10.9999/direct-pdf", testCfg())
	if err != nil {
		t.Fatal(err)
	}
	if !got.Local {
		t.Fatal("expected a local temp file")
	}
	defer os.Remove(got.Location)

	data, err := os.ReadFile(got.Location)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "%PDF-1.4 direct" {
		t.Errorf("persisted %q", data)
	}
}

func TestResolveDOILandingPageAnchor(t *testing.T) {
	silenceOpenAlex(t)

	page := `<html><body>
		<a href="/relative/also.pdf">relative ignored</a>
		<a href="https://publisher.example.org/content/paper.pdf">Full text PDF</a>
	</body></html>`
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(page))
	}))
	defer ts.Close()
	orig := doiBase
	doiBase = ts.URL + "/"
	defer func() { doiBase = orig }()

	got, err := ResolveDOI(context.Background(), ts.Client(), "10.9999/landing", testCfg())
	if err != nil {
		t.Fatal(err)
	}
	if got.Location != "https://publisher.example.org/content/paper.pdf" {
		t.Errorf("ResolveDOI = %q", got.Location)
	}
}

func TestResolveDOIExhausted(t *testing.T) {
	silenceOpenAlex(t)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body><a href="/no-match">nothing here</a></body></html>`))
	}))
	defer ts.Close()
	orig := doiBase
	doiBase = ts.URL + "/"
	defer func() { doiBase = orig }()

	_, err := ResolveDOI(context.Background(), ts.Client(), "10.9999/paywalled", testCfg())
	if !errors.Is(err, ErrDOIUnresolved) {
		t.Fatalf("error = %v, want ErrDOIUnresolved", err)
	}
	if !strings.Contains(err.Error(), "--pdf") {
		t.Errorf("error lacks manual-fallback guidance: %v", err)
	}
}

func TestIsURL(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"https://example.com/paper.pdf", true},
		{"http://example.com", true},
		{"10.1234/example", false},
		{"/home/user/paper.pdf", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsURL(tt.input); got != tt.want {
			t.Errorf("IsURL(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
