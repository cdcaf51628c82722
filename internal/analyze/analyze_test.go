// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/paper-ingest/pkg/types"
)

// mockBackend replays canned replies or errors in order, recording how
// many times it was called.
type mockBackend struct {
	replies []string
	errs    []error
	calls   int
}

func (m *mockBackend) Generate(ctx context.Context, prompt string) (string, error) {
	i := m.calls
	m.calls++
	if i < len(m.errs) && m.errs[i] != nil {
		return "", m.errs[i]
	}
	if i < len(m.replies) {
		return m.replies[i], nil
	}
	return "", errors.New("mock exhausted")
}

func testAnalyzer(b Backend) *Analyzer {
	cfg := &types.AnalysisConfig{
		Model:          "test-model",
		MaxTextLength:  30000,
		MaxRetries:     3,
		RetryBaseDelay: time.Millisecond,
	}
	return New(b, cfg, zerolog.Nop())
}

func TestTruncateShortTextUntouched(t *testing.T) {
	text := strings.Repeat("a", 100)
	if got := Truncate(text, 30000); got != text {
		t.Errorf("short text altered by Truncate")
	}
	exact := strings.Repeat("b", 500)
	if got := Truncate(exact, 500); got != exact {
		t.Errorf("text at exactly the budget altered by Truncate")
	}
}

func TestTruncateKeepsHeadAndTail(t *testing.T) {
	text := strings.Repeat("h", 800) + strings.Repeat("m", 400) + strings.Repeat("t", 800)
	got := Truncate(text, 1000)

	if want := 1000 + len(truncationMarker); len(got) != want {
		t.Fatalf("truncated length = %d, want %d", len(got), want)
	}
	if !strings.HasPrefix(got, strings.Repeat("h", 800)) {
		t.Errorf("head of truncated text is not the first 80%% of the budget")
	}
	if !strings.HasSuffix(got, strings.Repeat("t", 200)) {
		t.Errorf("tail of truncated text is not the last 20%% of the budget")
	}
	if !strings.Contains(got, truncationMarker) {
		t.Errorf("truncated text missing marker")
	}
}

func TestAnalyzeParsesWellFormedReply(t *testing.T) {
	backend := &mockBackend{replies: []string{`{
		"title": "Attention Is All You Need",
		"authors": "Vaswani, Shazeer",
		"year": 2017,
		"keywords": ["transformers", "attention"],
		"main_topics": ["deep learning"],
		"key_findings": "Attention alone suffices.",
		"methodology": "Sequence transduction experiments.",
		"relevance_score": "High",
		"research_area": "Primary Research",
		"language": "English"
	}`}}

	got, err := testAnalyzer(backend).Analyze(context.Background(), "paper text")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if got.Title != "Attention Is All You Need" {
		t.Errorf("Title = %q", got.Title)
	}
	if got.Year == nil || *got.Year != 2017 {
		t.Errorf("Year = %v, want 2017", got.Year)
	}
	if len(got.Keywords) != 2 || got.Keywords[0] != "transformers" {
		t.Errorf("Keywords = %v", got.Keywords)
	}
	if got.RelevanceScore != types.RelevanceHigh {
		t.Errorf("RelevanceScore = %q", got.RelevanceScore)
	}
	if backend.calls != 1 {
		t.Errorf("backend called %d times, want 1", backend.calls)
	}
}

func TestAnalyzeStripsCodeFences(t *testing.T) {
	backend := &mockBackend{replies: []string{
		"```json\n{\"title\": \"Fenced Paper\"}\n```",
	}}

	got, err := testAnalyzer(backend).Analyze(context.Background(), "text")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if got.Title != "Fenced Paper" {
		t.Errorf("Title = %q, want %q", got.Title, "Fenced Paper")
	}
}

func TestAnalyzeCommaJoinedListsSplit(t *testing.T) {
	backend := &mockBackend{replies: []string{
		`{"title": "T", "keywords": "a, b, c", "main_topics": "x,y"}`,
	}}

	got, err := testAnalyzer(backend).Analyze(context.Background(), "text")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if len(got.Keywords) != 3 || got.Keywords[0] != "a" || got.Keywords[1] != "b" || got.Keywords[2] != "c" {
		t.Errorf("Keywords = %v, want [a b c]", got.Keywords)
	}
	if len(got.MainTopics) != 2 || got.MainTopics[1] != "y" {
		t.Errorf("MainTopics = %v, want [x y]", got.MainTopics)
	}
}

func TestAnalyzeFillsDefaults(t *testing.T) {
	backend := &mockBackend{replies: []string{`{"title": "Sparse Reply"}`}}

	got, err := testAnalyzer(backend).Analyze(context.Background(), "text")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if got.RelevanceScore != types.RelevanceMedium {
		t.Errorf("RelevanceScore = %q, want Medium", got.RelevanceScore)
	}
	if got.ResearchArea != types.AreaBackground {
		t.Errorf("ResearchArea = %q, want Background", got.ResearchArea)
	}
	if got.Language != "English" {
		t.Errorf("Language = %q, want English", got.Language)
	}
	if got.Keywords == nil || len(got.Keywords) != 0 {
		t.Errorf("Keywords = %v, want empty non-nil slice", got.Keywords)
	}
	if got.Year != nil {
		t.Errorf("Year = %v, want nil", got.Year)
	}
}

func TestAnalyzeYearAsString(t *testing.T) {
	backend := &mockBackend{replies: []string{`{"title": "T", "year": "2021"}`}}

	got, err := testAnalyzer(backend).Analyze(context.Background(), "text")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if got.Year == nil || *got.Year != 2021 {
		t.Errorf("Year = %v, want 2021", got.Year)
	}
}

func TestAnalyzeInvalidJSONFailsFast(t *testing.T) {
	backend := &mockBackend{replies: []string{"this is not JSON"}}

	_, err := testAnalyzer(backend).Analyze(context.Background(), "text")
	if !errors.Is(err, ErrInvalidResponse) {
		t.Fatalf("Analyze() error = %v, want ErrInvalidResponse", err)
	}
	if backend.calls != 1 {
		t.Errorf("backend called %d times, want 1 (no retry on parse failure)", backend.calls)
	}
}

func TestAnalyzeEmptyReplyFailsFast(t *testing.T) {
	backend := &mockBackend{replies: []string{"   \n"}}

	_, err := testAnalyzer(backend).Analyze(context.Background(), "text")
	if !errors.Is(err, ErrInvalidResponse) {
		t.Fatalf("Analyze() error = %v, want ErrInvalidResponse", err)
	}
	if backend.calls != 1 {
		t.Errorf("backend called %d times, want 1", backend.calls)
	}
}

func TestAnalyzeTransportErrorsRetried(t *testing.T) {
	boom := errors.New("connection reset")
	backend := &mockBackend{errs: []error{boom, boom, boom}}

	_, err := testAnalyzer(backend).Analyze(context.Background(), "text")
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("Analyze() error = %v, want ErrServiceUnavailable", err)
	}
	if backend.calls != 3 {
		t.Errorf("backend called %d times, want 3", backend.calls)
	}
}

func TestAnalyzeRecoversAfterTransportError(t *testing.T) {
	backend := &mockBackend{
		errs:    []error{errors.New("timeout"), nil},
		replies: []string{"", `{"title": "Second Try"}`},
	}

	got, err := testAnalyzer(backend).Analyze(context.Background(), "text")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if got.Title != "Second Try" {
		t.Errorf("Title = %q", got.Title)
	}
	if backend.calls != 2 {
		t.Errorf("backend called %d times, want 2", backend.calls)
	}
}
