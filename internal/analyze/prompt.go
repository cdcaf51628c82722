// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"text/template"
)

// analysisPromptTmpl instructs the model to return one flat JSON object
// with the exact key set the pipeline normalises.
var analysisPromptTmpl = template.Must(template.New("analysis").Parse(`You are analyzing an academic paper. Extract the following information and return it as valid JSON only — no markdown fences, no explanations.

{
  "title": "<full title>",
  "authors": "<comma-separated author names>",
  "year": <4-digit integer or null>,
  "keywords": ["kw1", "kw2", ...],
  "main_topics": ["topic1", "topic2", ...],
  "key_findings": "<2-3 sentences summarising main findings>",
  "methodology": "<1-2 sentences describing the method>",
  "relevance_score": "High | Medium | Low",
  "research_area": "Primary Research | Related Field | Methodology | Background",
  "language": "<detected language>"
}

Rules:
- keywords: 5-10 concise terms that capture the core subjects
- main_topics: 3-5 broader thematic areas
- relevance_score: High = cutting-edge / directly relevant; Low = tangential
- research_area: how this paper fits into a research portfolio
- Use null for any field that cannot be determined
- year must be an integer, not a string

---

Paper text (may be truncated for long papers):

{{.PaperText}}
`))

// renderPrompt executes the analysis prompt template with the paper text.
func renderPrompt(paperText string) (string, error) {
	var buf bytes.Buffer
	if err := analysisPromptTmpl.Execute(&buf, struct{ PaperText string }{PaperText: paperText}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// claudeAPIURL is the Claude API endpoint. Package-level var for test substitution.
var claudeAPIURL = "https://api.anthropic.com/v1/messages"

// ClaudeBackend calls the Claude Messages API with a single user prompt.
type ClaudeBackend struct {
	APIKey string
	Model  string
	Client *http.Client
}

// claudeRequest is the request body for the Claude Messages API.
type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

// claudeMessage is a single message in the Claude API conversation.
type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// claudeResponse is the response body from the Claude Messages API.
type claudeResponse struct {
	Content []claudeContent `json:"content"`
}

// claudeContent is a content block in the Claude API response.
type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Generate sends the prompt and returns the concatenated text blocks of
// the reply.
func (c *ClaudeBackend) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody := claudeRequest{
		Model:     c.Model,
		MaxTokens: 4096,
		Messages: []claudeMessage{
			{Role: "user", Content: prompt},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, claudeAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling Claude API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("Claude API returned %d: %s", resp.StatusCode, string(body))
	}

	var cResp claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return "", fmt.Errorf("decoding Claude response: %w", err)
	}

	var out bytes.Buffer
	for _, block := range cResp.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}
	return out.String(), nil
}
