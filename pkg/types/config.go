// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "paper-ingest/0.1").
	UserAgent string `mapstructure:"user_agent" yaml:"user_agent"`
}

// AcquisitionConfig holds settings for downloading PDFs and resolving DOIs.
type AcquisitionConfig struct {
	HTTPConfig `mapstructure:",squash" yaml:",inline"`

	// RetryCount is the number of download attempts (default 3).
	RetryCount int `mapstructure:"retry_count" yaml:"retry_count"`

	// RetryDelay is the fixed delay between download attempts (default 2s).
	RetryDelay time.Duration `mapstructure:"retry_delay" yaml:"retry_delay"`

	// OpenAlexEmail is appended to OpenAlex requests for the polite pool.
	OpenAlexEmail string `mapstructure:"openalex_email" yaml:"openalex_email,omitempty"`
}

// AnalysisConfig holds settings for the model-backed analysis stage.
type AnalysisConfig struct {
	// Model is the model identifier sent to the messages API.
	Model string `mapstructure:"model" yaml:"model"`

	// APIKey authenticates against the messages API.
	APIKey string `mapstructure:"api_key" yaml:"api_key,omitempty" validate:"required"`

	// MaxTextLength is the character budget forwarded to the model
	// (default 30000). Longer texts are truncated head-and-tail.
	MaxTextLength int `mapstructure:"max_text_length" yaml:"max_text_length"`

	// MaxRetries is the number of attempts for transient API failures
	// (default 3).
	MaxRetries int `mapstructure:"max_retries" yaml:"max_retries"`

	// RetryBaseDelay seeds the exponential backoff between attempts
	// (default 2s, doubling each attempt).
	RetryBaseDelay time.Duration `mapstructure:"retry_base_delay" yaml:"retry_base_delay"`
}

// CatalogConfig holds settings for the external paper catalog.
type CatalogConfig struct {
	// Token is the bearer credential attached to every catalog call.
	Token string `mapstructure:"token" yaml:"token,omitempty" validate:"required"`

	// DatabaseID identifies the catalog database records are written to.
	DatabaseID string `mapstructure:"database_id" yaml:"database_id" validate:"required"`

	// Timeout bounds each catalog call (default 15s).
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`

	// DefaultStatus is the Status select assigned to new records
	// (default "Inbox").
	DefaultStatus string `mapstructure:"default_status" yaml:"default_status"`
}

// BatchConfig holds settings for folder batch processing and watch mode.
type BatchConfig struct {
	// PaperDelay is the pause between consecutive papers, respecting the
	// analysis service's rate limits (default 2s).
	PaperDelay time.Duration `mapstructure:"paper_delay" yaml:"paper_delay"`

	// RescanInterval is how often watch mode rescans the folder in
	// addition to filesystem events (default 30s).
	RescanInterval time.Duration `mapstructure:"rescan_interval" yaml:"rescan_interval"`

	// RecordsDir, when set, receives a YAML metadata record per
	// successfully processed paper.
	RecordsDir string `mapstructure:"records_dir" yaml:"records_dir,omitempty"`

	// LedgerPath is the SQLite ledger of processed papers. Empty disables
	// the ledger.
	LedgerPath string `mapstructure:"ledger_path" yaml:"ledger_path,omitempty"`
}

// PipelineConfig groups all stage configurations. It is constructed once at
// process start and passed by reference into each component's constructor.
type PipelineConfig struct {
	HTTP        HTTPConfig        `mapstructure:"http" yaml:"http"`
	Acquisition AcquisitionConfig `mapstructure:"acquisition" yaml:"acquisition"`
	Analysis    AnalysisConfig    `mapstructure:"analysis" yaml:"analysis"`
	Catalog     CatalogConfig     `mapstructure:"catalog" yaml:"catalog"`
	Batch       BatchConfig       `mapstructure:"batch" yaml:"batch"`

	// LogLevel sets the zerolog level (default "info").
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
}

// DefaultConfig returns a PipelineConfig with every tunable at its default.
// Credentials stay empty and must come from config, env, or secrets.
func DefaultConfig() PipelineConfig {
	return PipelineConfig{
		HTTP: HTTPConfig{
			Timeout:   60 * time.Second,
			UserAgent: "paper-ingest/0.1",
		},
		Acquisition: AcquisitionConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   30 * time.Second,
				UserAgent: "paper-ingest/0.1",
			},
			RetryCount: 3,
			RetryDelay: 2 * time.Second,
		},
		Analysis: AnalysisConfig{
			Model:          "claude-sonnet-4-5-20250929",
			MaxTextLength:  30000,
			MaxRetries:     3,
			RetryBaseDelay: 2 * time.Second,
		},
		Catalog: CatalogConfig{
			Timeout:       15 * time.Second,
			DefaultStatus: "Inbox",
		},
		Batch: BatchConfig{
			PaperDelay:     2 * time.Second,
			RescanInterval: 30 * time.Second,
		},
		LogLevel: "info",
	}
}

// remediation maps validator field namespaces to actionable hints shown
// alongside validation failures.
var remediation = map[string]string{
	"PipelineConfig.Analysis.APIKey":    "set analysis.api_key or add .secrets/anthropic-api-key",
	"PipelineConfig.Catalog.Token":      "set catalog.token or add .secrets/catalog-token",
	"PipelineConfig.Catalog.DatabaseID": "set catalog.database_id or add .secrets/catalog-database-id",
}

// Validate checks the configuration eagerly and returns a single error
// aggregating every missing or invalid field, rather than failing on the
// first one.
func (c *PipelineConfig) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	var lines []string
	for _, fe := range verrs {
		line := fmt.Sprintf("%s: failed %q check", fe.Namespace(), fe.Tag())
		if hint, found := remediation[fe.Namespace()]; found {
			line += " (" + hint + ")"
		}
		lines = append(lines, line)
	}
	return fmt.Errorf("invalid configuration:\n  %s", strings.Join(lines, "\n  "))
}
