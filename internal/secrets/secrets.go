// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys and credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value.
//
// Supported key files: anthropic-api-key, catalog-token, catalog-database-id, openalex-email.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/paper-ingest/pkg/types"
)

// Secret file names mapped into the configuration by Apply.
const (
	KeyAnthropicAPIKey   = "anthropic-api-key"
	KeyCatalogToken      = "catalog-token"
	KeyCatalogDatabaseID = "catalog-database-id"
	KeyOpenAlexEmail     = "openalex-email"
)

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// Apply copies known secrets into the configuration. Values already set
// in the configuration win, so explicit config and environment override
// the secrets directory.
func Apply(secrets map[string]string, cfg *types.PipelineConfig) {
	if cfg.Analysis.APIKey == "" {
		cfg.Analysis.APIKey = secrets[KeyAnthropicAPIKey]
	}
	if cfg.Catalog.Token == "" {
		cfg.Catalog.Token = secrets[KeyCatalogToken]
	}
	if cfg.Catalog.DatabaseID == "" {
		cfg.Catalog.DatabaseID = secrets[KeyCatalogDatabaseID]
	}
	if cfg.Acquisition.OpenAlexEmail == "" {
		cfg.Acquisition.OpenAlexEmail = secrets[KeyOpenAlexEmail]
	}
}
