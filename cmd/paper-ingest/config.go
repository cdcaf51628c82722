// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-ingest/internal/logging"
	"github.com/pdiddy/paper-ingest/internal/secrets"
	"github.com/pdiddy/paper-ingest/pkg/types"

	"github.com/rs/zerolog"
)

// buildConfig layers defaults, the config file, environment, and secrets
// into one validated configuration. Precedence, highest first: flags
// (applied by callers), environment, config file, secrets, defaults.
func buildConfig(cmd *cobra.Command) (*types.PipelineConfig, zerolog.Logger, error) {
	cfg := types.DefaultConfig()
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("reading configuration: %w", err)
	}
	secrets.Apply(loadedSecrets, &cfg)

	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}

	if err := cfg.Validate(); err != nil {
		return nil, zerolog.Nop(), err
	}

	return &cfg, logging.New(cfg.LogLevel), nil
}
