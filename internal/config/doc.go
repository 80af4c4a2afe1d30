// Package config provides centralized configuration management for the
// InsightLens pipeline and its serving layer. It handles loading from
// multiple sources, validation, and a type-safe API for the rest of the
// application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. Configuration file (YAML)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern INSIGHTLENS_* for
// namespacing:
//
//	INSIGHTLENS_SERVER_PORT=8080
//	INSIGHTLENS_PIPELINE_CLUSTER_COUNT=5
//	INSIGHTLENS_PIPELINE_RANDOM_SEED=42
//	INSIGHTLENS_DATABASE_DSN=user:pass@tcp(localhost:3306)/insightlens
//	INSIGHTLENS_LOGGING_LEVEL=info
//
// # Usage
//
// Load configuration at application startup:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
