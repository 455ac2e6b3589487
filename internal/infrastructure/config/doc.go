// Package config loads gateway configuration from the environment
// (12-factor) with kelseyhightower/envconfig, plus an optional YAML file
// that extends the market symbol map.
//
// Missing credentials are valid: no NEWS_API_KEY means fallback news, no
// OPENAI_API_KEY means the mock AI stub.
package config
