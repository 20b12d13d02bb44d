// Package config loads typed configuration from environment variables.
//
// It wraps github.com/joho/godotenv (optional .env files) and
// github.com/caarlos0/env/v11 (struct tags). Each configuration type is parsed
// once per process and cached; ResetCache clears the cache in tests.
//
//	var cfg coordinator.Config
//	if err := config.Load(&cfg); err != nil {
//	    log.Fatal(err)
//	}
package config
