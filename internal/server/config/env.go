package config

import "github.com/kelseyhightower/envconfig"

// parseEnv overlays Config fields whose environment variable is set.
// Variables that are absent leave the current value untouched. A malformed
// value (e.g. TOKEN_CACHE_TTL=soon) panics, like a malformed JSON file.
func parseEnv(config *Config) {
	if err := envconfig.Process("", config); err != nil {
		panic(err)
	}
}
