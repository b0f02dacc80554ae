package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/recipekeeper/internal/flagx"
	"github.com/dmitrijs2005/recipekeeper/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration so both "5m" and integer nanoseconds are accepted.
// Pointers distinguish "absent" from zero values, so a partial file only
// overrides what it names.
type JsonConfig struct {
	EndpointAddrHTTP             *string         `json:"endpoint_addr_http"`
	DatabaseDSN                  *string         `json:"database_dsn"`
	SecretKey                    *string         `json:"secret_key"`
	AdminSessionValidityDuration *timex.Duration `json:"admin_session_validity_duration"`
	RedisAddr                    *string         `json:"redis_addr"`
	TokenCacheTTL                *timex.Duration `json:"token_cache_ttl"`
	PasswordHashCost             *int            `json:"password_hash_cost"`
	LogLevel                     *string         `json:"log_level"`
}

// parseJson loads configuration values from the file named by -c/-config
// into config. Without the flag nothing happens. An unreadable file or
// invalid JSON panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigFilePath()

	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	if c.EndpointAddrHTTP != nil {
		config.EndpointAddrHTTP = *c.EndpointAddrHTTP
	}
	if c.DatabaseDSN != nil {
		config.DatabaseDSN = *c.DatabaseDSN
	}
	if c.SecretKey != nil {
		config.SecretKey = *c.SecretKey
	}
	if c.AdminSessionValidityDuration != nil {
		config.AdminSessionValidityDuration = c.AdminSessionValidityDuration.Duration
	}
	if c.RedisAddr != nil {
		config.RedisAddr = *c.RedisAddr
	}
	if c.TokenCacheTTL != nil {
		config.TokenCacheTTL = c.TokenCacheTTL.Duration
	}
	if c.PasswordHashCost != nil {
		config.PasswordHashCost = *c.PasswordHashCost
	}
	if c.LogLevel != nil {
		config.LogLevel = *c.LogLevel
	}
}
