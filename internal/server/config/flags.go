package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/recipekeeper/internal/flagx"
)

// FlagNames lists the short flags understood by parseFlags. All of them take
// a value; cmd/manage uses the list to find its subcommand.
var FlagNames = []string{"-a", "-d", "-s", "-t", "-r", "-l", "-c", "-config"}

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8000")
//	-d string   PostgreSQL DSN
//	-s string   admin session HMAC secret key
//	-t int      admin session validity, minutes
//	-r string   Redis address for the token cache ("" disables it)
//	-l int      token cache TTL, minutes
//
// Only the flags above are parsed out of os.Args, so subcommands and their
// own flags can follow. Durations are integers in minutes.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-r", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	adminSessionValidity := fs.Int("t", int(config.AdminSessionValidityDuration.Minutes()), "admin_session_validity_duration (in minutes)")

	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "redis address for the token cache")

	tokenCacheTTL := fs.Int("l", int(config.TokenCacheTTL.Minutes()), "token_cache_ttl (in minutes)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AdminSessionValidityDuration = time.Duration(*adminSessionValidity) * time.Minute
	config.TokenCacheTTL = time.Duration(*tokenCacheTTL) * time.Minute
}
