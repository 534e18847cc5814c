// Package config loads settings for the authctl command-line client.
//
// Sources, later ones winning:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file given by --config.
//  3. GOPHAUTH_ADDR, GOPHAUTH_TOKEN_FILE and GOPHAUTH_TIMEOUT.
//
// Command-line flags are applied on top by the cli package.
//
// The JSON file uses timex.Duration, so the timeout may be "10s" or an
// integer number of nanoseconds:
//
//	{
//	  "server_addr": "127.0.0.1:50051",
//	  "token_file": "/home/me/.config/gophauth/tokens.json",
//	  "timeout": "10s"
//	}
package config
