// Command authctl is the command-line client for the gophauth service.
package main

import (
	"fmt"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/client/cli"
)

// Set at build time with -ldflags "-X main.version=...".
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	cmd := cli.NewRootCmd()
	cmd.Version = fmt.Sprintf("%s (commit: %s)", version, commit)

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
