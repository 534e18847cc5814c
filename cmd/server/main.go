// Command server runs the gophauth authentication service.
package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/server"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
)

func main() {
	cfg := config.LoadConfig()

	app, err := server.NewApp(cfg, os.Stdout)
	if err != nil {
		log.Fatalf("%v", err)
	}

	err = app.Run(context.Background())
	if cerr := app.Close(); cerr != nil {
		log.Printf("db close: %v", cerr)
	}
	if err != nil {
		log.Fatalf("%v", err)
	}
}
