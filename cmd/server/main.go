// Command server runs the foodgram HTTP API.
package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/foodgram/internal/server"
	"github.com/dmitrijs2005/foodgram/internal/server/config"
)

func main() {
	cfg := config.LoadConfig()

	app, err := server.NewApp(cfg)
	if err != nil {
		log.Printf("foodgram: %v", err)
		os.Exit(1)
	}

	app.Run(context.Background())
}
