package main

import (
	"context"
	"log"

	server "github.com/dmitrijs2005/s3vault/internal/server"
	"github.com/dmitrijs2005/s3vault/internal/server/config"
)

func main() {
	cfg := config.LoadConfig()

	app, err := server.NewApp(cfg)
	if err != nil {
		log.Fatalf("app init error: %v", err)
	}

	app.Run(context.Background())
}
