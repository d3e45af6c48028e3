package main

import (
	"context"
	"log"

	"shelfsync/internal/client/cli"
	"shelfsync/internal/client/config"
)

func main() {
	cfg := config.LoadConfig()

	app, err := cli.NewApp(cfg)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(context.Background())
}
