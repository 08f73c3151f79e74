package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/viewstore/internal/logging"
	"github.com/dmitrijs2005/viewstore/internal/server"
	"github.com/dmitrijs2005/viewstore/internal/server/config"
)

func main() {
	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
	}

	level, _ := cfg.SlogLevel()
	logger := logging.NewJSONLogger(os.Stdout, level)

	ctx := context.Background()
	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "init failed", "error", err)
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		logger.Error(ctx, "server failed", "error", err)
		os.Exit(1)
	}
}
