package main

import (
	"context"

	"github.com/evetools/mumble-sync/internal/server"
	"github.com/evetools/mumble-sync/internal/server/config"
)

func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()
	app := server.NewApp(cfg)
	app.Run(ctx)
}
