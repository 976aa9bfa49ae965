package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/judgegodwins/paddle-party/api"
	"github.com/judgegodwins/paddle-party/game"
	"github.com/judgegodwins/paddle-party/util"
	"github.com/judgegodwins/paddle-party/ws"
	"golang.org/x/sync/errgroup"
)

func main() {
	util.InitValidator()

	config, err := util.LoadConfig()

	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	manager := ws.NewManager(ws.ManagerConfig{
		Config:   config,
		Settings: game.DefaultSettings(),
	})

	server := api.NewServer(config, manager)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("server running on %v (%v authority)", config.Address(), config.Authority)
		return server.Start()
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal(err)
	}
}
