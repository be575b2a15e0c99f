package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yungbote/pulsenet-backend/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx)
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		application.Close(closeCtx)
	}()

	application.Log.Info("PulseNet backend starting",
		"port", application.Cfg.Port,
		"environment", application.Cfg.Environment,
		"storage", application.Cfg.Storage.Driver,
		"relay_ready", application.Clients.Relay.Ready(),
	)
	if err := application.Run(ctx); err != nil {
		application.Log.Error("server failed", "error", err)
		return
	}
	application.Log.Info("PulseNet backend stopped")
}
