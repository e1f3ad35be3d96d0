package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/AbdullahSoftDev/Daily-Dish-img/pkg/challenge"
	"github.com/AbdullahSoftDev/Daily-Dish-img/pkg/dualstore"
)

func main() {
	slog.Info("Starting challenge cleanup job")
	start := time.Now()

	localStore, err := dualstore.NewSQLiteStore(conf.LocalStorePath)
	if err != nil {
		slog.Error("Error opening local store", slog.String("error", err.Error()))
		return
	}
	defer func() {
		if err := localStore.Close(); err != nil {
			slog.Error("Error closing local store", slog.String("error", err.Error()))
		}
	}()

	challengeStore := challenge.NewStore(localStore)
	purged, err := challengeStore.PurgeExpired(context.Background())
	if err != nil {
		slog.Error("Error purging expired challenges", slog.String("error", err.Error()))
		return
	}

	slog.Info("Challenge cleanup job completed",
		slog.Int("purged", purged),
		slog.String("duration", time.Since(start).String()),
	)
}
