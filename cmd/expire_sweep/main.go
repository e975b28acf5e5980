package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"dinein/internal/config"
	"dinein/internal/database"
	"dinein/internal/modules/reservation"
	"dinein/internal/repository"
)

// expire_sweep runs the stale-reservation sweep once, for deployments that
// schedule it externally instead of in the API process.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config failed: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	svc := reservation.NewService(repository.NewStore(db), cfg.Engine, nil, nil, log.Printf)
	sweeper, err := reservation.NewSweeper(svc, cfg.ExpireSweepSpec, log.Printf)
	if err != nil {
		log.Fatalf("sweeper: %v", err)
	}

	res, err := sweeper.RunOnce(context.Background())
	if err != nil {
		log.Fatalf("expire sweep failed: %v", err)
	}

	log.Printf("expire sweep completed: scanned=%d expired=%d skipped=%d failed=%d", res.Scanned, res.Expired, res.Skipped, res.Failed)
}
