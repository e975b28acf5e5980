package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"dinein/internal/config"
	"dinein/internal/database"
	"dinein/internal/modules/floor"
	"dinein/internal/modules/notification"
	"dinein/internal/modules/reservation"
	jwtsvc "dinein/internal/pkg/jwt"
	"dinein/internal/repository"
	"dinein/internal/server"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("level=info msg=no .env file loaded")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("level=fatal msg=config err=%v", err)
	}
	if cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("level=fatal msg=db connect err=%v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("level=fatal msg=migrate err=%v", err)
	}

	var notifier reservation.Notifier
	if cfg.Twilio.Enabled() {
		notifier = notification.NewSMSNotifier(cfg.Twilio, cfg.Engine.Loc(), log.Printf)
	} else {
		log.Printf("level=info msg=twilio not configured, customer messages go to the log")
		notifier = notification.NewLogNotifier(cfg.Engine.Loc(), log.Printf)
	}

	hub := floor.NewHub(log.Printf)
	app := server.New(server.Deps{
		Config:   cfg,
		Store:    repository.NewStore(db),
		Tokens:   jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL),
		Notifier: notifier,
		Hub:      hub,
		Logf:     log.Printf,
	})

	sweeper, err := reservation.NewSweeper(app.Reservations, cfg.ExpireSweepSpec, log.Printf)
	if err != nil {
		log.Fatalf("level=fatal msg=sweeper err=%v", err)
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           app.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sweeper.Start()
	go func() {
		log.Printf("level=info msg=listening addr=%s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("level=fatal msg=http server err=%v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("level=info msg=shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("level=error msg=http shutdown err=%v", err)
	}
	sweeper.Stop(shutdownCtx)
	hub.Close()

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
