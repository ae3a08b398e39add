package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"colabora/internal/config"
	"colabora/internal/db"
	"colabora/internal/live"
	"colabora/internal/logger"
	"colabora/internal/router"
	"colabora/internal/services"
	"colabora/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	envErr := godotenv.Load()

	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogPretty)
	if envErr != nil {
		log.Info().Msg("no .env file found, reading configuration from the environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	cache, err := utils.NewCache(128)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create cache")
	}
	hub := live.NewHub(log)
	defer hub.Close()

	ranking := services.NewRankingService(conn, cache, hub, cfg.RankingCacheTTL, log)
	proposals := services.NewProposalService(conn, hub, ranking, log)
	ranking.OnRefresh(proposals.PublishFeed)
	ranking.Start(ctx)

	var blobs services.BlobStore
	if cfg.ImgurClientID != "" {
		blobs = services.NewImgurBlobStore(cfg.ImgurClientID)
		log.Info().Msg("storing images on imgur")
	} else {
		local, err := services.NewLocalBlobStore(cfg.MediaDir, cfg.PublicBaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to prepare media directory")
		}
		blobs = local
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(logger.GinLogger(log), gin.Recovery())
	r.MaxMultipartMemory = services.MaxImageBytes

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{Path: "/", MaxAge: 30 * 24 * 3600, HttpOnly: true, SameSite: http.SameSiteLaxMode})
	r.Use(sessions.Sessions("colabora_session", store))

	deps := router.Deps{
		Auth:      services.NewAuthService(conn, cfg.JWTSecret, log),
		Proposals: proposals,
		Ledger:    services.NewVoteLedger(conn, ranking, log),
		Comments:  services.NewCommentService(conn, hub, log),
		Ranking:   ranking,
		Blobs:     blobs,
		Hub:       hub,
		Log:       log,
	}
	if cfg.ImgurClientID == "" {
		deps.MediaDir = cfg.MediaDir
	}
	router.RegisterRoutes(r, deps)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Colabora server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	if sqlDB, err := conn.DB(); err == nil {
		sqlDB.Close()
	}
}
