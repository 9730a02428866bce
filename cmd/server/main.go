package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/api"
	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/auth"
	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/config"
	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/database"
	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/logging"
	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/media"
	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/pagination"
	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/ratelimit"
	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/recipes"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		logging.Fatal().Err(err).Msg("invalid configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	gin.SetMode(cfg.Server.Mode)

	auth.Init(cfg.Auth)
	pagination.SetDefaults(cfg.API.DefaultPageSize, cfg.API.MaxPageSize)
	recipes.SetMediaStore(media.NewLocalStore(cfg.Media, cfg.Server.BaseURL))

	if err := database.Connect(cfg.Database); err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer func() {
		if err := database.Close(database.DB); err != nil {
			logging.Error().Err(err).Msg("failed to close database")
		}
	}()

	if err := database.Migrate(database.DB, recipes.AllModels()...); err != nil {
		logging.Fatal().Err(err).Msg("migrations failed")
	}

	limiter := ratelimit.New(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst, 10*time.Minute)
	go limiter.Run(time.Minute)
	defer limiter.Stop()

	router := api.NewRouter(api.Options{
		BaseURL:        cfg.Server.BaseURL,
		MediaDir:       cfg.Media.Dir,
		MediaURLPath:   cfg.Media.URLPath,
		AuthLimit:      limiter.Middleware(),
		TrustedProxies: cfg.Server.TrustedProxies,
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: true,
	})

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           c.Handler(router),
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logging.Info().Str("addr", server.Addr).Msg("server started")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("listen failed")
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	<-shutdown

	logging.Info().Msg("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logging.Error().Err(err).Msg("server shutdown failed")
		return
	}
	logging.Info().Msg("server stopped cleanly")
}
