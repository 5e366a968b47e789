package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hfakhoury/majalla-chat/internal/api"
	"github.com/hfakhoury/majalla-chat/internal/config"
	"github.com/hfakhoury/majalla-chat/internal/nlp"
	mongorepo "github.com/hfakhoury/majalla-chat/internal/repository/mongo"
	redisrepo "github.com/hfakhoury/majalla-chat/internal/repository/redis"
	"github.com/hfakhoury/majalla-chat/internal/retrieval/qdrant"
	"github.com/hfakhoury/majalla-chat/internal/unanswered"
)

func main() {
	// Load .env file - try multiple locations
	envPaths := []string{".env", "../.env", "../../.env"}
	for _, p := range envPaths {
		if err := godotenv.Load(p); err == nil {
			fmt.Printf("Loaded .env from: %s\n", p)
			break
		}
	}

	// Setup logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if level, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	log.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Msg("Starting magazine chat API server")

	// Externally loadable language rules; compiled defaults otherwise
	if cfg.NLP.RulesPath != "" {
		nlp.SetRulesPath(cfg.NLP.RulesPath)
	}

	// Initialize document store
	mongoClient, err := mongorepo.NewClient(context.Background(), cfg.Mongo)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer mongoClient.Close(context.Background())

	// Initialize Redis (optional, used as embedding cache)
	var redisClient *redisrepo.Client
	if cfg.Redis.Enabled {
		redisClient, err = redisrepo.NewClient(cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to connect to Redis, continuing without embedding cache")
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	// Initialize search index
	index, err := qdrant.New(qdrant.Config{
		URL:            cfg.Search.URL,
		APIKey:         cfg.Search.APIKey,
		CollectionName: cfg.Search.Collection,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to search index")
	}
	defer index.Close()

	// Initialize unanswered-question sink
	sink, err := unanswered.NewFileSink(cfg.Unanswered.LogPattern)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open unanswered question log")
	}

	// Initialize router
	router := api.NewRouter(cfg, mongoClient, redisClient, index, sink)

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
