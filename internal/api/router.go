package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/hfakhoury/majalla-chat/internal/api/handler"
	customMiddleware "github.com/hfakhoury/majalla-chat/internal/api/middleware"
	"github.com/hfakhoury/majalla-chat/internal/config"
	"github.com/hfakhoury/majalla-chat/internal/embedding"
	"github.com/hfakhoury/majalla-chat/internal/llm"
	"github.com/hfakhoury/majalla-chat/internal/llm/gemini"
	"github.com/hfakhoury/majalla-chat/internal/llm/openai"
	"github.com/hfakhoury/majalla-chat/internal/memory"
	"github.com/hfakhoury/majalla-chat/internal/nlp"
	mongorepo "github.com/hfakhoury/majalla-chat/internal/repository/mongo"
	redisrepo "github.com/hfakhoury/majalla-chat/internal/repository/redis"
	"github.com/hfakhoury/majalla-chat/internal/retrieval"
	"github.com/hfakhoury/majalla-chat/internal/service"
	"github.com/hfakhoury/majalla-chat/internal/unanswered"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	cfg *config.Config,
	mongoClient *mongorepo.Client,
	redisClient *redisrepo.Client,
	index retrieval.Index,
	sink unanswered.Sink,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Session store
	store := mongorepo.NewSessionStore(mongoClient, cfg.Mongo.Collection)

	// Embedding cache is optional; the gateway embeds on every query
	// without it.
	var cache retrieval.VectorCache
	if redisClient != nil {
		cache = redisrepo.NewEmbeddingCache(redisClient)
	}

	// Retrieval gateway
	embedder := embedding.NewOpenAIEmbedder(cfg.LLM.OpenAI, cfg.Retrieval.EmbedMaxRetries)
	gateway := retrieval.NewGateway(embedder, index, cache)

	// Generation providers
	llmRouter := llm.NewRouter(cfg.LLM.DefaultProvider)
	log.Info().Msgf("Initializing generation providers. Default: %s", cfg.LLM.DefaultProvider)

	if cfg.LLM.OpenAI.APIKey != "" {
		llmRouter.RegisterProvider(openai.NewProvider(cfg.LLM.OpenAI))
	}
	if cfg.LLM.Gemini.APIKey != "" {
		llmRouter.RegisterProvider(gemini.NewProvider(cfg.LLM.Gemini))
	} else {
		log.Warn().Msg("Gemini API key is empty, skipping registration")
	}

	// Language rules and pipeline components
	rules := nlp.Rules()
	normalizer := nlp.NewNormalizer(rules)
	classifier := nlp.NewClassifier(rules)
	mem := memory.New(store, rules)
	synthesizer := service.NewSynthesizer(llmRouter, cfg.LLM.Generation)
	detector := unanswered.NewDetector(sink, rules.CannotAnswerPhrases)

	chatService := service.NewChatService(
		store,
		gateway,
		mem,
		normalizer,
		classifier,
		synthesizer,
		detector,
		cfg.Retrieval,
		cfg.Conversation,
	)

	chatHandler := handler.NewChatHandler(chatService)

	r.Get("/health", handler.HealthCheck)
	r.Get("/ready", handler.ReadyCheck(mongoClient))

	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", chatHandler.Chat)
		r.Get("/chat/history", chatHandler.History)
		r.Get("/llm-providers", handler.ListProviders(llmRouter))

		r.Route("/feedback", func(r chi.Router) {
			r.Post("/", chatHandler.Feedback)
			r.Get("/statistics/{sessionID}", chatHandler.Statistics)
			r.Post("/statistics/{sessionID}/recalculate", chatHandler.RecalculateStatistics)
		})
	})

	return r
}
