package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Mongo        MongoConfig        `mapstructure:"mongo"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Search       SearchConfig       `mapstructure:"search"`
	LLM          LLMConfig          `mapstructure:"llm"`
	Retrieval    RetrievalConfig    `mapstructure:"retrieval"`
	Conversation ConversationConfig `mapstructure:"conversation"`
	Unanswered   UnansweredConfig   `mapstructure:"unanswered"`
	NLP          NLPConfig          `mapstructure:"nlp"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type MongoConfig struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	User       string `mapstructure:"user"`
	Password   string `mapstructure:"password"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

func (c MongoConfig) URI() string {
	if c.User != "" {
		return fmt.Sprintf("mongodb://%s:%s@%s:%d", c.User, c.Password, c.Host, c.Port)
	}
	return fmt.Sprintf("mongodb://%s:%d", c.Host, c.Port)
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type SearchConfig struct {
	URL        string `mapstructure:"url"`
	APIKey     string `mapstructure:"api_key"`
	Collection string `mapstructure:"collection"`
}

type LLMConfig struct {
	DefaultProvider string           `mapstructure:"default_provider"`
	OpenAI          OpenAIConfig     `mapstructure:"openai"`
	Gemini          GeminiConfig     `mapstructure:"gemini"`
	Generation      GenerationConfig `mapstructure:"generation"`
}

type OpenAIConfig struct {
	APIKey          string `mapstructure:"api_key"`
	Model           string `mapstructure:"model"`
	EmbeddingModel  string `mapstructure:"embedding_model"`
	AzureEndpoint   string `mapstructure:"azure_endpoint"`
	AzureAPIVersion string `mapstructure:"azure_api_version"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type GenerationConfig struct {
	Temperature      float32 `mapstructure:"temperature"`
	MaxTokens        int     `mapstructure:"max_tokens"`
	PresencePenalty  float32 `mapstructure:"presence_penalty"`
	FrequencyPenalty float32 `mapstructure:"frequency_penalty"`
	MaxRetries       int     `mapstructure:"max_retries"`
}

type RetrievalConfig struct {
	TopK             int `mapstructure:"top_k"`
	MaxContextTokens int `mapstructure:"max_context_tokens"`
	EmbedMaxRetries  int `mapstructure:"embed_max_retries"`
}

type ConversationConfig struct {
	HistoryLimit  int `mapstructure:"history_limit"`
	MemoryTurns   int `mapstructure:"memory_turns"`
	TurnCharLimit int `mapstructure:"turn_char_limit"`
}

type UnansweredConfig struct {
	LogPattern string `mapstructure:"log_pattern"`
}

type NLPConfig struct {
	RulesPath string `mapstructure:"rules_path"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	v := viper.New()

	// Set config file path
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/config.yaml"
	}

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// Set defaults
	setDefaults(v)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
		// Config file not found, use defaults and env vars
	}

	// Override with environment variables
	v.AutomaticEnv()
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "90s")
	v.SetDefault("server.shutdown_timeout", "15s")

	// Mongo
	v.SetDefault("mongo.host", "localhost")
	v.SetDefault("mongo.port", 27017)
	v.SetDefault("mongo.database", "majalla_chat")
	v.SetDefault("mongo.collection", "sessions")

	// Redis
	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)

	// Search index
	v.SetDefault("search.url", "http://localhost:6334")
	v.SetDefault("search.collection", "articles")

	// LLM
	v.SetDefault("llm.default_provider", "openai")
	v.SetDefault("llm.generation.temperature", 0.7)
	v.SetDefault("llm.generation.max_tokens", 1000)
	v.SetDefault("llm.generation.presence_penalty", 0.1)
	v.SetDefault("llm.generation.frequency_penalty", 0.1)
	v.SetDefault("llm.generation.max_retries", 3)

	// Retrieval
	v.SetDefault("retrieval.top_k", 8)
	v.SetDefault("retrieval.max_context_tokens", 1200)
	v.SetDefault("retrieval.embed_max_retries", 3)

	// Conversation
	v.SetDefault("conversation.history_limit", 10)
	v.SetDefault("conversation.memory_turns", 5)
	v.SetDefault("conversation.turn_char_limit", 500)

	// Unanswered log
	v.SetDefault("unanswered.log_pattern", "unanswered_questions.%Y%m%d.log")

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

func bindEnvVars(v *viper.Viper) {
	// Mongo
	v.BindEnv("mongo.password", "MONGO_PASSWORD")

	// Redis
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// Search index
	v.BindEnv("search.url", "QDRANT_URL")
	v.BindEnv("search.api_key", "QDRANT_API_KEY")

	// LLM API keys
	v.BindEnv("llm.openai.api_key", "OPENAI_API_KEY")
	v.BindEnv("llm.openai.azure_endpoint", "AZURE_OPENAI_ENDPOINT")
	v.BindEnv("llm.openai.azure_api_version", "AZURE_OPENAI_API_VERSION")
	v.BindEnv("llm.gemini.api_key", "GEMINI_API_KEY")
}
