// Package config handles configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	// Server configuration
	Host string `envconfig:"LEGALRAG_HOST" yaml:"host"`
	Port int    `envconfig:"LEGALRAG_PORT" yaml:"port"`

	// OpenAI configuration
	OpenAI OpenAIConfig `yaml:"openai"`

	// Qdrant configuration
	Qdrant QdrantConfig `yaml:"qdrant"`

	// Retrieval configuration
	Retrieval RetrievalConfig `yaml:"retrieval"`

	// Cache configuration
	Cache CacheConfig `yaml:"cache"`

	// Bus configuration
	Bus BusConfig `yaml:"bus"`

	// Data paths
	Data DataConfig `yaml:"data"`

	// Logging configuration
	Log LogConfig `yaml:"log"`

	// Security configuration
	Security SecurityConfig `yaml:"security"`
}

// OpenAIConfig holds OpenAI API settings.
type OpenAIConfig struct {
	APIKey             string        `envconfig:"OPENAI_API_KEY" yaml:"api_key"`
	BaseURL            string        `envconfig:"OPENAI_BASE_URL" yaml:"base_url"`
	EmbeddingModel     string        `envconfig:"EMBEDDING_MODEL" yaml:"embedding_model"`
	EmbeddingDimension int           `envconfig:"EMBEDDING_DIMENSION" yaml:"embedding_dimension"`
	LLMModel           string        `envconfig:"LLM_MODEL" yaml:"llm_model"`
	LLMTemperature     float32       `envconfig:"LLM_TEMPERATURE" yaml:"llm_temperature"`
	MaxTokens          int           `envconfig:"MAX_TOKENS" yaml:"max_tokens"`
	Timeout            time.Duration `envconfig:"OPENAI_TIMEOUT" yaml:"timeout"`
}

// QdrantConfig holds Qdrant connection settings.
type QdrantConfig struct {
	Host       string        `envconfig:"QDRANT_HOST" yaml:"host"`
	Port       int           `envconfig:"QDRANT_PORT" yaml:"port"`
	APIKey     string        `envconfig:"QDRANT_API_KEY" yaml:"api_key"`
	UseTLS     bool          `envconfig:"QDRANT_USE_TLS" yaml:"use_tls"`
	Collection string        `envconfig:"QDRANT_COLLECTION_NAME" yaml:"collection"`
	Timeout    time.Duration `envconfig:"QDRANT_TIMEOUT" yaml:"timeout"`
}

// RetrievalConfig holds FAQ retrieval settings.
type RetrievalConfig struct {
	TopK int `envconfig:"TOP_K_RESULTS" yaml:"top_k"`
	// SimilarityThreshold was tuned down from 0.7 to catch semantic
	// variations of the same question; treat it as deployment config.
	SimilarityThreshold float32 `envconfig:"SIMILARITY_THRESHOLD" yaml:"similarity_threshold"`
}

// CacheConfig holds query embedding cache settings.
type CacheConfig struct {
	Type     string `envconfig:"LEGALRAG_CACHE_TYPE" yaml:"type"`
	Size     int    `envconfig:"LEGALRAG_CACHE_SIZE" yaml:"size"`
	TTL      int    `envconfig:"LEGALRAG_CACHE_TTL" yaml:"ttl"` // seconds, 0 = no expiry
	RedisURL string `envconfig:"LEGALRAG_REDIS_URL" yaml:"redis_url"`
}

// BusConfig holds analytics event bus settings.
type BusConfig struct {
	Type         string `envconfig:"LEGALRAG_BUS_TYPE" yaml:"type"`
	KafkaBrokers string `envconfig:"LEGALRAG_KAFKA_BROKERS" yaml:"kafka_brokers"`
	KafkaTopic   string `envconfig:"LEGALRAG_KAFKA_TOPIC" yaml:"kafka_topic"`
}

// DataConfig holds on-disk data locations.
type DataConfig struct {
	FAQPath string `envconfig:"LEGALRAG_FAQ_PATH" yaml:"faq_path"`
	LogDB   string `envconfig:"LEGALRAG_LOG_DB" yaml:"log_db"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" yaml:"level"`
	Format string `envconfig:"LOG_FORMAT" yaml:"format"`
}

// SecurityConfig holds security settings.
type SecurityConfig struct {
	RateLimit   int    `envconfig:"LEGALRAG_RATE_LIMIT" yaml:"rate_limit"` // req/sec per client, 0 = disabled
	CORSOrigins string `envconfig:"LEGALRAG_CORS_ORIGINS" yaml:"cors_origins"`
}

// Load loads configuration from environment variables and optional config file.
// Precedence: defaults < config file < environment.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}

	setDefaults(cfg)

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("processing env config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables only.
func LoadFromEnv() (*Config, error) {
	return Load("")
}

func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

func setDefaults(cfg *Config) {
	cfg.Host = "0.0.0.0"
	cfg.Port = 8000

	cfg.OpenAI = OpenAIConfig{
		BaseURL:            "https://api.openai.com/v1",
		EmbeddingModel:     "text-embedding-3-small",
		EmbeddingDimension: 1536,
		LLMModel:           "gpt-4-turbo-preview",
		LLMTemperature:     0.7,
		MaxTokens:          500,
		Timeout:            60 * time.Second,
	}

	cfg.Qdrant = QdrantConfig{
		Host:       "localhost",
		Port:       6334,
		Collection: "legal_faqs",
		Timeout:    30 * time.Second,
	}

	cfg.Retrieval = RetrievalConfig{
		TopK:                2,
		SimilarityThreshold: 0.6,
	}

	cfg.Cache = CacheConfig{
		Type:     "memory",
		Size:     10000,
		TTL:      0,
		RedisURL: "redis://localhost:6379",
	}

	cfg.Bus = BusConfig{
		Type:       "memory",
		KafkaTopic: "legalrag.interactions",
	}

	cfg.Data = DataConfig{
		FAQPath: "data/legal_faqs.json",
		LogDB:   "data/interactions.db",
	}

	cfg.Log = LogConfig{
		Level:  "info",
		Format: "text",
	}

	cfg.Security = SecurityConfig{
		RateLimit:   0,
		CORSOrigins: "http://localhost:3000,http://localhost:5173",
	}
}

// Validate validates the configuration. A missing OpenAI API key is a fatal
// startup error; everything else has a workable default.
func (c *Config) Validate() error {
	var errs []string

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, "port must be between 1 and 65535")
	}

	if strings.TrimSpace(c.OpenAI.APIKey) == "" {
		errs = append(errs, "OPENAI_API_KEY is required")
	}

	if c.OpenAI.EmbeddingDimension < 1 {
		errs = append(errs, "embedding_dimension must be positive")
	}

	if c.OpenAI.LLMTemperature < 0 || c.OpenAI.LLMTemperature > 2 {
		errs = append(errs, "llm_temperature must be between 0 and 2")
	}

	if c.OpenAI.MaxTokens < 1 {
		errs = append(errs, "max_tokens must be positive")
	}

	if c.Qdrant.Port < 1 || c.Qdrant.Port > 65535 {
		errs = append(errs, "qdrant port must be between 1 and 65535")
	}

	if c.Qdrant.Collection == "" {
		errs = append(errs, "qdrant collection name cannot be empty")
	}

	if c.Retrieval.TopK < 1 {
		errs = append(errs, "top_k must be at least 1")
	}

	if c.Retrieval.SimilarityThreshold < 0 || c.Retrieval.SimilarityThreshold > 1 {
		errs = append(errs, "similarity_threshold must be between 0 and 1")
	}

	validCacheTypes := map[string]bool{"memory": true, "redis": true}
	if !validCacheTypes[c.Cache.Type] {
		errs = append(errs, fmt.Sprintf("invalid cache type: %s (must be memory or redis)", c.Cache.Type))
	}

	validBusTypes := map[string]bool{"memory": true, "kafka": true}
	if !validBusTypes[c.Bus.Type] {
		errs = append(errs, fmt.Sprintf("invalid bus type: %s (must be memory or kafka)", c.Bus.Type))
	}
	if c.Bus.Type == "kafka" && strings.TrimSpace(c.Bus.KafkaBrokers) == "" {
		errs = append(errs, "kafka_brokers is required when bus type is kafka")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Log.Level] {
		errs = append(errs, fmt.Sprintf("invalid log level: %s (must be debug, info, warn, or error)", c.Log.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[c.Log.Format] {
		errs = append(errs, fmt.Sprintf("invalid log format: %s (must be text or json)", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// Address returns the server address.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// KafkaBrokerList splits the configured broker string into addresses.
func (c *BusConfig) KafkaBrokerList() []string {
	var brokers []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
