package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App   AppConfig
	Rag   RagConfig
	Keys  APIKeys
	Ai    AIConfig
	Trace TraceConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	LLMLogFilePath     string
	CorsAllowedOrigins string
	NatsURL            string // empty disables the event sink
	RedisURL           string // empty disables the shared embedding cache
	UploadLimitMB      int
}

type RagConfig struct {
	ChunkSize     int
	ChunkOverlap  int
	TopK          int
	QuestionLimit int
	SessionTTL    time.Duration
	PurgeSchedule string // cron spec; empty disables the background purge
	IndexWorkers  int
}

type APIKeys struct {
	HuggingFace  string
	GoogleGemini string
	Jina         string
	OpenAI       string
}

type AIConfig struct {
	EmbeddingProvider  string // "hash", "ollama", "openai", "jina" or "gemini"
	EmbeddingModel     string
	EmbeddingBaseURL   string
	EmbeddingCacheSize int
	EmbeddingCacheTTL  time.Duration
	LLMProvider        string // "huggingface", "huggingface-chat", "ollama" or "gemini"
	LLMModel           string
	LLMBaseURL         string
	LLMMaxTokens       int
	LLMTemperature     float64
	OllamaBaseURL      string
}

type TraceConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			LLMLogFilePath:     getEnv("LLM_LOG_FILE_PATH", "logs/llm.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
			UploadLimitMB:      getEnvAsInt("UPLOAD_LIMIT_MB", 10),
		},
		Rag: RagConfig{
			ChunkSize:     getEnvAsInt("CHUNK_SIZE", 500),
			ChunkOverlap:  getEnvAsInt("CHUNK_OVERLAP", 0),
			TopK:          getEnvAsInt("RETRIEVAL_TOP_K", 3),
			QuestionLimit: getEnvAsInt("QUESTION_LIMIT", 7),
			SessionTTL:    getEnvAsDuration("SESSION_TTL", 15*time.Minute),
			PurgeSchedule: getEnv("PURGE_SCHEDULE", ""),
			IndexWorkers:  getEnvAsInt("INDEX_WORKERS", 4),
		},
		Keys: APIKeys{
			HuggingFace:  getEnv("HF_TOKEN", ""),
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			Jina:         getEnv("JINA_API_KEY", ""),
			OpenAI:       getEnv("OPENAI_API_KEY", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider:  getEnv("EMBEDDING_PROVIDER", "hash"),
			EmbeddingModel:     getEnv("EMBEDDING_MODEL", ""),
			EmbeddingBaseURL:   getEnv("EMBEDDING_BASE_URL", ""),
			EmbeddingCacheSize: getEnvAsInt("EMBEDDING_CACHE_SIZE", 4096),
			EmbeddingCacheTTL:  getEnvAsDuration("EMBEDDING_CACHE_TTL", time.Hour),
			LLMProvider:        getEnv("LLM_PROVIDER", "huggingface"),
			LLMModel:           getEnv("LLM_MODEL", "google/flan-t5-large"),
			LLMBaseURL:         getEnv("LLM_BASE_URL", ""),
			LLMMaxTokens:       getEnvAsInt("LLM_MAX_TOKENS", 300),
			LLMTemperature:     getEnvAsFloat("LLM_TEMPERATURE", 0.7),
			OllamaBaseURL:      getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		},
		Trace: TraceConfig{
			Enabled:     getEnvAsBool("OTEL_ENABLED", false),
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "insightrag-backend"),
		},
	}
}

// EmbeddingKey picks the API key matching the configured embedding provider.
func (c *Config) EmbeddingKey() string {
	switch c.Ai.EmbeddingProvider {
	case "gemini":
		return c.Keys.GoogleGemini
	case "jina":
		return c.Keys.Jina
	case "openai":
		return c.Keys.OpenAI
	default:
		return ""
	}
}

// LLMKey picks the API key matching the configured generation provider.
func (c *Config) LLMKey() string {
	switch c.Ai.LLMProvider {
	case "gemini":
		return c.Keys.GoogleGemini
	case "huggingface", "huggingface-chat":
		return c.Keys.HuggingFace
	default:
		return ""
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
