package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Ai       AIConfig
	Rag      RagConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	LLMProvider          string // "ollama" or "openai"
	LLMModel             string // e.g. "llama3", "gpt-4o-mini"
	OllamaBaseURL        string
	OpenAIAPIKey         string
	EmbeddingProvider    string // "gemini" or "ollama"
	OllamaEmbeddingModel string
	GeminiAPIKey         string
	TavilyAPIKey         string
}

type RagConfig struct {
	Mode               string // "simple" or "graded"
	MaxContextNotes    int
	ConversationWindow int
	MaxCycles          int
	RetrieveTimeout    time.Duration
	ConversationTTL    time.Duration
	EmbedNoteTopic     string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			LLMProvider:          getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:             getEnv("LLM_MODEL", "llama3"),
			OllamaBaseURL:        getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OpenAIAPIKey:         getEnv("OPENAI_API_KEY", ""),
			EmbeddingProvider:    getEnv("EMBEDDING_PROVIDER", "gemini"),
			OllamaEmbeddingModel: getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			GeminiAPIKey:         getEnv("GOOGLE_GEMINI_API_KEY", ""),
			TavilyAPIKey:         getEnv("TAVILY_API_KEY", ""),
		},
		Rag: RagConfig{
			Mode:               getEnv("RAG_MODE", "graded"),
			MaxContextNotes:    getEnvAsInt("MAX_CONTEXT_NOTES", 5),
			ConversationWindow: getEnvAsInt("CONVERSATION_WINDOW", 10),
			MaxCycles:          getEnvAsInt("MAX_CYCLES", 3),
			RetrieveTimeout:    getEnvAsDuration("RETRIEVE_TIMEOUT", 10*time.Second),
			ConversationTTL:    getEnvAsDuration("CONVERSATION_TTL", 0),
			EmbedNoteTopic:     getEnv("EMBED_NOTE_CONTENT_TOPIC_NAME", "EMBED_NOTE_CONTENT"),
		},
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

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
