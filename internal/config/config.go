package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Shop     ShopConfig
	Keys     APIKeys
	Ai       AIConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	SessionBackend     string // "memory", "redis" or "database"
	StepTopicName      string
}

type DatabaseConfig struct {
	Connection string
}

// ShopConfig describes the catalog site the assistant searches.
type ShopConfig struct {
	SiteBase           string
	SearchPath         string
	Domain             string
	MaxProductLinks    int
	ExtractConcurrency int
}

type APIKeys struct {
	Firecrawl      string
	OpenAI         string
	MidtransServer string
}

type AIConfig struct {
	LLMProvider   string // "ollama" or "openai"
	LLMModel      string
	OllamaBaseURL string
	OpenAIBaseURL string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			SessionBackend:     getEnv("SESSION_BACKEND", "memory"),
			StepTopicName:      getEnv("STEP_PROGRESS_TOPIC_NAME", "WORKFLOW_STEP_PROGRESS"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Shop: ShopConfig{
			SiteBase:           getEnv("SHOP_SITE_BASE", "https://www.musinsa.com"),
			SearchPath:         getEnv("SHOP_SEARCH_PATH", "/search/musinsa/goods"),
			Domain:             getEnv("SHOP_DOMAIN", "musinsa.com"),
			MaxProductLinks:    getEnvAsInt("SHOP_MAX_PRODUCT_LINKS", 5),
			ExtractConcurrency: getEnvAsInt("SHOP_EXTRACT_CONCURRENCY", 5),
		},
		Keys: APIKeys{
			Firecrawl:      getEnv("FIRECRAWL_API_KEY", ""),
			OpenAI:         getEnv("OPENAI_API_KEY", ""),
			MidtransServer: getEnv("MIDTRANS_SERVER_KEY", ""),
		},
		Ai: AIConfig{
			LLMProvider:   getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:      getEnv("LLM_MODEL", "llama3"),
			OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
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
