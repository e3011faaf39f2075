package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all runtime settings for the service.
type Config struct {
	Env  string
	Port string

	DB        DBConfig
	LLM       LLMConfig
	Embedder  EmbedderConfig
	WebSearch WebSearchConfig
	Retrieval RetrievalConfig
	Rerank    RerankConfig
	Cache     CacheConfig
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type LLMConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     int // seconds
}

type EmbedderConfig struct {
	URL     string
	Model   string
	Timeout int // seconds
}

type WebSearchConfig struct {
	BaseURL string
	APIKey  string
	Timeout int     // seconds
	RPS     float64 // outbound requests per second
}

type RetrievalConfig struct {
	TopK        int
	LocalBudget int // characters of local evidence retained
	WebBudget   int // characters of web evidence retained
}

type RerankConfig struct {
	Enabled         bool
	VectorWeight    float64
	LexicalWeight   float64
	RecencyWeight   float64
	AuthorityWeight float64
	RelevanceWeight float64
}

type CacheConfig struct {
	TTLSeconds int
}

// Load reads configuration from the environment, with a best-effort .env
// file load first so local development matches deployed behavior.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Env:  getEnv("ENV", "development"),
		Port: getEnv("PORT", "9020"),
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "agent-db"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "agent_user"),
			Password: getSecret("DB_PASSWORD", "DB_PASSWORD_FILE", "agent_password"),
			Name:     getEnv("DB_NAME", "agent_db"),
		},
		LLM: LLMConfig{
			BaseURL:     getEnv("LLM_BASE_URL", "https://api.openai.com/v1"),
			APIKey:      getSecret("LLM_API_KEY", "LLM_API_KEY_FILE", ""),
			Model:       getEnv("LLM_MODEL", "gpt-4o-mini"),
			Temperature: getEnvFloat("LLM_TEMPERATURE", 0.1),
			MaxTokens:   getEnvInt("LLM_MAX_TOKENS", 800),
			Timeout:     getEnvInt("LLM_TIMEOUT_SECONDS", 30),
		},
		Embedder: EmbedderConfig{
			URL:     getEnv("EMBEDDER_URL", "http://ollama:11434"),
			Model:   getEnv("EMBEDDING_MODEL", "nomic-embed-text"),
			Timeout: getEnvInt("EMBEDDER_TIMEOUT_SECONDS", 30),
		},
		WebSearch: WebSearchConfig{
			BaseURL: getEnv("WEB_SEARCH_BASE_URL", "https://api.tavily.com"),
			APIKey:  getSecret("WEB_SEARCH_API_KEY", "WEB_SEARCH_API_KEY_FILE", ""),
			Timeout: getEnvInt("WEB_SEARCH_TIMEOUT_SECONDS", 20),
			RPS:     getEnvFloat("WEB_SEARCH_RPS", 2.0),
		},
		Retrieval: RetrievalConfig{
			TopK:        getEnvInt("RETRIEVAL_TOP_K", 6),
			LocalBudget: getEnvInt("LOCAL_EVIDENCE_BUDGET", 2000),
			WebBudget:   getEnvInt("WEB_EVIDENCE_BUDGET", 2000),
		},
		Rerank: RerankConfig{
			Enabled:         getEnvBool("RERANK_ENABLED", true),
			VectorWeight:    getEnvFloat("RERANK_VECTOR_WEIGHT", 0.6),
			LexicalWeight:   getEnvFloat("RERANK_LEXICAL_WEIGHT", 0.4),
			RecencyWeight:   getEnvFloat("RERANK_RECENCY_WEIGHT", 0.3),
			AuthorityWeight: getEnvFloat("RERANK_AUTHORITY_WEIGHT", 0.3),
			RelevanceWeight: getEnvFloat("RERANK_RELEVANCE_WEIGHT", 0.4),
		},
		Cache: CacheConfig{
			TTLSeconds: getEnvInt("CACHE_TTL_SECONDS", 900),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getSecret(envKey, fileEnvKey, fallback string) string {
	if value, ok := os.LookupEnv(envKey); ok {
		return value
	}
	if filePath, ok := os.LookupEnv(fileEnvKey); ok {
		content, err := os.ReadFile(filePath)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}
