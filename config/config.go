package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment  string
	Domains      []string
	CertCacheDir string
	HTTPPort     string
	HTTPSPort    string

	DatabaseURL string

	SecretKey string
	TokenTTL  time.Duration

	OpenSearchURL      string
	OpenSearchUser     string
	OpenSearchPassword string
	OpenSearchIndex    string

	GenerationAPIURL string
	GenerationAPIKey string
	EmbeddingAPIURL  string
	EmbeddingAPIKey  string
	EmbeddingModel   string

	MaxUploadBytes    int64
	MaxChunkChars     int
	SearchResultLimit int
	TargetWordCount   int
	ContextCharBudget int

	RetentionDays   int
	CleanupInterval time.Duration

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string
	TwilioToNumber   string
}

var isTest bool

func init() {
	isTest = os.Getenv("GO_ENVIRONMENT") == "test"
	if !isTest {
		err := godotenv.Load()
		if err != nil {
			log.Println("Warning: Error loading .env file:", err)
		}
	}
}

func Load() Config {
	return Config{
		Environment:  getEnv("ENVIRONMENT", "development"),
		Domains:      []string{getEnv("DOMAIN", "example.com")},
		CertCacheDir: getEnv("CERT_CACHE_DIR", "/etc/letsencrypt/live/example.com"),
		HTTPPort:     getEnv("HTTP_PORT", "8086"),
		HTTPSPort:    getEnv("HTTPS_PORT", "443"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		SecretKey: getEnv("SECRET_KEY", "your-fallback-secret-key-here"),
		TokenTTL:  time.Duration(getEnvAsInt("TOKEN_TTL_HOURS", 24)) * time.Hour,

		OpenSearchURL:      getEnv("OPENSEARCH_URL", "https://localhost:9200"),
		OpenSearchUser:     getEnv("OPENSEARCH_USER", "admin"),
		OpenSearchPassword: getEnv("OPENSEARCH_PASSWORD", ""),
		OpenSearchIndex:    getEnv("OPENSEARCH_INDEX", "documents"),

		GenerationAPIURL: getEnv("GENERATION_API_URL", "http://localhost:8080/generate"),
		GenerationAPIKey: getEnv("GENERATION_API_KEY", ""),
		EmbeddingAPIURL:  getEnv("EMBEDDING_API_URL", "https://api.openai.com/v1/embeddings"),
		EmbeddingAPIKey:  getEnv("OPENAI_API_KEY", ""),
		EmbeddingModel:   getEnv("EMBEDDING_MODEL", "text-embedding-ada-002"),

		MaxUploadBytes:    int64(getEnvAsInt("MAX_UPLOAD_BYTES", 16<<20)),
		MaxChunkChars:     getEnvAsInt("MAX_CHUNK_CHARS", 1000),
		SearchResultLimit: getEnvAsInt("SEARCH_RESULT_LIMIT", 5),
		TargetWordCount:   getEnvAsInt("TARGET_WORD_COUNT", 800),
		ContextCharBudget: getEnvAsInt("CONTEXT_CHAR_BUDGET", 2000),

		RetentionDays:   getEnvAsInt("RETENTION_DAYS", 30),
		CleanupInterval: time.Duration(getEnvAsInt("CLEANUP_INTERVAL", 86400)) * time.Second,

		TwilioAccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioFromNumber: getEnv("TWILIO_FROM_NUMBER", ""),
		TwilioToNumber:   getEnv("TWILIO_TO_NUMBER", ""),
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
