package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Load reads the .env file specified by NEXUS_ENV (or .env by default),
// then loads the corresponding .secret file if it exists.
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("NEXUS_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Load main env file (ignore error if file doesn't exist)
	_ = godotenv.Load(envFile)

	// Load secret sidecar if it exists
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		return 8080
	}
	return port
}

func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

func OpenAIAPIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}

func AnthropicAPIKey() string {
	return os.Getenv("ANTHROPIC_API_KEY")
}

func GeminiAPIKey() string {
	return os.Getenv("GEMINI_API_KEY")
}

func PerplexityAPIKey() string {
	return os.Getenv("PERPLEXITY_API_KEY")
}

// LLMProvider returns the configured inference provider.
// Defaults to "openai" if not set.
// Valid values: openai, anthropic, gemini, mock
func LLMProvider() string {
	p := os.Getenv("LLM_PROVIDER")
	if p == "" {
		return "openai"
	}
	return p
}

// SearchProvider returns the configured evidence-search provider.
// Defaults to "perplexity" if not set.
// Valid values: perplexity, mock
func SearchProvider() string {
	p := os.Getenv("SEARCH_PROVIDER")
	if p == "" {
		return "perplexity"
	}
	return p
}

// EmbeddingProvider returns the configured embedding provider.
// Defaults to "openai" if not set.
// Valid values: openai, mock
func EmbeddingProvider() string {
	p := os.Getenv("EMBEDDING_PROVIDER")
	if p == "" {
		return "openai"
	}
	return p
}

// LLMAPIKey returns the API key for the configured inference provider.
func LLMAPIKey() string {
	switch LLMProvider() {
	case "anthropic":
		return AnthropicAPIKey()
	case "gemini":
		return GeminiAPIKey()
	case "mock":
		return ""
	default:
		return OpenAIAPIKey()
	}
}

// SearchAPIKey returns the API key for the configured search provider.
func SearchAPIKey() string {
	switch SearchProvider() {
	case "mock":
		return ""
	default:
		return PerplexityAPIKey()
	}
}

// EmbeddingAPIKey returns the API key for the configured embedding provider.
func EmbeddingAPIKey() string {
	switch EmbeddingProvider() {
	case "mock":
		return ""
	default:
		return OpenAIAPIKey()
	}
}

// APIKey is the static key clients must present. Empty disables auth.
func APIKey() string {
	return os.Getenv("API_KEY")
}

// ProviderTimeout bounds each external provider call.
// Defaults to 30s if not set.
func ProviderTimeout() time.Duration {
	ms, err := strconv.Atoi(os.Getenv("PROVIDER_TIMEOUT_MS"))
	if err != nil || ms <= 0 {
		return 30 * time.Second
	}
	return time.Duration(ms) * time.Millisecond
}

// EvidenceMaxInFlight bounds concurrent evidence lookups during stage 4.
// Defaults to 1 (sequential) if not set.
func EvidenceMaxInFlight() int {
	n, err := strconv.Atoi(os.Getenv("EVIDENCE_MAX_IN_FLIGHT"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func MigrationsPath() string {
	p := os.Getenv("MIGRATIONS_PATH")
	if p == "" {
		return "migrations"
	}
	return p
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

// RateLimitRPS returns requests per second limit.
// Defaults to 100 if not set.
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 100
	}
	return rps
}

// RateLimitBurst returns the burst size for rate limiting.
// Defaults to 20 if not set.
func RateLimitBurst() int {
	burst, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST"))
	if err != nil || burst <= 0 {
		return 20
	}
	return burst
}

// LogLevel returns the log level (debug, info, warn, error).
// Defaults to "info" if not set.
func LogLevel() string {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return "info"
	}
	return level
}
