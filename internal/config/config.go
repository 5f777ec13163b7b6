package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Harshitk-cp/storybible/internal/llm"
	"github.com/joho/godotenv"
)

// Load reads the .env file specified by STORYBIBLE_ENV (or .env by default),
// then loads the corresponding .secret file if it exists.
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("STORYBIBLE_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Missing files are fine; the process environment still applies.
	_ = godotenv.Load(envFile)
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func ServerPort() int {
	return intOr("SERVER_PORT", 8080)
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

// StoreDriver returns postgres or sqlite. Defaults to postgres.
func StoreDriver() string {
	d := strings.ToLower(os.Getenv("STORE_DRIVER"))
	if d == "" {
		return "postgres"
	}
	return d
}

func SQLitePath() string {
	return stringOr("SQLITE_PATH", "storybible.db")
}

// RunMigrations reports whether the server applies schema migrations on
// startup. Defaults to true.
func RunMigrations() bool {
	return boolOr("RUN_MIGRATIONS", true)
}

// AnalyzerProvider returns the text analyzer backend: prose or mock.
func AnalyzerProvider() string {
	return stringOr("ANALYZER_PROVIDER", "prose")
}

func AnalyzerProperNounFallback() bool {
	return boolOr("ANALYZER_PROPER_NOUN_FALLBACK", false)
}

// RelationMatch returns strict or permissive.
func RelationMatch() string {
	return stringOr("RELATION_MATCH", "strict")
}

// AttributeRelations enables subject -> attribute edges for non-entity objects.
func AttributeRelations() bool {
	return boolOr("ATTRIBUTE_RELATIONS", false)
}

func SimilarityThreshold() float64 {
	v, err := strconv.ParseFloat(os.Getenv("SIMILARITY_THRESHOLD"), 64)
	if err != nil || v <= 0 || v >= 1 {
		return 0.15
	}
	return v
}

func MergeMaxRetries() int {
	return intOr("MERGE_MAX_RETRIES", 3)
}

func PairwiseWarnEntities() int {
	return intOr("PAIRWISE_WARN_ENTITIES", 6)
}

func PanelConcurrency() int {
	return intOr("PANEL_CONCURRENCY", 3)
}

func MaxPanels() int {
	return intOr("MAX_PANELS", 6)
}

// LLMProvider returns the configured LLM provider.
// Defaults to "groq" if not set.
// Valid values: groq, openai, cerebras, gemini, anthropic, mock
func LLMProvider() string {
	return stringOr("LLM_PROVIDER", llm.ProviderGroq)
}

// LLMAPIKey returns the API key for the configured LLM provider.
func LLMAPIKey() string {
	env := llm.KeyEnv(LLMProvider())
	if env == "" {
		return ""
	}
	return os.Getenv(env)
}

// LLMConfig collects every LLM setting for llm.NewClient.
func LLMConfig() llm.Config {
	return llm.Config{
		Provider:   LLMProvider(),
		APIKey:     LLMAPIKey(),
		BaseURL:    os.Getenv("LLM_BASE_URL"),
		Model:      os.Getenv("LLM_MODEL"),
		ImageModel: os.Getenv("IMAGE_MODEL"),
	}
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
	return intOr("RATE_LIMIT_BURST", 20)
}

// LogLevel returns the log level (debug, info, warn, error).
// Defaults to "info" if not set.
func LogLevel() string {
	return stringOr("LOG_LEVEL", "info")
}

func stringOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// intOr treats unparsable and non-positive values as unset.
func intOr(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func boolOr(key string, def bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}
