package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Backend  BackendConfig
	Auth     AuthConfig
	Ai       AIConfig
	Eval     EvalConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	TurnTopic          string
}

type DatabaseConfig struct {
	Connection string
}

// BackendConfig points at the external ticketing/conversation backend.
type BackendConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type AuthConfig struct {
	JwtSecret string
	// InsecureSkipVerify accepts bearer tokens without signature verification.
	// Staging backends issue unsigned tokens; never enable in production.
	InsecureSkipVerify bool
}

type AIConfig struct {
	EmbeddingProvider string // "gemini" or "ollama"
	OllamaBaseURL     string
	OllamaModel       string
	LLMProvider       string // "gemini" or "ollama"
	LLMModel          string
	GeminiAPIKey      string
	PromptFilePath    string
	MaxToolTurns      int
	HistoryRuns       int
}

type EvalConfig struct {
	JudgeModel string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			TurnTopic:          getEnv("TURN_COMPLETED_TOPIC_NAME", "TURN_COMPLETED"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Backend: BackendConfig{
			BaseURL: getEnv("BACKEND_BASE_URL", ""),
			APIKey:  getEnv("BACKEND_API_KEY", ""),
			Timeout: time.Duration(getEnvAsInt("BACKEND_TIMEOUT_SECONDS", 15)) * time.Second,
		},
		Auth: AuthConfig{
			JwtSecret:          getEnv("JWT_SECRET", ""),
			InsecureSkipVerify: getEnvAsBool("INSECURE_SKIP_JWT_VERIFY", false),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "gemini"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "gemini"),
			LLMModel:          getEnv("LLM_MODEL", "gemini-2.5-flash"),
			GeminiAPIKey:      getEnv("GOOGLE_GEMINI_API_KEY", ""),
			PromptFilePath:    getEnv("PROMPT_FILE_PATH", "prompt.md"),
			MaxToolTurns:      getEnvAsInt("MAX_TOOL_TURNS", 4),
			HistoryRuns:       getEnvAsInt("HISTORY_RUNS", 10),
		},
		Eval: EvalConfig{
			JudgeModel: getEnv("EVAL_JUDGE_MODEL", "gemini-2.5-flash"),
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

func getEnvAsBool(key string, fallback bool) bool {
	strValue := strings.ToLower(getEnv(key, ""))
	if strValue == "" {
		return fallback
	}
	return strValue == "true" || strValue == "1"
}
