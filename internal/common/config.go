package common

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/contract-analyzer/constants"
)

// Config holds all application configuration
type Config struct {
	Environment string
	Server      ServerConfig
	Results     ResultsConfig
	OCR         OCRConfig
	Truncation  TruncationConfig
	LLM         LLMConfig
}

// ServerConfig holds the browser UI settings
type ServerConfig struct {
	Port         int
	MaxUploadMB  int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// ResultsConfig holds where result files go
type ResultsConfig struct {
	Dir string
}

// OCRConfig holds extraction and OCR settings
type OCRConfig struct {
	MinTextChars int
	DPI          int
	Lang         string
	MaxPages     int
	TessdataDir  string
	Engine       string // "tesseract" | "gosseract"
	Pdftoppm     string
	Tesseract    string
}

// TruncationConfig holds the default text cap; 0 means pick automatically.
type TruncationConfig struct {
	MaxChars int
}

// LLMConfig holds the analysis endpoint settings
type LLMConfig struct {
	Provider    string // "azure" | "openai"
	Endpoint    string
	APIKey      string
	Deployment  string
	APIVersion  string
	BaseURL     string
	Temperature float32
	Timeout     time.Duration
	Lenient     bool
}

const (
	ProviderAzure  = "azure"
	ProviderOpenAI = "openai"
)

// LoadEnvFile loads KEY=VALUE pairs from path (default ".env") without overriding
// variables already set. A missing default file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return WrapError(err, "load .env")
		}
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return WrapError(err, "load "+path)
	}
	return nil
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	provider := strings.ToLower(getEnv("LLM_PROVIDER", ProviderAzure))
	apiKey := getEnv("AZURE_OPENAI_API_KEY", "")
	if provider == ProviderOpenAI {
		apiKey = getEnv("OPENAI_API_KEY", "")
	}
	return &Config{
		Environment: getEnv("APP_ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:         getEnvAsInt("PORT", constants.DefaultPort),
			MaxUploadMB:  getEnvAsInt("MAX_UPLOAD_MB", constants.DefaultMaxUpload),
			ReadTimeout:  getEnvAsDuration("READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getEnvAsDuration("WRITE_TIMEOUT", 15*time.Minute),
		},
		Results: ResultsConfig{
			Dir: getEnv("RESULTS_DIR", constants.DefaultResultsDir),
		},
		OCR: OCRConfig{
			MinTextChars: getEnvAsInt("OCR_MIN_TEXT_CHARS", constants.DefaultMinTextChars),
			DPI:          getEnvAsInt("OCR_DPI", 300),
			Lang:         getEnv("OCR_LANG", "eng"),
			MaxPages:     getEnvAsInt("OCR_MAX_PAGES", 0),
			TessdataDir:  getEnv("TESSDATA_PREFIX", ""),
			Engine:       strings.ToLower(getEnv("OCR_ENGINE", "tesseract")),
			Pdftoppm:     getEnv("PDFTOPPM_BIN", "pdftoppm"),
			Tesseract:    getEnv("TESSERACT_BIN", "tesseract"),
		},
		Truncation: TruncationConfig{
			MaxChars: getEnvAsInt("MAX_TEXT_CHARS", 0),
		},
		LLM: LLMConfig{
			Provider:    provider,
			Endpoint:    getEnv("AZURE_OPENAI_ENDPOINT", ""),
			APIKey:      apiKey,
			Deployment:  getEnv("AZURE_OPENAI_DEPLOYMENT", constants.DefaultDeployment),
			APIVersion:  getEnv("AZURE_OPENAI_API_VERSION", constants.DefaultAzureAPIVersion),
			BaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Temperature: getEnvAsFloat32("LLM_TEMPERATURE", constants.DefaultTemperature),
			Timeout:     getEnvAsDuration("LLM_TIMEOUT", 120*time.Second),
			Lenient:     getEnvAsBool("LLM_LENIENT", true),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// Validate checks settings needed by every command.
func (c *Config) Validate() error {
	v := NewValidator().
		Field("PORT", c.Server.Port, Between(1, 65535)).
		Field("RESULTS_DIR", c.Results.Dir, Required).
		Field("OCR_MIN_TEXT_CHARS", c.OCR.MinTextChars, NonNegative).
		Field("MAX_TEXT_CHARS", c.Truncation.MaxChars, NonNegative).
		Field("OCR_ENGINE", c.OCR.Engine, OneOf("tesseract", "gosseract")).
		Field("LLM_PROVIDER", c.LLM.Provider, OneOf(ProviderAzure, ProviderOpenAI)).
		Field("LLM_TEMPERATURE", c.LLM.Temperature, PositiveUpTo(2))
	return v.Err()
}

// ValidateLLM checks that the analysis endpoint can be reached with credentials.
func (c *Config) ValidateLLM() error {
	switch c.LLM.Provider {
	case ProviderAzure:
		if c.LLM.APIKey == "" || c.LLM.Endpoint == "" {
			return NewAppError("CONFIG_ERROR",
				"Azure OpenAI credentials not configured. Please set AZURE_OPENAI_API_KEY and AZURE_OPENAI_ENDPOINT environment variables",
				ErrNotConfigured)
		}
	case ProviderOpenAI:
		if c.LLM.APIKey == "" {
			return NewAppError("CONFIG_ERROR", "OPENAI_API_KEY is required", ErrNotConfigured)
		}
	}
	return nil
}
