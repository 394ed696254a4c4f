package openai

import (
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/joseph-ayodele/contract-analyzer/constants"
)

const (
	ProviderAzure  = "azure"
	ProviderOpenAI = "openai"
)

// Config for the chat-completion client.
type Config struct {
	Provider    string        // "azure" (default) | "openai"
	APIKey      string        // if empty, falls back to AZURE_OPENAI_API_KEY / OPENAI_API_KEY
	Endpoint    string        // Azure resource endpoint, e.g. https://<name>.openai.azure.com
	Deployment  string        // Azure deployment name, default o4-mini
	APIVersion  string        // Azure API version, default 2024-12-01-preview
	BaseURL     string        // OpenAI-compatible base URL, default https://api.openai.com/v1
	Model       string        // model name sent in OpenAI mode; defaults to Deployment
	Temperature float32       // (0,2]; zero means the default 1, the only value o4-mini accepts
	Timeout     time.Duration // http client timeout
	Lenient     bool          // sanitize replies that fail strict validation
}

type Client struct {
	cfg    Config
	api    *goopenai.Client
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	if cfg.Provider == "" {
		cfg.Provider = ProviderAzure
	}
	if cfg.APIKey == "" {
		if cfg.Provider == ProviderAzure {
			cfg.APIKey = os.Getenv("AZURE_OPENAI_API_KEY")
		} else {
			cfg.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}
	if cfg.Endpoint == "" && cfg.Provider == ProviderAzure {
		cfg.Endpoint = os.Getenv("AZURE_OPENAI_ENDPOINT")
	}
	if cfg.Deployment == "" {
		cfg.Deployment = constants.DefaultDeployment
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = constants.DefaultAzureAPIVersion
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = cfg.Deployment
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = constants.DefaultTemperature
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}

	var apiCfg goopenai.ClientConfig
	if cfg.Provider == ProviderAzure {
		apiCfg = goopenai.DefaultAzureConfig(cfg.APIKey, strings.TrimRight(cfg.Endpoint, "/"))
		apiCfg.APIVersion = cfg.APIVersion
		deployment := cfg.Deployment
		apiCfg.AzureModelMapperFunc = func(string) string { return deployment }
	} else {
		apiCfg = goopenai.DefaultConfig(cfg.APIKey)
		apiCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	apiCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &Client{
		cfg:    cfg,
		api:    goopenai.NewClientWithConfig(apiCfg),
		logger: logger,
	}
}

// configured reports whether the client has what it needs to make a call.
func (c *Client) configured() bool {
	if c.cfg.APIKey == "" {
		return false
	}
	return c.cfg.Provider != ProviderAzure || c.cfg.Endpoint != ""
}
