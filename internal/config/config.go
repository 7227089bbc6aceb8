// Package config manages application configuration from files and environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/klytics/sheetlens/internal/ai"
	"github.com/klytics/sheetlens/internal/prompt"
)

// EnvPrefix is prepended to every environment override, e.g. SHEETLENS_SERVER_ADDR.
const EnvPrefix = "SHEETLENS"

// ServerConfig configures the HTTP service.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr" yaml:"addr" json:"addr"`
	MaxUpload       string        `mapstructure:"max_upload" yaml:"max_upload" json:"max_upload"`
	Debug           bool          `mapstructure:"debug" yaml:"debug" json:"debug"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// APIKeys holds provider credentials.
type APIKeys struct {
	Anthropic string `mapstructure:"anthropic" yaml:"anthropic" json:"anthropic"`
	OpenAI    string `mapstructure:"openai" yaml:"openai" json:"openai"`
}

// AnthropicConfig points the Anthropic client at an endpoint. Retries only
// apply to 429 and 5xx replies and are off unless set.
type AnthropicConfig struct {
	URL        string `mapstructure:"url" yaml:"url" json:"url"`
	MaxRetries int    `mapstructure:"max_retries" yaml:"max_retries" json:"max_retries"`
}

// OpenAIConfig points the OpenAI client at any chat completions endpoint.
type OpenAIConfig struct {
	URL string `mapstructure:"url" yaml:"url" json:"url"`
}

// OllamaConfig locates a local Ollama server. An empty host defers to
// OLLAMA_HOST and then http://localhost:11434.
type OllamaConfig struct {
	Host string `mapstructure:"host" yaml:"host" json:"host"`
}

// VertexConfig selects a Google Cloud project for Gemini models.
type VertexConfig struct {
	Project         string `mapstructure:"project" yaml:"project" json:"project"`
	Region          string `mapstructure:"region" yaml:"region" json:"region"`
	CredentialsFile string `mapstructure:"credentials_file" yaml:"credentials_file" json:"credentials_file"`
}

// PreviewConfig sets the per-sheet row cap for each entry point.
type PreviewConfig struct {
	AnalyzeRows int `mapstructure:"analyze_rows" yaml:"analyze_rows" json:"analyze_rows"`
	AskRows     int `mapstructure:"ask_rows" yaml:"ask_rows" json:"ask_rows"`
	CLIRows     int `mapstructure:"cli_rows" yaml:"cli_rows" json:"cli_rows"`
}

// Config holds the application configuration. It is loaded once at start-up
// and treated as read-only afterwards.
type Config struct {
	Server    ServerConfig     `mapstructure:"server" yaml:"server" json:"server"`
	Provider  string           `mapstructure:"provider" yaml:"provider" json:"provider"`
	Model     string           `mapstructure:"model" yaml:"model" json:"model"`
	APIKeys   APIKeys          `mapstructure:"api_keys" yaml:"api_keys" json:"api_keys"`
	Anthropic AnthropicConfig  `mapstructure:"anthropic" yaml:"anthropic" json:"anthropic"`
	OpenAI    OpenAIConfig     `mapstructure:"openai" yaml:"openai" json:"openai"`
	Ollama    OllamaConfig     `mapstructure:"ollama" yaml:"ollama" json:"ollama"`
	Vertex    VertexConfig     `mapstructure:"vertex" yaml:"vertex" json:"vertex"`
	Preview   PreviewConfig    `mapstructure:"preview" yaml:"preview" json:"preview"`
	Prompts   prompt.Templates `mapstructure:"prompts" yaml:"prompts" json:"prompts"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.max_upload", "32M")
	v.SetDefault("server.debug", false)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("provider", "ollama")
	v.SetDefault("model", "")
	v.SetDefault("api_keys.anthropic", "")
	v.SetDefault("api_keys.openai", "")
	v.SetDefault("anthropic.url", "")
	v.SetDefault("anthropic.max_retries", 0)
	v.SetDefault("openai.url", "")
	v.SetDefault("ollama.host", "")
	v.SetDefault("vertex.project", "")
	v.SetDefault("vertex.region", "us-central1")
	v.SetDefault("vertex.credentials_file", "")

	v.SetDefault("preview.analyze_rows", 50)
	v.SetDefault("preview.ask_rows", 120)
	v.SetDefault("preview.cli_rows", 200)

	v.SetDefault("prompts.analyze", prompt.DefaultAnalyzeInstruction)
	v.SetDefault("prompts.ask", prompt.DefaultAskInstruction)
}

// Load reads configuration from defaults, the config file, SHEETLENS_*
// environment variables and finally overrides (typically changed CLI flags),
// in increasing order of precedence.
//
// When path is empty, ~/.sheetlens/config.yaml is used if it exists.
func Load(path string, overrides map[string]any) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("could not read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(configDir())
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("could not read config: %w", err)
			}
		}
	}

	for key, value := range overrides {
		v.Set(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("could not decode config: %w", err)
	}
	return &cfg, nil
}

// AISettings returns the provider settings derived from the config.
func (c *Config) AISettings() ai.Settings {
	return ai.Settings{
		Provider:              c.Provider,
		Model:                 c.Model,
		AnthropicKey:          c.APIKeys.Anthropic,
		AnthropicURL:          c.Anthropic.URL,
		AnthropicRetries:      c.Anthropic.MaxRetries,
		OpenAIKey:             c.APIKeys.OpenAI,
		OpenAIURL:             c.OpenAI.URL,
		OllamaHost:            c.Ollama.Host,
		VertexProject:         c.Vertex.Project,
		VertexRegion:          c.Vertex.Region,
		VertexCredentialsFile: c.Vertex.CredentialsFile,
	}
}

// ConfigPath returns the path to the default config file.
func ConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".sheetlens"
	}
	return filepath.Join(home, ".sheetlens")
}
