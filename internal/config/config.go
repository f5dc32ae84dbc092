// Package config provides configuration management for lowher.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"lowher/internal/logger"
	"lowher/internal/types"
)

const (
	// DefaultConfigFileName is the default configuration file name
	DefaultConfigFileName = "lowher-config.json"
	// EnvOpenAIAPIKey is the environment variable name for the OpenAI API key
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
	// EnvOpenAIBaseURL is the environment variable name for the OpenAI base URL
	EnvOpenAIBaseURL = "OPENAI_BASE_URL"
	// DefaultModel is the default chat model for the LLM tagger
	DefaultModel = "gpt-4o-mini"
)

// Config holds the full application configuration. It is an explicit
// value constructed once and handed to the pipeline; nothing reads it
// through package-level state.
type Config struct {
	// Mode selects the case decision strategy: "regex" or "entity".
	Mode types.Mode `json:"mode"`
	// Tagger selects the entity-mode backend: "rule", "onnx" or "llm".
	Tagger types.TaggerKind `json:"tagger"`
	// PreserveCapitalized keeps [A-Z][a-z]+ words in regex mode.
	PreserveCapitalized bool `json:"preserve_capitalized"`

	// ONNX tagger settings.
	ModelPath   string `json:"model_path,omitempty"`
	VocabPath   string `json:"vocab_path,omitempty"`
	LabelsPath  string `json:"labels_path,omitempty"`
	OnnxLibPath string `json:"onnx_library_path,omitempty"`

	// LLM tagger settings.
	OpenAIAPIKey  string `json:"openai_api_key,omitempty"`
	OpenAIBaseURL string `json:"openai_base_url,omitempty"`
	OpenAIModel   string `json:"openai_model,omitempty"`

	// Logging.
	LogFile  string `json:"log_file,omitempty"`
	LogLevel string `json:"log_level,omitempty"`
}

// Default returns a Config with default values: regex mode, capitalized
// words preserved, warnings to stderr.
func Default() *Config {
	// OpenAIBaseURL stays empty here: empty means "use the API's own
	// default", which keeps it distinguishable from a value the user
	// wrote into the file, so env overrides apply only to empty.
	return &Config{
		Mode:                types.ModeRegex,
		Tagger:              types.TaggerRule,
		PreserveCapitalized: true,
		OpenAIModel:         DefaultModel,
		LogLevel:            "warn",
	}
}

// Validate checks that enum-valued fields hold recognized values.
func (c *Config) Validate() error {
	switch c.Mode {
	case types.ModeRegex, types.ModeEntity:
	default:
		return types.NewAppErrorWithDetails(types.ErrConfig,
			"unrecognized mode", string(c.Mode), nil)
	}
	switch c.Tagger {
	case types.TaggerRule, types.TaggerONNX, types.TaggerLLM:
	default:
		return types.NewAppErrorWithDetails(types.ErrConfig,
			"unrecognized tagger", string(c.Tagger), nil)
	}
	return nil
}

// Manager loads and saves the configuration file.
type Manager struct {
	configPath string
	config     *Config
}

// NewManager creates a Manager for the given config path. If configPath
// is empty, the default path under the user's config directory is used.
func NewManager(configPath string) (*Manager, error) {
	if configPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			logger.Error("failed to get user home directory", err)
			return nil, types.NewAppError(types.ErrConfig, "failed to get user home directory", err)
		}
		configPath = filepath.Join(homeDir, ".config", "lowher", DefaultConfigFileName)
	}

	return &Manager{
		configPath: configPath,
		config:     Default(),
	}, nil
}

// Load reads the configuration file. A missing file is not an error;
// defaults are kept. Environment variables fill in the API key and base
// URL when the file leaves them empty.
func (m *Manager) Load() error {
	logger.Debug("loading configuration", logger.String("path", m.configPath))

	data, err := os.ReadFile(m.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug("config file not found, using defaults")
			m.applyEnvOverrides()
			return nil
		}
		logger.Error("failed to read config file", err)
		return types.NewAppError(types.ErrConfig, "failed to read config file", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		logger.Error("failed to parse config file", err)
		return types.NewAppError(types.ErrConfig, "failed to parse config file", err)
	}
	m.config = cfg
	m.applyEnvOverrides()

	if err := m.config.Validate(); err != nil {
		return err
	}

	logger.Info("configuration loaded",
		logger.String("mode", string(m.config.Mode)),
		logger.String("tagger", string(m.config.Tagger)))
	return nil
}

// applyEnvOverrides fills empty API settings from the environment.
func (m *Manager) applyEnvOverrides() {
	if m.config.OpenAIAPIKey == "" {
		if key := os.Getenv(EnvOpenAIAPIKey); key != "" {
			m.config.OpenAIAPIKey = key
			logger.Debug("API key loaded from environment")
		}
	}
	if m.config.OpenAIBaseURL == "" {
		if url := os.Getenv(EnvOpenAIBaseURL); url != "" {
			m.config.OpenAIBaseURL = url
		}
	}
}

// Save writes the current configuration to the config file.
func (m *Manager) Save() error {
	dir := filepath.Dir(m.configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		logger.Error("failed to create config directory", err)
		return types.NewAppError(types.ErrConfig, "failed to create config directory", err)
	}

	data, err := json.MarshalIndent(m.config, "", "  ")
	if err != nil {
		return types.NewAppError(types.ErrInternal, "failed to marshal config", err)
	}

	if err := os.WriteFile(m.configPath, data, 0644); err != nil {
		logger.Error("failed to write config file", err)
		return types.NewAppError(types.ErrConfig, "failed to write config file", err)
	}

	logger.Debug("configuration saved", logger.String("path", m.configPath))
	return nil
}

// Get returns the current configuration value.
func (m *Manager) Get() *Config {
	return m.config
}

// Set replaces the current configuration value.
func (m *Manager) Set(cfg *Config) {
	m.config = cfg
}
