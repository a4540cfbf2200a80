// Package config loads process configuration from a JSON config file,
// a .env file, and environment variables, in that precedence order.
package config

import (
	"fmt"

	"github.com/joho/godotenv"
)

type Config struct {
	Server ServerConfig
	Model  ModelConfig
	DB     DBConfig
	Agent  AgentConfig
	Log    LogConfig
}

type ServerConfig struct {
	Port int
}

type ModelConfig struct {
	Name    string
	APIKey  string
	BaseURL string
}

// DBConfig describes the warehouse connection. Driver selects the
// database/sql driver ("sqlserver" or "sqlite"); an empty Server means a
// local server with integrated authentication.
type DBConfig struct {
	Name              string
	Driver            string
	Server            string
	TrustedConnection string
}

type AgentConfig struct {
	MaxRounds int
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 4600,
		},
		Model: ModelConfig{
			Name:    "gpt-4-turbo",
			BaseURL: "https://api.openai.com/v1",
		},
		DB: DBConfig{
			Name:              "DW_DDS",
			Driver:            "sqlserver",
			Server:            "",
			TrustedConnection: "yes",
		},
		Agent: AgentConfig{
			MaxRounds: 10,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the JSON file at
// $XDG_CONFIG_HOME/dispo/config.json, then applies a .env file from the
// working directory (if present) and environment variable overrides.
// The model API key must come from the environment or a .env file; it is
// never stored in the config file.
//
// Commands that never call the model (ping, mcp, config) work without an
// API key, so Load does not require one — callers that talk to the model
// check RequireModelKey first.
func Load() (Config, error) {
	// Best effort: a missing .env file is not an error.
	godotenv.Load()
	return loadWith(newFileBackend(configFilePath()))
}

func loadWith(b ConfigBackend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	return cfg, nil
}

// RequireModelKey reports a descriptive error when no model credential is
// configured.
func (c Config) RequireModelKey() error {
	if c.Model.APIKey == "" {
		return fmt.Errorf("missing required config: OpenAI API key. " +
			"Set it via the OPENAI_API_KEY environment variable or a .env file")
	}
	return nil
}
