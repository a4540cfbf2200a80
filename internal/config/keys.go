package config

import (
	"fmt"
	"os"
	"strconv"
)

type keyType int

const (
	kString keyType = iota
	kInt
)

type keySpec struct {
	key     string
	typ     keyType
	env     string
	secret  bool
	apply   func(cfg *Config, v any)
	extract func(cfg Config) any
}

// Database env var names keep the original deployment's naming; only the
// dispo-specific keys use the DISPO_ prefix.
var specs = []keySpec{
	{
		key: "server.port", typ: kInt, env: "DISPO_SERVER_PORT",
		apply:   func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
		extract: func(cfg Config) any { return cfg.Server.Port },
	},
	{
		key: "model.name", typ: kString, env: "OPENAI_MODEL",
		apply:   func(cfg *Config, v any) { cfg.Model.Name = v.(string) },
		extract: func(cfg Config) any { return cfg.Model.Name },
	},
	{
		key: "model.api_key", typ: kString, env: "OPENAI_API_KEY",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Model.APIKey = v.(string) },
		extract: func(cfg Config) any { return cfg.Model.APIKey },
	},
	{
		key: "model.base_url", typ: kString, env: "DISPO_OPENAI_BASE_URL",
		apply:   func(cfg *Config, v any) { cfg.Model.BaseURL = v.(string) },
		extract: func(cfg Config) any { return cfg.Model.BaseURL },
	},
	{
		key: "db.name", typ: kString, env: "DB_NAME",
		apply:   func(cfg *Config, v any) { cfg.DB.Name = v.(string) },
		extract: func(cfg Config) any { return cfg.DB.Name },
	},
	{
		key: "db.driver", typ: kString, env: "DB_DRIVER",
		apply:   func(cfg *Config, v any) { cfg.DB.Driver = v.(string) },
		extract: func(cfg Config) any { return cfg.DB.Driver },
	},
	{
		key: "db.server", typ: kString, env: "DB_SERVER",
		apply:   func(cfg *Config, v any) { cfg.DB.Server = v.(string) },
		extract: func(cfg Config) any { return cfg.DB.Server },
	},
	{
		key: "db.trusted_connection", typ: kString, env: "DB_TRUSTED_CONNECTION",
		apply:   func(cfg *Config, v any) { cfg.DB.TrustedConnection = v.(string) },
		extract: func(cfg Config) any { return cfg.DB.TrustedConnection },
	},
	{
		key: "agent.max_rounds", typ: kInt, env: "DISPO_MAX_ROUNDS",
		apply:   func(cfg *Config, v any) { cfg.Agent.MaxRounds = v.(int) },
		extract: func(cfg Config) any { return cfg.Agent.MaxRounds },
	},
	{
		key: "log.level", typ: kString, env: "DISPO_LOG_LEVEL",
		apply:   func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
}

func applyBackend(cfg *Config, b ConfigBackend) error {
	for _, s := range specs {
		if s.secret {
			continue
		}
		switch s.typ {
		case kString:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kInt:
			v, ok, err := b.GetInt(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		if s.env == "" {
			continue
		}
		raw := os.Getenv(s.env)
		if raw == "" {
			continue
		}
		switch s.typ {
		case kString:
			s.apply(cfg, raw)
		case kInt:
			if i, err := strconv.Atoi(raw); err == nil {
				s.apply(cfg, i)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse integer from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		}
	}
}
