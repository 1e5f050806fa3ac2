// Package config resolves Aisle configuration from three layers:
// a YAML config file, environment variables, then CLI flags, each
// overriding the previous. Every resolved value remembers where it
// came from so `aisle config` can explain itself.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type ValueSource string

const (
	SourceUnknown ValueSource = "unknown"
	SourceConfig  ValueSource = "config"
	SourceEnv     ValueSource = "env"
	SourceCLI     ValueSource = "cli"
	SourceDefault ValueSource = "default"
)

type ResolvedValue struct {
	Value  string      `json:"value"`
	Source ValueSource `json:"source"`
	From   string      `json:"from,omitempty"`
}

type ResolveOptions struct {
	ConfigPath string
	CLILLM     string
	CLIDBPath  string
	CLIListen  string
}

type ResolvedConfig struct {
	ConfigPath string `json:"config_path"`

	DBPath      ResolvedValue `json:"db_path"`
	ListenAddr  ResolvedValue `json:"listen_addr"`
	CORSOrigins ResolvedValue `json:"cors_origins"`
	RateLimit   ResolvedValue `json:"rate_limit"`
	RateWindow  ResolvedValue `json:"rate_window"`
	SessionTTL  ResolvedValue `json:"session_ttl"`
	LLM         ResolvedValue `json:"llm"`

	LLMKeys map[string]ResolvedValue `json:"llm_keys,omitempty"`
}

type fileConfig struct {
	DBPath string `yaml:"db_path"`
	Server struct {
		Listen      string `yaml:"listen"`
		CORSOrigins string `yaml:"cors_origins"`
		RateLimit   string `yaml:"rate_limit"`
		RateWindow  string `yaml:"rate_window"`
		SessionTTL  string `yaml:"session_ttl"`
	} `yaml:"server"`
	LLM struct {
		Provider string `yaml:"provider"`
		APIKey   string `yaml:"api_key"`
	} `yaml:"llm"`
}

func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".aisle", "config.yaml")
}

func ResolveConfig(opts ResolveOptions) (ResolvedConfig, error) {
	path := strings.TrimSpace(opts.ConfigPath)
	if path == "" {
		path = DefaultConfigPath()
	}

	out := ResolvedConfig{
		ConfigPath: path,
		LLMKeys:    map[string]ResolvedValue{},
	}

	cfg, err := loadConfig(path)
	if err != nil {
		return out, err
	}

	if cfg != nil {
		apply(&out.DBPath, cfg.DBPath, SourceConfig, path)
		apply(&out.ListenAddr, cfg.Server.Listen, SourceConfig, path)
		apply(&out.CORSOrigins, cfg.Server.CORSOrigins, SourceConfig, path)
		apply(&out.RateLimit, cfg.Server.RateLimit, SourceConfig, path)
		apply(&out.RateWindow, cfg.Server.RateWindow, SourceConfig, path)
		apply(&out.SessionTTL, cfg.Server.SessionTTL, SourceConfig, path)
		apply(&out.LLM, cfg.LLM.Provider, SourceConfig, path)

		if key := strings.TrimSpace(cfg.LLM.APIKey); key != "" {
			provider := providerOf(cfg.LLM.Provider)
			if provider == "" {
				provider = "default"
			}
			out.LLMKeys[provider] = ResolvedValue{Value: key, Source: SourceConfig, From: path}
		}
	}

	applyEnv(&out.DBPath, "AISLE_DB")
	applyEnv(&out.ListenAddr, "AISLE_LISTEN")
	applyEnv(&out.CORSOrigins, "AISLE_CORS_ORIGINS")
	applyEnv(&out.RateLimit, "AISLE_RATE_LIMIT")
	applyEnv(&out.RateWindow, "AISLE_RATE_WINDOW")
	applyEnv(&out.SessionTTL, "AISLE_SESSION_TTL")
	applyEnv(&out.LLM, "AISLE_LLM")

	for env, provider := range map[string]string{
		"OPENROUTER_API_KEY": "openrouter",
		"OPENAI_API_KEY":     "openai",
	} {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			out.LLMKeys[provider] = ResolvedValue{Value: v, Source: SourceEnv, From: env}
		}
	}

	apply(&out.LLM, opts.CLILLM, SourceCLI, "--llm")
	apply(&out.DBPath, opts.CLIDBPath, SourceCLI, "--db")
	apply(&out.ListenAddr, opts.CLIListen, SourceCLI, "--listen")

	if out.DBPath.Value != "" {
		out.DBPath.Value = expandUserPath(out.DBPath.Value)
	}

	return out, nil
}

// EffectiveLLM returns the configured provider/model pair, falling back
// to the built-in default when nothing was set anywhere.
func (r ResolvedConfig) EffectiveLLM(fallback string) ResolvedValue {
	if strings.TrimSpace(r.LLM.Value) != "" {
		return r.LLM
	}
	if strings.TrimSpace(fallback) != "" {
		return ResolvedValue{Value: fallback, Source: SourceDefault, From: "built-in default"}
	}
	return ResolvedValue{}
}

func (r ResolvedConfig) APIKeyForProvider(providerOrModel string) ResolvedValue {
	provider := providerOf(providerOrModel)
	if provider == "" {
		return ResolvedValue{}
	}
	if v, ok := r.LLMKeys[provider]; ok && strings.TrimSpace(v.Value) != "" {
		return v
	}
	if v, ok := r.LLMKeys["default"]; ok && strings.TrimSpace(v.Value) != "" {
		return v
	}
	return ResolvedValue{}
}

func providerOf(providerOrModel string) string {
	v := strings.ToLower(strings.TrimSpace(providerOrModel))
	if v == "" {
		return ""
	}
	if idx := strings.Index(v, "/"); idx > 0 {
		return v[:idx]
	}
	return v
}

func apply(dst *ResolvedValue, raw string, source ValueSource, from string) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return
	}
	*dst = ResolvedValue{Value: v, Source: source, From: from}
}

func applyEnv(dst *ResolvedValue, envKey string) {
	if v := strings.TrimSpace(os.Getenv(envKey)); v != "" {
		*dst = ResolvedValue{Value: v, Source: SourceEnv, From: envKey}
	}
}

func loadConfig(path string) (*fileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &cfg, nil
}

func expandUserPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
