package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveConfig_Precedence_ConfigEnvCLI(t *testing.T) {
	tmp := t.TempDir()
	cfgPath := filepath.Join(tmp, "config.yaml")
	yaml := `db_path: ~/.aisle/from-config.db
server:
  listen: :9090
  cors_origins: https://app.example.com
llm:
  provider: openrouter/anthropic/claude-sonnet
`
	if err := os.WriteFile(cfgPath, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("AISLE_DB", "~/from-env.db")
	t.Setenv("AISLE_LLM", "openai/gpt-4o")

	resolved, err := ResolveConfig(ResolveOptions{
		ConfigPath: cfgPath,
		CLILLM:     "openrouter/openai/gpt-4o-mini",
		CLIDBPath:  "~/from-cli.db",
	})
	if err != nil {
		t.Fatalf("ResolveConfig: %v", err)
	}

	if resolved.DBPath.Source != SourceCLI {
		t.Fatalf("expected DB path source cli, got %s", resolved.DBPath.Source)
	}
	if resolved.LLM.Source != SourceCLI {
		t.Fatalf("expected llm source cli, got %s", resolved.LLM.Source)
	}
	if resolved.ListenAddr.Source != SourceConfig || resolved.ListenAddr.Value != ":9090" {
		t.Fatalf("expected listen addr from config, got %+v", resolved.ListenAddr)
	}
	if resolved.CORSOrigins.Value != "https://app.example.com" {
		t.Fatalf("unexpected cors origins: %+v", resolved.CORSOrigins)
	}
}

func TestResolveConfig_MissingFileIsNotAnError(t *testing.T) {
	resolved, err := ResolveConfig(ResolveOptions{
		ConfigPath: filepath.Join(t.TempDir(), "nope.yaml"),
	})
	if err != nil {
		t.Fatalf("ResolveConfig: %v", err)
	}
	if resolved.DBPath.Value != "" {
		t.Fatalf("expected empty db path, got %+v", resolved.DBPath)
	}
}

func TestEffectiveLLM_Fallback(t *testing.T) {
	resolved := ResolvedConfig{}
	m := resolved.EffectiveLLM("openai/gpt-4o-mini")
	if m.Value != "openai/gpt-4o-mini" {
		t.Fatalf("unexpected effective llm: %q", m.Value)
	}
	if m.Source != SourceDefault {
		t.Fatalf("expected source=default, got %s", m.Source)
	}

	resolved.LLM = ResolvedValue{Value: "openrouter/anthropic/claude-sonnet", Source: SourceConfig}
	m = resolved.EffectiveLLM("openai/gpt-4o-mini")
	if m.Value != "openrouter/anthropic/claude-sonnet" || m.Source != SourceConfig {
		t.Fatalf("expected configured llm to win, got %+v", m)
	}
}

func TestAPIKeyForProvider_EnvOverridesConfig(t *testing.T) {
	tmp := t.TempDir()
	cfgPath := filepath.Join(tmp, "config.yaml")
	yaml := `llm:
  provider: openrouter/anthropic/claude-sonnet
  api_key: config-key
`
	if err := os.WriteFile(cfgPath, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("OPENROUTER_API_KEY", "env-key")

	resolved, err := ResolveConfig(ResolveOptions{ConfigPath: cfgPath})
	if err != nil {
		t.Fatalf("ResolveConfig: %v", err)
	}
	k := resolved.APIKeyForProvider("openrouter/some-model")
	if k.Value != "env-key" {
		t.Fatalf("expected env key, got %q", k.Value)
	}
	if k.Source != SourceEnv {
		t.Fatalf("expected source env, got %s", k.Source)
	}
}
