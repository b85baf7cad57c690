package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var allKeys = []string{
	"PORT", "API_KEY", "GEMINI_API_KEY", "VERTEX_AI_API_KEY", "GEMINI_MODEL", "MODEL_NAME",
	"HAZARD_PROMPT_VARIANT", "PROMPT_DIR", "MAPS_API_KEY", "PLACES_BASE_URL", "MAPS_BASE_URL",
	"PROJECT_ID", "DATABASE_URL", "UPSTREAM_TIMEOUT", EnvConfigFile,
	"PGHOST", "PGPORT", "POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB",
	"VISION_ENGINE", "OPENAI_API_KEY", "OPENAI_MODEL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != DefaultPort || cfg.GeminiModel != DefaultGeminiModel || cfg.HazardVariant != "structured" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.UpstreamTimeout != DefaultUpstreamTimeout {
		t.Fatalf("timeout = %v", cfg.UpstreamTimeout)
	}
	err = cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "GEMINI_API_KEY") || !strings.Contains(err.Error(), "MAPS_API_KEY") {
		t.Fatalf("expected missing keys, got %v", err)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "navbuddy.yaml")
	yml := `
port: "9000"
gemini_api_key: file-key
maps_api_key: maps-file
hazard_prompt_variant: text
upstream_timeout: 10s
`
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvConfigFile, path)
	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("MODEL_NAME", "gemini-2.0-flash")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GeminiAPIKey != "env-key" {
		t.Fatalf("env must override file, got %q", cfg.GeminiAPIKey)
	}
	if cfg.Port != "9000" || cfg.MapsAPIKey != "maps-file" || cfg.HazardVariant != "text" {
		t.Fatalf("file values lost: %+v", cfg)
	}
	if cfg.GeminiModel != "gemini-2.0-flash" || cfg.UpstreamTimeout != 10*time.Second {
		t.Fatalf("unexpected %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLoad_VertexAlias(t *testing.T) {
	clearEnv(t)
	t.Setenv("VERTEX_AI_API_KEY", "vertex")
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.GeminiAPIKey != "vertex" {
		t.Fatalf("GeminiAPIKey = %q", cfg.GeminiAPIKey)
	}
	if err := cfg.Require(KeyGemini); err != nil {
		t.Fatalf("Require: %v", err)
	}
	if err := cfg.Require(KeyMaps); err == nil {
		t.Fatal("expected missing maps key")
	}
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)
	t.Setenv("UPSTREAM_TIMEOUT", "soon")
	if _, err := Load(); err == nil {
		t.Fatal("expected bad duration error")
	}

	clearEnv(t)
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected missing file error")
	}
}

func TestValidate_Variant(t *testing.T) {
	cfg := &Config{Port: "8080", VisionEngine: EngineGemini, GeminiAPIKey: "k", MapsAPIKey: "m", HazardVariant: "yaml"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected variant error")
	}
	cfg.HazardVariant = "text"
	cfg.Port = "80a"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected port error")
	}
}

func TestLoad_DSNFromPGVars(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DatabaseURL != "" {
		t.Fatalf("audit store must stay off without PGHOST, got %q", cfg.DatabaseURL)
	}

	t.Setenv("PGHOST", "db")
	t.Setenv("POSTGRES_PASSWORD", "p@ss")
	cfg, err = Load()
	if err != nil {
		t.Fatal(err)
	}
	want := "postgres://navbuddy:p%40ss@db:5432/navbuddy?sslmode=disable"
	if cfg.DatabaseURL != want {
		t.Fatalf("DatabaseURL = %q, want %q", cfg.DatabaseURL, want)
	}
	if got := SafeDSNSummary(cfg.DatabaseURL); got != "host=db port=5432 db=navbuddy user=navbuddy" {
		t.Fatalf("summary = %q", got)
	}
}

func TestValidate_VisionEngine(t *testing.T) {
	clearEnv(t)
	t.Setenv("VISION_ENGINE", "GPT")
	t.Setenv("MAPS_API_KEY", "m")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.VisionEngine != EngineGPT || cfg.OpenAIModel != DefaultOpenAIModel {
		t.Fatalf("unexpected %+v", cfg)
	}
	err = cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "OPENAI_API_KEY") || strings.Contains(err.Error(), "GEMINI_API_KEY") {
		t.Fatalf("expected only OPENAI_API_KEY missing, got %v", err)
	}

	cfg.OpenAIAPIKey = "sk"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	cfg.VisionEngine = "claude"
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "VISION_ENGINE") {
		t.Fatalf("expected engine error, got %v", err)
	}
}
