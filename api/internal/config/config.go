package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is read from an optional YAML file (NAVBUDDY_CONFIG) and then from
// the environment; a non-empty env variable wins over the file.
type Config struct {
	Port   string `yaml:"port"`
	APIKey string `yaml:"api_key"` // X-API-Key клиентов; пусто: проверка выключена

	VisionEngine  string `yaml:"vision_engine"` // gemini | gpt
	GeminiAPIKey  string `yaml:"gemini_api_key"`
	GeminiModel   string `yaml:"gemini_model"`
	OpenAIAPIKey  string `yaml:"openai_api_key"`
	OpenAIModel   string `yaml:"openai_model"`
	HazardVariant string `yaml:"hazard_prompt_variant"` // structured | text
	PromptDir     string `yaml:"prompt_dir"`

	MapsAPIKey    string `yaml:"maps_api_key"`
	PlacesBaseURL string `yaml:"places_base_url"`
	MapsBaseURL   string `yaml:"maps_base_url"`

	ProjectID       string        `yaml:"project_id"` // GCP project for Cloud Logging
	DatabaseURL     string        `yaml:"database_url"`
	UpstreamTimeout time.Duration `yaml:"upstream_timeout"`
}

const (
	EnvConfigFile = "NAVBUDDY_CONFIG"

	DefaultPort            = "8080"
	DefaultGeminiModel     = "gemini-1.5-flash"
	DefaultOpenAIModel     = "gpt-4o-mini"
	DefaultUpstreamTimeout = 30 * time.Second
)

// Env keys checked by Validate and Require.
const (
	KeyGemini = "GEMINI_API_KEY"
	KeyOpenAI = "OPENAI_API_KEY"
	KeyMaps   = "MAPS_API_KEY"
)

const (
	EngineGemini = "gemini"
	EngineGPT    = "gpt"
)

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

// Load reads the file named by NAVBUDDY_CONFIG (if any), applies env
// overrides and fills defaults.
func Load() (*Config, error) {
	return LoadFile(os.Getenv(EnvConfigFile))
}

func LoadFile(path string) (*Config, error) {
	cfg := &Config{}
	if path = strings.TrimSpace(path); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.APIKey = getEnv("API_KEY", cfg.APIKey)

	cfg.GeminiAPIKey = getEnv(KeyGemini, getEnv("VERTEX_AI_API_KEY", cfg.GeminiAPIKey))
	cfg.GeminiModel = getEnv("GEMINI_MODEL", getEnv("MODEL_NAME", cfg.GeminiModel))
	cfg.VisionEngine = strings.ToLower(getEnv("VISION_ENGINE", cfg.VisionEngine))
	cfg.OpenAIAPIKey = getEnv(KeyOpenAI, cfg.OpenAIAPIKey)
	cfg.OpenAIModel = getEnv("OPENAI_MODEL", cfg.OpenAIModel)
	cfg.HazardVariant = getEnv("HAZARD_PROMPT_VARIANT", cfg.HazardVariant)
	cfg.PromptDir = getEnv("PROMPT_DIR", cfg.PromptDir)

	cfg.MapsAPIKey = getEnv(KeyMaps, cfg.MapsAPIKey)
	cfg.PlacesBaseURL = getEnv("PLACES_BASE_URL", cfg.PlacesBaseURL)
	cfg.MapsBaseURL = getEnv("MAPS_BASE_URL", cfg.MapsBaseURL)

	cfg.ProjectID = getEnv("PROJECT_ID", cfg.ProjectID)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = dsnFromPG()
	}

	if v := getEnv("UPSTREAM_TIMEOUT", ""); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("UPSTREAM_TIMEOUT: %w", err)
		}
		cfg.UpstreamTimeout = d
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Port == "" {
		cfg.Port = DefaultPort
	}
	if cfg.GeminiModel == "" {
		cfg.GeminiModel = DefaultGeminiModel
	}
	if cfg.VisionEngine == "" {
		cfg.VisionEngine = EngineGemini
	}
	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = DefaultOpenAIModel
	}
	if cfg.HazardVariant == "" {
		cfg.HazardVariant = "structured"
	}
	if cfg.UpstreamTimeout <= 0 {
		cfg.UpstreamTimeout = DefaultUpstreamTimeout
	}
}

// Require reports which of the named keys are missing.
func (c *Config) Require(keys ...string) error {
	var missing []string
	for _, k := range keys {
		var v string
		switch k {
		case KeyGemini:
			v = c.GeminiAPIKey
		case KeyOpenAI:
			v = c.OpenAIAPIKey
		case KeyMaps:
			v = c.MapsAPIKey
		default:
			return fmt.Errorf("unknown config key %s", k)
		}
		if strings.TrimSpace(v) == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required env %s", strings.Join(missing, ", "))
	}
	return nil
}

// VisionKey is the API key env the selected vision engine needs.
func (c *Config) VisionKey() string {
	if c.VisionEngine == EngineGPT {
		return KeyOpenAI
	}
	return KeyGemini
}

// Validate checks everything the HTTP server needs.
func (c *Config) Validate() error {
	var errs []error
	switch c.VisionEngine {
	case EngineGemini, EngineGPT:
		if err := c.Require(c.VisionKey(), KeyMaps); err != nil {
			errs = append(errs, err)
		}
	default:
		errs = append(errs, fmt.Errorf("VISION_ENGINE must be gemini or gpt, got %q", c.VisionEngine))
	}
	switch c.HazardVariant {
	case "structured", "text":
	default:
		errs = append(errs, fmt.Errorf("HAZARD_PROMPT_VARIANT must be structured or text, got %q", c.HazardVariant))
	}
	for _, ch := range c.Port {
		if ch < '0' || ch > '9' {
			errs = append(errs, fmt.Errorf("PORT must be numeric, got %q", c.Port))
			break
		}
	}
	return errors.Join(errs...)
}

// dsnFromPG builds a DSN from POSTGRES_* / PG* variables. PGHOST must be set,
// otherwise the audit store stays off.
func dsnFromPG() string {
	host := getEnv("PGHOST", "")
	if host == "" {
		return ""
	}
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(getEnv("POSTGRES_USER", "navbuddy"), os.Getenv("POSTGRES_PASSWORD")),
		Host:     net.JoinHostPort(host, getEnv("PGPORT", "5432")),
		Path:     "/" + getEnv("POSTGRES_DB", "navbuddy"),
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// SafeDSNSummary describes a DSN without the password, for logs.
func SafeDSNSummary(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return "dsn: parse error"
	}
	user := u.User.Username()
	host := u.Host
	port := ""
	if h, p, err := net.SplitHostPort(u.Host); err == nil {
		host, port = h, p
	}
	db := strings.TrimPrefix(u.Path, "/")
	if port == "" {
		return fmt.Sprintf("host=%s db=%s user=%s", host, db, user)
	}
	return fmt.Sprintf("host=%s port=%s db=%s user=%s", host, port, db, user)
}
