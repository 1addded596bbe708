// Package config loads lens settings from defaults, .env files, the JSON
// config file and the environment, in that order.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// QA backends.
const (
	BackendService = "service"
	BackendGemini  = "gemini"
)

// Config is the persistent application configuration
type Config struct {
	API     APIConfig     `json:"api"`
	QA      QAConfig      `json:"qa"`
	Storage StorageConfig `json:"storage"`
	UI      UIConfig      `json:"ui"`
	Cache   CacheConfig   `json:"cache"`
}

// APIConfig locates the detection backend.
type APIConfig struct {
	BaseURL           string  `json:"base_url"`
	TimeoutSeconds    int     `json:"timeout_seconds"`
	RequestsPerSecond float64 `json:"requests_per_second"` // 0 disables pacing
}

// QAConfig selects who answers questions.
type QAConfig struct {
	Backend string       `json:"backend"` // "service" or "gemini"
	Gemini  GeminiConfig `json:"gemini"`
}

// GeminiConfig is used when QA.Backend is "gemini".
type GeminiConfig struct {
	APIKey string `json:"api_key,omitempty"`
	Model  string `json:"model,omitempty"`
}

// StorageConfig enables s3:// image references.
type StorageConfig struct {
	S3 S3Config `json:"s3"`
}

// S3Config for an S3-compatible object store
type S3Config struct {
	Endpoint  string `json:"endpoint,omitempty"`
	Region    string `json:"region,omitempty"`
	AccessKey string `json:"access_key,omitempty"`
	SecretKey string `json:"secret_key,omitempty"`
	UseSSL    bool   `json:"use_ssl"`
}

// UIConfig holds UI preferences
type UIConfig struct {
	Accent   string `json:"accent"` // lipgloss color, e.g. "#7D56F4" or "63"
	ShowHelp bool   `json:"show_help"`
}

// CacheConfig sizes in-memory caches.
type CacheConfig struct {
	AnnotatedEntries int `json:"annotated_entries"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:           "http://localhost:8000/api",
			TimeoutSeconds:    60,
			RequestsPerSecond: 4,
		},
		QA: QAConfig{
			Backend: BackendService,
			Gemini:  GeminiConfig{Model: "gemini-2.5-flash"},
		},
		UI: UIConfig{
			Accent:   "#7D56F4",
			ShowHelp: true,
		},
		Cache: CacheConfig{AnnotatedEntries: 16},
	}
}

// DataDir returns LENS_DATA_DIR, or ~/.lens.
func DataDir() string {
	if dir := os.Getenv("LENS_DATA_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".lens"
	}
	return filepath.Join(home, ".lens")
}

// ConfigPath returns the path to the config file
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, "config.json")
}

// Load builds the config for dataDir. A missing file gives defaults; a
// corrupt one is ignored in favour of defaults.
func Load(dataDir string) (*Config, error) {
	loadDotenv(".env", filepath.Join(dataDir, ".env"))

	cfg := DefaultConfig()
	data, err := os.ReadFile(ConfigPath(dataDir))
	switch {
	case err == nil:
		fromFile := DefaultConfig()
		if jsonErr := json.Unmarshal(data, fromFile); jsonErr == nil {
			cfg = fromFile
		}
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg.ApplyEnv()
	return cfg, nil
}

// loadDotenv loads each file that exists. Variables already set win.
func loadDotenv(paths ...string) {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		_ = godotenv.Load(p)
	}
}

// Save writes config to disk
func (c *Config) Save(dataDir string) error {
	path := ConfigPath(dataDir)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600) // holds API keys
}

// ApplyEnv overrides fields from environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("LENS_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("LENS_API_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.API.TimeoutSeconds = n
		}
	}
	if v := os.Getenv("LENS_QA_BACKEND"); v != "" {
		c.QA.Backend = strings.ToLower(v)
	}
	if v := firstNonEmpty(os.Getenv("GEMINI_API_KEY"), os.Getenv("GOOGLE_API_KEY")); v != "" {
		c.QA.Gemini.APIKey = v
	}
	if v := os.Getenv("LENS_GEMINI_MODEL"); v != "" {
		c.QA.Gemini.Model = v
	}

	s3 := &c.Storage.S3
	if v := os.Getenv("LENS_S3_ENDPOINT"); v != "" {
		s3.Endpoint = v
	}
	if v := os.Getenv("LENS_S3_REGION"); v != "" {
		s3.Region = v
	}
	if v := os.Getenv("LENS_S3_ACCESS_KEY"); v != "" {
		s3.AccessKey = v
	}
	if v := os.Getenv("LENS_S3_SECRET_KEY"); v != "" {
		s3.SecretKey = v
	}
	if v := os.Getenv("LENS_S3_SSL"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			s3.UseSSL = b
		}
	}
}

// Validate reports the first setting lens cannot run with.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api.base_url is empty")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil {
		return fmt.Errorf("api.base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api.base_url %q: scheme must be http or https", c.API.BaseURL)
	}

	switch c.QA.Backend {
	case BackendService:
	case BackendGemini:
		if c.QA.Gemini.APIKey == "" {
			return errors.New("qa.backend is gemini but no Gemini API key is set (GEMINI_API_KEY)")
		}
	default:
		return fmt.Errorf("qa.backend %q: want %q or %q", c.QA.Backend, BackendService, BackendGemini)
	}
	return nil
}

// Timeout returns the per-request API timeout.
func (c *Config) Timeout() time.Duration {
	if c.API.TimeoutSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// S3Enabled reports whether s3:// references can be resolved.
func (c *Config) S3Enabled() bool {
	return c.Storage.S3.Endpoint != ""
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
