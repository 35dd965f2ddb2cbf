package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the detector configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Oracle   OracleConfig   `yaml:"oracle"`
	OCR      OCRConfig      `yaml:"ocr"`
	Recon    ReconConfig    `yaml:"recon"`
	Lookups  LookupsConfig  `yaml:"lookups"`
	Rules    RulesConfig    `yaml:"rules"`
	Storage  StorageConfig  `yaml:"storage"`
	Timeouts TimeoutsConfig `yaml:"timeouts"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"` // HTTP listen address, e.g. ":8000"
	// MaxUploadBytes bounds the multipart request body
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`
}

type OracleConfig struct {
	Kind          string `yaml:"kind"`           // onnx | lexicon | none
	ModelPath     string `yaml:"model_path"`     // ONNX sequence model
	VocabPath     string `yaml:"vocab_path"`     // word index (JSON or YAML map)
	WeightsPath   string `yaml:"weights_path"`   // lexicon weights
	SharedLibrary string `yaml:"shared_library"` // onnxruntime shared library, optional
	SeqLen        int    `yaml:"seq_len"`
	// NeutralProbability is used when the classifier is unavailable
	NeutralProbability float64 `yaml:"neutral_probability"`
}

type OCRConfig struct {
	Endpoint    string        `yaml:"endpoint"`
	APIKey      string        `yaml:"-"` // from GOOGLE_API_KEY only
	Models      []string      `yaml:"models"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxAttempts int           `yaml:"max_attempts"` // per model
}

type ReconConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
	UserAgent    string        `yaml:"user_agent"`
}

type LookupsConfig struct {
	DNSTimeout    time.Duration `yaml:"dns_timeout"`
	WhoisTimeout  time.Duration `yaml:"whois_timeout"`
	BlacklistPath string        `yaml:"blacklist_path"`
}

type RulesConfig struct {
	Path string `yaml:"path"` // optional; built-in rules when empty
}

type StorageConfig struct {
	Sink        string `yaml:"sink"` // none | postgres | redis
	DSN         string `yaml:"dsn"`
	RedisAddr   string `yaml:"redis_addr"`
	RedisStream string `yaml:"redis_stream"`
	// WriteTimeout bounds one fire-and-forget report write
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type TimeoutsConfig struct {
	// Extraction bounds OCR, document parsing and link recon for one request
	Extraction time.Duration `yaml:"extraction"`
	// Signals bounds the classifier, identity and auxiliary lookups
	Signals time.Duration `yaml:"signals"`
}

// Load reads configuration from a YAML file.
// If the file doesn't exist, it returns a default config and no error.
// Environment variables override secrets and addresses in both cases.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case errors.Is(err, os.ErrNotExist):
			// defaults
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	applyDefaults(cfg)
	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           ":8000",
			MaxUploadBytes: 20 << 20,
		},
		Oracle: OracleConfig{
			Kind:               "lexicon",
			SeqLen:             120,
			NeutralProbability: 0.5,
		},
		OCR: OCRConfig{
			Endpoint:    "https://generativelanguage.googleapis.com/v1beta",
			Models:      []string{"gemini-2.0-flash", "gemini-1.5-flash"},
			Timeout:     20 * time.Second,
			MaxAttempts: 2,
		},
		Recon: ReconConfig{
			Timeout:      5 * time.Second,
			MaxBodyBytes: 2 << 20,
			UserAgent:    "Mozilla/5.0 (compatible; fjd-recon/1.0)",
		},
		Lookups: LookupsConfig{
			DNSTimeout:   3 * time.Second,
			WhoisTimeout: 5 * time.Second,
		},
		Storage: StorageConfig{
			Sink:         "none",
			RedisStream:  "scam_reports",
			WriteTimeout: 5 * time.Second,
		},
		Timeouts: TimeoutsConfig{
			Extraction: 30 * time.Second,
			Signals:    10 * time.Second,
		},
	}
}

func applyDefaults(cfg *Config) {
	def := Default()

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = def.Server.Addr
	}
	if cfg.Server.MaxUploadBytes == 0 {
		cfg.Server.MaxUploadBytes = def.Server.MaxUploadBytes
	}
	if cfg.Oracle.Kind == "" {
		cfg.Oracle.Kind = def.Oracle.Kind
	}
	if cfg.Oracle.SeqLen == 0 {
		cfg.Oracle.SeqLen = def.Oracle.SeqLen
	}
	if cfg.OCR.Endpoint == "" {
		cfg.OCR.Endpoint = def.OCR.Endpoint
	}
	if len(cfg.OCR.Models) == 0 {
		cfg.OCR.Models = def.OCR.Models
	}
	if cfg.OCR.Timeout == 0 {
		cfg.OCR.Timeout = def.OCR.Timeout
	}
	if cfg.OCR.MaxAttempts == 0 {
		cfg.OCR.MaxAttempts = def.OCR.MaxAttempts
	}
	if cfg.Recon.Timeout == 0 {
		cfg.Recon.Timeout = def.Recon.Timeout
	}
	if cfg.Recon.MaxBodyBytes == 0 {
		cfg.Recon.MaxBodyBytes = def.Recon.MaxBodyBytes
	}
	if cfg.Recon.UserAgent == "" {
		cfg.Recon.UserAgent = def.Recon.UserAgent
	}
	if cfg.Lookups.DNSTimeout == 0 {
		cfg.Lookups.DNSTimeout = def.Lookups.DNSTimeout
	}
	if cfg.Lookups.WhoisTimeout == 0 {
		cfg.Lookups.WhoisTimeout = def.Lookups.WhoisTimeout
	}
	if cfg.Storage.Sink == "" {
		cfg.Storage.Sink = def.Storage.Sink
	}
	if cfg.Storage.RedisStream == "" {
		cfg.Storage.RedisStream = def.Storage.RedisStream
	}
	if cfg.Storage.WriteTimeout == 0 {
		cfg.Storage.WriteTimeout = def.Storage.WriteTimeout
	}
	if cfg.Timeouts.Extraction == 0 {
		cfg.Timeouts.Extraction = def.Timeouts.Extraction
	}
	if cfg.Timeouts.Signals == 0 {
		cfg.Timeouts.Signals = def.Timeouts.Signals
	}
}

func applyEnv(cfg *Config) {
	cfg.OCR.APIKey = getEnv("GOOGLE_API_KEY", cfg.OCR.APIKey)
	cfg.Storage.DSN = getEnv("DATABASE_URL", cfg.Storage.DSN)
	cfg.Storage.RedisAddr = getEnv("REDIS_ADDR", cfg.Storage.RedisAddr)
	cfg.Server.Addr = getEnv("FJD_HTTP_ADDR", cfg.Server.Addr)
}

// Validate rejects unknown enum values and non-positive limits
func (c *Config) Validate() error {
	switch c.Oracle.Kind {
	case "onnx":
		if c.Oracle.ModelPath == "" || c.Oracle.VocabPath == "" {
			return errors.New("oracle.kind onnx requires model_path and vocab_path")
		}
	case "lexicon", "none":
	default:
		return fmt.Errorf("unknown oracle.kind %q", c.Oracle.Kind)
	}
	if c.Oracle.NeutralProbability <= 0 || c.Oracle.NeutralProbability >= 1 {
		return fmt.Errorf("oracle.neutral_probability %v out of (0,1)", c.Oracle.NeutralProbability)
	}
	if c.Oracle.SeqLen <= 0 {
		return errors.New("oracle.seq_len must be positive")
	}

	switch c.Storage.Sink {
	case "none":
	case "postgres":
		if c.Storage.DSN == "" {
			return errors.New("storage.sink postgres requires a dsn or DATABASE_URL")
		}
	case "redis":
		if c.Storage.RedisAddr == "" {
			return errors.New("storage.sink redis requires redis_addr or REDIS_ADDR")
		}
	default:
		return fmt.Errorf("unknown storage.sink %q", c.Storage.Sink)
	}

	durations := map[string]time.Duration{
		"ocr.timeout":           c.OCR.Timeout,
		"recon.timeout":         c.Recon.Timeout,
		"lookups.dns_timeout":   c.Lookups.DNSTimeout,
		"lookups.whois_timeout": c.Lookups.WhoisTimeout,
		"storage.write_timeout": c.Storage.WriteTimeout,
		"timeouts.extraction":   c.Timeouts.Extraction,
		"timeouts.signals":      c.Timeouts.Signals,
	}
	for name, d := range durations {
		if d <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	if c.OCR.MaxAttempts <= 0 {
		return errors.New("ocr.max_attempts must be positive")
	}
	if c.Recon.MaxBodyBytes <= 0 || c.Server.MaxUploadBytes <= 0 {
		return errors.New("size limits must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
