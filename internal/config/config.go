// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
type Config struct {
	Logger   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	Scanner  ScannerConfig  `mapstructure:"scanner" yaml:"scanner"`
	OSV      OSVConfig      `mapstructure:"osv" yaml:"osv"`
	Registry RegistryConfig `mapstructure:"registry" yaml:"registry"`
	AI       AIConfig       `mapstructure:"ai" yaml:"ai"`
	Email    EmailConfig    `mapstructure:"email" yaml:"email"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`

	// Scan gets its marching orders from CLI flags, not the config file.
	Scan ScanConfig `mapstructure:"-" yaml:"-"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// ScannerConfig tunes the archive content scanners (secrets and config rules).
type ScannerConfig struct {
	// SkipDirs are path segments that exclude a file from scanning entirely.
	SkipDirs []string `mapstructure:"skip_dirs" yaml:"skip_dirs"`
	// TextExtensions limits scanning to files with these extensions.
	TextExtensions []string `mapstructure:"text_extensions" yaml:"text_extensions"`
	// MaxFileBytes caps the size of a single file considered for scanning.
	MaxFileBytes int `mapstructure:"max_file_bytes" yaml:"max_file_bytes"`
	// Concurrency bounds the number of files scanned in parallel.
	Concurrency int `mapstructure:"concurrency" yaml:"concurrency"`
}

// OSVConfig configures the OSV advisory lookup client.
type OSVConfig struct {
	QueryEndpoint string        `mapstructure:"query_endpoint" yaml:"query_endpoint"`
	BatchEndpoint string        `mapstructure:"batch_endpoint" yaml:"batch_endpoint"`
	Ecosystem     string        `mapstructure:"ecosystem" yaml:"ecosystem"`
	Timeout       time.Duration `mapstructure:"timeout" yaml:"timeout"`
	RateLimit     float64       `mapstructure:"rate_limit" yaml:"rate_limit"`
	MaxRetries    int           `mapstructure:"max_retries" yaml:"max_retries"`
}

// RegistryConfig configures the package-registry latest-version lookup.
type RegistryConfig struct {
	Enabled   bool          `mapstructure:"enabled" yaml:"enabled"`
	Endpoint  string        `mapstructure:"endpoint" yaml:"endpoint"`
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout"`
	RateLimit float64       `mapstructure:"rate_limit" yaml:"rate_limit"`
}

// AIConfig configures the optional Gemini deep audit.
type AIConfig struct {
	Enabled      bool   `mapstructure:"enabled" yaml:"enabled"`
	Model        string `mapstructure:"model" yaml:"model"`
	APIKey       string `mapstructure:"api_key" yaml:"-"`
	MaxFiles     int    `mapstructure:"max_files" yaml:"max_files"`
	MaxFileBytes int    `mapstructure:"max_file_bytes" yaml:"max_file_bytes"`
}

// EmailConfig configures SMTP delivery of finished reports.
type EmailConfig struct {
	Host     string `mapstructure:"host" yaml:"host"`
	Port     int    `mapstructure:"port" yaml:"port"`
	Sender   string `mapstructure:"sender" yaml:"sender"`
	Password string `mapstructure:"password" yaml:"-"`
}

// DatabaseConfig holds the optional scan-history database connection details.
// Persistence is disabled when URL is empty.
type DatabaseConfig struct {
	URL string `mapstructure:"url" yaml:"url"`
}

// ScanConfig holds settings populated from CLI flags for a specific scan job.
type ScanConfig struct {
	Requirements string // Path to the dependency manifest.
	Archive      string // Path to the project ZIP archive.
	Output       string // Report output path; empty writes to stdout.
	Format       string // Report format: markdown, json, sarif.
	EmailTo      string // Recipient address for report delivery; empty disables.
	DeepAudit    bool   // Whether to run the Gemini deep audit.
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "cyberhealth-cli")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Scanner --
	v.SetDefault("scanner.skip_dirs", []string{"node_modules", ".git", "__pycache__", ".venv", "venv"})
	v.SetDefault("scanner.text_extensions", []string{".py", ".txt", ".js", ".json", ".yml", ".yaml", ".env", ".html", ".md"})
	v.SetDefault("scanner.max_file_bytes", 1<<20)
	v.SetDefault("scanner.concurrency", 8)

	// -- OSV --
	v.SetDefault("osv.query_endpoint", "https://api.osv.dev/v1/query")
	v.SetDefault("osv.batch_endpoint", "https://api.osv.dev/v1/querybatch")
	v.SetDefault("osv.ecosystem", "PyPI")
	v.SetDefault("osv.timeout", "15s")
	v.SetDefault("osv.rate_limit", 5.0)
	v.SetDefault("osv.max_retries", 3)

	// -- Registry --
	v.SetDefault("registry.enabled", true)
	v.SetDefault("registry.endpoint", "https://pypi.org/pypi")
	v.SetDefault("registry.timeout", "10s")
	v.SetDefault("registry.rate_limit", 10.0)

	// -- AI --
	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.max_files", 10)
	v.SetDefault("ai.max_file_bytes", 200000)

	// -- Email --
	v.SetDefault("email.host", "smtp.gmail.com")
	v.SetDefault("email.port", 587)
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults, but good to be safe.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	// Bind environment variables for sensitive data.
	v.BindEnv("ai.api_key", "GOOGLE_API_KEY")
	v.BindEnv("email.sender", "EMAIL_SENDER")
	v.BindEnv("email.password", "EMAIL_PASSWORD")
	v.BindEnv("database.url", "CYBERHEALTH_DATABASE_URL")

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Unmarshal does not consult BindEnv for keys absent from the file, so
	// pick the secrets up from the environment directly as a fallback.
	if cfg.AI.APIKey == "" {
		cfg.AI.APIKey = os.Getenv("GOOGLE_API_KEY")
	}
	if cfg.Email.Sender == "" {
		cfg.Email.Sender = os.Getenv("EMAIL_SENDER")
	}
	if cfg.Email.Password == "" {
		cfg.Email.Password = os.Getenv("EMAIL_PASSWORD")
	}
	if cfg.Database.URL == "" {
		cfg.Database.URL = os.Getenv("CYBERHEALTH_DATABASE_URL")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for inconsistencies that would make a
// scan run impossible or meaningless.
func (c *Config) Validate() error {
	if c.OSV.BatchEndpoint == "" || c.OSV.QueryEndpoint == "" {
		return fmt.Errorf("osv endpoints must not be empty")
	}
	if c.OSV.RateLimit <= 0 {
		return fmt.Errorf("osv.rate_limit must be positive, got %v", c.OSV.RateLimit)
	}
	if c.Scanner.MaxFileBytes <= 0 {
		return fmt.Errorf("scanner.max_file_bytes must be positive, got %d", c.Scanner.MaxFileBytes)
	}
	if c.Scanner.Concurrency <= 0 {
		return fmt.Errorf("scanner.concurrency must be positive, got %d", c.Scanner.Concurrency)
	}
	if c.Registry.Enabled && c.Registry.Endpoint == "" {
		return fmt.Errorf("registry.endpoint must not be empty when the registry lookup is enabled")
	}
	return nil
}

// current holds the active configuration for the running process.
var current atomic.Pointer[Config]

// Set installs cfg as the process-wide configuration.
func Set(cfg *Config) {
	current.Store(cfg)
}

// Get returns the active configuration, falling back to defaults when none
// has been installed yet.
func Get() *Config {
	if cfg := current.Load(); cfg != nil {
		return cfg
	}
	return NewDefaultConfig()
}

// ExpandPath resolves a possibly home-relative path ("~/reports/out.md") to
// an absolute one.
func ExpandPath(path string) (string, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("failed to expand path %q: %w", path, err)
	}
	return expanded, nil
}
