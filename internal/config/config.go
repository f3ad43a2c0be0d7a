package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	DB         DBConfig
	S3         S3Config
	Log        LogConfig
	Parser     ParserConfig
	CORS       CORSConfig
	Extraction ExtractionConfig
}

// ExtractionConfig holds settings for the chunked extraction pipeline.
type ExtractionConfig struct {
	Backend        string `mapstructure:"backend"`
	ChunkSize      int    `mapstructure:"chunk_size"`
	Concurrency    int    `mapstructure:"concurrency"`
	RetryDelayMs   int    `mapstructure:"retry_delay_ms"`
	CacheResults   bool   `mapstructure:"cache_results"`
	RunTimeoutSecs int    `mapstructure:"run_timeout_secs"`
	StalePollSecs  int    `mapstructure:"stale_poll_secs"`
}

// RetryDelay returns the pause before the single cloud retry.
func (e *ExtractionConfig) RetryDelay() time.Duration {
	return time.Duration(e.RetryDelayMs) * time.Millisecond
}

// RunTimeout returns the upper bound on one extraction run, or 0 for none.
func (e *ExtractionConfig) RunTimeout() time.Duration {
	return time.Duration(e.RunTimeoutSecs) * time.Second
}

// StaleAfter returns how long a run may go without progress before it is
// considered abandoned.
func (e *ExtractionConfig) StaleAfter() time.Duration {
	return 2 * e.RunTimeout()
}

// StalePollInterval returns the stale run sweep interval, or 0 when disabled.
func (e *ExtractionConfig) StalePollInterval() time.Duration {
	return time.Duration(e.StalePollSecs) * time.Second
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ParserProviderConfig holds settings for a single cloud model provider.
type ParserProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	MaxRetries   int    `mapstructure:"max_retries"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// ParserConfig holds cloud extraction provider settings with multi-provider support.
type ParserConfig struct {
	// Legacy flat fields, used when no primary provider is set
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	MaxRetries   int    `mapstructure:"max_retries"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`

	Primary   ParserProviderConfig `mapstructure:"primary"`
	Secondary ParserProviderConfig `mapstructure:"secondary"`
	Tertiary  ParserProviderConfig `mapstructure:"tertiary"`
}

// PrimaryConfig returns the primary provider config, falling back to legacy flat fields.
func (p *ParserConfig) PrimaryConfig() *ParserProviderConfig {
	if p.Primary.Provider != "" {
		return &p.Primary
	}
	return &ParserProviderConfig{
		Provider:     p.Provider,
		APIKey:       p.APIKey,
		DefaultModel: p.DefaultModel,
		MaxRetries:   p.MaxRetries,
		TimeoutSecs:  p.TimeoutSecs,
	}
}

// SecondaryConfig returns the secondary provider config, or nil if not configured.
func (p *ParserConfig) SecondaryConfig() *ParserProviderConfig {
	if p.Secondary.Provider != "" {
		return &p.Secondary
	}
	return nil
}

// TertiaryConfig returns the tertiary provider config, or nil if not configured.
func (p *ParserConfig) TertiaryConfig() *ParserProviderConfig {
	if p.Tertiary.Provider != "" {
		return &p.Tertiary
	}
	return nil
}

// ProviderChain returns the configured providers in fallback order.
func (p *ParserConfig) ProviderChain() []*ParserProviderConfig {
	chain := []*ParserProviderConfig{p.PrimaryConfig()}
	if s := p.SecondaryConfig(); s != nil {
		chain = append(chain, s)
	}
	if t := p.TertiaryConfig(); t != nil {
		chain = append(chain, t)
	}
	return chain
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// MaxFileSizeBytes returns the upload limit in bytes.
func (s *S3Config) MaxFileSizeBytes() int64 {
	return s.MaxFileSizeMB << 20
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the FINEXTRACT_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("FINEXTRACT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "finextract")
	v.SetDefault("db.password", "finextract_secret")
	v.SetDefault("db.name", "finextract_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// S3 defaults
	v.SetDefault("s3.region", "eu-west-3")
	v.SetDefault("s3.bucket", "finextract-statements")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_file_size_mb", 50)
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000,http://localhost:5173")

	// Extraction defaults
	v.SetDefault("extraction.backend", "local")
	v.SetDefault("extraction.chunk_size", 25)
	v.SetDefault("extraction.concurrency", 6)
	v.SetDefault("extraction.retry_delay_ms", 1000)
	v.SetDefault("extraction.cache_results", true)
	v.SetDefault("extraction.run_timeout_secs", 900)
	v.SetDefault("extraction.stale_poll_secs", 300)

	// Parser defaults (legacy flat)
	v.SetDefault("parser.provider", "gemini")
	v.SetDefault("parser.api_key", "")
	v.SetDefault("parser.default_model", "gemini-3-flash-preview")
	v.SetDefault("parser.max_retries", 1)
	v.SetDefault("parser.timeout_secs", 180)

	// Parser primary/secondary/tertiary defaults
	for _, slot := range []string{"primary", "secondary", "tertiary"} {
		v.SetDefault("parser."+slot+".provider", "")
		v.SetDefault("parser."+slot+".api_key", "")
		v.SetDefault("parser."+slot+".default_model", "")
		v.SetDefault("parser."+slot+".max_retries", 1)
		v.SetDefault("parser."+slot+".timeout_secs", 180)
	}

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                    "FINEXTRACT_SERVER_PORT",
		"server.read_timeout":            "FINEXTRACT_SERVER_READ_TIMEOUT",
		"server.write_timeout":           "FINEXTRACT_SERVER_WRITE_TIMEOUT",
		"server.environment":             "FINEXTRACT_SERVER_ENVIRONMENT",
		"db.host":                        "FINEXTRACT_DB_HOST",
		"db.port":                        "FINEXTRACT_DB_PORT",
		"db.user":                        "FINEXTRACT_DB_USER",
		"db.password":                    "FINEXTRACT_DB_PASSWORD",
		"db.name":                        "FINEXTRACT_DB_NAME",
		"db.sslmode":                     "FINEXTRACT_DB_SSLMODE",
		"db.max_open":                    "FINEXTRACT_DB_MAX_OPEN",
		"db.max_idle":                    "FINEXTRACT_DB_MAX_IDLE",
		"s3.region":                      "FINEXTRACT_S3_REGION",
		"s3.bucket":                      "FINEXTRACT_S3_BUCKET",
		"s3.endpoint":                    "FINEXTRACT_S3_ENDPOINT",
		"s3.access_key":                  "FINEXTRACT_S3_ACCESS_KEY",
		"s3.secret_key":                  "FINEXTRACT_S3_SECRET_KEY",
		"s3.max_file_size_mb":            "FINEXTRACT_S3_MAX_FILE_SIZE_MB",
		"s3.presign_expiry":              "FINEXTRACT_S3_PRESIGN_EXPIRY",
		"log.level":                      "FINEXTRACT_LOG_LEVEL",
		"log.format":                     "FINEXTRACT_LOG_FORMAT",
		"cors.allowed_origins":           "FINEXTRACT_CORS_ALLOWED_ORIGINS",
		"extraction.backend":             "FINEXTRACT_EXTRACTION_BACKEND",
		"extraction.chunk_size":          "FINEXTRACT_EXTRACTION_CHUNK_SIZE",
		"extraction.concurrency":         "FINEXTRACT_EXTRACTION_CONCURRENCY",
		"extraction.retry_delay_ms":      "FINEXTRACT_EXTRACTION_RETRY_DELAY_MS",
		"extraction.cache_results":       "FINEXTRACT_EXTRACTION_CACHE_RESULTS",
		"extraction.run_timeout_secs":    "FINEXTRACT_EXTRACTION_RUN_TIMEOUT_SECS",
		"extraction.stale_poll_secs":     "FINEXTRACT_EXTRACTION_STALE_POLL_SECS",
		"parser.provider":                "FINEXTRACT_PARSER_PROVIDER",
		"parser.api_key":                 "FINEXTRACT_PARSER_API_KEY",
		"parser.default_model":           "FINEXTRACT_PARSER_DEFAULT_MODEL",
		"parser.max_retries":             "FINEXTRACT_PARSER_MAX_RETRIES",
		"parser.timeout_secs":            "FINEXTRACT_PARSER_TIMEOUT_SECS",
		"parser.primary.provider":        "FINEXTRACT_PARSER_PRIMARY_PROVIDER",
		"parser.primary.api_key":         "FINEXTRACT_PARSER_PRIMARY_API_KEY",
		"parser.primary.default_model":   "FINEXTRACT_PARSER_PRIMARY_DEFAULT_MODEL",
		"parser.primary.max_retries":     "FINEXTRACT_PARSER_PRIMARY_MAX_RETRIES",
		"parser.primary.timeout_secs":    "FINEXTRACT_PARSER_PRIMARY_TIMEOUT_SECS",
		"parser.secondary.provider":      "FINEXTRACT_PARSER_SECONDARY_PROVIDER",
		"parser.secondary.api_key":       "FINEXTRACT_PARSER_SECONDARY_API_KEY",
		"parser.secondary.default_model": "FINEXTRACT_PARSER_SECONDARY_DEFAULT_MODEL",
		"parser.secondary.max_retries":   "FINEXTRACT_PARSER_SECONDARY_MAX_RETRIES",
		"parser.secondary.timeout_secs":  "FINEXTRACT_PARSER_SECONDARY_TIMEOUT_SECS",
		"parser.tertiary.provider":       "FINEXTRACT_PARSER_TERTIARY_PROVIDER",
		"parser.tertiary.api_key":        "FINEXTRACT_PARSER_TERTIARY_API_KEY",
		"parser.tertiary.default_model":  "FINEXTRACT_PARSER_TERTIARY_DEFAULT_MODEL",
		"parser.tertiary.max_retries":    "FINEXTRACT_PARSER_TERTIARY_MAX_RETRIES",
		"parser.tertiary.timeout_secs":   "FINEXTRACT_PARSER_TERTIARY_TIMEOUT_SECS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Hosting platforms set a PORT env var. Use it if FINEXTRACT_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("FINEXTRACT_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		MaxFileSizeMB: v.GetInt64("s3.max_file_size_mb"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitList(v.GetString("cors.allowed_origins")),
	}
	cfg.Extraction = ExtractionConfig{
		Backend:        v.GetString("extraction.backend"),
		ChunkSize:      v.GetInt("extraction.chunk_size"),
		Concurrency:    v.GetInt("extraction.concurrency"),
		RetryDelayMs:   v.GetInt("extraction.retry_delay_ms"),
		CacheResults:   v.GetBool("extraction.cache_results"),
		RunTimeoutSecs: v.GetInt("extraction.run_timeout_secs"),
		StalePollSecs:  v.GetInt("extraction.stale_poll_secs"),
	}

	cfg.Parser = ParserConfig{
		Provider:     v.GetString("parser.provider"),
		APIKey:       v.GetString("parser.api_key"),
		DefaultModel: v.GetString("parser.default_model"),
		MaxRetries:   v.GetInt("parser.max_retries"),
		TimeoutSecs:  v.GetInt("parser.timeout_secs"),
		Primary:      providerConfig(v, "primary"),
		Secondary:    providerConfig(v, "secondary"),
		Tertiary:     providerConfig(v, "tertiary"),
	}

	if cfg.Extraction.ChunkSize <= 0 {
		return nil, fmt.Errorf("extraction.chunk_size must be positive, got %d", cfg.Extraction.ChunkSize)
	}
	if cfg.Extraction.Concurrency <= 0 {
		return nil, fmt.Errorf("extraction.concurrency must be positive, got %d", cfg.Extraction.Concurrency)
	}

	return cfg, nil
}

func providerConfig(v *viper.Viper, slot string) ParserProviderConfig {
	prefix := "parser." + slot + "."
	return ParserProviderConfig{
		Provider:     v.GetString(prefix + "provider"),
		APIKey:       v.GetString(prefix + "api_key"),
		DefaultModel: v.GetString(prefix + "default_model"),
		MaxRetries:   v.GetInt(prefix + "max_retries"),
		TimeoutSecs:  v.GetInt(prefix + "timeout_secs"),
	}
}

// splitList parses a comma-separated string, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}
