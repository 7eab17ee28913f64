// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Providers ProvidersConfig `mapstructure:"providers"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Cache     CacheConfig     `mapstructure:"cache"`
	History   HistoryConfig   `mapstructure:"history"`
	Limits    LimitsConfig    `mapstructure:"limits"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ProvidersConfig holds settings for the AI providers and the fallback policy.
type ProvidersConfig struct {
	Default        string         `mapstructure:"default"`
	Google         ProviderConfig `mapstructure:"google"`
	OpenAI         ProviderConfig `mapstructure:"openai"`
	Anthropic      ProviderConfig `mapstructure:"anthropic"`
	Timeout        int            `mapstructure:"timeout"`          // milliseconds, per parse attempt
	MaxRetries     int            `mapstructure:"max_retries"`      // attempts per provider
	RetryBaseDelay int            `mapstructure:"retry_base_delay"` // milliseconds
	RetryMaxDelay  int            `mapstructure:"retry_max_delay"`  // milliseconds
	HealthTimeout  int            `mapstructure:"health_timeout"`   // milliseconds, reachability probe
}

// ProviderConfig holds settings for a single AI provider.
type ProviderConfig struct {
	APIKey   string `mapstructure:"api_key"`
	Endpoint string `mapstructure:"endpoint"`
	Model    string `mapstructure:"model"`
}

// Enabled reports whether the provider has credentials configured.
func (p ProviderConfig) Enabled() bool {
	return p.APIKey != ""
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// CacheConfig holds settings for the parse-result cache.
type CacheConfig struct {
	TTL int `mapstructure:"ttl"` // seconds
}

// HistoryConfig selects the command history backend.
type HistoryConfig struct {
	Backend string `mapstructure:"backend"` // "memory" or "postgres"
	MaxSize int    `mapstructure:"max_size"`
}

// LimitsConfig holds request admission settings. MaxConcurrent is advisory
// only and exposed through stats; the pipeline never rejects on load.
type LimitsConfig struct {
	MaxBatchSize  int `mapstructure:"max_batch_size"`
	MaxConcurrent int `mapstructure:"max_concurrent"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
