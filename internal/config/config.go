// Package config loads and validates application configuration.
// Values come from an optional YAML settings file overlaid by environment
// variables. Load fails fast, naming every missing or malformed field,
// instead of letting empty values reach a store connection.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/ICMVRD/sb1-hdboxt/internal/domain"
)

// Store drivers accepted in store.driver.
const (
	DriverPostgres  = "postgres"
	DriverMongo     = "mongo"
	DriverFirestore = "firestore"
	DriverRedis     = "redis"
	DriverMemory    = "memory"
)

// Config holds all configuration values for the API server.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string `mapstructure:"port"`

	// Env is "development" or "production"; it selects the log encoder.
	Env string `mapstructure:"env"`

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string `mapstructure:"log_level"`

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string `mapstructure:"cors_origins"`

	// SlotMinutes is the slot duration. It must divide 1440. Defaults to 15.
	SlotMinutes int `mapstructure:"slot_minutes"`

	// RateLimitPerMinute caps reservation attempts per client IP. Zero disables it.
	RateLimitPerMinute int `mapstructure:"rate_limit_per_minute"`

	// SettingsFile is where the developer settings editor persists changes.
	SettingsFile string `mapstructure:"settings_file"`

	Display DisplayConfig `mapstructure:"display"`
	Store   StoreConfig   `mapstructure:"store"`
	Access  AccessConfig  `mapstructure:"access"`
	AMQP    AMQPConfig    `mapstructure:"amqp"`
	Archive ArchiveConfig `mapstructure:"archive"`
}

// DisplayConfig is printed on report headers.
type DisplayConfig struct {
	Name   string `mapstructure:"name" yaml:"name"`
	Branch string `mapstructure:"branch" yaml:"branch"`
}

// StoreConfig selects and parameterises the reservation backing store.
// Only the block matching Driver is read.
type StoreConfig struct {
	Driver     string          `mapstructure:"driver" yaml:"driver"`
	Collection string          `mapstructure:"collection" yaml:"collection"`
	Postgres   PostgresConfig  `mapstructure:"postgres" yaml:"postgres"`
	Mongo      MongoConfig     `mapstructure:"mongo" yaml:"mongo"`
	Firestore  FirestoreConfig `mapstructure:"firestore" yaml:"firestore"`
	Redis      RedisConfig     `mapstructure:"redis" yaml:"redis"`
}

type PostgresConfig struct {
	URL string `mapstructure:"url" yaml:"url"`
}

type MongoConfig struct {
	URI      string `mapstructure:"uri" yaml:"uri"`
	Database string `mapstructure:"database" yaml:"database"`
}

type FirestoreConfig struct {
	ProjectID       string `mapstructure:"project_id" yaml:"project_id"`
	// CredentialsFile is a service account JSON key. Empty means application
	// default credentials (or the emulator when FIRESTORE_EMULATOR_HOST is set).
	CredentialsFile string `mapstructure:"credentials_file" yaml:"credentials_file"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr" yaml:"addr"`
	Password string `mapstructure:"password" yaml:"password"`
	DB       int    `mapstructure:"db" yaml:"db"`
}

// AccessConfig holds bcrypt hashes of the shared keys for the admin and
// developer panels. An empty hash disables that role entirely.
type AccessConfig struct {
	AdminKeyHash     string `mapstructure:"admin_key_hash"`
	DeveloperKeyHash string `mapstructure:"developer_key_hash"`
}

// AMQPConfig enables domain event publishing when URL is set.
type AMQPConfig struct {
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
}

// ArchiveConfig enables report archiving to S3-compatible storage when
// Endpoint and Bucket are set.
type ArchiveConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// Enabled reports whether archiving is configured.
func (a ArchiveConfig) Enabled() bool {
	return a.Endpoint != "" && a.Bucket != ""
}

var defaults = map[string]any{
	"port":                  "8080",
	"env":                   "development",
	"log_level":             "info",
	"cors_origins":          []string{"http://localhost:5173"},
	"slot_minutes":          domain.DefaultSlotMinutes,
	"rate_limit_per_minute": 30,
	"settings_file":         "settings.yaml",

	"display.name":   "",
	"display.branch": "",

	"store.driver":                     DriverPostgres,
	"store.collection":                 "reservations",
	"store.postgres.url":               "",
	"store.mongo.uri":                  "",
	"store.mongo.database":             "",
	"store.firestore.project_id":       "",
	"store.firestore.credentials_file": "",
	"store.redis.addr":                 "",
	"store.redis.password":             "",
	"store.redis.db":                   0,

	"access.admin_key_hash":     "",
	"access.developer_key_hash": "",
	"amqp.url":                  "",
	"amqp.exchange":             "reservations",

	"archive.endpoint":   "",
	"archive.access_key": "",
	"archive.secret_key": "",
	"archive.bucket":     "",
	"archive.use_ssl":    true,
}

// Load reads .env (if present), the settings file named by SETTINGS_FILE
// (default settings.yaml, optional) and environment variables, then validates
// the result. Environment variables win over the file.
func Load() (Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := newViper()
	path := v.GetString("settings_file")
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config.Load: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config.Load: decode: %w", err)
	}
	cfg.CORSOrigins = trimAll(cfg.CORSOrigins)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// newViper returns a viper instance with defaults and env bindings applied.
// Nested keys map to upper-case underscore names: store.redis.addr is
// STORE_REDIS_ADDR. DATABASE_URL is accepted as an alias for the Postgres URL.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("store.postgres.url", "STORE_POSTGRES_URL", "DATABASE_URL")
	return v
}

// Validate checks every field that would otherwise fail later at connection
// time and reports all problems at once.
func (c Config) Validate() error {
	var problems []string

	if !slices.Contains([]string{"debug", "info", "warn", "error"}, c.LogLevel) {
		problems = append(problems, fmt.Sprintf("LOG_LEVEL %q is not one of debug, info, warn, error", c.LogLevel))
	}
	if err := domain.ValidateSlotMinutes(c.SlotMinutes); err != nil {
		problems = append(problems, fmt.Sprintf("SLOT_MINUTES %d must be positive and divide 1440", c.SlotMinutes))
	}
	if c.RateLimitPerMinute < 0 {
		problems = append(problems, "RATE_LIMIT_PER_MINUTE must not be negative")
	}
	problems = append(problems, c.Store.problems()...)
	if c.Archive.Endpoint != "" && c.Archive.Bucket == "" {
		problems = append(problems, "ARCHIVE_BUCKET is required when ARCHIVE_ENDPOINT is set")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Validate checks a store block on its own; the settings editor uses it
// before opening a new connection.
func (s StoreConfig) Validate() error {
	if problems := s.problems(); len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func (s StoreConfig) problems() []string {
	var missing, malformed []string
	require := func(val, name string) {
		if strings.TrimSpace(val) == "" {
			missing = append(missing, name)
		}
	}

	switch s.Driver {
	case DriverPostgres:
		require(s.Postgres.URL, "STORE_POSTGRES_URL (or DATABASE_URL)")
	case DriverMongo:
		require(s.Mongo.URI, "STORE_MONGO_URI")
		require(s.Mongo.Database, "STORE_MONGO_DATABASE")
		require(s.Collection, "STORE_COLLECTION")
	case DriverFirestore:
		require(s.Firestore.ProjectID, "STORE_FIRESTORE_PROJECT_ID")
		require(s.Collection, "STORE_COLLECTION")
	case DriverRedis:
		require(s.Redis.Addr, "STORE_REDIS_ADDR")
		require(s.Collection, "STORE_COLLECTION")
		if s.Redis.DB < 0 {
			malformed = append(malformed, "STORE_REDIS_DB must not be negative")
		}
	case DriverMemory:
	default:
		return []string{fmt.Sprintf("STORE_DRIVER %q is not one of postgres, mongo, firestore, redis, memory", s.Driver)}
	}

	if len(missing) > 0 {
		malformed = append(malformed, "required settings not set: "+strings.Join(missing, ", "))
	}
	return malformed
}

// trimAll trims each entry and drops empty ones.
func trimAll(in []string) []string {
	var out []string
	for _, part := range in {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
