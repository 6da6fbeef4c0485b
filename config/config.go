package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Notifier drivers.
const (
	NotifierLog     = "log"
	NotifierSMTP    = "smtp"
	NotifierWebhook = "webhook"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Crypto   CryptoConfig   `mapstructure:"crypto"`
	OTP      OTPConfig      `mapstructure:"otp"`
	Ledger   LedgerConfig   `mapstructure:"ledger"`
	Notifier NotifierConfig `mapstructure:"notifier"`
	Export   ExportConfig   `mapstructure:"export"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // debug, release, test
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns the HTTP listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type StorageConfig struct {
	Driver string `mapstructure:"driver"` // postgres, memory
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
	LockTimeout     time.Duration `mapstructure:"lock_timeout"` // 0 waits forever
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Expiry time.Duration `mapstructure:"expiry"`
	Issuer string        `mapstructure:"issuer"`
}

type CryptoConfig struct {
	MasterKey string       `mapstructure:"master_key"` // 32-byte hex-encoded root key; subkeys are derived from it
	Argon2    Argon2Config `mapstructure:"argon2"`
}

// Argon2Config is the cost applied to new password and PIN hashes.
type Argon2Config struct {
	MemoryKiB   uint32 `mapstructure:"memory_kib"`
	Iterations  uint32 `mapstructure:"iterations"`
	Parallelism uint8  `mapstructure:"parallelism"`
}

type OTPConfig struct {
	TTL         time.Duration `mapstructure:"ttl"`
	Length      int           `mapstructure:"length"`
	MaxAttempts int           `mapstructure:"max_attempts"`
}

type LedgerConfig struct {
	InitialBalance int64 `mapstructure:"initial_balance"`
	HistoryLimit   int   `mapstructure:"history_limit"`
}

type NotifierConfig struct {
	Driver  string        `mapstructure:"driver"` // log, smtp, webhook
	SMTP    SMTPConfig    `mapstructure:"smtp"`
	Webhook WebhookConfig `mapstructure:"webhook"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Sender   string `mapstructure:"sender"`
}

type WebhookConfig struct {
	URL     string        `mapstructure:"url"`
	Secret  string        `mapstructure:"secret"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type ExportConfig struct {
	S3 S3Config `mapstructure:"s3"`
}

type S3Config struct {
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"` // S3-compatible endpoint (MinIO); empty for AWS
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	Prefix    string `mapstructure:"prefix"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: WLG_ (Wallet LedGer).
// Nested keys use underscore: WLG_DATABASE_HOST, WLG_CRYPTO_MASTER_KEY, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.shutdown_timeout", "15s")
	v.SetDefault("storage.driver", DriverPostgres)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "wallet_ledger")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.lock_timeout", "5s")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiry", "1h")
	v.SetDefault("jwt.issuer", "wallet-ledger")
	v.SetDefault("crypto.master_key", "")
	v.SetDefault("crypto.argon2.memory_kib", 64*1024)
	v.SetDefault("crypto.argon2.iterations", 1)
	v.SetDefault("crypto.argon2.parallelism", 4)
	v.SetDefault("otp.ttl", "5m")
	v.SetDefault("otp.length", 6)
	v.SetDefault("otp.max_attempts", 5)
	v.SetDefault("ledger.initial_balance", 100)
	v.SetDefault("ledger.history_limit", 100)
	v.SetDefault("notifier.driver", NotifierLog)
	v.SetDefault("notifier.smtp.host", "localhost")
	v.SetDefault("notifier.smtp.port", 587)
	v.SetDefault("notifier.smtp.username", "")
	v.SetDefault("notifier.smtp.password", "")
	v.SetDefault("notifier.smtp.sender", "no-reply@wallet-ledger.local")
	v.SetDefault("notifier.webhook.url", "")
	v.SetDefault("notifier.webhook.secret", "")
	v.SetDefault("notifier.webhook.timeout", "10s")
	v.SetDefault("export.s3.region", "us-east-1")
	v.SetDefault("export.s3.endpoint", "")
	v.SetDefault("export.s3.access_key", "")
	v.SetDefault("export.s3.secret_key", "")
	v.SetDefault("export.s3.bucket", "")
	v.SetDefault("export.s3.prefix", "chain-snapshots/")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: WLG_DATABASE_HOST -> database.host
	v.SetEnvPrefix("WLG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required, env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Validate checks the settings the API server cannot start without.
func (c *Config) Validate() error {
	var errs []error

	switch c.Storage.Driver {
	case DriverPostgres, DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("storage.driver: unsupported driver %q", c.Storage.Driver))
	}

	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("jwt.secret is required"))
	}

	if key, err := hex.DecodeString(c.Crypto.MasterKey); err != nil || len(key) != 32 {
		errs = append(errs, errors.New("crypto.master_key must be 64 hex characters"))
	}

	if c.OTP.TTL <= 0 {
		errs = append(errs, errors.New("otp.ttl must be positive"))
	}
	if c.OTP.Length < 4 || c.OTP.Length > 10 {
		errs = append(errs, errors.New("otp.length must be between 4 and 10"))
	}
	if c.OTP.MaxAttempts < 1 {
		errs = append(errs, errors.New("otp.max_attempts must be at least 1"))
	}
	if c.Ledger.InitialBalance < 0 {
		errs = append(errs, errors.New("ledger.initial_balance must not be negative"))
	}

	switch c.Notifier.Driver {
	case NotifierLog:
	case NotifierSMTP:
		if c.Notifier.SMTP.Host == "" || c.Notifier.SMTP.Sender == "" {
			errs = append(errs, errors.New("notifier.smtp.host and notifier.smtp.sender are required"))
		}
	case NotifierWebhook:
		if c.Notifier.Webhook.URL == "" || c.Notifier.Webhook.Secret == "" {
			errs = append(errs, errors.New("notifier.webhook.url and notifier.webhook.secret are required"))
		}
	default:
		errs = append(errs, fmt.Errorf("notifier.driver: unsupported driver %q", c.Notifier.Driver))
	}

	return errors.Join(errs...)
}
