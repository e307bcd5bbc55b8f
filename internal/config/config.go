// Package config loads the portal's runtime configuration from defaults,
// an optional config file and the environment.
package config

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
)

// Store backends.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Mail transports.
const (
	MailTransportSMTP  = "smtp"
	MailTransportGmail = "gmail"
	MailTransportLog   = "log"
)

// Config is the full runtime configuration, resolved once at process start.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Store     string          `mapstructure:"store"`
	Database  DatabaseConfig  `mapstructure:"database"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Password  PasswordConfig  `mapstructure:"password"`
	Mail      MailConfig      `mapstructure:"mail"`
	Notify    NotifyConfig    `mapstructure:"notify"`
	Uploads   UploadsConfig   `mapstructure:"uploads"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	AllowedOrigin   string        `mapstructure:"allowed_origin"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds Postgres pool settings.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
}

// MailConfig selects and configures the outbound mail transport.
type MailConfig struct {
	Transport   string      `mapstructure:"transport"`
	FromAddress string      `mapstructure:"from_address"`
	FromName    string      `mapstructure:"from_name"`
	SMTP        SMTPConfig  `mapstructure:"smtp"`
	Gmail       GmailConfig `mapstructure:"gmail"`
}

// SMTPConfig holds relay credentials.
type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// GmailConfig points at OAuth2 client credentials and a cached token.
type GmailConfig struct {
	CredentialsFile string `mapstructure:"credentials_file"`
	TokenFile       string `mapstructure:"token_file"`
}

// NotifyConfig tunes the detached notification worker.
type NotifyConfig struct {
	// Interval is the minimum spacing between outbound mails.
	Interval  time.Duration `mapstructure:"interval"`
	QueueSize int           `mapstructure:"queue_size"`
	Workers   int           `mapstructure:"workers"`
}

// UploadsConfig locates stored application attachments.
type UploadsConfig struct {
	Dir      string `mapstructure:"dir"`
	MaxBytes int64  `mapstructure:"max_bytes"`
}

// RedisConfig enables the shared rate limiter when URL is set.
type RedisConfig struct {
	URL string `mapstructure:"url"`
}

// RateLimitConfig holds HTTP rate limiting defaults.
type RateLimitConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	DefaultLimit    int           `mapstructure:"default_limit"`
	DefaultWindow   time.Duration `mapstructure:"default_window"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	Whitelist       string        `mapstructure:"whitelist"`
	Blacklist       string        `mapstructure:"blacklist"`
}

// LogConfig selects log encoding and level.
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// envBindings maps config keys to the environment variables that override them.
var envBindings = map[string]string{
	"server.port":                 "PORT",
	"server.allowed_origin":       "CORS_ALLOWED_ORIGIN",
	"store":                       "STORE",
	"database.url":                "DATABASE_URL",
	"database.max_open_conns":     "DATABASE_MAX_OPEN_CONNS",
	"database.max_idle_conns":     "DATABASE_MAX_IDLE_CONNS",
	"jwt.secret":                  "JWT_SECRET",
	"jwt.expiration_hours":        "JWT_EXPIRATION_HOURS",
	"password.bcrypt_cost":        "BCRYPT_COST",
	"password.pepper":             "PASSWORD_PEPPER",
	"mail.transport":              "MAIL_TRANSPORT",
	"mail.from_address":           "MAIL_FROM_ADDRESS",
	"mail.from_name":              "MAIL_FROM_NAME",
	"mail.smtp.host":              "SMTP_HOST",
	"mail.smtp.port":              "SMTP_PORT",
	"mail.smtp.username":          "SMTP_USERNAME",
	"mail.smtp.password":          "SMTP_PASSWORD",
	"mail.gmail.credentials_file": "GMAIL_CREDENTIALS_FILE",
	"mail.gmail.token_file":       "GMAIL_TOKEN_FILE",
	"notify.interval":             "NOTIFY_INTERVAL",
	"notify.queue_size":           "NOTIFY_QUEUE_SIZE",
	"notify.workers":              "NOTIFY_WORKERS",
	"uploads.dir":                 "UPLOAD_DIR",
	"uploads.max_bytes":           "UPLOAD_MAX_BYTES",
	"redis.url":                   "REDIS_URL",
	"ratelimit.enabled":           "RATE_LIMIT_ENABLED",
	"ratelimit.default_limit":     "RATE_LIMIT_DEFAULT_LIMIT",
	"ratelimit.default_window":    "RATE_LIMIT_DEFAULT_WINDOW",
	"ratelimit.cleanup_interval":  "RATE_LIMIT_CLEANUP_INTERVAL",
	"ratelimit.whitelist":         "RATE_LIMIT_WHITELIST",
	"ratelimit.blacklist":         "RATE_LIMIT_BLACKLIST",
	"log.level":                   "LOG_LEVEL",
	"log.development":             "LOG_DEVELOPMENT",
}

// SetDefaults registers every default value on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origin", "*")
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("store", StorePostgres)
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("database.connect_timeout", 30*time.Second)
	v.SetDefault("jwt.expiration_hours", 24)
	v.SetDefault("password.bcrypt_cost", 12)
	v.SetDefault("mail.transport", MailTransportLog)
	v.SetDefault("mail.from_address", "no-reply@jobportal.local")
	v.SetDefault("mail.from_name", "Job Portal")
	v.SetDefault("mail.smtp.port", 587)
	v.SetDefault("mail.gmail.token_file", "token.json")
	v.SetDefault("notify.interval", time.Second)
	v.SetDefault("notify.queue_size", 256)
	v.SetDefault("notify.workers", 1)
	v.SetDefault("uploads.dir", "uploads")
	v.SetDefault("uploads.max_bytes", 5*1024*1024)
	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.default_limit", 1000)
	v.SetDefault("ratelimit.default_window", time.Minute)
	v.SetDefault("ratelimit.cleanup_interval", 5*time.Minute)
	v.SetDefault("log.level", "info")
}

// Option adjusts the viper instance after every source is registered.
type Option func(v *viper.Viper)

// WithOverride pins key to value above the file and the environment. Command
// line flags use it so their values are validated with the rest.
func WithOverride(key string, value any) Option {
	return func(v *viper.Viper) { v.Set(key, value) }
}

// Load resolves configuration. path may be empty, in which case only defaults
// and the environment are used.
func Load(path string, opts ...Option) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix("JOB_PORTAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, errors.Wrapf(err, "failed to bind %s", env)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", path)
		}
	}

	for _, opt := range opts {
		opt(v)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the resolved values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return errors.Newf("config error: server port out of range: %d", c.Server.Port)
	}
	switch c.Store {
	case StorePostgres:
		if c.Database.URL == "" {
			return errors.New("config error: DATABASE_URL environment variable is required")
		}
	case StoreMemory:
	default:
		return errors.Newf("config error: unknown store %q", c.Store)
	}
	if err := c.JWT.normalize(); err != nil {
		return err
	}
	if err := c.Password.normalize(); err != nil {
		return err
	}
	switch c.Mail.Transport {
	case MailTransportSMTP:
		if c.Mail.SMTP.Host == "" {
			return errors.New("config error: SMTP_HOST is required for the smtp transport")
		}
	case MailTransportGmail:
		if c.Mail.Gmail.CredentialsFile == "" {
			return errors.New("config error: GMAIL_CREDENTIALS_FILE is required for the gmail transport")
		}
	case MailTransportLog:
	default:
		return errors.Newf("config error: unknown mail transport %q", c.Mail.Transport)
	}
	if c.Notify.Interval < 0 {
		return errors.New("config error: notify interval must be non-negative")
	}
	if c.Notify.QueueSize < 1 || c.Notify.Workers < 1 {
		return errors.New("config error: notify queue size and workers must be positive")
	}
	if c.Uploads.MaxBytes < 1 {
		return errors.New("config error: upload limit must be positive")
	}
	return nil
}
