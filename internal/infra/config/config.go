package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageMemory = "memory"
	StorageMongo  = "mongo"

	EmailLog  = "log"
	EmailSMTP = "smtp"
	EmailSES  = "ses"
)

// Config aggregates application configuration values loaded from environment variables.
type Config struct {
	Env      string
	HTTPAddr string
	LogLevel string
	LogFile  string

	StorageMode string
	MongoURI    string
	MongoDB     string
	Fixtures    string

	KafkaBrokers       []string
	KafkaTopicPrefix   string
	KafkaConsumerGroup string
	IdempotencyTTL     time.Duration
	OutboxPollInterval time.Duration
	RetryBackoff       []time.Duration

	S3Endpoint       string
	S3PublicEndpoint string
	S3AccessKey      string
	S3SecretKey      string
	S3Bucket         string
	S3UseSSL         bool

	RedisURL      string
	SessionTTL    time.Duration
	BcryptCost    int
	AdminEmail    string
	AdminPassword string
	CORSOrigins   []string

	EmailTransport string
	EmailFrom      string
	NotifyTo       string
	SMTPHost       string
	SMTPPort       int
	SMTPUser       string
	SMTPPassword   string
	SESRegion      string
	SESAccessKey   string
	SESSecretKey   string

	PhoneRegion string
}

// Load reads an optional .env file and then the environment. Variables already
// set in the environment win over the file.
func Load() (Config, error) {
	if err := godotenv.Load(getEnv("ENV_FILE", ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}
	return FromEnv()
}

// FromEnv parses configuration from the current environment.
func FromEnv() (Config, error) {
	cfg := Config{
		Env:                getEnv("APP_ENV", "dev"),
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		LogLevel:           strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFile:            os.Getenv("LOG_FILE"),
		StorageMode:        strings.ToLower(getEnv("STORAGE_MODE", StorageMemory)),
		MongoURI:           os.Getenv("MONGO_URI"),
		MongoDB:            getEnv("MONGO_DB", "coastalstay"),
		Fixtures:           os.Getenv("PROPERTIES_FIXTURES"),
		KafkaBrokers:       splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopicPrefix:   getEnv("KAFKA_TOPIC_PREFIX", ""),
		KafkaConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "coastalstay-notifications"),
		S3Endpoint:         os.Getenv("S3_ENDPOINT"),
		S3PublicEndpoint:   os.Getenv("S3_PUBLIC_ENDPOINT"),
		S3AccessKey:        os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:        os.Getenv("S3_SECRET_KEY"),
		S3Bucket:           getEnv("S3_BUCKET", "coastalstay-photos"),
		RedisURL:           os.Getenv("REDIS_URL"),
		AdminEmail:         os.Getenv("ADMIN_EMAIL"),
		AdminPassword:      os.Getenv("ADMIN_PASSWORD"),
		CORSOrigins:        splitList(getEnv("CORS_ORIGINS", "*")),
		EmailTransport:     strings.ToLower(getEnv("EMAIL_TRANSPORT", EmailLog)),
		EmailFrom:          getEnv("EMAIL_FROM", "no-reply@coastalstay.lk"),
		NotifyTo:           os.Getenv("NOTIFY_TO"),
		SMTPHost:           os.Getenv("SMTP_HOST"),
		SMTPUser:           os.Getenv("SMTP_USER"),
		SMTPPassword:       os.Getenv("SMTP_PASSWORD"),
		SESRegion:          os.Getenv("SES_REGION"),
		SESAccessKey:       os.Getenv("SES_ACCESS_KEY_ID"),
		SESSecretKey:       os.Getenv("SES_SECRET_ACCESS_KEY"),
		PhoneRegion:        strings.ToUpper(getEnv("PHONE_REGION", "LK")),
	}

	var err error
	if cfg.IdempotencyTTL, err = parseDurationEnv("IDEMP_TTL", 24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.OutboxPollInterval, err = parseDurationEnv("OUTBOX_POLL_INTERVAL", 500*time.Millisecond); err != nil {
		return Config{}, err
	}
	if cfg.SessionTTL, err = parseDurationEnv("SESSION_TTL", 12*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.BcryptCost, err = parseIntEnv("BCRYPT_COST", 0); err != nil {
		return Config{}, err
	}
	if cfg.RetryBackoff, err = parseDurationListEnv("RETRY_BACKOFF", "1s,5s,30s"); err != nil {
		return Config{}, err
	}
	if cfg.S3UseSSL, err = parseBoolEnv("S3_USE_SSL", false); err != nil {
		return Config{}, err
	}
	if cfg.SMTPPort, err = parseIntEnv("SMTP_PORT", 587); err != nil {
		return Config{}, err
	}
	if cfg.S3PublicEndpoint == "" {
		cfg.S3PublicEndpoint = cfg.S3Endpoint
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.StorageMode {
	case StorageMemory:
	case StorageMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required when STORAGE_MODE=mongo")
		}
	default:
		return fmt.Errorf("invalid STORAGE_MODE %q", c.StorageMode)
	}
	if len(c.KafkaBrokers) > 0 && c.StorageMode != StorageMongo {
		return fmt.Errorf("KAFKA_BROKERS requires STORAGE_MODE=mongo")
	}
	switch c.EmailTransport {
	case EmailLog:
	case EmailSMTP:
		if c.SMTPHost == "" {
			return fmt.Errorf("SMTP_HOST is required when EMAIL_TRANSPORT=smtp")
		}
	case EmailSES:
		if c.SESRegion == "" {
			return fmt.Errorf("SES_REGION is required when EMAIL_TRANSPORT=ses")
		}
	default:
		return fmt.Errorf("invalid EMAIL_TRANSPORT %q", c.EmailTransport)
	}
	if (c.AdminEmail == "") != (c.AdminPassword == "") {
		return fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}
	return nil
}

// KafkaEnabled reports whether events leave the process through the broker.
func (c Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// PhotosEnabled reports whether an S3 endpoint is configured.
func (c Config) PhotosEnabled() bool {
	return c.S3Endpoint != ""
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration: %w", key, err)
	}
	return d, nil
}

func parseDurationListEnv(key, def string) ([]time.Duration, error) {
	var out []time.Duration
	for _, raw := range splitList(getEnv(key, def)) {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s component %q: %w", key, raw, err)
		}
		out = append(out, d)
	}
	return out, nil
}

func parseBoolEnv(key string, def bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "t", "true", "yes", "y", "on":
		return true, nil
	case "0", "f", "false", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid %s boolean: %q", key, raw)
	}
}

func parseIntEnv(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s integer: %w", key, err)
	}
	return v, nil
}
