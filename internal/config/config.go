// v2
// internal/config/config.go
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
)

// Config captures all runtime settings of the API. Values come from
// defaults, then an optional properties file, then an optional .env file,
// then SSACITY_* environment variables.
type Config struct {
	ListenAddress    string
	LogFilePath      string
	LogLevel         zapcore.Level
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	ShutdownTimeout  time.Duration
	PropertiesPath   string

	// TickInterval is the period of the sensor drift pass.
	TickInterval time.Duration
	// Seed drives every random stream; 0 picks a time-based seed.
	Seed int64
	// SeedPath optionally replaces the embedded location/zone tables.
	SeedPath string

	// KafkaBrokers empty disables the Kafka sink and the command consumer.
	KafkaBrokers   []string
	TelemetryTopic string
	CommandTopic   string
	CommandGroupID string

	// MQTTBroker empty disables the MQTT sink.
	MQTTBroker      string
	MQTTClientID    string
	MQTTUsername    string
	MQTTPassword    string
	MQTTTopicPrefix string

	// RedisAddr empty disables the Redis stream sink.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisStream   string
	RedisMaxLen   int64

	BreakerMaxFailures      int
	BreakerResetTimeout     time.Duration
	BreakerSuccessesToClose int
	// BreakerAttemptTimeout bounds a single guarded sink write.
	BreakerAttemptTimeout time.Duration
}

// EnvPrefix is prepended to the upper-cased property key to form the
// environment variable name, e.g. tick_interval_ms -> SSACITY_TICK_INTERVAL_MS.
const EnvPrefix = "SSACITY_"

const (
	defaultListenAddress  = ":8000"
	defaultLogFile        = "logs/ssacity.log"
	defaultReadTimeout    = 5 * time.Second
	defaultWriteTimeout   = 15 * time.Second
	defaultShutdown       = 5 * time.Second
	defaultPropsPath      = "ssacity.properties"
	defaultEnvFile        = ".env"
	defaultTickInterval   = 30 * time.Second
	defaultTelemetryTopic = "bins.telemetry"
	defaultCommandTopic   = "bins.commands"
	defaultCommandGroup   = "ssacity-api"
	defaultMQTTClientID   = "ssacity-api"
	defaultMQTTPrefix     = "ssacity/bins"
	defaultRedisStream    = "ssacity:bins"
	defaultRedisMaxLen    = 10000
	defaultMaxFailures    = 5
	defaultResetTimeout   = 30 * time.Second
	defaultSuccesses      = 1
	defaultAttemptTimeout = 5 * time.Second
)

// keys lists every recognised property in the order environment overrides
// are applied.
var keys = []string{
	"listen_address",
	"log_path",
	"log_level",
	"http_read_timeout_ms",
	"http_write_timeout_ms",
	"shutdown_timeout_ms",
	"tick_interval_ms",
	"seed",
	"seed_path",
	"kafka_brokers",
	"telemetry_topic",
	"command_topic",
	"command_group",
	"mqtt_broker",
	"mqtt_client_id",
	"mqtt_username",
	"mqtt_password",
	"mqtt_topic_prefix",
	"redis_addr",
	"redis_password",
	"redis_db",
	"redis_stream",
	"redis_max_len",
	"breaker_max_failures",
	"breaker_reset_timeout_ms",
	"breaker_successes_to_close",
	"breaker_attempt_timeout_ms",
}

// Defaults returns the configuration used when nothing is overridden.
func Defaults() Config {
	return Config{
		ListenAddress:           defaultListenAddress,
		LogFilePath:             filepath.Clean(defaultLogFile),
		LogLevel:                zapcore.InfoLevel,
		HTTPReadTimeout:         defaultReadTimeout,
		HTTPWriteTimeout:        defaultWriteTimeout,
		ShutdownTimeout:         defaultShutdown,
		TickInterval:            defaultTickInterval,
		TelemetryTopic:          defaultTelemetryTopic,
		CommandTopic:            defaultCommandTopic,
		CommandGroupID:          defaultCommandGroup,
		MQTTClientID:            defaultMQTTClientID,
		MQTTTopicPrefix:         defaultMQTTPrefix,
		RedisStream:             defaultRedisStream,
		RedisMaxLen:             defaultRedisMaxLen,
		BreakerMaxFailures:      defaultMaxFailures,
		BreakerResetTimeout:     defaultResetTimeout,
		BreakerSuccessesToClose: defaultSuccesses,
		BreakerAttemptTimeout:   defaultAttemptTimeout,
	}
}

// Load resolves the configuration. The properties file location can be
// overridden with SSACITY_PROPERTIES_PATH and the dotenv file with
// SSACITY_ENV_FILE. Either file may be absent.
func Load() (Config, error) {
	cfg := Defaults()

	propsPath := strings.TrimSpace(os.Getenv(EnvPrefix + "PROPERTIES_PATH"))
	if propsPath == "" {
		propsPath = defaultPropsPath
	}
	cfg.PropertiesPath = propsPath

	if err := applyProperties(&cfg, propsPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}

	envFile := strings.TrimSpace(os.Getenv(EnvPrefix + "ENV_FILE"))
	if envFile == "" {
		envFile = defaultEnvFile
	}
	// godotenv never overrides variables that are already set.
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", envFile, err)
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// KafkaEnabled reports whether Kafka brokers were configured.
func (c Config) KafkaEnabled() bool { return len(c.KafkaBrokers) > 0 }

func applyProperties(cfg *Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" || strings.HasPrefix(raw, "#") || strings.HasPrefix(raw, ";") {
			continue
		}
		key, value, ok := strings.Cut(raw, "=")
		if !ok {
			return fmt.Errorf("%s: invalid properties entry on line %d", path, line)
		}
		key = strings.TrimSpace(key)
		if err := setProperty(cfg, key, strings.TrimSpace(value)); err != nil {
			return fmt.Errorf("%s: property %s: %w", path, key, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read properties: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	for _, key := range keys {
		name := EnvPrefix + strings.ToUpper(key)
		v, ok := lookupEnvTrimmed(name)
		if !ok {
			continue
		}
		if err := setProperty(cfg, key, v); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func setProperty(cfg *Config, key, value string) error {
	var err error
	switch key {
	case "listen_address":
		cfg.ListenAddress, err = nonEmpty(value)
	case "log_path":
		var p string
		if p, err = nonEmpty(value); err == nil {
			cfg.LogFilePath = filepath.Clean(p)
		}
	case "log_level":
		cfg.LogLevel, err = zapcore.ParseLevel(value)
	case "http_read_timeout_ms":
		cfg.HTTPReadTimeout, err = parsePositiveMillis(value)
	case "http_write_timeout_ms":
		cfg.HTTPWriteTimeout, err = parsePositiveMillis(value)
	case "shutdown_timeout_ms":
		cfg.ShutdownTimeout, err = parsePositiveMillis(value)
	case "tick_interval_ms":
		var d time.Duration
		if d, err = parsePositiveMillis(value); err == nil && d < time.Second {
			err = fmt.Errorf("must be at least 1000, got %s", value)
		}
		if err == nil {
			cfg.TickInterval = d
		}
	case "seed":
		cfg.Seed, err = strconv.ParseInt(value, 10, 64)
	case "seed_path":
		cfg.SeedPath = value
	case "kafka_brokers":
		cfg.KafkaBrokers = splitAndTrim(value)
	case "telemetry_topic":
		cfg.TelemetryTopic = value
	case "command_topic":
		cfg.CommandTopic = value
	case "command_group":
		cfg.CommandGroupID, err = nonEmpty(value)
	case "mqtt_broker":
		cfg.MQTTBroker = value
	case "mqtt_client_id":
		cfg.MQTTClientID, err = nonEmpty(value)
	case "mqtt_username":
		cfg.MQTTUsername = value
	case "mqtt_password":
		cfg.MQTTPassword = value
	case "mqtt_topic_prefix":
		cfg.MQTTTopicPrefix, err = nonEmpty(value)
	case "redis_addr":
		cfg.RedisAddr = value
	case "redis_password":
		cfg.RedisPassword = value
	case "redis_db":
		cfg.RedisDB, err = parseNonNegative(value)
	case "redis_stream":
		cfg.RedisStream, err = nonEmpty(value)
	case "redis_max_len":
		var n int
		if n, err = parseNonNegative(value); err == nil {
			cfg.RedisMaxLen = int64(n)
		}
	case "breaker_max_failures":
		cfg.BreakerMaxFailures, err = parsePositive(value)
	case "breaker_reset_timeout_ms":
		cfg.BreakerResetTimeout, err = parsePositiveMillis(value)
	case "breaker_successes_to_close":
		cfg.BreakerSuccessesToClose, err = parsePositive(value)
	case "breaker_attempt_timeout_ms":
		cfg.BreakerAttemptTimeout, err = parsePositiveMillis(value)
	default:
		// Unknown keys are ignored to keep the loader forward-compatible.
	}
	return err
}

func nonEmpty(value string) (string, error) {
	if value == "" {
		return "", errors.New("cannot be empty")
	}
	return value, nil
}

func lookupEnvTrimmed(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func splitAndTrim(raw string) []string {
	fields := strings.Split(raw, ",")
	out := make([]string, 0, len(fields))
	for _, field := range fields {
		if trimmed := strings.TrimSpace(field); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func parsePositive(value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", value)
	}
	if n <= 0 {
		return 0, fmt.Errorf("must be positive, got %d", n)
	}
	return n, nil
}

func parseNonNegative(value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", value)
	}
	if n < 0 {
		return 0, fmt.Errorf("must not be negative, got %d", n)
	}
	return n, nil
}

func parsePositiveMillis(value string) (time.Duration, error) {
	n, err := parsePositive(value)
	if err != nil {
		return 0, err
	}
	return time.Duration(n) * time.Millisecond, nil
}
