package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete voxagent configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server" env:"SERVER"`
	Log         LogConfig         `yaml:"log" env:"LOG"`
	Telemetry   TelemetryConfig   `yaml:"telemetry" env:"TELEMETRY"`
	OpenAI      OpenAIConfig      `yaml:"openai" env:"OPENAI"`
	GoogleTTS   GoogleTTSConfig   `yaml:"google_tts" env:"GOOGLE_TTS"`
	Speech      SpeechConfig      `yaml:"speech" env:"SPEECH"`
	Browser     BrowserConfig     `yaml:"browser" env:"BROWSER"`
	Navigation  NavigationConfig  `yaml:"navigation" env:"NAVIGATION"`
	VectorStore VectorStoreConfig `yaml:"vector_store" env:"VECTOR_STORE"`
	Database    DatabaseConfig    `yaml:"database" env:"DATABASE"`
	Redis       RedisConfig       `yaml:"redis" env:"REDIS"`
	Mongo       MongoConfig       `yaml:"mongo" env:"MONGO"`
	Session     SessionConfig     `yaml:"session" env:"SESSION"`
	Uploads     UploadsConfig     `yaml:"uploads" env:"UPLOADS"`
	Media       MediaConfig       `yaml:"media" env:"MEDIA"`
}

// ServerConfig controls the HTTP listeners.
type ServerConfig struct {
	HTTPPort        int           `yaml:"http_port" env:"HTTP_PORT"`
	MetricsPort     int           `yaml:"metrics_port" env:"METRICS_PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
	// MaxConns caps concurrent accepted connections; 0 disables the cap.
	MaxConns       int      `yaml:"max_conns" env:"MAX_CONNS"`
	RateLimitRPS   float64  `yaml:"rate_limit_rps" env:"RATE_LIMIT_RPS"`
	RateLimitBurst int      `yaml:"rate_limit_burst" env:"RATE_LIMIT_BURST"`
	AllowedOrigins []string `yaml:"allowed_origins" env:"ALLOWED_ORIGINS"`
	TLSCertFile    string   `yaml:"tls_cert_file" env:"TLS_CERT_FILE"`
	TLSKeyFile     string   `yaml:"tls_key_file" env:"TLS_KEY_FILE"`
	// WebDir holds the static frontend; empty disables it.
	WebDir string `yaml:"web_dir" env:"WEB_DIR"`
}

// LogConfig controls zap logger construction.
type LogConfig struct {
	Level            string   `yaml:"level" env:"LEVEL"`
	Format           string   `yaml:"format" env:"FORMAT"`
	OutputPaths      []string `yaml:"output_paths" env:"OUTPUT_PATHS"`
	EnableCaller     bool     `yaml:"enable_caller" env:"ENABLE_CALLER"`
	EnableStacktrace bool     `yaml:"enable_stacktrace" env:"ENABLE_STACKTRACE"`
	// File enables size-based rotation to the given path when non-empty.
	File       string `yaml:"file" env:"FILE"`
	MaxSizeMB  int    `yaml:"max_size_mb" env:"MAX_SIZE_MB"`
	MaxBackups int    `yaml:"max_backups" env:"MAX_BACKUPS"`
	MaxAgeDays int    `yaml:"max_age_days" env:"MAX_AGE_DAYS"`
}

// TelemetryConfig controls OpenTelemetry export.
type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled" env:"ENABLED"`
	OTLPEndpoint string  `yaml:"otlp_endpoint" env:"OTLP_ENDPOINT"`
	ServiceName  string  `yaml:"service_name" env:"SERVICE_NAME"`
	SampleRate   float64 `yaml:"sample_rate" env:"SAMPLE_RATE"`
}

// OpenAIConfig holds credentials and model selection for the OpenAI API.
type OpenAIConfig struct {
	APIKey             string        `yaml:"api_key" env:"API_KEY"`
	BaseURL            string        `yaml:"base_url" env:"BASE_URL"`
	Timeout            time.Duration `yaml:"timeout" env:"TIMEOUT"`
	ChatModel          string        `yaml:"chat_model" env:"CHAT_MODEL"`
	SearchModel        string        `yaml:"search_model" env:"SEARCH_MODEL"`
	ComputerUseModel   string        `yaml:"computer_use_model" env:"COMPUTER_USE_MODEL"`
	TranscriptionModel string        `yaml:"transcription_model" env:"TRANSCRIPTION_MODEL"`
	TTSModel           string        `yaml:"tts_model" env:"TTS_MODEL"`
	TTSVoice           string        `yaml:"tts_voice" env:"TTS_VOICE"`
}

// GoogleTTSConfig holds the Google Cloud Text-to-Speech REST settings.
type GoogleTTSConfig struct {
	APIKey       string        `yaml:"api_key" env:"API_KEY"`
	Endpoint     string        `yaml:"endpoint" env:"ENDPOINT"`
	SpeakingRate float64       `yaml:"speaking_rate" env:"SPEAKING_RATE"`
	Timeout      time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

// SpeechConfig controls synthesis output and provider ordering.
type SpeechConfig struct {
	// AudioDir receives synthesized mp3 files, served under /audio/.
	AudioDir string `yaml:"audio_dir" env:"AUDIO_DIR"`
	// Providers orders the synthesis cascade; known names: google, openai.
	Providers []string `yaml:"providers" env:"PROVIDERS"`
}

// BrowserConfig controls the browser driver.
type BrowserConfig struct {
	// Driver selects the implementation: auto, chrome or simulated.
	Driver         string        `yaml:"driver" env:"DRIVER"`
	Headless       bool          `yaml:"headless" env:"HEADLESS"`
	ChromePath     string        `yaml:"chrome_path" env:"CHROME_PATH"`
	ViewportWidth  int           `yaml:"viewport_width" env:"VIEWPORT_WIDTH"`
	ViewportHeight int           `yaml:"viewport_height" env:"VIEWPORT_HEIGHT"`
	StartURL       string        `yaml:"start_url" env:"START_URL"`
	SettleDelay    time.Duration `yaml:"settle_delay" env:"SETTLE_DELAY"`
}

// NavigationConfig controls the autonomous navigation loop.
type NavigationConfig struct {
	MaxRounds     int    `yaml:"max_rounds" env:"MAX_ROUNDS"`
	ScreenshotDir string `yaml:"screenshot_dir" env:"SCREENSHOT_DIR"`
}

// VectorStoreConfig controls the document store and its handle repository.
type VectorStoreConfig struct {
	StoreName   string `yaml:"store_name" env:"STORE_NAME"`
	ExpiresDays int    `yaml:"expires_days" env:"EXPIRES_DAYS"`
	// Repository selects the handle backend: file, redis, sql or mongo.
	Repository string `yaml:"repository" env:"REPOSITORY"`
	FilePath   string `yaml:"file_path" env:"FILE_PATH"`
	RedisKey   string `yaml:"redis_key" env:"REDIS_KEY"`
}

// DatabaseConfig configures the conversation log database.
type DatabaseConfig struct {
	Enabled bool `yaml:"enabled" env:"ENABLED"`
	// Driver is one of postgres, mysql, sqlite.
	Driver          string        `yaml:"driver" env:"DRIVER"`
	Host            string        `yaml:"host" env:"HOST"`
	Port            int           `yaml:"port" env:"PORT"`
	User            string        `yaml:"user" env:"USER"`
	Password        string        `yaml:"password" env:"PASSWORD"`
	Name            string        `yaml:"name" env:"NAME"`
	SSLMode         string        `yaml:"ssl_mode" env:"SSL_MODE"`
	MaxOpenConns    int           `yaml:"max_open_conns" env:"MAX_OPEN_CONNS"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env:"MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"CONN_MAX_LIFETIME"`
}

// RedisConfig configures the Redis client used by the redis handle repository.
type RedisConfig struct {
	Addr         string `yaml:"addr" env:"ADDR"`
	Password     string `yaml:"password" env:"PASSWORD"`
	DB           int    `yaml:"db" env:"DB"`
	PoolSize     int    `yaml:"pool_size" env:"POOL_SIZE"`
	MinIdleConns int    `yaml:"min_idle_conns" env:"MIN_IDLE_CONNS"`
}

// MongoConfig configures the MongoDB client used by the mongo handle repository.
type MongoConfig struct {
	URI        string        `yaml:"uri" env:"URI"`
	Database   string        `yaml:"database" env:"DATABASE"`
	Collection string        `yaml:"collection" env:"COLLECTION"`
	Timeout    time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

// SessionConfig controls the signed session tokens.
type SessionConfig struct {
	// Secret signs session JWTs; empty generates an ephemeral per-process key.
	Secret string        `yaml:"secret" env:"SECRET"`
	TTL    time.Duration `yaml:"ttl" env:"TTL"`
}

// UploadsConfig controls client upload handling.
type UploadsConfig struct {
	Dir      string `yaml:"dir" env:"DIR"`
	MaxBytes int64  `yaml:"max_bytes" env:"MAX_BYTES"`
}

// MediaConfig controls retention of generated audio clips, screenshots
// and uploaded recordings.
type MediaConfig struct {
	// Retention is how long generated files are kept; 0 disables pruning.
	Retention     time.Duration `yaml:"retention" env:"RETENTION"`
	SweepInterval time.Duration `yaml:"sweep_interval" env:"SWEEP_INTERVAL"`
}

// Loader resolves configuration with builder-style options.
type Loader struct {
	configPath string
	envPrefix  string
	validators []func(*Config) error
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{
		envPrefix:  "VOXAGENT",
		validators: make([]func(*Config) error, 0),
	}
}

// WithConfigPath sets the YAML file path.
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// WithEnvPrefix overrides the environment variable prefix.
func (l *Loader) WithEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// WithValidator appends a validation function run after loading.
func (l *Loader) WithValidator(v func(*Config) error) *Loader {
	l.validators = append(l.validators, v)
	return l
}

// Load resolves the configuration: defaults, then file, then environment.
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	if l.configPath != "" {
		if err := l.loadFromFile(cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := l.loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	for _, v := range l.validators {
		if err := v(cfg); err != nil {
			return nil, fmt.Errorf("config validation failed: %w", err)
		}
	}

	return cfg, nil
}

// loadFromFile merges a YAML file into cfg. A missing file is not an error.
func (l *Loader) loadFromFile(cfg *Config) error {
	data, err := os.ReadFile(l.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

func (l *Loader) loadFromEnv(cfg *Config) error {
	return l.setFieldsFromEnv(reflect.ValueOf(cfg).Elem(), l.envPrefix)
}

func (l *Loader) setFieldsFromEnv(v reflect.Value, prefix string) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		envTag := fieldType.Tag.Get("env")
		if envTag == "" || envTag == "-" {
			continue
		}

		envKey := prefix + "_" + envTag

		if field.Kind() == reflect.Struct {
			if err := l.setFieldsFromEnv(field, envKey); err != nil {
				return err
			}
			continue
		}

		envValue := os.Getenv(envKey)
		if envValue == "" {
			continue
		}

		if err := setFieldValue(field, envValue); err != nil {
			return fmt.Errorf("failed to set %s: %w", envKey, err)
		}
	}

	return nil
}

func setFieldValue(field reflect.Value, value string) error {
	if !field.CanSet() {
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		// time.Duration accepts the usual "30s" forms.
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			field.SetInt(int64(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return err
			}
			field.SetInt(i)
		}

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return err
		}
		field.SetUint(u)

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(f)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)

	case reflect.Slice:
		// Comma-separated values for string slices.
		if field.Type().Elem().Kind() == reflect.String {
			parts := strings.Split(value, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			field.Set(reflect.ValueOf(parts))
		}
	}

	return nil
}

// MustLoad loads configuration from path, panicking on failure.
func MustLoad(path string) *Config {
	cfg, err := NewLoader().WithConfigPath(path).Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// LoadFromEnv loads configuration from defaults and environment only.
func LoadFromEnv() (*Config, error) {
	return NewLoader().Load()
}

// Validate checks invariants that would otherwise surface as runtime faults.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		errs = append(errs, "invalid HTTP port")
	}
	if c.Navigation.MaxRounds <= 0 {
		errs = append(errs, "navigation max_rounds must be positive")
	}
	if c.Browser.ViewportWidth <= 0 || c.Browser.ViewportHeight <= 0 {
		errs = append(errs, "browser viewport must be positive")
	}
	switch c.Browser.Driver {
	case "auto", "chrome", "simulated":
	default:
		errs = append(errs, fmt.Sprintf("unknown browser driver %q", c.Browser.Driver))
	}
	switch c.VectorStore.Repository {
	case "file", "redis", "sql", "mongo":
	default:
		errs = append(errs, fmt.Sprintf("unknown vector store repository %q", c.VectorStore.Repository))
	}
	if c.Uploads.MaxBytes <= 0 {
		errs = append(errs, "uploads max_bytes must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// DSN returns the database connection string for the configured driver.
func (d *DatabaseConfig) DSN() string {
	switch d.Driver {
	case "postgres":
		return fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
		)
	case "mysql":
		return fmt.Sprintf(
			"%s:%s@tcp(%s:%d)/%s?parseTime=true",
			d.User, d.Password, d.Host, d.Port, d.Name,
		)
	case "sqlite":
		return d.Name
	default:
		return ""
	}
}
