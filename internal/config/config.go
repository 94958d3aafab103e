// internal/config/config.go
package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	Cache    CacheConfig
	Auth     AuthConfig
	AI       AIConfig
	Storage  StorageConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	LogLevel       string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Driver             string
	URL                string
	Host               string
	Port               string
	User               string
	Password           string
	DBName             string
	SSLMode            string
	MaxOpenConns       int
	MaxConcurrentTx    int64
	RetryAttempts      int
	RetryInitialMillis int
	RetryMaxMillis     int
}

// Configured reports whether enough credentials exist to reach the store.
func (d DatabaseConfig) Configured() bool {
	if d.Driver == "memory" {
		return true
	}
	return d.URL != "" || (d.Host != "" && d.User != "")
}

// DSN builds the lib/pq connection string.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

type AppConfig struct {
	ReportDir           string
	NoteDebounce        time.Duration
	ConfirmationTTL     time.Duration
	HistoryLimit        int
	DefaultBinTypeNames []string
}

type CacheConfig struct {
	Enabled       bool
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	KeyPrefix     string
}

type AuthConfig struct {
	JWTSecret      string
	SessionTimeout time.Duration
}

type AIConfig struct {
	APIKey          string
	CredentialsJSON string
	Model           string
	Timeout         time.Duration
}

// Enabled reports whether the command interpreter can reach a model.
func (a AIConfig) Enabled() bool {
	return a.APIKey != "" || a.CredentialsJSON != ""
}

type StorageConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	Prefix    string
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("LOG_LEVEL", "info")
		viper.SetDefault("SERVER_READ_TIMEOUT", 15)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 30)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})

		viper.SetDefault("STORE_DRIVER", "postgres")
		viper.SetDefault("DATABASE_URL", "")
		viper.SetDefault("DB_HOST", "")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "")
		viper.SetDefault("DB_PASSWORD", "")
		viper.SetDefault("DB_NAME", "stockbin")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
		viper.SetDefault("DB_MAX_CONCURRENT_TX", 10)
		viper.SetDefault("RETRY_ATTEMPTS", 3)
		viper.SetDefault("RETRY_INITIAL_MS", 200)
		viper.SetDefault("RETRY_MAX_MS", 2000)

		viper.SetDefault("APP_REPORT_DIR", "./data/reports")
		viper.SetDefault("NOTE_DEBOUNCE_MS", 1000)
		viper.SetDefault("CONFIRMATION_TTL_SECONDS", 600)
		viper.SetDefault("HISTORY_LIMIT", 200)
		viper.SetDefault("DEFAULT_BIN_TYPES", []string{"Chep Plastic", "Chep Wood", "Loscam"})

		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_KEY_PREFIX", "stockbin")

		viper.SetDefault("AUTH_JWT_SECRET", "")
		viper.SetDefault("AUTH_SESSION_TIMEOUT_SECONDS", 5)

		viper.SetDefault("AI_API_KEY", "")
		viper.SetDefault("AI_CREDENTIALS_JSON", "")
		viper.SetDefault("AI_MODEL", "gemini-1.5-flash")
		viper.SetDefault("AI_TIMEOUT_SECONDS", 30)

		viper.SetDefault("STORAGE_ENABLED", false)
		viper.SetDefault("STORAGE_ENDPOINT", "")
		viper.SetDefault("STORAGE_ACCESS_KEY", "")
		viper.SetDefault("STORAGE_SECRET_KEY", "")
		viper.SetDefault("STORAGE_BUCKET", "stockbin-reports")
		viper.SetDefault("STORAGE_REGION", "us-east-1")
		viper.SetDefault("STORAGE_USE_SSL", true)
		viper.SetDefault("STORAGE_PREFIX", "reports")

		// Read from environment variables
		viper.AutomaticEnv()

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				LogLevel:       viper.GetString("LOG_LEVEL"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Database: DatabaseConfig{
				Driver:             viper.GetString("STORE_DRIVER"),
				URL:                viper.GetString("DATABASE_URL"),
				Host:               viper.GetString("DB_HOST"),
				Port:               viper.GetString("DB_PORT"),
				User:               viper.GetString("DB_USER"),
				Password:           viper.GetString("DB_PASSWORD"),
				DBName:             viper.GetString("DB_NAME"),
				SSLMode:            viper.GetString("DB_SSLMODE"),
				MaxOpenConns:       viper.GetInt("DB_MAX_OPEN_CONNS"),
				MaxConcurrentTx:    viper.GetInt64("DB_MAX_CONCURRENT_TX"),
				RetryAttempts:      viper.GetInt("RETRY_ATTEMPTS"),
				RetryInitialMillis: viper.GetInt("RETRY_INITIAL_MS"),
				RetryMaxMillis:     viper.GetInt("RETRY_MAX_MS"),
			},
			App: AppConfig{
				ReportDir:           viper.GetString("APP_REPORT_DIR"),
				NoteDebounce:        time.Duration(viper.GetInt("NOTE_DEBOUNCE_MS")) * time.Millisecond,
				ConfirmationTTL:     time.Duration(viper.GetInt("CONFIRMATION_TTL_SECONDS")) * time.Second,
				HistoryLimit:        viper.GetInt("HISTORY_LIMIT"),
				DefaultBinTypeNames: viper.GetStringSlice("DEFAULT_BIN_TYPES"),
			},
			Cache: CacheConfig{
				Enabled:       viper.GetBool("CACHE_ENABLED"),
				RedisURL:      viper.GetString("REDIS_URL"),
				RedisHost:     viper.GetString("REDIS_HOST"),
				RedisPort:     viper.GetString("REDIS_PORT"),
				RedisPassword: viper.GetString("REDIS_PASSWORD"),
				RedisDB:       viper.GetInt("REDIS_DB"),
				KeyPrefix:     viper.GetString("CACHE_KEY_PREFIX"),
			},
			Auth: AuthConfig{
				JWTSecret:      viper.GetString("AUTH_JWT_SECRET"),
				SessionTimeout: time.Duration(viper.GetInt("AUTH_SESSION_TIMEOUT_SECONDS")) * time.Second,
			},
			AI: AIConfig{
				APIKey:          viper.GetString("AI_API_KEY"),
				CredentialsJSON: viper.GetString("AI_CREDENTIALS_JSON"),
				Model:           viper.GetString("AI_MODEL"),
				Timeout:         time.Duration(viper.GetInt("AI_TIMEOUT_SECONDS")) * time.Second,
			},
			Storage: StorageConfig{
				Enabled:   viper.GetBool("STORAGE_ENABLED"),
				Endpoint:  viper.GetString("STORAGE_ENDPOINT"),
				AccessKey: viper.GetString("STORAGE_ACCESS_KEY"),
				SecretKey: viper.GetString("STORAGE_SECRET_KEY"),
				Bucket:    viper.GetString("STORAGE_BUCKET"),
				Region:    viper.GetString("STORAGE_REGION"),
				UseSSL:    viper.GetBool("STORAGE_USE_SSL"),
				Prefix:    viper.GetString("STORAGE_PREFIX"),
			},
		}
	})

	return instance
}
