package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	FetchSourceNewsAPI = "newsapi"
	FetchSourceRSS     = "rss"
	FetchSourceReddit  = "reddit"

	BackendSQLite   = "sqlite"
	BackendValkey   = "valkey"
	BackendDynamoDB = "dynamodb"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type Config struct {
	Env      string
	LogLevel string
	HTTPAddr string

	FetchSource      string
	NewsAPIKey       string
	NewsAPICountry   string
	DefaultTopic     string
	FeedCacheTTL     time.Duration
	FeedWarmInterval time.Duration

	FavoritesBackend string
	SQLitePath       string

	ValkeyAddress  string
	ValkeyPassword string
	ValkeyTLS      bool

	AWSEndpoint           string
	AWSRegion             string
	DynamoFavoritesTable  string
	DatabaseURL           string
	ConnectivityProbeAddr string
	ConnectivityInterval  time.Duration
	ReaderTimeout         time.Duration
	ShutdownTimeout       time.Duration
}

// Load reads the process environment. Call LoadEnv first to merge an env file.
func Load() Config {
	return Config{
		Env:      getenv("APP_ENV", "dev"),
		LogLevel: getenv("LOG_LEVEL", "info"),
		HTTPAddr: getenv("HTTP_ADDR", ":8080"),

		FetchSource:      strings.ToLower(getenv("FETCH_SOURCE", FetchSourceNewsAPI)),
		NewsAPIKey:       os.Getenv("NEWS_API_KEY"),
		NewsAPICountry:   getenv("NEWS_API_COUNTRY", "us"),
		DefaultTopic:     os.Getenv("DEFAULT_TOPIC"),
		FeedCacheTTL:     parseDurationEnv("FEED_CACHE_TTL", 5*time.Minute),
		FeedWarmInterval: parseDurationEnv("FEED_WARM_INTERVAL", 0),

		FavoritesBackend: strings.ToLower(getenv("FAVORITES_BACKEND", BackendSQLite)),
		SQLitePath:       getenv("SQLITE_PATH", "paperboy.db"),

		ValkeyAddress:  os.Getenv("VALKEY_INIT_ADDRESS"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),
		ValkeyTLS:      os.Getenv("VALKEY_TLS") == "true",

		AWSEndpoint:           os.Getenv("AWS_ENDPOINT"),
		AWSRegion:             getenv("AWS_REGION", "us-west-2"),
		DynamoFavoritesTable:  getenv("DYNAMODB_FAVORITES_TABLE", "Favorites"),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		ConnectivityProbeAddr: getenv("CONNECTIVITY_PROBE_ADDR", "1.1.1.1:53"),
		ConnectivityInterval:  parseDurationEnv("CONNECTIVITY_INTERVAL", 5*time.Second),
		ReaderTimeout:         parseDurationEnv("READER_TIMEOUT", 15*time.Second),
		ShutdownTimeout:       parseDurationEnv("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		// bare numbers are seconds, like the old *_INTERVAL vars
		if n, err := strconv.Atoi(v); err == nil {
			return time.Duration(n) * time.Second
		}
	}
	return def
}
