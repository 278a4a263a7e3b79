package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the full application configuration loaded from environment variables or .env file.
//
// It is composed of smaller structs that represent different concerns of the system:
// the metric fetch pipeline, the HTTP server, and the optional Postgres sink.
//
// Example YAML/ENV equivalent:
//
//	BMP_API_KEY=secret-token
//	OUTPUT_PATH=data/sth-realized-price.json
//	MA_WINDOW=200
//	REQUIRE_PRICE=false
//	SERVER_PORT=8080
//	POSTGRES_HOST=localhost
//	POSTGRES_PORT=5432
type Config struct {
	Fetch    FetchConfig    // Metric fetch & pipeline settings
	Server   ServerConfig   // HTTP server configuration
	Postgres PostgresConfig // PostgreSQL connection settings (API mode / --persist)
}

// FetchConfig drives the metric fetch pipeline.
//
// Fields:
//   - APIKey: bearer token for the BMP analytics API (BMP_API_KEY).
//   - URLs: ordered candidate endpoint URLs, tried until one succeeds.
//   - OutputPath: destination of the JSON artifact.
//   - TimeoutSeconds: HTTP timeout per URL attempt.
//   - MAWindow: trailing moving-average window over the price column.
//   - RequirePrice: when true, column resolution fails if no price column
//     is found; when false, a missing price column yields null price/ma200.
type FetchConfig struct {
	APIKey         string
	URLs           []string
	OutputPath     string
	TimeoutSeconds int
	MAWindow       int
	RequirePrice   bool
}

// ServerConfig holds HTTP server settings such as the port to listen on.
type ServerConfig struct {
	Port string // The TCP port the HTTP server will listen on (e.g., "8080")
}

// PostgresConfig defines connection details for PostgreSQL.
//
// Fields:
//   - Host: hostname of the database server.
//   - Port: port number of the database server (default 5432).
//   - User: username for authentication.
//   - Password: password for authentication.
//   - DBName: target database name.
//   - SSLMode: SSL mode (e.g., "disable", "require").
//   - URL: computed DSN used by database/sql to connect.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	URL      string
}

// defaultURLs are the two known BMP endpoints for the metric, versioned
// first. BMP_URLS (comma-separated) overrides them.
var defaultURLs = []string{
	"https://api.bitcoinmagazinepro.com/v1/metrics/sth-realized-price",
	"https://api.bitcoinmagazinepro.com/metrics/sth-realized-price",
}

// AppConfig is the globally accessible configuration instance.
//
// It is populated once via LoadConfig() and used throughout the application.
// All services should import this package and read from AppConfig instead of
// reloading environment variables directly.
var AppConfig Config

// LoadConfig initializes the global AppConfig by reading from .env file
// or directly from environment variables.
//
// Precedence (from lowest to highest):
//  1. Defaults set in this function.
//  2. Values from .env file (if present).
//  3. Environment variables.
//
// Behavior:
//   - Sets defaults for all fields that have sane defaults. BMP_API_KEY has
//     none on purpose; fetch mode checks it explicitly at startup.
//   - Reads environment variables automatically with viper.AutomaticEnv().
//   - Constructs the PostgreSQL connection string (DSN).
//   - Calls validateConfig() to ensure required fields are present.
//
// Fatal exit:
//   - If required variables are missing, validateConfig() will terminate the app
//     with a descriptive log message.
func LoadConfig() {
	// Default values
	viper.SetDefault("SERVER_PORT", "8080")

	viper.SetDefault("BMP_URLS", strings.Join(defaultURLs, ","))
	viper.SetDefault("OUTPUT_PATH", "data/sth-realized-price.json")
	viper.SetDefault("FETCH_TIMEOUT_SECONDS", 60)
	viper.SetDefault("MA_WINDOW", 200)
	viper.SetDefault("REQUIRE_PRICE", false)

	viper.SetDefault("POSTGRES_HOST", "localhost")
	viper.SetDefault("POSTGRES_PORT", 5432)
	viper.SetDefault("POSTGRES_USER", "postgres")
	viper.SetDefault("POSTGRES_PASSWORD", "postgres")
	viper.SetDefault("POSTGRES_DB", "sthpulse")
	viper.SetDefault("POSTGRES_SSLMODE", "disable")

	// Optionally read from .env if present (common in local dev)
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig() // ignore error if no .env

	// Read environment variables automatically
	viper.AutomaticEnv()

	// Populate global config instance
	AppConfig = Config{
		Fetch: FetchConfig{
			APIKey:         viper.GetString("BMP_API_KEY"),
			URLs:           splitURLs(viper.GetString("BMP_URLS")),
			OutputPath:     viper.GetString("OUTPUT_PATH"),
			TimeoutSeconds: viper.GetInt("FETCH_TIMEOUT_SECONDS"),
			MAWindow:       viper.GetInt("MA_WINDOW"),
			RequirePrice:   viper.GetBool("REQUIRE_PRICE"),
		},
		Server: ServerConfig{
			Port: viper.GetString("SERVER_PORT"),
		},
		Postgres: PostgresConfig{
			Host:     viper.GetString("POSTGRES_HOST"),
			Port:     viper.GetInt("POSTGRES_PORT"),
			User:     viper.GetString("POSTGRES_USER"),
			Password: viper.GetString("POSTGRES_PASSWORD"),
			DBName:   viper.GetString("POSTGRES_DB"),
			SSLMode:  viper.GetString("POSTGRES_SSLMODE"),
		},
	}

	// Construct Postgres DSN (used by database/sql)
	AppConfig.Postgres.URL = fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		AppConfig.Postgres.User,
		AppConfig.Postgres.Password,
		AppConfig.Postgres.Host,
		AppConfig.Postgres.Port,
		AppConfig.Postgres.DBName,
		AppConfig.Postgres.SSLMode,
	)

	// Validate critical fields
	validateConfig()
}

// splitURLs parses the comma-separated BMP_URLS value, dropping empty entries.
func splitURLs(s string) []string {
	var out []string
	for _, u := range strings.Split(s, ",") {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, u)
		}
	}
	return out
}

// validateConfig ensures required variables are present and terminates
// the application if they are missing.
//
// This avoids unexpected runtime failures due to incomplete configuration.
// BMP_API_KEY is deliberately not checked here: only fetch mode needs it,
// and main verifies it before running the pipeline.
func validateConfig() {
	var missing []string

	if AppConfig.Server.Port == "" {
		missing = append(missing, "SERVER_PORT")
	}
	if len(AppConfig.Fetch.URLs) == 0 {
		missing = append(missing, "BMP_URLS")
	}
	if AppConfig.Fetch.OutputPath == "" {
		missing = append(missing, "OUTPUT_PATH")
	}
	if AppConfig.Fetch.TimeoutSeconds <= 0 {
		missing = append(missing, "FETCH_TIMEOUT_SECONDS")
	}
	if AppConfig.Fetch.MAWindow < 1 {
		missing = append(missing, "MA_WINDOW")
	}
	if AppConfig.Postgres.Host == "" {
		missing = append(missing, "POSTGRES_HOST")
	}
	if AppConfig.Postgres.Port == 0 {
		missing = append(missing, "POSTGRES_PORT")
	}

	if len(missing) > 0 {
		log.Fatalf("missing or invalid required environment variables: %v\n", missing)
	}
}
