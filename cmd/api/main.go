// Package main is the entry point for the library catalog API server.
// It wires together configuration, the database connection, the JWT token
// manager, and the HTTP router.
package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/yourorg/libraryapp/internal/data"
	"github.com/yourorg/libraryapp/internal/token"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq" // Register the PostgreSQL driver with database/sql.
)

// appVersion is the current version of the API, shown in logs.
const appVersion = "1.0.0"

// serverConfig holds all the values that can be tweaked at startup via
// command-line flags, with env-var fallbacks for the secrets.
type serverConfig struct {
	port        int    // TCP port the HTTP server listens on (default 4000)
	environment string // Runtime environment: development, staging, or production
	db          struct {
		dsn string // PostgreSQL Data Source Name (connection string)
	}
	jwt struct {
		secret     string        // HS256 signing secret, from JWT_SECRET by default
		accessTTL  time.Duration // Lifetime of access tokens
		refreshTTL time.Duration // Lifetime of refresh tokens
	}
	limiter struct {
		rps     float64 // Sustained requests per second per client IP
		burst   int     // Burst capacity per client IP
		enabled bool    // Disabled in tests
	}
}

// applicationDependencies bundles every shared resource that HTTP handlers need.
// A pointer to this struct is passed as the receiver on all handler and route methods.
type applicationDependencies struct {
	config serverConfig   // Server configuration loaded from flags
	logger *slog.Logger   // Structured logger that writes to stdout
	models data.Models    // Database model layer for all tables
	tokens *token.Manager // JWT issue/verify/refresh
}

// main is the application entry point.
// It parses flags, opens the database, wires up dependencies, and starts the HTTP server.
func main() {
	// Load a .env file if one is present, so local development does not
	// need exported variables. Missing files are not an error.
	_ = godotenv.Load()

	var settings serverConfig

	// Register command-line flags so operators can override defaults at runtime.
	flag.IntVar(&settings.port, "port", 4000, "Server port")
	flag.StringVar(&settings.environment, "env", "development", "Environment(development|staging|production)")
	flag.StringVar(&settings.db.dsn, "db-dsn", os.Getenv("LIBRARY_DB_DSN"), "PostgreSQL DSN")
	flag.StringVar(&settings.jwt.secret, "jwt-secret", os.Getenv("JWT_SECRET"), "JWT signing secret")
	flag.DurationVar(&settings.jwt.accessTTL, "jwt-access-ttl", 30*time.Minute, "Access token lifetime")
	flag.DurationVar(&settings.jwt.refreshTTL, "jwt-refresh-ttl", 24*time.Hour, "Refresh token lifetime")
	flag.Float64Var(&settings.limiter.rps, "limiter-rps", 2, "Rate limiter requests per second per IP")
	flag.IntVar(&settings.limiter.burst, "limiter-burst", 4, "Rate limiter burst per IP")
	flag.BoolVar(&settings.limiter.enabled, "limiter-enabled", true, "Enable rate limiter")

	flag.Parse()

	// Create a structured logger that writes human-readable text to stdout.
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// Refuse to start without a signing secret; every protected endpoint
	// depends on it.
	if settings.jwt.secret == "" {
		logger.Error("JWT_SECRET must be set (flag -jwt-secret or env)")
		os.Exit(1)
	}

	// Open and verify the database connection pool.
	db, err := openDB(settings)
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
	defer db.Close() // Close the pool cleanly when main() returns.

	logger.Info("database connection pool established")

	// Bundle all shared dependencies into a single struct.
	appInstance := &applicationDependencies{
		config: settings,
		logger: logger,
		models: data.NewModels(db),
		tokens: token.NewManager(settings.jwt.secret, settings.jwt.accessTTL, settings.jwt.refreshTTL),
	}

	logger.Info("library API configured", "version", appVersion)

	// serve blocks until shutdown; any startup error is fatal.
	err = appInstance.serve()
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}

// openDB opens a PostgreSQL connection pool using the DSN stored in settings,
// then pings the database with a 5-second timeout to confirm it is reachable.
// Returns the pool on success, or an error if the connection cannot be established.
func openDB(settings serverConfig) (*sql.DB, error) {
	// sql.Open only validates the DSN format; it does not actually connect yet.
	db, err := sql.Open("postgres", settings.db.dsn)
	if err != nil {
		return nil, err
	}

	// Create a context that cancels automatically after 5 seconds.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// PingContext performs a real round-trip to verify the database is reachable.
	err = db.PingContext(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}
