package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// StorageBackend selects the persistence implementation.
type StorageBackend string

const (
	StorageMemory StorageBackend = "memory"
	StorageSQLite StorageBackend = "sqlite"
)

// Config captures environment driven configuration values for the scheduler service.
type Config struct {
	HTTPPort             int
	Storage              StorageBackend
	SQLiteDSN            string
	SuggestHorizon       time.Duration
	AvailabilityCacheTTL time.Duration
	Seed                 bool
}

// Load parses configuration values from the current process environment,
// applying defaults for absent variables and accumulating invalid entries
// into a single error.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:             8080,
		Storage:              StorageMemory,
		SQLiteDSN:            "file:scheduler.db?_foreign_keys=on",
		SuggestHorizon:       8 * time.Hour,
		AvailabilityCacheTTL: 30 * time.Second,
	}

	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("SCHEDULER_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "SCHEDULER_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if backend := strings.TrimSpace(os.Getenv("SCHEDULER_STORAGE")); backend != "" {
		switch StorageBackend(backend) {
		case StorageMemory, StorageSQLite:
			cfg.Storage = StorageBackend(backend)
		default:
			invalid = append(invalid, "SCHEDULER_STORAGE")
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("SCHEDULER_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if horizonValue := strings.TrimSpace(os.Getenv("SCHEDULER_SUGGEST_HORIZON")); horizonValue != "" {
		horizon, err := time.ParseDuration(horizonValue)
		if err != nil || horizon <= 0 {
			invalid = append(invalid, "SCHEDULER_SUGGEST_HORIZON")
		} else {
			cfg.SuggestHorizon = horizon
		}
	}

	if ttlValue := strings.TrimSpace(os.Getenv("SCHEDULER_AVAILABILITY_CACHE_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "SCHEDULER_AVAILABILITY_CACHE_TTL")
		} else {
			cfg.AvailabilityCacheTTL = ttl
		}
	}

	if seedValue := strings.TrimSpace(os.Getenv("SCHEDULER_SEED")); seedValue != "" {
		seed, err := strconv.ParseBool(seedValue)
		if err != nil {
			invalid = append(invalid, "SCHEDULER_SEED")
		} else {
			cfg.Seed = seed
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variables: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
