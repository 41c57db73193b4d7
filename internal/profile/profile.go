package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Profile is the configuration to start main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where taskfuchs stores its own data
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of server
	Version string
	// Secret signs and verifies access tokens.
	Secret string

	// Cache configuration
	CacheTTL           time.Duration // TASKFUCHS_CACHE_TTL (default: 5m)
	CacheMaxItems      int           // TASKFUCHS_CACHE_MAX_ITEMS (default: 1000)
	CacheRedisAddr     string        // TASKFUCHS_CACHE_REDIS_ADDR (L2 disabled when empty)
	CacheRedisPassword string        // TASKFUCHS_CACHE_REDIS_PASSWORD
	CacheRedisDB       int           // TASKFUCHS_CACHE_REDIS_DB (default: 0)

	// Request limits
	RateLimitRPS   float64 // TASKFUCHS_RATE_LIMIT_RPS (default: 10)
	RateLimitBurst int     // TASKFUCHS_RATE_LIMIT_BURST (default: 20)
	BodyLimit      string  // TASKFUCHS_BODY_LIMIT (default: 1M)

	// Access control, both comma separated
	CORSOrigins  []string // TASKFUCHS_CORS_ORIGINS (cross-origin requests are refused when empty)
	MetricsUsers []string // TASKFUCHS_METRICS_USERS (user IDs allowed to read /api/system/metrics)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsRedisEnabled returns true if an L2 cache address is configured.
func (p *Profile) IsRedisEnabled() bool {
	return p.CacheRedisAddr != ""
}

// IsMetricsUser reports whether userID may read the process metrics.
func (p *Profile) IsMetricsUser(userID string) bool {
	for _, id := range p.MetricsUsers {
		if id == userID {
			return true
		}
	}
	return false
}

// getEnvList splits a comma separated environment variable, dropping blank entries.
func getEnvList(key string) []string {
	var list []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	return list
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads the optional cache and request-limit settings from environment variables.
// Unparsable values fall back to the defaults.
func (p *Profile) FromEnv() {
	getIntEnv := func(key string, defaultValue int) int {
		if val := os.Getenv(key); val != "" {
			if n, err := strconv.Atoi(val); err == nil {
				return n
			}
			slog.Warn("ignoring invalid integer setting", slog.String("key", key), slog.String("value", val))
		}
		return defaultValue
	}

	p.CacheTTL = 5 * time.Minute
	if val := os.Getenv("TASKFUCHS_CACHE_TTL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil && d > 0 {
			p.CacheTTL = d
		} else {
			slog.Warn("ignoring invalid duration setting", slog.String("key", "TASKFUCHS_CACHE_TTL"), slog.String("value", val))
		}
	}
	p.CacheMaxItems = getIntEnv("TASKFUCHS_CACHE_MAX_ITEMS", 1000)
	p.CacheRedisAddr = os.Getenv("TASKFUCHS_CACHE_REDIS_ADDR")
	p.CacheRedisPassword = os.Getenv("TASKFUCHS_CACHE_REDIS_PASSWORD")
	p.CacheRedisDB = getIntEnv("TASKFUCHS_CACHE_REDIS_DB", 0)

	p.RateLimitRPS = 10
	if val := os.Getenv("TASKFUCHS_RATE_LIMIT_RPS"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil && f > 0 {
			p.RateLimitRPS = f
		}
	}
	p.RateLimitBurst = getIntEnv("TASKFUCHS_RATE_LIMIT_BURST", 20)
	p.BodyLimit = getEnvOrDefault("TASKFUCHS_BODY_LIMIT", "1M")

	p.CORSOrigins = getEnvList("TASKFUCHS_CORS_ORIGINS")
	p.MetricsUsers = getEnvList("TASKFUCHS_METRICS_USERS")
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Driver != "sqlite" && p.Driver != "postgres" {
		return errors.Errorf("unsupported driver %q: only 'postgres' and 'sqlite' are supported", p.Driver)
	}

	if p.Mode == "prod" && p.Secret == "" {
		return errors.New("secret is required in prod mode")
	}

	if p.Mode == "prod" && p.Data == "" {
		if runtime.GOOS == "windows" {
			p.Data = filepath.Join(os.Getenv("ProgramData"), "taskfuchs")
			if _, err := os.Stat(p.Data); os.IsNotExist(err) {
				if err := os.MkdirAll(p.Data, 0770); err != nil {
					slog.Error("failed to create data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
					return err
				}
			}
		} else {
			p.Data = "/var/opt/taskfuchs"
		}
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check dsn", slog.String("data", dataDir), slog.String("error", err.Error()))
		return err
	}

	p.Data = dataDir
	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("taskfuchs_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}

	return nil
}
