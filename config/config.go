package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Accrual policy variants. PolicyPerPlan pays each running investment its own
// daily return rate; PolicyFlatRate pays a single configured percentage of an
// account's total funded amount.
const (
	PolicyPerPlan  = "per_plan"
	PolicyFlatRate = "flat_rate"
)

// Config holds all application configuration. It is loaded once in main and
// passed into constructors; nothing below the HTTP layer reads the
// environment directly.
type Config struct {
	Port        string
	Environment string // "development" or "production"

	// Accrual job
	CronKey          string          // shared secret for the cron trigger
	AccrualPolicy    string          // PolicyPerPlan or PolicyFlatRate
	InterestRate     decimal.Decimal // percent per day, used by the flat-rate policy
	AccrualWorkers   int             // bounded fan-out across accounts
	AccrualBatchSize int             // accounts fetched per page while streaming
	AccountTimeout   time.Duration   // per-account read-modify-write budget

	// Admin surface
	JWTSecret string

	// Optional run lock / coordination
	RedisAddr string
	RedisPass string
	RedisDB   int

	// Optional run-report archive (Cloudflare R2, S3-compatible)
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2Bucket          string
}

// Load reads configuration from environment variables and validates the
// required fields.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getenv("PORT", "8080"),
		Environment: strings.ToLower(getenv("ENV", "development")),

		CronKey:          os.Getenv("CRON_KEY"),
		AccrualPolicy:    strings.ToLower(getenv("ACCRUAL_POLICY", PolicyPerPlan)),
		AccrualWorkers:   getenvInt("ACCRUAL_WORKERS", 1),
		AccrualBatchSize: getenvInt("ACCRUAL_BATCH_SIZE", 200),
		AccountTimeout:   time.Duration(getenvInt("ACCRUAL_ACCOUNT_TIMEOUT_SEC", 10)) * time.Second,

		JWTSecret: os.Getenv("JWT_SECRET"),

		RedisAddr: strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPass: os.Getenv("REDIS_PASS"),
		RedisDB:   getenvInt("REDIS_DB", 0),

		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2Bucket:          os.Getenv("R2_BUCKET_NAME"),
	}

	switch cfg.AccrualPolicy {
	case PolicyPerPlan, PolicyFlatRate:
	default:
		return nil, fmt.Errorf("unknown ACCRUAL_POLICY %q", cfg.AccrualPolicy)
	}

	// The two deployed variants shipped with different default rates.
	defaultRate := "3.53"
	if cfg.AccrualPolicy == PolicyFlatRate {
		defaultRate = "4.0"
	}
	rate, err := decimal.NewFromString(getenv("INTEREST_RATE", defaultRate))
	if err != nil {
		return nil, fmt.Errorf("invalid INTEREST_RATE: %w", err)
	}
	if rate.IsNegative() {
		return nil, fmt.Errorf("INTEREST_RATE must not be negative")
	}
	cfg.InterestRate = rate

	if cfg.AccrualWorkers < 1 {
		cfg.AccrualWorkers = 1
	}
	if cfg.AccrualBatchSize < 1 {
		cfg.AccrualBatchSize = 200
	}

	if cfg.Environment != "test" {
		if cfg.CronKey == "" {
			return nil, fmt.Errorf("CRON_KEY is required")
		}
		if cfg.JWTSecret == "" {
			return nil, fmt.Errorf("JWT_SECRET is required")
		}
	}

	return cfg, nil
}

// R2Configured reports whether run-report archival is enabled.
func (c *Config) R2Configured() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" && c.R2Bucket != ""
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func getenvInt(key string, def int) int {
	if s := os.Getenv(key); s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			return v
		}
	}
	return def
}
