package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool

	// Billing policy
	DefaultPaymentTermDays int
	LateFeeType            string // FIXED or PERCENTAGE
	LateFeeValue           string // decimal string; amount for FIXED, percent for PERCENTAGE

	// Scheduler
	SchedulerEnabled      bool
	SchedulerTickInterval time.Duration
	JobItemTimeout        time.Duration

	// Reporting cache
	ReportCacheTTL time.Duration
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("DEFAULT_PAYMENT_TERM_DAYS", 30)
	viper.SetDefault("LATE_FEE_TYPE", "PERCENTAGE")
	viper.SetDefault("LATE_FEE_VALUE", "5")
	viper.SetDefault("SCHEDULER_ENABLED", true)
	viper.SetDefault("SCHEDULER_TICK_INTERVAL", "1m")
	viper.SetDefault("JOB_ITEM_TIMEOUT", "30s")
	viper.SetDefault("REPORT_CACHE_TTL", "5m")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.DefaultPaymentTermDays = viper.GetInt("DEFAULT_PAYMENT_TERM_DAYS")
	if cfg.DefaultPaymentTermDays <= 0 {
		log.Printf("Warning: Invalid DEFAULT_PAYMENT_TERM_DAYS (%d). Defaulting to 30.\n", cfg.DefaultPaymentTermDays)
		cfg.DefaultPaymentTermDays = 30
	}

	cfg.LateFeeType = viper.GetString("LATE_FEE_TYPE")
	if cfg.LateFeeType != "FIXED" && cfg.LateFeeType != "PERCENTAGE" {
		log.Printf("Warning: Invalid LATE_FEE_TYPE ('%s'). Defaulting to PERCENTAGE.\n", cfg.LateFeeType)
		cfg.LateFeeType = "PERCENTAGE"
	}
	cfg.LateFeeValue = viper.GetString("LATE_FEE_VALUE")

	cfg.SchedulerEnabled = viper.GetBool("SCHEDULER_ENABLED")

	var err error
	cfg.SchedulerTickInterval, err = time.ParseDuration(viper.GetString("SCHEDULER_TICK_INTERVAL"))
	if err != nil {
		log.Printf("Warning: Invalid SCHEDULER_TICK_INTERVAL ('%s'). Defaulting to 1m.\n", viper.GetString("SCHEDULER_TICK_INTERVAL"))
		cfg.SchedulerTickInterval = time.Minute
	}

	cfg.JobItemTimeout, err = time.ParseDuration(viper.GetString("JOB_ITEM_TIMEOUT"))
	if err != nil {
		log.Printf("Warning: Invalid JOB_ITEM_TIMEOUT ('%s'). Defaulting to 30s.\n", viper.GetString("JOB_ITEM_TIMEOUT"))
		cfg.JobItemTimeout = 30 * time.Second
	}

	cfg.ReportCacheTTL, err = time.ParseDuration(viper.GetString("REPORT_CACHE_TTL"))
	if err != nil {
		log.Printf("Warning: Invalid REPORT_CACHE_TTL ('%s'). Defaulting to 5m.\n", viper.GetString("REPORT_CACHE_TTL"))
		cfg.ReportCacheTTL = 5 * time.Minute
	}

	return cfg, nil
}
