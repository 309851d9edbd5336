package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Data struct {
		CSVDir string `yaml:"csv_dir"`
		Code   string `yaml:"code"`
		Days   int    `yaml:"days"`
	} `yaml:"data"`
	Backtest struct {
		InitialCash     float64 `yaml:"initial_cash"`
		CommissionRate  float64 `yaml:"commission_rate"`
		StampTaxRate    float64 `yaml:"stamp_tax_rate"`
		StopLossPct     float64 `yaml:"stop_loss_pct"`
		TrailingStopPct float64 `yaml:"trailing_stop_pct"`
		TakeProfitPct   float64 `yaml:"take_profit_pct"`
	} `yaml:"backtest"`
	Ensemble struct {
		Mode          string  `yaml:"mode"`
		BuyThreshold  float64 `yaml:"buy_threshold"`
		SellThreshold float64 `yaml:"sell_threshold"`
	} `yaml:"ensemble"`
	Schedule struct {
		DailyCron string `yaml:"daily_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("DATA_CSV_DIR"); v != "" {
		cfg.Data.CSVDir = v
	}
	if v := os.Getenv("DATA_CODE"); v != "" {
		cfg.Data.Code = v
	}
	if v := os.Getenv("ENSEMBLE_MODE"); v != "" {
		cfg.Ensemble.Mode = v
	}
	if v := os.Getenv("INITIAL_CASH"); v != "" {
		var cash float64
		if _, err := fmt.Sscanf(v, "%f", &cash); err == nil {
			cfg.Backtest.InitialCash = cash
		}
	}
	if v := os.Getenv("CRON_DAILY"); v != "" {
		cfg.Schedule.DailyCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}

	// Defaults
	if cfg.Data.CSVDir == "" {
		cfg.Data.CSVDir = "data/bars"
	}
	if cfg.Data.Days == 0 {
		cfg.Data.Days = 1000
	}
	if cfg.Backtest.InitialCash == 0 {
		cfg.Backtest.InitialCash = 100000
	}
	if cfg.Backtest.CommissionRate == 0 {
		cfg.Backtest.CommissionRate = 0.0002
	}
	if cfg.Backtest.StampTaxRate == 0 {
		cfg.Backtest.StampTaxRate = 0.001
	}
	if cfg.Ensemble.Mode == "" {
		cfg.Ensemble.Mode = "majority"
	}
	if cfg.Ensemble.BuyThreshold == 0 {
		cfg.Ensemble.BuyThreshold = 0.5
	}
	if cfg.Ensemble.SellThreshold == 0 {
		cfg.Ensemble.SellThreshold = 0.5
	}
	if cfg.Schedule.DailyCron == "" {
		cfg.Schedule.DailyCron = "0 30 15 * * 1-5"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/trading.db"
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Data.Code == "" {
		return fmt.Errorf("data.code is required")
	}
	if c.Backtest.InitialCash <= 0 {
		return fmt.Errorf("backtest.initial_cash must be positive")
	}
	if c.Ensemble.BuyThreshold < 0 || c.Ensemble.BuyThreshold > 1 {
		return fmt.Errorf("ensemble.buy_threshold must be in [0,1]")
	}
	if c.Ensemble.SellThreshold < 0 || c.Ensemble.SellThreshold > 1 {
		return fmt.Errorf("ensemble.sell_threshold must be in [0,1]")
	}
	return nil
}
