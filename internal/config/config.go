package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Data struct {
		PricesCSV string `yaml:"prices_csv"`
		RatesCSV  string `yaml:"rates_csv"`
	} `yaml:"data"`
	Certificate struct {
		InitialFixing float64 `yaml:"initial_fixing"`
		Barrier       float64 `yaml:"barrier"`
		Participation float64 `yaml:"participation"`
		Denomination  float64 `yaml:"denomination"`
		Maturity      string  `yaml:"maturity"` // ISO-8601 date
		Payoff        string  `yaml:"payoff"`   // "bonus" or "outperformance"
	} `yaml:"certificate"`
	Simulation struct {
		Paths        int     `yaml:"paths"`
		Antithetic   bool    `yaml:"antithetic"`
		Window       int     `yaml:"window"`
		Dt           float64 `yaml:"dt"`
		Workers      int     `yaml:"workers"`
		Seed         *uint64 `yaml:"seed"` // omit for fresh entropy each run
		SweepWindows []int   `yaml:"sweep_windows"`
	} `yaml:"simulation"`
	Schedule struct {
		DailyCron  string `yaml:"daily_cron"`
		WeeklyCron string `yaml:"weekly_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
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
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("PRICES_CSV"); v != "" {
		cfg.Data.PricesCSV = v
	}
	if v := os.Getenv("RATES_CSV"); v != "" {
		cfg.Data.RatesCSV = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("SIM_PATHS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Simulation.Paths = n
		}
	}
	if v := os.Getenv("SIM_SEED"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.Simulation.Seed = &n
		}
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}

	// Defaults
	if cfg.Certificate.Payoff == "" {
		cfg.Certificate.Payoff = "bonus"
	}
	if cfg.Simulation.Paths == 0 {
		cfg.Simulation.Paths = 100000
	}
	if cfg.Simulation.Window == 0 {
		cfg.Simulation.Window = 252
	}
	if cfg.Simulation.Dt == 0 {
		cfg.Simulation.Dt = 1.0 / 252
	}
	if len(cfg.Simulation.SweepWindows) == 0 {
		cfg.Simulation.SweepWindows = []int{21, 63, 252}
	}
	if cfg.Schedule.DailyCron == "" {
		cfg.Schedule.DailyCron = "0 0 18 * * 1-5"
	}
	if cfg.Schedule.WeeklyCron == "" {
		cfg.Schedule.WeeklyCron = "0 0 8 * * 1"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/cert_sentinel.db"
	}

	return cfg, nil
}

// Validate checks that all required fields are set and consistent.
func (c *Config) Validate() error {
	if c.Data.PricesCSV == "" {
		return fmt.Errorf("data.prices_csv is required")
	}
	if c.Data.RatesCSV == "" {
		return fmt.Errorf("data.rates_csv is required")
	}
	if c.Certificate.InitialFixing <= 0 {
		return fmt.Errorf("certificate.initial_fixing must be positive")
	}
	if c.Certificate.Denomination <= 0 {
		return fmt.Errorf("certificate.denomination must be positive")
	}
	if c.Certificate.Payoff != "bonus" && c.Certificate.Payoff != "outperformance" {
		return fmt.Errorf("certificate.payoff must be %q or %q", "bonus", "outperformance")
	}
	if c.Certificate.Payoff == "bonus" && c.Certificate.Barrier <= 0 {
		return fmt.Errorf("certificate.barrier must be positive for the bonus payoff")
	}
	if _, err := c.MaturityDate(); err != nil {
		return fmt.Errorf("certificate.maturity: %w", err)
	}
	if c.Simulation.Paths <= 0 {
		return fmt.Errorf("simulation.paths must be positive")
	}
	if c.Simulation.Window < 2 {
		return fmt.Errorf("simulation.window must be at least 2")
	}
	return nil
}

// MaturityDate parses the certificate maturity.
func (c *Config) MaturityDate() (time.Time, error) {
	return time.Parse("2006-01-02", c.Certificate.Maturity)
}
