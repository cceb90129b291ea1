// Package config exposes strongly typed application configuration structs
// loaded from YAML, with exchange and chat credentials taken from the
// environment so they never land in a config file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// App captures process-wide runtime settings.
type App struct {
	Name        string `yaml:"name"`
	LogLevel    string `yaml:"log_level"`
	MetricsAddr string `yaml:"metrics_addr"`
}

// Market controls which products are swept and how much history is fetched.
type Market struct {
	Quote           string `yaml:"quote"`
	MaxProducts     int    `yaml:"max_products"`
	GranularitySecs int    `yaml:"granularity_secs"`
	CandleLimit     int    `yaml:"candle_limit"`
	MinHistory      int    `yaml:"min_history"`
}

// Signal groups the indicator periods and thresholds driving trade decisions.
type Signal struct {
	RSIPeriod     int     `yaml:"rsi_period"`
	MACDFast      int     `yaml:"macd_fast"`
	MACDSlow      int     `yaml:"macd_slow"`
	MACDSignal    int     `yaml:"macd_signal"`
	EMAFast       int     `yaml:"ema_fast"`
	EMASlow       int     `yaml:"ema_slow"`
	RSIOversold   float64 `yaml:"rsi_oversold"`
	RSIOverbought float64 `yaml:"rsi_overbought"`
}

// Risk encodes how much capital a single trade may deploy and where its
// protective stop sits.
type Risk struct {
	BudgetUSD        float64 `yaml:"budget_usd"`
	StopLossFraction float64 `yaml:"stop_loss_fraction"`
}

// Order tunes execution behaviour.
type Order struct {
	DryRun      bool    `yaml:"dry_run"`
	LimitOffset float64 `yaml:"limit_offset"`
}

// Schedule sets the sweep cadence.
type Schedule struct {
	IntervalSecs int `yaml:"interval_secs"`
}

// Config collects every configuration leaf for easy marshaling from YAML.
type Config struct {
	App      App      `yaml:"app"`
	Market   Market   `yaml:"market"`
	Signal   Signal   `yaml:"signal"`
	Risk     Risk     `yaml:"risk"`
	Order    Order    `yaml:"order"`
	Schedule Schedule `yaml:"schedule"`
}

// Credentials holds secrets sourced from the environment (or a .env file
// loaded before startup).
type Credentials struct {
	APIKey         string
	APISecret      string
	TelegramToken  string
	TelegramChatID string
}

// Load reads a YAML file from disk, hydrates a Config struct, and applies
// defaults for anything the file leaves unset.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	config.applyDefaults()
	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Save persists a Config struct to disk as YAML.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// CredentialsFromEnv reads exchange and Telegram secrets from the process
// environment.
func CredentialsFromEnv() Credentials {
	return Credentials{
		APIKey:         os.Getenv("COINBASE_API_KEY"),
		APISecret:      os.Getenv("COINBASE_API_SECRET"),
		TelegramToken:  os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID: os.Getenv("TELEGRAM_CHAT_ID"),
	}
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "swingbot"
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.App.MetricsAddr == "" {
		c.App.MetricsAddr = ":9109"
	}
	if c.Market.Quote == "" {
		c.Market.Quote = "USD"
	}
	if c.Market.MaxProducts <= 0 {
		c.Market.MaxProducts = 10
	}
	if c.Market.GranularitySecs <= 0 {
		c.Market.GranularitySecs = 3600
	}
	if c.Market.CandleLimit <= 0 {
		c.Market.CandleLimit = 100
	}
	if c.Market.MinHistory <= 0 {
		c.Market.MinHistory = 50
	}
	if c.Signal.RSIPeriod <= 0 {
		c.Signal.RSIPeriod = 14
	}
	if c.Signal.MACDFast <= 0 {
		c.Signal.MACDFast = 12
	}
	if c.Signal.MACDSlow <= 0 {
		c.Signal.MACDSlow = 26
	}
	if c.Signal.MACDSignal <= 0 {
		c.Signal.MACDSignal = 9
	}
	if c.Signal.EMAFast <= 0 {
		c.Signal.EMAFast = 20
	}
	if c.Signal.EMASlow <= 0 {
		c.Signal.EMASlow = 50
	}
	if c.Signal.RSIOversold <= 0 {
		c.Signal.RSIOversold = 30
	}
	if c.Signal.RSIOverbought <= 0 {
		c.Signal.RSIOverbought = 70
	}
	if c.Risk.BudgetUSD <= 0 {
		c.Risk.BudgetUSD = 2.0
	}
	if c.Risk.StopLossFraction <= 0 {
		c.Risk.StopLossFraction = 0.02
	}
	if c.Order.LimitOffset <= 0 {
		c.Order.LimitOffset = 0.001
	}
	if c.Schedule.IntervalSecs <= 0 {
		c.Schedule.IntervalSecs = 3600
	}
}

func (c *Config) validate() error {
	if c.Risk.StopLossFraction >= 1 {
		return fmt.Errorf("risk.stop_loss_fraction must be below 1, got %.4f", c.Risk.StopLossFraction)
	}
	if c.Order.LimitOffset >= 1 {
		return fmt.Errorf("order.limit_offset must be below 1, got %.4f", c.Order.LimitOffset)
	}
	if c.Signal.MACDFast >= c.Signal.MACDSlow {
		return fmt.Errorf("signal.macd_fast must be below macd_slow")
	}
	if c.Signal.RSIOversold >= c.Signal.RSIOverbought {
		return fmt.Errorf("signal.rsi_oversold must be below rsi_overbought")
	}
	return nil
}
