package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/rebalancer/fundamentals"
	"github.com/rustyeddy/rebalancer/hedge"
	"github.com/rustyeddy/rebalancer/regime"
	"github.com/rustyeddy/rebalancer/risk"
	"github.com/rustyeddy/rebalancer/screener"
)

// Config is the complete rebalancer configuration.
type Config struct {
	Account   AccountConfig   `json:"account" yaml:"account"`
	Strategy  StrategyConfig  `json:"strategy" yaml:"strategy"`
	Liquidity LiquidityConfig `json:"liquidity" yaml:"liquidity"`
	Screen    ScreenConfig    `json:"screen" yaml:"screen"`
	Hedge     HedgeConfig     `json:"hedge" yaml:"hedge"`
	State     StateConfig     `json:"state" yaml:"state"`
	Journal   JournalConfig   `json:"journal" yaml:"journal"`
	Log       LogConfig       `json:"log" yaml:"log"`
}

// AccountConfig is the paper account used by backtests and dry runs.
type AccountConfig struct {
	Cash float64 `json:"cash" yaml:"cash"`
}

// StrategyConfig holds the regime and risk limits.
type StrategyConfig struct {
	Period             int     `json:"period" yaml:"period"`
	ReenterAbove       float64 `json:"reenter_above" yaml:"reenter_above"`
	MaxSectorExposure  float64 `json:"max_sector_exposure" yaml:"max_sector_exposure"`
	MaxSinglePosition  float64 `json:"max_single_position" yaml:"max_single_position"`
	MaxPositions       int     `json:"max_positions" yaml:"max_positions"`
	StopLossPct        float64 `json:"stop_loss_pct" yaml:"stop_loss_pct"`
	ProfitBookExposure float64 `json:"profit_book_exposure" yaml:"profit_book_exposure"`
	CooldownDays       int     `json:"cooldown_days" yaml:"cooldown_days"`
	Schedule           string  `json:"schedule" yaml:"schedule"` // "daily" or "month_start"
}

type LiquidityConfig struct {
	Lookback           int     `json:"lookback" yaml:"lookback"`
	SkipRecent         int     `json:"skip_recent" yaml:"skip_recent"`
	MinDollarVolume    float64 `json:"min_dollar_volume" yaml:"min_dollar_volume"`
	MinAvgDollarVolume float64 `json:"min_avg_dollar_volume" yaml:"min_avg_dollar_volume"`
}

// ScreenConfig is the declarative candidate filter.
type ScreenConfig struct {
	Rules   []screener.Rule `json:"rules" yaml:"rules"`
	Require []string        `json:"require,omitempty" yaml:"require,omitempty"`
	RankBy  string          `json:"rank_by,omitempty" yaml:"rank_by,omitempty"`
	Exclude []string        `json:"exclude,omitempty" yaml:"exclude,omitempty"`
}

type HedgeConfig struct {
	Enabled     bool               `json:"enabled" yaml:"enabled"`
	Source      string             `json:"source" yaml:"source"` // "static" or "sqlite"
	DBPath      string             `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	Allocations []hedge.Allocation `json:"allocations,omitempty" yaml:"allocations,omitempty"`
}

type StateConfig struct {
	Type string `json:"type" yaml:"type"` // "sqlite", "file" or "none"
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type          string `json:"type" yaml:"type"` // "csv", "sqlite" or "none"
	OrdersFile    string `json:"orders_file,omitempty" yaml:"orders_file,omitempty"`
	PositionsFile string `json:"positions_file,omitempty" yaml:"positions_file,omitempty"`
	DBPath        string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"` // "console" or "json"
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		cfg = Default()
		if err = json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile writes YAML for .yaml/.yml paths and indented JSON otherwise.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Account.Cash < 0 {
		return fmt.Errorf("account.cash must not be negative")
	}
	if c.Strategy.Period <= 0 {
		return fmt.Errorf("strategy.period must be positive")
	}
	if c.Strategy.ReenterAbove < 0 {
		return fmt.Errorf("strategy.reenter_above must not be negative")
	}
	if err := c.Policy().Validate(); err != nil {
		return fmt.Errorf("strategy: %w", err)
	}
	switch c.Strategy.Schedule {
	case "", "daily", "month_start":
	default:
		return fmt.Errorf("strategy.schedule must be 'daily' or 'month_start'")
	}
	if err := c.LiquidityCheck().Validate(); err != nil {
		return err
	}
	if err := c.Screener().Validate(); err != nil {
		return err
	}

	if c.Hedge.Enabled {
		switch c.Hedge.Source {
		case "static":
			if err := hedge.Allocations(c.Hedge.Allocations).Validate(); err != nil {
				return err
			}
		case "sqlite":
			if c.Hedge.DBPath == "" {
				return fmt.Errorf("hedge.db_path required for sqlite source")
			}
		default:
			return fmt.Errorf("hedge.source must be 'static' or 'sqlite'")
		}
	}

	switch c.State.Type {
	case "none":
	case "sqlite", "file":
		if c.State.Path == "" {
			return fmt.Errorf("state.path required for %s state", c.State.Type)
		}
	default:
		return fmt.Errorf("state.type must be 'sqlite', 'file' or 'none'")
	}

	switch c.Journal.Type {
	case "none":
	case "csv":
		if c.Journal.OrdersFile == "" || c.Journal.PositionsFile == "" {
			return fmt.Errorf("journal orders_file and positions_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'csv', 'sqlite' or 'none'")
	}

	switch c.Log.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("log.format must be 'console' or 'json'")
	}
	return nil
}

func (c *Config) Policy() risk.Policy {
	return risk.Policy{
		MaxSectorExposure:  c.Strategy.MaxSectorExposure,
		MaxSinglePosition:  c.Strategy.MaxSinglePosition,
		MaxPositions:       c.Strategy.MaxPositions,
		StopLossPct:        c.Strategy.StopLossPct,
		ProfitBookExposure: c.Strategy.ProfitBookExposure,
		CooldownDays:       c.Strategy.CooldownDays,
	}
}

func (c *Config) Detector() regime.Detector {
	return regime.Detector{Period: c.Strategy.Period, ReenterAbove: c.Strategy.ReenterAbove}
}

func (c *Config) LiquidityCheck() risk.Liquidity {
	return risk.Liquidity{
		Lookback:           c.Liquidity.Lookback,
		SkipRecent:         c.Liquidity.SkipRecent,
		MinDollarVolume:    c.Liquidity.MinDollarVolume,
		MinAvgDollarVolume: c.Liquidity.MinAvgDollarVolume,
	}
}

func (c *Config) Screener() screener.Screener {
	return screener.Screener{
		Rules:   c.Screen.Rules,
		Require: c.Screen.Require,
		RankBy:  c.Screen.RankBy,
		Exclude: c.Screen.Exclude,
	}
}

// Default returns the low-risk strategy with its screening rules.
func Default() *Config {
	p := risk.DefaultPolicy()
	l := risk.DefaultLiquidity()
	return &Config{
		Account: AccountConfig{Cash: 100_000},
		Strategy: StrategyConfig{
			Period:             regime.DefaultPeriod,
			ReenterAbove:       0,
			MaxSectorExposure:  p.MaxSectorExposure,
			MaxSinglePosition:  p.MaxSinglePosition,
			MaxPositions:       p.MaxPositions,
			StopLossPct:        p.StopLossPct,
			ProfitBookExposure: p.ProfitBookExposure,
			CooldownDays:       p.CooldownDays,
			Schedule:           "daily",
		},
		Liquidity: LiquidityConfig{
			Lookback:           l.Lookback,
			SkipRecent:         l.SkipRecent,
			MinDollarVolume:    l.MinDollarVolume,
			MinAvgDollarVolume: l.MinAvgDollarVolume,
		},
		Screen: ScreenConfig{
			Rules: []screener.Rule{
				{Metric: fundamentals.MarketCap, Op: screener.GT, Value: 10_000_000_000},
				{Metric: fundamentals.Liabilities, Op: screener.LT, Value: 180_000_000_000},
				{Metric: fundamentals.YoYSales, Op: screener.GE, Value: 0.03, OrMissing: true},
				{Metric: fundamentals.IPOYear, Op: screener.LT, Value: -2, Ref: screener.AsOfYear, OrMissing: true},
				{Metric: fundamentals.RnD, Op: screener.GE, Value: 0.06, Ref: fundamentals.Revenue},
				{Metric: fundamentals.NetIncome, Op: screener.GE, Value: 0},
				{Metric: fundamentals.QoQEarnings, Op: screener.GE, Value: 0},
			},
			Require: []string{fundamentals.MarketCap},
			RankBy:  fundamentals.QoQEarnings,
			Exclude: []string{
				"MELI", "GENZ", "FRX", "HSP", "AGN1", "BXLT", "MEDI", "ETEK1",
				"DNA", "PNU", "SDS1", "LLTC", "KEYS", "RHT", "ULTI",
			},
		},
		Hedge: HedgeConfig{
			Enabled: false,
			Source:  "static",
			Allocations: []hedge.Allocation{
				{Symbol: "SH", Share: 100},
			},
		},
		State: StateConfig{
			Type: "file",
			Path: "./rebalancer-state.yaml",
		},
		Journal: JournalConfig{
			Type:          "csv",
			OrdersFile:    "./orders.csv",
			PositionsFile: "./positions.csv",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// ApplyEnv overrides settings from REBALANCER_* variables found by lookup,
// normally os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := map[string]*string{
		"REBALANCER_STATE_TYPE":   &c.State.Type,
		"REBALANCER_STATE_PATH":   &c.State.Path,
		"REBALANCER_JOURNAL_TYPE": &c.Journal.Type,
		"REBALANCER_JOURNAL_DB":   &c.Journal.DBPath,
		"REBALANCER_HEDGE_DB":     &c.Hedge.DBPath,
		"REBALANCER_LOG_LEVEL":    &c.Log.Level,
		"REBALANCER_LOG_FORMAT":   &c.Log.Format,
		"REBALANCER_SCHEDULE":     &c.Strategy.Schedule,
	}
	for key, dst := range str {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := lookup("REBALANCER_CASH"); ok && v != "" {
		cash, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("REBALANCER_CASH: %w", err)
		}
		c.Account.Cash = cash
	}
	if v, ok := lookup("REBALANCER_HEDGE_ENABLED"); ok && v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("REBALANCER_HEDGE_ENABLED: %w", err)
		}
		c.Hedge.Enabled = on
	}
	return nil
}
