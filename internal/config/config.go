/*
Package config
File: config.go
Description:
    Loads 'farm.yaml' (season balance + server settings) and applies
    environment overrides. A missing file is not an error: the stock
    balance and defaults are used.

    Holder keeps the live configuration behind a lock so SIGHUP can swap it
    while handlers read it.
*/

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/everforgeworks/farm-navigators/internal/game"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no -config flag is given.
const DefaultPath = "farm.yaml"

// Server groups process settings.
type Server struct {
	ListenAddress string `yaml:"listen_address"`
	DBPath        string `yaml:"db_path"`        // Empty keeps saves in memory
	DatasetURL    string `yaml:"dataset_url"`    // External provider; empty uses the synthetic season
	AutosaveEvery int    `yaml:"autosave_every"` // Actions between autosaves; 0 disables
	QuizSeconds   int    `yaml:"quiz_seconds"`   // Countdown per quiz question
	LogLevel      string `yaml:"log_level"`
}

// Config is the root of farm.yaml.
type Config struct {
	Balance game.Balance `yaml:"balance"`
	Server  Server       `yaml:"server"`
}

// Default returns the configuration used when farm.yaml is absent.
func Default() Config {
	return Config{
		Balance: game.DefaultBalance(),
		Server: Server{
			ListenAddress: ":5000",
			DBPath:        "farm.db",
			AutosaveEvery: 5,
			QuizSeconds:   20,
			LogLevel:      "info",
		},
	}
}

// Load reads path over the defaults, then applies FARM_* environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	// 1. Read the YAML file
	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// Defaults only
	case err != nil:
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	default:
		// 2. Unmarshal on top of the defaults
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	// 3. Environment wins over the file
	cfg.Server.ListenAddress = envStr("FARM_LISTEN_ADDRESS", cfg.Server.ListenAddress)
	cfg.Server.DBPath = envStr("FARM_DB_PATH", cfg.Server.DBPath)
	cfg.Server.DatasetURL = envStr("FARM_DATASET_URL", cfg.Server.DatasetURL)
	cfg.Server.LogLevel = envStr("FARM_LOG_LEVEL", cfg.Server.LogLevel)
	cfg.Server.AutosaveEvery = envInt("FARM_AUTOSAVE_EVERY", cfg.Server.AutosaveEvery)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects balances that would produce an unplayable season.
func (c Config) Validate() error {
	b := c.Balance
	switch {
	case b.MaxDays < 1:
		return fmt.Errorf("balance.max_days must be positive, got %d", b.MaxDays)
	case b.StartingWater < 0 || b.StartingMoney < 0:
		return fmt.Errorf("balance starting resources must not be negative")
	case b.IrrigationCostPerM3 < 0:
		return fmt.Errorf("balance.irrigation_cost_per_m3 must not be negative")
	case len(b.Fertilizers) == 0:
		return fmt.Errorf("balance.fertilizers must list at least one kind")
	case c.Server.AutosaveEvery < 0:
		return fmt.Errorf("server.autosave_every must not be negative")
	case c.Server.QuizSeconds < 1:
		return fmt.Errorf("server.quiz_seconds must be positive")
	}
	return nil
}

func envStr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// Holder guards the live configuration.
type Holder struct {
	mu   sync.RWMutex
	path string
	cfg  Config
}

// NewHolder loads path once.
func NewHolder(path string) (*Holder, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &Holder{path: path, cfg: cfg}, nil
}

// Current returns a copy of the live configuration.
func (h *Holder) Current() Config {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cfg
}

// Balance is shorthand for Current().Balance.
func (h *Holder) Balance() game.Balance {
	return h.Current().Balance
}

// Reload re-reads the file. On error the previous configuration stays live.
func (h *Holder) Reload() (Config, error) {
	cfg, err := Load(h.path)
	if err != nil {
		return h.Current(), err
	}
	h.mu.Lock()
	h.cfg = cfg
	h.mu.Unlock()
	return cfg, nil
}
