package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	// Search API
	AppID         string `yaml:"app_id"`          // Ichiba application id (API key)
	SearchBaseURL string `yaml:"search_base_url"` // overridable for tests
	GenreBaseURL  string `yaml:"genre_base_url"`
	TagBaseURL    string `yaml:"tag_base_url"`
	AdSearchURL   string `yaml:"ad_search_url"` // HTML search page for RPP scraping

	// Resolution thresholds. Business defaults, not structural limits.
	PageSize      int `yaml:"page_size"`
	MaxPages      int `yaml:"max_pages"`
	TopSnapshots  int `yaml:"top_snapshots"`
	AdMaxPages    int `yaml:"ad_max_pages"`
	AdRankCeiling int `yaml:"ad_rank_ceiling"`

	// Pacing (milliseconds between requests to the same upstream)
	SearchIntervalMS int `yaml:"search_interval_ms"`
	AdIntervalMS     int `yaml:"ad_interval_ms"`
	TagIntervalMS    int `yaml:"tag_interval_ms"`

	// Retention
	ResultRetentionDays int `yaml:"result_retention_days"`
	LogRetentionDays    int `yaml:"log_retention_days"`

	// Scraping behaviour
	RespectRobots bool   `yaml:"respect_robots"`
	DelayProfile  string `yaml:"delay_profile"` // "cautious", "normal", "aggressive"
	Headless      bool   `yaml:"headless"`      // render ad pages in a browser
	MaxConcurrent int    `yaml:"max_concurrent"`

	// Storage
	DBPath string `yaml:"db_path"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		SearchBaseURL: "https://app.rakuten.co.jp/services/api/IchibaItem/Search/20170706",
		GenreBaseURL:  "https://app.rakuten.co.jp/services/api/IchibaGenre/Search/20120723",
		TagBaseURL:    "https://app.rakuten.co.jp/services/api/IchibaTag/Search/20140222",
		AdSearchURL:   "https://search.rakuten.co.jp/search/mall",

		PageSize:      30,
		MaxPages:      10,
		TopSnapshots:  10,
		AdMaxPages:    3,
		AdRankCeiling: 15,

		SearchIntervalMS: 500,
		AdIntervalMS:     1000,
		TagIntervalMS:    1500,

		ResultRetentionDays: 90,
		LogRetentionDays:    30,

		RespectRobots: true,
		DelayProfile:  "normal",
		MaxConcurrent: 3,

		DBPath: "rakurank.db",
	}
}

// LoadFile merges a YAML config file into c.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// LoadFromEnv loads .env file (if present) then overrides config from
// environment variables.
func (c *Config) LoadFromEnv() {
	// Auto-load .env file; silently ignored if missing
	_ = godotenv.Load()

	if v := os.Getenv("RAKURANK_APP_ID"); v != "" {
		c.AppID = v
	}
	if v := os.Getenv("RAKURANK_DB"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("RAKURANK_DELAY_PROFILE"); v != "" {
		c.DelayProfile = v
	}
	if v := os.Getenv("RAKURANK_MAX_PAGES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxPages = n
		}
	}
	if v := os.Getenv("RAKURANK_TOP_SNAPSHOTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.TopSnapshots = n
		}
	}
	if v := os.Getenv("RAKURANK_AD_MAX_PAGES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.AdMaxPages = n
		}
	}
	if v := os.Getenv("RAKURANK_AD_RANK_CEILING"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.AdRankCeiling = n
		}
	}
	if v := os.Getenv("RAKURANK_MAX_CONCURRENT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxConcurrent = n
		}
	}
	if v := os.Getenv("RAKURANK_RESPECT_ROBOTS"); v == "false" {
		c.RespectRobots = false
	}
	if v := os.Getenv("RAKURANK_HEADLESS"); v == "true" {
		c.Headless = true
	}
}
