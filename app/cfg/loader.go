package cfg

import (
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	if Version == "" {
		return "unknown"
	}
	return Version
}

type rawCfg struct {
	// Catalog source
	OpdsURL         string `long:"opds-url" env:"OPDS_URL" default:"https://storage.googleapis.com/story-weaver-e2e-production/catalog/catalog.xml" description:"Root OPDS catalog URL"`
	PrimaryLanguage string `long:"primary-language" env:"PRIMARY_LANGUAGE" default:"English" description:"Language whose catalogs are crawled first"`

	// Crawl behavior
	WorkerCount     int `long:"worker-count" env:"WORKER_COUNT" default:"6" description:"Maximum number of catalog pages fetched concurrently"`
	MaxRetries      int `long:"max-retries" env:"MAX_RETRIES" default:"3" description:"Additional fetch attempts after a failure"`
	RetryDelayMs    int `long:"retry-delay" env:"RETRY_DELAY_MS" default:"1000" description:"Base retry delay in milliseconds (doubled per attempt)"`
	FetchTimeoutSec int `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"10" description:"Per-attempt timeout for the root catalog fetch in seconds"`
	PageTimeoutSec  int `long:"page-timeout" env:"PAGE_TIMEOUT" default:"8" description:"Per-attempt timeout for catalog page fetches in seconds"`
	MaxPages        int `long:"max-pages" env:"MAX_PAGES" default:"20" description:"Hard page limit per catalog walk"`
	BatchIntervalMs int `long:"batch-interval" env:"BATCH_INTERVAL_MS" default:"300" description:"Minimum interval between progress notifications in milliseconds"`

	// Persistence
	DBPath string `long:"db-path" env:"DB_PATH" default:"./storyshelf.db" description:"SQLite database file path"`

	// Taxonomy
	TaxonomiesFile string `long:"taxonomies-file" env:"TAXONOMIES_FILE" description:"Optional YAML file overriding the built-in taxonomy tables"`

	// HTTP server
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for management endpoints (optional)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Storyshelf/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		OpdsURL:         raw.OpdsURL,
		PrimaryLanguage: raw.PrimaryLanguage,
		WorkerCount:     raw.WorkerCount,
		MaxRetries:      raw.MaxRetries,
		RetryDelayMs:    raw.RetryDelayMs,
		FetchTimeoutSec: raw.FetchTimeoutSec,
		PageTimeoutSec:  raw.PageTimeoutSec,
		MaxPages:        raw.MaxPages,
		BatchIntervalMs: raw.BatchIntervalMs,
		DBPath:          raw.DBPath,
		TaxonomiesFile:  raw.TaxonomiesFile,
		Port:            raw.Port,
		APIAccessKey:    raw.APIAccessKey,
		UserAgent:       raw.UserAgent,
		Timezone:        raw.Timezone,
		Debug:           raw.Debug,
		Version:         GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	return cfg, nil
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
