package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Feed configuration
	FeedURL     string `long:"feed-url" env:"FEED_URL" description:"RSS/Atom feed URL to bridge (required)" required:"true"`
	MaxAgeHours int    `long:"max-age-hours" env:"MAX_AGE_HOURS" default:"48" description:"Ignore feed items older than this many hours"`

	// Database configuration
	DBPath         string `long:"db-path" env:"DB_PATH" default:"./data/bridge.db" description:"Path to the SQLite database file"`
	ClaimTTLHours  int    `long:"claim-ttl-hours" env:"CLAIM_TTL_HOURS" default:"24" description:"Expiry horizon for claimed-but-unpublished records"`
	RecordTTLHours int    `long:"record-ttl-hours" env:"RECORD_TTL_HOURS" default:"720" description:"Expiry horizon for published records"`
	SweepInterval  int    `long:"sweep-interval" env:"SWEEP_INTERVAL" default:"3600" description:"Expired record sweep interval in seconds"`

	// Bluesky configuration
	BlueskyPDS      string `long:"bluesky-pds" env:"BLUESKY_PDS" default:"https://bsky.social" description:"Bluesky PDS endpoint"`
	CredentialsFile string `long:"credentials-file" env:"BLUESKY_CREDENTIALS_FILE" description:"Path to JSON file with Bluesky username/password"`
	BlueskyUsername string `long:"bluesky-username" env:"BLUESKY_USERNAME" description:"Bluesky handle (alternative to credentials file)"`
	BlueskyPassword string `long:"bluesky-password" env:"BLUESKY_PASSWORD" description:"Bluesky app password (alternative to credentials file)"`

	// AI summarization configuration
	EnableAISummary  bool   `long:"enable-ai-summary" env:"ENABLE_AI_SUMMARY" description:"Summarize item text via the AI backend before posting"`
	AIEndpoint       string `long:"ai-endpoint" env:"AI_ENDPOINT" description:"AI summarization API endpoint"`
	AIModelID        string `long:"ai-model-id" env:"AI_MODEL_ID" description:"AI model identifier"`
	AIAPIKey         string `long:"ai-api-key" env:"AI_API_KEY" description:"AI API key"`
	AIMaxGraphemes   int    `long:"ai-summary-max-graphemes" env:"AI_SUMMARY_MAX_GRAPHEMES" default:"290" description:"Maximum summary length in graphemes"`
	AITimeoutSeconds int    `long:"ai-timeout" env:"AI_TIMEOUT" default:"30" description:"AI request timeout in seconds"`

	// Post configuration
	MaxPostGraphemes int  `long:"max-post-graphemes" env:"MAX_POST_GRAPHEMES" default:"300" description:"Maximum post length in graphemes"`
	ExtractContent   bool `long:"extract-content" env:"EXTRACT_CONTENT" description:"Fetch linked articles and extract readable text for summarization"`

	// Application configuration
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"900" description:"Pipeline run interval in seconds"`
	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"2" description:"Number of background task workers"`
	FetchTimeout      int    `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"30" description:"Feed fetch timeout in seconds"`
	APIAccessKey      string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"RSS Bluesky Bridge/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

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
		FeedURL:           raw.FeedURL,
		MaxAgeHours:       raw.MaxAgeHours,
		DBPath:            raw.DBPath,
		ClaimTTLHours:     raw.ClaimTTLHours,
		RecordTTLHours:    raw.RecordTTLHours,
		SweepInterval:     raw.SweepInterval,
		BlueskyPDS:        raw.BlueskyPDS,
		CredentialsFile:   raw.CredentialsFile,
		BlueskyUsername:   raw.BlueskyUsername,
		BlueskyPassword:   raw.BlueskyPassword,
		EnableAISummary:   raw.EnableAISummary,
		AIEndpoint:        raw.AIEndpoint,
		AIModelID:         raw.AIModelID,
		AIAPIKey:          raw.AIAPIKey,
		AIMaxGraphemes:    raw.AIMaxGraphemes,
		AITimeoutSeconds:  raw.AITimeoutSeconds,
		MaxPostGraphemes:  raw.MaxPostGraphemes,
		ExtractContent:    raw.ExtractContent,
		Port:              raw.Port,
		SchedulerInterval: raw.SchedulerInterval,
		WorkerCount:       raw.WorkerCount,
		FetchTimeout:      raw.FetchTimeout,
		APIAccessKey:      raw.APIAccessKey,
		UserAgent:         raw.UserAgent,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func (c *Cfg) validate() error {
	if c.MaxAgeHours <= 0 {
		fmt.Printf("Warning: MAX_AGE_HOURS must be positive, defaulting to 48. Original value = %d\n", c.MaxAgeHours)
		c.MaxAgeHours = 48
	}

	if c.EnableAISummary {
		if c.AIEndpoint == "" {
			return fmt.Errorf("AI summary is enabled, but AI_ENDPOINT is missing")
		}
		if c.AIModelID == "" {
			return fmt.Errorf("AI summary is enabled, but AI_MODEL_ID is missing")
		}
		if c.AIMaxGraphemes <= 0 {
			fmt.Printf("Warning: AI_SUMMARY_MAX_GRAPHEMES must be positive, defaulting to 290. Original value = %d\n", c.AIMaxGraphemes)
			c.AIMaxGraphemes = 290
		}
	}

	if c.CredentialsFile == "" && (c.BlueskyUsername == "" || c.BlueskyPassword == "") {
		return fmt.Errorf("either BLUESKY_CREDENTIALS_FILE or BLUESKY_USERNAME/BLUESKY_PASSWORD must be set")
	}

	return nil
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			fmt.Printf("Timezone configured: %s\n", timezone)
		}
	}
	return nil
}
