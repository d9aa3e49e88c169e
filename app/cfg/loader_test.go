package cfg

import (
	"testing"
)

func TestGetVersion(t *testing.T) {
	// Test default version
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}

	version := GetVersion()
	if version != "dev" && version != "unknown" {
		// This is fine, version could be set at build time
		t.Logf("Version: %s", version)
	}
}

func TestValidateRequiresCredentials(t *testing.T) {
	cfg := &Cfg{
		FeedURL:     "https://example.com/rss",
		MaxAgeHours: 48,
	}

	if err := cfg.validate(); err == nil {
		t.Error("Expected error when no credentials are configured")
	}

	cfg.BlueskyUsername = "user.bsky.social"
	cfg.BlueskyPassword = "app-password"
	if err := cfg.validate(); err != nil {
		t.Errorf("Expected validation to pass with username/password, got %v", err)
	}

	cfg.BlueskyUsername = ""
	cfg.BlueskyPassword = ""
	cfg.CredentialsFile = "/etc/bridge/credentials.json"
	if err := cfg.validate(); err != nil {
		t.Errorf("Expected validation to pass with credentials file, got %v", err)
	}
}

func TestValidateAISummarySettings(t *testing.T) {
	cfg := &Cfg{
		FeedURL:         "https://example.com/rss",
		MaxAgeHours:     48,
		BlueskyUsername: "user.bsky.social",
		BlueskyPassword: "app-password",
		EnableAISummary: true,
	}

	if err := cfg.validate(); err == nil {
		t.Error("Expected error when AI summary is enabled without an endpoint")
	}

	cfg.AIEndpoint = "https://api.example.com/v1/messages"
	if err := cfg.validate(); err == nil {
		t.Error("Expected error when AI summary is enabled without a model ID")
	}

	cfg.AIModelID = "some-model"
	cfg.AIMaxGraphemes = -10
	if err := cfg.validate(); err != nil {
		t.Errorf("Expected validation to pass, got %v", err)
	}
	if cfg.AIMaxGraphemes != 290 {
		t.Errorf("Expected invalid grapheme limit to default to 290, got %d", cfg.AIMaxGraphemes)
	}
}

func TestValidateMaxAgeDefault(t *testing.T) {
	cfg := &Cfg{
		FeedURL:         "https://example.com/rss",
		MaxAgeHours:     0,
		BlueskyUsername: "user.bsky.social",
		BlueskyPassword: "app-password",
	}

	if err := cfg.validate(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.MaxAgeHours != 48 {
		t.Errorf("Expected MaxAgeHours to default to 48, got %d", cfg.MaxAgeHours)
	}
}
