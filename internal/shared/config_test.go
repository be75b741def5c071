package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./mprisd.db" {
			t.Errorf("expected database path ./mprisd.db, got %s", config.Database.Path)
		}

		if config.Bridge.PollInterval.Duration != 400*time.Millisecond {
			t.Errorf("expected poll interval 400ms, got %v", config.Bridge.PollInterval)
		}

		if config.Bridge.PublishInterval.Duration != 200*time.Millisecond {
			t.Errorf("expected publish interval 200ms, got %v", config.Bridge.PublishInterval)
		}

		if config.MPRIS.BusName != "spotify" {
			t.Errorf("expected bus name spotify, got %s", config.MPRIS.BusName)
		}

		if err := config.Validate(); err != nil {
			t.Errorf("default config should be valid: %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "nested", "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Bridge.Sink != DefaultConfig().Bridge.Sink {
			t.Errorf("created config sink doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		testConfig := `[bridge]
source = "web"
sink = "http"
poll_interval = "1s"

[server]
host = "0.0.0.0"
port = 8080

[credentials.spotify]
client_id = "test_client_id"
client_secret = "test_secret"
redirect_uri = "http://localhost:3000/callback"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Bridge.Source != "web" || config.Bridge.Sink != "http" {
			t.Errorf("expected web/http, got %s/%s", config.Bridge.Source, config.Bridge.Sink)
		}
		if config.Bridge.PollInterval.Duration != time.Second {
			t.Errorf("expected poll interval 1s, got %v", config.Bridge.PollInterval)
		}
		if config.Bridge.AckTimeout.Duration != 5*time.Second {
			t.Errorf("missing keys should keep defaults, got ack timeout %v", config.Bridge.AckTimeout)
		}
		if config.Server.Addr() != "0.0.0.0:8080" {
			t.Errorf("expected addr 0.0.0.0:8080, got %s", config.Server.Addr())
		}
		if config.Credentials.Spotify.ClientID != "test_client_id" {
			t.Errorf("expected client id test_client_id, got %s", config.Credentials.Spotify.ClientID)
		}
	})

	t.Run("LoadConfig missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
		if !errors.Is(err, ErrMissingConfig) {
			t.Errorf("expected ErrMissingConfig, got %v", err)
		}
	})

	t.Run("LoadConfig bad duration", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[bridge]\npoll_interval = \"soon\"\n"), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		if _, err := LoadConfig(configPath); err == nil {
			t.Error("expected parse error for invalid duration")
		}
	})

	t.Run("SaveConfig round trips tokens", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		config := DefaultConfig()
		expiry := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		config.Credentials.Spotify.Update(&oauth2.Token{
			AccessToken:  "access",
			RefreshToken: "refresh",
			TokenType:    "Bearer",
			Expiry:       expiry,
		})

		if err := SaveConfig(configPath, config); err != nil {
			t.Fatalf("failed to save config: %v", err)
		}

		loaded, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load saved config: %v", err)
		}

		tok := loaded.Credentials.Spotify.Token()
		if tok == nil {
			t.Fatal("expected a stored token")
		}
		if tok.AccessToken != "access" || tok.RefreshToken != "refresh" {
			t.Errorf("unexpected token %+v", tok)
		}
		if !tok.Expiry.Equal(expiry) {
			t.Errorf("expected expiry %v, got %v", expiry, tok.Expiry)
		}
		if loaded.Bridge.PollInterval != config.Bridge.PollInterval {
			t.Errorf("poll interval lost in round trip: %v", loaded.Bridge.PollInterval)
		}
	})

	t.Run("Update keeps refresh token", func(t *testing.T) {
		sc := SpotifyConfig{RefreshToken: "keep"}
		sc.Update(&oauth2.Token{AccessToken: "new"})
		if sc.RefreshToken != "keep" {
			t.Errorf("refresh token overwritten: %q", sc.RefreshToken)
		}
		if (SpotifyConfig{}).Token() != nil {
			t.Error("empty config should have no token")
		}
	})
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown source", func(c *Config) { c.Bridge.Source = "winamp" }},
		{"unknown sink", func(c *Config) { c.Bridge.Sink = "lcd" }},
		{"zero poll interval", func(c *Config) { c.Bridge.PollInterval = Duration{} }},
		{"negative ack timeout", func(c *Config) { c.Bridge.AckTimeout = Duration{-time.Second} }},
		{"zero emit timeout", func(c *Config) { c.Bridge.EmitTimeout = Duration{} }},
		{"ack timeout inside emit window", func(c *Config) { c.Bridge.AckTimeout = Duration{time.Second} }},
		{"ack timeout equal to emit window", func(c *Config) { c.Bridge.AckTimeout = Duration{2200 * time.Millisecond} }},
		{"empty bus name", func(c *Config) { c.MPRIS.BusName = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(c)
			if err := c.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}
