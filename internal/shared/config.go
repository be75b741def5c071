package shared

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"golang.org/x/oauth2"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Bridge      BridgeConfig      `toml:"bridge"`
	MPRIS       MPRISConfig       `toml:"mpris"`
	Server      ServerConfig      `toml:"server"`
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Log         LogConfig         `toml:"log"`
}

// BridgeConfig selects the media source and status sink and sets the loop timings.
type BridgeConfig struct {
	Source          string   `toml:"source"`
	Sink            string   `toml:"sink"`
	PollInterval    Duration `toml:"poll_interval"`
	PublishInterval Duration `toml:"publish_interval"`
	AckTimeout      Duration `toml:"ack_timeout"`
	EmitTimeout     Duration `toml:"emit_timeout"`
}

// MPRISConfig names the D-Bus service.
type MPRISConfig struct {
	BusName  string `toml:"bus_name"`
	Identity string `toml:"identity"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns host:port
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify API credentials and the last issued token.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
	AccessToken  string `toml:"access_token"`
	RefreshToken string `toml:"refresh_token"`
	TokenType    string `toml:"token_type"`
	Expiry       string `toml:"expiry"`
}

// Token rebuilds the stored [oauth2.Token], or nil when none has been saved.
func (s SpotifyConfig) Token() *oauth2.Token {
	if s.AccessToken == "" && s.RefreshToken == "" {
		return nil
	}

	tok := &oauth2.Token{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		TokenType:    s.TokenType,
	}
	if t, err := time.Parse(time.RFC3339, s.Expiry); err == nil {
		tok.Expiry = t
	}
	return tok
}

// Update stores tok so it survives a restart.
func (s *SpotifyConfig) Update(tok *oauth2.Token) {
	if tok == nil {
		return
	}
	s.AccessToken = tok.AccessToken
	if tok.RefreshToken != "" {
		s.RefreshToken = tok.RefreshToken
	}
	s.TokenType = tok.TokenType
	if !tok.Expiry.IsZero() {
		s.Expiry = tok.Expiry.UTC().Format(time.RFC3339)
	}
}

// Validate reports whether the OAuth client settings are present.
func (s SpotifyConfig) Validate() error {
	if s.ClientID == "" || s.ClientSecret == "" || s.RedirectURI == "" {
		return fmt.Errorf("%w: spotify client_id, client_secret and redirect_uri are required", ErrMissingCredentials)
	}
	return nil
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	History      bool   `toml:"history"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LogConfig controls the log level and the optional rotating log file.
type LogConfig struct {
	Level      string `toml:"level"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
	Compress   bool   `toml:"compress"`
}

// Duration wraps [time.Duration] so TOML values like "400ms" decode.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("%w: %q is not a duration", ErrInvalidConfig, text)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Validate checks values that would otherwise fail deep inside the loops.
func (c *Config) Validate() error {
	switch c.Bridge.Source {
	case "applescript", "web":
	default:
		return fmt.Errorf("%w: unknown source %q", ErrInvalidConfig, c.Bridge.Source)
	}

	switch c.Bridge.Sink {
	case "mpris", "tui", "http":
	default:
		return fmt.Errorf("%w: unknown sink %q", ErrInvalidConfig, c.Bridge.Sink)
	}

	for name, d := range map[string]Duration{
		"poll_interval":    c.Bridge.PollInterval,
		"publish_interval": c.Bridge.PublishInterval,
		"ack_timeout":      c.Bridge.AckTimeout,
		"emit_timeout":     c.Bridge.EmitTimeout,
	} {
		if d.Duration <= 0 {
			return fmt.Errorf("%w: %s must be positive", ErrInvalidConfig, name)
		}
	}

	// The publisher reads the next Tick only after the current emit returns.
	window := c.Bridge.EmitTimeout.Duration + c.Bridge.PublishInterval.Duration
	if c.Bridge.AckTimeout.Duration <= window {
		return fmt.Errorf("%w: ack_timeout %s must exceed emit_timeout plus publish_interval (%s)",
			ErrInvalidConfig, c.Bridge.AckTimeout.Duration, window)
	}

	if c.MPRIS.BusName == "" {
		return fmt.Errorf("%w: mpris bus_name is empty", ErrInvalidConfig)
	}
	return nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values from [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// SaveConfig writes c to path, replacing any existing file.
func SaveConfig(path string, c *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
