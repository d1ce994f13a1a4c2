package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/gerunddev/text2tana/internal/schema"
	"github.com/gerunddev/text2tana/internal/tana"
)

// TokenEnv overrides api_token from the config file
const TokenEnv = "TANA_API_TOKEN"

// ErrNoToken is returned when no API token is configured
var ErrNoToken = errors.New("no API token configured (set api_token or " + TokenEnv + ")")

// Config represents the text2tana configuration
type Config struct {
	APIToken    string `yaml:"api_token,omitempty"`
	Endpoint    string `yaml:"endpoint,omitempty"`
	LogFile     string `yaml:"log_file,omitempty"`
	OutboxFile  string `yaml:"outbox_file,omitempty"`
	ListenAddr  string `yaml:"listen_addr,omitempty"`
	ServerToken string `yaml:"server_token,omitempty"`

	// Merged onto the built-in schema and settings
	Overrides         schema.Schema   `yaml:"schema,omitempty"`
	SettingsOverrides schema.Settings `yaml:"settings,omitempty"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Endpoint:   tana.DefaultEndpoint,
		LogFile:    filepath.Join(xdg.StateHome, "text2tana", "text2tana.log"),
		OutboxFile: OutboxFilePath(),
		ListenAddr: "127.0.0.1:8091",
	}
}

// ConfigPath returns the path to the config file
// Uses ~/.config on all platforms for consistency
// Can be overridden for testing
var ConfigPath = func() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(xdg.ConfigHome, "text2tana", "config.yaml")
	}
	return filepath.Join(home, ".config", "text2tana", "config.yaml")
}

// OutboxFilePath returns the default path of the outbox of unsent payloads
// Can be overridden for testing
var OutboxFilePath = func() string {
	return filepath.Join(xdg.DataHome, "text2tana", "outbox.json")
}

// Load reads configuration from the config file. A missing file yields
// the default configuration. Keys absent from the file keep their
// defaults.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if token := os.Getenv(TokenEnv); token != "" {
		cfg.APIToken = token
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = tana.DefaultEndpoint
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := cfg.ExpandPaths(); err != nil {
		return nil, fmt.Errorf("failed to expand paths: %w", err)
	}

	return cfg, nil
}

// Save writes configuration to the config file
func (c *Config) Save() error {
	configPath := ConfigPath()

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// 0600: the file may hold the API token
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Schema returns the built-in schema merged with the configured overrides
func (c *Config) Schema() schema.Schema {
	return schema.Resolve(schema.DefaultSchema(), c.Overrides)
}

// Settings returns the built-in settings merged with the configured overrides
func (c *Config) Settings() schema.Settings {
	return schema.ResolveSettings(schema.DefaultSettings(), c.SettingsOverrides)
}

// Token returns the API token or ErrNoToken
func (c *Config) Token() (string, error) {
	if c.APIToken == "" {
		return "", ErrNoToken
	}
	return c.APIToken, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	u, err := url.Parse(c.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid endpoint '%s': must be an http(s) URL", c.Endpoint)
	}

	st := c.Settings()
	symbols := map[string]string{
		"supertag": st.Symbols.Supertag,
		"field":    st.Symbols.Field,
		"node":     st.Symbols.Node,
	}
	seen := make(map[string]string, len(symbols))
	for _, name := range []string{"supertag", "field", "node"} {
		sym := symbols[name]
		if strings.ContainsAny(sym, " \t\r\n") {
			return fmt.Errorf("%s symbol cannot contain whitespace", name)
		}
		if other, ok := seen[sym]; ok {
			return fmt.Errorf("%s symbol '%s' is already used as the %s symbol", name, sym, other)
		}
		seen[sym] = name
	}

	// The node symbol starts the target pattern and must not be mistaken
	// for the start of a URL.
	if strings.HasPrefix("http", strings.ToLower(st.Symbols.Node)) {
		return fmt.Errorf("node symbol '%s' collides with URL matching", st.Symbols.Node)
	}

	if st.Default.Type == "" {
		return fmt.Errorf("default type cannot be empty")
	}
	if _, _, ok := schema.Lookup(c.Schema().Nodes, st.Default.Target); !ok {
		return fmt.Errorf("default target '%s' is not a known node", st.Default.Target)
	}

	return nil
}

// ExpandPaths expands any ~ or relative paths to absolute paths
func (c *Config) ExpandPaths() error {
	var err error

	c.LogFile, err = expandPath(c.LogFile)
	if err != nil {
		return fmt.Errorf("failed to expand log_file: %w", err)
	}

	c.OutboxFile, err = expandPath(c.OutboxFile)
	if err != nil {
		return fmt.Errorf("failed to expand outbox_file: %w", err)
	}

	return nil
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) (string, error) {
	if path == "" {
		return path, nil
	}

	// Expand ~ to home directory
	if path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		if len(path) == 1 {
			return homeDir, nil
		}
		path = filepath.Join(homeDir, path[1:])
	}

	// Convert to absolute path
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	return absPath, nil
}
