package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ajramos/labelsheet/internal/sheet"
)

// SpreadsheetConfig locates the label table inside a spreadsheet
type SpreadsheetConfig struct {
	// ID is the spreadsheet id from its URL
	ID string `json:"id"`

	// Sheet is the tab holding the label table
	Sheet string `json:"sheet"`

	// HeaderRows is how many rows at the top are headings, not data
	HeaderRows int `json:"header_rows"`

	// IDColumn holds the Gmail label id. It is system-managed and meant
	// to stay hidden from the user.
	IDColumn string `json:"id_column"`

	// NameColumn holds the user-editable label name
	NameColumn string `json:"name_column"`
}

// WatchConfig controls the polling watcher
type WatchConfig struct {
	// Interval between sheet polls, as a duration string
	Interval string `json:"interval"`
}

// Config holds all configuration for labelsheet
type Config struct {
	Credentials string `json:"credentials"`
	Token       string `json:"token"`

	Spreadsheet SpreadsheetConfig `json:"spreadsheet"`
	Watch       WatchConfig       `json:"watch"`

	// MirrorDB is the path of the local SQLite mirror database
	MirrorDB string `json:"mirror_db"`

	// Logging
	LogFile string `json:"log_file"`
	Debug   bool   `json:"debug"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Spreadsheet: SpreadsheetConfig{
			Sheet:      "Labels",
			HeaderRows: 1,
			IDColumn:   "A",
			NameColumn: "B",
		},
		Watch: WatchConfig{
			Interval: "30s",
		},
		MirrorDB: DefaultMirrorPath(),
	}
}

// LoadConfig loads configuration from file over the defaults
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			if err := json.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", configPath, err)
			}
		}
	}

	return cfg, nil
}

// Validate checks the fields the sync cannot run without
func (c *Config) Validate() error {
	if c.Spreadsheet.ID == "" {
		return fmt.Errorf("spreadsheet.id is required")
	}
	if c.Spreadsheet.Sheet == "" {
		return fmt.Errorf("spreadsheet.sheet is required")
	}
	if c.Spreadsheet.IDColumn == "" || c.Spreadsheet.NameColumn == "" {
		return fmt.Errorf("spreadsheet.id_column and spreadsheet.name_column are required")
	}
	if c.Spreadsheet.IDColumn == c.Spreadsheet.NameColumn {
		return fmt.Errorf("id and name columns cannot be the same")
	}
	if c.Spreadsheet.HeaderRows < 0 {
		return fmt.Errorf("spreadsheet.header_rows cannot be negative")
	}
	return nil
}

// Layout maps the spreadsheet section onto the row store's layout
func (c *Config) Layout() sheet.Layout {
	return sheet.Layout{
		SpreadsheetID: c.Spreadsheet.ID,
		SheetName:     c.Spreadsheet.Sheet,
		HeaderRows:    c.Spreadsheet.HeaderRows,
		IDColumn:      c.Spreadsheet.IDColumn,
		NameColumn:    c.Spreadsheet.NameColumn,
	}
}

// GetWatchInterval returns the parsed poll interval
func (c *Config) GetWatchInterval() time.Duration {
	if c.Watch.Interval != "" {
		if d, err := time.ParseDuration(c.Watch.Interval); err == nil {
			return d
		}
	}
	return 30 * time.Second
}

// SaveConfig saves the configuration to a file
func (c *Config) SaveConfig(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfigPath returns the default configuration file path
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "labelsheet", "config.json")
}

// DefaultCredentialPaths returns the default paths for credentials and token
func DefaultCredentialPaths() (string, string) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", ""
	}

	configDir := filepath.Join(home, ".config", "labelsheet")
	return filepath.Join(configDir, "credentials.json"), filepath.Join(configDir, "token.json")
}

// DefaultMirrorPath returns the default mirror database path
func DefaultMirrorPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "labelsheet", "mirror.db")
}
