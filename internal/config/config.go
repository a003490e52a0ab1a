// Package config loads the sheetsync ini file. The file lives at
// ~/.sheetsync/sheetsync.ini with a single [sheetsync] section.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	section = "sheetsync"

	KeyDocumentID      = "document_id"
	KeyConfigSheet     = "config_sheet"
	KeyStartTime       = "start_time"
	KeyWorkingHours    = "working_hours"
	KeyOvertimeFrom    = "overtime_from"
	KeyUserEmail       = "user_email"
	KeyTimezone        = "timezone"
	KeyCredentialsFile = "credentials_file"
)

// MissingConfigError reports a required key absent from the config file.
type MissingConfigError struct {
	Key string
}

func (e *MissingConfigError) Error() string {
	return fmt.Sprintf("missing required config key %q", e.Key)
}

type Config struct {
	// DocumentID is the Google Sheet document holding the timesheet tabs.
	DocumentID string `mapstructure:"document_id"`
	// ConfigSheet is the tab mapping project aliases to calendar ids.
	ConfigSheet string `mapstructure:"config_sheet" validate:"required"`
	// StartTime is the default day-start time, "HH:MM".
	StartTime string `mapstructure:"start_time" validate:"required"`
	// WorkingHours is the nominal working day used for full-day entries.
	WorkingHours float64 `mapstructure:"working_hours" validate:"gt=0"`
	// OvertimeFrom enables overtime accounting when set ("HH:MM").
	OvertimeFrom string `mapstructure:"overtime_from"`
	// UserEmail identifies the user's own events in read mode.
	UserEmail string `mapstructure:"user_email"`
	// Timezone for date resolution; empty means the system local zone.
	Timezone string `mapstructure:"timezone"`
	// CredentialsFile overrides the OAuth client credentials path.
	CredentialsFile string `mapstructure:"credentials_file"`
}

type fileConfig struct {
	Sheetsync Config `mapstructure:"sheetsync"`
}

// Dir returns the configuration directory, ~/.sheetsync.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "."+section), nil
}

// DefaultPath returns the default ini file location.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, section+".ini"), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(section+"."+KeyConfigSheet, "config")
	v.SetDefault(section+"."+KeyStartTime, "09:00")
	v.SetDefault(section+"."+KeyWorkingHours, 8)
}

// Load reads and validates the ini file at path. An empty path means the
// default location.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s not found, run `sheetsync config init` first: %w", path, err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("ini")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var fc fileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg := fc.Sheetsync

	if cfg.DocumentID == "" {
		return nil, &MissingConfigError{Key: KeyDocumentID}
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	if _, err := time.Parse("15:04", cfg.StartTime); err != nil {
		return nil, fmt.Errorf("%s must be HH:MM, got %q", KeyStartTime, cfg.StartTime)
	}
	if cfg.OvertimeFrom != "" {
		if _, err := time.Parse("15:04", cfg.OvertimeFrom); err != nil {
			return nil, fmt.Errorf("%s must be HH:MM, got %q", KeyOvertimeFrom, cfg.OvertimeFrom)
		}
	}
	return &cfg, nil
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("bad %s %q: %w", KeyTimezone, c.Timezone, err)
	}
	return loc, nil
}

// ExampleINI is the template written by `sheetsync config init`.
func ExampleINI() string {
	return `[sheetsync]
# The Google Sheet document id holding your timesheet tabs. Required.
document_id =

# Tab assigning project aliases to Google Calendar ids. Default "config".
; config_sheet = config

# Default day start time, HH:MM. Default "09:00".
; start_time = 09:00

# Nominal working hours per day. Default 8.
; working_hours = 8

# Overtime threshold, HH:MM. Empty disables overtime accounting.
; overtime_from = 18:00

# Your Google account email, used by the read command.
; user_email = you@example.com

# Timezone for date resolution. Default: system local zone.
; timezone = Europe/Rome

# OAuth client credentials file. Default: credentials.json in this directory.
; credentials_file =
`
}
