package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

type DeleteMode string

const (
	DeleteModeArchive DeleteMode = "archive"
	DeleteModeHard    DeleteMode = "hard"
)

type Config struct {
	Database DatabaseConfig `toml:"database"`
	Logging  LoggingConfig  `toml:"logging"`
	Delete   DeleteConfig   `toml:"delete"`
	Timeline TimelineConfig `toml:"timeline"`
	Keys     KeyConfig      `toml:"keys"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type DeleteConfig struct {
	DefaultMode DeleteMode `toml:"default_mode"`
}

type LoggingConfig struct {
	Level   string        `toml:"level"`
	DevFile DevFileConfig `toml:"dev_file"`
}

type DevFileConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type TimelineConfig struct {
	ShowWeekends bool `toml:"show_weekends"`
	DayWidth     int  `toml:"day_width"`
	DaysBefore   int  `toml:"days_before"`
	DaysAfter    int  `toml:"days_after"`
	SettleTTLMS  int  `toml:"settle_ttl_ms"`
}

type KeyConfig struct {
	ToggleWeekends string `toml:"toggle_weekends"`
	ZoomIn         string `toml:"zoom_in"`
	ZoomOut        string `toml:"zoom_out"`
	Yank           string `toml:"yank"`
	Detail         string `toml:"detail"`
}

func Default(dbPath string) Config {
	return Config{
		Database: DatabaseConfig{
			Path: dbPath,
		},
		Logging: LoggingConfig{
			Level: "info",
			DevFile: DevFileConfig{
				Enabled: true,
				Dir:     ".tidsplan/log",
			},
		},
		Delete: DeleteConfig{
			DefaultMode: DeleteModeArchive,
		},
		Timeline: TimelineConfig{
			ShowWeekends: true,
			DayWidth:     4,
			DaysBefore:   90,
			DaysAfter:    365,
			SettleTTLMS:  1000,
		},
		Keys: KeyConfig{
			ToggleWeekends: "w",
			ZoomIn:         "+",
			ZoomOut:        "-",
			Yank:           "y",
			Detail:         "i",
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database path is required")
	}

	if strings.TrimSpace(c.Logging.Level) == "" {
		return errors.New("logging level is required")
	}

	switch c.Delete.DefaultMode {
	case DeleteModeArchive, DeleteModeHard:
	default:
		return fmt.Errorf("invalid delete.default_mode: %q", c.Delete.DefaultMode)
	}

	if c.Timeline.DayWidth < 1 || c.Timeline.DayWidth > 40 {
		return fmt.Errorf("timeline.day_width must be between 1 and 40, got %d", c.Timeline.DayWidth)
	}
	if c.Timeline.DaysBefore < 0 {
		return fmt.Errorf("timeline.days_before must be >= 0, got %d", c.Timeline.DaysBefore)
	}
	if c.Timeline.DaysAfter < 1 {
		return fmt.Errorf("timeline.days_after must be >= 1, got %d", c.Timeline.DaysAfter)
	}
	if c.Timeline.SettleTTLMS < 0 {
		return fmt.Errorf("timeline.settle_ttl_ms must be >= 0, got %d", c.Timeline.SettleTTLMS)
	}

	return nil
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
