package tui

import (
	"time"

	"github.com/hylla/tidsplan/internal/app"
)

type TimelineConfig struct {
	ShowWeekends bool
	DayWidth     int
	DaysBefore   int
	DaysAfter    int
	SettleTTL    time.Duration
}

type Option func(*Model)

func DefaultTimelineConfig() TimelineConfig {
	return TimelineConfig{
		ShowWeekends: true,
		DayWidth:     4,
		DaysBefore:   90,
		DaysAfter:    365,
		SettleTTL:    time.Second,
	}
}

func WithTimelineConfig(cfg TimelineConfig) Option {
	return func(m *Model) {
		if cfg.DayWidth >= 1 {
			m.dayWidth = cfg.DayWidth
		}
		if cfg.DaysBefore >= 0 {
			m.daysBefore = cfg.DaysBefore
		}
		if cfg.DaysAfter >= 1 {
			m.daysAfter = cfg.DaysAfter
		}
		if cfg.SettleTTL > 0 {
			m.settleTTL = cfg.SettleTTL
		}
		m.showWeekends = cfg.ShowWeekends
	}
}

// WithKeys rebinds the configurable keys. Blank fields keep the
// defaults.
func WithKeys(cfg KeyConfig) Option {
	return func(m *Model) {
		m.keys.applyConfig(cfg)
	}
}

func WithDefaultDeleteMode(mode app.DeleteMode) Option {
	return func(m *Model) {
		switch mode {
		case app.DeleteModeArchive, app.DeleteModeHard:
			m.defaultDeleteMode = mode
		}
	}
}

// WithNow pins the calendar anchor, mostly for tests.
func WithNow(now func() time.Time) Option {
	return func(m *Model) {
		if now != nil {
			m.now = now
		}
	}
}

// WithClipboard replaces the system clipboard writer.
func WithClipboard(write func(string) error) Option {
	return func(m *Model) {
		if write != nil {
			m.writeClipboard = write
		}
	}
}
