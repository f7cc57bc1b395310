package config

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"mcnotify/internal/notification"
)

// Validate checks the fields that cannot be checked by the strict decoder.
// All problems are reported together.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	var errs []error

	if tag := strings.TrimSpace(cfg.Locale.Tag); tag != "" {
		if _, err := language.Parse(tag); err != nil {
			errs = append(errs, fmt.Errorf("locale.tag: invalid %q: %w", tag, err))
		}
	}

	for name := range cfg.Notifications {
		if _, ok := notification.ParseCategory(name); !ok {
			errs = append(errs, fmt.Errorf("notifications: unknown category %q", name))
		}
	}

	if g := cfg.FloodGuard; g != nil {
		if g.PerSecond < 0 {
			errs = append(errs, errors.New("flood_guard.per_second must be >= 0"))
		}
		if g.Burst < 0 {
			errs = append(errs, errors.New("flood_guard.burst must be >= 0"))
		}
		if g.MaxEntries < 0 {
			errs = append(errs, errors.New("flood_guard.max_entries must be >= 0"))
		}
		if _, err := ParseDurationField("flood_guard.idle_ttl", g.IdleTTL); err != nil {
			errs = append(errs, err)
		}
		for _, name := range g.Exempt {
			if _, ok := notification.ParseCategory(name); !ok {
				errs = append(errs, fmt.Errorf("flood_guard.exempt: unknown category %q", name))
			}
		}
	}

	if s := cfg.Storage; s != nil {
		driver := strings.ToLower(strings.TrimSpace(s.Driver))
		switch driver {
		case "", "none", "file":
		case "sqlite", "sqlite3":
			if strings.TrimSpace(s.Path) == "" {
				errs = append(errs, errors.New("storage.path is required when storage.driver=sqlite"))
			}
		default:
			errs = append(errs, fmt.Errorf("unknown storage.driver: %s", s.Driver))
		}
		if _, err := ParseDurationField("storage.busy_timeout", s.BusyTimeout); err != nil {
			errs = append(errs, err)
		}
	}

	if _, err := ParseDurationField("console.command_timeout", cfg.Console.CommandTimeout); err != nil {
		errs = append(errs, err)
	}
	if cfg.Console.HistorySize < 0 {
		errs = append(errs, errors.New("console.history_size must be >= 0"))
	}

	return errors.Join(errs...)
}
