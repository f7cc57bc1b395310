package app

import (
	"fmt"
	"strings"
	"time"

	"mcnotify/internal/config"
	"mcnotify/internal/notification"
	"mcnotify/internal/notification/guard"
	"mcnotify/internal/storage"
	logx "mcnotify/pkg/logx"
)

const (
	defaultCommandTimeout = 10 * time.Second
	defaultBusyTimeout    = 1 * time.Second
)

func mapLogConfig(cfg *config.Config) logx.Config {
	return logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	}
}

// mapSettings converts the notifications section. Names are matched like
// ParseCategory; unknown names are rejected by config.Validate first.
func mapSettings(cfg *config.Config) (map[notification.Category]notification.DeliverySettings, error) {
	out := make(map[notification.Category]notification.DeliverySettings, len(cfg.Notifications))
	for name, s := range cfg.Notifications {
		c, ok := notification.ParseCategory(name)
		if !ok {
			return nil, fmt.Errorf("notifications: unknown category %q", name)
		}
		out[c] = notification.DeliverySettings{
			SendToChat:      s.SendToChat,
			SendToActionBar: s.SendToActionBar,
		}
	}
	return out, nil
}

func mapEngineConfig(cfg *config.Config) (notification.Config, error) {
	settings, err := mapSettings(cfg)
	if err != nil {
		return notification.Config{}, err
	}
	return notification.Config{
		Settings:           settings,
		AdminNotifications: cfg.Admin.SendAdminNotifications,
		IdentitySeparator:  cfg.Admin.IdentitySeparator,
		HistorySize:        cfg.Console.HistorySize,
	}, nil
}

// mapGuardConfig returns a disabled config when the section is omitted.
// Zero values are filled in by guard.New/Apply.
func mapGuardConfig(cfg *config.Config) (guard.Config, error) {
	g := cfg.FloodGuard
	if g == nil {
		return guard.Config{}, nil
	}
	ttl, err := config.ParseDurationField("flood_guard.idle_ttl", g.IdleTTL)
	if err != nil {
		return guard.Config{}, err
	}
	return guard.Config{
		Enabled:     g.Enabled,
		PerSecond:   g.PerSecond,
		Burst:       g.Burst,
		PerCategory: g.PerCategory,
		IdleTTL:     ttl,
		MaxEntries:  g.MaxEntries,
		Exempt:      append([]string(nil), g.Exempt...),
	}, nil
}

func mapStorageConfig(cfg *config.Config) (storage.Config, bool, error) {
	if cfg == nil || cfg.Storage == nil {
		return storage.Config{}, false, nil
	}
	sc := cfg.Storage
	driver := strings.ToLower(strings.TrimSpace(sc.Driver))
	if driver == "" || driver == "none" {
		return storage.Config{}, false, nil
	}
	path := strings.TrimSpace(sc.Path)

	switch driver {
	case "file":
		if path == "" {
			path = "./mcnotify"
		}
		return storage.Config{Driver: "file", Path: path}, true, nil
	case "sqlite", "sqlite3":
		if path == "" {
			return storage.Config{}, false, fmt.Errorf("storage.path is required when storage.driver=sqlite")
		}
		busy, err := config.ParseDurationOrDefault("storage.busy_timeout", sc.BusyTimeout, defaultBusyTimeout)
		if err != nil {
			return storage.Config{}, false, err
		}
		return storage.Config{Driver: driver, Path: path, BusyTimeout: busy}, true, nil
	default:
		return storage.Config{}, false, fmt.Errorf("unknown storage.driver: %s", sc.Driver)
	}
}

func mapCommandTimeout(cfg *config.Config) (time.Duration, error) {
	return config.ParseDurationOrDefault("console.command_timeout", cfg.Console.CommandTimeout, defaultCommandTimeout)
}
