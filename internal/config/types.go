package config

// Config is the daemon configuration file.
type Config struct {
	Logging       LoggingConfig                   `json:"logging"`
	Locale        LocaleConfig                    `json:"locale"`
	Admin         AdminConfig                     `json:"admin"`
	Notifications map[string]NotificationSettings `json:"notifications,omitempty"`
	FloodGuard    *FloodGuardConfig               `json:"flood_guard,omitempty"`
	Storage       *StorageConfig                  `json:"storage,omitempty"`
	Console       ConsoleConfig                   `json:"console"`
}

type LoggingConfig struct {
	Level   string            `json:"level"`
	Console bool              `json:"console"`
	File    LoggingFileConfig `json:"file"`
}

type LoggingFileConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// LocaleConfig selects the message catalog. An empty Dir uses the bundled catalogs.
type LocaleConfig struct {
	Tag string `json:"tag"`
	Dir string `json:"dir,omitempty"`
}

type AdminConfig struct {
	SendAdminNotifications bool   `json:"send_admin_notifications"`
	IdentitySeparator      string `json:"identity_separator,omitempty"`
}

// NotificationSettings is the delivery policy for one category.
type NotificationSettings struct {
	SendToChat      bool `json:"send_to_chat"`
	SendToActionBar bool `json:"send_to_action_bar"`
}

type FloodGuardConfig struct {
	Enabled     bool     `json:"enabled"`
	PerSecond   float64  `json:"per_second,omitempty"`
	Burst       int      `json:"burst,omitempty"`
	PerCategory bool     `json:"per_category,omitempty"`
	IdleTTL     string   `json:"idle_ttl,omitempty"`
	MaxEntries  int      `json:"max_entries,omitempty"`
	Exempt      []string `json:"exempt,omitempty"`
}

type StorageConfig struct {
	Driver      string `json:"driver"`                 // "file" | "sqlite" | "none"
	Path        string `json:"path,omitempty"`         // file base path or sqlite db path
	BusyTimeout string `json:"busy_timeout,omitempty"` // sqlite only
}

type ConsoleConfig struct {
	Enabled        bool   `json:"enabled"`
	Raw            bool   `json:"raw,omitempty"`
	Timestamps     bool   `json:"timestamps,omitempty"`
	CommandTimeout string `json:"command_timeout,omitempty"`
	HistorySize    int    `json:"history_size,omitempty"`
}
