package config

import (
	"reflect"
	"sort"
	"strings"

	logx "mcnotify/pkg/logx"
)

// SummarizeConfigChange returns (1) a compact list of changed sections,
// (2) safe structured attrs for logging, and (3) the notification
// categories whose delivery policy changed.
func SummarizeConfigChange(oldCfg, newCfg *Config) ([]string, []logx.Field, []string) {
	if oldCfg == nil {
		oldCfg = &Config{}
	}
	if newCfg == nil {
		newCfg = &Config{}
	}

	changed := make([]string, 0, 7)
	attrs := make([]logx.Field, 0, 20)

	// Logging
	if oldCfg.Logging.Level != newCfg.Logging.Level ||
		oldCfg.Logging.Console != newCfg.Logging.Console ||
		oldCfg.Logging.File.Enabled != newCfg.Logging.File.Enabled ||
		strings.TrimSpace(oldCfg.Logging.File.Path) != strings.TrimSpace(newCfg.Logging.File.Path) {
		changed = append(changed, "logging")
		attrs = append(attrs,
			logx.String("logx.level", newCfg.Logging.Level),
			logx.Bool("logx.console", newCfg.Logging.Console),
			logx.Bool("logx.file_enabled", newCfg.Logging.File.Enabled),
		)
	}

	// Locale
	if !strings.EqualFold(strings.TrimSpace(oldCfg.Locale.Tag), strings.TrimSpace(newCfg.Locale.Tag)) ||
		strings.TrimSpace(oldCfg.Locale.Dir) != strings.TrimSpace(newCfg.Locale.Dir) {
		changed = append(changed, "locale")
		attrs = append(attrs,
			logx.String("locale.tag", strings.TrimSpace(newCfg.Locale.Tag)),
			logx.Bool("locale.dir_set", strings.TrimSpace(newCfg.Locale.Dir) != ""),
		)
	}

	// Admin
	if oldCfg.Admin != newCfg.Admin {
		changed = append(changed, "admin")
		attrs = append(attrs,
			logx.Bool("admin.send_admin_notifications", newCfg.Admin.SendAdminNotifications),
			logx.Bool("admin.identity_separator_set", newCfg.Admin.IdentitySeparator != ""),
		)
	}

	// Notifications (summarize only; details at debug)
	catChanged := diffNotifications(oldCfg.Notifications, newCfg.Notifications)
	if len(catChanged) > 0 {
		changed = append(changed, "notifications")
		attrs = append(attrs,
			logx.Int("notifications.changed_count", len(catChanged)),
			logx.Int("notifications.action_bar_count", countActionBar(newCfg.Notifications)),
		)
	}

	// Flood guard. Nil means disabled.
	oG := derefFloodGuard(oldCfg.FloodGuard)
	nG := derefFloodGuard(newCfg.FloodGuard)
	if !reflect.DeepEqual(oG, nG) {
		changed = append(changed, "flood_guard")
		attrs = append(attrs,
			logx.Bool("flood_guard.enabled", nG.Enabled),
			logx.Float64("flood_guard.per_second", nG.PerSecond),
			logx.Int("flood_guard.burst", nG.Burst),
			logx.Bool("flood_guard.per_category", nG.PerCategory),
			logx.Int("flood_guard.exempt_count", len(nG.Exempt)),
		)
	}

	// Storage (persistence). Nil means disabled.
	oldS := oldCfg.Storage
	newS := newCfg.Storage
	var oDriver, nDriver, oBusy, nBusy string
	var oPathSet, nPathSet bool
	if oldS != nil {
		oDriver = strings.TrimSpace(oldS.Driver)
		oBusy = strings.TrimSpace(oldS.BusyTimeout)
		oPathSet = strings.TrimSpace(oldS.Path) != ""
	}
	if newS != nil {
		nDriver = strings.TrimSpace(newS.Driver)
		nBusy = strings.TrimSpace(newS.BusyTimeout)
		nPathSet = strings.TrimSpace(newS.Path) != ""
	}
	if oDriver != nDriver || oBusy != nBusy || oPathSet != nPathSet {
		changed = append(changed, "storage")
		attrs = append(attrs,
			logx.String("storage.driver", nDriver),
			logx.Bool("storage.path_set", nPathSet),
			logx.String("storage.busy_timeout", nBusy),
		)
	}

	// Console
	if oldCfg.Console != newCfg.Console {
		changed = append(changed, "console")
		attrs = append(attrs,
			logx.Bool("console.enabled", newCfg.Console.Enabled),
			logx.Bool("console.raw", newCfg.Console.Raw),
			logx.String("console.command_timeout", strings.TrimSpace(newCfg.Console.CommandTimeout)),
			logx.Int("console.history_size", newCfg.Console.HistorySize),
		)
	}

	sort.Strings(changed)
	return changed, attrs, catChanged
}

func derefFloodGuard(g *FloodGuardConfig) FloodGuardConfig {
	if g == nil {
		return FloodGuardConfig{}
	}
	return *g
}

func countActionBar(m map[string]NotificationSettings) int {
	n := 0
	for _, v := range m {
		if v.SendToActionBar {
			n++
		}
	}
	return n
}

func diffNotifications(oldM, newM map[string]NotificationSettings) []string {
	set := map[string]struct{}{}
	for k := range oldM {
		set[k] = struct{}{}
	}
	for k := range newM {
		set[k] = struct{}{}
	}

	out := make([]string, 0, len(set))
	for name := range set {
		o, oOK := oldM[name]
		n, nOK := newM[name]
		if oOK != nOK || o != n {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
