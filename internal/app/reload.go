package app

import (
	"slices"
	"strings"

	"mcnotify/internal/config"
	logx "mcnotify/pkg/logx"
)

// applyConfig pushes a validated config into the running components.
// Sections that are only read at startup are reported, not applied.
func (a *App) applyConfig(oldCfg, newCfg *config.Config) {
	sections, attrs, cats := config.SummarizeConfigChange(oldCfg, newCfg)
	if len(sections) == 0 {
		a.log.Info("config reloaded (no changes)")
		return
	}
	fields := append([]logx.Field{logx.String("changed", strings.Join(sections, ","))}, attrs...)
	a.log.Debug("config change summary", fields...)
	if len(cats) > 0 {
		a.log.Debug("notification settings changed", logx.Strings("categories", cats))
	}

	changed := func(s string) bool { return slices.Contains(sections, s) }

	if changed("logging") {
		a.logs.Apply(mapLogConfig(newCfg))
	}

	if changed("locale") {
		if err := a.catalog.Reload(newCfg.Locale.Dir, newCfg.Locale.Tag); err != nil {
			a.log.Warn("locale reload failed; keeping previous", logx.Err(err))
		} else {
			a.log.Info("locale reloaded", logx.String("tag", a.catalog.Tag().String()))
		}
	}

	if changed("admin") {
		a.engine.Admin.SetEnabled(newCfg.Admin.SendAdminNotifications)
		if oldCfg == nil || oldCfg.Admin.IdentitySeparator != newCfg.Admin.IdentitySeparator {
			a.log.Warn("admin.identity_separator changed; restart required for changes to take effect")
		}
	}

	if changed("notifications") {
		if settings, err := mapSettings(newCfg); err != nil {
			a.log.Warn("invalid notifications config; keeping previous", logx.Err(err))
		} else {
			a.engine.Settings.Replace(settings)
		}
	}

	if changed("flood_guard") {
		if gcfg, err := mapGuardConfig(newCfg); err != nil {
			a.log.Warn("invalid flood_guard config; keeping previous", logx.Err(err))
		} else {
			a.guard.Apply(gcfg)
		}
	}

	for _, s := range []string{"storage", "console"} {
		if changed(s) {
			a.log.Warn(s + " config changed; restart required for changes to take effect")
		}
	}

	a.log.Info("config reloaded", fields...)
}
