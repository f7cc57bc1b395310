package notification

import (
	"strconv"

	"mcnotify/internal/eventbus"
	logx "mcnotify/pkg/logx"
)

// Config seeds the engine.
type Config struct {
	Settings           map[Category]DeliverySettings
	AdminNotifications bool
	IdentitySeparator  string
	HistorySize        int
}

// Deps are the external collaborators. Nil optional fields disable the
// matching behaviour (no roster means no admin recipients, and so on).
type Deps struct {
	Locale     LocaleResolver
	OptOut     OptOutQuery
	Privileges Privileges
	Roster     Roster
	Channels   Channels
	Sink       LogSink
	Sounds     SoundPlayer
	Audit      AuditLog
	Bus        eventbus.Publisher
	Log        logx.Logger
}

// Engine wires the registry, renderer, gateway, dispatcher, admin notifier
// and sensitive command policy together.
type Engine struct {
	Settings   *Registry
	Renderer   *Renderer
	Gateway    *Gateway
	Dispatcher *Dispatcher
	Admin      *AdminNotifier
	Sensitive  *SensitivePolicy

	roster   Roster
	channels Channels
	sounds   SoundPlayer
	log      logx.Logger
}

func New(cfg Config, d Deps) *Engine {
	log := d.Log
	if log.IsZero() {
		log = logx.Nop()
	}
	channels := d.Channels
	if channels == nil {
		channels = nopChannels{}
	}

	settings := NewRegistry(cfg.Settings, log.With(logx.String("comp", "settings")))
	renderer := NewRenderer(d.Locale)
	dispatcher := NewDispatcher(settings, channels, log.With(logx.String("comp", "dispatcher")), d.Bus, cfg.HistorySize)
	gateway := NewGateway(d.OptOut, renderer, dispatcher, log.With(logx.String("comp", "gateway")), d.Bus)
	admin := NewAdminNotifier(cfg.AdminNotifications, AdminDeps{
		Renderer:   renderer,
		Roster:     d.Roster,
		Privileges: d.Privileges,
		Channels:   channels,
		Sink:       d.Sink,
		Log:        log.With(logx.String("comp", "admin")),
		Bus:        d.Bus,
	})
	sensitive := NewSensitivePolicy(admin, renderer, d.Audit, cfg.IdentitySeparator, log.With(logx.String("comp", "sensitive")))

	return &Engine{
		Settings:   settings,
		Renderer:   renderer,
		Gateway:    gateway,
		Dispatcher: dispatcher,
		Admin:      admin,
		Sensitive:  sensitive,
		roster:     d.Roster,
		channels:   channels,
		sounds:     d.Sounds,
		log:        log,
	}
}

// Notify renders key and sends it to p under category c.
func (e *Engine) Notify(p Player, c Category, key string, params ...string) error {
	return e.Gateway.Notify(p, c, key, params...)
}

// Dispatch sends already rendered text to p under category c.
func (e *Engine) Dispatch(p Player, c Category, t Text) bool {
	return e.Gateway.Dispatch(p, c, t)
}

func (e *Engine) Render(key string, params ...string) (Text, error) {
	return e.Renderer.Render(key, params...)
}

func (e *Engine) BroadcastToAdmins(key string, params ...string) (int, error) {
	return e.Admin.BroadcastToAdmins(key, params...)
}

func (e *Engine) ConfirmToActor(s Sender, key string, params ...string) error {
	return e.Admin.ConfirmToActor(s, key, params...)
}

// NotifySensitive announces a sensitive command issued by s.
func (e *Engine) NotifySensitive(s Sender, cmd SensitiveCommand, args ...string) error {
	return e.Sensitive.Notify(s, cmd, args...)
}

// UsesNotifications reports whether p receives notifications at all.
func (e *Engine) UsesNotifications(p Player) bool {
	return !e.Gateway.OptedOut(p)
}

// SendNearby notifies p about something that happened near them.
func (e *Engine) SendNearby(p Player, c Category, key string, params ...string) error {
	return e.Gateway.Notify(p, c, key, params...)
}

// SendLevelUp announces a skill level up.
func (e *Engine) SendLevelUp(p Player, skill string, levelsGained, newLevel int) error {
	return e.Gateway.Notify(p, CategoryLevelUp, KeyLevelUp, skill, strconv.Itoa(levelsGained), strconv.Itoa(newLevel))
}
