package notification

import (
	"errors"
	"sync/atomic"

	"mcnotify/internal/eventbus"
	logx "mcnotify/pkg/logx"
)

// AdminNotifier broadcasts to privileged players (operators or holders of
// the admin-chat capability) and confirms admin commands to their issuer.
type AdminNotifier struct {
	enabled atomic.Bool

	renderer *Renderer
	roster   Roster
	privs    Privileges
	channels Channels
	sink     LogSink
	log      logx.Logger
	bus      eventbus.Publisher
}

type AdminDeps struct {
	Renderer   *Renderer
	Roster     Roster
	Privileges Privileges
	Channels   Channels
	Sink       LogSink
	Log        logx.Logger
	Bus        eventbus.Publisher
}

func NewAdminNotifier(enabled bool, d AdminDeps) *AdminNotifier {
	if d.Log.IsZero() {
		d.Log = logx.Nop()
	}
	if d.Channels == nil {
		d.Channels = nopChannels{}
	}
	a := &AdminNotifier{
		renderer: d.Renderer,
		roster:   d.Roster,
		privs:    d.Privileges,
		channels: d.Channels,
		sink:     d.Sink,
		log:      d.Log,
		bus:      d.Bus,
	}
	a.enabled.Store(enabled)
	return a
}

// Enabled reports the admin notifications flag. (Thread-safe; SetEnabled may run concurrently.)
func (a *AdminNotifier) Enabled() bool { return a.enabled.Load() }

func (a *AdminNotifier) SetEnabled(v bool) { a.enabled.Store(v) }

// BroadcastToAdmins renders key once inside the admin broadcast template,
// writes it to the chat of every privileged online player and mirrors it to
// the log sink exactly once. It returns the number of players written to.
//
// When admin notifications are disabled this is a no-op.
func (a *AdminNotifier) BroadcastToAdmins(key string, params ...string) (int, error) {
	if !a.Enabled() {
		return 0, nil
	}
	msg, err := a.renderer.RenderWrapped(KeyAdminFormatOthers, key, params...)
	if err != nil {
		return 0, err
	}
	text := PlainText(msg)

	var online []Player
	if a.roster != nil {
		online = a.roster.Online()
	}
	sent := 0
	for _, p := range online {
		if !a.privileged(p) {
			continue
		}
		err := a.channels.WriteChat(p, text)
		switch {
		case err == nil:
			sent++
		case errors.Is(err, ErrOffline):
		default:
			a.log.Debug("admin broadcast write failed", logx.String("player", p.Name), logx.Err(err))
		}
	}

	if a.sink != nil {
		a.sink.Write(msg)
	}
	publish(a.bus, EventAdmin, LifecycleEvent{Category: CategoryAdminAction, Count: sent})
	return sent, nil
}

func (a *AdminNotifier) privileged(p Player) bool {
	if a.privs == nil {
		return false
	}
	return a.privs.IsOperator(p) || a.privs.HasAdminChat(p)
}

// ConfirmToActor sends the confirmation template straight to the command
// issuer. It ignores the admin notifications flag and the privilege filter.
func (a *AdminNotifier) ConfirmToActor(s Sender, key string, params ...string) error {
	if s == nil {
		return nil
	}
	msg, err := a.renderer.RenderWrapped(KeyAdminFormatSelf, key, params...)
	if err != nil {
		return err
	}
	if err := s.SendMessage(msg); err != nil && !errors.Is(err, ErrOffline) {
		return err
	}
	return nil
}
