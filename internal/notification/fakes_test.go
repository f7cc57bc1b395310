package notification

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"mcnotify/internal/locale"
	"mcnotify/internal/storage"
)

var errNoKey = errors.New("no such key")

type resolveCall struct {
	key    string
	params []string
}

// fakeLocale resolves from a fixed map and records every call.
type fakeLocale struct {
	mu       sync.Mutex
	messages map[string]string
	calls    []resolveCall
}

func newFakeLocale(extra map[string]string) *fakeLocale {
	m := map[string]string{
		KeyAdminFormatOthers: "[admin] {0}",
		KeyAdminFormatSelf:   "[self] {0}",
		KeyChatPrefix:        "[mc] {0}",
		KeyConsoleName:       "Console",
		KeyLevelUp:           "§l{0} increased by {1} to §a{2}",
		KeySkillUnlocked:     "§6{0} unlocked",
		"Notifications.Admin.XPRate.Start.Others": "{0} set rate {1}",
		"Notifications.Admin.XPRate.Start.Self":   "rate is {0}",
		"Notifications.Admin.XPRate.End.Others":   "{0} ended the event",
		"Notifications.Admin.XPRate.End.Self":     "event ended",
		"Test.Hello": "§aHello §l{0}",
		"Test.Plain": "hi",
	}
	for k, v := range extra {
		m[k] = v
	}
	return &fakeLocale{messages: m}
}

func (f *fakeLocale) Resolve(key string, params ...string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, resolveCall{key: key, params: append([]string(nil), params...)})
	t, ok := f.messages[key]
	f.mu.Unlock()
	if !ok {
		return "", errNoKey
	}
	return locale.Format(t, params...), nil
}

func (f *fakeLocale) callsFor(key string) []resolveCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []resolveCall
	for _, c := range f.calls {
		if c.key == key {
			out = append(out, c)
		}
	}
	return out
}

// fakeWorld is the roster, the privilege source and the opt-out state.
type fakeWorld struct {
	mu        sync.Mutex
	players   []Player
	ops       map[uuid.UUID]bool
	adminChat map[uuid.UUID]bool
	optedOut  map[uuid.UUID]bool
}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{ops: map[uuid.UUID]bool{}, adminChat: map[uuid.UUID]bool{}, optedOut: map[uuid.UUID]bool{}}
}

func (w *fakeWorld) join(name string) Player {
	p := Player{ID: uuid.New(), Name: name}
	w.mu.Lock()
	w.players = append(w.players, p)
	w.mu.Unlock()
	return p
}

func (w *fakeWorld) Online() []Player {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Player(nil), w.players...)
}

func (w *fakeWorld) IsOperator(p Player) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ops[p.ID]
}

func (w *fakeWorld) HasAdminChat(p Player) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.adminChat[p.ID]
}

func (w *fakeWorld) OptedOut(p Player) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.optedOut[p.ID]
}

type channelWrite struct {
	channel Channel
	player  Player
	text    Text
}

type fakeChannels struct {
	mu      sync.Mutex
	writes  []channelWrite
	titles  []Player
	offline map[uuid.UUID]bool
	fail    error
}

func (c *fakeChannels) record(ch Channel, p Player, t Text) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.offline[p.ID] {
		return ErrOffline
	}
	if c.fail != nil {
		return c.fail
	}
	c.writes = append(c.writes, channelWrite{channel: ch, player: p, text: t})
	return nil
}

func (c *fakeChannels) WriteChat(p Player, t Text) error      { return c.record(ChannelChat, p, t) }
func (c *fakeChannels) WriteActionBar(p Player, t Text) error { return c.record(ChannelActionBar, p, t) }

func (c *fakeChannels) WriteTitle(p Player, title, subtitle string, fadeIn, stay, fadeOut int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.offline[p.ID] {
		return ErrOffline
	}
	c.titles = append(c.titles, p)
	return nil
}

func (c *fakeChannels) count(ch Channel) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, w := range c.writes {
		if w.channel == ch {
			n++
		}
	}
	return n
}

func (c *fakeChannels) all() []channelWrite {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]channelWrite(nil), c.writes...)
}

type fakeSink struct {
	mu    sync.Mutex
	lines []string
}

func (s *fakeSink) Write(text string) {
	s.mu.Lock()
	s.lines = append(s.lines, text)
	s.mu.Unlock()
}

type fakeSender struct {
	mu   sync.Mutex
	msgs []string
}

func (s *fakeSender) SendMessage(text string) error {
	s.mu.Lock()
	s.msgs = append(s.msgs, text)
	s.mu.Unlock()
	return nil
}

type fakePlayerSender struct {
	fakeSender
	p Player
}

func (s *fakePlayerSender) Player() Player { return s.p }

type fakeSounds struct{ played []Player }

func (s *fakeSounds) PlayUnlockSound(p Player) { s.played = append(s.played, p) }

type fakeAudit struct {
	mu      sync.Mutex
	entries []storage.AuditEntry
}

func (a *fakeAudit) AppendAudit(_ context.Context, e storage.AuditEntry) error {
	a.mu.Lock()
	a.entries = append(a.entries, e)
	a.mu.Unlock()
	return nil
}

type harness struct {
	engine   *Engine
	locale   *fakeLocale
	world    *fakeWorld
	channels *fakeChannels
	sink     *fakeSink
	sounds   *fakeSounds
	audit    *fakeAudit
}

func newHarness(cfg Config) *harness {
	h := &harness{
		locale:   newFakeLocale(nil),
		world:    newFakeWorld(),
		channels: &fakeChannels{offline: map[uuid.UUID]bool{}},
		sink:     &fakeSink{},
		sounds:   &fakeSounds{},
		audit:    &fakeAudit{},
	}
	h.engine = New(cfg, Deps{
		Locale:     h.locale,
		OptOut:     h.world,
		Privileges: h.world,
		Roster:     h.world,
		Channels:   h.channels,
		Sink:       h.sink,
		Sounds:     h.sounds,
		Audit:      h.audit,
	})
	return h
}

func bothChannels() map[Category]DeliverySettings {
	out := map[Category]DeliverySettings{}
	for _, c := range Categories() {
		out[c] = DeliverySettings{SendToChat: true, SendToActionBar: true}
	}
	return out
}
