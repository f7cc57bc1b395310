package notification

import (
	"testing"

	"github.com/google/uuid"
)

func TestBroadcastReachesOperatorsOrAdminChatHolders(t *testing.T) {
	t.Parallel()
	h := newHarness(Config{AdminNotifications: true})
	op := h.world.join("Op")
	chat := h.world.join("Chatter")
	both := h.world.join("Both")
	h.world.join("Regular")
	h.world.ops[op.ID] = true
	h.world.adminChat[chat.ID] = true
	h.world.ops[both.ID] = true
	h.world.adminChat[both.ID] = true

	n, err := h.engine.BroadcastToAdmins("Test.Plain")
	if err != nil {
		t.Fatalf("BroadcastToAdmins: %v", err)
	}
	if n != 3 {
		t.Fatalf("recipients = %d, want 3", n)
	}
	got := map[string]string{}
	for _, w := range h.channels.all() {
		if w.channel != ChannelChat {
			t.Fatalf("admin broadcast written to %s", w.channel)
		}
		got[w.player.Name] = w.text.String()
	}
	for _, name := range []string{"Op", "Chatter", "Both"} {
		if got[name] != "[admin] hi" {
			t.Fatalf("%s got %q, want %q", name, got[name], "[admin] hi")
		}
	}
	if _, ok := got["Regular"]; ok {
		t.Fatal("unprivileged player received the admin broadcast")
	}
	if len(h.sink.lines) != 1 || h.sink.lines[0] != "[admin] hi" {
		t.Fatalf("sink = %q, want one [admin] hi", h.sink.lines)
	}
	if calls := h.locale.callsFor("Test.Plain"); len(calls) != 1 {
		t.Fatalf("message rendered %d times, want 1", len(calls))
	}
}

func TestBroadcastWithNoAdminsStillLogsOnce(t *testing.T) {
	t.Parallel()
	h := newHarness(Config{AdminNotifications: true})
	h.world.join("Regular")

	n, err := h.engine.BroadcastToAdmins("Test.Plain")
	if err != nil {
		t.Fatalf("BroadcastToAdmins: %v", err)
	}
	if n != 0 || len(h.channels.all()) != 0 {
		t.Fatalf("recipients = %d writes = %d, want 0/0", n, len(h.channels.all()))
	}
	if len(h.sink.lines) != 1 {
		t.Fatalf("sink writes = %d, want 1", len(h.sink.lines))
	}
}

func TestBroadcastSkipsOfflineAdmin(t *testing.T) {
	t.Parallel()
	h := newHarness(Config{AdminNotifications: true})
	gone := h.world.join("Gone")
	here := h.world.join("Here")
	h.world.ops[gone.ID] = true
	h.world.ops[here.ID] = true
	h.channels.offline[gone.ID] = true

	n, err := h.engine.BroadcastToAdmins("Test.Plain")
	if err != nil || n != 1 {
		t.Fatalf("BroadcastToAdmins = %d, %v; want 1, nil", n, err)
	}
}

func TestDisabledAdminNotificationsStillConfirm(t *testing.T) {
	t.Parallel()
	h := newHarness(Config{AdminNotifications: false})
	op := h.world.join("Op")
	h.world.ops[op.ID] = true

	n, err := h.engine.BroadcastToAdmins("Test.Plain")
	if err != nil || n != 0 {
		t.Fatalf("BroadcastToAdmins = %d, %v; want 0, nil", n, err)
	}
	if len(h.sink.lines) != 0 || len(h.channels.all()) != 0 {
		t.Fatal("disabled broadcast produced output")
	}

	s := &fakeSender{}
	if err := h.engine.ConfirmToActor(s, "Test.Plain"); err != nil {
		t.Fatalf("ConfirmToActor: %v", err)
	}
	if len(s.msgs) != 1 || s.msgs[0] != "[self] hi" {
		t.Fatalf("confirmation = %q, want [self] hi", s.msgs)
	}

	h.engine.Admin.SetEnabled(true)
	if n, _ := h.engine.BroadcastToAdmins("Test.Plain"); n != 1 {
		t.Fatalf("after SetEnabled: recipients = %d, want 1", n)
	}
}

func TestSensitiveCommandParameters(t *testing.T) {
	t.Parallel()
	h := newHarness(Config{AdminNotifications: true, IdentitySeparator: "#"})
	op := h.world.join("Op")
	h.world.ops[op.ID] = true

	alice := Player{ID: uuid.MustParse("00000000-0000-0000-0000-000000001234"), Name: "Alice"}
	s := &fakePlayerSender{p: alice}
	if err := h.engine.NotifySensitive(s, SensitiveXPRateModify, "5.0"); err != nil {
		t.Fatalf("NotifySensitive: %v", err)
	}

	identity := "Alice#00000000-0000-0000-0000-000000001234"
	others := h.locale.callsFor("Notifications.Admin.XPRate.Start.Others")
	if len(others) != 1 || len(others[0].params) != 2 || others[0].params[0] != identity || others[0].params[1] != "5.0" {
		t.Fatalf("broadcast params = %+v, want [%s 5.0]", others, identity)
	}
	self := h.locale.callsFor("Notifications.Admin.XPRate.Start.Self")
	if len(self) != 1 || len(self[0].params) != 1 || self[0].params[0] != "5.0" {
		t.Fatalf("confirmation params = %+v, want [5.0]", self)
	}

	if len(s.msgs) != 1 || s.msgs[0] != "[self] rate is 5.0" {
		t.Fatalf("confirmation = %q", s.msgs)
	}
	writes := h.channels.all()
	if len(writes) != 1 || writes[0].text.String() != "[admin] "+identity+" set rate 5.0" {
		t.Fatalf("broadcast writes = %+v", writes)
	}

	if len(h.audit.entries) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(h.audit.entries))
	}
	e := h.audit.entries[0]
	if e.Command != string(SensitiveXPRateModify) || e.ActorName != "Alice" || e.Recipients != 1 {
		t.Fatalf("audit entry = %+v", e)
	}
}

func TestSensitiveCommandFromConsole(t *testing.T) {
	t.Parallel()
	h := newHarness(Config{AdminNotifications: true})
	s := &fakeSender{}

	if err := h.engine.NotifySensitive(s, SensitiveXPRateEnd); err != nil {
		t.Fatalf("NotifySensitive: %v", err)
	}
	if len(h.sink.lines) != 1 || h.sink.lines[0] != "[admin] Console ended the event" {
		t.Fatalf("sink = %q", h.sink.lines)
	}
	if len(s.msgs) != 1 || s.msgs[0] != "[self] event ended" {
		t.Fatalf("confirmation = %q", s.msgs)
	}
}

func TestConsoleAuditUsesLocalizedName(t *testing.T) {
	t.Parallel()
	h := newHarness(Config{AdminNotifications: true})
	h.locale.mu.Lock()
	h.locale.messages[KeyConsoleName] = "[Server]"
	h.locale.mu.Unlock()

	if err := h.engine.NotifySensitive(&fakeSender{}, SensitiveXPRateEnd); err != nil {
		t.Fatalf("NotifySensitive: %v", err)
	}
	if len(h.sink.lines) != 1 || h.sink.lines[0] != "[admin] [Server] ended the event" {
		t.Fatalf("sink = %q", h.sink.lines)
	}
	if len(h.audit.entries) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(h.audit.entries))
	}
	if e := h.audit.entries[0]; e.ActorName != "[Server]" || e.ActorID != "" {
		t.Fatalf("audit entry = %+v, want actor [Server] without id", e)
	}
}

func TestDefaultIdentitySeparator(t *testing.T) {
	t.Parallel()
	h := newHarness(Config{})
	id := uuid.New()
	s := &fakePlayerSender{p: Player{ID: id, Name: "Bob"}}
	if got, want := h.engine.Sensitive.Identity(s), "Bob§r-"+id.String(); got != want {
		t.Fatalf("Identity = %q, want %q", got, want)
	}
}

func TestUnknownSensitiveCommandIsNoop(t *testing.T) {
	t.Parallel()
	h := newHarness(Config{AdminNotifications: true})
	op := h.world.join("Op")
	h.world.ops[op.ID] = true
	s := &fakeSender{}

	if err := h.engine.NotifySensitive(s, SensitiveCommand("mmoedit"), "x"); err != nil {
		t.Fatalf("NotifySensitive: %v", err)
	}
	if len(s.msgs) != 0 || len(h.sink.lines) != 0 || len(h.channels.all()) != 0 || len(h.audit.entries) != 0 {
		t.Fatal("unknown sensitive command produced output")
	}
}

func TestEverySensitiveCommandHasTemplates(t *testing.T) {
	t.Parallel()
	for _, c := range SensitiveCommands() {
		tmpl, ok := sensitiveTemplates[c]
		if !ok || tmpl.others == "" || tmpl.self == "" {
			t.Fatalf("%s: templates = %+v", c, tmpl)
		}
	}
}

func TestPrependArgDoesNotAlias(t *testing.T) {
	t.Parallel()
	args := make([]string, 1, 4)
	args[0] = "5.0"
	out := prependArg("id", args)
	out[1] = "changed"
	if args[0] != "5.0" {
		t.Fatalf("prependArg mutated its input: %q", args)
	}
}
