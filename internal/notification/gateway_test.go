package notification

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"mcnotify/internal/eventbus"
)

func TestDispatchStyledWritesBothChannelsForEveryCategory(t *testing.T) {
	t.Parallel()
	h := newHarness(Config{Settings: bothChannels()})
	p := h.world.join("Steve")

	for i, c := range Categories() {
		if !h.engine.Dispatch(p, c, StyledText("§aHi")) {
			t.Fatalf("Dispatch(%s) not delivered", c)
		}
		if got := h.channels.count(ChannelChat); got != i+1 {
			t.Fatalf("after %s: chat writes = %d, want %d", c, got, i+1)
		}
		if got := h.channels.count(ChannelActionBar); got != i+1 {
			t.Fatalf("after %s: action bar writes = %d, want %d", c, got, i+1)
		}
	}
}

func TestCancelledEventProducesNoWrites(t *testing.T) {
	t.Parallel()
	h := newHarness(Config{Settings: bothChannels()})
	p := h.world.join("Steve")

	var laterRan, laterSawCancel bool
	h.engine.Gateway.Register("veto", func(e *Event) { e.Cancel() })
	h.engine.Gateway.Register("later", func(e *Event) {
		laterRan = true
		laterSawCancel = e.Cancelled()
	})

	if h.engine.Dispatch(p, CategoryXPGain, StyledText("§aHi")) {
		t.Fatal("cancelled event reported as delivered")
	}
	if !laterRan || !laterSawCancel {
		t.Fatalf("later observer ran=%v sawCancel=%v; want both true", laterRan, laterSawCancel)
	}
	if n := len(h.channels.all()); n != 0 {
		t.Fatalf("writes = %d, want 0", n)
	}
}

func TestOptedOutPlayerGetsNothingAndNoEvent(t *testing.T) {
	t.Parallel()
	h := newHarness(Config{Settings: bothChannels()})
	p := h.world.join("Quiet")
	h.world.optedOut[p.ID] = true

	offered := 0
	h.engine.Gateway.Register("count", func(*Event) { offered++ })

	if err := h.engine.Notify(p, CategoryLevelUp, "Test.Hello", "x"); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if h.engine.Dispatch(p, CategoryLevelUp, StyledText("x")) {
		t.Fatal("Dispatch delivered to opted-out player")
	}
	if offered != 0 {
		t.Fatalf("observers offered %d events, want 0", offered)
	}
	if n := len(h.channels.all()); n != 0 {
		t.Fatalf("writes = %d, want 0", n)
	}
	if calls := h.locale.callsFor("Test.Hello"); len(calls) != 0 {
		t.Fatalf("template rendered %d times for opted-out player", len(calls))
	}
	if h.engine.UsesNotifications(p) {
		t.Fatal("UsesNotifications = true for opted-out player")
	}
}

func TestObserverCanRewriteText(t *testing.T) {
	t.Parallel()
	h := newHarness(Config{Settings: bothChannels()})
	p := h.world.join("Steve")
	h.engine.Gateway.Register("rewrite", func(e *Event) { e.Text = PlainText("rewritten") })

	if err := h.engine.Notify(p, CategoryGenericInfo, "Test.Hello", "world"); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	writes := h.channels.all()
	if len(writes) != 1 || writes[0].channel != ChannelChat {
		t.Fatalf("writes = %+v; want one chat write (plain text skips the action bar)", writes)
	}
	if got := writes[0].text.String(); got != "rewritten" {
		t.Fatalf("text = %q, want rewritten", got)
	}
}

func TestObserverPanicIsContained(t *testing.T) {
	t.Parallel()
	h := newHarness(Config{Settings: bothChannels()})
	p := h.world.join("Steve")
	ran := false
	h.engine.Gateway.Register("boom", func(*Event) { panic("observer bug") })
	h.engine.Gateway.Register("after", func(*Event) { ran = true })

	if !h.engine.Dispatch(p, CategoryXPGain, StyledText("x")) {
		t.Fatal("event not delivered after observer panic")
	}
	if !ran {
		t.Fatal("observer after the panicking one did not run")
	}
}

func TestUnregisterRemovesObserver(t *testing.T) {
	t.Parallel()
	h := newHarness(Config{Settings: bothChannels()})
	p := h.world.join("Steve")
	unregister := h.engine.Gateway.Register("veto", func(e *Event) { e.Cancel() })
	unregister()
	unregister()

	if !h.engine.Dispatch(p, CategoryXPGain, StyledText("x")) {
		t.Fatal("unregistered observer still cancelled the event")
	}
}

func TestNotifyPropagatesLocaleFailure(t *testing.T) {
	t.Parallel()
	h := newHarness(Config{Settings: bothChannels()})
	p := h.world.join("Steve")

	err := h.engine.Notify(p, CategoryXPGain, "Missing.Key")
	if !errors.Is(err, errNoKey) {
		t.Fatalf("err = %v, want errNoKey", err)
	}
	if n := len(h.channels.all()); n != 0 {
		t.Fatalf("writes = %d, want 0", n)
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	t.Parallel()
	h := newHarness(Config{})
	a, err := h.engine.Render("Test.Plain")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	b, err := h.engine.Render("Test.Plain")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("Render not deterministic: %+v vs %+v", a, b)
	}
	c, _ := h.engine.Render("Test.Hello", "x")
	d, _ := h.engine.Render("Test.Hello", "x")
	if !reflect.DeepEqual(c, d) {
		t.Fatalf("Render with params not deterministic: %+v vs %+v", c, d)
	}
	if got := h.locale.callsFor("Test.Plain"); len(got) != 2 || len(got[0].params) != 0 {
		t.Fatalf("no-param render calls = %+v", got)
	}
}

func TestLifecycleEventsArePublished(t *testing.T) {
	t.Parallel()
	bus := eventbus.New()
	events, unsub := bus.Subscribe(8)
	defer unsub()

	w := newFakeWorld()
	ch := &fakeChannels{}
	e := New(Config{Settings: bothChannels()}, Deps{Locale: newFakeLocale(nil), OptOut: w, Channels: ch, Bus: bus})
	p := w.join("Steve")
	e.Dispatch(p, CategoryXPGain, StyledText("x"))
	e.Gateway.Register("veto", func(ev *Event) { ev.Cancel() })
	e.Dispatch(p, CategoryXPGain, StyledText("x"))

	want := []string{EventDelivered, EventCancelled}
	for _, typ := range want {
		select {
		case ev := <-events:
			if ev.Type != typ {
				t.Fatalf("event = %s, want %s", ev.Type, typ)
			}
			data, ok := ev.Data.(LifecycleEvent)
			if !ok || data.Recipient != "Steve" || data.Category != CategoryXPGain {
				t.Fatalf("data = %+v", ev.Data)
			}
		case <-time.After(time.Second):
			t.Fatalf("no %s event", typ)
		}
	}
}
