package notification

import "testing"

func TestSendChatOnly(t *testing.T) {
	t.Parallel()
	h := newHarness(Config{Settings: map[Category]DeliverySettings{}})
	p := h.world.join("Steve")

	if err := h.engine.SendChatOnly(p, "Test.Plain"); err != nil {
		t.Fatalf("SendChatOnly: %v", err)
	}
	if err := h.engine.SendChatOnlyPrefixed(p, "Test.Plain"); err != nil {
		t.Fatalf("SendChatOnlyPrefixed: %v", err)
	}
	writes := h.channels.all()
	if len(writes) != 2 {
		t.Fatalf("writes = %d, want 2", len(writes))
	}
	if writes[0].text.String() != "hi" || writes[1].text.String() != "[mc] hi" {
		t.Fatalf("texts = %q, %q", writes[0].text.String(), writes[1].text.String())
	}
	for _, w := range writes {
		if w.channel != ChannelChat || w.text.IsStyled() {
			t.Fatalf("direct send = %+v, want plain chat", w)
		}
	}

	h.world.optedOut[p.ID] = true
	_ = h.engine.SendChatOnly(p, "Test.Plain")
	if len(h.channels.all()) != 2 {
		t.Fatal("direct send reached an opted-out player")
	}
}

func TestSendNearbyFollowsCategoryPolicy(t *testing.T) {
	t.Parallel()
	h := newHarness(Config{Settings: map[Category]DeliverySettings{
		CategorySuperAbilityAlertOthers: {SendToActionBar: true},
	}})
	p := h.world.join("Alex")

	if err := h.engine.SendNearby(p, CategorySuperAbilityAlertOthers, "Test.Hello", "Steve"); err != nil {
		t.Fatalf("SendNearby: %v", err)
	}
	writes := h.channels.all()
	if len(writes) != 1 || writes[0].channel != ChannelActionBar {
		t.Fatalf("writes = %+v, want one action bar write", writes)
	}
	if got := writes[0].text.Unformatted(); got != "Hello Steve" {
		t.Fatalf("got %q, want %q", got, "Hello Steve")
	}
}

func TestSendUnlockPlaysSound(t *testing.T) {
	t.Parallel()
	h := newHarness(Config{})
	p := h.world.join("Steve")

	if err := h.engine.SendUnlock(p, "Super Breaker", 1); err != nil {
		t.Fatalf("SendUnlock: %v", err)
	}
	writes := h.channels.all()
	if len(writes) != 1 || writes[0].text.Unformatted() != "Super Breaker unlocked" {
		t.Fatalf("writes = %+v", writes)
	}
	if calls := h.locale.callsFor(KeySkillUnlocked); len(calls) != 1 || calls[0].params[1] != "1" {
		t.Fatalf("unlock params = %+v", calls)
	}
	if len(h.sounds.played) != 1 || h.sounds.played[0] != p {
		t.Fatalf("sounds = %+v", h.sounds.played)
	}
}

func TestSendLevelUp(t *testing.T) {
	t.Parallel()
	h := newHarness(Config{Settings: map[Category]DeliverySettings{
		CategoryLevelUp: {SendToActionBar: true},
	}})
	p := h.world.join("Steve")

	if err := h.engine.SendLevelUp(p, "Mining", 1, 10); err != nil {
		t.Fatalf("SendLevelUp: %v", err)
	}
	writes := h.channels.all()
	if len(writes) != 1 || writes[0].channel != ChannelActionBar {
		t.Fatalf("writes = %+v, want one action bar write", writes)
	}
	if got := writes[0].text.Unformatted(); got != "Mining increased by 1 to 10" {
		t.Fatalf("text = %q", got)
	}
}

func TestBroadcastTitleCountsReachedPlayers(t *testing.T) {
	t.Parallel()
	h := newHarness(Config{})
	h.world.join("A")
	gone := h.world.join("B")
	h.channels.offline[gone.ID] = true

	if n := h.engine.BroadcastTitle("Event", "starts now", 10, 70, 20); n != 1 {
		t.Fatalf("BroadcastTitle = %d, want 1", n)
	}
}

func TestBroadcastTitleWithoutTitleSupport(t *testing.T) {
	t.Parallel()
	w := newFakeWorld()
	w.join("A")
	e := New(Config{}, Deps{Locale: newFakeLocale(nil), Roster: w, Channels: chatOnlyChannels{}})
	if n := e.BroadcastTitle("x", "y", 1, 1, 1); n != 0 {
		t.Fatalf("BroadcastTitle = %d, want 0", n)
	}
}

type chatOnlyChannels struct{}

func (chatOnlyChannels) WriteChat(Player, Text) error      { return nil }
func (chatOnlyChannels) WriteActionBar(Player, Text) error { return nil }
