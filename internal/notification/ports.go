package notification

import (
	"errors"

	"github.com/google/uuid"
)

// ErrOffline is returned by channel writers when the recipient has no live
// session. The engine skips such writes silently.
var ErrOffline = errors.New("recipient offline")

// Player is a notification recipient.
type Player struct {
	ID   uuid.UUID
	Name string
}

func (p Player) String() string { return p.Name + "(" + p.ID.String() + ")" }

// Sender is whoever issued a command: a player or the server console.
type Sender interface {
	SendMessage(text string) error
}

// PlayerSender is a Sender that is a connected player.
type PlayerSender interface {
	Sender
	Player() Player
}

// OptOutQuery reports whether a player disabled notifications.
type OptOutQuery interface {
	OptedOut(p Player) bool
}

// LocaleResolver looks up a template and substitutes positional parameters.
// Parameter count mismatches are the resolver's concern.
type LocaleResolver interface {
	Resolve(key string, params ...string) (string, error)
}

// Privileges answers the two admin checks used for admin broadcasts.
type Privileges interface {
	IsOperator(p Player) bool
	HasAdminChat(p Player) bool
}

// Roster enumerates currently connected players. The returned slice is a
// point-in-time snapshot owned by the caller.
type Roster interface {
	Online() []Player
}

// LogSink mirrors admin broadcasts to the operational log.
type LogSink interface {
	Write(text string)
}

// Channels writes to the two client surfaces.
type Channels interface {
	WriteChat(p Player, t Text) error
	WriteActionBar(p Player, t Text) error
}

// TitleWriter is an optional interface for Channels implementations that can
// show full-screen titles.
type TitleWriter interface {
	WriteTitle(p Player, title, subtitle string, fadeIn, stay, fadeOut int) error
}

// SoundPlayer plays the skill unlock sound effect.
type SoundPlayer interface {
	PlayUnlockSound(p Player)
}

type nopChannels struct{}

func (nopChannels) WriteChat(Player, Text) error      { return ErrOffline }
func (nopChannels) WriteActionBar(Player, Text) error { return ErrOffline }
