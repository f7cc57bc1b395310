// Package console is a text transport: it paints chat, action bar and title
// writes as lines on an io.Writer and reads command lines from an io.Reader.
package console

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"mcnotify/internal/notification"
)

// Presence reports whether a player is connected. session.Roster satisfies it.
type Presence interface {
	IsOnline(id uuid.UUID) bool
}

// Writer implements notification.Channels, notification.TitleWriter and
// notification.SoundPlayer.
//
// It is safe for concurrent use; each write is one line.
type Writer struct {
	mu       sync.Mutex
	out      io.Writer
	presence Presence
	raw      bool
	stamp    bool
	now      func() time.Time
}

type WriterConfig struct {
	Raw        bool // keep formatting codes instead of stripping them
	Timestamps bool
}

func NewWriter(out io.Writer, presence Presence, cfg WriterConfig) *Writer {
	if out == nil {
		out = io.Discard
	}
	return &Writer{out: out, presence: presence, raw: cfg.Raw, stamp: cfg.Timestamps, now: time.Now}
}

func (w *Writer) WriteChat(p notification.Player, t notification.Text) error {
	return w.player("chat", p, w.text(t))
}

func (w *Writer) WriteActionBar(p notification.Player, t notification.Text) error {
	return w.player("actionbar", p, w.text(t))
}

func (w *Writer) WriteTitle(p notification.Player, title, subtitle string, fadeIn, stay, fadeOut int) error {
	body := w.text(notification.StyledText(title))
	if subtitle != "" {
		body += " | " + w.text(notification.StyledText(subtitle))
	}
	return w.player("title", p, fmt.Sprintf("%s (%d/%d/%d)", body, fadeIn, stay, fadeOut))
}

// PlayUnlockSound notes the skill unlock jingle. Offline players are skipped.
func (w *Writer) PlayUnlockSound(p notification.Player) {
	_ = w.player("sound", p, "skill unlocked")
}

// Println writes a console line that is not addressed to a player.
func (w *Writer) Println(s string) {
	w.emit(s)
}

func (w *Writer) player(surface string, p notification.Player, body string) error {
	if w.presence != nil && !w.presence.IsOnline(p.ID) {
		return notification.ErrOffline
	}
	w.emit("[" + surface + "] " + p.Name + ": " + body)
	return nil
}

func (w *Writer) text(t notification.Text) string {
	if w.raw {
		return t.String()
	}
	return t.Unformatted()
}

func (w *Writer) emit(line string) {
	line = strings.TrimRight(line, "\n")
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stamp {
		line = w.now().Format("15:04:05") + " " + line
	}
	_, _ = io.WriteString(w.out, line+"\n")
}
