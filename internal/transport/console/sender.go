package console

import (
	"strings"

	"mcnotify/internal/notification"
	logx "mcnotify/pkg/logx"
)

// ConsoleSender is the server console as a command issuer.
type ConsoleSender struct {
	w *Writer
}

func NewConsoleSender(w *Writer) *ConsoleSender { return &ConsoleSender{w: w} }

func (s *ConsoleSender) SendMessage(text string) error {
	s.w.Println("[console] " + s.w.text(notification.PlainText(text)))
	return nil
}

// PlayerSender is an online player as a command issuer. Replies go to the
// player's chat.
type PlayerSender struct {
	w *Writer
	p notification.Player
}

func NewPlayerSender(w *Writer, p notification.Player) *PlayerSender {
	return &PlayerSender{w: w, p: p}
}

func (s *PlayerSender) Player() notification.Player { return s.p }

func (s *PlayerSender) SendMessage(text string) error {
	return s.w.WriteChat(s.p, notification.PlainText(text))
}

// LogSink mirrors admin broadcasts to the server log.
type LogSink struct {
	log logx.Logger
}

func NewLogSink(log logx.Logger) *LogSink {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &LogSink{log: log}
}

func (s *LogSink) Write(text string) {
	s.log.Info(strings.TrimSpace(notification.PlainText(text).Unformatted()), logx.String("kind", "admin_broadcast"))
}
