package console

import (
	"fmt"

	"mcnotify/internal/notification"
	"mcnotify/internal/session"
	tconsole "mcnotify/internal/transport/console"
)

type rosterIdentities struct {
	roster  *session.Roster
	w       *tconsole.Writer
	console *tconsole.ConsoleSender
}

// NewIdentities resolves command issuers against the roster. Player replies
// go through w.
func NewIdentities(roster *session.Roster, w *tconsole.Writer) Identities {
	return &rosterIdentities{roster: roster, w: w, console: tconsole.NewConsoleSender(w)}
}

func (r *rosterIdentities) Console() notification.Sender { return r.console }

func (r *rosterIdentities) Player(name string) (notification.PlayerSender, error) {
	p, ok := r.roster.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, session.ErrNotOnline)
	}
	return tconsole.NewPlayerSender(r.w, p), nil
}

func (r *rosterIdentities) IsOperator(p notification.Player) bool {
	return r.roster.IsOperator(p)
}
