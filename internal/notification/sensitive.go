package notification

import (
	"context"
	"time"

	"mcnotify/internal/storage"
	logx "mcnotify/pkg/logx"
)

// SensitiveCommand identifies an admin command whose use is announced to
// the other admins.
type SensitiveCommand string

const (
	SensitiveXPRateModify SensitiveCommand = "xprate_modify"
	SensitiveXPRateEnd    SensitiveCommand = "xprate_end"
)

type sensitiveTemplate struct {
	others string // broadcast to admins, actor identity prepended
	self   string // confirmation to the actor
}

// Adding a sensitive command is a table entry.
var sensitiveTemplates = map[SensitiveCommand]sensitiveTemplate{
	SensitiveXPRateModify: {
		others: "Notifications.Admin.XPRate.Start.Others",
		self:   "Notifications.Admin.XPRate.Start.Self",
	},
	SensitiveXPRateEnd: {
		others: "Notifications.Admin.XPRate.End.Others",
		self:   "Notifications.Admin.XPRate.End.Self",
	},
}

// SensitiveCommands lists the commands with a notification template pair.
func SensitiveCommands() []SensitiveCommand {
	return []SensitiveCommand{SensitiveXPRateModify, SensitiveXPRateEnd}
}

const (
	// DefaultIdentitySeparator resets formatting after the display name.
	DefaultIdentitySeparator = "§r-"
	fallbackConsoleName      = "Console"
	auditTimeout             = 250 * time.Millisecond
)

// AuditLog records sensitive command use. storage.Store satisfies it.
type AuditLog interface {
	AppendAudit(ctx context.Context, e storage.AuditEntry) error
}

// SensitivePolicy announces sensitive admin commands.
type SensitivePolicy struct {
	admin     *AdminNotifier
	renderer  *Renderer
	audit     AuditLog
	separator string
	log       logx.Logger
}

func NewSensitivePolicy(admin *AdminNotifier, renderer *Renderer, audit AuditLog, separator string, log logx.Logger) *SensitivePolicy {
	if log.IsZero() {
		log = logx.Nop()
	}
	if separator == "" {
		separator = DefaultIdentitySeparator
	}
	return &SensitivePolicy{admin: admin, renderer: renderer, audit: audit, separator: separator, log: log}
}

// Notify broadcasts the "others" template to admins with the actor identity
// as parameter 0 followed by args, then confirms the "self" template to the
// sender with args unchanged.
//
// Commands without a template pair produce no notification at all.
func (p *SensitivePolicy) Notify(s Sender, cmd SensitiveCommand, args ...string) error {
	tmpl, ok := sensitiveTemplates[cmd]
	if !ok {
		p.log.Debug("no notification templates for sensitive command", logx.String("command", string(cmd)))
		return nil
	}

	identity := p.Identity(s)
	sent, err := p.admin.BroadcastToAdmins(tmpl.others, prependArg(identity, args)...)
	if err != nil {
		return err
	}
	if err := p.admin.ConfirmToActor(s, tmpl.self, args...); err != nil {
		return err
	}
	p.record(s, cmd, args, sent)
	return nil
}

// Identity is "<display-name><separator><uuid>" for players and the
// localized console name otherwise.
func (p *SensitivePolicy) Identity(s Sender) string {
	if ps, ok := s.(PlayerSender); ok {
		pl := ps.Player()
		return pl.Name + p.separator + pl.ID.String()
	}
	name, err := p.renderer.RenderPlain(KeyConsoleName)
	if err != nil || name == "" {
		return fallbackConsoleName
	}
	return name
}

func (p *SensitivePolicy) record(s Sender, cmd SensitiveCommand, args []string, sent int) {
	if p.audit == nil {
		return
	}
	e := storage.AuditEntry{
		At:         time.Now(),
		Command:    string(cmd),
		Args:       append([]string(nil), args...),
		Recipients: sent,
	}
	if ps, ok := s.(PlayerSender); ok {
		pl := ps.Player()
		e.ActorID = pl.ID.String()
		e.ActorName = pl.Name
	} else {
		e.ActorName = p.Identity(s)
	}
	ctx, cancel := context.WithTimeout(context.Background(), auditTimeout)
	defer cancel()
	if err := p.audit.AppendAudit(ctx, e); err != nil {
		p.log.Warn("audit append failed", logx.String("command", string(cmd)), logx.Err(err))
	}
}

// prependArg returns a new slice with first at index 0 and rest shifted right by one.
func prependArg(first string, rest []string) []string {
	out := make([]string, len(rest)+1)
	out[0] = first
	copy(out[1:], rest)
	return out
}
