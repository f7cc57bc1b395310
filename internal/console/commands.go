package console

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"mcnotify/internal/notification"
	"mcnotify/internal/session"
	"mcnotify/internal/storage"
)

// AuditReader lists recorded sensitive commands. storage.Store satisfies it.
type AuditReader interface {
	RecentAudit(ctx context.Context, limit int) ([]storage.AuditEntry, error)
}

// Env is what the built-in commands operate on. Audit may be nil.
type Env struct {
	Engine *notification.Engine
	Roster *session.Roster
	Audit  AuditReader
}

type builtins struct{ Env }

// Default title timings in ticks.
const (
	titleFadeIn  = 10
	titleStay    = 70
	titleFadeOut = 20

	defaultListLimit = 10
)

// Builtins returns the daemon's command set.
func Builtins(env Env) []Command {
	b := builtins{env}
	return []Command{
		{Route: "join", Description: "connect a player", Usage: "join <name>", MinArgs: 1, Handle: b.join},
		{Route: "leave", Aliases: []string{"quit"}, Description: "disconnect a player", Usage: "leave <name>", MinArgs: 1, Handle: b.leave},
		{Route: "list", Aliases: []string{"who"}, Description: "list online players", Usage: "list", Handle: b.list},
		{Route: "op", Description: "set operator status", Usage: "op <name> [on|off]", Access: AccessOperator, MinArgs: 1, Handle: b.op},
		{Route: "grant", Description: "grant a capability", Usage: "grant <name> adminchat", Access: AccessOperator, MinArgs: 2, Handle: b.capability(true)},
		{Route: "revoke", Description: "revoke a capability", Usage: "revoke <name> adminchat", Access: AccessOperator, MinArgs: 2, Handle: b.capability(false)},
		{Route: "optout", Aliases: []string{"mcnotify"}, Description: "toggle a player's notifications", Usage: "optout <name> [on|off]", MinArgs: 1, Handle: b.optout},
		{Route: "notify", Description: "send a categorized notification", Usage: "notify <player> <category> <key> [params...]", Access: AccessOperator, MinArgs: 3, Handle: b.notify},
		{Route: "chat", Description: "send a chat-only message", Usage: "chat <player> <key> [params...] [--prefix]", Access: AccessOperator, MinArgs: 2, Handle: b.chat},
		{Route: "levelup", Description: "announce a skill level up", Usage: "levelup <player> <skill> <levels-gained> <new-level>", Access: AccessOperator, MinArgs: 4, Handle: b.levelup},
		{Route: "unlock", Description: "announce a sub-skill unlock", Usage: "unlock <player> <subskill> [rank]", Access: AccessOperator, MinArgs: 2, Handle: b.unlock},
		{Route: "title", Description: "show a title to everyone", Usage: "title [title] [subtitle] [--fade-in N] [--stay N] [--fade-out N]", Access: AccessOperator, Handle: b.title},
		{Route: "admin", Description: "broadcast to admins", Usage: "admin <key> [params...]", Access: AccessOperator, MinArgs: 1, Handle: b.admin},
		{Route: "xprate", Description: "start, change or end an XP rate event", Usage: "xprate <rate>|reset", Access: AccessOperator, MinArgs: 1, Handle: b.xprate},
		{Route: "settings", Description: "show delivery settings", Usage: "settings [category]", Handle: b.settings},
		{Route: "settings set", Description: "change delivery settings", Usage: "settings set <category> [chat=on|off] [actionbar=on|off]", Access: AccessOperator, MinArgs: 2, Handle: b.settingsSet},
		{Route: "history", Description: "recent deliveries", Usage: "history [n]", Handle: b.history},
		{Route: "audit", Description: "recent sensitive commands", Usage: "audit [n]", Access: AccessOperator, Handle: b.audit},
	}
}

func (b builtins) online(name string) (notification.Player, error) {
	p, ok := b.Roster.Lookup(name)
	if !ok {
		return notification.Player{}, fmt.Errorf("%s: %w", name, session.ErrNotOnline)
	}
	return p, nil
}

func (b builtins) join(_ context.Context, req *Request) error {
	p, err := b.Roster.Join(req.Args[0])
	if err != nil {
		return fmt.Errorf("join %s: %w", req.Args[0], err)
	}
	req.Reply("%s joined (%s)", p.Name, p.ID)
	return nil
}

func (b builtins) leave(_ context.Context, req *Request) error {
	p, err := b.Roster.Leave(req.Args[0])
	if err != nil {
		return fmt.Errorf("leave %s: %w", req.Args[0], err)
	}
	req.Reply("%s left", p.Name)
	return nil
}

func (b builtins) list(_ context.Context, req *Request) error {
	infos := b.Roster.List()
	if len(infos) == 0 {
		req.Reply("No players online")
		return nil
	}
	lines := []string{fmt.Sprintf("%d online:", len(infos))}
	for _, in := range infos {
		var flags []string
		if in.Operator {
			flags = append(flags, "op")
		}
		if in.AdminChat {
			flags = append(flags, "adminchat")
		}
		if in.OptedOut {
			flags = append(flags, "opted-out")
		}
		line := "- " + in.Player.Name
		if len(flags) > 0 {
			line += " [" + strings.Join(flags, ",") + "]"
		}
		lines = append(lines, line)
	}
	req.Reply("%s", strings.Join(lines, "\n"))
	return nil
}

func (b builtins) op(_ context.Context, req *Request) error {
	on := true
	if len(req.Args) > 1 {
		v, ok := parseSwitch(req.Args[1])
		if !ok {
			return ErrUsage
		}
		on = v
	}
	if err := b.Roster.SetOperator(req.Args[0], on); err != nil {
		return fmt.Errorf("op %s: %w", req.Args[0], err)
	}
	req.Reply("%s operator: %t", req.Args[0], on)
	return nil
}

func (b builtins) capability(grant bool) HandlerFunc {
	return func(_ context.Context, req *Request) error {
		if !strings.EqualFold(req.Args[1], "adminchat") {
			return ErrUsage
		}
		if err := b.Roster.SetAdminChat(req.Args[0], grant); err != nil {
			return fmt.Errorf("adminchat %s: %w", req.Args[0], err)
		}
		req.Reply("%s adminchat: %t", req.Args[0], grant)
		return nil
	}
}

func (b builtins) optout(_ context.Context, req *Request) error {
	name := req.Args[0]
	var (
		out bool
		err error
	)
	if len(req.Args) > 1 {
		v, ok := parseSwitch(req.Args[1])
		if !ok {
			return ErrUsage
		}
		out, err = v, b.Roster.SetOptOut(name, v)
	} else {
		out, err = b.Roster.ToggleOptOut(name)
	}
	if err != nil {
		return fmt.Errorf("optout %s: %w", name, err)
	}

	key := "Commands.Notifications.On"
	if out {
		key = "Commands.Notifications.Off"
	}
	msg, err := b.Engine.Renderer.RenderPlain(key)
	if err != nil {
		return err
	}
	req.Reply("%s: %s", name, msg)
	return nil
}

func (b builtins) notify(_ context.Context, req *Request) error {
	p, err := b.online(req.Args[0])
	if err != nil {
		return err
	}
	c, ok := notification.ParseCategory(req.Args[1])
	if !ok {
		return fmt.Errorf("unknown category %q", req.Args[1])
	}
	return b.Engine.Notify(p, c, req.Args[2], req.Args[3:]...)
}

func (b builtins) chat(_ context.Context, req *Request) error {
	p, err := b.online(req.Args[0])
	if err != nil {
		return err
	}
	if req.BoolFlags["prefix"] {
		return b.Engine.SendChatOnlyPrefixed(p, req.Args[1], req.Args[2:]...)
	}
	return b.Engine.SendChatOnly(p, req.Args[1], req.Args[2:]...)
}

func (b builtins) levelup(_ context.Context, req *Request) error {
	p, err := b.online(req.Args[0])
	if err != nil {
		return err
	}
	gained, err1 := strconv.Atoi(req.Args[2])
	level, err2 := strconv.Atoi(req.Args[3])
	if err := errors.Join(err1, err2); err != nil || gained <= 0 || level < 0 {
		return ErrUsage
	}
	return b.Engine.SendLevelUp(p, req.Args[1], gained, level)
}

func (b builtins) unlock(_ context.Context, req *Request) error {
	p, err := b.online(req.Args[0])
	if err != nil {
		return err
	}
	rank := 1
	if len(req.Args) > 2 {
		n, err := strconv.Atoi(req.Args[2])
		if err != nil || n <= 0 {
			return ErrUsage
		}
		rank = n
	}
	return b.Engine.SendUnlock(p, req.Args[1], rank)
}

func (b builtins) title(_ context.Context, req *Request) error {
	title := req.Arg(0, "")
	if title == "" {
		t, err := b.Engine.Renderer.RenderPlain("Commands.Title.Default")
		if err != nil {
			return err
		}
		title = t
	}
	var timings [3]int
	for i, f := range []struct {
		name string
		def  int
	}{{"fade-in", titleFadeIn}, {"stay", titleStay}, {"fade-out", titleFadeOut}} {
		timings[i] = f.def
		if v, ok := req.Flags[f.name]; ok {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return ErrUsage
			}
			timings[i] = n
		}
	}
	n := b.Engine.BroadcastTitle(title, req.Arg(1, ""), timings[0], timings[1], timings[2])
	req.Reply("Title shown to %d player(s)", n)
	return nil
}

func (b builtins) admin(_ context.Context, req *Request) error {
	if !b.Engine.Admin.Enabled() {
		req.Reply("Admin notifications are disabled")
		return nil
	}
	n, err := b.Engine.BroadcastToAdmins(req.Args[0], req.Args[1:]...)
	if err != nil {
		return err
	}
	req.Reply("Broadcast to %d admin(s)", n)
	return nil
}

func (b builtins) xprate(_ context.Context, req *Request) error {
	arg := req.Args[0]
	if strings.EqualFold(arg, "reset") || strings.EqualFold(arg, "end") {
		return b.Engine.NotifySensitive(req.Sender, notification.SensitiveXPRateEnd)
	}
	rate, err := strconv.ParseFloat(arg, 64)
	if err != nil || rate <= 0 {
		return ErrUsage
	}
	return b.Engine.NotifySensitive(req.Sender, notification.SensitiveXPRateModify, arg)
}

func (b builtins) settings(_ context.Context, req *Request) error {
	explicit := b.Engine.Settings.Snapshot()
	cats := notification.Categories()
	if len(req.Args) > 0 {
		c, ok := notification.ParseCategory(req.Args[0])
		if !ok {
			return fmt.Errorf("unknown category %q", req.Args[0])
		}
		cats = []notification.Category{c}
	}
	lines := make([]string, 0, len(cats))
	for _, c := range cats {
		s, ok := explicit[c]
		mark := ""
		if !ok {
			s, mark = notification.DefaultSettings, " (default)"
		}
		lines = append(lines, fmt.Sprintf("%s: chat=%s actionbar=%s%s", c, onOff(s.SendToChat), onOff(s.SendToActionBar), mark))
	}
	req.Reply("%s", strings.Join(lines, "\n"))
	return nil
}

func (b builtins) settingsSet(_ context.Context, req *Request) error {
	c, ok := notification.ParseCategory(req.Args[0])
	if !ok {
		return fmt.Errorf("unknown category %q", req.Args[0])
	}
	s := b.Engine.Settings.Get(c)
	for _, kv := range req.Args[1:] {
		k, v, found := strings.Cut(kv, "=")
		on, valid := parseSwitch(v)
		if !found || !valid {
			return ErrUsage
		}
		switch strings.ToLower(k) {
		case "chat":
			s.SendToChat = on
		case "actionbar", "action_bar":
			s.SendToActionBar = on
		default:
			return ErrUsage
		}
	}
	b.Engine.Settings.Set(c, s)
	req.Reply("%s: chat=%s actionbar=%s", c, onOff(s.SendToChat), onOff(s.SendToActionBar))
	return nil
}

func (b builtins) history(_ context.Context, req *Request) error {
	limit, err := limitArg(req)
	if err != nil {
		return err
	}
	items := b.Engine.Dispatcher.History()
	if len(items) > limit {
		items = items[len(items)-limit:]
	}
	if len(items) == 0 {
		req.Reply("No deliveries yet")
		return nil
	}
	lines := make([]string, 0, len(items))
	for _, it := range items {
		chans := make([]string, len(it.Channels))
		for i, ch := range it.Channels {
			chans[i] = string(ch)
		}
		lines = append(lines, fmt.Sprintf("%s %s %s [%s] %s", it.At.Format(time.TimeOnly), it.Recipient.Name, it.Category, strings.Join(chans, ","), it.Text))
	}
	req.Reply("%s", strings.Join(lines, "\n"))
	return nil
}

func (b builtins) audit(ctx context.Context, req *Request) error {
	if b.Audit == nil {
		req.Reply("Audit storage is disabled")
		return nil
	}
	limit, err := limitArg(req)
	if err != nil {
		return err
	}
	entries, err := b.Audit.RecentAudit(ctx, limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		req.Reply("No sensitive commands recorded")
		return nil
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("%s %s %s %s -> %d admin(s)", e.At.Format(time.DateTime), e.ActorName, e.Command, strings.Join(e.Args, " "), e.Recipients))
	}
	req.Reply("%s", strings.Join(lines, "\n"))
	return nil
}

func limitArg(req *Request) (int, error) {
	if len(req.Args) == 0 {
		return defaultListLimit, nil
	}
	n, err := strconv.Atoi(req.Args[0])
	if err != nil || n <= 0 {
		return 0, ErrUsage
	}
	return n, nil
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
