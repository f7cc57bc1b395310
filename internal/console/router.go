// Package console routes operator command lines to the notification engine.
//
// A line is "<command> [subcommand...] [args...] [--flags]". The flag
// --as <player> runs the command as that online player instead of the
// server console, which is how player-issued commands are exercised.
package console

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"mcnotify/internal/notification"
	kit "mcnotify/internal/transport"
	logx "mcnotify/pkg/logx"
)

type Access int

const (
	AccessEveryone Access = iota
	AccessOperator
)

// ErrUsage makes the router reply with the command's usage line.
var ErrUsage = errors.New("usage")

type Command struct {
	// Route is a space-separated command path, e.g. "settings" or "xprate end".
	Route       string
	Aliases     []string
	Description string
	Usage       string
	Access      Access
	MinArgs     int
	Timeout     time.Duration
	Handle      HandlerFunc
}

type Request struct {
	Sender    notification.Sender
	Path      []string
	Args      []string // positionals
	RawArgs   []string
	Flags     map[string]string
	BoolFlags map[string]bool
	ReqID     string
	Log       logx.Logger
}

// Reply sends a formatted line back to the issuer.
func (r *Request) Reply(format string, a ...any) {
	msg := format
	if len(a) > 0 {
		msg = fmt.Sprintf(format, a...)
	}
	_ = r.Sender.SendMessage(msg)
}

// Player returns the issuing player, if the sender is one.
func (r *Request) Player() (notification.Player, bool) {
	if ps, ok := r.Sender.(notification.PlayerSender); ok {
		return ps.Player(), true
	}
	return notification.Player{}, false
}

func (r *Request) SenderName() string {
	if p, ok := r.Player(); ok {
		return p.Name
	}
	return "console"
}

// Arg returns positional i or def.
func (r *Request) Arg(i int, def string) string {
	if i < len(r.Args) {
		return r.Args[i]
	}
	return def
}

// Identities resolves who issues a command.
type Identities interface {
	Console() notification.Sender
	Player(name string) (notification.PlayerSender, error)
	IsOperator(p notification.Player) bool
}

// Router is the command manager: a route tree plus aliases.
//
// Commands run one at a time in arrival order.
type Router struct {
	mu    sync.RWMutex
	root  *cmdNode
	alias map[string]*cmdNode

	ids     Identities
	log     logx.Logger
	timeout time.Duration
	execMu  sync.Mutex
}

func NewRouter(ids Identities, log logx.Logger, timeout time.Duration) *Router {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Router{root: newRoot(), alias: map[string]*cmdNode{}, ids: ids, log: log, timeout: timeout}
}

// SetRegistry installs cmds plus the built-in help command.
func (m *Router) SetRegistry(cmds []Command) {
	helper := Command{
		Route:       "help",
		Aliases:     []string{"?"},
		Description: "show help",
		Usage:       "help [command] [sub...]",
		Handle: func(_ context.Context, req *Request) error {
			req.Reply("%s", m.helpText(lowerAll(req.Args)))
			return nil
		},
	}
	cmds = append(cmds, helper)

	root := newRoot()
	alias := map[string]*cmdNode{}
	for _, c := range cmds {
		route := splitRoute(c.Route)
		if len(route) == 0 || c.Handle == nil {
			continue
		}
		root.add(route, c)
		leaf := root.find(route)
		for _, a := range c.Aliases {
			a = strings.ToLower(strings.TrimSpace(a))
			if a == "" || strings.Contains(a, " ") {
				continue
			}
			alias[a] = leaf
		}
	}

	m.mu.Lock()
	m.root = root
	m.alias = alias
	m.mu.Unlock()
}

// DispatchLoop executes updates until ctx is done or updates is closed.
func (m *Router) DispatchLoop(ctx context.Context, updates <-chan kit.Update) error {
	m.log.Info("command router started")
	for {
		select {
		case <-ctx.Done():
			m.log.Info("command router stopped", logx.Err(ctx.Err()))
			return nil
		case up, ok := <-updates:
			if !ok {
				m.log.Info("command router stopped (updates channel closed)")
				return nil
			}
			_ = m.Execute(ctx, up.Text)
		}
	}
}

// Execute runs one command line. Failures are reported to the issuer and
// returned.
func (m *Router) Execute(ctx context.Context, line string) error {
	parts := tokenizeCommandLine(strings.TrimPrefix(strings.TrimSpace(line), "/"))
	if len(parts) == 0 {
		return nil
	}
	word := strings.ToLower(parts[0])
	args := parts[1:]

	m.mu.RLock()
	rootNode := m.root
	aliasMap := m.alias
	m.mu.RUnlock()

	var (
		cur  *cmdNode
		path []string
	)
	if leaf, ok := aliasMap[word]; ok && leaf.cmd != nil {
		cur, path = leaf, splitRoute(leaf.cmd.Route)
	} else if n, ok := rootNode.child(word); ok {
		cur, path = n, []string{word}
		for len(args) > 0 && !strings.HasPrefix(args[0], "--") {
			child, ok := cur.child(strings.ToLower(args[0]))
			if !ok {
				break
			}
			cur = child
			path = append(path, child.name)
			args = args[1:]
		}
	}

	pos, flags, bools := parseFlags(args)
	sender, err := m.sender(flags)
	if err != nil {
		_ = m.ids.Console().SendMessage(err.Error())
		return err
	}
	delete(flags, "as")

	if cur == nil {
		_ = sender.SendMessage("Unknown command. Try help")
		return fmt.Errorf("unknown command %q", word)
	}
	if cur.cmd == nil {
		_ = sender.SendMessage(m.helpText(path))
		return nil
	}
	cmd := *cur.cmd

	rid := newReqID()
	req := &Request{
		Sender:    sender,
		Path:      path,
		Args:      pos,
		RawArgs:   args,
		Flags:     flags,
		BoolFlags: bools,
		ReqID:     rid,
	}
	req.Log = m.log.With(logx.String("rid", rid), logx.String("cmd", cmd.Route))

	if cmd.Access == AccessOperator {
		if p, ok := req.Player(); ok && !m.ids.IsOperator(p) {
			req.Reply("You don't have permission to use this command.")
			return fmt.Errorf("%s: permission denied for %s", cmd.Route, p.Name)
		}
	}
	if len(pos) < cmd.MinArgs {
		req.Reply("Usage: %s", cmd.Usage)
		return ErrUsage
	}

	timeout := cmd.Timeout
	if timeout <= 0 {
		timeout = m.timeout
	}
	final := Chain(cmd.Handle,
		MWPanicRecover(),
		MWRequestLog(),
		MWTimeout(timeout),
	)

	m.execMu.Lock()
	err = final(ctx, req)
	m.execMu.Unlock()

	switch {
	case err == nil:
	case errors.Is(err, ErrUsage):
		req.Reply("Usage: %s", cmd.Usage)
	default:
		req.Reply("Error: %v", err)
	}
	return err
}

func (m *Router) sender(flags map[string]string) (notification.Sender, error) {
	name, ok := flags["as"]
	if !ok {
		return m.ids.Console(), nil
	}
	ps, err := m.ids.Player(name)
	if err != nil {
		return nil, fmt.Errorf("cannot run as %s: %w", name, err)
	}
	return ps, nil
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
