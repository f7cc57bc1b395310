package notification

import (
	"runtime/debug"
	"sync"

	"mcnotify/internal/eventbus"
	logx "mcnotify/pkg/logx"
)

type observerEntry struct {
	id   uint64
	name string
	fn   Observer
}

// Gateway is the entry point for player notifications. It skips opted-out
// players, offers each event to the registered observers and hands surviving
// events to the Dispatcher.
//
// It is safe for concurrent use; observers may be registered at any time.
type Gateway struct {
	optOut     OptOutQuery
	renderer   *Renderer
	dispatcher *Dispatcher
	log        logx.Logger
	bus        eventbus.Publisher

	mu        sync.RWMutex
	seq       uint64
	observers []observerEntry
}

func NewGateway(optOut OptOutQuery, renderer *Renderer, dispatcher *Dispatcher, log logx.Logger, bus eventbus.Publisher) *Gateway {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Gateway{
		optOut:     optOut,
		renderer:   renderer,
		dispatcher: dispatcher,
		log:        log,
		bus:        bus,
	}
}

// Register appends an observer to the chain. Observers run in registration
// order. The returned func removes it.
func (g *Gateway) Register(name string, fn Observer) (unregister func()) {
	if fn == nil {
		return func() {}
	}
	g.mu.Lock()
	g.seq++
	id := g.seq
	g.observers = append(g.observers, observerEntry{id: id, name: name, fn: fn})
	g.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			defer g.mu.Unlock()
			for i, o := range g.observers {
				if o.id == id {
					g.observers = append(g.observers[:i:i], g.observers[i+1:]...)
					return
				}
			}
		})
	}
}

// OptedOut reports whether p should receive nothing at all.
func (g *Gateway) OptedOut(p Player) bool {
	return g.optOut != nil && g.optOut.OptedOut(p)
}

// Notify renders key for p and dispatches it under category c.
// Opted-out players are skipped before rendering.
func (g *Gateway) Notify(p Player, c Category, key string, params ...string) error {
	if g.OptedOut(p) {
		g.skipped(p, c)
		return nil
	}
	t, err := g.renderer.Render(key, params...)
	if err != nil {
		return err
	}
	g.dispatch(p, c, t)
	return nil
}

// Dispatch offers already-rendered text for p to the observer chain and
// delivers it unless cancelled. It reports whether the event was delivered
// to the dispatcher.
func (g *Gateway) Dispatch(p Player, c Category, t Text) bool {
	if g.OptedOut(p) {
		g.skipped(p, c)
		return false
	}
	return g.dispatch(p, c, t)
}

func (g *Gateway) dispatch(p Player, c Category, t Text) bool {
	ev := &Event{Recipient: p, Category: c, Text: t}
	if g.offer(ev) {
		g.log.Debug("notification cancelled", logx.String("player", p.Name), logx.String("category", string(c)))
		publish(g.bus, EventCancelled, LifecycleEvent{Recipient: p.Name, Category: c})
		return false
	}
	if g.dispatcher != nil {
		g.dispatcher.Deliver(ev)
	}
	return true
}

// offer runs the full chain and returns the accumulated cancellation.
func (g *Gateway) offer(ev *Event) bool {
	g.mu.RLock()
	chain := append([]observerEntry(nil), g.observers...)
	g.mu.RUnlock()

	cancelled := false
	for _, o := range chain {
		g.call(o, ev)
		cancelled = cancelled || ev.Cancelled()
	}
	return cancelled
}

func (g *Gateway) call(o observerEntry, ev *Event) {
	defer func() {
		if r := recover(); r != nil {
			g.log.Error("panic in notification observer",
				logx.String("observer", o.name),
				logx.Any("panic", r),
				logx.String("stack", string(debug.Stack())),
			)
		}
	}()
	o.fn(ev)
}

func (g *Gateway) skipped(p Player, c Category) {
	publish(g.bus, EventSkipped, LifecycleEvent{Recipient: p.Name, Category: c, Reason: "opted_out"})
}
