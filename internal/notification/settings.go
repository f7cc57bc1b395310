package notification

import (
	"sort"
	"sync"

	logx "mcnotify/pkg/logx"
)

// DeliverySettings selects the channels a category is written to.
type DeliverySettings struct {
	SendToChat      bool `json:"send_to_chat"`
	SendToActionBar bool `json:"send_to_action_bar"`
}

// DefaultSettings applies to a category with no explicit entry:
// chat only, since the action bar needs styled text.
var DefaultSettings = DeliverySettings{SendToChat: true}

// Registry holds the per-category delivery policy.
//
// Entries are replaced whole, so a concurrent Get always observes a complete
// DeliverySettings value. It is safe for concurrent use.
type Registry struct {
	entries sync.Map // Category -> DeliverySettings

	log    logx.Logger
	warned sync.Map // Category -> struct{}
}

// NewRegistry seeds a registry from a configuration snapshot.
// The snapshot is copied; later changes to it have no effect.
func NewRegistry(snapshot map[Category]DeliverySettings, log logx.Logger) *Registry {
	if log.IsZero() {
		log = logx.Nop()
	}
	r := &Registry{log: log}
	for c, s := range snapshot {
		r.entries.Store(c, s)
	}
	return r
}

// Get returns the policy for c, or DefaultSettings if c has none.
// The gap is logged once per category.
func (r *Registry) Get(c Category) DeliverySettings {
	if v, ok := r.entries.Load(c); ok {
		return v.(DeliverySettings)
	}
	if _, seen := r.warned.LoadOrStore(c, struct{}{}); !seen {
		r.log.Warn("no delivery settings for category; using default",
			logx.String("category", string(c)),
			logx.Bool("chat", DefaultSettings.SendToChat),
			logx.Bool("action_bar", DefaultSettings.SendToActionBar),
		)
	}
	return DefaultSettings
}

// Set replaces the policy for c. It takes effect for the next send.
func (r *Registry) Set(c Category, s DeliverySettings) {
	r.entries.Store(c, s)
	r.warned.Delete(c)
}

// Replace installs a new snapshot. Categories missing from it fall back to
// DefaultSettings afterwards.
func (r *Registry) Replace(snapshot map[Category]DeliverySettings) {
	r.entries.Range(func(k, _ any) bool {
		if _, keep := snapshot[k.(Category)]; !keep {
			r.entries.Delete(k)
		}
		return true
	})
	for c, s := range snapshot {
		r.Set(c, s)
	}
}

// Snapshot returns the explicit entries.
func (r *Registry) Snapshot() map[Category]DeliverySettings {
	out := map[Category]DeliverySettings{}
	r.entries.Range(func(k, v any) bool {
		out[k.(Category)] = v.(DeliverySettings)
		return true
	})
	return out
}

// SortedCategories returns the keys of a settings map in a stable order.
func SortedCategories(m map[Category]DeliverySettings) []Category {
	out := make([]Category, 0, len(m))
	for c := range m {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
