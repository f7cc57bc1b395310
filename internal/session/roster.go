// Package session tracks connected players and their notification relevant
// state: operator status, the admin-chat capability and the opt-out toggle.
//
// Flags are remembered by player id across leave and join, like a profile.
package session

import (
	"crypto/md5"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"mcnotify/internal/notification"
)

var (
	ErrNotOnline     = errors.New("player not online")
	ErrAlreadyOnline = errors.New("player already online")
	ErrInvalidName   = errors.New("invalid player name")
)

// Info is a point-in-time view of one online player.
type Info struct {
	Player    notification.Player
	Operator  bool
	AdminChat bool
	OptedOut  bool
	Since     time.Time
}

type profile struct {
	op        bool
	adminChat bool
	optedOut  bool
}

type online struct {
	player notification.Player
	since  time.Time
}

// Roster implements notification.Roster, notification.Privileges and
// notification.OptOutQuery. It is safe for concurrent use.
type Roster struct {
	mu       sync.RWMutex
	online   map[uuid.UUID]online
	byName   map[string]uuid.UUID // lower-cased name
	profiles map[uuid.UUID]*profile

	now func() time.Time
}

func New() *Roster {
	return &Roster{
		online:   map[uuid.UUID]online{},
		byName:   map[string]uuid.UUID{},
		profiles: map[uuid.UUID]*profile{},
		now:      time.Now,
	}
}

// OfflineID derives the stable id an offline-mode server assigns to name
// (a version 3 UUID of "OfflinePlayer:<name>").
func OfflineID(name string) uuid.UUID {
	sum := md5.Sum([]byte("OfflinePlayer:" + name))
	sum[6] = sum[6]&0x0f | 0x30
	sum[8] = sum[8]&0x3f | 0x80
	return uuid.UUID(sum)
}

// Join marks name as online and returns its player.
func (r *Roster) Join(name string) (notification.Player, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, " \t") {
		return notification.Player{}, ErrInvalidName
	}
	p := notification.Player{ID: OfflineID(name), Name: name}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[strings.ToLower(name)]; ok {
		return notification.Player{}, ErrAlreadyOnline
	}
	r.online[p.ID] = online{player: p, since: r.now()}
	r.byName[strings.ToLower(name)] = p.ID
	if r.profiles[p.ID] == nil {
		r.profiles[p.ID] = &profile{}
	}
	return p, nil
}

// Leave marks name as offline. Its profile flags are kept.
func (r *Roster) Leave(name string) (notification.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := strings.ToLower(strings.TrimSpace(name))
	id, ok := r.byName[key]
	if !ok {
		return notification.Player{}, ErrNotOnline
	}
	p := r.online[id].player
	delete(r.online, id)
	delete(r.byName, key)
	return p, nil
}

// Lookup finds an online player by name (case-insensitive).
func (r *Roster) Lookup(name string) (notification.Player, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return notification.Player{}, false
	}
	return r.online[id].player, true
}

// IsOnline reports whether the player with id is connected.
func (r *Roster) IsOnline(id uuid.UUID) bool {
	r.mu.RLock()
	_, ok := r.online[id]
	r.mu.RUnlock()
	return ok
}

// Online returns a snapshot of connected players ordered by join time.
func (r *Roster) Online() []notification.Player {
	infos := r.List()
	out := make([]notification.Player, len(infos))
	for i, in := range infos {
		out[i] = in.Player
	}
	return out
}

// List returns a snapshot of every online player with its flags.
func (r *Roster) List() []Info {
	r.mu.RLock()
	out := make([]Info, 0, len(r.online))
	for id, o := range r.online {
		out = append(out, r.infoLocked(id, o))
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Since.Equal(out[j].Since) {
			return out[i].Player.Name < out[j].Player.Name
		}
		return out[i].Since.Before(out[j].Since)
	})
	return out
}

// Info returns the flags of an online player.
func (r *Roster) Info(name string) (Info, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Info{}, ErrNotOnline
	}
	return r.infoLocked(id, r.online[id]), nil
}

func (r *Roster) infoLocked(id uuid.UUID, o online) Info {
	in := Info{Player: o.player, Since: o.since}
	if pr := r.profiles[id]; pr != nil {
		in.Operator = pr.op
		in.AdminChat = pr.adminChat
		in.OptedOut = pr.optedOut
	}
	return in
}

func (r *Roster) SetOperator(name string, v bool) error {
	return r.update(name, func(pr *profile) { pr.op = v })
}

func (r *Roster) SetAdminChat(name string, v bool) error {
	return r.update(name, func(pr *profile) { pr.adminChat = v })
}

func (r *Roster) SetOptOut(name string, v bool) error {
	return r.update(name, func(pr *profile) { pr.optedOut = v })
}

// ToggleOptOut flips the opt-out flag and returns the new value.
func (r *Roster) ToggleOptOut(name string) (bool, error) {
	var now bool
	err := r.update(name, func(pr *profile) {
		pr.optedOut = !pr.optedOut
		now = pr.optedOut
	})
	return now, err
}

func (r *Roster) update(name string, fn func(*profile)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return ErrNotOnline
	}
	pr := r.profiles[id]
	if pr == nil {
		pr = &profile{}
		r.profiles[id] = pr
	}
	fn(pr)
	return nil
}

func (r *Roster) profile(id uuid.UUID) profile {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if pr := r.profiles[id]; pr != nil {
		return *pr
	}
	return profile{}
}

func (r *Roster) IsOperator(p notification.Player) bool {
	return r.profile(p.ID).op
}

func (r *Roster) HasAdminChat(p notification.Player) bool {
	return r.profile(p.ID).adminChat
}

func (r *Roster) OptedOut(p notification.Player) bool {
	return r.profile(p.ID).optedOut
}
