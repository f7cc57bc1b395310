package storage

import (
	"errors"
	"time"
)

var ErrDisabled = errors.New("storage disabled")

// Config configures storage.
//
// If Driver is empty or "none", storage is disabled.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// AuditEntry records one use of a sensitive admin command.
// Keep it compact and schema-stable.
type AuditEntry struct {
	At         time.Time `json:"at"`
	ActorID    string    `json:"actor_id,omitempty"`
	ActorName  string    `json:"actor_name"`
	Command    string    `json:"command"`
	Args       []string  `json:"args,omitempty"`
	Recipients int       `json:"recipients"`
}
