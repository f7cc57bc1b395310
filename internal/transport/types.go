// Package transport holds the types shared by inbound console transports.
package transport

import (
	"context"
	"time"
)

// Update is one inbound command line.
type Update struct {
	Text string
	At   time.Time
}

// Adapter produces updates until stopped.
type Adapter interface {
	Start(ctx context.Context, out chan<- Update) error
	Stop(ctx context.Context) error
}
