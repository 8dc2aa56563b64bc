package notifications

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// ConnectionAlerts turns feed connectivity changes into webhook messages.
// Observe never blocks; messages are delivered by Run.
type ConnectionAlerts struct {
	sender *Sender
	msgs   chan string
	now    func() time.Time

	mu        sync.Mutex
	connected bool
	seen      bool
	downSince time.Time
}

func NewConnectionAlerts(sender *Sender) *ConnectionAlerts {
	return &ConnectionAlerts{
		sender: sender,
		msgs:   make(chan string, 16),
		now:    time.Now,
	}
}

// Observe records the current connectivity. Only edges produce a message:
// the first successful connection, a loss of a live connection and the
// recovery from that loss.
func (a *ConnectionAlerts) Observe(connected bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	switch {
	case connected && !a.seen:
		a.seen = true
		a.enqueue("quote feed connected")
	case connected && !a.connected:
		a.enqueue(fmt.Sprintf("quote feed recovered after %s", now.Sub(a.downSince).Round(time.Second)))
	case !connected && a.connected:
		a.downSince = now
		a.enqueue("quote feed disconnected, reconnecting")
	}
	a.connected = connected
}

func (a *ConnectionAlerts) enqueue(msg string) {
	select {
	case a.msgs <- msg:
	default:
		// A flapping feed fills the queue; older messages are still pending.
	}
}

// Run delivers queued messages until ctx is cancelled.
func (a *ConnectionAlerts) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-a.msgs:
			_ = a.sender.Send(ctx, msg)
		}
	}
}
