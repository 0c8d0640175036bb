// Package collector correlates future gateway messages with suspended
// workflow instances. Each pending wait is an explicit record of who is
// being waited on, where, what counts as a match, and until when, so
// waits can be inspected and tested without the transport.
package collector

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/snowflake/v2"
)

// ErrTimeout is returned when no matching message arrives before the
// wait's deadline. The owning flow aborts with no side effects.
var ErrTimeout = errors.New("timed out waiting for message")

// Predicate decides whether a message completes a wait. The user and
// channel are already matched when the predicate runs.
type Predicate func(msg discord.Message) bool

type wait struct {
	userID    snowflake.ID
	channelID snowflake.ID
	predicate Predicate
	ch        chan discord.Message
}

// Manager holds the set of pending waits and matches incoming messages
// against them. One message completes at most one wait.
type Manager struct {
	mu    sync.Mutex
	waits map[*wait]struct{}
}

func New() *Manager {
	return &Manager{waits: make(map[*wait]struct{})}
}

// OnMessageCreate is the gateway listener entry point.
func (m *Manager) OnMessageCreate(e *events.MessageCreate) {
	if e.Message.Author.Bot {
		return
	}
	m.Dispatch(e.Message)
}

// Dispatch offers a message to the pending waits. It reports whether a
// wait claimed it.
func (m *Manager) Dispatch(msg discord.Message) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for w := range m.waits {
		if w.userID != msg.Author.ID || w.channelID != msg.ChannelID {
			continue
		}
		if w.predicate != nil && !w.predicate(msg) {
			continue
		}
		// Claimed exactly once: the wait is removed before handing the
		// message over, so a burst of matches cannot double-deliver.
		delete(m.waits, w)
		w.ch <- msg
		return true
	}
	return false
}

// Pending reports the number of suspended waits.
func (m *Manager) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.waits)
}

// Await suspends until the user sends a matching message in the channel,
// the timeout passes, or ctx is canceled. On timeout or cancel the wait
// is deregistered and ErrTimeout (or the context error) is returned.
func (m *Manager) Await(ctx context.Context, userID, channelID snowflake.ID, predicate Predicate, timeout time.Duration) (discord.Message, error) {
	w := &wait{
		userID:    userID,
		channelID: channelID,
		predicate: predicate,
		ch:        make(chan discord.Message, 1),
	}

	m.mu.Lock()
	m.waits[w] = struct{}{}
	m.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case msg := <-w.ch:
		return msg, nil
	case <-timer.C:
		m.remove(w)
		return discord.Message{}, ErrTimeout
	case <-ctx.Done():
		m.remove(w)
		return discord.Message{}, ctx.Err()
	}
}

func (m *Manager) remove(w *wait) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.waits, w)
}
