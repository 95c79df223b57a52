package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"lonetown/app/models"
)

var testNow = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

type emitted struct {
	Event   string
	Payload interface{}
}

type fakeConn struct {
	id     string
	mu     sync.Mutex
	events []emitted
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: id}
}

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Emit(event string, payload interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, emitted{Event: event, Payload: payload})
}

func (c *fakeConn) Events(event string) []emitted {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []emitted
	for _, e := range c.events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

// clock is a settable time source shared by the services under test
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type chatFixture struct {
	clock    *clock
	messages *MemoryMessageStore
	states   *MatchStateService
	rooms    *Broadcaster
	chat     *ChatService
}

func newChatFixture() *chatFixture {
	clk := &clock{now: testNow}
	messages := NewMemoryMessageStore()
	states := NewMatchStateService(NewMemoryStateStore(), messages)
	states.now = clk.Now
	rooms := NewBroadcaster()
	chat := NewChatService(messages, states, rooms)
	chat.now = clk.Now

	return &chatFixture{
		clock:    clk,
		messages: messages,
		states:   states,
		rooms:    rooms,
		chat:     chat,
	}
}

func seedProfiles(t *testing.T, store ProfileStore, profiles ...models.Profile) {
	t.Helper()
	for _, p := range profiles {
		require.NoError(t, store.Save(context.Background(), p))
	}
}
