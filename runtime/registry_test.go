package runtime

import (
	"chat-relay/auth"
	"chat-relay/domain/event"
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type Sink struct {
	name string
}

func (s *Sink) Consume(ctx context.Context, e event.DomainEvent) error {
	return nil
}

func identity(userID string) auth.Identity {
	return auth.Identity{UserID: userID, DisplayName: userID}
}

func TestRegistry_Bind_And_Lookup(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	userID := uuid.NewString()
	sink := &Sink{}

	// Given no user is connected
	req.Zero(registry.ActiveCount())

	// When a user binds
	replaced := registry.Bind(identity(userID), sink)

	// Then
	req.Nil(replaced)
	req.Equal(1, registry.ActiveCount())

	found, ok := registry.Lookup(userID)
	req.True(ok)
	req.Same(sink, found)
}

func TestRegistry_Bind_Last_Socket_Wins(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	userID := uuid.NewString()
	conversationID := uuid.New()
	first := &Sink{name: "first"}
	second := &Sink{name: "second"}

	// Given a bound connection joined to a room
	registry.Bind(identity(userID), first)
	req.True(registry.JoinRoom(userID, conversationID))

	// When the same identity authenticates a second connection
	replaced := registry.Bind(identity(userID), second)

	// Then the first connection is superseded
	req.Same(first, replaced)
	req.Equal(1, registry.ActiveCount())

	found, ok := registry.Lookup(userID)
	req.True(ok)
	req.Same(second, found)

	// And the new connection starts with no joined rooms
	req.False(registry.IsJoined(userID, conversationID))
}

func TestRegistry_Unbind_Only_Removes_Own_Binding(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	userID := uuid.NewString()
	first := &Sink{name: "first"}
	second := &Sink{name: "second"}

	registry.Bind(identity(userID), first)
	registry.Bind(identity(userID), second)

	// When the superseded connection disconnects late
	req.False(registry.Unbind(userID, first))

	// Then the replacing session survives
	req.Equal(1, registry.ActiveCount())

	// And the current connection can still unbind itself
	req.True(registry.Unbind(userID, second))
	req.Zero(registry.ActiveCount())
}

func TestRegistry_JoinRoom_Requires_Bound_Session(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	req.False(registry.JoinRoom(uuid.NewString(), uuid.New()))
}

func TestRegistry_SinksForRoom_Resolves_Joined_Connections(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	conversationID := uuid.New()
	alice, bob, clara := uuid.NewString(), uuid.NewString(), uuid.NewString()
	aliceSink, bobSink, claraSink := &Sink{}, &Sink{}, &Sink{}

	registry.Bind(identity(alice), aliceSink)
	registry.Bind(identity(bob), bobSink)
	registry.Bind(identity(clara), claraSink)

	registry.JoinRoom(alice, conversationID)
	registry.JoinRoom(bob, conversationID)
	// Clara is connected but never joined this room

	sinks := registry.SinksForRoom(conversationID)
	req.Len(sinks, 2)
	req.Same(aliceSink, sinks[alice])
	req.Same(bobSink, sinks[bob])
	req.NotContains(sinks, clara)
}

func TestRegistry_LeaveRoom(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	userID := uuid.NewString()
	conversationID := uuid.New()

	registry.Bind(identity(userID), &Sink{})
	registry.JoinRoom(userID, conversationID)
	req.True(registry.IsJoined(userID, conversationID))

	registry.LeaveRoom(userID, conversationID)
	req.False(registry.IsJoined(userID, conversationID))
}

func TestRegistry_Concurrent_Access(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	conversationID := uuid.New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			userID := fmt.Sprintf("user-%d", n)
			sink := &Sink{name: userID}
			registry.Bind(identity(userID), sink)
			registry.JoinRoom(userID, conversationID)
			registry.SinksForRoom(conversationID)
			registry.IsJoined(userID, conversationID)
			if n%2 == 0 {
				registry.Unbind(userID, sink)
			}
		}(i)
	}
	wg.Wait()

	req.Equal(25, registry.ActiveCount())
	req.Len(registry.SinksForRoom(conversationID), 25)
}
