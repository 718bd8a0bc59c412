package sink

import (
	"chat-relay/domain/event"
	"context"
)

// ConnectionSink buffers room events for one live connection.
// The websocket write pump owns the receiving side of Events.
type ConnectionSink struct {
	Events chan event.DomainEvent
}

func NewConnectionSink(bufferSize int) *ConnectionSink {
	return &ConnectionSink{Events: make(chan event.DomainEvent, bufferSize)}
}

// Consume is called by the broadcast path.
// Redirect the event through the concerned owner of the channel;
// the websocket handler will take it from now. A full buffer means the
// connection cannot keep up: the event is dropped rather than blocking
// the pipeline (ephemeral delivery is best-effort per connection).
func (s *ConnectionSink) Consume(ctx context.Context, e event.DomainEvent) error {
	select {
	case s.Events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
