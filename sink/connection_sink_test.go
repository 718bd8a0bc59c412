package sink

import (
	"chat-relay/domain/event"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func Test_Consume_Buffers_Events(t *testing.T) {
	req := require.New(t)
	s := NewConnectionSink(2)
	e := event.MessagesRead{ConversationID: uuid.New(), ReadBy: "alice"}

	req.NoError(s.Consume(context.Background(), e))
	req.Equal(e, <-s.Events)
}

func Test_Consume_Drops_When_Full(t *testing.T) {
	req := require.New(t)
	s := NewConnectionSink(1)
	e := event.MessagesRead{ConversationID: uuid.New(), ReadBy: "alice"}

	req.NoError(s.Consume(context.Background(), e))
	// Second event exceeds the buffer: dropped, never blocks the caller
	req.NoError(s.Consume(context.Background(), e))
	req.Len(s.Events, 1)
}

func Test_Consume_Honors_Cancellation(t *testing.T) {
	req := require.New(t)
	s := NewConnectionSink(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A canceled context with a full buffer reports the cancellation
	req.NoError(s.Consume(context.Background(), event.MessagesRead{}))
	req.ErrorIs(s.Consume(ctx, event.MessagesRead{}), context.Canceled)
}
