package workers

import (
	"chat-relay/domain"
	"chat-relay/mocks"
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func Test_Notifier_Delivers_Queued_Requests(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	notifier := mocks.NewMockINotifier(ctrl)
	worker := NewNotifierWorker(slog.Default(), notifier, 8, time.Second)

	notification := domain.PushNotification{
		RecipientID:    "bob",
		ConversationID: uuid.New(),
		SenderID:       "alice",
		Excerpt:        "hello",
	}

	delivered := make(chan domain.PushNotification, 1)
	notifier.EXPECT().
		Push(gomock.Any(), notification).
		DoAndReturn(func(_ context.Context, n domain.PushNotification) error {
			delivered <- n
			return nil
		})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = worker.Run(ctx) }()

	worker.Dispatch(notification)

	select {
	case n := <-delivered:
		req.Equal(notification, n)
	case <-time.After(2 * time.Second):
		t.Fatal("notification never reached the collaborator")
	}
}

func Test_Notifier_Swallows_Push_Failures(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	notifier := mocks.NewMockINotifier(ctrl)
	worker := NewNotifierWorker(slog.Default(), notifier, 8, time.Second)

	attempts := make(chan struct{}, 2)
	notifier.EXPECT().
		Push(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, domain.PushNotification) error {
			attempts <- struct{}{}
			return fmt.Errorf("push service down")
		}).
		Times(2)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = worker.Run(ctx) }()

	// A failed push must not stop the worker from draining the queue
	worker.Dispatch(domain.PushNotification{RecipientID: "bob"})
	worker.Dispatch(domain.PushNotification{RecipientID: "clara"})

	for i := 0; i < 2; i++ {
		select {
		case <-attempts:
		case <-time.After(2 * time.Second):
			t.Fatal("worker stopped after a failure")
		}
	}
	req.True(true)
}

func Test_Notifier_Drops_When_Queue_Full(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	notifier := mocks.NewMockINotifier(ctrl)
	// Worker is never run: the queue cannot drain
	worker := NewNotifierWorker(slog.Default(), notifier, 1, time.Second)

	worker.Dispatch(domain.PushNotification{RecipientID: "bob"})
	// Queue full: dropped without blocking and without touching the
	// collaborator (no Push expectation is set).
	worker.Dispatch(domain.PushNotification{RecipientID: "clara"})

	req.Len(worker.requests, 1)
}
