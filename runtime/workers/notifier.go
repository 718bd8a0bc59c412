package workers

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"context"
	"log/slog"
	"time"
)

// NotifierWorker drains queued push requests and hands them to the
// external collaborator, detached from the message pipeline. Dispatch
// never blocks a send: a full queue drops the request with a warning,
// and a failed push is logged and swallowed. Runs under the supervisor
// so a panicking HTTP round-trip cannot take the process down.
type NotifierWorker struct {
	log         *slog.Logger
	notifier    contract.INotifier
	requests    chan domain.PushNotification
	pushTimeout time.Duration
}

func NewNotifierWorker(log *slog.Logger, notifier contract.INotifier,
	bufferSize int, pushTimeout time.Duration) *NotifierWorker {
	return &NotifierWorker{
		log:         log,
		notifier:    notifier,
		requests:    make(chan domain.PushNotification, bufferSize),
		pushTimeout: pushTimeout,
	}
}

// Dispatch enqueues a push request without blocking the caller.
func (w *NotifierWorker) Dispatch(n domain.PushNotification) {
	select {
	case w.requests <- n:
	default:
		w.log.Warn("Notification queue full, dropping request",
			"recipient", n.RecipientID,
			"conversation_id", n.ConversationID)
	}
}

func (w *NotifierWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping notification dispatch")
			return nil
		case n := <-w.requests:
			pushCtx, cancel := context.WithTimeout(ctx, w.pushTimeout)
			if err := w.notifier.Push(pushCtx, n); err != nil {
				w.log.Error("Push notification failed",
					"recipient", n.RecipientID,
					"conversation_id", n.ConversationID,
					"error", err)
			}
			cancel()
		}
	}
}
