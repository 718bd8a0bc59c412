//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-relay/auth"
	"chat-relay/domain"
	"chat-relay/domain/event"
	"context"
	"reflect"
	"time"

	"github.com/google/uuid"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink is one live connection's inbox for room events.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// IRegistry is the process-wide session registry. It is the single
// source of truth for "is this user online, and on which connection",
// plus the set of rooms each connection has joined. Rooms are bound to
// the connection, not the identity: a replacing login starts with no
// joined rooms.
type IRegistry interface {
	// Bind registers identity -> sink, replacing any prior binding for
	// that user. The superseded sink is returned, nil otherwise.
	Bind(identity auth.Identity, sink EventSink) EventSink
	// Lookup resolves a user to its currently bound sink.
	Lookup(userID string) (EventSink, bool)
	// Unbind removes the binding only if sink is still the bound one,
	// so a superseded connection's disconnect cannot evict its
	// successor. Reports whether a binding was removed.
	Unbind(userID string, sink EventSink) bool
	JoinRoom(userID string, conversationID uuid.UUID) bool
	LeaveRoom(userID string, conversationID uuid.UUID)
	IsJoined(userID string, conversationID uuid.UUID) bool
	// SinksForRoom resolves every member currently joined to the room
	// to their live sink, keyed by user id.
	SinksForRoom(conversationID uuid.UUID) map[string]EventSink
	ActiveCount() int
}

type IConversationRepository interface {
	Get(id uuid.UUID) (domain.Conversation, error)
	// FindForMember returns the conversation only when it exists, is
	// not soft-deleted and lists userID as a member. Any other outcome
	// is ErrNotMember; the caller cannot tell absence from exclusion.
	FindForMember(id uuid.UUID, userID string) (domain.Conversation, error)
	Create(c domain.Conversation) error
	// Touch bumps the last-message reference and last-activity
	// timestamp after a successful persist.
	Touch(id uuid.UUID, lastMessageID uuid.UUID, at time.Time) error
}

type IMessageRepository interface {
	Store(m domain.Message) error
	List(conversationID uuid.UUID) ([]domain.Message, error)
	// MarkRead flips every unread message in the conversation not sent
	// by readerID. Idempotent; returns the number of flipped records.
	MarkRead(conversationID uuid.UUID, readerID string, at time.Time) (int, error)
}

// INotifier delivers one out-of-band push request. Best-effort by
// contract: callers log failures and move on.
type INotifier interface {
	Push(ctx context.Context, n domain.PushNotification) error
}

// IDispatcher accepts notification requests without blocking the
// message pipeline.
type IDispatcher interface {
	Dispatch(n domain.PushNotification)
}

type IChatService interface {
	Authenticate(ctx context.Context, token string, sink EventSink) (auth.Identity, error)
	Join(ctx context.Context, token string, conversationID uuid.UUID) error
	Send(ctx context.Context, cmd domain.SendCommand) (domain.Message, error)
	Typing(ctx context.Context, userID string, conversationID uuid.UUID, active bool) error
	MarkRead(ctx context.Context, userID string, conversationID uuid.UUID) error
	Disconnect(userID string, sink EventSink)
}
