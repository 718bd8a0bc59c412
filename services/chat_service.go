package services

import (
	"chat-relay/auth"
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/errors"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const excerptLength = 120

// ChatService holds the relay's behavioral core: session binding,
// room admission, the send pipeline, the typing relay and read
// receipts. Authorization is re-checked per operation against the
// conversation store, never cached on the session.
type ChatService struct {
	log              *slog.Logger
	verifier         *auth.Verifier
	conversations    contract.IConversationRepository
	messages         contract.IMessageRepository
	registry         contract.IRegistry
	dispatcher       contract.IDispatcher
	maxContentLength int
}

func NewChatService(
	log *slog.Logger,
	verifier *auth.Verifier,
	conversations contract.IConversationRepository,
	messages contract.IMessageRepository,
	registry contract.IRegistry,
	dispatcher contract.IDispatcher,
	maxContentLength int,
) *ChatService {
	return &ChatService{
		log:              log,
		verifier:         verifier,
		conversations:    conversations,
		messages:         messages,
		registry:         registry,
		dispatcher:       dispatcher,
		maxContentLength: maxContentLength,
	}
}

// Authenticate binds the token's identity to the connection's sink.
// A second login for the same identity silently supersedes the first:
// the registry holds at most one connection per user.
func (s *ChatService) Authenticate(ctx context.Context, token string, sink contract.EventSink) (auth.Identity, error) {
	identity, err := s.verifier.Verify(token)
	if err != nil {
		return auth.Identity{}, err
	}

	if replaced := s.registry.Bind(identity, sink); replaced != nil {
		s.log.Info("Session superseded by a new connection", "user_id", identity.UserID)
	}
	return identity, nil
}

// Join admits the caller's connection to a conversation's room after
// the membership authority has cleared it, then implicitly marks the
// conversation read for the joiner.
func (s *ChatService) Join(ctx context.Context, token string, conversationID uuid.UUID) error {
	identity, err := s.verifier.Verify(token)
	if err != nil {
		return err
	}

	if _, err := s.conversations.FindForMember(conversationID, identity.UserID); err != nil {
		return err
	}

	if !s.registry.JoinRoom(identity.UserID, conversationID) {
		return errors.ErrSessionNotBound
	}

	return s.MarkRead(ctx, identity.UserID, conversationID)
}

// Send runs the message pipeline: validate, authorize, persist,
// broadcast, then decide who needs an out-of-band notification.
func (s *ChatService) Send(ctx context.Context, cmd domain.SendCommand) (domain.Message, error) {
	if err := s.validateSend(cmd); err != nil {
		return domain.Message{}, err
	}

	identity, err := s.verifier.Verify(cmd.Token)
	if err != nil {
		return domain.Message{}, err
	}

	conversation, err := s.conversations.FindForMember(cmd.ConversationID, identity.UserID)
	if err != nil {
		return domain.Message{}, err
	}

	kind := cmd.Kind
	if kind == "" {
		kind = domain.KindText
	}
	message := domain.Message{
		ID:             uuid.New(),
		ConversationID: cmd.ConversationID,
		SenderID:       identity.UserID,
		Content:        cmd.Content,
		Kind:           kind,
		Attachments:    cmd.Attachments,
		Read:           false,
		SentAt:         time.Now().UTC(),
	}

	// Durability barrier: nothing is surfaced to clients unless both
	// writes succeeded. The two writes are separate transactions, so a
	// crash in between leaves the summary stale but the message intact.
	if err := s.messages.Store(message); err != nil {
		return domain.Message{}, err
	}
	if err := s.conversations.Touch(conversation.ID, message.ID, message.SentAt); err != nil {
		return domain.Message{}, err
	}

	s.broadcast(ctx, event.NewMessage{Message: message, SenderName: identity.DisplayName})

	s.decideNotifications(conversation, message)

	return message, nil
}

func (s *ChatService) validateSend(cmd domain.SendCommand) error {
	if cmd.Token == "" {
		return fmt.Errorf("%w: missing token", errors.ErrInvalidRequest)
	}
	if cmd.Content == "" && len(cmd.Attachments) == 0 {
		return fmt.Errorf("%w: empty content and no attachments", errors.ErrInvalidRequest)
	}
	if len([]rune(cmd.Content)) > s.maxContentLength {
		return fmt.Errorf("%w: content exceeds %d characters", errors.ErrInvalidRequest, s.maxContentLength)
	}
	return nil
}

// broadcast delivers a NewMessage to every connection joined to the
// room, stamping IsFromMe per recipient.
func (s *ChatService) broadcast(ctx context.Context, e event.NewMessage) {
	for userID, sink := range s.registry.SinksForRoom(e.Conversation()) {
		delivered := e
		delivered.IsFromMe = userID == e.Message.SenderID
		if err := sink.Consume(ctx, delivered); err != nil {
			s.log.Warn("Event delivery failed",
				"user_id", userID,
				"conversation_id", e.Conversation(),
				"error", err)
		}
	}
}

// decideNotifications requests a push for every member who is not
// reachable in-room. Reachable means a bound session whose connection
// is currently joined to this room; a user connected elsewhere still
// gets a push. The sender is always exempt.
func (s *ChatService) decideNotifications(conversation domain.Conversation, message domain.Message) {
	for _, member := range conversation.Recipients(message.SenderID) {
		if s.registry.IsJoined(member, conversation.ID) {
			continue
		}
		s.dispatcher.Dispatch(domain.PushNotification{
			RecipientID:    member,
			ConversationID: conversation.ID,
			SenderID:       message.SenderID,
			Excerpt:        message.Excerpt(excerptLength),
		})
	}
}

// Typing relays an ephemeral typing signal to every other connection
// in the room. No persistence, no membership re-check: membership was
// cleared at join time and the room admission is the precondition.
func (s *ChatService) Typing(ctx context.Context, userID string, conversationID uuid.UUID, active bool) error {
	if !s.registry.IsJoined(userID, conversationID) {
		return errors.ErrNotJoined
	}

	var e event.DomainEvent
	if active {
		e = event.UserTyping{ConversationID: conversationID, UserID: userID}
	} else {
		e = event.UserStoppedTyping{ConversationID: conversationID, UserID: userID}
	}

	for memberID, sink := range s.registry.SinksForRoom(conversationID) {
		if memberID == userID {
			continue
		}
		if err := sink.Consume(ctx, e); err != nil {
			s.log.Debug("Typing signal dropped", "user_id", memberID, "error", err)
		}
	}
	return nil
}

// MarkRead flips every unread message not sent by the reader, then
// announces the read event to the room. The store update is idempotent;
// the broadcast is emitted on every invocation.
func (s *ChatService) MarkRead(ctx context.Context, userID string, conversationID uuid.UUID) error {
	flipped, err := s.messages.MarkRead(conversationID, userID, time.Now().UTC())
	if err != nil {
		return err
	}
	if flipped > 0 {
		s.log.Debug("Messages marked read",
			"conversation_id", conversationID,
			"reader", userID,
			"count", flipped)
	}

	e := event.MessagesRead{ConversationID: conversationID, ReadBy: userID}
	for memberID, sink := range s.registry.SinksForRoom(conversationID) {
		if err := sink.Consume(ctx, e); err != nil {
			s.log.Debug("Read event dropped", "user_id", memberID, "error", err)
		}
	}
	return nil
}

// Disconnect releases the session on transport-level termination.
// The sink guard keeps a superseded connection's late disconnect from
// evicting the login that replaced it.
func (s *ChatService) Disconnect(userID string, sink contract.EventSink) {
	if s.registry.Unbind(userID, sink) {
		s.log.Debug("Session unbound", "user_id", userID)
	}
}
