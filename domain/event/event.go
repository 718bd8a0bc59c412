package event

import (
	"chat-relay/domain"

	"github.com/google/uuid"
)

// DomainEvent is anything deliverable to the sinks joined to a
// conversation's room.
type DomainEvent interface {
	Conversation() uuid.UUID
}

// NewMessage carries a persisted message to one recipient. IsFromMe is
// set per recipient so the sending client can reconcile its optimistic
// state with the canonical record.
type NewMessage struct {
	Message    domain.Message
	SenderName string
	IsFromMe   bool
}

func (e NewMessage) Conversation() uuid.UUID {
	return e.Message.ConversationID
}

type UserTyping struct {
	ConversationID uuid.UUID
	UserID         string
}

func (e UserTyping) Conversation() uuid.UUID {
	return e.ConversationID
}

type UserStoppedTyping struct {
	ConversationID uuid.UUID
	UserID         string
}

func (e UserStoppedTyping) Conversation() uuid.UUID {
	return e.ConversationID
}

// MessagesRead notifies a room that every pending message addressed to
// ReadBy has been marked read.
type MessagesRead struct {
	ConversationID uuid.UUID
	ReadBy         string
}

func (e MessagesRead) Conversation() uuid.UUID {
	return e.ConversationID
}
