package ws

import (
	"chat-relay/domain"
	"chat-relay/domain/event"
	"encoding/json"
	"time"

	"github.com/samber/lo"
)

// Envelope is the discriminated frame exchanged with clients:
// {"event": "<name>", "data": {...}}. Payloads are decoded per signal
// name before anything reaches the service.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

const (
	SignalAuthenticate = "authenticate"
	SignalJoinChat     = "join_chat"
	SignalSendMessage  = "send_message"
	SignalTyping       = "typing"
	SignalStopTyping   = "stop_typing"
	SignalMarkRead     = "mark_read"

	EventAuthenticated     = "authenticated"
	EventNewMessage        = "new_message"
	EventUserTyping        = "user_typing"
	EventUserStoppedTyping = "user_stopped_typing"
	EventMessagesRead      = "messages_read"
	EventError             = "error"
)

type AuthenticatePayload struct {
	Token string `json:"token"`
}

type RoomPayload struct {
	ConversationID string `json:"conversationId"`
	Token          string `json:"token"`
}

type AttachmentPayload struct {
	URL  string `json:"url"`
	Kind string `json:"kind"`
	Name string `json:"name"`
}

type SendMessagePayload struct {
	ConversationID string              `json:"conversationId"`
	Content        string              `json:"content"`
	MessageType    string              `json:"messageType"`
	Attachments    []AttachmentPayload `json:"attachments"`
	Token          string              `json:"token"`
}

type MessageFrame struct {
	ID             string              `json:"id"`
	ConversationID string              `json:"conversationId"`
	SenderID       string              `json:"senderId"`
	SenderName     string              `json:"senderName,omitempty"`
	Content        string              `json:"content"`
	MessageType    string              `json:"messageType"`
	Attachments    []AttachmentPayload `json:"attachments,omitempty"`
	IsRead         bool                `json:"isRead"`
	SentAt         time.Time           `json:"sentAt"`
	IsFromMe       bool                `json:"isFromMe"`
}

type TypingFrame struct {
	ConversationID string `json:"conversationId"`
	UserID         string `json:"userId"`
}

type MessagesReadFrame struct {
	ConversationID string `json:"conversationId"`
	ReadBy         string `json:"readBy"`
}

type AuthenticatedFrame struct {
	UserID string `json:"userId"`
}

type ErrorFrame struct {
	Message string `json:"message"`
}

func toAttachments(attachments []domain.Attachment) []AttachmentPayload {
	return lo.Map(attachments, func(a domain.Attachment, _ int) AttachmentPayload {
		return AttachmentPayload{URL: a.URL, Kind: a.Kind, Name: a.Name}
	})
}

func fromAttachments(attachments []AttachmentPayload) []domain.Attachment {
	return lo.Map(attachments, func(a AttachmentPayload, _ int) domain.Attachment {
		return domain.Attachment{URL: a.URL, Kind: a.Kind, Name: a.Name}
	})
}

// toFrame converts a room event into its outbound envelope.
// Unknown event kinds yield ok=false and are skipped by the write pump.
func toFrame(e event.DomainEvent) (string, any, bool) {
	switch evt := e.(type) {
	case event.NewMessage:
		return EventNewMessage, MessageFrame{
			ID:             evt.Message.ID.String(),
			ConversationID: evt.Message.ConversationID.String(),
			SenderID:       evt.Message.SenderID,
			SenderName:     evt.SenderName,
			Content:        evt.Message.Content,
			MessageType:    string(evt.Message.Kind),
			Attachments:    toAttachments(evt.Message.Attachments),
			IsRead:         evt.Message.Read,
			SentAt:         evt.Message.SentAt,
			IsFromMe:       evt.IsFromMe,
		}, true
	case event.UserTyping:
		return EventUserTyping, TypingFrame{
			ConversationID: evt.ConversationID.String(),
			UserID:         evt.UserID,
		}, true
	case event.UserStoppedTyping:
		return EventUserStoppedTyping, TypingFrame{
			ConversationID: evt.ConversationID.String(),
			UserID:         evt.UserID,
		}, true
	case event.MessagesRead:
		return EventMessagesRead, MessagesReadFrame{
			ConversationID: evt.ConversationID.String(),
			ReadBy:         evt.ReadBy,
		}, true
	default:
		return "", nil, false
	}
}
