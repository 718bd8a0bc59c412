package ws

import (
	"chat-relay/domain"
	"chat-relay/domain/event"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func Test_Envelope_Decodes_Per_Signal(t *testing.T) {
	req := require.New(t)

	raw := []byte(`{"event":"send_message","data":{"conversationId":"b1946ac9-2d0a-4b1e-a1c3-12c13c6c7a6e","content":"hi","messageType":"text","token":"abc"}}`)
	var envelope Envelope
	req.NoError(json.Unmarshal(raw, &envelope))
	req.Equal(SignalSendMessage, envelope.Event)

	var payload SendMessagePayload
	req.NoError(json.Unmarshal(envelope.Data, &payload))
	req.Equal("hi", payload.Content)
	req.Equal("abc", payload.Token)
}

func Test_ToFrame_NewMessage(t *testing.T) {
	req := require.New(t)
	sentAt := time.Now().UTC()
	message := domain.Message{
		ID:             uuid.New(),
		ConversationID: uuid.New(),
		SenderID:       "alice",
		Content:        "hello",
		Kind:           domain.KindText,
		Attachments:    []domain.Attachment{{URL: "https://cdn.example.com/a.png", Kind: "image", Name: "a.png"}},
		SentAt:         sentAt,
	}

	name, data, ok := toFrame(event.NewMessage{Message: message, SenderName: "Alice", IsFromMe: true})
	req.True(ok)
	req.Equal(EventNewMessage, name)

	frame, isFrame := data.(MessageFrame)
	req.True(isFrame)
	req.Equal(message.ID.String(), frame.ID)
	req.Equal("alice", frame.SenderID)
	req.Equal("Alice", frame.SenderName)
	req.Equal("text", frame.MessageType)
	req.True(frame.IsFromMe)
	req.False(frame.IsRead)
	req.Len(frame.Attachments, 1)
	req.Equal(sentAt, frame.SentAt)
}

func Test_ToFrame_Typing_And_Read(t *testing.T) {
	req := require.New(t)
	conversationID := uuid.New()

	name, data, ok := toFrame(event.UserTyping{ConversationID: conversationID, UserID: "alice"})
	req.True(ok)
	req.Equal(EventUserTyping, name)
	req.Equal(TypingFrame{ConversationID: conversationID.String(), UserID: "alice"}, data)

	name, data, ok = toFrame(event.UserStoppedTyping{ConversationID: conversationID, UserID: "alice"})
	req.True(ok)
	req.Equal(EventUserStoppedTyping, name)
	req.Equal(TypingFrame{ConversationID: conversationID.String(), UserID: "alice"}, data)

	name, data, ok = toFrame(event.MessagesRead{ConversationID: conversationID, ReadBy: "bob"})
	req.True(ok)
	req.Equal(EventMessagesRead, name)
	req.Equal(MessagesReadFrame{ConversationID: conversationID.String(), ReadBy: "bob"}, data)
}

func Test_ToFrame_Skips_Unknown_Events(t *testing.T) {
	req := require.New(t)

	_, _, ok := toFrame(nil)
	req.False(ok)
}
