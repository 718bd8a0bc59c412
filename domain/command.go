package domain

import (
	"time"

	"github.com/google/uuid"
)

// SendCommand is the validated intent behind one send_message signal.
type SendCommand struct {
	ConversationID uuid.UUID
	Token          string
	Content        string
	Kind           Kind
	Attachments    []Attachment
	SubmittedAt    time.Time
}

// PushNotification is the payload handed to the external push
// collaborator when a member is not reachable in-room.
type PushNotification struct {
	RecipientID    string    `json:"recipient_id"`
	ConversationID uuid.UUID `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	Excerpt        string    `json:"excerpt"`
}
