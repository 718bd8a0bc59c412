// Package domain contains core concepts of the relay.
// This file defines Message records and their rules.
// Messages are created once by the pipeline and only mutated
// by the read-receipt aggregator (the read flag is monotonic).
package domain

import (
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
	KindFile  Kind = "file"
)

// Attachment describes an externally stored payload carried by a message.
// Storage mechanics live outside the relay; only the descriptor travels here.
type Attachment struct {
	URL  string `json:"url"`
	Kind string `json:"kind"`
	Name string `json:"name"`
}

type Message struct {
	ID             uuid.UUID    `json:"id"`
	ConversationID uuid.UUID    `json:"conversation_id"`
	SenderID       string       `json:"sender_id"`
	Content        string       `json:"content"`
	Kind           Kind         `json:"kind"`
	Attachments    []Attachment `json:"attachments,omitempty"`
	Read           bool         `json:"read"`
	ReadAt         *time.Time   `json:"read_at,omitempty"`
	SentAt         time.Time    `json:"sent_at"`
}

// HasContent reports whether the message carries anything deliverable.
// An empty body with no attachments is rejected by the pipeline.
func (m Message) HasContent() bool {
	return m.Content != "" || len(m.Attachments) > 0
}

// Excerpt returns a short preview of the body for out-of-band notifications.
func (m Message) Excerpt(max int) string {
	if m.Content == "" && len(m.Attachments) > 0 {
		return string(m.Kind)
	}
	runes := []rune(m.Content)
	if len(runes) <= max {
		return m.Content
	}
	return string(runes[:max])
}
