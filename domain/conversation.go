package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Conversation groups two or more user identities and tracks their
// shared history summary. The member set is immutable from the relay's
// point of view; only the last-message reference and last-activity
// timestamp are bumped here.
type Conversation struct {
	ID            uuid.UUID  `json:"id"`
	Members       []string   `json:"members"`
	LastMessageID *uuid.UUID `json:"last_message_id,omitempty"`
	LastActivity  time.Time  `json:"last_activity"`
	Deleted       bool       `json:"deleted"`
}

func (c Conversation) HasMember(userID string) bool {
	return lo.Contains(c.Members, userID)
}

// Recipients returns every member except the sender, the candidate set
// for fan-out and notification decisions.
func (c Conversation) Recipients(senderID string) []string {
	return lo.Filter(c.Members, func(m string, _ int) bool {
		return m != senderID
	})
}
