package repositories

import (
	"chat-relay/domain"
	"chat-relay/errors"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

// ConversationRepository persists conversation summaries in BadgerDB
// under "conv:{uuid}". Conversations are established outside the relay;
// this store only reads them for authorization and bumps their
// last-message reference after a persist. Records are never hard
// deleted, only flagged.
type ConversationRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewConversationRepository(db *badger.DB, log *slog.Logger) ConversationRepository {
	return ConversationRepository{db: db, log: log}
}

func conversationKey(id uuid.UUID) []byte {
	return []byte(fmt.Sprintf("conv:%s", id))
}

func (r ConversationRepository) Create(c domain.Conversation) error {
	bytes, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(conversationKey(c.ID), bytes)
	})
}

func (r ConversationRepository) Get(id uuid.UUID) (domain.Conversation, error) {
	var conversation domain.Conversation
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(conversationKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &conversation)
		})
	})
	if err == badger.ErrKeyNotFound {
		return domain.Conversation{}, errors.ErrConversationNotFound
	}
	if err != nil {
		return domain.Conversation{}, fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}
	return conversation, nil
}

// FindForMember is the room membership authority's lookup: identifier
// matches, member set contains userID, soft-delete flag unset. Every
// failing combination collapses into ErrNotMember so an unauthorized
// caller cannot probe whether a conversation exists.
func (r ConversationRepository) FindForMember(id uuid.UUID, userID string) (domain.Conversation, error) {
	conversation, err := r.Get(id)
	if err == errors.ErrConversationNotFound {
		return domain.Conversation{}, errors.ErrNotMember
	}
	if err != nil {
		return domain.Conversation{}, err
	}
	if conversation.Deleted || !conversation.HasMember(userID) {
		return domain.Conversation{}, errors.ErrNotMember
	}
	return conversation, nil
}

// Touch bumps LastMessageID and LastActivity in a single read-modify-
// write transaction. Badger serializes the update, so two pipeline
// goroutines touching the same conversation cannot interleave halfway.
func (r ConversationRepository) Touch(id uuid.UUID, lastMessageID uuid.UUID, at time.Time) error {
	err := r.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(conversationKey(id))
		if err != nil {
			return err
		}
		var conversation domain.Conversation
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &conversation)
		}); err != nil {
			return err
		}
		conversation.LastMessageID = &lastMessageID
		conversation.LastActivity = at
		bytes, err := json.Marshal(conversation)
		if err != nil {
			return err
		}
		return txn.Set(conversationKey(id), bytes)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}
	return nil
}
