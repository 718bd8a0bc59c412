package repositories

import (
	"chat-relay/domain"
	"chat-relay/errors"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func Test_Create_And_Get_Conversation(t *testing.T) {
	req := require.New(t)
	repository := NewConversationRepository(openTestDB(t), slog.Default())

	conversation := domain.Conversation{
		ID:           uuid.New(),
		Members:      []string{"alice", "bob"},
		LastActivity: time.Now().UTC().Truncate(time.Millisecond),
	}
	req.NoError(repository.Create(conversation))

	fetched, err := repository.Get(conversation.ID)
	req.NoError(err)
	req.Equal(conversation.ID, fetched.ID)
	req.Equal(conversation.Members, fetched.Members)
	req.False(fetched.Deleted)
}

func Test_Get_Unknown_Conversation(t *testing.T) {
	req := require.New(t)
	repository := NewConversationRepository(openTestDB(t), slog.Default())

	_, err := repository.Get(uuid.New())
	req.ErrorIs(err, errors.ErrConversationNotFound)
}

func Test_FindForMember_Accepts_Member(t *testing.T) {
	req := require.New(t)
	repository := NewConversationRepository(openTestDB(t), slog.Default())

	conversation := domain.Conversation{ID: uuid.New(), Members: []string{"alice", "bob"}}
	req.NoError(repository.Create(conversation))

	found, err := repository.FindForMember(conversation.ID, "bob")
	req.NoError(err)
	req.Equal(conversation.ID, found.ID)
}

func Test_FindForMember_Denies_Without_Revealing_Existence(t *testing.T) {
	req := require.New(t)
	repository := NewConversationRepository(openTestDB(t), slog.Default())

	conversation := domain.Conversation{ID: uuid.New(), Members: []string{"alice", "bob"}}
	req.NoError(repository.Create(conversation))

	// A non-member and a probe for a non-existent conversation must be
	// indistinguishable.
	_, errNonMember := repository.FindForMember(conversation.ID, "mallory")
	_, errMissing := repository.FindForMember(uuid.New(), "mallory")

	req.ErrorIs(errNonMember, errors.ErrNotMember)
	req.ErrorIs(errMissing, errors.ErrNotMember)
}

func Test_FindForMember_Denies_Soft_Deleted(t *testing.T) {
	req := require.New(t)
	repository := NewConversationRepository(openTestDB(t), slog.Default())

	conversation := domain.Conversation{ID: uuid.New(), Members: []string{"alice", "bob"}, Deleted: true}
	req.NoError(repository.Create(conversation))

	_, err := repository.FindForMember(conversation.ID, "alice")
	req.ErrorIs(err, errors.ErrNotMember)
}

func Test_Touch_Bumps_Summary(t *testing.T) {
	req := require.New(t)
	repository := NewConversationRepository(openTestDB(t), slog.Default())

	conversation := domain.Conversation{ID: uuid.New(), Members: []string{"alice", "bob"}}
	req.NoError(repository.Create(conversation))

	lastMessageID := uuid.New()
	at := time.Now().UTC().Truncate(time.Millisecond)
	req.NoError(repository.Touch(conversation.ID, lastMessageID, at))

	fetched, err := repository.Get(conversation.ID)
	req.NoError(err)
	req.NotNil(fetched.LastMessageID)
	req.Equal(lastMessageID, *fetched.LastMessageID)
	req.Equal(at, fetched.LastActivity)

	// Member set is untouched by the bump
	req.Equal(conversation.Members, fetched.Members)
}
