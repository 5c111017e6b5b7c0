package repositories

import (
	"dm-lab/domain"
	"dm-lab/storage"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func newBadgerStore(t *testing.T) storage.Store {
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	s := storage.NewBadgerStore(db, slog.Default(), storage.Options{})
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.EnsureReady())
	return s
}

func message(from, to, content string, at time.Time) domain.Message {
	return domain.Message{
		ID:         uuid.NewString(),
		SenderID:   from,
		ReceiverID: to,
		Content:    content,
		Timestamp:  at,
	}
}

func contents(messages []domain.Message) []string {
	return lo.Map(messages, func(item domain.Message, _ int) string { return item.Content })
}

func Test_Conversation_Between_Two_Users(t *testing.T) {
	for name, newStore := range map[string]func(*testing.T) storage.Store{
		"file":   newFileStore,
		"badger": newBadgerStore,
	} {
		t.Run(name, func(t *testing.T) {
			req := require.New(t)
			repository := NewMessageRepository(newStore(t), slog.Default())
			at := time.Now().UTC()

			_, err := repository.CreateMessage(message("alice", "bob", "hello", at))
			req.NoError(err)
			_, err = repository.CreateMessage(message("bob", "alice", "hi back", at.Add(time.Second)))
			req.NoError(err)

			conversation, err := repository.ConversationBetween("alice", "bob")
			req.NoError(err)
			req.Equal([]string{"hello", "hi back"}, contents(conversation))

			reversed, err := repository.ConversationBetween("bob", "alice")
			req.NoError(err)
			req.Equal(contents(conversation), contents(reversed))
		})
	}
}

func Test_Conversation_Is_Sorted_By_Timestamp(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(newFileStore(t), slog.Default())
	at := time.Now().UTC()

	// Stored out of chronological order on purpose.
	for _, m := range []domain.Message{
		message("alice", "bob", "third", at.Add(2*time.Minute)),
		message("bob", "alice", "first", at),
		message("alice", "bob", "second", at.Add(1*time.Minute)),
	} {
		_, err := repository.CreateMessage(m)
		req.NoError(err)
	}

	conversation, err := repository.ConversationBetween("alice", "bob")
	req.NoError(err)
	req.Equal([]string{"first", "second", "third"}, contents(conversation))
	for i := 1; i < len(conversation); i++ {
		req.False(conversation[i].Timestamp.Before(conversation[i-1].Timestamp))
	}
}

func Test_Conversation_Ties_Keep_Insertion_Order(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(newFileStore(t), slog.Default())
	at := time.Now().UTC()

	for _, m := range []domain.Message{
		message("alice", "bob", "late", at.Add(time.Minute)),
		message("alice", "bob", "a", at),
		message("bob", "alice", "b", at),
		message("alice", "bob", "c", at),
	} {
		_, err := repository.CreateMessage(m)
		req.NoError(err)
	}

	conversation, err := repository.ConversationBetween("alice", "bob")
	req.NoError(err)
	req.Equal([]string{"a", "b", "c", "late"}, contents(conversation))
}

func Test_Conversation_Does_Not_Leak_Other_Pairs(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(newFileStore(t), slog.Default())
	at := time.Now().UTC()

	toBob, err := repository.CreateMessage(message("alice", "bob", "for bob", at))
	req.NoError(err)
	toCarol, err := repository.CreateMessage(message("alice", "carol", "for carol", at))
	req.NoError(err)
	_, err = repository.CreateMessage(message("bob", "carol", "between others", at))
	req.NoError(err)

	withBob, err := repository.ConversationBetween("alice", "bob")
	req.NoError(err)
	req.Len(withBob, 1)
	req.Equal(toBob.ID, withBob[0].ID)

	withCarol, err := repository.ConversationBetween("alice", "carol")
	req.NoError(err)
	req.Len(withCarol, 1)
	req.Equal(toCarol.ID, withCarol[0].ID)

	none, err := repository.ConversationBetween("alice", "dave")
	req.NoError(err)
	req.Empty(none)
}

func Test_Created_Message_Is_Persisted_Unchanged(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(newFileStore(t), slog.Default())
	sent := message("alice", "bob", "hello", time.Now().UTC())

	_, err := repository.CreateMessage(sent)
	req.NoError(err)

	conversation, err := repository.ConversationBetween("alice", "bob")
	req.NoError(err)
	req.Len(conversation, 1)
	got := conversation[0]
	req.Equal(sent.ID, got.ID)
	req.Equal(sent.Content, got.Content)
	req.False(got.Read)
	req.True(sent.Timestamp.Equal(got.Timestamp))
}
