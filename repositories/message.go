//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"dm-lab/domain"
	"dm-lab/storage"
	"log/slog"
	"slices"
	"time"

	"github.com/samber/lo"
)

type IMessageRepository interface {
	CreateMessage(message domain.Message) (domain.Message, error)
	ConversationBetween(idA, idB string) ([]domain.Message, error)
}

type MessageRepository struct {
	store storage.Store
	log   *slog.Logger
}

func NewMessageRepository(store storage.Store, log *slog.Logger) IMessageRepository {
	return &MessageRepository{store: store, log: log}
}

type DiskMessage struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
	Read       bool      `json:"read"`
}

// CreateMessage appends the message to the messages collection.
// Callers are expected to have checked that both users exist.
func (m MessageRepository) CreateMessage(message domain.Message) (domain.Message, error) {
	err := storage.Modify(m.store, storage.Messages, func(messages []DiskMessage) ([]DiskMessage, error) {
		return append(messages, fromMessage(message)), nil
	})
	if err != nil {
		return domain.Message{}, err
	}
	return message, nil
}

// ConversationBetween returns every message exchanged between idA and idB in
// either direction, oldest first. Messages sharing a timestamp keep the order
// in which they were stored.
func (m MessageRepository) ConversationBetween(idA, idB string) ([]domain.Message, error) {
	messages, err := storage.Load[DiskMessage](m.store, storage.Messages)
	if err != nil {
		return nil, err
	}
	conversation := lo.FilterMap(messages, func(item DiskMessage, _ int) (domain.Message, bool) {
		message := toMessage(item)
		return message, message.Involves(idA, idB)
	})
	slices.SortStableFunc(conversation, func(a, b domain.Message) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return conversation, nil
}

func fromMessage(message domain.Message) DiskMessage {
	return DiskMessage{
		ID:         message.ID,
		SenderID:   message.SenderID,
		ReceiverID: message.ReceiverID,
		Content:    message.Content,
		Timestamp:  message.Timestamp.UTC(),
		Read:       message.Read,
	}
}

func toMessage(message DiskMessage) domain.Message {
	return domain.Message{
		ID:         message.ID,
		SenderID:   message.SenderID,
		ReceiverID: message.ReceiverID,
		Content:    message.Content,
		Timestamp:  message.Timestamp.UTC(),
		Read:       message.Read,
	}
}
