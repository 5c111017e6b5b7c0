package services

import (
	"dm-lab/auth"
	"dm-lab/domain"
	"dm-lab/errors"
	"dm-lab/repositories"
	stderrors "errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

type IChatService interface {
	SendMessage(senderID, receiverID, content string) (domain.Message, error)
	GetConversation(selfID, otherID string) ([]domain.Message, error)
}

type ChatService struct {
	userRepository    repositories.IUserRepository
	messageRepository repositories.IMessageRepository
	log               *slog.Logger
	now               func() time.Time
}

func NewChatService(users repositories.IUserRepository, messages repositories.IMessageRepository,
	log *slog.Logger) *ChatService {
	return &ChatService{
		userRepository:    users,
		messageRepository: messages,
		log:               log,
		now:               time.Now,
	}
}

// SendMessage stores a message from the authenticated sender. The content is
// stored trimmed and must not be blank.
func (s *ChatService) SendMessage(senderID, receiverID, content string) (domain.Message, error) {
	if err := auth.ValidateSendMessage(auth.SendMessageRequest{
		ReceiverID: receiverID,
		Content:    content,
	}); err != nil {
		return domain.Message{}, err
	}
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return domain.Message{}, errors.ErrEmptyContent
	}

	if _, err := s.userRepository.FindByID(senderID); err != nil {
		if stderrors.Is(err, errors.ErrUserNotFound) {
			// The token outlived its user, e.g. after a data directory reset
			return domain.Message{}, errors.ErrInvalidSession
		}
		return domain.Message{}, err
	}
	if _, err := s.userRepository.FindByID(receiverID); err != nil {
		return domain.Message{}, err
	}

	message, err := s.messageRepository.CreateMessage(domain.Message{
		ID:         uuid.NewString(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    trimmed,
		Timestamp:  s.now().UTC(),
		Read:       false,
	})
	if err != nil {
		return domain.Message{}, err
	}
	s.log.Debug("Message stored", "message_id", message.ID, "sender_id", senderID, "receiver_id", receiverID)
	return message, nil
}

func (s *ChatService) GetConversation(selfID, otherID string) ([]domain.Message, error) {
	if _, err := s.userRepository.FindByID(otherID); err != nil {
		return nil, err
	}
	messages, err := s.messageRepository.ConversationBetween(selfID, otherID)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	return messages, nil
}
