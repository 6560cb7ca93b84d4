package message

import (
	"context"
	"fmt"

	"github.com/nkiryanov/chatapi/internal/models"
	"github.com/nkiryanov/chatapi/internal/repository"
)

type MessageService struct {
	messageRepo repository.MessageRepo
}

func NewService(messageRepo repository.MessageRepo) *MessageService {
	return &MessageService{messageRepo: messageRepo}
}

// Send stores the message. Author and recipient are not required to be existed users
func (s *MessageService) Send(ctx context.Context, authorID int64, recipientID int64, body string) (models.Message, error) {
	msg, err := s.messageRepo.CreateMessage(ctx, authorID, recipientID, body)
	if err != nil {
		return msg, fmt.Errorf("can't send message. Err: %w", err)
	}

	return msg, nil
}

// Messages addressed to the user, most recent first
// Unknown username gives empty list, same as user without messages
func (s *MessageService) ListForRecipient(ctx context.Context, username string) ([]models.Message, error) {
	messages, err := s.messageRepo.ListForRecipient(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("can't list messages for %q. Err: %w", username, err)
	}

	return messages, nil
}
