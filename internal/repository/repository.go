package repository

import (
	"context"

	"github.com/nkiryanov/chatapi/internal/models"
)

// User repository interface
type UserRepo interface {
	// Create user
	// If user with username exists already has to return error apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, username string, hashedPassword string) (models.User, error)

	// Get user by it's id or username
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID int64) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)

	// All users in store order (by id)
	ListUsers(ctx context.Context) ([]models.User, error)
}

// Message repository interface
type MessageRepo interface {
	// Store message as is. Author and recipient are not checked to exist
	CreateMessage(ctx context.Context, authorID int64, recipientID int64, body string) (models.Message, error)

	// Messages sent to the user with the username, most recent first
	// Unknown username is not an error: empty list returned
	ListForRecipient(ctx context.Context, username string) ([]models.Message, error)
}

type Storage interface {
	User() UserRepo
	Message() MessageRepo
}
