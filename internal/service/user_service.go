package service

import (
	"context"

	"github.com/greenhabit/greenpoints-backend/internal/model"
	"github.com/greenhabit/greenpoints-backend/internal/repository"
)

type UserService interface {
	// EnsureProfile maps an authenticated identity to its profile document,
	// creating it with a zero balance on first sign-in.
	EnsureProfile(ctx context.Context, uid, email, displayName, avatarURL string) (*model.User, error)
}

type userService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users}
}

func (s *userService) EnsureProfile(ctx context.Context, uid, email, displayName, avatarURL string) (*model.User, error) {
	if uid == "" {
		return nil, ErrInvalidPayload
	}
	return s.users.CreateIfAbsent(ctx, uid, email, displayName, avatarURL)
}
