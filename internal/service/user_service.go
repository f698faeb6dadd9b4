package service

import (
	"context"

	"creatorhub/internal/models"
	"creatorhub/internal/repository"
	"creatorhub/pkg/errs"
)

type UserService interface {
	GetUserInfo(ctx context.Context, id int64) (*models.User, error)
	RemoveUser(ctx context.Context, userID int64) error
}

type userService struct {
	u repository.UserRepository
}

func NewUserService(u repository.UserRepository) UserService {
	return &userService{
		u: u,
	}
}

func (s *userService) GetUserInfo(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.u.GetByID(ctx, id)
	if err != nil {
		return nil, errs.Persistence("reading user", err)
	}
	if user == nil {
		return nil, errs.NotFound("user doesn't exist")
	}
	return user, nil
}

func (s *userService) RemoveUser(ctx context.Context, userID int64) error {
	if err := s.u.Remove(ctx, userID); err != nil {
		return errs.Persistence("removing user", err)
	}
	return nil
}
