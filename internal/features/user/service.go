package user

import (
	"context"
	"errors"
)

type UserService interface {
	GetProfile(ctx context.Context, userID string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}

type UserServiceImpl struct {
	Repo UserRepository
}

func NewUserService(repo UserRepository) UserService {
	return &UserServiceImpl{Repo: repo}
}

func (s *UserServiceImpl) GetProfile(ctx context.Context, userID string) (*User, error) {
	usr, err := s.Repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if usr == nil {
		return nil, errors.New("user not found")
	}
	return usr, nil
}

func (s *UserServiceImpl) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.Repo.FindByEmail(ctx, email)
}
