package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-payables/internal/features/organization"
	"go-payables/internal/features/user"
	"go-payables/pkg/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type AuthService interface {
	Register(ctx context.Context, name, email, password, orgName string) (*user.User, error)
	Login(ctx context.Context, email, password string) (string, error)
}

type AuthServiceImpl struct {
	UserRepo        user.UserRepository
	OrganizationSvc organization.OrganizationService
}

func NewAuthService(userRepo user.UserRepository, orgService organization.OrganizationService) AuthService {
	return &AuthServiceImpl{
		UserRepo:        userRepo,
		OrganizationSvc: orgService,
	}
}

func (s *AuthServiceImpl) Register(ctx context.Context, name, email, password, orgName string) (*user.User, error) {
	existing, err := s.UserRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("user with email %s already exists", email)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	newUser := &user.User{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Email:     email,
		Password:  string(hashed),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := s.UserRepo.Create(ctx, newUser); err != nil {
		return nil, err
	}

	// Every registrant gets a personal organization as its owner
	if orgName == "" {
		orgName = fmt.Sprintf("%s's Organization", name)
	}
	if _, err := s.OrganizationSvc.Create(ctx, newUser.ID.Hex(), orgName, email); err != nil {
		return nil, err
	}

	return newUser, nil
}

func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (string, error) {
	usr, err := s.UserRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if usr == nil {
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(usr.Password), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return utils.GenerateToken(usr.ID, usr.Email)
}
