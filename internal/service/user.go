package service

import (
	"DataSentinel/internal/model"
	"DataSentinel/internal/repo"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserService: регистрация и вход пользователей.
type UserService struct {
	repo     repo.UserRepository
	consents repo.ConsentRepository
}

func NewUserService(r repo.UserRepository, consents repo.ConsentRepository) *UserService {
	return &UserService{repo: r, consents: consents}
}

// Register создаёт пользователя с ролью user и согласием по умолчанию.
func (s *UserService) Register(ctx context.Context, login, password string) (*model.User, error) {
	return s.create(ctx, login, password, model.RoleUser)
}

// EnsureAdmin создаёт администратора, если логин свободен. Существующую запись не меняет.
func (s *UserService) EnsureAdmin(ctx context.Context, login, password string) (*model.User, error) {
	u, err := s.create(ctx, login, password, model.RoleAdmin)
	if errors.Is(err, ErrLoginTaken) {
		return s.repo.GetUserByLogin(ctx, login)
	}
	return u, err
}

func (s *UserService) create(ctx context.Context, login, password, role string) (*model.User, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, invalid("login and password are required")
	}

	existing, err := s.repo.GetUserByLogin(ctx, login)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrLoginTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.CreateUser(ctx, &model.User{
		ID:       uuid.NewString(),
		Login:    login,
		Password: string(hash),
		Name:     login,
		Role:     role,
	})
	if err != nil {
		return nil, err
	}

	if err := s.consents.Save(ctx, defaultConsent(user.ID)); err != nil {
		return nil, fmt.Errorf("create consent: %w", err)
	}
	return user, nil
}

// Login проверяет логин и пароль.
func (s *UserService) Login(ctx context.Context, login, password string) (*model.User, error) {
	user, err := s.repo.GetUserByLogin(ctx, login)
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && user == nil) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "user", id)
	}
	return u, nil
}
