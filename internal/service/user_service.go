package service

import (
	"context"
	"errors"
	"strings"

	dom "github.com/swoyamsuwal/django-twitter/internal/domain"
	"github.com/swoyamsuwal/django-twitter/internal/events"
	"github.com/swoyamsuwal/django-twitter/internal/metrics"
	"github.com/swoyamsuwal/django-twitter/internal/repo"
	"github.com/swoyamsuwal/django-twitter/internal/utils"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserService handles user auth logic.
type UserService struct {
	repo repo.UserRepo
	pub  events.Publisher
	log  *zap.Logger
	cost int
}

// NewUserService returns a new UserService.
func NewUserService(repo repo.UserRepo, pub events.Publisher, log *zap.Logger) *UserService {
	if pub == nil {
		pub = events.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &UserService{repo: repo, pub: pub, log: log.Named("users"), cost: bcrypt.DefaultCost}
}

// ValidateCredentials checks username and password; returns user if valid.
func (s *UserService) ValidateCredentials(ctx context.Context, username, password string) (dom.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return dom.User{}, ErrInvalidCredentials
	}
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.User{}, ErrInvalidCredentials
		}
		return dom.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return dom.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// Register creates a new user with hashed password. The plaintext password is never stored.
func (s *UserService) Register(ctx context.Context, username, email, password string) (dom.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || strings.TrimSpace(password) == "" {
		return dom.User{}, ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return dom.User{}, ErrPasswordTooLong
		}
		return dom.User{}, err
	}
	u, err := s.repo.Create(ctx, username, email, string(hash))
	if err != nil {
		if utils.IsPGUniqueViolation(err) {
			return dom.User{}, ErrUsernameTaken
		}
		return dom.User{}, err
	}
	metrics.UsersRegistered.Inc()

	ev, err := events.UserRegistered(u)
	if err == nil {
		err = s.pub.Publish(ctx, ev)
	}
	if err != nil {
		s.log.Warn("publish user registered", zap.Int64("user_id", u.ID), zap.Error(err))
	}
	return u, nil
}
