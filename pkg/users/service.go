package users

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"video-sharing/pkg/apperr"
	"video-sharing/pkg/auth"
	"video-sharing/pkg/models"
)

const MinPasswordLength = 6

type Repository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Register(ctx context.Context, email, password string) (*models.User, error) {
	const op = "users.Register"
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperr.E(apperr.InvalidArgument, op, "Email and password are required")
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, apperr.E(apperr.InvalidArgument, op, "Invalid email address")
	}
	if len(password) < MinPasswordLength {
		return nil, apperr.E(apperr.InvalidArgument, op, "Password must be at least 6 characters long")
	}

	_, err := s.repo.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, apperr.E(apperr.InvalidArgument, op, "Email is already registered")
	case !errors.Is(err, models.ErrNotFound):
		return nil, apperr.Upstream(op, err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, apperr.Upstream(op, err)
	}
	user := &models.User{Email: email, Password: hash}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, models.ErrDuplicateEmail) {
			return nil, apperr.E(apperr.InvalidArgument, op, "Email is already registered")
		}
		return nil, apperr.Upstream(op, err)
	}
	return user, nil
}

// Authenticate checks credentials. Unknown email and wrong password fail
// the same way.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	const op = "users.Authenticate"
	user, err := s.repo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, apperr.E(apperr.Unauthenticated, op, "Invalid email or password")
		}
		return nil, apperr.Upstream(op, err)
	}
	if !auth.CheckPassword(user.Password, password) {
		return nil, apperr.E(apperr.Unauthenticated, op, "Invalid email or password")
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
