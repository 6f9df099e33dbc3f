package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired session token")
)

type Service interface {
	Login(ctx context.Context, email, password string) (string, error)
	Validate(ctx context.Context, token string) (int64, error)
	Logout(ctx context.Context, token string) error
}

type service struct {
	users    UserRepository
	sessions SessionStore
	ttl      time.Duration
}

func NewService(users UserRepository, sessions SessionStore, ttl time.Duration) Service {
	return &service{users: users, sessions: sessions, ttl: ttl}
}

func (s *service) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			log.Warn().Str("email", email).Msg("service: login attempt for unknown user")
			return "", ErrInvalidCredentials
		}
		log.Error().Err(err).Msg("service: failed to fetch user for login")
		return "", fmt.Errorf("service: failed to fetch user for login: %w", err)
	}

	if !u.IsAdmin {
		log.Warn().Str("email", email).Msg("service: login attempt by non-admin user")
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		log.Warn().Str("email", email).Msg("service: wrong password")
		return "", ErrInvalidCredentials
	}

	tokenID, err := uuid.NewV4()
	if err != nil {
		return "", fmt.Errorf("service: failed to generate session token: %w", err)
	}
	token := tokenID.String()

	if err := s.sessions.Save(ctx, token, u.ID, s.ttl); err != nil {
		log.Error().Err(err).Msg("service: failed to save session")
		return "", fmt.Errorf("service: failed to save session: %w", err)
	}

	log.Info().Int64("user_id", u.ID).Msg("service: admin session opened")
	return token, nil
}

func (s *service) Validate(ctx context.Context, token string) (int64, error) {
	userID, err := s.sessions.Lookup(ctx, token)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			return 0, ErrInvalidToken
		}
		log.Error().Err(err).Msg("service: failed to look up session")
		return 0, fmt.Errorf("service: failed to look up session: %w", err)
	}
	return userID, nil
}

func (s *service) Logout(ctx context.Context, token string) error {
	if err := s.sessions.Delete(ctx, token); err != nil {
		log.Error().Err(err).Msg("service: failed to delete session")
		return fmt.Errorf("service: failed to delete session: %w", err)
	}
	return nil
}
