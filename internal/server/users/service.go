package users

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/dmitrijs2005/gymsession/internal/common"
	"github.com/dmitrijs2005/gymsession/internal/cryptox"
	"github.com/dmitrijs2005/gymsession/internal/server/auth"
)

type Service struct {
	repo          Repository
	jwtSecret     []byte
	tokenValidity time.Duration
}

func NewService(repo Repository, secretKey string, tokenValidity time.Duration) *Service {
	return &Service{
		repo:          repo,
		jwtSecret:     []byte(secretKey),
		tokenValidity: tokenValidity,
	}
}

// Register creates a user with a fresh password verifier.
func (s *Service) Register(ctx context.Context, name, email, password string) (*User, error) {
	if strings.TrimSpace(name) == "" || password == "" {
		return nil, fmt.Errorf("%w: name and password are required", ErrInvalidInput)
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	salt, verifier := cryptox.NewVerifier([]byte(password))
	user, err := s.repo.Create(ctx, &User{
		Name:     strings.TrimSpace(name),
		Email:    strings.TrimSpace(email),
		Salt:     salt,
		Verifier: verifier,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return user, nil
}

// SignIn checks the password and issues a bearer token.
// Unknown users and wrong passwords are indistinguishable.
func (s *Service) SignIn(ctx context.Context, email, password string) (*User, string, error) {
	user, err := s.repo.GetUserByLogin(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", common.ErrorInternal
	}

	if !cryptox.CheckPassword([]byte(password), user.Salt, user.Verifier) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.tokenValidity)
	if err != nil {
		return nil, "", common.ErrorInternal
	}
	return user, token, nil
}

// Authenticate resolves a bearer token to a user id.
func (s *Service) Authenticate(token string) (string, error) {
	return auth.GetUserIDFromToken(token, s.jwtSecret)
}

// Update applies in to the user. A password change needs the current password.
func (s *Service) Update(ctx context.Context, userID string, in UpdateInput) (*User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name must not be empty", ErrInvalidInput)
		}
		user.Name = name
	}
	if in.Email != nil {
		if err := validateEmail(*in.Email); err != nil {
			return nil, err
		}
		user.Email = strings.TrimSpace(*in.Email)
	}
	if in.Avatar != nil {
		user.Avatar = strings.TrimSpace(*in.Avatar)
	}
	if in.Password != nil {
		if *in.Password == "" {
			return nil, fmt.Errorf("%w: password must not be empty", ErrInvalidInput)
		}
		if in.OldPassword == nil {
			return nil, ErrOldPasswordRequired
		}
		if !cryptox.CheckPassword([]byte(*in.OldPassword), user.Salt, user.Verifier) {
			return nil, ErrOldPasswordMismatch
		}
		user.Salt, user.Verifier = cryptox.NewVerifier([]byte(*in.Password))
	}

	return s.repo.Update(ctx, user)
}

func validateEmail(email string) error {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil || addr.Address != strings.TrimSpace(email) {
		return fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}
	return nil
}
