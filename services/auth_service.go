package services

import (
	"dm-lab/auth"
	"dm-lab/domain"
	"dm-lab/errors"
	"dm-lab/repositories"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

type IAuthService interface {
	Register(username, password, fullName string) (domain.User, Token, error)
	Login(username, password string) (domain.User, Token, error)
	Logout(userID string) error
	ValidateSession(token string) (domain.Session, error)
}

type Hasher interface {
	Hash(password string) (string, error)
	Compare(password, encodedHash string) (bool, error)
}

type SessionIssuer interface {
	Issue(userID, username string) (string, error)
	Validate(token string) (domain.Session, error)
}

type AuthService struct {
	userRepository repositories.IUserRepository
	hasher         Hasher
	sessions       SessionIssuer
	log            *slog.Logger
	now            func() time.Time
}

type Token string

func (t Token) String() string {
	return string(t)
}

func NewAuthService(repo repositories.IUserRepository, hasher Hasher,
	sessions SessionIssuer, log *slog.Logger) *AuthService {
	return &AuthService{
		userRepository: repo,
		hasher:         hasher,
		sessions:       sessions,
		log:            log,
		now:            time.Now,
	}
}

func (s *AuthService) Register(username, password, fullName string) (domain.User, Token, error) {
	// 1. Validate business rules before any expensive cryptographic operation
	if err := auth.ValidateRegister(auth.RegisterRequest{
		Username: username,
		Password: password,
		FullName: fullName,
	}); err != nil {
		return domain.User{}, "", err
	}

	// 2. Cheap rejection of taken usernames, the repository check stays authoritative
	_, err := s.userRepository.FindByUsername(username)
	switch {
	case err == nil:
		return domain.User{}, "", errors.ErrUserAlreadyExists
	case !stderrors.Is(err, errors.ErrUserNotFound):
		return domain.User{}, "", err
	}

	// 3. Hash in the service layer to keep the repository unaware of plain passwords
	hashedPassword, err := s.hasher.Hash(password)
	if err != nil {
		if stderrors.Is(err, errors.ErrValidation) {
			return domain.User{}, "", err
		}
		return domain.User{}, "", fmt.Errorf("hashing failed: %w", err)
	}

	if fullName == "" {
		fullName = username
	}
	user, err := s.userRepository.CreateUser(domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hashedPassword,
		FullName:     fullName,
		CreatedAt:    s.now().UTC(),
		IsOnline:     false,
	})
	if err != nil {
		return domain.User{}, "", err // ErrUserAlreadyExists when a concurrent registration won
	}

	token, err := s.sessions.Issue(user.ID, user.Username)
	if err != nil {
		return domain.User{}, "", errors.ErrTokenGeneration
	}

	s.log.Info("User registered", "user_id", user.ID, "username", user.Username)
	return user, Token(token), nil
}

func (s *AuthService) Login(username, password string) (domain.User, Token, error) {
	if err := auth.ValidateLogin(auth.LoginRequest{Username: username, Password: password}); err != nil {
		return domain.User{}, "", err
	}

	user, err := s.userRepository.FindByUsername(username)
	if err != nil {
		if stderrors.Is(err, errors.ErrUserNotFound) {
			// Same answer as a wrong password to prevent user enumeration
			return domain.User{}, "", errors.ErrInvalidCredentials
		}
		return domain.User{}, "", err
	}

	match, err := s.hasher.Compare(password, user.PasswordHash)
	if err != nil {
		s.log.Warn("Stored password hash could not be verified", "user_id", user.ID, "error", err)
		return domain.User{}, "", errors.ErrInvalidCredentials
	}
	if !match {
		return domain.User{}, "", errors.ErrInvalidCredentials
	}

	token, err := s.sessions.Issue(user.ID, user.Username)
	if err != nil {
		return domain.User{}, "", errors.ErrTokenGeneration
	}

	if err = s.userRepository.SetOnline(user.ID, true); err != nil {
		return domain.User{}, "", err
	}
	user.IsOnline = true

	s.log.Info("User logged in", "user_id", user.ID)
	return user, Token(token), nil
}

func (s *AuthService) Logout(userID string) error {
	if err := s.userRepository.SetOnline(userID, false); err != nil {
		return err
	}
	s.log.Info("User logged out", "user_id", userID)
	return nil
}

func (s *AuthService) ValidateSession(token string) (domain.Session, error) {
	return s.sessions.Validate(token)
}
