package users

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"jobbuddy-backend/internal/shared/apperr"
)

const (
	minUsernameLen     = 3
	maxUsernameLen     = 64
	minPasswordLen     = 8
	maxPasswordBytes   = 72
	MaxInstructionsLen = 10000
)

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

	ErrInvalidCredentials = apperr.Authorization("invalid username or password")
)

// TokenIssuer signs session tokens for authenticated users.
type TokenIssuer interface {
	Sign(userID, username string) (string, error)
}

// Session is returned by Register and Login.
type Session struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type Service struct {
	Repo       Repo
	Tokens     TokenIssuer
	BcryptCost int
	Now        func() time.Time
	NewID      func() string

	dummyOnce sync.Once
	dummyHash []byte
}

func NewService(repo Repo, tokens TokenIssuer) *Service {
	return &Service{Repo: repo, Tokens: tokens}
}

func (s *Service) cost() int {
	if s.BcryptCost > 0 {
		return s.BcryptCost
	}
	return bcrypt.DefaultCost
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}

// Register creates an account and returns a signed session.
func (s *Service) Register(ctx context.Context, username, password string) (Session, error) {
	if s == nil || s.Repo == nil || s.Tokens == nil {
		return Session{}, errors.New("users service not configured")
	}
	username = strings.TrimSpace(username)
	if err := validateUsername(username); err != nil {
		return Session{}, err
	}
	if err := validatePassword(password); err != nil {
		return Session{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost())
	if err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}
	user := User{
		ID:           s.newID(),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    s.now(),
	}
	user.UpdatedAt = user.CreatedAt
	if err := s.Repo.Create(ctx, user); err != nil {
		return Session{}, fmt.Errorf("create user: %w", err)
	}
	return s.session(user)
}

// Login checks credentials. Unknown usernames and wrong passwords fail identically.
func (s *Service) Login(ctx context.Context, username, password string) (Session, error) {
	if s == nil || s.Repo == nil || s.Tokens == nil {
		return Session{}, errors.New("users service not configured")
	}
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return Session{}, apperr.Validation("username and password are required")
	}
	user, err := s.Repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.burnCompare(password)
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, fmt.Errorf("load user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return Session{}, ErrInvalidCredentials
	}
	return s.session(user)
}

// burnCompare spends a bcrypt comparison so unknown usernames cost the same as known ones.
func (s *Service) burnCompare(password string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), s.cost())
	})
	_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
}

func (s *Service) session(user User) (Session, error) {
	token, err := s.Tokens.Sign(user.ID, user.Username)
	if err != nil {
		return Session{}, fmt.Errorf("sign token: %w", err)
	}
	return Session{User: user, Token: token}, nil
}

func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return User{}, apperr.Validation("user id is required")
	}
	return s.Repo.GetByID(ctx, userID)
}

// Instructions returns the user's saved analysis instructions, empty when unset.
func (s *Service) Instructions(ctx context.Context, userID string) (string, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.Instructions, nil
}

// UpdateInstructions replaces the user's analysis instructions. Blank clears the override.
func (s *Service) UpdateInstructions(ctx context.Context, userID, instructions string) error {
	if s == nil || s.Repo == nil {
		return errors.New("users service not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return apperr.Validation("user id is required")
	}
	instructions = strings.TrimSpace(instructions)
	if utf8.RuneCountInString(instructions) > MaxInstructionsLen {
		return apperr.Validationf("instructions must be at most %d characters", MaxInstructionsLen)
	}
	return s.Repo.UpdateInstructions(ctx, userID, instructions)
}

func validateUsername(username string) error {
	n := utf8.RuneCountInString(username)
	if n < minUsernameLen || n > maxUsernameLen {
		return apperr.Validationf("username must be %d to %d characters", minUsernameLen, maxUsernameLen)
	}
	if !usernamePattern.MatchString(username) {
		return apperr.Validation("username may only contain letters, digits, '.', '_' and '-'")
	}
	return nil
}

func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLen {
		return apperr.Validationf("password must be at least %d characters", minPasswordLen)
	}
	if len(password) > maxPasswordBytes {
		return apperr.Validationf("password must be at most %d bytes", maxPasswordBytes)
	}
	return nil
}
