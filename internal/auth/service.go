package auth

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/tiendatech/storefront/internal/config"
	"github.com/tiendatech/storefront/internal/entities"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

var (
	// ErrInvalidCredentials is returned for both unknown email and wrong
	// password. Callers must never distinguish the two.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrNotFound           = errors.New("user not found")
	ErrEmailInvalid       = errors.New("invalid email format")
	ErrNameRequired       = errors.New("name is required")
)

// CredentialStore is the persistence contract consulted during login,
// registration and password changes. A nil record with a nil error means
// "no such user". Any persistence technology satisfying it is acceptable.
type CredentialStore interface {
	GetByEmail(email string) (*entities.User, error)
	GetByID(id uint) (*entities.User, error)
	Create(user *entities.User) (*entities.User, error)
	UpdatePassword(id uint, passwordHash string) error
	UpdateName(id uint, name string) (*entities.User, error)
}

// Service orchestrates credential verification and token issuance.
// Login is read-only against the store; registration and password changes
// are single atomic store operations.
type Service struct {
	store CredentialStore
	codec *TokenCodec
	cfg   config.Auth
}

// NewService creates a new authentication service.
func NewService(store CredentialStore, codec *TokenCodec, cfg config.Auth) *Service {
	return &Service{
		store: store,
		codec: codec,
		cfg:   cfg,
	}
}

// Login verifies the credentials and issues a session token.
func (s *Service) Login(email, password string) (*entities.User, string, error) {
	user, err := s.store.GetByEmail(email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		// Burn a bcrypt comparison so the miss costs the same as a mismatch.
		_ = CheckPassword(password, dummyHash)
		return nil, "", ErrInvalidCredentials
	}

	if err := CheckPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, ErrInvalidPassword) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to check password: %w", err)
	}

	token, err := s.codec.Issue(user.ID, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	return user, token, nil
}

// Register creates a new USER account and issues a session token.
func (s *Service) Register(email, password, name string) (*entities.User, string, error) {
	user, err := s.createUser(email, password, name, entities.UserRoleUser)
	if err != nil {
		return nil, "", err
	}

	token, err := s.codec.Issue(user.ID, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	return user, token, nil
}

// CreateAdmin creates an ADMIN account. No token is issued: the caller is
// an already-authenticated administrator creating an account for someone else.
func (s *Service) CreateAdmin(email, password, name string) (*entities.User, error) {
	if name == "" {
		return nil, ErrNameRequired
	}
	return s.createUser(email, password, name, entities.UserRoleAdmin)
}

func (s *Service) createUser(email, password, name string, role entities.UserRole) (*entities.User, error) {
	if len(email) > 254 || !emailPattern.MatchString(email) {
		return nil, ErrEmailInvalid
	}

	existing, err := s.store.GetByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, ErrDuplicateEmail
	}

	passwordHash, err := HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	user, err := s.store.Create(&entities.User{
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		Role:         role,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// ChangePassword verifies the current password and persists a new hash.
// The old hash is only replaced after the new one is computed, as a single
// store update.
func (s *Service) ChangePassword(userID uint, currentPassword, newPassword string) error {
	user, err := s.store.GetByID(userID)
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return ErrNotFound
	}

	if err := CheckPassword(currentPassword, user.PasswordHash); err != nil {
		if errors.Is(err, ErrInvalidPassword) {
			return ErrInvalidCredentials
		}
		return fmt.Errorf("failed to check password: %w", err)
	}

	newHash, err := HashPassword(newPassword, s.cfg.BcryptCost)
	if err != nil {
		return err
	}

	if err := s.store.UpdatePassword(user.ID, newHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// UpdateProfile updates the user's display name.
func (s *Service) UpdateProfile(userID uint, name string) (*entities.User, error) {
	if name == "" {
		return nil, ErrNameRequired
	}
	user, err := s.store.UpdateName(userID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// GetUserByID loads a user record, returning ErrNotFound when absent.
func (s *Service) GetUserByID(userID uint) (*entities.User, error) {
	user, err := s.store.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// Codec exposes the token codec for callers that reissue tokens.
func (s *Service) Codec() *TokenCodec {
	return s.codec
}

// dummyHash is a bcrypt hash of an unguessable value, compared against when
// the email does not exist so response timing does not leak account presence.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
