/*
Package auth provides the credential collaborator for the marketplace core.

PURPOSE:
  User registry plus JWT issuance and verification. The marketplace core
  treats authentication as an external concern: it only ever receives a
  resolved identity string. This package is where that string comes from.

REGISTRY:
  In-memory, seeded with the demo accounts. Passwords are bcrypt-hashed;
  the seeds are hashed at startup.

TOKENS:
  HS256 JWTs carrying id, email, name, and userType claims with a 24 hour
  expiry. The secret comes from configuration, never from source.

SEE ALSO:
  - api/middleware.go: Resolves bearer tokens into request identities
  - api/handlers.go: Signup/signin/me endpoints
*/
package auth

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailInUse         = errors.New("email already in use")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrMissingFields      = errors.New("name, email and password required")
)

// =============================================================================
// USERS
// =============================================================================

// User is a registered account. PasswordHash never leaves this package.
type User struct {
	ID           string
	Name         string
	Email        string
	UserType     string // "business" (donor) or "foodbank" (receiver)
	passwordHash []byte
}

// Claims are the token payload. Field names match what the frontend expects.
type Claims struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	UserType string `json:"userType"`
	jwt.StandardClaims
}

// =============================================================================
// SERVICE
// =============================================================================

const tokenTTL = 24 * time.Hour

// Service owns the user registry and token lifecycle.
type Service struct {
	mu      sync.RWMutex
	byID    map[string]*User
	byEmail map[string]*User // keyed by lowercased email
	secret  []byte
}

func NewService(secret string) *Service {
	return &Service{
		byID:    make(map[string]*User),
		byEmail: make(map[string]*User),
		secret:  []byte(secret),
	}
}

// SeedDemoUsers registers the demo accounts used by the sample frontend.
func (s *Service) SeedDemoUsers() error {
	demo := []struct{ id, name, email, password, userType string }{
		{"user-123", "Food Donor", "donor@example.com", "password123", "business"},
		{"user-456", "Food Receiver", "receiver@example.com", "password456", "foodbank"},
	}
	for _, u := range demo {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("seed %s: %w", u.id, err)
		}
		user := &User{ID: u.id, Name: u.name, Email: u.email, UserType: u.userType, passwordHash: hash}
		s.mu.Lock()
		s.byID[user.ID] = user
		s.byEmail[strings.ToLower(user.Email)] = user
		s.mu.Unlock()
	}
	return nil
}

// SignUp registers a new user and returns the user with a fresh token.
func (s *Service) SignUp(name, email, password, userType string) (User, string, error) {
	if name == "" || email == "" || password == "" {
		return User{}, "", ErrMissingFields
	}
	if userType == "" {
		userType = "business"
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, "", fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(email)
	if _, exists := s.byEmail[key]; exists {
		return User{}, "", ErrEmailInUse
	}

	user := &User{
		ID:           "user-" + uuid.NewString(),
		Name:         name,
		Email:        email,
		UserType:     userType,
		passwordHash: hash,
	}
	s.byID[user.ID] = user
	s.byEmail[key] = user

	token, err := s.createToken(user)
	if err != nil {
		return User{}, "", err
	}
	return *user, token, nil
}

// SignIn verifies credentials and returns the user with a fresh token.
func (s *Service) SignIn(email, password string) (User, string, error) {
	s.mu.RLock()
	user, ok := s.byEmail[strings.ToLower(email)]
	s.mu.RUnlock()

	if !ok {
		return User{}, "", ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword(user.passwordHash, []byte(password)) != nil {
		return User{}, "", ErrInvalidCredentials
	}

	token, err := s.createToken(user)
	if err != nil {
		return User{}, "", err
	}
	return *user, token, nil
}

// UserByID returns the registered user, or ErrUserNotFound.
func (s *Service) UserByID(id string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.byID[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return *user, nil
}

// =============================================================================
// TOKENS
// =============================================================================

func (s *Service) createToken(u *User) (string, error) {
	claims := Claims{
		ID:       u.ID,
		Email:    u.Email,
		Name:     u.Name,
		UserType: u.UserType,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(tokenTTL).Unix(),
			IssuedAt:  time.Now().Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken validates a bearer token and returns its claims.
func (s *Service) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
