package service

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"coedit/internal/auth/model"
	"coedit/internal/auth/repository"
	"coedit/pkg/apperror"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const DefaultTokenTTL = 24 * time.Hour

type AuthService struct {
	Repo     repository.UserRepository
	secret   []byte
	tokenTTL time.Duration
	cost     int
	now      func() time.Time

	// dummyHash is compared against when the email is unknown so that a
	// missing account costs the same as a wrong password.
	dummyHash []byte
}

type Option func(*AuthService)

// WithTokenTTL overrides the validity window of issued tokens.
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *AuthService) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

// WithClock replaces time.Now, used by tests to mint expired tokens.
func WithClock(now func() time.Time) Option {
	return func(s *AuthService) { s.now = now }
}

// WithHashCost sets the bcrypt cost for new password hashes.
func WithHashCost(cost int) Option {
	return func(s *AuthService) { s.cost = cost }
}

func NewAuthService(repo repository.UserRepository, secret string, opts ...Option) *AuthService {
	s := &AuthService{
		Repo:     repo,
		secret:   []byte(secret),
		tokenTTL: DefaultTokenTTL,
		cost:     bcrypt.DefaultCost,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.dummyHash, _ = bcrypt.GenerateFromPassword(passwordDigest("coedit-dummy-password"), s.cost)
	return s
}

// Register creates an account and returns it together with a fresh token.
func (s *AuthService) Register(username, email, password string) (model.User, string, error) {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(email) == "" || password == "" {
		return model.User{}, "", fmt.Errorf("register: all fields are required: %w", apperror.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword(passwordDigest(password), s.cost)
	if err != nil {
		return model.User{}, "", fmt.Errorf("hash password: %w", err)
	}

	user, err := s.Repo.Create(username, email, string(hash))
	if err != nil {
		return model.User{}, "", err
	}

	token, err := s.issueToken(user)
	if err != nil {
		return model.User{}, "", err
	}
	return user, token, nil
}

// Login verifies the password for email and returns a token and the username.
// Unknown emails and wrong passwords both yield apperror.ErrInvalidCredentials.
func (s *AuthService) Login(email, password string) (string, string, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return "", "", fmt.Errorf("login: all fields are required: %w", apperror.ErrValidation)
	}

	user, err := s.Repo.GetByEmail(email)
	if err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			return "", "", err
		}
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, passwordDigest(password))
		return "", "", apperror.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), passwordDigest(password)); err != nil {
		return "", "", apperror.ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		return "", "", err
	}
	return token, user.Username, nil
}

// VerifyToken checks the signature and expiry of a bearer token. An empty
// token is apperror.ErrUnauthenticated; anything else that fails to verify is
// apperror.ErrForbidden.
func (s *AuthService) VerifyToken(tokenString string) (*model.Claims, error) {
	if tokenString == "" {
		return nil, apperror.ErrUnauthenticated
	}

	claims := &model.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", apperror.ErrForbidden, err)
	}
	if claims.UserID <= 0 {
		return nil, fmt.Errorf("%w: missing userId claim", apperror.ErrForbidden)
	}
	return claims, nil
}

// passwordDigest feeds bcrypt a fixed-size input. bcrypt rejects anything over
// 72 bytes, and the base64 SHA-256 digest is 44 bytes for any password.
func passwordDigest(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	digest := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(digest, sum[:])
	return digest
}

func (s *AuthService) issueToken(user model.User) (string, error) {
	now := s.now()
	claims := model.Claims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
