package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"coedit/internal/auth/model"
	"coedit/pkg/apperror"
	"coedit/pkg/logger"

	"github.com/lib/pq"
)

const uniqueViolation = "23505"

// UserRepository persists accounts. Create assigns the id and fails with
// apperror.ErrEmailConflict when the email is taken; GetByEmail fails with
// apperror.ErrNotFound when no account matches.
type UserRepository interface {
	Create(username, email, passwordHash string) (model.User, error)
	GetByEmail(email string) (model.User, error)
}

type PostgresUserRepository struct {
	DB *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{DB: db}
}

func (r *PostgresUserRepository) Create(username, email, passwordHash string) (model.User, error) {
	u := model.User{Username: username, Email: email, PasswordHash: passwordHash}
	err := r.DB.QueryRow(`INSERT INTO users (username, email, password_hash, created_at) VALUES ($1, $2, $3, NOW())
		RETURNING id, created_at`, username, email, passwordHash).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return model.User{}, fmt.Errorf("create user %s: %w", email, apperror.ErrEmailConflict)
		}
		logger.Sugar.Errorf("Failed to create user: %v", err)
		return model.User{}, err
	}
	return u, nil
}

func (r *PostgresUserRepository) GetByEmail(email string) (model.User, error) {
	var u model.User
	err := r.DB.QueryRow("SELECT id, username, email, password_hash, created_at FROM users WHERE email = $1", email).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, apperror.ErrNotFound
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to get user by email: %v", err)
		return model.User{}, err
	}
	return u, nil
}

// MemoryUserRepository keeps accounts in process memory, indexed by email.
type MemoryUserRepository struct {
	mu      sync.Mutex
	nextID  int64
	byEmail map[string]model.User
	now     func() time.Time
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		nextID:  1,
		byEmail: make(map[string]model.User),
		now:     time.Now,
	}
}

func (r *MemoryUserRepository) Create(username, email, passwordHash string) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[email]; exists {
		return model.User{}, fmt.Errorf("create user %s: %w", email, apperror.ErrEmailConflict)
	}
	u := model.User{
		ID:           r.nextID,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    r.now().UTC(),
	}
	r.nextID++
	r.byEmail[email] = u
	return u, nil
}

func (r *MemoryUserRepository) GetByEmail(email string) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byEmail[email]
	if !ok {
		return model.User{}, apperror.ErrNotFound
	}
	return u, nil
}
