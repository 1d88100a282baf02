package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"coedit/internal/auth/model"
	"coedit/internal/auth/repository"
	"coedit/pkg/apperror"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestService(opts ...Option) *AuthService {
	opts = append([]Option{WithHashCost(bcrypt.MinCost)}, opts...)
	return NewAuthService(repository.NewMemoryUserRepository(), "test-secret", opts...)
}

func TestRegisterIssuesVerifiableToken(t *testing.T) {
	s := newTestService()

	user, token, err := s.Register("a", "a@x.com", "right")
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.NotEqual(t, "right", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), passwordDigest("right")))

	claims, err := s.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "a", claims.Username)
	assert.Equal(t, DefaultTokenTTL, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	s := newTestService()

	_, _, err := s.Register("a", "a@x.com", "right")
	require.NoError(t, err)
	_, _, err = s.Register("other", "a@x.com", "pw")
	assert.ErrorIs(t, err, apperror.ErrEmailConflict)
}

func TestRegisterMissingFields(t *testing.T) {
	s := newTestService()
	for _, in := range [][3]string{
		{"", "a@x.com", "pw"},
		{"a", "", "pw"},
		{"a", "a@x.com", ""},
		{"   ", "a@x.com", "pw"},
	} {
		_, _, err := s.Register(in[0], in[1], in[2])
		assert.ErrorIs(t, err, apperror.ErrValidation, "input %v", in)
	}
}

func TestLogin(t *testing.T) {
	s := newTestService()
	_, _, err := s.Register("a", "a@x.com", "right")
	require.NoError(t, err)

	token, username, err := s.Login("a@x.com", "right")
	require.NoError(t, err)
	assert.Equal(t, "a", username)
	_, err = s.VerifyToken(token)
	assert.NoError(t, err)

	_, _, wrongErr := s.Login("a@x.com", "wrong")
	_, _, unknownErr := s.Login("nobody@x.com", "x")
	assert.ErrorIs(t, wrongErr, apperror.ErrInvalidCredentials)
	assert.ErrorIs(t, unknownErr, apperror.ErrInvalidCredentials)
	assert.Equal(t, wrongErr.Error(), unknownErr.Error(), "unknown email must look like a wrong password")

	_, _, err = s.Login("", "right")
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

type failingRepo struct{}

func (failingRepo) Create(string, string, string) (model.User, error) {
	return model.User{}, errors.New("disk full")
}

func (failingRepo) GetByEmail(string) (model.User, error) {
	return model.User{}, errors.New("disk full")
}

func TestLoginPropagatesStorageFailure(t *testing.T) {
	s := NewAuthService(failingRepo{}, "test-secret")
	_, _, err := s.Login("a@x.com", "pw")
	require.Error(t, err)
	assert.True(t, apperror.IsInternal(err))
}

func TestVerifyTokenOutcomes(t *testing.T) {
	s := newTestService()
	_, valid, err := s.Register("a", "a@x.com", "right")
	require.NoError(t, err)

	_, err = s.VerifyToken("")
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)

	_, err = s.VerifyToken("not-a-jwt")
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	other := NewAuthService(repository.NewMemoryUserRepository(), "another-secret")
	_, err = other.VerifyToken(valid)
	assert.ErrorIs(t, err, apperror.ErrForbidden, "token signed by a different secret")

	past := time.Now().Add(-48 * time.Hour)
	stale := newTestService(WithClock(func() time.Time { return past }))
	_, expired, err := stale.Register("b", "b@x.com", "pw")
	require.NoError(t, err)
	_, err = s.VerifyToken(expired)
	assert.ErrorIs(t, err, apperror.ErrForbidden, "expired token")
}

func TestVerifyTokenRejectsOtherAlgorithms(t *testing.T) {
	s := newTestService()
	claims := model.Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = s.VerifyToken(unsigned)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestVerifyTokenRequiresExpiry(t *testing.T) {
	s := newTestService()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, model.Claims{UserID: 1}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = s.VerifyToken(signed)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestWithTokenTTL(t *testing.T) {
	s := newTestService(WithTokenTTL(time.Minute))
	_, token, err := s.Register("a", "a@x.com", "pw")
	require.NoError(t, err)

	claims, err := s.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestLongPasswords(t *testing.T) {
	s := newTestService()
	long := strings.Repeat("p", 80)

	_, _, err := s.Register("a", "a@x.com", long)
	require.NoError(t, err)

	_, username, err := s.Login("a@x.com", long)
	require.NoError(t, err)
	assert.Equal(t, "a", username)

	// Passwords sharing the first 72 bytes are still different passwords.
	_, _, err = s.Login("a@x.com", long[:72]+"q")
	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)
}

func TestDummyHashUsesConfiguredCost(t *testing.T) {
	s := newTestService()
	_, _, err := s.Login("nobody@x.com", "pw")
	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)

	cost, err := bcrypt.Cost(s.dummyHash)
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)
}
