package identity

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalCreateUser(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(*Local)
		account NewAccount
		want    struct {
			err error
		}
	}{
		{
			name:    "new account",
			setup:   func(*Local) {},
			account: NewAccount{Email: "parent@example.com", Password: "secret123", DisplayName: "parent"},
		},
		{
			name: "duplicate email ignores case",
			setup: func(l *Local) {
				_, err := l.CreateUser(context.Background(), NewAccount{Email: "parent@example.com", Password: "x"})
				require.NoError(t, err)
			},
			account: NewAccount{Email: "Parent@Example.com", Password: "secret123"},
			want: struct {
				err error
			}{err: ErrEmailExists},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLocal("test-secret", time.Hour)
			tt.setup(l)

			acc, err := l.CreateUser(context.Background(), tt.account)

			if tt.want.err != nil {
				assert.ErrorIs(t, err, tt.want.err)
				assert.Nil(t, acc)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, acc.UID)
			assert.Equal(t, tt.account.Email, acc.Email)

			found, err := l.GetUserByEmail(context.Background(), tt.account.Email)
			require.NoError(t, err)
			assert.Equal(t, acc.UID, found.UID)
		})
	}
}

func TestLocalGetUserByEmailNotFound(t *testing.T) {
	l := NewLocal("test-secret", time.Hour)

	_, err := l.GetUserByEmail(context.Background(), "nobody@example.com")

	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestLocalIssueAndVerifyToken(t *testing.T) {
	ctx := context.Background()
	l := NewLocal("test-secret", time.Hour)
	acc, err := l.CreateUser(ctx, NewAccount{Email: "parent@example.com", Password: "secret123"})
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
		want     struct {
			issueErr error
		}
	}{
		{name: "correct password", email: "parent@example.com", password: "secret123"},
		{
			name: "wrong password", email: "parent@example.com", password: "nope",
			want: struct{ issueErr error }{issueErr: ErrInvalidCredentials},
		},
		{
			name: "unknown email", email: "other@example.com", password: "secret123",
			want: struct{ issueErr error }{issueErr: ErrInvalidCredentials},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := l.IssueToken(ctx, tt.email, tt.password)
			if tt.want.issueErr != nil {
				assert.ErrorIs(t, err, tt.want.issueErr)
				return
			}
			require.NoError(t, err)

			uid, err := l.VerifyToken(ctx, token)
			require.NoError(t, err)
			assert.Equal(t, acc.UID, uid)
		})
	}
}

func TestLocalVerifyTokenRejects(t *testing.T) {
	ctx := context.Background()
	l := NewLocal("test-secret", time.Hour)

	expired := NewLocal("test-secret", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	expiredToken, err := expired.sign("uid-1")
	require.NoError(t, err)

	otherSecret, err := NewLocal("another-secret", time.Hour).sign("uid-1")
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject: "uid-1",
		Issuer:  localIssuer,
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-jwt"},
		{name: "expired", token: expiredToken},
		{name: "wrong secret", token: otherSecret},
		{name: "unsigned", token: noneToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uid, err := l.VerifyToken(ctx, tt.token)

			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.Empty(t, uid)
		})
	}
}
