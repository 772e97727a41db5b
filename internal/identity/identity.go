// Package identity talks to the service that owns admin accounts and issues
// the bearer tokens clients present.
package identity

import (
	"context"

	"github.com/go-faster/errors"
)

var (
	ErrInvalidToken       = errors.New("identity: invalid token")
	ErrUserNotFound       = errors.New("identity: user not found")
	ErrEmailExists        = errors.New("identity: email already exists")
	ErrInvalidCredentials = errors.New("identity: invalid credentials")
)

type Account struct {
	UID         string
	Email       string
	DisplayName string
	Phone       string
}

type NewAccount struct {
	Email       string
	Password    string
	DisplayName string
	Phone       string
}

// Provider is the subset of an identity service the API needs.
type Provider interface {
	VerifyToken(ctx context.Context, token string) (string, error)
	GetUserByEmail(ctx context.Context, email string) (*Account, error)
	CreateUser(ctx context.Context, account NewAccount) (*Account, error)
}

// TokenIssuer is implemented by providers that can mint tokens themselves
// instead of leaving sign-in to a client SDK.
type TokenIssuer interface {
	IssueToken(ctx context.Context, email, password string) (string, error)
}
