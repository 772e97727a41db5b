package identity

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const localIssuer = "household"

type localAccount struct {
	Account
	passwordHash []byte
}

// Local is a self-contained provider for development and tests: accounts
// live in memory with bcrypt password hashes and tokens are HS256 JWTs.
type Local struct {
	mu       sync.RWMutex
	accounts map[string]*localAccount // by uid
	byEmail  map[string]string
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

func NewLocal(secret string, ttl time.Duration) *Local {
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &Local{
		accounts: make(map[string]*localAccount),
		byEmail:  make(map[string]string),
		secret:   []byte(secret),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (l *Local) VerifyToken(_ context.Context, token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return l.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(localIssuer),
		jwt.WithTimeFunc(l.now),
	)
	if err != nil {
		return "", errors.Wrap(ErrInvalidToken, err.Error())
	}
	if !parsed.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

func (l *Local) GetUserByEmail(_ context.Context, email string) (*Account, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	uid, ok := l.byEmail[normalizeEmail(email)]
	if !ok {
		return nil, ErrUserNotFound
	}
	acc := l.accounts[uid].Account
	return &acc, nil
}

func (l *Local) CreateUser(_ context.Context, account NewAccount) (*Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(account.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "bcrypt.GenerateFromPassword failed")
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	key := normalizeEmail(account.Email)
	if _, exists := l.byEmail[key]; exists {
		return nil, ErrEmailExists
	}
	acc := &localAccount{
		Account: Account{
			UID:         uuid.New().String(),
			Email:       account.Email,
			DisplayName: account.DisplayName,
			Phone:       account.Phone,
		},
		passwordHash: hash,
	}
	l.accounts[acc.UID] = acc
	l.byEmail[key] = acc.UID
	out := acc.Account
	return &out, nil
}

// IssueToken checks the password and signs a token for the account.
func (l *Local) IssueToken(_ context.Context, email, password string) (string, error) {
	l.mu.RLock()
	uid, ok := l.byEmail[normalizeEmail(email)]
	var acc *localAccount
	if ok {
		acc = l.accounts[uid]
	}
	l.mu.RUnlock()
	if acc == nil {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return l.sign(acc.UID)
}

func (l *Local) sign(uid string) (string, error) {
	now := l.now()
	claims := jwt.RegisteredClaims{
		Subject:   uid,
		Issuer:    localIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(l.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(l.secret)
	if err != nil {
		return "", errors.Wrap(err, "token.SignedString failed")
	}
	return signed, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
