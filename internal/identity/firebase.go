package identity

import (
	"context"

	"firebase.google.com/go/v4/auth"
	"github.com/go-faster/errors"
)

// Firebase verifies ID tokens and manages accounts through Firebase
// Authentication.
type Firebase struct {
	client *auth.Client
}

func NewFirebase(client *auth.Client) *Firebase {
	return &Firebase{client: client}
}

func (f *Firebase) VerifyToken(ctx context.Context, token string) (string, error) {
	decoded, err := f.client.VerifyIDToken(ctx, token)
	if err != nil {
		return "", errors.Wrap(ErrInvalidToken, err.Error())
	}
	return decoded.UID, nil
}

func (f *Firebase) GetUserByEmail(ctx context.Context, email string) (*Account, error) {
	user, err := f.client.GetUserByEmail(ctx, email)
	if auth.IsUserNotFound(err) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "auth.GetUserByEmail failed")
	}
	return accountFromRecord(user), nil
}

func (f *Firebase) CreateUser(ctx context.Context, account NewAccount) (*Account, error) {
	params := (&auth.UserToCreate{}).
		Email(account.Email).
		Password(account.Password).
		DisplayName(account.DisplayName)
	if account.Phone != "" {
		params = params.PhoneNumber(account.Phone)
	}
	user, err := f.client.CreateUser(ctx, params)
	if auth.IsEmailAlreadyExists(err) {
		return nil, ErrEmailExists
	}
	if err != nil {
		return nil, errors.Wrap(err, "auth.CreateUser failed")
	}
	return accountFromRecord(user), nil
}

func accountFromRecord(user *auth.UserRecord) *Account {
	if user == nil || user.UserInfo == nil {
		return &Account{}
	}
	return &Account{
		UID:         user.UID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Phone:       user.PhoneNumber,
	}
}
