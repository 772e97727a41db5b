package household

import (
	"context"

	domainerrors "household/internal/domain/errors"
	"household/internal/domain/models"
	"household/internal/identity"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
)

// Register creates the identity-provider account and the admin profile that
// goes with it. Input is expected to be validated already.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (string, error) {
	if req.Username == "" || req.Email == "" || req.Password == "" || req.AdminPin == "" {
		return "", domainerrors.ErrMissingFields
	}
	account, err := s.idp.CreateUser(ctx, identity.NewAccount{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.Username,
		Phone:       req.Phone,
	})
	if errors.Is(err, identity.ErrEmailExists) {
		return "", domainerrors.ErrConflict
	}
	if err != nil {
		return "", errors.Wrap(err, "idp.CreateUser failed")
	}

	admin := &models.Admin{
		UID:      account.UID,
		Username: req.Username,
		Email:    req.Email,
		Phone:    req.Phone,
		AdminPin: string(req.AdminPin),
	}
	if err := s.store.CreateAdmin(ctx, admin); err != nil {
		s.logger.Error("admin profile not stored, provider account left behind",
			zap.String("uid", account.UID), zap.Error(err))
		return "", errors.Wrap(err, "store.CreateAdmin failed")
	}
	s.logger.Info("admin registered", zap.String("uid", account.UID))
	return account.UID, nil
}

// Login resolves an admin by email. The password is not checked here: sign-in
// itself happens against the identity provider.
func (s *Service) Login(ctx context.Context, email, password string) (*models.Admin, error) {
	if email == "" || password == "" {
		return nil, domainerrors.ErrMissingFields
	}
	account, err := s.idp.GetUserByEmail(ctx, email)
	if errors.Is(err, identity.ErrUserNotFound) {
		return nil, domainerrors.ErrUnknownAccount
	}
	if err != nil {
		return nil, errors.Wrap(err, "idp.GetUserByEmail failed")
	}
	admin, err := s.store.GetAdmin(ctx, account.UID)
	if err != nil {
		return nil, errors.Wrap(err, "store.GetAdmin failed")
	}
	return &models.Admin{
		UID:      account.UID,
		Username: admin.Username,
		Email:    account.Email,
	}, nil
}

func (s *Service) IssueToken(ctx context.Context, email, password string) (string, error) {
	issuer, ok := s.idp.(identity.TokenIssuer)
	if !ok {
		return "", errors.Wrap(domainerrors.ErrNotFound, "token issuing is not supported")
	}
	if email == "" || password == "" {
		return "", domainerrors.ErrMissingFields
	}
	token, err := issuer.IssueToken(ctx, email, password)
	if errors.Is(err, identity.ErrInvalidCredentials) {
		return "", domainerrors.ErrInvalidCredentials
	}
	if err != nil {
		return "", errors.Wrap(err, "idp.IssueToken failed")
	}
	return token, nil
}

// Authenticate resolves a bearer token to the admin's uid.
func (s *Service) Authenticate(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", domainerrors.ErrMissingToken
	}
	uid, err := s.idp.VerifyToken(ctx, token)
	if err != nil {
		return "", errors.Wrap(domainerrors.ErrInvalidToken, err.Error())
	}
	if uid == "" {
		return "", domainerrors.ErrInvalidToken
	}
	return uid, nil
}
