// Package household implements the admin, purchase and account operations on
// top of a document store and an identity provider.
package household

import (
	"context"

	"household/internal/domain/models"
	"household/internal/identity"

	"go.uber.org/zap"
)

// Store is the document store holding the users and members collections.
//
// Lookups of absent documents return errors.ErrUserNotFound or
// errors.ErrMemberNotFound. ModifyMember runs fn and the resulting update as
// one isolated read-modify-write on the member document; an error returned by
// fn aborts the write and is passed through unchanged.
type Store interface {
	GetAdmin(ctx context.Context, uid string) (*models.Admin, error)
	CreateAdmin(ctx context.Context, admin *models.Admin) error

	CreateMember(ctx context.Context, member *models.Member) (string, error)
	GetMember(ctx context.Context, id string) (*models.Member, error)
	ListMembers(ctx context.Context, adminID string) ([]models.Member, error)
	UpdateMember(ctx context.Context, id string, update models.MemberUpdate) error
	AppendTask(ctx context.Context, id string, task models.Task) error
	ModifyMember(ctx context.Context, id string, fn models.MemberMutation) error
	DeleteMember(ctx context.Context, id string) error
}

type Service struct {
	store  Store
	idp    identity.Provider
	logger *zap.Logger
}

func New(store Store, idp identity.Provider, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		idp:    idp,
		logger: logger.Named("household"),
	}
}

// CanIssueTokens reports whether the configured provider mints its own tokens.
func (s *Service) CanIssueTokens() bool {
	_, ok := s.idp.(identity.TokenIssuer)
	return ok
}
