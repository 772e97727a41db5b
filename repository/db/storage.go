package db

import (
	"context"
	"encoding/json"
	"time"

	domainerrors "household/internal/domain/errors"
	"household/internal/domain/models"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const queryTimeout = 15 * time.Second

// Both collections are stored as JSONB documents so the layout matches the
// hosted document store one to one.
const (
	queryCreateAdmin = `INSERT INTO users (uid, doc) VALUES ($1, $2::jsonb)
		ON CONFLICT (uid) DO UPDATE SET doc = EXCLUDED.doc`
	queryGetAdmin     = `SELECT doc FROM users WHERE uid = $1`
	queryCreateMember = `INSERT INTO members (id, admin_id, doc) VALUES ($1, $2, $3::jsonb)`
	queryGetMember    = `SELECT id, doc FROM members WHERE id = $1`
	queryLockMember   = `SELECT id, doc FROM members WHERE id = $1 FOR UPDATE`
	queryListMembers  = `SELECT id, doc FROM members WHERE admin_id = $1`
	queryPatchMember  = `UPDATE members
		SET doc = jsonb_set(doc || $2::jsonb, '{character}',
			COALESCE(doc->'character', '{}'::jsonb) || $3::jsonb)
		WHERE id = $1`
	queryAppendTask = `UPDATE members
		SET doc = jsonb_set(doc, '{tasks}', COALESCE(doc->'tasks', '[]'::jsonb) || jsonb_build_array($2::jsonb))
		WHERE id = $1 AND NOT COALESCE(doc->'tasks', '[]'::jsonb) @> jsonb_build_array($2::jsonb)`
	queryMemberExists = `SELECT EXISTS (SELECT 1 FROM members WHERE id = $1)`
	queryReplaceDoc   = `UPDATE members SET doc = $2::jsonb WHERE id = $1`
	queryDeleteMember = `DELETE FROM members WHERE id = $1`
)

type Storage struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewStorage(connStr string, logger *zap.Logger) (*Storage, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, errors.Wrap(err, "pgxpool.New failed")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "pool.Ping failed")
	}
	logger.Info("database connection established")
	return &Storage{pool: pool, logger: logger.Named("postgres")}, nil
}

func (s *Storage) Close() {
	s.pool.Close()
}

func (s *Storage) GetAdmin(ctx context.Context, uid string) (*models.Admin, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	var doc []byte
	err := s.pool.QueryRow(ctx, queryGetAdmin, uid).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domainerrors.ErrUserNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "row.Scan failed")
	}
	admin := &models.Admin{}
	if err := json.Unmarshal(doc, admin); err != nil {
		return nil, errors.Wrap(err, "decode admin document")
	}
	admin.UID = uid
	return admin, nil
}

func (s *Storage) CreateAdmin(ctx context.Context, admin *models.Admin) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	doc, err := json.Marshal(admin)
	if err != nil {
		return errors.Wrap(err, "encode admin document")
	}
	if _, err := s.pool.Exec(ctx, queryCreateAdmin, admin.UID, doc); err != nil {
		return errors.Wrap(err, "pool.Exec failed")
	}
	return nil
}

func (s *Storage) CreateMember(ctx context.Context, member *models.Member) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	id := uuid.New().String()
	doc, err := encodeMember(*member)
	if err != nil {
		return "", err
	}
	if _, err := s.pool.Exec(ctx, queryCreateMember, id, member.AdminID, doc); err != nil {
		return "", errors.Wrap(err, "pool.Exec failed")
	}
	member.ID = id
	s.logger.Debug("member stored", zap.String("member_id", id))
	return id, nil
}

func (s *Storage) GetMember(ctx context.Context, id string) (*models.Member, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return scanMember(s.pool.QueryRow(ctx, queryGetMember, id))
}

func (s *Storage) ListMembers(ctx context.Context, adminID string) ([]models.Member, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	rows, err := s.pool.Query(ctx, queryListMembers, adminID)
	if err != nil {
		return nil, errors.Wrap(err, "pool.Query failed")
	}
	defer rows.Close()

	members := []models.Member{}
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, *member)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "rows.Err")
	}
	return members, nil
}

func (s *Storage) UpdateMember(ctx context.Context, id string, update models.MemberUpdate) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	patch, characterPatch, err := encodePatch(update)
	if err != nil {
		return err
	}
	ct, err := s.pool.Exec(ctx, queryPatchMember, id, patch, characterPatch)
	if err != nil {
		return errors.Wrap(err, "pool.Exec failed")
	}
	if ct.RowsAffected() == 0 {
		return domainerrors.ErrMemberNotFound
	}
	return nil
}

func (s *Storage) AppendTask(ctx context.Context, id string, task models.Task) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	doc, err := json.Marshal(task)
	if err != nil {
		return errors.Wrap(err, "encode task")
	}
	ct, err := s.pool.Exec(ctx, queryAppendTask, id, doc)
	if err != nil {
		return errors.Wrap(err, "pool.Exec failed")
	}
	if ct.RowsAffected() > 0 {
		return nil
	}
	// Nothing changed: either the task is already there or the member is gone.
	var exists bool
	if err := s.pool.QueryRow(ctx, queryMemberExists, id).Scan(&exists); err != nil {
		return errors.Wrap(err, "row.Scan failed")
	}
	if !exists {
		return domainerrors.ErrMemberNotFound
	}
	return nil
}

// ModifyMember locks the member row for the duration of fn so concurrent
// balance changes serialize instead of overwriting each other.
func (s *Storage) ModifyMember(ctx context.Context, id string, fn models.MemberMutation) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "pool.Begin failed")
	}
	rollback := func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			s.logger.Error("tx.Rollback failed", zap.Error(err))
		}
	}

	member, err := scanMember(tx.QueryRow(ctx, queryLockMember, id))
	if err != nil {
		rollback()
		return err
	}
	current := member.Clone()
	update, err := fn(&current)
	if err != nil {
		rollback()
		return err
	}
	update.Apply(member)
	doc, err := encodeMember(*member)
	if err != nil {
		rollback()
		return err
	}
	if _, err := tx.Exec(ctx, queryReplaceDoc, id, doc); err != nil {
		rollback()
		return errors.Wrap(err, "tx.Exec failed")
	}
	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "tx.Commit failed")
	}
	return nil
}

func (s *Storage) DeleteMember(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	ct, err := s.pool.Exec(ctx, queryDeleteMember, id)
	if err != nil {
		return errors.Wrap(err, "pool.Exec failed")
	}
	if ct.RowsAffected() == 0 {
		return domainerrors.ErrMemberNotFound
	}
	return nil
}

func scanMember(row pgx.Row) (*models.Member, error) {
	var (
		id  string
		doc []byte
	)
	err := row.Scan(&id, &doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domainerrors.ErrMemberNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "row.Scan failed")
	}
	member := &models.Member{}
	if err := json.Unmarshal(doc, member); err != nil {
		return nil, errors.Wrap(err, "decode member document")
	}
	member.ID = id
	if member.Tasks == nil {
		member.Tasks = []models.Task{}
	}
	return member, nil
}

func encodeMember(member models.Member) ([]byte, error) {
	member.ID = ""
	doc, err := json.Marshal(member)
	if err != nil {
		return nil, errors.Wrap(err, "encode member document")
	}
	return doc, nil
}

// encodePatch splits an update into the top-level replacement object and the
// keys merged into the nested character object.
func encodePatch(update models.MemberUpdate) ([]byte, []byte, error) {
	top := map[string]any{}
	if update.Name != nil {
		top["name"] = *update.Name
	}
	if update.Money != nil {
		top["money"] = *update.Money
	}
	if update.Cosmetics != nil {
		top["cosmetics"] = *update.Cosmetics
	}
	if update.EquippedCosmetics != nil {
		top["equippedCosmetics"] = *update.EquippedCosmetics
	}
	if update.Tasks != nil {
		top["tasks"] = *update.Tasks
	}
	character := update.Character
	if character == nil {
		character = map[string]any{}
	}
	patch, err := json.Marshal(top)
	if err != nil {
		return nil, nil, errors.Wrap(err, "encode member patch")
	}
	characterPatch, err := json.Marshal(character)
	if err != nil {
		return nil, nil, errors.Wrap(err, "encode character patch")
	}
	return patch, characterPatch, nil
}
