package firestore

import (
	"context"
	"encoding/json"

	domainerrors "household/internal/domain/errors"
	"household/internal/domain/models"

	fs "cloud.google.com/go/firestore"
	"github.com/go-faster/errors"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	usersCollection   = "users"
	membersCollection = "members"
)

// Storage keeps admins and members in Cloud Firestore.
type Storage struct {
	client *fs.Client
	logger *zap.Logger
}

func NewStorage(client *fs.Client, logger *zap.Logger) *Storage {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Storage{client: client, logger: logger.Named("firestore")}
}

func (s *Storage) Close() error {
	return s.client.Close()
}

func (s *Storage) GetAdmin(ctx context.Context, uid string) (*models.Admin, error) {
	snap, err := s.client.Collection(usersCollection).Doc(uid).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, domainerrors.ErrUserNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "doc.Get failed")
	}
	admin := &models.Admin{}
	if err := fromDocument(snap.Data(), admin); err != nil {
		return nil, err
	}
	admin.UID = uid
	return admin, nil
}

func (s *Storage) CreateAdmin(ctx context.Context, admin *models.Admin) error {
	data, err := toDocument(admin)
	if err != nil {
		return err
	}
	if _, err := s.client.Collection(usersCollection).Doc(admin.UID).Set(ctx, data); err != nil {
		return errors.Wrap(err, "doc.Set failed")
	}
	return nil
}

func (s *Storage) CreateMember(ctx context.Context, member *models.Member) (string, error) {
	data, err := memberDocument(*member)
	if err != nil {
		return "", err
	}
	ref := s.client.Collection(membersCollection).NewDoc()
	if _, err := ref.Create(ctx, data); err != nil {
		return "", errors.Wrap(err, "doc.Create failed")
	}
	member.ID = ref.ID
	s.logger.Debug("member stored", zap.String("member_id", ref.ID))
	return ref.ID, nil
}

func (s *Storage) GetMember(ctx context.Context, id string) (*models.Member, error) {
	snap, err := s.client.Collection(membersCollection).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, domainerrors.ErrMemberNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "doc.Get failed")
	}
	return decodeMember(snap)
}

func (s *Storage) ListMembers(ctx context.Context, adminID string) ([]models.Member, error) {
	snaps, err := s.client.Collection(membersCollection).
		Where("adminId", "==", adminID).
		Documents(ctx).
		GetAll()
	if err != nil {
		return nil, errors.Wrap(err, "query.GetAll failed")
	}
	members := make([]models.Member, 0, len(snaps))
	for _, snap := range snaps {
		member, err := decodeMember(snap)
		if err != nil {
			return nil, err
		}
		members = append(members, *member)
	}
	return members, nil
}

func (s *Storage) UpdateMember(ctx context.Context, id string, update models.MemberUpdate) error {
	updates, err := fieldUpdates(update)
	if err != nil {
		return err
	}
	if len(updates) == 0 {
		return nil
	}
	_, err = s.client.Collection(membersCollection).Doc(id).Update(ctx, updates)
	if status.Code(err) == codes.NotFound {
		return domainerrors.ErrMemberNotFound
	}
	if err != nil {
		return errors.Wrap(err, "doc.Update failed")
	}
	return nil
}

func (s *Storage) AppendTask(ctx context.Context, id string, task models.Task) error {
	value, err := toDocument(task)
	if err != nil {
		return err
	}
	_, err = s.client.Collection(membersCollection).Doc(id).Update(ctx, []fs.Update{
		{Path: "tasks", Value: fs.ArrayUnion(value)},
	})
	if status.Code(err) == codes.NotFound {
		return domainerrors.ErrMemberNotFound
	}
	if err != nil {
		return errors.Wrap(err, "doc.Update failed")
	}
	return nil
}

// ModifyMember runs fn inside a Firestore transaction; Firestore retries the
// whole function when the document changes underneath it.
func (s *Storage) ModifyMember(ctx context.Context, id string, fn models.MemberMutation) error {
	ref := s.client.Collection(membersCollection).Doc(id)
	return s.client.RunTransaction(ctx, func(ctx context.Context, tx *fs.Transaction) error {
		snap, err := tx.Get(ref)
		if status.Code(err) == codes.NotFound {
			return domainerrors.ErrMemberNotFound
		}
		if err != nil {
			return errors.Wrap(err, "tx.Get failed")
		}
		member, err := decodeMember(snap)
		if err != nil {
			return err
		}
		update, err := fn(member)
		if err != nil {
			return err
		}
		updates, err := fieldUpdates(update)
		if err != nil {
			return err
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Update(ref, updates)
	})
}

func (s *Storage) DeleteMember(ctx context.Context, id string) error {
	_, err := s.client.Collection(membersCollection).Doc(id).Delete(ctx, fs.Exists)
	if status.Code(err) == codes.NotFound {
		return domainerrors.ErrMemberNotFound
	}
	if err != nil {
		return errors.Wrap(err, "doc.Delete failed")
	}
	return nil
}

func decodeMember(snap *fs.DocumentSnapshot) (*models.Member, error) {
	member := &models.Member{}
	if err := fromDocument(snap.Data(), member); err != nil {
		return nil, err
	}
	member.ID = snap.Ref.ID
	if member.Tasks == nil {
		member.Tasks = []models.Task{}
	}
	return member, nil
}

func memberDocument(member models.Member) (map[string]any, error) {
	member.ID = ""
	data, err := toDocument(member)
	if err != nil {
		return nil, err
	}
	delete(data, "id")
	return data, nil
}

// fieldUpdates turns a member update into Firestore field writes. Character
// keys become nested paths so the rest of the character object survives.
func fieldUpdates(update models.MemberUpdate) ([]fs.Update, error) {
	var updates []fs.Update
	if update.Name != nil {
		updates = append(updates, fs.Update{Path: "name", Value: *update.Name})
	}
	if update.Money != nil {
		updates = append(updates, fs.Update{Path: "money", Value: *update.Money})
	}
	for key, value := range update.Character {
		updates = append(updates, fs.Update{FieldPath: fs.FieldPath{"character", key}, Value: value})
	}
	if update.Cosmetics != nil {
		updates = append(updates, fs.Update{Path: "cosmetics", Value: *update.Cosmetics})
	}
	if update.EquippedCosmetics != nil {
		updates = append(updates, fs.Update{Path: "equippedCosmetics", Value: *update.EquippedCosmetics})
	}
	if update.Tasks != nil {
		tasks := make([]any, 0, len(*update.Tasks))
		for _, task := range *update.Tasks {
			value, err := toDocument(task)
			if err != nil {
				return nil, err
			}
			tasks = append(tasks, value)
		}
		updates = append(updates, fs.Update{Path: "tasks", Value: tasks})
	}
	return updates, nil
}

// toDocument and fromDocument go through JSON so the stored field names are
// exactly the API's field names.
func toDocument(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "encode document")
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, errors.Wrap(err, "encode document")
	}
	return data, nil
}

func fromDocument(data map[string]any, v any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return errors.Wrap(err, "decode document")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errors.Wrap(err, "decode document")
	}
	return nil
}
