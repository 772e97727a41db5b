package household

import (
	"context"
	"crypto/subtle"
	"strings"

	domainerrors "household/internal/domain/errors"
	"household/internal/domain/models"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CompletedTask is the member state after a task completion.
type CompletedTask struct {
	Tasks  []models.Task
	Money  float64
	Credit float64
}

// VerifyPin checks pin against the admin's stored PIN. An empty pin is
// rejected as invalid input before the admin record is loaded, so a caller
// without a profile gets 400 rather than 404 when it sends no PIN.
func (s *Service) VerifyPin(ctx context.Context, uid, pin string) error {
	if pin == "" {
		return errors.Wrap(domainerrors.ErrInvalidInput, "PIN is required")
	}
	admin, err := s.store.GetAdmin(ctx, uid)
	if err != nil {
		return errors.Wrap(err, "store.GetAdmin failed")
	}
	if subtle.ConstantTimeCompare([]byte(admin.AdminPin), []byte(pin)) != 1 {
		return domainerrors.ErrInvalidPin
	}
	return nil
}

func (s *Service) CreateMember(ctx context.Context, uid string, req models.CreateMemberRequest) (string, error) {
	if strings.TrimSpace(req.Name) == "" || req.Code == "" || req.Color == "" {
		return "", domainerrors.ErrMissingFields
	}
	member := &models.Member{
		Name:  req.Name,
		Code:  req.Code,
		Money: 0,
		Tasks: []models.Task{},
		Character: models.Character{
			Type:  models.DefaultCharacterType,
			Color: req.Color,
		},
		AdminID: uid,
	}
	id, err := s.store.CreateMember(ctx, member)
	if err != nil {
		return "", errors.Wrap(err, "store.CreateMember failed")
	}
	s.logger.Debug("member created", zap.String("member_id", id), zap.String("admin_id", uid))
	return id, nil
}

func (s *Service) GetMember(ctx context.Context, uid, id string) (*models.Member, error) {
	return s.ownedMember(ctx, uid, id)
}

func (s *Service) ListMembers(ctx context.Context, uid string) ([]models.Member, error) {
	members, err := s.store.ListMembers(ctx, uid)
	if err != nil {
		return nil, errors.Wrap(err, "store.ListMembers failed")
	}
	if members == nil {
		members = []models.Member{}
	}
	return members, nil
}

func (s *Service) DeleteMember(ctx context.Context, uid, id string) error {
	if _, err := s.ownedMember(ctx, uid, id); err != nil {
		return err
	}
	if err := s.store.DeleteMember(ctx, id); err != nil {
		return errors.Wrap(err, "store.DeleteMember failed")
	}
	s.logger.Debug("member deleted", zap.String("member_id", id), zap.String("admin_id", uid))
	return nil
}

func (s *Service) UpdateMember(ctx context.Context, uid, id string, update models.MemberUpdate) error {
	if _, err := s.ownedMember(ctx, uid, id); err != nil {
		return err
	}
	if update.IsEmpty() {
		return domainerrors.ErrNoUpdatableFields
	}
	if update.Money != nil && *update.Money < 0 {
		return domainerrors.ErrInvalidMoney
	}
	if err := s.store.UpdateMember(ctx, id, update); err != nil {
		return errors.Wrap(err, "store.UpdateMember failed")
	}
	return nil
}

func (s *Service) AddTask(ctx context.Context, uid, id, title string, price *float64) (*models.Task, error) {
	if strings.TrimSpace(title) == "" || price == nil {
		return nil, errors.Wrap(domainerrors.ErrInvalidInput, "title and price are required")
	}
	if *price < 0 {
		return nil, domainerrors.ErrInvalidPrice
	}
	if _, err := s.ownedMember(ctx, uid, id); err != nil {
		return nil, err
	}
	task := models.Task{
		ID:        uuid.New().String(),
		Title:     title,
		Price:     *price,
		Completed: false,
	}
	if err := s.store.AppendTask(ctx, id, task); err != nil {
		return nil, errors.Wrap(err, "store.AppendTask failed")
	}
	return &task, nil
}

// CompleteTask marks the first open task with taskID as completed and credits
// its price. Completing an unknown or already completed task credits nothing
// but still rewrites the task list.
func (s *Service) CompleteTask(ctx context.Context, uid, id, taskID string) (*CompletedTask, error) {
	var result CompletedTask
	err := s.store.ModifyMember(ctx, id, func(m *models.Member) (models.MemberUpdate, error) {
		if m.AdminID != uid {
			return models.MemberUpdate{}, domainerrors.ErrForbidden
		}
		tasks := make([]models.Task, 0, len(m.Tasks))
		credit := 0.0
		matched := false
		for _, task := range m.Tasks {
			if !matched && task.ID == taskID && !task.Completed {
				task.Completed = true
				credit = task.Price
				matched = true
			}
			tasks = append(tasks, task)
		}
		money := m.Money + credit
		result = CompletedTask{Tasks: tasks, Money: money, Credit: credit}
		return models.MemberUpdate{Tasks: &tasks, Money: &money}, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "store.ModifyMember failed")
	}
	s.logger.Debug("task completed",
		zap.String("member_id", id),
		zap.String("task_id", taskID),
		zap.Float64("credit", result.Credit),
	)
	return &result, nil
}

func (s *Service) ownedMember(ctx context.Context, uid, id string) (*models.Member, error) {
	member, err := s.store.GetMember(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "store.GetMember failed")
	}
	if member.AdminID != uid {
		return nil, domainerrors.ErrForbidden
	}
	return member, nil
}
