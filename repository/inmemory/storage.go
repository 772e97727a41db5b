package storage

import (
	"context"
	"sync"

	"household/internal/domain/errors"
	"household/internal/domain/models"

	"github.com/google/uuid"
)

// Storage keeps both collections in process memory. It is safe for
// concurrent use.
type Storage struct {
	mu      sync.RWMutex
	users   map[string]models.Admin
	members map[string]models.Member
}

func NewStorage() *Storage {
	return &Storage{
		users:   make(map[string]models.Admin),
		members: make(map[string]models.Member),
	}
}

func (s *Storage) GetAdmin(_ context.Context, uid string) (*models.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	admin, exists := s.users[uid]
	if !exists {
		return nil, errors.ErrUserNotFound
	}
	return &admin, nil
}

func (s *Storage) CreateAdmin(_ context.Context, admin *models.Admin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[admin.UID] = *admin
	return nil
}

func (s *Storage) CreateMember(_ context.Context, member *models.Member) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New().String()
	stored := member.Clone()
	stored.ID = id
	if stored.Tasks == nil {
		stored.Tasks = []models.Task{}
	}
	s.members[id] = stored
	member.ID = id
	return id, nil
}

func (s *Storage) GetMember(_ context.Context, id string) (*models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	member, exists := s.members[id]
	if !exists {
		return nil, errors.ErrMemberNotFound
	}
	out := member.Clone()
	return &out, nil
}

func (s *Storage) ListMembers(_ context.Context, adminID string) ([]models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	members := []models.Member{}
	for _, member := range s.members {
		if member.AdminID == adminID {
			members = append(members, member.Clone())
		}
	}
	return members, nil
}

func (s *Storage) UpdateMember(_ context.Context, id string, update models.MemberUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	member, exists := s.members[id]
	if !exists {
		return errors.ErrMemberNotFound
	}
	member = member.Clone()
	update.Apply(&member)
	s.members[id] = member
	return nil
}

func (s *Storage) AppendTask(_ context.Context, id string, task models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	member, exists := s.members[id]
	if !exists {
		return errors.ErrMemberNotFound
	}
	for _, existing := range member.Tasks {
		if existing == task {
			return nil
		}
	}
	member = member.Clone()
	member.Tasks = append(member.Tasks, task)
	s.members[id] = member
	return nil
}

func (s *Storage) ModifyMember(_ context.Context, id string, fn models.MemberMutation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	member, exists := s.members[id]
	if !exists {
		return errors.ErrMemberNotFound
	}
	current := member.Clone()
	update, err := fn(&current)
	if err != nil {
		return err
	}
	member = member.Clone()
	update.Apply(&member)
	s.members[id] = member
	return nil
}

func (s *Storage) DeleteMember(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.members[id]; !exists {
		return errors.ErrMemberNotFound
	}
	delete(s.members, id)
	return nil
}
