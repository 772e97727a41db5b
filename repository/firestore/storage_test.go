package firestore

import (
	"context"
	"os"
	"testing"

	domainerrors "household/internal/domain/errors"
	"household/internal/domain/models"

	fs "cloud.google.com/go/firestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemberDocument(t *testing.T) {
	data, err := memberDocument(models.Member{
		ID:    "ignored",
		Name:  "Ada",
		Code:  "1234",
		Money: 2.5,
		Tasks: []models.Task{{ID: "t1", Title: "Dishes", Price: 5}},
		Character: models.Character{
			Type:  models.DefaultCharacterType,
			Color: "red",
			Extra: map[string]any{"hat": "top"},
		},
		AdminID: "admin-1",
	})

	require.NoError(t, err)
	assert.NotContains(t, data, "id")
	assert.NotContains(t, data, "cosmetics")
	assert.Equal(t, "admin-1", data["adminId"])
	assert.Equal(t, 2.5, data["money"])
	assert.Equal(t, map[string]any{"type": "pinnefigur", "color": "red", "hat": "top"}, data["character"])
	tasks, ok := data["tasks"].([]any)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"id": "t1", "title": "Dishes", "price": float64(5), "completed": false}, tasks[0])
}

func TestFieldUpdates(t *testing.T) {
	name := "Bea"
	money := 7.0
	equipped := []string{"1"}
	tasks := []models.Task{{ID: "t1", Title: "Dishes", Price: 5, Completed: true}}

	tests := []struct {
		name   string
		update models.MemberUpdate
		want   []fs.Update
	}{
		{
			name:   "empty update",
			update: models.MemberUpdate{},
			want:   nil,
		},
		{
			name:   "top level fields",
			update: models.MemberUpdate{Name: &name, Money: &money, EquippedCosmetics: &equipped},
			want: []fs.Update{
				{Path: "name", Value: "Bea"},
				{Path: "money", Value: 7.0},
				{Path: "equippedCosmetics", Value: []string{"1"}},
			},
		},
		{
			name:   "character keys become nested paths",
			update: models.MemberUpdate{Character: map[string]any{"color": "blue"}},
			want: []fs.Update{
				{FieldPath: fs.FieldPath{"character", "color"}, Value: "blue"},
			},
		},
		{
			name:   "tasks are stored as maps",
			update: models.MemberUpdate{Tasks: &tasks},
			want: []fs.Update{
				{Path: "tasks", Value: []any{
					map[string]any{"id": "t1", "title": "Dishes", "price": float64(5), "completed": true},
				}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fieldUpdates(tt.update)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromDocument(t *testing.T) {
	member := &models.Member{}
	err := fromDocument(map[string]any{
		"name":      "Ada",
		"money":     int64(12),
		"adminId":   "admin-1",
		"character": map[string]any{"type": "pinnefigur", "color": "red", "shoes": "6"},
		"cosmetics": []any{"6"},
	}, member)

	require.NoError(t, err)
	assert.Equal(t, float64(12), member.Money)
	assert.Equal(t, "red", member.Character.Color)
	assert.Equal(t, "6", member.Character.Extra["shoes"])
	assert.Equal(t, []string{"6"}, member.Cosmetics)
}

func setupEmulator(t *testing.T) *Storage {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("Skipping test: FIRESTORE_EMULATOR_HOST is not set")
	}
	client, err := fs.NewClient(context.Background(), "household-test")
	require.NoError(t, err)
	storage := NewStorage(client, nil)
	t.Cleanup(func() { _ = storage.Close() })
	return storage
}

func TestStorageAgainstEmulator(t *testing.T) {
	storage := setupEmulator(t)
	ctx := context.Background()

	id, err := storage.CreateMember(ctx, &models.Member{
		Name:      "Ada",
		Code:      "1",
		Money:     3,
		Tasks:     []models.Task{},
		Character: models.Character{Type: models.DefaultCharacterType, Color: "red"},
		AdminID:   "admin-emulator",
	})
	require.NoError(t, err)

	require.NoError(t, storage.UpdateMember(ctx, id, models.MemberUpdate{Character: map[string]any{"color": "blue"}}))
	require.NoError(t, storage.AppendTask(ctx, id, models.Task{ID: "t1", Title: "Dishes", Price: 5}))

	err = storage.ModifyMember(ctx, id, func(m *models.Member) (models.MemberUpdate, error) {
		if m.Money < 5 {
			return models.MemberUpdate{}, domainerrors.ErrInsufficientFunds
		}
		return models.MemberUpdate{}, nil
	})
	assert.ErrorIs(t, err, domainerrors.ErrInsufficientFunds)

	got, err := storage.GetMember(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultCharacterType, got.Character.Type)
	assert.Equal(t, "blue", got.Character.Color)
	assert.Len(t, got.Tasks, 1)
	assert.Equal(t, float64(3), got.Money)

	require.NoError(t, storage.DeleteMember(ctx, id))
	assert.ErrorIs(t, storage.DeleteMember(ctx, id), domainerrors.ErrMemberNotFound)
	_, err = storage.GetMember(ctx, id)
	assert.ErrorIs(t, err, domainerrors.ErrMemberNotFound)
}
