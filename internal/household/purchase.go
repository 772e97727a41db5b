package household

import (
	"context"
	"sort"

	domainerrors "household/internal/domain/errors"
	"household/internal/domain/models"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
)

type PurchaseResult struct {
	Money     float64
	Cosmetics []string
}

// Purchase debits the item price from the member and adds the item to the
// member's cosmetics. The balance never goes below zero.
func (s *Service) Purchase(ctx context.Context, uid, memberID string, item *models.Item) (*PurchaseResult, error) {
	if memberID == "" || item == nil || item.ID == "" || item.Price == nil {
		return nil, errors.Wrap(domainerrors.ErrInvalidInput, "item and memberId are required")
	}
	price := item.Price.Float64()
	if price < 0 {
		return nil, domainerrors.ErrInvalidPrice
	}

	var result PurchaseResult
	err := s.store.ModifyMember(ctx, memberID, func(m *models.Member) (models.MemberUpdate, error) {
		if m.AdminID != uid {
			return models.MemberUpdate{}, domainerrors.ErrForbidden
		}
		if m.Money < price {
			return models.MemberUpdate{}, domainerrors.ErrInsufficientFunds
		}
		money := m.Money - price
		cosmetics := unionCosmetics(m.Cosmetics, item.ID)
		result = PurchaseResult{Money: money, Cosmetics: cosmetics}
		return models.MemberUpdate{Money: &money, Cosmetics: &cosmetics}, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "store.ModifyMember failed")
	}
	s.logger.Debug("item purchased",
		zap.String("member_id", memberID),
		zap.String("item_id", item.ID),
		zap.Float64("price", price),
	)
	return &result, nil
}

func unionCosmetics(owned []string, id string) []string {
	set := make(map[string]struct{}, len(owned)+1)
	for _, c := range owned {
		set[c] = struct{}{}
	}
	set[id] = struct{}{}
	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
