package models

import (
	"encoding/json"

	domainerrors "household/internal/domain/errors"

	"github.com/go-faster/errors"
)

// ParseMemberUpdate picks the writable member fields out of a raw request
// body. Unknown keys are ignored. A top-level "color" is folded into the
// character object.
func ParseMemberUpdate(raw map[string]json.RawMessage) (MemberUpdate, error) {
	var update MemberUpdate
	decode := func(key string, dst any) error {
		if err := json.Unmarshal(raw[key], dst); err != nil {
			return errors.Wrapf(domainerrors.ErrInvalidInput, "field %q: %v", key, err)
		}
		return nil
	}

	if _, ok := raw["name"]; ok {
		var name string
		if err := decode("name", &name); err != nil {
			return MemberUpdate{}, err
		}
		update.Name = &name
	}
	if _, ok := raw["money"]; ok {
		var money Amount
		if err := decode("money", &money); err != nil {
			return MemberUpdate{}, err
		}
		v := money.Float64()
		update.Money = &v
	}
	if _, ok := raw["character"]; ok {
		var character map[string]any
		if err := decode("character", &character); err != nil {
			return MemberUpdate{}, err
		}
		if character == nil {
			return MemberUpdate{}, errors.Wrap(domainerrors.ErrInvalidInput, "character must be an object")
		}
		for _, key := range []string{"type", "color"} {
			if v, ok := character[key]; ok {
				if _, isString := v.(string); !isString {
					return MemberUpdate{}, errors.Wrapf(domainerrors.ErrInvalidInput, "character.%s must be a string", key)
				}
			}
		}
		update.Character = character
	}
	if _, ok := raw["color"]; ok {
		var color string
		if err := decode("color", &color); err != nil {
			return MemberUpdate{}, err
		}
		if update.Character == nil {
			update.Character = map[string]any{}
		}
		update.Character["color"] = color
	}
	if _, ok := raw["cosmetics"]; ok {
		cosmetics := []string{}
		if err := decode("cosmetics", &cosmetics); err != nil {
			return MemberUpdate{}, err
		}
		update.Cosmetics = &cosmetics
	}
	if _, ok := raw["equippedCosmetics"]; ok {
		equipped := []string{}
		if err := decode("equippedCosmetics", &equipped); err != nil {
			return MemberUpdate{}, err
		}
		update.EquippedCosmetics = &equipped
	}
	if _, ok := raw["tasks"]; ok {
		tasks := []Task{}
		if err := decode("tasks", &tasks); err != nil {
			return MemberUpdate{}, err
		}
		if tasks == nil {
			tasks = []Task{}
		}
		update.Tasks = &tasks
	}
	return update, nil
}
