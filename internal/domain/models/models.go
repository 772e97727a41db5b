package models

// DefaultCharacterType is the character every new member starts with.
const DefaultCharacterType = "pinnefigur"

// Admin is the profile document stored next to an identity-provider account.
type Admin struct {
	UID      string `json:"uid"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	AdminPin string `json:"admin_pin"`
}

type Member struct {
	ID                string    `json:"id,omitempty"`
	Name              string    `json:"name"`
	Code              string    `json:"code"`
	Money             float64   `json:"money"`
	Character         Character `json:"character"`
	Cosmetics         []string  `json:"cosmetics,omitempty"`
	EquippedCosmetics []string  `json:"equippedCosmetics,omitempty"`
	Tasks             []Task    `json:"tasks"`
	AdminID           string    `json:"adminId"`
}

type Task struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Completed bool    `json:"completed"`
}

// Item is a shop article as submitted with a purchase.
type Item struct {
	ID    string  `json:"id"`
	Price *Amount `json:"price"`
}

// MemberUpdate is a partial member write. Nil fields are left untouched;
// Character keys are merged into the stored character one by one.
type MemberUpdate struct {
	Name              *string
	Money             *float64
	Character         map[string]any
	Cosmetics         *[]string
	EquippedCosmetics *[]string
	Tasks             *[]Task
}

func (u MemberUpdate) IsEmpty() bool {
	return u.Name == nil && u.Money == nil && len(u.Character) == 0 &&
		u.Cosmetics == nil && u.EquippedCosmetics == nil && u.Tasks == nil
}

// Apply writes the update into m in place.
func (u MemberUpdate) Apply(m *Member) {
	if u.Name != nil {
		m.Name = *u.Name
	}
	if u.Money != nil {
		m.Money = *u.Money
	}
	for k, v := range u.Character {
		m.Character.Set(k, v)
	}
	if u.Cosmetics != nil {
		m.Cosmetics = append([]string(nil), (*u.Cosmetics)...)
	}
	if u.EquippedCosmetics != nil {
		m.EquippedCosmetics = append([]string(nil), (*u.EquippedCosmetics)...)
	}
	if u.Tasks != nil {
		m.Tasks = append([]Task(nil), (*u.Tasks)...)
	}
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Phone    string `json:"phone" validate:"omitempty,intlphone"`
	AdminPin Pin    `json:"admin_pin" validate:"required"`
}

type VerifyPinRequest struct {
	Pin Pin `json:"pin"`
}

type CreateMemberRequest struct {
	Name  string `json:"name" validate:"required"`
	Code  string `json:"code" validate:"required"`
	Color string `json:"color" validate:"required"`
}

type AddTaskRequest struct {
	Title string   `json:"title" validate:"required"`
	Price *float64 `json:"price" validate:"required"`
}

type PurchaseRequest struct {
	Item     *Item  `json:"item"`
	MemberID string `json:"memberId"`
}

// MemberMutation inspects the current state of a member and returns the
// update to store. Returning an error leaves the document unchanged.
type MemberMutation func(m *Member) (MemberUpdate, error)

// Clone returns a copy of m that shares no slices or maps with it.
func (m Member) Clone() Member {
	out := m
	out.Tasks = append([]Task(nil), m.Tasks...)
	if m.Tasks != nil && out.Tasks == nil {
		out.Tasks = []Task{}
	}
	if m.Cosmetics != nil {
		out.Cosmetics = append([]string{}, m.Cosmetics...)
	}
	if m.EquippedCosmetics != nil {
		out.EquippedCosmetics = append([]string{}, m.EquippedCosmetics...)
	}
	if m.Character.Extra != nil {
		out.Character.Extra = make(map[string]any, len(m.Character.Extra))
		for k, v := range m.Character.Extra {
			out.Character.Extra[k] = v
		}
	}
	return out
}
