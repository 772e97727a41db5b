package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
)

// Character is a member's avatar. Type and Color are always present; any
// other customisation keys the client sends are kept in Extra and written
// back next to them.
type Character struct {
	Type  string
	Color string
	Extra map[string]any
}

func (c *Character) Set(key string, value any) {
	switch key {
	case "type":
		if s, ok := value.(string); ok {
			c.Type = s
			return
		}
	case "color":
		if s, ok := value.(string); ok {
			c.Color = s
			return
		}
	}
	if c.Extra == nil {
		c.Extra = make(map[string]any)
	}
	c.Extra[key] = value
}

// Map flattens the character into a plain document map.
func (c Character) Map() map[string]any {
	out := make(map[string]any, len(c.Extra)+2)
	for k, v := range c.Extra {
		out[k] = v
	}
	out["type"] = c.Type
	out["color"] = c.Color
	return out
}

func (c Character) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Map())
}

func (c *Character) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "character must be an object")
	}
	*c = Character{}
	for k, v := range raw {
		c.Set(k, v)
	}
	return nil
}

// Amount is a money value that accepts both JSON numbers and numeric strings.
type Amount float64

func (a *Amount) UnmarshalJSON(data []byte) error {
	text := strings.TrimSpace(string(data))
	if unquoted, err := strconv.Unquote(text); err == nil {
		text = strings.TrimSpace(unquoted)
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return errors.Wrapf(err, "price %s is not a number", string(data))
	}
	*a = Amount(v)
	return nil
}

func (a Amount) Float64() float64 { return float64(a) }

// Pin is an admin PIN. Clients send it either as a string or as a number.
type Pin string

func (p *Pin) UnmarshalJSON(data []byte) error {
	text := strings.TrimSpace(string(data))
	if text == "null" {
		*p = ""
		return nil
	}
	if unquoted, err := strconv.Unquote(text); err == nil {
		*p = Pin(unquoted)
		return nil
	}
	if _, err := strconv.ParseFloat(text, 64); err != nil {
		return errors.Wrap(err, "pin must be a string or a number")
	}
	*p = Pin(text)
	return nil
}
