package models

// GameAction is a typed inbound message from one participant. Payload
// carries the action-specific fields (space index, bid amount, trade
// terms) as decoded JSON.
type GameAction struct {
	ActionType string                 `json:"action"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
}

// Int reads an integer payload field, tolerating the float64 values JSON
// decoding produces. Returns def when the field is absent or malformed.
func (a GameAction) Int(key string, def int) int {
	v, ok := a.Payload[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	}
	return def
}

// String reads a string payload field, or "" when absent.
func (a GameAction) String(key string) string {
	if v, ok := a.Payload[key].(string); ok {
		return v
	}
	return ""
}

// Bool reads a boolean payload field, or false when absent.
func (a GameAction) Bool(key string) bool {
	v, _ := a.Payload[key].(bool)
	return v
}

// IntSlice reads an array-of-numbers payload field.
func (a GameAction) IntSlice(key string) []int {
	raw, ok := a.Payload[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]int, 0, len(raw))
	for _, v := range raw {
		if n, ok := v.(float64); ok {
			out = append(out, int(n))
		}
	}
	return out
}
