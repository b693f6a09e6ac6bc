package common

import (
	"strings"
	"time"
)

// Segment is a contiguous slice of a transcript used as the unit of
// embedding and retrieval. Start and End are rune offsets, End exclusive.
type Segment struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// Len returns the segment length in runes
func (s Segment) Len() int {
	return s.End - s.Start
}

// Role identifies the author of a conversation turn
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the role name
func (r Role) String() string {
	return string(r)
}

// ParseRole parses a role name, defaulting to user
func ParseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "assistant", "ai", "bot":
		return RoleAssistant
	default:
		return RoleUser
	}
}

// ConversationTurn is a single chat message in a session
type ConversationTurn struct {
	Role    Role      `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// NewTurn creates a conversation turn stamped with the current time
func NewTurn(role Role, content string) ConversationTurn {
	return ConversationTurn{
		Role:    role,
		Content: content,
		At:      time.Now(),
	}
}
