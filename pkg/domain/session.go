package domain

import (
	"strconv"
	"time"
)

// Session is the per-conversation state of the responder.
// It is owned by exactly one conversation and never shared between them.
type Session struct {
	ID string `json:"id"`

	// Usage holds the next reassembly index per (keyword, pattern) pair.
	// Keys are built with UsageKey and MemoryUsageKey.
	Usage map[string]int `json:"usage"`

	// Memory is the FIFO queue of deferred statements.
	Memory []string `json:"memory"`

	// Fallback rotates through the script's fallback responses.
	Fallback int `json:"fallback"`

	Turns int `json:"turns"`

	// Sealed holds the encrypted form of the session when it is persisted
	// through an encrypting store. All other fields are then zero.
	Sealed string `json:"sealed,omitempty"`

	// Timestamps are maintained by the host (session manager), never by the engine.
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// NewSession creates a fresh, empty session.
func NewSession(id string) *Session {
	return &Session{
		ID:     id,
		Usage:  make(map[string]int),
		Memory: []string{},
	}
}

// Snapshot returns a deep copy of the session.
func (s *Session) Snapshot() *Session {
	if s == nil {
		return nil
	}
	cp := *s
	cp.Usage = make(map[string]int, len(s.Usage))
	for k, v := range s.Usage {
		cp.Usage[k] = v
	}
	cp.Memory = append([]string{}, s.Memory...)
	return &cp
}

// UsageKey identifies the rotation counter of a decomposition.
func UsageKey(keyword string, pattern int) string {
	return keyword + "#" + strconv.Itoa(pattern)
}

// MemoryUsageKey identifies the rotation counter of a decomposition's memory templates.
func MemoryUsageKey(keyword string, pattern int) string {
	return UsageKey(keyword, pattern) + "#memory"
}
