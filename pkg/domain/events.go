package domain

import (
	"context"
	"time"
)

// Source tells which mechanism produced a response.
type Source string

const (
	SourceKeyword  Source = "keyword"
	SourceMemory   Source = "memory"
	SourceFallback Source = "fallback"
)

// EventType defines the category of the event.
type EventType string

const (
	EventTurn         EventType = "turn"
	EventMemoryPush   EventType = "memory_push"
	EventMemoryRecall EventType = "memory_recall"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
}

// TurnEvent is emitted once per answered utterance.
type TurnEvent struct {
	EventBase
	Source   Source `json:"source"`
	Keyword  string `json:"keyword,omitempty"`
	Pattern  int    `json:"pattern"`
	Template int    `json:"template"`
}

// MemoryEvent is emitted when the memory queue grows or is drained.
type MemoryEvent struct {
	EventBase
	Keyword string `json:"keyword,omitempty"`
	Depth   int    `json:"depth"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnTurn         func(context.Context, *TurnEvent)
	OnMemoryPush   func(context.Context, *MemoryEvent)
	OnMemoryRecall func(context.Context, *MemoryEvent)
}

// Reply describes how a turn was answered.
type Reply struct {
	Text   string `json:"text"`
	Source Source `json:"source"`

	// Keyword, Pattern and Template locate the reassembly that produced Text.
	// Pattern and Template are -1 for memory and fallback answers.
	Keyword  string `json:"keyword,omitempty"`
	Pattern  int    `json:"pattern"`
	Template int    `json:"template"`

	// Remembered is set when the turn queued a statement for later recall.
	Remembered bool `json:"remembered,omitempty"`
}
