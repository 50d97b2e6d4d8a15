package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventSessionStart EventType = "session_start"
	EventAnswer       EventType = "answer"
	EventRecommend    EventType = "recommend"
)

// Outcome classifies how a recommendation exchange ended.
type Outcome string

const (
	OutcomeMatch   Outcome = "match"
	OutcomeNoMatch Outcome = "no_match"
	OutcomeFailure Outcome = "failure"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
}

// AnswerEvent is emitted for every accepted answer.
type AnswerEvent struct {
	EventBase
	Key   string `json:"key"`
	Index int    `json:"index"`
	Valid bool   `json:"valid"` // false when a numeric answer fell back to the sentinel
}

// RecommendEvent is emitted once the recommendation call resolves.
type RecommendEvent struct {
	EventBase
	Outcome  Outcome       `json:"outcome"`
	Count    int           `json:"count"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnSessionStart func(context.Context, *EventBase)
	OnAnswer       func(context.Context, *AnswerEvent)
	OnRecommend    func(context.Context, *RecommendEvent)
}
