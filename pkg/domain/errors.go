package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrConversationClosed is returned when an answer is submitted after the conversation finished.
var ErrConversationClosed = errors.New("conversation already finished")

// ErrAwaitingService is returned when an answer is submitted while the recommendation call is in flight.
var ErrAwaitingService = errors.New("recommendation request in flight")

// ErrInvalidScript is returned when a script has no prompts or malformed prompts.
var ErrInvalidScript = errors.New("invalid script")
