package runtime

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/racketbot/pkg/domain"
)

// Submit applies one user answer to the state.
//
// Whitespace-only input is ignored: the same state comes back with no effects and no
// error. Answers are only accepted while the conversation is asking; otherwise
// ErrAwaitingService or ErrConversationClosed is returned.
//
// When the last prompt is answered the returned state is awaiting the service and a
// single EffectFetchRecommendations carries the answers snapshot.
func (e *Engine) Submit(ctx context.Context, state *domain.State, raw string) (*domain.State, []domain.Effect, error) {
	if err := checkAccepting(state); err != nil {
		return state, nil, err
	}

	text := strings.TrimSpace(raw)
	if text == "" {
		return state, nil, nil
	}

	if state.CurrentIndex < 0 || state.CurrentIndex >= len(e.script) {
		return state, nil, fmt.Errorf("prompt index %d out of range [0,%d)", state.CurrentIndex, len(e.script))
	}

	next := state.Snapshot()
	next.Transcript = append(next.Transcript, domain.UserMessage(text))

	prompt := e.script[next.CurrentIndex]
	value := domain.TextAnswer(text)
	if prompt.Numeric {
		value = domain.CoerceNumber(text)
	}
	next.Answers[prompt.Key] = value
	e.emitAnswer(ctx, next.SessionID, prompt.Key, next.CurrentIndex, value)

	if next.CurrentIndex+1 < len(e.script) {
		next.CurrentIndex++
		next.Transcript = append(next.Transcript, domain.SystemMessage(e.script[next.CurrentIndex].Text))
		return next, nil, nil
	}

	next.CurrentIndex = len(e.script)
	next.Phase = domain.PhaseAwaitingService
	next.Transcript = append(next.Transcript, domain.SystemMessage(e.messages.Waiting))

	e.logger.Debug("script exhausted", "session_id", next.SessionID, "answers", len(next.Answers))
	return next, []domain.Effect{{
		Type:    domain.EffectFetchRecommendations,
		Payload: next.Answers.Clone(),
	}}, nil
}

func checkAccepting(state *domain.State) error {
	switch state.Phase {
	case domain.PhaseAsking:
		return nil
	case domain.PhaseAwaitingService:
		return domain.ErrAwaitingService
	default:
		return domain.ErrConversationClosed
	}
}

func (e *Engine) emitAnswer(ctx context.Context, sessionID, key string, index int, value domain.Answer) {
	if !value.Valid() {
		e.logger.Debug("numeric answer kept as sentinel", "session_id", sessionID, "key", key)
	}
	if e.hooks.OnAnswer == nil {
		return
	}
	e.hooks.OnAnswer(ctx, &domain.AnswerEvent{
		EventBase: domain.EventBase{
			Timestamp: e.now(),
			Type:      domain.EventAnswer,
			SessionID: sessionID,
		},
		Key:   key,
		Index: index,
		Valid: value.Valid(),
	})
}
