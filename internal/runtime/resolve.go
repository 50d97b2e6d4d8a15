package runtime

import (
	"context"
	"time"

	"github.com/aretw0/racketbot/pkg/domain"
)

// Resolve folds the outcome of the recommendation call into an awaiting state.
//
// Any error (transport, status, malformed body) collapses into the generic failure
// message and leaves the recommendations untouched. A successful empty list is a
// distinct no-match outcome. A non-empty list appends the header and the explanation
// and installs the list in one step.
//
// States that are not awaiting the service are returned unchanged.
func (e *Engine) Resolve(ctx context.Context, state *domain.State, resp *domain.RecommendResponse, callErr error, elapsed time.Duration) *domain.State {
	if state.Phase != domain.PhaseAwaitingService {
		e.logger.Warn("resolve ignored", "session_id", state.SessionID, "phase", state.Phase)
		return state
	}
	next := state.Snapshot()

	outcome := domain.OutcomeFailure
	count := 0
	switch {
	case callErr != nil || resp == nil:
		e.logger.Warn("recommendation failed", "session_id", next.SessionID, "err", callErr)
		next.Phase = domain.PhaseFailed
		next.Transcript = append(next.Transcript, domain.SystemMessage(e.messages.Failure))
	case len(resp.Recommendations) == 0:
		outcome = domain.OutcomeNoMatch
		next.Phase = domain.PhaseDone
		next.Transcript = append(next.Transcript, domain.SystemMessage(e.messages.NoMatch))
	default:
		outcome = domain.OutcomeMatch
		count = len(resp.Recommendations)
		next.Phase = domain.PhaseDone
		next.Transcript = append(next.Transcript,
			domain.SystemMessage(e.messages.Header),
			domain.SystemMessage(resp.Explanation),
		)
		next.Recommendations = append([]domain.RecommendationItem(nil), resp.Recommendations...)
		next.Explanation = resp.Explanation
	}

	e.logger.Debug("recommendation resolved", "session_id", next.SessionID, "outcome", outcome, "count", count)
	if e.hooks.OnRecommend != nil {
		e.hooks.OnRecommend(ctx, &domain.RecommendEvent{
			EventBase: domain.EventBase{
				Timestamp: e.now(),
				Type:      domain.EventRecommend,
				SessionID: next.SessionID,
			},
			Outcome:  outcome,
			Count:    count,
			Duration: elapsed,
			Err:      callErr,
		})
	}
	return next
}
