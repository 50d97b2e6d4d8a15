package domain

// Effect represents a side-effect that the reducer requests the host to perform.
type Effect struct {
	Type    string // e.g. "FETCH_RECOMMENDATIONS"
	Payload any    // The data needed to perform the effect
}

// Standard Effect Types
const (
	// EffectFetchRecommendations requests one call to the recommendation service.
	// Payload: Answers (a snapshot, safe to send as the request body)
	EffectFetchRecommendations = "FETCH_RECOMMENDATIONS"
)
