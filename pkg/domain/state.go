package domain

// Phase defines where a session sits in the questionnaire lifecycle.
type Phase string

const (
	PhaseAsking          Phase = "asking"           // Waiting for the answer to Script[CurrentIndex]
	PhaseAwaitingService Phase = "awaiting_service" // Script exhausted, recommendation call in flight
	PhaseDone            Phase = "done"             // Service answered (possibly with no match)
	PhaseFailed          Phase = "failed"           // Service call failed
)

// Terminal reports whether no further submissions are accepted in this phase.
func (p Phase) Terminal() bool {
	return p == PhaseDone || p == PhaseFailed
}

// State represents the current snapshot of a conversation.
type State struct {
	// SessionID identifies the conversation for persistence and streaming.
	SessionID string `json:"session_id"`

	// Phase indicates if the conversation is asking, waiting or finished.
	Phase Phase `json:"phase"`

	// CurrentIndex is the position of the active prompt in the script, in [0, N].
	CurrentIndex int `json:"current_index"`

	// Transcript is the append-only chat log in display order.
	Transcript []Message `json:"transcript"`

	// Answers holds one entry per answered prompt, keyed by PromptSpec.Key.
	Answers Answers `json:"answers"`

	// Recommendations is installed all at once when the service answers.
	Recommendations []RecommendationItem `json:"recommendations"`

	// Explanation is the text returned alongside the recommendations.
	Explanation string `json:"explanation,omitempty"`

	// Sealed carries the encrypted form of the real state when an encrypting
	// store wraps the backend. It is empty on every state the engine sees.
	Sealed string `json:"sealed,omitempty"`
}

// NewState creates a clean state for a session, before the greeting is appended.
func NewState(sessionID string) *State {
	return &State{
		SessionID:       sessionID,
		Phase:           PhaseAsking,
		Transcript:      []Message{},
		Answers:         make(Answers),
		Recommendations: []RecommendationItem{},
	}
}

// Snapshot returns a deep copy of the state.
// Slices and the answers map are copied so the snapshot can be mutated freely.
func (s *State) Snapshot() *State {
	if s == nil {
		return nil
	}
	cp := *s
	cp.Transcript = append([]Message(nil), s.Transcript...)
	if cp.Transcript == nil {
		cp.Transcript = []Message{}
	}
	cp.Answers = s.Answers.Clone()
	cp.Recommendations = append([]RecommendationItem(nil), s.Recommendations...)
	if cp.Recommendations == nil {
		cp.Recommendations = []RecommendationItem{}
	}
	return &cp
}

// Terminal reports whether the conversation has finished.
func (s *State) Terminal() bool {
	return s.Phase.Terminal()
}
