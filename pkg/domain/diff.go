package domain

// StateDiff represents the changes between two states.
// It is designed to be serialized to JSON for partial updates on the client.
type StateDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	// Phase changed?
	Phase *Phase `json:"phase,omitempty"`

	// CurrentIndex changed?
	CurrentIndex *int `json:"current_index,omitempty"`

	// Appended contains the transcript messages added since the old state.
	// The transcript is append-only, so a suffix is enough.
	Appended []Message `json:"appended,omitempty"`

	// Answers contains only added or modified keys.
	Answers Answers `json:"answers,omitempty"`

	// Recommendations is set when the list was installed.
	Recommendations []RecommendationItem `json:"recommendations,omitempty"`
}

// Diff calculates the difference between oldState and newState.
// If oldState is nil, it returns a diff representing the entire newState (initial load).
// It returns nil when nothing changed.
func Diff(oldState, newState *State) *StateDiff {
	if newState == nil {
		return nil
	}

	diff := &StateDiff{
		SessionID: newState.SessionID,
	}

	if oldState == nil || oldState.Phase != newState.Phase {
		p := newState.Phase
		diff.Phase = &p
	}
	if oldState == nil || oldState.CurrentIndex != newState.CurrentIndex {
		i := newState.CurrentIndex
		diff.CurrentIndex = &i
	}

	diff.Appended = diffTranscript(oldState, newState)
	diff.Answers = diffAnswers(oldState, newState)

	if (oldState == nil || len(oldState.Recommendations) == 0) && len(newState.Recommendations) > 0 {
		diff.Recommendations = newState.Recommendations
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffTranscript(old, new *State) []Message {
	if old == nil {
		if len(new.Transcript) == 0 {
			return nil
		}
		return new.Transcript
	}
	if len(new.Transcript) > len(old.Transcript) {
		return new.Transcript[len(old.Transcript):]
	}
	return nil
}

func diffAnswers(old, new *State) Answers {
	delta := make(Answers)
	for k, v := range new.Answers {
		if old == nil {
			delta[k] = v
			continue
		}
		prev, ok := old.Answers[k]
		// NaN never equals itself, so compare the encoded form.
		if !ok || prev.String() != v.String() || prev.Numeric != v.Numeric {
			delta[k] = v
		}
	}
	if len(delta) == 0 {
		return nil
	}
	return delta
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *StateDiff) IsEmpty() bool {
	return d.Phase == nil &&
		d.CurrentIndex == nil &&
		len(d.Appended) == 0 &&
		len(d.Answers) == 0 &&
		len(d.Recommendations) == 0
}
