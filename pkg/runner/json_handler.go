package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/aretw0/racketbot/pkg/domain"
)

// Event kinds written by JSONHandler, one JSON object per line.
const (
	EventMessage         = "message"
	EventRecommendations = "recommendations"
	EventSystem          = "system"
)

// Event is a single JSON-Lines record emitted by JSONHandler.
type Event struct {
	Type    string                      `json:"type"`
	Speaker domain.Speaker              `json:"speaker,omitempty"`
	Text    string                      `json:"text,omitempty"`
	Items   []domain.RecommendationItem `json:"items,omitempty"`
}

// JSONHandler implements the IOHandler interface for structured JSON-Lines communication.
type JSONHandler struct {
	Reader    *bufio.Reader
	Encoder   *json.Encoder
	Sanitizer Sanitizer
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &JSONHandler{
		Reader:    bufio.NewReader(r),
		Encoder:   enc,
		Sanitizer: NewSanitizer(),
	}
}

// Output emits every appended message, user messages included, so a host can rebuild the transcript.
func (h *JSONHandler) Output(ctx context.Context, messages []domain.Message) error {
	for _, msg := range messages {
		if err := h.Encoder.Encode(Event{Type: EventMessage, Speaker: msg.Speaker, Text: msg.Text}); err != nil {
			return err
		}
	}
	return nil
}

func (h *JSONHandler) Recommendations(ctx context.Context, items []domain.RecommendationItem) error {
	return h.Encoder.Encode(Event{Type: EventRecommendations, Items: items})
}

// Input reads one line. A JSON string is unquoted; anything else is taken as raw text.
func (h *JSONHandler) Input(ctx context.Context) (string, error) {
	text, err := h.Reader.ReadString('\n')
	if err != nil && (err != io.EOF || text == "") {
		return "", err
	}
	text = strings.TrimSpace(text)

	var val string
	if err := json.Unmarshal([]byte(text), &val); err == nil {
		text = val
	}
	return h.Sanitizer.Clean(text)
}

func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.Encoder.Encode(Event{Type: EventSystem, Text: msg})
}
