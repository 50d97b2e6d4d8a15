package runner

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/aretw0/racketbot/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeEvents(t *testing.T, buf *bytes.Buffer) []Event {
	t.Helper()
	var events []Event
	sc := bufio.NewScanner(buf)
	for sc.Scan() {
		var e Event
		require.NoError(t, json.Unmarshal(sc.Bytes(), &e))
		events = append(events, e)
	}
	return events
}

func TestJSONHandler_Output(t *testing.T) {
	buf := &bytes.Buffer{}
	h := NewJSONHandler(strings.NewReader(""), buf)

	require.NoError(t, h.Output(context.Background(), []domain.Message{
		domain.UserMessage("500"),
		domain.SystemMessage("正在为你推荐，请稍候…"),
	}))
	require.NoError(t, h.Recommendations(context.Background(), []domain.RecommendationItem{{ID: "7", Brand: "Victor"}}))
	require.NoError(t, h.SystemOutput(context.Background(), "note"))

	events := decodeEvents(t, buf)
	require.Len(t, events, 4)
	assert.Equal(t, Event{Type: EventMessage, Speaker: domain.SpeakerUser, Text: "500"}, events[0])
	assert.Equal(t, domain.SpeakerSystem, events[1].Speaker)
	assert.Equal(t, EventRecommendations, events[2].Type)
	assert.Equal(t, domain.ItemID("7"), events[2].Items[0].ID)
	assert.Equal(t, Event{Type: EventSystem, Text: "note"}, events[3])
}

func TestJSONHandler_Input(t *testing.T) {
	h := NewJSONHandler(strings.NewReader("\"控制型\"\n 中硬 \n800"), &bytes.Buffer{})

	val, err := h.Input(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "控制型", val)

	val, err = h.Input(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "中硬", val)

	val, err = h.Input(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "800", val, "a final line without newline is still read")

	_, err = h.Input(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}
