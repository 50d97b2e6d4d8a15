package runner

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/racketbot/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextHandler_OutputSkipsUserMessages(t *testing.T) {
	out := &bytes.Buffer{}
	h := NewTextHandler(strings.NewReader(""), out, WithTextHandlerRenderer(func(s string) (string, error) {
		return "Rendered: " + s, nil
	}))

	err := h.Output(context.Background(), []domain.Message{
		domain.SystemMessage("你的水平？"),
		domain.UserMessage("初学"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Rendered: 你的水平？\n", out.String())
}

func TestTextHandler_Input(t *testing.T) {
	out := &bytes.Buffer{}
	h := NewTextHandler(strings.NewReader("  中硬 \n"), out)

	val, err := h.Input(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "中硬", val)
	assert.Equal(t, "> ", out.String())

	_, err = h.Input(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestTextHandler_InputRetriesAfterRejectedLine(t *testing.T) {
	t.Setenv(EnvMaxInputSize, "4")
	out := &bytes.Buffer{}
	h := NewTextHandler(strings.NewReader("toolong\n500\n"), out)

	val, err := h.Input(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "500", val)
	assert.Contains(t, out.String(), "Please try again")
}

func TestTextHandler_InputCancelled(t *testing.T) {
	h := NewTextHandler(blockReader{}, &bytes.Buffer{})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := h.Input(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTextHandler_Recommendations(t *testing.T) {
	out := &bytes.Buffer{}
	h := NewTextHandler(strings.NewReader(""), out)

	err := h.Recommendations(context.Background(), []domain.RecommendationItem{
		{Brand: "Li-Ning", Model: "A9", Level: "中级", Style: "进攻型", Stiffness: "硬", Price: 899.5, ImageRef: "a9.png"},
	})
	require.NoError(t, err)

	got := out.String()
	assert.Contains(t, got, "[a9.png]")
	assert.Contains(t, got, "Li-Ning A9")
	assert.Contains(t, got, "水平：中级 | 打法：进攻型")
	assert.Contains(t, got, "价格：¥899.50")
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "480", FormatPrice(480))
	assert.Equal(t, "12.30", FormatPrice(12.3))
}

type blockReader struct{}

func (blockReader) Read(p []byte) (int, error) {
	select {}
}
