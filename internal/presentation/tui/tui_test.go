package tui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aretw0/racketbot/pkg/domain"
	"github.com/aretw0/racketbot/pkg/runner"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var item = domain.RecommendationItem{
	ID: "1", Brand: "Yonex", Model: "Nanoflare 170", Level: "初学", Style: "控制型",
	Stiffness: "软", Price: 399, ImageRef: "nf170.png",
}

func TestCardFormatter_AsciiMatchesPlainCard(t *testing.T) {
	format := CardFormatter(termenv.Ascii)
	assert.Equal(t, runner.PlainCard(item), format(item))
}

func TestCardFormatter_Colours(t *testing.T) {
	out := CardFormatter(termenv.TrueColor)(item)

	assert.Contains(t, out, "\x1b[")
	assert.Contains(t, out, "Yonex Nanoflare 170")
	assert.Contains(t, out, "¥399")
	assert.Contains(t, out, "水平：初学 | 打法：控制型")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf)

	lines := strings.Split(strings.Trim(buf.String(), "\n"), "\n")
	assert.Len(t, lines, len(bannerLines))
	// Not a terminal: no escape sequences.
	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestNewRenderer(t *testing.T) {
	render, err := NewRenderer()
	require.NoError(t, err)

	out, err := render("**推荐**")
	require.NoError(t, err)
	assert.Contains(t, out, "推荐")
}
