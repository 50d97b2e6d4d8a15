package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/racketbot/pkg/domain"
	"github.com/aretw0/racketbot/pkg/runner"
	"github.com/muesli/termenv"
)

// CardFormatter returns a runner.CardFormatter that colours cards for the given profile.
// termenv.Ascii yields the same layout as runner.PlainCard.
func CardFormatter(p termenv.Profile) runner.CardFormatter {
	accent := p.Color("#22d3ee")
	price := p.Color("#fbbf24")
	dim := p.Color("#9ca3af")

	return func(item domain.RecommendationItem) string {
		var b strings.Builder
		if item.ImageRef != "" {
			fmt.Fprintf(&b, "%s\n", p.String("["+item.ImageRef+"]").Foreground(dim))
		}
		fmt.Fprintf(&b, "%s\n", p.String(item.Brand+" "+item.Model).Bold().Foreground(accent))
		fmt.Fprintf(&b, "  水平：%s | 打法：%s\n", item.Level, item.Style)
		fmt.Fprintf(&b, "  硬度：%s | 价格：%s", item.Stiffness,
			p.String("¥"+runner.FormatPrice(item.Price)).Foreground(price))
		return b.String()
	}
}
