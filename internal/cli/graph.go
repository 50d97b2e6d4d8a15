package cli

import (
	"context"
	"fmt"

	"github.com/aretw0/racketbot/internal/presentation/graph"
)

// Graph prints the questionnaire as a Mermaid flowchart. When sessionID is set,
// the stored session's position is highlighted.
func (a *App) Graph(ctx context.Context, sessionID string) error {
	var overlay *graph.GraphOverlay
	if sessionID != "" {
		sessions, closeStore, err := a.newSessions(storeFile)
		if err != nil {
			return err
		}
		defer closeStore()

		state, err := sessions.Load(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("failed to load session %q: %w", sessionID, err)
		}
		overlay = graph.OverlayFromState(a.Config.Script, state)
	}

	_, err := fmt.Fprint(a.Stdout, graph.GenerateMermaid(a.Config.Script, overlay))
	return err
}
