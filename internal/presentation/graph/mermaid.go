package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/racketbot/pkg/domain"
)

// Fixed node IDs surrounding the questionnaire prompts.
const (
	NodeStart  = "start"
	NodeFetch  = "fetch_recommendations"
	NodeDone   = "done"
	NodeFailed = "failed"
)

// GraphOverlay contains dynamic state data to visualize on the graph.
type GraphOverlay struct {
	VisitedNodes []string
	CurrentNode  string
}

// OverlayFromState marks the answered prompts as visited and the session's
// current position as current.
func OverlayFromState(script domain.Script, state *domain.State) *GraphOverlay {
	if state == nil {
		return nil
	}
	overlay := &GraphOverlay{VisitedNodes: []string{NodeStart}}
	for _, p := range script {
		if _, ok := state.Answers[p.Key]; ok {
			overlay.VisitedNodes = append(overlay.VisitedNodes, p.Key)
		}
	}

	switch state.Phase {
	case domain.PhaseAsking:
		if state.CurrentIndex < len(script) {
			overlay.CurrentNode = script[state.CurrentIndex].Key
		}
	case domain.PhaseAwaitingService:
		overlay.CurrentNode = NodeFetch
	case domain.PhaseDone:
		overlay.VisitedNodes = append(overlay.VisitedNodes, NodeFetch)
		overlay.CurrentNode = NodeDone
	case domain.PhaseFailed:
		overlay.VisitedNodes = append(overlay.VisitedNodes, NodeFetch)
		overlay.CurrentNode = NodeFailed
	}
	return overlay
}

// GenerateMermaid produces a Mermaid flowchart of the questionnaire.
// Shapes:
// - Start: ((Circle))
// - Prompt: [/Parallelogram/], numeric prompts are annotated with #
// - Service call: [[Subroutine]]
// - Outcomes: ([Stadium])
// It also applies overlay styles (Visited/Current) if provided.
func GenerateMermaid(script domain.Script, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	sb.WriteString(fmt.Sprintf("    %s((\"%s\"))\n", NodeStart, NodeStart))

	prev := NodeStart
	for _, p := range script {
		id := sanitizeMermaidID(p.Key)
		label := p.Key
		if p.Numeric {
			label += " #"
		}
		sb.WriteString(fmt.Sprintf("    %s[/\"%s\"/]\n", id, escapeLabel(label)))
		sb.WriteString(fmt.Sprintf("    %s --> %s\n", prev, id))
		prev = id
	}

	sb.WriteString(fmt.Sprintf("    %s[[\"%s\"]]\n", NodeFetch, NodeFetch))
	sb.WriteString(fmt.Sprintf("    %s --> %s\n", prev, NodeFetch))
	sb.WriteString(fmt.Sprintf("    %s([\"%s\"])\n", NodeDone, NodeDone))
	sb.WriteString(fmt.Sprintf("    %s([\"%s\"])\n", NodeFailed, NodeFailed))
	sb.WriteString(fmt.Sprintf("    %s -- \"ok\" --> %s\n", NodeFetch, NodeDone))
	sb.WriteString(fmt.Sprintf("    %s -. \"error\" .-> %s\n", NodeFetch, NodeFailed))

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text for contrast on both themes
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, id := range overlay.VisitedNodes {
			safeID := sanitizeMermaidID(id)
			if !visitedSet[safeID] && safeID != "" {
				visitedSet[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s visited;\n", safeID))
			}
		}

		if overlay.CurrentNode != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(overlay.CurrentNode)))
		}
	}

	return sb.String()
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
