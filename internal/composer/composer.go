// Package composer generates the human-readable recommendation sentence.
// Providers wrap external text-generation APIs; on any provider failure
// callers substitute the deterministic Fallback.
package composer

import (
	"context"
	"fmt"
	"strings"
)

// AlternativeRef is the minimal alternative shape a composer needs.
type AlternativeRef struct {
	Name         string
	Category     string
	DistanceText string
	Rating       *float64
}

// Request carries everything a composer may reference. Alternatives may be
// empty, in which case RecommendedCategories drives a generic message.
type Request struct {
	TriggerName           string
	TriggerCategory       string
	Alternatives          []AlternativeRef
	RecommendedCategories []string
	UserContext           string
}

// Composer produces one short motivational sentence. Errors wrap
// models.ErrComposerUnavailable and must never propagate past the
// orchestrator.
type Composer interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// buildPrompt renders the health-coach prompt. Two shapes: with specific
// nearby alternatives, or with generic category suggestions only.
func buildPrompt(req Request) string {
	var b strings.Builder

	userContext := req.UserContext
	if userContext == "" {
		userContext = "Looking for healthy options"
	}

	if len(req.Alternatives) > 0 {
		fmt.Fprintf(&b, "You are a friendly health coach. The user is near %s (a %s).\n\n",
			req.TriggerName, req.TriggerCategory)
		b.WriteString("Actual healthy alternatives available nearby:\n")
		for i, alt := range req.Alternatives {
			fmt.Fprintf(&b, "%d. %s", i+1, alt.Name)
			if alt.Category != "" {
				fmt.Fprintf(&b, " (%s)", alt.Category)
			}
			if alt.DistanceText != "" {
				fmt.Fprintf(&b, " - %s away", alt.DistanceText)
			}
			if alt.Rating != nil {
				fmt.Fprintf(&b, ", rated %.1f/5", *alt.Rating)
			}
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "\nUser context: %s\n\n", userContext)
		fmt.Fprintf(&b, "Write a short, positive, actionable message (2 sentences max) that mentions %s, suggests one or two of the listed alternatives by name, and includes the distance when available. Keep it natural and conversational.",
			req.TriggerName)
		return b.String()
	}

	fmt.Fprintf(&b, "You are a friendly health coach. The user is near %s (a %s).\n\n",
		req.TriggerName, req.TriggerCategory)
	suggestions := "various healthy options"
	if len(req.RecommendedCategories) > 0 {
		suggestions = strings.Join(req.RecommendedCategories, ", ")
	}
	fmt.Fprintf(&b, "Healthy kinds of places to suggest: %s\n", suggestions)
	fmt.Fprintf(&b, "User context: %s\n\n", userContext)
	fmt.Fprintf(&b, "Write a short, positive, motivational message (1-2 sentences) encouraging a healthy alternative, naming %s.",
		req.TriggerName)
	return b.String()
}
