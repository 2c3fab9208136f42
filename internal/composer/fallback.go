package composer

import (
	"fmt"
	"strings"
)

// Fallback is the deterministic template composer used whenever the
// external composer is unavailable or unconfigured. Pure, no network calls.
type Fallback struct{}

func NewFallback() *Fallback {
	return &Fallback{}
}

// Compose picks one of three sentence shapes depending on how many
// alternatives are available. The trigger name always appears; distance
// text and rating appear when known.
func (f *Fallback) Compose(req Request) string {
	trigger := req.TriggerName
	if trigger == "" {
		trigger = "this place"
	}

	switch {
	case len(req.Alternatives) >= 2:
		first := req.Alternatives[0]
		second := req.Alternatives[1]
		return fmt.Sprintf("Skip %s and try %s%s or %s%s instead!",
			trigger,
			first.Name, distanceClause(first),
			second.Name, distanceClause(second))

	case len(req.Alternatives) == 1:
		alt := req.Alternatives[0]
		category := alt.Category
		if category == "" {
			category = "healthy place"
		}
		msg := fmt.Sprintf("Instead of %s, try %s%s. It's a %s", trigger, alt.Name, distanceClause(alt), category)
		if alt.Rating != nil {
			msg += fmt.Sprintf(" with a %.1f rating", *alt.Rating)
		}
		return msg + "!"

	default:
		if len(req.RecommendedCategories) > 0 {
			return fmt.Sprintf("Consider healthier options like %s instead of %s!",
				strings.Join(req.RecommendedCategories, ", "), trigger)
		}
		return fmt.Sprintf("Consider a healthier restaurant, cafe, or gym instead of %s!", trigger)
	}
}

func distanceClause(alt AlternativeRef) string {
	if alt.DistanceText == "" {
		return ""
	}
	return fmt.Sprintf(" (%s away)", alt.DistanceText)
}
