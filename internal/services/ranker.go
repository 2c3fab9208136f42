package services

import (
	"sort"
	"strings"

	"healthnudge/internal/geo"
	"healthnudge/internal/models"
)

// Name keywords that disqualify a candidate from being offered as a
// healthy alternative, regardless of rating.
var unhealthyNameKeywords = []string{
	"mcdonald", "kfc", "burger", "pizza", "fried", "fast food", "subway", "shawarma", "bbq",
}

// Name keywords that qualify a candidate outright, without the rating bar.
var healthyNameKeywords = []string{
	"cafe", "coffee", "salad", "juice", "smoothie", "gym", "fitness",
}

// AlternativeRanker filters and orders candidate venues into a short
// healthy-alternative list.
type AlternativeRanker struct {
	graceFactor float64 // radius multiplier allowed beyond the requested radius
	limit       int
}

func NewAlternativeRanker(graceFactor float64, limit int) *AlternativeRanker {
	if graceFactor <= 0 {
		graceFactor = 1.5
	}
	if limit <= 0 {
		limit = 3
	}
	return &AlternativeRanker{graceFactor: graceFactor, limit: limit}
}

// Rank applies the full filter chain: drop the trigger venue itself, drop
// unhealthy-sounding names, keep healthy-sounding names or rating >= 4.0,
// drop anything beyond radius*grace, then sort ascending by distance
// (stable, so directory order breaks ties) and cap the result. Candidates
// with unknown coordinates carry the sentinel distance and sort last; they
// are not subject to the radius cutoff since their distance is unknown,
// not measured.
func (r *AlternativeRanker) Rank(origin *models.Coordinate, candidates []models.Venue, radiusMeters int, excludeName string) []models.Alternative {
	maxDistance := int(float64(radiusMeters) * r.graceFactor)

	var alternatives []models.Alternative
	for _, v := range candidates {
		if v.Name == excludeName {
			continue
		}
		lower := strings.ToLower(v.Name)
		if containsAny(lower, unhealthyNameKeywords) {
			continue
		}
		if !containsAny(lower, healthyNameKeywords) && (v.Rating == nil || *v.Rating < 4.0) {
			continue
		}
		distance := geo.Distance(origin, v.Coordinate)
		if distance != geo.UnknownDistanceMeters && distance > maxDistance {
			continue
		}
		alternatives = append(alternatives, newAlternative(v, distance))
	}

	sort.SliceStable(alternatives, func(i, j int) bool {
		return alternatives[i].DistanceMeters < alternatives[j].DistanceMeters
	})

	if len(alternatives) > r.limit {
		alternatives = alternatives[:r.limit]
	}
	return alternatives
}

// RankMinimal is the last-resort pass: no name-based health filtering and
// no radius cutoff, capped at two candidates in directory order. It exists
// so message composition has something to reference whenever any nearby
// venue exists at all.
func (r *AlternativeRanker) RankMinimal(origin *models.Coordinate, candidates []models.Venue, excludeName string) []models.Alternative {
	var alternatives []models.Alternative
	for _, v := range candidates {
		if v.Name == excludeName {
			continue
		}
		alternatives = append(alternatives, newAlternative(v, geo.Distance(origin, v.Coordinate)))
		if len(alternatives) == 2 {
			break
		}
	}
	return alternatives
}

func newAlternative(v models.Venue, distance int) models.Alternative {
	return models.Alternative{
		Venue:          v,
		CategoryLabel:  categoryLabel(v),
		DistanceMeters: distance,
		DistanceText:   geo.FormatDistance(distance),
	}
}

// categoryLabel assigns a display label by name-substring heuristic in
// fixed priority order: gym-like, cafe-like, restaurant-like, healthy
// restaurant, then the generic label.
func categoryLabel(v models.Venue) string {
	name := strings.ToLower(v.Name)
	switch {
	case containsAny(name, []string{"gym", "fitness", "muscle"}) || v.HasTag("gym"):
		return "Gym"
	case containsAny(name, []string{"cafe", "coffee", "tea", "juice"}) || v.HasTag("cafe"):
		return "Cafe"
	case containsAny(name, []string{"restaurant", "food"}) || v.HasTag("restaurant"):
		return "Restaurant"
	case containsAny(name, []string{"healthy", "salad", "organic"}):
		return "Healthy Restaurant"
	default:
		return "Healthy Place"
	}
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
