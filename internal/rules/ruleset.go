package rules

import (
	"fmt"

	"healthnudge/internal/models"
)

// KeywordRule binds an ordered keyword list to a category. Rule order in
// RuleSet.KeywordRules defines priority: the first rule whose keyword
// matches a venue name wins.
type KeywordRule struct {
	CategoryID string
	Keywords   []string
}

// RuleSet is the full, immutable classification configuration. It is built
// once at startup (from the database-backed rule store or the compiled-in
// defaults) and never mutated mid-request; updates go through a controlled
// reload that swaps the whole set.
type RuleSet struct {
	Categories             map[string]models.Category
	KeywordRules           []KeywordRule
	ExcludedTags           map[string]struct{}
	TagCategories          map[string]string
	Recommendations        map[string][]string
	DefaultRecommendations []string
}

// Validate checks that the set is internally consistent: every keyword rule,
// tag mapping and recommendation list must reference a known category.
func (rs *RuleSet) Validate() error {
	if len(rs.Categories) == 0 {
		return fmt.Errorf("%w: no categories", models.ErrNoRuleSet)
	}
	if len(rs.KeywordRules) == 0 {
		return fmt.Errorf("%w: no keyword rules", models.ErrNoRuleSet)
	}
	for _, rule := range rs.KeywordRules {
		if _, ok := rs.Categories[rule.CategoryID]; !ok {
			return fmt.Errorf("keyword rule references unknown category %q", rule.CategoryID)
		}
		if len(rule.Keywords) == 0 {
			return fmt.Errorf("keyword rule for %q has no keywords", rule.CategoryID)
		}
	}
	for tag, categoryID := range rs.TagCategories {
		if _, ok := rs.Categories[categoryID]; !ok {
			return fmt.Errorf("tag mapping %q references unknown category %q", tag, categoryID)
		}
	}
	for categoryID := range rs.Recommendations {
		if _, ok := rs.Categories[categoryID]; !ok {
			return fmt.Errorf("recommendation set references unknown category %q", categoryID)
		}
	}
	return nil
}

// RecommendationsFor returns the suggestion list for a category, falling
// back to the default list when no rule exists for that id.
func (rs *RuleSet) RecommendationsFor(categoryID string) []string {
	if recs, ok := rs.Recommendations[categoryID]; ok && len(recs) > 0 {
		return recs
	}
	return rs.DefaultRecommendations
}

// Default returns the compiled-in rule set. This is the single canonical
// copy of the keyword tables; the DB-backed rule store may override it but
// the shape and ordering semantics are identical.
func Default() *RuleSet {
	return &RuleSet{
		Categories: map[string]models.Category{
			models.CategoryFastFood:   {ID: models.CategoryFastFood, DisplayName: "Fast Food", IsUnhealthy: true},
			models.CategoryBarPub:     {ID: models.CategoryBarPub, DisplayName: "Bar Pub", IsUnhealthy: true},
			models.CategoryRestaurant: {ID: models.CategoryRestaurant, DisplayName: "Restaurant", IsUnhealthy: false},
			models.CategoryCafe:       {ID: models.CategoryCafe, DisplayName: "Cafe", IsUnhealthy: false},
			models.CategoryGym:        {ID: models.CategoryGym, DisplayName: "Gym", IsUnhealthy: false},
		},
		// Specific categories come before the generic restaurant rule so
		// that "Fast Food Corner" never classifies as plain restaurant.
		KeywordRules: []KeywordRule{
			{CategoryID: models.CategoryFastFood, Keywords: []string{
				"mcdonald", "kfc", "burger king", "burger", "pizza", "subway",
				"fast food", "fried chicken", "fried", "shawarma", "bbq",
			}},
			{CategoryID: models.CategoryBarPub, Keywords: []string{
				"nightclub", "bar", "pub", "lounge", "brewery", "wine",
			}},
			{CategoryID: models.CategoryCafe, Keywords: []string{
				"cafe", "coffee", "starbucks", "espresso", "tea shop", "juice", "sandwich",
			}},
			{CategoryID: models.CategoryGym, Keywords: []string{
				"gym", "fitness", "workout", "exercise", "yoga", "muscle",
			}},
			{CategoryID: models.CategoryRestaurant, Keywords: []string{
				"restaurant", "food", "diner", "eatery", "bistro", "hotel",
			}},
		},
		ExcludedTags: toSet(
			"locality", "political", "hospital", "clinic", "health",
			"shopping_mall", "store", "school", "university", "office",
			"company", "bank", "atm", "parking", "cemetery", "church",
			"mosque", "temple", "government", "post_office", "library",
			"transit_station",
		),
		TagCategories: map[string]string{
			"restaurant":    models.CategoryRestaurant,
			"food":          models.CategoryRestaurant,
			"meal_takeaway": models.CategoryFastFood,
			"cafe":          models.CategoryCafe,
			"gym":           models.CategoryGym,
			"bar":           models.CategoryBarPub,
			"night_club":    models.CategoryBarPub,
		},
		Recommendations: map[string][]string{
			models.CategoryFastFood:   {"Healthy Cafe", "Fresh Juice Bar", "Salad Restaurant", "Vegetarian Cafe"},
			models.CategoryRestaurant: {"Healthy Restaurant", "Salad Bar", "Fresh Juice Cafe", "Vegetarian Place"},
			models.CategoryCafe:       {"Healthy Cafe", "Fresh Juice Bar", "Salad Restaurant"},
			models.CategoryGym:        {"Protein Cafe", "Healthy Restaurant", "Smoothie Bar"},
			models.CategoryBarPub:     {"Coffee Shop", "Healthy Cafe", "Gym", "Juice Bar"},
		},
		DefaultRecommendations: []string{"Healthy Cafe", "Fresh Juice", "Salad Restaurant"},
	}
}

func toSet(tags ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		set[t] = struct{}{}
	}
	return set
}
