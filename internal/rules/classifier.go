package rules

import (
	"strings"

	log "github.com/sirupsen/logrus"

	"healthnudge/internal/models"
)

// Classifier maps a venue's name and tags to a target category using the
// rule set. It is pure and never errors on malformed input: venues that are
// not of interest classify to nil.
type Classifier struct {
	rules *RuleSet
}

func NewClassifier(rs *RuleSet) *Classifier {
	return &Classifier{rules: rs}
}

// RuleSet exposes the active set, mainly for CLI inspection.
func (c *Classifier) RuleSet() *RuleSet {
	return c.rules
}

// Classify runs the three-step match. Order is part of the contract:
//
//  1. Any excluded tag disqualifies the venue outright, even when the name
//     strongly matches a target keyword.
//  2. Keyword rules are scanned in priority order; the first rule with a
//     case-insensitive substring hit on the name wins.
//  3. With no keyword hit, the venue's tags are checked against the tag
//     fallback map; the first mapped tag wins.
func (c *Classifier) Classify(v models.Venue) *models.Classification {
	for _, tag := range v.Tags {
		if _, excluded := c.rules.ExcludedTags[tag]; excluded {
			log.Debugf("classifier: ignoring %q, excluded tag %q", v.Name, tag)
			return nil
		}
	}

	categoryID := c.matchKeyword(v.Name)
	if categoryID == "" {
		categoryID = c.matchTag(v.Tags)
	}
	if categoryID == "" {
		log.Debugf("classifier: %q is not of interest", v.Name)
		return nil
	}

	category := c.rules.Categories[categoryID]
	return &models.Classification{
		Venue:                    v,
		CategoryID:               category.ID,
		CategoryName:             category.DisplayName,
		IsUnhealthy:              category.IsUnhealthy,
		RecommendedCategoryNames: c.rules.RecommendationsFor(category.ID),
	}
}

func (c *Classifier) matchKeyword(name string) string {
	if name == "" {
		return ""
	}
	lower := strings.ToLower(name)
	for _, rule := range c.rules.KeywordRules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				log.Debugf("classifier: keyword %q in %q -> %s", kw, name, rule.CategoryID)
				return rule.CategoryID
			}
		}
	}
	return ""
}

func (c *Classifier) matchTag(tags []string) string {
	for _, tag := range tags {
		if categoryID, ok := c.rules.TagCategories[tag]; ok {
			return categoryID
		}
	}
	return ""
}
