// Package rulestore loads the classification rule set from PostgreSQL.
// The engine treats the store as a read-only lookup: the rule set is
// loaded once at startup (or on an explicit reload) and the compiled-in
// defaults take over whenever the store is unavailable or empty.
package rulestore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"healthnudge/internal/models"
	"healthnudge/internal/rules"
)

// Store reads rule tables from PostgreSQL.
type Store struct {
	db *pgxpool.Pool
}

func New(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("rule store DSN cannot be empty")
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to parse rule store DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping rule store: %w", err)
	}

	return &Store{db: pool}, nil
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the connection pool.
func (s *Store) Close() {
	s.db.Close()
}

// LoadRuleSet assembles a complete rule set from the rule tables and
// validates it. Lists that are absent in the database inherit the
// compiled-in defaults so a partially seeded store still yields a working
// set; a store with no categories at all returns models.ErrNoRuleSet.
func (s *Store) LoadRuleSet(ctx context.Context) (*rules.RuleSet, error) {
	rs := rules.Default()

	categories, err := s.loadCategories(ctx)
	if err != nil {
		return nil, err
	}
	if len(categories) == 0 {
		return nil, fmt.Errorf("%w: categories table is empty", models.ErrNoRuleSet)
	}
	rs.Categories = categories

	keywordRules, err := s.loadKeywordRules(ctx)
	if err != nil {
		return nil, err
	}
	if len(keywordRules) > 0 {
		rs.KeywordRules = keywordRules
	}

	excluded, err := s.loadExcludedTags(ctx)
	if err != nil {
		return nil, err
	}
	if len(excluded) > 0 {
		rs.ExcludedTags = excluded
	}

	tagCategories, err := s.loadTagCategories(ctx)
	if err != nil {
		return nil, err
	}
	if len(tagCategories) > 0 {
		rs.TagCategories = tagCategories
	}

	recommendations, err := s.loadRecommendations(ctx)
	if err != nil {
		return nil, err
	}
	if len(recommendations) > 0 {
		rs.Recommendations = recommendations
	}

	if err := rs.Validate(); err != nil {
		return nil, fmt.Errorf("rule store produced an invalid rule set: %w", err)
	}
	return rs, nil
}

func (s *Store) loadCategories(ctx context.Context) (map[string]models.Category, error) {
	query := `SELECT id, display_name, is_unhealthy FROM categories`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	categories := make(map[string]models.Category)
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.DisplayName, &c.IsUnhealthy); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories[c.ID] = c
	}
	return categories, rows.Err()
}

// loadKeywordRules reads keywords ordered by rule priority. Rows sharing a
// category collapse into one rule; rule order follows the lowest priority
// value seen for that category.
func (s *Store) loadKeywordRules(ctx context.Context) ([]rules.KeywordRule, error) {
	query := `SELECT category_id, keyword FROM keywords ORDER BY priority, id`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query keywords: %w", err)
	}
	defer rows.Close()

	var ordered []rules.KeywordRule
	index := make(map[string]int)
	for rows.Next() {
		var categoryID, keyword string
		if err := rows.Scan(&categoryID, &keyword); err != nil {
			return nil, fmt.Errorf("scan keyword: %w", err)
		}
		i, ok := index[categoryID]
		if !ok {
			i = len(ordered)
			index[categoryID] = i
			ordered = append(ordered, rules.KeywordRule{CategoryID: categoryID})
		}
		ordered[i].Keywords = append(ordered[i].Keywords, keyword)
	}
	return ordered, rows.Err()
}

func (s *Store) loadExcludedTags(ctx context.Context) (map[string]struct{}, error) {
	query := `SELECT tag FROM excluded_tags`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query excluded tags: %w", err)
	}
	defer rows.Close()

	tags := make(map[string]struct{})
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, fmt.Errorf("scan excluded tag: %w", err)
		}
		tags[tag] = struct{}{}
	}
	return tags, rows.Err()
}

func (s *Store) loadTagCategories(ctx context.Context) (map[string]string, error) {
	query := `SELECT tag, category_id FROM tag_categories`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query tag categories: %w", err)
	}
	defer rows.Close()

	mapping := make(map[string]string)
	for rows.Next() {
		var tag, categoryID string
		if err := rows.Scan(&tag, &categoryID); err != nil {
			return nil, fmt.Errorf("scan tag category: %w", err)
		}
		mapping[tag] = categoryID
	}
	return mapping, rows.Err()
}

func (s *Store) loadRecommendations(ctx context.Context) (map[string][]string, error) {
	query := `SELECT category_id, suggestion FROM recommendation_rules ORDER BY category_id, position`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		// The recommendations table is optional; a missing relation just
		// means the static fallback table applies.
		if isUndefinedTable(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("query recommendation rules: %w", err)
	}
	defer rows.Close()

	recommendations := make(map[string][]string)
	for rows.Next() {
		var categoryID, suggestion string
		if err := rows.Scan(&categoryID, &suggestion); err != nil {
			return nil, fmt.Errorf("scan recommendation rule: %w", err)
		}
		recommendations[categoryID] = append(recommendations[categoryID], suggestion)
	}
	return recommendations, rows.Err()
}

// isUndefinedTable reports SQLSTATE 42P01 (undefined_table).
func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "42P01"
}
