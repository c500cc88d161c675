package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/voyagehub/travel-backend/internal/models"
)

// whereBuilder collects filter clauses written with ? placeholders.
// Rendered queries are rebound to $n for lib/pq.
type whereBuilder struct {
	clauses []string
	args    []interface{}
}

func (w *whereBuilder) add(clause string, args ...interface{}) {
	w.clauses = append(w.clauses, clause)
	w.args = append(w.args, args...)
}

// addIf appends the clause only when cond holds, keeping filter code flat
func (w *whereBuilder) addIf(cond bool, clause string, args ...interface{}) {
	if cond {
		w.add(clause, args...)
	}
}

func (w *whereBuilder) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

// orderBy resolves a client sort key against a whitelist of columns
func orderBy(p models.ListParams, allowed map[string]string, fallback string) string {
	column, ok := allowed[p.SortBy]
	if !ok {
		column = fallback
	}
	direction := "DESC"
	if p.SortOrder == "asc" {
		direction = "ASC"
	}
	// id breaks ties so pages stay stable
	return fmt.Sprintf(" ORDER BY %s %s, id %s", column, direction, direction)
}

// likePattern escapes user input for ILIKE substring matching
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(s)) + "%"
}

// listPage runs the count and page queries for a list endpoint
func listPage(ctx context.Context, db DB, dest interface{}, table, columns string, where *whereBuilder, order string, p models.ListParams) (int, error) {
	var total int
	countQuery := sqlx.Rebind(sqlx.DOLLAR, "SELECT COUNT(*) FROM "+table+where.String())
	if err := db.GetContext(ctx, &total, countQuery, where.args...); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}

	args := append(append([]interface{}{}, where.args...), p.Limit, p.Offset())
	query := sqlx.Rebind(sqlx.DOLLAR, "SELECT "+columns+" FROM "+table+where.String()+order+" LIMIT ? OFFSET ?")
	if err := db.SelectContext(ctx, dest, query, args...); err != nil {
		return 0, fmt.Errorf("failed to list %s: %w", table, err)
	}
	return total, nil
}

// deleteWhere removes every row matching where and returns the count
func deleteWhere(ctx context.Context, q Querier, table string, where *whereBuilder) (int64, error) {
	query := sqlx.Rebind(sqlx.DOLLAR, "DELETE FROM "+table+where.String())
	result, err := q.ExecContext(ctx, query, where.args...)
	if err != nil {
		return 0, translateError("failed to delete "+table, err)
	}
	return result.RowsAffected()
}
