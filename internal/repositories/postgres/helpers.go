package postgres

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var allowedSortColumns = map[string]bool{
	"created_at":       true,
	"updated_at":       true,
	"title":            true,
	"submitted_at":     true,
	"score_percentage": true,
}

// applyPaginationAndSort applies sorting and pagination. Unknown sort columns
// fall back to created_at to keep user input out of the ORDER BY clause.
func applyPaginationAndSort(query *gorm.DB, sortBy, sortOrder string, limit, offset int) *gorm.DB {
	if !allowedSortColumns[sortBy] {
		sortBy = "created_at"
	}
	if strings.ToLower(sortOrder) != "asc" {
		sortOrder = "desc"
	}
	query = query.Order(fmt.Sprintf("%s %s", sortBy, sortOrder))

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}
