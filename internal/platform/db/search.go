package db

import (
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"
)

// FilterKind defines how a search parameter maps onto its column.
type FilterKind int

const (
	FilterExact  FilterKind = iota // exact match on the column value
	FilterTime                     // timestamp, supports gt/ge/lt/le prefixes
	FilterText                     // case-insensitive substring match
	FilterNumber                   // numeric, supports gt/ge/lt/le prefixes
)

// FilterConfig maps a query parameter name to its database column.
type FilterConfig struct {
	Kind   FilterKind
	Column string
}

// SearchQuery builds SQL WHERE clauses from request query parameters.
// It encapsulates the list/search pattern shared by the domain repositories.
type SearchQuery struct {
	table   string
	cols    string
	where   string
	args    []interface{}
	idx     int
	orderBy string
}

// NewSearchQuery creates a new SearchQuery for the given table and columns.
func NewSearchQuery(table, cols string) *SearchQuery {
	return &SearchQuery{
		table: table,
		cols:  cols,
		idx:   1,
	}
}

// Idx returns the next available parameter index.
func (q *SearchQuery) Idx() int { return q.idx }

// Add appends a raw WHERE clause fragment (without leading "AND").
func (q *SearchQuery) Add(clause string, args ...interface{}) {
	q.where += " AND " + clause
	q.args = append(q.args, args...)
	q.idx += len(args)
}

// comparisonPrefix splits an optional gt/ge/lt/le/eq prefix off a value and
// returns the SQL operator with the remainder.
func comparisonPrefix(value string) (op, rest string) {
	switch {
	case strings.HasPrefix(value, "gt"):
		return ">", value[2:]
	case strings.HasPrefix(value, "ge"):
		return ">=", value[2:]
	case strings.HasPrefix(value, "lt"):
		return "<", value[2:]
	case strings.HasPrefix(value, "le"):
		return "<=", value[2:]
	case strings.HasPrefix(value, "eq"):
		return "=", value[2:]
	default:
		return "=", value
	}
}

// ApplyParam applies a single search parameter using the config.
func (q *SearchQuery) ApplyParam(config FilterConfig, value string) {
	switch config.Kind {
	case FilterTime, FilterNumber:
		op, rest := comparisonPrefix(value)
		q.where += fmt.Sprintf(" AND %s %s $%d", config.Column, op, q.idx)
		q.args = append(q.args, rest)
		q.idx++
	case FilterText:
		q.where += fmt.Sprintf(" AND %s ILIKE $%d", config.Column, q.idx)
		q.args = append(q.args, "%"+value+"%")
		q.idx++
	default:
		q.where += fmt.Sprintf(" AND %s = $%d", config.Column, q.idx)
		q.args = append(q.args, value)
		q.idx++
	}
}

// ApplyParams applies all matching search parameters from the given map.
func (q *SearchQuery) ApplyParams(params map[string]string, configs map[string]FilterConfig) {
	for name, value := range params {
		if config, ok := configs[name]; ok {
			q.ApplyParam(config, value)
		}
	}
}

// OrderBy sets the ORDER BY clause (without the "ORDER BY" keyword).
func (q *SearchQuery) OrderBy(orderBy string) {
	q.orderBy = orderBy
}

// CountSQL returns the count query SQL.
func (q *SearchQuery) CountSQL() string {
	return fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE 1=1%s", q.table, q.where)
}

// CountArgs returns the arguments for the count query.
func (q *SearchQuery) CountArgs() []interface{} {
	return q.args
}

// DataSQL returns the data query SQL with ORDER BY and LIMIT/OFFSET.
func (q *SearchQuery) DataSQL() string {
	sql := fmt.Sprintf("SELECT %s FROM %s WHERE 1=1%s", q.cols, q.table, q.where)
	if q.orderBy != "" {
		sql += " ORDER BY " + q.orderBy
	}
	sql += fmt.Sprintf(" LIMIT $%d OFFSET $%d", q.idx, q.idx+1)
	return sql
}

// DataArgs returns the arguments for the data query (search args + limit + offset).
func (q *SearchQuery) DataArgs(limit, offset int) []interface{} {
	result := make([]interface{}, len(q.args)+2)
	copy(result, q.args)
	result[len(q.args)] = limit
	result[len(q.args)+1] = offset
	return result
}

// ApplySort processes the sort parameter and sets ORDER BY using config column
// mappings. The value is a comma-separated list of param names, optionally
// prefixed with - for DESC. Falls back to defaultOrder when empty or when no
// listed field is known.
func (q *SearchQuery) ApplySort(sortParam, defaultOrder string, configs map[string]FilterConfig) {
	if sortParam == "" {
		q.orderBy = defaultOrder
		return
	}
	var parts []string
	for _, field := range strings.Split(sortParam, ",") {
		field = strings.TrimSpace(field)
		desc := false
		if strings.HasPrefix(field, "-") {
			desc = true
			field = field[1:]
		}
		if config, ok := configs[field]; ok {
			col := config.Column
			if desc {
				parts = append(parts, col+" DESC")
			} else {
				parts = append(parts, col+" ASC")
			}
		}
	}
	if len(parts) > 0 {
		q.orderBy = strings.Join(parts, ", ")
	} else {
		q.orderBy = defaultOrder
	}
}

// ExtractSearchParams extracts search parameters from the query string,
// excluding pagination and sort controls. Unknown params are included; the
// repo's ApplyParams ignores ones not in its config.
func ExtractSearchParams(c echo.Context) map[string]string {
	params := map[string]string{}
	for k, v := range c.QueryParams() {
		if len(v) == 0 {
			continue
		}
		switch k {
		case "limit", "offset", "sort":
			continue
		}
		params[k] = v[0]
	}
	return params
}
