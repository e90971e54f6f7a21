// Package query narrows list results by the sort/n/p/filter_by request
// parameters. Field names arrive as free text, so every collection declares
// an allowlist (Spec) mapping exposed names to SQL columns; anything outside
// the allowlist is rejected instead of being interpolated.
package query

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

var ErrBadParam = errors.New("invalid query parameter")

// UnknownFieldError reports a sort or filter field outside the allowlist.
type UnknownFieldError struct {
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown field %q", e.Field)
}

// Params are the list-endpoint query parameters.
//
// PerPage (n) limits results per page. Page (p) is 1-indexed and only takes
// effect together with PerPage; p without n is a no-op since there is no
// page size to multiply.
type Params struct {
	Sort        string
	PerPage     int
	Page        int
	FilterField string
	FilterValue string
}

// Parse reads sort, n, p and filter_by from the request query string.
// filter_by uses the form field:value and exact-matches a single field.
func Parse(v url.Values) (Params, error) {
	var p Params
	p.Sort = v.Get("sort")

	if raw := v.Get("n"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return Params{}, fmt.Errorf("%w: n=%q", ErrBadParam, raw)
		}
		p.PerPage = n
	}
	if raw := v.Get("p"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return Params{}, fmt.Errorf("%w: p=%q", ErrBadParam, raw)
		}
		p.Page = n
	}
	if raw := v.Get("filter_by"); raw != "" {
		field, value, ok := strings.Cut(raw, ":")
		if !ok || field == "" {
			return Params{}, fmt.Errorf("%w: filter_by=%q", ErrBadParam, raw)
		}
		p.FilterField = field
		p.FilterValue = value
	}
	return p, nil
}

// Spec is a collection's allowlist of sortable/filterable fields.
type Spec struct {
	// Columns maps exposed field names to SQL columns.
	Columns map[string]string
	// Default is the column sorted by when no sort parameter is given.
	Default string
}

// Filter returns the SQL condition for an exact-match filter, or "" when no
// filter was requested. next is the first free placeholder number of the
// enclosing query.
func (s Spec) Filter(p Params, next int) (string, []any, error) {
	if p.FilterField == "" {
		return "", nil, nil
	}
	col, ok := s.Columns[p.FilterField]
	if !ok {
		return "", nil, &UnknownFieldError{Field: p.FilterField}
	}
	return fmt.Sprintf("%s = $%d", col, next), []any{p.FilterValue}, nil
}

// Tail returns the ORDER BY / LIMIT / OFFSET suffix. Order of application is
// fixed: sort, then limit, then skip (p-1)*n rows.
func (s Spec) Tail(p Params) (string, error) {
	col := s.Default
	if p.Sort != "" {
		c, ok := s.Columns[p.Sort]
		if !ok {
			return "", &UnknownFieldError{Field: p.Sort}
		}
		col = c
	}

	var b strings.Builder
	fmt.Fprintf(&b, " ORDER BY %s ASC", col)
	if p.PerPage > 0 {
		fmt.Fprintf(&b, " LIMIT %d", p.PerPage)
		if p.Page > 1 {
			fmt.Fprintf(&b, " OFFSET %d", (p.Page-1)*p.PerPage)
		}
	}
	return b.String(), nil
}
