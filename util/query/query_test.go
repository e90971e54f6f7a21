package query

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

var customersSpec = Spec{
	Columns: map[string]string{
		"id":          "id",
		"customer_id": "id",
		"name":        "name",
		"postal_code": "postal_code",
	},
	Default: "id",
}

func TestParse(t *testing.T) {
	p, err := Parse(url.Values{"sort": {"name"}, "n": {"5"}, "p": {"2"}})
	require.NoError(t, err)
	require.Equal(t, Params{Sort: "name", PerPage: 5, Page: 2}, p)

	p, err = Parse(url.Values{})
	require.NoError(t, err)
	require.Equal(t, Params{}, p)

	p, err = Parse(url.Values{"filter_by": {"postal_code:98101"}})
	require.NoError(t, err)
	require.Equal(t, "postal_code", p.FilterField)
	require.Equal(t, "98101", p.FilterValue)
}

func TestParse_BadValues(t *testing.T) {
	for _, v := range []url.Values{
		{"n": {"0"}},
		{"n": {"-1"}},
		{"n": {"two"}},
		{"p": {"0"}},
		{"p": {"x"}},
		{"filter_by": {"no-separator"}},
		{"filter_by": {":value"}},
	} {
		_, err := Parse(v)
		require.ErrorIs(t, err, ErrBadParam, "values=%v", v)
	}
}

func TestTail_DefaultSort(t *testing.T) {
	tail, err := customersSpec.Tail(Params{})
	require.NoError(t, err)
	require.Equal(t, " ORDER BY id ASC", tail)
}

func TestTail_NamedSort(t *testing.T) {
	tail, err := customersSpec.Tail(Params{Sort: "name"})
	require.NoError(t, err)
	require.Equal(t, " ORDER BY name ASC", tail)

	// Exposed name maps to the real column.
	tail, err = customersSpec.Tail(Params{Sort: "customer_id"})
	require.NoError(t, err)
	require.Equal(t, " ORDER BY id ASC", tail)
}

func TestTail_UnknownSortField(t *testing.T) {
	_, err := customersSpec.Tail(Params{Sort: "password"})
	var uf *UnknownFieldError
	require.ErrorAs(t, err, &uf)
	require.Equal(t, "password", uf.Field)
}

func TestTail_Pagination(t *testing.T) {
	// n alone limits from the start.
	tail, err := customersSpec.Tail(Params{PerPage: 2})
	require.NoError(t, err)
	require.Equal(t, " ORDER BY id ASC LIMIT 2", tail)

	// Page 1 and no page mean the same window.
	tail, err = customersSpec.Tail(Params{PerPage: 2, Page: 1})
	require.NoError(t, err)
	require.Equal(t, " ORDER BY id ASC LIMIT 2", tail)

	// Page p skips (p-1)*n rows.
	tail, err = customersSpec.Tail(Params{PerPage: 2, Page: 3})
	require.NoError(t, err)
	require.Equal(t, " ORDER BY id ASC LIMIT 2 OFFSET 4", tail)

	// p without n is a no-op.
	tail, err = customersSpec.Tail(Params{Page: 3})
	require.NoError(t, err)
	require.Equal(t, " ORDER BY id ASC", tail)
}

// Consecutive pages at a fixed sort cover adjacent, non-overlapping windows.
func TestTail_PagesAreContiguous(t *testing.T) {
	page1, err := customersSpec.Tail(Params{PerPage: 2, Page: 1})
	require.NoError(t, err)
	page2, err := customersSpec.Tail(Params{PerPage: 2, Page: 2})
	require.NoError(t, err)
	require.Equal(t, " ORDER BY id ASC LIMIT 2", page1)
	require.Equal(t, " ORDER BY id ASC LIMIT 2 OFFSET 2", page2)
}

func TestFilter(t *testing.T) {
	cond, args, err := customersSpec.Filter(Params{FilterField: "postal_code", FilterValue: "98101"}, 3)
	require.NoError(t, err)
	require.Equal(t, "postal_code = $3", cond)
	require.Equal(t, []any{"98101"}, args)
}

func TestFilter_NoFilter(t *testing.T) {
	cond, args, err := customersSpec.Filter(Params{}, 1)
	require.NoError(t, err)
	require.Empty(t, cond)
	require.Nil(t, args)
}

func TestFilter_UnknownField(t *testing.T) {
	_, _, err := customersSpec.Filter(Params{FilterField: "secret", FilterValue: "x"}, 1)
	var uf *UnknownFieldError
	require.ErrorAs(t, err, &uf)
	require.Equal(t, "secret", uf.Field)
}
