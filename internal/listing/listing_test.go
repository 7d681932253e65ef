package listing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type course struct {
	title string
	price float64
}

var catalog = []course{
	{"Go Basics", 10},
	{"Advanced Go", 30},
	{"Python", 10},
	{"Rust", 20},
	{"golang patterns", 25},
}

func titles(cs []course) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.title)
	}
	return out
}

func TestFilter(t *testing.T) {
	t.Parallel()

	got := Filter(catalog, func(c course) bool { return ContainsFold(c.title, "GO") })
	require.Equal(t, []string{"Go Basics", "Advanced Go", "golang patterns"}, titles(got))
	require.Empty(t, Filter(catalog, func(course) bool { return false }))
}

func TestSortBy(t *testing.T) {
	t.Parallel()

	byPrice := SortBy(catalog, func(c course) float64 { return c.price }, Asc)
	// Стабильность: при равной цене исходный порядок сохраняется.
	require.Equal(t, []string{"Go Basics", "Python", "Rust", "golang patterns", "Advanced Go"}, titles(byPrice))

	byTitle := SortBy(catalog, func(c course) string { return c.title }, Desc)
	require.Equal(t, "golang patterns", byTitle[0].title)

	require.Equal(t, "Go Basics", catalog[0].title, "input untouched")
}

func TestParseDirection(t *testing.T) {
	t.Parallel()

	f, d := ParseDirection("-price")
	require.Equal(t, "price", f)
	require.Equal(t, Desc, d)

	f, d = ParseDirection("title")
	require.Equal(t, "title", f)
	require.Equal(t, Asc, d)
}

func TestPaginate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		page, size int
		want       []string
		total      int
	}{
		{"first", 1, 2, []string{"Go Basics", "Advanced Go"}, 3},
		{"last partial", 3, 2, []string{"golang patterns"}, 3},
		{"beyond", 4, 2, nil, 3},
		{"zero page", 0, 2, nil, 3},
		{"all", 1, 0, titles(catalog), 1},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, total := Paginate(catalog, tc.page, tc.size)
			require.Equal(t, tc.total, total)
			if tc.want == nil {
				require.Empty(t, got)
				return
			}
			require.Equal(t, tc.want, titles(got))
		})
	}

	got, total := Paginate([]course(nil), 1, 10)
	require.Empty(t, got)
	require.Zero(t, total)
}
