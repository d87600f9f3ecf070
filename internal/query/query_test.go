package query

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID      int
	Name    string
	Author  string
	Genre   string
	Edition int
	Year    *int
}

var itemAttrs = Attributes[item]{
	"id":      func(i item) any { return i.ID },
	"name":    func(i item) any { return i.Name },
	"author":  func(i item) any { return i.Author },
	"genre":   func(i item) any { return i.Genre },
	"edition": func(i item) any { return i.Edition },
	"year": func(i item) any {
		if i.Year == nil {
			return nil
		}
		return *i.Year
	},
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func testItems() []item {
	return []item{
		{ID: 1, Name: "The Hobbit", Author: "J.R.R. Tolkien", Genre: "Fantasy", Edition: 1, Year: intPtr(1937)},
		{ID: 2, Name: "Dune", Author: "Frank Herbert", Genre: "Science Fiction", Edition: 2},
		{ID: 3, Name: "The Silmarillion", Author: "J.R.R. Tolkien", Genre: "Fantasy", Edition: 2, Year: intPtr(1977)},
		{ID: 4, Name: "Emma", Author: "Jane Austen", Genre: "Romance", Edition: 1},
	}
}

func TestBuild_EmptyCriteriaMatchesEverything(t *testing.T) {
	pred := Build(Criteria{}, itemAttrs)
	for _, it := range testItems() {
		assert.True(t, pred(it), "expected %q to match", it.Name)
	}

	pred = Build[item](nil, itemAttrs)
	assert.True(t, pred(item{}))
}

func TestBuild_ContainsIsCaseInsensitive(t *testing.T) {
	pred := Build(Criteria{}.Contains("author", "tolKIEN"), itemAttrs)

	var matched []int
	for _, it := range testItems() {
		if pred(it) {
			matched = append(matched, it.ID)
		}
	}
	assert.Equal(t, []int{1, 3}, matched)
}

func TestBuild_EqualsIsExact(t *testing.T) {
	pred := Build(Criteria{}.Equals("genre", "Fantasy"), itemAttrs)
	assert.True(t, pred(testItems()[0]))
	assert.False(t, pred(item{Genre: "fantasy"}))
	assert.False(t, pred(item{Genre: "Fantasy Epic"}))

	pred = Build(Criteria{}.Equals("year", 1977), itemAttrs)
	assert.True(t, pred(testItems()[2]))
	assert.False(t, pred(testItems()[1]), "nil year never equals a value")
}

func TestBuild_MultipleConditionsAreConjunctive(t *testing.T) {
	c := Criteria{}.
		Contains("author", "tolkien").
		Equals("edition", 2)
	pred := Build(c, itemAttrs)

	var matched []int
	for _, it := range testItems() {
		if pred(it) {
			matched = append(matched, it.ID)
		}
	}
	assert.Equal(t, []int{3}, matched)
}

func TestBuild_UnknownFieldsAreIgnored(t *testing.T) {
	c := Criteria{}.Contains("isbn", "978").Equals("genre", "Romance")
	pred := Build(c, itemAttrs)

	assert.True(t, pred(testItems()[3]))
	assert.False(t, pred(testItems()[0]))
}

func TestOptionalAppenders(t *testing.T) {
	var edition *int
	c := Criteria{}.
		ContainsIf("name", nil).
		ContainsIf("author", strPtr("")).
		ContainsIf("genre", strPtr("fan"))
	c = EqualsIf(c, "edition", edition)
	c = EqualsIf(c, "year", intPtr(1937))

	assert.Equal(t, []string{"genre", "year"}, c.Fields())
}

func TestSelect_FiltersAndOrders(t *testing.T) {
	items := testItems()
	order := Order{Field: "name", TieBreak: "id"}

	got := Select(items, Criteria{}, itemAttrs, order)
	names := make([]string, 0, len(got))
	for _, it := range got {
		names = append(names, it.Name)
	}
	assert.Equal(t, []string{"Dune", "Emma", "The Hobbit", "The Silmarillion"}, names)
	assert.Equal(t, 1, items[0].ID, "input must not be reordered")

	got = Select(items, Criteria{}.Equals("genre", "Fantasy"), itemAttrs, Order{Field: "name", Desc: true, TieBreak: "id"})
	require.Len(t, got, 2)
	assert.Equal(t, "The Silmarillion", got[0].Name)
}

func TestSelect_TieBreakKeepsOrderTotal(t *testing.T) {
	items := []item{
		{ID: 9, Name: "Same"},
		{ID: 3, Name: "Same"},
		{ID: 5, Name: "Same"},
	}
	got := Select(items, nil, itemAttrs, Order{Field: "name", TieBreak: "id"})
	assert.Equal(t, []int{3, 5, 9}, []int{got[0].ID, got[1].ID, got[2].ID})
}

func TestWindow(t *testing.T) {
	items := []int{0, 1, 2, 3, 4, 5, 6}

	assert.Equal(t, []int{3, 4, 5}, Window(items, 3, 3))
	assert.Equal(t, []int{6}, Window(items, 6, 3))
	assert.Empty(t, Window(items, 9, 3))
	assert.Empty(t, Window(items, 0, 0))
	assert.Empty(t, Window(items, -4, 2))
	assert.Equal(t, []int{5, 6}, Window(items, 5, math.MaxInt))
}

func TestWhere(t *testing.T) {
	cols := Columns{"name": "b.name", "genre": "b.genre", "edition": "b.edition"}

	t.Run("no criteria", func(t *testing.T) {
		where, args := Criteria{}.Where(cols, 1)
		assert.Empty(t, where)
		assert.Empty(t, args)
	})

	t.Run("contains and equals", func(t *testing.T) {
		c := Criteria{}.Contains("name", "hob").Equals("genre", "Fantasy").Equals("edition", 2)
		where, args := c.Where(cols, 1)
		assert.Equal(t, "WHERE b.name ILIKE $1 AND b.genre = $2 AND b.edition = $3", where)
		assert.Equal(t, []any{"%hob%", "Fantasy", 2}, args)
	})

	t.Run("parameter offset and unknown fields", func(t *testing.T) {
		c := Criteria{}.Contains("isbn", "x").Equals("genre", "Horror")
		where, args := c.Where(cols, 4)
		assert.Equal(t, "WHERE b.genre = $4", where)
		assert.Equal(t, []any{"Horror"}, args)
	})

	t.Run("like wildcards are escaped", func(t *testing.T) {
		where, args := Criteria{}.Contains("name", `50%_off\`).Where(cols, 1)
		assert.Equal(t, "WHERE b.name ILIKE $1", where)
		assert.Equal(t, []any{`%50\%\_off\\%`}, args)
	})
}

func TestOrderBy(t *testing.T) {
	cols := Columns{"name": `b.name COLLATE "C"`, "id": "b.id"}

	assert.Equal(t, `ORDER BY b.name COLLATE "C" ASC, b.id ASC`, Order{Field: "name", TieBreak: "id"}.OrderBy(cols))
	assert.Equal(t, `ORDER BY b.name COLLATE "C" DESC`, Order{Field: "name", Desc: true}.OrderBy(cols))
	assert.Equal(t, "ORDER BY b.id ASC", Order{Field: "rating", TieBreak: "id"}.OrderBy(cols))
	assert.Empty(t, Order{Field: "rating"}.OrderBy(cols))
}
