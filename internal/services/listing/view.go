package listing

import (
	"github.com/archon-research/cryptoplace/internal/domain/entity"
)

// View is the interactive state of a list screen: the coins on display and
// the query applied to them. Changing the search text or the category returns
// to the first page; changing the sort keeps the current page.
//
// A View is not safe for concurrent use.
type View struct {
	coins []entity.CoinSummary
	query Query
}

// NewView creates a view with the given starting query.
func NewView(q Query) *View {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Category == "" {
		q.Category = CategoryAll
	}
	return &View{query: q}
}

// Query returns the current query.
func (v *View) Query() Query {
	return v.query
}

// SetCoins replaces the list on display. The current page is kept when it
// still exists and moved to the last page otherwise.
func (v *View) SetCoins(coins []entity.CoinSummary) {
	v.coins = coins
	if total := v.TotalPages(); v.query.Page > total {
		v.query.Page = total
	}
}

// SetSearch sets the search text and returns to the first page.
func (v *View) SetSearch(text string) {
	v.query.Search = text
	v.query.Page = 1
}

// SetCategory sets the category filter and returns to the first page.
func (v *View) SetCategory(c Category) {
	v.query.Category = c
	v.query.Page = 1
}

// SelectSort activates field, or flips the direction if it is already active.
func (v *View) SelectSort(field SortField) {
	v.query.Sort = v.query.Sort.Select(field)
}

// SetPage moves to page n. Out-of-range pages are ignored; the return value
// reports whether the page changed.
func (v *View) SetPage(n int) bool {
	if n < 1 || n > v.TotalPages() || n == v.query.Page {
		return false
	}
	v.query.Page = n
	return true
}

// Next moves one page forward if possible.
func (v *View) Next() bool {
	return v.SetPage(v.query.Page + 1)
}

// Prev moves one page back if possible.
func (v *View) Prev() bool {
	return v.SetPage(v.query.Page - 1)
}

// TotalPages returns the page count of the filtered and searched list.
func (v *View) TotalPages() int {
	matched := Search(Filter(v.coins, v.query.Category), v.query.Search)
	return TotalPages(len(matched), v.query.PageSize)
}

// Page returns the visible page.
func (v *View) Page() Page[entity.CoinSummary] {
	return Derive(v.coins, v.query)
}
