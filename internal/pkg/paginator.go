package pkg

import "strconv"

const DefaultPerPage = 10

// Page is one slice of an ordered result set.
// An empty result still has one page.
type Page struct {
	Number   int
	NumPages int
	PerPage  int
	Count    int64
}

// NewPage resolves the requested page. A value that is not an integer
// gives the first page, one outside [1, NumPages] gives the last page.
func NewPage(count int64, perPage int, raw string) Page {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	numPages := int((count + int64(perPage) - 1) / int64(perPage))
	if numPages < 1 {
		numPages = 1
	}

	number, err := strconv.Atoi(raw)
	switch {
	case err != nil:
		number = 1
	case number < 1 || number > numPages:
		number = numPages
	}
	return Page{Number: number, NumPages: numPages, PerPage: perPage, Count: count}
}

func (p Page) Offset() int { return (p.Number - 1) * p.PerPage }

func (p Page) Limit() int { return p.PerPage }

func (p Page) HasNext() bool { return p.Number < p.NumPages }

func (p Page) HasPrevious() bool { return p.Number > 1 }

func (p Page) HasOtherPages() bool { return p.HasNext() || p.HasPrevious() }

func (p Page) NextPageNumber() int { return p.Number + 1 }

func (p Page) PreviousPageNumber() int { return p.Number - 1 }

// PageRange lists page numbers for the navigation bar
func (p Page) PageRange() []int {
	out := make([]int, p.NumPages)
	for i := range out {
		out[i] = i + 1
	}
	return out
}
