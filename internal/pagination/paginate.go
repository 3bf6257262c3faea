// Package pagination slices ordered result sets into fixed-size pages.
package pagination

import (
	"context"
	"errors"
	"strconv"
)

// Source is an ordered collection that can be counted and fetched by window.
type Source[T any] interface {
	Count(ctx context.Context) (int64, error)
	Fetch(ctx context.Context, offset, limit int) ([]T, error)
}

// Page is one window of a Source together with navigation metadata.
type Page[T any] struct {
	Items    []T
	Number   int
	Size     int
	NumPages int
	Count    int64
}

func (p *Page[T]) HasPrevious() bool { return p.Number > 1 }

func (p *Page[T]) HasNext() bool { return p.Number < p.NumPages }

func (p *Page[T]) HasOtherPages() bool { return p.HasPrevious() || p.HasNext() }

func (p *Page[T]) PreviousNumber() int { return p.Number - 1 }

func (p *Page[T]) NextNumber() int { return p.Number + 1 }

// Len is the number of items on this page.
func (p *Page[T]) Len() int { return len(p.Items) }

// NumPages is ceil(count/size).
func NumPages(count int64, size int) int {
	if count <= 0 || size <= 0 {
		return 0
	}
	return int((count + int64(size) - 1) / int64(size))
}

// Number resolves a raw "page" query value. A value that is not an integer
// selects page 1. An integer outside 1..numPages, including one too large
// for an int, selects the last page. An empty collection only has page 1.
func Number(raw string, numPages int) int {
	last := max(numPages, 1)
	n, err := strconv.Atoi(raw)
	switch {
	case errors.Is(err, strconv.ErrRange):
		return last
	case err != nil:
		return 1
	case n < 1 || n > last:
		return last
	}
	return n
}

// Paginate counts src, resolves raw to a valid page number and fetches that page.
func Paginate[T any](ctx context.Context, src Source[T], raw string, size int) (*Page[T], error) {
	count, err := src.Count(ctx)
	if err != nil {
		return nil, err
	}
	numPages := NumPages(count, size)
	number := Number(raw, numPages)

	page := &Page[T]{
		Number:   number,
		Size:     size,
		NumPages: numPages,
		Count:    count,
	}
	if count == 0 {
		page.Items = []T{}
		return page, nil
	}

	items, err := src.Fetch(ctx, (number-1)*size, size)
	if err != nil {
		return nil, err
	}
	page.Items = items
	return page, nil
}
