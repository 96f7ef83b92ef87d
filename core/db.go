package core

import "context"

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Transactor runs fn as a single unit of work.
// Every repository call made with the context handed to fn joins that unit of work;
// it is committed when fn returns nil and rolled back otherwise.
// Nested calls join the outer unit of work.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Pagination is a 1-based page request.
type Pagination struct {
	Page     int
	PageSize int
}

// NewPagination normalizes page and size: page defaults to 1, size to DefaultPageSize (capped at MaxPageSize).
func NewPagination(page, size int) Pagination {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Pagination{Page: page, PageSize: size}
}

func (p Pagination) Limit() int {
	if p.PageSize < 1 {
		return DefaultPageSize
	}
	return p.PageSize
}

func (p Pagination) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit()
}

// Bounds returns the [start, end) slice bounds of the page within a collection of n items.
func (p Pagination) Bounds(n int) (int, int) {
	start := p.Offset()
	if start > n {
		start = n
	}
	end := start + p.Limit()
	if end > n {
		end = n
	}
	return start, end
}
