package core

import "sync"

// Paginator slices an already-resident dataset into pages and tracks the
// current page for one table instance. Several independent instances
// coexist per screen (one per section, group, or day detail table).
//
// Changing the upstream filter must reset the page, otherwise a stale page
// index can point past the end of a newly shortened dataset; SetFilterKey
// makes that reset explicit and uniform.
//
// A Paginator is safe for concurrent use. Callers that need the
// filter-key, page and slice steps to observe one consistent state
// should use Resolve, which runs the whole sequence under the lock.
type Paginator[T any] struct {
	mu        sync.Mutex
	page      int
	size      int
	filterKey string
}

const DefaultPageSize = 10

// NewPaginator returns a paginator at page 1. A non-positive size falls
// back to DefaultPageSize.
func NewPaginator[T any](size int) *Paginator[T] {
	if size <= 0 {
		size = DefaultPageSize
	}
	return &Paginator[T]{page: 1, size: size}
}

// Page returns the current 1-based page number.
func (p *Paginator[T]) Page() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.page
}

// Size returns the page size. The size is fixed at construction.
func (p *Paginator[T]) Size() int { return p.size }

// SetPage moves to page n. Out-of-range values clamp to [1, Pages(total)].
func (p *Paginator[T]) SetPage(n, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.setPage(n, total)
}

func (p *Paginator[T]) setPage(n, total int) {
	max := p.pages(total)
	if n < 1 {
		n = 1
	}
	if n > max {
		n = max
	}
	p.page = n
}

// Reset returns to page 1.
func (p *Paginator[T]) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.page = 1
}

// SetFilterKey records the upstream filter identity (date range, section,
// vendor...). When the key changes the page resets to 1.
func (p *Paginator[T]) SetFilterKey(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.setFilterKey(key)
}

func (p *Paginator[T]) setFilterKey(key string) {
	if key != p.filterKey {
		p.filterKey = key
		p.page = 1
	}
}

// Pages returns the number of pages for total items, at least 1.
func (p *Paginator[T]) Pages(total int) int {
	return p.pages(total)
}

func (p *Paginator[T]) pages(total int) int {
	if total <= 0 {
		return 1
	}
	return (total + p.size - 1) / p.size
}

// Slice returns the current page's window of items. The last page may be
// short; a page past the end is empty.
func (p *Paginator[T]) Slice(items []T) []T {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.slice(items)
}

func (p *Paginator[T]) slice(items []T) []T {
	start := (p.page - 1) * p.size
	if start >= len(items) {
		return nil
	}
	end := start + p.size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// Subtotal sums amount over the current page's slice. Page subtotals over
// all pages add up to the grand total.
func (p *Paginator[T]) Subtotal(items []T, amount func(T) Money) Money {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.subtotal(items, amount)
}

func (p *Paginator[T]) subtotal(items []T, amount func(T) Money) Money {
	var sum Money
	for _, it := range p.slice(items) {
		sum = sum.Add(amount(it))
	}
	return sum
}

// PageView is one consistent pagination outcome: the page window plus the
// numbers describing it.
type PageView[T any] struct {
	Items    []T
	Page     int
	Pages    int
	Size     int
	Subtotal Money
}

// Resolve applies the filter key, moves to the requested page (requested
// <= 0 keeps the current page) and slices the window, all under one lock.
// Concurrent callers each get a view that was valid at some point; none
// sees a page picked against one filter and sliced against another.
func (p *Paginator[T]) Resolve(filterKey string, requested int, items []T, amount func(T) Money) PageView[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.setFilterKey(filterKey)
	if requested > 0 {
		p.setPage(requested, len(items))
	}
	return PageView[T]{
		Items:    p.slice(items),
		Page:     p.page,
		Pages:    p.pages(len(items)),
		Size:     p.size,
		Subtotal: p.subtotal(items, amount),
	}
}
