// Package search holds the client-side venue search helpers: filtering,
// "load more" paging and a debouncer for keystroke-driven queries.
package search

import (
	"context"
	"strings"
	"sync"
	"time"

	"holidaze/internal/models"
	"holidaze/internal/scope"
)

// Filter returns venues whose name, description, city or country contains
// query, ignoring case. An empty query returns all venues.
func Filter(venues []models.Venue, query string) []models.Venue {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return venues
	}
	out := make([]models.Venue, 0, len(venues))
	for i := range venues {
		if venues[i].Matches(q) {
			out = append(out, venues[i])
		}
	}
	return out
}

// Pager accumulates pages of venues for "load more" listings.
type Pager struct {
	pageSize int
	page     int
	last     bool
	seen     map[string]struct{}
	venues   []models.Venue
}

// NewPager creates a pager that requests pageSize venues at a time.
func NewPager(pageSize int) *Pager {
	if pageSize <= 0 {
		pageSize = 12
	}
	return &Pager{pageSize: pageSize, seen: make(map[string]struct{})}
}

// Next returns the page number and size to request next.
func (p *Pager) Next() (page, limit int) {
	return p.page + 1, p.pageSize
}

// HasMore reports whether another page may exist.
func (p *Pager) HasMore() bool {
	return !p.last
}

// Add appends a fetched page, dropping venues already seen. It returns the
// number of new venues.
func (p *Pager) Add(venues []models.Venue, meta models.PageMeta) int {
	p.page++
	if meta.CurrentPage > 0 {
		p.page = meta.CurrentPage
	}
	added := 0
	for i := range venues {
		if _, dup := p.seen[venues[i].ID]; dup {
			continue
		}
		p.seen[venues[i].ID] = struct{}{}
		p.venues = append(p.venues, venues[i])
		added++
	}
	p.last = meta.IsLastPage || len(venues) < p.pageSize
	return added
}

// Venues returns everything loaded so far.
func (p *Pager) Venues() []models.Venue {
	return p.venues
}

// Reset forgets every page.
func (p *Pager) Reset() {
	p.page = 0
	p.last = false
	p.seen = make(map[string]struct{})
	p.venues = nil
}

// Debouncer runs fn with the latest query once input has been quiet for
// the delay. Pending runs are cancelled when the scope closes.
type Debouncer struct {
	sc    *scope.Scope
	delay time.Duration
	fn    func(ctx context.Context, query string)

	mu    sync.Mutex
	seq   uint64
	timer *time.Timer
}

// NewDebouncer binds a debouncer to sc.
func NewDebouncer(sc *scope.Scope, delay time.Duration, fn func(ctx context.Context, query string)) *Debouncer {
	if delay <= 0 {
		delay = 300 * time.Millisecond
	}
	return &Debouncer{sc: sc, delay: delay, fn: fn}
}

// Trigger schedules fn for query, replacing any pending query.
func (d *Debouncer) Trigger(query string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	seq := d.seq
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		current := seq == d.seq
		d.mu.Unlock()
		if !current {
			return
		}
		d.sc.Go(func(ctx context.Context) {
			if ctx.Err() != nil {
				return
			}
			d.fn(ctx, query)
		})
	})
}

// Stop cancels a pending run.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	if d.timer != nil {
		d.timer.Stop()
	}
}
