package app

import (
	"context"
	"fmt"
	"sync"

	"exiled-search/internal/item"
	"exiled-search/internal/trade"
)

// LazySearcher opens the real searcher on first use, so long-running front
// ends can start before the browser is reachable. A failed open is retried
// on the next call.
type LazySearcher struct {
	open func() (Searcher, error)

	mu       sync.Mutex
	searcher Searcher
}

func NewLazySearcher(open func() (Searcher, error)) *LazySearcher {
	return &LazySearcher{open: open}
}

func (l *LazySearcher) get() (Searcher, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.searcher != nil {
		return l.searcher, nil
	}
	s, err := l.open()
	if err != nil {
		return nil, fmt.Errorf("failed to open trade site: %w", err)
	}
	l.searcher = s
	return s, nil
}

func (l *LazySearcher) Validate(ctx context.Context) trade.ValidationReport {
	s, err := l.get()
	if err != nil {
		return trade.ValidationReport{CriticalErrors: []string{err.Error()}}
	}
	return s.Validate(ctx)
}

func (l *LazySearcher) PerformSearch(ctx context.Context, parsed *item.ParsedItem, scalePercent int) trade.Result {
	s, err := l.get()
	if err != nil {
		return trade.Result{Error: err.Error()}
	}
	return s.PerformSearch(ctx, parsed, scalePercent)
}
