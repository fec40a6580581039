package app

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"exiled-search/internal/item"
	"exiled-search/internal/stats"
	"exiled-search/internal/storage"
	"exiled-search/internal/trade"
	"exiled-search/pkg/logger"
	"exiled-search/pkg/notify"
)

// ErrBusy rejects a second pipeline run while one is in flight.
var ErrBusy = errors.New("a search is already running")

// Searcher drives the trade site.
type Searcher interface {
	Validate(ctx context.Context) trade.ValidationReport
	PerformSearch(ctx context.Context, parsed *item.ParsedItem, scalePercent int) trade.Result
}

// HistoryStore records finished runs.
type HistoryStore interface {
	AddSearch(rec storage.SearchRecord) (storage.SearchRecord, error)
}

// Chime plays the result sound.
type Chime interface {
	PlaySuccess() error
	PlayFailure() error
}

// Prepared is a parsed item together with its stat preview.
type Prepared struct {
	Item    *item.ParsedItem    `json:"item"`
	Preview []stats.PreviewLine `json:"preview"`
}

// Selected returns the lines of the preview that will become filters.
func (p *Prepared) Selected() []string {
	var out []string
	for _, l := range p.Preview {
		if l.Status == stats.StatusMapped {
			out = append(out, l.Text)
		}
	}
	return out
}

// StatPicker narrows the stats to search. It returns the chosen preview lines.
type StatPicker func(p *Prepared) ([]string, error)

type SearchRequest struct {
	Text    string
	Scale   int
	Profile string
	Pick    StatPicker
}

// Outcome is what a finished run reports back.
type Outcome struct {
	ItemName  string       `json:"item_name"`
	ItemClass string       `json:"item_class"`
	Stats     []string     `json:"stats"`
	Result    trade.Result `json:"result"`
	Finished  time.Time    `json:"finished"`
}

// Status is a snapshot for the daemon.
type Status struct {
	Busy         bool     `json:"busy"`
	DelayProfile string   `json:"delay_profile"`
	Last         *Outcome `json:"last,omitempty"`
}

type Pipeline struct {
	searcher Searcher
	registry *stats.Registry
	delays   *trade.DelaySelector
	history  HistoryStore
	notifier notify.Notifier
	chime    Chime
	log      *logger.Logger

	busy atomic.Bool
	last atomic.Pointer[Outcome]
}

type Option func(*Pipeline)

func WithHistory(h HistoryStore) Option { return func(p *Pipeline) { p.history = h } }

func WithNotifier(n notify.Notifier) Option { return func(p *Pipeline) { p.notifier = n } }

func WithChime(c Chime) Option { return func(p *Pipeline) { p.chime = c } }

func WithLogger(log *logger.Logger) Option {
	return func(p *Pipeline) {
		if log != nil {
			p.log = log
		}
	}
}

func NewPipeline(searcher Searcher, registry *stats.Registry, delays *trade.DelaySelector, opts ...Option) *Pipeline {
	p := &Pipeline{
		searcher: searcher,
		registry: registry,
		delays:   delays,
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Prepare prechecks and parses text, then previews how each combined stat
// will resolve.
func (p *Pipeline) Prepare(text string) (*Prepared, error) {
	if err := item.ValidateFormat(text).Err(); err != nil {
		return nil, err
	}
	parsed := item.Parse(text)
	if !parsed.Usable() {
		return nil, fmt.Errorf("%w: item class could not be read", item.ErrInvalidFormat)
	}

	lines := p.registry.Combine(parsed.ImplicitStats, parsed.ExplicitStats)
	return &Prepared{
		Item:    parsed,
		Preview: p.registry.Preview(lines, parsed.ItemClass),
	}, nil
}

// Validate checks the trade site without changing it.
func (p *Pipeline) Validate(ctx context.Context) trade.ValidationReport {
	return p.searcher.Validate(ctx)
}

// Search runs the whole pipeline. Only ErrBusy and input errors are returned
// as errors; automation failures are reported in the outcome.
func (p *Pipeline) Search(ctx context.Context, req SearchRequest) (*Outcome, error) {
	if !p.busy.CompareAndSwap(false, true) {
		p.log.Warn("Search rejected", "reason", "busy")
		return nil, ErrBusy
	}
	defer p.busy.Store(false)

	if req.Profile != "" {
		if err := p.delays.SetByName(req.Profile); err != nil {
			return nil, err
		}
	}

	prepared, err := p.Prepare(req.Text)
	if err != nil {
		p.announce(err.Error(), false)
		return nil, err
	}

	parsed := prepared.Item
	if req.Pick != nil {
		chosen, err := req.Pick(prepared)
		if err != nil {
			return nil, fmt.Errorf("stat selection failed: %w", err)
		}
		// combined lines are stable under a second Combine
		parsed = parsed.WithStats(nil, chosen)
	}

	p.log.Info("Starting search",
		"item", parsed.Name,
		"class", parsed.ItemClass,
		"scale", req.Scale,
		"profile", p.delays.Delays().Name)

	result := p.searcher.PerformSearch(ctx, parsed, req.Scale)

	out := &Outcome{
		ItemName:  displayName(parsed),
		ItemClass: parsed.ItemClass,
		Stats:     p.registry.Combine(parsed.ImplicitStats, parsed.ExplicitStats),
		Result:    result,
		Finished:  time.Now(),
	}
	p.last.Store(out)
	p.record(out, req.Scale)

	if result.Success {
		p.log.Info("Search completed", "item", out.ItemName)
		p.announce(fmt.Sprintf("Searching for %s", out.ItemName), true)
	} else {
		p.log.Error("Search failed", errors.New(result.Error), "item", out.ItemName)
		p.announce(result.Error, false)
	}
	return out, nil
}

// Status reports whether a search is running and how the last one ended.
func (p *Pipeline) Status() Status {
	return Status{
		Busy:         p.busy.Load(),
		DelayProfile: p.delays.Delays().Name,
		Last:         p.last.Load(),
	}
}

func (p *Pipeline) record(out *Outcome, scale int) {
	if p.history == nil {
		return
	}
	if _, err := p.history.AddSearch(storage.SearchRecord{
		ItemName:     out.ItemName,
		ItemClass:    out.ItemClass,
		ScalePercent: scale,
		DelayProfile: p.delays.Delays().Name,
		Success:      out.Result.Success,
		Error:        out.Result.Error,
		CreatedAt:    out.Finished,
	}); err != nil {
		p.log.Warn("Failed to record search", "error", err)
	}
}

func (p *Pipeline) announce(message string, ok bool) {
	if p.notifier != nil {
		kind := notify.Info
		if !ok {
			kind = notify.Error
		}
		if err := p.notifier.Show(message, kind); err != nil {
			p.log.Warn("Notification failed", "error", err)
		}
	}
	if p.chime != nil {
		play := p.chime.PlayFailure
		if ok {
			play = p.chime.PlaySuccess
		}
		if err := play(); err != nil {
			p.log.Debug("Sound cue failed", "error", err)
		}
	}
}

func displayName(p *item.ParsedItem) string {
	switch {
	case p.Name != "" && p.BaseType != "" && p.Name != p.BaseType:
		return p.Name + " " + p.BaseType
	case p.Name != "":
		return p.Name
	case p.BaseType != "":
		return p.BaseType
	}
	return p.ItemClass
}
