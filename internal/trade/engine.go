package trade

import (
	"context"
	"errors"
	"fmt"

	"exiled-search/internal/item"
	"exiled-search/internal/stats"
	"exiled-search/internal/surface"
	"exiled-search/pkg/logger"
)

// Step names one state of a search run. States run strictly in the order
// declared here.
type Step string

const (
	StepValidate        Step = "validate"
	StepClear           Step = "clear"
	StepSetCategory     Step = "set-category"
	StepExpandFilters   Step = "expand-filters"
	StepConfigureGroups Step = "configure-filter-groups"
	StepAddFilters      Step = "add-filters"
	StepExecute         Step = "execute"
)

// StepError is the failure of one step. Its message is shown to the user.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

func stepErr(step Step, format string, args ...any) error {
	return &StepError{Step: step, Err: fmt.Errorf(format, args...)}
}

// Result is the terminal status of PerformSearch.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Engine fills the trade search form for a parsed item.
type Engine struct {
	surface    surface.Surface
	registry   *stats.Registry
	categories CategoryTable
	sel        Selectors
	delays     DelaySource
	log        *logger.Logger
	validator  *Validator
}

type EngineOption func(*Engine)

func WithSelectors(sel Selectors) EngineOption {
	return func(e *Engine) {
		e.sel = sel
	}
}

func WithCategories(t CategoryTable) EngineOption {
	return func(e *Engine) {
		e.categories = t
	}
}

func WithLogger(log *logger.Logger) EngineOption {
	return func(e *Engine) {
		if log != nil {
			e.log = log.With("component", "trade")
		}
	}
}

func NewEngine(s surface.Surface, registry *stats.Registry, delays DelaySource, opts ...EngineOption) *Engine {
	e := &Engine{
		surface:    s,
		registry:   registry,
		categories: DefaultCategories(),
		sel:        DefaultSelectors(),
		delays:     delays,
		log:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.delays == nil {
		e.delays = NewDelaySelector(profiles[DefaultProfile])
	}
	e.validator = NewValidator(s, e.sel, e.log)
	return e
}

// Validate inspects the page without changing it.
func (e *Engine) Validate(ctx context.Context) ValidationReport {
	return e.validator.Validate(ctx)
}

// PerformSearch runs every step for parsed and reports the outcome. It
// never panics; whatever the steps already changed on the page stays.
func (e *Engine) PerformSearch(ctx context.Context, parsed *item.ParsedItem, scalePercent int) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("Search automation panicked", fmt.Errorf("%v", r))
			res = Result{Error: fmt.Sprintf("search automation failed unexpectedly: %v", r)}
		}
	}()

	if scalePercent <= 0 {
		scalePercent = 100
	}
	if err := e.run(ctx, parsed, scalePercent); err != nil {
		var se *StepError
		if errors.As(err, &se) {
			e.log.Error("Search step failed", se.Err, "step", se.Step)
		} else {
			e.log.Error("Search failed", err)
		}
		return Result{Error: err.Error()}
	}
	return Result{Success: true}
}

func (e *Engine) run(ctx context.Context, parsed *item.ParsedItem, scale int) error {
	e.log.Debug("Validating trade page")
	if err := e.Validate(ctx).Err(); err != nil {
		return &StepError{Step: StepValidate, Err: err}
	}

	if !parsed.Usable() {
		return &StepError{Step: StepSetCategory, Err: fmt.Errorf("%w: item has no item class", ErrUnknownItemClass)}
	}
	category, err := e.categories.Lookup(parsed.ItemClass)
	if err != nil {
		return &StepError{Step: StepSetCategory, Err: err}
	}

	if err := e.clear(ctx); err != nil {
		return &StepError{Step: StepClear, Err: err}
	}
	if err := e.setCategory(ctx, category); err != nil {
		return &StepError{Step: StepSetCategory, Err: err}
	}

	combined := e.registry.Combine(parsed.ImplicitStats, parsed.ExplicitStats)
	if len(combined) > 0 {
		if err := e.expandFilters(ctx); err != nil {
			return &StepError{Step: StepExpandFilters, Err: err}
		}
		if err := e.configureGroups(ctx); err != nil {
			return &StepError{Step: StepConfigureGroups, Err: err}
		}
		if err := e.addFilters(ctx, combined, parsed.ItemClass, scale); err != nil {
			return &StepError{Step: StepAddFilters, Err: err}
		}
	}

	if err := e.execute(ctx); err != nil {
		return &StepError{Step: StepExecute, Err: err}
	}
	return nil
}
