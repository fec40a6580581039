package trade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"exiled-search/internal/stats"
	"exiled-search/internal/surface"
)

// settle waits the delay picked from the profile active right now.
func (e *Engine) settle(ctx context.Context, pick func(DelayProfile) time.Duration) error {
	return e.surface.WaitSettled(ctx, pick(e.delays.Delays()))
}

func afterClick(p DelayProfile) time.Duration  { return p.AfterClick }
func afterType(p DelayProfile) time.Duration   { return p.AfterType }
func afterSelect(p DelayProfile) time.Duration { return p.AfterSelect }
func afterSearch(p DelayProfile) time.Duration { return p.AfterSearch }

func (e *Engine) poll(ctx context.Context, timeout func(DelayProfile) time.Duration, check func() (bool, error)) (bool, error) {
	d := e.delays.Delays()
	return surface.PollUntil(ctx, e.surface, timeout(d), d.PollInterval, check)
}

func optionTimeout(p DelayProfile) time.Duration  { return p.OptionTimeout }
func resultsTimeout(p DelayProfile) time.Duration { return p.ResultsTimeout }

func (e *Engine) clear(ctx context.Context) error {
	btn, err := e.surface.FindControl(ctx, e.sel.ClearButton)
	if errors.Is(err, surface.ErrNotFound) {
		e.log.Warn("Clear button not found, continuing with current form", "selector", e.sel.ClearButton)
		return nil
	}
	if err != nil {
		return err
	}
	e.log.Debug("Clearing search form")
	if err := e.surface.Click(ctx, btn); err != nil {
		return fmt.Errorf("click clear button: %w", err)
	}
	return e.settle(ctx, afterClick)
}

// waitOptions polls until the open option list has visible entries or the
// option timeout elapses. An empty list is not an error. Closed dropdowns
// keep their options in the page, hidden.
func (e *Engine) waitOptions(ctx context.Context) ([]surface.Control, error) {
	var opts []surface.Control
	_, err := e.poll(ctx, optionTimeout, func() (bool, error) {
		all, err := e.surface.FindControls(ctx, e.sel.Option)
		if err != nil {
			return false, err
		}
		opts = opts[:0]
		for _, o := range all {
			visible, err := o.Visible(ctx)
			if err != nil {
				return false, err
			}
			if visible {
				opts = append(opts, o)
			}
		}
		return len(opts) > 0, nil
	})
	return opts, err
}

func (e *Engine) optionLabel(ctx context.Context, opt surface.Control) (string, error) {
	label, err := childText(ctx, opt, e.sel.OptionLabel)
	if err != nil || label != "" {
		return label, err
	}
	return opt.Text(ctx)
}

func (e *Engine) setCategory(ctx context.Context, category Category) error {
	ctl, err := locateCategoryControl(ctx, e.surface, e.sel)
	if err != nil {
		return fmt.Errorf("category control not found: %w", err)
	}
	wrong, err := isSearchField(ctx, e.surface, e.sel, ctl)
	if err != nil {
		return err
	}
	if wrong {
		return fmt.Errorf("category control resolved to the item search field; refusing to type %q into it", category.Name)
	}

	for i, name := range category.Candidates() {
		e.log.Debug("Typing category", "category", name, "attempt", i+1)
		if err := e.surface.Type(ctx, ctl, name); err != nil {
			return fmt.Errorf("type category %q: %w", name, err)
		}
		if err := e.settle(ctx, afterType); err != nil {
			return err
		}

		opts, err := e.waitOptions(ctx)
		if err != nil {
			return err
		}
		for _, opt := range opts {
			label, err := e.optionLabel(ctx, opt)
			if err != nil {
				return err
			}
			if !sameText(label, name) {
				continue
			}
			if err := e.surface.SelectOption(ctx, opt); err != nil {
				return fmt.Errorf("select category %q: %w", name, err)
			}
			e.log.Debug("Category selected", "category", name)
			return e.settle(ctx, afterSelect)
		}
	}

	e.log.Warn("No exact category option, submitting typed text", "category", category.Name)
	if err := e.surface.Type(ctx, ctl, category.Name); err != nil {
		return fmt.Errorf("type category %q: %w", category.Name, err)
	}
	if err := e.settle(ctx, afterType); err != nil {
		return err
	}
	if err := e.surface.Press(ctx, ctl, surface.KeyEnter); err != nil {
		return fmt.Errorf("submit category %q: %w", category.Name, err)
	}
	return e.settle(ctx, afterSelect)
}

func (e *Engine) filtersVisible(ctx context.Context) (bool, error) {
	c, err := e.surface.FindControl(ctx, e.sel.FilterSection)
	if errors.Is(err, surface.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return c.Visible(ctx)
}

func (e *Engine) expandFilters(ctx context.Context) error {
	open, err := e.filtersVisible(ctx)
	if err != nil || open {
		return err
	}

	toggle, err := e.surface.FindControl(ctx, e.sel.ToggleFilters)
	if err != nil {
		return fmt.Errorf("filter toggle: %w", err)
	}
	e.log.Debug("Expanding filters")
	if err := e.surface.Click(ctx, toggle); err != nil {
		return fmt.Errorf("click filter toggle: %w", err)
	}
	if err := e.settle(ctx, afterClick); err != nil {
		return err
	}

	open, err = e.poll(ctx, optionTimeout, func() (bool, error) { return e.filtersVisible(ctx) })
	if err != nil {
		return err
	}
	if !open {
		return errors.New("filter section did not open")
	}
	return nil
}

// configureGroups opens the type and stat filter groups. A missing stat
// group is fatal because every filter goes there.
func (e *Engine) configureGroups(ctx context.Context) error {
	for _, title := range []string{e.sel.TypeFiltersTitle, e.sel.StatFiltersTitle} {
		g, err := findFilterGroup(ctx, e.surface, e.sel, title)
		if errors.Is(err, surface.ErrNotFound) && title != e.sel.StatFiltersTitle {
			e.log.Warn("Filter group not found", "group", title)
			continue
		}
		if err != nil {
			return err
		}

		open := false
		body, err := g.Find(ctx, e.sel.FilterGroupBody)
		switch {
		case err == nil:
			if open, err = body.Visible(ctx); err != nil {
				return err
			}
		case !errors.Is(err, surface.ErrNotFound):
			return err
		}
		if open {
			continue
		}

		header, err := g.Find(ctx, e.sel.FilterGroupHeader)
		if err != nil {
			return fmt.Errorf("header of filter group %q: %w", title, err)
		}
		e.log.Debug("Opening filter group", "group", title)
		if err := e.surface.Click(ctx, header); err != nil {
			return fmt.Errorf("open filter group %q: %w", title, err)
		}
		if err := e.settle(ctx, afterClick); err != nil {
			return err
		}
	}
	return nil
}

// addFilters creates one row per mapped stat and stops at the first failure.
func (e *Engine) addFilters(ctx context.Context, combined []string, itemClass string, scale int) error {
	added := 0
	for _, stat := range combined {
		res, ok := e.registry.Resolve(stat, itemClass)
		if !ok {
			e.log.Debug("No filter mapping, skipping stat", "stat", stat)
			continue
		}
		if res.Unsupported {
			e.log.Debug("Stat not searchable, skipping", "stat", stat, "key", res.Key)
			continue
		}

		value := res.ScaledValue(scale)
		e.log.Debug("Adding filter",
			"stat", stat,
			"filter", res.FilterText,
			"group", res.Group,
			"value", value)
		if err := e.addFilter(ctx, res, value); err != nil {
			return fmt.Errorf("filter for %q: %w", stat, err)
		}
		added++
	}
	e.log.Info("Filters added", "count", added, "stats", len(combined))
	return nil
}

func (e *Engine) pickStatOption(ctx context.Context, opts []surface.Control, group stats.Group, filterText string) (surface.Control, error) {
	var partial surface.Control
	for _, opt := range opts {
		tag, err := childText(ctx, opt, e.sel.OptionGroup)
		if err != nil {
			return nil, err
		}
		if !sameText(tag, string(group)) {
			continue
		}
		label, err := e.optionLabel(ctx, opt)
		if err != nil {
			return nil, err
		}
		if sameText(label, filterText) {
			return opt, nil
		}
		if partial == nil && containsFold(label, filterText) {
			partial = opt
		}
	}
	return partial, nil
}

func (e *Engine) addFilter(ctx context.Context, res *stats.Resolution, value float64) error {
	input, err := e.surface.FindControl(ctx, e.sel.StatInput)
	if err != nil {
		return fmt.Errorf("stat filter input: %w", err)
	}
	before, err := e.surface.FindControls(ctx, e.sel.StatRow)
	if err != nil {
		return err
	}

	if err := e.surface.Type(ctx, input, res.SearchKey); err != nil {
		return fmt.Errorf("type stat: %w", err)
	}
	if err := e.settle(ctx, afterType); err != nil {
		return err
	}

	opts, err := e.waitOptions(ctx)
	if err != nil {
		return err
	}
	choice, err := e.pickStatOption(ctx, opts, res.Group, res.FilterText)
	if err != nil {
		return err
	}
	if choice != nil {
		if err := e.surface.SelectOption(ctx, choice); err != nil {
			return fmt.Errorf("select stat option: %w", err)
		}
	} else {
		e.log.Debug("No matching stat option, submitting typed text", "query", res.SearchKey, "options", len(opts))
		if err := e.surface.Press(ctx, input, surface.KeyEnter); err != nil {
			return fmt.Errorf("submit stat: %w", err)
		}
	}
	if err := e.settle(ctx, afterSelect); err != nil {
		return err
	}

	row, err := e.findNewRow(ctx, len(before), res)
	if err != nil {
		return err
	}
	minField, err := row.Find(ctx, e.sel.StatMin)
	if err != nil {
		return fmt.Errorf("min field of %q: %w", res.FilterText, err)
	}
	if err := e.surface.Type(ctx, minField, stats.FormatValue(value)); err != nil {
		return fmt.Errorf("set min of %q: %w", res.FilterText, err)
	}
	return e.settle(ctx, afterType)
}

// findNewRow looks among the rows created since the stat was typed for one
// whose title contains the filter text or the typed query.
func (e *Engine) findNewRow(ctx context.Context, existing int, res *stats.Resolution) (surface.Control, error) {
	var found surface.Control
	ok, err := e.poll(ctx, optionTimeout, func() (bool, error) {
		rows, err := e.surface.FindControls(ctx, e.sel.StatRow)
		if err != nil {
			return false, err
		}
		for i := len(rows) - 1; i >= existing; i-- {
			title, err := childText(ctx, rows[i], e.sel.RowTitle)
			if err != nil {
				return false, err
			}
			if title == "" {
				if title, err = rows[i].Text(ctx); err != nil {
					return false, err
				}
			}
			if containsFold(title, res.FilterText) || containsFold(title, res.SearchKey) {
				found = rows[i]
				return true, nil
			}
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("filter row for %q not found after creation: %w", res.FilterText, surface.ErrNotFound)
	}
	return found, nil
}

func (e *Engine) execute(ctx context.Context) error {
	btn, err := e.surface.FindControl(ctx, e.sel.SearchButton)
	if err != nil {
		return fmt.Errorf("search button: %w", err)
	}
	e.log.Debug("Executing search")
	if err := e.surface.Click(ctx, btn); err != nil {
		return fmt.Errorf("click search button: %w", err)
	}
	if err := e.settle(ctx, afterSearch); err != nil {
		return err
	}

	shown, err := e.poll(ctx, resultsTimeout, func() (bool, error) {
		return surface.Exists(ctx, e.surface, e.sel.Results)
	})
	if err != nil {
		return err
	}
	if !shown {
		e.log.Warn("Results did not appear in time", "timeout", e.delays.Delays().ResultsTimeout)
	}
	return nil
}
