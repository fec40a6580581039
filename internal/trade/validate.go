package trade

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"exiled-search/internal/surface"
	"exiled-search/pkg/logger"
)

// ErrInvalidSite means the trade page no longer has the structure the
// engine expects.
var ErrInvalidSite = errors.New("trade site structure check failed")

// Probed regions of the page.
const (
	SectionSearchEntry    = "search-entry"
	SectionCategoryFilter = "category-filter"
	SectionModifierFilter = "modifier-filter"
	SectionToggles        = "toggles"
	SectionResults        = "results"
)

type SectionReport struct {
	Name     string   `json:"name"`
	Critical bool     `json:"critical"`
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
}

// ValidationReport is rebuilt on every call; the page can change between
// searches.
type ValidationReport struct {
	Sections       []SectionReport `json:"sections"`
	OverallValid   bool            `json:"overall_valid"`
	CriticalErrors []string        `json:"critical_errors,omitempty"`
}

func (r ValidationReport) Section(name string) (SectionReport, bool) {
	for _, s := range r.Sections {
		if s.Name == name {
			return s, true
		}
	}
	return SectionReport{}, false
}

// Err is nil for a valid report and an ErrInvalidSite wrap naming the
// critical errors otherwise.
func (r ValidationReport) Err() error {
	if r.OverallValid {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidSite, strings.Join(r.CriticalErrors, "; "))
}

type probe struct {
	name     string
	critical bool
	run      func(ctx context.Context) []string
}

// Validator checks the page landmarks without mutating anything.
type Validator struct {
	surface surface.Surface
	sel     Selectors
	log     *logger.Logger
}

func NewValidator(s surface.Surface, sel Selectors, log *logger.Logger) *Validator {
	if log == nil {
		log = logger.Nop()
	}
	return &Validator{surface: s, sel: sel, log: log}
}

func (v *Validator) probes() []probe {
	return []probe{
		{SectionSearchEntry, true, v.probeSearchEntry},
		{SectionCategoryFilter, true, v.probeCategoryFilter},
		{SectionModifierFilter, false, v.probeModifierFilter},
		{SectionToggles, false, v.probeToggles},
		{SectionResults, false, v.probeResults},
	}
}

// Validate runs every probe. Errors from critical sections make the report
// invalid; the rest are informational.
func (v *Validator) Validate(ctx context.Context) ValidationReport {
	report := ValidationReport{OverallValid: true}
	for _, p := range v.probes() {
		errs := v.run(ctx, p)
		section := SectionReport{Name: p.name, Critical: p.critical, Valid: len(errs) == 0, Errors: errs}
		report.Sections = append(report.Sections, section)

		if section.Valid {
			continue
		}
		if p.critical {
			report.OverallValid = false
			report.CriticalErrors = append(report.CriticalErrors, errs...)
			v.log.Warn("Critical trade page section invalid", "section", p.name, "errors", errs)
		} else {
			v.log.Debug("Trade page section incomplete", "section", p.name, "errors", errs)
		}
	}
	return report
}

func (v *Validator) run(ctx context.Context, p probe) (errs []string) {
	defer func() {
		if r := recover(); r != nil {
			errs = append(errs, fmt.Sprintf("%s probe panicked: %v", p.name, r))
		}
	}()
	return p.run(ctx)
}

func (v *Validator) require(ctx context.Context, what, selector string) []string {
	ok, err := surface.Exists(ctx, v.surface, selector)
	switch {
	case err != nil:
		return []string{fmt.Sprintf("%s: %v", what, err)}
	case !ok:
		return []string{fmt.Sprintf("%s not found (%s)", what, selector)}
	}
	return nil
}

func (v *Validator) probeSearchEntry(ctx context.Context) []string {
	errs := v.require(ctx, "search input", v.sel.SearchInput)
	return append(errs, v.require(ctx, "search button", v.sel.SearchButton)...)
}

func (v *Validator) probeCategoryFilter(ctx context.Context) []string {
	var errs []string
	if _, err := findFilterGroup(ctx, v.surface, v.sel, v.sel.TypeFiltersTitle); err != nil {
		errs = append(errs, fmt.Sprintf("type filter group: %v", err))
	}
	if _, err := locateCategoryControl(ctx, v.surface, v.sel); err != nil {
		errs = append(errs, fmt.Sprintf("item category control: %v", err))
	}
	return errs
}

func (v *Validator) probeModifierFilter(ctx context.Context) []string {
	var errs []string
	if _, err := findFilterGroup(ctx, v.surface, v.sel, v.sel.StatFiltersTitle); err != nil {
		errs = append(errs, fmt.Sprintf("stat filter group: %v", err))
	}
	return append(errs, v.require(ctx, "stat filter input", v.sel.StatInput)...)
}

func (v *Validator) probeToggles(ctx context.Context) []string {
	errs := v.require(ctx, "filter toggle", v.sel.ToggleFilters)
	return append(errs, v.require(ctx, "clear button", v.sel.ClearButton)...)
}

func (v *Validator) probeResults(ctx context.Context) []string {
	return v.require(ctx, "results area", v.sel.Results)
}
