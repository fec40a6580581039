package trade

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Selectors names every landmark of the trade page the validator and the
// engine touch. The site's markup changes between leagues, so every field
// can be overridden from config.
type Selectors struct {
	SearchInput   string `json:"search_input" yaml:"search_input"`
	SearchButton  string `json:"search_button" yaml:"search_button"`
	ClearButton   string `json:"clear_button" yaml:"clear_button"`
	ToggleFilters string `json:"toggle_filters" yaml:"toggle_filters"`
	FilterSection string `json:"filter_section" yaml:"filter_section"`

	FilterGroup       string `json:"filter_group" yaml:"filter_group"`
	FilterGroupHeader string `json:"filter_group_header" yaml:"filter_group_header"`
	FilterGroupTitle  string `json:"filter_group_title" yaml:"filter_group_title"`
	FilterGroupBody   string `json:"filter_group_body" yaml:"filter_group_body"`

	CategoryInput string `json:"category_input" yaml:"category_input"`
	FilterRow     string `json:"filter_row" yaml:"filter_row"`
	RowTitle      string `json:"row_title" yaml:"row_title"`
	RowInput      string `json:"row_input" yaml:"row_input"`

	StatInput   string `json:"stat_input" yaml:"stat_input"`
	Option      string `json:"option" yaml:"option"`
	OptionLabel string `json:"option_label" yaml:"option_label"`
	OptionGroup string `json:"option_group" yaml:"option_group"`
	StatRow     string `json:"stat_row" yaml:"stat_row"`
	StatMin     string `json:"stat_min" yaml:"stat_min"`

	Results string `json:"results" yaml:"results"`

	// Visible texts, matched case-insensitively.
	TypeFiltersTitle  string `json:"type_filters_title" yaml:"type_filters_title"`
	StatFiltersTitle  string `json:"stat_filters_title" yaml:"stat_filters_title"`
	CategoryTitle     string `json:"category_title" yaml:"category_title"`
	SearchPlaceholder string `json:"search_placeholder" yaml:"search_placeholder"`
}

// DefaultSelectors matches the PoE2 trade site.
func DefaultSelectors() Selectors {
	return Selectors{
		SearchInput:   ".search-bar .search-left input.multiselect__input",
		SearchButton:  ".search-bar .search-btn",
		ClearButton:   ".search-bar .clear-btn",
		ToggleFilters: ".search-bar .toggle-search-btn",
		FilterSection: ".search-advanced-pane",

		FilterGroup:       ".search-advanced-pane .filter-group",
		FilterGroupHeader: ".filter-group-header",
		FilterGroupTitle:  ".filter-group-header .filter-title",
		FilterGroupBody:   ".filter-group-body",

		CategoryInput: ".filter-property.item-category input.multiselect__input",
		FilterRow:     ".filter-group-body .filter-property",
		RowTitle:      ".filter-title",
		RowInput:      "input.multiselect__input",

		StatInput:   ".filter-select-mutate input.multiselect__input",
		Option:      ".multiselect__content-wrapper .multiselect__option",
		OptionLabel: ".option-label",
		OptionGroup: ".option-type",
		StatRow:     ".filter-group-body .filter.filter-stat",
		StatMin:     "input.minmax[placeholder='min']",

		Results: ".results .resultset",

		TypeFiltersTitle:  "Type Filters",
		StatFiltersTitle:  "Stat Filters",
		CategoryTitle:     "Item Category",
		SearchPlaceholder: "Search Items...",
	}
}

// Merge returns s with every non-empty field of override applied.
func (s Selectors) Merge(override Selectors) Selectors {
	pick := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	pick(&s.SearchInput, override.SearchInput)
	pick(&s.SearchButton, override.SearchButton)
	pick(&s.ClearButton, override.ClearButton)
	pick(&s.ToggleFilters, override.ToggleFilters)
	pick(&s.FilterSection, override.FilterSection)
	pick(&s.FilterGroup, override.FilterGroup)
	pick(&s.FilterGroupHeader, override.FilterGroupHeader)
	pick(&s.FilterGroupTitle, override.FilterGroupTitle)
	pick(&s.FilterGroupBody, override.FilterGroupBody)
	pick(&s.CategoryInput, override.CategoryInput)
	pick(&s.FilterRow, override.FilterRow)
	pick(&s.RowTitle, override.RowTitle)
	pick(&s.RowInput, override.RowInput)
	pick(&s.StatInput, override.StatInput)
	pick(&s.Option, override.Option)
	pick(&s.OptionLabel, override.OptionLabel)
	pick(&s.OptionGroup, override.OptionGroup)
	pick(&s.StatRow, override.StatRow)
	pick(&s.StatMin, override.StatMin)
	pick(&s.Results, override.Results)
	pick(&s.TypeFiltersTitle, override.TypeFiltersTitle)
	pick(&s.StatFiltersTitle, override.StatFiltersTitle)
	pick(&s.CategoryTitle, override.CategoryTitle)
	pick(&s.SearchPlaceholder, override.SearchPlaceholder)
	return s
}

// SelectorsFromMap overlays config overrides, keyed by the json field names,
// onto the defaults. Unknown keys are rejected so typos surface early.
func SelectorsFromMap(overrides map[string]string) (Selectors, error) {
	if len(overrides) == 0 {
		return DefaultSelectors(), nil
	}
	raw, err := json.Marshal(overrides)
	if err != nil {
		return Selectors{}, fmt.Errorf("failed to encode selector overrides: %w", err)
	}

	var override Selectors
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&override); err != nil {
		return Selectors{}, fmt.Errorf("invalid selector override: %w", err)
	}
	return DefaultSelectors().Merge(override), nil
}
