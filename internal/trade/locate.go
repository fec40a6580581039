package trade

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"exiled-search/internal/surface"
)

func sameText(a, b string) bool {
	return strings.EqualFold(normalizeText(a), normalizeText(b))
}

func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(normalizeText(haystack)), strings.ToLower(normalizeText(needle)))
}

// childText returns the text of the first descendant of c matching selector,
// or "" when there is none.
func childText(ctx context.Context, c surface.Control, selector string) (string, error) {
	child, err := c.Find(ctx, selector)
	if errors.Is(err, surface.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return child.Text(ctx)
}

// findFilterGroup returns the filter group whose header reads title.
func findFilterGroup(ctx context.Context, s surface.Surface, sel Selectors, title string) (surface.Control, error) {
	groups, err := s.FindControls(ctx, sel.FilterGroup)
	if err != nil {
		return nil, err
	}
	for _, g := range groups {
		t, err := childText(ctx, g, sel.FilterGroupTitle)
		if err != nil {
			return nil, err
		}
		if sameText(t, title) {
			return g, nil
		}
	}
	return nil, fmt.Errorf("%w: filter group %q", surface.ErrNotFound, title)
}

// locateCategoryControl tries the direct selector first, then the input of
// the filter row titled with the category label.
func locateCategoryControl(ctx context.Context, s surface.Surface, sel Selectors) (surface.Control, error) {
	c, err := s.FindControl(ctx, sel.CategoryInput)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, surface.ErrNotFound) {
		return nil, err
	}

	rows, err := s.FindControls(ctx, sel.FilterRow)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		t, err := childText(ctx, row, sel.RowTitle)
		if err != nil {
			return nil, err
		}
		if !sameText(t, sel.CategoryTitle) {
			continue
		}
		return row.Find(ctx, sel.RowInput)
	}
	return nil, fmt.Errorf("%w: category control", surface.ErrNotFound)
}

// isSearchField reports whether c is the free-text item search box.
func isSearchField(ctx context.Context, s surface.Surface, sel Selectors, c surface.Control) (bool, error) {
	search, err := s.FindControl(ctx, sel.SearchInput)
	switch {
	case err == nil:
		if search.ID() == c.ID() {
			return true, nil
		}
	case !errors.Is(err, surface.ErrNotFound):
		return false, err
	}

	placeholder, ok, err := c.Attr(ctx, "placeholder")
	if err != nil {
		return false, err
	}
	return ok && sel.SearchPlaceholder != "" && sameText(placeholder, sel.SearchPlaceholder), nil
}
