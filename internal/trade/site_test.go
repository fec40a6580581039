package trade

import (
	"strings"

	"exiled-search/internal/surface"
	"exiled-search/internal/surface/surfacetest"
)

type fakeOption struct {
	group string
	label string
}

// fakeSite is a scripted trade page built from DefaultSelectors. Typing into
// the category or stat input opens a dropdown of matching options; picking
// a stat option (or pressing Enter when enterCreatesRow is set) appends a
// stat row.
type fakeSite struct {
	page *surfacetest.Page
	sel  Selectors

	searchInput   *surfacetest.Node
	section       *surfacetest.Node
	statBody      *surfacetest.Node
	categoryInput *surfacetest.Node
	statInput     *surfacetest.Node
	dropdown      *surfacetest.Node

	categories      []string
	statOptions     []fakeOption
	enterCreatesRow bool
	showResults     bool

	chosenCategory string
	submitted      []string
	rows           []*surfacetest.Node
}

func newFakeSite() *fakeSite {
	sel := DefaultSelectors()
	f := &fakeSite{
		page:        surfacetest.NewPage(),
		sel:         sel,
		categories:  []string{"Ring", "Amulet", "Body Armour", "Armour", "Shield"},
		showResults: true,
		statOptions: []fakeOption{
			{"pseudo", "+#% total to Lightning Resistance"},
			{"explicit", "+#% to Lightning Resistance"},
			{"explicit", "+# to Dexterity"},
			{"explicit", "+# to maximum Life"},
			{"implicit", "+# to maximum Life"},
			{"explicit", "#% increased Rarity of Items found"},
		},
	}

	f.searchInput = surfacetest.El("search-input", sel.SearchInput).WithAttr("placeholder", sel.SearchPlaceholder)
	searchBtn := surfacetest.El("search-button", sel.SearchButton)
	searchBtn.OnClick = func(*surfacetest.Node) {
		if f.showResults {
			f.page.Root.Append(surfacetest.El("results", sel.Results))
		}
	}
	clearBtn := surfacetest.El("clear-button", sel.ClearButton)
	clearBtn.OnClick = func(*surfacetest.Node) {
		f.chosenCategory = ""
		for _, r := range f.rows {
			r.Remove()
		}
		f.rows = nil
	}

	f.section = surfacetest.El("filters", sel.FilterSection).Hidden()
	toggle := surfacetest.El("toggle", sel.ToggleFilters)
	toggle.OnClick = func(*surfacetest.Node) { f.section.SetHidden(false) }

	f.categoryInput = surfacetest.El("category-input", sel.CategoryInput, sel.RowInput)
	f.categoryInput.OnType = func(_ *surfacetest.Node, text string) { f.openCategories(text) }
	f.categoryInput.OnPress = func(_ *surfacetest.Node, key surface.Key) {
		if key == surface.KeyEnter {
			f.submitted = append(f.submitted, "category:"+f.categoryInput.Value)
		}
	}
	categoryRow := surfacetest.El("category-row", sel.FilterRow).Append(
		surfacetest.El("category-title", sel.RowTitle).WithText(sel.CategoryTitle),
		f.categoryInput,
	)
	typeGroup := group(sel, "type-group", sel.TypeFiltersTitle, false, categoryRow)

	f.statInput = surfacetest.El("stat-input", sel.StatInput)
	f.statInput.OnType = func(_ *surfacetest.Node, text string) { f.openStats(text) }
	f.statInput.OnPress = func(_ *surfacetest.Node, key surface.Key) {
		if key != surface.KeyEnter {
			return
		}
		f.submitted = append(f.submitted, "stat:"+f.statInput.Value)
		f.dropdown.Clear()
		if f.enterCreatesRow {
			f.addRow(f.statInput.Value)
		}
	}
	statGroup := group(sel, "stat-group", sel.StatFiltersTitle, true, f.statInput)
	f.statBody = statGroup.Children()[1]

	f.section.Append(typeGroup, statGroup)
	f.dropdown = surfacetest.El("dropdown")

	f.page.Root.Append(
		surfacetest.El("search-bar").Append(f.searchInput, searchBtn, clearBtn, toggle),
		f.section,
		f.dropdown,
	)
	return f
}

func group(sel Selectors, name, title string, collapsed bool, children ...*surfacetest.Node) *surfacetest.Node {
	body := surfacetest.El(name+"-body", sel.FilterGroupBody).Append(children...)
	if collapsed {
		body.Hidden()
	}
	header := surfacetest.El(name+"-header", sel.FilterGroupHeader).Append(
		surfacetest.El(name+"-title", sel.FilterGroupTitle).WithText(title),
	)
	header.OnClick = func(*surfacetest.Node) { body.SetHidden(false) }
	return surfacetest.El(name, sel.FilterGroup).Append(header, body)
}

func (f *fakeSite) openCategories(text string) {
	f.dropdown.Clear()
	for _, c := range f.categories {
		if !strings.Contains(strings.ToLower(c), strings.ToLower(text)) {
			continue
		}
		name := c
		opt := surfacetest.El("category:"+name, f.sel.Option).WithText(name)
		opt.OnClick = func(*surfacetest.Node) {
			f.chosenCategory = name
			f.dropdown.Clear()
		}
		f.dropdown.Append(opt)
	}
}

func (f *fakeSite) openStats(text string) {
	f.dropdown.Clear()
	for _, o := range f.statOptions {
		if !strings.Contains(strings.ToLower(o.label), strings.ToLower(text)) {
			continue
		}
		label := o.label
		opt := surfacetest.El("option:"+o.group+":"+o.label, f.sel.Option).Append(
			surfacetest.El("", f.sel.OptionGroup).WithText(o.group),
			surfacetest.El("", f.sel.OptionLabel).WithText(o.label),
		)
		opt.OnClick = func(*surfacetest.Node) {
			f.dropdown.Clear()
			f.addRow(label)
		}
		f.dropdown.Append(opt)
	}
}

func (f *fakeSite) addRow(title string) {
	row := surfacetest.El("row:"+title, f.sel.StatRow).Append(
		surfacetest.El("row-title:"+title, f.sel.RowTitle).WithText(title),
		surfacetest.El("min:"+title, f.sel.StatMin),
	)
	f.rows = append(f.rows, row)
	f.statBody.Append(row)
}

// mins returns row title -> typed minimum, in row order.
func (f *fakeSite) mins() [][2]string {
	var out [][2]string
	for _, r := range f.rows {
		minField := r.Children()[1]
		out = append(out, [2]string{strings.TrimPrefix(r.Name, "row:"), minField.Value})
	}
	return out
}

func (f *fakeSite) typed(target string) []string {
	var out []string
	for _, a := range f.page.Actions {
		if a.Kind == "type" && a.Target == target {
			out = append(out, a.Text)
		}
	}
	return out
}
