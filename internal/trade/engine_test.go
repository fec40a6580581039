package trade

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exiled-search/internal/item"
	"exiled-search/internal/stats"
)

const ringText = `Item Class: Rings
Rarity: Rare
Storm Loop
Sapphire Ring
--------
Item Level: 72
--------
+28% to Lightning Resistance (implicit)
--------
+36% to Lightning Resistance
+23 to Dexterity
+55 to maximum Life
12% increased Rarity of Items found`

func fastDelays() *DelaySelector {
	p, _ := Profile("fast")
	return NewDelaySelector(p)
}

func newTestEngine(f *fakeSite) *Engine {
	return NewEngine(f.page, stats.DefaultRegistry(), fastDelays(), WithSelectors(f.sel))
}

func TestPerformSearch_Ring(t *testing.T) {
	f := newFakeSite()
	e := newTestEngine(f)

	res := e.PerformSearch(context.Background(), item.Parse(ringText), 100)

	require.True(t, res.Success, res.Error)
	assert.Empty(t, res.Error)
	assert.Equal(t, "Ring", f.chosenCategory)
	assert.Equal(t, [][2]string{
		{"+# to maximum Life", "55"},
		{"#% increased Rarity of Items found", "12"},
		{"+#% total to Lightning Resistance", "64"},
		{"+# to Dexterity", "23"},
	}, f.mins())
	assert.True(t, f.page.Did("click", "toggle"))
	assert.True(t, f.page.Did("click", "stat-group-header"))
	assert.False(t, f.page.Did("click", "type-group-header"))
	assert.True(t, f.page.Did("click", "search-button"))
}

func TestPerformSearch_StepOrder(t *testing.T) {
	f := newFakeSite()
	e := newTestEngine(f)

	res := e.PerformSearch(context.Background(), item.Parse(ringText), 100)
	require.True(t, res.Success, res.Error)

	index := func(kind, target string) int {
		for i, a := range f.page.Actions {
			if a.Kind == kind && a.Target == target {
				return i
			}
		}
		t.Fatalf("no %s on %s", kind, target)
		return -1
	}
	clear := index("click", "clear-button")
	category := index("type", "category-input")
	expand := index("click", "toggle")
	groups := index("click", "stat-group-header")
	firstFilter := index("type", "stat-input")
	execute := index("click", "search-button")

	assert.Less(t, clear, category)
	assert.Less(t, category, expand)
	assert.Less(t, expand, groups)
	assert.Less(t, groups, firstFilter)
	assert.Less(t, firstFilter, execute)
	assert.Equal(t, len(f.page.Actions)-1, execute)
}

func TestPerformSearch_InvalidSiteMutatesNothing(t *testing.T) {
	f := newFakeSite()
	f.searchInput.Remove()
	e := newTestEngine(f)

	res := e.PerformSearch(context.Background(), item.Parse(ringText), 100)

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "search input")
	assert.Contains(t, res.Error, string(StepValidate))
	assert.Empty(t, f.page.Actions)
	assert.Empty(t, f.chosenCategory)
}

func TestPerformSearch_UnknownItemClass(t *testing.T) {
	f := newFakeSite()
	e := newTestEngine(f)
	parsed := item.Parse(ringText)
	parsed.ItemClass = "Fishing Rods"

	res := e.PerformSearch(context.Background(), parsed, 100)

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "unknown item class")
	assert.Empty(t, f.page.Actions)
}

func TestPerformSearch_MissingItemClass(t *testing.T) {
	f := newFakeSite()
	e := newTestEngine(f)

	res := e.PerformSearch(context.Background(), item.Parse("+10 to Strength"), 100)

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "unknown item class")
	assert.Empty(t, f.page.Actions)
}

func TestPerformSearch_AbortsOnFirstFailedFilter(t *testing.T) {
	f := newFakeSite()
	var kept []fakeOption
	for _, o := range f.statOptions {
		if o.label != "#% increased Rarity of Items found" {
			kept = append(kept, o)
		}
	}
	f.statOptions = kept
	e := newTestEngine(f)

	res := e.PerformSearch(context.Background(), item.Parse(ringText), 100)

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, string(StepAddFilters))
	assert.Contains(t, res.Error, "12% increased Rarity of Items found")
	assert.Contains(t, res.Error, "not found after creation")
	assert.Equal(t, []string{"+# to maximum Life", "#% increased Rarity of Items found"}, f.typed("stat-input"))
	assert.Equal(t, []string{"stat:#% increased Rarity of Items found"}, f.submitted)
	assert.False(t, f.page.Did("click", "search-button"))
	// Rows created before the failure stay.
	assert.Len(t, f.rows, 1)
}

func TestPerformSearch_EnterFallbackCreatesRow(t *testing.T) {
	f := newFakeSite()
	f.statOptions = nil
	f.enterCreatesRow = true
	e := newTestEngine(f)

	parsed := item.Parse(ringText).WithStats(nil, []string{"+55 to maximum Life"})
	res := e.PerformSearch(context.Background(), parsed, 100)

	require.True(t, res.Success, res.Error)
	assert.Equal(t, [][2]string{{"+# to maximum Life", "55"}}, f.mins())
	assert.Equal(t, []string{"stat:+# to maximum Life"}, f.submitted)
}

func TestPerformSearch_PrefersExactOptionInGroup(t *testing.T) {
	f := newFakeSite()
	f.statOptions = []fakeOption{
		{"implicit", "+# to maximum Life"},
		{"explicit", "+# to maximum Life and Mana"},
		{"explicit", "+# to maximum Life"},
	}
	e := newTestEngine(f)

	parsed := item.Parse(ringText).WithStats(nil, []string{"+55 to maximum Life"})
	res := e.PerformSearch(context.Background(), parsed, 100)

	require.True(t, res.Success, res.Error)
	assert.True(t, f.page.Did("select", "option:explicit:+# to maximum Life"))
	assert.False(t, f.page.Did("select", "option:implicit:+# to maximum Life"))
	assert.False(t, f.page.Did("select", "option:explicit:+# to maximum Life and Mana"))
}

func TestPerformSearch_PartialOptionWhenNoExact(t *testing.T) {
	f := newFakeSite()
	f.statOptions = []fakeOption{{"explicit", "+# to maximum Life (Local)"}}
	e := newTestEngine(f)

	parsed := item.Parse(ringText).WithStats(nil, []string{"+55 to maximum Life"})
	res := e.PerformSearch(context.Background(), parsed, 100)

	require.True(t, res.Success, res.Error)
	assert.True(t, f.page.Did("select", "option:explicit:+# to maximum Life (Local)"))
}

func TestPerformSearch_ScalesValues(t *testing.T) {
	f := newFakeSite()
	e := newTestEngine(f)

	res := e.PerformSearch(context.Background(), item.Parse(ringText), 90)

	require.True(t, res.Success, res.Error)
	assert.Equal(t, [][2]string{
		{"+# to maximum Life", "49"},
		{"#% increased Rarity of Items found", "10"},
		{"+#% total to Lightning Resistance", "57"},
		{"+# to Dexterity", "20"},
	}, f.mins())
}

func TestPerformSearch_SkipsUnmappedAndUnsupported(t *testing.T) {
	f := newFakeSite()
	e := newTestEngine(f)

	parsed := item.Parse(ringText).WithStats(nil, []string{
		"Gain 3 Wonders per second",
		"Allocates Deadly Force",
		"+55 to maximum Life",
	})
	res := e.PerformSearch(context.Background(), parsed, 100)

	require.True(t, res.Success, res.Error)
	assert.Equal(t, []string{"+# to maximum Life"}, f.typed("stat-input"))
}

func TestPerformSearch_NoStatsSkipsFilters(t *testing.T) {
	f := newFakeSite()
	e := newTestEngine(f)

	parsed := item.Parse(ringText).WithStats(nil, nil)
	res := e.PerformSearch(context.Background(), parsed, 100)

	require.True(t, res.Success, res.Error)
	assert.False(t, f.page.Did("click", "toggle"))
	assert.Empty(t, f.typed("stat-input"))
	assert.True(t, f.page.Did("click", "search-button"))
}

func TestPerformSearch_CategoryFallbacks(t *testing.T) {
	f := newFakeSite()
	f.categories = []string{"Armour"}
	e := newTestEngine(f)

	parsed := item.Parse("Item Class: Body Armours\nRarity: Rare\nDusk Shell\nExpert Sleek Jacket\n--------\n+55 to maximum Life")
	res := e.PerformSearch(context.Background(), parsed, 100)

	require.True(t, res.Success, res.Error)
	assert.Equal(t, "Armour", f.chosenCategory)
	assert.Equal(t, []string{"Body Armour", "Armour"}, f.typed("category-input"))
}

func TestPerformSearch_CategorySubmitsTypedText(t *testing.T) {
	f := newFakeSite()
	f.categories = nil
	e := newTestEngine(f)

	res := e.PerformSearch(context.Background(), item.Parse(ringText), 100)

	require.True(t, res.Success, res.Error)
	assert.Equal(t, []string{"Ring", "Ring"}, f.typed("category-input"))
	assert.Contains(t, f.submitted, "category:Ring")
}

func TestPerformSearch_CategoryIndirectLookup(t *testing.T) {
	f := newFakeSite()
	f.sel.CategoryInput = ".not-on-this-page"
	e := newTestEngine(f)

	res := e.PerformSearch(context.Background(), item.Parse(ringText), 100)

	require.True(t, res.Success, res.Error)
	assert.Equal(t, "Ring", f.chosenCategory)
}

func TestPerformSearch_CategoryInSearchFieldIsFatal(t *testing.T) {
	f := newFakeSite()
	f.categoryInput.WithAttr("placeholder", f.sel.SearchPlaceholder)
	e := newTestEngine(f)

	res := e.PerformSearch(context.Background(), item.Parse(ringText), 100)

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "item search field")
	assert.Contains(t, res.Error, string(StepSetCategory))
	assert.Empty(t, f.typed("category-input"))
	assert.Empty(t, f.typed("stat-input"))
}

func TestPerformSearch_MissingResultsIsNotFatal(t *testing.T) {
	f := newFakeSite()
	f.showResults = false
	e := newTestEngine(f)

	res := e.PerformSearch(context.Background(), item.Parse(ringText), 100)

	assert.True(t, res.Success, res.Error)
}

func TestPerformSearch_RecoversPanics(t *testing.T) {
	f := newFakeSite()
	f.page.Panic = "boom"
	e := newTestEngine(f)

	res := e.PerformSearch(context.Background(), item.Parse(ringText), 100)

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "boom")
}

func TestPerformSearch_CancelledContext(t *testing.T) {
	f := newFakeSite()
	e := newTestEngine(f)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := e.PerformSearch(ctx, item.Parse(ringText), 100)

	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Error)
	assert.Empty(t, f.page.Actions)
}

func TestPerformSearch_DelayProfileSwapAppliesToNextStep(t *testing.T) {
	run := func(profile string, swapTo string) time.Duration {
		f := newFakeSite()
		p, ok := Profile(profile)
		require.True(t, ok)
		delays := NewDelaySelector(p)
		if swapTo != "" {
			f.page.OnWait = func(time.Duration) { require.NoError(t, delays.SetByName(swapTo)) }
		}
		e := NewEngine(f.page, stats.DefaultRegistry(), delays, WithSelectors(f.sel))
		res := e.PerformSearch(context.Background(), item.Parse(ringText), 100)
		require.True(t, res.Success, res.Error)
		return f.page.Waited
	}

	fast := run("fast", "")
	slow := run("slow", "")
	swapped := run("fast", "slow")

	assert.Less(t, fast, slow)
	assert.Greater(t, swapped, fast)
	assert.Less(t, swapped, slow)
}

func TestStepError(t *testing.T) {
	err := &StepError{Step: StepSetCategory, Err: ErrUnknownItemClass}
	assert.ErrorIs(t, err, ErrUnknownItemClass)
	assert.Equal(t, "set-category: unknown item class", err.Error())
}
