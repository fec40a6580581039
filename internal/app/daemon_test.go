package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exiled-search/internal/ipc"
	"exiled-search/internal/trade"
)

type staticSource struct {
	text string
	err  error
}

func (s staticSource) CaptureItem(context.Context) (string, error) { return s.text, s.err }

func TestDaemonSearchCapturesWhenTextMissing(t *testing.T) {
	f := newFixture(trade.Result{Success: true})
	d := NewDaemon(f.pipeline, staticSource{text: ringText}, 85, nil)

	msg, data, err := d.Search(context.Background(), ipc.Request{Command: ipc.CommandSearch})
	require.NoError(t, err)
	assert.Equal(t, "Searching for Storm Loop Sapphire Ring", msg)
	assert.IsType(t, &Outcome{}, data)
	assert.Equal(t, 85, f.searcher.scale)
}

func TestDaemonSearchErrors(t *testing.T) {
	f := newFixture(trade.Result{Error: "validate: trade site is not usable"})
	d := NewDaemon(f.pipeline, staticSource{err: errors.New("Path of Exile 2 needs to be running")}, 100, nil)

	_, _, err := d.Search(context.Background(), ipc.Request{})
	assert.ErrorContains(t, err, "needs to be running")

	_, data, err := d.Search(context.Background(), ipc.Request{Text: ringText, Scale: 70})
	assert.EqualError(t, err, "validate: trade site is not usable")
	assert.NotNil(t, data)
	assert.Equal(t, 70, f.searcher.scale)

	_, _, err = NewDaemon(f.pipeline, nil, 100, nil).Search(context.Background(), ipc.Request{})
	assert.ErrorContains(t, err, "capture is unavailable")
}

func TestDaemonValidateAndStatus(t *testing.T) {
	f := newFixture(trade.Result{Success: true})
	d := NewDaemon(f.pipeline, nil, 100, nil)

	msg, _, err := d.Validate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Trade site looks usable", msg)

	st, ok := d.Status().(Status)
	require.True(t, ok)
	assert.Equal(t, "fast", st.DelayProfile)
}

func TestLazySearcherRetriesOpen(t *testing.T) {
	attempts := 0
	inner := &fakeSearcher{result: trade.Result{Success: true}}
	lazy := NewLazySearcher(func() (Searcher, error) {
		attempts++
		if attempts == 1 {
			return nil, errors.New("connection refused")
		}
		return inner, nil
	})

	res := lazy.PerformSearch(context.Background(), nil, 100)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "connection refused")

	report := lazy.Validate(context.Background())
	assert.True(t, report.OverallValid)

	res = lazy.PerformSearch(context.Background(), nil, 100)
	assert.True(t, res.Success)
	assert.Equal(t, 2, attempts)
}
