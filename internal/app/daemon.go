package app

import (
	"context"
	"errors"
	"fmt"

	"exiled-search/internal/ipc"
)

// ItemSource yields item text when a request carries none.
type ItemSource interface {
	CaptureItem(ctx context.Context) (string, error)
}

// Daemon serves ipc commands from a pipeline.
type Daemon struct {
	pipeline *Pipeline
	source   ItemSource
	scale    int
	pick     StatPicker
}

func NewDaemon(pipeline *Pipeline, source ItemSource, defaultScale int, pick StatPicker) *Daemon {
	return &Daemon{pipeline: pipeline, source: source, scale: defaultScale, pick: pick}
}

func (d *Daemon) Search(ctx context.Context, req ipc.Request) (string, interface{}, error) {
	text := req.Text
	if text == "" {
		if d.source == nil {
			return "", nil, errors.New("no item text given and capture is unavailable")
		}
		captured, err := d.source.CaptureItem(ctx)
		if err != nil {
			return "", nil, err
		}
		text = captured
	}

	scale := req.Scale
	if scale <= 0 {
		scale = d.scale
	}

	out, err := d.pipeline.Search(ctx, SearchRequest{
		Text:    text,
		Scale:   scale,
		Profile: req.Profile,
		Pick:    d.pick,
	})
	if err != nil {
		return "", nil, err
	}
	if !out.Result.Success {
		return "", out, errors.New(out.Result.Error)
	}
	return fmt.Sprintf("Searching for %s", out.ItemName), out, nil
}

func (d *Daemon) Validate(ctx context.Context) (string, interface{}, error) {
	report := d.pipeline.Validate(ctx)
	if err := report.Err(); err != nil {
		return "", report, err
	}
	return "Trade site looks usable", report, nil
}

func (d *Daemon) Status() interface{} {
	return d.pipeline.Status()
}
