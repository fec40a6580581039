// Package rodsurface drives the trade site in a Chrome tab through go-rod.
package rodsurface

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"exiled-search/internal/surface"
	"exiled-search/pkg/logger"
)

const navigateTimeout = 30 * time.Second

type Config struct {
	TradeURL string
	// BrowserURL is the DevTools websocket of a running Chrome. Empty
	// launches a local one.
	BrowserURL string
	Headless   bool
}

// Surface is a trade tab.
type Surface struct {
	browser *rod.Browser
	page    *rod.Page
	lnch    *launcher.Launcher
	log     *logger.Logger
}

// Open attaches to a tab already showing the trade site or opens one.
func Open(ctx context.Context, cfg Config, log *logger.Logger) (*Surface, error) {
	if log == nil {
		log = logger.Nop()
	}
	s := &Surface{log: log}

	wsURL := cfg.BrowserURL
	if wsURL == "" {
		l := launcher.New().
			Headless(cfg.Headless).
			Set("disable-blink-features", "AutomationControlled")
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("launch chrome: %w", err)
		}
		s.lnch = l
		wsURL = u
		log.Info("Launched local Chrome", "url", wsURL, "headless", cfg.Headless)
	} else {
		log.Info("Connecting to remote Chrome", "url", wsURL)
	}

	s.browser = rod.New().ControlURL(wsURL).Context(ctx)
	if err := s.browser.Connect(); err != nil {
		s.cleanup()
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}

	page, err := s.findTradeTab(cfg.TradeURL)
	if err != nil {
		s.log.Debug("No open trade tab", "error", err)
		page, err = s.openTradeTab(ctx, cfg.TradeURL)
		if err != nil {
			s.cleanup()
			return nil, err
		}
	}
	s.page = page
	return s, nil
}

func (s *Surface) findTradeTab(tradeURL string) (*rod.Page, error) {
	u, err := url.Parse(tradeURL)
	if err != nil {
		return nil, fmt.Errorf("parse trade url: %w", err)
	}
	pages, err := s.browser.Pages()
	if err != nil {
		return nil, fmt.Errorf("list tabs: %w", err)
	}
	page, err := pages.FindByURL(regexp.QuoteMeta(u.Host + u.Path))
	if err != nil {
		return nil, err
	}
	s.log.Info("Attached to open trade tab", "url", tradeURL)
	return page, nil
}

func (s *Surface) openTradeTab(ctx context.Context, tradeURL string) (*rod.Page, error) {
	page, err := stealth.Page(s.browser)
	if err != nil {
		return nil, fmt.Errorf("create tab: %w", err)
	}

	navCtx, cancel := context.WithTimeout(ctx, navigateTimeout)
	defer cancel()

	if err := page.Context(navCtx).Navigate(tradeURL); err != nil {
		page.Close()
		return nil, fmt.Errorf("navigate %s: %w", tradeURL, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		s.log.Warn("Trade page load wait timed out", "url", tradeURL, "error", err)
	}
	s.log.Info("Opened trade tab", "url", tradeURL)
	return page, nil
}

// Close releases the tab. A launched Chrome is shut down; a remote one is
// left running.
func (s *Surface) Close() error {
	s.cleanup()
	return nil
}

func (s *Surface) cleanup() {
	if s.lnch == nil {
		return
	}
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			s.log.Warn("Failed to close Chrome", "error", err)
		}
	}
	s.lnch.Cleanup()
	s.lnch = nil
}

type control struct {
	el *rod.Element
	id string
}

func wrap(els rod.Elements) []surface.Control {
	out := make([]surface.Control, 0, len(els))
	for _, el := range els {
		out = append(out, &control{el: el})
	}
	return out
}

func first(els rod.Elements, err error, selector string) (surface.Control, error) {
	if err != nil {
		return nil, err
	}
	if els.Empty() {
		return nil, fmt.Errorf("%w: %s", surface.ErrNotFound, selector)
	}
	return &control{el: els.First()}, nil
}

func unwrap(c surface.Control) (*rod.Element, error) {
	rc, ok := c.(*control)
	if !ok {
		return nil, errors.New("control does not belong to this surface")
	}
	return rc.el, nil
}

// ID is the backend node id, stable across handles to the same element.
func (c *control) ID() string {
	if c.id != "" {
		return c.id
	}
	node, err := c.el.Describe(0, false)
	if err != nil {
		c.id = string(c.el.Object.ObjectID)
		return c.id
	}
	c.id = strconv.Itoa(int(node.BackendNodeID))
	return c.id
}

func (c *control) Text(ctx context.Context) (string, error) {
	return c.el.Context(ctx).Text()
}

func (c *control) Attr(ctx context.Context, name string) (string, bool, error) {
	v, err := c.el.Context(ctx).Attribute(name)
	if err != nil || v == nil {
		return "", false, err
	}
	return *v, true, nil
}

func (c *control) Visible(ctx context.Context) (bool, error) {
	return c.el.Context(ctx).Visible()
}

func (c *control) Find(ctx context.Context, selector string) (surface.Control, error) {
	els, err := c.el.Context(ctx).Elements(selector)
	return first(els, err, selector)
}

func (c *control) FindAll(ctx context.Context, selector string) ([]surface.Control, error) {
	els, err := c.el.Context(ctx).Elements(selector)
	if err != nil {
		return nil, err
	}
	return wrap(els), nil
}

func (s *Surface) FindControl(ctx context.Context, selector string) (surface.Control, error) {
	els, err := s.page.Context(ctx).Elements(selector)
	return first(els, err, selector)
}

func (s *Surface) FindControls(ctx context.Context, selector string) ([]surface.Control, error) {
	els, err := s.page.Context(ctx).Elements(selector)
	if err != nil {
		return nil, err
	}
	return wrap(els), nil
}

func (s *Surface) Type(ctx context.Context, c surface.Control, text string) error {
	el, err := unwrap(c)
	if err != nil {
		return err
	}
	el = el.Context(ctx)
	if err := el.SelectAllText(); err != nil {
		return fmt.Errorf("select text: %w", err)
	}
	return el.Input(text)
}

var keys = map[surface.Key]input.Key{
	surface.KeyEnter:  input.Enter,
	surface.KeyEscape: input.Escape,
}

func (s *Surface) Press(ctx context.Context, c surface.Control, key surface.Key) error {
	el, err := unwrap(c)
	if err != nil {
		return err
	}
	k, ok := keys[key]
	if !ok {
		return fmt.Errorf("unsupported key %q", key)
	}
	return el.Context(ctx).Type(k)
}

func (s *Surface) SelectOption(ctx context.Context, option surface.Control) error {
	return s.Click(ctx, option)
}

func (s *Surface) Click(ctx context.Context, c surface.Control) error {
	el, err := unwrap(c)
	if err != nil {
		return err
	}
	return el.Context(ctx).Click(proto.InputMouseButtonLeft, 1)
}

func (s *Surface) WaitSettled(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

var _ surface.Surface = (*Surface)(nil)
