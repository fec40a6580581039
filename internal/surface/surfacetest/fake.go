// Package surfacetest provides an in-memory Surface for tests: a tree of
// nodes, each declaring the selectors it answers to, with hooks that let a
// test script how the page reacts to typing, key presses and clicks.
package surfacetest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"exiled-search/internal/surface"
)

// Node is one fake element.
type Node struct {
	Name      string
	text      string
	attrs     map[string]string
	hidden    bool
	selectors map[string]bool
	parent    *Node
	children  []*Node
	page      *Page
	id        int

	// Value holds what was last typed into the node.
	Value string

	OnType  func(n *Node, text string)
	OnPress func(n *Node, key surface.Key)
	OnClick func(n *Node)
}

// El creates a detached node answering to the given selectors.
func El(name string, selectors ...string) *Node {
	n := &Node{Name: name, attrs: map[string]string{}, selectors: map[string]bool{}}
	for _, s := range selectors {
		n.selectors[s] = true
	}
	return n
}

func (n *Node) WithText(text string) *Node {
	n.text = text
	return n
}

func (n *Node) WithAttr(name, value string) *Node {
	n.attrs[name] = value
	return n
}

func (n *Node) Hidden() *Node {
	n.hidden = true
	return n
}

// SetHidden toggles visibility from inside hooks.
func (n *Node) SetHidden(hidden bool) {
	n.hidden = hidden
}

// Append attaches children and returns n.
func (n *Node) Append(children ...*Node) *Node {
	for _, c := range children {
		c.detach()
		c.parent = n
		n.children = append(n.children, c)
		c.adopt(n.page)
	}
	return n
}

// Remove detaches n from its parent.
func (n *Node) Remove() {
	n.detach()
}

// Clear removes every child of n.
func (n *Node) Clear() {
	for _, c := range n.children {
		c.parent = nil
	}
	n.children = nil
}

// Children returns the current children.
func (n *Node) Children() []*Node {
	return append([]*Node(nil), n.children...)
}

func (n *Node) detach() {
	if n.parent == nil {
		return
	}
	p := n.parent
	for i, c := range p.children {
		if c == n {
			p.children = append(p.children[:i:i], p.children[i+1:]...)
			break
		}
	}
	n.parent = nil
}

func (n *Node) adopt(p *Page) {
	if p == nil {
		return
	}
	n.page = p
	if n.id == 0 {
		p.nextID++
		n.id = p.nextID
	}
	for _, c := range n.children {
		c.adopt(p)
	}
}

func (n *Node) matches(selector string) bool {
	return n.selectors[selector]
}

func (n *Node) walk(selector string, out *[]surface.Control) {
	for _, c := range n.children {
		if c.matches(selector) {
			*out = append(*out, c)
		}
		c.walk(selector, out)
	}
}

func (n *Node) ID() string {
	return fmt.Sprintf("node-%d", n.id)
}

func (n *Node) Text(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return n.fullText(), nil
}

func (n *Node) fullText() string {
	if n.text != "" || len(n.children) == 0 {
		return n.text
	}
	parts := make([]string, 0, len(n.children))
	for _, c := range n.children {
		if t := c.fullText(); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

func (n *Node) Attr(ctx context.Context, name string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	v, ok := n.attrs[name]
	return v, ok, nil
}

func (n *Node) Visible(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	for cur := n; cur != nil; cur = cur.parent {
		if cur.hidden {
			return false, nil
		}
	}
	return true, nil
}

func (n *Node) Find(ctx context.Context, selector string) (surface.Control, error) {
	all, err := n.FindAll(ctx, selector)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("%w: %s", surface.ErrNotFound, selector)
	}
	return all[0], nil
}

func (n *Node) FindAll(ctx context.Context, selector string) ([]surface.Control, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []surface.Control
	n.walk(selector, &out)
	return out, nil
}

// Action is one recorded interaction.
type Action struct {
	Kind   string
	Target string
	Text   string
}

func (a Action) String() string {
	if a.Text == "" {
		return a.Kind + " " + a.Target
	}
	return fmt.Sprintf("%s %s %q", a.Kind, a.Target, a.Text)
}

// Page is the fake Surface.
type Page struct {
	Root    *Node
	Actions []Action
	// Waited is the total simulated settle time.
	Waited time.Duration
	// OnWait runs on every WaitSettled call, e.g. to let options appear late.
	OnWait func(d time.Duration)
	// Panic makes the next interaction panic with this value.
	Panic any

	nextID int
}

// NewPage creates an empty page.
func NewPage() *Page {
	p := &Page{}
	p.Root = El("root")
	p.Root.adopt(p)
	return p
}

func (p *Page) record(kind string, c surface.Control, text string) *Node {
	if p.Panic != nil {
		v := p.Panic
		p.Panic = nil
		panic(v)
	}
	n := c.(*Node)
	p.Actions = append(p.Actions, Action{Kind: kind, Target: n.Name, Text: text})
	return n
}

// Did reports whether an action of kind was recorded against target.
func (p *Page) Did(kind, target string) bool {
	for _, a := range p.Actions {
		if a.Kind == kind && a.Target == target {
			return true
		}
	}
	return false
}

// Mutations returns every recorded action except waits.
func (p *Page) Mutations() []Action {
	return append([]Action(nil), p.Actions...)
}

func (p *Page) FindControl(ctx context.Context, selector string) (surface.Control, error) {
	return p.Root.Find(ctx, selector)
}

func (p *Page) FindControls(ctx context.Context, selector string) ([]surface.Control, error) {
	return p.Root.FindAll(ctx, selector)
}

func (p *Page) Type(ctx context.Context, c surface.Control, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n := p.record("type", c, text)
	n.Value = text
	if n.OnType != nil {
		n.OnType(n, text)
	}
	return nil
}

func (p *Page) Press(ctx context.Context, c surface.Control, key surface.Key) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n := p.record("press", c, string(key))
	if n.OnPress != nil {
		n.OnPress(n, key)
	}
	return nil
}

func (p *Page) SelectOption(ctx context.Context, option surface.Control) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n := p.record("select", option, "")
	if n.OnClick != nil {
		n.OnClick(n)
	}
	return nil
}

func (p *Page) Click(ctx context.Context, c surface.Control) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n := p.record("click", c, "")
	if n.OnClick != nil {
		n.OnClick(n)
	}
	return nil
}

func (p *Page) WaitSettled(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.Waited += d
	if p.OnWait != nil {
		p.OnWait(d)
	}
	return nil
}

var _ surface.Surface = (*Page)(nil)
