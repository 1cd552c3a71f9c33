package menu

import (
	"lantern/internal/nodes"
)

// ActionKind tells the session what to do after a screen handles input.
type ActionKind int

const (
	ActionStay ActionKind = iota
	ActionGoto
	ActionLogin
	ActionLogout
	ActionQuit
	ActionNotice
)

// Action is the result of feeding one line of input to a screen.
type Action struct {
	Kind   ActionKind
	Target string // screen name for ActionGoto
	Notice string // message text for ActionNotice
}

func Stay() Action                { return Action{Kind: ActionStay} }
func Goto(target string) Action   { return Action{Kind: ActionGoto, Target: target} }
func Login() Action               { return Action{Kind: ActionLogin} }
func Logout() Action              { return Action{Kind: ActionLogout} }
func Quit() Action                { return Action{Kind: ActionQuit} }
func Notice(msg string) Action    { return Action{Kind: ActionNotice, Notice: msg} }

// ItemKind distinguishes the rows of a rendered screen.
type ItemKind int

const (
	ItemInfo ItemKind = iota
	ItemOption
	ItemDisabled
	ItemSeparator
	ItemBlank
)

// Item is one row of a rendered screen.
type Item struct {
	Kind  ItemKind
	Key   string
	Label string
}

func Info(text string) Item              { return Item{Kind: ItemInfo, Label: text} }
func Option(key, label string) Item      { return Item{Kind: ItemOption, Key: key, Label: label} }
func Disabled(key, label string) Item    { return Item{Kind: ItemDisabled, Key: key, Label: label} }
func Separator() Item                    { return Item{Kind: ItemSeparator} }
func Blank() Item                        { return Item{Kind: ItemBlank} }

// Render is everything a screen wants on the terminal: a framed title, the
// rows, and the input prompt that follows.
type Render struct {
	Title  string
	Items  []Item
	Prompt string
}

// Context carries the per-session state screens read. Screens never touch
// the connection; they return data and the session draws it.
type Context struct {
	Node  *nodes.Node
	Width int
}

func (c *Context) LoggedIn() bool {
	return c.Node != nil && c.Node.User != nil
}

func (c *Context) Username() string {
	if c.Node == nil {
		return "Anonymous"
	}
	return c.Node.Username()
}

// Screen is one menu of the board. Screens may carry state (current page,
// compose drafts) and mutate it from HandleInput.
type Screen interface {
	Name() string
	Render(ctx *Context) Render
	HandleInput(ctx *Context, input string) Action
}

// Registry tracks the available screens and which one is showing.
type Registry struct {
	screens map[string]Screen
	current string
}

func NewRegistry() *Registry {
	return &Registry{screens: make(map[string]Screen)}
}

func (r *Registry) Register(s Screen) {
	r.screens[s.Name()] = s
	if r.current == "" {
		r.current = s.Name()
	}
}

// Current returns the active screen, or nil when nothing is registered.
func (r *Registry) Current() Screen {
	return r.screens[r.current]
}

// Goto switches to the named screen if it exists.
func (r *Registry) Goto(name string) bool {
	if _, ok := r.screens[name]; !ok {
		return false
	}
	r.current = name
	return true
}
