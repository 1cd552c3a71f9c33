package session

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/term"

	"lantern/internal/ansi"
	"lantern/internal/app"
	"lantern/internal/menu"
	"lantern/internal/network/telnet"
	"lantern/internal/nodes"
	"lantern/internal/store"
)

// Session drives one connected user: welcome screen, login, and the menu
// loop, until the user quits or the connection drops.
type Session struct {
	conn  *telnet.Connection
	node  *nodes.Node
	term  *term.Terminal
	box   *ansi.BoxRenderer
	menus *menu.Registry
	width int
}

// RunSession blocks until the user disconnects.
func RunSession(conn *telnet.Connection, node *nodes.Node) {
	registry := menu.NewRegistry()
	registry.Register(&menu.MainScreen{})
	registry.Register(menu.NewBulletinScreen())
	registry.Register(menu.NewMessageScreen())
	registry.Register(menu.NewUserScreen())
	registry.Goto("main")

	s := &Session{
		conn:  conn,
		node:  node,
		menus: registry,
	}
	s.Run()
}

func (s *Session) Run() {
	// Take over echoing so the line editor controls what the user sees.
	// Required for masked password entry; clients that refuse still get a
	// usable, if doubled-up, session.
	if err := s.conn.SetEcho(true); err != nil {
		app.Logger.Warn("Echo negotiation failed", "err", err)
	}

	caps := s.conn.Capabilities()
	s.width = caps.Width
	if s.width < 40 || s.width > 132 {
		s.width = 80
	}
	s.box = ansi.NewBoxRenderer(s.conn.IsUTF8(), caps.Color)
	s.term = term.NewTerminal(s.conn, "> ")

	s.showWelcome()

	if !app.Config.Features.AllowAnonymous && !s.login() {
		s.conn.Send("\r\nLogin required. Goodbye.\r\n")
		return
	}

	s.loop()
}

func (s *Session) loop() {
	ctx := &menu.Context{Node: s.node, Width: s.width}

	for {
		screen := s.menus.Current()
		if screen == nil {
			app.Logger.Error("No menu screens registered")
			return
		}

		render := screen.Render(ctx)
		s.drawScreen(render)

		s.term.SetPrompt(render.Prompt)
		line, err := s.term.ReadLine()
		if err != nil {
			if err != io.EOF {
				app.Logger.Error("Error reading line", "err", err)
			}
			return
		}

		action := screen.HandleInput(ctx, line)
		switch action.Kind {
		case menu.ActionStay:
			// Re-render on the next pass

		case menu.ActionGoto:
			if !s.menus.Goto(action.Target) {
				app.Logger.Error("Unknown menu screen", "target", action.Target)
			}

		case menu.ActionNotice:
			s.showNotice(action.Notice)

		case menu.ActionLogin:
			s.login()

		case menu.ActionLogout:
			app.Logger.Info("User logged out", "user", s.node.Username())
			s.node.User = nil
			s.showNotice("You have been logged out.")

		case menu.ActionQuit:
			s.term.Write([]byte(fmt.Sprintf("\r\nThanks for visiting %s. Goodbye!\r\n",
				app.Config.General.BoardName)))
			return
		}
	}
}

func (s *Session) showWelcome() {
	s.clear()
	err := ansi.RenderArt(s.term, app.Config.Paths.Art, "welcome", s.conn.IsUTF8(), nil)
	if err != nil {
		// No art installed; a framed title works everywhere
		s.box.TitleBox(s.term, fmt.Sprintf("Welcome to %s", app.Config.General.BoardName), s.width)
	}
}

func (s *Session) drawScreen(render menu.Render) {
	s.clear()

	lines := make([]string, 0, len(render.Items))
	for _, item := range render.Items {
		switch item.Kind {
		case menu.ItemOption:
			lines = append(lines, fmt.Sprintf("[%s] %s", item.Key, item.Label))
		case menu.ItemDisabled:
			lines = append(lines, fmt.Sprintf("[-] %s", item.Label))
		case menu.ItemSeparator:
			lines = append(lines, strings.Repeat("-", s.width-4))
		case menu.ItemBlank:
			lines = append(lines, "")
		default:
			lines = append(lines, item.Label)
		}
	}

	if err := s.box.Panel(s.term, render.Title, lines, s.width); err != nil {
		app.Logger.Error("Failed to draw menu", "err", err)
	}
}

func (s *Session) showNotice(notice string) {
	s.clear()
	lines := ansi.WrapText(strings.TrimRight(notice, "\n"), s.width-4)
	s.box.Panel(s.term, "", lines, s.width)

	s.term.SetPrompt("Press Enter to continue... ")
	s.term.ReadLine()
}

func (s *Session) clear() {
	if s.conn.Capabilities().ANSI {
		s.term.Write([]byte(ansi.ClearSeq))
	} else {
		s.term.Write([]byte("\r\n"))
	}
}

// login walks the username/password dialog, including first-time
// registration. Returns true when s.node.User is set.
func (s *Session) login() bool {
	attempts := app.Config.Features.MaxLoginAttempts

	for attempt := 1; attempt <= attempts; attempt++ {
		s.term.SetPrompt("Username (blank to cancel): ")
		username, err := s.term.ReadLine()
		if err != nil {
			return false
		}
		username = strings.TrimSpace(username)
		if username == "" {
			return false
		}

		user, err := app.Store.FindUserByUsername(username)
		if errors.Is(err, store.ErrUserNotFound) {
			if s.register(username) {
				return true
			}
			continue
		}
		if err != nil {
			app.Logger.Error("User lookup failed", "err", err)
			s.term.Write([]byte("Login is unavailable right now.\r\n"))
			return false
		}

		password, err := s.term.ReadPassword("Password: ")
		if err != nil {
			return false
		}

		user, err = app.Store.Authenticate(username, password)
		if err != nil {
			app.Logger.Info("Failed login attempt", "user", username, "attempt", attempt)
			s.term.Write([]byte("Invalid username or password.\r\n"))
			continue
		}

		s.node.User = user
		app.Logger.Info("User logged in", "user", username)
		s.showNotice(fmt.Sprintf("Welcome back, %s!", username))
		return true
	}

	s.term.Write([]byte("Too many failed attempts.\r\n"))
	return false
}

func (s *Session) register(username string) bool {
	s.term.SetPrompt(fmt.Sprintf("No account named %q. Create it? (y/n): ", username))
	answer, err := s.term.ReadLine()
	if err != nil || !strings.EqualFold(strings.TrimSpace(answer), "y") {
		return false
	}

	password, err := s.term.ReadPassword("Choose a password: ")
	if err != nil {
		return false
	}
	if len(password) < 4 {
		s.term.Write([]byte("Password must be at least 4 characters.\r\n"))
		return false
	}

	confirm, err := s.term.ReadPassword("Confirm password: ")
	if err != nil {
		return false
	}
	if password != confirm {
		s.term.Write([]byte("Passwords do not match.\r\n"))
		return false
	}

	if err := app.Store.CreateUser(username, password); err != nil {
		app.Logger.Error("Failed to create user", "user", username, "err", err)
		s.term.Write([]byte("Could not create your account.\r\n"))
		return false
	}

	user, err := app.Store.Authenticate(username, password)
	if err != nil {
		app.Logger.Error("Post-registration login failed", "user", username, "err", err)
		return false
	}

	s.node.User = user
	app.Logger.Info("New user registered", "user", username)
	s.showNotice(fmt.Sprintf("Account created. Welcome aboard, %s!", username))
	return true
}
