package menu

import (
	"fmt"
	"strings"

	"lantern/internal/app"
)

// MainScreen is the top-level menu.
type MainScreen struct{}

func (m *MainScreen) Name() string { return "main" }

func (m *MainScreen) Render(ctx *Context) Render {
	title := fmt.Sprintf("%s - MAIN MENU", app.Config.General.BoardName)

	var items []Item

	status := "Status: Guest (Limited Access)"
	if ctx.LoggedIn() {
		status = fmt.Sprintf("Logged in as: %s", ctx.Username())
	} else if app.Config.Features.AllowAnonymous {
		status = "Status: Anonymous User"
	}
	items = append(items, Info(status))

	if ctx.LoggedIn() {
		if n, err := app.Store.CountUnreadMessages(ctx.Username()); err == nil && n > 0 {
			items = append(items, Info(fmt.Sprintf("You have %d unread message(s)", n)))
		}
		if n, err := app.Store.CountUnreadBulletins(ctx.Username()); err == nil && n > 0 {
			items = append(items, Info(fmt.Sprintf("%d unread bulletin(s) await", n)))
		}
	}
	items = append(items, Separator())

	items = append(items,
		Option("1", "Bulletin Board"),
		Option("2", "User Directory"),
	)
	if ctx.LoggedIn() {
		items = append(items, Option("3", "Private Messages"))
	} else {
		items = append(items, Disabled("3", "Private Messages (login required)"))
	}
	items = append(items, Separator())

	if ctx.LoggedIn() {
		items = append(items, Option("O", "Logout"))
	} else {
		items = append(items, Option("L", "Login / Register"))
	}
	items = append(items, Option("Q", "Quit"))

	return Render{Title: title, Items: items, Prompt: "Enter your choice: "}
}

func (m *MainScreen) HandleInput(ctx *Context, input string) Action {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "1":
		return Goto("bulletins")
	case "2":
		return Goto("users")
	case "3":
		if !ctx.LoggedIn() {
			return Notice("You must be logged in to use private messages.")
		}
		return Goto("messages")
	case "l", "login":
		if ctx.LoggedIn() {
			return Notice("You are already logged in.")
		}
		return Login()
	case "o", "logout":
		if !ctx.LoggedIn() {
			return Notice("You are not logged in.")
		}
		return Logout()
	case "q", "quit", "exit":
		return Quit()
	default:
		return Notice("Invalid choice. Please try again.")
	}
}
