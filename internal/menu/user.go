package menu

import (
	"fmt"
	"strings"

	"lantern/internal/app"
)

// UserScreen is the user directory: registered users, recent logins, and
// who is connected right now.
type UserScreen struct {
	showList bool
}

func NewUserScreen() *UserScreen {
	return &UserScreen{}
}

func (u *UserScreen) Name() string { return "users" }

func (u *UserScreen) Render(ctx *Context) Render {
	var items []Item

	if total, err := app.Store.CountUsers(); err == nil {
		items = append(items, Info(fmt.Sprintf("Total registered users: %d", total)))
	}
	items = append(items, Info(fmt.Sprintf("Users currently online: %d", len(app.Nodes.Active()))))
	items = append(items, Separator())

	if u.showList {
		users, err := app.Store.ListUsers()
		if err != nil {
			app.Logger.Error("Failed to list users", "err", err)
			items = append(items, Info("The user list is unavailable right now."))
		} else if len(users) == 0 {
			items = append(items, Info("No users have registered yet."))
		} else {
			for _, user := range users {
				suffix := ""
				if user.Username == ctx.Username() {
					suffix = " (you)"
				}
				items = append(items, Info(fmt.Sprintf("> %s%s", user.Username, suffix)))
			}
		}
	} else {
		items = append(items, Info("Recent logins:"))
		recent, err := app.Store.RecentLogins(5)
		if err != nil || len(recent) == 0 {
			items = append(items, Info("* No logins recorded yet"))
		}
		for _, user := range recent {
			when := "unknown"
			if user.LastLoginAt != nil {
				when = user.LastLoginAt.Format("2006-01-02 15:04")
			}
			suffix := ""
			if user.Username == ctx.Username() {
				suffix = " (you)"
			}
			items = append(items, Info(fmt.Sprintf("* %s - %s%s", user.Username, when, suffix)))
		}
	}
	items = append(items, Separator())

	if u.showList {
		items = append(items, Option("L", "Show recent logins"))
	} else {
		items = append(items, Option("L", "List all users"))
	}
	items = append(items, Option("W", "Who's online"))
	if ctx.LoggedIn() {
		items = append(items, Option("P", "View your profile"))
	}
	items = append(items, Option("B", "Back to main"))

	return Render{Title: "USER DIRECTORY", Items: items, Prompt: "Choice: "}
}

func (u *UserScreen) HandleInput(ctx *Context, input string) Action {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "l", "list":
		u.showList = !u.showList
		return Stay()
	case "w", "who":
		var sb strings.Builder
		sb.WriteString("Users currently online:\n")
		for _, node := range app.Nodes.Active() {
			suffix := ""
			if ctx.Node != nil && node.ID == ctx.Node.ID {
				suffix = " (you)"
			}
			sb.WriteString(fmt.Sprintf("* Node %d: %s%s\n", node.ID, node.Username(), suffix))
		}
		return Notice(sb.String())
	case "p", "profile":
		if !ctx.LoggedIn() {
			return Notice("Invalid choice. Use L, W, or B.")
		}
		user := ctx.Node.User
		lastLogin := "first login"
		if user.LastLoginAt != nil {
			lastLogin = user.LastLoginAt.Format("2006-01-02 15:04")
		}
		return Notice(fmt.Sprintf(
			"User Profile:\nUsername: %s\nJoined: %s\nLast Login: %s\nTotal Logins: %d",
			user.Username,
			user.CreatedAt.Format("2006-01-02"),
			lastLogin,
			user.LoginCount,
		))
	case "b", "back":
		return Goto("main")
	default:
		return Notice("Invalid choice. Use L, W, P, or B.")
	}
}
