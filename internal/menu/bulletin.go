package menu

import (
	"fmt"
	"strconv"
	"strings"

	"lantern/internal/ansi"
	"lantern/internal/app"
	"lantern/internal/store"
)

type bulletinView int

const (
	bulletinList bulletinView = iota
	bulletinReading
	bulletinPostTitle
	bulletinPostContent
)

// BulletinScreen shows the board's bulletins and takes new posts. It keeps
// its listing cached between renders so numeric input picks from what the
// user last saw.
type BulletinScreen struct {
	view    bulletinView
	listing []store.Bulletin
	reading *store.Bulletin
	draft   string // title held while the post content is collected
}

func NewBulletinScreen() *BulletinScreen {
	return &BulletinScreen{}
}

func (b *BulletinScreen) Name() string { return "bulletins" }

func (b *BulletinScreen) Render(ctx *Context) Render {
	switch b.view {
	case bulletinReading:
		return b.renderReading(ctx)
	case bulletinPostTitle:
		return Render{
			Title: "POST BULLETIN",
			Items: []Item{
				Info("Enter a title for your bulletin."),
				Info("Leave blank to cancel."),
			},
			Prompt: "Title: ",
		}
	case bulletinPostContent:
		return Render{
			Title: "POST BULLETIN",
			Items: []Item{
				Info(fmt.Sprintf("Title: %s", b.draft)),
				Blank(),
				Info("Enter the bulletin text."),
				Info("(Leave blank to cancel)"),
			},
			Prompt: "Text: ",
		}
	default:
		return b.renderList(ctx)
	}
}

func (b *BulletinScreen) renderList(ctx *Context) Render {
	var items []Item

	listing, err := app.Store.ListBulletins()
	if err != nil {
		app.Logger.Error("Failed to list bulletins", "err", err)
		items = append(items, Info("Bulletins are unavailable right now."))
	}
	b.listing = listing

	if len(listing) == 0 {
		items = append(items, Info("No bulletins have been posted yet."))
	} else {
		items = append(items, Info("  # | Title                      | Author       | Posted"))
		items = append(items, Separator())
		for i, bl := range listing {
			marker := " "
			if bl.Sticky {
				marker = "*"
			} else if ctx.LoggedIn() {
				if read, err := app.Store.IsBulletinRead(bl.ID, ctx.Username()); err == nil && !read {
					marker = "N"
				}
			}
			items = append(items, Info(fmt.Sprintf("%s%2d | %-26s | %-12s | %s",
				marker, i+1,
				clip(bl.Title, 26),
				clip(bl.Author, 12),
				bl.CreatedAt.Format("2006-01-02"))))
		}
		items = append(items, Blank())
		items = append(items, Info("Enter a bulletin number to read it, or:"))
	}

	items = append(items, Blank())
	if ctx.LoggedIn() {
		items = append(items, Option("P", "Post new bulletin"))
	} else {
		items = append(items, Disabled("P", "Post new bulletin (login required)"))
	}
	items = append(items,
		Option("R", "Refresh"),
		Option("B", "Back to main"),
	)

	return Render{Title: "BULLETIN BOARD", Items: items, Prompt: "Choice: "}
}

func (b *BulletinScreen) renderReading(ctx *Context) Render {
	bl := b.reading
	items := []Item{
		Info(fmt.Sprintf("Author: %s", bl.Author)),
		Info(fmt.Sprintf("Posted: %s", bl.CreatedAt.Format("2006-01-02 15:04"))),
		Separator(),
	}
	for _, line := range ansi.WrapText(bl.Content, ctx.Width-4) {
		items = append(items, Info(line))
	}
	items = append(items,
		Separator(),
		Option("B", "Back to bulletins"),
		Option("M", "Main menu"),
	)
	return Render{Title: clip(bl.Title, ctx.Width-6), Items: items, Prompt: "Choice: "}
}

func (b *BulletinScreen) HandleInput(ctx *Context, input string) Action {
	input = strings.TrimSpace(input)

	switch b.view {
	case bulletinReading:
		switch strings.ToLower(input) {
		case "b", "back", "":
			b.view = bulletinList
			b.reading = nil
			return Stay()
		case "m", "main":
			b.view = bulletinList
			b.reading = nil
			return Goto("main")
		default:
			return Notice("Invalid choice. Use B or M.")
		}

	case bulletinPostTitle:
		if input == "" {
			b.view = bulletinList
			return Stay()
		}
		b.draft = input
		b.view = bulletinPostContent
		return Stay()

	case bulletinPostContent:
		if input == "" {
			b.view = bulletinList
			b.draft = ""
			return Stay()
		}
		title := b.draft
		b.draft = ""
		b.view = bulletinList
		if _, err := app.Store.PostBulletin(title, input, ctx.Username()); err != nil {
			app.Logger.Error("Failed to post bulletin", "err", err)
			return Notice("Could not post your bulletin. Try again later.")
		}
		return Notice("Bulletin posted.")

	default:
		switch strings.ToLower(input) {
		case "p", "post":
			if !ctx.LoggedIn() {
				return Notice("You must be logged in to post bulletins.")
			}
			b.view = bulletinPostTitle
			return Stay()
		case "r", "refresh":
			return Stay()
		case "b", "back":
			return Goto("main")
		default:
			n, err := strconv.Atoi(input)
			if err != nil || n < 1 || n > len(b.listing) {
				return Notice("Invalid choice. Enter a bulletin number, P, R, or B.")
			}
			bl := b.listing[n-1]
			b.reading = &bl
			b.view = bulletinReading
			if ctx.LoggedIn() {
				if err := app.Store.MarkBulletinRead(bl.ID, ctx.Username()); err != nil {
					app.Logger.Warn("Failed to mark bulletin read", "id", bl.ID, "err", err)
				}
			}
			return Stay()
		}
	}
}

func clip(s string, width int) string {
	if width < 1 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
