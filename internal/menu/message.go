package menu

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"lantern/internal/ansi"
	"lantern/internal/app"
	"lantern/internal/store"
)

type messageView int

const (
	messageHome messageView = iota
	messageInbox
	messageOutbox
	messageReading
	composeRecipient
	composeSubject
	composeContent
)

// MessageScreen is the private mail area: inbox, sent messages, and a
// line-at-a-time compose flow.
type MessageScreen struct {
	view    messageView
	listing []store.Message
	reading *store.Message
	fromBox messageView // which listing the open message came from

	draftTo      string
	draftSubject string
}

func NewMessageScreen() *MessageScreen {
	return &MessageScreen{}
}

func (m *MessageScreen) Name() string { return "messages" }

func (m *MessageScreen) Render(ctx *Context) Render {
	switch m.view {
	case messageInbox:
		return m.renderListing(ctx, "INBOX", "From", true)
	case messageOutbox:
		return m.renderListing(ctx, "SENT MESSAGES", "To", false)
	case messageReading:
		return m.renderReading(ctx)
	case composeRecipient:
		return Render{
			Title: "COMPOSE MESSAGE",
			Items: []Item{
				Info("Enter the username of the recipient."),
				Info("Leave blank to cancel."),
			},
			Prompt: "Recipient: ",
		}
	case composeSubject:
		return Render{
			Title: "COMPOSE MESSAGE",
			Items: []Item{
				Info(fmt.Sprintf("To: %s", m.draftTo)),
				Blank(),
				Info("Enter a subject. Leave blank to cancel."),
			},
			Prompt: "Subject: ",
		}
	case composeContent:
		return Render{
			Title: "COMPOSE MESSAGE",
			Items: []Item{
				Info(fmt.Sprintf("To: %s", m.draftTo)),
				Info(fmt.Sprintf("Subject: %s", m.draftSubject)),
				Blank(),
				Info("Enter your message. Leave blank to cancel."),
			},
			Prompt: "Message: ",
		}
	default:
		return m.renderHome(ctx)
	}
}

func (m *MessageScreen) renderHome(ctx *Context) Render {
	title := fmt.Sprintf("PRIVATE MESSAGES - %s", ctx.Username())

	var items []Item
	if unread, err := app.Store.CountUnreadMessages(ctx.Username()); err == nil {
		items = append(items, Info(fmt.Sprintf("Unread Messages: %d", unread)), Blank())
	}

	items = append(items,
		Option("I", "Inbox"),
		Option("S", "Sent Messages"),
		Option("C", "Compose New Message"),
		Blank(),
		Option("B", "Back to main"),
	)

	return Render{Title: title, Items: items, Prompt: "Choice: "}
}

func (m *MessageScreen) renderListing(ctx *Context, title, party string, inbox bool) Render {
	var items []Item
	if len(m.listing) == 0 {
		items = append(items, Info("No messages here."), Blank())
	} else {
		items = append(items, Info(fmt.Sprintf("    # | %-12s | %-22s | Sent", party, "Subject")))
		items = append(items, Separator())
		for i, msg := range m.listing {
			status := "   "
			other := msg.Sender
			if inbox {
				if msg.Unread() {
					status = "[N]"
				}
			} else {
				other = msg.Recipient
				if !msg.Unread() {
					status = "[R]"
				}
			}
			items = append(items, Info(fmt.Sprintf("%s %2d | %-12s | %-22s | %s",
				status, i+1,
				clip(other, 12),
				clip(msg.Subject, 22),
				msg.CreatedAt.Format("2006-01-02"))))
		}
		items = append(items, Blank(), Info("Enter a message number to read it, or:"))
	}

	items = append(items,
		Blank(),
		Option("C", "Compose New Message"),
		Option("R", "Refresh"),
		Option("B", "Back to Message Menu"),
	)

	return Render{
		Title:  fmt.Sprintf("%s - %s (%d messages)", title, ctx.Username(), len(m.listing)),
		Items:  items,
		Prompt: "Choice: ",
	}
}

func (m *MessageScreen) renderReading(ctx *Context) Render {
	msg := m.reading
	items := []Item{
		Info(fmt.Sprintf("From: %s", msg.Sender)),
		Info(fmt.Sprintf("To: %s", msg.Recipient)),
		Info(fmt.Sprintf("Subject: %s", msg.Subject)),
		Info(fmt.Sprintf("Sent: %s", msg.CreatedAt.Format("2006-01-02 15:04"))),
		Separator(),
	}
	for _, line := range ansi.WrapText(msg.Content, ctx.Width-4) {
		items = append(items, Info(line))
	}
	items = append(items,
		Separator(),
		Option("R", "Reply"),
		Option("D", "Delete"),
		Option("B", "Back"),
	)
	return Render{Title: "READING MESSAGE", Items: items, Prompt: "Choice: "}
}

func (m *MessageScreen) HandleInput(ctx *Context, input string) Action {
	input = strings.TrimSpace(input)

	switch m.view {
	case messageInbox, messageOutbox:
		return m.handleListing(ctx, input)
	case messageReading:
		return m.handleReading(ctx, input)
	case composeRecipient:
		return m.handleComposeRecipient(ctx, input)
	case composeSubject:
		if input == "" {
			return m.cancelCompose()
		}
		m.draftSubject = input
		m.view = composeContent
		return Stay()
	case composeContent:
		return m.handleComposeContent(ctx, input)
	default:
		return m.handleHome(ctx, input)
	}
}

func (m *MessageScreen) handleHome(ctx *Context, input string) Action {
	switch strings.ToLower(input) {
	case "i", "inbox":
		return m.openListing(ctx, messageInbox)
	case "s", "sent":
		return m.openListing(ctx, messageOutbox)
	case "c", "compose":
		m.view = composeRecipient
		return Stay()
	case "b", "back", "m", "main":
		return Goto("main")
	default:
		return Notice("Invalid choice. Use I, S, C, or B.")
	}
}

func (m *MessageScreen) openListing(ctx *Context, view messageView) Action {
	var (
		listing []store.Message
		err     error
	)
	if view == messageInbox {
		listing, err = app.Store.Inbox(ctx.Username())
	} else {
		listing, err = app.Store.Outbox(ctx.Username())
	}
	if err != nil {
		app.Logger.Error("Failed to load messages", "err", err)
		return Notice("Messages are unavailable right now.")
	}
	m.listing = listing
	m.view = view
	return Stay()
}

func (m *MessageScreen) handleListing(ctx *Context, input string) Action {
	switch strings.ToLower(input) {
	case "c", "compose":
		m.view = composeRecipient
		return Stay()
	case "r", "refresh":
		return m.openListing(ctx, m.view)
	case "b", "back":
		m.view = messageHome
		m.listing = nil
		return Stay()
	default:
		n, err := strconv.Atoi(input)
		if err != nil || n < 1 || n > len(m.listing) {
			return Notice("Invalid choice. Enter a message number, C, R, or B.")
		}
		msg := m.listing[n-1]
		m.reading = &msg
		m.fromBox = m.view
		m.view = messageReading
		if msg.Recipient == ctx.Username() && msg.Unread() {
			if err := app.Store.MarkMessageRead(msg.ID); err != nil {
				app.Logger.Warn("Failed to mark message read", "id", msg.ID, "err", err)
			}
		}
		return Stay()
	}
}

func (m *MessageScreen) handleReading(ctx *Context, input string) Action {
	switch strings.ToLower(input) {
	case "r", "reply":
		m.draftTo = m.reading.Sender
		m.draftSubject = replySubject(m.reading.Subject)
		m.view = composeContent
		return Stay()
	case "d", "delete":
		id := m.reading.ID
		m.reading = nil
		m.view = m.fromBox
		if err := app.Store.DeleteMessageFor(id, ctx.Username()); err != nil {
			app.Logger.Error("Failed to delete message", "id", id, "err", err)
			return Notice("Could not delete the message.")
		}
		return m.openListing(ctx, m.view)
	case "b", "back", "":
		m.reading = nil
		m.view = m.fromBox
		return Stay()
	default:
		return Notice("Invalid choice. Use R, D, or B.")
	}
}

func (m *MessageScreen) handleComposeRecipient(ctx *Context, input string) Action {
	if input == "" {
		return m.cancelCompose()
	}
	if _, err := app.Store.FindUserByUsername(input); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return Notice(fmt.Sprintf("No such user: %s", input))
		}
		app.Logger.Error("Recipient lookup failed", "err", err)
		return Notice("Could not look up that user. Try again later.")
	}
	m.draftTo = input
	m.view = composeSubject
	return Stay()
}

func (m *MessageScreen) handleComposeContent(ctx *Context, input string) Action {
	if input == "" {
		return m.cancelCompose()
	}
	if max := app.Config.Features.MaxMessageLength; len(input) > max {
		return Notice(fmt.Sprintf("Message too long (%d characters, limit %d).", len(input), max))
	}

	to, subject := m.draftTo, m.draftSubject
	m.cancelCompose()
	if _, err := app.Store.SendMessage(ctx.Username(), to, subject, input); err != nil {
		app.Logger.Error("Failed to send message", "err", err)
		return Notice("Could not send your message.")
	}
	return Notice(fmt.Sprintf("Message sent to %s.", to))
}

func (m *MessageScreen) cancelCompose() Action {
	m.draftTo = ""
	m.draftSubject = ""
	m.view = messageHome
	return Stay()
}

func replySubject(subject string) string {
	if strings.HasPrefix(strings.ToLower(subject), "re:") {
		return subject
	}
	return "Re: " + subject
}
