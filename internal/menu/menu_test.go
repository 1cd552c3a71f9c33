package menu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"lantern/internal/app"
	"lantern/internal/menu"
	"lantern/internal/nodes"
	"lantern/internal/store"
)

// loginAs creates the user and attaches it to the context's node.
func loginAs(ctx *menu.Context, username string) {
	Expect(app.Store.CreateUser(username, "password")).To(Succeed())
	user, err := app.Store.FindUserByUsername(username)
	Expect(err).NotTo(HaveOccurred())
	ctx.Node.User = user
}

var _ = Describe("Screens", func() {
	var ctx *menu.Context

	BeforeEach(func() {
		bootTestApp()
		ctx = &menu.Context{
			Node:  &nodes.Node{ID: 1},
			Width: 80,
		}
	})

	Describe("Registry", func() {
		It("routes between registered screens", func() {
			reg := menu.NewRegistry()
			reg.Register(&menu.MainScreen{})
			reg.Register(menu.NewBulletinScreen())

			Expect(reg.Current().Name()).To(Equal("main"))
			Expect(reg.Goto("bulletins")).To(BeTrue())
			Expect(reg.Current().Name()).To(Equal("bulletins"))
			Expect(reg.Goto("missing")).To(BeFalse())
			Expect(reg.Current().Name()).To(Equal("bulletins"))
		})
	})

	Describe("MainScreen", func() {
		var screen *menu.MainScreen

		BeforeEach(func() {
			screen = &menu.MainScreen{}
		})

		It("renders the board name in the title", func() {
			render := screen.Render(ctx)
			Expect(render.Title).To(ContainSubstring("Testboard"))
		})

		It("routes to the bulletin board", func() {
			action := screen.HandleInput(ctx, "1")
			Expect(action.Kind).To(Equal(menu.ActionGoto))
			Expect(action.Target).To(Equal("bulletins"))
		})

		It("keeps anonymous users out of private messages", func() {
			action := screen.HandleInput(ctx, "3")
			Expect(action.Kind).To(Equal(menu.ActionNotice))

			loginAs(ctx, "alice")
			action = screen.HandleInput(ctx, "3")
			Expect(action.Kind).To(Equal(menu.ActionGoto))
			Expect(action.Target).To(Equal("messages"))
		})

		It("offers login to guests and logout to users", func() {
			Expect(screen.HandleInput(ctx, "l").Kind).To(Equal(menu.ActionLogin))
			Expect(screen.HandleInput(ctx, "o").Kind).To(Equal(menu.ActionNotice))

			loginAs(ctx, "alice")
			Expect(screen.HandleInput(ctx, "o").Kind).To(Equal(menu.ActionLogout))
			Expect(screen.HandleInput(ctx, "l").Kind).To(Equal(menu.ActionNotice))
		})

		It("quits on Q", func() {
			Expect(screen.HandleInput(ctx, "q").Kind).To(Equal(menu.ActionQuit))
		})

		It("rejects junk input", func() {
			Expect(screen.HandleInput(ctx, "xyzzy").Kind).To(Equal(menu.ActionNotice))
		})
	})

	Describe("BulletinScreen", func() {
		var screen *menu.BulletinScreen

		BeforeEach(func() {
			screen = menu.NewBulletinScreen()
		})

		It("renders posted bulletins", func() {
			_, err := app.Store.PostBulletin("Board News", "Content here", "sysop")
			Expect(err).NotTo(HaveOccurred())

			render := screen.Render(ctx)
			Expect(render.Title).To(Equal("BULLETIN BOARD"))

			var lines []string
			for _, item := range render.Items {
				lines = append(lines, item.Label)
			}
			Expect(lines).To(ContainElement(ContainSubstring("Board News")))
		})

		It("keeps guests from posting", func() {
			action := screen.HandleInput(ctx, "p")
			Expect(action.Kind).To(Equal(menu.ActionNotice))
		})

		It("walks the post flow for a logged-in user", func() {
			loginAs(ctx, "alice")
			screen.Render(ctx)

			Expect(screen.HandleInput(ctx, "p").Kind).To(Equal(menu.ActionStay))
			Expect(screen.HandleInput(ctx, "My Title").Kind).To(Equal(menu.ActionStay))

			action := screen.HandleInput(ctx, "The bulletin text")
			Expect(action.Kind).To(Equal(menu.ActionNotice))
			Expect(action.Notice).To(ContainSubstring("posted"))

			listing, err := app.Store.ListBulletins()
			Expect(err).NotTo(HaveOccurred())
			Expect(listing).To(HaveLen(1))
			Expect(listing[0].Title).To(Equal("My Title"))
			Expect(listing[0].Author).To(Equal("alice"))
		})

		It("opens a bulletin by number and marks it read", func() {
			loginAs(ctx, "alice")
			b, err := app.Store.PostBulletin("Read me", "Body", "sysop")
			Expect(err).NotTo(HaveOccurred())

			screen.Render(ctx)
			Expect(screen.HandleInput(ctx, "1").Kind).To(Equal(menu.ActionStay))

			render := screen.Render(ctx)
			Expect(render.Title).To(Equal("Read me"))

			read, err := app.Store.IsBulletinRead(b.ID, "alice")
			Expect(err).NotTo(HaveOccurred())
			Expect(read).To(BeTrue())
		})

		It("goes back to the main menu", func() {
			screen.Render(ctx)
			action := screen.HandleInput(ctx, "b")
			Expect(action.Kind).To(Equal(menu.ActionGoto))
			Expect(action.Target).To(Equal("main"))
		})
	})

	Describe("MessageScreen", func() {
		var screen *menu.MessageScreen

		BeforeEach(func() {
			screen = menu.NewMessageScreen()
			loginAs(ctx, "alice")
			Expect(app.Store.CreateUser("bob", "password")).To(Succeed())
		})

		It("walks the compose flow", func() {
			Expect(screen.HandleInput(ctx, "c").Kind).To(Equal(menu.ActionStay))
			Expect(screen.HandleInput(ctx, "bob").Kind).To(Equal(menu.ActionStay))
			Expect(screen.HandleInput(ctx, "Greetings").Kind).To(Equal(menu.ActionStay))

			action := screen.HandleInput(ctx, "Hello Bob!")
			Expect(action.Kind).To(Equal(menu.ActionNotice))
			Expect(action.Notice).To(ContainSubstring("bob"))

			inbox, err := app.Store.Inbox("bob")
			Expect(err).NotTo(HaveOccurred())
			Expect(inbox).To(HaveLen(1))
			Expect(inbox[0].Subject).To(Equal("Greetings"))
		})

		It("rejects unknown recipients", func() {
			screen.HandleInput(ctx, "c")
			action := screen.HandleInput(ctx, "nobody")
			Expect(action.Kind).To(Equal(menu.ActionNotice))
			Expect(action.Notice).To(ContainSubstring("No such user"))
		})

		It("rejects over-long messages", func() {
			app.Config.Features.MaxMessageLength = 10

			screen.HandleInput(ctx, "c")
			screen.HandleInput(ctx, "bob")
			screen.HandleInput(ctx, "Subject")
			action := screen.HandleInput(ctx, "this body is longer than ten characters")
			Expect(action.Kind).To(Equal(menu.ActionNotice))
			Expect(action.Notice).To(ContainSubstring("too long"))
		})

		It("reads a message from the inbox and marks it read", func() {
			_, err := app.Store.SendMessage("bob", "alice", "Hi", "Hello Alice")
			Expect(err).NotTo(HaveOccurred())

			Expect(screen.HandleInput(ctx, "i").Kind).To(Equal(menu.ActionStay))
			Expect(screen.HandleInput(ctx, "1").Kind).To(Equal(menu.ActionStay))

			render := screen.Render(ctx)
			Expect(render.Title).To(Equal("READING MESSAGE"))

			count, err := app.Store.CountUnreadMessages("alice")
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(BeZero())
		})

		It("deletes a message from the reading view", func() {
			_, err := app.Store.SendMessage("bob", "alice", "Hi", "Hello Alice")
			Expect(err).NotTo(HaveOccurred())

			screen.HandleInput(ctx, "i")
			screen.HandleInput(ctx, "1")
			screen.HandleInput(ctx, "d")

			inbox, err := app.Store.Inbox("alice")
			Expect(err).NotTo(HaveOccurred())
			Expect(inbox).To(BeEmpty())
		})
	})

	Describe("UserScreen", func() {
		var screen *menu.UserScreen

		BeforeEach(func() {
			screen = menu.NewUserScreen()
		})

		It("lists registered users after toggling", func() {
			Expect(app.Store.CreateUser("carol", "password")).To(Succeed())

			Expect(screen.HandleInput(ctx, "l").Kind).To(Equal(menu.ActionStay))

			render := screen.Render(ctx)
			var lines []string
			for _, item := range render.Items {
				lines = append(lines, item.Label)
			}
			Expect(lines).To(ContainElement(ContainSubstring("carol")))
		})

		It("shows who is online from the node manager", func() {
			node, err := app.Nodes.Acquire()
			Expect(err).NotTo(HaveOccurred())
			defer app.Nodes.Release(node.ID)

			action := screen.HandleInput(ctx, "w")
			Expect(action.Kind).To(Equal(menu.ActionNotice))
			Expect(action.Notice).To(ContainSubstring("online"))
		})

		It("shows the profile only when logged in", func() {
			Expect(screen.HandleInput(ctx, "p").Kind).To(Equal(menu.ActionNotice))

			loginAs(ctx, "alice")
			action := screen.HandleInput(ctx, "p")
			Expect(action.Kind).To(Equal(menu.ActionNotice))
			Expect(action.Notice).To(ContainSubstring("alice"))
		})
	})
})

var _ = Describe("Context", func() {
	It("reports login state from the node", func() {
		bootTestApp()

		ctx := &menu.Context{Node: &nodes.Node{ID: 1}, Width: 80}
		Expect(ctx.LoggedIn()).To(BeFalse())
		Expect(ctx.Username()).To(Equal("Anonymous"))

		ctx.Node.User = &store.User{Username: "alice"}
		Expect(ctx.LoggedIn()).To(BeTrue())
		Expect(ctx.Username()).To(Equal("alice"))
	})
})
