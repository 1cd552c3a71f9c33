package store_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"lantern/internal/store"
)

var _ = Describe("Message Model", func() {
	var db *store.Store

	BeforeEach(func() {
		var err error
		db, err = store.New(":memory:", true)
		Expect(err).NotTo(HaveOccurred())

		Expect(db.CreateUser("alice", "pass")).To(Succeed())
		Expect(db.CreateUser("bob", "pass")).To(Succeed())
	})

	Describe("SendMessage", func() {
		It("delivers to the recipient's inbox and the sender's outbox", func() {
			_, err := db.SendMessage("alice", "bob", "Hi", "Hello Bob")
			Expect(err).NotTo(HaveOccurred())

			inbox, err := db.Inbox("bob")
			Expect(err).NotTo(HaveOccurred())
			Expect(inbox).To(HaveLen(1))
			Expect(inbox[0].Sender).To(Equal("alice"))
			Expect(inbox[0].Unread()).To(BeTrue())

			outbox, err := db.Outbox("alice")
			Expect(err).NotTo(HaveOccurred())
			Expect(outbox).To(HaveLen(1))
		})

		It("rejects unknown recipients", func() {
			_, err := db.SendMessage("alice", "nobody", "Hi", "text")
			Expect(err).To(MatchError(store.ErrUserNotFound))
		})
	})

	Describe("MarkMessageRead", func() {
		It("clears the unread state and count", func() {
			msg, err := db.SendMessage("alice", "bob", "Hi", "text")
			Expect(err).NotTo(HaveOccurred())

			count, _ := db.CountUnreadMessages("bob")
			Expect(count).To(Equal(int64(1)))

			Expect(db.MarkMessageRead(msg.ID)).To(Succeed())

			found, err := db.FindMessage(msg.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(found.Unread()).To(BeFalse())

			count, _ = db.CountUnreadMessages("bob")
			Expect(count).To(BeZero())
		})
	})

	Describe("DeleteMessageFor", func() {
		var id uint

		BeforeEach(func() {
			msg, err := db.SendMessage("alice", "bob", "Hi", "text")
			Expect(err).NotTo(HaveOccurred())
			id = msg.ID
		})

		It("hides the message from the deleting party only", func() {
			Expect(db.DeleteMessageFor(id, "bob")).To(Succeed())

			inbox, err := db.Inbox("bob")
			Expect(err).NotTo(HaveOccurred())
			Expect(inbox).To(BeEmpty())

			outbox, err := db.Outbox("alice")
			Expect(err).NotTo(HaveOccurred())
			Expect(outbox).To(HaveLen(1))
		})

		It("removes the message once both parties delete it", func() {
			Expect(db.DeleteMessageFor(id, "bob")).To(Succeed())
			Expect(db.DeleteMessageFor(id, "alice")).To(Succeed())

			_, err := db.FindMessage(id)
			Expect(err).To(HaveOccurred())
		})
	})
})
