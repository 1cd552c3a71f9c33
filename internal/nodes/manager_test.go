package nodes_test

import (
	"net"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"lantern/internal/nodes"
)

// fakeConn records what was sent to it.
type fakeConn struct {
	sent []string
}

func (f *fakeConn) Send(msg string) error {
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeConn) RemoteAddr() net.Addr                { return nil }
func (f *fakeConn) GetTerminalInfo() nodes.TerminalInfo { return nodes.TerminalInfo{} }
func (f *fakeConn) IsUTF8() bool                        { return true }

var _ = Describe("Manager", func() {
	var manager *nodes.Manager

	BeforeEach(func() {
		manager = nodes.NewManager(2)
	})

	It("hands out the lowest free slot", func() {
		first, err := manager.Acquire()
		Expect(err).NotTo(HaveOccurred())
		Expect(first.ID).To(Equal(1))

		second, err := manager.Acquire()
		Expect(err).NotTo(HaveOccurred())
		Expect(second.ID).To(Equal(2))
	})

	It("refuses connections when full", func() {
		manager.Acquire()
		manager.Acquire()

		_, err := manager.Acquire()
		Expect(err).To(HaveOccurred())
	})

	It("reuses released slots", func() {
		first, _ := manager.Acquire()
		manager.Acquire()
		manager.Release(first.ID)

		node, err := manager.Acquire()
		Expect(err).NotTo(HaveOccurred())
		Expect(node.ID).To(Equal(1))
	})

	It("tracks active nodes", func() {
		Expect(manager.Active()).To(BeEmpty())

		node, _ := manager.Acquire()
		Expect(manager.Active()).To(HaveLen(1))
		Expect(manager.Get(node.ID)).To(Equal(node))

		manager.Release(node.ID)
		Expect(manager.Active()).To(BeEmpty())
		Expect(manager.Get(node.ID)).To(BeNil())
	})

	It("broadcasts to every connected node except one", func() {
		first, _ := manager.Acquire()
		second, _ := manager.Acquire()

		a, b := &fakeConn{}, &fakeConn{}
		first.Conn = a
		second.Conn = b

		manager.Broadcast("hello")
		Expect(a.sent).To(Equal([]string{"hello"}))
		Expect(b.sent).To(Equal([]string{"hello"}))

		manager.BroadcastExcept("bye", first.ID)
		Expect(a.sent).To(HaveLen(1))
		Expect(b.sent).To(Equal([]string{"hello", "bye"}))
	})
})
