package telnet_test

import (
	"io"
	"net"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"lantern/internal/app"
	"lantern/internal/network/telnet"
)

// readN reads exactly n bytes from the client side of the pipe.
func readN(conn net.Conn, n int) []byte {
	buf := make([]byte, n)
	_, err := io.ReadFull(conn, buf)
	Expect(err).NotTo(HaveOccurred())
	return buf
}

var _ = Describe("Connection", func() {
	var (
		serverConn net.Conn
		clientConn net.Conn
		connection *telnet.Connection
	)

	BeforeEach(func() {
		serverConn, clientConn = net.Pipe()
		connection = telnet.NewConnection(serverConn, app.Logger)
		connection.SetNegotiateTimeout(500 * time.Millisecond)

		// Set deadlines to prevent infinite hangs
		serverConn.SetDeadline(time.Now().Add(2 * time.Second))
		clientConn.SetDeadline(time.Now().Add(2 * time.Second))
	})

	AfterEach(func() {
		connection.Close()
		clientConn.Close()
	})

	// drain keeps the server side pumping so scripted client exchanges are
	// processed; it exits when the connection dies.
	drain := func() {
		go func() {
			defer GinkgoRecover()
			buf := make([]byte, 1024)
			for {
				if _, err := connection.Read(buf); err != nil {
					return
				}
			}
		}()
	}

	Context("Negotiation", func() {
		It("responds to DO ECHO with WILL ECHO", func() {
			drain()

			_, err := clientConn.Write([]byte{telnet.IAC, telnet.DO, telnet.Echo})
			Expect(err).NotTo(HaveOccurred())

			Expect(readN(clientConn, 3)).To(Equal([]byte{telnet.IAC, telnet.WILL, telnet.Echo}))

			Eventually(connection.EchoSuppressed).Should(BeTrue())
		})

		It("responds to WILL NAWS with DO NAWS", func() {
			drain()

			_, err := clientConn.Write([]byte{telnet.IAC, telnet.WILL, telnet.NAWS})
			Expect(err).NotTo(HaveOccurred())

			Expect(readN(clientConn, 3)).To(Equal([]byte{telnet.IAC, telnet.DO, telnet.NAWS}))
		})

		It("refuses options it has no use for", func() {
			drain()

			_, err := clientConn.Write([]byte{telnet.IAC, telnet.DO, telnet.Linemode})
			Expect(err).NotTo(HaveOccurred())

			Expect(readN(clientConn, 3)).To(Equal([]byte{telnet.IAC, telnet.WONT, telnet.Linemode}))
		})

		It("handles AYT", func() {
			drain()

			_, err := clientConn.Write([]byte{telnet.IAC, telnet.AYT})
			Expect(err).NotTo(HaveOccurred())

			Expect(readN(clientConn, 9)).To(Equal([]byte("\r\n[Yes]\r\n")))
		})
	})

	Context("Data stream", func() {
		It("strips protocol commands and unescapes IAC from inbound data", func() {
			var mu sync.Mutex
			var got []byte
			go func() {
				defer GinkgoRecover()
				buf := make([]byte, 1024)
				for {
					n, err := connection.Read(buf)
					if n > 0 {
						mu.Lock()
						got = append(got, buf[:n]...)
						mu.Unlock()
					}
					if err != nil {
						return
					}
				}
			}()

			payload := []byte{'h', 'e', telnet.IAC, telnet.NOP, 'l', 'l', 'o', telnet.IAC, telnet.IAC}
			_, err := clientConn.Write(payload)
			Expect(err).NotTo(HaveOccurred())

			Eventually(func() []byte {
				mu.Lock()
				defer mu.Unlock()
				return append([]byte(nil), got...)
			}).Should(Equal([]byte{'h', 'e', 'l', 'l', 'o', 0xFF}))
		})

		It("escapes 255 bytes in outbound data", func() {
			go func() {
				defer GinkgoRecover()
				n, err := connection.Write([]byte{1, 0xFF, 2})
				Expect(err).NotTo(HaveOccurred())
				Expect(n).To(Equal(3))
			}()

			Expect(readN(clientConn, 4)).To(Equal([]byte{1, telnet.IAC, telnet.IAC, 2}))
		})
	})

	Context("Blocking queries", func() {
		It("negotiates NAWS and returns the reported window size", func() {
			go func() {
				defer GinkgoRecover()
				Expect(readN(clientConn, 3)).To(Equal([]byte{telnet.IAC, telnet.DO, telnet.NAWS}))

				clientConn.Write([]byte{telnet.IAC, telnet.WILL, telnet.NAWS})
				clientConn.Write([]byte{
					telnet.IAC, telnet.SB, telnet.NAWS,
					0, 80, 0, 24,
					telnet.IAC, telnet.SE,
				})
			}()

			width, height, err := connection.QueryWindowSize()
			Expect(err).NotTo(HaveOccurred())
			Expect(width).To(Equal(80))
			Expect(height).To(Equal(24))

			caps := connection.Capabilities()
			Expect(caps.HasSize()).To(BeTrue())
			Expect(caps.Width).To(Equal(80))
			Expect(caps.Height).To(Equal(24))
		})

		It("returns zeros when the client refuses NAWS", func() {
			go func() {
				defer GinkgoRecover()
				Expect(readN(clientConn, 3)).To(Equal([]byte{telnet.IAC, telnet.DO, telnet.NAWS}))
				clientConn.Write([]byte{telnet.IAC, telnet.WONT, telnet.NAWS})
			}()

			width, height, err := connection.QueryWindowSize()
			Expect(err).NotTo(HaveOccurred())
			Expect(width).To(BeZero())
			Expect(height).To(BeZero())
		})

		It("returns zeros when the client never answers", func() {
			go func() {
				defer GinkgoRecover()
				// Client swallows the request and goes quiet
				readN(clientConn, 3)
			}()

			width, height, err := connection.QueryWindowSize()
			Expect(err).NotTo(HaveOccurred())
			Expect(width).To(BeZero())
			Expect(height).To(BeZero())
		})

		It("negotiates Terminal-Type and classifies the answer", func() {
			go func() {
				defer GinkgoRecover()
				Expect(readN(clientConn, 3)).To(Equal([]byte{telnet.IAC, telnet.DO, telnet.TType}))

				clientConn.Write([]byte{telnet.IAC, telnet.WILL, telnet.TType})

				// The SEND query follows the WILL immediately
				Expect(readN(clientConn, 6)).To(Equal([]byte{
					telnet.IAC, telnet.SB, telnet.TType, telnet.SEND, telnet.IAC, telnet.SE,
				}))

				response := append([]byte{telnet.IAC, telnet.SB, telnet.TType, telnet.IS},
					[]byte("xterm-256color")...)
				response = append(response, telnet.IAC, telnet.SE)
				clientConn.Write(response)
			}()

			name, err := connection.QueryTerminalType()
			Expect(err).NotTo(HaveOccurred())
			Expect(name).To(Equal("xterm-256color"))

			caps := connection.Capabilities()
			Expect(caps.ANSI).To(BeTrue())
			Expect(caps.Color).To(BeTrue())
			Expect(caps.Depth).To(Equal(telnet.Color256))
			Expect(connection.IsUTF8()).To(BeTrue())
		})

		It("classifies unknown terminals conservatively", func() {
			go func() {
				defer GinkgoRecover()
				readN(clientConn, 3)
				clientConn.Write([]byte{telnet.IAC, telnet.WILL, telnet.TType})
				readN(clientConn, 6)

				response := append([]byte{telnet.IAC, telnet.SB, telnet.TType, telnet.IS},
					[]byte("dumb")...)
				response = append(response, telnet.IAC, telnet.SE)
				clientConn.Write(response)
			}()

			name, err := connection.QueryTerminalType()
			Expect(err).NotTo(HaveOccurred())
			Expect(name).To(Equal("dumb"))

			caps := connection.Capabilities()
			Expect(caps.ANSI).To(BeFalse())
			Expect(caps.Color).To(BeFalse())
			Expect(caps.Depth).To(Equal(telnet.Monochrome))
		})

		It("treats legacy BBS terminals as CP437", func() {
			go func() {
				defer GinkgoRecover()
				readN(clientConn, 3)
				clientConn.Write([]byte{telnet.IAC, telnet.WILL, telnet.TType})
				readN(clientConn, 6)

				response := append([]byte{telnet.IAC, telnet.SB, telnet.TType, telnet.IS},
					[]byte("SyncTERM")...)
				response = append(response, telnet.IAC, telnet.SE)
				clientConn.Write(response)
			}()

			name, err := connection.QueryTerminalType()
			Expect(err).NotTo(HaveOccurred())
			Expect(name).To(Equal("SyncTERM"))
			Expect(connection.IsUTF8()).To(BeFalse())
		})

		It("takes over and hands back echo", func() {
			go func() {
				defer GinkgoRecover()
				Expect(readN(clientConn, 3)).To(Equal([]byte{telnet.IAC, telnet.WILL, telnet.Echo}))
				clientConn.Write([]byte{telnet.IAC, telnet.DO, telnet.Echo})

				Expect(readN(clientConn, 3)).To(Equal([]byte{telnet.IAC, telnet.WONT, telnet.Echo}))
				clientConn.Write([]byte{telnet.IAC, telnet.DONT, telnet.Echo})
			}()

			Expect(connection.SetEcho(true)).To(Succeed())
			Expect(connection.EchoSuppressed()).To(BeTrue())

			Expect(connection.SetEcho(false)).To(Succeed())
			Expect(connection.EchoSuppressed()).To(BeFalse())
		})

		It("drops malformed NAWS payloads and keeps the prior size", func() {
			go func() {
				defer GinkgoRecover()
				readN(clientConn, 3)
				clientConn.Write([]byte{telnet.IAC, telnet.WILL, telnet.NAWS})
				clientConn.Write([]byte{
					telnet.IAC, telnet.SB, telnet.NAWS,
					0, 80, 0, 24,
					telnet.IAC, telnet.SE,
				})
				// Truncated report: three bytes instead of four
				clientConn.Write([]byte{
					telnet.IAC, telnet.SB, telnet.NAWS,
					0, 132, 0,
					telnet.IAC, telnet.SE,
				})
			}()

			width, height, err := connection.QueryWindowSize()
			Expect(err).NotTo(HaveOccurred())
			Expect(width).To(Equal(80))
			Expect(height).To(Equal(24))

			drain()
			Consistently(func() int {
				return connection.Capabilities().Width
			}, 200*time.Millisecond).Should(Equal(80))
		})
	})
})
