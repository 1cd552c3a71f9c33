package telnet_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"lantern/internal/network/telnet"
)

// feedAll runs a stream through a fresh parser one chunk at a time and
// collects everything it produces.
func feedAll(chunks ...[]byte) ([]byte, []telnet.Command) {
	p := telnet.NewParser()
	var data []byte
	var cmds []telnet.Command
	for _, chunk := range chunks {
		d, c := p.Feed(chunk)
		data = append(data, d...)
		cmds = append(cmds, c...)
	}
	return data, cmds
}

var _ = Describe("Parser", func() {
	It("passes plain data through untouched", func() {
		data, cmds := feedAll([]byte("hello, world"))
		Expect(data).To(Equal([]byte("hello, world")))
		Expect(cmds).To(BeEmpty())
	})

	It("extracts a negotiation command from surrounding data", func() {
		data, cmds := feedAll([]byte{'a', telnet.IAC, telnet.DO, telnet.Echo, 'b'})
		Expect(data).To(Equal([]byte("ab")))
		Expect(cmds).To(HaveLen(1))
		Expect(cmds[0].Verb).To(Equal(telnet.DO))
		Expect(cmds[0].Option).To(Equal(telnet.Echo))
		Expect(cmds[0].IsNegotiation()).To(BeTrue())
	})

	It("decodes IAC IAC to a literal 255", func() {
		data, cmds := feedAll([]byte{'x', telnet.IAC, telnet.IAC, 'y'})
		Expect(data).To(Equal([]byte{'x', 0xFF, 'y'}))
		Expect(cmds).To(BeEmpty())
	})

	It("parses a sub-negotiation payload", func() {
		data, cmds := feedAll([]byte{
			telnet.IAC, telnet.SB, telnet.NAWS,
			0, 80, 0, 24,
			telnet.IAC, telnet.SE,
		})
		Expect(data).To(BeEmpty())
		Expect(cmds).To(HaveLen(1))
		Expect(cmds[0].IsSubNegotiation()).To(BeTrue())
		Expect(cmds[0].Option).To(Equal(telnet.NAWS))
		Expect(cmds[0].Data).To(Equal([]byte{0, 80, 0, 24}))
	})

	It("decodes an escaped 255 inside a sub-negotiation payload", func() {
		_, cmds := feedAll([]byte{
			telnet.IAC, telnet.SB, telnet.TType,
			telnet.IS, telnet.IAC, telnet.IAC, 'z',
			telnet.IAC, telnet.SE,
		})
		Expect(cmds).To(HaveLen(1))
		Expect(cmds[0].Data).To(Equal([]byte{telnet.IS, 0xFF, 'z'}))
	})

	It("parses simple commands with no option byte", func() {
		data, cmds := feedAll([]byte{telnet.IAC, telnet.AYT})
		Expect(data).To(BeEmpty())
		Expect(cmds).To(HaveLen(1))
		Expect(cmds[0].Verb).To(Equal(telnet.AYT))
		Expect(cmds[0].IsNegotiation()).To(BeFalse())
	})

	It("drops a stray SE with no open sub-negotiation", func() {
		data, cmds := feedAll([]byte{'a', telnet.IAC, telnet.SE, 'b'})
		Expect(data).To(Equal([]byte("ab")))
		Expect(cmds).To(BeEmpty())
	})

	Describe("chunk boundaries", func() {
		// The stream carries data, an escaped 255, a negotiation, and a
		// sub-negotiation. Splitting it at any byte must decode identically.
		stream := []byte{
			'h', 'i', telnet.IAC, telnet.IAC,
			telnet.IAC, telnet.WILL, telnet.NAWS,
			telnet.IAC, telnet.SB, telnet.NAWS, 0, 80, 0, 24, telnet.IAC, telnet.SE,
			'o', 'k',
		}

		It("decodes identically at every split point", func() {
			wantData, wantCmds := feedAll(stream)
			Expect(wantData).To(Equal([]byte{'h', 'i', 0xFF, 'o', 'k'}))
			Expect(wantCmds).To(HaveLen(2))

			for split := 1; split < len(stream); split++ {
				data, cmds := feedAll(stream[:split], stream[split:])
				Expect(data).To(Equal(wantData), "split at %d", split)
				Expect(cmds).To(Equal(wantCmds), "split at %d", split)
			}
		})

		It("decodes identically byte by byte", func() {
			p := telnet.NewParser()
			var data []byte
			var cmds []telnet.Command
			for _, b := range stream {
				d, c := p.Feed([]byte{b})
				data = append(data, d...)
				cmds = append(cmds, c...)
			}
			Expect(data).To(Equal([]byte{'h', 'i', 0xFF, 'o', 'k'}))
			Expect(cmds).To(HaveLen(2))
		})
	})

	Describe("incomplete sequences", func() {
		It("holds a trailing IAC until the next chunk", func() {
			p := telnet.NewParser()
			data, cmds := p.Feed([]byte{'a', telnet.IAC})
			Expect(data).To(Equal([]byte("a")))
			Expect(cmds).To(BeEmpty())
			Expect(p.Pending()).To(BeTrue())

			data, cmds = p.Feed([]byte{telnet.DO, telnet.SGA})
			Expect(data).To(BeEmpty())
			Expect(cmds).To(HaveLen(1))
			Expect(cmds[0].Verb).To(Equal(telnet.DO))
			Expect(p.Pending()).To(BeFalse())
		})

		It("holds an open sub-negotiation across chunks", func() {
			p := telnet.NewParser()
			_, cmds := p.Feed([]byte{telnet.IAC, telnet.SB, telnet.NAWS, 0, 80})
			Expect(cmds).To(BeEmpty())
			Expect(p.Pending()).To(BeTrue())

			_, cmds = p.Feed([]byte{0, 24, telnet.IAC, telnet.SE})
			Expect(cmds).To(HaveLen(1))
			Expect(cmds[0].Data).To(Equal([]byte{0, 80, 0, 24}))
		})

		It("resets to the plain-data state on Reset", func() {
			p := telnet.NewParser()
			p.Feed([]byte{telnet.IAC, telnet.SB, telnet.NAWS, 0})
			Expect(p.Pending()).To(BeTrue())

			p.Reset()
			Expect(p.Pending()).To(BeFalse())

			data, cmds := p.Feed([]byte("plain"))
			Expect(data).To(Equal([]byte("plain")))
			Expect(cmds).To(BeEmpty())
		})
	})
})
