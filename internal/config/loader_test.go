package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"lantern/internal/config"
)

var _ = Describe("Load", func() {
	var dir string

	writeFile := func(name, content string) string {
		path := filepath.Join(dir, name)
		Expect(os.WriteFile(path, []byte(content), 0o644)).To(Succeed())
		return path
	}

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "lantern-config")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(dir)
	})

	It("loads a flat config file", func() {
		path := writeFile("config.yml", `
debug: true
maxNodes: 5
general:
  boardName: Testboard
listeners:
  telnet:
    enabled: true
    port: 2323
`)

		cfg, err := config.Load(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Debug).To(BeTrue())
		Expect(cfg.MaxNodes).To(Equal(5))
		Expect(cfg.General.BoardName).To(Equal("Testboard"))
		Expect(cfg.Listeners.Telnet.Port).To(Equal(2323))
		Expect(cfg.LoadedFiles).To(HaveLen(1))
	})

	It("applies defaults for unset values", func() {
		path := writeFile("config.yml", `general: {boardName: Minimal}`)

		cfg, err := config.Load(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.MaxNodes).To(Equal(10))
		Expect(cfg.Features.MaxLoginAttempts).To(Equal(3))
		Expect(cfg.Features.MaxMessageLength).To(Equal(4000))
	})

	It("merges included files with the including file winning", func() {
		writeFile("base.yml", `
maxNodes: 4
general:
  boardName: Base
  sysopName: sysop
`)
		path := writeFile("config.yml", `
include:
  - base.yml
general:
  boardName: Overridden
`)

		cfg, err := config.Load(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.MaxNodes).To(Equal(4))
		Expect(cfg.General.BoardName).To(Equal("Overridden"))
		Expect(cfg.General.SysopName).To(Equal("sysop"))
		Expect(cfg.LoadedFiles).To(HaveLen(2))
	})

	It("survives include cycles", func() {
		writeFile("a.yml", "include: [b.yml]\nmaxNodes: 7\n")
		writeFile("b.yml", "include: [a.yml]\n")

		cfg, err := config.Load(filepath.Join(dir, "a.yml"))
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.MaxNodes).To(Equal(7))
	})

	It("expands environment variables", func() {
		os.Setenv("LANTERN_TEST_BOARD", "EnvBoard")
		defer os.Unsetenv("LANTERN_TEST_BOARD")

		path := writeFile("config.yml", `general: {boardName: $LANTERN_TEST_BOARD}`)

		cfg, err := config.Load(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.General.BoardName).To(Equal("EnvBoard"))
	})

	It("errors on missing files", func() {
		_, err := config.Load(filepath.Join(dir, "missing.yml"))
		Expect(err).To(HaveOccurred())
	})
})
