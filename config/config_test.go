package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/arcsim/cache"
	"github.com/sarchlab/arcsim/config"
)

var _ = Describe("Config", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	It("should trace by default with the ARM3 cache geometry", func() {
		c := config.DefaultConfig()

		Expect(c.Trace).To(BeTrue())
		Expect(c.MaxInstructions).To(BeZero())
		Expect(c.Cache.Enabled).To(BeFalse())
		Expect(c.CacheModel()).To(Equal(cache.DefaultConfig()))
		Expect(c.Validate()).To(Succeed())
	})

	Describe("LoadConfig", func() {
		It("should keep defaults for fields missing from the file", func() {
			path := filepath.Join(dir, "run.json")
			Expect(os.WriteFile(path, []byte(`{
				"rom_path": "riscos.rom",
				"max_instructions": 1000,
				"cache": {"enabled": true}
			}`), 0644)).To(Succeed())

			c, err := config.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.ROMPath).To(Equal("riscos.rom"))
			Expect(c.MaxInstructions).To(Equal(uint64(1000)))
			Expect(c.Trace).To(BeTrue())
			Expect(c.Cache.Enabled).To(BeTrue())
			Expect(c.Cache.Size).To(Equal(4096))
		})

		It("should report a missing file", func() {
			_, err := config.LoadConfig(filepath.Join(dir, "missing.json"))
			Expect(err).To(MatchError(os.ErrNotExist))
			Expect(err.Error()).To(ContainSubstring("failed to read config file"))
		})

		It("should report malformed JSON", func() {
			path := filepath.Join(dir, "bad.json")
			Expect(os.WriteFile(path, []byte("{"), 0644)).To(Succeed())

			_, err := config.LoadConfig(path)
			Expect(err).To(MatchError(ContainSubstring("failed to parse config")))
		})
	})

	It("should round-trip through SaveConfig", func() {
		path := filepath.Join(dir, "saved.json")
		c := config.DefaultConfig()
		c.TracePath = "trace.log"
		c.Trace = false

		Expect(c.SaveConfig(path)).To(Succeed())

		loaded, err := config.LoadConfig(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded).To(Equal(c))
	})

	DescribeTable("Validate",
		func(mutate func(*config.Config), valid bool) {
			c := config.DefaultConfig()
			c.Cache.Enabled = true
			mutate(c)

			if valid {
				Expect(c.Validate()).To(Succeed())
			} else {
				Expect(c.Validate()).NotTo(Succeed())
			}
		},
		Entry("defaults", func(*config.Config) {}, true),
		Entry("non power of two line", func(c *config.Config) { c.Cache.BlockSize = 12 }, false),
		Entry("zero ways", func(c *config.Config) { c.Cache.Associativity = 0 }, false),
		Entry("ragged size", func(c *config.Config) { c.Cache.Size = 1000 }, false),
		Entry("direct mapped", func(c *config.Config) { c.Cache.Associativity = 1 }, true),
		Entry("disabled cache is not checked", func(c *config.Config) {
			c.Cache.Enabled = false
			c.Cache.BlockSize = 0
		}, true),
	)

	It("should clone independently", func() {
		c := config.DefaultConfig()
		clone := c.Clone()
		clone.Cache.Size = 1024

		Expect(c.Cache.Size).To(Equal(4096))
	})
})
