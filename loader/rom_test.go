package loader_test

import (
	"bytes"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/arcsim/emu"
	"github.com/sarchlab/arcsim/loader"
)

var _ = Describe("ROM Loader", func() {
	var tempDir string

	BeforeEach(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "rom-loader-test")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		_ = os.RemoveAll(tempDir)
	})

	Describe("Load", func() {
		It("should read little-endian words", func() {
			path := filepath.Join(tempDir, "test.rom")
			Expect(os.WriteFile(path, []byte{
				0x04, 0x00, 0x80, 0xE2, // ADD R0, R0, #4
				0x00, 0x00, 0x00, 0xEB, // BL +0
			}, 0o644)).To(Succeed())

			rom, err := loader.Load(path)

			Expect(err).NotTo(HaveOccurred())
			Expect(rom.Size).To(Equal(8))
			Expect(rom.Words).To(HaveLen(emu.ROMWords))
			Expect(rom.Words[0]).To(Equal(uint32(0xE2800004)))
			Expect(rom.Words[1]).To(Equal(uint32(0xEB000000)))
			Expect(rom.Words[2]).To(BeZero())
		})

		It("should fail for a missing file", func() {
			_, err := loader.Load(filepath.Join(tempDir, "missing.rom"))
			Expect(err).To(MatchError(os.ErrNotExist))
		})
	})

	Describe("Read", func() {
		It("should zero-fill a partial trailing word", func() {
			rom, err := loader.Read(bytes.NewReader([]byte{0x11, 0x22, 0x33, 0x44, 0x55}))

			Expect(err).NotTo(HaveOccurred())
			Expect(rom.Words[0]).To(Equal(uint32(0x44332211)))
			Expect(rom.Words[1]).To(Equal(uint32(0x55)))
			Expect(rom.Size).To(Equal(5))
		})

		It("should accept a full-size image", func() {
			data := make([]byte, loader.MaxImageSize)
			data[len(data)-1] = 0xAA

			rom, err := loader.Read(bytes.NewReader(data))

			Expect(err).NotTo(HaveOccurred())
			Expect(rom.Words[emu.ROMWords-1]).To(Equal(uint32(0xAA000000)))
		})

		It("should reject an oversized image", func() {
			_, err := loader.Read(bytes.NewReader(make([]byte, loader.MaxImageSize+4)))
			Expect(err).To(MatchError(loader.ErrImageTooLarge))
		})

		It("should reject an empty image", func() {
			_, err := loader.Read(bytes.NewReader(nil))
			Expect(err).To(MatchError(loader.ErrEmptyImage))
		})
	})
})
