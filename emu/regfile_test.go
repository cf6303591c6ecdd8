package emu_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/arcsim/emu"
)

// bankSlots lists the physical slot of R8-R14 in each mode.
var bankSlots = map[emu.Mode][7]int{
	emu.ModeUser: {8, 9, 10, 11, 12, 13, 14},
	emu.ModeFIRQ: {16, 17, 18, 19, 20, 21, 22},
	emu.ModeIRQ:  {8, 9, 10, 11, 12, 23, 24},
	emu.ModeSVC:  {8, 9, 10, 11, 12, 25, 26},
}

var allModes = []emu.Mode{emu.ModeUser, emu.ModeFIRQ, emu.ModeIRQ, emu.ModeSVC}

var _ = Describe("RegFile", func() {
	var regFile *emu.RegFile

	BeforeEach(func() {
		regFile = &emu.RegFile{}
	})

	It("should start in user mode", func() {
		Expect(regFile.Mode()).To(Equal(emu.ModeUser))
	})

	Describe("banking", func() {
		It("should keep the SVC R13 across an IRQ write", func() {
			regFile.SetMode(emu.ModeSVC)
			regFile.WriteReg(13, 0x11)
			regFile.SetMode(emu.ModeIRQ)
			regFile.WriteReg(13, 0x22)
			regFile.SetMode(emu.ModeSVC)

			Expect(regFile.ReadReg(13)).To(Equal(uint32(0x11)))
		})

		It("should share R0-R7 between all modes", func() {
			for reg := uint8(0); reg < 8; reg++ {
				regFile.SetMode(emu.ModeFIRQ)
				regFile.WriteReg(reg, uint32(reg)+0x100)
				for _, m := range allModes {
					regFile.SetMode(m)
					Expect(regFile.ReadReg(reg)).To(Equal(uint32(reg) + 0x100))
				}
			}
		})

		DescribeTable("R8-R14 across modes",
			func(first, second emu.Mode) {
				for reg := uint8(8); reg <= 14; reg++ {
					regFile.SetMode(first)
					regFile.WriteReg(reg, 0x11)
					regFile.SetMode(second)
					regFile.WriteReg(reg, 0x22)
					regFile.SetMode(first)

					expected := uint32(0x11)
					if bankSlots[first][reg-8] == bankSlots[second][reg-8] {
						expected = 0x22
					}
					Expect(regFile.ReadReg(reg)).To(Equal(expected), "R%d", reg)
				}
			},
			Entry("user then FIRQ", emu.ModeUser, emu.ModeFIRQ),
			Entry("user then IRQ", emu.ModeUser, emu.ModeIRQ),
			Entry("user then SVC", emu.ModeUser, emu.ModeSVC),
			Entry("FIRQ then user", emu.ModeFIRQ, emu.ModeUser),
			Entry("FIRQ then IRQ", emu.ModeFIRQ, emu.ModeIRQ),
			Entry("FIRQ then SVC", emu.ModeFIRQ, emu.ModeSVC),
			Entry("IRQ then user", emu.ModeIRQ, emu.ModeUser),
			Entry("IRQ then FIRQ", emu.ModeIRQ, emu.ModeFIRQ),
			Entry("IRQ then SVC", emu.ModeIRQ, emu.ModeSVC),
			Entry("SVC then user", emu.ModeSVC, emu.ModeUser),
			Entry("SVC then FIRQ", emu.ModeSVC, emu.ModeFIRQ),
			Entry("SVC then IRQ", emu.ModeSVC, emu.ModeIRQ),
		)

		It("should never bank R15", func() {
			regFile.WriteRegMasked(15, 0x1000)
			for _, m := range allModes {
				regFile.SetMode(m)
				Expect(regFile.PC()).To(Equal(uint32(0x1000)))
			}
		})
	})

	Describe("R15", func() {
		BeforeEach(func() {
			regFile.WriteReg(15, emu.FlagN|emu.FlagC|0x00001000|uint32(emu.ModeIRQ))
		})

		It("should change only the PC bits on a masked write", func() {
			regFile.WriteRegMasked(15, 0xFFFFFFFF)

			Expect(regFile.ReadReg(15)).To(Equal(emu.FlagN | emu.FlagC | emu.PCMask | uint32(emu.ModeIRQ)))
			Expect(regFile.Mode()).To(Equal(emu.ModeIRQ))
		})

		It("should return only the PC bits on a masked read", func() {
			Expect(regFile.ReadRegMasked(15)).To(Equal(uint32(0x1000)))
			Expect(regFile.PC()).To(Equal(uint32(0x1000)))
		})

		It("should replace the whole word on a full write", func() {
			regFile.WriteReg(15, emu.FlagZ|0x2000|uint32(emu.ModeSVC))

			Expect(regFile.ReadReg(15)).To(Equal(emu.FlagZ | 0x2000 | uint32(emu.ModeSVC)))
			Expect(regFile.Mode()).To(Equal(emu.ModeSVC))
			Expect(regFile.PSR() & emu.FlagN).To(BeZero())
		})

		It("should leave the flags alone when switching mode", func() {
			regFile.SetMode(emu.ModeFIRQ)

			Expect(regFile.ReadReg(15)).To(Equal(emu.FlagN | emu.FlagC | 0x1000 | uint32(emu.ModeFIRQ)))
		})
	})

	It("should treat masked access to other registers as full access", func() {
		regFile.WriteRegMasked(3, 0xF0000003)
		Expect(regFile.ReadReg(3)).To(Equal(uint32(0xF0000003)))
		Expect(regFile.ReadRegMasked(3)).To(Equal(uint32(0xF0000003)))
	})

	It("should panic on an out of range register", func() {
		Expect(func() { regFile.ReadReg(16) }).To(Panic())
	})

	It("should dump the visible registers", func() {
		regFile.WriteReg(15, emu.FlagZ|0x8000|uint32(emu.ModeSVC))
		regFile.WriteReg(13, 0xDEADBEEF)

		var buf bytes.Buffer
		regFile.Dump(&buf)

		Expect(buf.String()).To(ContainSubstring("R13=DEADBEEF"))
		Expect(buf.String()).To(ContainSubstring("PC=00008000  nZcv  SVC"))
	})
})
