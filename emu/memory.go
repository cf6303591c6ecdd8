// Package emu provides functional ARM2 emulation.
package emu

import "fmt"

// Backing store sizes, in 32-bit words.
const (
	RAMWords = 1 << 20
	ROMWords = 1 << 20
)

// AddressMask restricts an address to the word-aligned 26-bit space.
const AddressMask uint32 = 0x03FFFFFC

// Memory map region bases.
const (
	LogicalRAMBase  uint32 = 0x00000000 // ROM overlay or logically mapped RAM
	PhysicalRAMBase uint32 = 0x02000000
	IOBase          uint32 = 0x03000000 // I/O controllers
	LowROMBase      uint32 = 0x03400000 // Low ROM on read, VIDC on write
	DMABase         uint32 = 0x03600000 // DMA/MEMC on write
	HighROMBase     uint32 = 0x03800000 // High ROM on read, address translator on write
)

// Exception vectors.
const (
	ResetVector                uint32 = 0x00
	UndefinedInstructionVector uint32 = 0x04
	SWIVector                  uint32 = 0x08
	PrefetchAbortVector        uint32 = 0x0C
	DataAbortVector            uint32 = 0x10
	AddressExceptionVector     uint32 = 0x14
	IRQVector                  uint32 = 0x18
	FIRQVector                 uint32 = 0x1C
)

// AccessObserver is notified of every memory access that completes.
// Writes are reported once a store region is implemented; today every
// store fails, so only loads reach the observer.
type AccessObserver interface {
	ObserveAccess(addr uint32, write bool)
}

// Memory is the ARM2 memory controller. It owns the RAM and ROM blocks and
// decodes the 26-bit address space into them.
//
// ROM is overlaid on the low logical region from reset. The first access at
// or above LowROMBase removes the overlay for the rest of the run.
type Memory struct {
	ram       []uint32
	rom       []uint32
	romMapped bool
	observer  AccessObserver
}

// NewMemory creates a memory controller with zeroed RAM and the given ROM
// contents. A ROM of exactly ROMWords words is used as is; any other length
// is copied into a zero-padded (or truncated) block.
func NewMemory(rom []uint32) *Memory {
	if len(rom) != ROMWords {
		padded := make([]uint32, ROMWords)
		copy(padded, rom)
		rom = padded
	}

	return &Memory{
		ram:       make([]uint32, RAMWords),
		rom:       rom,
		romMapped: true,
	}
}

// SetObserver installs an observer for completed accesses. nil removes it.
func (m *Memory) SetObserver(o AccessObserver) {
	m.observer = o
}

// ROMMapped reports whether ROM is still overlaid on the low region.
func (m *Memory) ROMMapped() bool {
	return m.romMapped
}

// Load reads the word containing address.
func (m *Memory) Load(address uint32) (uint32, error) {
	addr := address & AddressMask

	var value uint32
	switch {
	case addr < PhysicalRAMBase:
		// No logical-to-physical translation is modelled.
		if m.romMapped {
			value = m.rom[(addr>>2)&(ROMWords-1)]
		} else {
			value = m.ram[(addr>>2)&(RAMWords-1)]
		}
	case addr < IOBase:
		value = m.ram[((addr-PhysicalRAMBase)>>2)&(RAMWords-1)]
	case addr < LowROMBase:
		return 0, unimplementedRegion("load from", "I/O controllers", addr)
	case addr < HighROMBase:
		m.romMapped = false
		return 0, unimplementedRegion("load from", "low ROM", addr)
	default:
		m.romMapped = false
		value = m.rom[((addr-HighROMBase)>>2)&(ROMWords-1)]
	}

	m.observe(addr, false)
	return value, nil
}

// Store writes the word containing address. No region accepts writes yet;
// writes to the control regions still remove the ROM overlay.
func (m *Memory) Store(address, value uint32) error {
	addr := address & AddressMask
	access := fmt.Sprintf("store of 0x%08X to", value)

	switch {
	case addr < PhysicalRAMBase:
		return unimplementedRegion(access, "logically mapped RAM", addr)
	case addr < IOBase:
		return unimplementedRegion(access, "physically mapped RAM", addr)
	case addr < LowROMBase:
		return unimplementedRegion(access, "I/O controllers", addr)
	case addr < DMABase:
		m.romMapped = false
		return unimplementedRegion(access, "VIDC", addr)
	case addr < HighROMBase:
		m.romMapped = false
		return unimplementedRegion(access, "DMA/MEMC", addr)
	default:
		m.romMapped = false
		return unimplementedRegion(access, "address translator", addr)
	}
}

// LoadByte reads the byte at address.
func (m *Memory) LoadByte(address uint32) (uint8, error) {
	word, err := m.Load(address)
	if err != nil {
		return 0, err
	}
	return extractByte(word, address), nil
}

// StoreByte writes the byte at address as a word with the byte in its lane.
func (m *Memory) StoreByte(address uint32, value uint8) error {
	return m.Store(address, insertByte(value, address))
}

func (m *Memory) observe(addr uint32, write bool) {
	if m.observer != nil {
		m.observer.ObserveAccess(addr, write)
	}
}

// extractByte returns the lane of word selected by the low address bits.
func extractByte(word, address uint32) uint8 {
	return uint8(word >> ((address & 3) * 8))
}

// insertByte places value in the lane selected by the low address bits.
func insertByte(value uint8, address uint32) uint32 {
	return uint32(value) << ((address & 3) * 8)
}
