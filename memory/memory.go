package memory

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"vsasakiv/sixfive/apu"
)

// Memory map
//
//	0x00 - 0x7F  ROM, 64 big endian words of the selected bank (read only)
//	0x80 - 0x9F  RAM
//	0xA0 - 0xAF  sound chip registers
//	0xB0 - 0xEF  unimplemented
//	0xF0 - 0xFB  undefined trampoline addresses
//	0xFC - 0xFF  trampoline vectors A - D (read only)
const (
	RomStart        uint8 = 0x00
	RamStart        uint8 = 0x80
	RamSize               = 0x20
	SoundStart      uint8 = 0xA0
	UnusedStart     uint8 = 0xB0
	TrampolineStart uint8 = 0xF0
	VectorStart     uint8 = 0xFC
)

type Region uint8

const (
	RegionRom Region = iota
	RegionRam
	RegionSound
	RegionUnimplemented
	RegionUndefinedTrampoline
	RegionVector
)

func (region Region) String() string {
	switch region {
	case RegionRom:
		return "ROM"
	case RegionRam:
		return "RAM"
	case RegionSound:
		return "sound registers"
	case RegionUnimplemented:
		return "unimplemented"
	case RegionUndefinedTrampoline:
		return "undefined trampoline"
	case RegionVector:
		return "trampoline vectors"
	}
	return "unknown"
}

// owner of every address, built once
var regionTable = buildRegionTable()

func buildRegionTable() [256]Region {
	var table [256]Region
	for addr := 0; addr < 256; addr++ {
		switch {
		case addr < int(RamStart):
			table[addr] = RegionRom
		case addr < int(SoundStart):
			table[addr] = RegionRam
		case addr < int(UnusedStart):
			table[addr] = RegionSound
		case addr < int(TrampolineStart):
			table[addr] = RegionUnimplemented
		case addr < int(VectorStart):
			table[addr] = RegionUndefinedTrampoline
		default:
			table[addr] = RegionVector
		}
	}
	return table
}

// RegionOf returns which device owns an address.
func RegionOf(addr uint8) Region {
	return regionTable[addr]
}

type Access string

const (
	Read  Access = "read"
	Write Access = "write"
)

var (
	ErrReadOnly      = errors.New("region is read only")
	ErrUnimplemented = errors.New("region is not implemented")
)

// MemoryFault is returned by every access the memory map does not allow.
type MemoryFault struct {
	Address uint8
	Access  Access
	Region  Region
	Err     error
}

func (fault *MemoryFault) Error() string {
	return fmt.Sprintf("memory fault: %s of %s at $%02X: %v", fault.Access, fault.Region, fault.Address, fault.Err)
}

func (fault *MemoryFault) Unwrap() error {
	return fault.Err
}

// Rom is the selected ROM bank as seen from the cpu.
type Rom interface {
	Read(address uint8) uint8
}

// Vectors are the host owned trampoline flags. Only called for 0xFC - 0xFF.
type Vectors interface {
	ReadVector(address uint8) uint8
}

type Bus struct {
	Ram     [RamSize]uint8
	Sound   *apu.SoundChip
	rom     Rom
	vectors Vectors

	// addresses written since the last reset, only for dumping
	modified [256]bool
}

func NewBus(rom Rom, vectors Vectors, sound *apu.SoundChip) *Bus {
	return &Bus{rom: rom, vectors: vectors, Sound: sound}
}

// Reset clears RAM and the sound chip.
func (bus *Bus) Reset() {
	bus.Ram = [RamSize]uint8{}
	bus.modified = [256]bool{}
	bus.Sound.Reset()
}

func (bus *Bus) MemRead(addr uint8) (uint8, error) {
	switch regionTable[addr] {
	case RegionRom:
		return bus.rom.Read(addr), nil
	case RegionRam:
		return bus.Ram[addr-RamStart], nil
	case RegionSound:
		value, err := bus.Sound.Read(addr - SoundStart)
		if err != nil {
			return 0, &MemoryFault{Address: addr, Access: Read, Region: RegionSound, Err: err}
		}
		return value, nil
	case RegionVector:
		return bus.vectors.ReadVector(addr), nil
	default:
		return 0, &MemoryFault{Address: addr, Access: Read, Region: regionTable[addr], Err: ErrUnimplemented}
	}
}

func (bus *Bus) MemWrite(addr uint8, val uint8) error {
	switch regionTable[addr] {
	case RegionRam:
		bus.Ram[addr-RamStart] = val
	case RegionSound:
		if err := bus.Sound.Write(addr-SoundStart, val); err != nil {
			return &MemoryFault{Address: addr, Access: Write, Region: RegionSound, Err: err}
		}
	case RegionRom, RegionVector:
		return &MemoryFault{Address: addr, Access: Write, Region: regionTable[addr], Err: ErrReadOnly}
	default:
		return &MemoryFault{Address: addr, Access: Write, Region: regionTable[addr], Err: ErrUnimplemented}
	}
	bus.modified[addr] = true
	return nil
}

// SoundRegisters returns the 16 sound registers as the cpu reads them.
func (bus *Bus) SoundRegisters() [apu.RegisterCount]uint8 {
	var registers [apu.RegisterCount]uint8
	for i := range registers {
		registers[i], _ = bus.Sound.Read(uint8(i))
	}
	return registers
}

// DumpText lists every address written since the last reset with its
// current value, one "aa : vv" line each.
func (bus *Bus) DumpText() (string, error) {
	var content strings.Builder

	for i := 0; i < 256; i++ {
		if bus.modified[i] {
			val, err := bus.MemRead(uint8(i))
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&content, "%02x : %02x\n", i, val)
		}
	}
	return content.String(), nil
}

// HexDump writes DumpText to filename.
func (bus *Bus) HexDump(filename string) error {
	content, err := bus.DumpText()
	if err != nil {
		return err
	}
	return WriteHexDump(filename, content)
}

// WriteHexDump writes a dump produced by DumpText to filename.
func WriteHexDump(filename string, content string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("creating dump file: %w", err)
	}

	if _, err := file.WriteString(content); err != nil {
		file.Close()
		return fmt.Errorf("writing dump file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("writing dump file: %w", err)
	}
	return nil
}
