package mappers

import (
	"fmt"
	"vsasakiv/sixfive/cartridge"
)

// BankMapper switches between the four banks of a cartridge and serves the
// selected one to the memory bus as big endian bytes at 0x00 - 0x7F. The
// cartridge stays editable while mapped.
type BankMapper struct {
	cartridge  *cartridge.Cartridge
	bankSelect int
}

func NewMapper(cartridge *cartridge.Cartridge) *BankMapper {
	return &BankMapper{cartridge: cartridge}
}

func (mapper *BankMapper) Read(address uint8) uint8 {
	word := mapper.cartridge.Banks[mapper.bankSelect][(address>>1)%cartridge.BankWords]
	if address&0b1 == 0 {
		return uint8(word >> 8)
	}
	return uint8(word)
}

func (mapper *BankMapper) SelectBank(bank int) error {
	if bank < 0 || bank >= cartridge.BankCount {
		return fmt.Errorf("bank %d out of range", bank)
	}
	mapper.bankSelect = bank
	return nil
}

func (mapper *BankMapper) Bank() int {
	return mapper.bankSelect
}

func (mapper *BankMapper) Cartridge() *cartridge.Cartridge {
	return mapper.cartridge
}

// SetWord edits one word of any bank, selected or not.
func (mapper *BankMapper) SetWord(bank int, index int, word uint16) error {
	if bank < 0 || bank >= cartridge.BankCount || index < 0 || index >= cartridge.BankWords {
		return fmt.Errorf("word %s:%d out of range", cartridge.BankName(bank), index)
	}
	mapper.cartridge.Banks[bank][index] = word
	return nil
}

func (mapper *BankMapper) Word(bank int, index int) uint16 {
	return mapper.cartridge.Banks[bank][index]
}
