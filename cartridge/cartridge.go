package cartridge

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const BankCount = 4
const BankWords = 64

// each bank fills the whole 128 byte rom region
const BankSize = BankWords * 2

type Bank [BankWords]uint16

// Cartridge holds the four rom banks A - D. Words are big endian in the
// address space, so word i sits at addresses 2i (high byte) and 2i+1.
type Cartridge struct {
	Banks [BankCount]Bank
}

// ParseError reports a malformed line of a text image.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// BankIndex converts a bank name (A - D, case insensitive) to its index.
func BankIndex(name string) (int, error) {
	if len(name) != 1 {
		return 0, fmt.Errorf("invalid bank %q, expected A - D", name)
	}
	index := int(strings.ToUpper(name)[0]) - 'A'
	if index < 0 || index >= BankCount {
		return 0, fmt.Errorf("invalid bank %q, expected A - D", name)
	}
	return index, nil
}

func BankName(index int) string {
	return string(rune('A' + index))
}

// ReadFromFile loads a rom image. Files ending in .bin are raw big endian
// words, everything else is read as a text image.
func ReadFromFile(path string) (*Cartridge, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening rom image: %w", err)
	}
	defer file.Close()

	var cartridge *Cartridge
	if strings.EqualFold(filepath.Ext(path), ".bin") {
		data, err := io.ReadAll(file)
		if err != nil {
			return nil, fmt.Errorf("reading rom image: %w", err)
		}
		cartridge, err = ParseBinary(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return cartridge, nil
	}

	cartridge, err = ParseText(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cartridge, nil
}

// ParseBinary reads up to four banks of 128 bytes each. Missing banks stay
// zero.
func ParseBinary(data []byte) (*Cartridge, error) {
	if len(data)%BankSize != 0 || len(data) > BankCount*BankSize {
		return nil, fmt.Errorf("binary image has %d bytes, expected a multiple of %d up to %d",
			len(data), BankSize, BankCount*BankSize)
	}

	var cartridge Cartridge
	reader := bytes.NewReader(data)
	for bank := 0; bank < len(data)/BankSize; bank++ {
		if err := binary.Read(reader, binary.BigEndian, &cartridge.Banks[bank]); err != nil {
			return nil, fmt.Errorf("reading bank %s: %w", BankName(bank), err)
		}
	}
	return &cartridge, nil
}

// ParseText reads a text image:
//
//	; comment
//	bank A
//	00: 1001 2001
//	4000
//
// Words are up to four hex digits and fill the current bank in order. A
// "bank X" line switches bank and rewinds to word 0, an "XX:" prefix moves
// to that (even) byte address. Lines before any bank header go to bank A.
func ParseText(r io.Reader) (*Cartridge, error) {
	var cartridge Cartridge
	bank := 0
	word := 0

	scanner := bufio.NewScanner(r)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := scanner.Text()
		if i := strings.IndexByte(line, ';'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		if strings.EqualFold(fields[0], "bank") {
			if len(fields) != 2 {
				return nil, &ParseError{Line: lineNumber, Msg: "expected \"bank X\""}
			}
			index, err := BankIndex(fields[1])
			if err != nil {
				return nil, &ParseError{Line: lineNumber, Msg: err.Error()}
			}
			bank = index
			word = 0
			continue
		}

		if label, ok := strings.CutSuffix(fields[0], ":"); ok {
			address, err := strconv.ParseUint(label, 16, 8)
			if err != nil || address&0b1 != 0 || address >= BankSize {
				return nil, &ParseError{Line: lineNumber, Msg: fmt.Sprintf("invalid address %q", label)}
			}
			word = int(address) / 2
			fields = fields[1:]
		}

		for _, field := range fields {
			field = strings.TrimPrefix(strings.TrimPrefix(field, "$"), "0x")
			value, err := strconv.ParseUint(field, 16, 16)
			if err != nil {
				return nil, &ParseError{Line: lineNumber, Msg: fmt.Sprintf("invalid word %q", field)}
			}
			if word >= BankWords {
				return nil, &ParseError{Line: lineNumber, Msg: fmt.Sprintf("bank %s overflows %d words", BankName(bank), BankWords)}
			}
			cartridge.Banks[bank][word] = uint16(value)
			word++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading text image: %w", err)
	}
	return &cartridge, nil
}

// WriteText writes every bank in the format ParseText reads, eight words
// per line.
func (cartridge *Cartridge) WriteText(w io.Writer) error {
	writer := bufio.NewWriter(w)
	for bank := range cartridge.Banks {
		if bank > 0 {
			fmt.Fprintln(writer)
		}
		fmt.Fprintf(writer, "bank %s\n", BankName(bank))
		for word := 0; word < BankWords; word += 8 {
			fmt.Fprintf(writer, "%02X:", word*2)
			for _, value := range cartridge.Banks[bank][word : word+8] {
				fmt.Fprintf(writer, " %04X", value)
			}
			fmt.Fprintln(writer)
		}
	}
	return writer.Flush()
}

// WriteBinary writes all four banks as raw big endian words.
func (cartridge *Cartridge) WriteBinary(w io.Writer) error {
	return binary.Write(w, binary.BigEndian, cartridge.Banks)
}

// SaveToFile writes the image in the format its extension selects, the
// same way ReadFromFile reads it.
func (cartridge *Cartridge) SaveToFile(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating rom image: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".bin") {
		err = cartridge.WriteBinary(file)
	} else {
		err = cartridge.WriteText(file)
	}
	if err != nil {
		file.Close()
		return fmt.Errorf("writing rom image: %w", err)
	}
	return file.Close()
}
