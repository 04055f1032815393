package controller

const A = 0
const B = 1
const C = 2
const D = 3

const VectorCount = 4

// first vector address, vector A
const vectorBase uint8 = 0xFC

// Vectors holds the trampoline flags A - D the cpu reads at 0xFC - 0xFF.
// Only the host writes them.
type Vectors struct {
	vectorStatus [VectorCount]bool
}

func NewVectors() *Vectors {
	var vectors Vectors
	return &vectors
}

// ParseVectors builds the flags from a list of set vector names, e.g. "AC".
func ParseVectors(names string) (*Vectors, error) {
	vectors := NewVectors()
	for _, name := range names {
		index, ok := VectorIndex(byte(name))
		if name > 0x7F || !ok {
			return nil, &InvalidVectorError{Name: name}
		}
		vectors.vectorStatus[index] = true
	}
	return vectors, nil
}

type InvalidVectorError struct {
	Name rune
}

func (e *InvalidVectorError) Error() string {
	return "invalid trampoline vector " + string(e.Name) + ", expected A - D"
}

// VectorIndex maps a vector name (either case) to its index.
func VectorIndex(name byte) (int, bool) {
	switch {
	case name >= 'A' && name <= 'D':
		return int(name - 'A'), true
	case name >= 'a' && name <= 'd':
		return int(name - 'a'), true
	}
	return 0, false
}

func (vectors *Vectors) ReadVector(address uint8) uint8 {
	if vectors.vectorStatus[(address-vectorBase)%VectorCount] {
		return 1
	}
	return 0
}

func (vectors *Vectors) Set(vector int, val bool) {
	vectors.vectorStatus[vector] = val
}

func (vectors *Vectors) Toggle(vector int) {
	vectors.vectorStatus[vector] = !vectors.vectorStatus[vector]
}

func (vectors *Vectors) Get(vector int) bool {
	return vectors.vectorStatus[vector]
}

func (vectors *Vectors) String() string {
	status := []byte("----")
	for i, set := range vectors.vectorStatus {
		if set {
			status[i] = byte('A' + i)
		}
	}
	return string(status)
}
