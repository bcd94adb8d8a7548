package stego

import (
	"fmt"

	"github.com/ssargent/dctsteg/pkg/dct"
)

// DefaultStrength is the coefficient magnitude a written bit is pushed to.
const DefaultStrength = 25.0

// Position addresses one coefficient inside an 8x8 block.
type Position struct {
	Row int `yaml:"row" json:"row"`
	Col int `yaml:"col" json:"col"`
}

// Params is the configuration shared by the embedder and the extractor.
// Both sides must use identical values; a mismatch does not fail loudly, it
// silently produces garbage on extraction.
type Params struct {
	// Positions lists the coefficients written in each block, in write order.
	// Its length is the number of bits carried per block.
	Positions []Position
	// Strength is the minimum magnitude of a written coefficient.
	Strength float64
}

// DefaultParams returns four mid-frequency positions and a strength of 25.
func DefaultParams() Params {
	return Params{
		Positions: []Position{
			{Row: 4, Col: 1},
			{Row: 3, Col: 4},
			{Row: 5, Col: 2},
			{Row: 2, Col: 5},
		},
		Strength: DefaultStrength,
	}
}

// BitsPerBlock returns the number of bits carried by one block.
func (p Params) BitsPerBlock() int {
	return len(p.Positions)
}

// Validate checks that the positions are usable and the strength is positive.
func (p Params) Validate() error {
	if len(p.Positions) == 0 {
		return fmt.Errorf("at least one coefficient position is required")
	}
	if p.Strength <= 0 {
		return fmt.Errorf("strength must be positive, got %v", p.Strength)
	}

	seen := make(map[Position]bool, len(p.Positions))
	for _, pos := range p.Positions {
		if pos.Row < 0 || pos.Row >= dct.Size || pos.Col < 0 || pos.Col >= dct.Size {
			return fmt.Errorf("position (%d,%d) is outside the %dx%d block", pos.Row, pos.Col, dct.Size, dct.Size)
		}
		if pos.Row == 0 && pos.Col == 0 {
			return fmt.Errorf("position (0,0) is the DC coefficient and cannot carry a sign")
		}
		if seen[pos] {
			return fmt.Errorf("duplicate position (%d,%d)", pos.Row, pos.Col)
		}
		seen[pos] = true
	}
	return nil
}
