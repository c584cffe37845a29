package models

import (
	"errors"
	"fmt"
	"strings"
)

// MaskSize is the number of toggles in a prompt mask.
const MaskSize = 6

// ErrInvalidMask is returned when a mask string is not six 0/1 characters.
var ErrInvalidMask = errors.New("mask must be a 6-digit binary string (e.g. 110011)")

// Mask positions, in the order the preamble blocks are emitted.
const (
	ToggleEutilsInstructions = iota
	ToggleBlastInstructions
	ToggleGeneAliasExample
	ToggleSNPGeneExample
	ToggleGeneDiseaseExample
	ToggleBlastAlignmentExample
)

// MaskLegend names each toggle position.
var MaskLegend = [MaskSize]string{
	"Eutils instructions",
	"BLAST instructions",
	"Gene alias example",
	"SNP-gene example",
	"Gene-disease example",
	"BLAST alignment example",
}

// Mask selects which instruction and example blocks appear in the preamble.
type Mask [MaskSize]bool

// ParseMask parses a string such as "110011".
func ParseMask(s string) (Mask, error) {
	var m Mask
	if len(s) != MaskSize {
		return m, fmt.Errorf("%w: got %q", ErrInvalidMask, s)
	}
	for i, c := range s {
		switch c {
		case '1':
			m[i] = true
		case '0':
		default:
			return Mask{}, fmt.Errorf("%w: got %q", ErrInvalidMask, s)
		}
	}
	return m, nil
}

func (m Mask) String() string {
	var b strings.Builder
	for _, on := range m {
		if on {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

// Any reports whether a toggle at position from or later is set.
func (m Mask) Any(from int) bool {
	for i := from; i < MaskSize; i++ {
		if m[i] {
			return true
		}
	}
	return false
}

// Legend returns MaskLegend keyed by position, as written to metadata.json.
func (m Mask) Legend() map[string]string {
	out := make(map[string]string, MaskSize)
	for i, name := range MaskLegend {
		out[fmt.Sprint(i)] = name
	}
	return out
}

// Translation maps each toggle name to its state.
func (m Mask) Translation() map[string]bool {
	out := make(map[string]bool, MaskSize)
	for i, name := range MaskLegend {
		out[name] = m[i]
	}
	return out
}
