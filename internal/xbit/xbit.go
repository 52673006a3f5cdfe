// Package xbit packs fixed-width symbols into byte buffers and implements the
// 6-bit alphanumeric text encoding used by the transponder's callsign and
// vendor id fields.
//
// Symbols are laid out consecutively, least significant bit first within
// each byte, and may straddle a byte boundary.
package xbit

import (
	"errors"
	"fmt"
)

// Symbol width bounds
const (
	MinWidth = 1
	MaxWidth = 7
)

// Alpha-digit mapping constants
const (
	digitFlag  = 0x20 // set on symbols in the digit/punctuation half of the alphabet
	alphaMask  = 0x1F
	alphaFlag  = 0x40 // prefix that turns a 5-bit letter symbol into ASCII
	asciiLimit = 0x7F
)

var (
	// ErrInvalidWidth is returned for a symbol width outside [MinWidth, MaxWidth].
	ErrInvalidWidth = errors.New("xbit: symbol width must be between 1 and 7")
	// ErrEmptyInput is returned when unpacking an empty buffer.
	ErrEmptyInput = errors.New("xbit: empty input buffer")
)

// absentField is what Pack returns for an empty symbol sequence.
var absentField = [...]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}

// Absent returns a copy of the sentinel that marks a text field as not present.
func Absent() []byte {
	out := make([]byte, len(absentField))
	copy(out, absentField[:])
	return out
}

func checkWidth(width int) error {
	if width < MinWidth || width > MaxWidth {
		return fmt.Errorf("%w: got %d", ErrInvalidWidth, width)
	}
	return nil
}

// Unpack splits buf into len(buf)*8/width symbols of the given width.
//
// With alphaDigit set, every non-zero symbol that does not carry the digit
// flag is mapped into the uppercase letter range (symbol&0x1F | 0x40).
func Unpack(buf []byte, width int, alphaDigit bool) ([]byte, error) {
	if err := checkWidth(width); err != nil {
		return nil, err
	}
	if len(buf) == 0 {
		return nil, ErrEmptyInput
	}

	mask := byte(1<<width - 1)
	n := len(buf) * 8 / width
	out := make([]byte, n)

	for i := 0; i < n; i++ {
		pos := i * width / 8
		shift := uint(i * width % 8)

		sym := (buf[pos] >> shift) & mask
		if int(shift)+width > 8 {
			sym |= (buf[pos+1] << (8 - shift)) & mask
		}

		if alphaDigit && sym != 0 && sym&digitFlag == 0 {
			sym = sym&alphaMask | alphaFlag
		}
		out[i] = sym
	}

	return out, nil
}

// Pack is the inverse of Unpack. The result holds ceil(len(symbols)*width/8)
// bytes, at least one. An empty symbol sequence packs to the six-byte 0xFF
// sentinel returned by Absent.
//
// With alphaDigit set, symbols are treated as text: bytes outside 7-bit ASCII
// are dropped and lowercase letters are upper-cased before slicing.
func Pack(symbols []byte, width int, alphaDigit bool) ([]byte, error) {
	if err := checkWidth(width); err != nil {
		return nil, err
	}
	if len(symbols) == 0 {
		return Absent(), nil
	}

	if alphaDigit {
		symbols = asciiUpper(symbols)
	}

	mask := byte(1<<width - 1)
	n := (len(symbols)*width + 7) / 8
	if n == 0 {
		n = 1
	}
	out := make([]byte, n)

	for i, s := range symbols {
		pos := i * width / 8
		shift := uint(i * width % 8)
		sym := s & mask

		out[pos] |= sym << shift
		if int(shift)+width > 8 {
			out[pos+1] |= sym >> (8 - shift)
		}
	}

	return out, nil
}

// asciiUpper returns a copy of b without non-ASCII bytes, upper-cased.
func asciiUpper(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for _, c := range b {
		if c > asciiLimit {
			continue
		}
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		out = append(out, c)
	}
	return out
}
