package xbit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestUnpack tests symbol extraction from packed buffers
func TestUnpack(t *testing.T) {
	tests := []struct {
		name       string
		input      []byte
		width      int
		alphaDigit bool
		expected   []byte
	}{
		{
			name:       "Letter symbol is mapped into the ASCII letter range",
			input:      []byte{0x01, 0x00},
			width:      6,
			alphaDigit: true,
			expected:   []byte{65, 0},
		},
		{
			name:       "Raw symbols without alpha-digit mapping",
			input:      []byte{0x01, 0x00},
			width:      6,
			alphaDigit: false,
			expected:   []byte{1, 0},
		},
		{
			name:       "Seven bit symbol",
			input:      []byte{65},
			width:      7,
			alphaDigit: false,
			expected:   []byte{65},
		},
		{
			name:       "Symbols straddling byte boundaries",
			input:      []byte{0x41, 0x20, 0x0c},
			width:      6,
			alphaDigit: true,
			expected:   []byte{'A', 'A', 'B', 'C'},
		},
		{
			name:       "Digits keep their value",
			input:      []byte{0xb0, 0x0c},
			width:      6,
			alphaDigit: true,
			expected:   []byte{'0', '2'},
		},
		{
			name:       "Single bit symbols",
			input:      []byte{0xA5},
			width:      1,
			alphaDigit: false,
			expected:   []byte{1, 0, 1, 0, 0, 1, 0, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Unpack(tt.input, tt.width, tt.alphaDigit)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

// TestUnpack_Errors tests argument validation
func TestUnpack_Errors(t *testing.T) {
	_, err := Unpack([]byte{0xff}, 0, true)
	assert.ErrorIs(t, err, ErrInvalidWidth)

	_, err = Unpack([]byte{0xff}, 8, true)
	assert.ErrorIs(t, err, ErrInvalidWidth)

	_, err = Unpack([]byte{}, 6, true)
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = Unpack(nil, 6, false)
	assert.ErrorIs(t, err, ErrEmptyInput)
}

// TestPack tests symbol packing
func TestPack(t *testing.T) {
	tests := []struct {
		name       string
		input      []byte
		width      int
		alphaDigit bool
		expected   []byte
	}{
		{
			name:       "Single letter",
			input:      []byte("A"),
			width:      6,
			alphaDigit: true,
			expected:   []byte{1},
		},
		{
			name:       "Lowercase is upper-cased first",
			input:      []byte("a"),
			width:      6,
			alphaDigit: true,
			expected:   []byte{1},
		},
		{
			name:       "Raw byte is masked to the symbol width",
			input:      []byte{0xff},
			width:      6,
			alphaDigit: false,
			expected:   []byte{63},
		},
		{
			name:       "Seven bit letter",
			input:      []byte("A"),
			width:      7,
			alphaDigit: true,
			expected:   []byte{65},
		},
		{
			name:       "Three letters span three bytes",
			input:      []byte("ABC"),
			width:      6,
			alphaDigit: true,
			expected:   []byte{129, 48, 0},
		},
		{
			name:       "Seven symbols",
			input:      []byte("321LLAC"),
			width:      6,
			alphaDigit: true,
			expected:   []byte{179, 28, 51, 76, 48, 0},
		},
		{
			name:       "Non-ASCII input filtered to nothing still yields one byte",
			input:      []byte{0xC3, 0xA9},
			width:      6,
			alphaDigit: true,
			expected:   []byte{0},
		},
		{
			name:       "Empty input yields the absent sentinel",
			input:      []byte{},
			width:      6,
			alphaDigit: true,
			expected:   []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Pack(tt.input, tt.width, tt.alphaDigit)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

// TestPack_InvalidWidth tests width validation on packing
func TestPack_InvalidWidth(t *testing.T) {
	for _, width := range []int{-1, 0, 8, 9} {
		_, err := Pack([]byte("A"), width, true)
		assert.ErrorIs(t, err, ErrInvalidWidth, "width %d", width)
	}
}

// TestPackUnpack_RoundTrip tests that raw symbols survive packing at every width
func TestPackUnpack_RoundTrip(t *testing.T) {
	for width := MinWidth; width <= MaxWidth; width++ {
		symbols := make([]byte, 16)
		for i := range symbols {
			symbols[i] = byte(i*7+3) & byte(1<<width-1)
		}

		packed, err := Pack(symbols, width, false)
		require.NoError(t, err)
		assert.Len(t, packed, (len(symbols)*width+7)/8)

		unpacked, err := Unpack(packed, width, false)
		require.NoError(t, err)
		assert.Equal(t, symbols, unpacked[:len(symbols)], "width %d", width)
	}
}

// TestAbsent tests that the sentinel is handed out as an independent copy
func TestAbsent(t *testing.T) {
	a := Absent()
	a[0] = 0
	assert.Equal(t, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}, Absent())
}
