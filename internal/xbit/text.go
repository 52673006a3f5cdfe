package xbit

// TextWidth is the symbol width of the alphanumeric text encoding.
const TextWidth = 6

// TextField describes how a fixed-capacity text field is stored.
type TextField struct {
	// Symbols is the number of characters the field holds.
	Symbols int
	// Reversed stores the first character in the highest symbol.
	Reversed bool
	// KeepTail keeps the trailing characters of over-long input instead of
	// the leading ones.
	KeepTail bool
}

// Bytes returns the number of bytes needed to hold the field's symbols.
func (f TextField) Bytes() int {
	return (f.Symbols*TextWidth + 7) / 8
}

// Decode reads the field's symbols from buf and returns the alphanumeric
// characters they spell. Symbols that do not decode to a letter or digit
// (padding, sentinel bytes) are dropped.
func (f TextField) Decode(buf []byte) (string, error) {
	syms, err := Unpack(buf, TextWidth, true)
	if err != nil {
		return "", err
	}
	if f.Symbols > 0 && f.Symbols < len(syms) {
		syms = syms[:f.Symbols]
	}
	if f.Reversed {
		reverse(syms)
	}
	return string(alnum(syms)), nil
}

// Encode packs s into exactly f.Bytes() bytes. Non-alphanumeric characters
// are removed and the remainder is cut to the field capacity. Short input is padded with zero symbols after the last character.
//
// An empty string encodes to the 0xFF sentinel, cut to the field size.
func (f TextField) Encode(s string) ([]byte, error) {
	syms := alnum(asciiUpper([]byte(s)))
	if len(syms) == 0 {
		return fit(Absent(), f.Bytes()), nil
	}

	if len(syms) > f.Symbols {
		if f.KeepTail {
			syms = syms[len(syms)-f.Symbols:]
		} else {
			syms = syms[:f.Symbols]
		}
	}
	padded := make([]byte, f.Symbols)
	copy(padded, syms)
	if f.Reversed {
		reverse(padded)
	}

	packed, err := Pack(padded, TextWidth, true)
	if err != nil {
		return nil, err
	}
	return fit(packed, f.Bytes()), nil
}

// DecodeText unpacks buf as 6-bit alphanumeric text of at most symbols
// characters, reversing the character order when reversed is set.
func DecodeText(buf []byte, symbols int, reversed bool) (string, error) {
	return TextField{Symbols: symbols, Reversed: reversed}.Decode(buf)
}

// EncodeText is the inverse of DecodeText. Over-long input keeps its
// leading characters.
func EncodeText(s string, symbols int, reversed bool) ([]byte, error) {
	return TextField{Symbols: symbols, Reversed: reversed}.Encode(s)
}

// fit truncates or zero-extends b to n bytes.
func fit(b []byte, n int) []byte {
	out := make([]byte, n)
	copy(out, b)
	return out
}

func reverse(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}

func isAlnum(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

func alnum(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for _, c := range b {
		if isAlnum(c) {
			out = append(out, c)
		}
	}
	return out
}
