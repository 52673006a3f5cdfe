// Package devconfig models the RS-109M configuration memory image and the
// named fields stored in it.
package devconfig

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"rs109m/internal/xbit"
)

// Field locations (byte offsets into the image)
const (
	intervalOffset   = 0
	mmsiOffset       = 1
	nameOffset       = 5
	nameLength       = 20
	sernumOffset     = 25
	unitModelOffset  = 27
	vendorOffset     = 28
	shipCargoOffset  = 31
	callsignOffset   = 32
	referenceOffset  = 38
	vendorTailBits   = 0x03 // bits of byte 30 holding the vendor id's top symbol
	intervalStepSecs = 30
)

// Field limits
const (
	MinInterval  = 30
	MaxInterval  = 600
	MaxUnitModel = 0x0F
	MaxSerial    = 1<<20 - 1
	MaxRefAB     = 1<<9 - 1
	MaxRefCD     = 1<<6 - 1
)

// ErrRange is returned by setters for values that do not fit their field.
var ErrRange = errors.New("devconfig: value out of range")

var (
	vendorField   = xbit.TextField{Symbols: 3, Reversed: true}
	callsignField = xbit.TextField{Symbols: 6, Reversed: true, KeepTail: true}
)

// Image is a configuration memory image. The zero value is not usable; use
// New or FromBytes.
//
// An Image is not safe for concurrent mutation.
type Image struct {
	buf [TemplateSize]byte
}

// New returns an image holding the factory template.
func New() *Image {
	return &Image{buf: template}
}

// FromBytes returns an image whose leading bytes are data. Bytes past
// len(data) keep the template values; data beyond TemplateSize is ignored.
func FromBytes(data []byte) *Image {
	img := New()
	copy(img.buf[:], data)
	return img
}

// Bytes returns a copy of the full image.
func (img *Image) Bytes() []byte {
	out := make([]byte, TemplateSize)
	copy(out, img.buf[:])
	return out
}

// Serialize returns the first DefaultSize bytes, or ExtendedSize bytes when
// extended is set.
func (img *Image) Serialize(extended bool) []byte {
	out := make([]byte, Size(extended))
	copy(out, img.buf[:])
	return out
}

// Clone returns an independent copy of the image.
func (img *Image) Clone() *Image {
	c := *img
	return &c
}

// MMSI returns the vessel identity.
func (img *Image) MMSI() uint32 {
	return binary.LittleEndian.Uint32(img.buf[mmsiOffset:])
}

// SetMMSI stores the vessel identity.
func (img *Image) SetMMSI(mmsi uint32) {
	binary.LittleEndian.PutUint32(img.buf[mmsiOffset:], mmsi)
}

// Name returns the ship name without surrounding whitespace.
func (img *Image) Name() string {
	return strings.TrimSpace(string(img.buf[nameOffset : nameOffset+nameLength]))
}

// SetName stores name upper-cased, restricted to ASCII and space padded or
// truncated to 20 characters.
func (img *Image) SetName(name string) {
	field := bytes.Repeat([]byte{' '}, nameLength)
	n := 0
	for i := 0; i < len(name) && n < nameLength; i++ {
		c := name[i]
		if c > 0x7F {
			continue
		}
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		field[n] = c
		n++
	}
	copy(img.buf[nameOffset:], field)
}

// Interval returns the reporting interval in seconds.
func (img *Image) Interval() int {
	return int(img.buf[intervalOffset]) * intervalStepSecs
}

// SetInterval stores the reporting interval, clamped to [30, 600] seconds
// and rounded down to a multiple of 30.
func (img *Image) SetInterval(seconds int) {
	if seconds > MaxInterval {
		seconds = MaxInterval
	}
	if seconds < MinInterval {
		seconds = MinInterval
	}
	img.buf[intervalOffset] = byte(seconds / intervalStepSecs)
}

// ShipAndCargo returns the raw AIS ship and cargo type code.
func (img *Image) ShipAndCargo() uint8 {
	return img.buf[shipCargoOffset]
}

// SetShipAndCargo stores the raw AIS ship and cargo type code.
func (img *Image) SetShipAndCargo(code uint8) {
	img.buf[shipCargoOffset] = code
}

// VendorID returns the three character manufacturer code.
func (img *Image) VendorID() string {
	// fixed-size window, decoding cannot fail
	s, _ := vendorField.Decode(img.buf[vendorOffset : vendorOffset+vendorField.Bytes()])
	return s
}

// SetVendorID stores up to three alphanumeric characters as the
// manufacturer code. Only the vendor id bits of byte 30 are modified.
func (img *Image) SetVendorID(vid string) error {
	enc, err := vendorField.Encode(vid)
	if err != nil {
		return fmt.Errorf("failed to encode vendor id: %w", err)
	}
	img.buf[vendorOffset] = enc[0]
	img.buf[vendorOffset+1] = enc[1]
	img.buf[vendorOffset+2] = img.buf[vendorOffset+2]&^vendorTailBits | enc[2]&vendorTailBits
	return nil
}

// UnitModel returns the vendor model code (high nibble of byte 27).
func (img *Image) UnitModel() int {
	return int(img.buf[unitModelOffset] >> 4)
}

// SetUnitModel stores the vendor model code, keeping the serial number bits
// that share byte 27.
func (img *Image) SetUnitModel(model int) error {
	if model < 0 || model > MaxUnitModel {
		return fmt.Errorf("%w: unit model %d not in [0, %d]", ErrRange, model, MaxUnitModel)
	}
	b := &img.buf[unitModelOffset]
	*b = *b&0x0F | byte(model)<<4
	return nil
}

// SerialNumber returns the 20-bit unit serial number.
func (img *Image) SerialNumber() int {
	b := img.buf[sernumOffset:]
	return int(b[0]) | int(b[1])<<8 | int(b[2]&0x0F)<<16
}

// SetSerialNumber stores the 20-bit unit serial number, keeping the unit
// model bits that share byte 27.
func (img *Image) SetSerialNumber(sernum int) error {
	if sernum < 0 || sernum > MaxSerial {
		return fmt.Errorf("%w: serial number %d not in [0, %d]", ErrRange, sernum, MaxSerial)
	}
	b := img.buf[sernumOffset:]
	b[0] = byte(sernum)
	b[1] = byte(sernum >> 8)
	b[2] = b[2]&0xF0 | byte(sernum>>16)&0x0F
	return nil
}

// Callsign returns the radio callsign.
func (img *Image) Callsign() string {
	// fixed-size window, decoding cannot fail
	s, _ := callsignField.Decode(img.buf[callsignOffset : callsignOffset+callsignField.Bytes()])
	return s
}

// SetCallsign stores the alphanumeric characters of cs. Only the last six
// fit; an empty callsign stores the 0xFF "not present" marker.
func (img *Image) SetCallsign(cs string) error {
	enc, err := callsignField.Encode(cs)
	if err != nil {
		return fmt.Errorf("failed to encode callsign: %w", err)
	}
	copy(img.buf[callsignOffset:], enc)
	return nil
}
