package devconfig

import "fmt"

// The four reference offsets are packed into bytes 38-41:
//
//	byte 38: --AAAAAA   A bits 8..3
//	byte 39: AAABBBBB   A bits 2..0, B bits 8..4
//	byte 40: BBBBCCCC   B bits 3..0, C bits 5..2
//	byte 41: CCDDDDDD   C bits 1..0, D bits 5..0
//
// Each setter touches only the bits its getter reads.

// RefA returns reference offset A (bow, metres). Units without a GPS
// antenna offset report the battery voltage here in tenths of a volt.
func (img *Image) RefA() int {
	b := img.buf[referenceOffset:]
	return int(b[1]>>5) | int(b[0]&0x3F)<<3
}

// SetRefA stores reference offset A.
func (img *Image) SetRefA(a int) error {
	if err := checkRef("A", a, MaxRefAB); err != nil {
		return err
	}
	b := img.buf[referenceOffset:]
	b[0] = b[0]&^0x3F | byte(a>>3)&0x3F
	b[1] = b[1]&0x1F | byte(a&0x07)<<5
	return nil
}

// RefB returns reference offset B (stern, metres).
func (img *Image) RefB() int {
	b := img.buf[referenceOffset:]
	return int(b[2]>>4) | int(b[1]&0x1F)<<4
}

// SetRefB stores reference offset B.
func (img *Image) SetRefB(v int) error {
	if err := checkRef("B", v, MaxRefAB); err != nil {
		return err
	}
	b := img.buf[referenceOffset:]
	b[1] = b[1]&^0x1F | byte(v>>4)&0x1F
	b[2] = b[2]&0x0F | byte(v&0x0F)<<4
	return nil
}

// RefC returns reference offset C (port, metres).
func (img *Image) RefC() int {
	b := img.buf[referenceOffset:]
	return int(b[3]>>6) | int(b[2]&0x0F)<<2
}

// SetRefC stores reference offset C.
func (img *Image) SetRefC(c int) error {
	if err := checkRef("C", c, MaxRefCD); err != nil {
		return err
	}
	b := img.buf[referenceOffset:]
	b[2] = b[2]&^0x0F | byte(c>>2)&0x0F
	b[3] = b[3]&0x3F | byte(c&0x03)<<6
	return nil
}

// RefD returns reference offset D (starboard, metres).
func (img *Image) RefD() int {
	return int(img.buf[referenceOffset+3] & 0x3F)
}

// SetRefD stores reference offset D.
func (img *Image) SetRefD(d int) error {
	if err := checkRef("D", d, MaxRefCD); err != nil {
		return err
	}
	b := &img.buf[referenceOffset+3]
	*b = *b&^0x3F | byte(d)
	return nil
}

// BatteryVoltage interprets reference A as a battery reading in volts.
func (img *Image) BatteryVoltage() float64 {
	return float64(img.RefA()) / 10.0
}

func checkRef(name string, v, limit int) error {
	if v < 0 || v > limit {
		return fmt.Errorf("%w: reference %s %d not in [0, %d]", ErrRange, name, v, limit)
	}
	return nil
}
