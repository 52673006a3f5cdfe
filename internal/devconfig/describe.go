package devconfig

import (
	"fmt"
	"strings"
)

// Describe renders every field as a labelled line.
func (img *Image) Describe() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "  MMSI: %d\n", img.MMSI())
	fmt.Fprintf(&sb, "  Name: %s\n", img.Name())
	fmt.Fprintf(&sb, "  TX interval (s): %d\n", img.Interval())
	fmt.Fprintf(&sb, "  Ship type: %d (%s)\n", img.ShipAndCargo(), ShipTypeName(img.ShipAndCargo()))
	fmt.Fprintf(&sb, "  Callsign: %s\n", img.Callsign())
	fmt.Fprintf(&sb, "  VendorID: %s\n", img.VendorID())
	fmt.Fprintf(&sb, "  UnitModel: %d\n", img.UnitModel())
	fmt.Fprintf(&sb, "  UnitSerial: %d\n", img.SerialNumber())
	fmt.Fprintf(&sb, "  Reference point A (m): %d (read-only battery voltage %.1fV)\n", img.RefA(), img.BatteryVoltage())
	fmt.Fprintf(&sb, "  Reference point B (m): %d\n", img.RefB())
	fmt.Fprintf(&sb, "  Reference point C (m): %d\n", img.RefC())
	fmt.Fprintf(&sb, "  Reference point D (m): %d", img.RefD())
	return sb.String()
}

// Hex renders the serialized bytes as "[ 0x04, 0x2d, ... ]".
func (img *Image) Hex(extended bool) string {
	data := img.Serialize(extended)
	parts := make([]string, len(data))
	for i, b := range data {
		parts[i] = fmt.Sprintf("0x%02x", b)
	}
	return "[ " + strings.Join(parts, ", ") + " ]"
}

// Report is Describe followed by a blank line and the hex dump.
func (img *Image) Report(extended bool) string {
	return img.Describe() + "\n\n" + img.Hex(extended)
}

// String implements fmt.Stringer with the regular-size hex dump.
func (img *Image) String() string {
	return img.Hex(false)
}
