// Package profile holds a partial, human editable description of the
// device settings. Unset fields leave the device value alone.
package profile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"rs109m/internal/devconfig"
)

// Limits not enforced by the image itself
const (
	MinMMSI       = 100000000
	MaxMMSI       = 999999999
	MaxNameLength = 50
	MaxCallsign   = 6
	MaxVendorID   = 3
	MaxShipType   = 255
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid settings")

// Settings is the desired device configuration.
type Settings struct {
	MMSI         *int    `yaml:"mmsi,omitempty"`
	Name         *string `yaml:"name,omitempty"`
	Interval     *int    `yaml:"interval,omitempty"`
	ShipType     *int    `yaml:"ship_type,omitempty"`
	Callsign     *string `yaml:"callsign,omitempty"`
	VendorID     *string `yaml:"vendorid,omitempty"`
	UnitModel    *int    `yaml:"unitmodel,omitempty"`
	SerialNumber *int    `yaml:"sernum,omitempty"`
	RefA         *int    `yaml:"refa,omitempty"`
	RefB         *int    `yaml:"refb,omitempty"`
	RefC         *int    `yaml:"refc,omitempty"`
	RefD         *int    `yaml:"refd,omitempty"`
}

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// String returns a pointer to v.
func String(v string) *string { return &v }

// IsEmpty reports whether no field is set.
func (s Settings) IsEmpty() bool {
	return s == Settings{}
}

// Validate checks every set field and reports all problems at once.
func (s Settings) Validate() error {
	var errs []error
	checkInt := func(name string, v *int, lo, hi int) {
		if v != nil && (*v < lo || *v > hi) {
			errs = append(errs, fmt.Errorf("%w: %s must be between %d and %d, got %d", ErrInvalid, name, lo, hi, *v))
		}
	}
	checkLen := func(name string, v *string, limit int) {
		if v != nil && len(*v) > limit {
			errs = append(errs, fmt.Errorf("%w: %s must be at most %d characters, got %q", ErrInvalid, name, limit, *v))
		}
	}

	checkInt("mmsi", s.MMSI, MinMMSI, MaxMMSI)
	checkLen("name", s.Name, MaxNameLength)
	checkInt("interval", s.Interval, devconfig.MinInterval, devconfig.MaxInterval)
	checkInt("ship_type", s.ShipType, 0, MaxShipType)
	checkLen("callsign", s.Callsign, MaxCallsign)
	checkLen("vendorid", s.VendorID, MaxVendorID)
	checkInt("unitmodel", s.UnitModel, 0, devconfig.MaxUnitModel)
	checkInt("sernum", s.SerialNumber, 0, devconfig.MaxSerial)
	checkInt("refa", s.RefA, 0, devconfig.MaxRefAB)
	checkInt("refb", s.RefB, 0, devconfig.MaxRefAB)
	checkInt("refc", s.RefC, 0, devconfig.MaxRefCD)
	checkInt("refd", s.RefD, 0, devconfig.MaxRefCD)

	return errors.Join(errs...)
}

// Apply validates s and writes every set field into img. On error img may
// be partially updated.
func (s Settings) Apply(img *devconfig.Image) error {
	if err := s.Validate(); err != nil {
		return err
	}

	if s.MMSI != nil {
		img.SetMMSI(uint32(*s.MMSI))
	}
	if s.Name != nil {
		img.SetName(*s.Name)
	}
	if s.Interval != nil {
		img.SetInterval(*s.Interval)
	}
	if s.ShipType != nil {
		img.SetShipAndCargo(uint8(*s.ShipType))
	}

	setters := []struct {
		name string
		set  func() error
		ok   bool
	}{
		{"callsign", func() error { return img.SetCallsign(*s.Callsign) }, s.Callsign != nil},
		{"vendorid", func() error { return img.SetVendorID(*s.VendorID) }, s.VendorID != nil},
		{"unitmodel", func() error { return img.SetUnitModel(*s.UnitModel) }, s.UnitModel != nil},
		{"sernum", func() error { return img.SetSerialNumber(*s.SerialNumber) }, s.SerialNumber != nil},
		{"refa", func() error { return img.SetRefA(*s.RefA) }, s.RefA != nil},
		{"refb", func() error { return img.SetRefB(*s.RefB) }, s.RefB != nil},
		{"refc", func() error { return img.SetRefC(*s.RefC) }, s.RefC != nil},
		{"refd", func() error { return img.SetRefD(*s.RefD) }, s.RefD != nil},
	}
	for _, f := range setters {
		if !f.ok {
			continue
		}
		if err := f.set(); err != nil {
			return fmt.Errorf("failed to set %s: %w", f.name, err)
		}
	}
	return nil
}

// FromImage returns settings with every field taken from img.
func FromImage(img *devconfig.Image) Settings {
	return Settings{
		MMSI:         Int(int(img.MMSI())),
		Name:         String(img.Name()),
		Interval:     Int(img.Interval()),
		ShipType:     Int(int(img.ShipAndCargo())),
		Callsign:     String(img.Callsign()),
		VendorID:     String(img.VendorID()),
		UnitModel:    Int(img.UnitModel()),
		SerialNumber: Int(img.SerialNumber()),
		RefA:         Int(img.RefA()),
		RefB:         Int(img.RefB()),
		RefC:         Int(img.RefC()),
		RefD:         Int(img.RefD()),
	}
}

// Merge returns s with every field set in override replaced.
func (s Settings) Merge(override Settings) Settings {
	out := s
	pickInt := func(dst **int, v *int) {
		if v != nil {
			*dst = v
		}
	}
	pickString := func(dst **string, v *string) {
		if v != nil {
			*dst = v
		}
	}
	pickInt(&out.MMSI, override.MMSI)
	pickString(&out.Name, override.Name)
	pickInt(&out.Interval, override.Interval)
	pickInt(&out.ShipType, override.ShipType)
	pickString(&out.Callsign, override.Callsign)
	pickString(&out.VendorID, override.VendorID)
	pickInt(&out.UnitModel, override.UnitModel)
	pickInt(&out.SerialNumber, override.SerialNumber)
	pickInt(&out.RefA, override.RefA)
	pickInt(&out.RefB, override.RefB)
	pickInt(&out.RefC, override.RefC)
	pickInt(&out.RefD, override.RefD)
	return out
}

// Diff returns the yaml names of the fields whose values differ.
func Diff(a, b Settings) []string {
	var out []string
	ints := []struct {
		name string
		a, b *int
	}{
		{"mmsi", a.MMSI, b.MMSI},
		{"interval", a.Interval, b.Interval},
		{"ship_type", a.ShipType, b.ShipType},
		{"unitmodel", a.UnitModel, b.UnitModel},
		{"sernum", a.SerialNumber, b.SerialNumber},
		{"refa", a.RefA, b.RefA},
		{"refb", a.RefB, b.RefB},
		{"refc", a.RefC, b.RefC},
		{"refd", a.RefD, b.RefD},
	}
	for _, f := range ints {
		if (f.a == nil) != (f.b == nil) || (f.a != nil && *f.a != *f.b) {
			out = append(out, f.name)
		}
	}
	strs := []struct {
		name string
		a, b *string
	}{
		{"name", a.Name, b.Name},
		{"callsign", a.Callsign, b.Callsign},
		{"vendorid", a.VendorID, b.VendorID},
	}
	for _, f := range strs {
		if (f.a == nil) != (f.b == nil) || (f.a != nil && *f.a != *f.b) {
			out = append(out, f.name)
		}
	}
	return out
}

// Load reads settings from a YAML file. Unknown keys are rejected.
func Load(path string) (Settings, error) {
	var s Settings
	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("failed to read profile: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return Settings{}, fmt.Errorf("failed to parse profile %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("profile %s: %w", path, err)
	}
	return s, nil
}

// Save writes s to path as YAML.
func Save(path string, s Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}
	return nil
}
