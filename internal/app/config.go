package app

import (
	"errors"
	"fmt"
	"time"

	"rs109m/internal/channel"
	"rs109m/internal/driver"
	"rs109m/internal/wire"
)

// Default configuration constants
const (
	DefaultBaudRate     = channel.DefaultBaudRate     // 38400 8N1
	DefaultReadTimeout  = channel.DefaultReadTimeout  // per read
	DefaultDrainTimeout = channel.DefaultDrainTimeout // initial input flush
	DefaultPassword     = wire.DefaultPassword
)

// ErrNoDevice is returned when neither a serial device nor mock mode is set.
var ErrNoDevice = errors.New("no device given, use --device or --mock")

// Config holds application configuration
type Config struct {
	Device          string
	BaudRate        int
	ReadTimeout     time.Duration
	Mock            bool
	Password        string
	NoPassword      bool
	Extended        bool
	SingleHandshake bool
	LogDir          string
	Verbose         bool
	ShowVersion     bool
}

// Validate checks that the configuration can reach a device.
func (c Config) Validate() error {
	if c.Device == "" && !c.Mock {
		return ErrNoDevice
	}
	if c.BaudRate < 0 {
		return fmt.Errorf("invalid baud rate %d", c.BaudRate)
	}
	if !c.NoPassword {
		if err := driver.ValidatePassword(c.Password); err != nil {
			return err
		}
	}
	return nil
}

// password returns the handshake password, nil for an empty handshake.
func (c Config) password() *string {
	if c.NoPassword {
		return nil
	}
	return driver.Password(c.Password)
}
