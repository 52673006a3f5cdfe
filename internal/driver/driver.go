// Package driver implements the RS-109M configuration protocol: a password
// handshake followed by a read or write of the configuration image.
package driver

import (
	"bytes"
	"fmt"
	"regexp"

	"github.com/sirupsen/logrus"

	"rs109m/internal/channel"
	"rs109m/internal/devconfig"
	"rs109m/internal/wire"
)

var passwordPattern = regexp.MustCompile(fmt.Sprintf(`^[0-9]{0,%d}$`, wire.PasswordLength))

// State is the handshake state of a Driver.
type State int

const (
	// Idle means no handshake has been performed in the current session.
	Idle State = iota
	// Handshaken means the device accepted the password.
	Handshaken
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Handshaken:
		return "handshaken"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Password returns p for use as an optional password argument.
func Password(p string) *string {
	return &p
}

// ValidatePassword checks the 0 to 6 digit password format.
func ValidatePassword(p string) error {
	if !passwordPattern.MatchString(p) {
		return fmt.Errorf("%w: got %q", ErrInvalidPassword, p)
	}
	return nil
}

// Driver talks to one device over a Channel. Calls must be serialized by
// the caller.
type Driver struct {
	ch     channel.Channel
	logger *logrus.Logger
	state  State
	batch  bool
}

// New returns an idle driver using ch.
func New(ch channel.Channel, logger *logrus.Logger) *Driver {
	if logger == nil {
		logger = logrus.New()
	}
	return &Driver{
		ch:     ch,
		logger: logger,
		state:  Idle,
	}
}

// State returns the current handshake state.
func (d *Driver) State() State {
	return d.state
}

// Handshake unlocks the device. A nil password sends the empty handshake;
// otherwise the password is completed with the default password to six bytes.
// It does nothing once the driver is Handshaken.
func (d *Driver) Handshake(password *string) error {
	if d.state == Handshaken {
		return nil
	}

	if password == nil {
		if err := d.send(wire.HandshakeCommand(0)); err != nil {
			return err
		}
	} else {
		if err := ValidatePassword(*password); err != nil {
			return err
		}
		if err := d.send(wire.HandshakeCommand(wire.PasswordLength)); err != nil {
			return err
		}
		if err := d.send(wire.PasswordPayload(*password)); err != nil {
			return err
		}
	}

	ack, err := d.receive(2)
	if err != nil {
		return err
	}
	if !bytes.Equal(ack, wire.HandshakeAck()) {
		return fmt.Errorf("%w: got [% x]", ErrHandshakeFailed, ack)
	}

	d.state = Handshaken
	d.logger.Debug("Handshake accepted")
	return nil
}

// ReadConfig handshakes and reads a regular (64 byte) or extended (255 byte)
// image. Bytes the device does not send keep their template values.
func (d *Driver) ReadConfig(password *string, extended bool) (*devconfig.Image, error) {
	if err := d.Handshake(password); err != nil {
		return nil, err
	}

	img, err := d.readImage(devconfig.Size(extended))
	if err := d.finish(err); err != nil {
		return nil, err
	}
	return img, nil
}

func (d *Driver) readImage(length int) (*devconfig.Image, error) {
	if err := d.send(wire.ReadCommand(length)); err != nil {
		return nil, err
	}

	header, err := d.receive(2)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(header, wire.ReadAck(length)) {
		return nil, fmt.Errorf("%w, got: [% x]", ErrReadHeaderMismatch, header)
	}

	data, err := d.receive(length)
	if err != nil {
		return nil, err
	}
	if len(data) != length {
		return nil, fmt.Errorf("%w: got %d of %d bytes", ErrIncompleteRead, len(data), length)
	}

	d.logger.WithField("length", length).Debug("Config read")
	return devconfig.FromBytes(data), nil
}

// WriteConfig handshakes and writes the first 64 (or 255 when extended)
// bytes of img. A failed write leaves the device in an unknown state; read
// it back to find out.
func (d *Driver) WriteConfig(img *devconfig.Image, password *string, extended bool) error {
	if err := d.Handshake(password); err != nil {
		return err
	}
	return d.finish(d.writeImage(img, devconfig.Size(extended)))
}

func (d *Driver) writeImage(img *devconfig.Image, length int) error {
	if err := d.send(wire.WriteCommand(length)); err != nil {
		return err
	}
	if err := d.send(img.Serialize(length == devconfig.ExtendedSize)); err != nil {
		return err
	}

	ack, err := d.receive(2)
	if err != nil {
		return err
	}
	if !bytes.Equal(ack, wire.WriteAck(length)) {
		return fmt.Errorf("%w: got [% x]", ErrWriteFailed, ack)
	}

	d.logger.WithField("length", length).Info("Config written successfully")
	return nil
}

// Batch runs fn with the handshake kept across the operations it performs,
// so a read-modify-write sequence handshakes once. The driver is Idle again
// when Batch returns.
func (d *Driver) Batch(fn func() error) error {
	outer := d.batch
	d.batch = true
	defer func() {
		d.batch = outer
		if !outer {
			d.state = Idle
		}
	}()
	return fn()
}

// finish resets the channel input after an operation and, outside a batch,
// returns the driver to Idle. The operation error takes precedence.
func (d *Driver) finish(opErr error) error {
	resetErr := d.ch.Reset()
	if !d.batch {
		d.state = Idle
	}
	if opErr != nil {
		return opErr
	}
	if resetErr != nil {
		return fmt.Errorf("failed to reset channel: %w", resetErr)
	}
	return nil
}

func (d *Driver) send(data []byte) error {
	d.logger.WithField("data", fmt.Sprintf("% x", data)).Debug("Sending")
	if err := d.ch.Write(data); err != nil {
		return fmt.Errorf("failed to write to device: %w", err)
	}
	return nil
}

func (d *Driver) receive(n int) ([]byte, error) {
	data, err := d.ch.Read(n)
	if err != nil {
		return nil, fmt.Errorf("failed to read from device: %w", err)
	}
	d.logger.WithFields(logrus.Fields{
		"requested": n,
		"data":      fmt.Sprintf("% x", data),
	}).Debug("Received")
	return data, nil
}
