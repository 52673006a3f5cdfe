package channel

import (
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"go.bug.st/serial"
)

// Serial line defaults
const (
	DefaultBaudRate     = 38400
	DefaultReadTimeout  = 3 * time.Second
	DefaultDrainTimeout = 1 * time.Second
	drainChunk          = 0xFFFF
)

// SerialConfig describes how to open a serial transport.
type SerialConfig struct {
	Port         string
	BaudRate     int
	ReadTimeout  time.Duration
	DrainTimeout time.Duration
}

// withDefaults fills unset fields.
func (c SerialConfig) withDefaults() SerialConfig {
	if c.BaudRate == 0 {
		c.BaudRate = DefaultBaudRate
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	if c.DrainTimeout == 0 {
		c.DrainTimeout = DefaultDrainTimeout
	}
	return c
}

// port is the subset of serial.Port the transport needs.
type port interface {
	io.ReadWriteCloser
	ResetInputBuffer() error
	SetReadTimeout(t time.Duration) error
}

// Serial is a Channel over a serial port.
type Serial struct {
	port   port
	name   string
	config SerialConfig
	logger *logrus.Logger
	closed bool
}

// OpenSerial opens the named port at 8N1 and drains any stale input.
func OpenSerial(cfg SerialConfig, logger *logrus.Logger) (*Serial, error) {
	cfg = cfg.withDefaults()
	if cfg.Port == "" {
		return nil, fmt.Errorf("serial: port name required")
	}

	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	p, err := serial.Open(cfg.Port, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", cfg.Port, err)
	}

	s, err := newSerial(p, cfg, logger)
	if err != nil {
		p.Close()
		return nil, err
	}
	return s, nil
}

// newSerial wraps an already open port.
func newSerial(p port, cfg SerialConfig, logger *logrus.Logger) (*Serial, error) {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = logrus.New()
	}
	s := &Serial{
		port:   p,
		name:   cfg.Port,
		config: cfg,
		logger: logger,
	}

	if err := s.drain(); err != nil {
		return nil, err
	}
	if err := p.SetReadTimeout(cfg.ReadTimeout); err != nil {
		return nil, fmt.Errorf("failed to set read timeout: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"port":         cfg.Port,
		"baud_rate":    cfg.BaudRate,
		"read_timeout": cfg.ReadTimeout,
	}).Debug("Serial port opened")

	return s, nil
}

// drain performs one best-effort read to discard bytes left on the line.
func (s *Serial) drain() error {
	if err := s.port.SetReadTimeout(s.config.DrainTimeout); err != nil {
		return fmt.Errorf("failed to set drain timeout: %w", err)
	}
	buf := make([]byte, drainChunk)
	n, err := s.port.Read(buf)
	if err != nil && err != io.EOF {
		s.logger.WithError(err).Debug("Initial drain read failed")
		return nil
	}
	if n > 0 {
		s.logger.WithField("bytes", n).Debug("Drained stale input")
	}
	return nil
}

// Write sends all of data.
func (s *Serial) Write(data []byte) error {
	if s.closed {
		return ErrClosed
	}
	for len(data) > 0 {
		n, err := s.port.Write(data)
		if err != nil {
			return fmt.Errorf("serial write on %s: %w", s.name, err)
		}
		if n == 0 {
			return fmt.Errorf("serial write on %s: %w", s.name, io.ErrShortWrite)
		}
		data = data[n:]
	}
	return nil
}

// Read collects up to n bytes, stopping early when a read times out.
func (s *Serial) Read(n int) ([]byte, error) {
	if s.closed {
		return nil, ErrClosed
	}
	out := make([]byte, 0, n)
	buf := make([]byte, n)
	for len(out) < n {
		m, err := s.port.Read(buf[:n-len(out)])
		if m > 0 {
			out = append(out, buf[:m]...)
		}
		if err == io.EOF || (err == nil && m == 0) {
			break
		}
		if err != nil {
			return out, fmt.Errorf("serial read on %s: %w", s.name, err)
		}
	}
	return out, nil
}

// Reset discards buffered input.
func (s *Serial) Reset() error {
	if s.closed {
		return ErrClosed
	}
	if err := s.port.ResetInputBuffer(); err != nil {
		return fmt.Errorf("failed to reset input buffer on %s: %w", s.name, err)
	}
	return nil
}

// Close closes the port.
func (s *Serial) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.port.Close(); err != nil {
		return fmt.Errorf("failed to close serial port %s: %w", s.name, err)
	}
	return nil
}
