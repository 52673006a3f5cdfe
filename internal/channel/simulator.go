package channel

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"rs109m/internal/devconfig"
	"rs109m/internal/wire"
)

// Simulator is an in-memory RS-109M. It parses the command stream written to
// it regardless of how the host splits writes and queues the replies the
// device would send. Written images persist, so a read after a write
// observes the new values.
type Simulator struct {
	mu       sync.Mutex
	image    *devconfig.Image
	logger   *logrus.Logger
	unlocked bool
	in       []byte
	out      []byte
	written  []byte
	resets   int

	// Password, when set, must match the handshake payload. An empty
	// handshake is compared against the default password.
	Password string
	// Unlocked answers reads and writes without a prior handshake.
	Unlocked bool
}

// NewSimulator returns a simulator holding img, or the factory template when
// img is nil.
func NewSimulator(img *devconfig.Image, logger *logrus.Logger) *Simulator {
	if img == nil {
		img = devconfig.New()
	} else {
		img = img.Clone()
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Simulator{image: img, logger: logger}
}

// Write feeds host bytes into the command parser.
func (s *Simulator) Write(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.written = append(s.written, data...)
	s.in = append(s.in, data...)
	s.process()
	return nil
}

// Read returns up to n queued reply bytes.
func (s *Simulator) Read(n int) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n > len(s.out) {
		n = len(s.out)
	}
	out := append([]byte{}, s.out[:n]...)
	s.out = s.out[n:]
	return out, nil
}

// Reset drops queued replies and any partially received command. The
// handshake state is kept.
func (s *Simulator) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.out = nil
	s.in = nil
	s.resets++
	return nil
}

// Image returns a copy of the simulated device memory.
func (s *Simulator) Image() *devconfig.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.image.Clone()
}

// Written returns every byte the host has sent.
func (s *Simulator) Written() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte{}, s.written...)
}

// Resets returns the number of Reset calls.
func (s *Simulator) Resets() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resets
}

// IsUnlocked reports whether a handshake has been accepted.
func (s *Simulator) IsUnlocked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unlocked
}

// process consumes every complete command in the input buffer.
func (s *Simulator) process() {
	for len(s.in) > 0 {
		var consumed int
		switch s.in[0] {
		case wire.OpHandshake:
			consumed = s.handshake()
		case wire.OpRead:
			consumed = s.read()
		case wire.OpWrite:
			consumed = s.write()
		default:
			s.logger.WithField("byte", fmt.Sprintf("0x%02x", s.in[0])).Debug("Simulator skipping unknown byte")
			consumed = 1
		}
		if consumed == 0 {
			return // incomplete command, wait for more input
		}
		s.in = s.in[consumed:]
	}
}

func (s *Simulator) handshake() int {
	if len(s.in) < 4 {
		return 0
	}
	if s.in[1] != wire.HandshakeArg1 || s.in[2] != wire.HandshakeArg2 {
		return 1
	}
	n := int(s.in[3])
	if len(s.in) < 4+n {
		return 0
	}
	payload := s.in[4 : 4+n]

	if s.Password != "" {
		expected := wire.PasswordPayload(s.Password)
		if n == 0 {
			payload = wire.PasswordPayload(wire.DefaultPassword)
		}
		if !bytes.Equal(payload, expected) {
			s.logger.Debug("Simulator rejected handshake password")
			return 4 + n
		}
	}

	s.unlocked = true
	s.out = append(s.out, wire.HandshakeAck()...)
	return 4 + n
}

func (s *Simulator) read() int {
	if len(s.in) < 2 {
		return 0
	}
	length := int(s.in[1])
	if !s.unlocked && !s.Unlocked {
		s.logger.Debug("Simulator ignoring read before handshake")
		return 2
	}
	s.out = append(s.out, wire.ReadAck(length)...)
	s.out = append(s.out, s.image.Bytes()[:length]...)
	return 2
}

func (s *Simulator) write() int {
	if len(s.in) < 2 {
		return 0
	}
	length := int(s.in[1])
	if len(s.in) < 2+length {
		return 0
	}
	if !s.unlocked && !s.Unlocked {
		s.logger.Debug("Simulator ignoring write before handshake")
		return 2 + length
	}
	data := s.image.Bytes()
	copy(data, s.in[2:2+length])
	s.image = devconfig.FromBytes(data)
	s.out = append(s.out, wire.WriteAck(length)...)
	return 2 + length
}
