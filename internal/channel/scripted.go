package channel

import "sync"

// Scripted replays a fixed byte sequence to Read and records every Write.
// The script models bytes arriving from the device over time, so Reset does
// not consume it.
type Scripted struct {
	mu      sync.Mutex
	script  []byte
	written []byte
	writes  int
	resets  int

	// Pad zero-fills short reads up to the requested length.
	Pad bool
	// WriteErr, when set, is returned by every Write.
	WriteErr error
}

// NewScripted returns a double that will serve data to Read.
func NewScripted(data ...[]byte) *Scripted {
	s := &Scripted{}
	for _, d := range data {
		s.script = append(s.script, d...)
	}
	return s
}

// Feed appends bytes to the script.
func (s *Scripted) Feed(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.script = append(s.script, data...)
}

// Write records data.
func (s *Scripted) Write(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.WriteErr != nil {
		return s.WriteErr
	}
	s.written = append(s.written, data...)
	s.writes++
	return nil
}

// Read returns the next n bytes of the script, or fewer when it runs out.
func (s *Scripted) Read(n int) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n > len(s.script) {
		out := append([]byte{}, s.script...)
		s.script = s.script[:0]
		if s.Pad {
			out = append(out, make([]byte, n-len(out))...)
		}
		return out, nil
	}
	out := append([]byte{}, s.script[:n]...)
	s.script = s.script[n:]
	return out, nil
}

// Reset counts the call.
func (s *Scripted) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resets++
	return nil
}

// Written returns everything written so far.
func (s *Scripted) Written() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte{}, s.written...)
}

// Writes returns the number of Write calls.
func (s *Scripted) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// Resets returns the number of Reset calls.
func (s *Scripted) Resets() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resets
}

// Remaining returns the number of unread script bytes.
func (s *Scripted) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.script)
}
