// Package channel provides the byte transports used to talk to the device:
// a serial port, a scripted replay double and a stateful device simulator.
package channel

import "errors"

// ErrClosed is returned by operations on a closed channel.
var ErrClosed = errors.New("channel: closed")

// Channel is a blocking byte transport.
//
// Read returns at most n bytes and may return fewer when the transport's
// timeout expires; callers must treat a short read as a protocol failure.
// Reset discards buffered input so the next Read only sees new bytes.
type Channel interface {
	Write(data []byte) error
	Read(n int) ([]byte, error)
	Reset() error
}
