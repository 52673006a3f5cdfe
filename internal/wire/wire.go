// Package wire holds the RS-109M command protocol constants shared by the
// driver and the device simulator.
package wire

// Command opcodes (host to device)
const (
	OpHandshake = 0x59 // followed by HandshakeArg1, HandshakeArg2, payload length
	OpRead      = 0x51 // followed by length
	OpWrite     = 0x55 // followed by length and payload
)

// Handshake command bytes after the opcode
const (
	HandshakeArg1 = 0x01
	HandshakeArg2 = 0x42
)

// Acknowledgement bytes (device to host)
const (
	AckHandshake1 = 0x95
	AckHandshake2 = 0x20
	AckRead       = 0x25 // followed by length
	AckWrite      = 0x75 // followed by length
)

// Password constants
const (
	PasswordLength  = 6
	DefaultPassword = "000000"
)

// HandshakeCommand returns the handshake header announcing n payload bytes.
func HandshakeCommand(n int) []byte {
	return []byte{OpHandshake, HandshakeArg1, HandshakeArg2, byte(n)}
}

// HandshakeAck is the device's handshake acknowledgement.
func HandshakeAck() []byte {
	return []byte{AckHandshake1, AckHandshake2}
}

// ReadCommand returns the read request for length bytes.
func ReadCommand(length int) []byte {
	return []byte{OpRead, byte(length)}
}

// ReadAck returns the read acknowledgement header for length bytes.
func ReadAck(length int) []byte {
	return []byte{AckRead, byte(length)}
}

// WriteCommand returns the write request header for length bytes.
func WriteCommand(length int) []byte {
	return []byte{OpWrite, byte(length)}
}

// WriteAck returns the write acknowledgement for length bytes.
func WriteAck(length int) []byte {
	return []byte{AckWrite, byte(length)}
}

// PasswordPayload completes password with the default password and cuts it
// to PasswordLength bytes.
func PasswordPayload(password string) []byte {
	return []byte(password + DefaultPassword)[:PasswordLength]
}
