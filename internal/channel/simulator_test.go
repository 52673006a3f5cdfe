package channel

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rs109m/internal/devconfig"
	"rs109m/internal/wire"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// TestSimulator_Handshake tests handshake acknowledgement
func TestSimulator_Handshake(t *testing.T) {
	tests := []struct {
		name     string
		password string
		request  []byte
		wantAck  bool
	}{
		{
			name:    "No password",
			request: []byte{0x59, 0x01, 0x42, 0x00},
			wantAck: true,
		},
		{
			name:    "Any password accepted when none configured",
			request: append([]byte{0x59, 0x01, 0x42, 0x06}, []byte("123000")...),
			wantAck: true,
		},
		{
			name:     "Matching password",
			password: "123",
			request:  append([]byte{0x59, 0x01, 0x42, 0x06}, []byte("123000")...),
			wantAck:  true,
		},
		{
			name:     "Wrong password",
			password: "123",
			request:  append([]byte{0x59, 0x01, 0x42, 0x06}, []byte("999999")...),
			wantAck:  false,
		},
		{
			name:     "Empty handshake against the default password",
			password: wire.DefaultPassword,
			request:  []byte{0x59, 0x01, 0x42, 0x00},
			wantAck:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim := NewSimulator(nil, quietLogger())
			sim.Password = tt.password

			require.NoError(t, sim.Write(tt.request))
			out, err := sim.Read(2)
			require.NoError(t, err)

			if tt.wantAck {
				assert.Equal(t, []byte{0x95, 0x20}, out)
				assert.True(t, sim.IsUnlocked())
			} else {
				assert.Empty(t, out)
				assert.False(t, sim.IsUnlocked())
			}
		})
	}
}

// TestSimulator_SplitWrites tests that command framing does not depend on write boundaries
func TestSimulator_SplitWrites(t *testing.T) {
	sim := NewSimulator(nil, quietLogger())

	stream := append([]byte{0x59, 0x01, 0x42, 0x06}, []byte("000000")...)
	stream = append(stream, 0x51, 0x40)
	for _, b := range stream {
		require.NoError(t, sim.Write([]byte{b}))
	}

	out, err := sim.Read(2 + 2 + devconfig.DefaultSize)
	require.NoError(t, err)
	require.Len(t, out, 2+2+devconfig.DefaultSize)
	assert.Equal(t, []byte{0x95, 0x20, 0x25, 0x40}, out[:4])
	assert.Equal(t, devconfig.Template()[:devconfig.DefaultSize], out[4:])
	assert.Equal(t, stream, sim.Written())
}

// TestSimulator_ReadWrite tests that written images are served by later reads
func TestSimulator_ReadWrite(t *testing.T) {
	sim := NewSimulator(nil, quietLogger())
	require.NoError(t, sim.Write([]byte{0x59, 0x01, 0x42, 0x00}))
	_, _ = sim.Read(2)

	img := devconfig.New()
	img.SetMMSI(123456789)
	require.NoError(t, sim.Write([]byte{0x55, 0x40}))
	require.NoError(t, sim.Write(img.Serialize(false)))

	ack, err := sim.Read(2)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x75, 0x40}, ack)
	assert.Equal(t, uint32(123456789), sim.Image().MMSI())

	require.NoError(t, sim.Write([]byte{0x51, 0xFF}))
	out, err := sim.Read(2 + devconfig.ExtendedSize)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x25, 0xFF}, out[:2])
	assert.Equal(t, uint32(123456789), devconfig.FromBytes(out[2:]).MMSI())
}

// TestSimulator_Locked tests that reads and writes need a handshake
func TestSimulator_Locked(t *testing.T) {
	sim := NewSimulator(nil, quietLogger())

	require.NoError(t, sim.Write([]byte{0x51, 0x40}))
	out, err := sim.Read(2)
	require.NoError(t, err)
	assert.Empty(t, out)

	img := devconfig.New()
	img.SetMMSI(1)
	require.NoError(t, sim.Write(append([]byte{0x55, 0x40}, img.Serialize(false)...)))
	out, err = sim.Read(2)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, uint32(109040173), sim.Image().MMSI())

	sim.Unlocked = true
	require.NoError(t, sim.Write([]byte{0x51, 0x40}))
	out, err = sim.Read(2)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x25, 0x40}, out)
}

// TestSimulator_Reset tests that reset drops pending replies but keeps the handshake
func TestSimulator_Reset(t *testing.T) {
	sim := NewSimulator(nil, quietLogger())
	require.NoError(t, sim.Write([]byte{0x59, 0x01, 0x42, 0x00}))
	require.NoError(t, sim.Write([]byte{0x55}))
	require.NoError(t, sim.Reset())

	out, err := sim.Read(2)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.True(t, sim.IsUnlocked())
	assert.Equal(t, 1, sim.Resets())

	// partial write command was discarded, so a read request parses cleanly
	require.NoError(t, sim.Write([]byte{0x51, 0x40}))
	out, err = sim.Read(2)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x25, 0x40}, out)
}

// TestSimulator_ImageIsolation tests that the seeded image is copied
func TestSimulator_ImageIsolation(t *testing.T) {
	img := devconfig.New()
	sim := NewSimulator(img, quietLogger())
	img.SetMMSI(42)
	assert.Equal(t, uint32(109040173), sim.Image().MMSI())

	got := sim.Image()
	got.SetMMSI(7)
	assert.Equal(t, uint32(109040173), sim.Image().MMSI())
}
