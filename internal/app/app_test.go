package app

import (
	"bytes"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rs109m/internal/channel"
	"rs109m/internal/devconfig"
	"rs109m/internal/driver"
	"rs109m/internal/profile"
	"rs109m/internal/wire"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func mockConfig() Config {
	return Config{Mock: true, Password: DefaultPassword}
}

// TestConstants tests the default configuration constants
func TestConstants(t *testing.T) {
	assert.Equal(t, 38400, DefaultBaudRate)
	assert.Equal(t, "000000", DefaultPassword)
	assert.Equal(t, "3s", DefaultReadTimeout.String())
	assert.Equal(t, "1s", DefaultDrainTimeout.String())
}

// TestShowVersion tests the version display functionality
func TestShowVersion(t *testing.T) {
	var buf bytes.Buffer
	ShowVersion(&buf)

	assert.Contains(t, buf.String(), "Version: dev")
	assert.Contains(t, buf.String(), "Git Commit: unknown")
}

// TestConfig_Validate tests configuration validation
func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:   "Serial device",
			config: Config{Device: "/dev/ttyUSB0", Password: DefaultPassword},
		},
		{
			name:   "Mock without device",
			config: Config{Mock: true},
		},
		{
			name:    "No device",
			config:  Config{Password: DefaultPassword},
			wantErr: ErrNoDevice,
		},
		{
			name:    "Bad password",
			config:  Config{Mock: true, Password: "12ab"},
			wantErr: driver.ErrInvalidPassword,
		},
		{
			name:   "Bad password ignored without password",
			config: Config{Mock: true, Password: "12ab", NoPassword: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}

	assert.Nil(t, Config{NoPassword: true}.password())
	assert.Equal(t, "123", *Config{Password: "123"}.password())
}

// TestNewApplication tests the application constructor
func TestNewApplication(t *testing.T) {
	app := NewApplication(Config{Device: "/dev/ttyUSB0"}, nil)
	assert.NotNil(t, app.logger)
	assert.Nil(t, app.Simulator())

	app = NewApplication(mockConfig(), quietLogger())
	require.NotNil(t, app.Simulator())
	assert.Equal(t, uint32(109040173), app.Simulator().Image().MMSI())
}

// TestApplication_Read tests reading from the mock device
func TestApplication_Read(t *testing.T) {
	for _, extended := range []bool{false, true} {
		cfg := mockConfig()
		cfg.Extended = extended
		app := NewApplication(cfg, quietLogger())

		img, err := app.Read()
		require.NoError(t, err)
		assert.Equal(t, devconfig.Template()[:devconfig.Size(extended)], img.Serialize(extended))
		assert.Equal(t, "O12345", img.Callsign())
	}
}

// TestApplication_ReadNoDevice tests that a device is required outside mock mode
func TestApplication_ReadNoDevice(t *testing.T) {
	app := NewApplication(Config{Password: DefaultPassword}, quietLogger())

	_, err := app.Read()
	assert.ErrorIs(t, err, ErrNoDevice)
}

// TestApplication_Write tests the read, apply, write and verify cycle
func TestApplication_Write(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		resets int
	}{
		{
			name:   "Separate handshakes",
			config: mockConfig(),
			resets: 3,
		},
		{
			name: "Single handshake",
			config: Config{
				Mock:            true,
				Password:        DefaultPassword,
				SingleHandshake: true,
			},
			resets: 3,
		},
		{
			name:   "Extended without password",
			config: Config{Mock: true, NoPassword: true, Extended: true},
			resets: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := NewApplication(tt.config, quietLogger())
			settings := profile.Settings{
				MMSI:     profile.Int(123456789),
				Name:     profile.String("Test Ship"),
				ShipType: profile.Int(36),
				Callsign: profile.String("TSALL"),
			}

			res, err := app.Write(settings)
			require.NoError(t, err)

			assert.Equal(t, uint32(109040173), res.Old.MMSI())
			assert.Equal(t, uint32(123456789), res.Desired.MMSI())
			assert.Equal(t, "TEST SHIP", res.Written.Name())
			assert.Equal(t, "TSALL", res.Written.Callsign())
			assert.Equal(t, uint8(36), res.Written.ShipAndCargo())
			assert.Equal(t, 120, res.Written.Interval())

			sim := app.Simulator()
			assert.Equal(t, uint32(123456789), sim.Image().MMSI())
			assert.Equal(t, tt.resets, sim.Resets())

			img, err := app.Read()
			require.NoError(t, err)
			assert.Equal(t, "TEST SHIP", img.Name())
		})
	}
}

// TestApplication_WriteInvalid tests that invalid settings never reach the device
func TestApplication_WriteInvalid(t *testing.T) {
	app := NewApplication(mockConfig(), quietLogger())

	_, err := app.Write(profile.Settings{Interval: profile.Int(5)})
	assert.ErrorIs(t, err, profile.ErrInvalid)
	assert.Empty(t, app.Simulator().Written())
}

// TestApplication_WriteVerifyMismatch tests detection of a device that ignores writes
func TestApplication_WriteVerifyMismatch(t *testing.T) {
	current := devconfig.New().Serialize(false)
	ch := channel.NewScripted(
		wire.HandshakeAck(), wire.ReadAck(devconfig.DefaultSize), current,
		wire.HandshakeAck(), wire.WriteAck(devconfig.DefaultSize),
		wire.HandshakeAck(), wire.ReadAck(devconfig.DefaultSize), current,
	)
	app := NewApplication(Config{Device: "scripted", Password: DefaultPassword}, quietLogger())
	app.open = func() (channel.Channel, error) { return ch, nil }

	res, err := app.Write(profile.Settings{MMSI: profile.Int(123456789), RefD: profile.Int(5)})

	require.ErrorIs(t, err, ErrVerifyMismatch)
	assert.Contains(t, err.Error(), "mmsi, refd")
	require.NotNil(t, res)
	assert.Equal(t, uint32(123456789), res.Desired.MMSI())
	assert.Equal(t, uint32(109040173), res.Written.MMSI())
	assert.Equal(t, 0, ch.Remaining())
}

// TestApplication_WriteFailure tests that a failed write stops the cycle
func TestApplication_WriteFailure(t *testing.T) {
	ch := channel.NewScripted(
		wire.HandshakeAck(), wire.ReadAck(devconfig.DefaultSize), devconfig.New().Serialize(false),
		wire.HandshakeAck(), []byte{0x75, 0x00},
	)
	app := NewApplication(Config{Device: "scripted", Password: DefaultPassword}, quietLogger())
	app.open = func() (channel.Channel, error) { return ch, nil }

	res, err := app.Write(profile.Settings{Name: profile.String("X")})

	assert.Nil(t, res)
	assert.ErrorIs(t, err, driver.ErrWriteFailed)
	assert.Contains(t, err.Error(), "failed to write configuration")
	assert.Equal(t, 2, ch.Resets())
}

// TestApplication_Password tests handshake password handling
func TestApplication_Password(t *testing.T) {
	app := NewApplication(Config{Mock: true, Password: "999999"}, quietLogger())
	app.Simulator().Password = "123456"

	_, err := app.Read()
	assert.ErrorIs(t, err, driver.ErrHandshakeFailed)

	app = NewApplication(Config{Mock: true, Password: "12x"}, quietLogger())
	_, err = app.Read()
	assert.ErrorIs(t, err, driver.ErrInvalidPassword)
	assert.Empty(t, app.Simulator().Written())
}
