package app

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"rs109m/internal/channel"
	"rs109m/internal/devconfig"
	"rs109m/internal/driver"
	"rs109m/internal/profile"
)

// ErrVerifyMismatch is returned when the configuration read back after a
// write differs from the one written.
var ErrVerifyMismatch = errors.New("verification failed: device configuration differs from written configuration")

// Application represents the main application
type Application struct {
	config    Config
	logger    *logrus.Logger
	simulator *channel.Simulator

	// open returns the channel for one command; overridden in tests
	open func() (channel.Channel, error)
}

// WriteResult holds the three images seen by a write.
type WriteResult struct {
	Old     *devconfig.Image
	Desired *devconfig.Image
	Written *devconfig.Image
}

// NewApplication creates a new application instance. A nil logger gets a
// default logrus logger.
func NewApplication(config Config, logger *logrus.Logger) *Application {
	if logger == nil {
		logger = logrus.New()
		if config.Verbose {
			logger.SetLevel(logrus.DebugLevel)
		} else {
			logger.SetLevel(logrus.InfoLevel)
		}
	}

	app := &Application{
		config: config,
		logger: logger,
	}
	if config.Mock {
		app.simulator = channel.NewSimulator(devconfig.New(), logger)
	}
	app.open = app.openChannel
	return app
}

// Simulator returns the mock device, or nil outside mock mode.
func (app *Application) Simulator() *channel.Simulator {
	return app.simulator
}

// openChannel opens the serial port, or returns the simulator in mock mode
func (app *Application) openChannel() (channel.Channel, error) {
	if app.simulator != nil {
		return app.simulator, nil
	}
	if err := app.config.Validate(); err != nil {
		return nil, err
	}
	return channel.OpenSerial(channel.SerialConfig{
		Port:        app.config.Device,
		BaudRate:    app.config.BaudRate,
		ReadTimeout: app.config.ReadTimeout,
	}, app.logger)
}

// withDriver runs fn with a driver on a freshly opened channel
func (app *Application) withDriver(fn func(d *driver.Driver) error) error {
	if !app.config.NoPassword {
		if err := driver.ValidatePassword(app.config.Password); err != nil {
			return err
		}
	}

	ch, err := app.open()
	if err != nil {
		return fmt.Errorf("failed to open device: %w", err)
	}
	if c, ok := ch.(io.Closer); ok {
		defer func() {
			if err := c.Close(); err != nil {
				app.logger.WithError(err).Warn("Failed to close device")
			}
		}()
	}

	return fn(driver.New(ch, app.logger))
}

// Read reads the device configuration.
func (app *Application) Read() (*devconfig.Image, error) {
	var img *devconfig.Image
	err := app.withDriver(func(d *driver.Driver) error {
		var err error
		img, err = d.ReadConfig(app.config.password(), app.config.Extended)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}

	app.logger.WithFields(logrus.Fields{
		"mmsi":     img.MMSI(),
		"name":     img.Name(),
		"callsign": img.Callsign(),
	}).Info("Configuration read")
	app.logger.Debugf("Read configuration:\n%s", img.Report(app.config.Extended))
	return img, nil
}

// Write reads the current configuration, applies settings, writes it back
// and verifies it by reading again. The result is returned even when
// verification fails.
func (app *Application) Write(settings profile.Settings) (*WriteResult, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	res := &WriteResult{}
	pw := app.config.password()
	extended := app.config.Extended

	err := app.withDriver(func(d *driver.Driver) error {
		steps := func() error {
			old, err := d.ReadConfig(pw, extended)
			if err != nil {
				return fmt.Errorf("failed to read configuration: %w", err)
			}
			res.Old = old
			app.logger.Debugf("Old configuration:\n%s", old.Report(extended))

			desired := old.Clone()
			if err := settings.Apply(desired); err != nil {
				return err
			}
			res.Desired = desired
			app.logger.Debugf("Desired configuration:\n%s", desired.Report(extended))

			if err := d.WriteConfig(desired, pw, extended); err != nil {
				return fmt.Errorf("failed to write configuration: %w", err)
			}

			written, err := d.ReadConfig(pw, extended)
			if err != nil {
				return fmt.Errorf("failed to read back configuration: %w", err)
			}
			res.Written = written
			app.logger.Debugf("Written configuration:\n%s", written.Report(extended))
			return nil
		}

		if app.config.SingleHandshake {
			return d.Batch(steps)
		}
		return steps()
	})
	if err != nil {
		return nil, err
	}

	if diff := profile.Diff(profile.FromImage(res.Desired), profile.FromImage(res.Written)); len(diff) > 0 {
		app.logger.WithField("fields", strings.Join(diff, ",")).Error("Verification failed")
		return res, fmt.Errorf("%w: %s", ErrVerifyMismatch, strings.Join(diff, ", "))
	}

	app.logger.WithFields(logrus.Fields{
		"mmsi":     res.Written.MMSI(),
		"name":     res.Written.Name(),
		"callsign": res.Written.Callsign(),
	}).Info("Configuration verified")
	return res, nil
}
