package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"rs109m/internal/app"
	"rs109m/internal/logging"
	"rs109m/internal/profile"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree writing reports to stdout and logs to
// stderr.
func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var (
		config app.Config
		logger *logging.Logger
	)

	rootCmd := &cobra.Command{
		Use:   "rs109m",
		Short: "RS-109M AIS transponder configuration tool",
		Long: `Reads and writes the configuration memory of RS-109M style AIS
net buoys over their serial programming interface.

Example usage:
  rs109m read --device /dev/ttyUSB0
  rs109m write --device /dev/ttyUSB0 --mmsi 123456789 --name "MY NET" --callsign DL5ABC
  rs109m write --mock --profile buoy.yaml`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			logger, err = logging.New(logging.Options{
				Dir:     config.LogDir,
				Verbose: config.Verbose,
				Console: stderr,
			})
			if err != nil {
				return fmt.Errorf("failed to set up logging: %w", err)
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if logger == nil {
				return nil
			}
			return logger.Close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if config.ShowVersion {
				app.ShowVersion(stdout)
				return nil
			}
			return cmd.Help()
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&config.Device, "device", "d", "", "Serial device of the transponder")
	flags.IntVar(&config.BaudRate, "baud", app.DefaultBaudRate, "Serial baud rate")
	flags.BoolVar(&config.Mock, "mock", false, "Use a simulated device instead of a serial port")
	flags.StringVarP(&config.Password, "password", "P", app.DefaultPassword, "Device password (up to 6 digits)")
	flags.BoolVar(&config.NoPassword, "no-password", false, "Send an empty handshake")
	flags.BoolVarP(&config.Extended, "extended", "E", false, "Read or write the extended 255 byte image")
	flags.StringVarP(&config.LogDir, "log-dir", "l", logging.DefaultDir(), "Log directory (empty disables the log file)")
	flags.BoolVarP(&config.Verbose, "verbose", "v", false, "Verbose logging")
	rootCmd.Flags().BoolVar(&config.ShowVersion, "version", false, "Show version information")

	rootCmd.AddCommand(
		newReadCmd(&config, &logger, stdout),
		newWriteCmd(&config, &logger, stdout),
		&cobra.Command{
			Use:   "version",
			Short: "Show version information",
			Run: func(cmd *cobra.Command, args []string) {
				app.ShowVersion(stdout)
			},
		},
	)
	return rootCmd
}

func newReadCmd(config *app.Config, logger **logging.Logger, stdout io.Writer) *cobra.Command {
	var savePath string

	cmd := &cobra.Command{
		Use:   "read",
		Short: "Read and show the device configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application := app.NewApplication(*config, (*logger).Logger)
			img, err := application.Read()
			if err != nil {
				return err
			}

			fmt.Fprintf(stdout, "Read configuration:\n%s\n", img.Report(config.Extended))

			if savePath != "" {
				if err := profile.Save(savePath, profile.FromImage(img)); err != nil {
					return err
				}
				(*logger).WithField("path", savePath).Info("Profile saved")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&savePath, "save", "", "Save the device settings as a YAML profile")
	return cmd
}

func newWriteCmd(config *app.Config, logger **logging.Logger, stdout io.Writer) *cobra.Command {
	var (
		profilePath string
		mmsi        int
		name        string
		interval    int
		shipType    int
		callsign    string
		vendorID    string
		unitModel   int
		serial      int
		refA        int
		refB        int
		refC        int
		refD        int
	)

	cmd := &cobra.Command{
		Use:   "write",
		Short: "Change device settings and verify them",
		Long: `Reads the current configuration, applies the given settings, writes
the result and reads it back to verify. Settings given as flags override the
ones from --profile.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var settings profile.Settings
			if profilePath != "" {
				loaded, err := profile.Load(profilePath)
				if err != nil {
					return err
				}
				settings = loaded
			}

			var values profile.Settings
			f := cmd.Flags()
			setInt := func(flag string, dst **int, v int) {
				if f.Changed(flag) {
					*dst = profile.Int(v)
				}
			}
			setString := func(flag string, dst **string, v string) {
				if f.Changed(flag) {
					*dst = profile.String(v)
				}
			}
			setInt("mmsi", &values.MMSI, mmsi)
			setString("name", &values.Name, name)
			setInt("interval", &values.Interval, interval)
			setInt("type", &values.ShipType, shipType)
			setString("callsign", &values.Callsign, callsign)
			setString("vendorid", &values.VendorID, vendorID)
			setInt("unitmodel", &values.UnitModel, unitModel)
			setInt("sernum", &values.SerialNumber, serial)
			setInt("refa", &values.RefA, refA)
			setInt("refb", &values.RefB, refB)
			setInt("refc", &values.RefC, refC)
			setInt("refd", &values.RefD, refD)
			settings = settings.Merge(values)

			if settings.IsEmpty() {
				return errors.New("nothing to write, give at least one setting or --profile")
			}

			application := app.NewApplication(*config, (*logger).Logger)
			res, err := application.Write(settings)
			if res != nil {
				fmt.Fprintf(stdout, "Old configuration:\n%s\n\n", res.Old.Report(config.Extended))
				fmt.Fprintf(stdout, "Desired configuration:\n%s\n\n", res.Desired.Report(config.Extended))
				fmt.Fprintf(stdout, "Written configuration:\n%s\n", res.Written.Report(config.Extended))
			}
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&profilePath, "profile", "", "YAML profile with the settings to write")
	flags.BoolVar(&config.SingleHandshake, "single-handshake", false, "Handshake once for the whole read, write and verify cycle")
	flags.IntVarP(&mmsi, "mmsi", "m", 0, "MMSI (9 digits)")
	flags.StringVarP(&name, "name", "n", "", "Ship name (up to 20 characters stored)")
	flags.IntVarP(&interval, "interval", "i", 0, "TX interval in seconds (30 to 600)")
	flags.IntVarP(&shipType, "type", "t", 0, "AIS ship and cargo type code")
	flags.StringVarP(&callsign, "callsign", "c", "", "Callsign (up to 6 characters)")
	flags.StringVarP(&vendorID, "vendorid", "V", "", "Vendor id (up to 3 characters)")
	flags.IntVarP(&unitModel, "unitmodel", "u", 0, "Unit model code (0 to 15)")
	flags.IntVarP(&serial, "sernum", "s", 0, "Unit serial number (0 to 1048575)")
	flags.IntVarP(&refA, "refa", "A", 0, "Reference point A in meters")
	flags.IntVarP(&refB, "refb", "B", 0, "Reference point B in meters")
	flags.IntVarP(&refC, "refc", "C", 0, "Reference point C in meters")
	flags.IntVarP(&refD, "refd", "D", 0, "Reference point D in meters")
	return cmd
}
