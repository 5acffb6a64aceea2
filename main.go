package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/pleimann/pushbutton/internal/config"
	"github.com/pleimann/pushbutton/internal/gesture"
	"github.com/pleimann/pushbutton/internal/hid"
	"github.com/pleimann/pushbutton/internal/ui"
)

const Version = "0.1.0"

func main() {
	// Check for subcommands first
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "watch":
			runWatch(os.Args[2:])
			return
		case "list-devices":
			runListDevices(os.Args[2:])
			return
		case "set-device", "select-device":
			runSetDevice(os.Args[2:])
			return
		case "help", "-h", "--help":
			printUsage()
			os.Exit(0)
		}
	}

	configPath := flag.String("config", "config.yaml", "path to configuration file")
	verbose := flag.Bool("verbose", false, "enable verbose logging")
	version := flag.Bool("version", false, "print version and exit")

	flag.Usage = printUsage
	flag.Parse()

	if *version {
		ui.PrintVersion(Version)
		os.Exit(0)
	}

	setupLogging(*verbose)

	watcher, err := config.NewWatcher(*configPath)
	if err != nil {
		ui.PrintFatalError("Failed to load config", err.Error())
		os.Exit(1)
	}
	defer watcher.Stop()

	cfg := watcher.Get()
	log.WithFields(log.Fields{
		"path":    *configPath,
		"buttons": len(cfg.Buttons),
		"device":  cfg.Device.Enabled(),
		"tui":     cfg.TUI.Command,
	}).Debug("Loaded configuration")

	app, err := newApp(cfg, appOptions{actions: true, display: true})
	if err != nil {
		ui.PrintFatalError("Failed to initialize application", err.Error())
		os.Exit(1)
	}

	watcher.OnReload(app.Reload)
	watcher.Start()

	ctx := signalContext()
	if err := app.Run(ctx); err != nil && ctx.Err() == nil {
		log.WithError(err).Fatal("Application error")
	}

	log.Debug("Shutdown complete")
}

func printUsage() {
	ui.PrintUsage(Version)
}

func setupLogging(verbose bool) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetOutput(os.Stderr)
	if verbose {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
}

// signalContext returns a context cancelled on SIGINT or SIGTERM
func signalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.WithField("signal", sig.String()).Debug("Received shutdown signal")
		cancel()
	}()

	return ctx
}

// runWatch handles the watch subcommand
func runWatch(args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to configuration file")
	all := fs.Bool("all", false, "also print down and up")
	verbose := fs.Bool("verbose", false, "enable verbose logging")
	fs.Usage = func() {
		ui.PrintWatchUsage()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	setupLogging(*verbose)

	cfg, err := config.Load(*configPath)
	if err != nil {
		ui.PrintFatalError("Failed to load config", err.Error())
		os.Exit(1)
	}

	app, err := newApp(cfg, appOptions{})
	if err != nil {
		ui.PrintFatalError("Failed to initialize buttons", err.Error())
		os.Exit(1)
	}

	types := []gesture.Type{gesture.Hold, gesture.Click, gesture.DoubleClick}
	if *all {
		types = gesture.Types
	}
	if _, err := app.bus.Subscribe(printGesture, types...); err != nil {
		ui.PrintFatalError("Failed to subscribe", err.Error())
		os.Exit(1)
	}

	ui.PrintButtons(cfg)

	ctx := signalContext()
	if err := app.Run(ctx); err != nil && ctx.Err() == nil {
		ui.PrintFatalError("Watch failed", err.Error())
		os.Exit(1)
	}
}

func printGesture(ctx context.Context, g gesture.Gesture) error {
	fmt.Println(ui.GestureLine(g))
	return nil
}

// runListDevices handles the list-devices subcommand
func runListDevices(args []string) {
	fs := flag.NewFlagSet("list-devices", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to configuration file")
	all := fs.Bool("all", false, "list every interface separately")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	devices, err := hid.ListDevices()
	if err != nil {
		ui.PrintFatalError("Failed to list devices", err.Error())
		os.Exit(1)
	}
	if !*all {
		devices = hid.Unique(devices)
	}
	ui.PrintDeviceList(toUIDevices(devices, configuredDevice(*configPath)))
}

// configuredDevice returns the device section of the config file, or an
// empty one when there is no usable config
func configuredDevice(path string) config.DeviceConfig {
	if !config.Exists(path) {
		return config.DeviceConfig{}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.DeviceConfig{}
	}
	return cfg.Device
}

func toUIDevices(devices []hid.DeviceInfo, current config.DeviceConfig) []ui.DeviceInfo {
	out := make([]ui.DeviceInfo, len(devices))
	for i, d := range devices {
		out[i] = ui.DeviceInfo{
			VendorID:     d.VendorID,
			ProductID:    d.ProductID,
			Manufacturer: d.Manufacturer,
			Product:      d.Product,
			Interfaces:   d.Interfaces,
			Configured: current.Enabled() &&
				d.VendorID == current.VendorID && d.ProductID == current.ProductID,
		}
	}
	return out
}

// runSetDevice handles the set-device subcommand
func runSetDevice(args []string) {
	fs := flag.NewFlagSet("set-device", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to configuration file")
	fs.Usage = func() {
		ui.PrintSetDeviceUsage()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	remaining := fs.Args()

	var vendorID, productID uint16

	switch len(remaining) {
	case 0:
		device, err := selectDevice(configuredDevice(*configPath))
		if err != nil {
			ui.PrintFatalError("Device selection failed", err.Error())
			os.Exit(1)
		}
		if device == nil {
			fmt.Println(ui.Muted("No device selected"))
			os.Exit(0)
		}
		vendorID = device.VendorID
		productID = device.ProductID
	case 2:
		vid, err := parseID(remaining[0])
		if err != nil {
			ui.PrintFatalError("Invalid vendor_id", fmt.Sprintf("%q: %v", remaining[0], err))
			os.Exit(1)
		}
		pid, err := parseID(remaining[1])
		if err != nil {
			ui.PrintFatalError("Invalid product_id", fmt.Sprintf("%q: %v", remaining[1], err))
			os.Exit(1)
		}
		vendorID = vid
		productID = pid
	default:
		ui.PrintFatalError("Invalid arguments", "Both vendor_id and product_id must be provided, or neither")
		os.Exit(1)
	}

	created := !config.Exists(*configPath)
	if created {
		err := config.CreateDefaultConfig(*configPath, vendorID, productID)
		if err != nil {
			ui.PrintFatalError("Failed to create config", err.Error())
			os.Exit(1)
		}
	} else if err := config.UpdateDeviceIDs(*configPath, vendorID, productID); err != nil {
		ui.PrintFatalError("Failed to update config", err.Error())
		os.Exit(1)
	}
	_, err := hid.FindDevice(vendorID, productID)
	ui.PrintDeviceSaved(*configPath, vendorID, productID, created, err == nil)
}

// parseID parses a vendor or product ID, as hex with a 0x prefix or decimal
func parseID(s string) (uint16, error) {
	s = strings.TrimSpace(s)

	var (
		val uint64
		err error
	)
	if strings.HasPrefix(strings.ToLower(s), "0x") {
		val, err = strconv.ParseUint(s[2:], 16, 16)
	} else {
		val, err = strconv.ParseUint(s, 10, 16)
	}
	if err != nil {
		return 0, err
	}

	return uint16(val), nil
}

// selectDevice shows an interactive menu of the connected devices
func selectDevice(current config.DeviceConfig) (*ui.DeviceInfo, error) {
	devices, err := hid.ListDevices()
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	if len(devices) == 0 {
		return nil, fmt.Errorf("no HID devices found")
	}

	unique := hid.Unique(devices)
	if len(unique) == 0 {
		return nil, fmt.Errorf("no identifiable HID devices found")
	}

	return ui.SelectDevice(toUIDevices(unique, current))
}
