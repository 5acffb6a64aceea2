package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Timing  TimingConfig  `yaml:"timing"`
	Bus     BusConfig     `yaml:"bus"`
	Device  DeviceConfig  `yaml:"device"`
	TUI     TUIConfig     `yaml:"tui"`
	Buttons []Button      `yaml:"buttons"`
	Display DisplayConfig `yaml:"display"`
}

// TimingConfig holds the defaults applied to every button
type TimingConfig struct {
	DebounceMs    int   `yaml:"debounce_ms"`
	DoubleClickMs int   `yaml:"double_click_ms"`
	Sync          *bool `yaml:"sync,omitempty"`
}

type BusConfig struct {
	QueueSize int `yaml:"queue_size"`
	Workers   int `yaml:"workers"`
}

// DeviceConfig identifies an optional HID macropad used as an input
// and as a status display
type DeviceConfig struct {
	VendorID    uint16 `yaml:"vendor_id"`
	ProductID   uint16 `yaml:"product_id"`
	ReconnectMs int    `yaml:"reconnect_ms"`
}

// Enabled reports whether a HID device is configured
func (d DeviceConfig) Enabled() bool {
	return d.VendorID != 0 || d.ProductID != 0
}

type TUIConfig struct {
	Command    string   `yaml:"command"`
	Args       []string `yaml:"args"`
	WorkingDir string   `yaml:"working_dir,omitempty"`
	KeyDelayMs int      `yaml:"key_delay_ms,omitempty"`
}

type Button struct {
	Name          string      `yaml:"name"`
	Input         InputConfig `yaml:"input"`
	DebounceMs    int         `yaml:"debounce_ms,omitempty"`
	DoubleClickMs int         `yaml:"double_click_ms,omitempty"`
	Sync          *bool       `yaml:"sync,omitempty"`

	OnDown        *KeyAction `yaml:"on_down,omitempty"`
	OnHold        *KeyAction `yaml:"on_hold,omitempty"`
	OnUp          *KeyAction `yaml:"on_up,omitempty"`
	OnClick       *KeyAction `yaml:"on_click,omitempty"`
	OnDoubleClick *KeyAction `yaml:"on_double_click,omitempty"`
}

// InputConfig selects the sampler backing a button
type InputConfig struct {
	Driver    string `yaml:"driver"`
	Pin       string `yaml:"pin,omitempty"`
	Chip      string `yaml:"chip,omitempty"`
	Line      *int   `yaml:"line,omitempty"`
	Index     *int   `yaml:"index,omitempty"`
	Script    string `yaml:"script,omitempty"`
	ActiveLow *bool  `yaml:"active_low,omitempty"`
	Pull      string `yaml:"pull,omitempty"`
}

type KeyAction struct {
	Keys []string `yaml:"keys"`
}

type DisplayConfig struct {
	Width            int             `yaml:"width"`
	Height           int             `yaml:"height"`
	UpdateIntervalMs int             `yaml:"update_interval_ms"`
	Regions          []DisplayRegion `yaml:"regions,omitempty"`
}

type DisplayRegion struct {
	Name    string `yaml:"name"`
	X       int    `yaml:"x"`
	Y       int    `yaml:"y"`
	Width   int    `yaml:"width"`
	Height  int    `yaml:"height"`
	Source  string `yaml:"source"`
	Button  string `yaml:"button,omitempty"`
	Content string `yaml:"content,omitempty"`
	Border  bool   `yaml:"border,omitempty"`
}

// Supported input drivers
const (
	DriverPeriph   = "periph"
	DriverGPIOCdev = "gpiocdev"
	DriverRPIO     = "rpio"
	DriverHID      = "hid"
	DriverScript   = "script"
)

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes, validates and fills defaults for a YAML config. Unknown
// keys, such as a misspelt gesture name, are rejected.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, nil
}

func (c *Config) validate() error {
	if len(c.Buttons) == 0 {
		return fmt.Errorf("at least one button is required")
	}
	if c.Timing.DebounceMs < 0 || c.Timing.DoubleClickMs < 0 {
		return fmt.Errorf("timing values must not be negative")
	}

	// Validate button names are unique
	seen := make(map[string]bool)
	for i, btn := range c.Buttons {
		if btn.Name == "" {
			return fmt.Errorf("button %d: name is required", i)
		}
		if seen[btn.Name] {
			return fmt.Errorf("duplicate button name: %s", btn.Name)
		}
		seen[btn.Name] = true

		if btn.DebounceMs < 0 || btn.DoubleClickMs < 0 {
			return fmt.Errorf("button %s: timing values must not be negative", btn.Name)
		}
		if err := btn.Input.validate(); err != nil {
			return fmt.Errorf("button %s: %w", btn.Name, err)
		}
		if btn.Input.Driver == DriverHID && !c.Device.Enabled() {
			return fmt.Errorf("button %s: driver hid needs device.vendor_id and device.product_id", btn.Name)
		}
	}

	for _, region := range c.Display.Regions {
		switch region.Source {
		case "gesture", "static", "tui_status":
		default:
			return fmt.Errorf("display region %s: unknown source %q", region.Name, region.Source)
		}
		if region.Button != "" && !seen[region.Button] {
			return fmt.Errorf("display region %s: unknown button %s", region.Name, region.Button)
		}
	}

	return nil
}

func (in InputConfig) validate() error {
	switch in.Driver {
	case DriverPeriph:
		if in.Pin == "" {
			return fmt.Errorf("input.pin is required for driver %s", in.Driver)
		}
	case DriverGPIOCdev:
		if in.Line == nil {
			return fmt.Errorf("input.line is required for driver %s", in.Driver)
		}
	case DriverRPIO:
		if in.Line == nil {
			return fmt.Errorf("input.line is required for driver %s", in.Driver)
		}
	case DriverHID:
		if in.Index == nil || *in.Index < 0 || *in.Index > 15 {
			return fmt.Errorf("input.index must be between 0 and 15 for driver %s", in.Driver)
		}
	case DriverScript:
		for _, c := range in.Script {
			if c != '0' && c != '1' && c != 'x' {
				return fmt.Errorf("input.script may only contain 0, 1 and x")
			}
		}
	case "":
		return fmt.Errorf("input.driver is required")
	default:
		return fmt.Errorf("unknown input driver: %s", in.Driver)
	}

	switch in.Pull {
	case "", "up", "down", "none":
	default:
		return fmt.Errorf("unknown input.pull: %s", in.Pull)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Timing.DebounceMs == 0 {
		c.Timing.DebounceMs = 50
	}
	if c.Timing.DoubleClickMs == 0 {
		c.Timing.DoubleClickMs = 350
	}
	if c.Timing.Sync == nil {
		sync := true
		c.Timing.Sync = &sync
	}
	if c.Bus.QueueSize == 0 {
		c.Bus.QueueSize = 64
	}
	if c.Bus.Workers == 0 {
		c.Bus.Workers = 1
	}
	if c.Device.ReconnectMs == 0 {
		c.Device.ReconnectMs = 1000
	}
	if c.TUI.Command == "" {
		c.TUI.Args = nil
	}

	for i := range c.Buttons {
		btn := &c.Buttons[i]
		if btn.DebounceMs == 0 {
			btn.DebounceMs = c.Timing.DebounceMs
		}
		if btn.DoubleClickMs == 0 {
			btn.DoubleClickMs = c.Timing.DoubleClickMs
		}
		if btn.Sync == nil {
			sync := *c.Timing.Sync
			btn.Sync = &sync
		}
		if btn.Input.ActiveLow == nil {
			// Buttons are usually wired to ground with a pull-up
			activeLow := btn.Input.Driver != DriverHID && btn.Input.Driver != DriverScript
			btn.Input.ActiveLow = &activeLow
		}
		if btn.Input.Pull == "" {
			btn.Input.Pull = "up"
		}
	}

	if c.Display.Width == 0 {
		c.Display.Width = 128
	}
	if c.Display.Height == 0 {
		c.Display.Height = 64
	}
	if c.Display.UpdateIntervalMs == 0 {
		c.Display.UpdateIntervalMs = 100
	}
}

// Debounce returns the button's debounce interval
func (b Button) Debounce() time.Duration {
	return time.Duration(b.DebounceMs) * time.Millisecond
}

// DoubleClick returns the button's double-click window
func (b Button) DoubleClick() time.Duration {
	return time.Duration(b.DoubleClickMs) * time.Millisecond
}

// Synchronous reports whether gestures are delivered synchronously
func (b Button) Synchronous() bool {
	return b.Sync == nil || *b.Sync
}

// Actions returns the configured key actions keyed by gesture name
func (b Button) Actions() map[string]*KeyAction {
	actions := make(map[string]*KeyAction)
	for name, a := range map[string]*KeyAction{
		"on_down":         b.OnDown,
		"on_hold":         b.OnHold,
		"on_up":           b.OnUp,
		"on_click":        b.OnClick,
		"on_double_click": b.OnDoubleClick,
	} {
		if a != nil && len(a.Keys) > 0 {
			actions[name] = a
		}
	}
	return actions
}

// FindButton returns the button with the given name
func (c *Config) FindButton(name string) (*Button, bool) {
	for i := range c.Buttons {
		if c.Buttons[i].Name == name {
			return &c.Buttons[i], true
		}
	}
	return nil, false
}

// UpdateDeviceIDs updates the vendor_id and product_id in a config file
// while preserving the rest of the file structure and comments
func UpdateDeviceIDs(path string, vendorID, productID uint16) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	content := string(data)

	vendorRegex := regexp.MustCompile(`(?m)^(\s*vendor_id:\s*)(?:0x[0-9A-Fa-f]+|\d+)`)
	productRegex := regexp.MustCompile(`(?m)^(\s*product_id:\s*)(?:0x[0-9A-Fa-f]+|\d+)`)

	if !vendorRegex.MatchString(content) {
		// No device section yet
		content = fmt.Sprintf("device:\n  vendor_id: 0x%04X\n  product_id: 0x%04X\n\n", vendorID, productID) + content
	} else {
		content = vendorRegex.ReplaceAllString(content, fmt.Sprintf("${1}0x%04X", vendorID))
		content = productRegex.ReplaceAllString(content, fmt.Sprintf("${1}0x%04X", productID))
	}

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// CreateDefaultConfig creates a new config file with default values and the
// specified device, mapping its first key to a single button
func CreateDefaultConfig(path string, vendorID, productID uint16) error {
	content := fmt.Sprintf(`# pushbutton configuration

timing:
  debounce_ms: 50
  double_click_ms: 350
  sync: true

device:
  vendor_id: 0x%04X
  product_id: 0x%04X
  reconnect_ms: 1000

# tui:
#   command: "your-tui-app"
#   args: []

buttons:
  - name: btn_0
    input:
      driver: hid
      index: 0
    on_click:
      keys: ["enter"]
    on_double_click:
      keys: ["esc"]

display:
  width: 128
  height: 64
  update_interval_ms: 100
  regions:
    - name: last
      x: 0
      y: 0
      width: 128
      height: 32
      source: gesture
`, vendorID, productID)

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	return nil
}

// Exists checks if a config file exists
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
