package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/pleimann/pushbutton/internal/utils"
)

// DeviceInfo is a HID device as shown to the user
type DeviceInfo struct {
	VendorID     uint16
	ProductID    uint16
	Manufacturer string
	Product      string
	Interfaces   int
	Configured   bool // matches device: in the config file
}

// deviceSelectModel runs the huh form inside Bubble Tea so esc and q cancel
type deviceSelectModel struct {
	form    *huh.Form
	aborted bool
}

func (m deviceSelectModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m deviceSelectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			m.aborted = true
			return m, tea.Quit
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, tea.Quit
	}

	return m, cmd
}

func (m deviceSelectModel) View() string {
	if m.form.State == huh.StateCompleted {
		return ""
	}
	return m.form.View()
}

// SelectDevice asks the user to pick a device. It returns nil when the
// selection is cancelled.
func SelectDevice(devices []DeviceInfo) (*DeviceInfo, error) {
	if len(devices) == 0 {
		return nil, fmt.Errorf("no devices to select from")
	}

	options := make([]huh.Option[int], len(devices))
	for i, d := range devices {
		label := fmt.Sprintf("%s  %s", DeviceIDStyle.Render(FormatID(d.VendorID, d.ProductID)), formatDeviceName(d))
		options[i] = huh.NewOption(label, i)
	}

	var selectedIndex int
	for i, d := range devices {
		if d.Configured {
			selectedIndex = i
		}
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Select HID Device").
				Description("Choose the macropad whose keys act as buttons (esc to cancel)").
				Options(options...).
				Value(&selectedIndex),
		),
	).WithTheme(customTheme()).WithShowHelp(false)

	finalModel, err := tea.NewProgram(deviceSelectModel{form: form}).Run()
	if err != nil {
		return nil, err
	}

	if finalModel.(deviceSelectModel).aborted {
		return nil, nil
	}
	return &devices[selectedIndex], nil
}

// FormatID renders a vendor and product id pair
func FormatID(vendorID, productID uint16) string {
	return fmt.Sprintf("0x%04X:0x%04X", vendorID, productID)
}

func formatDeviceName(d DeviceInfo) string {
	name := d.Product
	if name == "" {
		name = "Unknown Device"
	}
	if d.Manufacturer != "" {
		name = d.Manufacturer + " " + name
	}
	return name
}

// PrintDeviceList lists devices, one line per device, marking the one in
// the config file
func PrintDeviceList(devices []DeviceInfo) {
	if len(devices) == 0 {
		fmt.Println(Warning("No HID devices found"))
		return
	}

	fmt.Println()
	fmt.Println(Title("HID Devices"))
	fmt.Println(Muted(fmt.Sprintf("Found %d device(s)", len(devices))))
	fmt.Println()

	for _, d := range devices {
		line := DeviceIDStyle.Render(FormatID(d.VendorID, d.ProductID)) + "  " + formatDeviceName(d)
		if d.Interfaces > 1 {
			line += Muted(fmt.Sprintf(" (%d interfaces)", d.Interfaces))
		}
		if d.Configured {
			line += " " + Success("configured")
		}
		fmt.Println("  " + line)
	}
	fmt.Println()
}

// PrintDeviceSaved reports the device written to the config file
func PrintDeviceSaved(configPath string, vendorID, productID uint16, created, connected bool) {
	message := "Device configuration updated"
	if created {
		message = "Device configuration created"
	}

	fmt.Println()
	fmt.Println(Success(message))
	fmt.Println()
	fmt.Printf("  %s %s\n", Muted("Config:"), configPath)
	fmt.Printf("  %s %s\n", Muted("Device:"), DeviceIDStyle.Render(FormatID(vendorID, productID)))
	if !connected {
		fmt.Printf("  %s\n", Warning("The device is not connected right now"))
	}
	if created {
		fmt.Printf("  %s %s\n", Muted("Next:"), "map more keys under buttons: and run "+Code(utils.ExecutableName()+" watch"))
	}
	fmt.Println()
}

// customTheme returns a custom huh theme matching our style palette
func customTheme() *huh.Theme {
	t := huh.ThemeBase()

	// Customize the theme to match our color palette
	t.Focused.Title = t.Focused.Title.Foreground(ColorPrimary).Bold(true)
	t.Focused.Description = t.Focused.Description.Foreground(ColorMuted)
	t.Focused.SelectedOption = t.Focused.SelectedOption.Foreground(ColorPrimary)
	t.Focused.UnselectedOption = t.Focused.UnselectedOption.Foreground(ColorText)
	t.Focused.SelectSelector = t.Focused.SelectSelector.Foreground(ColorPrimary)

	return t
}
