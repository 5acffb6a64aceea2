package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pleimann/pushbutton/internal/utils"
)

type example struct {
	cmd  string
	desc string
}

// PrintUsage displays the styled help/usage text
func PrintUsage(version string) {
	name := utils.ExecutableName()

	printBanner(version, ColorMuted)
	fmt.Println(Muted("Debounced push buttons with down, hold, up, click and double-click actions"))
	fmt.Println()

	printSection("Usage", []string{
		name + " [flags]              Run buttons, actions and display",
		name + " watch [flags]        Print gestures as they happen",
		name + " list-devices [flags] List available HID devices",
		name + " set-device [args]    Configure the HID macropad",
		name + " help                 Show this help message",
	})

	printSection("Flags", []string{
		"-config string    Path to configuration file (default \"config.yaml\")",
		"-verbose          Log every gesture and timing detail",
		"-version          Print version and exit",
	})

	fmt.Println(Bold("Commands"))
	printCommand("watch", "Run the configured buttons and print each gesture without running actions")
	printCommand("list-devices", "List available HID devices, marking the configured one",
		"-all lists every interface of a device separately")
	printCommand("set-device", "Set the HID device in the config file",
		"Run "+Code(name+" set-device --help")+" for more information")

	printExamples([]example{
		{name, "Run with default config.yaml"},
		{name + " -config desk.yaml -verbose", "Run with a custom config and debug logs"},
		{name + " watch", "Check wiring and timings"},
		{name + " set-device 0x1234 0x5678", "Set device by vendor/product ID"},
	})
}

func printBanner(version string, versionColor lipgloss.Color) {
	banner := lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary).
		Render(utils.ExecutableName())

	versionTag := lipgloss.NewStyle().
		Foreground(versionColor).
		Render("v" + version)

	fmt.Printf("%s %s\n", banner, versionTag)
}

func printSection(title string, items []string) {
	fmt.Println(Bold(title))
	for _, item := range items {
		fmt.Printf("  %s\n", item)
	}
	fmt.Println()
}

func printCommand(name string, lines ...string) {
	fmt.Printf("  %s\n", CommandStyle.Render(name))
	for _, line := range lines {
		fmt.Printf("      %s\n", line)
	}
	fmt.Println()
}

func printExamples(examples []example) {
	fmt.Println(Bold("Examples"))

	cmdStyle := lipgloss.NewStyle().Foreground(ColorSecondary)

	maxLen := 0
	for _, ex := range examples {
		maxLen = max(maxLen, len(ex.cmd))
	}
	for _, ex := range examples {
		padding := strings.Repeat(" ", maxLen-len(ex.cmd)+2)
		fmt.Printf("  %s%s%s\n", cmdStyle.Render(ex.cmd), padding, Muted(ex.desc))
	}
	fmt.Println()
}

// PrintWatchUsage displays the help text for the watch subcommand
func PrintWatchUsage() {
	name := utils.ExecutableName()

	fmt.Println(Bold("Usage:"), name+" watch [options]")
	fmt.Println()
	fmt.Println("Run every configured button and print its gestures.")
	fmt.Println(Muted("Actions and the display are not started. Press ctrl+c to stop."))
	fmt.Println()

	fmt.Println(Bold("Options"))
	fmt.Printf("  %s    Path to configuration file (default \"config.yaml\")\n", SubtitleStyle.Render("-config string"))
	fmt.Printf("  %s            Also print down and up\n", SubtitleStyle.Render("-all"))
	fmt.Println()

	printExamples([]example{
		{name + " watch", "Print hold, click and double-click"},
		{name + " watch -all", "Print every gesture"},
	})
}

// PrintSetDeviceUsage displays the styled help text for set-device subcommand
func PrintSetDeviceUsage() {
	name := utils.ExecutableName()

	fmt.Println(Bold("Usage:"), name+" set-device [options] [vendor_id product_id]")
	fmt.Println()
	fmt.Println("Set the HID device in the configuration file.")
	fmt.Println()
	fmt.Println(Muted("If vendor_id and product_id are provided, updates the config directly."))
	fmt.Println(Muted("Otherwise, displays a list of connected devices to choose from."))
	fmt.Println()

	fmt.Println(Bold("Arguments"))
	fmt.Printf("  %s    Device vendor ID (hex with 0x prefix or decimal)\n", SubtitleStyle.Render("vendor_id"))
	fmt.Printf("  %s   Device product ID (hex with 0x prefix or decimal)\n", SubtitleStyle.Render("product_id"))
	fmt.Println()

	fmt.Println(Bold("Options"))
	fmt.Printf("  %s    Path to configuration file (default \"config.yaml\")\n", SubtitleStyle.Render("-config string"))
	fmt.Println()

	printExamples([]example{
		{name + " set-device", "Interactive selection"},
		{name + " set-device 0x1234 0x5678", "Direct specification"},
		{name + " set-device -config my.yaml", "Use different config"},
	})
}

// PrintVersion displays the styled version information
func PrintVersion(version string) {
	printBanner(version, ColorSuccess)
}

// PrintFatalError displays a styled fatal error message with context
func PrintFatalError(context, message string) {
	fmt.Println()
	fmt.Println(Error(context))
	fmt.Printf("  %s\n", Muted(message))
	fmt.Println()
}
