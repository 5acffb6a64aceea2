package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/pleimann/pushbutton/internal/gesture"
)

var (
	ColorPrimary   = lipgloss.Color("#0EA5E9") // Sky
	ColorSecondary = lipgloss.Color("#6366F1") // Indigo
	ColorSuccess   = lipgloss.Color("#22C55E")
	ColorWarning   = lipgloss.Color("#F59E0B")
	ColorError     = lipgloss.Color("#EF4444")
	ColorMuted     = lipgloss.Color("#6B7280")
	ColorText      = lipgloss.Color("#F9FAFB")
)

var (
	TitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	SubtitleStyle = lipgloss.NewStyle().Foreground(ColorSecondary)
	MutedStyle    = lipgloss.NewStyle().Foreground(ColorMuted)
	BoldStyle     = lipgloss.NewStyle().Bold(true)
	CommandStyle  = lipgloss.NewStyle().Foreground(ColorSecondary).Bold(true)

	CodeStyle = lipgloss.NewStyle().
			Foreground(ColorSecondary).
			Background(lipgloss.Color("#1F2937")).
			Padding(0, 1)

	DeviceIDStyle = lipgloss.NewStyle().
			Foreground(ColorSecondary).
			Bold(true)

	// ButtonStyle pads button names so gesture columns line up
	ButtonStyle = lipgloss.NewStyle().
			Foreground(ColorText).
			Bold(true).
			Width(12)
)

// Status lines: icon and color per outcome
var (
	successStyle = lipgloss.NewStyle().Foreground(ColorSuccess)
	warningStyle = lipgloss.NewStyle().Foreground(ColorWarning)
	errorStyle   = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
)

var gestureStyles = map[gesture.Type]lipgloss.Style{
	gesture.Down:        MutedStyle,
	gesture.Hold:        lipgloss.NewStyle().Foreground(ColorWarning).Bold(true),
	gesture.Up:          MutedStyle,
	gesture.Click:       lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true),
	gesture.DoubleClick: lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true),
}

func Title(text string) string   { return TitleStyle.Render(text) }
func Muted(text string) string   { return MutedStyle.Render(text) }
func Code(text string) string    { return CodeStyle.Render(text) }
func Bold(text string) string    { return BoldStyle.Render(text) }
func Success(text string) string { return successStyle.Render("✓ " + text) }
func Warning(text string) string { return warningStyle.Render("⚠ " + text) }
func Error(text string) string   { return errorStyle.Render("✗ " + text) }
