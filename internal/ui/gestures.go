package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/pleimann/pushbutton/internal/config"
	"github.com/pleimann/pushbutton/internal/gesture"
)

// GestureLine formats a gesture for the watch command
func GestureLine(g gesture.Gesture) string {
	style, ok := gestureStyles[g.Type]
	if !ok {
		style = MutedStyle
	}

	ts := g.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	return fmt.Sprintf("%s  %s %s",
		Muted(ts.Format("15:04:05.000")),
		ButtonStyle.Render(g.Source),
		style.Render(g.Type.Short()),
	)
}

// PrintButtons lists the configured buttons with their input and timings
func PrintButtons(cfg *config.Config) {
	fmt.Println(Title("Buttons"))
	for _, btn := range cfg.Buttons {
		fmt.Printf("  %s %s  %s\n",
			ButtonStyle.Render(btn.Name),
			SubtitleStyle.Render(describeInput(btn.Input)),
			Muted(fmt.Sprintf("debounce %v, double-click %v", btn.Debounce(), btn.DoubleClick())),
		)
	}
	fmt.Println()
}

func describeInput(in config.InputConfig) string {
	parts := []string{in.Driver}
	switch in.Driver {
	case config.DriverPeriph:
		parts = append(parts, in.Pin)
	case config.DriverGPIOCdev:
		chip := in.Chip
		if chip == "" {
			chip = "gpiochip0"
		}
		parts = append(parts, fmt.Sprintf("%s:%d", chip, *in.Line))
	case config.DriverRPIO:
		parts = append(parts, fmt.Sprintf("bcm%d", *in.Line))
	case config.DriverHID:
		parts = append(parts, fmt.Sprintf("key %d", *in.Index))
	case config.DriverScript:
		parts = append(parts, fmt.Sprintf("%q", in.Script))
	}
	if in.ActiveLow != nil && *in.ActiveLow {
		parts = append(parts, "active-low")
	}
	return strings.Join(parts, " ")
}
