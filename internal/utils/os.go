package utils

import (
	"os"
	"path/filepath"
	"strings"
)

const defaultName = "pushbutton"

// ExecutableName returns the name the binary was installed under, for help
// text and error hints
func ExecutableName() string {
	executable, err := os.Executable()
	if err != nil {
		return defaultName
	}
	return executableName(executable)
}

func executableName(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), ".exe")
	if name == "" || name == "." || strings.HasSuffix(name, ".test") {
		return defaultName
	}
	return name
}
