package colors

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// SetupBackgroundColorTypeFromEnv lets GQLPROBE_HAS_LIGHT_BG force the
// background type used when rendering markdown errors. Without it, lipgloss
// guesses from COLORFGBG, which many terminals don't set.
func SetupBackgroundColorTypeFromEnv() {
	envvar := strings.ToLower(os.Getenv("GQLPROBE_HAS_LIGHT_BG"))
	switch envvar {
	case "true", "1", "yes", "y", "on":
		lipgloss.SetHasDarkBackground(false)
	case "false", "0", "no", "n", "off":
		lipgloss.SetHasDarkBackground(true)
	default:
		// Otherwise, let lipgloss determine the background color based on the terminal.
	}
}
