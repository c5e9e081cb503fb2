package display

import (
	_ "embed"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
)

//go:embed banner.txt
var bannerRaw string

// RenderBanner returns the PROCTOR art centred in width columns, followed
// by a newline. Art wider than the terminal is left unpadded.
func RenderBanner(width int) string {
	art := bannerStyle.Render(strings.TrimRight(bannerRaw, "\n"))
	if width <= lipgloss.Width(art) {
		return art + "\n"
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, art) + "\n"
}

// termWidth returns the current terminal column count, or 80 as fallback.
func termWidth() int {
	if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 0 {
		return w
	}
	return 80
}
