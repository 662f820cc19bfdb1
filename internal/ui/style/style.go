// Package style provides the shared colours and icons used by the logger and
// the build renderer.
package style

import (
	"github.com/cespare/xxhash/v2"
	"github.com/charmbracelet/lipgloss"
)

// Palette.
var (
	Iris   = lipgloss.Color("#8B5CF6")
	Slate  = lipgloss.Color("#667085")
	Green  = lipgloss.Color("#22A06B")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
)

// Icons.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Arrow   = "→"
	Dot     = "●"
)

// targetPalette colours "[name]" prefixes.
var targetPalette = []lipgloss.Color{Iris, Green, Yellow, Slate}

// TargetColor returns the prefix colour for a target. A name always maps to
// the same colour, in the renderer and in log lines alike.
func TargetColor(name string) lipgloss.Color {
	return targetPalette[xxhash.Sum64String(name)%uint64(len(targetPalette))]
}
