// Package icon provides a multi-variant rendering engine for CLI symbols and feedback indicators.
package icon

import (
	"github.com/nagare-player/nagare/key"
	"github.com/spf13/viper"
)

// Visual Variant Constants - these define the supported aesthetic styles for icon rendering.
const (
	emoji = "emoji"
	plain = "plain"
)

// AvailableVariants returns a slice of all registered icon style identifiers.
func AvailableVariants() []string {
	return []string{emoji, plain}
}

// iconDef encapsulates the visual representations of a single CLI symbol across all supported variants.
type iconDef struct {
	emoji string
	plain string
}

// Get retrieves the visual representation for the receiver based on the global icons variant configuration.
func (d *iconDef) Get() string {
	switch viper.GetString(key.IconsVariant) {
	case emoji:
		return d.emoji
	case plain:
		return d.plain
	default:
		return ""
	}
}

// Icon identifies a renderable CLI symbol.
type Icon int

const (
	Success Icon = iota + 1
	Fail
	Progress
	Play
	Pause
	Audio
	Subtitle
)

var icons = map[Icon]*iconDef{
	Success:  {emoji: "✅", plain: "[ok]"},
	Fail:     {emoji: "❌", plain: "[!]"},
	Progress: {emoji: "⏳", plain: "..."},
	Play:     {emoji: "▶️", plain: ">"},
	Pause:    {emoji: "⏸️", plain: "||"},
	Audio:    {emoji: "🔊", plain: "(a)"},
	Subtitle: {emoji: "💬", plain: "(s)"},
}

// Get returns the rendered string for a specified Icon identifier from the global registry.
func Get(i Icon) string {
	return icons[i].Get()
}
