// Package cmd implements the command-line interface for nagare.
package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/charmbracelet/lipgloss"
	"github.com/nagare-player/nagare/color"
	"github.com/nagare-player/nagare/icon"
	"github.com/nagare-player/nagare/key"
	"github.com/nagare-player/nagare/style"
	"github.com/spf13/viper"
)

// CheckDependencies verifies the availability of required system dependencies.
// The current implementation validates the presence of the configured engine binary in the system PATH.
func CheckDependencies() {
	binary := viper.GetString(key.EngineBinary)
	_, err := exec.LookPath(binary)
	if err != nil {
		printMissingDependencyError(binary)
		os.Exit(1)
	}
}

func printMissingDependencyError(dep string) {
	var installCmd string
	if dep == "mpv" {
		switch runtime.GOOS {
		case "darwin":
			installCmd = "brew install mpv"
		case "linux":
			installCmd = "sudo apt install mpv" // Generic, maybe check distro
		case "windows":
			installCmd = "scoop install mpv"
		}
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color.HiRed).
		Padding(1, 2).
		Margin(1, 0)

	title := style.New().Bold(true).Foreground(color.HiRed).Render(fmt.Sprintf("%s Error: Missing Dependency", icon.Get(icon.Fail)))
	body := fmt.Sprintf("The required dependency '%s' was not found in your PATH.", dep)

	suggestion := ""
	if installCmd != "" {
		suggestion = fmt.Sprintf("\n\nTo install it, try running:\n  %s", style.New().Foreground(color.Orange).Bold(true).Render(installCmd))
	}

	fmt.Println(box.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			title,
			"\n",
			body,
			suggestion,
		),
	))
}
