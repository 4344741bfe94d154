// SPDX-License-Identifier: MPL-2.0

package cmd

import "github.com/charmbracelet/lipgloss"

// Color palette - shared hex colors for consistent theming across all CLI output.
// These colors are designed for dark terminal backgrounds with good contrast.
const (
	// ColorPrimary is purple - used for titles, headers, and primary emphasis.
	ColorPrimary = lipgloss.Color("#7C3AED")

	// ColorMuted is gray - used for subtitles, secondary text, and de-emphasized content.
	ColorMuted = lipgloss.Color("#6B7280")

	// ColorSuccess is green - used for in-sync and applied states.
	ColorSuccess = lipgloss.Color("#10B981")

	// ColorError is red - used for failed resources and fatal errors.
	ColorError = lipgloss.Color("#EF4444")

	// ColorWarning is amber - used for pending changes in plan output.
	ColorWarning = lipgloss.Color("#F59E0B")

	// ColorHighlight is blue - used for resource IDs and file paths.
	ColorHighlight = lipgloss.Color("#3B82F6")
)

// Base styles - reusable lipgloss styles built from the color palette.
var (
	// TitleStyle is for primary headers and section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// SubtitleStyle is for secondary headers and descriptions.
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// SuccessStyle is for in-sync and applied indicators.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	// ErrorStyle is for failure indicators.
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorError)

	// WarningStyle is for pending-change indicators.
	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	// ResourceStyle is for resource IDs and paths.
	ResourceStyle = lipgloss.NewStyle().
			Foreground(ColorHighlight)
)
