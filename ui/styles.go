package ui

import "github.com/charmbracelet/lipgloss"

var (
	normalDim   = lipgloss.AdaptiveColor{Light: "#A49FA5", Dark: "#777777"}
	gray        = lipgloss.AdaptiveColor{Light: "#909090", Dark: "#626262"}
	midGray     = lipgloss.AdaptiveColor{Light: "#B2B2B2", Dark: "#4A4A4A"}
	darkGray    = lipgloss.AdaptiveColor{Light: "#DDDADA", Dark: "#3C3C3C"}
	brightGray  = lipgloss.AdaptiveColor{Light: "#847A85", Dark: "#979797"}
	fuchsia     = lipgloss.Color("#EE6FF8")
	green       = lipgloss.Color("#04B575")
	red         = lipgloss.AdaptiveColor{Light: "#FF4672", Dark: "#ED567A"}
	yellowGreen = lipgloss.AdaptiveColor{Light: "#8F8F00", Dark: "#ECFD65"}
	cream       = lipgloss.AdaptiveColor{Light: "#FFFDF5", Dark: "#FFFDF5"}
	mintGreen   = lipgloss.AdaptiveColor{Light: "#89F0CB", Dark: "#89F0CB"}
	darkGreen   = lipgloss.AdaptiveColor{Light: "#1C8760", Dark: "#1C8760"}
)

var (
	logoStyle = lipgloss.NewStyle().
			Foreground(cream).
			Background(fuchsia).
			Padding(0, 1)

	errorTitleStyle = lipgloss.NewStyle().
			Foreground(cream).
			Background(red).
			Padding(0, 1)

	subtleStyle       = lipgloss.NewStyle().Foreground(brightGray)
	dimStyle          = lipgloss.NewStyle().Foreground(normalDim)
	selectedStyle     = lipgloss.NewStyle().Foreground(fuchsia).Bold(true)
	matchStyle        = lipgloss.NewStyle().Foreground(yellowGreen).Underline(true)
	spinnerStyle      = lipgloss.NewStyle().Foreground(gray)
	stateStyle        = lipgloss.NewStyle().Foreground(green).Bold(true)
	buzzStyle         = lipgloss.NewStyle().Foreground(cream).Background(red).Bold(true).Padding(0, 1)
	filterPromptStyle = lipgloss.NewStyle().Foreground(fuchsia)
	dividerStyle      = lipgloss.NewStyle().Foreground(darkGray)
	countStyle        = lipgloss.NewStyle().Foreground(midGray)
	statusMsgStyle    = lipgloss.NewStyle().Foreground(mintGreen).Background(darkGreen).Padding(0, 1)
)
