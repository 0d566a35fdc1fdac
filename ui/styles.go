package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	normalDim = lipgloss.AdaptiveColor{Light: "#A49FA5", Dark: "#777777"}
	gray      = lipgloss.AdaptiveColor{Light: "#909090", Dark: "#626262"}
	midGray   = lipgloss.AdaptiveColor{Light: "#B2B2B2", Dark: "#4A4A4A"}
	red       = lipgloss.AdaptiveColor{Light: "#FF4672", Dark: "#ED567A"}
	fuchsia   = lipgloss.Color("#EE6FF8")
	green     = lipgloss.Color("#04B575")
	cream     = lipgloss.AdaptiveColor{Light: "#FFFDF5", Dark: "#FFFDF5"}
	indigo    = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"}
	amber     = lipgloss.AdaptiveColor{Light: "#C48A00", Dark: "#F5B83D"}

	mintGreen = lipgloss.AdaptiveColor{Light: "#89F0CB", Dark: "#89F0CB"}
	darkGreen = lipgloss.AdaptiveColor{Light: "#1C8760", Dark: "#1C8760"}

	errorTitleStyle = lipgloss.NewStyle().
			Foreground(cream).
			Background(red).
			Padding(0, 1)

	subtleStyle = lipgloss.NewStyle().Foreground(gray)

	errorBannerStyle = lipgloss.NewStyle().
				Foreground(red).
				Border(lipgloss.RoundedBorder()).
				BorderForeground(red).
				Padding(0, 1)

	logoStyle = lipgloss.NewStyle().
			Foreground(cream).
			Background(indigo).
			Bold(true).
			Padding(0, 1)

	titleStyle    = lipgloss.NewStyle().Bold(true)
	authorStyle   = lipgloss.NewStyle().Foreground(fuchsia)
	readyStyle    = lipgloss.NewStyle().Foreground(green).Bold(true)
	chineseStyle  = lipgloss.NewStyle().Foreground(normalDim)
	recordStyle   = lipgloss.NewStyle().Foreground(amber).Bold(true).Underline(true)
	sourceStyle   = lipgloss.NewStyle().Foreground(indigo)
	cursorStyle   = lipgloss.NewStyle().Foreground(fuchsia).Bold(true)
	playingStyle  = lipgloss.NewStyle().Foreground(green).Bold(true)
	preparingMark = lipgloss.NewStyle().Foreground(amber).Render("…")
	dividerStyle  = lipgloss.NewStyle().Foreground(midGray)
	spinnerStyle  = lipgloss.NewStyle().Foreground(fuchsia)
)

func logoView() string {
	return logoStyle.Render("Documentarian")
}

func errorView(err error, fatal bool) string {
	exitMsg := "press any key to "
	if fatal {
		exitMsg += "exit"
	} else {
		exitMsg += "return"
	}
	s := fmt.Sprintf("%s\n\n%v\n\n%s",
		errorTitleStyle.Render("ERROR"),
		err,
		subtleStyle.Render(exitMsg),
	)
	return "\n" + indent(s, 3)
}

// Lightweight version of reflow's indent function.
func indent(s string, n int) string {
	if n <= 0 || s == "" {
		return s
	}
	l := strings.Split(s, "\n")
	b := strings.Builder{}
	i := strings.Repeat(" ", n)
	for _, v := range l {
		fmt.Fprintf(&b, "%s%s\n", i, v)
	}
	return b.String()
}
