package console

import (
	"github.com/charmbracelet/lipgloss"
)

const welcome = "Welcome to HDFS-shell CLI"

var (
	welcomeStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	versionStyle = lipgloss.NewStyle().Faint(true)
	bannerStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("6")).
			Padding(0, 2)
)

// Banner is printed when an interactive shell starts.
func Banner(version string) string {
	if version == "" {
		version = "Unknown Version"
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		welcomeStyle.Render(welcome),
		versionStyle.Render("version "+version+"  ·  type help for a list of commands"),
	)
	return bannerStyle.Render(body)
}
