package welcome

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/skillquest/internal/ui/theme"
)

const bannerArt = `
 ███████╗██╗  ██╗██╗██╗     ██╗      ██████╗ ██╗   ██╗███████╗███████╗████████╗
 ██╔════╝██║ ██╔╝██║██║     ██║     ██╔═══██╗██║   ██║██╔════╝██╔════╝╚══██╔══╝
 ███████╗█████╔╝ ██║██║     ██║     ██║   ██║██║   ██║█████╗  ███████╗   ██║
 ╚════██║██╔═██╗ ██║██║     ██║     ██║▄▄ ██║██║   ██║██╔══╝  ╚════██║   ██║
 ███████║██║  ██╗██║███████╗███████╗╚██████╔╝╚██████╔╝███████╗███████║   ██║
 ╚══════╝╚═╝  ╚═╝╚═╝╚══════╝╚══════╝ ╚══▀▀═╝  ╚═════╝ ╚══════╝╚══════╝   ╚═╝`

const bannerCompact = "S K I L L Q U E S T"

// bannerMinWidth is the narrowest terminal that fits bannerArt.
const bannerMinWidth = 82

// RenderBanner returns the SKILLQUEST banner styled in the primary color.
// Uses a compact fallback for terminals narrower than the block art.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < bannerMinWidth {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
