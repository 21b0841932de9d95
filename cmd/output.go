package cmd

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/abhisek/skillquest/internal/api"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

// rule prints a horizontal separator of width n.
func rule(n int) {
	fmt.Println(strings.Repeat("─", n))
}

// okMark renders a colored check or cross.
func okMark(ok bool) string {
	if ok {
		return green("✓")
	}
	return red("✗")
}

// statusGlyph renders a task status the way the skill map does.
func statusGlyph(s api.TaskStatus) string {
	switch s {
	case api.StatusCompleted:
		return green("✓")
	case api.StatusAvailable:
		return yellow("●")
	default:
		return gray("○")
	}
}

// truncate shortens s to n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

// coins formats a coin amount.
func coins(n int) string {
	return yellow(fmt.Sprintf("%d coins", n))
}
