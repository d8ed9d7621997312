package status

import (
	"maps"
	"slices"
	"strings"

	"github.com/LunNova/i3status-nix-update-widget/internal/reboot"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8BC34A")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#8BC34A"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#e53935")).Bold(true)
)

// RenderReport renders the reboot check for a terminal.
func RenderReport(booted, current string, mismatches []reboot.VersionMismatch) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Reboot check"))
	sb.WriteString("\n")
	sb.WriteString(mutedStyle.Render("booted:  " + booted))
	sb.WriteString("\n")
	sb.WriteString(mutedStyle.Render("current: " + current))
	sb.WriteString("\n\n")

	if len(mismatches) == 0 {
		sb.WriteString(okStyle.Render("✓ No reboot required"))
		sb.WriteString("\n")
		return sb.String()
	}

	sb.WriteString(warningStyle.Render("✗ Reboot required"))
	sb.WriteString("\n\n")

	rows := make([][]string, 0, len(mismatches))
	for _, m := range mismatches {
		rows = append(rows, []string{m.Name, m.Booted, m.Current})
	}
	sb.WriteString(renderTable([]string{"Component", "Booted", "Current"}, rows))
	return sb.String()
}

// RenderSnapshot renders one snapshot as a two column table ordered by name.
func RenderSnapshot(title string, snap reboot.Snapshot) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n")
	if len(snap) == 0 {
		sb.WriteString(mutedStyle.Render("(no module tree)"))
		sb.WriteString("\n")
		return sb.String()
	}

	rows := make([][]string, 0, len(snap))
	for _, name := range slices.Sorted(maps.Keys(snap)) {
		rows = append(rows, []string{name, snap[name]})
	}
	sb.WriteString(renderTable([]string{"Component", "Version"}, rows))
	return sb.String()
}

func renderTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}
	// padding
	for i := range widths {
		widths[i] += 2
	}

	sep := mutedStyle.Render("|")
	var sb strings.Builder
	for i, h := range headers {
		sb.WriteString(headerStyle.Width(widths[i]).Render(h))
		if i < len(headers)-1 {
			sb.WriteString(sep)
		}
	}
	sb.WriteString("\n")

	total := len(headers) - 1
	for _, w := range widths {
		total += w
	}
	sb.WriteString(mutedStyle.Render(strings.Repeat("-", total)))
	sb.WriteString("\n")

	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			sb.WriteString(cellStyle.Width(widths[i]).Render(cell))
			if i < len(row)-1 {
				sb.WriteString(sep)
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
