package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("go-ffmpeg-qp-sweep"))
	b.WriteString(mutedStyle.Render(fmt.Sprintf("  %s  elapsed %s", m.input, formatDuration(m.Elapsed()))))
	b.WriteString("\n\n")

	for _, notice := range m.notices {
		b.WriteString(errorStyle.Render(notice))
		b.WriteString("\n")
	}
	if len(m.notices) > 0 {
		b.WriteString("\n")
	}

	b.WriteString(m.renderCurrent())
	b.WriteString("\n")
	b.WriteString(m.renderCompleted())

	if m.done {
		b.WriteString("\n")
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Batch aborted: %v", m.err)))
		} else {
			b.WriteString(successStyle.Render("Batch complete."))
		}
	}

	b.WriteString("\n\n")
	b.WriteString(mutedStyle.Render("q: quit"))
	b.WriteString("\n")

	return b.String()
}

func (m Model) renderCurrent() string {
	if !m.running {
		if m.done {
			return ""
		}
		return panelStyle.Render(mutedStyle.Render("waiting..."))
	}

	lines := []string{
		labelStyle.Render(fmt.Sprintf("Test %d of %d: %s", m.index+1, m.total, m.label)),
		fmt.Sprintf("position  %s", formatSeconds(m.stats.TimeSeconds)),
		fmt.Sprintf("frame     %d", m.stats.Frame),
		fmt.Sprintf("fps       %.1f", m.stats.FPS),
		fmt.Sprintf("speed     %s", formatSpeed(m.stats.Speed)),
	}
	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m Model) renderCompleted() string {
	if len(m.results) == 0 {
		return ""
	}

	lines := make([]string, 0, len(m.results)+1)
	lines = append(lines, labelStyle.Render("Completed"))
	for _, r := range m.results {
		lines = append(lines, fmt.Sprintf("%s %s  %.1f MB  %.1f Mbps  %.1fx  %.1fs",
			successStyle.Render("✓"),
			filepath.Base(r.OutputFile),
			float64(r.OutputSize)/1024/1024,
			r.BitrateMbps,
			r.Ratio,
			r.Elapsed.Seconds(),
		))
	}
	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func formatSpeed(speed float64) string {
	if speed <= 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.2fx", speed)
}

func formatSeconds(s float64) string {
	total := int(s)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

func formatDuration(d time.Duration) string {
	return formatSeconds(d.Seconds())
}
