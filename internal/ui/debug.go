package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/abelbrown/lens/internal/otel"
)

// debugPanelChrome is the number of lines DebugPanel's border and padding
// take. Keep in sync with the DebugPanel style.
const debugPanelChrome = 4

// debugOverlay renders workflow stats and recent events. Returns "" when
// ring is nil.
func debugOverlay(ring *otel.RingBuffer, width, height int) string {
	if ring == nil {
		return ""
	}

	stats := ring.Stats()
	recent := ring.Last(20)

	var lines []string
	lines = append(lines, DebugHeaderStyle.Render("Workflow Stats"))
	lines = append(lines, fmt.Sprintf("  Images:     %d staged, %d cleared",
		stats[otel.KindImageStaged], stats[otel.KindImageCleared]))
	lines = append(lines, fmt.Sprintf("  Detections: %d started, %d complete, %d errors",
		stats[otel.KindDetectStart], stats[otel.KindDetectComplete], stats[otel.KindDetectError]))
	lines = append(lines, fmt.Sprintf("  Questions:  %d asked, %d answered, %d errors",
		stats[otel.KindAskStart], stats[otel.KindAskComplete], stats[otel.KindAskError]))
	lines = append(lines, fmt.Sprintf("  Stale:      %d discarded", stats[otel.KindStale]))
	lines = append(lines, fmt.Sprintf("  Buffer:     %d / %d events", ring.Len(), ring.Cap()))
	lines = append(lines, "")

	lines = append(lines, DebugHeaderStyle.Render("Recent Events"))
	for _, e := range recent {
		line := fmt.Sprintf("  %6s  %-18s", formatAge(time.Since(e.Time)), string(e.Kind))
		if e.Gen != 0 {
			line += fmt.Sprintf("  gen:%d", e.Gen)
		}
		if e.Msg != "" {
			line += "  " + truncateRunes(e.Msg, 40)
		}
		if e.Err != "" {
			line += "  ERR:" + truncateRunes(e.Err, 30)
		}
		lines = append(lines, line)
	}

	maxHeight := height - debugPanelChrome
	if maxHeight < 1 {
		maxHeight = 1
	}
	if len(lines) > maxHeight {
		lines = lines[:maxHeight]
	}

	panelWidth := 76
	if panelWidth > width-4 {
		panelWidth = width - 4
	}
	if panelWidth < 20 {
		panelWidth = 20
	}
	return DebugPanel.Width(panelWidth).Render(strings.Join(lines, "\n"))
}

// formatAge formats a duration as a compact human string.
// Negative durations from clock skew clamp to "0ms".
func formatAge(d time.Duration) string {
	if d < 0 {
		return "0ms"
	}
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

// debugStatusBar renders the status bar for the debug overlay.
func debugStatusBar(width int) string {
	keys := StatusBarKey.Render("D") + StatusBarText.Render(":close")
	return StatusBar.Width(width).Render("  [DEBUG]  " + keys)
}
