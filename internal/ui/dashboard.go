package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/lens/internal/workflow"
)

const barWidth = 10

// View renders the UI.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}
	if a.screen == screenAuth {
		return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center,
			a.auth.view(a.width, a.accent))
	}
	if a.showDebug {
		return debugOverlay(a.ring, a.width, a.height-1) + "\n" + debugStatusBar(a.width)
	}

	var sections []string
	sections = append(sections, a.renderHeader())
	sections = append(sections, a.renderImage())

	if a.focus == focusPicker {
		sections = append(sections, SectionTitle.Render("Open image"), a.picker.View())
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	sections = append(sections, a.renderDetections())
	sections = append(sections, a.renderConversation())
	sections = append(sections, a.question.View())
	if line := a.renderMessage(); line != "" {
		sections = append(sections, line)
	}

	var helpView string
	if a.focus == focusQuestion {
		helpView = a.help.View(questionKeys{a.keys})
	} else {
		helpView = a.help.View(a.keys)
	}
	sections = append(sections, StatusBar.Width(a.width).Render(helpView))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (a App) renderHeader() string {
	title := HeaderStyle.Foreground(a.accent).Render("lens")
	sub := MutedText.Render("object detection and Q&A")
	user := ""
	if a.username != "" {
		user = MutedText.Render("signed in as " + a.username)
	}
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(sub) - lipgloss.Width(user)
	if gap < 1 {
		gap = 1
	}
	return title + sub + strings.Repeat(" ", gap) + user
}

func (a App) renderImage() string {
	img := a.ctrl.Image()
	if img == nil {
		return MutedText.Render("No image. Press o to open one.")
	}
	line := fmt.Sprintf("Image: %s (%s, %s)", img.Name, img.ContentType, humanBytes(len(img.Data)))
	lines := []string{MutedText.Render(line)}
	if ref := a.ctrl.PreviewRef(); ref != "" {
		lines = append(lines, MutedText.Render("Preview: "+ref))
	}

	switch {
	case a.ctrl.Detecting():
		lines = append(lines, MutedText.Render(a.spinner.View()+" Detecting objects..."))
	case a.ctrl.AnnotatedRef() != "":
		lines = append(lines, MutedText.Render("Annotated: "+a.ctrl.AnnotatedRef()+"  (s to save)"))
	case !a.ctrl.HasResults():
		lines = append(lines, MutedText.Render("Press d to detect objects."))
	}
	return strings.Join(lines, "\n")
}

func (a App) renderDetections() string {
	if !a.ctrl.HasResults() {
		return ""
	}
	n := len(a.ctrl.Detections())
	title := SectionTitle.Render(fmt.Sprintf("Detections (%d)", n))
	if n == 0 {
		return title + "\n" + MutedText.Render("No objects detected.")
	}
	return title + "\n" + a.table.View()
}

func (a App) renderConversation() string {
	turns := a.ctrl.Turns()
	if !a.ctrl.HasResults() && len(turns) == 0 {
		return ""
	}

	wrap := a.width - 8
	if wrap < 20 {
		wrap = 20
	}
	var lines []string
	for _, t := range turns {
		label := UserTurn.Render("Me:")
		if t.Role == workflow.RoleAssistant {
			label = AssistantTurn.Render("AI:")
		}
		body := lipgloss.NewStyle().Width(wrap).Render(t.Text)
		lines = append(lines, label+" "+strings.ReplaceAll(body, "\n", "\n    "))
	}
	if a.ctrl.Asking() {
		lines = append(lines, MutedText.Render(a.spinner.View()+" Thinking..."))
	}
	if len(lines) == 0 {
		lines = append(lines, MutedText.Render("Ask a question about the detected objects."))
	}

	// Keep the newest turns when the log outgrows the screen.
	if limit := a.height / 3; limit > 3 && len(lines) > limit {
		lines = lines[len(lines)-limit:]
	}
	return SectionTitle.Render("Conversation") + "\n" + strings.Join(lines, "\n")
}

func (a App) renderMessage() string {
	switch {
	case a.err != nil:
		return ErrorStyle.Render("Error: " + a.err.Error())
	case a.ctrl.Notice() != "":
		return ErrorStyle.Render(a.ctrl.Notice())
	case a.status != "":
		return InfoStyle.Render(a.status)
	}
	return ""
}

// detectionColumns builds the table header; the sorted column carries an
// arrow for the direction.
func detectionColumns(d workflow.SortDirective, width int) []table.Column {
	arrow := func(k workflow.SortKey) string {
		if d.Key != k {
			return ""
		}
		if d.Direction == workflow.Descending {
			return " ▼"
		}
		return " ▲"
	}
	classW := 18
	if width > 100 {
		classW = 28
	}
	return []table.Column{
		{Title: "#", Width: 3},
		{Title: "Class" + arrow(workflow.SortClass), Width: classW},
		{Title: "Confidence" + arrow(workflow.SortConfidence), Width: barWidth + 8},
		{Title: "Box (x1, y1, x2, y2)", Width: 28},
	}
}

func detectionRows(view []workflow.Detection) []table.Row {
	rows := make([]table.Row, 0, len(view))
	for i, d := range view {
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", i+1),
			d.Class,
			confidenceCell(d.Confidence),
			formatBBox(d.BBox),
		})
	}
	return rows
}

// confidenceCell renders "92.0% █████████░". Table cells are measured in
// runes, so no styling is applied here.
func confidenceCell(c float64) string {
	if c < 0 {
		c = 0
	}
	if c > 1 {
		c = 1
	}
	filled := int(c*barWidth + 0.5)
	return fmt.Sprintf("%5.1f%% %s%s", c*100, strings.Repeat("█", filled), strings.Repeat("░", barWidth-filled))
}

func formatBBox(b [4]float64) string {
	return fmt.Sprintf("%.0f, %.0f, %.0f, %.0f", b[0], b[1], b[2], b[3])
}

func humanBytes(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.0f KB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%d B", n)
}
