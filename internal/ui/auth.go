package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/lens/internal/account"
)

const (
	fieldUsername = iota
	fieldEmail
	fieldPassword
)

// authForm is the Sign In / Sign Up screen.
type authForm struct {
	signup  bool
	inputs  [3]textinput.Model
	focus   int
	err     string
	info    string
	pending bool
}

func newAuthForm() authForm {
	var f authForm
	placeholders := [3]string{"username", "email", "password"}
	for i := range f.inputs {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.Prompt = "  "
		ti.CharLimit = 128
		ti.Width = 32
		f.inputs[i] = ti
	}
	f.inputs[fieldPassword].EchoMode = textinput.EchoPassword
	f.inputs[fieldPassword].EchoCharacter = '•'
	f.inputs[fieldUsername].Focus()
	return f
}

// fields lists the visible inputs in tab order.
func (f authForm) fields() []int {
	if f.signup {
		return []int{fieldUsername, fieldEmail, fieldPassword}
	}
	return []int{fieldUsername, fieldPassword}
}

func (f *authForm) setMode(signup bool) tea.Cmd {
	f.signup = signup
	f.err = ""
	f.inputs[fieldPassword].SetValue("")
	return f.focusField(fieldUsername)
}

func (f *authForm) focusField(field int) tea.Cmd {
	f.focus = field
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
	return f.inputs[field].Focus()
}

func (f *authForm) move(delta int) tea.Cmd {
	order := f.fields()
	pos := 0
	for i, field := range order {
		if field == f.focus {
			pos = i
		}
	}
	pos = (pos + delta + len(order)) % len(order)
	return f.focusField(order[pos])
}

func (f authForm) value(field int) string {
	return f.inputs[field].Value()
}

func (f authForm) report() account.PasswordReport {
	return account.CheckPassword(f.value(fieldPassword))
}

// canSubmit is false while a request is pending or a required field is
// missing. Sign up additionally needs a valid password.
func (f authForm) canSubmit() bool {
	if f.pending || strings.TrimSpace(f.value(fieldUsername)) == "" || f.value(fieldPassword) == "" {
		return false
	}
	if f.signup {
		return strings.TrimSpace(f.value(fieldEmail)) != "" && f.report().Valid
	}
	return true
}

// update handles one key. submit is true when the form should be sent.
func (f authForm) update(msg tea.KeyMsg) (authForm, tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+t":
		cmd := f.setMode(!f.signup)
		return f, cmd, false
	case "tab", "down":
		return f, f.move(1), false
	case "shift+tab", "up":
		return f, f.move(-1), false
	case "enter":
		order := f.fields()
		if f.focus != order[len(order)-1] {
			return f, f.move(1), false
		}
		if !f.canSubmit() {
			if f.signup && !f.report().Valid {
				f.err = "Please fix password errors before signing up."
			}
			return f, nil, false
		}
		f.err = ""
		f.info = ""
		f.pending = true
		return f, nil, true
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd, false
}

func (f authForm) view(width int, accent lipgloss.Color) string {
	var tabs string
	if f.signup {
		tabs = lipgloss.JoinHorizontal(lipgloss.Top,
			InactiveTab.Render("Sign In"),
			ActiveTab.Background(accent).Render("Sign Up"))
	} else {
		tabs = lipgloss.JoinHorizontal(lipgloss.Top,
			ActiveTab.Background(accent).Render("Sign In"),
			InactiveTab.Render("Sign Up"))
	}

	var b strings.Builder
	b.WriteString(HeaderStyle.Foreground(accent).Render("lens"))
	b.WriteString(MutedText.Render("object detection and Q&A"))
	b.WriteString("\n\n")
	b.WriteString(tabs)
	b.WriteString("\n\n")

	labels := [3]string{"Username", "Email", "Password"}
	for _, field := range f.fields() {
		b.WriteString(MutedText.Render(labels[field]))
		b.WriteString("\n")
		b.WriteString(f.inputs[field].View())
		b.WriteString("\n")
	}

	if f.signup && f.value(fieldPassword) != "" {
		b.WriteString("\n")
		for _, p := range f.report().Problems {
			b.WriteString(ProblemStyle.Render("  ✗ " + p))
			b.WriteString("\n")
		}
		if f.report().Valid {
			b.WriteString(OKStyle.Render("  ✓ Password meets requirements"))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	switch {
	case f.pending:
		b.WriteString(MutedText.Render("Please wait..."))
	case f.err != "":
		b.WriteString(ErrorStyle.Render(f.err))
	case f.info != "":
		b.WriteString(InfoStyle.Render(f.info))
	case f.canSubmit():
		b.WriteString(StatusBarKey.Render("enter") + StatusBarText.Render(" submit"))
	default:
		b.WriteString(StatusBarText.Render("fill in all fields"))
	}
	b.WriteString("\n")
	b.WriteString(StatusBarText.Render("ctrl+t switch tab · tab next field · ctrl+c quit"))

	box := AuthBox.BorderForeground(accent)
	if width > 8 && width < 60 {
		box = box.Width(width - 4)
	}
	return box.Render(b.String())
}
