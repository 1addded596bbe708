package ui

import "github.com/charmbracelet/lipgloss"

// Colors used in the application.
var (
	colorPrimary   = lipgloss.Color("62")  // Purple
	colorSecondary = lipgloss.Color("241") // Gray
	colorMuted     = lipgloss.Color("240") // Darker gray
	colorHighlight = lipgloss.Color("212") // Pink
	colorSuccess   = lipgloss.Color("78")  // Green
	colorError     = lipgloss.Color("196") // Red
)

// HeaderStyle for the title line. The foreground is replaced by the accent.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorPrimary).
	Padding(0, 1)

// SectionTitle for panel headings ("Detections", "Conversation").
var SectionTitle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight).
	MarginTop(1).
	Padding(0, 1)

// MutedText for secondary information.
var MutedText = lipgloss.NewStyle().
	Foreground(colorSecondary).
	Padding(0, 1)

// UserTurn labels the user's messages.
var UserTurn = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight)

// AssistantTurn labels the assistant's messages.
var AssistantTurn = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorSuccess)

// StatusBar style for the bottom status bar.
var StatusBar = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236")).
	Padding(0, 1)

// StatusBarKey style for key hints in status bar.
var StatusBarKey = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

// StatusBarText style for descriptive text in status bar.
var StatusBarText = lipgloss.NewStyle().
	Foreground(colorSecondary)

// ErrorStyle for displaying errors and notices.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(colorError).
	Bold(true).
	Padding(0, 1)

// InfoStyle for transient confirmations.
var InfoStyle = lipgloss.NewStyle().
	Foreground(colorSuccess).
	Padding(0, 1)

// AuthBox frames the sign-in form.
var AuthBox = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorPrimary).
	Padding(1, 2)

// ActiveTab renders the selected Sign In / Sign Up tab.
var ActiveTab = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary).
	Padding(0, 2)

// InactiveTab renders the other tab.
var InactiveTab = lipgloss.NewStyle().
	Foreground(colorSecondary).
	Padding(0, 2)

// ProblemStyle lists unmet password requirements.
var ProblemStyle = lipgloss.NewStyle().
	Foreground(colorError)

// OKStyle marks met requirements.
var OKStyle = lipgloss.NewStyle().
	Foreground(colorSuccess)

// DebugPanel frames the debug overlay.
var DebugPanel = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorMuted).
	Padding(1, 2)

// DebugHeaderStyle for debug overlay section headings.
var DebugHeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight)
