package ui

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/lens/internal/logging"
	"github.com/abelbrown/lens/internal/otel"
	"github.com/abelbrown/lens/internal/workflow"
)

type screen int

const (
	screenMain screen = iota
	screenAuth
)

type focus int

const (
	focusTable focus = iota
	focusQuestion
	focusPicker
)

// AllowedImageTypes are the extensions offered by the file picker.
var AllowedImageTypes = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp"}

// Config wires the App to the rest of the program. The command functions
// return tea.Cmds that do I/O off the Update loop; any of them may be nil.
type Config struct {
	Controller *workflow.Controller

	LoadImage     func(ref string) tea.Cmd                       // sends ImageLoaded
	SaveAnnotated func(ref string) tea.Cmd                       // sends AnnotatedSaved
	Login         func(username, password string) tea.Cmd        // sends AuthDone
	Signup        func(username, email, password string) tea.Cmd // sends AuthDone
	Logout        func() tea.Cmd                                 // sends LoggedOut

	// RequireAuth starts on the sign-in screen.
	RequireAuth bool
	Username    string

	Events *otel.Logger
	Ring   *otel.RingBuffer

	StartDir     string
	InitialImage string
	Accent       string
	ShowHelp     bool
}

// App is the root Bubble Tea model.
// The workflow state lives in the Controller; App only mirrors it into
// widgets and runs the remote calls as commands.
type App struct {
	ctrl *workflow.Controller

	loadImage     func(ref string) tea.Cmd
	saveAnnotated func(ref string) tea.Cmd
	login         func(username, password string) tea.Cmd
	signup        func(username, email, password string) tea.Cmd
	logout        func() tea.Cmd

	events *otel.Logger
	ring   *otel.RingBuffer

	screen   screen
	focus    focus
	auth     authForm
	username string

	question textinput.Model
	table    table.Model
	picker   filepicker.Model
	spinner  spinner.Model
	help     help.Model
	keys     keyMap
	accent   lipgloss.Color

	detectCancel context.CancelFunc
	askCancel    context.CancelFunc

	initialImage string
	status       string
	err          error
	showDebug    bool
	width        int
	height       int
	ready        bool
}

// NewApp creates the App. cfg.Controller is required.
func NewApp(cfg Config) App {
	q := textinput.New()
	q.Placeholder = "Ask about the detected objects..."
	q.Prompt = "> "
	q.CharLimit = 500

	t := table.New(
		table.WithColumns(detectionColumns(workflow.SortDirective{}, 80)),
		table.WithHeight(8),
		table.WithFocused(true),
	)

	fp := filepicker.New()
	fp.AllowedTypes = AllowedImageTypes
	fp.CurrentDirectory = cfg.StartDir
	if fp.CurrentDirectory == "" {
		if wd, err := os.Getwd(); err == nil {
			fp.CurrentDirectory = wd
		}
	}

	s := spinner.New()
	s.Spinner = spinner.Dot

	h := help.New()
	h.ShowAll = cfg.ShowHelp

	accent := lipgloss.Color(cfg.Accent)
	if cfg.Accent == "" {
		accent = colorPrimary
	}
	s.Style = lipgloss.NewStyle().Foreground(accent)

	a := App{
		ctrl:          cfg.Controller,
		loadImage:     cfg.LoadImage,
		saveAnnotated: cfg.SaveAnnotated,
		login:         cfg.Login,
		signup:        cfg.Signup,
		logout:        cfg.Logout,
		events:        cfg.Events,
		ring:          cfg.Ring,
		auth:          newAuthForm(),
		username:      cfg.Username,
		question:      q,
		table:         t,
		picker:        fp,
		spinner:       s,
		help:          h,
		keys:          defaultKeys(),
		accent:        accent,
		initialImage:  cfg.InitialImage,
	}
	if cfg.RequireAuth && cfg.Login != nil {
		a.screen = screenAuth
	}
	return a
}

// Init loads the image given on the command line, if any.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if a.initialImage != "" && a.loadImage != nil && a.screen == screenMain {
		cmds = append(cmds, a.loadImage(a.initialImage))
	}
	return tea.Batch(cmds...)
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if otel.TraceEnabled() && a.events != nil {
		a.events.Emit(otel.Event{
			Level: otel.LevelDebug,
			Kind:  otel.KindMsgReceived,
			Comp:  "ui",
			Msg:   fmt.Sprintf("%T", msg),
		})
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.layout()
		var cmd tea.Cmd
		a.picker, cmd = a.picker.Update(msg)
		return a, cmd

	case spinner.TickMsg:
		if !a.busy() {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case ImageLoaded:
		return a.handleImageLoaded(msg)

	case DetectDone:
		return a.handleDetectDone(msg)

	case AskDone:
		return a.handleAskDone(msg)

	case AnnotatedSaved:
		if msg.Err != nil {
			a.err = msg.Err
			logging.Warn("save annotated image failed", "err", msg.Err)
			return a, nil
		}
		a.status = "Saved " + msg.Path
		a.emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindSaved, Msg: msg.Path})
		return a, nil

	case AuthDone:
		return a.handleAuthDone(msg)

	case LoggedOut:
		if msg.Err != nil {
			a.err = msg.Err
			return a, nil
		}
		a.cancelInflight()
		_ = a.ctrl.Clear()
		a.refreshTable()
		a.question.SetValue("")
		a.username = ""
		a.auth = newAuthForm()
		a.screen = screenAuth
		return a, nil

	case tea.KeyMsg:
		if a.screen == screenAuth {
			return a.handleAuthKey(msg)
		}
		return a.handleKeyMsg(msg)
	}

	// Everything else (cursor blinks, directory listings) goes to the
	// focused widget.
	var cmd tea.Cmd
	switch {
	case a.screen == screenAuth:
		a.auth.inputs[a.auth.focus], cmd = a.auth.inputs[a.auth.focus].Update(msg)
	case a.focus == focusPicker:
		a.picker, cmd = a.picker.Update(msg)
	case a.focus == focusQuestion:
		a.question, cmd = a.question.Update(msg)
	}
	return a, cmd
}

// handleKeyMsg processes keyboard input on the main screen.
func (a App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, a.quit()
	}

	switch a.focus {
	case focusPicker:
		return a.handlePickerKey(msg)
	case focusQuestion:
		return a.handleQuestionKey(msg)
	}

	// Clear transient messages on key press
	a.err = nil
	a.status = ""
	a.ctrl.DismissNotice()

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, a.quit()

	case key.Matches(msg, a.keys.Debug):
		a.showDebug = !a.showDebug
		return a, nil

	case key.Matches(msg, a.keys.Help):
		a.help.ShowAll = !a.help.ShowAll
		return a, nil

	case key.Matches(msg, a.keys.Open):
		a.focus = focusPicker
		return a, a.picker.Init()

	case key.Matches(msg, a.keys.Detect):
		return a, a.startDetect()

	case key.Matches(msg, a.keys.Remove):
		a.cancelInflight()
		if err := a.ctrl.Clear(); err != nil {
			logging.Warn("release preview failed", "err", err)
		}
		a.question.SetValue("")
		a.refreshTable()
		return a, nil

	case key.Matches(msg, a.keys.SortClass):
		a.ctrl.SetSortDirective(workflow.SortClass)
		a.refreshTable()
		return a, nil

	case key.Matches(msg, a.keys.SortConf):
		a.ctrl.SetSortDirective(workflow.SortConfidence)
		a.refreshTable()
		return a, nil

	case key.Matches(msg, a.keys.SortNone):
		a.ctrl.ResetSort()
		a.refreshTable()
		return a, nil

	case key.Matches(msg, a.keys.Save):
		ref := a.ctrl.AnnotatedRef()
		if ref == "" || a.saveAnnotated == nil {
			a.status = "No annotated image to save."
			return a, nil
		}
		return a, a.saveAnnotated(ref)

	case key.Matches(msg, a.keys.Logout):
		if a.logout == nil {
			return a, nil
		}
		return a, a.logout()

	case key.Matches(msg, a.keys.Focus):
		a.focus = focusQuestion
		a.table.Blur()
		return a, a.question.Focus()

	case key.Matches(msg, a.keys.Send):
		// Enter on the table jumps to the question box.
		a.focus = focusQuestion
		return a, a.question.Focus()
	}

	var cmd tea.Cmd
	a.table, cmd = a.table.Update(msg)
	return a, cmd
}

func (a App) handleQuestionKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Blur):
		a.focus = focusTable
		a.question.Blur()
		a.table.Focus()
		return a, nil
	case key.Matches(msg, a.keys.Send):
		return a, a.startAsk()
	}

	var cmd tea.Cmd
	a.question, cmd = a.question.Update(msg)
	a.ctrl.SetQuestion(a.question.Value())
	return a, cmd
}

func (a App) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" || msg.String() == "q" {
		a.focus = focusTable
		return a, nil
	}

	var cmd tea.Cmd
	a.picker, cmd = a.picker.Update(msg)
	if ok, path := a.picker.DidSelectFile(msg); ok {
		a.focus = focusTable
		if a.loadImage != nil {
			return a, tea.Batch(cmd, a.loadImage(path))
		}
	}
	if ok, path := a.picker.DidSelectDisabledFile(msg); ok {
		a.status = path + " is not an image."
	}
	return a, cmd
}

func (a App) handleAuthKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" || msg.String() == "esc" {
		return a, a.quit()
	}

	form, cmd, submit := a.auth.update(msg)
	a.auth = form
	if !submit {
		return a, cmd
	}

	user := form.value(fieldUsername)
	pw := form.value(fieldPassword)
	if form.signup {
		if a.signup == nil {
			a.auth.pending = false
			return a, cmd
		}
		return a, tea.Batch(cmd, a.signup(user, form.value(fieldEmail), pw))
	}
	if a.login == nil {
		a.auth.pending = false
		return a, cmd
	}
	return a, tea.Batch(cmd, a.login(user, pw))
}

func (a App) handleAuthDone(msg AuthDone) (tea.Model, tea.Cmd) {
	a.auth.pending = false
	switch {
	case msg.Err != nil && msg.Signup:
		a.auth.err = "Signup failed. Try a different username."
		logging.Warn("signup failed", "err", msg.Err)
		return a, nil
	case msg.Err != nil:
		a.auth.err = "Login failed! Check username/password."
		logging.Warn("login failed", "err", msg.Err)
		return a, nil
	case msg.Signup:
		cmd := a.auth.setMode(false)
		a.auth.info = "Account created! Please sign in."
		return a, cmd
	}

	a.username = msg.Username
	a.screen = screenMain
	a.focus = focusTable
	a.auth = newAuthForm()
	if a.initialImage != "" && a.loadImage != nil {
		ref := a.initialImage
		a.initialImage = ""
		return a, a.loadImage(ref)
	}
	return a, nil
}

func (a App) handleImageLoaded(msg ImageLoaded) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		a.err = msg.Err
		logging.Warn("load image failed", "ref", msg.Ref, "err", msg.Err)
		return a, nil
	}

	a.cancelInflight()
	img := msg.Image
	if err := a.ctrl.SetImage(&img); err != nil {
		a.err = err
	}
	a.question.SetValue("")
	a.refreshTable()
	return a, nil
}

func (a App) handleDetectDone(msg DetectDone) (tea.Model, tea.Cmd) {
	err := a.ctrl.FinishDetect(msg.Call, msg.Result, msg.Err)
	if errors.Is(err, workflow.ErrStaleResponse) {
		return a, nil
	}
	if a.detectCancel != nil {
		a.detectCancel()
		a.detectCancel = nil
	}
	if err != nil {
		logging.Warn("detection failed", "gen", msg.Call.Generation(), "err", err)
	}
	a.refreshTable()
	return a, nil
}

func (a App) handleAskDone(msg AskDone) (tea.Model, tea.Cmd) {
	err := a.ctrl.FinishAsk(msg.Call, msg.Answer, msg.Err)
	if errors.Is(err, workflow.ErrStaleResponse) {
		return a, nil
	}
	if a.askCancel != nil {
		a.askCancel()
		a.askCancel = nil
	}
	if err != nil {
		logging.Warn("question failed", "gen", msg.Call.Generation(), "err", err)
	}
	a.question.SetValue(a.ctrl.Question())
	return a, nil
}

// startDetect begins a detection and returns the command that runs it.
func (a *App) startDetect() tea.Cmd {
	wasBusy := a.busy()
	call, err := a.ctrl.BeginDetect()
	if err != nil {
		a.status = describe(err)
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.detectCancel = cancel
	run := func() tea.Msg {
		res, err := call.Run(ctx)
		return DetectDone{Call: call, Result: res, Err: err}
	}
	if wasBusy {
		return run
	}
	return tea.Batch(a.spinner.Tick, run)
}

// startAsk sends the question box contents.
func (a *App) startAsk() tea.Cmd {
	wasBusy := a.busy()
	call, err := a.ctrl.BeginAsk(a.question.Value())
	if err != nil {
		a.status = describe(err)
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.askCancel = cancel
	run := func() tea.Msg {
		answer, err := call.Run(ctx)
		return AskDone{Call: call, Answer: answer, Err: err}
	}
	if wasBusy {
		return run
	}
	return tea.Batch(a.spinner.Tick, run)
}

// cancelInflight aborts outstanding calls. Their responses still arrive and
// are dropped as stale.
func (a *App) cancelInflight() {
	if a.detectCancel != nil {
		a.detectCancel()
		a.detectCancel = nil
	}
	if a.askCancel != nil {
		a.askCancel()
		a.askCancel = nil
	}
}

func (a *App) quit() tea.Cmd {
	a.cancelInflight()
	return tea.Quit
}

func (a App) busy() bool {
	return a.ctrl.Detecting() || a.ctrl.Asking()
}

func (a *App) refreshTable() {
	a.table.SetColumns(detectionColumns(a.ctrl.SortDirective(), a.width))
	a.table.SetRows(detectionRows(a.ctrl.View()))
}

func (a *App) layout() {
	w := a.width - 4
	if w < 20 {
		w = 20
	}
	a.question.Width = w - 4
	a.help.Width = a.width
	a.table.SetWidth(w)
	h := a.height / 3
	if h < 4 {
		h = 4
	}
	a.table.SetHeight(h)
	a.refreshTable()
}

func (a App) emit(e otel.Event) {
	if a.events == nil {
		return
	}
	e.Comp = "ui"
	a.events.Emit(e)
}

// describe turns a rejected action into a status line.
func describe(err error) string {
	switch {
	case errors.Is(err, workflow.ErrNoImageStaged):
		return "Open an image first (o)."
	case errors.Is(err, workflow.ErrDetectInFlight):
		return "Detection is already running."
	case errors.Is(err, workflow.ErrNoResults):
		return "Run detection first (d)."
	case errors.Is(err, workflow.ErrEmptyQuestion):
		return "Type a question first."
	case errors.Is(err, workflow.ErrAskInFlight):
		return "Waiting for the previous answer."
	}
	return err.Error()
}

// Controller returns the workflow controller (for testing).
func (a App) Controller() *workflow.Controller {
	return a.ctrl
}

// OnAuthScreen reports whether the sign-in screen is showing.
func (a App) OnAuthScreen() bool {
	return a.screen == screenAuth
}
