package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/lens/internal/imagesource"
	"github.com/abelbrown/lens/internal/logging"
	"github.com/abelbrown/lens/internal/preview"
	"github.com/abelbrown/lens/internal/ui"
	"github.com/abelbrown/lens/internal/workflow"
)

func runTUI() error {
	fs := flag.NewFlagSet("tui", flag.ExitOnError)
	image := fs.String("image", "", "Image to stage on startup (path or s3://bucket/key)")
	saveDir := fs.String("save-dir", "", "Where annotated images are saved (default: working directory)")
	fs.Parse(os.Args[1:])
	if *image == "" && fs.NArg() > 0 {
		*image = fs.Arg(0)
	}

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rt, err := setup(ctx, "main")
	if err != nil {
		return err
	}
	defer rt.Close()

	previews, err := preview.NewTempStore(filepath.Join(os.TempDir(), "lens-previews"))
	if err != nil {
		return fmt.Errorf("create preview store: %w", err)
	}
	defer previews.Close()

	ctrl := workflow.New(rt.client, rt.brain, previews, workflow.WithEventLogger(rt.events))

	username := ""
	signedIn, err := rt.accounts.SignedIn(ctx)
	if err != nil {
		logging.Warn("read session failed", "err", err)
	}
	if sess, ok, err := rt.sessions.Current(ctx); err == nil && ok {
		username = sess.Username
	}

	if *saveDir == "" {
		if wd, err := os.Getwd(); err == nil {
			*saveDir = wd
		}
	}

	cfg := ui.Config{
		Controller: ctrl,
		// LoadImage reads a file or object off the Update loop
		LoadImage: func(ref string) tea.Cmd {
			return func() tea.Msg {
				img, err := rt.loader.Load(ctx, ref)
				return ui.ImageLoaded{Ref: ref, Image: img, Err: err}
			}
		},
		SaveAnnotated: func(ref string) tea.Cmd {
			dir := *saveDir
			return func() tea.Msg {
				ctx, cancel := context.WithTimeout(ctx, rt.cfg.Timeout())
				defer cancel()
				path, err := rt.fetcher.Save(ctx, ref, dir)
				return ui.AnnotatedSaved{Path: path, Err: err}
			}
		},
		Login: func(username, password string) tea.Cmd {
			return func() tea.Msg {
				err := rt.accounts.Login(ctx, username, password)
				return ui.AuthDone{Username: username, Err: err}
			}
		},
		Signup: func(username, email, password string) tea.Cmd {
			return func() tea.Msg {
				err := rt.accounts.Signup(ctx, username, email, password)
				return ui.AuthDone{Signup: true, Username: username, Err: err}
			}
		},
		Logout: func() tea.Cmd {
			return func() tea.Msg {
				return ui.LoggedOut{Err: rt.accounts.Logout(ctx)}
			}
		},
		RequireAuth:  !signedIn,
		Username:     username,
		Events:       rt.events,
		Ring:         rt.ring,
		StartDir:     startDir(*image),
		InitialImage: *image,
		Accent:       rt.cfg.UI.Accent,
		ShowHelp:     rt.cfg.UI.ShowHelp,
	}

	app := ui.NewApp(cfg)
	program := tea.NewProgram(app, tea.WithAltScreen())

	start := time.Now()
	final, runErr := program.Run()
	if runErr != nil {
		logging.Error("program exited with error", "err", runErr)
	}

	// Release whatever preview is still staged
	if a, ok := final.(ui.App); ok {
		if err := a.Controller().Clear(); err != nil {
			logging.Warn("release preview failed", "err", err)
		}
	}
	logging.Info("session ended", "dur", time.Since(start).Round(time.Second), "live_previews", previews.Live())
	return runErr
}

// startDir opens the file picker next to a local startup image.
func startDir(image string) string {
	if image == "" {
		return ""
	}
	if _, _, ok := imagesource.ParseS3(image); ok {
		return ""
	}
	abs, err := filepath.Abs(image)
	if err != nil {
		return ""
	}
	return filepath.Dir(abs)
}
