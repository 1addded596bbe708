// Command lens is a terminal client for an object detection service.
//
// Usage:
//
//	lens                    Start the TUI
//	lens tui [image]        Start the TUI, optionally with an image staged
//	lens detect -image f    Detect objects once and print them
//	lens login              Sign in and store the access token
//	lens signup             Create an account
//	lens logout             Forget the stored token
//	lens events             JSONL event log viewer
package main

import (
	"fmt"
	"os"
)

const usage = `lens - object detection and Q&A in the terminal

Usage:
  lens <command> [flags]

Commands:
  tui         Interactive workspace (default)
  detect      Detect objects in one image, optionally ask questions
  login       Sign in and store the access token
  signup      Create an account
  logout      Forget the stored token
  events      JSONL event log viewer

Environment:
  LENS_DATA_DIR      Data directory (default: ~/.lens)
  LENS_API_URL       Detection service base URL (default: http://localhost:8000/api)
  LENS_QA_BACKEND    "service" or "gemini"
  GEMINI_API_KEY     Gemini API key (for the gemini backend)
  LENS_S3_ENDPOINT   S3-compatible endpoint for s3:// image references

Run 'lens <command> -h' for command-specific help.
`

func main() {
	if len(os.Args) < 2 {
		exitOnError(runTUI())
		return
	}

	cmd := os.Args[1]
	// Strip the program name + subcommand so flag sets see only their flags
	os.Args = os.Args[1:]

	var err error
	switch cmd {
	case "tui":
		err = runTUI()
	case "detect":
		err = runDetect()
	case "login":
		err = runLogin()
	case "signup":
		err = runSignup()
	case "logout":
		err = runLogout()
	case "events":
		err = runEvents()
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "lens: unknown command %q\n\n", cmd)
		fmt.Print(usage)
		os.Exit(1)
	}
	exitOnError(err)
}

// exitOnError runs after each command has returned, so its deferred
// cleanup (event flush, database close) has already happened.
func exitOnError(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "lens: %v\n", err)
	os.Exit(1)
}
