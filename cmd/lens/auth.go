package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/x/term"

	"github.com/abelbrown/lens/internal/account"
)

func runLogin() error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	user := fs.String("u", "", "Username")
	password := fs.String("p", "", "Password (prompted when omitted)")
	fs.Parse(os.Args[1:])

	ctx := context.Background()
	rt, err := setup(ctx, "auth")
	if err != nil {
		return err
	}
	defer rt.Close()

	in := bufio.NewReader(os.Stdin)
	username := promptIfEmpty(in, *user, "Username: ")
	pw := *password
	if pw == "" {
		if pw, err = readPassword(in, "Password: "); err != nil {
			return err
		}
	}

	if err := rt.accounts.Login(ctx, username, pw); err != nil {
		return fmt.Errorf("Login failed! Check username/password. (%w)", err)
	}
	fmt.Printf("Signed in as %s\n", username)
	return nil
}

func runSignup() error {
	fs := flag.NewFlagSet("signup", flag.ExitOnError)
	user := fs.String("u", "", "Username")
	email := fs.String("email", "", "Email address")
	password := fs.String("p", "", "Password (prompted when omitted)")
	fs.Parse(os.Args[1:])

	ctx := context.Background()
	rt, err := setup(ctx, "auth")
	if err != nil {
		return err
	}
	defer rt.Close()

	in := bufio.NewReader(os.Stdin)
	username := promptIfEmpty(in, *user, "Username: ")
	addr := promptIfEmpty(in, *email, "Email: ")
	pw := *password
	if pw == "" {
		if pw, err = readPassword(in, "Password: "); err != nil {
			return err
		}
	}

	err = rt.accounts.Signup(ctx, username, addr, pw)
	if errors.Is(err, account.ErrWeakPassword) {
		fmt.Fprintln(os.Stderr, "Please fix password errors before signing up:")
		for _, p := range account.CheckPassword(pw).Problems {
			fmt.Fprintf(os.Stderr, "  ✗ %s\n", p)
		}
		return err
	}
	if err != nil {
		return fmt.Errorf("signup failed: %w", err)
	}
	fmt.Println("Account created! Please sign in with 'lens login'.")
	return nil
}

func runLogout() error {
	ctx := context.Background()
	rt, err := setup(ctx, "auth")
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.accounts.Logout(ctx); err != nil {
		return err
	}
	fmt.Println("Signed out.")
	return nil
}

func promptIfEmpty(in *bufio.Reader, value, prompt string) string {
	if value != "" {
		return value
	}
	fmt.Fprint(os.Stderr, prompt)
	line, _ := in.ReadString('\n')
	return strings.TrimSpace(line)
}

// readPassword reads without echo on a terminal, or a plain line from a pipe.
func readPassword(in *bufio.Reader, prompt string) (string, error) {
	fd := os.Stdin.Fd()
	if !term.IsTerminal(fd) {
		line, _ := in.ReadString('\n')
		return strings.TrimRight(line, "\r\n"), nil
	}
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}
