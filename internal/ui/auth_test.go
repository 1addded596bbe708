package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestAuthFormCanSubmit(t *testing.T) {
	tests := []struct {
		name     string
		signup   bool
		user     string
		email    string
		password string
		want     bool
	}{
		{"login ok", false, "ana", "", "x", true},
		{"login blank user", false, "  ", "", "x", false},
		{"login no password", false, "ana", "", "", false},
		{"signup ok", true, "ana", "ana@example.com", "Secret123", true},
		{"signup no email", true, "ana", "", "Secret123", false},
		{"signup weak password", true, "ana", "ana@example.com", "secret", false},
		{"signup without special char", true, "ana", "ana@example.com", "Secret12", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthForm()
			f.signup = tt.signup
			f.inputs[fieldUsername].SetValue(tt.user)
			f.inputs[fieldEmail].SetValue(tt.email)
			f.inputs[fieldPassword].SetValue(tt.password)
			if got := f.canSubmit(); got != tt.want {
				t.Errorf("canSubmit() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAuthFormPendingBlocksSubmit(t *testing.T) {
	f := newAuthForm()
	f.inputs[fieldUsername].SetValue("ana")
	f.inputs[fieldPassword].SetValue("pw")
	f.pending = true
	if f.canSubmit() {
		t.Error("pending form must not submit again")
	}
}

func TestAuthFormTabOrder(t *testing.T) {
	f := newAuthForm()
	f.move(1)
	if f.focus != fieldPassword {
		t.Errorf("sign in: tab from username focused %d, want password", f.focus)
	}
	f.move(1)
	if f.focus != fieldUsername {
		t.Errorf("sign in: tab should wrap to username, got %d", f.focus)
	}

	f.setMode(true)
	f.move(1)
	if f.focus != fieldEmail {
		t.Errorf("sign up: tab from username focused %d, want email", f.focus)
	}
	f.move(-1)
	f.move(-1)
	if f.focus != fieldPassword {
		t.Errorf("sign up: shift+tab should wrap to password, got %d", f.focus)
	}
}

func TestAuthFormSwitchClearsPassword(t *testing.T) {
	f := newAuthForm()
	f.inputs[fieldPassword].SetValue("secret")
	f.err = "Login failed! Check username/password."

	f, _, submit := f.update(tea.KeyMsg{Type: tea.KeyCtrlT})
	if submit {
		t.Error("switching tabs must not submit")
	}
	if !f.signup || f.value(fieldPassword) != "" || f.err != "" {
		t.Errorf("after ctrl+t: signup=%v password=%q err=%q", f.signup, f.value(fieldPassword), f.err)
	}
}

func TestAuthFormEnterAdvancesBeforeSubmit(t *testing.T) {
	f := newAuthForm()
	f.inputs[fieldUsername].SetValue("ana")
	f.inputs[fieldPassword].SetValue("pw")

	f, _, submit := f.update(tea.KeyMsg{Type: tea.KeyEnter})
	if submit || f.focus != fieldPassword {
		t.Fatalf("enter on username should move to password (submit=%v focus=%d)", submit, f.focus)
	}
	f, _, submit = f.update(tea.KeyMsg{Type: tea.KeyEnter})
	if !submit || !f.pending {
		t.Error("enter on the last field should submit and mark pending")
	}
}
