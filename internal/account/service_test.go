package account

import (
	"context"
	"errors"
	"testing"
)

type fakeBackend struct {
	token     string
	loginErr  error
	signupErr error
	signups   int
	lastUser  string
}

func (f *fakeBackend) Login(ctx context.Context, username, password string) (string, error) {
	f.lastUser = username
	return f.token, f.loginErr
}

func (f *fakeBackend) Signup(ctx context.Context, username, email, password string) error {
	f.signups++
	return f.signupErr
}

type memCreds struct {
	user, token string
}

func (m *memCreds) Save(ctx context.Context, username, token string) error {
	m.user, m.token = username, token
	return nil
}

func (m *memCreds) Revoke(ctx context.Context) error {
	m.user, m.token = "", ""
	return nil
}

func (m *memCreds) Token(ctx context.Context) (string, error) { return m.token, nil }

func TestLoginStoresToken(t *testing.T) {
	be := &fakeBackend{token: "jwt"}
	creds := &memCreds{}
	svc := NewService(be, creds, nil)
	ctx := context.Background()

	if err := svc.Login(ctx, "  ana ", "Secret123"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if creds.token != "jwt" || creds.user != "ana" || be.lastUser != "ana" {
		t.Errorf("creds = %+v, backend user %q", creds, be.lastUser)
	}
	if ok, _ := svc.SignedIn(ctx); !ok {
		t.Error("SignedIn() = false after login")
	}

	if err := svc.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if ok, _ := svc.SignedIn(ctx); ok {
		t.Error("SignedIn() = true after logout")
	}
}

func TestLoginFailureStoresNothing(t *testing.T) {
	cause := errors.New("401")
	creds := &memCreds{}
	svc := NewService(&fakeBackend{loginErr: cause}, creds, nil)

	err := svc.Login(context.Background(), "ana", "bad")
	if !errors.Is(err, cause) {
		t.Errorf("err = %v, want wrapped cause", err)
	}
	if creds.token != "" {
		t.Error("failed login stored a token")
	}
	if err := svc.Login(context.Background(), "", "pw"); !errors.Is(err, ErrMissingField) {
		t.Errorf("blank username err = %v", err)
	}
}

func TestSignupRejectsWeakPasswordWithoutNetwork(t *testing.T) {
	be := &fakeBackend{}
	svc := NewService(be, &memCreds{}, nil)

	err := svc.Signup(context.Background(), "ana", "ana@example.com", "short")
	if !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("err = %v, want ErrWeakPassword", err)
	}
	if be.signups != 0 {
		t.Error("weak password reached the backend")
	}
}

func TestSignupRequiresFields(t *testing.T) {
	be := &fakeBackend{}
	svc := NewService(be, &memCreds{}, nil)
	if err := svc.Signup(context.Background(), "ana", " ", "Secret123"); !errors.Is(err, ErrMissingField) {
		t.Errorf("err = %v, want ErrMissingField", err)
	}
	if be.signups != 0 {
		t.Error("incomplete form reached the backend")
	}
}

func TestSignupAcceptsMissingSpecialCharacter(t *testing.T) {
	be := &fakeBackend{}
	creds := &memCreds{}
	svc := NewService(be, creds, nil)
	if err := svc.Signup(context.Background(), "ana", "ana@example.com", "Secret123"); err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if be.signups != 1 {
		t.Errorf("signups = %d, want 1", be.signups)
	}
	if creds.token != "" {
		t.Error("signup must not sign in")
	}
}
