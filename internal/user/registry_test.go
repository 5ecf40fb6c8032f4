package user

import (
	"errors"
	"testing"

	"pool-tracker-service/internal/domain"
)

func TestRegisterAssignsIDAndDefaults(t *testing.T) {
	reg := NewRegistry()

	u, err := reg.Register(domain.User{Name: "Ana", Login: "Ana", Secret: "pw"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.ID == "" {
		t.Fatalf("expected generated id")
	}
	if u.Login != "ana" {
		t.Fatalf("expected lowercased login, got %q", u.Login)
	}
	if u.Role != domain.RolePlayer {
		t.Fatalf("expected player role default, got %s", u.Role)
	}
}

func TestRegisterRejectsDuplicateLogin(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.Register(domain.User{Name: "Ana", Login: "ana", Secret: "pw"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err := reg.Register(domain.User{Name: "Other", Login: "ANA", Secret: "pw2"})
	if !errors.Is(err, ErrDuplicateLogin) {
		t.Fatalf("expected duplicate login error, got %v", err)
	}
}

func TestRegisterValidatesRequiredFields(t *testing.T) {
	reg := NewRegistry()
	for _, u := range []domain.User{
		{Name: "Ana", Secret: "pw"},
		{Login: "ana", Secret: "pw"},
		{Name: "Ana", Login: "ana"},
	} {
		if _, err := reg.Register(u); err == nil {
			t.Fatalf("expected validation error for %+v", u)
		}
	}
}

func TestAuthenticate(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.Register(domain.User{Name: "Ana", Login: "ana", Secret: "pw"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	u, err := reg.Authenticate("ANA", "pw")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if u.Name != "Ana" {
		t.Fatalf("unexpected user %+v", u)
	}

	if _, err := reg.Authenticate("ana", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, err := reg.Authenticate("nobody", "pw"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for unknown login, got %v", err)
	}
}

func TestUsersSortedByName(t *testing.T) {
	reg := NewRegistry()
	for _, name := range []string{"Zara", "Ana", "Mia"} {
		if _, err := reg.Register(domain.User{Name: name, Login: name, Secret: "pw"}); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}

	users := reg.Users()
	if len(users) != 3 || users[0].Name != "Ana" || users[2].Name != "Zara" {
		t.Fatalf("expected name order, got %+v", users)
	}
}
