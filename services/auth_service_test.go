package services

import (
	"context"
	"errors"
	"testing"

	"github.com/studio-desk/dto"
	"github.com/studio-desk/models"
)

func TestSessionLifecycle(t *testing.T) {
	env := newTestEnv(t)

	var events []AuthEvent
	sub := env.svc.AuthEvents.Subscribe(func(_ context.Context, c AuthChange) {
		events = append(events, c.Event)
	})
	defer sub.Unsubscribe()

	user, err := env.svc.Auth.Register(env.ctx, dto.RegisterRequest{
		Email:    "Mira@Studio.test",
		Password: "secret123",
		FullName: "Mira",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.UserType != models.UserTypeStaff || user.IsAdmin {
		t.Fatalf("new accounts should be non-admin staff, got %+v", user)
	}
	if _, err := env.svc.Auth.Register(env.ctx, dto.RegisterRequest{Email: "mira@studio.test", Password: "secret123"}); !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate email: expected conflict, got %v", err)
	}

	if _, err := env.svc.Auth.Login(env.ctx, dto.LoginRequest{Email: "mira@studio.test", Password: "wrong"}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("bad password: expected unauthorized, got %v", err)
	}
	login, err := env.svc.Auth.Login(env.ctx, dto.LoginRequest{Email: "mira@studio.test", Password: "secret123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if login.User.Password != "" {
		t.Fatal("password hash leaked in auth response")
	}

	session, err := env.svc.Auth.GetSession(env.ctx, login.Token)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if session.UserID != user.ID {
		t.Fatalf("session belongs to %s, want %s", session.UserID, user.ID)
	}

	refreshed, err := env.svc.Auth.Refresh(env.ctx, session, user)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if _, err := env.svc.Auth.GetSession(env.ctx, refreshed.Token); err != nil {
		t.Fatalf("refreshed token rejected: %v", err)
	}

	if err := env.svc.Auth.SignOut(env.ctx, session); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	if _, err := env.svc.Auth.GetSession(env.ctx, login.Token); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("revoked session: expected unauthorized, got %v", err)
	}
	if _, err := env.svc.Auth.GetSession(env.ctx, "not-a-token"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("garbage token: expected unauthorized, got %v", err)
	}

	want := []AuthEvent{AuthSignedIn, AuthTokenRefreshed, AuthSignedOut}
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("events = %v, want %v", events, want)
		}
	}
}

func TestGetUserMissingAccount(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.svc.Auth.GetUser(env.ctx, "gone"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized for missing account, got %v", err)
	}
}

func TestUpdateProfileName(t *testing.T) {
	env := newTestEnv(t)
	admin := env.user(t, "admin@studio.test", models.UserTypeStaff, true)
	staff := env.user(t, "staff@studio.test", models.UserTypeStaff, false)

	if _, err := env.svc.Admin.ListUsers(env.ctx, admin); err != nil {
		t.Fatal(err)
	}
	updated, err := env.svc.Auth.UpdateProfile(env.ctx, staff.UserID, dto.UpdateProfileRequest{FullName: "  Ada Lovelace "})
	if err != nil {
		t.Fatal(err)
	}
	if updated.FullName != "Ada Lovelace" {
		t.Fatalf("full name = %q", updated.FullName)
	}

	users, err := env.svc.Admin.ListUsers(env.ctx, admin)
	if err != nil {
		t.Fatal(err)
	}
	for _, u := range users {
		if u.ID == staff.UserID && u.FullName != "Ada Lovelace" {
			t.Fatalf("cached user list kept the old name: %+v", u)
		}
	}

	if _, err := env.svc.Auth.UpdateProfile(env.ctx, "gone", dto.UpdateProfileRequest{FullName: "x"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing profile: expected not found, got %v", err)
	}
}

func TestSignOutEverywhereRevokesAllSessions(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.svc.Auth.Register(env.ctx, dto.RegisterRequest{Email: "mira@studio.test", Password: "secret123"}); err != nil {
		t.Fatal(err)
	}
	creds := dto.LoginRequest{Email: "mira@studio.test", Password: "secret123"}
	laptop, err := env.svc.Auth.Login(env.ctx, creds)
	if err != nil {
		t.Fatal(err)
	}
	phone, err := env.svc.Auth.Login(env.ctx, creds)
	if err != nil {
		t.Fatal(err)
	}

	session, err := env.svc.Auth.GetSession(env.ctx, laptop.Token)
	if err != nil {
		t.Fatal(err)
	}
	if err := env.svc.Auth.SignOutEverywhere(env.ctx, session); err != nil {
		t.Fatal(err)
	}
	for name, token := range map[string]string{"laptop": laptop.Token, "phone": phone.Token} {
		if _, err := env.svc.Auth.GetSession(env.ctx, token); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("%s session still valid: %v", name, err)
		}
	}
}
