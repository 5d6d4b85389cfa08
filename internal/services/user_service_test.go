package services

import (
	"errors"
	"testing"

	"blogicum/internal/policy"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	env := setupServices(t)
	user, err := env.users.Register(RegisterInput{Username: " newbie ", Email: "n@example.com", Password: "Str0ng-pass"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.Username != "newbie" || user.Password == "Str0ng-pass" {
		t.Fatalf("username should be trimmed and password hashed: %+v", user)
	}
	if _, err := env.users.Register(RegisterInput{Username: "newbie", Password: "other-pass"}); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("duplicate: want ErrUsernameTaken got %v", err)
	}

	got, err := env.users.Authenticate("newbie", "Str0ng-pass")
	if err != nil || got.ID != user.ID {
		t.Fatalf("authenticate failed: %v", err)
	}
	if _, err := env.users.Authenticate("newbie", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: want ErrInvalidCredentials got %v", err)
	}
	if _, err := env.users.Authenticate("ghost", "Str0ng-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user: want ErrInvalidCredentials got %v", err)
	}
}

func TestUpdateProfileOnlySelf(t *testing.T) {
	env := setupServices(t)
	input := ProfileInput{Username: "renamed", FirstName: "Ann", LastName: "Lee", Email: "ann@example.com"}

	if _, err := env.users.UpdateProfile(policy.ViewerFor(env.other), "author", input); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign profile: want ErrNotFound got %v", err)
	}
	if _, err := env.users.UpdateProfile(policy.ViewerFor(env.author), "nobody", input); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing profile: want ErrNotFound got %v", err)
	}

	taken := input
	taken.Username = "other"
	if _, err := env.users.UpdateProfile(policy.ViewerFor(env.author), "author", taken); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("taken username: want ErrUsernameTaken got %v", err)
	}

	user, err := env.users.UpdateProfile(policy.ViewerFor(env.author), "author", input)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if user.Username != "renamed" || user.FullName() != "Ann Lee" {
		t.Fatalf("unexpected user %+v", user)
	}
	if _, err := env.users.GetByUsername("author"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("old username should be gone, got %v", err)
	}

	same := input
	same.FirstName = "Anna"
	if _, err := env.users.UpdateProfile(policy.ViewerFor(env.author), "renamed", same); err != nil {
		t.Fatalf("keeping own username must be allowed: %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	env := setupServices(t)
	user, err := env.users.Register(RegisterInput{Username: "changer", Password: "old-password"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	viewer := policy.ViewerFor(user)

	if err := env.users.ChangePassword(policy.Anonymous, "old-password", "new-password"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("anonymous: want ErrForbidden got %v", err)
	}
	if err := env.users.ChangePassword(viewer, "wrong", "new-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong old password: want ErrInvalidCredentials got %v", err)
	}
	if err := env.users.ChangePassword(viewer, "old-password", "new-password"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}
	if _, err := env.users.Authenticate("changer", "old-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password should stop working, got %v", err)
	}
	if _, err := env.users.Authenticate("changer", "new-password"); err != nil {
		t.Fatalf("new password should work: %v", err)
	}
}
