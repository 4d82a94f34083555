package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mkarlin/chatdeck-backend/internal/config"
	"github.com/mkarlin/chatdeck-backend/internal/repos"
	"github.com/mkarlin/chatdeck-backend/internal/repos/testutil"
	"github.com/mkarlin/chatdeck-backend/internal/requestdata"
)

func newAuthFixture(t *testing.T) AuthService {
	t.Helper()
	gdb := testDB(t)
	log := testutil.Logger(t)
	userRepo := repos.NewUserRepo(gdb, log)
	avatarService := NewAvatarService(config.AvatarConfig{}, log)
	return NewAuthService(gdb, log, userRepo, avatarService, "test-secret", time.Hour)
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newAuthFixture(t)
	ctx := context.Background()

	user, token, err := svc.RegisterUser(ctx, "Ada@Example.COM", "Ada", "correct horse battery")
	if err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	if user.Email != "ada@example.com" {
		t.Fatalf("email must be normalized, got %q", user.Email)
	}
	if token == "" {
		t.Fatalf("register must return a token")
	}
	if user.Password == "correct horse battery" {
		t.Fatalf("password must not be stored in the clear")
	}
	if user.AvatarColor == "" {
		t.Fatalf("register must assign an avatar color")
	}

	if _, _, err := svc.RegisterUser(ctx, "ada@example.com", "Ada", "another password"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("duplicate email: want ErrInvalidInput, got %v", err)
	}

	if _, _, err := svc.LoginUser(ctx, "ada@example.com", "wrong"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("bad password: want ErrUnauthorized, got %v", err)
	}
	logged, _, err := svc.LoginUser(ctx, "ADA@example.com", "correct horse battery")
	if err != nil {
		t.Fatalf("LoginUser: %v", err)
	}
	if logged.ID != user.ID {
		t.Fatalf("login returned a different user")
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := newAuthFixture(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		email    string
		password string
	}{
		{name: "empty_email", email: "", password: "long enough pw"},
		{name: "not_an_email", email: "nope", password: "long enough pw"},
		{name: "short_password", email: "ok@example.com", password: "short"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := svc.RegisterUser(ctx, tc.email, "", tc.password); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("want ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestGuestUserConvention(t *testing.T) {
	svc := newAuthFixture(t)

	user, token, err := svc.GuestUser(context.Background())
	if err != nil {
		t.Fatalf("GuestUser: %v", err)
	}
	if token == "" {
		t.Fatalf("guest must receive a token")
	}
	if !strings.HasPrefix(user.Email, "guest-") || !strings.HasSuffix(user.Email, "@guest.local") {
		t.Fatalf("guest email convention violated: %q", user.Email)
	}
	if !user.IsGuest() {
		t.Fatalf("IsGuest must hold for provisioned guests")
	}
}

func TestSetContextFromToken(t *testing.T) {
	svc := newAuthFixture(t)
	ctx := context.Background()

	user, token, err := svc.RegisterUser(ctx, "bob@example.com", "Bob", "a sturdy password")
	if err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}

	authed, err := svc.SetContextFromToken(ctx, token)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	rd := requestdata.GetRequestData(authed)
	if rd == nil {
		t.Fatalf("request data missing from context")
	}
	if rd.UserID != user.ID || rd.Email != user.Email || rd.Guest {
		t.Fatalf("request data mismatch: %+v", rd)
	}

	if _, err := svc.SetContextFromToken(ctx, "not-a-token"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("garbage token: want ErrUnauthorized, got %v", err)
	}

	// A valid token whose subject is unknown to this database must be
	// rejected too.
	other := newAuthFixture(t)
	_, otherToken, err := other.GuestUser(ctx)
	if err != nil {
		t.Fatalf("GuestUser: %v", err)
	}
	if _, err := svc.SetContextFromToken(ctx, otherToken); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("foreign subject: want ErrUnauthorized, got %v", err)
	}

	guest, guestToken, err := svc.GuestUser(ctx)
	if err != nil {
		t.Fatalf("GuestUser: %v", err)
	}
	guestCtx, err := svc.SetContextFromToken(ctx, guestToken)
	if err != nil {
		t.Fatalf("SetContextFromToken(guest): %v", err)
	}
	grd := requestdata.GetRequestData(guestCtx)
	if grd == nil || !grd.Guest || grd.UserID != guest.ID {
		t.Fatalf("guest request data mismatch: %+v", grd)
	}
}
