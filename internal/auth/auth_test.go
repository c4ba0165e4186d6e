package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/fleetdesk/apiserver/internal/store"
	"github.com/fleetdesk/apiserver/types"
)

func seededUsers(t *testing.T) *store.UserRepository {
	t.Helper()
	hashed, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}

	mem := store.NewMemoryStore()
	mem.Seed("Users",
		[]string{"Username", "Password", "Role", "Full Name"},
		[][]string{
			{"karim", "secret123", "Supervisor", "Karim B."},
			{"amine", hashed, "Driver", "Amine T."},
		},
	)
	return store.NewUserRepository(mem)
}

func newService(t *testing.T) *Service {
	t.Helper()
	return NewService(seededUsers(t), "test-secret", time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestLoginSuccessCaseInsensitive(t *testing.T) {
	t.Parallel()
	svc := newService(t)

	token, user, err := svc.Login(context.Background(), "  KARIM ", "secret123")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if token == "" {
		t.Fatal("expected a token")
	}
	if user.Role != "Supervisor" {
		t.Fatalf("role = %q, want Supervisor", user.Role)
	}

	claims := svc.Verify(token)
	if claims == nil {
		t.Fatal("Verify returned nil for a fresh token")
	}
	if claims.Username != "karim" || claims.Role != "Supervisor" || claims.FullName != "Karim B." {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestLoginBcryptRow(t *testing.T) {
	t.Parallel()
	svc := newService(t)

	if _, _, err := svc.Login(context.Background(), "amine", "hunter2"); err != nil {
		t.Fatalf("Login with bcrypt row error: %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "amine", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	t.Parallel()
	svc := newService(t)

	_, _, err := svc.Login(context.Background(), "karim", "Secret123")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("password comparison must be exact, got %v", err)
	}
}

func TestLoginUnknownUser(t *testing.T) {
	t.Parallel()
	svc := newService(t)

	_, _, err := svc.Login(context.Background(), "nobody", "secret123")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginMissingInput(t *testing.T) {
	t.Parallel()
	svc := newService(t)

	if _, _, err := svc.Login(context.Background(), "", "secret123"); !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "karim", "   "); !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}
}

func TestVerifyExpiredIndistinguishableFromMalformed(t *testing.T) {
	t.Parallel()

	expired := NewService(seededUsers(t), "test-secret", -time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))
	token, _, err := expired.Login(context.Background(), "karim", "secret123")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}

	svc := NewService(seededUsers(t), "test-secret", time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if claims := svc.Verify(token); claims != nil {
		t.Fatal("expired token must verify to nil")
	}
	if claims := svc.Verify("not.a.jwt"); claims != nil {
		t.Fatal("malformed token must verify to nil")
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	t.Parallel()

	svc := newService(t)
	token, _, err := svc.Login(context.Background(), "karim", "secret123")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}

	other := NewService(seededUsers(t), "other-secret", time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if claims := other.Verify(token); claims != nil {
		t.Fatal("token signed with another secret must verify to nil")
	}
}

func TestPasswordMatchesEmptyStored(t *testing.T) {
	t.Parallel()
	svc := newService(t)

	if svc.passwordMatches(types.User{Username: "x"}, "") {
		t.Fatal("empty stored password must never match")
	}
}
