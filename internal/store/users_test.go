package store

import (
	"context"
	"errors"
	"testing"

	"github.com/fleetdesk/apiserver/internal/permissions"
)

func seedUsers(m *MemoryStore) {
	// Column order deliberately differs from the canonical schema: the
	// repository must index by header name, not position.
	m.Seed(permissions.ResourceUsers,
		[]string{"Full Name", "Role", "Username", "Password"},
		[][]string{
			{"Karim B.", "Supervisor", " karim ", "hash-1"},
			{"Amine Z.", "Driver", "amine", "hash-2"},
			{"", "", "", ""},
		},
	)
}

func TestGetByUsername(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	m := NewMemoryStore()
	seedUsers(m)
	repo := NewUserRepository(m)

	user, err := repo.GetByUsername(ctx, "  KARIM ")
	if err != nil {
		t.Fatalf("GetByUsername: %v", err)
	}
	if user.Username != "karim" || user.Role != "Supervisor" || user.FullName != "Karim B." {
		t.Fatalf("user = %+v", user)
	}
	if user.Password != "hash-1" {
		t.Fatalf("password = %q", user.Password)
	}
	if user.RowIndex != 1 {
		t.Fatalf("row index = %d", user.RowIndex)
	}

	if _, err := repo.GetByUsername(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown user: %v", err)
	}
}

func TestUserListings(t *testing.T) {
	t.Parallel()

	m := NewMemoryStore()
	seedUsers(m)
	repo := NewUserRepository(m)

	listings, err := repo.Listings(context.Background())
	if err != nil {
		t.Fatalf("Listings: %v", err)
	}
	if len(listings) != 3 {
		t.Fatalf("listing count = %d", len(listings))
	}
	if listings[0].Name != "karim" || listings[0].Role != "Supervisor" {
		t.Fatalf("listing = %+v", listings[0])
	}
	if listings[1].Name != "amine" || listings[1].Role != "Driver" {
		t.Fatalf("listing = %+v", listings[1])
	}
}
