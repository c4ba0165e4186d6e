package store

import (
	"context"
	"strings"

	"github.com/fleetdesk/apiserver/internal/permissions"
	"github.com/fleetdesk/apiserver/types"
)

// UserRepository reads accounts out of the Users resource.
type UserRepository struct {
	rows RowStore
}

func NewUserRepository(rows RowStore) *UserRepository {
	return &UserRepository{rows: rows}
}

// GetByUsername finds a user matching the trimmed username
// case-insensitively. Returns ErrNotFound when no row matches.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (types.User, error) {
	users, err := r.List(ctx)
	if err != nil {
		return types.User{}, err
	}
	needle := strings.ToLower(strings.TrimSpace(username))
	for _, user := range users {
		if strings.ToLower(user.Username) == needle {
			return user, nil
		}
	}
	return types.User{}, ErrNotFound
}

// List returns every account row.
func (r *UserRepository) List(ctx context.Context) ([]types.User, error) {
	headers, err := r.rows.Headers(ctx, permissions.ResourceUsers)
	if err != nil {
		return nil, err
	}
	rows, err := r.rows.Rows(ctx, permissions.ResourceUsers)
	if err != nil {
		return nil, err
	}

	cols := map[string]int{}
	for i, h := range headers {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}

	users := make([]types.User, 0, len(rows))
	for i, row := range rows {
		users = append(users, types.User{
			Username: strings.TrimSpace(cell(row, cols, "username")),
			Password: strings.TrimSpace(cell(row, cols, "password")),
			Role:     strings.TrimSpace(cell(row, cols, "role")),
			FullName: strings.TrimSpace(cell(row, cols, "full name")),
			RowIndex: i + 1,
		})
	}
	return users, nil
}

// Listings returns the password-safe projection served by /api/usernames.
func (r *UserRepository) Listings(ctx context.Context) ([]types.UserListing, error) {
	users, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	listings := make([]types.UserListing, 0, len(users))
	for _, user := range users {
		listings = append(listings, types.UserListing{Name: user.Username, Role: user.Role})
	}
	return listings, nil
}

func cell(row []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}
