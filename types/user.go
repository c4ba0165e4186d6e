package types

// User represents an account row in the Users resource.
type User struct {
	// Username is the unique login name, matched case-insensitively.
	Username string `json:"username"`

	// FullName is the user's display name.
	FullName string `json:"full_name"`

	// Role is the user's authorization role (e.g. "Supervisor", "Driver").
	// Permission checks enumerate roles explicitly; there is no hierarchy.
	Role string `json:"role"`

	// Password holds the stored credential: a bcrypt hash for rows written
	// through this API, or a legacy plaintext value from older sheet rows.
	// Never exposed in API responses.
	Password string `json:"-"`

	// RowIndex is the user's 1-based position in the Users resource.
	RowIndex int `json:"-"`
}

// UserListing is the password-safe projection returned by /api/usernames.
type UserListing struct {
	Name string `json:"Name"`
	Role string `json:"Role"`
}
