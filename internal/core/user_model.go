package core

// User is an application user as seen by the purchase order engine: the
// identity behind a status change. Authentication happens elsewhere; the
// engine only resolves IDs from token claims to display names.
type User struct {
	ID       int
	Username string
	FullName string
	Email    *string
	Role     string
	IsActive bool
}

// DisplayName prefers the full name and falls back to the username.
func (u User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}

// UserNames keys display names by user ID.
func UserNames(users []User) map[int]string {
	out := make(map[int]string, len(users))
	for _, u := range users {
		out[u.ID] = u.DisplayName()
	}
	return out
}
