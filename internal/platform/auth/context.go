package auth

import "context"

type contextKey string

const userKey contextKey = "user"

// User is the authenticated caller. ID is the stable subject that owns
// dot phrases, notes and preferences.
type User struct {
	ID       string
	Username string
	Email    string
	Roles    []string
}

// HasRole reports whether the user carries role. Admins carry every role.
func (u User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role || r == RoleAdmin {
			return true
		}
	}
	return false
}

// WithUser returns a context carrying u.
func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFromContext returns the authenticated user, if any.
func UserFromContext(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(userKey).(User)
	return u, ok && u.ID != ""
}

func UserIDFromContext(ctx context.Context) string {
	u, _ := UserFromContext(ctx)
	return u.ID
}

func RolesFromContext(ctx context.Context) []string {
	u, _ := UserFromContext(ctx)
	return u.Roles
}
