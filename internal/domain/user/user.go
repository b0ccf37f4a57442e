// Package user defines the account entity and the principal view used by the
// authentication layer.
package user

// Role values. Only admins may create accounts or list the full user set.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User represents an account with credentials and a role.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	FullName     string `json:"full_name"`
	PasswordHash string `json:"-"` // Never serialize password hash
	Role         string `json:"role"`
	CreatedAt    string `json:"created_at,omitempty"`
}

// Principal is the authenticated identity extracted from a verified token.
// It stamps case creation and gates admin-only operations.
type Principal struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// IsAdmin reports whether the principal carries the admin role.
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}
