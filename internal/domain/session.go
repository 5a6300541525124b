package domain

// Role is a staff office. It decides which areas a session may use.
type Role string

const (
	RoleAdmin      Role = "admin"
	RolePastor     Role = "pastor"
	RoleAccountant Role = "accountant"
	RoleReception  Role = "reception"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RolePastor, RoleAccountant, RoleReception:
		return true
	}
	return false
}

// Profile is the staff record linked to an auth user.
type Profile struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	FullName     string `json:"full_name,omitempty"`
	Role         Role   `json:"role"`
	PasswordHash string `json:"-"`
}

// Session is the authenticated caller of an operation. It is built per
// request and passed explicitly to every guarded service method.
type Session struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// Can reports whether the session holds one of the given roles.
func (s Session) Can(roles ...Role) bool {
	for _, r := range roles {
		if s.Role == r {
			return true
		}
	}
	return false
}

// LoginRequest is the body of POST /v1/auth/login.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// LoginResponse carries the issued access token.
type LoginResponse struct {
	AccessToken string  `json:"access_token"`
	ExpiresIn   int     `json:"expires_in"`
	Session     Session `json:"session"`
}

// ProfileUpdate is the body of PUT /v1/auth/profile.
type ProfileUpdate struct {
	FullName string `json:"full_name"`
}

// PasswordChange is the body of PUT /v1/auth/password.
type PasswordChange struct {
	Current string `json:"current_password"`
	New     string `json:"new_password"`
	Confirm string `json:"confirm_password"`
}

// UserUpdate carries the account fields to change. Nil fields are left alone.
type UserUpdate struct {
	FullName *string
	Password *string
}
