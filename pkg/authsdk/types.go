package authsdk

import "time"

// HeaderDeviceFingerprint carries the client-chosen device identifier. When
// absent the server derives one from User-Agent and Accept-Language.
const HeaderDeviceFingerprint = "X-Device-Fingerprint"

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	// Error is a machine readable code such as "invalid_token".
	Error string `json:"error"`

	// ErrorDescription is a human readable explanation.
	ErrorDescription string `json:"error_description"`
}

// TokenResponse is returned by login and refresh.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`

	// TokenType is always "Bearer".
	TokenType string `json:"token_type"`

	// ExpiresIn is the access token lifetime in seconds.
	ExpiresIn int64 `json:"expires_in"`
}

// RegisterRequest is the body of POST /api/v1/profile/register.
type RegisterRequest struct {
	Login     string `json:"login"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// UpdateProfileRequest is the body of PATCH /api/v1/profile/personal.
// Omitted fields are left unchanged.
type UpdateProfileRequest struct {
	Email     *string `json:"email,omitempty"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Password  *string `json:"password,omitempty"`
}

// UserResponse describes a user profile. Password material is never
// returned.
type UserResponse struct {
	ID        string    `json:"id"`
	Login     string    `json:"login"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type RoleInfo struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ListRolesResponse struct {
	Roles []RoleInfo `json:"roles"`
}

type CreateRoleRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// UpdateRoleRequest renames a role or changes its description.
type UpdateRoleRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

// AccessRequest names a user and a role for grant and revoke.
type AccessRequest struct {
	Login string `json:"login"`
	Role  string `json:"role"`
}

type VerifyAccessResponse struct {
	Login   string `json:"login"`
	Role    string `json:"role"`
	Granted bool   `json:"granted"`
}

type UserRolesResponse struct {
	Login string   `json:"login"`
	Roles []string `json:"roles"`
}

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports each dependency as "ok" or "error: ...".
type HealthChecks struct {
	Database string `json:"database"`
	Cache    string `json:"cache"`
}
