package auth

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Roles known to the storefront. The remote backend names them in Spanish.
const (
	RoleUser  = "usuario"
	RoleAdmin = "admin"
)

// ValidRole reports whether role is one the storefront recognizes.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}

// NormalizeRole maps the backend's role names onto the two known roles.
// Unknown names come back trimmed and lowercased so ValidRole rejects them.
func NormalizeRole(role string) string {
	switch r := strings.ToLower(strings.TrimSpace(role)); r {
	case "administrador", "administrator":
		return RoleAdmin
	case "user", "cliente":
		return RoleUser
	default:
		return r
	}
}

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID int64
	Email  string
	Name   string
	Role   string
	JTI    string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email,omitempty"`
	Name   string `json:"name,omitempty"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func (c *AccessTokenClaims) IsAdmin() bool {
	return c != nil && c.Role == RoleAdmin
}
