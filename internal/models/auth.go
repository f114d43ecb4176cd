package models

import "github.com/golang-jwt/jwt/v5"

// UserRole represents the caller roles recognised by the engine.
type UserRole string

const (
	RoleSuperAdmin UserRole = "super_admin"
	RoleAdmin      UserRole = "admin"
	RoleFaculty    UserRole = "faculty"
	RoleStudent    UserRole = "student"
)

// JWTClaims represents the access token payload issued by the identity
// service. The subject carries the user ID; the institution ID scopes
// every scheduling operation to the caller's tenant.
type JWTClaims struct {
	Role          UserRole `json:"role"`
	InstitutionID string   `json:"institution_id"`
	jwt.RegisteredClaims
}

// UserID returns the authenticated user's identifier.
func (c *JWTClaims) UserID() string {
	return c.Subject
}
