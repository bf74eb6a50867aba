package auth

import "github.com/golang-jwt/jwt/v5"

// RoleAdmin is the only role minted by the kiosk: the back-office operator.
const RoleAdmin = "admin"

// AccessTokenClaims represents the typed JWT issued after a PIN login.
type AccessTokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}
