package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims carries the authenticated caller's identity inside access tokens.
type JWTClaims struct {
	UserID string `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}
