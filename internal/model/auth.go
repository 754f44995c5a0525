package model

import "github.com/golang-jwt/jwt/v5"

// UserClaims are JWT claims identifying the interview candidate
type UserClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// TokenResponse is returned when a development token is issued
type TokenResponse struct {
	Token     string `json:"token"`
	UserID    string `json:"userId"`
	ExpiresAt int64  `json:"expiresAt,omitempty"`
}
