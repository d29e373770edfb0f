package types

import "github.com/golang-jwt/jwt/v4"

type Claims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
	jwt.RegisteredClaims
}
