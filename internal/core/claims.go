package core

import "github.com/golang-jwt/jwt/v4"

const AdminRole = "admin"

// AdminClaims 管理員登入後簽發的 session token
type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}
