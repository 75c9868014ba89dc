package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// Role enumerates account roles.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// Account is a row of the global login directory. RoutingKey holds the class
// name for students and free-form profile text for teachers and admins; the
// column names match the legacy logins database.
type Account struct {
	Login        string `db:"login" json:"login"`
	PasswordHash string `db:"password" json:"-"`
	Role         Role   `db:"role" json:"role"`
	RoutingKey   string `db:"info" json:"routing_key"`
}

// AuthResult is what a successful credential check yields.
type AuthResult struct {
	Login      string `json:"login"`
	Role       Role   `json:"role"`
	RoutingKey string `json:"routing_key"`
	Token      string `json:"token,omitempty"`
}

// JWTClaims carries identity inside access tokens.
type JWTClaims struct {
	Login      string `json:"login"`
	Role       Role   `json:"role"`
	RoutingKey string `json:"routing_key"`
	jwt.RegisteredClaims
}
