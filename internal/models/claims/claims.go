package claims

import "github.com/golang-jwt/jwt/v4"

type Role string

const (
	RoleCustomer Role = "customer"
	RoleOperator Role = "operator"
)

// Auth is the JWT payload issued at login. UserID refers to a customer
// or an operator depending on Role.
type Auth struct {
	jwt.RegisteredClaims
	Role   Role `json:"role"`
	UserID int  `json:"user_id"`
}
