package auth

import "time"

// RegisterDTO is the sign-up request body.
type RegisterDTO struct {
	Username string `json:"username" binding:"required,min=3,max=32"`
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Name     string `json:"name"`
}

// LoginDTO accepts either the username or the email in the same field.
type LoginDTO struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password"   binding:"required"`
}

// UserVO is the public shape of an account.
type UserVO struct {
	ID            string     `json:"id"`
	Username      string     `json:"username"`
	Email         string     `json:"email"`
	Name          string     `json:"name"`
	Avatar        string     `json:"avatar"`
	LastLoginTime *time.Time `json:"last_login_time,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// LoginResult bundles the signed token with the account it belongs to.
type LoginResult struct {
	Token string `json:"token"`
	User  UserVO `json:"user"`
}
