package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Admin is the principal that uploads files and receives completion events.
type Admin struct {
	// Primary key
	ID string `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`

	Name         string `json:"name" gorm:"type:varchar(255);not null"`
	Username     string `json:"username" gorm:"type:varchar(100);not null;uniqueIndex"`
	PasswordHash string `json:"-" gorm:"type:varchar(255);not null"`

	// Timestamps
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Admin model
func (Admin) TableName() string {
	return "admins"
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest carries the refresh token for access token renewal
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// AuthResponse represents the authentication response with tokens
type AuthResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	AdminID      string `json:"admin_id"`
	Name         string `json:"name"`
}

// JWTClaims are the claims embedded in access and refresh tokens
type JWTClaims struct {
	AdminID   string `json:"admin_id"`
	Username  string `json:"username"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}
