package auth

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/TranKhoaa/AITChatbot/internal/database/repository"
	"github.com/TranKhoaa/AITChatbot/internal/models"
)

type AuthService struct {
	adminRepo       *repository.AdminRepository
	jwtSecret       []byte
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
}

func NewAuthService(db *gorm.DB) *AuthService {
	jwtSecret := []byte(os.Getenv("JWT_SECRET"))
	if len(jwtSecret) == 0 {
		jwtSecret = []byte("default-secret-key-change-in-production")
	}

	accessTokenTTL := 15 * time.Minute
	if ttl := os.Getenv("ACCESS_TOKEN_TTL"); ttl != "" {
		if parsed, err := time.ParseDuration(ttl); err == nil {
			accessTokenTTL = parsed
		}
	}

	refreshTokenTTL := 7 * 24 * time.Hour // 7 days
	if ttl := os.Getenv("REFRESH_TOKEN_TTL"); ttl != "" {
		if parsed, err := time.ParseDuration(ttl); err == nil {
			refreshTokenTTL = parsed
		}
	}

	return &AuthService{
		adminRepo:       repository.NewAdminRepository(db),
		jwtSecret:       jwtSecret,
		accessTokenTTL:  accessTokenTTL,
		refreshTokenTTL: refreshTokenTTL,
	}
}

// Login authenticates an admin by username and password
func (s *AuthService) Login(req *models.LoginRequest) (*models.AuthResponse, error) {
	admin, err := s.adminRepo.GetByUsername(req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to look up admin: %w", err)
	}
	if admin == nil {
		return nil, errors.New("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errors.New("invalid credentials")
	}

	return s.generateAuthResponse(admin)
}

// Refresh exchanges a valid refresh token for a new token pair
func (s *AuthService) Refresh(refreshTokenStr string) (*models.AuthResponse, error) {
	claims, err := s.parseToken(refreshTokenStr)
	if err != nil {
		return nil, errors.New("invalid refresh token")
	}
	if claims.TokenType != "refresh" {
		return nil, errors.New("invalid refresh token")
	}

	admin, err := s.adminRepo.GetByID(claims.AdminID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up admin: %w", err)
	}
	if admin == nil {
		return nil, errors.New("admin not found")
	}

	return s.generateAuthResponse(admin)
}

// ValidateAccessToken validates an access token and returns its claims
func (s *AuthService) ValidateAccessToken(tokenString string) (*models.JWTClaims, error) {
	claims, err := s.parseToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != "access" {
		return nil, errors.New("not an access token")
	}
	return claims, nil
}

func (s *AuthService) parseToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(*models.JWTClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token claims")
}

func (s *AuthService) generateAuthResponse(admin *models.Admin) (*models.AuthResponse, error) {
	accessToken, err := s.signToken(admin, "access", s.accessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.signToken(admin, "refresh", s.refreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &models.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.accessTokenTTL.Seconds()),
		AdminID:      admin.ID,
		Name:         admin.Name,
	}, nil
}

func (s *AuthService) signToken(admin *models.Admin, tokenType string, ttl time.Duration) (string, error) {
	claims := &models.JWTClaims{
		AdminID:   admin.ID,
		Username:  admin.Username,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    "ait-chatbot-backend",
			Subject:   admin.ID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// CreateDefaultAdmin creates the bootstrap admin account if it doesn't exist
func (s *AuthService) CreateDefaultAdmin() error {
	username := os.Getenv("DEFAULT_ADMIN_USERNAME")
	if username == "" {
		username = "admin"
	}
	password := os.Getenv("DEFAULT_ADMIN_PASSWORD")
	if password == "" {
		password = "Admin@@123"
	}

	existing, err := s.adminRepo.GetByUsername(username)
	if err != nil {
		return fmt.Errorf("failed to check admin: %w", err)
	}
	if existing != nil {
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &models.Admin{
		Name:         "Administrator",
		Username:     username,
		PasswordHash: string(hashedPassword),
	}
	if err := s.adminRepo.Create(admin); err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}

	logrus.Infof("Created default admin account '%s'", username)
	return nil
}
