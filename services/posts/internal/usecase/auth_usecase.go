package usecase

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"blog-admin/pkg/jwt"
	"blog-admin/pkg/logger"

	"golang.org/x/crypto/bcrypt"
)

const adminRole = "admin"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrLoginDisabled      = errors.New("admin login is not configured")
)

type AuthUseCase interface {
	Login(username, password string) (string, error)
}

type authUseCase struct {
	username     string
	passwordHash []byte
	jwtService   *jwt.Service
	logger       *logger.Logger
}

// NewAuthUseCase checks a single admin account. An empty hash or a nil
// jwtService disables login.
func NewAuthUseCase(username, passwordHash string, jwtService *jwt.Service, logger *logger.Logger) AuthUseCase {
	return &authUseCase{
		username:     username,
		passwordHash: []byte(passwordHash),
		jwtService:   jwtService,
		logger:       logger,
	}
}

func (uc *authUseCase) Login(username, password string) (string, error) {
	if len(uc.passwordHash) == 0 || uc.jwtService == nil {
		return "", ErrLoginDisabled
	}

	if subtle.ConstantTimeCompare([]byte(username), []byte(uc.username)) != 1 {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(uc.passwordHash, []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := uc.jwtService.GenerateToken(uc.username, adminRole)
	if err != nil {
		uc.logger.Error("Failed to generate token: %v", err)
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return token, nil
}

// HashPassword produces a value for ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}
