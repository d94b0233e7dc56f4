package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ognjenpetar/bio-rider-co-creation-map/internal/app/domain/roles"
	"github.com/ognjenpetar/bio-rider-co-creation-map/internal/app/models"
	"github.com/ognjenpetar/bio-rider-co-creation-map/internal/pkg/config"
)

const issuer = "co-creation-map"

// RoleLookup resolves the stored role for a user. Implemented by the user
// service; kept as an interface here to avoid a package cycle.
type RoleLookup interface {
	RoleOf(ctx context.Context, userID string) (roles.Role, error)
}

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	Register(ctx context.Context, username, email, password string) (string, error)
	Login(ctx context.Context, email, password string) (string, *models.UserAuth, error)
	UpdatePassword(ctx context.Context, userID, oldPassword, newPassword string) error
	// ValidateToken parses and verifies a signed token and returns its
	// claims.
	ValidateToken(tokenString string) (*models.Claims, error)
	GenerateToken(ctx context.Context, user *models.UserAuth) (string, error)
}

type ServiceImpl struct {
	logger *zap.Logger
	repo   Repository
	rolesL RoleLookup
	cfg    config.AuthConfig
}

func NewService(repo Repository, rolesL RoleLookup, cfg config.AuthConfig, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger.With(zap.String("service", "AuthService")),
		repo:   repo,
		rolesL: rolesL,
		cfg:    cfg,
	}
}

// Register hashes the password and stores the user. New accounts start as
// viewers.
func (s *ServiceImpl) Register(ctx context.Context, username, email, password string) (string, error) {
	l := s.logger.With(zap.String("method", "Register"), zap.String("email", email))
	l.Debug("Attempting registration")

	username = strings.TrimSpace(username)
	email = strings.TrimSpace(strings.ToLower(email))
	if username == "" || email == "" || len(password) < 8 {
		return "", fmt.Errorf("username, email and a password of at least 8 characters are required: %w", models.ErrValidation)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		l.Error("Failed to hash password", zap.Error(err))
		return "", fmt.Errorf("could not process password")
	}

	userID, err := s.repo.Register(ctx, username, email, string(hashed))
	if err != nil {
		l.Error("Repository registration failed", zap.Error(err))
		return "", fmt.Errorf("registration failed: %w", err)
	}

	l.Info("Registration successful", zap.String("userID", userID))
	return userID, nil
}

// Login validates credentials and returns a signed access token.
func (s *ServiceImpl) Login(ctx context.Context, email, password string) (string, *models.UserAuth, error) {
	l := s.logger.With(zap.String("method", "Login"), zap.String("email", email))
	l.Debug("Attempting login")

	user, err := s.repo.GetUserByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		l.Warn("GetUserByEmail failed")
		// Don't reveal whether the user exists or the password is wrong.
		return "", nil, fmt.Errorf("invalid credentials: %w", models.ErrUnauthenticated)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		l.Warn("Password comparison failed", zap.String("userID", user.ID))
		return "", nil, fmt.Errorf("invalid credentials: %w", models.ErrUnauthenticated)
	}

	token, err := s.GenerateToken(ctx, user)
	if err != nil {
		l.Error("Failed to generate token", zap.String("userID", user.ID), zap.Error(err))
		return "", nil, fmt.Errorf("error generating token: %w", err)
	}

	l.Info("Login successful", zap.String("userID", user.ID))
	return token, user, nil
}

// UpdatePassword verifies the old password before storing a new hash.
func (s *ServiceImpl) UpdatePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	l := s.logger.With(zap.String("method", "UpdatePassword"), zap.String("userID", userID))

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to fetch user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		l.Warn("Old password verification failed")
		return fmt.Errorf("incorrect old password: %w", models.ErrUnauthenticated)
	}
	if len(newPassword) < 8 {
		return fmt.Errorf("new password must be at least 8 characters: %w", models.ErrValidation)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		l.Error("Failed to hash new password", zap.Error(err))
		return fmt.Errorf("could not process new password")
	}
	if err := s.repo.UpdatePassword(ctx, userID, string(hashed)); err != nil {
		l.Error("Repository password update failed", zap.Error(err))
		return fmt.Errorf("failed to update password: %w", err)
	}

	l.Info("Password updated successfully")
	return nil
}

// GenerateToken signs an access token carrying the user's current role.
func (s *ServiceImpl) GenerateToken(ctx context.Context, user *models.UserAuth) (string, error) {
	role := roles.RoleViewer
	if s.rolesL != nil {
		resolved, err := s.rolesL.RoleOf(ctx, user.ID)
		if err != nil {
			s.logger.Warn("Role lookup failed, defaulting to viewer", zap.String("userID", user.ID), zap.Error(err))
		} else {
			role = resolved
		}
	}

	now := time.Now()
	claims := &models.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL())),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   user.ID,
			Issuer:    issuer,
		},
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     string(role),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken verifies signature, expiry and issuer.
func (s *ServiceImpl) ValidateToken(tokenString string) (*models.Claims, error) {
	claims := &models.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithIssuer(issuer))
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", models.ErrUnauthenticated)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token: %w", models.ErrUnauthenticated)
	}
	return claims, nil
}

func (s *ServiceImpl) tokenTTL() time.Duration {
	if s.cfg.TokenExpiryHours > 0 {
		return time.Duration(s.cfg.TokenExpiryHours) * time.Hour
	}
	return 24 * time.Hour
}
