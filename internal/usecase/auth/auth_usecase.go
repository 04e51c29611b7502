package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gdugdh24/tapcard-backend/internal/domain"
	"github.com/gdugdh24/tapcard-backend/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// FollowUpCanceller drops a user's pending reminders on logout.
type FollowUpCanceller interface {
	CancelAll(ctx context.Context, userID string) error
}

type AuthUseCase struct {
	userRepo     repository.UserRepository
	profileRepo  repository.ProfileRepository
	settingsRepo repository.SettingsRepository
	sessionRepo  repository.SessionRepository
	followUps    FollowUpCanceller
	jwtSecret    string
	tokenTTL     time.Duration
	log          *zap.Logger
}

func NewAuthUseCase(
	userRepo repository.UserRepository,
	profileRepo repository.ProfileRepository,
	settingsRepo repository.SettingsRepository,
	sessionRepo repository.SessionRepository,
	followUps FollowUpCanceller,
	jwtSecret string,
	tokenTTL time.Duration,
	log *zap.Logger,
) *AuthUseCase {
	if tokenTTL <= 0 {
		tokenTTL = 24 * 7 * time.Hour
	}
	return &AuthUseCase{
		userRepo:     userRepo,
		profileRepo:  profileRepo,
		settingsRepo: settingsRepo,
		sessionRepo:  sessionRepo,
		followUps:    followUps,
		jwtSecret:    jwtSecret,
		tokenTTL:     tokenTTL,
		log:          log.Named("auth"),
	}
}

// RegisterRequest represents a sign-up request
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	FullName string `json:"full_name" binding:"required,min=1,max=100"`
}

// LoginRequest represents a sign-in request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse represents the authentication response
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *domain.User `json:"user"`
	IsNewUser bool         `json:"is_new_user"`
}

// Register creates the account together with an initial profile and
// default settings, then opens a session.
func (uc *AuthUseCase) Register(ctx context.Context, req *RegisterRequest, deviceInfo, ipAddress string) (*AuthResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	profile := &domain.Profile{
		ID:       user.ID,
		FullName: strings.TrimSpace(req.FullName),
		Email:    user.Email,
	}
	if err := uc.profileRepo.Create(ctx, profile); err != nil {
		// the profile can still be created later through the API
		uc.log.Warn("failed to create initial profile", zap.String("user_id", user.ID), zap.Error(err))
	}
	if err := uc.settingsRepo.Upsert(ctx, domain.DefaultSettings(user.ID)); err != nil {
		uc.log.Warn("failed to store default settings", zap.String("user_id", user.ID), zap.Error(err))
	}

	token, expiresAt, err := uc.createSession(ctx, user.ID, deviceInfo, ipAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	uc.log.Info("user registered", zap.String("user_id", user.ID))
	return &AuthResponse{Token: token, ExpiresAt: expiresAt, User: user, IsNewUser: true}, nil
}

// Login checks the password and opens a new session.
func (uc *AuthUseCase) Login(ctx context.Context, req *LoginRequest, deviceInfo, ipAddress string) (*AuthResponse, error) {
	user, err := uc.userRepo.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	token, expiresAt, err := uc.createSession(ctx, user.ID, deviceInfo, ipAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if err := uc.profileRepo.TouchLastSeen(ctx, user.ID); err != nil && !errors.Is(err, domain.ErrProfileNotFound) {
		uc.log.Warn("failed to update last seen", zap.String("user_id", user.ID), zap.Error(err))
	}

	return &AuthResponse{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (uc *AuthUseCase) Me(ctx context.Context, userID string) (*domain.User, error) {
	return uc.userRepo.GetByID(ctx, userID)
}

// createSession creates a new session and returns JWT token
func (uc *AuthUseCase) createSession(ctx context.Context, userID, deviceInfo, ipAddress string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(uc.tokenTTL)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"jti":     uuid.NewString(),
		"exp":     expiresAt.Unix(),
		"iat":     now.Unix(),
	})

	tokenString, err := token.SignedString([]byte(uc.jwtSecret))
	if err != nil {
		return "", time.Time{}, err
	}

	session := &domain.Session{
		UserID:    userID,
		Token:     hashToken(tokenString),
		ExpiresAt: expiresAt,
	}
	if deviceInfo != "" {
		session.DeviceInfo = &deviceInfo
	}
	if ipAddress != "" {
		session.IPAddress = &ipAddress
	}

	if err := uc.sessionRepo.Create(ctx, session); err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// VerifyToken verifies JWT token and returns user ID
func (uc *AuthUseCase) VerifyToken(ctx context.Context, tokenString string) (string, error) {
	userID, err := uc.parseToken(tokenString)
	if err != nil {
		return "", err
	}

	session, err := uc.sessionRepo.GetByToken(ctx, hashToken(tokenString))
	if errors.Is(err, domain.ErrSessionNotFound) {
		return "", domain.ErrSessionNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get session: %w", err)
	}
	if session.IsExpired() {
		return "", domain.ErrSessionExpired
	}

	return userID, nil
}

func (uc *AuthUseCase) parseToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(uc.jwtSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", domain.ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", domain.ErrInvalidToken
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", domain.ErrInvalidToken
	}
	return userID, nil
}

// Logout deletes the session and cancels the user's pending follow-ups.
func (uc *AuthUseCase) Logout(ctx context.Context, tokenString string) error {
	userID, err := uc.parseToken(tokenString)
	if err != nil {
		return err
	}
	if err := uc.sessionRepo.DeleteByToken(ctx, hashToken(tokenString)); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if uc.followUps != nil {
		if err := uc.followUps.CancelAll(ctx, userID); err != nil {
			uc.log.Warn("failed to cancel follow-ups on logout", zap.String("user_id", userID), zap.Error(err))
		}
	}
	return nil
}

// hashToken creates SHA256 hash of token for storage
func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}
