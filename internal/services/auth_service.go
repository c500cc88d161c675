package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/voyagehub/travel-backend/internal/apperr"
	"github.com/voyagehub/travel-backend/internal/models"
	"github.com/voyagehub/travel-backend/pkg/jwt"
)

// AuthService handles registration, login and the refresh token session
type AuthService struct {
	users         UserStore
	refreshTokens RefreshTokenStore
	userService   *UserService
	jwtService    *jwt.Service
	rateLimiter   *RateLimitService
	audit         *AuditService
	logger        *logrus.Logger
	now           func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(
	users UserStore,
	refreshTokens RefreshTokenStore,
	userService *UserService,
	jwtService *jwt.Service,
	rateLimiter *RateLimitService,
	audit *AuditService,
	logger *logrus.Logger,
) *AuthService {
	return &AuthService{
		users:         users,
		refreshTokens: refreshTokens,
		userService:   userService,
		jwtService:    jwtService,
		rateLimiter:   rateLimiter,
		audit:         audit,
		logger:        logger,
		now:           time.Now,
	}
}

// Register creates a CUSTOMER account and signs it in
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest, meta RequestMeta) (*models.TokenResponse, error) {
	user, err := s.userService.Create(ctx, models.CreateUserRequest{RegisterRequest: req, Role: models.RoleCustomer}, nil)
	if err != nil {
		return nil, err
	}
	s.logger.WithField("user_id", user.ID).Info("User registered")
	return s.issueTokens(ctx, user, meta)
}

// Login authenticates with email and password. Unknown emails and wrong
// passwords fail the same way.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest, meta RequestMeta) (*models.TokenResponse, error) {
	if err := s.userService.validator.Struct(req); err != nil {
		return nil, err
	}
	email := models.NormalizeEmail(req.Email)

	if err := s.rateLimiter.CheckLoginRateLimit(ctx, email, meta.IPAddress); err != nil {
		var rle *RateLimitError
		if errors.As(err, &rle) {
			s.audit.LogRateLimitViolation(ctx, email, rle.Type, rle.RetryAfter, meta)
		}
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	invalid := apperr.Unauthorized("Invalid email or password").WithCode("INVALID_CREDENTIALS")
	if user == nil {
		s.recordAttempt(ctx, email, meta, false)
		s.audit.LogLogin(ctx, nil, email, false, "unknown email", meta)
		return nil, invalid
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.recordAttempt(ctx, email, meta, false)
		s.audit.LogLogin(ctx, &user.ID, email, false, "wrong password", meta)
		return nil, invalid
	}
	if !user.IsActive {
		s.audit.LogLogin(ctx, &user.ID, email, false, "inactive account", meta)
		return nil, apperr.Forbidden("Account is inactive").WithCode("ACCOUNT_INACTIVE")
	}

	s.recordAttempt(ctx, email, meta, true)
	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.WithError(err).WithField("user_id", user.ID).Warn("Failed to update last login")
	}
	s.audit.LogLogin(ctx, &user.ID, email, true, "", meta)

	return s.issueTokens(ctx, user, meta)
}

// Refresh exchanges a live refresh token for a new access token
func (s *AuthService) Refresh(ctx context.Context, refreshToken string, meta RequestMeta) (*models.TokenResponse, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid refresh token").WithCode("INVALID_REFRESH_TOKEN")
	}

	stored, err := s.refreshTokens.Get(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if stored == nil || stored.Revoked || s.now().After(stored.ExpiresAt) {
		s.audit.LogTokenRefresh(ctx, claims.UserID, false, meta)
		return nil, apperr.Unauthorized("Refresh token has been revoked or expired").WithCode("INVALID_REFRESH_TOKEN")
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return nil, apperr.Unauthorized("Account no longer exists").WithCode("INVALID_REFRESH_TOKEN")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, apperr.Forbidden("Account is inactive").WithCode("ACCOUNT_INACTIVE")
	}

	accessToken, err := s.jwtService.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if err := s.refreshTokens.Touch(ctx, refreshToken); err != nil {
		s.logger.WithError(err).Warn("Failed to update refresh token last use")
	}
	s.audit.LogTokenRefresh(ctx, user.ID, true, meta)

	return &models.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    s.now().Add(s.jwtService.AccessTokenExpiry()),
		TokenType:    "Bearer",
		User:         user,
	}, nil
}

// Logout revokes the given refresh token, or every token of the user when
// all is set. This is what clears the session.
func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID, refreshToken string, all bool, meta RequestMeta) error {
	if all {
		if _, err := s.refreshTokens.RevokeAllForUser(ctx, userID); err != nil {
			return err
		}
	} else if refreshToken != "" {
		stored, err := s.refreshTokens.Get(ctx, refreshToken)
		if err != nil {
			return err
		}
		if stored != nil && stored.UserID != userID {
			return apperr.Forbidden("Refresh token belongs to another user")
		}
		if err := s.refreshTokens.Revoke(ctx, refreshToken); err != nil {
			return err
		}
	}
	s.audit.LogLogout(ctx, userID, all, meta)
	return nil
}

// Me returns the caller's profile
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User, meta RequestMeta) (*models.TokenResponse, error) {
	accessToken, err := s.jwtService.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, apperr.Internal(err)
	}
	refreshToken, err := s.jwtService.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	now := s.now()
	if err := s.refreshTokens.Store(ctx, user.ID, refreshToken, meta.IPAddress, meta.UserAgent, now.Add(s.jwtService.RefreshTokenExpiry())); err != nil {
		return nil, err
	}

	return &models.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    now.Add(s.jwtService.AccessTokenExpiry()),
		TokenType:    "Bearer",
		User:         user,
	}, nil
}

func (s *AuthService) recordAttempt(ctx context.Context, email string, meta RequestMeta, success bool) {
	if err := s.rateLimiter.RecordLoginAttempt(ctx, email, meta.IPAddress, success); err != nil {
		s.logger.WithError(err).Warn("Failed to record login attempt")
	}
}
