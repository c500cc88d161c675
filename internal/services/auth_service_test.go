package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/voyagehub/travel-backend/internal/apperr"
	"github.com/voyagehub/travel-backend/internal/config"
	"github.com/voyagehub/travel-backend/internal/models"
	"github.com/voyagehub/travel-backend/internal/validation"
	"github.com/voyagehub/travel-backend/pkg/jwt"
)

// memUsers is an in-memory UserStore
type memUsers struct {
	mu    sync.Mutex
	users map[uuid.UUID]models.User
}

func newMemUsers() *memUsers { return &memUsers{users: map[uuid.UUID]models.User{}} }

func (s *memUsers) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = *u
	return nil
}

func (s *memUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, apperr.NotFound("User", id)
	}
	return &u, nil
}

func (s *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == models.NormalizeEmail(email) {
			return &u, nil
		}
	}
	return nil, nil
}

func (s *memUsers) ExistsByEmail(_ context.Context, email string, excludeID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email && u.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (s *memUsers) Update(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	hash := s.users[u.ID].PasswordHash
	next := *u
	next.PasswordHash = hash
	s.users[u.ID] = next
	return nil
}

func (s *memUsers) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[id]
	u.PasswordHash = passwordHash
	s.users[id] = u
	return nil
}

func (s *memUsers) UpdateLastLogin(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[id]
	u.LastLoginAt = models.NullTime{NullTime: sql.NullTime{Time: time.Now(), Valid: true}}
	s.users[id] = u
	return nil
}

func (s *memUsers) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return apperr.NotFound("User", id)
	}
	delete(s.users, id)
	return nil
}

func (s *memUsers) DeleteAll(_ context.Context, f models.UserFilter, keepID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, u := range s.users {
		if id == keepID || (f.Role != "" && string(u.Role) != f.Role) {
			continue
		}
		delete(s.users, id)
		n++
	}
	return n, nil
}

func (s *memUsers) List(_ context.Context, _ models.UserFilter) ([]models.User, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	return out, len(out), nil
}

// memTokens is an in-memory RefreshTokenStore keyed by the raw token
type memTokens struct {
	mu     sync.Mutex
	tokens map[string]*models.RefreshToken
}

func newMemTokens() *memTokens { return &memTokens{tokens: map[string]*models.RefreshToken{}} }

func (s *memTokens) Store(_ context.Context, userID uuid.UUID, token, ip, ua string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = &models.RefreshToken{
		ID: uuid.New(), UserID: userID, IPAddress: models.NewNullString(ip), UserAgent: models.NewNullString(ua),
		CreatedAt: time.Now(), ExpiresAt: expiresAt,
	}
	return nil
}

func (s *memTokens) Get(_ context.Context, token string) (*models.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rt, ok := s.tokens[token]
	if !ok {
		return nil, nil
	}
	cp := *rt
	return &cp, nil
}

func (s *memTokens) Touch(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rt, ok := s.tokens[token]; ok {
		rt.LastUsedAt = models.NullTime{NullTime: sql.NullTime{Time: time.Now(), Valid: true}}
	}
	return nil
}

func (s *memTokens) Revoke(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rt, ok := s.tokens[token]; ok {
		rt.Revoked = true
	}
	return nil
}

func (s *memTokens) RevokeAllForUser(_ context.Context, userID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, rt := range s.tokens {
		if rt.UserID == userID && !rt.Revoked {
			rt.Revoked = true
			n++
		}
	}
	return n, nil
}

func (s *memTokens) DeleteExpired(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for k, rt := range s.tokens {
		if time.Now().After(rt.ExpiresAt) {
			delete(s.tokens, k)
			n++
		}
	}
	return n, nil
}

func (s *memTokens) live(userID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, rt := range s.tokens {
		if rt.UserID == userID && !rt.Revoked {
			n++
		}
	}
	return n
}

type attempt struct {
	identifier, kind string
	success          bool
	at               time.Time
}

// memAttempts is an in-memory LoginAttemptStore
type memAttempts struct {
	mu       sync.Mutex
	attempts []attempt
}

func (s *memAttempts) CountFailures(_ context.Context, identifier, kind string, windowStart time.Time) (int, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count, last := 0, time.Time{}
	for _, a := range s.attempts {
		if a.identifier == identifier && a.kind == kind && !a.success && a.at.After(windowStart) {
			count++
			if a.at.After(last) {
				last = a.at
			}
		}
	}
	return count, last, nil
}

func (s *memAttempts) Record(_ context.Context, identifier, kind string, success bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts = append(s.attempts, attempt{identifier, kind, success, time.Now()})
	return nil
}

func (s *memAttempts) ClearFailures(_ context.Context, identifier, kind string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.attempts[:0]
	for _, a := range s.attempts {
		if a.identifier == identifier && a.kind == kind && !a.success {
			continue
		}
		kept = append(kept, a)
	}
	s.attempts = kept
	return nil
}

func (s *memAttempts) DeleteBefore(_ context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

// memAuditLog is an in-memory AuditLogStore
type memAuditLog struct {
	mu      sync.Mutex
	entries []models.AuditLog
}

func (s *memAuditLog) Insert(_ context.Context, e *models.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, *e)
	return nil
}

func (s *memAuditLog) DeleteOlderThan(_ context.Context, _ time.Duration) (int64, error) {
	return 0, nil
}

func (s *memAuditLog) actions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.Action)
	}
	return out
}

type authFixture struct {
	auth   *AuthService
	users  *UserService
	store  *memUsers
	tokens *memTokens
	audit  *memAuditLog
	jwt    *jwt.Service
}

func newAuthFixture() *authFixture {
	logger, _ := test.NewNullLogger()
	store := newMemUsers()
	tokens := newMemTokens()
	auditLog := &memAuditLog{}
	jwtService := jwt.NewService("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour)

	users := NewUserService(store, tokens, nil, validation.New(), bcrypt.MinCost, logger)
	limiter := NewRateLimitService(&memAttempts{}, config.RateLimitConfig{MaxAttemptsPerEmail: 3, MaxAttemptsPerIP: 50, WindowMinutes: 15})
	audit := NewAuditService(auditLog, logger, true)

	return &authFixture{
		auth:   NewAuthService(store, tokens, users, jwtService, limiter, audit, logger),
		users:  users,
		store:  store,
		tokens: tokens,
		audit:  auditLog,
		jwt:    jwtService,
	}
}

var testMeta = RequestMeta{IPAddress: "10.0.0.7", UserAgent: "Mozilla/5.0 (X11; Linux x86_64) Firefox/128.0"}

func register(t *testing.T, f *authFixture, email string) *models.TokenResponse {
	t.Helper()
	res, err := f.auth.Register(context.Background(), models.RegisterRequest{
		Name: "Ada Lovelace", Email: email, Password: "correct-horse",
	}, testMeta)
	require.NoError(t, err)
	return res
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	reg := register(t, f, "Ada@Example.com")
	assert.Equal(t, "ada@example.com", reg.User.Email)
	assert.Equal(t, models.RoleCustomer, reg.User.Role)
	assert.Equal(t, "Bearer", reg.TokenType)

	claims, err := f.jwt.ValidateAccessToken(reg.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, claims.UserID)
	assert.Equal(t, "CUSTOMER", claims.Role)

	_, err = f.auth.Register(ctx, models.RegisterRequest{Name: "Ada Again", Email: "ada@example.com", Password: "correct-horse"}, testMeta)
	require.Error(t, err)
	assert.Equal(t, "email is already registered", apperr.As(err).Fields["email"])

	res, err := f.auth.Login(ctx, models.LoginRequest{Email: "ADA@example.com", Password: "correct-horse"}, testMeta)
	require.NoError(t, err)
	assert.NotEmpty(t, res.RefreshToken)
	assert.Equal(t, 2, f.tokens.live(reg.User.ID))
	assert.Contains(t, f.audit.actions(), "login")
}

func TestAuthService_LoginFailures(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	reg := register(t, f, "grace@example.com")

	_, err := f.auth.Login(ctx, models.LoginRequest{Email: "nobody@example.com", Password: "whatever"}, testMeta)
	assert.ErrorIs(t, err, &apperr.Error{Kind: apperr.KindUnauthorized, Code: "INVALID_CREDENTIALS"})

	_, err = f.auth.Login(ctx, models.LoginRequest{Email: "grace@example.com", Password: "wrong-password"}, testMeta)
	assert.ErrorIs(t, err, &apperr.Error{Kind: apperr.KindUnauthorized, Code: "INVALID_CREDENTIALS"})

	_, err = f.auth.Login(ctx, models.LoginRequest{Email: "not-an-email"}, testMeta)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	inactive := false
	_, err = f.users.Update(ctx, reg.User.ID, models.UpdateUserRequest{IsActive: &inactive}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, f.tokens.live(reg.User.ID), "deactivation revokes sessions")

	_, err = f.auth.Login(ctx, models.LoginRequest{Email: "grace@example.com", Password: "correct-horse"}, testMeta)
	assert.ErrorIs(t, err, &apperr.Error{Kind: apperr.KindForbidden, Code: "ACCOUNT_INACTIVE"})
	assert.Contains(t, f.audit.actions(), "login_failed")
}

func TestAuthService_LoginRateLimited(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	register(t, f, "linus@example.com")

	for i := 0; i < 3; i++ {
		_, err := f.auth.Login(ctx, models.LoginRequest{Email: "linus@example.com", Password: "nope-nope"}, testMeta)
		require.Error(t, err)
	}

	_, err := f.auth.Login(ctx, models.LoginRequest{Email: "linus@example.com", Password: "correct-horse"}, testMeta)
	var rle *RateLimitError
	require.ErrorAs(t, err, &rle)
	assert.Equal(t, "email", rle.Type)
	assert.True(t, rle.RetryAfter.After(time.Now()))
	assert.Contains(t, f.audit.actions(), "rate_limit_violation")
}

func TestAuthService_RefreshAndLogout(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	reg := register(t, f, "barbara@example.com")

	refreshed, err := f.auth.Refresh(ctx, reg.RefreshToken, testMeta)
	require.NoError(t, err)
	assert.Equal(t, reg.RefreshToken, refreshed.RefreshToken)
	_, err = f.jwt.ValidateAccessToken(refreshed.AccessToken)
	require.NoError(t, err)

	_, err = f.auth.Refresh(ctx, reg.AccessToken, testMeta)
	assert.ErrorIs(t, err, &apperr.Error{Kind: apperr.KindUnauthorized, Code: "INVALID_REFRESH_TOKEN"}, "an access token is not a refresh token")

	intruder := register(t, f, "mallory@example.com")
	err = f.auth.Logout(ctx, intruder.User.ID, reg.RefreshToken, false, testMeta)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))

	require.NoError(t, f.auth.Logout(ctx, reg.User.ID, reg.RefreshToken, false, testMeta))
	_, err = f.auth.Refresh(ctx, reg.RefreshToken, testMeta)
	assert.ErrorIs(t, err, &apperr.Error{Kind: apperr.KindUnauthorized, Code: "INVALID_REFRESH_TOKEN"})

	second, err := f.auth.Login(ctx, models.LoginRequest{Email: "barbara@example.com", Password: "correct-horse"}, testMeta)
	require.NoError(t, err)
	_, err = f.auth.Login(ctx, models.LoginRequest{Email: "barbara@example.com", Password: "correct-horse"}, testMeta)
	require.NoError(t, err)
	assert.Equal(t, 2, f.tokens.live(reg.User.ID))

	require.NoError(t, f.auth.Logout(ctx, reg.User.ID, "", true, testMeta))
	assert.Equal(t, 0, f.tokens.live(reg.User.ID))
	_, err = f.auth.Refresh(ctx, second.RefreshToken, testMeta)
	assert.Error(t, err)
	assert.Contains(t, f.audit.actions(), "logout")
}

func TestUserService_PasswordChangeRevokesSessions(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	reg := register(t, f, "margaret@example.com")

	newPassword := "a-new-password"
	_, err := f.users.Update(ctx, reg.User.ID, models.UpdateUserRequest{Password: &newPassword}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, f.tokens.live(reg.User.ID))

	_, err = f.auth.Login(ctx, models.LoginRequest{Email: "margaret@example.com", Password: "correct-horse"}, testMeta)
	assert.Error(t, err)
	_, err = f.auth.Login(ctx, models.LoginRequest{Email: "margaret@example.com", Password: newPassword}, testMeta)
	assert.NoError(t, err)
}

func TestUserService_EmailUniquenessOnUpdate(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	a := register(t, f, "alice@example.com")
	register(t, f, "bob@example.com")

	same := "ALICE@example.com"
	_, err := f.users.Update(ctx, a.User.ID, models.UpdateUserRequest{Email: &same}, nil)
	assert.NoError(t, err, "keeping your own email is not a conflict")

	taken := "bob@example.com"
	_, err = f.users.Update(ctx, a.User.ID, models.UpdateUserRequest{Email: &taken}, nil)
	require.Error(t, err)
	assert.Equal(t, "email is already registered", apperr.As(err).Fields["email"])
}

func TestUserService_Delete(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	admin := register(t, f, "admin@example.com")
	register(t, f, "c1@example.com")
	register(t, f, "c2@example.com")
	actor := Actor{UserID: admin.User.ID, Role: models.RoleAdmin}

	err := f.users.Delete(ctx, actor, admin.User.ID)
	assert.ErrorIs(t, err, &apperr.Error{Kind: apperr.KindConflict, Code: "SELF_DELETE"})

	err = f.users.Delete(ctx, actor, uuid.New())
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	n, err := f.users.DeleteAll(ctx, actor, models.UserFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	remaining, meta, err := f.users.List(ctx, models.UserFilter{})
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, admin.User.ID, remaining[0].ID)
	assert.Equal(t, 1, meta.Total)
}
