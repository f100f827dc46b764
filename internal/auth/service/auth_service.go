// Package service implements authentication: login, token checks against the
// revocation store, refresh rotation, and the password lifecycle.
package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/adriandevv/checador/internal/audit"
	revocationdomain "github.com/adriandevv/checador/internal/revocation/domain"
	"github.com/adriandevv/checador/internal/security"
	"github.com/adriandevv/checador/internal/telemetry"
	userdomain "github.com/adriandevv/checador/internal/user/domain"
)

// Sentinel errors for the auth service; the HTTP handlers map them to
// status codes and error codes.
var (
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrInvalidToken           = errors.New("invalid token")
	ErrTokenExpired           = errors.New("token expired")
	ErrTokenRevoked           = errors.New("token revoked")
	ErrUserNotFound           = errors.New("user not found")
	ErrUserInactive           = errors.New("user is deactivated")
)

// dummyHash is compared against when login hits an unknown email, so the
// bcrypt cost is paid on both branches.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// AuthResult holds a freshly issued token with its expiry and the user it
// belongs to.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      *userdomain.User
}

// Principal is the identity established by a successful token check.
type Principal struct {
	Claims *security.Claims
	User   *userdomain.User
}

// UserRepo is the minimal user repository needed by the auth service.
type UserRepo interface {
	GetByID(ctx context.Context, id int64) (*userdomain.User, error)
	GetActiveByEmail(ctx context.Context, email string) (*userdomain.User, error)
	Create(ctx context.Context, u *userdomain.User) (*userdomain.User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}

// RevocationStore is the slice of the revocation authority the auth service
// needs: membership checks on the token-check path and writes on logout,
// refresh, and password change.
type RevocationStore interface {
	IsRevoked(ctx context.Context, tokenID, tokenHash string) (bool, error)
	InvalidateToken(ctx context.Context, token string, reason revocationdomain.Reason, userID int64) (bool, error)
	RevokeAllUserTokens(ctx context.Context, userID int64, reason revocationdomain.Reason) (int64, error)
	UserEpoch(ctx context.Context, userID int64) (*time.Time, error)
}

// AuthService implements login, register, token checks, refresh rotation,
// logout, and password changes.
type AuthService struct {
	users       UserRepo
	revocations RevocationStore
	hasher      *security.Hasher
	codec       *security.TokenCodec
	audit       audit.AuditLogger
	metrics     *telemetry.Metrics
}

// NewAuthService returns an AuthService with the given dependencies.
// auditLogger and metrics may be nil.
func NewAuthService(
	users UserRepo,
	revocations RevocationStore,
	hasher *security.Hasher,
	codec *security.TokenCodec,
	auditLogger audit.AuditLogger,
	metrics *telemetry.Metrics,
) *AuthService {
	return &AuthService{
		users:       users,
		revocations: revocations,
		hasher:      hasher,
		codec:       codec,
		audit:       auditLogger,
		metrics:     metrics,
	}
}

// Login authenticates with email/password and returns a fresh token.
// Unknown email, wrong password, and deactivated account all come back as
// ErrInvalidCredentials; the caller learns nothing about which it was.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.users.GetActiveByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		_ = s.hasher.Compare(dummyHash, []byte(password))
		s.logEvent(ctx, 0, audit.ActionLoginFailure, "auth", email)
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(user.PasswordHash, []byte(password)); err != nil {
		s.logEvent(ctx, user.ID, audit.ActionLoginFailure, "auth", email)
		return nil, ErrInvalidCredentials
	}
	token, claims, err := s.codec.Issue(user.ID, int64(user.RoleID), user.EmployeeID)
	if err != nil {
		return nil, err
	}
	s.logEvent(ctx, user.ID, audit.ActionLogin, "auth", "")
	return &AuthResult{Token: token, ExpiresAt: claims.ExpiryTime(), User: user}, nil
}

// Register creates a user account linked to an employee record.
func (s *AuthService) Register(ctx context.Context, email, password string, role userdomain.Role, employeeID int64) (*userdomain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	existing, err := s.users.GetActiveByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyRegistered
	}
	hashed, err := s.hasher.Hash([]byte(password))
	if err != nil {
		return nil, err
	}
	user := &userdomain.User{
		Email:        email,
		PasswordHash: hashed,
		Active:       true,
		RoleID:       role,
		EmployeeID:   employeeID,
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	return s.users.Create(ctx, user)
}

// Check establishes the identity behind a token. The ordering is fixed:
// signature and expiry first (local, no store access), then the revocation
// record, then the user's revocation epoch, then the live account state.
// A store failure on the revocation lookups denies the token rather than
// letting it through unverified.
func (s *AuthService) Check(ctx context.Context, token string) (*Principal, error) {
	claims, err := s.codec.Parse(token)
	if err != nil {
		switch {
		case errors.Is(err, security.ErrTokenExpired):
			s.metrics.RecordCheck(ctx, "expired")
			return nil, ErrTokenExpired
		default:
			s.metrics.RecordCheck(ctx, "invalid")
			return nil, ErrInvalidToken
		}
	}
	revoked, err := s.revocations.IsRevoked(ctx, claims.TokenID(), security.FingerprintToken(token))
	if err != nil || revoked {
		s.metrics.RecordCheck(ctx, "revoked")
		return nil, ErrTokenRevoked
	}
	epoch, err := s.revocations.UserEpoch(ctx, claims.UserID)
	if err != nil {
		s.metrics.RecordCheck(ctx, "revoked")
		return nil, ErrTokenRevoked
	}
	if epoch != nil && claims.IssuedTime().Before(*epoch) {
		s.metrics.RecordCheck(ctx, "revoked")
		return nil, ErrTokenRevoked
	}
	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.metrics.RecordCheck(ctx, "invalid")
		return nil, ErrUserNotFound
	}
	if !user.Active {
		s.metrics.RecordCheck(ctx, "inactive")
		return nil, ErrUserInactive
	}
	s.metrics.RecordCheck(ctx, "valid")
	return &Principal{Claims: claims, User: user}, nil
}

// Logout revokes the presented token. Revoking a token that is already
// revoked or undecodable is not an error; logout always succeeds for the
// caller that holds the token.
func (s *AuthService) Logout(ctx context.Context, token string, userID int64) error {
	_, err := s.revocations.InvalidateToken(ctx, token, revocationdomain.ReasonLogout, userID)
	if err != nil {
		return err
	}
	s.logEvent(ctx, userID, audit.ActionLogout, "auth", "")
	return nil
}

// LogoutAll moves the user's revocation epoch to now, invalidating every
// outstanding token at once. Returns the number of explicit revocation
// records the user already had.
func (s *AuthService) LogoutAll(ctx context.Context, userID int64) (int64, error) {
	count, err := s.revocations.RevokeAllUserTokens(ctx, userID, revocationdomain.ReasonLogoutAll)
	if err != nil {
		return 0, err
	}
	s.logEvent(ctx, userID, audit.ActionLogoutAll, "auth", "")
	return count, nil
}

// RevokeUserTokens is the admin form of LogoutAll: it invalidates every
// outstanding token of the target user, recording the given reason.
func (s *AuthService) RevokeUserTokens(ctx context.Context, userID int64, reason revocationdomain.Reason) (int64, error) {
	count, err := s.revocations.RevokeAllUserTokens(ctx, userID, reason)
	if err != nil {
		return 0, err
	}
	s.logEvent(ctx, userID, audit.ActionRevoke, "auth", string(reason))
	return count, nil
}

// Refresh rotates a still-valid token: a replacement is issued first, then
// the old token revoked, so a store failure on the revoke never leaves the
// caller without a working token. A token that fails Check cannot be
// refreshed.
func (s *AuthService) Refresh(ctx context.Context, token string) (*AuthResult, error) {
	principal, err := s.Check(ctx, token)
	if err != nil {
		return nil, err
	}
	newToken, claims, err := s.codec.Issue(principal.User.ID, int64(principal.User.RoleID), principal.User.EmployeeID)
	if err != nil {
		return nil, err
	}
	if _, err := s.revocations.InvalidateToken(ctx, token, revocationdomain.ReasonRefresh, principal.User.ID); err != nil {
		return nil, err
	}
	return &AuthResult{Token: newToken, ExpiresAt: claims.ExpiryTime(), User: principal.User}, nil
}

// ChangePassword verifies the current password, stores the new hash, and
// revokes every token issued before the change.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	if err := s.hasher.Compare(user.PasswordHash, []byte(currentPassword)); err != nil {
		return ErrInvalidCredentials
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	hashed, err := s.hasher.Hash([]byte(newPassword))
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, userID, hashed); err != nil {
		return err
	}
	if _, err := s.revocations.RevokeAllUserTokens(ctx, userID, revocationdomain.ReasonPasswordChange); err != nil {
		return err
	}
	s.logEvent(ctx, userID, audit.ActionPasswordChange, "auth", "")
	return nil
}

func (s *AuthService) logEvent(ctx context.Context, userID int64, action, resource, metadata string) {
	if s.audit == nil {
		return
	}
	s.audit.LogEvent(ctx, userID, action, resource, metadata)
}

func validateEmail(email string) error {
	if email == "" {
		return errors.New("email is required")
	}
	const simpleEmail = `^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`
	ok, _ := regexp.MatchString(simpleEmail, email)
	if !ok {
		return errors.New("invalid email format")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}
