package service

import (
	"context"
	"errors"
	"testing"
	"time"

	revocationdomain "github.com/adriandevv/checador/internal/revocation/domain"
	"github.com/adriandevv/checador/internal/security"
	userdomain "github.com/adriandevv/checador/internal/user/domain"
)

type fakeUserRepo struct {
	users map[int64]*userdomain.User
}

func newFakeUserRepo(users ...*userdomain.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[int64]*userdomain.User{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int64) (*userdomain.User, error) {
	return r.users[id], nil
}

func (r *fakeUserRepo) GetActiveByEmail(ctx context.Context, email string) (*userdomain.User, error) {
	for _, u := range r.users {
		if u.Email == email && u.Active {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Create(ctx context.Context, u *userdomain.User) (*userdomain.User, error) {
	u2 := *u
	u2.ID = int64(len(r.users) + 1)
	r.users[u2.ID] = &u2
	return &u2, nil
}

func (r *fakeUserRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	if u, ok := r.users[id]; ok {
		u.PasswordHash = passwordHash
	}
	return nil
}

// fakeRevocations counts store accesses so tests can assert that cheap local
// checks happen before any store round trip.
type fakeRevocations struct {
	revokedIDs    map[string]bool
	revokedHashes map[string]bool
	epochs        map[int64]time.Time

	isRevokedErr  error
	epochErr      error
	invalidateErr error

	isRevokedCalls  int
	epochCalls      int
	invalidateCalls int
	revokeAllCalls  int
	lastReason      revocationdomain.Reason
}

func newFakeRevocations() *fakeRevocations {
	return &fakeRevocations{
		revokedIDs:    map[string]bool{},
		revokedHashes: map[string]bool{},
		epochs:        map[int64]time.Time{},
	}
}

func (f *fakeRevocations) IsRevoked(ctx context.Context, tokenID, tokenHash string) (bool, error) {
	f.isRevokedCalls++
	if f.isRevokedErr != nil {
		return false, f.isRevokedErr
	}
	return f.revokedIDs[tokenID] || f.revokedHashes[tokenHash], nil
}

func (f *fakeRevocations) InvalidateToken(ctx context.Context, token string, reason revocationdomain.Reason, userID int64) (bool, error) {
	f.invalidateCalls++
	f.lastReason = reason
	if f.invalidateErr != nil {
		return false, f.invalidateErr
	}
	hash := security.FingerprintToken(token)
	if f.revokedHashes[hash] {
		return false, nil
	}
	f.revokedHashes[hash] = true
	return true, nil
}

// The epoch is truncated to whole seconds like the real store writes it.
func (f *fakeRevocations) RevokeAllUserTokens(ctx context.Context, userID int64, reason revocationdomain.Reason) (int64, error) {
	f.revokeAllCalls++
	f.lastReason = reason
	f.epochs[userID] = time.Now().UTC().Truncate(time.Second)
	return 0, nil
}

func (f *fakeRevocations) UserEpoch(ctx context.Context, userID int64) (*time.Time, error) {
	f.epochCalls++
	if f.epochErr != nil {
		return nil, f.epochErr
	}
	if t, ok := f.epochs[userID]; ok {
		return &t, nil
	}
	return nil, nil
}

func newTestService(t *testing.T, users *fakeUserRepo, revocations *fakeRevocations) (*AuthService, *security.TokenCodec) {
	t.Helper()
	hasher := security.NewHasher(4)
	codec := security.NewTokenCodec("test-secret", "test-issuer", time.Hour)
	return NewAuthService(users, revocations, hasher, codec, nil, nil), codec
}

func testUser(t *testing.T, id int64, email, password string, role userdomain.Role) *userdomain.User {
	t.Helper()
	hasher := security.NewHasher(4)
	hash, err := hasher.Hash([]byte(password))
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	return &userdomain.User{
		ID: id, Email: email, PasswordHash: hash, Active: true,
		RoleID: role, EmployeeID: id * 100,
	}
}

func TestAuthService_Login(t *testing.T) {
	user := testUser(t, 1, "ana@example.com", "hunter2pass", userdomain.RoleEmployee)
	svc, codec := newTestService(t, newFakeUserRepo(user), newFakeRevocations())

	res, err := svc.Login(context.Background(), "Ana@Example.com ", "hunter2pass")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	claims, err := codec.Parse(res.Token)
	if err != nil {
		t.Fatalf("issued token must parse: %v", err)
	}
	if claims.UserID != 1 || claims.RoleID != int64(userdomain.RoleEmployee) || claims.EmployeeID != 100 {
		t.Errorf("claims: %+v", claims)
	}
	if res.User.ID != 1 {
		t.Errorf("user = %d, want 1", res.User.ID)
	}

	if _, err := svc.Login(context.Background(), "nobody@example.com", "hunter2pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email: want ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "ana@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: want ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Register(t *testing.T) {
	users := newFakeUserRepo(testUser(t, 1, "ana@example.com", "hunter2pass", userdomain.RoleEmployee))
	svc, _ := newTestService(t, users, newFakeRevocations())

	created, err := svc.Register(context.Background(), "Bob@Example.com", "longenough", userdomain.RoleEmployee, 200)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if created.Email != "bob@example.com" {
		t.Errorf("email must be normalized, got %q", created.Email)
	}
	if created.PasswordHash == "longenough" || created.PasswordHash == "" {
		t.Error("password must be stored hashed")
	}

	if _, err := svc.Register(context.Background(), "ana@example.com", "longenough", userdomain.RoleEmployee, 300); !errors.Is(err, ErrEmailAlreadyRegistered) {
		t.Errorf("duplicate email: want ErrEmailAlreadyRegistered, got %v", err)
	}
	if _, err := svc.Register(context.Background(), "short@example.com", "short", userdomain.RoleEmployee, 300); err == nil {
		t.Error("short password must be rejected")
	}
	if _, err := svc.Register(context.Background(), "not-an-email", "longenough", userdomain.RoleEmployee, 300); err == nil {
		t.Error("invalid email must be rejected")
	}
}

func TestAuthService_Check_Valid(t *testing.T) {
	user := testUser(t, 1, "ana@example.com", "hunter2pass", userdomain.RoleAdmin)
	revocations := newFakeRevocations()
	svc, codec := newTestService(t, newFakeUserRepo(user), revocations)

	token, _, err := codec.Issue(1, int64(userdomain.RoleAdmin), 100)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	principal, err := svc.Check(context.Background(), token)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if principal.User.ID != 1 || principal.Claims.UserID != 1 {
		t.Errorf("principal: %+v", principal)
	}
	if revocations.isRevokedCalls != 1 || revocations.epochCalls != 1 {
		t.Errorf("store calls: isRevoked=%d epoch=%d, want 1/1", revocations.isRevokedCalls, revocations.epochCalls)
	}
}

func TestAuthService_Check_RejectsBeforeStoreAccess(t *testing.T) {
	user := testUser(t, 1, "ana@example.com", "hunter2pass", userdomain.RoleEmployee)
	revocations := newFakeRevocations()
	svc, _ := newTestService(t, newFakeUserRepo(user), revocations)

	otherCodec := security.NewTokenCodec("other-secret", "test-issuer", time.Hour)
	forged, _, err := otherCodec.Issue(1, int64(userdomain.RoleEmployee), 100)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	for _, token := range []string{"garbage", "a.b.c", forged} {
		if _, err := svc.Check(context.Background(), token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Check(%q): want ErrInvalidToken, got %v", token, err)
		}
	}
	expiredCodec := security.NewTokenCodec("test-secret", "test-issuer", -time.Hour)
	expired, _, err := expiredCodec.Issue(1, int64(userdomain.RoleEmployee), 100)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := svc.Check(context.Background(), expired); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("expired token: want ErrTokenExpired, got %v", err)
	}

	if revocations.isRevokedCalls != 0 || revocations.epochCalls != 0 {
		t.Errorf("rejected tokens must never reach the store: isRevoked=%d epoch=%d",
			revocations.isRevokedCalls, revocations.epochCalls)
	}
}

func TestAuthService_Check_RevokedRecord(t *testing.T) {
	user := testUser(t, 1, "ana@example.com", "hunter2pass", userdomain.RoleEmployee)
	revocations := newFakeRevocations()
	svc, codec := newTestService(t, newFakeUserRepo(user), revocations)

	token, claims, err := codec.Issue(1, int64(userdomain.RoleEmployee), 100)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	revocations.revokedIDs[claims.TokenID()] = true

	if _, err := svc.Check(context.Background(), token); !errors.Is(err, ErrTokenRevoked) {
		t.Errorf("want ErrTokenRevoked, got %v", err)
	}
}

func TestAuthService_Check_EpochCutoff(t *testing.T) {
	user := testUser(t, 1, "ana@example.com", "hunter2pass", userdomain.RoleEmployee)
	revocations := newFakeRevocations()
	svc, codec := newTestService(t, newFakeUserRepo(user), revocations)

	token, _, err := codec.Issue(1, int64(userdomain.RoleEmployee), 100)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	revocations.epochs[1] = time.Now().UTC().Add(time.Minute)
	if _, err := svc.Check(context.Background(), token); !errors.Is(err, ErrTokenRevoked) {
		t.Errorf("token issued before the epoch: want ErrTokenRevoked, got %v", err)
	}

	revocations.epochs[1] = time.Now().UTC().Add(-time.Minute)
	if _, err := svc.Check(context.Background(), token); err != nil {
		t.Errorf("token issued after the epoch: want valid, got %v", err)
	}
}

func TestAuthService_Check_StoreErrorFailsClosed(t *testing.T) {
	user := testUser(t, 1, "ana@example.com", "hunter2pass", userdomain.RoleEmployee)
	codec := security.NewTokenCodec("test-secret", "test-issuer", time.Hour)
	token, _, err := codec.Issue(1, int64(userdomain.RoleEmployee), 100)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	recordErr := newFakeRevocations()
	recordErr.isRevokedErr = errors.New("store down")
	svc, _ := newTestService(t, newFakeUserRepo(user), recordErr)
	if _, err := svc.Check(context.Background(), token); !errors.Is(err, ErrTokenRevoked) {
		t.Errorf("record lookup failure: want ErrTokenRevoked, got %v", err)
	}

	epochErr := newFakeRevocations()
	epochErr.epochErr = errors.New("store down")
	svc, _ = newTestService(t, newFakeUserRepo(user), epochErr)
	if _, err := svc.Check(context.Background(), token); !errors.Is(err, ErrTokenRevoked) {
		t.Errorf("epoch lookup failure: want ErrTokenRevoked, got %v", err)
	}
}

func TestAuthService_Check_UserState(t *testing.T) {
	inactive := testUser(t, 1, "ana@example.com", "hunter2pass", userdomain.RoleEmployee)
	inactive.Active = false
	svc, codec := newTestService(t, newFakeUserRepo(inactive), newFakeRevocations())

	token, _, err := codec.Issue(1, int64(userdomain.RoleEmployee), 100)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := svc.Check(context.Background(), token); !errors.Is(err, ErrUserInactive) {
		t.Errorf("inactive user: want ErrUserInactive, got %v", err)
	}

	missing, _, err := codec.Issue(99, int64(userdomain.RoleEmployee), 100)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := svc.Check(context.Background(), missing); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("deleted user: want ErrUserNotFound, got %v", err)
	}
}

func TestAuthService_LogoutThenCheck(t *testing.T) {
	user := testUser(t, 1, "ana@example.com", "hunter2pass", userdomain.RoleEmployee)
	revocations := newFakeRevocations()
	svc, codec := newTestService(t, newFakeUserRepo(user), revocations)

	token, _, err := codec.Issue(1, int64(userdomain.RoleEmployee), 100)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := svc.Check(context.Background(), token); err != nil {
		t.Fatalf("Check before logout: %v", err)
	}
	if err := svc.Logout(context.Background(), token, 1); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := svc.Check(context.Background(), token); !errors.Is(err, ErrTokenRevoked) {
		t.Errorf("Check after logout: want ErrTokenRevoked, got %v", err)
	}
	if revocations.lastReason != revocationdomain.ReasonLogout {
		t.Errorf("reason = %q", revocations.lastReason)
	}
}

func TestAuthService_Refresh(t *testing.T) {
	user := testUser(t, 1, "ana@example.com", "hunter2pass", userdomain.RoleEmployee)
	revocations := newFakeRevocations()
	svc, codec := newTestService(t, newFakeUserRepo(user), revocations)

	token, _, err := codec.Issue(1, int64(userdomain.RoleEmployee), 100)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	res, err := svc.Refresh(context.Background(), token)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if res.Token == token {
		t.Error("refresh must issue a new token")
	}
	if revocations.lastReason != revocationdomain.ReasonRefresh {
		t.Errorf("reason = %q", revocations.lastReason)
	}
	if _, err := svc.Check(context.Background(), token); !errors.Is(err, ErrTokenRevoked) {
		t.Errorf("old token after refresh: want ErrTokenRevoked, got %v", err)
	}
	if _, err := svc.Check(context.Background(), res.Token); err != nil {
		t.Errorf("new token after refresh: want valid, got %v", err)
	}

	if _, err := svc.Refresh(context.Background(), token); !errors.Is(err, ErrTokenRevoked) {
		t.Errorf("refreshing a revoked token: want ErrTokenRevoked, got %v", err)
	}
}

func TestAuthService_Refresh_StoreFailureKeepsOldToken(t *testing.T) {
	user := testUser(t, 1, "ana@example.com", "hunter2pass", userdomain.RoleEmployee)
	revocations := newFakeRevocations()
	svc, codec := newTestService(t, newFakeUserRepo(user), revocations)

	token, _, err := codec.Issue(1, int64(userdomain.RoleEmployee), 100)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	revocations.invalidateErr = errors.New("store down")
	if _, err := svc.Refresh(context.Background(), token); err == nil {
		t.Fatal("Refresh must fail when the revoke cannot be recorded")
	}
	revocations.invalidateErr = nil
	if _, err := svc.Check(context.Background(), token); err != nil {
		t.Errorf("old token must stay usable after a failed rotation, got %v", err)
	}
}

func TestAuthService_RevokeUserTokens(t *testing.T) {
	user := testUser(t, 1, "ana@example.com", "hunter2pass", userdomain.RoleEmployee)
	revocations := newFakeRevocations()
	svc, _ := newTestService(t, newFakeUserRepo(user), revocations)

	if _, err := svc.RevokeUserTokens(context.Background(), 1, revocationdomain.ReasonAdminRevoke); err != nil {
		t.Fatalf("RevokeUserTokens: %v", err)
	}
	if revocations.revokeAllCalls != 1 || revocations.lastReason != revocationdomain.ReasonAdminRevoke {
		t.Errorf("revokeAll calls=%d reason=%q", revocations.revokeAllCalls, revocations.lastReason)
	}

	if _, err := svc.RevokeUserTokens(context.Background(), 1, revocationdomain.ReasonPasswordChange); err != nil {
		t.Fatalf("RevokeUserTokens: %v", err)
	}
	if revocations.lastReason != revocationdomain.ReasonPasswordChange {
		t.Errorf("caller-supplied reason must reach the store, got %q", revocations.lastReason)
	}
}

func TestAuthService_LogoutAllThenImmediateIssue(t *testing.T) {
	user := testUser(t, 1, "ana@example.com", "hunter2pass", userdomain.RoleEmployee)
	revocations := newFakeRevocations()
	svc, codec := newTestService(t, newFakeUserRepo(user), revocations)

	if _, err := svc.LogoutAll(context.Background(), 1); err != nil {
		t.Fatalf("LogoutAll: %v", err)
	}
	token, _, err := codec.Issue(1, int64(userdomain.RoleEmployee), 100)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := svc.Check(context.Background(), token); err != nil {
		t.Errorf("token issued after revoke-all in the same second: want valid, got %v", err)
	}
}

func TestAuthService_ChangePassword(t *testing.T) {
	user := testUser(t, 1, "ana@example.com", "hunter2pass", userdomain.RoleEmployee)
	revocations := newFakeRevocations()
	users := newFakeUserRepo(user)
	svc, _ := newTestService(t, users, revocations)

	if err := svc.ChangePassword(context.Background(), 1, "wrong", "newpassword"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong current password: want ErrInvalidCredentials, got %v", err)
	}
	if err := svc.ChangePassword(context.Background(), 1, "hunter2pass", "short"); err == nil {
		t.Error("short new password must be rejected")
	}
	if err := svc.ChangePassword(context.Background(), 1, "hunter2pass", "newpassword"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if revocations.revokeAllCalls != 1 || revocations.lastReason != revocationdomain.ReasonPasswordChange {
		t.Errorf("revokeAll calls=%d reason=%q", revocations.revokeAllCalls, revocations.lastReason)
	}
	if _, err := svc.Login(context.Background(), "ana@example.com", "newpassword"); err != nil {
		t.Errorf("login with new password: %v", err)
	}
	if _, err := svc.Login(context.Background(), "ana@example.com", "hunter2pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("login with old password: want ErrInvalidCredentials, got %v", err)
	}
}
