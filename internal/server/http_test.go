package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/adriandevv/checador/internal/audit"
	auditdomain "github.com/adriandevv/checador/internal/audit/domain"
	authservice "github.com/adriandevv/checador/internal/auth/service"
	employeedomain "github.com/adriandevv/checador/internal/employee/domain"
	revocationdomain "github.com/adriandevv/checador/internal/revocation/domain"
	revocationservice "github.com/adriandevv/checador/internal/revocation/service"
	"github.com/adriandevv/checador/internal/security"
	userdomain "github.com/adriandevv/checador/internal/user/domain"
)

// memRevocationRepo implements revocation/repository.Repository in memory
// and counts lookups so tests can assert what reaches the store.
type memRevocationRepo struct {
	mu          sync.Mutex
	records     []*revocationdomain.Revocation
	epochs      map[int64]time.Time
	lookupCalls int
}

func newMemRevocationRepo() *memRevocationRepo {
	return &memRevocationRepo{epochs: map[int64]time.Time{}}
}

func (r *memRevocationRepo) Create(ctx context.Context, rec *revocationdomain.Revocation) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.records {
		if existing.TokenID == rec.TokenID || existing.TokenHash == rec.TokenHash {
			return false, nil
		}
	}
	r.records = append(r.records, rec)
	return true, nil
}

func (r *memRevocationRepo) FindByTokenIDOrHash(ctx context.Context, tokenID, tokenHash string) (*revocationdomain.Revocation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookupCalls++
	for _, rec := range r.records {
		if rec.TokenID == tokenID || rec.TokenHash == tokenHash {
			return rec, nil
		}
	}
	return nil, nil
}

func (r *memRevocationRepo) ListByUser(ctx context.Context, userID int64, limit int32) ([]*revocationdomain.Revocation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*revocationdomain.Revocation
	for _, rec := range r.records {
		if rec.UserID == userID && int32(len(out)) < limit {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *memRevocationRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []*revocationdomain.Revocation
	var deleted int64
	for _, rec := range r.records {
		if rec.Expired(now) {
			deleted++
			continue
		}
		kept = append(kept, rec)
	}
	r.records = kept
	return deleted, nil
}

func (r *memRevocationRepo) Stats(ctx context.Context, now time.Time) (*revocationdomain.Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := &revocationdomain.Stats{ByReason: map[string]int64{}}
	for _, rec := range r.records {
		s.Total++
		if rec.Expired(now) {
			s.Expired++
		}
		s.ByReason[string(rec.Reason)]++
	}
	s.Active = s.Total - s.Expired
	return s, nil
}

func (r *memRevocationRepo) SetUserEpoch(ctx context.Context, userID int64, cutoff time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.epochs[userID]; ok && existing.After(cutoff) {
		return nil
	}
	r.epochs[userID] = cutoff
	return nil
}

func (r *memRevocationRepo) GetUserEpoch(ctx context.Context, userID int64) (*time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.epochs[userID]; ok {
		return &t, nil
	}
	return nil, nil
}

type memUserRepo struct {
	mu    sync.Mutex
	users map[int64]*userdomain.User
}

func (r *memUserRepo) GetByID(ctx context.Context, id int64) (*userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u2 := *u
		return &u2, nil
	}
	return nil, nil
}

func (r *memUserRepo) GetActiveByEmail(ctx context.Context, email string) (*userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email && u.Active {
			u2 := *u
			return &u2, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) List(ctx context.Context, limit, offset int32) ([]*userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*userdomain.User
	for _, u := range r.users {
		u2 := *u
		out = append(out, &u2)
	}
	return out, nil
}

func (r *memUserRepo) Create(ctx context.Context, u *userdomain.User) (*userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u2 := *u
	u2.ID = int64(len(r.users) + 1)
	r.users[u2.ID] = &u2
	return &u2, nil
}

func (r *memUserRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.PasswordHash = passwordHash
	}
	return nil
}

func (r *memUserRepo) UpdateRole(ctx context.Context, id int64, role userdomain.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.RoleID = role
	}
	return nil
}

func (r *memUserRepo) SetActive(ctx context.Context, id int64, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.Active = active
	}
	return nil
}

type memEmployeeRepo struct {
	mu        sync.Mutex
	employees map[int64]*employeedomain.Employee
}

func (r *memEmployeeRepo) GetByID(ctx context.Context, id int64) (*employeedomain.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.employees[id]; ok {
		e2 := *e
		return &e2, nil
	}
	return nil, nil
}

func (r *memEmployeeRepo) List(ctx context.Context, limit, offset int32) ([]*employeedomain.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*employeedomain.Employee
	for _, e := range r.employees {
		e2 := *e
		out = append(out, &e2)
	}
	return out, nil
}

func (r *memEmployeeRepo) Create(ctx context.Context, e *employeedomain.Employee) (*employeedomain.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e2 := *e
	e2.ID = int64(len(r.employees) + 1)
	r.employees[e2.ID] = &e2
	return &e2, nil
}

func (r *memEmployeeRepo) Update(ctx context.Context, e *employeedomain.Employee) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e2 := *e
	r.employees[e.ID] = &e2
	return nil
}

func (r *memEmployeeRepo) SetActive(ctx context.Context, id int64, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.employees[id]; ok {
		e.Active = active
	}
	return nil
}

type memAuditRepo struct {
	mu      sync.Mutex
	entries []*auditdomain.AuditLog
}

func (r *memAuditRepo) Create(ctx context.Context, a *auditdomain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, a)
	return nil
}

func (r *memAuditRepo) ListByUser(ctx context.Context, userID int64, limit int32) ([]*auditdomain.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*auditdomain.AuditLog
	for _, a := range r.entries {
		if a.UserID == userID && int32(len(out)) < limit {
			out = append(out, a)
		}
	}
	return out, nil
}

type testEnv struct {
	router      http.Handler
	revocations *memRevocationRepo
	auditLogs   *memAuditRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	hasher := security.NewHasher(4)
	adminHash, err := hasher.Hash([]byte("admin-password"))
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	workerHash, err := hasher.Hash([]byte("worker-password"))
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}

	users := &memUserRepo{users: map[int64]*userdomain.User{
		1: {ID: 1, Email: "admin@example.com", PasswordHash: adminHash, Active: true, RoleID: userdomain.RoleAdmin, EmployeeID: 1},
		2: {ID: 2, Email: "worker@example.com", PasswordHash: workerHash, Active: true, RoleID: userdomain.RoleEmployee, EmployeeID: 2},
	}}
	employees := &memEmployeeRepo{employees: map[int64]*employeedomain.Employee{
		1: {ID: 1, FirstName: "Admin", LastName: "One", Active: true},
		2: {ID: 2, FirstName: "Worker", LastName: "Two", Active: true},
	}}
	revocations := newMemRevocationRepo()
	auditLogs := &memAuditRepo{}

	codec := security.NewTokenCodec("test-secret", "test-issuer", time.Hour)
	revocationSvc := revocationservice.NewRevocationService(revocations, time.Hour, nil)
	auditLogger := audit.NewLogger(auditLogs, nil)
	authSvc := authservice.NewAuthService(users, revocationSvc, hasher, codec, auditLogger, nil)

	router := NewRouter(Deps{
		Auth:        authSvc,
		Revocations: revocationSvc,
		Users:       users,
		Employees:   employees,
		Audit:       auditLogs,
		CORSOrigins: []string{"*"},
	})
	return &testEnv{router: router, revocations: revocations, auditLogs: auditLogs}
}

// waitForNextSecond blocks until the wall clock enters a new second, so a
// revocation epoch set afterwards lands strictly after tokens issued before
// the call.
func waitForNextSecond() {
	now := time.Now()
	time.Sleep(now.Truncate(time.Second).Add(time.Second + 10*time.Millisecond).Sub(now))
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) login(t *testing.T, email, password string) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": email, "password": password,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding login response: %v", err)
	}
	if body.Data.Token == "" {
		t.Fatal("login returned no token")
	}
	return body.Data.Token
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding error body: %v", err)
	}
	return body.Code
}

func TestRouter_Health(t *testing.T) {
	env := newTestEnv(t)
	if rec := env.do(t, http.MethodGet, "/healthz", "", nil); rec.Code != http.StatusOK {
		t.Errorf("health: status = %d", rec.Code)
	}
}

func TestRouter_LoginUseLogout(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "worker@example.com", "worker-password")

	if rec := env.do(t, http.MethodGet, "/api/v1/auth/verify-token", token, nil); rec.Code != http.StatusOK {
		t.Fatalf("verify-token: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if rec := env.do(t, http.MethodPost, "/api/v1/auth/logout", token, nil); rec.Code != http.StatusOK {
		t.Fatalf("logout: status = %d", rec.Code)
	}
	rec := env.do(t, http.MethodGet, "/api/v1/auth/verify-token", token, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("after logout: status = %d, want 401", rec.Code)
	}
	if code := errorCode(t, rec); code != "TOKEN_REVOKED" {
		t.Errorf("after logout: code = %q, want TOKEN_REVOKED", code)
	}
}

func TestRouter_MalformedHeaderNeverHitsStore(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/v1/auth/profile", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if code := errorCode(t, rec); code != "NO_TOKEN" {
		t.Errorf("code = %q, want NO_TOKEN", code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/profile", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
	if code := errorCode(t, rr); code != "INVALID_TOKEN_FORMAT" {
		t.Errorf("code = %q, want INVALID_TOKEN_FORMAT", code)
	}

	if env.revocations.lookupCalls != 0 {
		t.Errorf("store lookups = %d, want 0 for malformed requests", env.revocations.lookupCalls)
	}
}

func TestRouter_ChangePasswordRevokesOldTokens(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "worker@example.com", "worker-password")
	waitForNextSecond()

	rec := env.do(t, http.MethodPut, "/api/v1/auth/change-password", token, map[string]string{
		"currentPassword": "worker-password",
		"newPassword":     "a-new-password",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("change-password: status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodGet, "/api/v1/auth/verify-token", token, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("old token after password change: status = %d, want 401", rec.Code)
	}
	if code := errorCode(t, rec); code != "TOKEN_REVOKED" {
		t.Errorf("code = %q, want TOKEN_REVOKED", code)
	}

	env.login(t, "worker@example.com", "a-new-password")
}

func TestRouter_LogoutAllThenImmediateLogin(t *testing.T) {
	env := newTestEnv(t)
	oldToken := env.login(t, "worker@example.com", "worker-password")
	waitForNextSecond()

	if rec := env.do(t, http.MethodPost, "/api/v1/auth/logout-all", oldToken, nil); rec.Code != http.StatusOK {
		t.Fatalf("logout-all: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if rec := env.do(t, http.MethodGet, "/api/v1/auth/verify-token", oldToken, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("old token after logout-all: status = %d, want 401", rec.Code)
	}

	// A login in the same second as the epoch update must yield a working
	// token.
	newToken := env.login(t, "worker@example.com", "worker-password")
	if rec := env.do(t, http.MethodGet, "/api/v1/auth/verify-token", newToken, nil); rec.Code != http.StatusOK {
		t.Errorf("token issued right after logout-all: status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_AdminRevokeUserTokens(t *testing.T) {
	env := newTestEnv(t)
	workerToken := env.login(t, "worker@example.com", "worker-password")
	adminToken := env.login(t, "admin@example.com", "admin-password")
	waitForNextSecond()

	rec := env.do(t, http.MethodPost, "/api/v1/auth/revoke-user-tokens/2", adminToken, map[string]string{
		"reason": "logout_all",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("revoke-user-tokens: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if rec := env.do(t, http.MethodGet, "/api/v1/auth/verify-token", workerToken, nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("worker token after admin revoke: status = %d, want 401", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/api/v1/auth/revoke-user-tokens/2", adminToken, map[string]string{
		"reason": "no-such-reason",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown reason: status = %d, want 400", rec.Code)
	}
}

func TestRouter_AdminAuditTrail(t *testing.T) {
	env := newTestEnv(t)
	env.login(t, "worker@example.com", "worker-password")
	adminToken := env.login(t, "admin@example.com", "admin-password")

	rec := env.do(t, http.MethodGet, "/api/v1/admin/audit/user/2", adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("audit trail: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Data struct {
			Events []struct {
				Action string `json:"action"`
			} `json:"events"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding audit response: %v", err)
	}
	if len(body.Data.Events) != 1 || body.Data.Events[0].Action != "login" {
		t.Errorf("events = %+v, want one login event", body.Data.Events)
	}
}

func TestRouter_AdminGate(t *testing.T) {
	env := newTestEnv(t)
	workerToken := env.login(t, "worker@example.com", "worker-password")
	adminToken := env.login(t, "admin@example.com", "admin-password")

	rec := env.do(t, http.MethodGet, "/api/v1/admin/blacklist/stats", workerToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("worker on admin route: status = %d, want 403", rec.Code)
	}
	if code := errorCode(t, rec); code != "INSUFFICIENT_PERMISSIONS" {
		t.Errorf("code = %q", code)
	}

	if rec := env.do(t, http.MethodGet, "/api/v1/admin/blacklist/stats", adminToken, nil); rec.Code != http.StatusOK {
		t.Errorf("admin on admin route: status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_OwnershipGate(t *testing.T) {
	env := newTestEnv(t)
	workerToken := env.login(t, "worker@example.com", "worker-password")
	adminToken := env.login(t, "admin@example.com", "admin-password")

	if rec := env.do(t, http.MethodGet, "/api/v1/employees/2", workerToken, nil); rec.Code != http.StatusOK {
		t.Errorf("own record: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	rec := env.do(t, http.MethodGet, "/api/v1/employees/1", workerToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("other record: status = %d, want 403", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/api/v1/employees/2", adminToken, nil); rec.Code != http.StatusOK {
		t.Errorf("admin reading any record: status = %d", rec.Code)
	}
}

func TestRouter_RefreshRotates(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "worker@example.com", "worker-password")

	rec := env.do(t, http.MethodPost, "/api/v1/auth/refresh-token", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding refresh response: %v", err)
	}
	if body.Data.Token == "" || body.Data.Token == token {
		t.Fatal("refresh must return a different token")
	}

	if rec := env.do(t, http.MethodGet, "/api/v1/auth/verify-token", token, nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("old token after refresh: status = %d, want 401", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/api/v1/auth/verify-token", body.Data.Token, nil); rec.Code != http.StatusOK {
		t.Errorf("new token after refresh: status = %d", rec.Code)
	}
}

func TestRouter_AdminInvalidate(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.login(t, "admin@example.com", "admin-password")
	workerToken := env.login(t, "worker@example.com", "worker-password")

	rec := env.do(t, http.MethodPost, "/api/v1/admin/blacklist/invalidate", adminToken, map[string]any{
		"token": workerToken,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("invalidate: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if rec := env.do(t, http.MethodGet, "/api/v1/auth/verify-token", workerToken, nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("worker token after admin invalidate: status = %d, want 401", rec.Code)
	}
}
