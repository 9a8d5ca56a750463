package handler

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kiranshivaraju/crisisapi/internal/security"
	"github.com/kiranshivaraju/crisisapi/internal/session"
	"github.com/kiranshivaraju/crisisapi/internal/store"
	"github.com/kiranshivaraju/crisisapi/pkg/models"
)

// ─── csrf ────────────────────────────────────────────────────────────────────

type fakeTokens struct {
	token    string
	tokenErr error
	valid    bool
	gotSID   string
}

func (f *fakeTokens) Token(sid, _ string) (string, error) {
	f.gotSID = sid
	return f.token, f.tokenErr
}

func (f *fakeTokens) Valid(sid, scope, token string) bool {
	f.gotSID = sid
	return f.valid && scope == security.ScopeAuthenticate && token != ""
}

// ─── users ───────────────────────────────────────────────────────────────────

type mockUsers struct {
	principal *security.Principal
	loadErr   error
	createErr error
	verifyErr error

	createdEmail string
	createdHash  string
	verified     string
}

func (m *mockUsers) HashEmail(email string) string { return "h:" + email }

func (m *mockUsers) LoadByIdentifier(_ context.Context, _ string) (*security.Principal, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.principal == nil {
		return nil, security.ErrNotFound
	}
	return m.principal, nil
}

func (m *mockUsers) Create(_ context.Context, email, hash string) (*security.Principal, error) {
	m.createdEmail, m.createdHash = email, hash
	if m.createErr != nil {
		return nil, m.createErr
	}
	return security.NewSessionPrincipal(email, &models.Credential{}), nil
}

func (m *mockUsers) Verify(_ context.Context, token string) error {
	m.verified = token
	return m.verifyErr
}

// ─── accounts ────────────────────────────────────────────────────────────────

type mockAccounts struct {
	touched  []string
	touchErr error
	issueErr error
	issued   map[string]string
}

func (m *mockAccounts) TouchLastConnection(_ context.Context, hash string) error {
	m.touched = append(m.touched, hash)
	return m.touchErr
}

func (m *mockAccounts) IssueKey(_ context.Context, hash, key string) error {
	if m.issueErr != nil {
		return m.issueErr
	}
	if m.issued == nil {
		m.issued = map[string]string{}
	}
	m.issued[hash] = key
	return nil
}

// ─── keys ────────────────────────────────────────────────────────────────────

type mockKeys struct {
	active map[string]*models.Credential
	err    error
}

func (m *mockKeys) FindActiveByKey(_ context.Context, key string) (*models.Credential, error) {
	if m.err != nil {
		return nil, m.err
	}
	if c, ok := m.active[key]; ok {
		return c, nil
	}
	return nil, store.ErrNotFound
}

// ─── crises ──────────────────────────────────────────────────────────────────

// mockCrises returns items as given. With paged set it slices items by
// f.Page and f.Limit and reports len(items) as the total.
type mockCrises struct {
	items   []*models.Crisis
	total   int
	err     error
	paged   bool
	filters []store.CrisisFilter
}

func (m *mockCrises) ListCrises(_ context.Context, f store.CrisisFilter) ([]*models.Crisis, int, error) {
	m.filters = append(m.filters, f)
	if !m.paged || m.err != nil {
		return m.items, m.total, m.err
	}
	start := min((f.Page-1)*f.Limit, len(m.items))
	end := min(start+f.Limit, len(m.items))
	return m.items[start:end], len(m.items), nil
}

func (m *mockCrises) GetCrisis(_ context.Context, id string) (*models.Crisis, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, c := range m.items {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *mockCrises) CountCrises(_ context.Context) (int, error) { return m.total, m.err }

// ─── key admin ───────────────────────────────────────────────────────────────

type mockKeyAdmin struct {
	keys   []*models.Credential
	genErr error
	err    error
}

func (m *mockKeyAdmin) Generate(_ context.Context) (*models.Credential, error) {
	if m.genErr != nil {
		return nil, m.genErr
	}
	key := "ak_" + strings.Repeat("0f", 32)
	c := &models.Credential{ID: uuid.New(), KeyValue: &key, IsActive: true, CreatedAt: time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)}
	m.keys = append(m.keys, c)
	return c, nil
}

func (m *mockKeyAdmin) Deactivate(_ context.Context, key string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	for _, c := range m.keys {
		if c.Key() == key {
			c.IsActive = false
			return true, nil
		}
	}
	return false, nil
}

func (m *mockKeyAdmin) List(_ context.Context) ([]*models.Credential, error) {
	return m.keys, m.err
}

// ─── session ─────────────────────────────────────────────────────────────────

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}
func (m *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}
func (m *memCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
func (m *memCache) Ping(context.Context) error { return nil }
func (m *memCache) IncrWithExpiry(context.Context, string, time.Duration) (int64, error) {
	return 1, nil
}

// withSession attaches an empty session bound to w to r.
func withSession(w http.ResponseWriter, r *http.Request) *http.Request {
	m := session.NewManager(&memCache{data: map[string][]byte{}}, time.Hour, false)
	return r.WithContext(session.WithSession(r.Context(), m.Load(w, r)))
}

// withPrincipal attaches p to r as the authenticated principal.
func withPrincipal(r *http.Request, p *security.Principal) *http.Request {
	return r.WithContext(security.WithPrincipal(r.Context(), p))
}

// withURLParams attaches chi route parameters to r.
func withURLParams(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

var (
	_ CSRFTokens        = (*fakeTokens)(nil)
	_ Users             = (*mockUsers)(nil)
	_ Accounts          = (*mockAccounts)(nil)
	_ KeyLookup         = (*mockKeys)(nil)
	_ KeyAdmin          = (*mockKeyAdmin)(nil)
	_ store.CrisisStore = (*mockCrises)(nil)
)
