package security

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/crisisapi/internal/session"
	"github.com/kiranshivaraju/crisisapi/internal/store"
	"github.com/kiranshivaraju/crisisapi/pkg/models"
	"github.com/stretchr/testify/require"
)

// --- credential store ---

type mockStore struct {
	mu       sync.Mutex
	byKey    map[string]*models.Credential
	byHash   map[string]*models.Credential
	usage    map[uuid.UUID]int
	findErr  error
	usageErr error
	created  []*models.Credential
	deleted  []uuid.UUID
}

func newMockStore() *mockStore {
	return &mockStore{
		byKey:  map[string]*models.Credential{},
		byHash: map[string]*models.Credential{},
		usage:  map[uuid.UUID]int{},
	}
}

func (m *mockStore) addKey(key string, active bool) *models.Credential {
	c := &models.Credential{ID: uuid.New(), KeyValue: &key, IsActive: active}
	m.byKey[key] = c
	return c
}

func (m *mockStore) addUser(hash, passwordHash string, verified bool) *models.Credential {
	c := &models.Credential{ID: uuid.New(), Email: &hash, Password: &passwordHash, IsActive: verified, EmailVerified: verified}
	m.byHash[hash] = c
	return c
}

func (m *mockStore) FindActiveByKey(_ context.Context, key string) (*models.Credential, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	c, ok := m.byKey[key]
	if !ok || !c.IsActive {
		return nil, store.ErrNotFound
	}
	return c, nil
}

func (m *mockStore) RecordKeyUsage(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.usageErr != nil {
		return m.usageErr
	}
	m.usage[id]++
	return nil
}

func (m *mockStore) FindByEmailHash(_ context.Context, hash string) (*models.Credential, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	c, ok := m.byHash[hash]
	if !ok {
		return nil, store.ErrNotFound
	}
	return c, nil
}

func (m *mockStore) FindLoginable(_ context.Context, hash string) (*models.Credential, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	c, ok := m.byHash[hash]
	if !ok || !c.IsActive || !c.EmailVerified {
		return nil, store.ErrNotFound
	}
	return c, nil
}

func (m *mockStore) CreateCredential(_ context.Context, c *models.Credential) error {
	if _, ok := m.byHash[*c.Email]; ok {
		return store.ErrDuplicateKey
	}
	m.byHash[*c.Email] = c
	m.created = append(m.created, c)
	return nil
}

func (m *mockStore) DeleteCredential(_ context.Context, id uuid.UUID) error {
	for h, c := range m.byHash {
		if c.ID == id {
			delete(m.byHash, h)
			m.deleted = append(m.deleted, id)
			return nil
		}
	}
	return store.ErrNotFound
}

func (m *mockStore) VerifyCredential(_ context.Context, token string) error {
	for _, c := range m.byHash {
		if c.VerificationToken != nil && *c.VerificationToken == token {
			c.VerificationToken = nil
			c.EmailVerified = true
			c.IsActive = true
			return nil
		}
	}
	return store.ErrNotFound
}

// --- mailer ---

type mockMailer struct {
	sent []string
	err  error
}

func (m *mockMailer) SendVerification(_ context.Context, email, token string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, email+"|"+token)
	return nil
}

// --- sessions ---

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

// withSession attaches a session to r, storing values in it first.
func withSession(t *testing.T, r *http.Request, values map[string]string) *http.Request {
	t.Helper()
	m := session.NewManager(&memCache{data: map[string][]byte{}}, time.Hour, false)
	sess := m.Load(httptest.NewRecorder(), r)
	for k, v := range values {
		require.NoError(t, sess.Put(r.Context(), k, v))
	}
	return r.WithContext(session.WithSession(r.Context(), sess))
}
