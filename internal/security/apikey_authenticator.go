package security

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/crisisapi/internal/api/response"
	"github.com/kiranshivaraju/crisisapi/internal/store"
	"github.com/kiranshivaraju/crisisapi/pkg/models"
)

const APIKeyHeader = "X-API-KEY"

// KeyStore is the subset of the credential store used for key authentication.
type KeyStore interface {
	FindActiveByKey(ctx context.Context, keyValue string) (*models.Credential, error)
	RecordKeyUsage(ctx context.Context, id uuid.UUID) error
}

// APIKeyAuthenticator authenticates the X-API-KEY header, or the signed docs
// cookie on documentation paths.
type APIKeyAuthenticator struct {
	keys   KeyStore
	signer *CookieSigner
}

func NewAPIKeyAuthenticator(keys KeyStore, signer *CookieSigner) *APIKeyAuthenticator {
	return &APIKeyAuthenticator{keys: keys, signer: signer}
}

func (a *APIKeyAuthenticator) Supports(r *http.Request) (bool, error) {
	if _, ok := r.Header[http.CanonicalHeaderKey(APIKeyHeader)]; ok {
		return true, nil
	}
	if underDocs(r.URL.Path) {
		if _, err := r.Cookie(DocsCookieName); err == nil {
			return true, nil
		}
	}
	return false, nil
}

func (a *APIKeyAuthenticator) Authenticate(r *http.Request) (*Passport, error) {
	key := r.Header.Get(APIKeyHeader)

	if key == "" && underDocs(r.URL.Path) {
		if c, err := r.Cookie(DocsCookieName); err == nil {
			k, err := a.signer.Parse(c.Value)
			if err != nil {
				return nil, err
			}
			key = k
		}
	}

	if key == "" {
		return nil, ErrNoCredential
	}
	return NewPassport(key, a.load), nil
}

func (a *APIKeyAuthenticator) load(ctx context.Context, key string) (*Principal, error) {
	c, err := a.keys.FindActiveByKey(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUnknownOrInactiveKey
	}
	if err != nil {
		return nil, &AuthError{Kind: KindUnknownOrInactiveKey, Err: fmt.Errorf("lookup api key: %w", err)}
	}

	if err := a.keys.RecordKeyUsage(ctx, c.ID); err != nil {
		slog.Warn("failed to record api key usage", "key", c.MaskedKey(), "error", err)
	}
	return NewAPIKeyPrincipal(c), nil
}

func (a *APIKeyAuthenticator) OnSuccess(http.ResponseWriter, *http.Request, *Principal) bool {
	return false
}

func (a *APIKeyAuthenticator) OnFailure(w http.ResponseWriter, _ *http.Request, err error) {
	response.Failure(w, http.StatusUnauthorized, "Authentication failed", MessageKey(err))
}
