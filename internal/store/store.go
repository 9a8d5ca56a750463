package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/crisisapi/pkg/models"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateKey = errors.New("duplicate key violation")

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error

	CredentialStore
	CrisisStore
}

// CredentialStore persists api_keys rows, which hold both service keys and user accounts.
// Every mutation is a single statement scoped to one row.
type CredentialStore interface {
	// FindActiveByKey returns the active record holding keyValue.
	FindActiveByKey(ctx context.Context, keyValue string) (*models.Credential, error)
	// FindByKey returns the record holding keyValue regardless of state.
	FindByKey(ctx context.Context, keyValue string) (*models.Credential, error)
	// FindByEmailHash returns the record for emailHash regardless of state.
	FindByEmailHash(ctx context.Context, emailHash string) (*models.Credential, error)
	// FindLoginable returns the active, verified record for emailHash.
	FindLoginable(ctx context.Context, emailHash string) (*models.Credential, error)
	ListCredentials(ctx context.Context, activeOnly bool) ([]*models.Credential, error)

	CreateCredential(ctx context.Context, c *models.Credential) error
	// DeleteCredential removes the record with id. ErrNotFound when absent.
	DeleteCredential(ctx context.Context, id uuid.UUID) error

	// VerifyCredential consumes a verification token: marks the record verified
	// and active and clears the token. ErrNotFound when no record holds it.
	VerifyCredential(ctx context.Context, token string) error
	// IssueKey sets the key value of the account identified by emailHash and activates it.
	// ErrDuplicateKey when the account already has a key, ErrNotFound when it does not exist.
	IssueKey(ctx context.Context, emailHash, keyValue string) error
	RecordKeyUsage(ctx context.Context, id uuid.UUID) error
	TouchLastConnection(ctx context.Context, emailHash string) error
	// DeactivateKey marks the record holding keyValue inactive. ErrNotFound when absent.
	DeactivateKey(ctx context.Context, keyValue string) error
}

// CrisisStore is the read-only crisis data provider.
type CrisisStore interface {
	ListCrises(ctx context.Context, filter CrisisFilter) ([]*models.Crisis, int, error)
	GetCrisis(ctx context.Context, id string) (*models.Crisis, error)
	CountCrises(ctx context.Context) (int, error)
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type CrisisFilter struct {
	Type  string
	Page  int
	Limit int
}

// Normalize applies the default page size, caps it at MaxPageSize and starts pages at 1.
func (f CrisisFilter) Normalize() CrisisFilter {
	if f.Limit <= 0 {
		f.Limit = DefaultPageSize
	}
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	return f
}
