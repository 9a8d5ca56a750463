// Package apikey manages service API keys that are not tied to a user account.
package apikey

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/crisisapi/internal/store"
	"github.com/kiranshivaraju/crisisapi/pkg/models"
)

// Prefix marks service keys.
const Prefix = "ak_"

const keyBytes = 32

// Store is the subset of the credential store used by Service.
type Store interface {
	FindByKey(ctx context.Context, keyValue string) (*models.Credential, error)
	ListCredentials(ctx context.Context, activeOnly bool) ([]*models.Credential, error)
	CreateCredential(ctx context.Context, c *models.Credential) error
	DeactivateKey(ctx context.Context, keyValue string) error
}

type Service struct {
	store  Store
	random io.Reader
	now    func() time.Time
}

func NewService(s Store) *Service {
	return &Service{store: s, random: rand.Reader, now: time.Now}
}

// Generate creates and stores a new active service key.
func (s *Service) Generate(ctx context.Context) (*models.Credential, error) {
	b := make([]byte, keyBytes)
	if _, err := io.ReadFull(s.random, b); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	key := Prefix + hex.EncodeToString(b)

	c := &models.Credential{
		ID:        uuid.New(),
		KeyValue:  &key,
		IsActive:  true,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.CreateCredential(ctx, c); err != nil {
		return nil, fmt.Errorf("store key: %w", err)
	}
	return c, nil
}

// Deactivate marks key inactive. It reports false when no record holds key.
func (s *Service) Deactivate(ctx context.Context, key string) (bool, error) {
	err := s.store.DeactivateKey(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("deactivate key: %w", err)
	}
	return true, nil
}

func (s *Service) List(ctx context.Context) ([]*models.Credential, error) {
	return s.store.ListCredentials(ctx, false)
}

func (s *Service) ListActive(ctx context.Context) ([]*models.Credential, error) {
	return s.store.ListCredentials(ctx, true)
}

// Find returns the record holding key, or nil when there is none.
func (s *Service) Find(ctx context.Context, key string) (*models.Credential, error) {
	c, err := s.store.FindByKey(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find key: %w", err)
	}
	return c, nil
}
