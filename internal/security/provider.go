package security

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/crisisapi/internal/mail"
	"github.com/kiranshivaraju/crisisapi/internal/store"
	"github.com/kiranshivaraju/crisisapi/pkg/models"
	"golang.org/x/crypto/sha3"
)

const verificationTokenBytes = 16

// UserStore is the subset of the credential store used for user accounts.
type UserStore interface {
	FindByEmailHash(ctx context.Context, emailHash string) (*models.Credential, error)
	FindLoginable(ctx context.Context, emailHash string) (*models.Credential, error)
	CreateCredential(ctx context.Context, c *models.Credential) error
	DeleteCredential(ctx context.Context, id uuid.UUID) error
	VerifyCredential(ctx context.Context, token string) error
}

// UserProvider loads and provisions user accounts keyed by email hash.
type UserProvider struct {
	store         UserStore
	mailer        mail.Mailer
	encryptionKey string
	random        io.Reader
	now           func() time.Time
}

func NewUserProvider(s UserStore, m mail.Mailer, encryptionKey string) *UserProvider {
	return &UserProvider{
		store:         s,
		mailer:        m,
		encryptionKey: encryptionKey,
		random:        rand.Reader,
		now:           time.Now,
	}
}

// HashEmail returns hex(sha3-512(email + encryption key)).
func (p *UserProvider) HashEmail(email string) string {
	sum := sha3.Sum512([]byte(email + p.encryptionKey))
	return hex.EncodeToString(sum[:])
}

// LoadByIdentifier returns the active, verified account for email.
func (p *UserProvider) LoadByIdentifier(ctx context.Context, email string) (*Principal, error) {
	c, err := p.store.FindLoginable(ctx, p.HashEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return NewSessionPrincipal(email, c), nil
}

// Create provisions an inactive, unverified account and sends its verification
// email. The record is only kept when the email was handed to the transport.
func (p *UserProvider) Create(ctx context.Context, email, passwordHash string) (*Principal, error) {
	hash := p.HashEmail(email)

	_, err := p.store.FindByEmailHash(ctx, hash)
	if err == nil {
		return nil, ErrConflict
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("check existing user: %w", err)
	}

	token, err := p.randomToken()
	if err != nil {
		return nil, fmt.Errorf("%w: generate token: %w", ErrTransport, err)
	}

	c := &models.Credential{
		ID:                uuid.New(),
		Email:             &hash,
		Password:          &passwordHash,
		VerificationToken: &token,
		CreatedAt:         p.now().UTC(),
	}

	err = p.store.CreateCredential(ctx, c)
	if errors.Is(err, store.ErrDuplicateKey) {
		return nil, ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	// The link is only sent once the record is committed. A record whose mail
	// never left is removed so the same email can sign up again.
	if err := p.mailer.SendVerification(ctx, email, token); err != nil {
		if derr := p.store.DeleteCredential(ctx, c.ID); derr != nil {
			slog.Error("failed to remove unverifiable account", "id", c.ID, "error", derr)
		}
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	return NewSessionPrincipal(email, c), nil
}

// Verify consumes a verification token, activating its account.
func (p *UserProvider) Verify(ctx context.Context, token string) error {
	if token == "" {
		return ErrInvalidToken
	}
	err := p.store.VerifyCredential(ctx, token)
	if errors.Is(err, store.ErrNotFound) {
		return ErrInvalidToken
	}
	if err != nil {
		return fmt.Errorf("verify user: %w", err)
	}
	return nil
}

func (p *UserProvider) randomToken() (string, error) {
	b := make([]byte, verificationTokenBytes)
	if _, err := io.ReadFull(p.random, b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
