// Package handler implements the HTTP handlers of the crisis data API.
package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/kiranshivaraju/crisisapi/internal/security"
)

const maxBodyBytes = 64 << 10

var validate = validator.New(validator.WithRequiredStructEnabled())

// CSRFTokens issues and checks scoped anti-forgery tokens.
type CSRFTokens interface {
	Token(sessionID, scope string) (string, error)
	Valid(sessionID, scope, token string) bool
}

// Users resolves and provisions user accounts.
type Users interface {
	HashEmail(email string) string
	LoadByIdentifier(ctx context.Context, email string) (*security.Principal, error)
	Create(ctx context.Context, email, passwordHash string) (*security.Principal, error)
	Verify(ctx context.Context, token string) error
}

// Accounts is the persistence used by the dashboard and login flows.
type Accounts interface {
	TouchLastConnection(ctx context.Context, emailHash string) error
	IssueKey(ctx context.Context, emailHash, keyValue string) error
}

// decodeStrict decodes a JSON object into v, rejecting unknown fields, then validates it.
func decodeStrict(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	return validate.Struct(v)
}
