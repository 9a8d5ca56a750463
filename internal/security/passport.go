package security

import "context"

// UserLoader resolves an identifier to a principal.
type UserLoader func(ctx context.Context, identifier string) (*Principal, error)

// Passport carries an extracted credential whose lookup is deferred until Resolve.
type Passport struct {
	identifier string
	load       UserLoader
}

func NewPassport(identifier string, load UserLoader) *Passport {
	return &Passport{identifier: identifier, load: load}
}

func (p *Passport) Identifier() string { return p.identifier }

func (p *Passport) Resolve(ctx context.Context) (*Principal, error) {
	return p.load(ctx, p.identifier)
}
