package security

import "net/http"

// Authenticator is one link of the firewall chain.
//
// Supports reports whether the request carries credentials this authenticator
// handles. Authenticate extracts them into a Passport whose lookup runs later.
// OnSuccess may write a response and return true to stop the request.
// OnFailure writes the failure response.
type Authenticator interface {
	Supports(r *http.Request) (bool, error)
	Authenticate(r *http.Request) (*Passport, error)
	OnSuccess(w http.ResponseWriter, r *http.Request, p *Principal) bool
	OnFailure(w http.ResponseWriter, r *http.Request, err error)
}
