package transport

import (
	"net/http"
	"strings"

	"github.com/agentstation/bidcompare/pkg/errors"
)

// Authenticator applies authentication to HTTP requests.
type Authenticator interface {
	Apply(req *http.Request, token string)
}

// Authentication schemes accepted by NewAuthenticator.
const (
	SchemeNone   = "none"
	SchemeBearer = "bearer"
	SchemeHeader = "header"
	SchemeQuery  = "query"
)

// NewAuthenticator builds the authenticator for a configured scheme.
// param is the header name for SchemeHeader and the query parameter for
// SchemeQuery.
func NewAuthenticator(scheme, param string) (Authenticator, error) {
	switch strings.ToLower(strings.TrimSpace(scheme)) {
	case "", SchemeNone:
		return &NoAuth{}, nil
	case SchemeBearer:
		return &BearerAuth{}, nil
	case SchemeHeader:
		if param == "" {
			return nil, errors.NewValidationError("auth.header", param, "header scheme needs a header name")
		}
		return &HeaderAuth{Header: param}, nil
	case SchemeQuery:
		if param == "" {
			return nil, errors.NewValidationError("auth.param", param, "query scheme needs a parameter name")
		}
		return &QueryAuth{Param: param}, nil
	}
	return nil, errors.NewValidationError("auth.scheme", scheme, "must be one of none, bearer, header, query")
}

// NoAuth implements no authentication.
type NoAuth struct{}

// Apply implements the Authenticator interface for NoAuth.
func (a *NoAuth) Apply(_ *http.Request, _ string) {
	// No authentication applied
}

// BearerAuth implements Bearer token authentication.
type BearerAuth struct{}

// Apply implements the Authenticator interface for BearerAuth.
func (a *BearerAuth) Apply(req *http.Request, token string) {
	req.Header.Set("Authorization", "Bearer "+token)
}

// HeaderAuth implements custom header authentication.
type HeaderAuth struct {
	Header string
}

// Apply implements the Authenticator interface for HeaderAuth.
func (a *HeaderAuth) Apply(req *http.Request, token string) {
	req.Header.Set(a.Header, token)
}

// QueryAuth implements token as query parameter authentication.
type QueryAuth struct {
	Param string
}

// Apply implements the Authenticator interface for QueryAuth.
func (a *QueryAuth) Apply(req *http.Request, token string) {
	if req.URL == nil {
		return
	}

	query := req.URL.Query()
	query.Set(a.Param, token)
	req.URL.RawQuery = query.Encode()
}
