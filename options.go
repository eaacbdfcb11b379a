package bidcompare

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/bidcompare/pkg/compare"
	"github.com/agentstation/bidcompare/pkg/constants"
	"github.com/agentstation/bidcompare/pkg/errors"
	"github.com/agentstation/bidcompare/pkg/sources"
)

// config holds the client configuration
type config struct {
	endpoints sources.Endpoints
	overrides map[sources.ID]string

	loader     sources.Loader
	httpClient *http.Client
	timeout    time.Duration
	timeoutSet bool

	authScheme string
	authParam  string
	authToken  string

	destinations []compare.Destination
	logger       *zerolog.Logger
}

func defaultConfig() *config {
	return &config{
		endpoints: sources.DefaultEndpoints(),
		overrides: make(map[sources.ID]string),
		timeout:   constants.DefaultHTTPTimeout,
	}
}

// Option is a function that configures a Client
type Option func(*config) error

// WithEndpoints replaces the whole endpoint list
func WithEndpoints(eps sources.Endpoints) Option {
	return func(c *config) error {
		for _, ep := range eps {
			if !ep.ID.IsValid() {
				return errors.NewValidationError("endpoint", ep.ID, "unknown endpoint "+string(ep.ID))
			}
		}
		c.endpoints = eps
		return nil
	}
}

// WithEndpointURL points one endpoint at url, an http(s) URL or a file path
func WithEndpointURL(id sources.ID, url string) Option {
	return func(c *config) error {
		if !id.IsValid() {
			return errors.NewValidationError("endpoint", id, "unknown endpoint "+string(id))
		}
		c.overrides[id] = url
		return nil
	}
}

// WithLoader configures a custom loader; auth, timeout and HTTP client
// options are then ignored
func WithLoader(l sources.Loader) Option {
	return func(c *config) error {
		c.loader = l
		return nil
	}
}

// WithHTTPClient configures the HTTP client used for remote endpoints. The
// client's own Timeout is kept unless WithTimeout is also given or the
// client has none, in which case the default timeout applies.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *config) error {
		c.httpClient = hc
		return nil
	}
}

// WithTimeout configures the per-request HTTP timeout
func WithTimeout(d time.Duration) Option {
	return func(c *config) error {
		if d < 0 {
			return errors.NewValidationError("timeout", d, "must not be negative")
		}
		if d > 0 {
			c.timeout = d
			c.timeoutSet = true
		}
		return nil
	}
}

// WithAuth configures request authentication. scheme is one of none,
// bearer, header or query; param names the header or query parameter.
func WithAuth(scheme, param, token string) Option {
	return func(c *config) error {
		c.authScheme = scheme
		c.authParam = param
		c.authToken = token
		return nil
	}
}

// WithDestinations limits the comparison to the given destinations
func WithDestinations(dests ...compare.Destination) Option {
	return func(c *config) error {
		c.destinations = dests
		return nil
	}
}

// WithLogger configures the logger used when the context carries none
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *config) error {
		c.logger = logger
		return nil
	}
}
