package sources

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/agentstation/bidcompare/internal/transport"
	"github.com/agentstation/bidcompare/pkg/bids"
	"github.com/agentstation/bidcompare/pkg/errors"
	"github.com/agentstation/bidcompare/pkg/logging"
)

// Loader fetches and decodes one endpoint.
type Loader interface {
	Load(ctx context.Context, ep Endpoint) Result
}

// Result is the outcome of one load. On failure Records is empty and Err
// says why; callers treat the endpoint as an empty set.
type Result struct {
	Endpoint Endpoint
	Records  []bids.Record
	Err      error
	Duration time.Duration
}

// OK reports whether the load succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

func failed(ep Endpoint, start time.Time, err error) Result {
	return Result{Endpoint: ep, Err: err, Duration: time.Since(start)}
}

// HTTPLoader loads endpoints over HTTP.
type HTTPLoader struct {
	client *transport.Client
}

// NewHTTPLoader creates an HTTPLoader. A nil client gets an unauthenticated
// client with the default timeout.
func NewHTTPLoader(client *transport.Client) *HTTPLoader {
	if client == nil {
		client = transport.New(nil, "")
	}
	return &HTTPLoader{client: client}
}

// Load implements Loader.
func (l *HTTPLoader) Load(ctx context.Context, ep Endpoint) Result {
	start := time.Now()
	logger := logging.FromContext(ctx)

	resp, err := l.client.Get(ctx, ep.URL)
	if err != nil {
		return failed(ep, start, err)
	}

	body, err := transport.ReadBody(resp, string(ep.ID), logger)
	if err != nil {
		return failed(ep, start, err)
	}

	records, err := bids.DecodeBytes(body)
	if err != nil {
		return failed(ep, start, withFile(err, ep.URL))
	}

	return Result{Endpoint: ep, Records: records, Duration: time.Since(start)}
}

// FileLoader loads endpoints from the local filesystem. Files ending in
// .yaml or .yml are read as YAML, everything else as JSON.
type FileLoader struct {
	// Dir resolves relative paths. Empty means the working directory.
	Dir string
}

// Load implements Loader.
func (l *FileLoader) Load(ctx context.Context, ep Endpoint) Result {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return failed(ep, start, err)
	}

	path := filePath(ep.URL)
	if l.Dir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(l.Dir, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return failed(ep, start, errors.WrapIO("open", path, err))
	}
	defer f.Close() //nolint:errcheck // read-only

	var records []bids.Record
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		records, err = bids.DecodeYAML(f)
	default:
		records, err = bids.Decode(f)
	}
	if err != nil {
		return failed(ep, start, withFile(err, path))
	}

	return Result{Endpoint: ep, Records: records, Duration: time.Since(start)}
}

// schemeLoader dispatches on the endpoint URL scheme.
type schemeLoader struct {
	http *HTTPLoader
	file *FileLoader
}

// NewLoader returns a Loader that fetches http(s) endpoints with client
// and reads everything else from disk.
func NewLoader(client *transport.Client) Loader {
	return &schemeLoader{
		http: NewHTTPLoader(client),
		file: &FileLoader{},
	}
}

// Load implements Loader.
func (l *schemeLoader) Load(ctx context.Context, ep Endpoint) Result {
	if IsRemote(ep.URL) {
		return l.http.Load(ctx, ep)
	}
	return l.file.Load(ctx, ep)
}

// IsRemote reports whether raw is an http or https URL.
func IsRemote(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// filePath strips a file:// scheme.
func filePath(raw string) string {
	if strings.HasPrefix(raw, "file://") {
		if u, err := url.Parse(raw); err == nil {
			return u.Path
		}
		return strings.TrimPrefix(raw, "file://")
	}
	return raw
}

// withFile records where an undecodable document came from.
func withFile(err error, file string) error {
	var parseErr *errors.ParseError
	if errors.As(err, &parseErr) && parseErr.File == "" {
		parseErr.File = file
	}
	return err
}
