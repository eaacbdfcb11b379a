// Package sources loads the five documents a reconciliation needs: the
// three bid systems and the two correlation tables. Each endpoint resolves
// to an HTTP URL or a local file, and loading never aborts a run; a failed
// endpoint yields an empty record set plus the error that caused it.
//
// Example usage:
//
//	loader := sources.NewLoader(transport.New(nil, ""))
//	results, err := sources.LoadAll(ctx, loader, sources.DefaultEndpoints())
//	if err != nil {
//	    return err // canceled
//	}
//	truth := results.Records(sources.TruthID)
package sources

import (
	"slices"

	"github.com/agentstation/bidcompare/pkg/errors"
)

// ID represents the identifier of an endpoint.
type ID string

// String returns the string representation of an endpoint ID.
func (id ID) String() string {
	return string(id)
}

// Endpoint IDs.
const (
	TruthID           ID = "truth"
	Source2ID         ID = "source2"
	Source3ID         ID = "source3"
	UsersByFDKeyID    ID = "users_by_fd_key"
	UsersByUUIDTextID ID = "users_by_uuid_text"
)

// IDs returns every endpoint ID in load order.
func IDs() []ID {
	return []ID{
		TruthID,
		Source2ID,
		Source3ID,
		UsersByFDKeyID,
		UsersByUUIDTextID,
	}
}

// IsValid returns true if the ID is one of the defined constants.
func (id ID) IsValid() bool {
	return slices.Contains(IDs(), id)
}

// Description returns a short human label for the endpoint.
func (id ID) Description() string {
	switch id {
	case TruthID:
		return "truth bids"
	case Source2ID:
		return "source 2 bids"
	case Source3ID:
		return "source 3 bids"
	case UsersByFDKeyID:
		return "users by fd key (source 2 correlation)"
	case UsersByUUIDTextID:
		return "users by uuid text (source 3 correlation)"
	}
	return string(id)
}

// Endpoint is where one document is loaded from. URL is an http(s) URL, a
// file:// URL or a plain filesystem path.
type Endpoint struct {
	ID  ID     `json:"id" yaml:"id"`
	URL string `json:"url" yaml:"url"`
}

// Endpoints is an ordered endpoint list.
type Endpoints []Endpoint

// Get returns the endpoint with id.
func (e Endpoints) Get(id ID) (Endpoint, bool) {
	for _, ep := range e {
		if ep.ID == id {
			return ep, true
		}
	}
	return Endpoint{}, false
}

// With returns a copy of e with the URLs in overrides replaced. Empty
// override values are ignored.
func (e Endpoints) With(overrides map[ID]string) (Endpoints, error) {
	out := slices.Clone(e)
	for id, url := range overrides {
		if !id.IsValid() {
			return nil, errors.NewValidationError("endpoints", id, "unknown endpoint "+string(id))
		}
		if url == "" {
			continue
		}
		i := slices.IndexFunc(out, func(ep Endpoint) bool { return ep.ID == id })
		if i < 0 {
			out = append(out, Endpoint{ID: id, URL: url})
			continue
		}
		out[i].URL = url
	}
	return out, nil
}

// DefaultEndpoints returns the published snapshot of every endpoint.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		{ID: TruthID, URL: "https://gist.githubusercontent.com/7twelve/39fa68b87d3ea87a1ac5b6c0567882ff/raw/8dec5cbbfed67d146f4848868329e51722776941/json_1.json"},
		{ID: Source2ID, URL: "https://gist.githubusercontent.com/7twelve/e53d2febad36bc77c9bab399961ac1d5/raw/0a308097bf089bf7572de6bf90d74c183148d54f/json_2.json"},
		{ID: Source3ID, URL: "https://gist.githubusercontent.com/7twelve/e6f8f9b6795308dd13fcfca1e90cd8ab/raw/10753951e7a897a26b72ebf757e9fdacecea978f/json_3.json"},
		{ID: UsersByFDKeyID, URL: "https://gist.githubusercontent.com/7twelve/0db2de9ebde4bfbcdd0894797faf3748/raw/843d5a7f49702e765a5c3e0f74aba4811d808201/users_by_fd_key.json"},
		{ID: UsersByUUIDTextID, URL: "https://gist.githubusercontent.com/7twelve/79c5f96c59e5786fc31a4aac78b5575f/raw/23b1faeaedd892a3ff2e29b9e6c5b8d1ccfee239/users_by_uuid_text.json"},
	}
}
