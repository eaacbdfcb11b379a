package endpoints_test

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/bidcompare"
	"github.com/agentstation/bidcompare/cmd/application"
	"github.com/agentstation/bidcompare/cmd/bidcompare/cmd/endpoints"
	"github.com/agentstation/bidcompare/pkg/sources"
)

var fixtures = filepath.Join("..", "..", "..", "..", "pkg", "sources", "testdata")

func run(t *testing.T, app application.Application, args ...string) (string, error) {
	t.Helper()
	cmd := endpoints.NewCommand(app)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestListDefaults(t *testing.T) {
	app := &application.Mock{OutputFormatFunc: func() string { return "table" }}

	out, err := run(t, app)
	require.NoError(t, err)
	for _, id := range sources.IDs() {
		assert.Contains(t, out, string(id))
	}
	assert.Contains(t, out, "http")
}

func TestListJSON(t *testing.T) {
	app := &application.Mock{
		OutputFormatFunc: func() string { return "json" },
		ClientFunc: func(opts ...bidcompare.Option) (bidcompare.Client, error) {
			return bidcompare.New(append(opts, bidcompare.WithEndpointURL(sources.TruthID, "truth.json"))...)
		},
	}

	out, err := run(t, app)
	require.NoError(t, err)

	var eps sources.Endpoints
	require.NoError(t, json.Unmarshal([]byte(out), &eps))
	require.Len(t, eps, len(sources.IDs()))
	ep, ok := eps.Get(sources.TruthID)
	require.True(t, ok)
	assert.Equal(t, "truth.json", ep.URL)
}

func TestCheck(t *testing.T) {
	app := &application.Mock{
		OutputFormatFunc: func() string { return "json" },
		ClientFunc: func(opts ...bidcompare.Option) (bidcompare.Client, error) {
			return bidcompare.New(append(opts,
				bidcompare.WithEndpointURL(sources.TruthID, filepath.Join(fixtures, "truth.json")),
				bidcompare.WithEndpointURL(sources.Source2ID, filepath.Join(fixtures, "source2.json")),
				bidcompare.WithEndpointURL(sources.Source3ID, filepath.Join(fixtures, "truncated.json")),
				bidcompare.WithEndpointURL(sources.UsersByFDKeyID, filepath.Join(fixtures, "users_by_fd_key.json")),
				bidcompare.WithEndpointURL(sources.UsersByUUIDTextID, filepath.Join(fixtures, "users_by_uuid_text.json")),
			)...)
		},
	}

	out, err := run(t, app, "--check")
	require.NoError(t, err)

	var checks []endpoints.Check
	require.NoError(t, json.Unmarshal([]byte(out), &checks))
	require.Len(t, checks, 5)

	byID := map[sources.ID]endpoints.Check{}
	for _, c := range checks {
		byID[c.ID] = c
	}
	assert.Equal(t, 3, byID[sources.TruthID].Records)
	assert.Empty(t, byID[sources.TruthID].Error)
	assert.Zero(t, byID[sources.Source3ID].Records)
	assert.NotEmpty(t, byID[sources.Source3ID].Error)
}

func TestCheckTable(t *testing.T) {
	app := &application.Mock{
		OutputFormatFunc: func() string { return "table" },
		ClientFunc: func(opts ...bidcompare.Option) (bidcompare.Client, error) {
			return bidcompare.New(append(opts,
				bidcompare.WithEndpointURL(sources.TruthID, filepath.Join(fixtures, "truth.json")),
				bidcompare.WithEndpointURL(sources.Source2ID, filepath.Join(fixtures, "missing.json")),
				bidcompare.WithEndpointURL(sources.Source3ID, filepath.Join(fixtures, "source3.yaml")),
				bidcompare.WithEndpointURL(sources.UsersByFDKeyID, filepath.Join(fixtures, "users_by_fd_key.json")),
				bidcompare.WithEndpointURL(sources.UsersByUUIDTextID, filepath.Join(fixtures, "users_by_uuid_text.json")),
			)...)
		},
	}

	out, err := run(t, app, "--check")
	require.NoError(t, err)

	upper := strings.ToUpper(out)
	for _, header := range []string{"ENDPOINT", "URL", "RECORDS", "DURATION", "ERROR"} {
		assert.Contains(t, upper, header)
	}
	assert.Contains(t, out, "missing.json")
	assert.Contains(t, out, "users_by_uuid_text")
}
