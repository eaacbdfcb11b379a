package app

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/agentstation/bidcompare"
	"github.com/agentstation/bidcompare/cmd/bidcompare/cmd/compare"
	"github.com/agentstation/bidcompare/pkg/logging"
	"github.com/agentstation/bidcompare/pkg/sources"
)

var fixtures = filepath.Join("..", "..", "..", "pkg", "sources", "testdata")

func fixtureOptions() []bidcompare.Option {
	return []bidcompare.Option{
		bidcompare.WithEndpointURL(sources.TruthID, filepath.Join(fixtures, "truth.json")),
		bidcompare.WithEndpointURL(sources.Source2ID, filepath.Join(fixtures, "source2.json")),
		bidcompare.WithEndpointURL(sources.Source3ID, filepath.Join(fixtures, "source3.yaml")),
		bidcompare.WithEndpointURL(sources.UsersByFDKeyID, filepath.Join(fixtures, "users_by_fd_key.json")),
		bidcompare.WithEndpointURL(sources.UsersByUUIDTextID, filepath.Join(fixtures, "users_by_uuid_text.json")),
	}
}

func testConfig() *Config {
	return &Config{
		Endpoints: map[sources.ID]string{},
		LogFormat: "json",
		LogOutput: "discard",
	}
}

// run executes the root command with output captured.
func run(t *testing.T, a *App, args ...string) (string, error) {
	t.Helper()
	root := a.createRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

// TestApp_New verifies app initialization.
func TestApp_New(t *testing.T) {
	isolate(t)

	app, err := New("1.0.0", "abc123", "2024-01-01", "test")
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	if app.Version() != "1.0.0" {
		t.Errorf("Version() = %s, want 1.0.0", app.Version())
	}
	if app.Commit() != "abc123" {
		t.Errorf("Commit() = %s, want abc123", app.Commit())
	}
	if app.Date() != "2024-01-01" {
		t.Errorf("Date() = %s, want 2024-01-01", app.Date())
	}
	if app.BuiltBy() != "test" {
		t.Errorf("BuiltBy() = %s, want test", app.BuiltBy())
	}
	if app.Logger() == nil {
		t.Error("Logger() returned nil")
	}
	if app.Config() == nil {
		t.Error("Config() returned nil")
	}
	if err := app.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() failed: %v", err)
	}
}

// TestApp_Client verifies configured endpoints reach the client.
func TestApp_Client(t *testing.T) {
	config := testConfig()
	config.Endpoints[sources.TruthID] = "from-config.json"
	config.Timeout = -1

	app, err := New("dev", "", "", "", WithConfig(config), WithLogger(logging.NewNopLogger()))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if _, err := app.Client(); err == nil {
		t.Fatal("Client() accepted a negative timeout")
	}

	config.Timeout = 0
	client, err := app.Client(bidcompare.WithEndpointURL(sources.Source2ID, "from-caller.json"))
	if err != nil {
		t.Fatalf("Client() failed: %v", err)
	}
	eps := client.Endpoints()
	if ep, _ := eps.Get(sources.TruthID); ep.URL != "from-config.json" {
		t.Errorf("truth URL = %s, want from-config.json", ep.URL)
	}
	if ep, _ := eps.Get(sources.Source2ID); ep.URL != "from-caller.json" {
		t.Errorf("source2 URL = %s, want from-caller.json", ep.URL)
	}
}

// TestApp_Version verifies the version command.
func TestApp_Version(t *testing.T) {
	app, err := New("1.2.3", "abc123", "2024-01-01", "test", WithConfig(testConfig()), WithLogger(logging.NewNopLogger()))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	out, err := run(t, app, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if strings.TrimSpace(out) != "bidcompare 1.2.3" {
		t.Errorf("version output = %q", out)
	}

	out, err = run(t, app, "version", "-v")
	if err != nil {
		t.Fatalf("version -v failed: %v", err)
	}
	if !strings.Contains(out, "abc123") || !strings.Contains(out, "go:") {
		t.Errorf("verbose version output = %q", out)
	}
}

// TestApp_Compare runs the compare command end to end against fixtures.
func TestApp_Compare(t *testing.T) {
	tl := logging.NewTestLogger(t)
	app, err := New("dev", "", "", "",
		WithConfig(testConfig()),
		WithLogger(tl.Logger),
		WithClientOptions(fixtureOptions()...),
	)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	out, err := run(t, app, "compare", "-o", "json", "--log-level", "error")
	if err != nil {
		t.Fatalf("compare failed: %v", err)
	}

	var res compare.Result
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(res.Differences) != 3 {
		t.Fatalf("differences = %d, want 3", len(res.Differences))
	}
	if res.Differences[1].Diff != "100 ⇒ 150" {
		t.Errorf("second difference = %+v", res.Differences[1])
	}

	// The injected logger survives --log-level
	if app.Logger() != tl.Logger {
		t.Error("injected logger was replaced")
	}
	if !tl.Contains("Comparison finished") {
		t.Error("summary line not logged to injected logger")
	}
}

// TestApp_ConfigFlag verifies --config replaces the loaded configuration.
func TestApp_ConfigFlag(t *testing.T) {
	dir := isolate(t)
	truth, err := filepath.Abs(filepath.Join(fixtures, "truth.json"))
	if err != nil {
		t.Fatal(err)
	}
	path := writeConfig(t, dir, map[string]any{
		"endpoints": map[string]string{"truth": truth},
	})

	app, err := New("dev", "", "", "", WithConfig(testConfig()), WithLogger(logging.NewNopLogger()))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	out, err := run(t, app, "endpoints", "--config", path, "-o", "json")
	if err != nil {
		t.Fatalf("endpoints failed: %v", err)
	}
	if !strings.Contains(out, truth) {
		t.Errorf("endpoints output missing %s:\n%s", truth, out)
	}
	if app.Config().ConfigFile != path {
		t.Errorf("ConfigFile = %s, want %s", app.Config().ConfigFile, path)
	}

	_, err = run(t, app, "endpoints", "--config", filepath.Join(dir, "missing.yaml"))
	if err == nil {
		t.Error("missing --config file was accepted")
	}
}
