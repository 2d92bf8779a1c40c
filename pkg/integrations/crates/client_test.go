package crates

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	fperrors "github.com/matzehuels/featprune/pkg/errors"
	"github.com/matzehuels/featprune/pkg/httputil"
	"github.com/matzehuels/featprune/pkg/integrations"
)

func registry(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		if !strings.HasPrefix(r.Header.Get("User-Agent"), "cargo-featprune/") {
			t.Errorf("missing User-Agent, got %q", r.Header.Get("User-Agent"))
		}
		switch r.URL.Path {
		case "/crates/tokio":
			w.Write([]byte(`{"crate":{"name":"tokio","max_version":"1.40.0"}}`))
		case "/crates/tokio/1.40.0":
			w.Write([]byte(`{"version":{"crate":"tokio","num":"1.40.0","features":{
				"default":[],"full":["macros","rt","dep:bytes"],"macros":["dep:tokio-macros"],"rt":[]}}}`))
		case "/crates/tokio/1.40.0/dependencies":
			json.NewEncoder(w).Encode(map[string]any{"dependencies": []map[string]any{
				{"crate_id": "tokio-macros", "kind": "normal", "optional": true},
				{"crate_id": "bytes", "kind": "normal", "optional": true},
				{"crate_id": "mio", "kind": "normal", "optional": true},
				{"crate_id": "pin-project-lite", "kind": "normal", "optional": false},
			}})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func testClient(t *testing.T, serverURL string, cache *httputil.Cache) *Client {
	t.Helper()
	c := NewClient(cache, "test").WithBaseURL(serverURL)
	c.SetBackoff(httputil.Backoff{Attempts: 1})
	return c
}

func TestNewClient(t *testing.T) {
	c := NewClient(nil, "1.2.3")
	if c.Client == nil {
		t.Error("expected client to be initialized")
	}
	if c.baseURL != DefaultBaseURL {
		t.Errorf("baseURL = %s", c.baseURL)
	}
}

func TestClient_FetchVersion(t *testing.T) {
	server := registry(t, nil)
	defer server.Close()

	info, err := testClient(t, server.URL, nil).FetchVersion(context.Background(), "tokio", "1.40.0", true)
	if err != nil {
		t.Fatalf("FetchVersion failed: %v", err)
	}
	if info.Name != "tokio" || info.Version != "1.40.0" {
		t.Errorf("unexpected identity %s %s", info.Name, info.Version)
	}

	want := map[string][]string{
		"default": {},
		"full":    {"macros", "rt", "dep:bytes"},
		"macros":  {"dep:tokio-macros"},
		"rt":      {},
		"mio":     {"dep:mio"},
	}
	if !reflect.DeepEqual(info.Features, want) {
		t.Errorf("Features = %v, want %v", info.Features, want)
	}
	if len(info.Dependencies) != 4 || info.Dependencies[0].Name != "bytes" {
		t.Errorf("Dependencies = %+v", info.Dependencies)
	}
}

func TestClient_FetchVersionCached(t *testing.T) {
	var hits atomic.Int32
	server := registry(t, &hits)
	defer server.Close()

	cache, err := httputil.NewCache(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	c := testClient(t, server.URL, cache)

	for i := 0; i < 3; i++ {
		if _, err := c.FetchVersion(context.Background(), "tokio", "1.40.0", false); err != nil {
			t.Fatal(err)
		}
	}
	if got := hits.Load(); got != 2 {
		t.Errorf("server hits = %d, want 2 (version + dependencies once)", got)
	}
}

func TestClient_LatestVersion(t *testing.T) {
	server := registry(t, nil)
	defer server.Close()

	v, err := testClient(t, server.URL, nil).LatestVersion(context.Background(), "tokio", false)
	if err != nil {
		t.Fatal(err)
	}
	if v != "1.40.0" {
		t.Errorf("LatestVersion = %s", v)
	}
}

func TestClient_FetchVersion_NotFound(t *testing.T) {
	server := registry(t, nil)
	defer server.Close()

	_, err := testClient(t, server.URL, nil).FetchVersion(context.Background(), "nonexistent", "0.1.0", true)
	if !errors.Is(err, integrations.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestClient_InvalidCrateName(t *testing.T) {
	var hits atomic.Int32
	server := registry(t, &hits)
	defer server.Close()
	c := testClient(t, server.URL, nil)

	for _, name := range []string{"", "../admin", "serde json", "1abc"} {
		if _, err := c.FetchVersion(context.Background(), name, "1.0.0", true); !fperrors.Is(err, fperrors.ErrCodeInvalidInput) {
			t.Errorf("FetchVersion(%q): expected INVALID_INPUT, got %v", name, err)
		}
		if _, err := c.LatestVersion(context.Background(), name, true); !fperrors.Is(err, fperrors.ErrCodeInvalidInput) {
			t.Errorf("LatestVersion(%q): expected INVALID_INPUT, got %v", name, err)
		}
	}
	if n := hits.Load(); n != 0 {
		t.Errorf("invalid names reached the registry %d times", n)
	}
}
