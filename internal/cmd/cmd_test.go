package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnines/factsheet-tools/pkg/auth"
	"github.com/saturnines/factsheet-tools/pkg/errors"
	"github.com/saturnines/factsheet-tools/pkg/transport/graphql"
)

// workspace is a fake LeanIX workspace: a token endpoint and a GraphQL
// endpoint answering by operation name.
type workspace struct {
	mu       sync.Mutex
	ops      []string
	archived []string
	created  int
}

func (ws *workspace) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(auth.TokenPath, func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "apitoken" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"bearer","expires_in":3600}`))
	})
	mux.HandleFunc(graphql.EndpointPath, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var req struct {
			OperationName string         `json:"operationName"`
			Variables     map[string]any `json:"variables"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}

		ws.mu.Lock()
		ws.ops = append(ws.ops, req.OperationName)
		var data string
		switch req.OperationName {
		case "ListFactSheetIDs":
			data = `{"op":{"pageInfo":{"hasNextPage":false,"endCursor":""},"edges":[{"node":{"id":"a"}},{"node":{"id":"b"}}]}}`
		case "ArchiveFactSheet":
			ws.archived = append(ws.archived, req.Variables["id"].(string))
			data = `{"op":{"factSheet":{"id":"x"}}}`
		case "ListTags":
			data = `{"op":{"asList":[{"id":"t1","name":"Alice","color":"#111111","tagGroup":{"id":"g1","name":"UX-Advocate"}}]}}`
		case "CreateFactSheet":
			ws.created++
			data = fmt.Sprintf(`{"op":{"factSheet":{"id":"new-%d"}}}`, ws.created)
		case "FactSheetFacets":
			data = `{"op":{"filterOptions":{"facets":[{"facetKey":"UX-Advocate","keys":[{"key":"t1","name":"Alice"}]}]}}}`
		case "TaggedFactSheets":
			data = `{"op":{"pageInfo":{"hasNextPage":false,"endCursor":""},"edges":[
			  {"node":{"type":"Application","tags":[{"id":"t1","name":"Alice","color":"#111111","tagGroup":{"name":"UX-Advocate"}}]}}]}}`
		default:
			t.Errorf("unexpected operation %q", req.OperationName)
		}
		ws.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"data":%s}`, data)
	})
	return mux
}

func setup(t *testing.T) (*workspace, string) {
	t.Helper()
	t.Setenv("LX_HOST", "")
	t.Setenv("LX_APITOKEN", "")

	ws := &workspace{}
	srv := httptest.NewServer(ws.handler(t))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	lxr := filepath.Join(dir, "lxr.json")
	content := fmt.Sprintf(`{"host":%q,"apitoken":"secret"}`, srv.URL)
	require.NoError(t, os.WriteFile(lxr, []byte(content), 0o600))
	return ws, lxr
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := Root()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCheck(t *testing.T) {
	_, lxr := setup(t)

	out, err := run(t, "check", "--lxr", lxr)
	require.NoError(t, err)
	assert.Contains(t, out, "Authenticated against http://")
}

func TestCheck_MissingCredentials(t *testing.T) {
	setup(t)

	_, err := run(t, "check", "--lxr", filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConfiguration))
}

func TestArchiveAll(t *testing.T) {
	ws, lxr := setup(t)

	out, err := run(t, "archive-all", "--lxr", lxr)
	require.NoError(t, err)
	assert.Contains(t, out, "There are 2 factsheets in the workspace")
	assert.Contains(t, out, "2 factsheets have been archived")
	assert.Equal(t, []string{"a", "b"}, ws.archived)
}

func TestSeed(t *testing.T) {
	ws, lxr := setup(t)

	out, err := run(t, "seed", "--lxr", lxr, "--count", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "3 factsheets have been created")
	assert.Equal(t, 3, ws.created)
}

func TestTags(t *testing.T) {
	_, lxr := setup(t)

	out, err := run(t, "tags", "--lxr", lxr)
	require.NoError(t, err)
	assert.Equal(t, "t1\tUX-Advocate::Alice\t#111111\n", out)
}

func TestReport(t *testing.T) {
	_, lxr := setup(t)

	out, err := run(t, "report", "--lxr", lxr, "--format", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"root","children":[{"name":"Application","children":[
	  {"name":"UX-Advocate","children":[{"name":"Alice","size":1,"color":"#111111"}]}]}]}`, out)

	out, err = run(t, "report", "--lxr", lxr, "--format", "paths")
	require.NoError(t, err)
	assert.Equal(t, "Application::UX-Advocate::Alice\t1\n", out)
}

func TestReport_WithConfig(t *testing.T) {
	_, lxr := setup(t)

	data, err := os.ReadFile(lxr)
	require.NoError(t, err)
	var creds map[string]string
	require.NoError(t, json.Unmarshal(data, &creds))

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	cfg := fmt.Sprintf(`workspace:
  host: %s
  apitoken: secret
report:
  fact_sheet_types: [Application]
  tag_groups:
    UX-Advocate:
      aggregated: true
`, creds["host"])
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o600))

	out, err := run(t, "report", "--config", cfgPath, "--format", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"root","children":[{"name":"Application","children":[
	  {"name":"UX-Advocate","size":1}]}]}`, out)
}

func TestReport_UnknownFormat(t *testing.T) {
	_, err := run(t, "report", "--format", "xml")
	assert.Error(t, err)
}

func TestPlural(t *testing.T) {
	assert.Equal(t, "1 factsheet", plural(1, "factsheet"))
	assert.Equal(t, "0 factsheets", plural(0, "factsheet"))
}
