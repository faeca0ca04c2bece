package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orchidautomation/playbook-cli/internal/model"
	"github.com/orchidautomation/playbook-cli/internal/pipeline"
	"github.com/orchidautomation/playbook-cli/internal/store"
)

func newTestServer(t *testing.T) (*server, store.Store) {
	t.Helper()

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { st.Close() })

	noPipe := func() (*pipeline.Pipeline, error) {
		return nil, eris.New("pipeline unavailable in test")
	}
	return newServer(st, noPipe), st
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCreatePlaybookRejectsBadInput(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{`},
		{"missing vendor", `{"prospect_domain":"prospect.com"}`},
		{"missing prospect", `{"vendor_domain":"vendor.com"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/playbooks", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			srv.routes().ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestCreatePlaybookPipelineUnavailable(t *testing.T) {
	srv, _ := newTestServer(t)

	body := `{"vendor_domain":"vendor.com","prospect_domain":"prospect.com"}`
	req := httptest.NewRequest(http.MethodPost, "/playbooks", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGetRunEndpoint(t *testing.T) {
	srv, st := newTestServer(t)

	input, err := model.NewRunInput("vendor.com", "prospect.com")
	require.NoError(t, err)
	run, err := st.CreateRun(context.Background(), input)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/runs/"+run.ID, nil)
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got model.Run
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, "https://vendor.com", got.Input.VendorDomain)
	assert.Equal(t, model.RunStatusQueued, got.Status)
}

func TestGetRunNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/runs/nonexistent", nil)
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListRunsEndpoint(t *testing.T) {
	srv, st := newTestServer(t)

	for _, pair := range [][2]string{
		{"vendor.com", "acme.com"},
		{"vendor.com", "globex.com"},
	} {
		input, err := model.NewRunInput(pair[0], pair[1])
		require.NoError(t, err)
		_, err = st.CreateRun(context.Background(), input)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(http.MethodGet, "/runs?domain=acme.com", nil)
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Runs  []model.Run `json:"runs"`
		Count int         `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "https://acme.com", resp.Runs[0].Input.ProspectDomain)
}

func TestListRunsRejectsBadLimit(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/runs?limit=abc", nil)
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
