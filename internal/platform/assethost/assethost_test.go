package assethost

import (
	"context"
	"encoding/json"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperwork/paperwork/internal/formpacks"
	"github.com/paperwork/paperwork/internal/platform/db"
	"github.com/paperwork/paperwork/internal/platform/docx"
	"github.com/paperwork/paperwork/internal/platform/middleware"
	"github.com/paperwork/paperwork/internal/platform/telemetry"
)

func newServer(t *testing.T) (*Server, *telemetry.Provider) {
	t.Helper()
	tp := telemetry.NewProvider(telemetry.Config{ServiceName: "assethost-test"}, prometheus.NewRegistry())
	return New(Config{
		FS:        formpacks.FS(),
		Cache:     middleware.DefaultCacheConfig(),
		Logger:    zerolog.Nop(),
		Telemetry: tp,
	}), tp
}

func get(t *testing.T, h http.Handler, target string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s, _ := newServer(t)
	rec := get(t, s.Handler(), "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
	assert.Empty(t, rec.Header().Get("ETag"))
}

func TestHealthDB(t *testing.T) {
	s, _ := newServer(t)
	assert.Equal(t, http.StatusNotFound, get(t, s.Handler(), "/health/db").Code, "no route without a database")

	withDB := New(Config{FS: formpacks.FS(), Cache: middleware.DefaultCacheConfig(), DB: db.OpenMemory(t)})
	rec := get(t, withDB.Handler(), "/health/db")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
	assert.Empty(t, rec.Header().Get("ETag"), "health is excluded from caching")
}

func TestServeAsset(t *testing.T) {
	s, _ := newServer(t)
	want, err := fs.ReadFile(formpacks.FS(), "notfallpass/docx/mapping.json")
	require.NoError(t, err)

	rec := get(t, s.Handler(), "/formpacks/notfallpass/docx/mapping.json")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, want, rec.Body.Bytes())
	assert.Equal(t, docx.ETagOf(want), rec.Header().Get("ETag"))
	assert.Equal(t, "public, max-age=300", rec.Header().Get("Cache-Control"))
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json"))

	rec = get(t, s.Handler(), "/formpacks/notfallpass/docx/mapping.json", "If-None-Match", docx.ETagOf(want))
	assert.Equal(t, http.StatusNotModified, rec.Code)
	assert.Empty(t, rec.Body.Bytes())
}

func TestServeAsset_ContentTypes(t *testing.T) {
	s, _ := newServer(t)
	tests := map[string]string{
		"/formpacks/notfallpass/manifest.yaml": "application/yaml; charset=utf-8",
		"/formpacks/notfallpass/docx/a4.docx":  "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	}
	for target, ct := range tests {
		rec := get(t, s.Handler(), target)
		require.Equal(t, http.StatusOK, rec.Code, target)
		assert.Equal(t, ct, rec.Header().Get("Content-Type"), target)
	}
}

func TestServeAsset_Errors(t *testing.T) {
	s, _ := newServer(t)
	tests := []struct {
		target string
		code   int
	}{
		{"/formpacks/notfallpass/docx/missing.json", http.StatusNotFound},
		{"/formpacks/notfallpass/docx", http.StatusNotFound},
		{"/formpacks/notfallpass//manifest.yaml", http.StatusBadRequest},
		{"/formpacks/notfallpass/docx/", http.StatusBadRequest},
	}
	for _, tt := range tests {
		rec := get(t, s.Handler(), tt.target)
		assert.Equal(t, tt.code, rec.Code, tt.target)
		assert.Empty(t, rec.Header().Get("ETag"), tt.target)
	}
}

func TestListFormpacks(t *testing.T) {
	s, _ := newServer(t)
	rec := get(t, s.Handler(), "/formpacks?limit=2")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []struct {
			ID        string   `json:"id"`
			Templates []string `json:"templates"`
		} `json:"data"`
		Total   int  `json:"total"`
		HasMore bool `json:"has_more"`
		Links   []struct {
			Relation string `json:"relation"`
			URL      string `json:"url"`
		} `json:"links"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, len(formpacks.IDs()), body.Total)
	require.Len(t, body.Data, 2)
	assert.Equal(t, formpacks.Notfallpass, body.Data[0].ID)
	assert.Equal(t, []string{"a4", "wallet"}, body.Data[0].Templates)
	assert.True(t, body.HasMore)
	require.Len(t, body.Links, 2)
	assert.Equal(t, "/formpacks?offset=2&limit=2", body.Links[1].URL)
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newServer(t)
	get(t, s.Handler(), "/formpacks/notfallpass/manifest.yaml")
	get(t, s.Handler(), "/formpacks/notfallpass/nope.json")

	rec := get(t, s.Handler(), "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	out := rec.Body.String()
	assert.Contains(t, out, `paperwork_http_requests_total{method="GET",route="/formpacks/*",status="200"} 1`)
	assert.Contains(t, out, `paperwork_http_requests_total{method="GET",route="/formpacks/*",status="404"} 1`)
}

func TestRateLimit(t *testing.T) {
	limits := middleware.DefaultRateLimitConfig()
	limits.RequestsPerSecond, limits.BurstSize = 1, 1
	s := New(Config{
		FS:        formpacks.FS(),
		Cache:     middleware.DefaultCacheConfig(),
		RateLimit: limits,
		Logger:    zerolog.Nop(),
	})

	assert.Equal(t, http.StatusOK, get(t, s.Handler(), "/formpacks/notfallpass/manifest.yaml").Code)
	rec := get(t, s.Handler(), "/formpacks/notfallpass/manifest.yaml")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, http.StatusOK, get(t, s.Handler(), "/health").Code, "health is never limited")
}

func TestHTTPFetcherAgainstHost(t *testing.T) {
	s, _ := newServer(t)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	f := docx.NewHTTPFetcher(srv.URL+AssetPrefix, docx.WithHTTPClient(srv.Client()))
	ctx := context.Background()

	first, err := f.Fetch(ctx, "doctor-letter/docx/mapping.json", "")
	require.NoError(t, err)
	require.NotEmpty(t, first.Body)
	require.NotEmpty(t, first.ETag)

	again, err := f.Fetch(ctx, "doctor-letter/docx/mapping.json", first.ETag)
	require.NoError(t, err)
	assert.True(t, again.NotModified)

	_, err = f.Fetch(ctx, "doctor-letter/docx/absent.json", "")
	assert.ErrorIs(t, err, docx.ErrFetchStatus)

	cache := docx.NewAssetCache(f)
	asset, err := cache.Get(ctx, "doctor-letter/docx/mapping.json")
	require.NoError(t, err)
	assert.Equal(t, first.Body, asset)
}
