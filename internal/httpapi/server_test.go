package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/opendisaster/simflow/pkg/pipeline"
)

// stubRunner returns a canned context or error instead of running agents.
type stubRunner struct {
	result pipeline.Context
	err    error
	prompt string
}

func (r *stubRunner) Run(_ context.Context, prompt string) (pipeline.Context, error) {
	r.prompt = prompt
	if r.err != nil {
		return nil, r.err
	}
	return r.result, nil
}

func newTestServer(runner Runner) *Server {
	return New(runner, Options{
		Addr:           ":0",
		AllowedOrigins: []string{"http://localhost:5173"},
	})
}

func postSimulate(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/simulate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSimulate(t *testing.T) {
	t.Parallel()

	t.Run("FullResult", func(t *testing.T) {
		t.Parallel()
		runner := &stubRunner{result: pipeline.Context{
			"prompt":        "A wildfire hitting Los Angeles after the drought",
			"disaster_type": "wildfire",
			"location": map[string]any{
				"name": "Los Angeles, CA",
				"lat":  34.05,
				"lng":  -118.24,
			},
		}}
		rec := postSimulate(t, newTestServer(runner).Handler(),
			`{"prompt": "A wildfire hitting Los Angeles after the drought"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "A wildfire hitting Los Angeles after the drought", runner.prompt)

		var resp simulateResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "wildfire", resp.DisasterType)
		require.NotNil(t, resp.Location)
		require.Equal(t, "Los Angeles, CA", resp.Location.Name)
		require.InDelta(t, 34.05, resp.Location.Lat, 1e-9)
		require.InDelta(t, -118.24, resp.Location.Lng, 1e-9)
	})

	t.Run("DefaultsApplied", func(t *testing.T) {
		t.Parallel()
		// The pipeline returned no disaster_type and a nil location; the API
		// layer owns the defaults.
		runner := &stubRunner{result: pipeline.Context{
			"prompt":   "a quiet afternoon",
			"location": nil,
		}}
		rec := postSimulate(t, newTestServer(runner).Handler(), `{"prompt": "a quiet afternoon"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		require.JSONEq(t, `{"disaster_type": "unknown", "location": null}`, rec.Body.String())
	})

	t.Run("MissingPrompt", func(t *testing.T) {
		t.Parallel()
		rec := postSimulate(t, newTestServer(&stubRunner{}).Handler(), `{}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("BlankPrompt", func(t *testing.T) {
		t.Parallel()
		rec := postSimulate(t, newTestServer(&stubRunner{}).Handler(), `{"prompt": "   "}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("InvalidBody", func(t *testing.T) {
		t.Parallel()
		rec := postSimulate(t, newTestServer(&stubRunner{}).Handler(), `not json`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("DependencyFailureIsBadGateway", func(t *testing.T) {
		t.Parallel()
		runner := &stubRunner{err: &pipeline.AgentError{
			Agent: "location",
			Err:   errors.Wrap(pipeline.ErrExternalDependency, "geocode: status 503"),
		}}
		rec := postSimulate(t, newTestServer(runner).Handler(), `{"prompt": "flood in Paris."}`)
		require.Equal(t, http.StatusBadGateway, rec.Code)
	})

	t.Run("OtherFailureIsInternal", func(t *testing.T) {
		t.Parallel()
		runner := &stubRunner{err: errors.New("boom")}
		rec := postSimulate(t, newTestServer(runner).Handler(), `{"prompt": "flood in Paris."}`)
		require.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestCORS(t *testing.T) {
	t.Parallel()

	t.Run("AllowedOrigin", func(t *testing.T) {
		t.Parallel()
		h := newTestServer(&stubRunner{result: pipeline.Context{"prompt": "p"}}).Handler()
		req := httptest.NewRequest(http.MethodOptions, "/api/simulate", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
		require.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
	})

	t.Run("UnlistedOrigin", func(t *testing.T) {
		t.Parallel()
		h := newTestServer(&stubRunner{result: pipeline.Context{"prompt": "p"}}).Handler()
		req := httptest.NewRequest(http.MethodOptions, "/api/simulate", nil)
		req.Header.Set("Origin", "http://evil.example")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("Wildcard", func(t *testing.T) {
		t.Parallel()
		srv := New(&stubRunner{result: pipeline.Context{"prompt": "p"}}, Options{
			Addr:           ":0",
			AllowedOrigins: []string{"*"},
		})
		req := httptest.NewRequest(http.MethodOptions, "/api/simulate", nil)
		req.Header.Set("Origin", "http://anywhere.example")
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		require.Equal(t, "http://anywhere.example", rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestHealthz(t *testing.T) {
	t.Parallel()
	h := newTestServer(&stubRunner{}).Handler()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}

func TestShapeResponse(t *testing.T) {
	t.Parallel()

	t.Run("NonMapLocationIgnored", func(t *testing.T) {
		t.Parallel()
		resp := shapeResponse(pipeline.Context{"location": "not a map"})
		require.Nil(t, resp.Location)
		require.Equal(t, "unknown", resp.DisasterType)
	})

	t.Run("IncompleteLocationIgnored", func(t *testing.T) {
		t.Parallel()
		resp := shapeResponse(pipeline.Context{"location": map[string]any{"name": "x"}})
		require.Nil(t, resp.Location)
	})
}
