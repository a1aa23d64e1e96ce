package cmd

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rorical/RoriKB/internal/api"
	"github.com/Rorical/RoriKB/internal/config"
	"github.com/Rorical/RoriKB/internal/core"
)

func newAskServer(t *testing.T, status int, body string) api.Backend {
	t.Helper()
	router := mux.NewRouter()
	router.HandleFunc(api.AskPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}).Methods(http.MethodPost)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	c, err := api.NewClient(srv.URL)
	require.NoError(t, err)
	return c
}

func TestRunAskRaw(t *testing.T) {
	backend := newAskServer(t, http.StatusOK, "# Title\n\nbody")
	var out bytes.Buffer

	err := runAsk(context.Background(), backend, config.DefaultProfileSettings(), "q", formatRaw, &out)
	require.NoError(t, err)
	assert.Equal(t, "# Title\n\nbody\n", out.String())
}

func TestRunAskHTML(t *testing.T) {
	backend := newAskServer(t, http.StatusOK, "# Title\n\n```go\nfunc main() {}\n```\n")
	var out bytes.Buffer

	err := runAsk(context.Background(), backend, config.DefaultProfileSettings(), "q", formatHTML, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "<h1>Title</h1>")
	assert.Contains(t, out.String(), "style=")
}

func TestRunAskTerminalNotTTY(t *testing.T) {
	backend := newAskServer(t, http.StatusOK, "plain **answer**")
	var out bytes.Buffer

	profile := config.DefaultProfileSettings()
	profile.Style = "plain"
	err := runAsk(context.Background(), backend, profile, "q", formatTerminal, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "answer")
	assert.NotContains(t, out.String(), "**answer**")
}

func TestRunAskFailureShowsFallback(t *testing.T) {
	backend := newAskServer(t, http.StatusInternalServerError, `{"detail":"boom"}`)
	var out bytes.Buffer

	err := runAsk(context.Background(), backend, config.DefaultProfileSettings(), "q", formatHTML, &out)
	require.Error(t, err)
	assert.True(t, api.IsRejection(err))
	assert.Contains(t, out.String(), core.FallbackAnswer)
	assert.NotContains(t, out.String(), "boom")
}

func TestRunAskUnknownFormat(t *testing.T) {
	err := runAsk(context.Background(), nil, config.DefaultProfileSettings(), "q", "pdf", &bytes.Buffer{})
	assert.ErrorContains(t, err, "unknown format")
}

func TestWrapWidth(t *testing.T) {
	assert.Equal(t, 80, wrapWidth(80, 0), "no terminal keeps the profile")
	assert.Equal(t, 60, wrapWidth(80, 60), "a narrower terminal wins")
	assert.Equal(t, 80, wrapWidth(80, 200))
	assert.Equal(t, 120, wrapWidth(0, 120))
}

func TestTerminalWidthOfNonFile(t *testing.T) {
	assert.Zero(t, terminalWidth(&bytes.Buffer{}))
}

func TestActionFailed(t *testing.T) {
	assert.EqualError(t,
		actionFailed("upload", "Upload failed", &api.Error{StatusCode: 400, Detail: "bad header"}),
		"Upload failed: bad header")
	assert.EqualError(t,
		actionFailed("delete", "Delete failed", &api.Error{StatusCode: 500}),
		"Delete failed: unknown error")
	assert.EqualError(t,
		actionFailed("reload", "Reload failed", api.ErrUnsupported),
		"Reload failed: this profile has no knowledge base")

	err := actionFailed("upload", "Upload failed", errors.New("dial tcp: refused"))
	assert.Contains(t, err.Error(), "please check the server connection")

	err = actionFailed("reload", "Reload failed", &api.Error{StatusCode: 502, Unparsed: true, Body: "<html>"})
	assert.Contains(t, err.Error(), "please check the server connection")
}

func TestRemoveProfile(t *testing.T) {
	cfg := config.NewDefault()
	cfg.Profiles["work"] = config.DefaultProfileSettings()
	cfg.ActiveProfile = "work"

	removeProfile(cfg, "work")
	assert.Equal(t, config.DefaultProfile, cfg.ActiveProfile)
	assert.NotContains(t, cfg.Profiles, "work")

	removeProfile(cfg, config.DefaultProfile)
	assert.Contains(t, cfg.Profiles, config.DefaultProfile, "the last profile is recreated")
	assert.Equal(t, config.DefaultProfile, cfg.ActiveProfile)
}

func TestValidators(t *testing.T) {
	assert.NoError(t, validURL(true)("http://localhost:8000"))
	assert.Error(t, validURL(true)(""))
	assert.NoError(t, validURL(false)(""))
	assert.Error(t, validURL(false)("localhost:8000"))

	assert.NoError(t, positiveInt("30"))
	assert.Error(t, positiveInt("0"))
	assert.Error(t, notEmpty(""))
}
