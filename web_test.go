package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeHealthCheck(t *testing.T) {
	cfg := testConfig()
	errs := make(chan error, 1)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/healthz", nil)

	serveHealthCheck(cfg, errs)(w, r, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ok\n", w.Body.String())
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestServeVersion(t *testing.T) {
	cfg := testConfig()
	errs := make(chan error, 1)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/version", nil)

	serveVersion(cfg, errs)(w, r, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "wordwave v"+releaseVersion+"\n", w.Body.String())
}

func TestQrHandler(t *testing.T) {
	cfg := testConfig()
	rm, _ := testManager(cfg)

	code := createRoom(t, rm, newTestClient("host"), "Host")

	t.Run("live room", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/room/"+code+"/qr", nil)

		qrHandler(cfg, rm)(w, r, httprouter.Params{{Key: "code", Value: code}})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
		assert.NotEmpty(t, w.Body.Bytes())
	})

	t.Run("lowercased code", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/room/xxxx/qr", nil)

		qrHandler(cfg, rm)(w, r, httprouter.Params{{Key: "code", Value: strings.ToLower(code)}})

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unknown room", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/room/ZZZZ/qr", nil)

		qrHandler(cfg, rm)(w, r, httprouter.Params{{Key: "code", Value: "ZZZZ"}})

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestRegisterWordwaveRoutes(t *testing.T) {
	cfg := testConfig()
	mux := httprouter.New()

	rm := registerWordwave(cfg, mux)
	require.NotNil(t, rm)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	mux.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "wordwave")
}
