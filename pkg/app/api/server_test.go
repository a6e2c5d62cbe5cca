package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chainsafe/bridge-submitter/pkg/auth"
	"github.com/chainsafe/bridge-submitter/pkg/config"
	"github.com/chainsafe/bridge-submitter/pkg/transfer"
	"github.com/chainsafe/bridge-submitter/pkg/transfer/service/mocks"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func newTestRouter(t *testing.T, cfg *config.Config, svc *mocks.Service, ping pingFunc) http.Handler {
	t.Helper()
	if ping == nil {
		ping = func(context.Context) error { return nil }
	}
	h, err := NewRouter(cfg, svc, ping, zap.NewNop())
	require.NoError(t, err)
	return h
}

func get(h http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_HealthAndReady(t *testing.T) {
	cfg := &config.Config{Monitoring: config.MonitoringConfig{Enabled: true}}
	ready := newTestRouter(t, cfg, mocks.NewService(t), nil)

	assert.Equal(t, http.StatusOK, get(ready, "/health", "").Code)
	assert.Equal(t, http.StatusOK, get(ready, "/ready", "").Code)
	assert.Equal(t, http.StatusOK, get(ready, "/metrics", "").Code)

	down := newTestRouter(t, cfg, mocks.NewService(t), func(context.Context) error { return errors.New("rpc down") })
	assert.Equal(t, http.StatusServiceUnavailable, get(down, "/ready", "").Code)
}

func TestRouter_MetricsDisabled(t *testing.T) {
	h := newTestRouter(t, &config.Config{}, mocks.NewService(t), nil)
	assert.Equal(t, http.StatusNotFound, get(h, "/metrics", "").Code)
}

func TestRouter_Auth(t *testing.T) {
	cfg := &config.Config{Auth: config.AuthConfig{Enabled: true, JWTSecret: "s3cret", JWTIssuer: "bridge"}}
	svc := mocks.NewService(t)
	svc.EXPECT().ListTransfers(mock.Anything).Return([]*transfer.Transfer{}, nil).Once()
	h := newTestRouter(t, cfg, svc, nil)

	assert.Equal(t, http.StatusUnauthorized, get(h, "/api/v1/transfers", "").Code)

	v, err := auth.NewJWTValidator("s3cret", "bridge")
	require.NoError(t, err)
	token, err := v.IssueToken("ops", time.Minute)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, get(h, "/api/v1/transfers", token).Code)
	assert.Equal(t, http.StatusOK, get(h, "/health", "").Code, "health is not authenticated")
}

func TestRouter_AuthWithoutSecret(t *testing.T) {
	_, err := NewRouter(&config.Config{Auth: config.AuthConfig{Enabled: true}}, mocks.NewService(t), pingFunc(nil), zap.NewNop())
	assert.Error(t, err)
}
