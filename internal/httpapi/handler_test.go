package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"roam/internal/jwttoken"
	"roam/internal/monitor"
	"roam/internal/permission"
	"roam/internal/platform/logger"
	"roam/internal/secrets"
	"roam/internal/store"
)

type fakeService struct {
	snapshot  monitor.Snapshot
	setCalls  []bool
	syncCalls int
	setErr    error
	syncErr   error
}

func (f *fakeService) SetEnabled(ctx context.Context, enabled bool) error {
	f.setCalls = append(f.setCalls, enabled)
	if f.setErr != nil {
		return f.setErr
	}
	f.snapshot.Enabled = enabled
	return nil
}

func (f *fakeService) Sync(ctx context.Context) error {
	f.syncCalls++
	return f.syncErr
}

func (f *fakeService) Snapshot() monitor.Snapshot {
	return f.snapshot
}

type fakeHistorian struct {
	changes []store.RegionChange
	err     error
}

func (f *fakeHistorian) History(ctx context.Context, limit int) ([]store.RegionChange, error) {
	return f.changes, f.err
}

type fakeHealthChecker struct {
	err error
}

func (f *fakeHealthChecker) Health(ctx context.Context) error {
	return f.err
}

const testPairingSecret = "test-pairing-secret"

type APISuite struct {
	suite.Suite

	service   *fakeService
	historian *fakeHistorian
	health    *fakeHealthChecker
	tokens    *jwttoken.Service
	server    *httptest.Server
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}

func (s *APISuite) SetupTest() {
	s.service = &fakeService{
		snapshot: monitor.Snapshot{
			State:                     monitor.StateDisabled,
			LocationAuthorization:     permission.LocationNotDetermined,
			NotificationAuthorization: permission.NotificationNotDetermined,
		},
	}
	s.historian = &fakeHistorian{}
	s.health = &fakeHealthChecker{}
	s.tokens = jwttoken.NewService("test-signing-key", "roam-test")

	hash, err := secrets.Hash(testPairingSecret)
	s.Require().NoError(err)

	handler := New(
		s.service,
		s.tokens,
		s.tokens,
		hash,
		logger.New(logger.ParseLevel("error")),
		WithHistory(s.historian),
		WithHealthChecker(s.health),
	)

	r := chi.NewRouter()
	handler.Register(r)
	s.server = httptest.NewServer(r)
	s.T().Cleanup(s.server.Close)
}

func (s *APISuite) request(method, path, token string, body any) *http.Response {
	s.T().Helper()

	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, s.server.URL+path, &buf)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	s.T().Cleanup(func() { resp.Body.Close() })
	return resp
}

func (s *APISuite) uiToken() string {
	token, err := s.tokens.GenerateToken("user-1", "", "ui", time.Hour)
	s.Require().NoError(err)
	return token
}

// ============================================================
// Enrollment
// ============================================================

func (s *APISuite) TestEnroll() {
	s.Run("valid secret yields a usable token", func() {
		resp := s.request(http.MethodPost, "/enroll", "", map[string]string{
			"pairingSecret": testPairingSecret,
			"deviceId":      "phone-1",
			"role":          "device",
		})
		s.Require().Equal(http.StatusOK, resp.StatusCode)

		var body enrollResponse
		s.Require().NoError(json.NewDecoder(resp.Body).Decode(&body))
		s.Require().NotEmpty(body.Token)

		claims, err := s.tokens.ValidateToken(body.Token)
		s.Require().NoError(err)
		s.Equal("device", claims.Role)
		s.Equal("phone-1", claims.DeviceID)
	})

	s.Run("wrong secret is rejected", func() {
		resp := s.request(http.MethodPost, "/enroll", "", map[string]string{
			"pairingSecret": "guessed",
			"deviceId":      "phone-1",
			"role":          "device",
		})
		s.Equal(http.StatusUnauthorized, resp.StatusCode)
	})

	s.Run("unknown role is rejected", func() {
		resp := s.request(http.MethodPost, "/enroll", "", map[string]string{
			"pairingSecret": testPairingSecret,
			"deviceId":      "phone-1",
			"role":          "admin",
		})
		s.Equal(http.StatusBadRequest, resp.StatusCode)
	})
}

// ============================================================
// Status
// ============================================================

func (s *APISuite) TestStatus() {
	s.Run("requires a token", func() {
		resp := s.request(http.MethodGet, "/travel/status", "", nil)
		s.Equal(http.StatusUnauthorized, resp.StatusCode)
	})

	s.Run("returns the snapshot", func() {
		s.service.snapshot = monitor.Snapshot{
			Enabled:               true,
			State:                 monitor.StateMonitoring,
			IsMonitoring:          true,
			LastKnownRegion:       "Finland",
			LocationAuthorization: permission.LocationAlways,
		}

		resp := s.request(http.MethodGet, "/travel/status", s.uiToken(), nil)
		s.Require().Equal(http.StatusOK, resp.StatusCode)

		var snap monitor.Snapshot
		s.Require().NoError(json.NewDecoder(resp.Body).Decode(&snap))
		s.True(snap.Enabled)
		s.Equal(monitor.StateMonitoring, snap.State)
		s.Equal("Finland", snap.LastKnownRegion)
	})
}

// ============================================================
// Enabled toggle
// ============================================================

func (s *APISuite) TestSetEnabled() {
	s.Run("toggles and returns the new snapshot", func() {
		resp := s.request(http.MethodPut, "/travel/enabled", s.uiToken(),
			map[string]bool{"enabled": true})
		s.Require().Equal(http.StatusOK, resp.StatusCode)
		s.Equal([]bool{true}, s.service.setCalls)

		var snap monitor.Snapshot
		s.Require().NoError(json.NewDecoder(resp.Body).Decode(&snap))
		s.True(snap.Enabled)
	})

	s.Run("missing enabled field is rejected", func() {
		resp := s.request(http.MethodPut, "/travel/enabled", s.uiToken(),
			map[string]string{"other": "value"})
		s.Equal(http.StatusBadRequest, resp.StatusCode)
	})

	s.Run("interrupted wait reports queued", func() {
		s.service.setErr = errors.New("context canceled")

		resp := s.request(http.MethodPut, "/travel/enabled", s.uiToken(),
			map[string]bool{"enabled": false})
		s.Require().Equal(http.StatusAccepted, resp.StatusCode)

		var body map[string]string
		s.Require().NoError(json.NewDecoder(resp.Body).Decode(&body))
		s.Equal("queued", body["status"])
	})
}

// ============================================================
// Sync
// ============================================================

func (s *APISuite) TestSync() {
	resp := s.request(http.MethodPost, "/travel/sync", s.uiToken(), nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Equal(1, s.service.syncCalls)
}

// ============================================================
// History
// ============================================================

func (s *APISuite) TestHistory() {
	s.Run("returns recorded changes", func() {
		s.historian.changes = []store.RegionChange{
			{Previous: "Finland", Region: "Sweden", ChangedAt: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)},
		}

		resp := s.request(http.MethodGet, "/travel/history", s.uiToken(), nil)
		s.Require().Equal(http.StatusOK, resp.StatusCode)

		var body struct {
			Changes []store.RegionChange `json:"changes"`
		}
		s.Require().NoError(json.NewDecoder(resp.Body).Decode(&body))
		s.Require().Len(body.Changes, 1)
		s.Equal("Sweden", body.Changes[0].Region)
	})

	s.Run("query failure maps to internal error", func() {
		s.historian.err = errors.New("connection refused")
		resp := s.request(http.MethodGet, "/travel/history", s.uiToken(), nil)
		s.Equal(http.StatusInternalServerError, resp.StatusCode)
		s.historian.err = nil
	})
}

func (s *APISuite) TestHistoryUnavailable() {
	hash, err := secrets.Hash(testPairingSecret)
	s.Require().NoError(err)

	handler := New(s.service, s.tokens, s.tokens, hash, logger.New(logger.ParseLevel("error")))
	r := chi.NewRouter()
	handler.Register(r)
	srv := httptest.NewServer(r)
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/travel/history", nil)
	s.Require().NoError(err)
	req.Header.Set("Authorization", "Bearer "+s.uiToken())

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

// ============================================================
// Health
// ============================================================

func (s *APISuite) TestHealth() {
	s.Run("healthy dependencies report ok", func() {
		resp := s.request(http.MethodGet, "/healthz", "", nil)
		s.Require().Equal(http.StatusOK, resp.StatusCode)
	})

	s.Run("failing dependency reports degraded", func() {
		s.health.err = errors.New("redis unreachable")
		resp := s.request(http.MethodGet, "/healthz", "", nil)
		s.Equal(http.StatusServiceUnavailable, resp.StatusCode)
		s.health.err = nil
	})
}
