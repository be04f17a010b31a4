package api

import (
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kinshipapp/kinship-server/internal/auth"
	"github.com/kinshipapp/kinship-server/internal/config"
	"github.com/kinshipapp/kinship-server/internal/media/avatars"
	"github.com/kinshipapp/kinship-server/internal/search"
	"github.com/kinshipapp/kinship-server/internal/service"
	"github.com/kinshipapp/kinship-server/internal/store/sqlite"
)

// testEnvelope mirrors the response envelope for decoding in tests.
type testEnvelope[T any] struct {
	V       int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// apiTestServer wraps the API server for handler testing.
type apiTestServer struct {
	*Server
	api          humatest.TestAPI
	tokenService *auth.TokenService
}

// setupTestServer creates a test server backed by a real store and index.
func setupTestServer(t *testing.T) *apiTestServer {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "kinship-api-test-*")
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	st, err := sqlite.Open(filepath.Join(tmpDir, "test.db"), logger)
	require.NoError(t, err)

	index, err := search.NewSearchIndex(search.Options{DataPath: tmpDir, Logger: logger})
	require.NoError(t, err)

	avatarStorage, err := avatars.NewStorage(filepath.Join(tmpDir, "avatars"))
	require.NoError(t, err)

	avatarProcessor := avatars.NewProcessor(avatarStorage, logger)

	cfg := &config.Config{
		Server: config.ServerConfig{
			Name:     "Test Server",
			LocalURL: "http://localhost:8080",
		},
		Auth: config.AuthConfig{
			AccessTokenDuration:  15 * time.Minute,
			RefreshTokenDuration: 30 * 24 * time.Hour,
		},
	}

	authKey, err := auth.LoadOrGenerateKey(tmpDir)
	require.NoError(t, err)
	cfg.Auth.AccessTokenKey = authKey

	tokenService, err := auth.NewTokenService(
		hex.EncodeToString(authKey),
		cfg.Auth.AccessTokenDuration,
		cfg.Auth.RefreshTokenDuration,
	)
	require.NoError(t, err)

	sessionService := service.NewSessionService(st, tokenService, logger)
	instanceService := service.NewInstanceService(st, cfg, logger)
	authService := service.NewAuthService(st, tokenService, sessionService, instanceService, logger)
	contactService := service.NewContactService(st, index, avatarProcessor, logger)
	tagService := service.NewTagService(st, contactService, logger)
	eventService := service.NewEventService(st, logger)
	dashboardService := service.NewDashboardService(st, eventService, logger)
	searchService := service.NewSearchService(st, index, logger)

	services := &Services{
		Instance:  instanceService,
		Auth:      authService,
		Session:   sessionService,
		Contact:   contactService,
		Tag:       tagService,
		Event:     eventService,
		Dashboard: dashboardService,
		Search:    searchService,
	}

	router := chi.NewRouter()
	router.Use(authMiddleware(services.Auth))

	humaConfig := huma.DefaultConfig("Kinship API Test", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	api := humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s := &Server{
		store:    st,
		services: services,
		storage:  &StorageServices{Avatars: avatarStorage},
		router:   router,
		api:      api,
		logger:   logger,
		// Generous limit so only the dedicated throttle test trips it.
		authRateLimiter: NewRateLimiter(6000, 50),
	}

	s.registerHealthRoutes()
	s.registerInstanceRoutes()
	s.registerAuthRoutes()
	s.registerContactRoutes()
	s.registerInteractionRoutes()
	s.registerAvatarRoutes()
	s.registerTagRoutes()
	s.registerEventRoutes()
	s.registerDashboardRoutes()
	s.registerSearchRoutes()

	router.Get("/avatars/{path}", s.handleServeAvatar)

	testAPI := humatest.Wrap(t, api)

	t.Cleanup(func() {
		authService.Close()
		s.authRateLimiter.Stop()
		_ = index.Close()
		_ = st.Close()
		_ = os.RemoveAll(tmpDir)
	})

	return &apiTestServer{
		Server:       s,
		api:          testAPI,
		tokenService: tokenService,
	}
}

// createTestUser runs initial setup and returns the access token and user ID.
func (ts *apiTestServer) createTestUser(t *testing.T) (token string, userID string) {
	t.Helper()

	resp := ts.api.Post("/api/v1/auth/setup", map[string]any{
		"email":        "owner@example.com",
		"password":     "TestPassword123!",
		"display_name": "Test Owner",
	})
	require.Equal(t, http.StatusOK, resp.Code, "Setup failed: %s", resp.Body.String())

	var envelope testEnvelope[AuthResponse]
	err := json.Unmarshal(resp.Body.Bytes(), &envelope)
	require.NoError(t, err)

	claims, err := ts.tokenService.VerifyAccessToken(envelope.Data.AccessToken)
	require.NoError(t, err)

	return envelope.Data.AccessToken, claims.UserID
}

// createTestContact creates a contact through the API and returns its ID.
func (ts *apiTestServer) createTestContact(t *testing.T, token string, body map[string]any) string {
	t.Helper()

	resp := ts.api.Post("/api/v1/contacts", "Authorization: Bearer "+token, body)
	require.Equal(t, http.StatusOK, resp.Code, "Create contact failed: %s", resp.Body.String())

	var envelope testEnvelope[ContactResponse]
	err := json.Unmarshal(resp.Body.Bytes(), &envelope)
	require.NoError(t, err)
	require.NotEmpty(t, envelope.Data.ID)

	return envelope.Data.ID
}

// === Tests ===

func TestHealthCheck(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/health")
	assert.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[HealthResponse]
	err := json.Unmarshal(resp.Body.Bytes(), &envelope)
	require.NoError(t, err)

	assert.True(t, envelope.Success)
	assert.Equal(t, "healthy", envelope.Data.Status)
	assert.Contains(t, envelope.Data.Components, "database")
	assert.Contains(t, envelope.Data.Components, "search")
}

func TestGetInstance(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/instance")
	assert.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[InstanceResponse]
	err := json.Unmarshal(resp.Body.Bytes(), &envelope)
	require.NoError(t, err)

	assert.True(t, envelope.Success)
	assert.NotEmpty(t, envelope.Data.ID)
	assert.Equal(t, "Test Server", envelope.Data.Name)
	assert.True(t, envelope.Data.SetupRequired)

	// After setup the flag flips.
	ts.createTestUser(t)

	resp = ts.api.Get("/api/v1/instance")
	require.Equal(t, http.StatusOK, resp.Code)
	err = json.Unmarshal(resp.Body.Bytes(), &envelope)
	require.NoError(t, err)
	assert.False(t, envelope.Data.SetupRequired)
}

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	ts := setupTestServer(t)

	paths := []string{
		"/api/v1/contacts",
		"/api/v1/tags",
		"/api/v1/events",
		"/api/v1/dashboard",
		"/api/v1/search?q=test",
	}

	for _, path := range paths {
		resp := ts.api.Get(path)
		assert.Equal(t, http.StatusUnauthorized, resp.Code, "expected 401 for %s", path)
	}
}

func TestInvalidTokenRejected(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/contacts", "Authorization: Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = ts.api.Get("/api/v1/contacts", "Authorization: Basic abc")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}
