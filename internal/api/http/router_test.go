package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/user-directory/internal/api/http/handlers"
	"github.com/spec-kit/user-directory/internal/auth"
	"github.com/spec-kit/user-directory/internal/config"
	"github.com/spec-kit/user-directory/internal/events"
	"github.com/spec-kit/user-directory/internal/observability"
	"github.com/spec-kit/user-directory/internal/repository"
	"github.com/spec-kit/user-directory/internal/service"
)

const (
	adminToken   = "dev-token-12345"
	expiredToken = "expired-token-00000"
)

type testServer struct {
	app     *fiber.App
	logs    *observer.ObservedLogs
	metrics *observability.Metrics
}

func newTestServer(t *testing.T, production bool) *testServer {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	registry, err := auth.RegistryFromConfig(config.DevelopmentTokens())
	require.NoError(t, err)

	users := service.NewUserService(service.UserDependencies{
		UserRepo:   repository.NewMemoryUserRepository(repository.SeedUsers()),
		Dispatcher: events.NewInMemoryDispatcher(),
		Logger:     logger,
	})

	metrics := observability.NewMetrics()
	app := NewApp("user-directory-test")
	RegisterRoutes(app, RouteConfig{
		Pipeline: NewPipeline(PipelineConfig{
			Logger:        logger,
			Metrics:       metrics,
			Authenticator: auth.NewAuthenticator(registry, logger),
			Production:    production,
		}),
		Health: handlers.NewHealthHandler("user-directory", "test"),
		Auth:   handlers.NewAuthHandler(registry),
		Users:  handlers.NewUsersHandler(users),
	})
	app.Get("/api/boom", func(c *fiber.Ctx) error { panic("kaboom") })
	app.Get("/api/broken", func(c *fiber.Ctx) error { return errors.New("disk on fire") })

	return &testServer{app: app, logs: logs, metrics: metrics}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (*nethttp.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), string(raw))
	}
	return resp, decoded
}

func newUser(first, last, email string) map[string]any {
	return map[string]any{"firstName": first, "lastName": last, "email": email}
}

func TestNewPipeline_StageOrder(t *testing.T) {
	p := NewPipeline(PipelineConfig{})
	assert.Equal(t, []string{"error-containment", "authentication", "audit", "authorization", "routing"}, p.Names())
}

func TestUsers_CreateSearchDelete(t *testing.T) {
	s := newTestServer(t, false)

	resp, created := s.do(t, fiber.MethodPost, "/api/users", adminToken, newUser("Nina", "Newman", "nina.newman@example.com"))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, "/api/users/4", resp.Header.Get(fiber.HeaderLocation))
	assert.EqualValues(t, 4, created["id"])
	assert.Equal(t, true, created["isActive"])

	resp, page := s.do(t, fiber.MethodGet, "/api/users?search=new", adminToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, page["totalCount"])
	data := page["data"].([]any)
	require.Len(t, data, 1)
	assert.Equal(t, "nina.newman@example.com", data[0].(map[string]any)["email"])

	resp, _ = s.do(t, fiber.MethodDelete, "/api/users/4", adminToken, nil)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp, body := s.do(t, fiber.MethodGet, "/api/users/4", adminToken, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "User with ID 4 not found.", body["message"])
	assert.NotEmpty(t, body["errorId"])
}

func TestUsers_ListReflectsUpdates(t *testing.T) {
	s := newTestServer(t, false)

	_, before := s.do(t, fiber.MethodGet, "/api/users?sortBy=firstName&sortOrder=asc", adminToken, nil)
	first := before["data"].([]any)[0].(map[string]any)
	assert.Equal(t, "Bob", first["firstName"])

	update := newUser("Aaron", "Johnson", "bob.johnson@example.com")
	update["isActive"] = false
	resp, updated := s.do(t, fiber.MethodPut, "/api/users/3", adminToken, update)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotNil(t, updated["dateUpdated"])
	assert.Equal(t, false, updated["isActive"])

	_, after := s.do(t, fiber.MethodGet, "/api/users?sortBy=firstName&sortOrder=asc", adminToken, nil)
	first = after["data"].([]any)[0].(map[string]any)
	assert.Equal(t, "Aaron", first["firstName"])

	_, active := s.do(t, fiber.MethodGet, "/api/users?isActive=true", adminToken, nil)
	assert.EqualValues(t, 2, active["totalCount"])
}

func TestUsers_GetIsIdempotent(t *testing.T) {
	s := newTestServer(t, false)
	_, first := s.do(t, fiber.MethodGet, "/api/users/1", adminToken, nil)
	_, second := s.do(t, fiber.MethodGet, "/api/users/1", adminToken, nil)
	assert.Equal(t, first, second)
	assert.Equal(t, "John", first["firstName"])
}

func TestUsers_PageBeyondLast(t *testing.T) {
	s := newTestServer(t, false)
	resp, page := s.do(t, fiber.MethodGet, "/api/users?page=5&pageSize=10", adminToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Empty(t, page["data"])
	assert.EqualValues(t, 3, page["totalCount"])
	assert.EqualValues(t, 1, page["totalPages"])
	assert.Equal(t, false, page["hasNextPage"])
	assert.Equal(t, true, page["hasPreviousPage"])

	resp, page = s.do(t, fiber.MethodGet, "/api/users?page=4611686018427387905&pageSize=4", adminToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Empty(t, page["data"])
	assert.EqualValues(t, 3, page["totalCount"])
}

func TestUsers_BadRequests(t *testing.T) {
	s := newTestServer(t, false)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		field  string
	}{
		{"page zero", fiber.MethodGet, "/api/users?page=0", nil, "page"},
		{"page size too large", fiber.MethodGet, "/api/users?pageSize=500", nil, "pageSize"},
		{"unknown sort field", fiber.MethodGet, "/api/users?sortBy=phone", nil, "sortBy"},
		{"id not a number", fiber.MethodGet, "/api/users/abc", nil, "id"},
		{"id zero", fiber.MethodDelete, "/api/users/0", nil, "id"},
		{"missing names", fiber.MethodPost, "/api/users", map[string]any{"email": "x@example.com"}, "firstName"},
		{"bad email", fiber.MethodPut, "/api/users/1", newUser("John", "Doe", "nope"), "email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := s.do(t, tt.method, tt.path, adminToken, tt.body)
			require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
			assert.EqualValues(t, fiber.StatusBadRequest, body["statusCode"])
			var fields []string
			for _, v := range body["errors"].([]any) {
				fields = append(fields, v.(map[string]any)["field"].(string))
			}
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestUsers_DuplicateEmail(t *testing.T) {
	s := newTestServer(t, false)

	resp, body := s.do(t, fiber.MethodPost, "/api/users", adminToken, newUser("Johnny", "Doe", "JOHN.DOE@example.com"))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "A user with this email already exists.", body["message"])

	resp, body = s.do(t, fiber.MethodPut, "/api/users/2", adminToken, newUser("Jane", "Smith", "john.doe@example.com"))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "A user with this email already exists.", body["message"])

	resp, _ = s.do(t, fiber.MethodPut, "/api/users/2", adminToken, newUser("Janet", "Smith", "jane.smith@example.com"))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestUsers_UpdateMissingUser(t *testing.T) {
	s := newTestServer(t, false)
	resp, _ := s.do(t, fiber.MethodPut, "/api/users/99", adminToken, newUser("Ghost", "User", "ghost@example.com"))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestAuthentication_MissingTokenShortCircuits(t *testing.T) {
	s := newTestServer(t, false)

	resp, body := s.do(t, fiber.MethodGet, "/api/users", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Missing", body["reason"])
	assert.Equal(t, "Authentication token is required.", body["message"])
	assert.Equal(t, "/api/users", body["path"])
	assert.NotEmpty(t, body["errorId"])

	assert.Zero(t, s.logs.FilterMessage("incoming request").Len())
	assert.Zero(t, s.logs.FilterMessage("outgoing response").Len())
	assert.Empty(t, resp.Header.Get(HeaderRequestID))
	assert.EqualValues(t, 1, s.metrics.Snapshot().Errors["/api/users|GET|UNAUTHORIZED"])
}

func TestAuthentication_ExpiredAndInvalid(t *testing.T) {
	s := newTestServer(t, false)

	_, body := s.do(t, fiber.MethodGet, "/api/users", expiredToken, nil)
	assert.Equal(t, "Expired", body["reason"])

	_, body = s.do(t, fiber.MethodGet, "/api/users", "nope", nil)
	assert.Equal(t, "Invalid", body["reason"])
	assert.Equal(t, "Invalid or expired token.", body["message"])
}

func TestAuthentication_APITokenHeader(t *testing.T) {
	s := newTestServer(t, false)
	req := httptest.NewRequest(fiber.MethodGet, "/api/auth/validate", nil)
	req.Header.Set(auth.APITokenHeader, "test-token-67890")

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["authenticated"])
	assert.Equal(t, "2", body["userId"])
	assert.Equal(t, "User", body["role"])
}

func TestPublicEndpoints(t *testing.T) {
	s := newTestServer(t, false)

	resp, body := s.do(t, fiber.MethodGet, "/health/live", "", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "alive", body["status"])

	resp, body = s.do(t, fiber.MethodGet, "/API/Auth/Info", "", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, body["tokens"], 3)
	examples := body["examples"].(map[string]any)
	assert.Equal(t, "Authorization: Bearer dev-token-12345", examples["authorizationHeader"])
}

func TestAudit_LogsRequestAndResponse(t *testing.T) {
	s := newTestServer(t, false)

	resp, _ := s.do(t, fiber.MethodPost, "/api/users?source=test", adminToken, newUser("Ana", "Lopez", "ana@example.com"))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	requestID := resp.Header.Get(HeaderRequestID)
	require.NotEmpty(t, requestID)

	incoming := s.logs.FilterMessage("incoming request").All()
	require.Len(t, incoming, 1)
	fields := incoming[0].ContextMap()
	assert.Equal(t, requestID, fields["request_id"])
	assert.Equal(t, fiber.MethodPost, fields["method"])
	assert.Equal(t, "/api/users", fields["path"])
	assert.Equal(t, "source=test", fields["query"])

	assert.Equal(t, 1, s.logs.FilterMessage("request body").Len())
	assert.Equal(t, 1, s.logs.FilterMessage("response body").Len())

	outgoing := s.logs.FilterMessage("outgoing response").All()
	require.Len(t, outgoing, 1)
	assert.EqualValues(t, fiber.StatusCreated, outgoing[0].ContextMap()["status"])

	snap := s.metrics.Snapshot()
	assert.EqualValues(t, 1, snap.Requests["/api/users|POST|201"])
	assert.Contains(t, snap.Durations, "/api/users|POST|201")
}

func TestAudit_NoResponseBodyLogForEmptyBody(t *testing.T) {
	s := newTestServer(t, false)
	resp, _ := s.do(t, fiber.MethodDelete, "/api/users/1", adminToken, nil)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Zero(t, s.logs.FilterMessage("response body").Len())
	assert.Zero(t, s.logs.FilterMessage("request body").Len())
}

func TestRouting_UnknownRoute(t *testing.T) {
	s := newTestServer(t, false)
	resp, body := s.do(t, fiber.MethodGet, "/api/unknown", adminToken, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.EqualValues(t, fiber.StatusNotFound, body["statusCode"])
	assert.NotEmpty(t, body["errorId"])
	assert.Zero(t, s.logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}

func TestErrorContainment_Panic(t *testing.T) {
	s := newTestServer(t, false)

	resp, body := s.do(t, fiber.MethodGet, "/api/boom", adminToken, nil)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "An internal server error occurred. Please contact support if the issue persists.", body["message"])
	assert.NotEmpty(t, body["errorId"])
	assert.Equal(t, "panic: kaboom", body["detailedMessage"])
	assert.NotEmpty(t, body["stackTrace"])
	assert.Contains(t, body["exceptionType"], "Fault")

	assert.Equal(t, 1, s.logs.FilterMessage("request failed").Len())
	contained := s.logs.FilterMessage("unhandled error").All()
	require.Len(t, contained, 1)
	assert.Equal(t, body["errorId"], contained[0].ContextMap()["error_id"])
	assert.Zero(t, s.logs.FilterMessage("outgoing response").Len())
}

func TestErrorContainment_FaultHidesDetailsInProduction(t *testing.T) {
	s := newTestServer(t, true)

	resp, body := s.do(t, fiber.MethodGet, "/api/broken", adminToken, nil)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.NotContains(t, body, "detailedMessage")
	assert.NotContains(t, body, "stackTrace")
	assert.NotContains(t, body, "exceptionType")
	assert.Equal(t, "An internal server error occurred. Please contact support if the issue persists.", body["message"])

	assert.Equal(t, 1, s.logs.FilterMessage("unhandled error").Len())
	assert.EqualValues(t, 1, s.metrics.Snapshot().Errors["/api/broken|GET|INTERNAL_ERROR"])
}

func TestErrorContainment_ProductionPanic(t *testing.T) {
	s := newTestServer(t, true)
	resp, body := s.do(t, fiber.MethodGet, "/api/boom", adminToken, nil)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.NotContains(t, body, "stackTrace")
	assert.NotEmpty(t, body["errorId"])
}
