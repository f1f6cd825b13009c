package http

import (
	"context"
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/medpractice-client/internal/action"
	"github.com/spec-kit/medpractice-client/internal/api/http/handlers"
	"github.com/spec-kit/medpractice-client/internal/auth"
	"github.com/spec-kit/medpractice-client/internal/auth/authtest"
	"github.com/spec-kit/medpractice-client/internal/credentials"
	"github.com/spec-kit/medpractice-client/internal/domain"
	"github.com/spec-kit/medpractice-client/internal/events"
	"github.com/spec-kit/medpractice-client/internal/gateway"
	"github.com/spec-kit/medpractice-client/internal/httpclient"
	"github.com/spec-kit/medpractice-client/internal/observability"
	"github.com/spec-kit/medpractice-client/internal/service"
	"github.com/spec-kit/medpractice-client/internal/store"
)

type consoleOptions struct {
	token         string
	accessKeyHash string
}

func newConsole(t *testing.T, backend nethttp.Handler, opts consoleOptions) (*fiber.App, *credentials.MemoryBackend) {
	t.Helper()
	server := httptest.NewServer(backend)
	t.Cleanup(server.Close)

	ctx := context.Background()
	mem := credentials.NewMemoryBackend()
	if opts.token != "" {
		require.NoError(t, mem.Set(ctx, credentials.KeyAccessToken, opts.token))
	}
	session := store.NewAuth(ctx, credentials.NewStore(mem, nil), store.Policy{}, nil)

	metrics := observability.NewMetrics()
	client := httpclient.New(httpclient.Options{BaseURL: server.URL, Tokens: session, Metrics: metrics})
	dispatcher := events.NewInMemoryDispatcher()
	runner := action.NewRunner(dispatcher, nil, metrics)

	authSvc := service.NewAuthService(service.AuthDependencies{
		Gateway:    gateway.NewAuthGateway(client),
		Session:    session,
		Runner:     runner,
		Dispatcher: dispatcher,
	})
	runner.OnAuthFailure(authSvc.HandleAuthFailure)
	patients := service.NewPatientService(gateway.NewPatientGateway(client),
		store.NewCollection[domain.Patient]("patients", store.Policy{}, nil), runner)
	appointments := service.NewAppointmentService(gateway.NewAppointmentGateway(client),
		store.NewCollection[domain.Appointment]("appointments", store.Policy{}, nil), runner)
	doctors := service.NewDoctorService(gateway.NewDoctorGateway(client),
		store.NewCollection[domain.Doctor]("doctors", store.Policy{}, nil), runner)
	audit := service.NewAuditService(dispatcher, nil, 0)
	audit.RegisterHandlers()
	gate := auth.NewGate(authSvc, nil)

	app := fiber.New()
	RegisterMiddlewares(app, nil, metrics, 0)
	RegisterRoutes(app, RouteConfig{
		Health: handlers.NewHealthHandler("medconsole", "test", "memory", nil),
		State: handlers.NewStateHandler(handlers.StateDependencies{
			Gate: gate, Auth: authSvc, Patients: patients, Appointments: appointments, Doctors: doctors, Audit: audit,
		}),
		Auth:          handlers.NewAuthHandler(authSvc, gate),
		Patients:      handlers.NewPatientsHandler(patients),
		Appointments:  handlers.NewAppointmentsHandler(appointments),
		Doctors:       handlers.NewDoctorsHandler(doctors),
		Gate:          gate,
		Metrics:       metrics,
		AccessKeyHash: opts.accessKeyHash,
	})
	return app, mem
}

func do(t *testing.T, app *fiber.App, method, target, body string) (*nethttp.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	decoded := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func writeJSON(w nethttp.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func errorCode(body map[string]any) any {
	errBody, _ := body["error"].(map[string]any)
	return errBody["code"]
}

func TestHealth(t *testing.T) {
	app, _ := newConsole(t, nethttp.NewServeMux(), consoleOptions{})

	resp, body := do(t, app, nethttp.MethodGet, "/health/live", "")
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Equal(t, "alive", body["status"])

	resp, body = do(t, app, nethttp.MethodGet, "/health/ready", "")
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Equal(t, "ready", body["status"])
}

func TestLoginThroughConsole(t *testing.T) {
	token := authtest.Valid(t, "DOCTOR")
	mux := nethttp.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		var req domain.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "secret" {
			writeJSON(w, nethttp.StatusUnauthorized, map[string]string{"message": "Bad credentials"})
			return
		}
		writeJSON(w, nethttp.StatusOK, domain.AuthResponse{AccessToken: token, Username: req.Username, UserType: "DOCTOR"})
	})
	app, mem := newConsole(t, mux, consoleOptions{})

	resp, body := do(t, app, nethttp.MethodPost, "/auth/login", `{"username":"house","password":"nope"}`)
	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", errorCode(body))
	stored, _, _ := mem.Get(context.Background(), credentials.KeyAccessToken)
	assert.Empty(t, stored)

	resp, body = do(t, app, nethttp.MethodPost, "/auth/login", `{"username":"house","password":"secret"}`)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]any)
	assert.Equal(t, true, data["isAuthenticated"])
	assert.Equal(t, "DOCTOR", data["role"])
	assert.NotContains(t, data, "token")

	_, body = do(t, app, nethttp.MethodGet, "/state", "")
	menu := body["data"].(map[string]any)["menu"].([]any)
	names := make([]string, 0, len(menu))
	for _, item := range menu {
		names = append(names, item.(map[string]any)["name"].(string))
	}
	assert.Equal(t, []string{"dashboard", "patients", "appointments", "profile"}, names)
}

func TestLoginRequiresCredentials(t *testing.T) {
	app, _ := newConsole(t, nethttp.NewServeMux(), consoleOptions{})

	resp, body := do(t, app, nethttp.MethodPost, "/auth/login", `{"username":""}`)
	assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errorCode(body))
}

func TestGuardedRoutes(t *testing.T) {
	mux := nethttp.NewServeMux()
	mux.HandleFunc("GET /patients", func(w nethttp.ResponseWriter, _ *nethttp.Request) {
		writeJSON(w, nethttp.StatusOK, domain.Page[domain.Patient]{Content: []domain.Patient{{ID: 4, Name: "Ada"}}, TotalPages: 1, TotalElements: 1})
	})

	t.Run("anonymous goes to login", func(t *testing.T) {
		app, _ := newConsole(t, mux, consoleOptions{})
		resp, _ := do(t, app, nethttp.MethodGet, "/patients", "")
		assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, auth.LoginPath, resp.Header.Get(fiber.HeaderLocation))
	})

	t.Run("patient role goes to dashboard", func(t *testing.T) {
		app, _ := newConsole(t, mux, consoleOptions{token: authtest.Valid(t, "PATIENT")})
		resp, _ := do(t, app, nethttp.MethodGet, "/patients", "")
		assert.Equal(t, nethttp.StatusForbidden, resp.StatusCode)
		assert.Equal(t, auth.DashboardPath, resp.Header.Get(fiber.HeaderLocation))
	})

	t.Run("doctor sees the listing", func(t *testing.T) {
		app, _ := newConsole(t, mux, consoleOptions{token: authtest.Valid(t, "DOCTOR")})
		resp, body := do(t, app, nethttp.MethodGet, "/patients?page=0&size=20", "")
		require.Equal(t, nethttp.StatusOK, resp.StatusCode)
		state := body["state"].(map[string]any)
		assert.Equal(t, "idle", state["status"])
		assert.Len(t, state["items"], 1)
	})
}

func TestBackendErrorsRenderAndReduce(t *testing.T) {
	mux := nethttp.NewServeMux()
	mux.HandleFunc("GET /appointments/9", func(w nethttp.ResponseWriter, _ *nethttp.Request) {
		writeJSON(w, nethttp.StatusNotFound, map[string]string{"message": "Appointment not found"})
	})
	app, _ := newConsole(t, mux, consoleOptions{token: authtest.Valid(t, "PATIENT")})

	resp, body := do(t, app, nethttp.MethodGet, "/appointments/9", "")
	assert.Equal(t, nethttp.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", errorCode(body))

	_, body = do(t, app, nethttp.MethodGet, "/state", "")
	appointments := body["data"].(map[string]any)["appointments"].(map[string]any)
	assert.Equal(t, "error", appointments["status"])
	assert.Equal(t, "Appointment not found", appointments["error"])

	resp, _ = do(t, app, nethttp.MethodDelete, "/appointments/error", "")
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
	_, body = do(t, app, nethttp.MethodGet, "/state", "")
	appointments = body["data"].(map[string]any)["appointments"].(map[string]any)
	assert.Equal(t, "idle", appointments["status"])
}

func TestInvalidIDIsRejectedLocally(t *testing.T) {
	app, _ := newConsole(t, nethttp.NewServeMux(), consoleOptions{token: authtest.Valid(t, "ADMIN")})

	resp, body := do(t, app, nethttp.MethodGet, "/patients/abc", "")
	assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errorCode(body))
}

func TestExportStreamsDocument(t *testing.T) {
	mux := nethttp.NewServeMux()
	mux.HandleFunc("GET /patients/export/csv", func(w nethttp.ResponseWriter, _ *nethttp.Request) {
		_, _ = w.Write([]byte("id,name\n4,Ada\n"))
	})
	app, _ := newConsole(t, mux, consoleOptions{token: authtest.Valid(t, "ADMIN")})

	resp, _ := do(t, app, nethttp.MethodGet, "/patients/export/csv", "")
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv", resp.Header.Get(fiber.HeaderContentType))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "patients.csv")

	resp, _ = do(t, app, nethttp.MethodGet, "/patients/export/docx", "")
	assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)
}

func TestOAuth2RedirectOutcome(t *testing.T) {
	app, _ := newConsole(t, nethttp.NewServeMux(), consoleOptions{})

	resp, _ := do(t, app, nethttp.MethodGet, "/auth/oauth2/redirect?error=access_denied", "")
	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "/login?error=access_denied", resp.Header.Get(fiber.HeaderLocation))

	token := authtest.Valid(t, "PATIENT")
	resp, body := do(t, app, nethttp.MethodGet, "/auth/oauth2/redirect?token="+token+"&name=Jane&role=PATIENT", "")
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Equal(t, auth.DashboardPath, resp.Header.Get(fiber.HeaderLocation))
	assert.Equal(t, "PATIENT", body["data"].(map[string]any)["role"])
}

func TestAccessKeyProtectsConsole(t *testing.T) {
	hash, err := auth.HashAccessKey("open-sesame", 4)
	require.NoError(t, err)
	app, _ := newConsole(t, nethttp.NewServeMux(), consoleOptions{accessKeyHash: hash})

	resp, _ := do(t, app, nethttp.MethodGet, "/health/live", "")
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)

	resp, body := do(t, app, nethttp.MethodGet, "/state", "")
	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", errorCode(body))

	req := httptest.NewRequest(nethttp.MethodGet, "/state", nil)
	req.Header.Set(auth.AccessKeyHeader, "open-sesame")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	app, _ := newConsole(t, nethttp.NewServeMux(), consoleOptions{})
	do(t, app, nethttp.MethodGet, "/state", "")

	resp, err := app.Test(httptest.NewRequest(nethttp.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "medclient_console_requests_total")
}

func TestUnknownRouteRendersNotFound(t *testing.T) {
	app, _ := newConsole(t, nethttp.NewServeMux(), consoleOptions{})
	resp, body := do(t, app, nethttp.MethodGet, "/nowhere", "")
	assert.Equal(t, nethttp.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", errorCode(body))
}
