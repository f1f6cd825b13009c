package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/medpractice-client/internal/action"
	"github.com/spec-kit/medpractice-client/internal/credentials"
	"github.com/spec-kit/medpractice-client/internal/domain"
	"github.com/spec-kit/medpractice-client/internal/events"
	"github.com/spec-kit/medpractice-client/internal/gateway"
	"github.com/spec-kit/medpractice-client/internal/httpclient"
	"github.com/spec-kit/medpractice-client/internal/store"
)

// harness wires the whole client stack against a fake backend.
type harness struct {
	creds        *credentials.MemoryBackend
	session      *store.Auth
	dispatcher   events.Dispatcher
	audit        *AuditService
	auth         *AuthService
	patients     *PatientService
	appointments *AppointmentService
	doctors      *DoctorService
}

type harnessOption func(*store.Policy, *credentials.MemoryBackend)

func withStaleDiscard() harnessOption {
	return func(p *store.Policy, _ *credentials.MemoryBackend) { p.DiscardStale = true }
}

func withToken(token string) harnessOption {
	return func(_ *store.Policy, b *credentials.MemoryBackend) {
		_ = b.Set(context.Background(), credentials.KeyAccessToken, token)
		_ = b.Set(context.Background(), credentials.KeyRefreshToken, "refresh-1")
	}
}

func newHarness(t *testing.T, backend http.Handler, opts ...harnessOption) *harness {
	t.Helper()
	server := httptest.NewServer(backend)
	t.Cleanup(server.Close)

	policy := store.Policy{}
	mem := credentials.NewMemoryBackend()
	for _, opt := range opts {
		opt(&policy, mem)
	}

	ctx := context.Background()
	session := store.NewAuth(ctx, credentials.NewStore(mem, nil), policy, nil)
	client := httpclient.New(httpclient.Options{BaseURL: server.URL + "/api", Tokens: session})
	dispatcher := events.NewInMemoryDispatcher()
	runner := action.NewRunner(dispatcher, nil, nil)

	audit := NewAuditService(dispatcher, nil, 0)
	audit.RegisterHandlers()

	authSvc := NewAuthService(AuthDependencies{
		Gateway:    gateway.NewAuthGateway(client),
		Session:    session,
		Runner:     runner,
		Dispatcher: dispatcher,
	})
	runner.OnAuthFailure(authSvc.HandleAuthFailure)

	return &harness{
		creds:      mem,
		session:    session,
		dispatcher: dispatcher,
		audit:      audit,
		auth:       authSvc,
		patients: NewPatientService(gateway.NewPatientGateway(client),
			store.NewCollection[domain.Patient]("patients", policy, nil), runner),
		appointments: NewAppointmentService(gateway.NewAppointmentGateway(client),
			store.NewCollection[domain.Appointment]("appointments", policy, nil), runner),
		doctors: NewDoctorService(gateway.NewDoctorGateway(client),
			store.NewCollection[domain.Doctor]("doctors", policy, nil), runner),
	}
}

func (h *harness) stored(t *testing.T, key string) string {
	t.Helper()
	value, _, err := h.creds.Get(context.Background(), key)
	require.NoError(t, err)
	return value
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// countingHandler counts calls before delegating.
type countingHandler struct {
	calls atomic.Int32
	next  http.HandlerFunc
}

func (c *countingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c.calls.Add(1)
	c.next(w, r)
}
