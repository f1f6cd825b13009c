package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/medpractice-client/internal/domain"
	"github.com/spec-kit/medpractice-client/internal/httpclient"
	apperrors "github.com/spec-kit/medpractice-client/pkg/util"
)

type recorded struct {
	Method string
	Path   string
	Query  string
	Body   string
}

type fakeBackend struct {
	mu       sync.Mutex
	requests []recorded
	status   int
	response string
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, recorded{r.Method, r.URL.Path, r.URL.RawQuery, string(body)})
	status, response := f.status, f.response
	f.mu.Unlock()
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(response))
}

func (f *fakeBackend) last() recorded {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func newBackend(t *testing.T, response string) (*fakeBackend, *httpclient.Client) {
	t.Helper()
	fb := &fakeBackend{response: response}
	srv := httptest.NewServer(fb)
	t.Cleanup(srv.Close)
	return fb, httpclient.New(httpclient.Options{BaseURL: srv.URL})
}

func TestPatientGatewayRoutes(t *testing.T) {
	ctx := context.Background()
	fb, client := newBackend(t, `{"content":[{"id":1,"name":"Ada"}],"totalPages":3,"totalElements":21}`)
	g := NewPatientGateway(client)

	page, err := g.List(ctx, domain.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, page.Content, 1)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, recorded{"GET", "/patients", "page=0&size=10", ""}, fb.last())

	minAge := 30
	_, err = g.Search(ctx, domain.PatientSearchCriteria{Name: "ada", MinAge: &minAge}, domain.PageRequest{Page: 2, Size: 5})
	require.NoError(t, err)
	assert.Equal(t, "/patients/search", fb.last().Path)
	assert.Equal(t, "minAge=30&name=ada&page=2&size=5", fb.last().Query)

	fb.response = `{"id":4,"name":"Grace"}`
	created, err := g.Create(ctx, domain.PatientInput{Name: "Grace"})
	require.NoError(t, err)
	assert.Equal(t, int64(4), created.ID)
	assert.Equal(t, "POST", fb.last().Method)
	assert.JSONEq(t, `{"name":"Grace"}`, fb.last().Body)

	_, err = g.Update(ctx, 4, domain.PatientInput{Name: "Grace H."})
	require.NoError(t, err)
	assert.Equal(t, recorded{"PUT", "/patients/4", "", `{"name":"Grace H."}`}, fb.last())

	_, err = g.Archive(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, "/patients/4/archive", fb.last().Path)

	fb.response = ""
	require.NoError(t, g.Delete(ctx, 4))
	assert.Equal(t, recorded{"DELETE", "/patients/4", "", ""}, fb.last())
}

func TestPatientExport(t *testing.T) {
	fb, client := newBackend(t, "name,email\n")
	g := NewPatientGateway(client)

	data, err := g.Export(context.Background(), domain.ExportCSV)
	require.NoError(t, err)
	assert.Equal(t, "name,email\n", string(data))
	assert.Equal(t, "/patients/export/csv", fb.last().Path)

	_, err = g.Export(context.Background(), "docx")
	assert.Error(t, err)
}

func TestAppointmentGatewayRoutes(t *testing.T) {
	ctx := context.Background()
	fb, client := newBackend(t, `[{"id":1,"status":"PENDING"}]`)
	g := NewAppointmentGateway(client)

	list, err := g.ByDoctor(ctx, 9)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.AppointmentPending, list[0].Status)
	assert.Equal(t, "/appointments/doctor/9", fb.last().Path)

	_, err = g.ByPatient(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "/appointments/patient/3", fb.last().Path)

	fb.response = `{"id":1,"status":"CONFIRMED"}`
	appt, err := g.Confirm(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.AppointmentConfirmed, appt.Status)
	assert.Equal(t, recorded{"PUT", "/appointments/1/confirm", "", ""}, fb.last())
}

func TestDoctorGatewayRoutes(t *testing.T) {
	ctx := context.Background()
	fb, client := newBackend(t, `[]`)
	g := NewDoctorGateway(client)

	_, err := g.Availability(ctx, 2, "2026-03-01")
	require.NoError(t, err)
	assert.Equal(t, recorded{"GET", "/doctors/2/availability", "date=2026-03-01", ""}, fb.last())

	_, err = g.AvailableSlots(ctx, 2, "")
	require.NoError(t, err)
	assert.Equal(t, recorded{"GET", "/doctors/2/available-slots", "", ""}, fb.last())

	_, err = g.BySpecialty(ctx, "CARDIOLOGY")
	require.NoError(t, err)
	assert.Equal(t, "/doctors/specialty/CARDIOLOGY", fb.last().Path)

	fb.response = `{"id":5,"dayOfWeek":"MONDAY","startTime":"09:00","endTime":"12:00"}`
	slot, err := g.SetMyAvailability(ctx, domain.Availability{DayOfWeek: "MONDAY", StartTime: "09:00", EndTime: "12:00"})
	require.NoError(t, err)
	assert.Equal(t, int64(5), slot.ID)
	assert.Equal(t, "/doctors/my-availability", fb.last().Path)
}

func TestAuthGatewayRoutes(t *testing.T) {
	ctx := context.Background()
	fb, client := newBackend(t, `{"accessToken":"a.b.c","refreshToken":"r","username":"ada","userType":"PATIENT"}`)
	g := NewAuthGateway(client)

	resp, err := g.Login(ctx, domain.LoginRequest{Username: "ada", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "a.b.c", resp.AccessToken)
	assert.Equal(t, "/auth/login", fb.last().Path)

	_, err = g.Refresh(ctx, "r")
	require.NoError(t, err)
	assert.JSONEq(t, `{"refreshToken":"r"}`, fb.last().Body)

	fb.response = ""
	require.NoError(t, g.Logout(ctx, ""))
	assert.Equal(t, recorded{"POST", "/auth/logout", "", ""}, fb.last())

	fb.response = `{"url":"/uploads/p.png"}`
	up, err := g.UploadProfilePhoto(ctx, "p.png", strings.NewReader("img"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/p.png", up.URL)
	assert.Equal(t, "/files/upload-profile-photo", fb.last().Path)
}

func TestGatewayPassesErrorsThrough(t *testing.T) {
	fb, client := newBackend(t, `{"message":"Identifiants invalides"}`)
	fb.status = http.StatusUnauthorized
	g := NewAuthGateway(client)

	_, err := g.Login(context.Background(), domain.LoginRequest{Username: "x", Password: "y"})
	require.Error(t, err)
	apiErr := apperrors.ToAPIError(err)
	assert.Equal(t, apperrors.KindUnauthorized, apiErr.Kind)
	assert.Equal(t, "Identifiants invalides", apiErr.Message)

	var body domain.LoginRequest
	require.NoError(t, json.Unmarshal([]byte(fb.last().Body), &body))
	assert.Equal(t, "x", body.Username)
}
