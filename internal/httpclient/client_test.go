package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/medpractice-client/internal/observability"
	apperrors "github.com/spec-kit/medpractice-client/pkg/util"
)

type staticToken string

func (s staticToken) Token(context.Context) string { return string(s) }

func newTestClient(t *testing.T, handler http.HandlerFunc, token string) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Options{BaseURL: srv.URL + "/api/", Tokens: staticToken(token), Metrics: observability.NewMetrics()})
}

func TestBearerInjection(t *testing.T) {
	var gotAuth, gotPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"id":7}`))
	}, "abc.def.ghi")

	var out struct{ ID int64 }
	require.NoError(t, client.Get(context.Background(), "/patients/7", nil, &out))
	assert.Equal(t, "Bearer abc.def.ghi", gotAuth)
	assert.Equal(t, "/api/patients/7", gotPath)
	assert.Equal(t, int64(7), out.ID)
}

func TestNoTokenNoHeader(t *testing.T) {
	var present bool
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, present = r.Header["Authorization"]
		w.WriteHeader(http.StatusNoContent)
	}, "")

	require.NoError(t, client.Delete(context.Background(), "/patients/1"))
	assert.False(t, present)
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantKind    apperrors.ErrorKind
		wantMessage string
		wantDetails map[string]string
	}{
		{"unauthorized", 401, `{"status":401,"message":"Token expired"}`, apperrors.KindUnauthorized, "Token expired", nil},
		{"not found", 404, `{"message":"Patient not found"}`, apperrors.KindNotFound, "Patient not found", nil},
		{"validation", 400, `{"message":"Validation failed","errors":{"email":"must be valid"}}`, apperrors.KindValidation, "Validation failed", map[string]string{"email": "must be valid"}},
		{"html body", 500, `<html>oops</html>`, apperrors.KindUnknown, "", nil},
		{"forbidden", 403, `{"message":"Access denied"}`, apperrors.KindUnknown, "Access denied", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}, "")

			err := client.Post(context.Background(), "/patients", map[string]string{"a": "b"}, nil)
			apiErr := apperrors.ToAPIError(err)
			require.NotNil(t, apiErr)
			assert.Equal(t, tt.wantKind, apiErr.Kind)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
			assert.Equal(t, tt.status, apiErr.HTTPStatus)
			assert.Equal(t, tt.wantDetails, apiErr.Details)
		})
	}
}

func TestNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	client := New(Options{BaseURL: srv.URL})
	err := client.Get(context.Background(), "/doctors", nil, nil)
	assert.Equal(t, apperrors.KindNetwork, apperrors.KindOf(err))
}

func TestUploadMultipart(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		defer file.Close()
		content, _ := io.ReadAll(file)
		assert.Equal(t, "me.png", header.Filename)
		assert.Equal(t, "PNGDATA", string(content))
		_, _ = w.Write([]byte(`{"url":"/files/me.png"}`))
	}, "tok")

	var out struct{ URL string }
	require.NoError(t, client.Upload(context.Background(), "/files/upload-profile-photo", "file", "me.png", strings.NewReader("PNGDATA"), &out))
	assert.Equal(t, "/files/me.png", out.URL)
}

func TestDownloadWithQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		_, _ = w.Write([]byte{0x25, 0x50, 0x44, 0x46})
	}, "")

	data, err := client.Download(context.Background(), "/patients/export/pdf", url.Values{"page": {"2"}})
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF"), data)
}

func TestRateLimitHonoursContext(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, "")
	limited := New(Options{BaseURL: client.baseURL, RateLimitRPS: 0.001, RateBurst: 1})

	require.NoError(t, limited.Delete(context.Background(), "/appointments/1"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := limited.Delete(ctx, "/appointments/1")
	assert.Equal(t, apperrors.KindNetwork, apperrors.KindOf(err))
}

func TestRouteLabel(t *testing.T) {
	assert.Equal(t, "/patients/:id", routeLabel("/patients/42"))
	assert.Equal(t, "/appointments/doctor/:id", routeLabel("/appointments/doctor/9"))
	assert.Equal(t, "/patients/export/csv", routeLabel("/patients/export/csv"))
}
