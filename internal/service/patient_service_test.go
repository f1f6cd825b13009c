package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/medpractice-client/internal/auth/authtest"
	"github.com/spec-kit/medpractice-client/internal/domain"
	"github.com/spec-kit/medpractice-client/internal/store"
)

func TestPatientLifecycle(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/patients", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "0", r.URL.Query().Get("page"))
		writeJSON(w, http.StatusOK, domain.Page[domain.Patient]{
			Content:       []domain.Patient{{ID: 1, Name: "Ada"}, {ID: 2, Name: "Ben"}},
			TotalPages:    1,
			TotalElements: 2,
		})
	})
	mux.HandleFunc("POST /api/patients", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusCreated, domain.Patient{ID: 3, Name: "Cy"})
	})
	mux.HandleFunc("PUT /api/patients/1/archive", func(w http.ResponseWriter, _ *http.Request) {
		inactive := false
		writeJSON(w, http.StatusOK, domain.Patient{ID: 1, Name: "Ada", IsActive: &inactive})
	})
	mux.HandleFunc("DELETE /api/patients/2", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	h := newHarness(t, mux, withToken(authtest.Valid(t, "DOCTOR")))
	ctx := context.Background()

	_, err := h.patients.FetchAll(ctx, domain.PageRequest{})
	require.NoError(t, err)
	_, err = h.patients.Create(ctx, domain.PatientInput{Name: "Cy"})
	require.NoError(t, err)
	_, err = h.patients.Archive(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, h.patients.Delete(ctx, 2))

	snap := h.patients.Store().Snapshot()
	assert.Equal(t, store.StatusIdle, snap.Status)
	require.Len(t, snap.Items, 2)
	assert.Equal(t, int64(1), snap.Items[0].ID)
	assert.False(t, *snap.Items[0].IsActive)
	assert.Equal(t, int64(3), snap.Items[1].ID)
}

func TestPatientValidationMessage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/patients", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"message": "Validation failed",
			"errors":  map[string]string{"name": "required", "email": "invalid"},
		})
	})
	h := newHarness(t, mux, withToken(authtest.Valid(t, "DOCTOR")))

	_, err := h.patients.Create(context.Background(), domain.PatientInput{})
	require.Error(t, err)

	snap := h.patients.Store().Snapshot()
	assert.Equal(t, store.StatusError, snap.Status)
	assert.Equal(t, "Validation failed - email: invalid, name: required", snap.Error)
	assert.True(t, h.auth.Snapshot().IsAuthenticated)
}

func TestEnsureAllSkipsFreshListing(t *testing.T) {
	counter := &countingHandler{next: func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, domain.Page[domain.Patient]{Content: []domain.Patient{{ID: 1}}})
	}}
	mux := http.NewServeMux()
	mux.Handle("GET /api/patients", counter)
	h := newHarness(t, mux, withToken(authtest.Valid(t, "DOCTOR")))
	ctx := context.Background()

	require.NoError(t, h.patients.EnsureAll(ctx, domain.DefaultPage()))
	require.NoError(t, h.patients.EnsureAll(ctx, domain.DefaultPage()))
	assert.Equal(t, int32(1), counter.calls.Load())

	h.patients.Store().Invalidate()
	require.NoError(t, h.patients.EnsureAll(ctx, domain.DefaultPage()))
	assert.Equal(t, int32(2), counter.calls.Load())
}

func TestExportOnlySettlesStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/patients/export/csv", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("id,name\n1,Ada\n"))
	})
	h := newHarness(t, mux, withToken(authtest.Valid(t, "ADMIN")))

	doc, err := h.patients.Export(context.Background(), domain.ExportCSV)
	require.NoError(t, err)
	assert.Contains(t, string(doc), "Ada")

	snap := h.patients.Store().Snapshot()
	assert.Equal(t, store.StatusIdle, snap.Status)
	assert.Empty(t, snap.Items)
}

func TestSearchReplacesListing(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/patients/search", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Ada", r.URL.Query().Get("name"))
		writeJSON(w, http.StatusOK, domain.Page[domain.Patient]{
			Content: []domain.Patient{{ID: 1, Name: "Ada"}}, TotalPages: 1, TotalElements: 1,
		})
	})
	h := newHarness(t, mux, withToken(authtest.Valid(t, "DOCTOR")))

	_, err := h.patients.Search(context.Background(), SearchInput{Criteria: domain.PatientSearchCriteria{Name: "Ada"}})
	require.NoError(t, err)
	snap := h.patients.Store().Snapshot()
	require.Len(t, snap.Items, 1)
	assert.Equal(t, int64(1), snap.TotalElements)
}
