package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Abhishek-Anvekar/healthcare/internal/delivery/dto"
	"github.com/Abhishek-Anvekar/healthcare/internal/usecase"
	"github.com/Abhishek-Anvekar/healthcare/pkg/response"
	"github.com/Abhishek-Anvekar/healthcare/pkg/validator"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeUsecase returns a canned response or error for every operation.
type fakeUsecase struct {
	usecase.AppointmentUsecase

	resp     *dto.AppointmentResponse
	list     *dto.AppointmentListResponse
	err      error
	byDoctor bool
	reason   string
}

func (f *fakeUsecase) Book(ctx context.Context, req *dto.BookAppointmentRequest) (*dto.AppointmentResponse, error) {
	return f.resp, f.err
}

func (f *fakeUsecase) Confirm(ctx context.Context, id string) (*dto.AppointmentResponse, error) {
	return f.resp, f.err
}

func (f *fakeUsecase) Reject(ctx context.Context, id, reason string) (*dto.AppointmentResponse, error) {
	f.reason = reason
	return f.resp, f.err
}

func (f *fakeUsecase) Cancel(ctx context.Context, id string, byDoctor bool) (*dto.AppointmentResponse, error) {
	f.byDoctor = byDoctor
	return f.resp, f.err
}

func (f *fakeUsecase) GetByID(ctx context.Context, id string) (*dto.AppointmentResponse, error) {
	return f.resp, f.err
}

func (f *fakeUsecase) FindBetween(ctx context.Context, from, to time.Time) (*dto.AppointmentListResponse, error) {
	return f.list, f.err
}

func handlerForTest(f *fakeUsecase) *AppointmentHandler {
	return NewAppointmentHandler(f, validator.NewValidator())
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestBookHandler_Created(t *testing.T) {
	f := &fakeUsecase{resp: &dto.AppointmentResponse{ID: "appt-1", Status: "PENDING"}}
	h := handlerForTest(f)

	body := `{"doctor_id":"doc-1","patient_id":"pat-1","start_time":"2026-09-01T10:00:00Z","duration_minutes":30}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Book(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)
}

func TestBookHandler_InvalidBody(t *testing.T) {
	h := handlerForTest(&fakeUsecase{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments", strings.NewReader("{{"))
	rec := httptest.NewRecorder()
	h.Book(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBookHandler_ValidationFailure(t *testing.T) {
	h := handlerForTest(&fakeUsecase{})

	// duration_minutes missing entirely
	body := `{"doctor_id":"doc-1","patient_id":"pat-1","start_time":"2026-09-01T10:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Book(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, "Validation failed", resp.Message)
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		err      error
		expected int
	}{
		{usecase.ErrAppointmentNotFound, http.StatusNotFound},
		{usecase.ErrInvalidDuration, http.StatusBadRequest},
		{usecase.ErrInvalidDoctor, http.StatusBadRequest},
		{usecase.ErrInvalidPatient, http.StatusBadRequest},
		{usecase.ErrSlotUnavailable, http.StatusConflict},
		{usecase.ErrAlreadyBooked, http.StatusConflict},
		{usecase.ErrNotPending, http.StatusConflict},
		{usecase.ErrNotConfirmed, http.StatusConflict},
		{usecase.ErrNotReschedulable, http.StatusConflict},
		{usecase.ErrCompletedCannotCancel, http.StatusConflict},
		{context.DeadlineExceeded, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			h := handlerForTest(&fakeUsecase{err: tc.err})

			req := httptest.NewRequest(http.MethodPut, "/api/v1/appointments/appt-1/confirm", nil)
			req = mux.SetURLVars(req, map[string]string{"id": "appt-1"})
			rec := httptest.NewRecorder()
			h.Confirm(rec, req)

			assert.Equal(t, tc.expected, rec.Code)
			assert.False(t, decodeResponse(t, rec).Success)
		})
	}
}

func TestCancelHandler_ParsesByDoctorFlag(t *testing.T) {
	f := &fakeUsecase{resp: &dto.AppointmentResponse{ID: "appt-1", Status: "CANCELLED"}}
	h := handlerForTest(f)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/appointments/appt-1/cancel?byDoctor=true", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "appt-1"})
	rec := httptest.NewRecorder()
	h.Cancel(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, f.byDoctor)
}

func TestRejectHandler_PassesReason(t *testing.T) {
	f := &fakeUsecase{resp: &dto.AppointmentResponse{ID: "appt-1", Status: "REJECTED"}}
	h := handlerForTest(f)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/appointments/appt-1/reject?reason=doctor+unavailable", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "appt-1"})
	rec := httptest.NewRecorder()
	h.Reject(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "doctor unavailable", f.reason)
}

func TestSearchHandler_RequiresRFC3339Window(t *testing.T) {
	f := &fakeUsecase{list: &dto.AppointmentListResponse{}}
	h := handlerForTest(f)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments/search?from=yesterday&to=2026-09-01T10:00:00Z", nil)
	rec := httptest.NewRecorder()
	h.Search(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/appointments/search?from=2026-09-01T00:00:00Z&to=2026-09-01T10:00:00Z", nil)
	rec = httptest.NewRecorder()
	h.Search(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
