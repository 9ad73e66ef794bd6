package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fieldworks/service-scheduling/internal/apperr"
	"github.com/fieldworks/service-scheduling/internal/service/booking"
)

type stubBookingUsecase struct {
	fn func(ctx context.Context, jobID, engineerID int64, date time.Time, source booking.Source) error
}

func (s *stubBookingUsecase) Confirm(ctx context.Context, jobID, engineerID int64, date time.Time, source booking.Source) error {
	return s.fn(ctx, jobID, engineerID, date, source)
}

func TestBookingConfirm_OK(t *testing.T) {
	t.Parallel()

	h := NewBookingHandler(nil, &stubBookingUsecase{
		fn: func(_ context.Context, jobID, engineerID int64, date time.Time, source booking.Source) error {
			require.Equal(t, int64(11), jobID)
			require.Equal(t, int64(3), engineerID)
			require.Equal(t, time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC), date)
			require.Equal(t, booking.SourceAdminDirect, source)
			return nil
		},
	})

	body := `{"job_id":11,"engineer_id":3,"date":"2026-09-07"}`
	req := httptest.NewRequest(http.MethodPost, "/bookings/confirm", strings.NewReader(body))
	rr := httptest.NewRecorder()

	h.Confirm(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp confirmBookingResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.Equal(t, "scheduled", resp.Status)
	require.Equal(t, "2026-09-07", resp.Date)
}

func TestBookingConfirm_BadDate(t *testing.T) {
	t.Parallel()

	h := NewBookingHandler(nil, &stubBookingUsecase{
		fn: func(context.Context, int64, int64, time.Time, booking.Source) error {
			t.Fatal("usecase must not be called")
			return nil
		},
	})

	body := `{"job_id":11,"engineer_id":3,"date":"next tuesday"}`
	req := httptest.NewRequest(http.MethodPost, "/bookings/confirm", strings.NewReader(body))
	rr := httptest.NewRecorder()

	h.Confirm(rr, req)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestBookingConfirm_ConflictReasons(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{"not available", apperr.ErrNotAvailableOnDate, "engineer not available on that date"},
		{"at capacity", apperr.ErrAtCapacity, "engineer at capacity for that date"},
		{"exceeds hours", apperr.ErrExceedsWorkingHours, "job exceeds engineer working hours"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewBookingHandler(nil, &stubBookingUsecase{
				fn: func(context.Context, int64, int64, time.Time, booking.Source) error {
					return tc.err
				},
			})

			body := `{"job_id":11,"engineer_id":3,"date":"2026-09-07"}`
			req := httptest.NewRequest(http.MethodPost, "/bookings/confirm", strings.NewReader(body))
			rr := httptest.NewRecorder()

			h.Confirm(rr, req)

			require.Equal(t, http.StatusConflict, rr.Code)
			var resp ErrorResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
			require.Equal(t, tc.wantMsg, resp.Error, "each conflict reason keeps its own actionable message")
		})
	}
}

func TestBookingConfirm_NotFound(t *testing.T) {
	t.Parallel()

	h := NewBookingHandler(nil, &stubBookingUsecase{
		fn: func(context.Context, int64, int64, time.Time, booking.Source) error {
			return apperr.ErrNotFound
		},
	})

	body := `{"job_id":999,"engineer_id":3,"date":"2026-09-07"}`
	req := httptest.NewRequest(http.MethodPost, "/bookings/confirm", strings.NewReader(body))
	rr := httptest.NewRecorder()

	h.Confirm(rr, req)
	require.Equal(t, http.StatusNotFound, rr.Code)
}
