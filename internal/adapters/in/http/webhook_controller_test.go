package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soraaya/calcom-booking-webhook/internal/config"
	"github.com/soraaya/calcom-booking-webhook/internal/core/domain"
	"github.com/soraaya/calcom-booking-webhook/internal/core/ports/out"
)

type nopLogger struct{}

func (nopLogger) Debug(string, out.LogFields)               {}
func (nopLogger) Info(string, out.LogFields)                {}
func (nopLogger) Warn(string, out.LogFields)                {}
func (nopLogger) Error(string, out.LogFields)               {}
func (l nopLogger) WithFields(out.LogFields) out.LoggerPort { return l }
func (l nopLogger) WithModule(string) out.LoggerPort        { return l }

type fakeUseCase struct {
	availability    *domain.Availability
	availabilityErr error
	booking         *domain.Booking
	bookingErr      error

	checkCalls  int
	bookCalls   int
	lastQuery   domain.AvailabilityQuery
	lastBooking domain.BookingRequest
}

func (f *fakeUseCase) CheckAvailability(_ context.Context, query domain.AvailabilityQuery) (*domain.Availability, error) {
	f.checkCalls++
	f.lastQuery = query
	if f.availabilityErr != nil {
		return nil, f.availabilityErr
	}
	if f.availability != nil {
		return f.availability, nil
	}
	return &domain.Availability{
		TargetDate: query.TargetDate,
		Slots:      []domain.AvailableSlot{},
		Message:    "Found 0 available slots",
	}, nil
}

func (f *fakeUseCase) BookAppointment(_ context.Context, req domain.BookingRequest) (*domain.Booking, error) {
	f.bookCalls++
	f.lastBooking = req
	if f.bookingErr != nil {
		return nil, f.bookingErr
	}
	if f.booking != nil {
		return f.booking, nil
	}
	return &domain.Booking{
		UID:   "bk_123",
		Title: "build3-demo <> John Doe",
		Start: time.Date(2030, 6, 15, 14, 30, 0, 0, time.UTC),
		End:   time.Date(2030, 6, 15, 15, 0, 0, 0, time.UTC),
		Attendees: []domain.Attendee{
			{Name: "John Doe", Email: "john.doe@example.com"},
		},
	}, nil
}

func newTestRouter(useCase *fakeUseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.App.Version = "1.0.0"
	cfg.App.Timezone = "UTC"
	cfg.Cal.APIKey = "test-key"
	cfg.Cal.Username = "soraaya"
	cfg.Cal.EventTypeSlug = "build3-demo"
	cfg.Cal.BaseURL = "https://api.cal.com/v2"
	cfg.Calendar.TimeRangeDays = 7

	router := gin.New()
	NewWebhookController(useCase, cfg, nopLogger{}).RegisterRoutes(router)
	return router
}

func postJSON(router *gin.Engine, path string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func decodeError(t *testing.T, recorder *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	return resp
}

func TestRoot(t *testing.T) {
	router := newTestRouter(&fakeUseCase{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "1.0.0", body["version"])
}

func TestHealth(t *testing.T) {
	router := newTestRouter(&fakeUseCase{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		Status string `json:"status"`
		Config struct {
			APIKeySet   bool   `json:"cal_api_key_set"`
			UsernameSet bool   `json:"cal_username_set"`
			Slug        string `json:"event_type_slug"`
		} `json:"config"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.True(t, body.Config.APIKeySet)
	assert.True(t, body.Config.UsernameSet)
	assert.Equal(t, "build3-demo", body.Config.Slug)
}

func TestCheckAvailability_PastDateRejectedWithoutUpstreamCall(t *testing.T) {
	useCase := &fakeUseCase{}
	router := newTestRouter(useCase)

	recorder := postJSON(router, "/webhook/check-availability", `{"target_date": "2020-01-01"}`)

	require.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "validation_error", decodeError(t, recorder).Error)
	assert.Zero(t, useCase.checkCalls)
}

func TestCheckAvailability_MalformedDate(t *testing.T) {
	useCase := &fakeUseCase{}
	router := newTestRouter(useCase)

	recorder := postJSON(router, "/webhook/check-availability", `{"target_date": "15-06-2030"}`)

	require.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Zero(t, useCase.checkCalls)
}

func TestCheckAvailability_MissingDate(t *testing.T) {
	router := newTestRouter(&fakeUseCase{})

	recorder := postJSON(router, "/webhook/check-availability", `{}`)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestCheckAvailability_NonPositiveRange(t *testing.T) {
	useCase := &fakeUseCase{}
	router := newTestRouter(useCase)

	recorder := postJSON(router, "/webhook/check-availability", `{"target_date": "2030-06-15", "time_range_days": 0}`)

	require.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Zero(t, useCase.checkCalls)
}

func TestCheckAvailability_DefaultRangeApplied(t *testing.T) {
	useCase := &fakeUseCase{}
	router := newTestRouter(useCase)

	recorder := postJSON(router, "/webhook/check-availability", `{"target_date": "2030-06-15"}`)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, 7, useCase.lastQuery.RangeDays)
}

func TestCheckAvailability_ZeroSlotsStillSuccess(t *testing.T) {
	router := newTestRouter(&fakeUseCase{})

	recorder := postJSON(router, "/webhook/check-availability", `{"target_date": "2030-06-15"}`)

	require.Equal(t, http.StatusOK, recorder.Code)

	var resp CheckAvailabilityResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Found 0 available slots", resp.Message)
	assert.NotNil(t, resp.AvailableSlots)
	assert.Empty(t, resp.AvailableSlots)
	assert.Contains(t, recorder.Body.String(), `"available_slots":[]`)
}

func TestCheckAvailability_Success(t *testing.T) {
	targetDate := time.Date(2030, 6, 15, 0, 0, 0, 0, time.UTC)
	useCase := &fakeUseCase{
		availability: &domain.Availability{
			TargetDate: targetDate,
			Slots: []domain.AvailableSlot{
				{
					StartTime: time.Date(2030, 6, 15, 9, 0, 0, 0, time.UTC),
					EndTime:   time.Date(2030, 6, 15, 9, 30, 0, 0, time.UTC),
					Available: true,
				},
			},
			Message: "Found 1 available slots",
		},
	}
	router := newTestRouter(useCase)

	recorder := postJSON(router, "/webhook/check-availability", `{"target_date": "2030-06-15", "time_range_days": 1}`)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"target_date":"2030-06-15"`)
	assert.Contains(t, recorder.Body.String(), `"start_time":"09:00"`)
	assert.Contains(t, recorder.Body.String(), `"end_time":"09:30"`)
	assert.Contains(t, recorder.Body.String(), `"available":true`)
	assert.Equal(t, 1, useCase.lastQuery.RangeDays)
}

func TestCheckAvailability_UpstreamErrors(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"upstream", fmt.Errorf("%w: status 500", domain.ErrUpstream), http.StatusBadGateway, "upstream_error"},
		{"network", fmt.Errorf("%w: timeout", domain.ErrNetwork), http.StatusGatewayTimeout, "network_error"},
		{"not_found", fmt.Errorf("%w: slug %q", domain.ErrEventTypeNotFound, "build3-demo"), http.StatusNotFound, "event_type_not_found"},
		{"ambiguous", fmt.Errorf("%w: slug %q", domain.ErrEventTypeAmbiguous, "build3-demo"), http.StatusInternalServerError, "configuration_error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newTestRouter(&fakeUseCase{availabilityErr: tc.err})

			recorder := postJSON(router, "/webhook/check-availability", `{"target_date": "2030-06-15"}`)

			require.Equal(t, tc.wantStatus, recorder.Code)
			resp := decodeError(t, recorder)
			assert.False(t, resp.Success)
			assert.Equal(t, tc.wantCode, resp.Error)
		})
	}
}

func TestBookAppointment_MalformedTimeRejectedWithoutUpstreamCall(t *testing.T) {
	useCase := &fakeUseCase{}
	router := newTestRouter(useCase)

	recorder := postJSON(router, "/webhook/book-appointment",
		`{"target_date": "2030-06-15", "time": "25:99", "email_id": "john.doe@example.com"}`)

	require.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "validation_error", decodeError(t, recorder).Error)
	assert.Zero(t, useCase.bookCalls)
}

func TestBookAppointment_InvalidEmail(t *testing.T) {
	useCase := &fakeUseCase{}
	router := newTestRouter(useCase)

	for _, email := range []string{"not-an-email", "@example.com", "john@"} {
		recorder := postJSON(router, "/webhook/book-appointment",
			fmt.Sprintf(`{"target_date": "2030-06-15", "time": "14:30", "email_id": %q}`, email))
		assert.Equal(t, http.StatusBadRequest, recorder.Code, "email %q", email)
	}
	assert.Zero(t, useCase.bookCalls)
}

func TestBookAppointment_Success(t *testing.T) {
	useCase := &fakeUseCase{}
	router := newTestRouter(useCase)

	recorder := postJSON(router, "/webhook/book-appointment",
		`{"target_date": "2030-06-15", "time": "14:30", "email_id": "john.doe@example.com"}`)

	require.Equal(t, http.StatusOK, recorder.Code)

	var resp BookAppointmentResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "bk_123", resp.BookingID)
	assert.Equal(t, "Appointment booked successfully", resp.Message)
	require.NotNil(t, resp.AppointmentDetails)
	assert.Equal(t, "bk_123", resp.AppointmentDetails.BookingID)
	assert.Contains(t, resp.AppointmentDetails.Title, "John Doe")
	require.Len(t, resp.AppointmentDetails.Attendees, 1)
	assert.Equal(t, "john.doe@example.com", resp.AppointmentDetails.Attendees[0].Email)

	assert.Equal(t, "14:30", useCase.lastBooking.StartClock.Format("15:04"))
	assert.Equal(t, "john.doe@example.com", useCase.lastBooking.Email)
}

func TestBookAppointment_ErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"conflict", fmt.Errorf("%w: already has booking", domain.ErrSlotTaken), http.StatusConflict, "slot_taken"},
		{"not_found", fmt.Errorf("%w: slug %q", domain.ErrEventTypeNotFound, "build3-demo"), http.StatusNotFound, "event_type_not_found"},
		{"ambiguous", fmt.Errorf("%w: slug %q", domain.ErrEventTypeAmbiguous, "build3-demo"), http.StatusInternalServerError, "configuration_error"},
		{"upstream", fmt.Errorf("%w: status 500", domain.ErrUpstream), http.StatusBadGateway, "upstream_error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newTestRouter(&fakeUseCase{bookingErr: tc.err})

			recorder := postJSON(router, "/webhook/book-appointment",
				`{"target_date": "2030-06-15", "time": "14:30", "email_id": "john.doe@example.com"}`)

			require.Equal(t, tc.wantStatus, recorder.Code)
			assert.Equal(t, tc.wantCode, decodeError(t, recorder).Error)
		})
	}
}

func TestWebhookRequestIDHeader(t *testing.T) {
	router := newTestRouter(&fakeUseCase{})

	recorder := postJSON(router, "/webhook/check-availability", `{"target_date": "2030-06-15"}`)
	assert.NotEmpty(t, recorder.Header().Get("X-Request-ID"))
}
