package calcom

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	nurl "net/url"
	"strings"
	"time"

	"github.com/soraaya/calcom-booking-webhook/internal/config"
	"github.com/soraaya/calcom-booking-webhook/internal/core/domain"
	"github.com/soraaya/calcom-booking-webhook/internal/core/ports/out"
)

// Версии Cal.com API v2 различаются по ручкам
const (
	slotsAPIVersion    = "2024-09-04"
	bookingsAPIVersion = "2024-08-13"
)

type CalcomAdapter struct {
	client   *http.Client
	baseURL  string
	apiKey   string
	username string
	logger   out.LoggerPort
}

func NewCalcomAdapter(cfg *config.Config, logger out.LoggerPort) *CalcomAdapter {
	return &CalcomAdapter{
		client:   &http.Client{Timeout: cfg.CalTimeout()},
		baseURL:  strings.TrimRight(cfg.Cal.BaseURL, "/"),
		apiKey:   cfg.Cal.APIKey,
		username: cfg.Cal.Username,
		logger:   logger,
	}
}

func (a *CalcomAdapter) GetMe(ctx context.Context) (*out.User, error) {
	env, status, err := a.send(ctx, http.MethodGet, "/me", nil, "", nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, a.upstreamError("me", status, env)
	}

	var user out.User
	if err := json.Unmarshal(env.Data, &user); err != nil {
		return nil, fmt.Errorf("%w: failed to decode user: %v", domain.ErrUpstream, err)
	}

	return &user, nil
}

func (a *CalcomAdapter) GetEventTypes(ctx context.Context) ([]domain.EventType, error) {
	a.logger.Info("calcom.event_types.fetch", out.LogFields{
		"username": a.username,
	})

	query := nurl.Values{}
	query.Add("username", a.username)

	env, status, err := a.send(ctx, http.MethodGet, "/event-types", query, "", nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, a.upstreamError("event_types", status, env)
	}

	eventTypes, err := decodeEventTypes(env.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode event types: %v", domain.ErrUpstream, err)
	}

	a.logger.Debug("calcom.event_types.fetch_success", out.LogFields{
		"count": len(eventTypes),
	})

	return eventTypes, nil
}

func (a *CalcomAdapter) GetTeams(ctx context.Context) ([]domain.Team, error) {
	a.logger.Info("calcom.teams.fetch", out.LogFields{})

	env, status, err := a.send(ctx, http.MethodGet, "/teams", nil, "", nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, a.upstreamError("teams", status, env)
	}

	var teams []domain.Team
	if err := json.Unmarshal(env.Data, &teams); err != nil {
		return nil, fmt.Errorf("%w: failed to decode teams: %v", domain.ErrUpstream, err)
	}

	return teams, nil
}

func (a *CalcomAdapter) GetTeamEventTypes(ctx context.Context, teamID int64) ([]domain.EventType, error) {
	a.logger.Info("calcom.team_event_types.fetch", out.LogFields{
		"teamId": teamID,
	})

	path := fmt.Sprintf("/teams/%d/event-types", teamID)
	env, status, err := a.send(ctx, http.MethodGet, path, nil, "", nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, a.upstreamError("team_event_types", status, env)
	}

	eventTypes, err := decodeEventTypes(env.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode team event types: %v", domain.ErrUpstream, err)
	}

	return eventTypes, nil
}

func (a *CalcomAdapter) GetAvailableSlots(ctx context.Context, q out.SlotQuery) ([]time.Time, error) {
	a.logger.Info("calcom.slots.fetch", out.LogFields{
		"eventTypeSlug": q.EventType.Slug,
		"start":         q.Start.Format("2006-01-02"),
		"end":           q.End.Format("2006-01-02"),
	})

	query := nurl.Values{}
	query.Add("eventTypeSlug", q.EventType.Slug)
	if q.EventType.IsTeam() {
		query.Add("teamSlug", q.EventType.TeamSlug)
	} else {
		query.Add("username", a.username)
	}
	query.Add("start", q.Start.Format("2006-01-02"))
	// Параметр end включает указанный день целиком
	query.Add("end", q.End.AddDate(0, 0, -1).Format("2006-01-02"))
	query.Add("timeZone", q.Timezone)

	env, status, err := a.send(ctx, http.MethodGet, "/slots", query, slotsAPIVersion, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, a.upstreamError("slots", status, env)
	}

	var days slotsData
	if err := json.Unmarshal(env.Data, &days); err != nil {
		return nil, fmt.Errorf("%w: failed to decode slots: %v", domain.ErrUpstream, err)
	}

	var starts []time.Time
	for day, entries := range days {
		for _, entry := range entries {
			start, err := time.Parse(time.RFC3339, entry.Start)
			if err != nil {
				a.logger.Warn("calcom.slots.skip_unparsable", out.LogFields{
					"day":   day,
					"start": entry.Start,
				})
				continue
			}
			starts = append(starts, start)
		}
	}

	a.logger.Debug("calcom.slots.fetch_success", out.LogFields{
		"count": len(starts),
	})

	return starts, nil
}

func (a *CalcomAdapter) CreateBooking(ctx context.Context, req out.CreateBookingRequest) (*domain.Booking, error) {
	a.logger.Info("calcom.booking.create", out.LogFields{
		"eventTypeId": req.EventType.ID,
		"start":       req.Start.UTC().Format(time.RFC3339),
		"email":       req.Attendee.Email,
	})

	payload := createBookingPayload{
		EventTypeID: req.EventType.ID,
		Start:       req.Start.UTC().Format("2006-01-02T15:04:05Z"),
		Attendee: attendeePayload{
			Name:     req.Attendee.Name,
			Email:    req.Attendee.Email,
			TimeZone: req.Timezone,
			Language: "en",
		},
		Metadata: map[string]string{},
	}

	env, status, err := a.send(ctx, http.MethodPost, "/bookings", nil, bookingsAPIVersion, payload)
	if err != nil {
		return nil, err
	}

	if status != http.StatusCreated && status != http.StatusOK {
		message := env.ErrorMessage()
		if isConflictMessage(status, message) {
			a.logger.Warn("calcom.booking.conflict", out.LogFields{
				"status":  status,
				"message": message,
			})
			return nil, fmt.Errorf("%w: %s", domain.ErrSlotTaken, message)
		}
		return nil, a.upstreamError("booking", status, env)
	}

	var booking bookingData
	if err := json.Unmarshal(env.Data, &booking); err != nil {
		return nil, fmt.Errorf("%w: failed to decode booking: %v", domain.ErrUpstream, err)
	}

	a.logger.Debug("calcom.booking.create_success", out.LogFields{
		"bookingId": booking.UID,
	})

	return booking.toDomain(), nil
}

// send выполняет запрос к Cal.com и декодирует конверт ответа.
// Версия API передается заголовком только для ручек, которые ее требуют.
func (a *CalcomAdapter) send(ctx context.Context, method, path string, query nurl.Values, apiVersion string, body interface{}) (*envelope, int, error) {
	url := a.baseURL + path

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: failed to encode request: %v", domain.ErrUpstream, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: failed to create request: %v", domain.ErrUpstream, err)
	}

	if query != nil {
		req.URL.RawQuery = query.Encode()
	}

	req.Header.Set("Authorization", "Bearer "+a.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if apiVersion != "" {
		req.Header.Set("cal-api-version", apiVersion)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		a.logger.Error("calcom.request.failed", out.LogFields{
			"method": method,
			"path":   path,
			"error":  err.Error(),
		})
		return nil, 0, fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		a.logger.Error("calcom.response.decode_failed", out.LogFields{
			"method": method,
			"path":   path,
			"status": resp.StatusCode,
			"error":  err.Error(),
		})
		return nil, resp.StatusCode, fmt.Errorf("%w: failed to decode response: %v", domain.ErrUpstream, err)
	}

	return &env, resp.StatusCode, nil
}

func (a *CalcomAdapter) upstreamError(operation string, status int, env *envelope) error {
	message := env.ErrorMessage()
	a.logger.Error("calcom."+operation+".fetch_failed", out.LogFields{
		"status":  status,
		"message": message,
	})

	if message == "" {
		return fmt.Errorf("%w: unexpected status code: %d", domain.ErrUpstream, status)
	}
	return fmt.Errorf("%w: status %d: %s", domain.ErrUpstream, status, message)
}

// isConflictMessage распознает ответы Cal.com, означающие занятый слот
func isConflictMessage(status int, message string) bool {
	if status == http.StatusConflict {
		return true
	}
	if status != http.StatusBadRequest {
		return false
	}

	lower := strings.ToLower(message)
	return strings.Contains(lower, "already has booking") ||
		strings.Contains(lower, "no_available_users_found") ||
		strings.Contains(lower, "not available")
}
