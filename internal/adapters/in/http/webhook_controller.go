package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/soraaya/calcom-booking-webhook/internal/config"
	"github.com/soraaya/calcom-booking-webhook/internal/core/domain"
	"github.com/soraaya/calcom-booking-webhook/internal/core/json_types"
	"github.com/soraaya/calcom-booking-webhook/internal/core/ports/in"
	"github.com/soraaya/calcom-booking-webhook/internal/core/ports/out"
)

const requestIDKey = "requestId"

type WebhookController struct {
	useCase  in.SchedulingUseCase
	cfg      *config.Config
	logger   out.LoggerPort
	location *time.Location
}

func NewWebhookController(useCase in.SchedulingUseCase, cfg *config.Config, logger out.LoggerPort) *WebhookController {
	return &WebhookController{
		useCase:  useCase,
		cfg:      cfg,
		logger:   logger,
		location: cfg.Location(),
	}
}

func (c *WebhookController) RegisterRoutes(router *gin.Engine) {
	router.GET("/", c.root)
	router.GET("/health", c.health)

	webhook := router.Group("/webhook")
	webhook.Use(c.requestID())
	{
		webhook.POST("/check-availability", c.checkAvailability)
		webhook.POST("/book-appointment", c.bookAppointment)
	}
}

func (c *WebhookController) root(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"message": "Cal.com Webhook API is running",
		"version": c.cfg.App.Version,
		"status":  "healthy",
	})
}

func (c *WebhookController) health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"config": gin.H{
			"cal_api_key_set":  c.cfg.Cal.APIKey != "",
			"cal_username_set": c.cfg.Cal.Username != "",
			"event_type_slug":  c.cfg.Cal.EventTypeSlug,
			"base_url":         c.cfg.Cal.BaseURL,
		},
	})
}

func (c *WebhookController) checkAvailability(ctx *gin.Context) {
	var req CheckAvailabilityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.renderValidationError(ctx, err)
		return
	}

	query, err := req.Validate(time.Now().In(c.location), c.cfg.Calendar.TimeRangeDays)
	if err != nil {
		c.renderValidationError(ctx, err)
		return
	}

	availability, err := c.useCase.CheckAvailability(ctx.Request.Context(), query)
	if err != nil {
		c.renderError(ctx, err)
		return
	}

	slots := make([]TimeSlotResponse, 0, len(availability.Slots))
	for _, slot := range availability.Slots {
		slots = append(slots, TimeSlotResponse{
			StartTime: json_types.ClockTime{Time: slot.StartTime},
			EndTime:   json_types.ClockTime{Time: slot.EndTime},
			Available: slot.Available,
		})
	}

	ctx.JSON(http.StatusOK, CheckAvailabilityResponse{
		Success:           true,
		TargetDate:        json_types.Date{Date: availability.TargetDate},
		AvailableSlots:    slots,
		Message:           availability.Message,
		FormattedResponse: availability.FormattedResponse,
	})
}

func (c *WebhookController) bookAppointment(ctx *gin.Context) {
	var req BookAppointmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.renderValidationError(ctx, err)
		return
	}

	bookingReq, err := req.Validate(time.Now().In(c.location))
	if err != nil {
		c.renderValidationError(ctx, err)
		return
	}

	booking, err := c.useCase.BookAppointment(ctx.Request.Context(), bookingReq)
	if err != nil {
		c.renderError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, BookAppointmentResponse{
		Success:   true,
		BookingID: booking.UID,
		Message:   "Appointment booked successfully",
		AppointmentDetails: &AppointmentDetails{
			BookingID: booking.UID,
			StartTime: booking.Start.Format(time.RFC3339),
			EndTime:   booking.End.Format(time.RFC3339),
			Title:     booking.Title,
			Attendees: booking.Attendees,
		},
	})
}

func (c *WebhookController) renderValidationError(ctx *gin.Context, err error) {
	c.logger.Warn("webhook.request.invalid", out.LogFields{
		"requestId": ctx.GetString(requestIDKey),
		"path":      ctx.FullPath(),
		"error":     err.Error(),
	})

	ctx.JSON(http.StatusBadRequest, ErrorResponse{
		Success: false,
		Error:   "validation_error",
		Message: err.Error(),
	})
}

// renderError транслирует ошибки клиентского слоя в HTTP-статусы.
// Наружу уходит только сообщение, детали остаются в логе.
func (c *WebhookController) renderError(ctx *gin.Context, err error) {
	c.logger.Error("webhook.request.failed", out.LogFields{
		"requestId": ctx.GetString(requestIDKey),
		"path":      ctx.FullPath(),
		"error":     err.Error(),
	})

	switch {
	case errors.Is(err, domain.ErrEventTypeNotFound):
		ctx.JSON(http.StatusNotFound, ErrorResponse{
			Success: false,
			Error:   "event_type_not_found",
			Message: err.Error(),
		})
	case errors.Is(err, domain.ErrEventTypeAmbiguous):
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{
			Success: false,
			Error:   "configuration_error",
			Message: err.Error(),
		})
	case errors.Is(err, domain.ErrSlotTaken):
		ctx.JSON(http.StatusConflict, ErrorResponse{
			Success: false,
			Error:   "slot_taken",
			Message: err.Error(),
		})
	case errors.Is(err, domain.ErrNetwork):
		ctx.JSON(http.StatusGatewayTimeout, ErrorResponse{
			Success: false,
			Error:   "network_error",
			Message: err.Error(),
		})
	case errors.Is(err, domain.ErrUpstream):
		ctx.JSON(http.StatusBadGateway, ErrorResponse{
			Success: false,
			Error:   "upstream_error",
			Message: err.Error(),
		})
	default:
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{
			Success: false,
			Error:   "internal_error",
			Message: "internal server error",
		})
	}
}

func (c *WebhookController) requestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := uuid.New().String()
		ctx.Set(requestIDKey, id)
		ctx.Header("X-Request-ID", id)
		ctx.Next()
	}
}
