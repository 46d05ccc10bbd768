package handlers

import (
	"net/http"
	"strconv"
	"time"

	"resolvo/middleware"
	"resolvo/models"
	"resolvo/services/booking"
	"resolvo/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler exposes the booking lifecycle over HTTP. Actor identity
// comes from the auth middleware and is passed explicitly into the service.
type BookingHandler struct {
	Service booking.LifecycleService
	Logger  *zap.Logger
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(svc booking.LifecycleService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{Service: svc, Logger: logger}
}

type createBookingRequest struct {
	ResolverID   string  `json:"resolverId" binding:"required"`
	ServiceID    string  `json:"serviceId" binding:"required"`
	TotalPrice   float64 `json:"totalPrice"`
	ScheduledFor string  `json:"scheduledFor" binding:"required"`
}

// CreateBookingHandler handles POST /api/bookings.
func (h *BookingHandler) CreateBookingHandler(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing caller identity"})
		return
	}

	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, utils.CodeInvalidInput, "invalid booking payload: "+err.Error())
		return
	}

	created, err := h.Service.CreateBooking(c.Request.Context(), booking.CreateBookingInput{
		ClientID:     actorID,
		ResolverID:   req.ResolverID,
		ServiceID:    req.ServiceID,
		TotalPrice:   req.TotalPrice,
		ScheduledFor: req.ScheduledFor,
	})
	if err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GetBookingHandler handles GET /api/bookings/:id.
func (h *BookingHandler) GetBookingHandler(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing caller identity"})
		return
	}

	b, err := h.Service.GetBooking(c.Request.Context(), actorID, c.Param("id"))
	if err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// ListBookingsHandler handles GET /api/bookings.
func (h *BookingHandler) ListBookingsHandler(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing caller identity"})
		return
	}

	limit, offset := paginationParams(c)
	bookings, err := h.Service.ListBookings(c.Request.Context(), actorID, limit, offset)
	if err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

type updateBookingRequest struct {
	Status          *string    `json:"status"`
	PaymentStatus   *string    `json:"paymentStatus"`
	TotalPrice      *float64   `json:"totalPrice"`
	ScheduledFor    *time.Time `json:"scheduledFor"`
	PaymentRef      *string    `json:"paymentRef"`
	ExpectedVersion int64      `json:"expectedVersion" binding:"required"`
}

func (r updateBookingRequest) toPatch() models.BookingPatch {
	patch := models.BookingPatch{
		TotalPrice:   r.TotalPrice,
		ScheduledFor: r.ScheduledFor,
		PaymentRef:   r.PaymentRef,
	}
	if r.Status != nil {
		s := models.BookingStatus(*r.Status)
		patch.Status = &s
	}
	if r.PaymentStatus != nil {
		p := models.PaymentStatus(*r.PaymentStatus)
		patch.PaymentStatus = &p
	}
	return patch
}

// UpdateBookingHandler handles PATCH /api/bookings/:id. The body must carry
// expectedVersion from a prior read; a stale version returns CONFLICT.
func (h *BookingHandler) UpdateBookingHandler(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing caller identity"})
		return
	}

	var req updateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, utils.CodeInvalidInput, "invalid update payload: "+err.Error())
		return
	}

	updated, err := h.Service.UpdateBooking(c.Request.Context(), actorID, c.Param("id"), req.toPatch(), req.ExpectedVersion)
	if err != nil {
		h.Logger.Warn("booking update rejected",
			zap.String("bookingID", c.Param("id")),
			zap.String("actorID", actorID),
			zap.Error(err))
		utils.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func paginationParams(c *gin.Context) (limit, offset int64) {
	limit = 50
	if v, err := strconv.ParseInt(c.Query("limit"), 10, 64); err == nil && v > 0 && v <= 200 {
		limit = v
	}
	if v, err := strconv.ParseInt(c.Query("offset"), 10, 64); err == nil && v >= 0 {
		offset = v
	}
	return limit, offset
}
