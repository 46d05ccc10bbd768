package handlers

import (
	"net/http"

	"resolvo/services/booking"
	"resolvo/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler exposes moderation endpoints. Routes are guarded by the
// admin middleware; the handlers assume an authenticated admin.
type AdminHandler struct {
	Bookings booking.LifecycleService
	Logger   *zap.Logger
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(bookings booking.LifecycleService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{Bookings: bookings, Logger: logger}
}

// ListAllBookingsHandler handles GET /api/admin/bookings.
func (h *AdminHandler) ListAllBookingsHandler(c *gin.Context) {
	limit, offset := paginationParams(c)
	bookings, err := h.Bookings.ListAllBookings(c.Request.Context(), limit, offset)
	if err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// ForceCancelBookingHandler handles POST /api/admin/bookings/:id/cancel.
func (h *AdminHandler) ForceCancelBookingHandler(c *gin.Context) {
	updated, err := h.Bookings.ForceCancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.Logger.Warn("force cancel rejected",
			zap.String("bookingID", c.Param("id")), zap.Error(err))
		utils.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}
