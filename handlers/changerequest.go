package handlers

import (
	"net/http"
	"time"

	"resolvo/middleware"
	"resolvo/models"
	"resolvo/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type proposedChangesPayload struct {
	Status        *string    `json:"status"`
	PaymentStatus *string    `json:"paymentStatus"`
	TotalPrice    *float64   `json:"totalPrice"`
	ScheduledFor  *time.Time `json:"scheduledFor"`
}

func (p proposedChangesPayload) toPatch() models.BookingPatch {
	patch := models.BookingPatch{
		TotalPrice:   p.TotalPrice,
		ScheduledFor: p.ScheduledFor,
	}
	if p.Status != nil {
		s := models.BookingStatus(*p.Status)
		patch.Status = &s
	}
	if p.PaymentStatus != nil {
		ps := models.PaymentStatus(*p.PaymentStatus)
		patch.PaymentStatus = &ps
	}
	return patch
}

type submitChangeRequestPayload struct {
	ProposedChanges proposedChangesPayload `json:"proposedChanges" binding:"required"`
}

// SubmitChangeRequestHandler handles POST /api/bookings/:id/change-requests.
func (h *BookingHandler) SubmitChangeRequestHandler(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing caller identity"})
		return
	}

	var req submitChangeRequestPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, utils.CodeInvalidInput, "invalid change request payload: "+err.Error())
		return
	}

	cr, err := h.Service.SubmitChangeRequest(c.Request.Context(), c.Param("id"), actorID, req.ProposedChanges.toPatch())
	if err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cr)
}

// ListChangeRequestsHandler handles GET /api/bookings/:id/change-requests.
func (h *BookingHandler) ListChangeRequestsHandler(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing caller identity"})
		return
	}

	requests, err := h.Service.ListChangeRequests(c.Request.Context(), actorID, c.Param("id"))
	if err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"changeRequests": requests})
}

type resolveChangeRequestPayload struct {
	Decision string `json:"decision" binding:"required"`
}

// ResolveChangeRequestHandler handles PATCH /api/change-requests/:id.
func (h *BookingHandler) ResolveChangeRequestHandler(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing caller identity"})
		return
	}

	var req resolveChangeRequestPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, utils.CodeInvalidInput, "invalid decision payload: "+err.Error())
		return
	}

	updated, err := h.Service.ResolveChangeRequest(c.Request.Context(), c.Param("id"), actorID, models.ChangeDecision(req.Decision))
	if err != nil {
		h.Logger.Warn("change request resolution rejected",
			zap.String("changeRequestID", c.Param("id")),
			zap.String("actorID", actorID),
			zap.Error(err))
		utils.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// WithdrawChangeRequestHandler handles DELETE /api/change-requests/:id.
func (h *BookingHandler) WithdrawChangeRequestHandler(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing caller identity"})
		return
	}

	if err := h.Service.WithdrawChangeRequest(c.Request.Context(), c.Param("id"), actorID); err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "change request withdrawn"})
}
