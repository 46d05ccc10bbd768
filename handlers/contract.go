package handlers

import (
	"net/http"

	"resolvo/middleware"
	"resolvo/models"
	"resolvo/services/contract"
	"resolvo/services/storage"
	"resolvo/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ContractHandler exposes contract issuance and response over HTTP.
type ContractHandler struct {
	Service contract.ContractService
	Storage storage.StorageService
	Logger  *zap.Logger
}

// NewContractHandler constructs a ContractHandler.
func NewContractHandler(svc contract.ContractService, store storage.StorageService, logger *zap.Logger) *ContractHandler {
	return &ContractHandler{Service: svc, Storage: store, Logger: logger}
}

type createContractRequest struct {
	BookingID   string `json:"bookingId"`
	ListingID   string `json:"listingId"`
	RecipientID string `json:"recipientId" binding:"required"`
	Terms       string `json:"terms" binding:"required"`
	Send        bool   `json:"send"`
}

// CreateContractHandler handles POST /api/contracts.
func (h *ContractHandler) CreateContractHandler(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing caller identity"})
		return
	}

	var req createContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, utils.CodeInvalidInput, "invalid contract payload: "+err.Error())
		return
	}

	created, err := h.Service.CreateContract(c.Request.Context(), contract.CreateContractInput{
		BookingID:   req.BookingID,
		ListingID:   req.ListingID,
		IssuerID:    actorID,
		RecipientID: req.RecipientID,
		Terms:       req.Terms,
		Send:        req.Send,
	})
	if err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GetContractHandler handles GET /api/contracts/:id.
func (h *ContractHandler) GetContractHandler(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing caller identity"})
		return
	}

	contract, err := h.Service.GetContract(c.Request.Context(), actorID, c.Param("id"))
	if err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, contract)
}

// ListContractsByBookingHandler handles GET /api/bookings/:id/contracts.
func (h *ContractHandler) ListContractsByBookingHandler(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing caller identity"})
		return
	}

	contracts, err := h.Service.ListByBooking(c.Request.Context(), actorID, c.Param("id"))
	if err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contracts": contracts})
}

type respondContractRequest struct {
	Action        string  `json:"action" binding:"required"`
	SignatureData *string `json:"signatureData"`
}

// RespondContractHandler handles PATCH /api/contracts/:id/respond.
func (h *ContractHandler) RespondContractHandler(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing caller identity"})
		return
	}

	var req respondContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, utils.CodeInvalidInput, "invalid response payload: "+err.Error())
		return
	}

	updated, err := h.Service.Respond(c.Request.Context(), c.Param("id"), actorID, models.ContractAction(req.Action), req.SignatureData)
	if err != nil {
		h.Logger.Warn("contract response rejected",
			zap.String("contractID", c.Param("id")),
			zap.String("actorID", actorID),
			zap.Error(err))
		utils.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// UploadSignatureHandler handles POST /api/contracts/signature. The returned
// reference is what a subsequent respond call carries as signatureData.
func (h *ContractHandler) UploadSignatureHandler(c *gin.Context) {
	if _, ok := middleware.ActorID(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing caller identity"})
		return
	}

	fileHeader, err := c.FormFile("signature")
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, utils.CodeInvalidInput, "signature file is required")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, utils.CodeInvalidInput, "could not read signature file")
		return
	}
	defer file.Close()

	publicID, err := h.Storage.UploadSignature(c.Request.Context(), file)
	if err != nil {
		h.Logger.Error("signature upload failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store signature"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"signatureData": publicID})
}

// GetSignatureURLHandler handles GET /api/contracts/signature. It resolves a
// stored signatureData reference to a viewable URL.
func (h *ContractHandler) GetSignatureURLHandler(c *gin.Context) {
	if _, ok := middleware.ActorID(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing caller identity"})
		return
	}

	publicID := c.Query("publicId")
	if publicID == "" {
		utils.JSONError(c, http.StatusBadRequest, utils.CodeInvalidInput, "publicId is required")
		return
	}

	url, err := h.Storage.GetDownloadURL(c.Request.Context(), publicID)
	if err != nil {
		h.Logger.Error("signature URL resolution failed",
			zap.String("publicID", publicID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve signature URL"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}
