package controller

import (
	"net/http"
	"voluntariado-backend/middelware"
	"voluntariado-backend/models"
	"voluntariado-backend/services"
	"voluntariado-backend/utils/logger"

	"github.com/gin-gonic/gin"
)

// maxWebhookBytes bounds the PayPal webhook body read into memory
const maxWebhookBytes = 1 << 20

type DonationController struct {
	handler
	donationService services.DonationServiceInterface
}

func NewDonationController(svc services.ServiceContainerInterface, logger logger.Logger) *DonationController {
	return &DonationController{
		handler:         newHandler(logger),
		donationService: svc.GetDonationService(),
	}
}

// CreateOrder handles POST /api/donations/orders
// @Summary Start a donation
// @Description Creates a PayPal order and a pending donation. Returns the PayPal approval link.
// @Tags Donations
// @Accept json
// @Produce json
// @Param request body models.CreateDonationRequest true "Donation"
// @Success 201 {object} models.APIResponse{data=models.DonationOrder} "Donation order created successfully"
// @Failure 400 {object} models.APIResponse "Bad Request - Invalid amount or organization not verified"
// @Failure 402 {object} models.APIResponse "Payment Required - PayPal rejected the order"
// @Failure 404 {object} models.APIResponse "Not Found - Organization does not exist"
// @Router /donations/orders [post]
func (h *DonationController) CreateOrder(c *gin.Context) {
	var req models.CreateDonationRequest
	if !h.bindJSON(c, &req) {
		return
	}
	var donorID int64
	if claims, ok := middelware.ClaimsFromContext(c); ok {
		donorID = claims.UserID
	}

	order, err := h.donationService.CreateOrder(c.Request.Context(), donorID, &req)
	if err != nil {
		h.respondError(c, "Failed to create donation order", err)
		return
	}
	h.ok(c, http.StatusCreated, "Donation order created successfully", order)
}

// CaptureOrder handles POST /api/donations/orders/{orderId}/capture
// @Summary Capture an approved donation
// @Description Settles the donation once. Capturing a settled order returns it unchanged.
// @Tags Donations
// @Produce json
// @Param orderId path string true "PayPal order ID"
// @Success 200 {object} models.APIResponse{data=models.Donation} "Donation captured successfully"
// @Failure 402 {object} models.APIResponse "Payment Required - Capture declined"
// @Failure 404 {object} models.APIResponse "Not Found - Unknown order"
// @Failure 409 {object} models.APIResponse "Conflict - Donation already failed or refunded"
// @Router /donations/orders/{orderId}/capture [post]
func (h *DonationController) CaptureOrder(c *gin.Context) {
	orderID := c.Param("orderId")
	if orderID == "" {
		h.fail(c, http.StatusBadRequest, "Invalid orderId", "ValidationError", "orderId is required")
		return
	}

	donation, err := h.donationService.CaptureOrder(c.Request.Context(), orderID)
	if err != nil {
		h.respondError(c, "Failed to capture donation", err)
		return
	}
	h.ok(c, http.StatusOK, "Donation captured successfully", donation)
}

// Webhook handles POST /api/donations/webhook
// @Summary PayPal webhook
// @Description Verifies the transmission signature with PayPal, then applies capture completed, denied and refunded events
// @Tags Donations
// @Accept json
// @Produce json
// @Success 200 {object} models.APIResponse "Webhook processed"
// @Failure 400 {object} models.APIResponse "Bad Request - Signature verification failed"
// @Router /donations/webhook [post]
func (h *DonationController) Webhook(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBytes)
	body, err := c.GetRawData()
	if err != nil {
		h.fail(c, http.StatusBadRequest, "Invalid webhook body", "ValidationError", err.Error())
		return
	}

	if err := h.donationService.HandleWebhook(c.Request.Context(), c.Request.Header, body); err != nil {
		h.respondError(c, "Failed to process webhook", err)
		return
	}
	h.ok(c, http.StatusOK, "Webhook processed", nil)
}

// GetMyDonations handles GET /api/donations/mine
// @Summary Donations I made
// @Tags Donations
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.APIResponse{data=[]models.Donation} "Donations retrieved successfully"
// @Router /donations/mine [get]
func (h *DonationController) GetMyDonations(c *gin.Context) {
	claims, ok := h.claims(c)
	if !ok {
		return
	}

	donations, err := h.donationService.GetMyDonations(c.Request.Context(), claims.UserID)
	if err != nil {
		h.respondError(c, "Failed to get donations", err)
		return
	}
	h.ok(c, http.StatusOK, "Donations retrieved successfully", donations)
}
