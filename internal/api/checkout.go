package api

import (
	"net/http"
	"strings"

	"marketplace/internal/models"
	"marketplace/internal/service"

	"github.com/gin-gonic/gin"
)

type placeOrderRequest struct {
	PaymentMethod models.PaymentMethod `json:"payment_method" binding:"required"`
}

func (h *Handler) startCheckout(c *gin.Context) {
	view, err := h.checkout.StartCheckout(c.Request.Context(), userID(c), c.Query("product"), c.Query("plan"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) paymentOptions(c *gin.Context) {
	view, err := h.checkout.PaymentOptions(c.Request.Context(), userID(c), c.Query("product"), c.Query("plan"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// placeOrder confirms the payment method and creates a pending order
func (h *Handler) placeOrder(c *gin.Context) {
	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	placed, err := h.checkout.PlaceOrder(c.Request.Context(), service.PlaceOrderRequest{
		UserID:         userID(c),
		ProductID:      c.Query("product"),
		Plan:           c.Query("plan"),
		Method:         models.PaymentMethod(strings.TrimSpace(string(req.PaymentMethod))),
		IdempotencyKey: c.GetHeader("Idempotency-Key"),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	status := http.StatusCreated
	if placed.Replayed {
		status = http.StatusOK
	}
	c.Header("Location", placed.Next)
	c.JSON(status, placed)
}

func (h *Handler) submitContact(c *gin.Context) {
	var msg models.ContactMessage
	if err := c.ShouldBindJSON(&msg); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.contact.Submit(c.Request.Context(), msg); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"sent":    true,
		"message": "Thank you for your message. We'll get back to you soon!",
	})
}
