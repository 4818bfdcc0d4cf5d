package api

import (
	"net/http"
	"strconv"

	"marketplace/internal/service"
	"marketplace/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type passwordRequest struct {
	Password string `json:"password"`
	Confirm  string `json:"confirm_password"`
}

type playgroundRequest struct {
	Input string `json:"input"`
}

const upstreamStatusHeader = "X-Upstream-Status"

func (h *Handler) overview(c *gin.Context) {
	ov, err := h.accounts.Overview(c.Request.Context(), userID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ov)
}

// listOrders still renders an empty list when the store fails
func (h *Handler) listOrders(c *gin.Context) {
	list, err := h.orders.ListOrders(c.Request.Context(), userID(c))
	if err != nil {
		util.Ctx(c.Request.Context()).Error("Failed to load orders", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":  "Failed to load orders",
			"orders": list.Orders,
		})
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) getOrder(c *gin.Context) {
	detail, err := h.payments.GetOrder(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *Handler) payOrder(c *gin.Context) {
	result, err := h.payments.PayOrder(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	message := "Payment successful!"
	if !result.Changed {
		message = "Order already paid"
	}
	c.JSON(http.StatusOK, gin.H{
		"order":             result.Order,
		"changed":           result.Changed,
		"message":           message,
		"next":              result.Next,
		"redirect_after_ms": result.RedirectAfter.Milliseconds(),
	})
}

func (h *Handler) billing(c *gin.Context) {
	summary, err := h.orders.Billing(c.Request.Context(), userID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *Handler) getProfile(c *gin.Context) {
	profile, err := h.accounts.GetProfile(c.Request.Context(), userID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *Handler) updateProfile(c *gin.Context) {
	var in service.ProfileInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}

	profile, err := h.accounts.UpdateProfile(c.Request.Context(), userID(c), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *Handler) updatePassword(c *gin.Context) {
	var req passwordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.gateway.UpdatePassword(c.Request.Context(), userID(c), req.Password, req.Confirm); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}

func (h *Handler) getPreferences(c *gin.Context) {
	prefs, err := h.accounts.GetPreferences(c.Request.Context(), userID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, prefs)
}

func (h *Handler) updatePreferences(c *gin.Context) {
	var in service.PreferencesInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}

	prefs, err := h.accounts.UpdatePreferences(c.Request.Context(), userID(c), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, prefs)
}

func (h *Handler) submitTicket(c *gin.Context) {
	var in service.TicketInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}

	identity := currentUser(c)
	ticket, err := h.support.SubmitTicket(c.Request.Context(), identity.UserID, identity.Email, in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"ticket":  ticket,
		"message": "Support ticket submitted successfully! We'll get back to you soon.",
	})
}

func (h *Handler) listServices(c *gin.Context) {
	services, err := h.subscriptions.ListServices(c.Request.Context(), userID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"services": services})
}

func (h *Handler) toolsOverview(c *gin.Context) {
	ov, err := h.connections.Overview(c.Request.Context(), userID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ov)
}

func (h *Handler) createConnection(c *gin.Context) {
	var in service.ConnectionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}

	conn, err := h.connections.Create(c.Request.Context(), userID(c), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, conn)
}

func (h *Handler) deleteConnection(c *gin.Context) {
	if err := h.connections.Delete(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) testConnection(c *gin.Context) {
	result, err := h.connections.Test(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// playground relays the upstream body as-is; the upstream status travels
// in a header so a failing tool still reaches the caller
func (h *Handler) playground(c *gin.Context) {
	var req playgroundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.connections.Playground(c.Request.Context(), userID(c), req.Input)
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header(upstreamStatusHeader, strconv.Itoa(result.StatusCode))
	c.Header("X-Connection-ID", result.ConnectionID)
	c.Data(http.StatusOK, result.ContentType, result.Body)
}
