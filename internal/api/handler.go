package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"marketplace/internal/auth"
	"marketplace/internal/catalog"
	"marketplace/internal/service"
	"marketplace/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Pinger is a dependency checked by the readiness probe
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies groups everything the HTTP layer calls into
type Dependencies struct {
	Gateway       *auth.Gateway
	Checkout      *service.CheckoutService
	Payments      *service.PaymentService
	Orders        *service.OrderService
	Accounts      *service.AccountService
	Subscriptions *service.SubscriptionService
	Connections   *service.ConnectionService
	Support       *service.SupportService
	Contact       *service.ContactService

	// Checks are pinged by /ready, keyed by name
	Checks map[string]Pinger

	ClientURL    string
	CookieName   string
	SecureCookie bool
	SessionTTL   time.Duration
}

// Handler contains HTTP handlers
type Handler struct {
	gateway       *auth.Gateway
	checkout      *service.CheckoutService
	payments      *service.PaymentService
	orders        *service.OrderService
	accounts      *service.AccountService
	subscriptions *service.SubscriptionService
	connections   *service.ConnectionService
	support       *service.SupportService
	contact       *service.ContactService
	checks        map[string]Pinger

	clientURL    string
	cookieName   string
	secureCookie bool
	sessionTTL   time.Duration
}

// NewHandler creates a new HTTP handler
func NewHandler(deps Dependencies) *Handler {
	return &Handler{
		gateway:       deps.Gateway,
		checkout:      deps.Checkout,
		payments:      deps.Payments,
		orders:        deps.Orders,
		accounts:      deps.Accounts,
		subscriptions: deps.Subscriptions,
		connections:   deps.Connections,
		support:       deps.Support,
		contact:       deps.Contact,
		checks:        deps.Checks,
		clientURL:     deps.ClientURL,
		cookieName:    deps.CookieName,
		secureCookie:  deps.SecureCookie,
		sessionTTL:    deps.SessionTTL,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(requestIDMiddleware())
	router.Use(tracingMiddleware())
	router.Use(prometheusMiddleware())
	router.Use(loggerMiddleware())
	router.Use(corsMiddleware(h.clientURL))

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	v1.Use(h.sessionMiddleware())
	{
		v1.GET("/products", h.listProducts)
		v1.GET("/products/:id", h.getProduct)
		v1.GET("/categories", h.listCategories)
		v1.GET("/bundles", h.listBundles)
		v1.GET("/bundles/:id", h.getBundle)
		v1.POST("/contact", h.submitContact)
		v1.GET("/faq", h.listFAQ)

		v1.POST("/auth/signup", h.signUp)
		v1.POST("/auth/signin", h.signIn)
		v1.POST("/auth/signout", h.signOut)
		v1.GET("/auth/me", h.me)

		v1.GET("/checkout", h.startCheckout)
		v1.GET("/payment-method", h.paymentOptions)
		v1.POST("/payment-method", h.placeOrder)
	}

	dashboard := v1.Group("/dashboard")
	dashboard.Use(requireSession())
	{
		dashboard.GET("", h.overview)
		dashboard.GET("/orders", h.listOrders)
		dashboard.GET("/orders/:id", h.getOrder)
		dashboard.POST("/orders/:id/pay", h.payOrder)
		dashboard.GET("/billing", h.billing)

		dashboard.GET("/settings/profile", h.getProfile)
		dashboard.PUT("/settings/profile", h.updateProfile)
		dashboard.PUT("/settings/password", h.updatePassword)
		dashboard.GET("/settings/preferences", h.getPreferences)
		dashboard.PUT("/settings/preferences", h.updatePreferences)

		dashboard.POST("/support/tickets", h.submitTicket)
		dashboard.GET("/services", h.listServices)

		dashboard.GET("/ai-tools/connections", h.toolsOverview)
		dashboard.POST("/ai-tools/connections", h.createConnection)
		dashboard.DELETE("/ai-tools/connections/:id", h.deleteConnection)
		dashboard.POST("/ai-tools/connections/:id/test", h.testConnection)
		dashboard.POST("/ai-tools/playground", h.playground)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck pings the store and, when configured, Redis
func (h *Handler) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := make(map[string]string, len(h.checks))
	ready := true
	for name, p := range h.checks {
		if err := p.Ping(ctx); err != nil {
			util.Ctx(ctx).Warn("Readiness check failed", zap.String("check", name), zap.Error(err))
			checks[name] = "down"
			ready = false
			continue
		}
		checks[name] = "up"
	}

	status, code := "ready", http.StatusOK
	if !ready {
		status, code = "not_ready", http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status": status,
		"checks": checks,
		"time":   time.Now().Unix(),
	})
}

func (h *Handler) listProducts(c *gin.Context) {
	selection := catalog.NewSelection(c.QueryArray("category")...)
	products := catalog.Search(catalog.Query{
		Selection: selection,
		Text:      c.Query("q"),
		Sort:      c.DefaultQuery("sort", catalog.SortPopular),
	})

	c.JSON(http.StatusOK, gin.H{
		"products":   products,
		"categories": selection.Active(),
		"total":      len(products),
	})
}

func (h *Handler) getProduct(c *gin.Context) {
	product, ok := catalog.FindProduct(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) listCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": catalog.Categories()})
}

func (h *Handler) listBundles(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"bundles": catalog.Bundles()})
}

func (h *Handler) getBundle(c *gin.Context) {
	bundle, ok := catalog.FindBundle(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Bundle not found"})
		return
	}
	c.JSON(http.StatusOK, bundle)
}

func (h *Handler) listFAQ(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"faq": service.FAQ()})
}

// writeError maps service and auth errors to HTTP responses
func writeError(c *gin.Context, err error) {
	var redirect *service.RedirectError
	if errors.As(err, &redirect) {
		c.Header("Location", redirect.Location)
		c.JSON(http.StatusSeeOther, gin.H{
			"error":    redirect.Message,
			"reason":   redirect.Reason,
			"redirect": redirect.Location,
		})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrConnectionNotFound),
		errors.Is(err, service.ErrProductNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrInvalidPlan),
		errors.Is(err, service.ErrInvalidPaymentMethod),
		errors.Is(err, service.ErrNoConnection),
		errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrPasswordMismatch):
		status = http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrUnauthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, auth.ErrEmailTaken),
		errors.Is(err, service.ErrPaymentInProgress),
		errors.Is(err, service.ErrOrderNotPayable):
		status = http.StatusConflict
	case errors.Is(err, service.ErrRateLimited):
		status = http.StatusTooManyRequests
	case errors.Is(err, service.ErrUpstream):
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError {
		util.Ctx(c.Request.Context()).Error("Request failed", zap.Error(err))
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request body",
		"details": err.Error(),
	})
}
