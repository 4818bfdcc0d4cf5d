package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Total number of pending orders placed",
	}, []string{"plan"})

	OrdersPaidTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_paid_total",
		Help: "Total number of orders moved to completed",
	})

	OrderPaymentRepeatsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "order_payment_repeats_total",
		Help: "Pay requests for orders that were already completed",
	})

	OrdersFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_failed_total",
		Help: "Total number of order placements that failed",
	}, []string{"reason"})

	CheckoutRedirectsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_redirects_total",
		Help: "Checkout requests answered with a redirect",
	}, []string{"reason"})

	ServicesActivatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "services_activated_total",
		Help: "Subscriptions activated from paid orders",
	})

	ContactMessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "contact_messages_total",
		Help: "Contact form submissions",
	}, []string{"result"})

	SupportTicketsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "support_tickets_total",
		Help: "Support tickets submitted",
	}, []string{"category"})

	ConnectionTestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "connection_tests_total",
		Help: "Outbound AI tool calls by kind and result",
	}, []string{"kind", "result"})

	ConnectionCallLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "connection_call_latency_seconds",
		Help:    "Latency of outbound AI tool calls",
		Buckets: prometheus.DefBuckets,
	})

	MailsSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mails_sent_total",
		Help: "Notification mails by kind and result",
	}, []string{"kind", "result"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
