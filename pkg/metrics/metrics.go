package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "newsdesk", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "newsdesk", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "newsdesk", Name: "http_requests_total", Help: "HTTP requests by route, method and status code."},
		[]string{"route", "method", "code"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: "newsdesk", Name: "http_request_duration_seconds", Help: "HTTP request latency by route.", Buckets: prometheus.DefBuckets},
		[]string{"route", "method"},
	)
	// outcome: submitted|approved|declined|conflict|not_found
	PublisherRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "newsdesk", Name: "publisher_requests_total", Help: "Publisher request workflow transitions by outcome."},
		[]string{"outcome"},
	)
	// result: created|forbidden
	ArticlePosts = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "newsdesk", Name: "article_posts_total", Help: "Article post attempts by result."},
		[]string{"result"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(HTTPRequests)
	reg.MustRegister(HTTPDuration)
	reg.MustRegister(PublisherRequests)
	reg.MustRegister(ArticlePosts)
}
