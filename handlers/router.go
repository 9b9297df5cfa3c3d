package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/newsdesk/newsdesk-server/internal/articles"
	"github.com/newsdesk/newsdesk-server/internal/models"
	"github.com/newsdesk/newsdesk-server/internal/publisherrequests"
	"github.com/newsdesk/newsdesk-server/internal/publishers"
	"github.com/newsdesk/newsdesk-server/internal/revocation"
	"github.com/newsdesk/newsdesk-server/internal/storage"
	"github.com/newsdesk/newsdesk-server/internal/users"
	"github.com/newsdesk/newsdesk-server/pkg/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps is everything the HTTP surface needs. Uploads, RateLimit, Metrics and
// Ready are optional.
type Deps struct {
	Verifier   middleware.Verifier
	Revoked    *revocation.List
	Users      *users.Service
	Articles   *articles.Service
	Publishers *publishers.Service
	Requests   *publisherrequests.Workflow
	Uploads    storage.ObjectStore
	RateLimit  gin.HandlerFunc
	Metrics    prometheus.Gatherer
	// Ready reports dependency health by name; any false answers 503 on /ready.
	Ready func(ctx context.Context) map[string]bool
}

var startTime = time.Now()

// cors is the permissive policy the browser client needs for bearer-token calls.
func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		h.Set("Access-Control-Expose-Headers", "Content-Length")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/health", "/metrics"},
		Formatter: func(p gin.LogFormatterParams) string {
			return fmt.Sprintf("%s method=%s path=%s status=%d latency=%s ip=%s\n",
				p.TimeStamp.Format(time.RFC3339), p.Method, p.Path, p.StatusCode, p.Latency, p.ClientIP)
		},
	})
}

// NewRouter builds the engine with every route registered.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(cors(), requestLogger(), gin.Recovery(), middleware.RequestMetrics())
	if d.RateLimit != nil {
		r.Use(d.RateLimit)
	}

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Newspaper Project Server Running")
	})
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})
	r.GET("/ready", func(c *gin.Context) {
		deps := map[string]bool{}
		if d.Ready != nil {
			deps = d.Ready(c.Request.Context())
		}
		status, code := "ready", http.StatusOK
		for _, ok := range deps {
			if !ok {
				status, code = "not_ready", http.StatusServiceUnavailable
				break
			}
		}
		c.JSON(code, gin.H{"status": status, "deps": deps, "uptime": time.Since(startTime).String()})
	})
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Metrics, promhttp.HandlerOpts{})))
	}
	RegisterSwagger(r)

	auth := middleware.AuthMiddleware(d.Verifier, d.Revoked)
	admin := middleware.RequireRole(d.Users, models.RoleAdmin)

	NewAuthHandler(d.Users, d.Revoked).Register(r, auth)
	NewUsersHandler(d.Users).Register(r, auth, admin)
	NewArticlesHandler(d.Articles, d.Users).Register(r, auth, admin)
	NewPublishersHandler(d.Publishers).Register(r, auth, admin)
	NewPublisherRequestsHandler(d.Requests).Register(r, auth, admin)
	NewStatsHandler(d.Users, d.Articles, d.Publishers).Register(r)
	NewUploadsHandler(d.Uploads).Register(r, auth)
	return r
}
