package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/newsdesk/newsdesk-server/internal/users"
)

type StatsHandler struct {
	users      *users.Service
	articles   users.ArticleCounter
	publishers users.PublisherCounter
}

func NewStatsHandler(u *users.Service, a users.ArticleCounter, p users.PublisherCounter) *StatsHandler {
	return &StatsHandler{users: u, articles: a, publishers: p}
}

func (h *StatsHandler) Register(r gin.IRouter) {
	r.GET("/stats", h.Get)
}

func (h *StatsHandler) Get(c *gin.Context) {
	st, err := h.users.Stats(c.Request.Context(), h.articles, h.publishers)
	if err != nil {
		respondError(c, err, "Failed to fetch stats")
		return
	}
	c.JSON(http.StatusOK, st)
}
