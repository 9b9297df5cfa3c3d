package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/newsdesk/newsdesk-server/internal/articles"
	"github.com/newsdesk/newsdesk-server/internal/models"
	"github.com/newsdesk/newsdesk-server/pkg/middleware"
)

type ArticlesHandler struct {
	svc *articles.Service
	guard
}

func NewArticlesHandler(svc *articles.Service, roles middleware.RoleChecker) *ArticlesHandler {
	return &ArticlesHandler{svc: svc, guard: guard{roles: roles}}
}

func (h *ArticlesHandler) Register(r gin.IRouter, auth, admin gin.HandlerFunc) {
	r.POST("/articles", auth, h.Post)
	r.GET("/articles", h.List)
	r.GET("/articles/:id", h.Get)
	r.PUT("/articles/:id", auth, h.Update)
	r.DELETE("/articles/:id", auth, h.Delete)
	r.GET("/trending", h.Trending)
	r.GET("/latest", h.Latest)
	r.GET("/premium-articles", auth, h.Premium)
	r.GET("/my-articles/:email", auth, h.Mine)

	a := r.Group("/admin", auth, admin)
	a.GET("/articles", h.All)
	a.PATCH("/articles/approve/:id", h.Approve)
	a.PATCH("/articles/decline/:id", h.Decline)
	a.PATCH("/articles/premium/:id", h.MarkPremium)
	a.DELETE("/articles/:id", h.Remove)
	a.GET("/article-requests/count-pending", h.CountPending)
}

func (h *ArticlesHandler) Post(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		badRequest(c, "Invalid article")
		return
	}
	draft, err := articles.DecodeDraft(body)
	if err != nil {
		respondError(c, err, "Invalid article")
		return
	}
	res, err := h.svc.Post(c.Request.Context(), caller(c), draft)
	if err != nil {
		respondError(c, err, "Failed to post article")
		return
	}
	c.JSON(http.StatusOK, res)
}

// parseLimit treats a missing or unparsable limit as 0.
func parseLimit(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func (h *ArticlesHandler) List(c *gin.Context) {
	q := models.ArticleQuery{
		Publisher: c.Query("publisher"),
		Tag:       c.Query("tag"),
		Search:    c.Query("search"),
		Sort:      c.Query("sort"),
		Limit:     parseLimit(c.Query("limit")),
	}
	list, err := h.svc.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, err, "Failed to fetch articles")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ArticlesHandler) Get(c *gin.Context) {
	a, err := h.svc.View(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to fetch article")
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *ArticlesHandler) Update(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		badRequest(c, "Invalid article")
		return
	}
	fields, err := models.Fields(body, models.ProtectedArticleFields...)
	if err != nil {
		badRequest(c, "Invalid article")
		return
	}
	admin, err := h.isAdmin(c)
	if err != nil {
		respondError(c, err, "Server error")
		return
	}
	res, err := h.svc.Update(c.Request.Context(), caller(c), admin, c.Param("id"), fields)
	if err != nil {
		respondError(c, err, "Failed to update article")
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *ArticlesHandler) Delete(c *gin.Context) {
	admin, err := h.isAdmin(c)
	if err != nil {
		respondError(c, err, "Server error")
		return
	}
	res, err := h.svc.Delete(c.Request.Context(), caller(c), admin, c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to delete article")
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *ArticlesHandler) Trending(c *gin.Context) {
	list, err := h.svc.Trending(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to fetch trending articles")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ArticlesHandler) Latest(c *gin.Context) {
	list, err := h.svc.Latest(c.Request.Context(), parseLimit(c.Query("limit")))
	if err != nil {
		respondError(c, err, "Failed to fetch latest articles")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ArticlesHandler) Premium(c *gin.Context) {
	list, err := h.svc.Premium(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to fetch premium articles")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ArticlesHandler) Mine(c *gin.Context) {
	email := c.Param("email")
	if !h.selfOrAdmin(c, email) {
		return
	}
	list, err := h.svc.ByAuthor(c.Request.Context(), email)
	if err != nil {
		respondError(c, err, "Failed to fetch articles")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ArticlesHandler) All(c *gin.Context) {
	list, err := h.svc.All(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to fetch articles")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ArticlesHandler) Approve(c *gin.Context) {
	res, err := h.svc.Approve(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to approve article")
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *ArticlesHandler) Decline(c *gin.Context) {
	var body struct {
		Reason string `json:"reason"`
	}
	// a missing body declines without a reason
	_ = c.ShouldBindJSON(&body)
	res, err := h.svc.Decline(c.Request.Context(), c.Param("id"), body.Reason)
	if err != nil {
		respondError(c, err, "Failed to decline article")
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *ArticlesHandler) MarkPremium(c *gin.Context) {
	res, err := h.svc.MarkPremium(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to update article")
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *ArticlesHandler) Remove(c *gin.Context) {
	res, err := h.svc.Remove(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to delete article")
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *ArticlesHandler) CountPending(c *gin.Context) {
	n, err := h.svc.CountByStatus(c.Request.Context(), models.StatusPending)
	if err != nil {
		respondError(c, err, "Failed to get count")
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}
