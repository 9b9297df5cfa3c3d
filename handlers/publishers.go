package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/newsdesk/newsdesk-server/internal/publishers"
)

type PublishersHandler struct {
	svc *publishers.Service
}

func NewPublishersHandler(svc *publishers.Service) *PublishersHandler {
	return &PublishersHandler{svc: svc}
}

func (h *PublishersHandler) Register(r gin.IRouter, auth, admin gin.HandlerFunc) {
	r.POST("/publishers", auth, admin, h.Create)
	r.GET("/publishers", h.List)
	r.GET("/publishers/check-email/:email", h.CheckEmail)
	r.DELETE("/admin/publishers/:id", auth, admin, h.Delete)
}

func (h *PublishersHandler) Create(c *gin.Context) {
	var body struct {
		Name  string `json:"name"`
		Email string `json:"email" binding:"required"`
		Logo  string `json:"logo"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "name and email are required")
		return
	}
	res, err := h.svc.Create(c.Request.Context(), body.Name, body.Email, body.Logo)
	if err != nil {
		respondError(c, err, "Failed to create publisher")
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *PublishersHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to fetch publishers")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *PublishersHandler) CheckEmail(c *gin.Context) {
	exists, err := h.svc.CheckEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		respondError(c, err, "Server error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"exists": exists})
}

func (h *PublishersHandler) Delete(c *gin.Context) {
	res, err := h.svc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to delete publisher")
		return
	}
	c.JSON(http.StatusOK, res)
}
