package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/newsdesk/newsdesk-server/internal/publisherrequests"
)

type PublisherRequestsHandler struct {
	wf *publisherrequests.Workflow
}

func NewPublisherRequestsHandler(wf *publisherrequests.Workflow) *PublisherRequestsHandler {
	return &PublisherRequestsHandler{wf: wf}
}

func (h *PublisherRequestsHandler) Register(r gin.IRouter, auth, admin gin.HandlerFunc) {
	r.POST("/publisher-request", auth, h.Submit)
	r.GET("/publisher-request/check", auth, h.Check)

	a := r.Group("/admin/publisher-requests", auth, admin)
	a.GET("", h.List)
	a.GET("/count-pending", h.CountPending)
	a.GET("/events", h.Events)
	a.PATCH("/approve/:id", h.Approve)
	a.PATCH("/decline/:id", h.Decline)
}

// Submit files a request for the authenticated caller; an email in the body is ignored.
func (h *PublisherRequestsHandler) Submit(c *gin.Context) {
	var body struct {
		Name   string `json:"name"`
		Logo   string `json:"logo"`
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "Invalid request")
		return
	}
	res, err := h.wf.Submit(c.Request.Context(), caller(c), body.Name, body.Logo, body.Reason)
	if err != nil {
		respondError(c, err, "Failed to submit request")
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *PublisherRequestsHandler) Check(c *gin.Context) {
	st, err := h.wf.CheckStatus(c.Request.Context(), caller(c))
	if err != nil {
		respondError(c, err, "Server error")
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *PublisherRequestsHandler) List(c *gin.Context) {
	list, err := h.wf.List(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to fetch requests")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *PublisherRequestsHandler) CountPending(c *gin.Context) {
	n, err := h.wf.CountPending(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to get count")
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

func (h *PublisherRequestsHandler) Events(c *gin.Context) {
	list, err := h.wf.Events(c.Request.Context(), c.Query("email"), parseLimit(c.Query("limit")))
	if err != nil {
		respondError(c, err, "Failed to fetch events")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *PublisherRequestsHandler) Approve(c *gin.Context) {
	if err := h.wf.Approve(c.Request.Context(), caller(c), c.Param("id")); err != nil {
		respondError(c, err, "Failed to approve request")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *PublisherRequestsHandler) Decline(c *gin.Context) {
	res, err := h.wf.Decline(c.Request.Context(), caller(c), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to decline request")
		return
	}
	c.JSON(http.StatusOK, res)
}
