package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/newsdesk/newsdesk-server/internal/models"
	"github.com/newsdesk/newsdesk-server/internal/users"
)

type UsersHandler struct {
	svc *users.Service
	guard
}

func NewUsersHandler(svc *users.Service) *UsersHandler {
	return &UsersHandler{svc: svc, guard: guard{roles: svc}}
}

func (h *UsersHandler) Register(r gin.IRouter, auth, admin gin.HandlerFunc) {
	r.PUT("/users/:email", auth, h.Upsert)
	r.GET("/users/:email", h.Get)
	r.GET("/users", auth, admin, h.List)
	r.PATCH("/users/admin/:email", auth, admin, h.MakeAdmin)
	r.POST("/subscribe/:email", auth, h.Subscribe)
}

// Upsert stores arbitrary profile fields; identity and entitlement fields are ignored.
func (h *UsersHandler) Upsert(c *gin.Context) {
	email := c.Param("email")
	if !h.selfOrAdmin(c, email) {
		return
	}
	body, err := c.GetRawData()
	if err != nil {
		badRequest(c, "Invalid body")
		return
	}
	fields, err := models.Fields(body, models.ProtectedUserFields...)
	if err != nil {
		badRequest(c, "Invalid body")
		return
	}
	res, err := h.svc.UpsertProfile(c.Request.Context(), email, fields)
	if err != nil {
		respondError(c, err, "Failed to save user")
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *UsersHandler) Get(c *gin.Context) {
	u, err := h.svc.Get(c.Request.Context(), c.Param("email"))
	if err != nil {
		respondError(c, err, "Server error")
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *UsersHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to list users")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *UsersHandler) MakeAdmin(c *gin.Context) {
	res, err := h.svc.MakeAdmin(c.Request.Context(), c.Param("email"))
	if err != nil {
		respondError(c, err, "Failed to update user")
		return
	}
	c.JSON(http.StatusOK, res)
}

// Subscribe expects {"duration": <minutes>} with a positive JSON number.
func (h *UsersHandler) Subscribe(c *gin.Context) {
	email := c.Param("email")
	if !h.selfOrAdmin(c, email) {
		return
	}
	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "Invalid duration")
		return
	}
	minutes, err := users.DurationFromJSON(body["duration"])
	if err != nil {
		respondError(c, err, "Subscription failed")
		return
	}
	sub, err := h.svc.Subscribe(c.Request.Context(), email, minutes)
	if err != nil {
		respondError(c, err, "Subscription failed")
		return
	}
	c.JSON(http.StatusOK, sub)
}
