package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/newsdesk/newsdesk-server/internal/storage"
	"github.com/newsdesk/newsdesk-server/pkg/logger"
)

const maxUploadBytes = 5 << 20

var uploadKinds = map[string]bool{"logos": true, "images": true}

type UploadsHandler struct {
	store storage.ObjectStore
	now   func() time.Time
}

// NewUploadsHandler accepts a nil store; uploads then answer 503.
func NewUploadsHandler(store storage.ObjectStore) *UploadsHandler {
	return &UploadsHandler{store: store, now: time.Now}
}

func (h *UploadsHandler) Register(r gin.IRouter, auth gin.HandlerFunc) {
	r.POST("/uploads", auth, h.Upload)
}

// Upload stores a multipart "file" image and returns its key and a readable URL.
// The optional "kind" form field is logos or images.
func (h *UploadsHandler) Upload(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Uploads are not configured"})
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes+1<<20)
	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "file is required")
		return
	}
	if fh.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large"})
		return
	}
	ext, ok := storage.ImageExt(fh.Header.Get("Content-Type"))
	if !ok {
		badRequest(c, "Only png, jpeg, gif and webp images are accepted")
		return
	}
	kind := c.DefaultPostForm("kind", "images")
	if !uploadKinds[kind] {
		badRequest(c, "kind must be logos or images")
		return
	}

	f, err := fh.Open()
	if err != nil {
		badRequest(c, "file is unreadable")
		return
	}
	defer f.Close()

	ctx := c.Request.Context()
	key := storage.ObjectKey(kind, ext, h.now())
	if err := h.store.Put(ctx, key, f, fh.Size, fh.Header.Get("Content-Type")); err != nil {
		logger.Errorf("upload %s by %s: %v", key, caller(c), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload failed"})
		return
	}
	url, err := h.store.URL(ctx, key)
	if err != nil {
		logger.Errorf("presign %s: %v", key, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "url": url})
}
