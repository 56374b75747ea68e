package handler

import (
	"net/http"
	"strconv"
	"strings"

	"crm_backend/internal/notification/inapp"
	"crm_backend/internal/notification/sse"
	"crm_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const msgInvalidID = "invalid id"

type HTTPHandler struct {
	svc    *inapp.Service
	stream *sse.Service
}

func NewHTTPHandler(svc *inapp.Service, stream *sse.Service) *HTTPHandler {
	return &HTTPHandler{svc: svc, stream: stream}
}

func (h *HTTPHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/unread", h.CountUnread)
	rg.GET("/stream", h.stream.Handler())
	rg.PATCH("/:id/read", h.MarkRead)
	rg.PATCH("/read-all", h.MarkAllRead)
	rg.DELETE("/:id", h.Delete)
}

func (h *HTTPHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 50 {
		limit = 50
	}

	items, total, err := h.svc.List(c.Request.Context(), page, limit)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{
		"items": items,
		"total": total,
		"page":  page,
	})
}

// CountUnread returns the unread count, optionally filtered by a comma
// separated "types" query parameter.
func (h *HTTPHandler) CountUnread(c *gin.Context) {
	typesParam := strings.TrimSpace(c.Query("types"))
	resourceTypes := make([]string, 0)
	if typesParam != "" {
		resourceTypes = append(resourceTypes, strings.Split(typesParam, ",")...)
	}

	count, err := h.svc.CountUnread(c.Request.Context(), resourceTypes)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"count": count})
}

func (h *HTTPHandler) MarkRead(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	if err := h.svc.MarkRead(c.Request.Context(), id); httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"status": "ok"})
}

func (h *HTTPHandler) MarkAllRead(c *gin.Context) {
	updated, err := h.svc.MarkAllRead(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"status": "ok", "updated": updated})
}

func (h *HTTPHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"status": "ok"})
}
