package resource

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/triage-api/internal/handler"
	"github.com/jwalitptl/triage-api/internal/model"
	resourcesvc "github.com/jwalitptl/triage-api/internal/service/resource"
	"github.com/jwalitptl/triage-api/pkg/httputil"
)

type Handler struct {
	service resourcesvc.ResourceService
}

func NewHandler(service resourcesvc.ResourceService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	resources := r.Group("/resources")
	{
		resources.GET("", h.ListResources)
		resources.POST("", h.UpsertResource)
	}
}

func (h *Handler) ListResources(c *gin.Context) {
	resources, err := h.service.List(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, resources)
}

// UpsertResource records a resupply or consumption count for one resource type.
func (h *Handler) UpsertResource(c *gin.Context) {
	var req model.UpsertResourceRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	res, err := h.service.Upsert(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, res)
}
