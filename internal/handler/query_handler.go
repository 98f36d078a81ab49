package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vinayk94/iso-assist/internal/pkg/response"
	"github.com/vinayk94/iso-assist/internal/service"
)

type QueryHandler struct {
	pipeline   *service.QueryPipeline
	maxSources int
}

func NewQueryHandler(pipeline *service.QueryPipeline, maxSources int) *QueryHandler {
	return &QueryHandler{pipeline: pipeline, maxSources: maxSources}
}

type queryRequest struct {
	Query      string `json:"query"`
	MaxSources int    `json:"max_sources"`
}

func (h *QueryHandler) Query(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	limit := h.maxSources
	if req.MaxSources > 0 && req.MaxSources < limit {
		limit = req.MaxSources
	}
	result, err := h.pipeline.HandleWithLimit(c.Request.Context(), req.Query, limit)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
