package handler

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vinayk94/iso-assist/internal/repo"
)

type HealthHandler struct {
	db        *sql.DB
	documents *repo.DocumentRepo
	chunks    *repo.ChunkRepo
}

func NewHealthHandler(db *sql.DB, documents *repo.DocumentRepo, chunks *repo.ChunkRepo) *HealthHandler {
	return &HealthHandler{db: db, documents: documents, chunks: chunks}
}

func (h *HealthHandler) Health(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.db.PingContext(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  "database unreachable",
		})
		return
	}
	documents, err := h.documents.Count(ctx)
	if err != nil {
		handleError(c, err)
		return
	}
	chunks, err := h.chunks.CountChunks(ctx)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"documents": documents,
		"chunks":    chunks,
	})
}
