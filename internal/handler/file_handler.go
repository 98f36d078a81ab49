package handler

import (
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vinayk94/iso-assist/internal/config"
	"github.com/vinayk94/iso-assist/internal/filestore"
)

// FileHandler serves the original source documents referenced by answer
// sources. Only the local store is served directly; an s3 store exposes
// objects through its own public URL.
type FileHandler struct {
	store  filestore.Store
	config config.FileStoreConfig
}

func NewFileHandler(store filestore.Store, cfg config.FileStoreConfig) *FileHandler {
	return &FileHandler{store: store, config: cfg}
}

func (h *FileHandler) Get(c *gin.Context) {
	if h.store.Type() != "local" {
		c.Status(http.StatusNotFound)
		return
	}
	key := c.Param("key")
	if key == "" || strings.Contains(key, "/") || strings.Contains(key, "\\") {
		c.Status(http.StatusBadRequest)
		return
	}
	file, err := h.store.Open(c.Request.Context(), key)
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}
	defer file.Close()
	contentType := mime.TypeByExtension(filepath.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	_, _ = io.Copy(c.Writer, file)
}
