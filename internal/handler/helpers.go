package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	appErr "github.com/vinayk94/iso-assist/internal/pkg/errors"
	"github.com/vinayk94/iso-assist/internal/pkg/response"
)

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	requestID, _ := c.Get("request_id")
	logutil.GetLogger(c.Request.Context()).Error("request failed",
		zap.Any("request_id", requestID),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	switch {
	case errors.Is(err, appErr.ErrInvalidQuery):
		// User-correctable; the message is safe to report verbatim.
		response.Fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, appErr.ErrNotFound):
		response.Fail(c, http.StatusNotFound, "not found")
	case errors.Is(err, appErr.ErrEmbedding), errors.Is(err, appErr.ErrGeneration):
		// Backend trouble: never leak provider internals to the caller.
		response.Fail(c, http.StatusBadGateway, "the assistant is temporarily unavailable, please try again")
	default:
		response.Fail(c, http.StatusInternalServerError, "internal error")
	}
}
