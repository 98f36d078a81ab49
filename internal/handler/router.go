package handler

import (
	"github.com/gin-gonic/gin"
)

type RouterDeps struct {
	Query  *QueryHandler
	Files  *FileHandler
	Health *HealthHandler
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.POST("/query", deps.Query.Query)
	api.GET("/health", deps.Health.Health)
	api.GET("/files/:key", deps.Files.Get)
}
