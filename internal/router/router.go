package router

import (
	"net/http"

	"tasksync/internal/config"
	"tasksync/internal/handler"
	"tasksync/internal/middleware"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter configures the Gin engine for the development backend.
func SetupRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	gql := handler.NewGraphQLHandler(db, cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.ExpireHours)

	r.POST("/v1/graphql",
		middleware.Identity(cfg.JWT.Secret, cfg.Gateway.AdminSecret, db),
		middleware.OpLog(db),
		gql.Handle,
	)

	return r
}
