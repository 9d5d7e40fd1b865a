package controller

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Vansh983/ai-ta/dao"
	"github.com/Vansh983/ai-ta/response"
	"github.com/Vansh983/ai-ta/service/storage"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthController struct {
	db    *gorm.DB
	store *storage.Client
}

func NewHealthController(db *gorm.DB, store *storage.Client) *HealthController {
	return &HealthController{db: db, store: store}
}

func (hc *HealthController) Banner(c *gin.Context) {
	c.JSON(http.StatusOK, response.BannerResponse{
		Message:  "AI Teaching Assistant API v2.0",
		Status:   "running",
		Database: "postgresql",
		Storage:  "oss",
	})
}

// Health reports liveness. An unreachable blob store degrades the report;
// only a dead database fails the check.
func (hc *HealthController) Health(c *gin.Context) {
	if err := dao.Ping(c.Request.Context(), hc.db); err != nil {
		slog.Error("health check failed", "err", err)
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, response.Response{
			Msg: "Service unavailable",
		})
		return
	}

	storageStatus := "connected"
	if err := hc.store.Ping(c.Request.Context()); err != nil {
		slog.Warn("storage unreachable", "err", err)
		storageStatus = "disconnected"
	}

	c.JSON(http.StatusOK, response.HealthResponse{
		Status:    "healthy",
		Database:  "connected",
		Storage:   storageStatus,
		Timestamp: time.Now().UTC(),
	})
}
