package middleware

import (
	"github.com/Vansh983/ai-ta/config"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// The deployed web client is always allowed alongside the configured origins.
const webClientOrigin = "https://ai-ta.vercel.app"

func CORSMiddleware() gin.HandlerFunc {
	origins := config.Cfg.Server.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	allowed := append([]string{}, origins...)
	allowed = append(allowed, webClientOrigin)

	return cors.New(cors.Config{
		AllowOrigins:     allowed,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})
}
