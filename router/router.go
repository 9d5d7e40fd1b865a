package router

import (
	"github.com/Vansh983/ai-ta/controller"
	"github.com/Vansh983/ai-ta/middleware"

	"github.com/gin-gonic/gin"
)

// Controllers groups the handler sets the router mounts.
type Controllers struct {
	Health   *controller.HealthController
	Auth     *controller.AuthController
	Course   *controller.CourseController
	Material *controller.MaterialController
	Chat     *controller.ChatController
}

func Register(ctrl Controllers) *gin.Engine {
	r := gin.Default()
	r.Use(middleware.CORSMiddleware())

	r.GET("/", ctrl.Health.Banner)
	r.GET("/health", ctrl.Health.Health)

	api := r.Group("/api")
	{
		public := api.Group("/user")
		{
			public.POST("/register", ctrl.Auth.Register)
			public.POST("/login", ctrl.Auth.Login)
		}

		// Student-facing endpoints carry no credentials.
		api.POST("/chat", ctrl.Chat.Chat)
		api.GET("/chat-history", ctrl.Chat.History)
		api.GET("/courses", ctrl.Course.ListCourses)
		api.GET("/courses/:id", ctrl.Course.GetCourse)
		api.GET("/courses/:id/materials", ctrl.Course.ListMaterials)

		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			protected.POST("/courses", ctrl.Course.CreateCourse)
			protected.POST("/upload", ctrl.Material.Upload)
			protected.POST("/query", ctrl.Chat.Query)
			protected.POST("/refresh-course", ctrl.Material.RefreshCourse)
			protected.GET("/materials/download-link", ctrl.Material.DownloadLink)

			protected.POST("/admin/process-materials", ctrl.Material.ProcessMaterials)
			protected.GET("/admin/processing-status", ctrl.Material.ProcessingStatus)
		}
	}

	return r
}
