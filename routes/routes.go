package routes

import (
	"staff-appraisal-api/controllers"
	"staff-appraisal-api/middleware"
	"staff-appraisal-api/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			public.POST("/login", controllers.Login)
			public.POST("/forgot-password", controllers.ForgotPassword)
			public.POST("/reset-password", controllers.ResetPassword)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Staff Appraisal API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			protected.POST("/refresh", controllers.RefreshToken)
			protected.GET("/profile", controllers.GetProfile)
			protected.PUT("/change-password", controllers.ChangePassword)

			// Notifications
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", controllers.GetNotifications)
				notifications.GET("/counter", controllers.GetNotificationCounter)
				notifications.PUT("/:notification_id/read", controllers.MarkNotificationRead)
				notifications.PUT("/read-all", controllers.MarkAllNotificationsRead)
			}

			// Submission deadlines
			protected.GET("/deadlines", controllers.GetDeadlines)
			protected.GET("/deadlines/status", controllers.GetDeadlineStatus)
			protected.POST("/admin/deadlines", middleware.RequireRole(models.RoleAdmin), controllers.UpsertDeadline)

			// Appraisal forms
			appraisals := protected.Group("/appraisals")
			{
				appraisals.POST("", middleware.RequireRole(models.RoleStaff, models.RoleHOD), controllers.CreateAppraisal)
				appraisals.GET("", controllers.GetAppraisalsByStatus)
				appraisals.GET("/mine", controllers.GetMyAppraisals)
				appraisals.GET("/:id", controllers.GetAppraisal)
				appraisals.POST("/:id/submit", middleware.RequireRole(models.RoleStaff, models.RoleHOD), controllers.SubmitAppraisal)
				appraisals.GET("/:id/versions", controllers.GetAppraisalVersions)
				appraisals.GET("/:id/reviews", controllers.GetAppraisalReviews)
				appraisals.GET("/:id/assignments", controllers.GetAppraisalAssignments)

				// Reviewer assignment
				appraisals.POST("/:id/department-committee",
					middleware.RequireRole(models.RoleHOD, models.RoleAdmin),
					controllers.AssignDepartmentCommittee)
				appraisals.POST("/:id/college-committee",
					middleware.RequireRole(models.RoleChairperson, models.RoleAdmin),
					controllers.AssignCollegeCommittee)
				appraisals.POST("/:id/reviewers",
					middleware.RequireRole(models.RoleHOD, models.RoleChairperson, models.RoleAdmin),
					controllers.AssignReviewer)

				// Review decisions
				appraisals.POST("/:id/reviews",
					middleware.RequireRole(models.RoleCommittee, models.RoleHOD, models.RoleChairperson,
						models.RolePrincipal, models.RoleVerifyingStaff),
					controllers.SubmitReview)

				// HOD correction workflow
				appraisals.POST("/:id/finalize-corrections",
					middleware.RequireRole(models.RoleHOD),
					controllers.FinalizeCorrections)

				// Section records: publications
				appraisals.GET("/:id/publications", controllers.GetPublications)
				appraisals.POST("/:id/publications", middleware.RequireRole(models.RoleStaff, models.RoleHOD), controllers.CreatePublication)

				// Section records: awards
				appraisals.GET("/:id/awards", controllers.GetAwards)
				appraisals.POST("/:id/awards", middleware.RequireRole(models.RoleStaff, models.RoleHOD), controllers.CreateAward)
			}

			// Record-level section updates
			protected.PUT("/publications/:record_id", middleware.RequireRole(models.RoleStaff, models.RoleHOD), controllers.UpdatePublication)
			protected.DELETE("/publications/:record_id", middleware.RequireRole(models.RoleStaff, models.RoleHOD), controllers.DeletePublication)
			protected.PUT("/awards/:record_id", middleware.RequireRole(models.RoleStaff, models.RoleHOD), controllers.UpdateAward)
			protected.DELETE("/awards/:record_id", middleware.RequireRole(models.RoleStaff, models.RoleHOD), controllers.DeleteAward)
			protected.PUT("/hod/publications/:record_id", middleware.RequireRole(models.RoleHOD), controllers.HODUpdatePublication)
			protected.PUT("/hod/awards/:record_id", middleware.RequireRole(models.RoleHOD), controllers.HODUpdateAward)
		}
	}
}
